package utils

import (
	"bufio"
	"compress/gzip"
	"io"
	"os"
	"strings"
)

// OpenMaybeGzip opens a file for reading, transparently
// decompressing .gz paths. Closing the returned reader closes
// the underlying file too.
func OpenMaybeGzip(filePath string) (io.ReadCloser, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}

	if !strings.HasSuffix(strings.ToLower(filePath), ".gz") {
		return file, nil
	}

	gzipReader, err := gzip.NewReader(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	return &gzipFileReader{file: file, gzip: gzipReader}, nil
}

type gzipFileReader struct {
	file *os.File
	gzip *gzip.Reader
}

func (r *gzipFileReader) Read(p []byte) (int, error) {
	return r.gzip.Read(p)
}

func (r *gzipFileReader) Close() error {
	gzipErr := r.gzip.Close()
	fileErr := r.file.Close()
	if gzipErr != nil {
		return gzipErr
	}
	return fileErr
}

// CountFileLines counts every line of a file, decompressed when
// gzipped. Header lines count too: chunking tolerates the
// overcount by letting trailing chunks come up empty.
func CountFileLines(filePath string) (int, error) {
	reader, err := OpenMaybeGzip(filePath)
	if err != nil {
		return 0, err
	}
	defer reader.Close()

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	lineCount := 0
	for scanner.Scan() {
		lineCount++
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	return lineCount, nil
}
