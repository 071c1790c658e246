package services

import (
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	apperrors "vapor/api/models/errors"
)

// five sites-only records: two plain snvs, an anchored deletion,
// a mitochondrial record and a multi-allelic site
func extractFixtureVcf() string {
	lines := []string{
		"##fileformat=VCFv4.1",
		strings.Join([]string{"#CHROM", "POS", "ID", "REF", "ALT", "QUAL", "FILTER", "INFO"}, "\t"),
		strings.Join([]string{"1", "10000", "rs1", "A", "T", "50", "PASS", "."}, "\t"),
		strings.Join([]string{"1", "10001", "rs2", "C", "G", "50", "PASS", "."}, "\t"),
		strings.Join([]string{"1", "10002", "rs3", "AAC", "A", "50", "PASS", "."}, "\t"),
		strings.Join([]string{"M", "146", "rs4", "T", "C", "50", "PASS", "."}, "\t"),
		strings.Join([]string{"2", "20000", "rs5", "G", "A,C", "50", "PASS", "."}, "\t"),
	}
	return strings.Join(lines, "\n") + "\n"
}

var extractFixtureIds = []string{
	"chr1:g.10000A>T",
	"chr1:g.10001C>G",
	"chr1:g.10003_10004del",
	"chrMT:g.146T>C",
	"chr2:g.20000G>A",
}

func TestVcfSampleNames(t *testing.T) {
	t.Run("should list sample columns in file order", func(t *testing.T) {
		lines := []string{
			"##fileformat=VCFv4.1",
			`##FORMAT=<ID=GT,Number=1,Type=String,Description="Genotype">`,
			strings.Join([]string{"#CHROM", "POS", "ID", "REF", "ALT", "QUAL", "FILTER", "INFO", "FORMAT", "S1", "S2"}, "\t"),
			strings.Join([]string{"1", "10000", "rs1", "A", "T", "50", "PASS", ".", "GT", "0/1", "1/1"}, "\t"),
		}
		path := writeTempFile(t, "samples.vcf", strings.Join(lines, "\n")+"\n")

		names, err := VcfSampleNames(path)
		assert.Nil(t, err)
		assert.Equal(t, []string{"S1", "S2"}, names)
	})

	t.Run("should come up empty for a sites-only file", func(t *testing.T) {
		path := writeTempFile(t, "sites.vcf", extractFixtureVcf())

		names, err := VcfSampleNames(path)
		assert.Nil(t, err)
		assert.Equal(t, 0, len(names))
	})

	t.Run("should fail on a missing file", func(t *testing.T) {
		_, err := VcfSampleNames("/nonexistent/input.vcf")
		assert.NotNil(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrSourceRead))
	})
}

func TestExtractChunkVariantIds(t *testing.T) {
	logger := zap.NewNop()

	t.Run("should keep ids in record order within the window", func(t *testing.T) {
		path := writeTempFile(t, "input.vcf", extractFixtureVcf())

		ids, err := ExtractChunkVariantIds(path, 0, 2, logger)
		assert.Nil(t, err)
		assert.Equal(t, extractFixtureIds[0:2], ids)

		ids, err = ExtractChunkVariantIds(path, 1, 2, logger)
		assert.Nil(t, err)
		assert.Equal(t, extractFixtureIds[2:4], ids)
	})

	t.Run("should clip a window reaching past the last record", func(t *testing.T) {
		path := writeTempFile(t, "input.vcf", extractFixtureVcf())

		ids, err := ExtractChunkVariantIds(path, 2, 2, logger)
		assert.Nil(t, err)
		assert.Equal(t, extractFixtureIds[4:5], ids)
	})

	t.Run("should leave a chunk past end-of-file empty", func(t *testing.T) {
		path := writeTempFile(t, "input.vcf", extractFixtureVcf())

		ids, err := ExtractChunkVariantIds(path, 9, 2, logger)
		assert.Nil(t, err)
		assert.Equal(t, 0, len(ids))
	})

	t.Run("should take the first alternate of a multi-allelic site", func(t *testing.T) {
		path := writeTempFile(t, "input.vcf", extractFixtureVcf())

		ids, err := ExtractChunkVariantIds(path, 0, 10, logger)
		assert.Nil(t, err)
		assert.Equal(t, extractFixtureIds, ids)
		assert.Equal(t, "chr2:g.20000G>A", ids[4])
	})

	t.Run("should read gzipped input transparently", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "input.vcf.gz")
		file, err := os.Create(path)
		assert.Nil(t, err)

		gzWriter := gzip.NewWriter(file)
		_, err = gzWriter.Write([]byte(extractFixtureVcf()))
		assert.Nil(t, err)
		assert.Nil(t, gzWriter.Close())
		assert.Nil(t, file.Close())

		ids, err := ExtractChunkVariantIds(path, 0, 10, logger)
		assert.Nil(t, err)
		assert.Equal(t, extractFixtureIds, ids)
	})

	t.Run("should fail on a missing file", func(t *testing.T) {
		_, err := ExtractChunkVariantIds("/nonexistent/input.vcf", 0, 2, logger)
		assert.NotNil(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrSourceRead))
	})
}
