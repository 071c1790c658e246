package annovar

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

var multiannoHeader = strings.Join([]string{
	"Chr", "Start", "End", "Ref", "Alt",
	"Func.knownGene", "Gene.knownGene", "ExonicFunc.knownGene", "1000g2015aug_all",
	"Otherinfo",
}, "\t")

// five data rows in the shape -vcfinput produces: annotation
// columns, then zygosity/quality/depth, then the original vcf line
var multiannoRows = []string{
	strings.Join([]string{
		"1", "10000", "10000", "A", "T", "exonic", "GENE1", "nonsynonymous SNV", "0.01",
		"het", "100.5", "15",
		"1", "10000", "rs1", "A", "T", "100.5", "PASS", ".", "GT:AD:PL", "0/1:10,5:50,0,40", "1/1:0,12:90,9,0",
	}, "\t"),
	strings.Join([]string{
		"1", "10001", "10001", "C", "G", "intronic", "GENE2", ".", ".",
		"het", "99", "10",
		"1", "10001", "rs2", "C", "G", "99", "PASS", ".", "GT:AD:PL", "./.:.:.", "0/1:4,6:70,0,30",
	}, "\t"),
	strings.Join([]string{
		"M", "146", "146", "T", "C", "exonic", "MT-GENE", "synonymous SNV", ".",
		"hom", "80", "20",
		"M", "146", ".", "T", "C", "80", "PASS", ".", "GT:AD:PL", "1/1:0,20:99,12,0", "0/0:18,0:0,20,200",
	}, "\t"),
	strings.Join([]string{
		"1", "10003", "10003", "A", "G", "exonic", "GENE3", "stopgain", "0.002",
		"het", "88", "9",
		"1", "10003", "rs3", "A", "T,G", "88", "PASS", ".", "GT:AD:PL", "0/1:3,6:60,0,20", "0/0:9,0:0,10,100",
	}, "\t"),
	strings.Join([]string{
		"1", "10005", "10006", "AC", "-", "intronic", "GENE4", ".", "0.10",
		"het", "77", "11",
		"1", "10004", "rs4", "AAC", "A", "77", "PASS", ".", "GT:AD:PL", "0/1:7,4:44,0,80", "1/1:0,9:99,9,0",
	}, "\t"),
}

var multiannoSampleNames = []string{"S1", "S2"}

func writeMultianno(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "sample.hg19_multianno.txt")
	content := multiannoHeader + "\n" + strings.Join(multiannoRows, "\n") + "\n"

	err := os.WriteFile(path, []byte(content), 0644)
	assert.Nil(t, err)
	return path
}

func TestReadChunkOfAnnotations(t *testing.T) {
	parser := NewAnnovarTxtParser(zap.NewNop())

	t.Run("should read one chunk window in row order", func(t *testing.T) {
		path := writeMultianno(t)

		ids, records, err := parser.ReadChunkOfAnnotations(path, multiannoSampleNames, 0, 2)
		assert.Nil(t, err)
		assert.Equal(t, []string{"chr1:g.10000A>T", "chr1:g.10001C>G"}, ids)
		assert.Equal(t, 2, len(records))

		// identifier list and record list stay aligned
		for idx, id := range ids {
			assert.Equal(t, id, records[idx]["hgvs_id"])
		}
	})

	t.Run("should clip a window reaching past the last row", func(t *testing.T) {
		path := writeMultianno(t)

		ids, records, err := parser.ReadChunkOfAnnotations(path, multiannoSampleNames, 1, 3)
		assert.Nil(t, err)
		assert.Equal(t, []string{"chr1:g.10003A>G", "chr1:g.10005_10006del"}, ids)
		assert.Equal(t, 2, len(records))
	})

	t.Run("should return zero records past the end of the file", func(t *testing.T) {
		path := writeMultianno(t)

		ids, records, err := parser.ReadChunkOfAnnotations(path, multiannoSampleNames, 9, 2)
		assert.Nil(t, err)
		assert.Equal(t, 0, len(ids))
		assert.Equal(t, 0, len(records))
	})

	t.Run("should type known numeric columns", func(t *testing.T) {
		path := writeMultianno(t)

		_, records, err := parser.ReadChunkOfAnnotations(path, multiannoSampleNames, 0, 5)
		assert.Nil(t, err)

		assert.Equal(t, 10000, records[0]["start"])
		assert.Equal(t, 0.01, records[0]["1000g2015aug_all"])
		assert.Equal(t, "nonsynonymous SNV", records[0]["exonicfunc_knowngene"])
	})

	t.Run("should drop nastring columns", func(t *testing.T) {
		path := writeMultianno(t)

		_, records, err := parser.ReadChunkOfAnnotations(path, multiannoSampleNames, 0, 5)
		assert.Nil(t, err)

		_, hasFrequency := records[1]["1000g2015aug_all"]
		_, hasExonicFunc := records[1]["exonicfunc_knowngene"]
		assert.False(t, hasFrequency)
		assert.False(t, hasExonicFunc)
	})

	t.Run("should parse per sample genotype blocks", func(t *testing.T) {
		path := writeMultianno(t)

		_, records, err := parser.ReadChunkOfAnnotations(path, multiannoSampleNames, 0, 1)
		assert.Nil(t, err)

		samples := records[0]["samples"].([]map[string]interface{})
		assert.Equal(t, 2, len(samples))

		assert.Equal(t, "S1", samples[0]["sample_id"])
		assert.Equal(t, "0/1", samples[0]["genotype"])
		assert.Equal(t, 15, samples[0]["filter_passing_reads_count"])
		assert.Equal(t, []float64{50, 0, 40}, samples[0]["genotype_likelihoods"])

		assert.Equal(t, "S2", samples[1]["sample_id"])
		assert.Equal(t, "1/1", samples[1]["genotype"])

		subclass := records[0]["genotype_subclass_by_class"].(map[string]string)
		assert.Equal(t, map[string]string{"heterozygous": "reference"}, subclass)
	})

	t.Run("should skip samples without a call", func(t *testing.T) {
		path := writeMultianno(t)

		_, records, err := parser.ReadChunkOfAnnotations(path, multiannoSampleNames, 0, 5)
		assert.Nil(t, err)

		samples := records[1]["samples"].([]map[string]interface{})
		assert.Equal(t, 1, len(samples))
		assert.Equal(t, "S2", samples[0]["sample_id"])
	})

	t.Run("should complete mitochondrial identifiers", func(t *testing.T) {
		path := writeMultianno(t)

		ids, _, err := parser.ReadChunkOfAnnotations(path, multiannoSampleNames, 0, 5)
		assert.Nil(t, err)
		assert.Equal(t, "chrMT:g.146T>C", ids[2])
	})

	t.Run("should resolve multi allelic alts to the annotated allele", func(t *testing.T) {
		path := writeMultianno(t)

		ids, _, err := parser.ReadChunkOfAnnotations(path, multiannoSampleNames, 0, 5)
		assert.Nil(t, err)
		assert.Equal(t, "chr1:g.10003A>G", ids[3])
	})

	t.Run("should build indel identifiers from the embedded vcf columns", func(t *testing.T) {
		path := writeMultianno(t)

		ids, _, err := parser.ReadChunkOfAnnotations(path, multiannoSampleNames, 0, 5)
		assert.Nil(t, err)
		assert.Equal(t, "chr1:g.10005_10006del", ids[4])
	})

	t.Run("should read gzipped output transparently", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sample.hg19_multianno.txt.gz")

		file, err := os.Create(path)
		assert.Nil(t, err)
		gzWriter := gzip.NewWriter(file)
		_, err = gzWriter.Write([]byte(multiannoHeader + "\n" + strings.Join(multiannoRows, "\n") + "\n"))
		assert.Nil(t, err)
		assert.Nil(t, gzWriter.Close())
		assert.Nil(t, file.Close())

		ids, _, readErr := parser.ReadChunkOfAnnotations(path, multiannoSampleNames, 0, 5)
		assert.Nil(t, readErr)
		assert.Equal(t, 5, len(ids))
	})

	t.Run("should fail on a header without an otherinfo block", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.txt")
		err := os.WriteFile(path, []byte("Chr\tStart\tEnd\tRef\tAlt\n1\t1\t1\tA\tT\n"), 0644)
		assert.Nil(t, err)

		_, _, readErr := parser.ReadChunkOfAnnotations(path, multiannoSampleNames, 0, 5)
		assert.NotNil(t, readErr)
		assert.True(t, errors.Is(readErr, apperrors.ErrSourceRead))
	})

	t.Run("should fail on a missing file", func(t *testing.T) {
		_, _, readErr := parser.ReadChunkOfAnnotations("/nonexistent/annotations.txt", nil, 0, 5)
		assert.NotNil(t, readErr)
		assert.True(t, errors.Is(readErr, apperrors.ErrSourceRead))
	})
}
