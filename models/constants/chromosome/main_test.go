package chromosome

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidHumanChromosome(t *testing.T) {
	t.Run("should accept every canonical chromosome, prefixed or bare", func(t *testing.T) {
		for _, chrom := range ValidListOfHumanChromosomes() {
			assert.True(t, IsValidHumanChromosome(chrom), chrom)
			assert.True(t, IsValidHumanChromosome("chr"+chrom), "chr"+chrom)
		}
	})

	t.Run("should reject what no human genome carries", func(t *testing.T) {
		for _, chrom := range []string{"", "0", "24", "chr99", "Z", "chrXY"} {
			assert.False(t, IsValidHumanChromosome(chrom), chrom)
		}
	})
}

func TestStripChrPrefix(t *testing.T) {
	t.Run("should strip the prefix case-insensitively", func(t *testing.T) {
		assert.Equal(t, "22", StripChrPrefix("chr22"))
		assert.Equal(t, "MT", StripChrPrefix("CHRMT"))
		assert.Equal(t, "X", StripChrPrefix("X"))
	})
}
