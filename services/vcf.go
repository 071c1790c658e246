package services

import (
	"github.com/brentp/vcfgo"
	"go.uber.org/zap"

	apperrors "vapor/api/models/errors"
	"vapor/api/services/myvariant"
	"vapor/api/utils"
)

// VcfSampleNames returns the sample columns of a vcf header in
// file order. Detailed-mode jobs need them to key per-sample
// genotype blocks.
func VcfSampleNames(vcfPath string) ([]string, error) {
	reader, err := utils.OpenMaybeGzip(vcfPath)
	if err != nil {
		return nil, apperrors.NewSourceReadError("opening %s: %s", vcfPath, err)
	}
	defer reader.Close()

	vcfReader, vcfErr := vcfgo.NewReader(reader, true)
	if vcfErr != nil {
		return nil, apperrors.NewSourceReadError("reading vcf header of %s: %s", vcfPath, vcfErr)
	}

	return vcfReader.Header.SampleNames, nil
}

// ExtractChunkVariantIds reads the chunk's window of vcf records and
// derives one canonical identifier per record. Multi-allelic sites
// contribute their first alternate allele. A window reaching past the
// last record is clipped silently.
func ExtractChunkVariantIds(vcfPath string, chunkIndex int, chunkSize int, logger *zap.Logger) ([]string, error) {
	reader, err := utils.OpenMaybeGzip(vcfPath)
	if err != nil {
		return nil, apperrors.NewSourceReadError("opening %s: %s", vcfPath, err)
	}
	defer reader.Close()

	vcfReader, vcfErr := vcfgo.NewReader(reader, true)
	if vcfErr != nil {
		return nil, apperrors.NewSourceReadError("reading vcf header of %s: %s", vcfPath, vcfErr)
	}

	start := chunkIndex * chunkSize
	end := start + chunkSize

	variantIds := []string{}
	for recordIndex := 0; recordIndex < end; recordIndex++ {
		variant := vcfReader.Read()
		if variant == nil {
			break
		}
		if recordIndex < start {
			continue
		}

		alternates := variant.Alt()
		if len(alternates) == 0 {
			logger.Warn("vcf record has no alternate allele, skipping",
				zap.String("chromosome", variant.Chromosome),
				zap.Uint64("position", variant.Pos))
			continue
		}

		variantId, fmtErr := myvariant.FormatHGVS(variant.Chromosome, int(variant.Pos), variant.Reference, alternates[0])
		if fmtErr != nil {
			logger.Warn("vcf record has no hgvs form, skipping",
				zap.String("chromosome", variant.Chromosome),
				zap.Uint64("position", variant.Pos),
				zap.Error(fmtErr))
			continue
		}

		variantIds = append(variantIds, myvariant.CompleteChromosome(variantId))
	}

	// the reader accumulates recoverable parse complaints, none of
	// which affect the fields used above
	if readerErr := vcfReader.Error(); readerErr != nil {
		logger.Debug("vcf reader reported recoverable issues", zap.Error(readerErr))
	}

	return variantIds, nil
}
