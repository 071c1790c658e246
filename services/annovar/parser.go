package annovar

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	apperrors "vapor/api/models/errors"
	"vapor/api/services/myvariant"
	"vapor/api/utils"
)

/*
	Reader for table_annovar multianno TXT output produced with
	-vcfinput. Each data row carries the named annotation columns
	followed by Otherinfo: zygosity, quality and depth, then the
	original VCF line the row came from. The embedded VCF columns
	are what variant identifiers are built from, because ANNOVAR
	shifts indel coordinates in its own Chr/Start/End columns.
*/

// zygosity, quality and read depth come before the embedded VCF line
const vcfEmbeddedOffset = 3

var intColumns = map[string]bool{
	"start": true,
	"end":   true,
}

var floatColumns = map[string]bool{
	"1000g2015aug_all":     true,
	"esp6500siv2_all":      true,
	"esp6500siv2_ea":       true,
	"esp6500siv2_aa":       true,
	"popfreq_all_20150413": true,
	"nci60":                true,
}

type (
	AnnovarTxtParser struct {
		Logger *zap.Logger
	}
)

func NewAnnovarTxtParser(logger *zap.Logger) *AnnovarTxtParser {
	return &AnnovarTxtParser{
		Logger: logger.Named("annovar"),
	}
}

// ReadChunkOfAnnotations parses the data rows of one chunk,
// skipping the single header line. Row indices are relative to
// the data rows: chunk N covers [N*chunkSize, (N+1)*chunkSize).
// A chunk that starts past the end of the file returns zero
// records, which callers treat as a completed no-op.
func (p *AnnovarTxtParser) ReadChunkOfAnnotations(annovarPath string, sampleNames []string, chunkIndex int, chunkSize int) ([]string, []map[string]interface{}, error) {
	reader, err := utils.OpenMaybeGzip(annovarPath)
	if err != nil {
		return nil, nil, apperrors.NewSourceReadError("opening annovar output %s: %v", annovarPath, err)
	}
	defer reader.Close()

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	if !scanner.Scan() {
		if scanErr := scanner.Err(); scanErr != nil {
			return nil, nil, apperrors.NewSourceReadError("reading annovar header from %s: %v", annovarPath, scanErr)
		}
		return nil, nil, apperrors.NewSourceReadError("annovar output %s is empty", annovarPath)
	}

	columnNames, otherInfoIdx, err := parseHeader(scanner.Text())
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", annovarPath, err)
	}

	chunkStart := chunkIndex * chunkSize
	chunkEnd := chunkStart + chunkSize

	var hgvsIds []string
	var records []map[string]interface{}

	rowIdx := 0
	for scanner.Scan() {
		if rowIdx >= chunkEnd {
			break
		}
		if rowIdx < chunkStart {
			rowIdx++
			continue
		}
		rowIdx++

		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		hgvsId, record, rowErr := p.parseRow(line, columnNames, otherInfoIdx, sampleNames)
		if rowErr != nil {
			return nil, nil, fmt.Errorf("row %d of %s: %w", rowIdx, annovarPath, rowErr)
		}

		hgvsIds = append(hgvsIds, hgvsId)
		records = append(records, record)
	}
	if scanErr := scanner.Err(); scanErr != nil {
		return nil, nil, apperrors.NewSourceReadError("reading %s: %v", annovarPath, scanErr)
	}

	if len(records) == 0 {
		p.Logger.Debug("chunk past end of annovar output",
			zap.Int("chunkIndex", chunkIndex),
			zap.String("path", annovarPath))
	}

	return hgvsIds, records, nil
}

// parseHeader normalizes column names (lowercased, dots to
// underscores) and locates the start of the Otherinfo block.
func parseHeader(headerLine string) ([]string, int, error) {
	rawNames := strings.Split(headerLine, "\t")

	otherInfoIdx := -1
	columnNames := make([]string, 0, len(rawNames))
	for idx, rawName := range rawNames {
		if strings.HasPrefix(strings.ToLower(rawName), "otherinfo") {
			otherInfoIdx = idx
			break
		}
		normalized := strings.ToLower(strings.ReplaceAll(rawName, ".", "_"))
		columnNames = append(columnNames, normalized)
	}
	if otherInfoIdx < 0 {
		return nil, 0, apperrors.NewSourceReadError("header has no Otherinfo block, was table_annovar run with -vcfinput?")
	}
	return columnNames, otherInfoIdx, nil
}

func (p *AnnovarTxtParser) parseRow(line string, columnNames []string, otherInfoIdx int, sampleNames []string) (string, map[string]interface{}, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < otherInfoIdx+vcfEmbeddedOffset+8 {
		return "", nil, apperrors.NewSourceReadError("expected at least %d columns, found %d", otherInfoIdx+vcfEmbeddedOffset+8, len(fields))
	}

	record := make(map[string]interface{}, len(columnNames)+4)
	for idx, columnName := range columnNames {
		if fields[idx] == "." {
			// nastring, column absent for this row
			continue
		}
		record[columnName] = convertColumn(columnName, fields[idx])
	}

	vcfFields := fields[otherInfoIdx+vcfEmbeddedOffset:]

	vcfPos, err := strconv.Atoi(vcfFields[1])
	if err != nil {
		return "", nil, apperrors.NewSourceReadError("embedded VCF position %q is not an integer", vcfFields[1])
	}
	vcfRef := vcfFields[3]
	vcfAlt := pickAltAllele(stringColumn(record, "alt"), vcfFields[4])

	hgvsId, err := myvariant.FormatHGVS(vcfFields[0], vcfPos, vcfRef, vcfAlt)
	if err != nil {
		return "", nil, apperrors.NewSourceReadError("building identifier: %v", err)
	}
	hgvsId = myvariant.CompleteChromosome(hgvsId)
	record["hgvs_id"] = hgvsId

	if len(vcfFields) > 9 {
		samples := parseSampleBlocks(vcfFields[8], vcfFields[9:], sampleNames)
		if len(samples) > 0 {
			record["samples"] = samples
			if subclass := genotypeSubclassByClass(samples[0]); subclass != nil {
				record["genotype_subclass_by_class"] = subclass
			}
		}
	}

	return hgvsId, record, nil
}

func convertColumn(columnName string, value string) interface{} {
	if intColumns[columnName] {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	if floatColumns[columnName] {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return value
}

func stringColumn(record map[string]interface{}, columnName string) string {
	if value, ok := record[columnName].(string); ok {
		return value
	}
	return ""
}

// pickAltAllele resolves multi-allelic VCF ALT fields to the
// allele this row annotates. ANNOVAR's own alt column matches
// one of the comma separated alleles except for indels, where
// the first allele is kept.
func pickAltAllele(annovarAlt string, vcfAlt string) string {
	if !strings.Contains(vcfAlt, ",") {
		return vcfAlt
	}
	alleles := strings.Split(vcfAlt, ",")
	for _, allele := range alleles {
		if allele == annovarAlt {
			return allele
		}
	}
	return alleles[0]
}

// parseSampleBlocks pairs each genotype column with its sample
// name and pulls out the fields the pipeline keeps: GT, summed
// AD and PL.
func parseSampleBlocks(format string, sampleFields []string, sampleNames []string) []map[string]interface{} {
	formatKeys := strings.Split(format, ":")

	samples := make([]map[string]interface{}, 0, len(sampleFields))
	for sampleIdx, sampleField := range sampleFields {
		values := strings.Split(sampleField, ":")

		sampleName := fmt.Sprintf("sample_%d", sampleIdx+1)
		if sampleIdx < len(sampleNames) {
			sampleName = sampleNames[sampleIdx]
		}

		sample := map[string]interface{}{
			"sample_id": sampleName,
		}
		for keyIdx, formatKey := range formatKeys {
			if keyIdx >= len(values) {
				break
			}
			value := values[keyIdx]
			switch formatKey {
			case "GT":
				sample["genotype"] = value
			case "AD":
				if readsCount, ok := sumAlleleDepths(value); ok {
					sample["filter_passing_reads_count"] = readsCount
				}
			case "PL":
				if likelihoods := parseLikelihoods(value); len(likelihoods) > 0 {
					sample["genotype_likelihoods"] = likelihoods
				}
			}
		}

		genotype, _ := sample["genotype"].(string)
		if genotype == "" || genotype == "./." || genotype == ".|." || genotype == "." {
			// no call for this sample
			continue
		}
		samples = append(samples, sample)
	}
	return samples
}

func sumAlleleDepths(value string) (int, bool) {
	total := 0
	for _, token := range strings.Split(value, ",") {
		depth, err := strconv.Atoi(token)
		if err != nil {
			return 0, false
		}
		total += depth
	}
	return total, true
}

func parseLikelihoods(value string) []float64 {
	tokens := strings.Split(value, ",")
	likelihoods := make([]float64, 0, len(tokens))
	for _, token := range tokens {
		parsed, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return nil
		}
		likelihoods = append(likelihoods, parsed)
	}
	return likelihoods
}

// genotypeSubclassByClass classifies the genotype of a sample
// into {class: subclass}: homozygous reference/alt when both
// alleles agree, heterozygous reference when the reference
// allele is present, heterozygous compound when two different
// alternates pair up.
func genotypeSubclassByClass(sample map[string]interface{}) map[string]string {
	genotype, _ := sample["genotype"].(string)
	if genotype == "" {
		return nil
	}

	separator := "/"
	if strings.Contains(genotype, "|") {
		separator = "|"
	}
	alleles := strings.Split(genotype, separator)
	if len(alleles) != 2 {
		return nil
	}

	left, right := alleles[0], alleles[1]
	if left == "." || right == "." {
		return nil
	}

	if left == right {
		if left == "0" {
			return map[string]string{"homozygous": "reference"}
		}
		return map[string]string{"homozygous": "alt"}
	}
	if left == "0" || right == "0" {
		return map[string]string{"heterozygous": "reference"}
	}
	return map[string]string{"heterozygous": "compound"}
}
