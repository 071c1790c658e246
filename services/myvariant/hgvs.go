package myvariant

import (
	"fmt"
	"strings"
)

/*
	HGVS-style genomic identifier construction from VCF-style
	(chrom, pos, ref, alt) tuples. These ids are what the
	MyVariant.info service keys its records on, so both the
	local parsers and the remote client have to agree on them.
*/

// FormatHGVS builds the genomic HGVS identifier for one variant.
// pos is the 1-based VCF position of the first ref base.
func FormatHGVS(chrom string, pos int, ref string, alt string) (string, error) {
	if len(chrom) >= 3 && strings.EqualFold(chrom[0:3], "chr") {
		chrom = chrom[3:]
	}

	switch {
	case len(ref) == 1 && len(alt) == 1:
		// SNV
		return fmt.Sprintf("chr%s:g.%d%s>%s", chrom, pos, ref, alt), nil

	case len(ref) > 1 && len(alt) == 1:
		if ref[0:1] == alt {
			// deletion anchored on a shared leading base
			start := pos + 1
			end := pos + len(ref) - 1
			if start == end {
				return fmt.Sprintf("chr%s:g.%ddel", chrom, start), nil
			}
			return fmt.Sprintf("chr%s:g.%d_%ddel", chrom, start, end), nil
		}
		end := pos + len(ref) - 1
		return fmt.Sprintf("chr%s:g.%d_%ddelins%s", chrom, pos, end, alt), nil

	case len(ref) == 1 && len(alt) > 1:
		if alt[0:1] == ref {
			// insertion after the shared leading base
			return fmt.Sprintf("chr%s:g.%d_%dins%s", chrom, pos, pos+1, alt[1:]), nil
		}
		return fmt.Sprintf("chr%s:g.%ddelins%s", chrom, pos, alt), nil

	case len(ref) > 1 && len(alt) > 1:
		if ref[0] == alt[0] {
			// shared leading bases get trimmed before retrying
			normChrom, normPos, normRef, normAlt, err := normalizeVcf(chrom, pos, ref, alt)
			if err != nil {
				return "", err
			}
			return FormatHGVS(normChrom, normPos, normRef, normAlt)
		}
		end := pos + len(ref) - 1
		return fmt.Sprintf("chr%s:g.%d_%ddelins%s", chrom, pos, end, alt), nil

	default:
		return "", fmt.Errorf("cannot convert (%s, %d, %s, %s) into an hgvs id", chrom, pos, ref, alt)
	}
}

// normalizeVcf trims bases shared from the left when both
// alleles are longer than one base, fixing pos to match.
// TC/TG becomes C/G, CTTTT/CT becomes TTTT/T.
func normalizeVcf(chrom string, pos int, ref string, alt string) (string, int, string, string, error) {
	shared := 0
	limit := len(ref)
	if len(alt) > limit {
		limit = len(alt)
	}
	for shared = 0; shared < limit; shared++ {
		if shared >= len(ref) || shared >= len(alt) || ref[shared] != alt[shared] {
			break
		}
	}

	if shared >= len(ref) && shared >= len(alt) {
		return "", 0, "", "", fmt.Errorf("ref and alt cannot be the same: (%s, %d, %s, %s)", chrom, pos, ref, alt)
	}

	if shared >= len(ref) || shared >= len(alt) {
		// one allele is a prefix of the other, keep the last
		// shared base as the del/ins anchor
		return chrom, pos + shared - 1, ref[shared-1:], alt[shared-1:], nil
	}
	return chrom, pos + shared, ref[shared:], alt[shared:], nil
}

// CompleteChromosome rewrites mitochondrial identifiers onto the
// chrMT naming MyVariant.info expects. VCFs and ANNOVAR rows
// spell the chromosome chrM, the service spells it chrMT.
// Applying it twice is the same as applying it once.
func CompleteChromosome(id string) string {
	if !strings.Contains(id, "M") {
		return id
	}
	colonIdx := strings.Index(id, ":")
	if colonIdx < 0 {
		return id
	}
	chromPart := id[0:colonIdx]
	restPart := id[colonIdx+1:]
	if !strings.Contains(chromPart, "MT") {
		chromPart = "chrMT"
	}
	return chromPart + ":" + restPart
}
