package genomeBuild

import (
	"strings"

	"vapor/api/models/constants"
)

const (
	Unknown constants.GenomeBuild = "Unknown"

	HG19 constants.GenomeBuild = "hg19"
	HG38 constants.GenomeBuild = "hg38"
)

// Default is what annotation falls back to when a request
// leaves the build unspecified, matching the reference
// databases most installations carry.
const Default = HG19

func CastToGenomeBuild(text string) constants.GenomeBuild {
	switch strings.ToLower(text) {
	case "hg19":
		return HG19
	case "grch37":
		return HG19
	case "hg38":
		return HG38
	case "grch38":
		return HG38
	default:
		return Unknown
	}
}

func IsKnownGenomeBuild(text string) bool {
	// attempt to cast to genomeBuild and
	// return if unknown build
	return CastToGenomeBuild(text) != Unknown
}
