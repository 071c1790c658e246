package annotationMode

import (
	"vapor/api/models/constants"
)

const (
	// Basic annotates straight from the source VCF with
	// remote lookups only.
	Basic constants.AnnotationMode = "basic"
	// Detailed pairs the remote lookups with a parsed
	// ANNOVAR output file.
	Detailed constants.AnnotationMode = "detailed"
)
