package jobs

import (
	"vapor/api/models/constants"
)

// AnnotationJob describes one chunk of the input to annotate.
// Workers receive these over a channel; every field is named so
// call sites never juggle positional parameters.
type AnnotationJob struct {
	ChunkIndex  int
	ChunkSize   int
	Mode        constants.AnnotationMode
	GenomeBuild constants.GenomeBuild

	// SourcePath is the file the chunk reads: the vcf itself in
	// basic mode, the annotation tool's tabular output in detailed
	// mode. SampleNames ride along in detailed mode only.
	SourcePath  string
	SampleNames []string

	Database   string
	Collection string

	Verbose bool
}

// JobResult pairs a job with its outcome. Every queued job
// produces exactly one result, failed or not, so no chunk can
// fail silently.
type JobResult struct {
	Job       AnnotationJob
	Documents int
	Err       error
}
