package constants

/*
	Defines a set of base level
	constants and enums to be used
	throughout Vapor and it's
	associated services.
*/
type GenomeBuild string
type AnnotationMode string

type SortDirection string
