package dtos

import (
	"time"

	"vapor/api/models/constants"
	"vapor/api/models/runs"
)

type GeneralErrorResponseDto struct {
	Code      int            `json:"code"`
	Message   string         `json:"message"`
	Timestamp time.Time      `json:"timestamp"`
	Errors    []GeneralError `json:"errors"`
}

type GeneralError struct {
	Message string `json:"message"`
}

type AnnotationsResponseDTO struct {
	Status  int                      `json:"status"`
	Message string                   `json:"message"`
	Count   int                      `json:"count"`
	Results []map[string]interface{} `json:"results"`
}

type CountResponseDTO struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Count   int    `json:"count"`
}

type DeletedResponseDTO struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Deleted int    `json:"deleted"`
}

type SamplesResponseDTO struct {
	Status  int      `json:"status"`
	Message string   `json:"message"`
	Count   int      `json:"count"`
	Samples []string `json:"samples"`
}

type RunsResponseDTO struct {
	Status  int               `json:"status"`
	Message string            `json:"message"`
	Runs    []runs.RunRequest `json:"runs"`
}

type OverviewResponseDTO struct {
	Chromosomes      map[string]interface{} `json:"chromosomes"`
	Genes            map[string]interface{} `json:"genes"`
	ExonicFunctions  map[string]interface{} `json:"exonicFunctions"`
	ClinicalSeverity map[string]interface{} `json:"clinicalSeverity"`
	SampleIds        map[string]interface{} `json:"sampleIds"`
}

type RunRequestDTO struct {
	VcfPath     string `json:"vcfPath"`
	AnnovarPath string `json:"annovarPath,omitempty"`
	RunAnnovar  bool   `json:"runAnnovar,omitempty"`
	GenomeBuild string `json:"genomeBuild,omitempty"`
	Database    string `json:"database"`
	Collection  string `json:"collection"`
	Workers     int    `json:"workers,omitempty"`
	ChunkSize   int    `json:"chunkSize,omitempty"`
	Verbose     bool   `json:"verbose,omitempty"`
}

// ValidatedRunRequest is a RunRequestDTO the handler has already
// checked over: Mode is derived from the submitted paths and Build
// is the cast genome build with the configured default applied.
type ValidatedRunRequest struct {
	RunRequestDTO
	Mode  constants.AnnotationMode
	Build constants.GenomeBuild
}
