package runs

import (
	"github.com/google/uuid"

	"vapor/api/models/constants"
)

type State string

const (
	Queued  State = "Queued"
	Running State = "Running"
	Done    State = "Done"
	Error   State = "Error"
)

// ChunkFailure records one failed chunk of a run. Failures are
// collected, never dropped: a run with any failure finishes in
// state Error with the full list attached.
type ChunkFailure struct {
	ChunkIndex int    `json:"chunkIndex"`
	Message    string `json:"message"`
}

type RunRequest struct {
	Id          uuid.UUID                `json:"id"`
	VcfPath     string                   `json:"vcfPath"`
	AnnovarPath string                   `json:"annovarPath,omitempty"`
	Mode        constants.AnnotationMode `json:"mode"`
	GenomeBuild constants.GenomeBuild    `json:"genomeBuild"`
	Database    string                   `json:"database"`
	Collection  string                   `json:"collection"`

	State   State  `json:"state"`
	Message string `json:"message"`

	TotalChunks     int            `json:"totalChunks"`
	CompletedChunks int            `json:"completedChunks"`
	StoredDocuments int            `json:"storedDocuments"`
	Failures        []ChunkFailure `json:"failures,omitempty"`

	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type RunResponseDTO struct {
	Id      uuid.UUID `json:"id"`
	State   State     `json:"state"`
	Message string    `json:"message"`
}
