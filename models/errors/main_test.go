package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorTaxonomy(t *testing.T) {
	t.Run("should keep constructor errors matchable by class", func(t *testing.T) {
		assert.True(t, errors.Is(NewSourceReadError("missing %s", "file.vcf"), ErrSourceRead))
		assert.True(t, errors.Is(NewTransientServiceError("timeout"), ErrTransientService))
		assert.True(t, errors.Is(NewStoreWriteError("rejected"), ErrStoreWrite))
	})

	t.Run("should carry the mismatch details and unwrap to its class", func(t *testing.T) {
		mismatch := &IdentifierMismatchError{Index: 3, Local: "chr1:g.100A>T", Remote: "chr1:g.101A>T"}

		assert.True(t, errors.Is(mismatch, ErrIdentifierMismatch))
		assert.Contains(t, mismatch.Error(), "record 3")
		assert.Contains(t, mismatch.Error(), "chr1:g.100A>T")
	})

	t.Run("should let a job error unwrap to the chunk's cause", func(t *testing.T) {
		jobErr := &JobError{ChunkIndex: 2, Mode: "basic", Err: NewTransientServiceError("lookup failed")}

		assert.True(t, errors.Is(jobErr, ErrTransientService))
		assert.Contains(t, jobErr.Error(), "chunk 2")
		assert.Contains(t, jobErr.Error(), "basic")
	})
}

func TestHTTPStatusCode(t *testing.T) {
	t.Run("should map every failure class to its status", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, HTTPStatusCode(ErrInvalidInput))
		assert.Equal(t, http.StatusNotFound, HTTPStatusCode(fmt.Errorf("run abc: %w", ErrRunNotFound)))
		assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatusCode(NewSourceReadError("bad header")))
		assert.Equal(t, http.StatusBadGateway, HTTPStatusCode(NewTransientServiceError("503")))
		assert.Equal(t, http.StatusInternalServerError, HTTPStatusCode(NewStoreWriteError("rejected")))
		assert.Equal(t, http.StatusInternalServerError, HTTPStatusCode(&IdentifierMismatchError{}))
	})

	t.Run("should fall back to 500 for unclassified errors", func(t *testing.T) {
		assert.Equal(t, http.StatusInternalServerError, HTTPStatusCode(errors.New("some other failure")))
	})
}
