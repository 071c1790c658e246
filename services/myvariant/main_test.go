package myvariant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"vapor/api/models"
	genomeBuild "vapor/api/models/constants/genome-build"
	apperrors "vapor/api/models/errors"
)

func newTestService(serverUrl string, maxAttempts int) *MyVariantService {
	cfg := &models.Config{}
	cfg.MyVariant.Url = serverUrl
	cfg.MyVariant.MaxAttempts = maxAttempts
	cfg.MyVariant.TimeoutSeconds = 5

	svc := NewMyVariantService(cfg, zap.NewNop())
	// keep test retries fast
	svc.InitialRetryInterval = time.Millisecond
	return svc
}

// respondWithHits writes one service hit per queried id, each
// carrying the bookkeeping keys a real response has.
func respondWithHits(w http.ResponseWriter, r *http.Request) {
	r.ParseForm()
	ids := strings.Split(r.FormValue("ids"), ",")

	hits := make([]map[string]interface{}, 0, len(ids))
	for _, id := range ids {
		hits = append(hits, map[string]interface{}{
			"_id":   id,
			"query": id,
			"cadd":  map[string]interface{}{"phred": 12.5},
		})
	}
	json.NewEncoder(w).Encode(hits)
}

func TestGetAnnotations(t *testing.T) {
	t.Run("should scrub service keys and pin the queried id", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(respondWithHits))
		defer server.Close()

		svc := newTestService(server.URL, 1)
		ids := []string{"chr1:g.100A>T", "chr1:g.200C>G"}

		records, err := svc.GetAnnotations(context.Background(), ids, genomeBuild.HG19, false)
		assert.Nil(t, err)
		assert.Equal(t, len(ids), len(records))

		for idx, record := range records {
			// one record per queried id, in query order
			assert.Equal(t, ids[idx], record["hgvs_id"])

			// bookkeeping keys never reach the pipeline
			_, hasServiceId := record["_id"]
			_, hasQuery := record["query"]
			assert.False(t, hasServiceId)
			assert.False(t, hasQuery)

			// annotation payload survives
			assert.NotNil(t, record["cadd"])
		}
	})

	t.Run("should pass notfound hits through", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.ParseForm()
			ids := strings.Split(r.FormValue("ids"), ",")
			hits := []map[string]interface{}{
				{"query": ids[0], "notfound": true},
			}
			json.NewEncoder(w).Encode(hits)
		}))
		defer server.Close()

		svc := newTestService(server.URL, 1)

		records, err := svc.GetAnnotations(context.Background(), []string{"chr1:g.999A>T"}, genomeBuild.HG19, false)
		assert.Nil(t, err)
		assert.Equal(t, 1, len(records))
		assert.Equal(t, "chr1:g.999A>T", records[0]["hgvs_id"])
		assert.Equal(t, true, records[0]["notfound"])
	})

	t.Run("should retry transient failures until one succeeds", func(t *testing.T) {
		attempts := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			if attempts < 3 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			respondWithHits(w, r)
		}))
		defer server.Close()

		svc := newTestService(server.URL, 5)

		records, err := svc.GetAnnotations(context.Background(), []string{"chr1:g.100A>T"}, genomeBuild.HG19, false)
		assert.Nil(t, err)
		assert.Equal(t, 3, attempts)
		assert.Equal(t, 1, len(records))
	})

	t.Run("should give up after the attempt budget", func(t *testing.T) {
		attempts := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		svc := newTestService(server.URL, 3)

		_, err := svc.GetAnnotations(context.Background(), []string{"chr1:g.100A>T"}, genomeBuild.HG19, false)
		assert.NotNil(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrTransientService))
		assert.Equal(t, 3, attempts)
	})

	t.Run("should not retry client rejections", func(t *testing.T) {
		attempts := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		svc := newTestService(server.URL, 5)

		_, err := svc.GetAnnotations(context.Background(), []string{"chr1:g.100A>T"}, genomeBuild.HG19, false)
		assert.NotNil(t, err)
		assert.False(t, errors.Is(err, apperrors.ErrTransientService))
		assert.Equal(t, 1, attempts)
	})

	t.Run("should keep the first hit when the service duplicates one", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.ParseForm()
			ids := strings.Split(r.FormValue("ids"), ",")
			hits := []map[string]interface{}{
				{"query": ids[0], "_id": ids[0], "dbsnp": map[string]interface{}{"rsid": "rs1"}},
				{"query": ids[0], "_id": ids[0], "dbsnp": map[string]interface{}{"rsid": "rs2"}},
			}
			json.NewEncoder(w).Encode(hits)
		}))
		defer server.Close()

		svc := newTestService(server.URL, 1)

		records, err := svc.GetAnnotations(context.Background(), []string{"chr1:g.100A>T"}, genomeBuild.HG19, false)
		assert.Nil(t, err)
		assert.Equal(t, 1, len(records))

		dbsnp := records[0]["dbsnp"].(map[string]interface{})
		assert.Equal(t, "rs1", dbsnp["rsid"])
	})

	t.Run("should return one record per queried id even for duplicates", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(respondWithHits))
		defer server.Close()

		svc := newTestService(server.URL, 1)
		ids := []string{"chr1:g.100A>T", "chr1:g.200C>G", "chr1:g.100A>T"}

		records, err := svc.GetAnnotations(context.Background(), ids, genomeBuild.HG19, false)
		assert.Nil(t, err)
		assert.Equal(t, 3, len(records))
		assert.Equal(t, records[0]["hgvs_id"], records[2]["hgvs_id"])
		assert.Equal(t, "chr1:g.200C>G", records[1]["hgvs_id"])
	})

	t.Run("should fail when the response is missing a queried id", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode([]map[string]interface{}{})
		}))
		defer server.Close()

		svc := newTestService(server.URL, 1)

		_, err := svc.GetAnnotations(context.Background(), []string{"chr1:g.100A>T"}, genomeBuild.HG19, false)
		assert.NotNil(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrTransientService))
	})

	t.Run("should short circuit on an empty id list", func(t *testing.T) {
		hit := false
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hit = true
		}))
		defer server.Close()

		svc := newTestService(server.URL, 1)

		records, err := svc.GetAnnotations(context.Background(), []string{}, genomeBuild.HG19, false)
		assert.Nil(t, err)
		assert.Equal(t, 0, len(records))
		assert.False(t, hit)
	})
}
