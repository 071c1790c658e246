package datasetService

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"vapor/api/models"
	esRepo "vapor/api/repositories/elasticsearch"
	"vapor/api/utils"
)

func newTestDatasetService(t *testing.T, serverUrl string) *DatasetService {
	cfg := &models.Config{}
	cfg.Elasticsearch.Url = serverUrl

	es, esErr := utils.CreateEsConnection(cfg, zap.NewNop())
	assert.Nil(t, esErr)

	return NewDatasetService(cfg, es, zap.NewNop())
}

func fakeEsServer(responseBody string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Write([]byte(responseBody))
	}))
}

func TestGetAnnotations(t *testing.T) {
	t.Run("should unwrap each hit to its source document", func(t *testing.T) {
		server := fakeEsServer(`{
			"hits": {
				"total": {"value": 2},
				"hits": [
					{"_id": "doc-1", "_source": {"hgvs_id": "chr1:g.100A>T", "chr": "chr1"}},
					{"_id": "doc-2", "_source": {"hgvs_id": "chr2:g.200C>G", "chr": "chr2"}}
				]
			}
		}`)
		defer server.Close()

		service := newTestDatasetService(t, server.URL)

		annotations, err := service.GetAnnotations(context.Background(), "db", "coll", esRepo.AnnotationSearchParams{})
		assert.Nil(t, err)
		assert.Equal(t, 2, len(annotations))
		assert.Equal(t, "chr1:g.100A>T", annotations[0]["hgvs_id"])
		assert.Equal(t, "chr2", annotations[1]["chr"])
	})

	t.Run("should come up empty on an empty result", func(t *testing.T) {
		server := fakeEsServer(`{"hits": {"total": {"value": 0}, "hits": []}}`)
		defer server.Close()

		service := newTestDatasetService(t, server.URL)

		annotations, err := service.GetAnnotations(context.Background(), "db", "coll", esRepo.AnnotationSearchParams{})
		assert.Nil(t, err)
		assert.Equal(t, 0, len(annotations))
	})
}

func TestCountAnnotations(t *testing.T) {
	t.Run("should surface the count field", func(t *testing.T) {
		server := fakeEsServer(`{"count": 7}`)
		defer server.Close()

		service := newTestDatasetService(t, server.URL)

		count, err := service.CountAnnotations(context.Background(), "db", "coll", esRepo.AnnotationSearchParams{})
		assert.Nil(t, err)
		assert.Equal(t, 7, count)
	})

	t.Run("should fail when the count field is missing", func(t *testing.T) {
		server := fakeEsServer(`{}`)
		defer server.Close()

		service := newTestDatasetService(t, server.URL)

		_, err := service.CountAnnotations(context.Background(), "db", "coll", esRepo.AnnotationSearchParams{})
		assert.NotNil(t, err)
	})
}

func TestDeleteAnnotations(t *testing.T) {
	t.Run("should report how many documents were dropped", func(t *testing.T) {
		var capturedPath string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			capturedPath = r.URL.Path
			w.Header().Set("X-Elastic-Product", "Elasticsearch")
			w.Write([]byte(`{"took": 12, "deleted": 4, "failures": []}`))
		}))
		defer server.Close()

		service := newTestDatasetService(t, server.URL)

		deleted, err := service.DeleteAnnotations(context.Background(), "db", "coll")
		assert.Nil(t, err)
		assert.Equal(t, 4, deleted)
		assert.Equal(t, "/annotations--db--coll/_delete_by_query", capturedPath)
	})

	t.Run("should fail when the deleted count is missing", func(t *testing.T) {
		server := fakeEsServer(`{"took": 3}`)
		defer server.Close()

		service := newTestDatasetService(t, server.URL)

		_, err := service.DeleteAnnotations(context.Background(), "db", "coll")
		assert.NotNil(t, err)
	})
}

func TestGetDistinctSampleIds(t *testing.T) {
	t.Run("should sort the distinct sample ids", func(t *testing.T) {
		server := fakeEsServer(`{
			"aggregations": {
				"samples": {
					"sampleIds": {
						"buckets": [
							{"key": "S3", "doc_count": 4},
							{"key": "S1", "doc_count": 9},
							{"key": "S2", "doc_count": 2}
						]
					}
				}
			}
		}`)
		defer server.Close()

		service := newTestDatasetService(t, server.URL)

		sampleIds, err := service.GetDistinctSampleIds(context.Background(), "db", "coll")
		assert.Nil(t, err)
		assert.Equal(t, []string{"S1", "S2", "S3"}, sampleIds)
	})

	t.Run("should come up empty without sample aggregations", func(t *testing.T) {
		server := fakeEsServer(`{"aggregations": {}}`)
		defer server.Close()

		service := newTestDatasetService(t, server.URL)

		sampleIds, err := service.GetDistinctSampleIds(context.Background(), "db", "coll")
		assert.Nil(t, err)
		assert.Equal(t, 0, len(sampleIds))
	})
}

func TestGetAnnotationsOverview(t *testing.T) {
	t.Run("should gather every distribution", func(t *testing.T) {
		// one response body serves all five aggregations: the keyword
		// extractors read items.buckets, the sample extractor reads
		// samples.sampleIds.buckets
		server := fakeEsServer(`{
			"aggregations": {
				"items": {"buckets": [{"key": "chr1", "doc_count": 5}, {"key": "chr2", "doc_count": 3}]},
				"samples": {"sampleIds": {"buckets": [{"key": "S1", "doc_count": 2}]}}
			}
		}`)
		defer server.Close()

		service := newTestDatasetService(t, server.URL)

		overview := service.GetAnnotationsOverview(context.Background(), "db", "coll")

		assert.Equal(t, float64(5), overview.Chromosomes["chr1"])
		assert.Equal(t, float64(3), overview.Chromosomes["chr2"])
		assert.Equal(t, 2, len(overview.Genes))
		assert.Equal(t, 2, len(overview.ExonicFunctions))
		assert.Equal(t, 2, len(overview.ClinicalSeverity))
		assert.Equal(t, float64(2), overview.SampleIds["S1"])
	})

	t.Run("should degrade per key when the store errors out", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Elastic-Product", "Elasticsearch")
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error": "boom"}`))
		}))
		defer server.Close()

		service := newTestDatasetService(t, server.URL)

		overview := service.GetAnnotationsOverview(context.Background(), "db", "coll")
		assert.NotNil(t, overview.Chromosomes["error"])
		assert.NotNil(t, overview.SampleIds["error"])
	})
}

func TestWriteAnnotationsCsv(t *testing.T) {
	t.Run("should write a header and one row per document", func(t *testing.T) {
		server := fakeEsServer(`{
			"hits": {
				"total": {"value": 2},
				"hits": [
					{"_source": {
						"hgvs_id": "chr1:g.100A>T", "chr": "chr1", "start": 100, "end": 100,
						"ref": "A", "alt": "T", "func_knowngene": "exonic", "gene_knowngene": "GENE1",
						"exonicfunc_knowngene": "nonsynonymous SNV", "cytoband": "1p36.33",
						"1000g2015aug_all": 0.01, "esp6500siv2_all": 0.02, "cosmic70": "ID=COSM100", "nci60": 0.05
					}},
					{"_source": {
						"hgvs_id": "chr2:g.200C>G", "chr": "chr2", "start": 200, "end": 200,
						"ref": "C", "alt": "G", "func_knowngene": "intronic", "gene_knowngene": "GENE2",
						"exonicfunc_knowngene": "", "cytoband": "2q37.3",
						"1000g2015aug_all": 0.2, "esp6500siv2_all": 0.3, "cosmic70": "", "nci60": 0.0
					}}
				]
			}
		}`)
		defer server.Close()

		service := newTestDatasetService(t, server.URL)

		var buf bytes.Buffer
		rows, err := service.WriteAnnotationsCsv(context.Background(), &buf, "db", "coll", esRepo.AnnotationSearchParams{})
		assert.Nil(t, err)
		assert.Equal(t, 2, rows)

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		assert.Equal(t, 3, len(lines))
		assert.True(t, strings.HasPrefix(lines[0], "hgvs_id,chr,start,end,ref,alt"))
		assert.Contains(t, lines[1], "chr1:g.100A>T")
		assert.Contains(t, lines[2], "chr2:g.200C>G")
	})

	t.Run("should write nothing for an empty result", func(t *testing.T) {
		server := fakeEsServer(`{"hits": {"total": {"value": 0}, "hits": []}}`)
		defer server.Close()

		service := newTestDatasetService(t, server.URL)

		var buf bytes.Buffer
		rows, err := service.WriteAnnotationsCsv(context.Background(), &buf, "db", "coll", esRepo.AnnotationSearchParams{})
		assert.Nil(t, err)
		assert.Equal(t, 0, rows)
		assert.Equal(t, 0, buf.Len())
	})
}
