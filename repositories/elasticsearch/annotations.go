package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v7"
	"go.uber.org/zap"

	"vapor/api/models"
	c "vapor/api/models/constants"
	s "vapor/api/models/constants/sort"
	"vapor/api/utils"
)

// AnnotationSearchParams narrows a stored-annotation search.
// Zero values mean "no constraint".
type AnnotationSearchParams struct {
	HgvsId     string
	Chromosome string
	Gene       string
	SampleIds  []string
	LowerBound int
	UpperBound int

	// CustomFilter is appended verbatim to the must clauses,
	// letting callers express anything the query DSL can.
	CustomFilter map[string]interface{}

	Size        int
	SortByStart c.SortDirection
}

func buildAnnotationsMustMap(params AnnotationSearchParams) []map[string]interface{} {
	// begin building the request body.
	mustMap := []map[string]interface{}{}

	if params.HgvsId != "" {
		mustMap = append(mustMap, map[string]interface{}{
			"term": map[string]interface{}{
				"hgvs_id.keyword": params.HgvsId,
			},
		})
	}

	if params.Chromosome != "" {
		mustMap = append(mustMap, map[string]interface{}{
			"query_string": map[string]interface{}{
				"query": "chr:" + params.Chromosome,
			},
		})
	}

	if params.Gene != "" {
		mustMap = append(mustMap, map[string]interface{}{
			"match": map[string]interface{}{
				"gene_knowngene": map[string]interface{}{
					"query": params.Gene,
				},
			},
		})
	}

	if len(params.SampleIds) > 0 {
		shouldMap := []map[string]interface{}{}
		for _, sampleId := range params.SampleIds {
			shouldMap = append(shouldMap, map[string]interface{}{
				"match": map[string]interface{}{
					"samples.sample_id": map[string]interface{}{
						"query": sampleId,
					},
				},
			})
		}
		mustMap = append(mustMap, map[string]interface{}{
			"nested": map[string]interface{}{
				"path": "samples",
				"query": map[string]interface{}{
					"bool": map[string]interface{}{
						"should":               shouldMap,
						"minimum_should_match": 1,
					},
				},
			},
		})
	}

	rangeMapSlice := []map[string]interface{}{}

	if params.UpperBound > 0 {
		rangeMapSlice = append(rangeMapSlice, map[string]interface{}{
			"range": map[string]interface{}{
				"start": map[string]interface{}{
					"lte": params.UpperBound,
				},
			},
		})
	}

	if params.LowerBound > 0 {
		rangeMapSlice = append(rangeMapSlice, map[string]interface{}{
			"range": map[string]interface{}{
				"start": map[string]interface{}{
					"gte": params.LowerBound,
				},
			},
		})
	}

	// individually append each range component to the must map
	for _, rms := range rangeMapSlice {
		mustMap = append(mustMap, rms)
	}

	if len(params.CustomFilter) > 0 {
		mustMap = append(mustMap, params.CustomFilter)
	}

	return mustMap
}

func GetAnnotationDocuments(ctx context.Context, cfg *models.Config, es *elasticsearch.Client, logger *zap.Logger,
	database string, collection string, params AnnotationSearchParams) (map[string]interface{}, error) {

	mustMap := buildAnnotationsMustMap(params)

	// overall query structure
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []map[string]interface{}{{
					"bool": map[string]interface{}{
						"must": mustMap,
					}},
				},
			},
		},
	}

	size := params.Size
	if size <= 0 {
		size = 100
	}
	query["size"] = size

	// set up sorting
	sortByStart := params.SortByStart
	if sortByStart == s.Undefined {
		// default to ascending order
		sortByStart = s.Ascending
	}
	query["sort"] = map[string]string{
		"start": string(sortByStart),
	}

	return executeSearch(ctx, cfg, es, logger, indexOrWildcard(database, collection), query)
}

func CountAnnotationDocuments(ctx context.Context, cfg *models.Config, es *elasticsearch.Client, logger *zap.Logger,
	database string, collection string, params AnnotationSearchParams) (map[string]interface{}, error) {

	mustMap := buildAnnotationsMustMap(params)

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []map[string]interface{}{{
					"bool": map[string]interface{}{
						"must": mustMap,
					}},
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return nil, fmt.Errorf("encoding count query: %w", err)
	}

	if cfg.Debug {
		// view the outbound elasticsearch query
		logger.Debug("count query", zap.String("body", buf.String()))
	}

	res, countErr := es.Count(
		es.Count.WithContext(ctx),
		es.Count.WithIndex(indexOrWildcard(database, collection)),
		es.Count.WithBody(&buf),
		es.Count.WithPretty(),
	)
	if countErr != nil {
		return nil, fmt.Errorf("counting annotations: %w", countErr)
	}
	defer res.Body.Close()

	resultString := res.String()

	result := make(map[string]interface{})

	// Known bug: response comes back with a preceding '[200 OK] ' which needs trimming
	bracketString, jsonBodyString := utils.GetLeadingStringInBetweenSquareBrackets(resultString)
	if !strings.Contains(bracketString, "200") {
		return nil, fmt.Errorf("failed to count annotations: got '%s'", bracketString)
	}

	if umErr := json.Unmarshal([]byte(jsonBodyString), &result); umErr != nil {
		return nil, fmt.Errorf("unmarshalling count response: %w", umErr)
	}

	return result, nil
}

// GetRareDeleteriousVariants applies the stock rare-deleterious
// screen: population frequency under 5.1% (or never observed) in
// both 1000 genomes and ESP6500, located in exonic or splicing
// regions, and either a damaging exonic consequence or a CADD
// phred score of 10 or more.
func GetRareDeleteriousVariants(ctx context.Context, cfg *models.Config, es *elasticsearch.Client, logger *zap.Logger,
	database string, collection string, sampleIds []string, size int) (map[string]interface{}, error) {

	mustMap := []map[string]interface{}{
		rareOrMissing("1000g2015aug_all"),
		rareOrMissing("esp6500siv2_all"),
		{
			"bool": map[string]interface{}{
				"should": []map[string]interface{}{
					{"match": map[string]interface{}{"func_knowngene": "exonic"}},
					{"match": map[string]interface{}{"func_knowngene": "splicing"}},
				},
				"minimum_should_match": 1,
			},
		},
		{
			"bool": map[string]interface{}{
				"should": []map[string]interface{}{
					{
						"query_string": map[string]interface{}{
							"fields": []string{"exonicfunc_knowngene"},
							"query":  "nonsynonymous OR stopgain OR stoploss OR frameshift",
						},
					},
					{"range": map[string]interface{}{"cadd.phred": map[string]interface{}{"gte": 10}}},
				},
				"minimum_should_match": 1,
			},
		},
	}

	params := AnnotationSearchParams{SampleIds: sampleIds}
	for _, sampleFilter := range buildAnnotationsMustMap(params) {
		mustMap = append(mustMap, sampleFilter)
	}

	query := map[string]interface{}{
		"size": sizeOrDefault(size),
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": mustMap,
			},
		},
		"sort": map[string]string{"start": string(s.Ascending)},
	}

	return executeSearch(ctx, cfg, es, logger, indexOrWildcard(database, collection), query)
}

// GetKnownDiseaseVariants returns variants with a pathogenic
// ClinVar interpretation or a COSMIC catalogue entry.
func GetKnownDiseaseVariants(ctx context.Context, cfg *models.Config, es *elasticsearch.Client, logger *zap.Logger,
	database string, collection string, sampleIds []string, size int) (map[string]interface{}, error) {

	mustMap := []map[string]interface{}{
		{
			"bool": map[string]interface{}{
				"should": []map[string]interface{}{
					{
						"query_string": map[string]interface{}{
							"fields": []string{"clinvar.rcv.clinical_significance"},
							"query":  "pathogenic",
						},
					},
					{"exists": map[string]interface{}{"field": "cosmic.cosmic_id"}},
					{"exists": map[string]interface{}{"field": "cosmic70"}},
				},
				"minimum_should_match": 1,
			},
		},
	}

	params := AnnotationSearchParams{SampleIds: sampleIds}
	for _, sampleFilter := range buildAnnotationsMustMap(params) {
		mustMap = append(mustMap, sampleFilter)
	}

	query := map[string]interface{}{
		"size": sizeOrDefault(size),
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": mustMap,
			},
		},
		"sort": map[string]string{"start": string(s.Ascending)},
	}

	return executeSearch(ctx, cfg, es, logger, indexOrWildcard(database, collection), query)
}

func GetDistinctSampleIds(ctx context.Context, cfg *models.Config, es *elasticsearch.Client, logger *zap.Logger,
	database string, collection string) (map[string]interface{}, error) {

	query := map[string]interface{}{
		"size": 0,
		"aggs": map[string]interface{}{
			"samples": map[string]interface{}{
				"nested": map[string]interface{}{
					"path": "samples",
				},
				"aggs": map[string]interface{}{
					"sampleIds": map[string]interface{}{
						"terms": map[string]interface{}{
							"field": "samples.sample_id.keyword",
							"size":  "10000", // increases the number of buckets returned (default is 10)
						},
					},
				},
			},
		},
	}

	return executeSearch(ctx, cfg, es, logger, indexOrWildcard(database, collection), query)
}

func GetAnnotationsBucketsByKeyword(ctx context.Context, cfg *models.Config, es *elasticsearch.Client, logger *zap.Logger,
	database string, collection string, keyword string) (map[string]interface{}, error) {

	query := map[string]interface{}{
		"size": "0",
		"aggs": map[string]interface{}{
			"items": map[string]interface{}{
				"terms": map[string]interface{}{
					"field": keyword,
					"size":  "10000", // increases the number of buckets returned (default is 10)
					"order": map[string]string{
						"_key": "asc",
					},
				},
			},
		},
	}

	return executeSearch(ctx, cfg, es, logger, indexOrWildcard(database, collection), query)
}

func DeleteAnnotationsByCollection(ctx context.Context, cfg *models.Config, es *elasticsearch.Client, logger *zap.Logger,
	database string, collection string) (map[string]interface{}, error) {

	var buf bytes.Buffer
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"match_all": map[string]interface{}{},
		},
	}

	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return nil, fmt.Errorf("encoding delete query: %w", err)
	}

	// Perform the delete request.
	deleteRes, deleteErr := es.DeleteByQuery(
		[]string{IndexName(database, collection)},
		bytes.NewReader(buf.Bytes()),
		es.DeleteByQuery.WithContext(ctx),
	)
	if deleteErr != nil {
		return nil, fmt.Errorf("deleting annotations: %w", deleteErr)
	}
	defer deleteRes.Body.Close()

	resultString := deleteRes.String()

	result := make(map[string]interface{})

	// Known bug: response comes back with a preceding '[200 OK] ' which needs trimming
	bracketString, jsonBodyString := utils.GetLeadingStringInBetweenSquareBrackets(resultString)
	if !strings.Contains(bracketString, "200") {
		return nil, fmt.Errorf("failed to delete annotations: got '%s'", bracketString)
	}

	if umErr := json.Unmarshal([]byte(jsonBodyString), &result); umErr != nil {
		return nil, fmt.Errorf("unmarshalling deletion response: %w", umErr)
	}

	logger.Info("deleted annotations collection",
		zap.String("database", database),
		zap.String("collection", collection))

	return result, nil
}

// -- internal use only --

func rareOrMissing(field string) map[string]interface{} {
	return map[string]interface{}{
		"bool": map[string]interface{}{
			"should": []map[string]interface{}{
				{"range": map[string]interface{}{field: map[string]interface{}{"lt": 0.051}}},
				{"bool": map[string]interface{}{
					"must_not": []map[string]interface{}{
						{"exists": map[string]interface{}{"field": field}},
					},
				}},
			},
			"minimum_should_match": 1,
		},
	}
}

func sizeOrDefault(size int) int {
	if size <= 0 {
		return 100
	}
	return size
}

// indexOrWildcard targets one collection's index, or every
// annotations index when either part is unspecified.
func indexOrWildcard(database string, collection string) string {
	if database == "" || collection == "" {
		return wildcardAnnotationsIndex
	}
	return IndexName(database, collection)
}
