package datasetService

import (
	"context"
	"fmt"
	"io"
	"sync"

	linq "github.com/ahmetb/go-linq"
	"github.com/elastic/go-elasticsearch/v7"
	"github.com/go-gota/gota/dataframe"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"vapor/api/models"
	"vapor/api/models/dtos"
	"vapor/api/models/indexes"
	esRepo "vapor/api/repositories/elasticsearch"
)

type (
	// DatasetService reads stored annotation documents back out:
	// filtered queries, aggregate overviews and tabular export.
	DatasetService struct {
		Config *models.Config
		Es     *elasticsearch.Client
		Logger *zap.Logger
	}
)

func NewDatasetService(cfg *models.Config, es *elasticsearch.Client, logger *zap.Logger) *DatasetService {
	return &DatasetService{
		Config: cfg,
		Es:     es,
		Logger: logger.Named("dataset"),
	}
}

func (d *DatasetService) GetAnnotations(ctx context.Context, database string, collection string,
	params esRepo.AnnotationSearchParams) ([]map[string]interface{}, error) {

	results, searchErr := esRepo.GetAnnotationDocuments(ctx, d.Config, d.Es, d.Logger, database, collection, params)
	if searchErr != nil {
		return nil, searchErr
	}
	return extractHitSources(results), nil
}

func (d *DatasetService) CountAnnotations(ctx context.Context, database string, collection string,
	params esRepo.AnnotationSearchParams) (int, error) {

	results, countErr := esRepo.CountAnnotationDocuments(ctx, d.Config, d.Es, d.Logger, database, collection, params)
	if countErr != nil {
		return 0, countErr
	}

	count, countOk := results["count"].(float64)
	if !countOk {
		return 0, fmt.Errorf("count response carried no count field")
	}
	return int(count), nil
}

// DeleteAnnotations drops every document in one collection's index
// and reports how many documents went with them.
func (d *DatasetService) DeleteAnnotations(ctx context.Context, database string, collection string) (int, error) {
	results, deleteErr := esRepo.DeleteAnnotationsByCollection(ctx, d.Config, d.Es, d.Logger, database, collection)
	if deleteErr != nil {
		return 0, deleteErr
	}

	deleted, deletedOk := results["deleted"].(float64)
	if !deletedOk {
		return 0, fmt.Errorf("deletion response carried no deleted count")
	}
	return int(deleted), nil
}

func (d *DatasetService) GetRareDeleteriousAnnotations(ctx context.Context, database string, collection string,
	sampleIds []string, size int) ([]map[string]interface{}, error) {

	results, searchErr := esRepo.GetRareDeleteriousVariants(ctx, d.Config, d.Es, d.Logger, database, collection, sampleIds, size)
	if searchErr != nil {
		return nil, searchErr
	}
	return extractHitSources(results), nil
}

func (d *DatasetService) GetKnownDiseaseAnnotations(ctx context.Context, database string, collection string,
	sampleIds []string, size int) ([]map[string]interface{}, error) {

	results, searchErr := esRepo.GetKnownDiseaseVariants(ctx, d.Config, d.Es, d.Logger, database, collection, sampleIds, size)
	if searchErr != nil {
		return nil, searchErr
	}
	return extractHitSources(results), nil
}

// GetAnnotationsOverview gathers the headline distributions of a
// collection in parallel, one aggregation per goroutine.
func (d *DatasetService) GetAnnotationsOverview(ctx context.Context, database string, collection string) dtos.OverviewResponseDTO {
	resultsMap := map[string]interface{}{}
	resultsMux := sync.RWMutex{}

	g, gCtx := errgroup.WithContext(ctx)

	callGetBucketsByKeyword := func(key string, keyword string) func() error {
		return func() error {
			results, bucketsError := esRepo.GetAnnotationsBucketsByKeyword(gCtx, d.Config, d.Es, d.Logger, database, collection, keyword)
			if bucketsError != nil {
				resultsMux.Lock()
				defer resultsMux.Unlock()

				resultsMap[key] = map[string]interface{}{
					"error": "Something went wrong. Please contact the administrator!",
				}
				return nil
			}

			// retrieve aggregations.items.buckets
			bucketsMapped := []interface{}{}
			if aggs, aggsOk := results["aggregations"]; aggsOk {
				aggsMapped := aggs.(map[string]interface{})

				if items, itemsOk := aggsMapped["items"]; itemsOk {
					itemsMapped := items.(map[string]interface{})

					if buckets, bucketsOk := itemsMapped["buckets"]; bucketsOk {
						bucketsMapped = buckets.([]interface{})
					}
				}
			}

			individualKeyMap := map[string]interface{}{}
			// push results bucket to slice
			for _, bucket := range bucketsMapped {
				doc_key := fmt.Sprint(bucket.(map[string]interface{})["key"]) // ensure strings and numbers are expressed as strings
				doc_count := bucket.(map[string]interface{})["doc_count"]

				individualKeyMap[doc_key] = doc_count
			}

			resultsMux.Lock()
			resultsMap[key] = individualKeyMap
			resultsMux.Unlock()

			return nil
		}
	}

	// get distribution of chromosomes
	g.Go(callGetBucketsByKeyword("chromosomes", "chr.keyword"))

	// get distribution of genes
	g.Go(callGetBucketsByKeyword("genes", "gene_knowngene.keyword"))

	// get distribution of exonic consequence classes
	g.Go(callGetBucketsByKeyword("exonicFunctions", "exonicfunc_knowngene.keyword"))

	// get distribution of clinvar interpretations
	g.Go(callGetBucketsByKeyword("clinicalSignificance", "clinvar.rcv.clinical_significance.keyword"))

	// sample ids live in a nested block and need their own aggregation
	g.Go(func() error {
		results, samplesErr := esRepo.GetDistinctSampleIds(gCtx, d.Config, d.Es, d.Logger, database, collection)

		resultsMux.Lock()
		defer resultsMux.Unlock()

		if samplesErr != nil {
			resultsMap["sampleIds"] = map[string]interface{}{
				"error": "Something went wrong. Please contact the administrator!",
			}
			return nil
		}

		individualKeyMap := map[string]interface{}{}
		for _, bucket := range sampleIdBuckets(results) {
			doc_key := fmt.Sprint(bucket.(map[string]interface{})["key"])
			doc_count := bucket.(map[string]interface{})["doc_count"]

			individualKeyMap[doc_key] = doc_count
		}
		resultsMap["sampleIds"] = individualKeyMap
		return nil
	})

	// the goroutines above never return an error, they degrade
	// their own key instead
	_ = g.Wait()

	return dtos.OverviewResponseDTO{
		Chromosomes:      keyedCounts(resultsMap, "chromosomes"),
		Genes:            keyedCounts(resultsMap, "genes"),
		ExonicFunctions:  keyedCounts(resultsMap, "exonicFunctions"),
		ClinicalSeverity: keyedCounts(resultsMap, "clinicalSignificance"),
		SampleIds:        keyedCounts(resultsMap, "sampleIds"),
	}
}

// GetDistinctSampleIds returns the sorted set of sample ids appearing
// anywhere in the collection's nested sample blocks.
func (d *DatasetService) GetDistinctSampleIds(ctx context.Context, database string, collection string) ([]string, error) {
	results, searchErr := esRepo.GetDistinctSampleIds(ctx, d.Config, d.Es, d.Logger, database, collection)
	if searchErr != nil {
		return nil, searchErr
	}

	sampleIds := []string{}
	linq.From(sampleIdBuckets(results)).SelectT(func(bucket interface{}) string {
		return fmt.Sprint(bucket.(map[string]interface{})["key"])
	}).Distinct().OrderByT(func(sampleId string) string {
		return sampleId
	}).ToSlice(&sampleIds)

	return sampleIds, nil
}

// sampleIdBuckets digs aggregations.samples.sampleIds.buckets out of
// a raw aggregation response.
func sampleIdBuckets(results map[string]interface{}) []interface{} {
	bucketsMapped := []interface{}{}
	if aggs, aggsOk := results["aggregations"]; aggsOk {
		aggsMapped := aggs.(map[string]interface{})

		if samples, samplesOk := aggsMapped["samples"]; samplesOk {
			samplesMapped := samples.(map[string]interface{})

			if ids, idsOk := samplesMapped["sampleIds"]; idsOk {
				idsMapped := ids.(map[string]interface{})

				if buckets, bucketsOk := idsMapped["buckets"]; bucketsOk {
					bucketsMapped = buckets.([]interface{})
				}
			}
		}
	}
	return bucketsMapped
}

// csvColumns fixes the exported column set and order. Everything the
// remote service contributed beyond the typed core stays in the store
// and out of the csv.
var csvColumns = []string{
	"hgvs_id", "chr", "start", "end", "ref", "alt",
	"func_knowngene", "gene_knowngene", "exonicfunc_knowngene",
	"cytoband", "1000g2015aug_all", "esp6500siv2_all", "cosmic70", "nci60",
}

// WriteAnnotationsCsv streams the matching documents as csv and
// reports how many rows it wrote.
func (d *DatasetService) WriteAnnotationsCsv(ctx context.Context, w io.Writer, database string, collection string,
	params esRepo.AnnotationSearchParams) (int, error) {

	sources, searchErr := d.GetAnnotations(ctx, database, collection, params)
	if searchErr != nil {
		return 0, searchErr
	}

	rows := make([]map[string]interface{}, 0, len(sources))
	for _, source := range sources {
		var annotation indexes.Annotation
		if decodeErr := mapstructure.Decode(source, &annotation); decodeErr != nil {
			d.Logger.Warn("skipping undecodable document", zap.Error(decodeErr))
			continue
		}

		rows = append(rows, map[string]interface{}{
			"hgvs_id":              annotation.HgvsId,
			"chr":                  annotation.Chr,
			"start":                annotation.Start,
			"end":                  annotation.End,
			"ref":                  annotation.Ref,
			"alt":                  annotation.Alt,
			"func_knowngene":       annotation.FuncKnownGene,
			"gene_knowngene":       annotation.GeneKnownGene,
			"exonicfunc_knowngene": annotation.ExonicFuncKnownGene,
			"cytoband":             annotation.Cytoband,
			"1000g2015aug_all":     annotation.ThousandGenomesFreq,
			"esp6500siv2_all":      annotation.Esp6500Freq,
			"cosmic70":             annotation.Cosmic70,
			"nci60":                annotation.Nci60,
		})
	}

	if len(rows) == 0 {
		return 0, nil
	}

	df := dataframe.LoadMaps(rows)
	if df.Err != nil {
		return 0, fmt.Errorf("building csv frame: %w", df.Err)
	}

	// keep the declared column order, LoadMaps sorts keys
	df = df.Select(csvColumns)
	if df.Err != nil {
		return 0, fmt.Errorf("selecting csv columns: %w", df.Err)
	}

	if csvErr := df.WriteCSV(w); csvErr != nil {
		return 0, fmt.Errorf("writing csv: %w", csvErr)
	}

	return len(rows), nil
}

// extractHitSources pulls each hit's _source out of a raw search
// response.
func extractHitSources(results map[string]interface{}) []map[string]interface{} {
	sources := []map[string]interface{}{}

	hits, hitsOk := results["hits"].(map[string]interface{})
	if !hitsOk {
		return sources
	}

	docHits := []map[string]interface{}{}
	mapstructure.Decode(hits["hits"], &docHits)

	for _, docHit := range docHits {
		if source, sourceOk := docHit["_source"].(map[string]interface{}); sourceOk {
			sources = append(sources, source)
		}
	}

	return sources
}

func keyedCounts(resultsMap map[string]interface{}, key string) map[string]interface{} {
	if counts, countsOk := resultsMap[key].(map[string]interface{}); countsOk {
		return counts
	}
	return map[string]interface{}{}
}
