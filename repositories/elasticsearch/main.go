package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Jeffail/gabs"
	"github.com/elastic/go-elasticsearch/v7"
	"go.uber.org/zap"

	"vapor/api/models"
	apperrors "vapor/api/models/errors"
	"vapor/api/models/indexes"
	"vapor/api/utils"
)

const annotationsIndexPrefix = "annotations--"
const wildcardAnnotationsIndex = "annotations--*"

// IndexName derives the index a database/collection pair maps
// to. Elasticsearch index names must be lowercase, so both
// parts are folded and spaces flattened.
func IndexName(database string, collection string) string {
	sanitize := func(part string) string {
		part = strings.ToLower(strings.TrimSpace(part))
		part = strings.ReplaceAll(part, " ", "-")
		return part
	}
	return fmt.Sprintf("%s%s--%s", annotationsIndexPrefix, sanitize(database), sanitize(collection))
}

// EnsureAnnotationsIndex creates the target index with the
// annotation mapping if it doesn't exist yet. Losing the race
// against another creator is fine.
func EnsureAnnotationsIndex(ctx context.Context, cfg *models.Config, es *elasticsearch.Client, logger *zap.Logger, database string, collection string) error {
	index := IndexName(database, collection)

	existsRes, err := es.Indices.Exists([]string{index}, es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return apperrors.NewStoreWriteError("checking index %s: %v", index, err)
	}
	existsRes.Body.Close()
	if existsRes.StatusCode == 200 {
		return nil
	}

	var buf bytes.Buffer
	body := map[string]interface{}{
		"mappings": indexes.ANNOTATION_INDEX_MAPPING,
	}
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return apperrors.NewStoreWriteError("encoding index mapping: %v", err)
	}

	createRes, err := es.Indices.Create(index,
		es.Indices.Create.WithContext(ctx),
		es.Indices.Create.WithBody(&buf))
	if err != nil {
		return apperrors.NewStoreWriteError("creating index %s: %v", index, err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		resultString := createRes.String()
		if strings.Contains(resultString, "resource_already_exists_exception") {
			return nil
		}
		return apperrors.NewStoreWriteError("creating index %s: %s", index, resultString)
	}

	logger.Info("created annotations index", zap.String("index", index))
	return nil
}

// BulkInsertAnnotations writes one chunk's documents and returns
// the store assigned ids in document order. Any rejected item
// fails the whole call.
func BulkInsertAnnotations(ctx context.Context, cfg *models.Config, es *elasticsearch.Client, logger *zap.Logger,
	database string, collection string, documents []map[string]interface{}) ([]string, error) {

	if len(documents) == 0 {
		return []string{}, nil
	}

	index := IndexName(database, collection)

	// bulk NDJSON body: action line, then document line
	var buf bytes.Buffer
	for _, document := range documents {
		buf.WriteString(`{"index":{}}`)
		buf.WriteByte('\n')
		if err := json.NewEncoder(&buf).Encode(document); err != nil {
			return nil, apperrors.NewStoreWriteError("encoding document for %s: %v", index, err)
		}
	}

	res, err := es.Bulk(bytes.NewReader(buf.Bytes()),
		es.Bulk.WithContext(ctx),
		es.Bulk.WithIndex(index),
		es.Bulk.WithRefresh("wait_for"))
	if err != nil {
		return nil, apperrors.NewStoreWriteError("bulk insert into %s: %v", index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, apperrors.NewStoreWriteError("bulk insert into %s: %s", index, res.String())
	}

	resultString := res.String()

	// Known bug: response comes back with a preceding '[200 OK] ' which needs trimming
	bracketString, jsonBodyString := utils.GetLeadingStringInBetweenSquareBrackets(resultString)
	if !strings.Contains(bracketString, "200") {
		return nil, apperrors.NewStoreWriteError("bulk insert into %s: got '%s'", index, bracketString)
	}

	jsonParsed, err := gabs.ParseJSON([]byte(jsonBodyString))
	if err != nil {
		return nil, apperrors.NewStoreWriteError("parsing bulk response: %v", err)
	}

	items, err := jsonParsed.Path("items").Children()
	if err != nil {
		return nil, apperrors.NewStoreWriteError("bulk response has no items: %v", err)
	}
	if len(items) != len(documents) {
		return nil, apperrors.NewStoreWriteError("bulk response item count %d, expected %d", len(items), len(documents))
	}

	storedIds := make([]string, 0, len(documents))
	for itemIdx, item := range items {
		if itemError := item.Path("index.error"); itemError != nil {
			return nil, apperrors.NewStoreWriteError("document %d rejected by %s: %s", itemIdx, index, itemError.String())
		}
		idContainer := item.Path("index._id")
		if idContainer == nil {
			return nil, apperrors.NewStoreWriteError("document %d has no assigned id", itemIdx)
		}
		storedId, ok := idContainer.Data().(string)
		if !ok {
			return nil, apperrors.NewStoreWriteError("document %d has no assigned id", itemIdx)
		}
		storedIds = append(storedIds, storedId)
	}

	logger.Debug("bulk insert complete",
		zap.String("index", index),
		zap.Int("documents", len(storedIds)))

	return storedIds, nil
}

// executeSearch runs an encoded query against an index and
// returns the decoded response body.
func executeSearch(ctx context.Context, cfg *models.Config, es *elasticsearch.Client, logger *zap.Logger,
	index string, query map[string]interface{}) (map[string]interface{}, error) {

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return nil, fmt.Errorf("encoding query: %w", err)
	}

	if cfg.Debug {
		// view the outbound elasticsearch query
		logger.Debug("search query", zap.String("index", index), zap.String("body", buf.String()))
	}

	res, searchErr := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(index),
		es.Search.WithBody(&buf),
		es.Search.WithTrackTotalHits(true),
		es.Search.WithPretty(),
	)
	if searchErr != nil {
		return nil, fmt.Errorf("search against %s: %w", index, searchErr)
	}
	defer res.Body.Close()

	resultString := res.String()

	result := make(map[string]interface{})

	// Known bug: response comes back with a preceding '[200 OK] ' which needs trimming
	bracketString, jsonBodyString := utils.GetLeadingStringInBetweenSquareBrackets(resultString)
	if !strings.Contains(bracketString, "200") {
		return nil, fmt.Errorf("search against %s: got '%s'", index, bracketString)
	}

	if umErr := json.Unmarshal([]byte(jsonBodyString), &result); umErr != nil {
		return nil, fmt.Errorf("unmarshalling search response: %w", umErr)
	}

	return result, nil
}
