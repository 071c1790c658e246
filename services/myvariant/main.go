package myvariant

import (
	"context"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Jeffail/gabs"
	"github.com/cenkalti/backoff"
	"go.uber.org/zap"

	"vapor/api/models"
	"vapor/api/models/constants"
	apperrors "vapor/api/models/errors"
)

// DefaultFields is the allow-list sent with every batched
// lookup. Anything outside it never reaches the pipeline.
var DefaultFields = []string{
	"cadd.1000g",
	"cadd.esp",
	"cadd.phred",
	"cadd.gerp",
	"cadd.polyphen",
	"cadd.sift",
	"dbsnp.rsid",
	"cosmic.cosmic_id",
	"cosmic.tumor_site",
	"clinvar.rcv.accession",
	"clinvar.rcv.clinical_significance",
	"clinvar.rcv.conditions",
	"civic.description",
	"civic.evidence_items",
	"cgi",
	"gwassnps",
	"wellderly.alleles.freq",
}

type (
	MyVariantService struct {
		BaseUrl              string
		Fields               []string
		MaxAttempts          int
		InitialRetryInterval time.Duration
		HttpClient           *http.Client
		Logger               *zap.Logger
	}
)

func NewMyVariantService(cfg *models.Config, logger *zap.Logger) *MyVariantService {
	return &MyVariantService{
		BaseUrl:              cfg.MyVariant.Url,
		Fields:               DefaultFields,
		MaxAttempts:          cfg.MyVariant.MaxAttempts,
		InitialRetryInterval: 5 * time.Second,
		HttpClient: &http.Client{
			Timeout: time.Duration(cfg.MyVariant.TimeoutSeconds) * time.Second,
		},
		Logger: logger.Named("myvariant"),
	}
}

// GetAnnotations performs one batched lookup for a chunk's worth
// of identifiers and returns exactly one record per queried id,
// in query order. Transient failures are retried with jittered
// exponential backoff up to MaxAttempts total tries; client
// errors fail immediately.
func (m *MyVariantService) GetAnnotations(ctx context.Context, hgvsIds []string, build constants.GenomeBuild, verbose bool) ([]map[string]interface{}, error) {
	if len(hgvsIds) == 0 {
		return []map[string]interface{}{}, nil
	}

	var records []map[string]interface{}

	operation := func() error {
		fetched, fetchErr := m.fetchBatch(ctx, hgvsIds, build)
		if fetchErr != nil {
			if errors.Is(fetchErr, apperrors.ErrTransientService) {
				return fetchErr
			}
			return backoff.Permanent(fetchErr)
		}
		records = fetched
		return nil
	}

	maxAttempts := m.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = m.InitialRetryInterval
	retryPolicy := backoff.WithContext(backoff.WithMaxRetries(expo, uint64(maxAttempts-1)), ctx)

	notify := func(err error, wait time.Duration) {
		m.Logger.Warn("variant lookup failed, retrying",
			zap.Int("ids", len(hgvsIds)),
			zap.Duration("backoff", wait),
			zap.Error(err))
	}

	if err := backoff.RetryNotify(operation, retryPolicy, notify); err != nil {
		return nil, err
	}

	if verbose {
		m.Logger.Info("annotated batch",
			zap.Int("ids", len(hgvsIds)),
			zap.String("assembly", string(build)))
	}

	return records, nil
}

func (m *MyVariantService) fetchBatch(ctx context.Context, hgvsIds []string, build constants.GenomeBuild) ([]map[string]interface{}, error) {
	form := url.Values{}
	form.Set("ids", strings.Join(hgvsIds, ","))
	form.Set("fields", strings.Join(m.Fields, ","))
	form.Set("assembly", string(build))

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, m.BaseUrl+"/variant", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("building variant lookup request: %w", err)
	}
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	response, err := m.HttpClient.Do(request)
	if err != nil {
		return nil, apperrors.NewTransientServiceError("variant lookup failed: %v", err)
	}
	defer response.Body.Close()

	body, err := ioutil.ReadAll(response.Body)
	if err != nil {
		return nil, apperrors.NewTransientServiceError("reading variant lookup response: %v", err)
	}

	if response.StatusCode >= 500 {
		return nil, apperrors.NewTransientServiceError("variant lookup returned %d: %s", response.StatusCode, string(body))
	}
	if response.StatusCode >= 400 {
		// client errors don't get better on retry
		return nil, fmt.Errorf("variant lookup rejected with %d: %s", response.StatusCode, string(body))
	}

	jsonParsed, err := gabs.ParseJSON(body)
	if err != nil {
		return nil, apperrors.NewTransientServiceError("parsing variant lookup response: %v", err)
	}

	children, err := jsonParsed.Children()
	if err != nil {
		return nil, apperrors.NewTransientServiceError("variant lookup response is not a list: %v", err)
	}

	// first hit wins when the service returns several entries
	// for the same queried id
	hitsByQuery := make(map[string]map[string]interface{}, len(hgvsIds))
	for _, child := range children {
		hit, ok := child.Data().(map[string]interface{})
		if !ok {
			return nil, apperrors.NewTransientServiceError("variant lookup response entry is not an object")
		}
		queriedId, ok := hit["query"].(string)
		if !ok {
			return nil, apperrors.NewTransientServiceError("variant lookup response entry is missing its query id")
		}
		if _, seen := hitsByQuery[queriedId]; seen {
			m.Logger.Debug("collapsing duplicate hit", zap.String("hgvsId", queriedId))
			continue
		}
		hitsByQuery[queriedId] = hit
	}

	records := make([]map[string]interface{}, 0, len(hgvsIds))
	for _, hgvsId := range hgvsIds {
		hit, found := hitsByQuery[hgvsId]
		if !found {
			return nil, apperrors.NewTransientServiceError("variant lookup response is missing %s", hgvsId)
		}
		records = append(records, m.scrubHit(hgvsId, hit))
	}

	return records, nil
}

// scrubHit drops the service's bookkeeping keys and pins the
// record to the identifier it was queried under. When a hit's
// own _id disagrees with its query the queried id wins.
func (m *MyVariantService) scrubHit(hgvsId string, hit map[string]interface{}) map[string]interface{} {
	record := make(map[string]interface{}, len(hit))
	for key, value := range hit {
		if key == "_id" || key == "query" {
			continue
		}
		record[key] = value
	}

	if serviceId, ok := hit["_id"].(string); ok && serviceId != hgvsId {
		m.Logger.Debug("service _id differs from queried id",
			zap.String("queried", hgvsId),
			zap.String("serviceId", serviceId))
	}

	record["hgvs_id"] = hgvsId
	return record
}
