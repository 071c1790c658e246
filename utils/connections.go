package utils

import (
	"time"

	"github.com/cenkalti/backoff"
	es7 "github.com/elastic/go-elasticsearch/v7"
	"go.uber.org/zap"

	"vapor/api/models"
)

func CreateEsConnection(cfg *models.Config, logger *zap.Logger) (*es7.Client, error) {
	var (
		clusterURLs  = []string{cfg.Elasticsearch.Url}
		retryBackoff = backoff.NewExponentialBackOff()
	)

	esCfg := es7.Config{
		Addresses: clusterURLs,
		Username:  cfg.Elasticsearch.Username,
		Password:  cfg.Elasticsearch.Password,

		RetryOnStatus: []int{502, 503, 504, 429},

		// Configure the backoff function
		//
		RetryBackoff: func(i int) time.Duration {
			if i == 1 {
				retryBackoff.Reset()
			}
			return retryBackoff.NextBackOff()
		},

		// Retry up to 5 attempts
		//
		MaxRetries: 5,
	}

	es7Client, err := es7.NewClient(esCfg)
	if err != nil {
		return nil, err
	}

	logger.Info("elasticsearch client ready",
		zap.String("clientVersion", es7.Version),
		zap.String("url", cfg.Elasticsearch.Url))

	return es7Client, nil
}
