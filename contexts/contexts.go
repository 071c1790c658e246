package contexts

import (
	es7 "github.com/elastic/go-elasticsearch/v7"
	"github.com/labstack/echo"
	"go.uber.org/zap"

	"vapor/api/models"
	"vapor/api/models/constants"
	"vapor/api/services"
	"vapor/api/services/annovar"
	datasetService "vapor/api/services/dataset"
)

type (
	// "Helper" Context to pass into routes that need
	//  an elasticsearch client and other variables
	VaporContext struct {
		echo.Context
		Es7Client         *es7.Client
		Config            *models.Config
		Log               *zap.Logger
		AnnotationService *services.AnnotationService
		DatasetService    *datasetService.DatasetService
		AnnovarRunner     *annovar.AnnovarRunner

		// request-scoped values calibrated by middleware
		Database    string
		Collection  string
		Chromosome  string
		SampleIds   []string
		LowerBound  int
		UpperBound  int
		GenomeBuild constants.GenomeBuild
	}
)
