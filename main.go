package main

import (
	"vapor/api/contexts"
	vam "vapor/api/middleware"
	"vapor/api/models"
	serviceInfo "vapor/api/models/constants/service-info"
	annotationsMvc "vapor/api/mvc/annotations"
	datasetsMvc "vapor/api/mvc/datasets"
	serviceInfoMvc "vapor/api/mvc/service-info"
	workflowsMvc "vapor/api/mvc/workflows"
	"vapor/api/services"
	datasetService "vapor/api/services/dataset"
	"vapor/api/services/sanitation"
	"vapor/api/utils"
	"time"

	"fmt"
	"net/http"
	"os"

	"github.com/kelseyhightower/envconfig"
	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"
	"go.uber.org/zap"
)

func main() {
	// Gather environment variables
	var cfg models.Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	fmt.Printf("Using : \n"+

		"\tDebug : %t \n\n"+

		"\tElasticsearch Url : %s \n"+
		"\tElasticsearch Username : %s\n\n"+

		"\tMyVariant Url : %s\n"+
		"\tAnnotation Chunk Size : %d\n"+
		"\tBasic Mode Workers : %d\n"+
		"\tDetailed Mode Workers : %d\n"+
		"\tDefault Genome Build : %s\n"+
		"\tAnnovar Install Path : %s\n\n"+

		"Running on Port : %s\n",

		cfg.Debug,
		cfg.Elasticsearch.Url, cfg.Elasticsearch.Username,
		cfg.MyVariant.Url,
		cfg.Annotation.ChunkSize,
		cfg.Annotation.BasicWorkers,
		cfg.Annotation.DetailedWorkers,
		cfg.Annotation.DefaultGenomeBuild,
		cfg.Annovar.Path,
		cfg.Api.Port)
	// --

	logger := utils.NewLogger(&cfg)
	defer logger.Sync()

	// Instantiate Server
	e := echo.New()

	// Service Connections:
	// -- Elasticsearch
	es, esErr := utils.CreateEsConnection(&cfg, logger)
	if esErr != nil {
		logger.Fatal("failed to reach elasticsearch", zap.Error(esErr))
	}

	// Service Singletons
	az := services.NewAnnotationService(&cfg, es, logger)
	dz := datasetService.NewDatasetService(&cfg, es, logger)
	sanitation.NewSanitationService(&cfg, az, logger)

	// Configure Server
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.PUT, echo.POST, echo.DELETE},
	}))

	// -- Override handlers with "custom Vapor" context
	//		to be able to provide variables and global singletons
	e.Use(func(h echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &contexts.VaporContext{
				Context:           c,
				Es7Client:         es,
				Config:            &cfg,
				Log:               logger,
				AnnotationService: az,
				DatasetService:    dz,
				AnnovarRunner:     az.Runner,
			}
			return h(cc)
		}
	})

	// Begin MVC Routes
	// -- Root
	e.GET("/", func(c echo.Context) error {
		fmt.Printf("[%s] - Root hit!\n", time.Now())
		return c.JSON(http.StatusOK, serviceInfo.SERVICE_WELCOME)
	})

	// -- Service Info
	e.GET("/service-info", serviceInfoMvc.GetServiceInfo)

	// -- Annotation Runs
	e.POST("/annotations/run", annotationsMvc.AnnotationsRun)
	e.GET("/annotations/runs", annotationsMvc.GetAllAnnotationRuns)
	e.GET("/annotations/runs/:id", annotationsMvc.GetAnnotationRunById)
	e.GET("/annotations/annovar/download", annotationsMvc.AnnovarDownloadDatabases,
		// middleware
		vam.ValidateOptionalGenomeBuildAttribute)

	// -- Datasets
	e.GET("/datasets/variants", datasetsMvc.GetDatasetAnnotations,
		// middleware
		vam.MandateCollectionAttributes,
		vam.ValidateOptionalChromosomeAttribute,
		vam.MandateCalibratedBounds,
		vam.CalibrateOptionalSampleIdsPluralAttribute)
	e.GET("/datasets/variants/count", datasetsMvc.CountDatasetAnnotations,
		// middleware
		vam.MandateCollectionAttributes,
		vam.ValidateOptionalChromosomeAttribute,
		vam.MandateCalibratedBounds,
		vam.CalibrateOptionalSampleIdsPluralAttribute)
	e.GET("/datasets/variants/overview", datasetsMvc.GetDatasetAnnotationsOverview,
		// middleware
		vam.MandateCollectionAttributes)
	e.DELETE("/datasets/variants", datasetsMvc.DeleteDatasetAnnotations,
		// middleware
		vam.MandateCollectionAttributes)
	e.GET("/datasets/variants/csv", datasetsMvc.GetDatasetAnnotationsCsv,
		// middleware
		vam.MandateCollectionAttributes,
		vam.ValidateOptionalChromosomeAttribute,
		vam.MandateCalibratedBounds,
		vam.CalibrateOptionalSampleIdsPluralAttribute)
	e.GET("/datasets/variants/rare-deleterious", datasetsMvc.GetRareDeleteriousAnnotations,
		// middleware
		vam.MandateCollectionAttributes,
		vam.CalibrateOptionalSampleIdsPluralAttribute)
	e.GET("/datasets/variants/known-disease", datasetsMvc.GetKnownDiseaseAnnotations,
		// middleware
		vam.MandateCollectionAttributes,
		vam.CalibrateOptionalSampleIdsPluralAttribute)
	e.GET("/datasets/samples", datasetsMvc.GetDatasetSamples,
		// middleware
		vam.MandateCollectionAttributes)

	// -- Workflows
	e.GET("/workflows", workflowsMvc.WorkflowsGet)
	e.GET("/workflows/:file", workflowsMvc.WorkflowsServeFile)

	// Run
	e.Logger.Fatal(e.Start(":" + cfg.Api.Port))
}
