package annotations

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo"
	"go.uber.org/zap"

	"vapor/api/contexts"
	annotationMode "vapor/api/models/constants/annotation-mode"
	genomeBuild "vapor/api/models/constants/genome-build"
	"vapor/api/models/dtos"
	errorDtos "vapor/api/models/dtos/errors"
	apperrors "vapor/api/models/errors"
	"vapor/api/models/runs"
)

func AnnotationsRun(c echo.Context) error {
	fmt.Printf("[%s] - AnnotationsRun hit!\n", time.Now())
	gc := c.(*contexts.VaporContext)
	annotationService := gc.AnnotationService

	var runDto dtos.RunRequestDTO
	if bindErr := c.Bind(&runDto); bindErr != nil {
		return c.JSON(http.StatusBadRequest, errorDtos.CreateSimpleBadRequest("Malformed run request!"))
	}

	if runDto.VcfPath == "" {
		return c.JSON(http.StatusBadRequest, errorDtos.CreateSimpleBadRequest("Missing 'vcfPath'!"))
	}
	if runDto.Database == "" || runDto.Collection == "" {
		return c.JSON(http.StatusBadRequest, errorDtos.CreateSimpleBadRequest("Missing 'database' or 'collection'!"))
	}

	// a provided annovar output, or the wish to produce one,
	// switches the run into detailed mode
	mode := annotationMode.Basic
	if runDto.AnnovarPath != "" || runDto.RunAnnovar {
		mode = annotationMode.Detailed
	}

	build := genomeBuild.CastToGenomeBuild(gc.Config.Annotation.DefaultGenomeBuild)
	if runDto.GenomeBuild != "" {
		build = genomeBuild.CastToGenomeBuild(runDto.GenomeBuild)
		if build == genomeBuild.Unknown {
			return c.JSON(http.StatusBadRequest, errorDtos.CreateSimpleBadRequest("Unknown genomeBuild!"))
		}
	}

	// check if there is an already existing run covering this file
	if annotationService.SourceAlreadyRunning(runDto.VcfPath) {
		return c.JSON(http.StatusBadRequest, errorDtos.CreateSimpleBadRequest("File already being annotated.."))
	}

	run := annotationService.RunAsync(dtos.ValidatedRunRequest{
		RunRequestDTO: runDto,
		Mode:          mode,
		Build:         build,
	})

	return c.JSON(http.StatusOK, runs.RunResponseDTO{
		Id:      run.Id,
		State:   run.State,
		Message: "Successfully queued..",
	})
}

func GetAllAnnotationRuns(c echo.Context) error {
	fmt.Printf("[%s] - GetAllAnnotationRuns hit!\n", time.Now())
	annotationService := c.(*contexts.VaporContext).AnnotationService

	allRuns := annotationService.GetRunRequests()

	return c.JSON(http.StatusOK, dtos.RunsResponseDTO{
		Status:  200,
		Message: "Success",
		Runs:    allRuns,
	})
}

func GetAnnotationRunById(c echo.Context) error {
	fmt.Printf("[%s] - GetAnnotationRunById hit!\n", time.Now())
	annotationService := c.(*contexts.VaporContext).AnnotationService

	runId := c.Param("id")
	run, getErr := annotationService.GetRunRequest(runId)
	if getErr != nil {
		return c.JSON(apperrors.HTTPStatusCode(getErr), errorDtos.CreateErrorResponseFrom(getErr))
	}

	return c.JSON(http.StatusOK, run)
}

func AnnovarDownloadDatabases(c echo.Context) error {
	fmt.Printf("[%s] - AnnovarDownloadDatabases hit!\n", time.Now())
	gc := c.(*contexts.VaporContext)
	runner := gc.AnnovarRunner

	if runner == nil || !runner.Available() {
		return c.JSON(http.StatusBadRequest, errorDtos.CreateSimpleBadRequest("No ANNOVAR install configured!"))
	}

	// downloads run for a long while; kick off and respond
	build := gc.GenomeBuild
	go func() {
		if downloadErr := runner.DownloadDatabases(context.Background(), build); downloadErr != nil {
			gc.Log.Error("annovar database download failed", zap.Error(downloadErr))
		}
	}()

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("Database download started for %s..", build),
	})
}
