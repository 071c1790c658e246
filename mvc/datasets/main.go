package datasets

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo"

	"vapor/api/contexts"
	s "vapor/api/models/constants/sort"
	"vapor/api/models/dtos"
	errorDtos "vapor/api/models/dtos/errors"
	"vapor/api/mvc"
	esRepo "vapor/api/repositories/elasticsearch"
)

func GetDatasetAnnotations(c echo.Context) error {
	fmt.Printf("[%s] - GetDatasetAnnotations hit!\n", time.Now())
	gc := c.(*contexts.VaporContext)

	database, collection, chromosome, sampleIds, lowerBound, upperBound := mvc.RetrieveCommonElements(c)

	// retrieve other query parameters relevent to this 'get' query ---
	hgvsId := c.QueryParam("hgvsId")
	gene := c.QueryParam("gene")

	size := sizeOrDefault(c.QueryParam("size"))
	sortByStart := s.CastToSortDirection(c.QueryParam("sortByStart"))

	// an optional raw filter fragment is appended to the
	// query as-is, for the long tail of fields the fixed
	// parameters never cover
	var customFilter map[string]interface{}
	filterQP := c.QueryParam("filter")
	if len(filterQP) > 0 {
		if parseErr := json.Unmarshal([]byte(filterQP), &customFilter); parseErr != nil {
			return c.JSON(http.StatusBadRequest, errorDtos.CreateSimpleBadRequest("Invalid 'filter' fragment!"))
		}
	}
	// ---

	results, searchErr := gc.DatasetService.GetAnnotations(c.Request().Context(), database, collection,
		esRepo.AnnotationSearchParams{
			HgvsId:       hgvsId,
			Chromosome:   chromosome,
			Gene:         gene,
			SampleIds:    sampleIds,
			LowerBound:   lowerBound,
			UpperBound:   upperBound,
			CustomFilter: customFilter,
			Size:         size,
			SortByStart:  sortByStart,
		})
	if searchErr != nil {
		return c.JSON(http.StatusInternalServerError, dtos.AnnotationsResponseDTO{
			Status:  500,
			Message: "Something went wrong.. Please contact the administrator!",
		})
	}

	return c.JSON(http.StatusOK, dtos.AnnotationsResponseDTO{
		Status:  200,
		Message: "Success",
		Count:   len(results),
		Results: results,
	})
}

func CountDatasetAnnotations(c echo.Context) error {
	fmt.Printf("[%s] - CountDatasetAnnotations hit!\n", time.Now())
	gc := c.(*contexts.VaporContext)

	database, collection, chromosome, sampleIds, lowerBound, upperBound := mvc.RetrieveCommonElements(c)

	hgvsId := c.QueryParam("hgvsId")
	gene := c.QueryParam("gene")

	count, countErr := gc.DatasetService.CountAnnotations(c.Request().Context(), database, collection,
		esRepo.AnnotationSearchParams{
			HgvsId:     hgvsId,
			Chromosome: chromosome,
			Gene:       gene,
			SampleIds:  sampleIds,
			LowerBound: lowerBound,
			UpperBound: upperBound,
		})
	if countErr != nil {
		return c.JSON(http.StatusInternalServerError, dtos.CountResponseDTO{
			Status:  500,
			Message: "Something went wrong.. Please contact the administrator!",
		})
	}

	return c.JSON(http.StatusOK, dtos.CountResponseDTO{
		Status:  200,
		Message: "Success",
		Count:   count,
	})
}

func DeleteDatasetAnnotations(c echo.Context) error {
	fmt.Printf("[%s] - DeleteDatasetAnnotations hit!\n", time.Now())
	gc := c.(*contexts.VaporContext)

	database, collection, _, _, _, _ := mvc.RetrieveCommonElements(c)

	deleted, deleteErr := gc.DatasetService.DeleteAnnotations(c.Request().Context(), database, collection)
	if deleteErr != nil {
		return c.JSON(http.StatusInternalServerError, dtos.DeletedResponseDTO{
			Status:  500,
			Message: "Something went wrong.. Please contact the administrator!",
		})
	}

	return c.JSON(http.StatusOK, dtos.DeletedResponseDTO{
		Status:  200,
		Message: "Success",
		Deleted: deleted,
	})
}

func GetDatasetAnnotationsOverview(c echo.Context) error {
	fmt.Printf("[%s] - GetDatasetAnnotationsOverview hit!\n", time.Now())
	gc := c.(*contexts.VaporContext)

	database, collection, _, _, _, _ := mvc.RetrieveCommonElements(c)

	resultsMap := gc.DatasetService.GetAnnotationsOverview(c.Request().Context(), database, collection)

	return c.JSON(http.StatusOK, resultsMap)
}

func GetDatasetSamples(c echo.Context) error {
	fmt.Printf("[%s] - GetDatasetSamples hit!\n", time.Now())
	gc := c.(*contexts.VaporContext)

	database, collection, _, _, _, _ := mvc.RetrieveCommonElements(c)

	sampleIds, searchErr := gc.DatasetService.GetDistinctSampleIds(c.Request().Context(), database, collection)
	if searchErr != nil {
		return c.JSON(http.StatusInternalServerError, dtos.SamplesResponseDTO{
			Status:  500,
			Message: "Something went wrong.. Please contact the administrator!",
		})
	}

	return c.JSON(http.StatusOK, dtos.SamplesResponseDTO{
		Status:  200,
		Message: "Success",
		Count:   len(sampleIds),
		Samples: sampleIds,
	})
}

func GetDatasetAnnotationsCsv(c echo.Context) error {
	fmt.Printf("[%s] - GetDatasetAnnotationsCsv hit!\n", time.Now())
	gc := c.(*contexts.VaporContext)

	database, collection, chromosome, sampleIds, lowerBound, upperBound := mvc.RetrieveCommonElements(c)

	size := sizeOrDefault(c.QueryParam("size"))

	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=\"annotations.csv\"")
	c.Response().WriteHeader(http.StatusOK)

	_, writeErr := gc.DatasetService.WriteAnnotationsCsv(c.Request().Context(), c.Response(), database, collection,
		esRepo.AnnotationSearchParams{
			Chromosome:  chromosome,
			SampleIds:   sampleIds,
			LowerBound:  lowerBound,
			UpperBound:  upperBound,
			Size:        size,
			SortByStart: s.Ascending,
		})

	return writeErr
}

func GetRareDeleteriousAnnotations(c echo.Context) error {
	fmt.Printf("[%s] - GetRareDeleteriousAnnotations hit!\n", time.Now())
	gc := c.(*contexts.VaporContext)

	database, collection, _, sampleIds, _, _ := mvc.RetrieveCommonElements(c)

	size := sizeOrDefault(c.QueryParam("size"))

	results, searchErr := gc.DatasetService.GetRareDeleteriousAnnotations(c.Request().Context(), database, collection, sampleIds, size)
	if searchErr != nil {
		return c.JSON(http.StatusInternalServerError, dtos.AnnotationsResponseDTO{
			Status:  500,
			Message: "Something went wrong.. Please contact the administrator!",
		})
	}

	return c.JSON(http.StatusOK, dtos.AnnotationsResponseDTO{
		Status:  200,
		Message: "Success",
		Count:   len(results),
		Results: results,
	})
}

func GetKnownDiseaseAnnotations(c echo.Context) error {
	fmt.Printf("[%s] - GetKnownDiseaseAnnotations hit!\n", time.Now())
	gc := c.(*contexts.VaporContext)

	database, collection, _, sampleIds, _, _ := mvc.RetrieveCommonElements(c)

	size := sizeOrDefault(c.QueryParam("size"))

	results, searchErr := gc.DatasetService.GetKnownDiseaseAnnotations(c.Request().Context(), database, collection, sampleIds, size)
	if searchErr != nil {
		return c.JSON(http.StatusInternalServerError, dtos.AnnotationsResponseDTO{
			Status:  500,
			Message: "Something went wrong.. Please contact the administrator!",
		})
	}

	return c.JSON(http.StatusOK, dtos.AnnotationsResponseDTO{
		Status:  200,
		Message: "Success",
		Count:   len(results),
		Results: results,
	})
}

func sizeOrDefault(sizeQP string) int {
	var (
		defaultSize = 100
		size        int
	)

	size = defaultSize
	if len(sizeQP) > 0 {
		parsedSize, sErr := strconv.Atoi(sizeQP)

		if sErr == nil && parsedSize != 0 {
			size = parsedSize
		}
	}
	return size
}
