package mvc

import (
	"github.com/labstack/echo"

	"vapor/api/contexts"
)

func RetrieveCommonElements(c echo.Context) (string, string, string, []string, int, int) {
	gc := c.(*contexts.VaporContext)

	database := gc.Database
	collection := gc.Collection

	chromosome := gc.Chromosome

	sampleIds := gc.SampleIds

	lowerBound := gc.LowerBound
	upperBound := gc.UpperBound

	return database, collection, chromosome, sampleIds, lowerBound, upperBound
}
