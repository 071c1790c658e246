package middleware

import (
	"strings"

	"github.com/labstack/echo"

	"vapor/api/contexts"
)

/*
Echo middleware to prepare the context for an optionally provided pluralized
`id` (spelled `ids`) HTTP query parameter. An absent parameter simply means
no sample filter.
*/
func CalibrateOptionalSampleIdsPluralAttribute(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		gc := c.(*contexts.VaporContext)

		// check for id's query parameter
		sampleIdQP := c.QueryParam("ids")
		if len(sampleIdQP) > 0 {
			gc.SampleIds = append(gc.SampleIds, strings.Split(sampleIdQP, ",")...)
		}

		return next(gc)
	}
}
