package middleware

import (
	"net/http"

	"github.com/labstack/echo"

	"vapor/api/contexts"
	genomeBuild "vapor/api/models/constants/genome-build"
)

/*
Echo middleware to ensure an optionally provided `genomeBuild` HTTP query parameter
is valid, falling back on the configured default when absent
*/
func ValidateOptionalGenomeBuildAttribute(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		gc := c.(*contexts.VaporContext)

		// check for genomeBuild query parameter
		buildQP := c.QueryParam("genomeBuild")
		if len(buildQP) == 0 {
			gc.GenomeBuild = genomeBuild.CastToGenomeBuild(gc.Config.Annotation.DefaultGenomeBuild)
			return next(gc)
		}

		if !genomeBuild.IsKnownGenomeBuild(buildQP) {
			// if an unknown build was provided, return an error
			return echo.NewHTTPError(http.StatusBadRequest, "Unknown genomeBuild!")
		}

		// forward a type-safe value down the pipeline
		gc.GenomeBuild = genomeBuild.CastToGenomeBuild(buildQP)
		return next(gc)
	}
}
