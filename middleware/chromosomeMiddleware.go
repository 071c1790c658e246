package middleware

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo"

	"vapor/api/contexts"
	"vapor/api/models/constants/chromosome"
)

/*
Echo middleware to ensure an optionally provided `chromosome` HTTP query
parameter names a real human chromosome. An absent parameter widens the
query to every chromosome.
*/
func ValidateOptionalChromosomeAttribute(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		// check for chromosome query parameter
		chromQP := c.QueryParam("chromosome")
		if len(chromQP) == 0 {
			return next(c)
		}

		if !chromosome.IsValidHumanChromosome(chromQP) {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid chromosome %s!", chromQP))
		}

		gc := c.(*contexts.VaporContext)
		gc.Chromosome = chromQP

		return next(gc)
	}
}
