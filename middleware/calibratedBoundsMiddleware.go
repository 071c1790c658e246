package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo"

	"vapor/api/contexts"
)

/*
Echo middleware to calibrate the optional `lowerBound` and `upperBound`
HTTP query parameters, which must arrive as a balanced pair or not at all
*/
func MandateCalibratedBounds(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		gc := c.(*contexts.VaporContext)

		lowerBound, lowerProvided, lowerErr := positiveIntQueryParam(c, "lowerBound")
		upperBound, upperProvided, upperErr := positiveIntQueryParam(c, "upperBound")
		if lowerErr != nil || upperErr != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid lower and upper bounds!")
		}

		// bounds come as a balanced pair or not at all
		if lowerProvided != upperProvided || (upperProvided && upperBound < lowerBound) {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid lower and upper bounds!")
		}

		gc.LowerBound = lowerBound
		gc.UpperBound = upperBound
		return next(gc)
	}
}

func positiveIntQueryParam(c echo.Context, name string) (int, bool, error) {
	qp := c.QueryParam(name)
	if len(qp) == 0 {
		return 0, false, nil
	}

	value, conversionErr := strconv.Atoi(qp)
	if conversionErr != nil || value < 0 {
		return 0, true, fmt.Errorf("invalid %s query parameter", name)
	}
	return value, true, nil
}
