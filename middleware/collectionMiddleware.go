package middleware

import (
	"net/http"

	"github.com/labstack/echo"

	"vapor/api/contexts"
	"vapor/api/models/dtos/errors"
)

/*
Echo middleware to ensure valid `database` and `collection` HTTP query
parameters were provided, naming the annotation collection to read
*/
func MandateCollectionAttributes(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		gc := c.(*contexts.VaporContext)

		// check for database and collection query parameters
		database := c.QueryParam("database")
		collection := c.QueryParam("collection")
		if len(database) == 0 || len(collection) == 0 {
			// if either name is missing, return an error
			return c.JSON(http.StatusBadRequest, errors.CreateSimpleBadRequest("missing database or collection"))
		}

		// forward type-safe values down the pipeline
		gc.Database = database
		gc.Collection = collection

		return next(gc)
	}
}
