package workflows

import (
	"fmt"
	"net/http"
	w "vapor/api/workflows"

	"github.com/labstack/echo"
)

func WorkflowsGet(c echo.Context) error {
	return c.JSON(http.StatusOK, w.WORKFLOW_ANNOTATION_SCHEMA)
}

func WorkflowsServeFile(c echo.Context) error {
	// retrieve wdl from storage and send to client
	if len(c.ParamValues()) > 0 && len(c.ParamValues()) < 2 {
		fileName := c.ParamValues()[0]
		return c.File(fmt.Sprintf("/app/workflows/%s", fileName))
	} else {
		return c.JSON(http.StatusBadRequest, "Invalid Request! Please only specify a filename; example : /workflows/vcf_basic.wdl")
	}
}
