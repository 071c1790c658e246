package serviceInfo

import (
	"vapor/api/contexts"
	serviceInfo "vapor/api/models/constants/service-info"

	"net/http"

	"github.com/labstack/echo"
)

// Spec: https://github.com/ga4gh-discovery/ga4gh-service-info
func GetServiceInfo(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"type": map[string]interface{}{
			"artifact": serviceInfo.SERVICE_ARTIFACT,
			"group":    serviceInfo.SERVICE_TYPE_NO_VER,
			"version":  c.(*contexts.VaporContext).Config.SemVer,
		},
		"id":          serviceInfo.SERVICE_ID,
		"name":        serviceInfo.SERVICE_NAME,
		"description": serviceInfo.SERVICE_DESCRIPTION,
		"organization": map[string]string{
			"name": "Vapor",
			"url":  "https://vapor.bio",
		},
		"contactUrl": c.(*contexts.VaporContext).Config.ServiceContact,
		"version":    c.(*contexts.VaporContext).Config.SemVer,
	})
}
