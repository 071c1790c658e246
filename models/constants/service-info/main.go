package serviceInfo

import "fmt"

type ServiceInfo string

var (
	SERVICE_NAME        ServiceInfo = "Vapor Annotation Service"
	SERVICE_WELCOME     ServiceInfo = "Welcome to the Vapor variant annotation API!"
	SERVICE_DESCRIPTION ServiceInfo = "Variant annotation pipeline merging local ANNOVAR output with MyVariant.info records."
	SERVICE_CONTACT     ServiceInfo = "mailto:support@vapor.bio"

	SERVICE_ARTIFACT    ServiceInfo = "vapor"
	SERVICE_VERSION     ServiceInfo = "0.1.0"
	SERVICE_TYPE_NO_VER ServiceInfo = ServiceInfo(fmt.Sprintf("org.vapor:%s", SERVICE_ARTIFACT))
	SERVICE_ID          ServiceInfo = SERVICE_TYPE_NO_VER
	SERVICE_TYPE        ServiceInfo = ServiceInfo(fmt.Sprintf("%s:%s", SERVICE_TYPE_NO_VER, SERVICE_VERSION))
)
