package specsource

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	swaggerReadmeFileNameConstant   = "swagger/README.md"
	swaggerReadmeLowercaseConstant  = "swagger/readme.md"
	managementSegmentConstant       = "-mgmt-"
	namespacePackageSegmentConstant = "-nspkg"
)

// Packages outside the -mgmt- naming convention that are still released as
// management plane, mirroring the monorepo's identifier list.
var managementPackageIdentifiers = []string{
	"azure-cognitiveservices",
	"azure-servicefabric",
	"azure-keyvault",
	"azure-synapse",
}

// GenerationMode identifies the code generator a package is produced with.
type GenerationMode string

// Supported generation modes.
const (
	ModeSwagger  GenerationMode = GenerationMode("swagger")
	ModeTypeSpec GenerationMode = GenerationMode("typespec")
	ModeUnknown  GenerationMode = GenerationMode("unknown")
)

// Plane identifies the service plane of a package.
type Plane string

// Supported planes.
const (
	PlaneManagement Plane = Plane("management")
	PlaneData       Plane = Plane("data")
)

// DetectMode inspects a package directory and reports its generation mode.
func DetectMode(packageDirectory string) GenerationMode {
	typeSpecLocationPath := filepath.Join(packageDirectory, typeSpecLocationFileNameConstant)
	if _, statError := os.Stat(typeSpecLocationPath); statError == nil {
		return ModeTypeSpec
	}

	for _, readmeCandidate := range []string{swaggerReadmeFileNameConstant, swaggerReadmeLowercaseConstant} {
		readmePath := filepath.Join(packageDirectory, filepath.FromSlash(readmeCandidate))
		if _, statError := os.Stat(readmePath); statError == nil {
			return ModeSwagger
		}
	}

	return ModeUnknown
}

// SwaggerReadmePath returns the autorest readme path for a swagger package when present.
func SwaggerReadmePath(packageDirectory string) (string, bool) {
	for _, readmeCandidate := range []string{swaggerReadmeFileNameConstant, swaggerReadmeLowercaseConstant} {
		readmePath := filepath.Join(packageDirectory, filepath.FromSlash(readmeCandidate))
		if _, statError := os.Stat(readmePath); statError == nil {
			return readmePath, true
		}
	}
	return "", false
}

// DetectPlane classifies a package name as management or data plane.
func DetectPlane(packageName string) Plane {
	normalizedName := strings.ToLower(strings.TrimSpace(packageName))
	if strings.Contains(normalizedName, managementSegmentConstant) {
		return PlaneManagement
	}
	for _, managementIdentifier := range managementPackageIdentifiers {
		if strings.HasPrefix(normalizedName, managementIdentifier) {
			return PlaneManagement
		}
	}
	return PlaneData
}

// IsNamespacePackage reports whether the package is a namespace shim rather than a client library.
func IsNamespacePackage(packageName string) bool {
	return strings.Contains(strings.ToLower(packageName), namespacePackageSegmentConstant)
}
