package discovery

import (
	"errors"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/sdkrel/internal/pymeta"
	"github.com/temirov/sdkrel/internal/specsource"
)

const (
	discovererNotConfiguredMessageConstant = "discovery service requires a package discoverer"
	packageMetadataSkippedMessageConstant  = "skipping package without readable metadata"
	logFieldPackageDirectoryConstant       = "package_directory"
)

// PackageDescriptor summarizes a discovered package for reporting and pipeline targeting.
type PackageDescriptor struct {
	Name             string                    `json:"name"`
	Version          string                    `json:"version"`
	DirectoryPath    string                    `json:"directory_path"`
	ServiceDirectory string                    `json:"service_directory"`
	Plane            specsource.Plane          `json:"plane"`
	Mode             specsource.GenerationMode `json:"mode"`
	RequiresPython   string                    `json:"requires_python,omitempty"`
	Inactive         bool                      `json:"inactive"`
}

// FilterOptions controls which discovered packages are retained.
// PythonVersion, when set, keeps only packages whose requires-python
// specifier admits that interpreter version.
type FilterOptions struct {
	IncludeManagement bool
	IncludeDataPlane  bool
	IncludeInactive   bool
	NameFilter        string
	PythonVersion     string
}

// PackageDiscoverer lists candidate package directories beneath monorepo roots.
type PackageDiscoverer interface {
	DiscoverPackages(monorepoRoots []string) ([]string, error)
}

// Service resolves package descriptors for monorepo roots.
type Service struct {
	logger     *zap.Logger
	discoverer PackageDiscoverer
}

// NewService constructs a discovery service.
func NewService(logger *zap.Logger, discoverer PackageDiscoverer) (*Service, error) {
	if discoverer == nil {
		return nil, errors.New(discovererNotConfiguredMessageConstant)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger, discoverer: discoverer}, nil
}

// DiscoverDescriptors walks the roots and produces filtered package descriptors.
func (service *Service) DiscoverDescriptors(monorepoRoots []string, filterOptions FilterOptions) ([]PackageDescriptor, error) {
	packageDirectories, discoveryError := service.discoverer.DiscoverPackages(monorepoRoots)
	if discoveryError != nil {
		return nil, discoveryError
	}

	descriptors := make([]PackageDescriptor, 0, len(packageDirectories))
	for _, packageDirectory := range packageDirectories {
		packageMetadata, metadataError := pymeta.LoadMetadata(packageDirectory)
		if metadataError != nil {
			service.logger.Warn(
				packageMetadataSkippedMessageConstant,
				zap.String(logFieldPackageDirectoryConstant, packageDirectory),
				zap.Error(metadataError),
			)
			continue
		}

		descriptor := PackageDescriptor{
			Name:             packageMetadata.Name,
			Version:          packageMetadata.Version,
			DirectoryPath:    packageDirectory,
			ServiceDirectory: filepath.Base(filepath.Dir(packageDirectory)),
			Plane:            specsource.DetectPlane(packageMetadata.Name),
			Mode:             specsource.DetectMode(packageDirectory),
			RequiresPython:   packageMetadata.RequiresPython,
			Inactive:         packageMetadata.IsInactive(),
		}

		if descriptorMatchesFilter(descriptor, filterOptions) {
			descriptors = append(descriptors, descriptor)
		}
	}

	return descriptors, nil
}

func descriptorMatchesFilter(descriptor PackageDescriptor, filterOptions FilterOptions) bool {
	if specsource.IsNamespacePackage(descriptor.Name) {
		return false
	}
	if descriptor.Inactive && !filterOptions.IncludeInactive {
		return false
	}
	if descriptor.Plane == specsource.PlaneManagement && !filterOptions.IncludeManagement {
		return false
	}
	if descriptor.Plane == specsource.PlaneData && !filterOptions.IncludeDataPlane {
		return false
	}
	if len(filterOptions.NameFilter) > 0 && !matchesNameFilter(descriptor.Name, filterOptions.NameFilter) {
		return false
	}
	if len(filterOptions.PythonVersion) > 0 && len(descriptor.RequiresPython) > 0 {
		// Unparseable specifiers never exclude a package.
		supportsInterpreter, compatibilityError := pymeta.SupportsInterpreter(descriptor.RequiresPython, filterOptions.PythonVersion)
		if compatibilityError == nil && !supportsInterpreter {
			return false
		}
	}
	return true
}

func matchesNameFilter(packageName string, nameFilter string) bool {
	matched, matchError := filepath.Match(nameFilter, packageName)
	if matchError != nil {
		return false
	}
	return matched
}
