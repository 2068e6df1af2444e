package generate

import (
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/sdkrel/internal/discovery"
	"github.com/temirov/sdkrel/internal/specsource"
)

// TargetSelection narrows discovery to the packages a run should regenerate.
type TargetSelection struct {
	Roots         []string
	ExcludedPaths []string
	PackageFilter string
	TagOverride   string
}

// ResolveTargets discovers packages beneath the roots and turns each one with
// recognizable generation inputs into a regeneration target. Swagger targets
// resolve their readme and default tag; packages without inputs are skipped.
func ResolveTargets(logger *zap.Logger, selection TargetSelection) ([]Target, error) {
	discoveryService, discoveryServiceError := discovery.NewService(logger, discovery.NewFilesystemPackageDiscoverer(selection.ExcludedPaths))
	if discoveryServiceError != nil {
		return nil, discoveryServiceError
	}

	descriptors, discoveryError := discoveryService.DiscoverDescriptors(selection.Roots, discovery.FilterOptions{
		IncludeManagement: true,
		IncludeDataPlane:  true,
		NameFilter:        strings.TrimSpace(selection.PackageFilter),
	})
	if discoveryError != nil {
		return nil, discoveryError
	}

	targets := make([]Target, 0, len(descriptors))
	for _, descriptor := range descriptors {
		if descriptor.Mode == specsource.ModeUnknown {
			continue
		}
		target := Target{
			PackageName:      descriptor.Name,
			PackageDirectory: descriptor.DirectoryPath,
			Mode:             descriptor.Mode,
			Tag:              strings.TrimSpace(selection.TagOverride),
		}
		if descriptor.Mode == specsource.ModeSwagger {
			readmePath, readmeFound := specsource.SwaggerReadmePath(descriptor.DirectoryPath)
			if !readmeFound {
				continue
			}
			target.ReadmePath = readmePath
			target.SdkFolder = sdkFolderForPackage(descriptor.DirectoryPath)
			if len(target.Tag) == 0 {
				if autorestConfiguration, configurationError := specsource.LoadAutorestConfiguration(readmePath); configurationError == nil {
					target.Tag = autorestConfiguration.DefaultTag()
				}
			}
		}
		targets = append(targets, target)
	}
	return targets, nil
}

func sdkFolderForPackage(packageDirectory string) string {
	serviceDirectory := filepath.Dir(packageDirectory)
	sdkDirectory := filepath.Dir(serviceDirectory)
	if filepath.Base(sdkDirectory) == sdkDirectoryNameConstant {
		return sdkDirectory
	}
	return ""
}
