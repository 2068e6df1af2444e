package discovery

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	sdkDirectoryNameConstant  = "sdk"
	pyprojectFileNameConstant = "pyproject.toml"
	setupFileNameConstant     = "setup.py"
)

// FilesystemPackageDiscoverer locates Python packages on disk.
type FilesystemPackageDiscoverer struct {
	excludedPaths []string
}

// NewFilesystemPackageDiscoverer constructs a discoverer honoring the supplied exclusion list.
//
// Exclusions are repo-relative paths such as "sdk/textanalytics/azure-ai-textanalytics",
// used while a package migrates between service directories.
func NewFilesystemPackageDiscoverer(excludedPaths []string) *FilesystemPackageDiscoverer {
	normalizedExclusions := make([]string, 0, len(excludedPaths))
	for _, excludedPath := range excludedPaths {
		trimmedPath := strings.TrimSpace(excludedPath)
		if len(trimmedPath) == 0 {
			continue
		}
		normalizedExclusions = append(normalizedExclusions, filepath.ToSlash(trimmedPath))
	}
	return &FilesystemPackageDiscoverer{excludedPaths: normalizedExclusions}
}

// DiscoverPackages walks the provided monorepo roots and returns package directories.
//
// A package directory is any sdk/<service>/<package> directory holding a
// pyproject.toml or setup.py.
func (discoverer *FilesystemPackageDiscoverer) DiscoverPackages(monorepoRoots []string) ([]string, error) {
	seenDirectories := make(map[string]struct{})
	var packageDirectories []string

	for _, monorepoRoot := range monorepoRoots {
		sdkDirectory := filepath.Join(monorepoRoot, sdkDirectoryNameConstant)

		serviceEntries, readError := os.ReadDir(sdkDirectory)
		if readError != nil {
			continue
		}

		for _, serviceEntry := range serviceEntries {
			if !serviceEntry.IsDir() {
				continue
			}
			serviceDirectory := filepath.Join(sdkDirectory, serviceEntry.Name())

			packageEntries, packageReadError := os.ReadDir(serviceDirectory)
			if packageReadError != nil {
				continue
			}

			for _, packageEntry := range packageEntries {
				if !packageEntry.IsDir() {
					continue
				}
				packageDirectory := filepath.Join(serviceDirectory, packageEntry.Name())
				if !containsMetadataFile(packageDirectory) {
					continue
				}
				if discoverer.isExcluded(monorepoRoot, packageDirectory) {
					continue
				}
				if _, alreadySeen := seenDirectories[packageDirectory]; alreadySeen {
					continue
				}
				seenDirectories[packageDirectory] = struct{}{}
				packageDirectories = append(packageDirectories, packageDirectory)
			}
		}
	}

	sort.Strings(packageDirectories)
	return packageDirectories, nil
}

func (discoverer *FilesystemPackageDiscoverer) isExcluded(monorepoRoot string, packageDirectory string) bool {
	relativePath, relativeError := filepath.Rel(monorepoRoot, packageDirectory)
	if relativeError != nil {
		return false
	}
	normalizedRelativePath := filepath.ToSlash(relativePath)
	for _, excludedPath := range discoverer.excludedPaths {
		if normalizedRelativePath == excludedPath {
			return true
		}
	}
	return false
}

func containsMetadataFile(packageDirectory string) bool {
	for _, metadataFileName := range []string{pyprojectFileNameConstant, setupFileNameConstant} {
		if _, statError := os.Stat(filepath.Join(packageDirectory, metadataFileName)); statError == nil {
			return true
		}
	}
	return false
}
