package pymeta

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	pyprojectFileNameConstant           = "pyproject.toml"
	setupFileNameConstant               = "setup.py"
	inactiveClassifierConstant          = "Development Status :: 7 - Inactive"
	metadataFileMissingTemplateConstant = "no %s or %s found in %s"
	pyprojectParseErrorTemplateConstant = "failed to parse %s: %w"
	setupReadErrorTemplateConstant      = "failed to read %s: %w"
	packageNameMissingTemplateConstant  = "package name missing in %s"
	setupNamePatternConstant            = `name\s*=\s*["']([^"']+)["']`
	setupVersionPatternConstant         = `version\s*=\s*["']([^"']+)["']`
	setupPythonRequiresPatternConstant  = `python_requires\s*=\s*["']([^"']+)["']`
)

var (
	setupNamePattern           = regexp.MustCompile(setupNamePatternConstant)
	setupVersionPattern        = regexp.MustCompile(setupVersionPatternConstant)
	setupPythonRequiresPattern = regexp.MustCompile(setupPythonRequiresPatternConstant)
)

// PackageMetadata captures the packaging information of a Python package.
type PackageMetadata struct {
	Name           string
	Version        string
	RequiresPython string
	Classifiers    []string
	Dependencies   []string
	DirectoryPath  string
	FromPyproject  bool
}

type pyprojectDocument struct {
	Project pyprojectProjectTable `toml:"project"`
}

type pyprojectProjectTable struct {
	Name           string   `toml:"name"`
	Version        string   `toml:"version"`
	RequiresPython string   `toml:"requires-python"`
	Classifiers    []string `toml:"classifiers"`
	Dependencies   []string `toml:"dependencies"`
}

// LoadMetadata reads package metadata from pyproject.toml with a setup.py fallback.
func LoadMetadata(packageDirectory string) (PackageMetadata, error) {
	pyprojectPath := filepath.Join(packageDirectory, pyprojectFileNameConstant)
	if pyprojectContent, readError := os.ReadFile(pyprojectPath); readError == nil {
		return parsePyproject(packageDirectory, pyprojectPath, pyprojectContent)
	}

	setupPath := filepath.Join(packageDirectory, setupFileNameConstant)
	setupContent, setupReadError := os.ReadFile(setupPath)
	if setupReadError != nil {
		return PackageMetadata{}, fmt.Errorf(metadataFileMissingTemplateConstant, pyprojectFileNameConstant, setupFileNameConstant, packageDirectory)
	}

	return parseSetup(packageDirectory, setupPath, setupContent)
}

// IsInactive reports whether the package carries the inactive development classifier.
func (metadata PackageMetadata) IsInactive() bool {
	for _, classifier := range metadata.Classifiers {
		if strings.TrimSpace(classifier) == inactiveClassifierConstant {
			return true
		}
	}
	return false
}

func parsePyproject(packageDirectory string, pyprojectPath string, pyprojectContent []byte) (PackageMetadata, error) {
	var parsedDocument pyprojectDocument
	if unmarshalError := toml.Unmarshal(pyprojectContent, &parsedDocument); unmarshalError != nil {
		return PackageMetadata{}, fmt.Errorf(pyprojectParseErrorTemplateConstant, pyprojectPath, unmarshalError)
	}

	if len(strings.TrimSpace(parsedDocument.Project.Name)) == 0 {
		return PackageMetadata{}, fmt.Errorf(packageNameMissingTemplateConstant, pyprojectPath)
	}

	packageMetadata := PackageMetadata{
		Name:           strings.TrimSpace(parsedDocument.Project.Name),
		Version:        strings.TrimSpace(parsedDocument.Project.Version),
		RequiresPython: strings.TrimSpace(parsedDocument.Project.RequiresPython),
		Classifiers:    parsedDocument.Project.Classifiers,
		Dependencies:   parsedDocument.Project.Dependencies,
		DirectoryPath:  packageDirectory,
		FromPyproject:  true,
	}

	if len(packageMetadata.Version) == 0 {
		if versionFromFile, versionError := ReadPackageVersion(packageDirectory); versionError == nil {
			packageMetadata.Version = versionFromFile
		}
	}

	return packageMetadata, nil
}

func parseSetup(packageDirectory string, setupPath string, setupContent []byte) (PackageMetadata, error) {
	setupText := string(setupContent)

	nameMatches := setupNamePattern.FindStringSubmatch(setupText)
	if nameMatches == nil {
		return PackageMetadata{}, fmt.Errorf(packageNameMissingTemplateConstant, setupPath)
	}

	packageMetadata := PackageMetadata{
		Name:          nameMatches[1],
		DirectoryPath: packageDirectory,
	}

	if versionMatches := setupVersionPattern.FindStringSubmatch(setupText); versionMatches != nil {
		packageMetadata.Version = versionMatches[1]
	}
	if requiresMatches := setupPythonRequiresPattern.FindStringSubmatch(setupText); requiresMatches != nil {
		packageMetadata.RequiresPython = requiresMatches[1]
	}

	if len(packageMetadata.Version) == 0 {
		if versionFromFile, versionError := ReadPackageVersion(packageDirectory); versionError == nil {
			packageMetadata.Version = versionFromFile
		}
	}

	return packageMetadata, nil
}
