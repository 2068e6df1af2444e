package pymeta

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

const (
	pyprojectVersionPatternConstant         = `(?m)^(version\s*=\s*)["'][^"']*["']`
	pyprojectVersionReplacementConstant     = `${1}"%s"`
	pyprojectVersionMissingTemplateConstant = "no version assignment found in %s"
)

var pyprojectVersionPattern = regexp.MustCompile(pyprojectVersionPatternConstant)

// WritePyprojectVersion rewrites the [project] version assignment in pyproject.toml.
//
// The file is edited textually rather than re-marshalled so comments and
// formatting survive the bump.
func WritePyprojectVersion(packageDirectory string, updatedVersion string) error {
	pyprojectPath := filepath.Join(packageDirectory, pyprojectFileNameConstant)

	fileInfo, statError := os.Stat(pyprojectPath)
	if statError != nil {
		return statError
	}

	fileContent, readError := os.ReadFile(pyprojectPath)
	if readError != nil {
		return readError
	}

	if !pyprojectVersionPattern.MatchString(string(fileContent)) {
		return fmt.Errorf(pyprojectVersionMissingTemplateConstant, pyprojectPath)
	}

	replacement := fmt.Sprintf(pyprojectVersionReplacementConstant, updatedVersion)
	updatedContent := pyprojectVersionPattern.ReplaceAllString(string(fileContent), replacement)

	return os.WriteFile(pyprojectPath, []byte(updatedContent), fileInfo.Mode())
}
