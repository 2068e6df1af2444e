package pymeta

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	versionFileNameConstant            = "_version.py"
	legacyVersionFileNameConstant      = "version.py"
	versionAssignmentPatternConstant   = `VERSION\s*=\s*["']([^"']+)["']`
	versionAssignmentTemplateConstant  = `VERSION = "%s"`
	versionFileMissingTemplateConstant = "no version file found under %s"
	versionMissingTemplateConstant     = "no VERSION assignment found in %s"
	skippedDirectoryTestsConstant      = "tests"
	skippedDirectoryHiddenPrefix       = "."
)

var versionAssignmentPattern = regexp.MustCompile(versionAssignmentPatternConstant)

// FindVersionFile locates the _version.py (or legacy version.py) carrying the VERSION assignment.
func FindVersionFile(packageDirectory string) (string, error) {
	var discoveredPath string

	walkError := filepath.WalkDir(packageDirectory, func(candidatePath string, directoryEntry fs.DirEntry, entryError error) error {
		if entryError != nil {
			return nil
		}
		if directoryEntry.IsDir() {
			directoryName := directoryEntry.Name()
			if directoryName == skippedDirectoryTestsConstant || strings.HasPrefix(directoryName, skippedDirectoryHiddenPrefix) {
				return fs.SkipDir
			}
			return nil
		}

		fileName := directoryEntry.Name()
		if fileName != versionFileNameConstant && fileName != legacyVersionFileNameConstant {
			return nil
		}

		fileContent, readError := os.ReadFile(candidatePath)
		if readError != nil {
			return nil
		}
		if !versionAssignmentPattern.MatchString(string(fileContent)) {
			return nil
		}

		discoveredPath = candidatePath
		return fs.SkipAll
	})
	if walkError != nil {
		return "", walkError
	}

	if len(discoveredPath) == 0 {
		return "", fmt.Errorf(versionFileMissingTemplateConstant, packageDirectory)
	}
	return discoveredPath, nil
}

// ReadPackageVersion extracts the VERSION assignment from the package version file.
func ReadPackageVersion(packageDirectory string) (string, error) {
	versionFilePath, findError := FindVersionFile(packageDirectory)
	if findError != nil {
		return "", findError
	}

	fileContent, readError := os.ReadFile(versionFilePath)
	if readError != nil {
		return "", readError
	}

	assignmentMatches := versionAssignmentPattern.FindStringSubmatch(string(fileContent))
	if assignmentMatches == nil {
		return "", fmt.Errorf(versionMissingTemplateConstant, versionFilePath)
	}
	return assignmentMatches[1], nil
}

// WritePackageVersion rewrites the VERSION assignment in the package version file.
func WritePackageVersion(packageDirectory string, updatedVersion string) error {
	versionFilePath, findError := FindVersionFile(packageDirectory)
	if findError != nil {
		return findError
	}

	fileInfo, statError := os.Stat(versionFilePath)
	if statError != nil {
		return statError
	}

	fileContent, readError := os.ReadFile(versionFilePath)
	if readError != nil {
		return readError
	}

	if !versionAssignmentPattern.MatchString(string(fileContent)) {
		return fmt.Errorf(versionMissingTemplateConstant, versionFilePath)
	}

	replacementAssignment := fmt.Sprintf(versionAssignmentTemplateConstant, updatedVersion)
	updatedContent := versionAssignmentPattern.ReplaceAllString(string(fileContent), replacementAssignment)

	return os.WriteFile(versionFilePath, []byte(updatedContent), fileInfo.Mode())
}
