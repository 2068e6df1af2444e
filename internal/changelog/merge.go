package changelog

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	changelogFileNameConstant          = "CHANGELOG.md"
	changelogTitleConstant             = "# Release History"
	changelogReadErrorTemplateConstant = "unable to read changelog %s: %w"
	changelogWriteErrorTemplate        = "unable to write changelog %s: %w"
	changelogFilePermissionsConstant   = 0o644
)

var (
	releaseHeadingPattern    = regexp.MustCompile(`(?m)^## .+$`)
	unreleasedHeadingPattern = regexp.MustCompile(`(?m)^## \S+ \(Unreleased\)\s*$`)
)

// ChangelogPath returns the changelog location inside a package directory.
func ChangelogPath(packageDirectory string) string {
	return filepath.Join(packageDirectory, changelogFileNameConstant)
}

// MergeIntoChangelog inserts a rendered release section into the changelog
// file. An existing Unreleased section for any version is replaced; otherwise
// the new section lands above the most recent release. A missing changelog is
// created with the standard title.
func MergeIntoChangelog(changelogPath string, renderedSection string) error {
	existingContent, readError := os.ReadFile(changelogPath)
	if readError != nil {
		if !os.IsNotExist(readError) {
			return fmt.Errorf(changelogReadErrorTemplateConstant, changelogPath, readError)
		}
		existingContent = []byte(changelogTitleConstant + "\n")
	}

	mergedContent := mergeSection(string(existingContent), renderedSection)

	if writeError := os.WriteFile(changelogPath, []byte(mergedContent), changelogFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(changelogWriteErrorTemplate, changelogPath, writeError)
	}
	return nil
}

func mergeSection(existingContent string, renderedSection string) string {
	trimmedSection := strings.TrimRight(renderedSection, "\n")

	unreleasedLocation := unreleasedHeadingPattern.FindStringIndex(existingContent)
	if unreleasedLocation != nil {
		sectionEnd := len(existingContent)
		remainingHeadings := releaseHeadingPattern.FindAllStringIndex(existingContent[unreleasedLocation[1]:], 1)
		if len(remainingHeadings) > 0 {
			sectionEnd = unreleasedLocation[1] + remainingHeadings[0][0]
		}
		return existingContent[:unreleasedLocation[0]] + trimmedSection + "\n\n" + strings.TrimLeft(existingContent[sectionEnd:], "\n")
	}

	firstHeadingLocation := releaseHeadingPattern.FindStringIndex(existingContent)
	if firstHeadingLocation != nil {
		return existingContent[:firstHeadingLocation[0]] + trimmedSection + "\n\n" + existingContent[firstHeadingLocation[0]:]
	}

	return strings.TrimRight(existingContent, "\n") + "\n\n" + trimmedSection + "\n"
}
