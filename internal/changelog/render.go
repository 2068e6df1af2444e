package changelog

import (
	"fmt"
	"strings"

	"github.com/temirov/sdkrel/internal/codereport"
)

const (
	versionHeadingTemplateConstant     = "## %s (%s)"
	unreleasedDateLabelConstant        = "Unreleased"
	featuresSectionHeadingConstant     = "### Features Added"
	breakingSectionHeadingConstant     = "### Breaking Changes"
	bugsFixedSectionHeadingConstant    = "### Bugs Fixed"
	otherChangesSectionHeadingConstant = "### Other Changes"
	emptyChangeSetEntryConstant        = "Internal updates with no client surface changes"
	changeEntryBulletTemplateConstant  = "- %s"
	markdownSectionSeparatorConstant   = "\n\n"
)

// SectionContent carries the classified change entries for one release section.
type SectionContent struct {
	Version   string
	Date      string
	Features  []string
	Breaking  []string
	BugsFixed []string
	Other     []string
}

// NewSectionContent builds section content from a computed change set. An
// empty change set yields a single generic entry under Other Changes.
func NewSectionContent(version string, date string, changeSet codereport.ChangeSet) SectionContent {
	sectionContent := SectionContent{
		Version:  version,
		Date:     date,
		Features: changeSet.Features,
		Breaking: changeSet.Breaking,
	}
	if changeSet.IsEmpty() {
		sectionContent.Other = []string{emptyChangeSetEntryConstant}
	}
	return sectionContent
}

// RenderSection produces the markdown block for one release, headed by the
// version and date.
func RenderSection(sectionContent SectionContent) string {
	dateLabel := strings.TrimSpace(sectionContent.Date)
	if len(dateLabel) == 0 {
		dateLabel = unreleasedDateLabelConstant
	}

	sectionBlocks := []string{fmt.Sprintf(versionHeadingTemplateConstant, sectionContent.Version, dateLabel)}
	sectionBlocks = appendEntryBlock(sectionBlocks, featuresSectionHeadingConstant, sectionContent.Features)
	sectionBlocks = appendEntryBlock(sectionBlocks, breakingSectionHeadingConstant, sectionContent.Breaking)
	sectionBlocks = appendEntryBlock(sectionBlocks, bugsFixedSectionHeadingConstant, sectionContent.BugsFixed)
	sectionBlocks = appendEntryBlock(sectionBlocks, otherChangesSectionHeadingConstant, sectionContent.Other)

	return strings.Join(sectionBlocks, markdownSectionSeparatorConstant) + "\n"
}

func appendEntryBlock(sectionBlocks []string, sectionHeading string, entries []string) []string {
	if len(entries) == 0 {
		return sectionBlocks
	}
	bulletLines := make([]string, 0, len(entries))
	for _, entry := range entries {
		bulletLines = append(bulletLines, fmt.Sprintf(changeEntryBulletTemplateConstant, entry))
	}
	return append(sectionBlocks, sectionHeading+markdownSectionSeparatorConstant+strings.Join(bulletLines, "\n"))
}
