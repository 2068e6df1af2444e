package pepver

import (
	"fmt"
	"strings"
)

const (
	unsupportedChangeLevelTemplateConstant = "unsupported change level: %s"
	changeLevelBreakingStringConstant      = "breaking"
	changeLevelFeatureStringConstant       = "feature"
	changeLevelBugfixStringConstant        = "bugfix"
	firstPreReleaseNumberConstant          = 1
	devBuildIdentifierRequiredMessage      = "development build identifier must be provided"
)

// ChangeLevel classifies the impact of a release.
type ChangeLevel string

// Supported change levels.
const (
	ChangeLevelBreaking ChangeLevel = ChangeLevel(changeLevelBreakingStringConstant)
	ChangeLevelFeature  ChangeLevel = ChangeLevel(changeLevelFeatureStringConstant)
	ChangeLevelBugfix   ChangeLevel = ChangeLevel(changeLevelBugfixStringConstant)
)

// ParseChangeLevel validates a textual change level.
func ParseChangeLevel(levelText string) (ChangeLevel, error) {
	normalizedLevel := ChangeLevel(strings.ToLower(strings.TrimSpace(levelText)))
	switch normalizedLevel {
	case ChangeLevelBreaking, ChangeLevelFeature, ChangeLevelBugfix:
		return normalizedLevel, nil
	default:
		return "", fmt.Errorf(unsupportedChangeLevelTemplateConstant, levelText)
	}
}

// FirstReleaseVersion returns the version assigned to a brand-new package.
func FirstReleaseVersion() Version {
	return Version{Major: 1, Minor: 0, Patch: 0, PreReleaseKind: PreReleaseBeta, PreReleaseNumber: firstPreReleaseNumberConstant}
}

// Next computes the version following currentVersion for the given change level.
//
// Preview releases continue an existing pre-release series when one is active
// and otherwise open a new one on the bumped release number. Stable releases
// of an active pre-release series drop the suffix without bumping again.
func Next(currentVersion Version, level ChangeLevel, preview bool) Version {
	baseVersion := currentVersion
	baseVersion.HasDevelopment = false
	baseVersion.DevelopmentNumber = 0

	if preview {
		if baseVersion.IsPreview() {
			baseVersion.PreReleaseNumber++
			return baseVersion
		}
		bumpedVersion := bumpRelease(baseVersion, level)
		bumpedVersion.PreReleaseKind = PreReleaseBeta
		bumpedVersion.PreReleaseNumber = firstPreReleaseNumberConstant
		return bumpedVersion
	}

	if baseVersion.IsPreview() {
		baseVersion.PreReleaseKind = PreReleaseNone
		baseVersion.PreReleaseNumber = 0
		return baseVersion
	}

	return bumpRelease(baseVersion, level)
}

// AppendDevelopmentBuild stamps a nightly build identifier onto the version.
func AppendDevelopmentBuild(currentVersion Version, buildIdentifier int) (Version, error) {
	if buildIdentifier <= 0 {
		return Version{}, fmt.Errorf(devBuildIdentifierRequiredMessage)
	}

	stampedVersion := currentVersion
	if stampedVersion.PreReleaseKind == PreReleaseNone {
		stampedVersion.PreReleaseKind = PreReleaseAlpha
		stampedVersion.PreReleaseNumber = buildIdentifier
		return stampedVersion, nil
	}

	stampedVersion.DevelopmentNumber = buildIdentifier
	stampedVersion.HasDevelopment = true
	return stampedVersion, nil
}

func bumpRelease(baseVersion Version, level ChangeLevel) Version {
	bumpedVersion := baseVersion
	bumpedVersion.PreReleaseKind = PreReleaseNone
	bumpedVersion.PreReleaseNumber = 0

	switch level {
	case ChangeLevelBreaking:
		bumpedVersion.Major++
		bumpedVersion.Minor = 0
		bumpedVersion.Patch = 0
	case ChangeLevelFeature:
		bumpedVersion.Minor++
		bumpedVersion.Patch = 0
	default:
		bumpedVersion.Patch++
	}

	return bumpedVersion
}
