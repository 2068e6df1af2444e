package pepver

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	versionParseErrorTemplateConstant     = "invalid version %q"
	versionSegmentSeparatorConstant       = "."
	developmentSegmentPrefixConstant      = ".dev"
	preReleaseAlphaIdentifierConstant     = "a"
	preReleaseBetaIdentifierConstant      = "b"
	preReleaseCandidateIdentifierConstant = "rc"
)

var versionPattern = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)(?:(a|b|rc)(\d+))?(?:\.dev(\d+))?$`)

// PreReleaseKind enumerates supported pre-release suffixes in precedence order.
type PreReleaseKind string

// Supported pre-release kinds.
const (
	PreReleaseNone      PreReleaseKind = PreReleaseKind("")
	PreReleaseAlpha     PreReleaseKind = PreReleaseKind(preReleaseAlphaIdentifierConstant)
	PreReleaseBeta      PreReleaseKind = PreReleaseKind(preReleaseBetaIdentifierConstant)
	PreReleaseCandidate PreReleaseKind = PreReleaseKind(preReleaseCandidateIdentifierConstant)
)

var preReleasePrecedence = map[PreReleaseKind]int{
	PreReleaseAlpha:     0,
	PreReleaseBeta:      1,
	PreReleaseCandidate: 2,
	PreReleaseNone:      3,
}

// Version represents a parsed package version.
type Version struct {
	Major             int
	Minor             int
	Patch             int
	PreReleaseKind    PreReleaseKind
	PreReleaseNumber  int
	DevelopmentNumber int
	HasDevelopment    bool
}

// ParseError indicates a version string could not be parsed.
type ParseError struct {
	Input string
}

// Error describes the parse failure.
func (parseError ParseError) Error() string {
	return fmt.Sprintf(versionParseErrorTemplateConstant, parseError.Input)
}

// Parse converts a textual version into a structured representation.
func Parse(versionText string) (Version, error) {
	trimmedVersion := strings.TrimSpace(versionText)
	matches := versionPattern.FindStringSubmatch(trimmedVersion)
	if matches == nil {
		return Version{}, ParseError{Input: versionText}
	}

	majorNumber, _ := strconv.Atoi(matches[1])
	minorNumber, _ := strconv.Atoi(matches[2])
	patchNumber, _ := strconv.Atoi(matches[3])

	parsedVersion := Version{Major: majorNumber, Minor: minorNumber, Patch: patchNumber, PreReleaseKind: PreReleaseNone}

	if len(matches[4]) > 0 {
		parsedVersion.PreReleaseKind = PreReleaseKind(matches[4])
		preReleaseNumber, _ := strconv.Atoi(matches[5])
		parsedVersion.PreReleaseNumber = preReleaseNumber
	}

	if len(matches[6]) > 0 {
		developmentNumber, _ := strconv.Atoi(matches[6])
		parsedVersion.DevelopmentNumber = developmentNumber
		parsedVersion.HasDevelopment = true
	}

	return parsedVersion, nil
}

// String renders the version in canonical form.
func (version Version) String() string {
	var renderedVersion strings.Builder
	renderedVersion.WriteString(strconv.Itoa(version.Major))
	renderedVersion.WriteString(versionSegmentSeparatorConstant)
	renderedVersion.WriteString(strconv.Itoa(version.Minor))
	renderedVersion.WriteString(versionSegmentSeparatorConstant)
	renderedVersion.WriteString(strconv.Itoa(version.Patch))
	if version.PreReleaseKind != PreReleaseNone {
		renderedVersion.WriteString(string(version.PreReleaseKind))
		renderedVersion.WriteString(strconv.Itoa(version.PreReleaseNumber))
	}
	if version.HasDevelopment {
		renderedVersion.WriteString(developmentSegmentPrefixConstant)
		renderedVersion.WriteString(strconv.Itoa(version.DevelopmentNumber))
	}
	return renderedVersion.String()
}

// IsPreview reports whether the version carries a pre-release suffix.
func (version Version) IsPreview() bool {
	return version.PreReleaseKind != PreReleaseNone
}

// Compare orders two versions returning -1, 0, or 1.
func Compare(firstVersion Version, secondVersion Version) int {
	if orderingResult := compareIntegers(firstVersion.Major, secondVersion.Major); orderingResult != 0 {
		return orderingResult
	}
	if orderingResult := compareIntegers(firstVersion.Minor, secondVersion.Minor); orderingResult != 0 {
		return orderingResult
	}
	if orderingResult := compareIntegers(firstVersion.Patch, secondVersion.Patch); orderingResult != 0 {
		return orderingResult
	}
	if orderingResult := compareIntegers(preReleasePrecedence[firstVersion.PreReleaseKind], preReleasePrecedence[secondVersion.PreReleaseKind]); orderingResult != 0 {
		return orderingResult
	}
	if orderingResult := compareIntegers(firstVersion.PreReleaseNumber, secondVersion.PreReleaseNumber); orderingResult != 0 {
		return orderingResult
	}

	// A .dev release precedes the release it is staged for.
	switch {
	case firstVersion.HasDevelopment && !secondVersion.HasDevelopment:
		return -1
	case !firstVersion.HasDevelopment && secondVersion.HasDevelopment:
		return 1
	default:
		return compareIntegers(firstVersion.DevelopmentNumber, secondVersion.DevelopmentNumber)
	}
}

func compareIntegers(firstNumber int, secondNumber int) int {
	switch {
	case firstNumber < secondNumber:
		return -1
	case firstNumber > secondNumber:
		return 1
	default:
		return 0
	}
}
