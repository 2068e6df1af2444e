package pymeta

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	requiresClauseErrorTemplateConstant     = "unsupported requires-python clause %q"
	interpreterVersionErrorTemplateConstant = "invalid interpreter version %q"
	clauseSeparatorConstant                 = ","
	versionSegmentSeparatorConstant         = "."
	wildcardSuffixConstant                  = ".*"
	operatorGreaterOrEqualConstant          = ">="
	operatorLessOrEqualConstant             = "<="
	operatorEqualConstant                   = "=="
	operatorNotEqualConstant                = "!="
	operatorCompatibleConstant              = "~="
	operatorGreaterConstant                 = ">"
	operatorLessConstant                    = "<"
)

// SupportsInterpreter reports whether a requires-python specifier admits the
// given interpreter version, such as "3.9". An empty specifier admits every
// interpreter. Every comma-separated clause must admit the version.
func SupportsInterpreter(requiresSpecifier string, interpreterVersion string) (bool, error) {
	trimmedSpecifier := strings.TrimSpace(requiresSpecifier)
	if len(trimmedSpecifier) == 0 {
		return true, nil
	}

	interpreterSegments, interpreterError := parseVersionSegments(interpreterVersion)
	if interpreterError != nil {
		return false, fmt.Errorf(interpreterVersionErrorTemplateConstant, interpreterVersion)
	}

	for _, rawClause := range strings.Split(trimmedSpecifier, clauseSeparatorConstant) {
		clauseAdmits, clauseError := clauseAdmitsInterpreter(strings.TrimSpace(rawClause), interpreterSegments)
		if clauseError != nil {
			return false, clauseError
		}
		if !clauseAdmits {
			return false, nil
		}
	}
	return true, nil
}

func clauseAdmitsInterpreter(clauseText string, interpreterSegments []int) (bool, error) {
	operatorNames := []string{
		operatorGreaterOrEqualConstant,
		operatorLessOrEqualConstant,
		operatorEqualConstant,
		operatorNotEqualConstant,
		operatorCompatibleConstant,
		operatorGreaterConstant,
		operatorLessConstant,
	}

	for _, operatorName := range operatorNames {
		if !strings.HasPrefix(clauseText, operatorName) {
			continue
		}
		clauseVersionText := strings.TrimSpace(strings.TrimPrefix(clauseText, operatorName))

		if strings.HasSuffix(clauseVersionText, wildcardSuffixConstant) {
			if operatorName != operatorEqualConstant && operatorName != operatorNotEqualConstant {
				return false, fmt.Errorf(requiresClauseErrorTemplateConstant, clauseText)
			}
			prefixSegments, prefixError := parseVersionSegments(strings.TrimSuffix(clauseVersionText, wildcardSuffixConstant))
			if prefixError != nil {
				return false, fmt.Errorf(requiresClauseErrorTemplateConstant, clauseText)
			}
			prefixMatches := versionHasPrefix(interpreterSegments, prefixSegments)
			if operatorName == operatorNotEqualConstant {
				return !prefixMatches, nil
			}
			return prefixMatches, nil
		}

		clauseSegments, clauseError := parseVersionSegments(clauseVersionText)
		if clauseError != nil {
			return false, fmt.Errorf(requiresClauseErrorTemplateConstant, clauseText)
		}

		switch operatorName {
		case operatorGreaterOrEqualConstant:
			return compareVersionSegments(interpreterSegments, clauseSegments) >= 0, nil
		case operatorLessOrEqualConstant:
			return compareVersionSegments(interpreterSegments, clauseSegments) <= 0, nil
		case operatorEqualConstant:
			return compareVersionSegments(interpreterSegments, clauseSegments) == 0, nil
		case operatorNotEqualConstant:
			return compareVersionSegments(interpreterSegments, clauseSegments) != 0, nil
		case operatorGreaterConstant:
			return compareVersionSegments(interpreterSegments, clauseSegments) > 0, nil
		case operatorLessConstant:
			return compareVersionSegments(interpreterSegments, clauseSegments) < 0, nil
		case operatorCompatibleConstant:
			if len(clauseSegments) < 2 {
				return false, fmt.Errorf(requiresClauseErrorTemplateConstant, clauseText)
			}
			upperBoundSegments := append([]int(nil), clauseSegments[:len(clauseSegments)-1]...)
			upperBoundSegments[len(upperBoundSegments)-1]++
			admitted := compareVersionSegments(interpreterSegments, clauseSegments) >= 0 &&
				compareVersionSegments(interpreterSegments, upperBoundSegments) < 0
			return admitted, nil
		}
	}

	return false, fmt.Errorf(requiresClauseErrorTemplateConstant, clauseText)
}

func parseVersionSegments(versionText string) ([]int, error) {
	trimmedVersion := strings.TrimSpace(versionText)
	if len(trimmedVersion) == 0 {
		return nil, fmt.Errorf(interpreterVersionErrorTemplateConstant, versionText)
	}

	segmentTexts := strings.Split(trimmedVersion, versionSegmentSeparatorConstant)
	segments := make([]int, 0, len(segmentTexts))
	for _, segmentText := range segmentTexts {
		segmentValue, segmentError := strconv.Atoi(segmentText)
		if segmentError != nil {
			return nil, segmentError
		}
		segments = append(segments, segmentValue)
	}
	return segments, nil
}

func compareVersionSegments(leftSegments []int, rightSegments []int) int {
	segmentCount := len(leftSegments)
	if len(rightSegments) > segmentCount {
		segmentCount = len(rightSegments)
	}
	for segmentIndex := 0; segmentIndex < segmentCount; segmentIndex++ {
		leftValue := 0
		if segmentIndex < len(leftSegments) {
			leftValue = leftSegments[segmentIndex]
		}
		rightValue := 0
		if segmentIndex < len(rightSegments) {
			rightValue = rightSegments[segmentIndex]
		}
		if leftValue != rightValue {
			if leftValue < rightValue {
				return -1
			}
			return 1
		}
	}
	return 0
}

func versionHasPrefix(versionSegments []int, prefixSegments []int) bool {
	for prefixIndex, prefixValue := range prefixSegments {
		versionValue := 0
		if prefixIndex < len(versionSegments) {
			versionValue = versionSegments[prefixIndex]
		}
		if versionValue != prefixValue {
			return false
		}
	}
	return true
}
