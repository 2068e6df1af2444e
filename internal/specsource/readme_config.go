package specsource

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	yamlFenceOpeningPatternConstant = "(?m)^``` *ya?ml(.*)$"
	yamlFenceClosingConstant        = "```"
	tagConditionPatternConstant     = `\$\(tag\)\s*==\s*'([^']+)'`
	readmeReadErrorTemplateConstant = "failed to read autorest configuration %s: %w"
	readmeBlockParseErrorTemplate   = "failed to parse configuration block %d in %s: %w"
	readmeNoBlocksTemplateConstant  = "no configuration blocks found in %s"
	inputFileSettingKeyConstant     = "input-file"
	tagSettingKeyConstant           = "tag"
	namespaceSettingKeyConstant     = "namespace"
	packageNameSettingKeyConstant   = "package-name"
)

var (
	yamlFenceOpeningPattern = regexp.MustCompile(yamlFenceOpeningPatternConstant)
	tagConditionPattern     = regexp.MustCompile(tagConditionPatternConstant)
)

// AutorestConfiguration represents the merged settings of an autorest readme.
type AutorestConfiguration struct {
	Settings     map[string]any
	Tags         []string
	TaggedInputs map[string][]string
}

// DefaultTag returns the tag named by the unconditional configuration blocks.
func (configuration AutorestConfiguration) DefaultTag() string {
	tagValue, tagPresent := configuration.Settings[tagSettingKeyConstant]
	if !tagPresent {
		return ""
	}
	tagText, isText := tagValue.(string)
	if !isText {
		return ""
	}
	return tagText
}

// PackageName returns the python package name configured in the readme.
func (configuration AutorestConfiguration) PackageName() string {
	for _, settingKey := range []string{packageNameSettingKeyConstant, namespaceSettingKeyConstant} {
		if settingValue, settingPresent := configuration.Settings[settingKey]; settingPresent {
			if settingText, isText := settingValue.(string); isText && len(settingText) > 0 {
				return settingText
			}
		}
	}
	return ""
}

// InputFiles returns the input files for the supplied tag, falling back to unconditional settings.
func (configuration AutorestConfiguration) InputFiles(tagName string) []string {
	if len(tagName) > 0 {
		if taggedInputs, tagPresent := configuration.TaggedInputs[tagName]; tagPresent {
			return taggedInputs
		}
	}
	return extractStringList(configuration.Settings[inputFileSettingKeyConstant])
}

// LoadAutorestConfiguration reads and parses an autorest readme from disk.
func LoadAutorestConfiguration(readmePath string) (AutorestConfiguration, error) {
	readmeContent, readError := os.ReadFile(readmePath)
	if readError != nil {
		return AutorestConfiguration{}, fmt.Errorf(readmeReadErrorTemplateConstant, readmePath, readError)
	}
	return ParseAutorestConfiguration(string(readmeContent), readmePath)
}

// ParseAutorestConfiguration extracts and merges the fenced YAML blocks of an autorest readme.
//
// Unconditional blocks merge top-down into Settings. Blocks guarded by a
// $(tag) condition contribute their input files to TaggedInputs and their tag
// name to Tags, matching how autorest selects configuration at generation
// time.
func ParseAutorestConfiguration(readmeContent string, sourceLabel string) (AutorestConfiguration, error) {
	configuration := AutorestConfiguration{
		Settings:     map[string]any{},
		TaggedInputs: map[string][]string{},
	}

	fenceMatches := yamlFenceOpeningPattern.FindAllStringSubmatchIndex(readmeContent, -1)
	if len(fenceMatches) == 0 {
		return AutorestConfiguration{}, fmt.Errorf(readmeNoBlocksTemplateConstant, sourceLabel)
	}

	for blockIndex, fenceMatch := range fenceMatches {
		blockCondition := strings.TrimSpace(readmeContent[fenceMatch[2]:fenceMatch[3]])
		blockBodyStart := fenceMatch[1] + 1
		if blockBodyStart > len(readmeContent) {
			break
		}

		closingOffset := strings.Index(readmeContent[blockBodyStart:], yamlFenceClosingConstant)
		if closingOffset < 0 {
			continue
		}
		blockBody := readmeContent[blockBodyStart : blockBodyStart+closingOffset]

		var blockSettings map[string]any
		if unmarshalError := yaml.Unmarshal([]byte(blockBody), &blockSettings); unmarshalError != nil {
			return AutorestConfiguration{}, fmt.Errorf(readmeBlockParseErrorTemplate, blockIndex, sourceLabel, unmarshalError)
		}
		if blockSettings == nil {
			continue
		}

		conditionMatches := tagConditionPattern.FindStringSubmatch(blockCondition)
		if conditionMatches != nil {
			tagName := conditionMatches[1]
			configuration.Tags = append(configuration.Tags, tagName)
			configuration.TaggedInputs[tagName] = append(configuration.TaggedInputs[tagName], extractStringList(blockSettings[inputFileSettingKeyConstant])...)
			continue
		}

		if len(blockCondition) > 0 {
			// Conditions other than tag guards (multiapi, python flags) are
			// not consulted by this pipeline.
			continue
		}

		for settingKey, settingValue := range blockSettings {
			configuration.Settings[settingKey] = settingValue
		}
	}

	return configuration, nil
}

func extractStringList(candidateValue any) []string {
	switch typedValue := candidateValue.(type) {
	case string:
		return []string{typedValue}
	case []any:
		extractedValues := make([]string, 0, len(typedValue))
		for _, entry := range typedValue {
			if entryText, isText := entry.(string); isText {
				extractedValues = append(extractedValues, entryText)
			}
		}
		return extractedValues
	default:
		return nil
	}
}
