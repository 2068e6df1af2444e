package plan

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	configurationLoadErrorTemplateConstant        = "failed to load release plan: %w"
	configurationParseErrorTemplateConstant       = "failed to parse release plan: %w"
	configurationPathRequiredMessageConstant      = "release plan path must be provided"
	configurationEmptyStepsMessageConstant        = "release plan must define at least one step"
	configurationOperationMissingMessageConstant  = "release plan step missing operation name"
	configurationToolNameRequiredMessageConstant  = "release plan tool names must be non-empty"
	configurationDuplicateToolNameMessage         = "release plan defines duplicate tool names"
	configurationToolOperationMissingTemplate     = "release plan tool %s missing operation name"
	configurationUnknownToolTemplateConstant      = "release plan step references unknown tool %s"
	configurationUnknownOperationTemplateConstant = "release plan step uses unsupported operation %s"
	optionToolReferenceKeyConstant                = "tool"
)

// OperationType identifies supported release plan operations.
type OperationType string

// Supported release plan operations.
const (
	OperationTypeGenerate  OperationType = OperationType("generate")
	OperationTypeChangelog OperationType = OperationType("changelog")
	OperationTypeVersion   OperationType = OperationType("version")
	OperationTypeVerify    OperationType = OperationType("verify")
)

// Configuration describes the ordered plan steps and reusable tool
// definitions loaded from YAML.
type Configuration struct {
	Tools []NamedToolConfiguration `yaml:"tools"`
	Steps []StepConfiguration      `yaml:"steps"`

	toolLookup map[string]ToolConfiguration
}

// NamedToolConfiguration captures a reusable operation definition along with
// its canonical reference name.
type NamedToolConfiguration struct {
	Name              string `yaml:"name"`
	ToolConfiguration `yaml:",inline"`
}

// StepConfiguration associates an operation type with declarative options.
type StepConfiguration struct {
	Operation OperationType  `yaml:"operation"`
	Options   map[string]any `yaml:"with"`
}

// ToolConfiguration describes reusable plan options for a specific operation.
type ToolConfiguration struct {
	Operation OperationType  `yaml:"operation"`
	Options   map[string]any `yaml:"with"`
}

// LoadConfiguration reads the release plan from disk and performs basic
// validation.
func LoadConfiguration(filePath string) (Configuration, error) {
	trimmedPath := strings.TrimSpace(filePath)
	if len(trimmedPath) == 0 {
		return Configuration{}, errors.New(configurationPathRequiredMessageConstant)
	}

	contentBytes, readError := os.ReadFile(trimmedPath)
	if readError != nil {
		return Configuration{}, fmt.Errorf(configurationLoadErrorTemplateConstant, readError)
	}

	var configuration Configuration
	if unmarshalError := yaml.Unmarshal(contentBytes, &configuration); unmarshalError != nil {
		return Configuration{}, fmt.Errorf(configurationParseErrorTemplateConstant, unmarshalError)
	}

	toolLookup, toolsError := buildToolLookup(configuration.Tools)
	if toolsError != nil {
		return Configuration{}, toolsError
	}
	configuration.toolLookup = toolLookup

	if len(configuration.Steps) == 0 {
		return Configuration{}, errors.New(configurationEmptyStepsMessageConstant)
	}

	for stepIndex := range configuration.Steps {
		trimmedOperation := strings.TrimSpace(string(configuration.Steps[stepIndex].Operation))
		if len(trimmedOperation) == 0 {
			if !stepIncludesToolReference(configuration.Steps[stepIndex].Options) {
				return Configuration{}, errors.New(configurationOperationMissingMessageConstant)
			}
			continue
		}
		configuration.Steps[stepIndex].Operation = OperationType(trimmedOperation)
		if !isSupportedOperation(configuration.Steps[stepIndex].Operation) {
			return Configuration{}, fmt.Errorf(configurationUnknownOperationTemplateConstant, trimmedOperation)
		}
	}

	return configuration, nil
}

// ResolveStep expands a step's tool reference and merges step options over
// the referenced tool's options.
func (configuration Configuration) ResolveStep(step StepConfiguration) (OperationType, map[string]any, error) {
	toolName := toolReferenceName(step.Options)
	if len(toolName) == 0 {
		return step.Operation, step.Options, nil
	}

	toolConfiguration, toolKnown := configuration.toolLookup[toolName]
	if !toolKnown {
		return "", nil, fmt.Errorf(configurationUnknownToolTemplateConstant, toolName)
	}

	mergedOptions := make(map[string]any, len(toolConfiguration.Options)+len(step.Options))
	for optionKey, optionValue := range toolConfiguration.Options {
		mergedOptions[optionKey] = optionValue
	}
	for optionKey, optionValue := range step.Options {
		if strings.EqualFold(strings.TrimSpace(optionKey), optionToolReferenceKeyConstant) {
			continue
		}
		mergedOptions[optionKey] = optionValue
	}

	operation := step.Operation
	if len(strings.TrimSpace(string(operation))) == 0 {
		operation = toolConfiguration.Operation
	}
	return operation, mergedOptions, nil
}

func buildToolLookup(tools []NamedToolConfiguration) (map[string]ToolConfiguration, error) {
	if len(tools) == 0 {
		return nil, nil
	}

	lookup := make(map[string]ToolConfiguration, len(tools))
	for toolIndex := range tools {
		trimmedName := strings.TrimSpace(tools[toolIndex].Name)
		if len(trimmedName) == 0 {
			return nil, errors.New(configurationToolNameRequiredMessageConstant)
		}
		if _, exists := lookup[trimmedName]; exists {
			return nil, errors.New(configurationDuplicateToolNameMessage)
		}
		if len(strings.TrimSpace(string(tools[toolIndex].Operation))) == 0 {
			return nil, fmt.Errorf(configurationToolOperationMissingTemplate, trimmedName)
		}
		if !isSupportedOperation(tools[toolIndex].Operation) {
			return nil, fmt.Errorf(configurationUnknownOperationTemplateConstant, tools[toolIndex].Operation)
		}
		lookup[trimmedName] = ToolConfiguration{
			Operation: tools[toolIndex].Operation,
			Options:   tools[toolIndex].Options,
		}
	}

	return lookup, nil
}

func isSupportedOperation(operation OperationType) bool {
	switch operation {
	case OperationTypeGenerate, OperationTypeChangelog, OperationTypeVersion, OperationTypeVerify:
		return true
	default:
		return false
	}
}

func stepIncludesToolReference(options map[string]any) bool {
	return len(toolReferenceName(options)) > 0
}

func toolReferenceName(options map[string]any) string {
	for rawKey, rawValue := range options {
		if !strings.EqualFold(strings.TrimSpace(rawKey), optionToolReferenceKeyConstant) {
			continue
		}
		if toolName, isString := rawValue.(string); isString {
			return strings.TrimSpace(toolName)
		}
	}
	return ""
}
