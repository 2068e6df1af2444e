package codereport

import (
	"encoding/json"
	"fmt"
	"os"
)

const (
	reportReadErrorTemplateConstant  = "unable to read code report %s: %w"
	reportParseErrorTemplateConstant = "unable to parse code report %s: %w"
)

// Parameter describes a single operation parameter.
type Parameter struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
}

// Operation describes a client operation within an operation group.
type Operation struct {
	Name       string      `json:"name"`
	Parameters []Parameter `json:"parameters"`
}

// OperationGroup collects the operations exposed by one client group.
type OperationGroup struct {
	Name       string      `json:"name"`
	Operations []Operation `json:"operations"`
}

// Model describes a data model and its attributes.
type Model struct {
	Name       string   `json:"name"`
	Attributes []string `json:"attributes"`
}

// Report is the JSON snapshot of a generated client surface.
type Report struct {
	PackageName     string           `json:"package_name"`
	OperationGroups []OperationGroup `json:"operation_groups"`
	Models          []Model          `json:"models"`
}

// LoadReport reads and parses a code report file.
func LoadReport(reportPath string) (Report, error) {
	reportContent, readError := os.ReadFile(reportPath)
	if readError != nil {
		return Report{}, fmt.Errorf(reportReadErrorTemplateConstant, reportPath, readError)
	}

	var parsedReport Report
	if parseError := json.Unmarshal(reportContent, &parsedReport); parseError != nil {
		return Report{}, fmt.Errorf(reportParseErrorTemplateConstant, reportPath, parseError)
	}

	return parsedReport, nil
}

// WriteReport serializes a code report to the given path.
func WriteReport(reportPath string, report Report) error {
	serializedReport, marshalError := json.MarshalIndent(report, "", "  ")
	if marshalError != nil {
		return marshalError
	}
	return os.WriteFile(reportPath, append(serializedReport, '\n'), 0o644)
}

func (report Report) operationGroupsByName() map[string]OperationGroup {
	groupsByName := make(map[string]OperationGroup, len(report.OperationGroups))
	for _, operationGroup := range report.OperationGroups {
		groupsByName[operationGroup.Name] = operationGroup
	}
	return groupsByName
}

func (report Report) modelsByName() map[string]Model {
	modelsByName := make(map[string]Model, len(report.Models))
	for _, model := range report.Models {
		modelsByName[model.Name] = model
	}
	return modelsByName
}

func (operationGroup OperationGroup) operationsByName() map[string]Operation {
	operationsByName := make(map[string]Operation, len(operationGroup.Operations))
	for _, operation := range operationGroup.Operations {
		operationsByName[operation.Name] = operation
	}
	return operationsByName
}

func (operation Operation) parametersByName() map[string]Parameter {
	parametersByName := make(map[string]Parameter, len(operation.Parameters))
	for _, parameter := range operation.Parameters {
		parametersByName[parameter.Name] = parameter
	}
	return parametersByName
}
