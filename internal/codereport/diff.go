package codereport

import (
	"fmt"
	"sort"

	"github.com/temirov/sdkrel/internal/pepver"
)

const (
	addedOperationGroupTemplateConstant   = "Added operation group %s"
	removedOperationGroupTemplateConstant = "Removed operation group %s"
	addedOperationTemplateConstant        = "Added operation %s.%s"
	removedOperationTemplateConstant      = "Removed operation %s.%s"
	addedOptionalParameterTemplate        = "Operation %s.%s has a new optional parameter %s"
	addedRequiredParameterTemplate        = "Operation %s.%s has a new required parameter %s"
	removedParameterTemplateConstant      = "Operation %s.%s no longer has parameter %s"
	parameterNowRequiredTemplateConstant  = "Parameter %s of operation %s.%s is now required"
	addedModelTemplateConstant            = "Added model %s"
	removedModelTemplateConstant          = "Removed model %s"
	addedModelAttributeTemplateConstant   = "Model %s has a new attribute %s"
	removedModelAttributeTemplateConstant = "Model %s no longer has attribute %s"
)

// ChangeSet groups human readable change descriptions by impact.
type ChangeSet struct {
	Features []string
	Breaking []string
}

// IsEmpty reports whether the change set carries no entries.
func (changeSet ChangeSet) IsEmpty() bool {
	return len(changeSet.Features) == 0 && len(changeSet.Breaking) == 0
}

// Level maps the change set onto a release change level. An empty change set
// classifies as a bugfix release.
func (changeSet ChangeSet) Level() pepver.ChangeLevel {
	if len(changeSet.Breaking) > 0 {
		return pepver.ChangeLevelBreaking
	}
	if len(changeSet.Features) > 0 {
		return pepver.ChangeLevelFeature
	}
	return pepver.ChangeLevelBugfix
}

// DiffReports compares two code report snapshots and describes every surface
// change between them.
func DiffReports(previousReport Report, currentReport Report) ChangeSet {
	changeSet := ChangeSet{}

	previousGroups := previousReport.operationGroupsByName()
	currentGroups := currentReport.operationGroupsByName()

	for _, groupName := range sortedKeys(currentGroups) {
		previousGroup, groupExisted := previousGroups[groupName]
		if !groupExisted {
			changeSet.Features = append(changeSet.Features, fmt.Sprintf(addedOperationGroupTemplateConstant, groupName))
			continue
		}
		diffOperationGroup(&changeSet, previousGroup, currentGroups[groupName])
	}
	for _, groupName := range sortedKeys(previousGroups) {
		if _, groupRemains := currentGroups[groupName]; !groupRemains {
			changeSet.Breaking = append(changeSet.Breaking, fmt.Sprintf(removedOperationGroupTemplateConstant, groupName))
		}
	}

	diffModels(&changeSet, previousReport, currentReport)

	return changeSet
}

func diffOperationGroup(changeSet *ChangeSet, previousGroup OperationGroup, currentGroup OperationGroup) {
	previousOperations := previousGroup.operationsByName()
	currentOperations := currentGroup.operationsByName()

	for _, operationName := range sortedKeys(currentOperations) {
		previousOperation, operationExisted := previousOperations[operationName]
		if !operationExisted {
			changeSet.Features = append(changeSet.Features, fmt.Sprintf(addedOperationTemplateConstant, currentGroup.Name, operationName))
			continue
		}
		diffOperationParameters(changeSet, currentGroup.Name, previousOperation, currentOperations[operationName])
	}
	for _, operationName := range sortedKeys(previousOperations) {
		if _, operationRemains := currentOperations[operationName]; !operationRemains {
			changeSet.Breaking = append(changeSet.Breaking, fmt.Sprintf(removedOperationTemplateConstant, currentGroup.Name, operationName))
		}
	}
}

func diffOperationParameters(changeSet *ChangeSet, groupName string, previousOperation Operation, currentOperation Operation) {
	previousParameters := previousOperation.parametersByName()
	currentParameters := currentOperation.parametersByName()

	for _, parameterName := range sortedKeys(currentParameters) {
		currentParameter := currentParameters[parameterName]
		previousParameter, parameterExisted := previousParameters[parameterName]
		if !parameterExisted {
			if currentParameter.Required {
				changeSet.Breaking = append(changeSet.Breaking, fmt.Sprintf(addedRequiredParameterTemplate, groupName, currentOperation.Name, parameterName))
			} else {
				changeSet.Features = append(changeSet.Features, fmt.Sprintf(addedOptionalParameterTemplate, groupName, currentOperation.Name, parameterName))
			}
			continue
		}
		if currentParameter.Required && !previousParameter.Required {
			changeSet.Breaking = append(changeSet.Breaking, fmt.Sprintf(parameterNowRequiredTemplateConstant, parameterName, groupName, currentOperation.Name))
		}
	}
	for _, parameterName := range sortedKeys(previousParameters) {
		if _, parameterRemains := currentParameters[parameterName]; !parameterRemains {
			changeSet.Breaking = append(changeSet.Breaking, fmt.Sprintf(removedParameterTemplateConstant, groupName, currentOperation.Name, parameterName))
		}
	}
}

func diffModels(changeSet *ChangeSet, previousReport Report, currentReport Report) {
	previousModels := previousReport.modelsByName()
	currentModels := currentReport.modelsByName()

	for _, modelName := range sortedKeys(currentModels) {
		previousModel, modelExisted := previousModels[modelName]
		if !modelExisted {
			changeSet.Features = append(changeSet.Features, fmt.Sprintf(addedModelTemplateConstant, modelName))
			continue
		}
		diffModelAttributes(changeSet, previousModel, currentModels[modelName])
	}
	for _, modelName := range sortedKeys(previousModels) {
		if _, modelRemains := currentModels[modelName]; !modelRemains {
			changeSet.Breaking = append(changeSet.Breaking, fmt.Sprintf(removedModelTemplateConstant, modelName))
		}
	}
}

func diffModelAttributes(changeSet *ChangeSet, previousModel Model, currentModel Model) {
	previousAttributes := make(map[string]struct{}, len(previousModel.Attributes))
	for _, attributeName := range previousModel.Attributes {
		previousAttributes[attributeName] = struct{}{}
	}
	currentAttributes := make(map[string]struct{}, len(currentModel.Attributes))
	for _, attributeName := range currentModel.Attributes {
		currentAttributes[attributeName] = struct{}{}
	}

	sortedCurrentAttributes := append([]string(nil), currentModel.Attributes...)
	sort.Strings(sortedCurrentAttributes)
	for _, attributeName := range sortedCurrentAttributes {
		if _, attributeExisted := previousAttributes[attributeName]; !attributeExisted {
			changeSet.Features = append(changeSet.Features, fmt.Sprintf(addedModelAttributeTemplateConstant, currentModel.Name, attributeName))
		}
	}

	sortedPreviousAttributes := append([]string(nil), previousModel.Attributes...)
	sort.Strings(sortedPreviousAttributes)
	for _, attributeName := range sortedPreviousAttributes {
		if _, attributeRemains := currentAttributes[attributeName]; !attributeRemains {
			changeSet.Breaking = append(changeSet.Breaking, fmt.Sprintf(removedModelAttributeTemplateConstant, currentModel.Name, attributeName))
		}
	}
}

func sortedKeys[ValueType any](entries map[string]ValueType) []string {
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
