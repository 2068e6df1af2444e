package codereport_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/sdkrel/internal/codereport"
	"github.com/temirov/sdkrel/internal/pepver"
)

func baselineReport() codereport.Report {
	return codereport.Report{
		PackageName: "azure-mgmt-compute",
		OperationGroups: []codereport.OperationGroup{
			{
				Name: "VirtualMachinesOperations",
				Operations: []codereport.Operation{
					{
						Name: "begin_create_or_update",
						Parameters: []codereport.Parameter{
							{Name: "resource_group_name", Required: true},
							{Name: "vm_name", Required: true},
							{Name: "expand", Required: false},
						},
					},
					{Name: "get"},
				},
			},
		},
		Models: []codereport.Model{
			{Name: "VirtualMachine", Attributes: []string{"location", "tags"}},
		},
	}
}

func TestDiffReports(testInstance *testing.T) {
	testCases := []struct {
		name             string
		mutateCurrent    func(currentReport *codereport.Report)
		expectedFeatures []string
		expectedBreaking []string
		expectedLevel    pepver.ChangeLevel
	}{
		{
			name:          "identical_reports_classify_as_bugfix",
			mutateCurrent: func(currentReport *codereport.Report) {},
			expectedLevel: pepver.ChangeLevelBugfix,
		},
		{
			name: "added_operation_group_is_a_feature",
			mutateCurrent: func(currentReport *codereport.Report) {
				currentReport.OperationGroups = append(currentReport.OperationGroups, codereport.OperationGroup{Name: "DisksOperations"})
			},
			expectedFeatures: []string{"Added operation group DisksOperations"},
			expectedLevel:    pepver.ChangeLevelFeature,
		},
		{
			name: "removed_operation_group_is_breaking",
			mutateCurrent: func(currentReport *codereport.Report) {
				currentReport.OperationGroups = nil
			},
			expectedBreaking: []string{"Removed operation group VirtualMachinesOperations"},
			expectedLevel:    pepver.ChangeLevelBreaking,
		},
		{
			name: "added_operation_is_a_feature",
			mutateCurrent: func(currentReport *codereport.Report) {
				currentReport.OperationGroups[0].Operations = append(currentReport.OperationGroups[0].Operations, codereport.Operation{Name: "begin_delete"})
			},
			expectedFeatures: []string{"Added operation VirtualMachinesOperations.begin_delete"},
			expectedLevel:    pepver.ChangeLevelFeature,
		},
		{
			name: "removed_operation_is_breaking",
			mutateCurrent: func(currentReport *codereport.Report) {
				currentReport.OperationGroups[0].Operations = currentReport.OperationGroups[0].Operations[:1]
			},
			expectedBreaking: []string{"Removed operation VirtualMachinesOperations.get"},
			expectedLevel:    pepver.ChangeLevelBreaking,
		},
		{
			name: "added_optional_parameter_is_a_feature",
			mutateCurrent: func(currentReport *codereport.Report) {
				operationParameters := &currentReport.OperationGroups[0].Operations[0].Parameters
				*operationParameters = append(*operationParameters, codereport.Parameter{Name: "if_match", Required: false})
			},
			expectedFeatures: []string{"Operation VirtualMachinesOperations.begin_create_or_update has a new optional parameter if_match"},
			expectedLevel:    pepver.ChangeLevelFeature,
		},
		{
			name: "added_required_parameter_is_breaking",
			mutateCurrent: func(currentReport *codereport.Report) {
				operationParameters := &currentReport.OperationGroups[0].Operations[0].Parameters
				*operationParameters = append(*operationParameters, codereport.Parameter{Name: "api_version", Required: true})
			},
			expectedBreaking: []string{"Operation VirtualMachinesOperations.begin_create_or_update has a new required parameter api_version"},
			expectedLevel:    pepver.ChangeLevelBreaking,
		},
		{
			name: "removed_parameter_is_breaking",
			mutateCurrent: func(currentReport *codereport.Report) {
				operationParameters := &currentReport.OperationGroups[0].Operations[0].Parameters
				*operationParameters = (*operationParameters)[:2]
			},
			expectedBreaking: []string{"Operation VirtualMachinesOperations.begin_create_or_update no longer has parameter expand"},
			expectedLevel:    pepver.ChangeLevelBreaking,
		},
		{
			name: "parameter_becoming_required_is_breaking",
			mutateCurrent: func(currentReport *codereport.Report) {
				currentReport.OperationGroups[0].Operations[0].Parameters[2].Required = true
			},
			expectedBreaking: []string{"Parameter expand of operation VirtualMachinesOperations.begin_create_or_update is now required"},
			expectedLevel:    pepver.ChangeLevelBreaking,
		},
		{
			name: "added_model_and_attribute_are_features",
			mutateCurrent: func(currentReport *codereport.Report) {
				currentReport.Models = append(currentReport.Models, codereport.Model{Name: "DiskEncryptionSet"})
				currentReport.Models[0].Attributes = append(currentReport.Models[0].Attributes, "zones")
			},
			expectedFeatures: []string{
				"Added model DiskEncryptionSet",
				"Model VirtualMachine has a new attribute zones",
			},
			expectedLevel: pepver.ChangeLevelFeature,
		},
		{
			name: "removed_model_attribute_is_breaking",
			mutateCurrent: func(currentReport *codereport.Report) {
				currentReport.Models[0].Attributes = []string{"location"}
			},
			expectedBreaking: []string{"Model VirtualMachine no longer has attribute tags"},
			expectedLevel:    pepver.ChangeLevelBreaking,
		},
		{
			name: "removed_model_is_breaking",
			mutateCurrent: func(currentReport *codereport.Report) {
				currentReport.Models = nil
			},
			expectedBreaking: []string{"Removed model VirtualMachine"},
			expectedLevel:    pepver.ChangeLevelBreaking,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			previousReport := baselineReport()
			currentReport := baselineReport()
			testCase.mutateCurrent(&currentReport)

			changeSet := codereport.DiffReports(previousReport, currentReport)

			require.ElementsMatch(testInstance, testCase.expectedFeatures, changeSet.Features)
			require.ElementsMatch(testInstance, testCase.expectedBreaking, changeSet.Breaking)
			require.Equal(testInstance, testCase.expectedLevel, changeSet.Level())
			require.Equal(testInstance, len(testCase.expectedFeatures) == 0 && len(testCase.expectedBreaking) == 0, changeSet.IsEmpty())
		})
	}
}

func TestLoadReport(testInstance *testing.T) {
	testInstance.Run("round_trips_written_report", func(testInstance *testing.T) {
		reportPath := filepath.Join(testInstance.TempDir(), "report.json")
		originalReport := baselineReport()
		require.NoError(testInstance, codereport.WriteReport(reportPath, originalReport))

		loadedReport, loadError := codereport.LoadReport(reportPath)
		require.NoError(testInstance, loadError)
		require.Equal(testInstance, originalReport, loadedReport)
	})

	testInstance.Run("missing_report_returns_error", func(testInstance *testing.T) {
		_, loadError := codereport.LoadReport(filepath.Join(testInstance.TempDir(), "absent.json"))
		require.Error(testInstance, loadError)
	})

	testInstance.Run("malformed_report_returns_error", func(testInstance *testing.T) {
		reportPath := filepath.Join(testInstance.TempDir(), "broken.json")
		require.NoError(testInstance, os.WriteFile(reportPath, []byte("{not json"), 0o644))

		_, loadError := codereport.LoadReport(reportPath)
		require.Error(testInstance, loadError)
	})
}
