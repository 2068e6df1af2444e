package plan_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/sdkrel/internal/plan"
)

const (
	validPlanContentConstant = `tools:
  - name: nightly-generate
    operation: generate
    with:
      roots: ["/repo"]
      parallel: 4
steps:
  - operation: version
    with:
      package_dir: /repo/sdk/compute/azure-mgmt-compute
      level: feature
  - with:
      tool: nightly-generate
      package: azure-mgmt-*
`
	duplicateToolPlanContentConstant = `tools:
  - name: nightly
    operation: generate
  - name: nightly
    operation: verify
steps:
  - operation: verify
`
	unknownOperationPlanContent = `steps:
  - operation: deploy
`
	emptyStepsPlanContentConstant = `tools:
  - name: nightly
    operation: generate
`
	unknownToolPlanContentConstant = `steps:
  - with:
      tool: missing
`
)

func writePlanFile(testInstance *testing.T, planContent string) string {
	testInstance.Helper()
	planPath := filepath.Join(testInstance.TempDir(), "release-plan.yaml")
	require.NoError(testInstance, os.WriteFile(planPath, []byte(planContent), 0o644))
	return planPath
}

func TestLoadConfiguration(testInstance *testing.T) {
	testInstance.Run("valid_plan_loads_tools_and_steps", func(testInstance *testing.T) {
		configuration, loadError := plan.LoadConfiguration(writePlanFile(testInstance, validPlanContentConstant))
		require.NoError(testInstance, loadError)
		require.Len(testInstance, configuration.Tools, 1)
		require.Len(testInstance, configuration.Steps, 2)
		require.Equal(testInstance, plan.OperationTypeVersion, configuration.Steps[0].Operation)
	})

	testInstance.Run("duplicate_tool_names_are_rejected", func(testInstance *testing.T) {
		_, loadError := plan.LoadConfiguration(writePlanFile(testInstance, duplicateToolPlanContentConstant))
		require.Error(testInstance, loadError)
		require.Contains(testInstance, loadError.Error(), "duplicate tool names")
	})

	testInstance.Run("unsupported_operation_is_rejected", func(testInstance *testing.T) {
		_, loadError := plan.LoadConfiguration(writePlanFile(testInstance, unknownOperationPlanContent))
		require.Error(testInstance, loadError)
	})

	testInstance.Run("plan_without_steps_is_rejected", func(testInstance *testing.T) {
		_, loadError := plan.LoadConfiguration(writePlanFile(testInstance, emptyStepsPlanContentConstant))
		require.Error(testInstance, loadError)
	})

	testInstance.Run("missing_path_is_rejected", func(testInstance *testing.T) {
		_, loadError := plan.LoadConfiguration("  ")
		require.Error(testInstance, loadError)
	})
}

func TestConfigurationResolveStep(testInstance *testing.T) {
	configuration, loadError := plan.LoadConfiguration(writePlanFile(testInstance, validPlanContentConstant))
	require.NoError(testInstance, loadError)

	testInstance.Run("plain_step_keeps_own_options", func(testInstance *testing.T) {
		operation, stepOptions, resolveError := configuration.ResolveStep(configuration.Steps[0])
		require.NoError(testInstance, resolveError)
		require.Equal(testInstance, plan.OperationTypeVersion, operation)
		require.Equal(testInstance, "feature", stepOptions["level"])
	})

	testInstance.Run("tool_reference_merges_step_overrides", func(testInstance *testing.T) {
		operation, stepOptions, resolveError := configuration.ResolveStep(configuration.Steps[1])
		require.NoError(testInstance, resolveError)
		require.Equal(testInstance, plan.OperationTypeGenerate, operation)
		require.Equal(testInstance, 4, stepOptions["parallel"])
		require.Equal(testInstance, "azure-mgmt-*", stepOptions["package"])
		require.NotContains(testInstance, stepOptions, "tool")
	})

	testInstance.Run("unknown_tool_reference_fails", func(testInstance *testing.T) {
		unknownToolConfiguration, loadUnknownError := plan.LoadConfiguration(writePlanFile(testInstance, unknownToolPlanContentConstant))
		require.NoError(testInstance, loadUnknownError)

		_, _, resolveError := unknownToolConfiguration.ResolveStep(unknownToolConfiguration.Steps[0])
		require.Error(testInstance, resolveError)
	})
}
