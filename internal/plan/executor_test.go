package plan_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/temirov/sdkrel/internal/execshell"
	"github.com/temirov/sdkrel/internal/plan"
)

type fakeToolExecutor struct {
	mutex           sync.Mutex
	invokedCommands []execshell.CommandName
	typespecFailure error
	toxFailure      error
}

func (executor *fakeToolExecutor) recordInvocation(commandName execshell.CommandName) {
	executor.mutex.Lock()
	defer executor.mutex.Unlock()
	executor.invokedCommands = append(executor.invokedCommands, commandName)
}

func (executor *fakeToolExecutor) commandNames() []execshell.CommandName {
	executor.mutex.Lock()
	defer executor.mutex.Unlock()
	return append([]execshell.CommandName(nil), executor.invokedCommands...)
}

func (executor *fakeToolExecutor) ExecuteAutorest(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordInvocation(execshell.CommandAutorest)
	return execshell.ExecutionResult{}, nil
}

func (executor *fakeToolExecutor) ExecuteTypeSpecClient(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordInvocation(execshell.CommandTypeSpecClient)
	return execshell.ExecutionResult{}, executor.typespecFailure
}

func (executor *fakeToolExecutor) ExecuteNpx(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordInvocation(execshell.CommandNpx)
	return execshell.ExecutionResult{}, nil
}

func (executor *fakeToolExecutor) ExecuteTox(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordInvocation(execshell.CommandTox)
	return execshell.ExecutionResult{}, executor.toxFailure
}

func (executor *fakeToolExecutor) ExecutePip(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordInvocation(execshell.CommandPip)
	return execshell.ExecutionResult{}, nil
}

func writeTypeSpecPackage(testInstance *testing.T) (string, string) {
	testInstance.Helper()
	monorepoRoot := testInstance.TempDir()
	packageDirectory := filepath.Join(monorepoRoot, "sdk", "storage", "azure-storage-blob")
	require.NoError(testInstance, os.MkdirAll(packageDirectory, 0o755))
	require.NoError(testInstance, os.WriteFile(filepath.Join(packageDirectory, "pyproject.toml"), []byte("[project]\nname = \"azure-storage-blob\"\nversion = \"12.19.0\"\n"), 0o644))
	require.NoError(testInstance, os.WriteFile(filepath.Join(packageDirectory, "tsp-location.yaml"), []byte("directory: specification/storage/Storage\ncommit: abcdef0123456789\nrepo: Azure/azure-rest-api-specs\n"), 0o644))
	versionDirectory := filepath.Join(packageDirectory, "azure", "storage", "blob")
	require.NoError(testInstance, os.MkdirAll(versionDirectory, 0o755))
	require.NoError(testInstance, os.WriteFile(filepath.Join(versionDirectory, "_version.py"), []byte("VERSION = \"12.19.0\"\n"), 0o644))
	return monorepoRoot, packageDirectory
}

func loadPlan(testInstance *testing.T, planContent string) plan.Configuration {
	testInstance.Helper()
	planPath := filepath.Join(testInstance.TempDir(), "plan.yaml")
	require.NoError(testInstance, os.WriteFile(planPath, []byte(planContent), 0o644))
	configuration, loadError := plan.LoadConfiguration(planPath)
	require.NoError(testInstance, loadError)
	return configuration
}

func TestExecutorExecute(testInstance *testing.T) {
	testInstance.Run("runs_generate_version_and_verify_steps_in_order", func(testInstance *testing.T) {
		monorepoRoot, packageDirectory := writeTypeSpecPackage(testInstance)
		toolExecutor := &fakeToolExecutor{}

		planContent := fmt.Sprintf(`steps:
  - operation: generate
    with:
      roots: ["%s"]
  - operation: version
    with:
      package_dir: %s
      level: feature
      preview: true
      date: "2026-08-31"
  - operation: verify
    with:
      package_dir: %s
      kind: tox
`, monorepoRoot, packageDirectory, packageDirectory)
		configuration := loadPlan(testInstance, planContent)

		planExecutor, executorError := plan.NewExecutor(zaptest.NewLogger(testInstance), toolExecutor)
		require.NoError(testInstance, executorError)
		require.NoError(testInstance, planExecutor.Execute(context.Background(), configuration))

		require.Equal(testInstance, []execshell.CommandName{execshell.CommandTypeSpecClient, execshell.CommandTox}, toolExecutor.commandNames())

		versionContent, readError := os.ReadFile(filepath.Join(packageDirectory, "azure", "storage", "blob", "_version.py"))
		require.NoError(testInstance, readError)
		require.Contains(testInstance, string(versionContent), "VERSION = \"12.20.0b1\"")
	})

	testInstance.Run("failing_step_stops_the_plan", func(testInstance *testing.T) {
		monorepoRoot, packageDirectory := writeTypeSpecPackage(testInstance)
		toolExecutor := &fakeToolExecutor{typespecFailure: errors.New("tsp-client exited with code 1")}

		planContent := fmt.Sprintf(`steps:
  - operation: generate
    with:
      roots: ["%s"]
  - operation: verify
    with:
      package_dir: %s
`, monorepoRoot, packageDirectory)
		configuration := loadPlan(testInstance, planContent)

		planExecutor, executorError := plan.NewExecutor(zaptest.NewLogger(testInstance), toolExecutor)
		require.NoError(testInstance, executorError)

		executionError := planExecutor.Execute(context.Background(), configuration)
		require.Error(testInstance, executionError)
		require.Contains(testInstance, executionError.Error(), "plan step 1 (generate) failed")
		require.NotContains(testInstance, toolExecutor.commandNames(), execshell.CommandTox)
	})

	testInstance.Run("version_step_with_explicit_version_needs_no_level", func(testInstance *testing.T) {
		_, packageDirectory := writeTypeSpecPackage(testInstance)
		toolExecutor := &fakeToolExecutor{}

		planContent := fmt.Sprintf(`steps:
  - operation: version
    with:
      package_dir: %s
      set: "13.0.0"
      date: "2026-08-31"
`, packageDirectory)
		configuration := loadPlan(testInstance, planContent)

		planExecutor, executorError := plan.NewExecutor(zaptest.NewLogger(testInstance), toolExecutor)
		require.NoError(testInstance, executorError)
		require.NoError(testInstance, planExecutor.Execute(context.Background(), configuration))

		versionContent, readError := os.ReadFile(filepath.Join(packageDirectory, "azure", "storage", "blob", "_version.py"))
		require.NoError(testInstance, readError)
		require.Contains(testInstance, string(versionContent), "VERSION = \"13.0.0\"")
	})

	testInstance.Run("version_step_with_invalid_level_fails", func(testInstance *testing.T) {
		_, packageDirectory := writeTypeSpecPackage(testInstance)
		toolExecutor := &fakeToolExecutor{}

		planContent := fmt.Sprintf(`steps:
  - operation: version
    with:
      package_dir: %s
      level: gigantic
`, packageDirectory)
		configuration := loadPlan(testInstance, planContent)

		planExecutor, executorError := plan.NewExecutor(zaptest.NewLogger(testInstance), toolExecutor)
		require.NoError(testInstance, executorError)
		require.Error(testInstance, planExecutor.Execute(context.Background(), configuration))
	})
}

func TestNewExecutorValidation(testInstance *testing.T) {
	planExecutor, executorError := plan.NewExecutor(nil, &fakeToolExecutor{})
	require.Error(testInstance, executorError)
	require.Nil(testInstance, planExecutor)

	planExecutor, executorError = plan.NewExecutor(zaptest.NewLogger(testInstance), nil)
	require.Error(testInstance, executorError)
	require.Nil(testInstance, planExecutor)
}
