package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/sdkrel/internal/utils"
)

var expectedCommandNames = []string{
	"packages",
	"generate",
	"changelog",
	"version",
	"verify",
	"plan",
	"history",
}

func TestNewApplicationRegistersCommands(testInstance *testing.T) {
	application := NewApplication()
	require.NotNil(testInstance, application.rootCommand)

	registeredNames := make(map[string]bool)
	for _, registeredCommand := range application.rootCommand.Commands() {
		registeredNames[registeredCommand.Name()] = true
	}

	for _, expectedName := range expectedCommandNames {
		require.Truef(testInstance, registeredNames[expectedName], "command %s not registered", expectedName)
	}
}

func TestInitializeConfigurationAppliesDefaults(testInstance *testing.T) {
	application := NewApplication()
	application.rootCommand.SetContext(context.Background())

	require.NoError(testInstance, application.initializeConfiguration(application.rootCommand))

	require.Equal(testInstance, string(utils.LogLevelInfo), application.configuration.Common.LogLevel)
	require.Equal(testInstance, "table", application.configuration.Tools.Packages.Format)
	require.Positive(testInstance, application.configuration.Tools.Generate.Parallelism)
	require.Positive(testInstance, application.configuration.Tools.Generate.TimeoutMinutes)
}

func TestInitializeConfigurationHonorsLogFlags(testInstance *testing.T) {
	application := NewApplication()
	application.rootCommand.SetContext(context.Background())
	require.NoError(testInstance, application.rootCommand.PersistentFlags().Set(logLevelFlagNameConstant, "debug"))
	require.NoError(testInstance, application.rootCommand.PersistentFlags().Set(logFormatFlagNameConstant, "console"))

	require.NoError(testInstance, application.initializeConfiguration(application.rootCommand))

	require.Equal(testInstance, "debug", application.configuration.Common.LogLevel)
	require.Equal(testInstance, "console", application.configuration.Common.LogFormat)
}

func TestRootCommandHelpExecution(testInstance *testing.T) {
	application := NewApplication()
	outputBuffer := &bytes.Buffer{}
	application.rootCommand.SetOut(outputBuffer)
	application.rootCommand.SetErr(outputBuffer)
	application.rootCommand.SetArgs([]string{"--help"})

	require.NoError(testInstance, application.rootCommand.Execute())
	require.Contains(testInstance, outputBuffer.String(), applicationNameConstant)
}
