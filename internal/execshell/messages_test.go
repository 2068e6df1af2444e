package execshell

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildStartedMessageForAutorestNamesWorkingDirectory(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name: CommandAutorest,
		Details: CommandDetails{
			Arguments:        []string{"--python", "--tag=package-2024-01", "readme.md"},
			WorkingDirectory: "/workspace/sdk/compute/azure-mgmt-compute",
		},
	}

	message := formatter.BuildStartedMessage(command)

	require.Equal(t, "Generating client code with autorest in /workspace/sdk/compute/azure-mgmt-compute", message)
}

func TestBuildFailureMessageForToxIncludesExitCodeAndStandardError(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name:    CommandTox,
		Details: CommandDetails{WorkingDirectory: "/workspace/sdk/core"},
	}
	result := ExecutionResult{ExitCode: 2, StandardError: "ERROR: whl env failed"}

	message := formatter.BuildFailureMessage(command, result)

	require.Equal(t, "tox verification in /workspace/sdk/core failed with exit code 2: ERROR: whl env failed", message)
}

func TestBuildMessagesForUnknownToolUseGenericTemplates(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name:    CommandGit,
		Details: CommandDetails{Arguments: []string{"status"}},
	}

	require.Equal(t, "Running git status", formatter.BuildStartedMessage(command))
	require.Equal(t, "Completed git status", formatter.BuildSuccessMessage(command))
	require.Equal(t, "git status failed: broken pipe", formatter.BuildExecutionFailureMessage(command, errors.New("broken pipe")))
}

func TestBuildStartedMessageWithoutWorkingDirectoryUsesDefaultLabel(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{Name: CommandPip}

	message := formatter.BuildStartedMessage(command)

	require.Equal(t, "Checking dependencies with pip in current directory", message)
}
