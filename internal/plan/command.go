package plan

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/sdkrel/internal/execshell"
	"github.com/temirov/sdkrel/internal/ui"
)

const (
	planCommandUseConstant                  = "plan"
	planCommandShortDescriptionConstant     = "Execute declarative release plans"
	planCommandLongDescriptionConstant      = "plan runs the ordered steps of a YAML release plan against the monorepo."
	runCommandUseConstant                   = "run"
	runCommandShortDescriptionConstant      = "Run a release plan file"
	unexpectedArgumentsErrorMessageConstant = "plan run does not accept positional arguments"
	commandExecutionErrorTemplateConstant   = "plan run failed: %w"
	planFileFlagNameConstant                = "file"
	planFileFlagDescriptionConstant         = "Path to the release plan YAML file"
	missingPlanFileErrorMessageConstant     = "plan run requires --file"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the plan command hierarchy.
type CommandBuilder struct {
	LoggerProvider LoggerProvider
}

// Build constructs the plan command with the run subcommand.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	planCommand := &cobra.Command{
		Use:   planCommandUseConstant,
		Short: planCommandShortDescriptionConstant,
		Long:  planCommandLongDescriptionConstant,
	}

	runCommand := &cobra.Command{
		Use:   runCommandUseConstant,
		Short: runCommandShortDescriptionConstant,
		RunE:  builder.runPlan,
	}
	runCommand.Flags().String(planFileFlagNameConstant, "", planFileFlagDescriptionConstant)

	planCommand.AddCommand(runCommand)

	return planCommand, nil
}

func (builder *CommandBuilder) runPlan(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errors.New(unexpectedArgumentsErrorMessageConstant)
	}

	planFileValue, planFileError := command.Flags().GetString(planFileFlagNameConstant)
	if planFileError != nil {
		return planFileError
	}
	if len(strings.TrimSpace(planFileValue)) == 0 {
		return errors.New(missingPlanFileErrorMessageConstant)
	}

	configuration, configurationError := LoadConfiguration(planFileValue)
	if configurationError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, configurationError)
	}

	logger := builder.resolveLogger()
	consoleObserver := ui.NewConsoleCommandEventLogger(logger)
	shellExecutor, executorError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), consoleObserver)
	if executorError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, executorError)
	}

	planExecutor, planExecutorError := NewExecutor(logger, shellExecutor)
	if planExecutorError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, planExecutorError)
	}

	if executionError := planExecutor.Execute(command.Context(), configuration); executionError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, executionError)
	}
	return nil
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
