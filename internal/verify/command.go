package verify

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
	verifyCommandUseConstant                = "verify"
	verifyCommandShortDescriptionConstant   = "Run post-generation checks on a package"
	verifyCommandLongDescriptionConstant    = "verify builds the package wheel through tox or validates installed dependencies with pip check."
	unexpectedArgumentsErrorMessageConstant = "verify does not accept positional arguments"
	commandExecutionErrorTemplateConstant   = "verify failed: %w"
	packageDirectoryFlagNameConstant        = "package-dir"
	packageDirectoryFlagDescription         = "Package directory to verify"
	kindFlagNameConstant                    = "kind"
	kindFlagDescriptionConstant             = "Verification kind: tox or pip-check"
	toxEnvironmentFlagNameConstant          = "tox-env"
	toxEnvironmentFlagDescriptionConstant   = "Tox environment to run"
	timeoutFlagNameConstant                 = "timeout"
	timeoutFlagDescriptionConstant          = "Verification timeout"
	missingPackageDirectoryErrorConstant    = "verify requires --package-dir"
	verificationSkippedNoticeConstant       = "verification skipped"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the verify command.
type CommandBuilder struct {
	LoggerProvider LoggerProvider
}

// Build constructs the verify command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	verifyCommand := &cobra.Command{
		Use:   verifyCommandUseConstant,
		Short: verifyCommandShortDescriptionConstant,
		Long:  verifyCommandLongDescriptionConstant,
		RunE:  builder.runVerify,
	}

	verifyCommand.Flags().String(packageDirectoryFlagNameConstant, "", packageDirectoryFlagDescription)
	verifyCommand.Flags().String(kindFlagNameConstant, string(KindTox), kindFlagDescriptionConstant)
	verifyCommand.Flags().String(toxEnvironmentFlagNameConstant, defaultToxEnvironmentConstant, toxEnvironmentFlagDescriptionConstant)
	verifyCommand.Flags().Duration(timeoutFlagNameConstant, defaultVerifyTimeoutConstant, timeoutFlagDescriptionConstant)

	return verifyCommand, nil
}

func (builder *CommandBuilder) runVerify(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errors.New(unexpectedArgumentsErrorMessageConstant)
	}

	packageDirectoryValue, packageDirectoryError := command.Flags().GetString(packageDirectoryFlagNameConstant)
	if packageDirectoryError != nil {
		return packageDirectoryError
	}
	if len(strings.TrimSpace(packageDirectoryValue)) == 0 {
		return errors.New(missingPackageDirectoryErrorConstant)
	}
	kindValue, kindFlagError := command.Flags().GetString(kindFlagNameConstant)
	if kindFlagError != nil {
		return kindFlagError
	}
	toxEnvironmentValue, toxEnvironmentError := command.Flags().GetString(toxEnvironmentFlagNameConstant)
	if toxEnvironmentError != nil {
		return toxEnvironmentError
	}
	timeoutValue, timeoutFlagError := command.Flags().GetDuration(timeoutFlagNameConstant)
	if timeoutFlagError != nil {
		return timeoutFlagError
	}

	logger := builder.resolveLogger()
	consoleObserver := ui.NewConsoleCommandEventLogger(logger)
	shellExecutor, executorError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), consoleObserver)
	if executorError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, executorError)
	}

	verificationService, serviceError := NewService(logger, shellExecutor, timeoutValue)
	if serviceError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, serviceError)
	}

	verificationResult, verificationError := verificationService.Verify(command.Context(), Options{
		PackageDirectory: strings.TrimSpace(packageDirectoryValue),
		Kind:             Kind(strings.TrimSpace(kindValue)),
		ToxEnvironment:   strings.TrimSpace(toxEnvironmentValue),
	})
	if verificationError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, verificationError)
	}
	if verificationResult.Skipped {
		fmt.Fprintln(command.OutOrStdout(), verificationSkippedNoticeConstant)
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
