package generate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/sdkrel/internal/execshell"
	"github.com/temirov/sdkrel/internal/runhistory"
	"github.com/temirov/sdkrel/internal/ui"
	pathutils "github.com/temirov/sdkrel/internal/utils/path"
)

const (
	generateCommandUseConstant              = "generate"
	generateCommandShortDescription         = "Regenerate client code for SDK packages"
	generateCommandLongDescriptionConstant  = "generate invokes autorest or tsp-client for every selected package and reports the files each run touched."
	unexpectedArgumentsErrorMessageConstant = "generate does not accept positional arguments"
	commandExecutionErrorTemplateConstant   = "generate failed: %w"
	rootFlagNameConstant                    = "root"
	rootFlagDescriptionConstant             = "Monorepo checkout root (repeatable)"
	packageFlagNameConstant                 = "package"
	packageFlagDescriptionConstant          = "Glob filter applied to package names"
	tagFlagNameConstant                     = "tag"
	tagFlagDescriptionConstant              = "Autorest readme tag overriding the readme default"
	parallelFlagNameConstant                = "parallel"
	parallelFlagDescriptionConstant         = "Number of targets regenerated concurrently"
	timeoutFlagNameConstant                 = "timeout"
	timeoutFlagDescriptionConstant          = "Per-target generation timeout"
	historyDatabaseFlagNameConstant         = "history-db"
	historyDatabaseFlagDescription          = "Record run outcomes in this SQLite database"
	npxFlagNameConstant                     = "npx"
	npxFlagDescriptionConstant              = "Invoke tsp-client through npx instead of a global install"
	gitRevParseSubcommandConstant           = "rev-parse"
	gitHeadReferenceConstant                = "HEAD"
	commitResolveWarningMessageConstant     = "unable to resolve repository commit"
	missingRootsErrorMessageConstant        = "generate requires at least one monorepo root"
	noTargetsErrorMessageConstant           = "no generation targets matched the selection"
	failedTargetsErrorTemplateConstant      = "%d of %d generation targets failed"
	historyRecordWarningMessageConstant     = "unable to record run history entry"
	sdkDirectoryNameConstant                = "sdk"
	resultTableColumnPackageConstant        = "Package"
	resultTableColumnModeConstant           = "Mode"
	resultTableColumnDurationConstant       = "Duration"
	resultTableColumnChangesConstant        = "Changed"
	resultTableColumnOutcomeConstant        = "Outcome"
	resultOutcomeSucceededConstant          = "ok"
	resultOutcomeFailedTemplateConstant     = "failed: %s"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// Configuration aggregates settings for the generate command.
type Configuration struct {
	Roots           []string `mapstructure:"roots"`
	Parallelism     int      `mapstructure:"parallelism"`
	TimeoutMinutes  int      `mapstructure:"timeout_minutes"`
	HistoryDatabase string   `mapstructure:"history_database"`
	ExcludedPaths   []string `mapstructure:"excluded_paths"`
	UseNpx          bool     `mapstructure:"use_npx"`
}

// ConfigurationProvider returns the current generate configuration.
type ConfigurationProvider func() Configuration

// DefaultConfigurationValues exposes viper defaults for the generate section.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	return map[string]any{
		configurationKeyPrefix + ".parallelism":     defaultBatchParallelismConstant,
		configurationKeyPrefix + ".timeout_minutes": int(defaultTargetTimeoutConstant / time.Minute),
	}
}

// CommandBuilder assembles the generate command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Output                io.Writer
}

// Build constructs the generate command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	generateCommand := &cobra.Command{
		Use:   generateCommandUseConstant,
		Short: generateCommandShortDescription,
		Long:  generateCommandLongDescriptionConstant,
		RunE:  builder.runGenerate,
	}

	generateCommand.Flags().StringSlice(rootFlagNameConstant, nil, rootFlagDescriptionConstant)
	generateCommand.Flags().String(packageFlagNameConstant, "", packageFlagDescriptionConstant)
	generateCommand.Flags().String(tagFlagNameConstant, "", tagFlagDescriptionConstant)
	generateCommand.Flags().Int(parallelFlagNameConstant, 0, parallelFlagDescriptionConstant)
	generateCommand.Flags().Duration(timeoutFlagNameConstant, 0, timeoutFlagDescriptionConstant)
	generateCommand.Flags().String(historyDatabaseFlagNameConstant, "", historyDatabaseFlagDescription)
	generateCommand.Flags().Bool(npxFlagNameConstant, false, npxFlagDescriptionConstant)

	return generateCommand, nil
}

func (builder *CommandBuilder) runGenerate(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errors.New(unexpectedArgumentsErrorMessageConstant)
	}

	configuration := builder.resolveConfiguration()
	logger := builder.resolveLogger()

	rootFlagValues, rootFlagError := command.Flags().GetStringSlice(rootFlagNameConstant)
	if rootFlagError != nil {
		return rootFlagError
	}
	candidateRoots := rootFlagValues
	if len(candidateRoots) == 0 {
		candidateRoots = configuration.Roots
	}
	sanitizedRoots := pathutils.NewMonorepoRootSanitizer().Sanitize(candidateRoots)
	if len(sanitizedRoots) == 0 {
		return errors.New(missingRootsErrorMessageConstant)
	}

	packageFilterValue, packageFilterError := command.Flags().GetString(packageFlagNameConstant)
	if packageFilterError != nil {
		return packageFilterError
	}
	tagOverrideValue, tagFlagError := command.Flags().GetString(tagFlagNameConstant)
	if tagFlagError != nil {
		return tagFlagError
	}
	parallelismValue, parallelFlagError := command.Flags().GetInt(parallelFlagNameConstant)
	if parallelFlagError != nil {
		return parallelFlagError
	}
	if parallelismValue <= 0 {
		parallelismValue = configuration.Parallelism
	}
	timeoutValue, timeoutFlagError := command.Flags().GetDuration(timeoutFlagNameConstant)
	if timeoutFlagError != nil {
		return timeoutFlagError
	}
	if timeoutValue <= 0 {
		timeoutValue = time.Duration(configuration.TimeoutMinutes) * time.Minute
	}
	historyDatabaseValue, historyFlagError := command.Flags().GetString(historyDatabaseFlagNameConstant)
	if historyFlagError != nil {
		return historyFlagError
	}
	if len(historyDatabaseValue) == 0 {
		historyDatabaseValue = configuration.HistoryDatabase
	}
	npxRequested, npxFlagError := command.Flags().GetBool(npxFlagNameConstant)
	if npxFlagError != nil {
		return npxFlagError
	}
	if !npxRequested {
		npxRequested = configuration.UseNpx
	}

	targets, targetsError := builder.resolveTargets(logger, configuration, sanitizedRoots, packageFilterValue, tagOverrideValue)
	if targetsError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, targetsError)
	}
	if len(targets) == 0 {
		return errors.New(noTargetsErrorMessageConstant)
	}

	generationService, shellExecutor, serviceError := builder.buildService(logger, timeoutValue)
	if serviceError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, serviceError)
	}
	if npxRequested {
		generationService.RouteTypeSpecThroughNpx()
	}

	batchResults := generationService.GenerateBatch(command.Context(), targets, parallelismValue)

	if len(historyDatabaseValue) > 0 {
		repositoryCommit := resolveRepositoryCommit(command.Context(), logger, shellExecutor, sanitizedRoots[0])
		recordRunHistory(logger, historyDatabaseValue, repositoryCommit, batchResults)
	}

	renderTargetResults(builder.resolveOutput(command), batchResults)

	failedCount := 0
	for _, targetResult := range batchResults {
		if !targetResult.Succeeded() {
			failedCount++
		}
	}
	if failedCount > 0 {
		return fmt.Errorf(failedTargetsErrorTemplateConstant, failedCount, len(batchResults))
	}
	return nil
}

func (builder *CommandBuilder) resolveTargets(logger *zap.Logger, configuration Configuration, sanitizedRoots []string, packageFilter string, tagOverride string) ([]Target, error) {
	return ResolveTargets(logger, TargetSelection{
		Roots:         sanitizedRoots,
		ExcludedPaths: configuration.ExcludedPaths,
		PackageFilter: packageFilter,
		TagOverride:   tagOverride,
	})
}

func (builder *CommandBuilder) buildService(logger *zap.Logger, targetTimeout time.Duration) (*Service, *execshell.ShellExecutor, error) {
	consoleObserver := ui.NewConsoleCommandEventLogger(logger)
	shellExecutor, executorError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), consoleObserver)
	if executorError != nil {
		return nil, nil, executorError
	}
	generationService, serviceError := NewService(logger, shellExecutor, targetTimeout)
	if serviceError != nil {
		return nil, nil, serviceError
	}
	return generationService, shellExecutor, nil
}

func resolveRepositoryCommit(executionContext context.Context, logger *zap.Logger, shellExecutor *execshell.ShellExecutor, repositoryRoot string) string {
	executionResult, executionError := shellExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRevParseSubcommandConstant, gitHeadReferenceConstant},
		WorkingDirectory: repositoryRoot,
	})
	if executionError != nil {
		logger.Warn(commitResolveWarningMessageConstant, zap.Error(executionError))
		return ""
	}
	return strings.TrimSpace(executionResult.StandardOutput)
}

func recordRunHistory(logger *zap.Logger, historyDatabasePath string, repositoryCommit string, batchResults []TargetResult) {
	store, openError := runhistory.OpenStore(historyDatabasePath)
	if openError != nil {
		logger.Warn(historyRecordWarningMessageConstant, zap.Error(openError))
		return
	}
	defer func() { _ = store.Close() }()

	for _, targetResult := range batchResults {
		record := runhistory.RunRecord{
			PackageName:      targetResult.Target.PackageName,
			GenerationMode:   string(targetResult.Target.Mode),
			Duration:         targetResult.Duration,
			ChangedFileCount: targetResult.Changes.Total(),
			Succeeded:        targetResult.Succeeded(),
			RepositoryCommit: repositoryCommit,
		}
		if targetResult.FailureError != nil {
			record.FailureMessage = targetResult.FailureError.Error()
		}
		if _, recordError := store.RecordRun(record); recordError != nil {
			logger.Warn(historyRecordWarningMessageConstant, zap.Error(recordError))
		}
	}
}

func renderTargetResults(outputWriter io.Writer, batchResults []TargetResult) {
	resultTable := table.NewWriter()
	resultTable.SetOutputMirror(outputWriter)
	resultTable.AppendHeader(table.Row{
		resultTableColumnPackageConstant,
		resultTableColumnModeConstant,
		resultTableColumnDurationConstant,
		resultTableColumnChangesConstant,
		resultTableColumnOutcomeConstant,
	})
	for _, targetResult := range batchResults {
		outcomeLabel := resultOutcomeSucceededConstant
		if targetResult.FailureError != nil {
			outcomeLabel = fmt.Sprintf(resultOutcomeFailedTemplateConstant, targetResult.FailureError.Error())
		}
		resultTable.AppendRow(table.Row{
			targetResult.Target.PackageName,
			string(targetResult.Target.Mode),
			targetResult.Duration.Round(time.Millisecond).String(),
			targetResult.Changes.Total(),
			outcomeLabel,
		})
	}
	resultTable.Render()
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

func (builder *CommandBuilder) resolveConfiguration() Configuration {
	if builder.ConfigurationProvider == nil {
		return Configuration{}
	}
	return builder.ConfigurationProvider()
}

func (builder *CommandBuilder) resolveOutput(command *cobra.Command) io.Writer {
	if builder.Output != nil {
		return builder.Output
	}
	return command.OutOrStdout()
}
