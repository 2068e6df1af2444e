package changelog

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	changelogCommandUseConstant              = "changelog"
	changelogCommandShortDescriptionConstant = "Generate release notes from code reports"
	changelogCommandLongDescriptionConstant  = "changelog diffs two generated code reports and maintains the package CHANGELOG.md."
	generateCommandUseConstant               = "generate"
	generateCommandShortDescriptionConstant  = "Diff code reports and merge the release section"
	unexpectedArgumentsErrorMessageConstant  = "changelog generate does not accept positional arguments"
	commandExecutionErrorTemplateConstant    = "changelog generate failed: %w"
	packageDirectoryFlagNameConstant         = "package-dir"
	packageDirectoryFlagDescription          = "Package directory containing CHANGELOG.md"
	previousReportFlagNameConstant           = "previous-report"
	previousReportFlagDescriptionConstant    = "Path to the code report of the last release"
	currentReportFlagNameConstant            = "current-report"
	currentReportFlagDescriptionConstant     = "Path to the freshly generated code report"
	releaseVersionFlagNameConstant           = "release-version"
	releaseVersionFlagDescriptionConstant    = "Version heading for the new section"
	releaseDateFlagNameConstant              = "date"
	releaseDateFlagDescriptionConstant       = "Release date stamp (defaults to today)"
	dryRunFlagNameConstant                   = "dry-run"
	dryRunFlagDescriptionConstant            = "Print the rendered section without touching the changelog"
	missingFlagErrorTemplateConstant         = "changelog generate requires --%s"
	releaseDateLayoutConstant                = "2006-01-02"
	skippedNoticeConstant                    = "changelog generation skipped"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the changelog command hierarchy.
type CommandBuilder struct {
	LoggerProvider LoggerProvider
}

// Build constructs the changelog command with the generate subcommand.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	changelogCommand := &cobra.Command{
		Use:   changelogCommandUseConstant,
		Short: changelogCommandShortDescriptionConstant,
		Long:  changelogCommandLongDescriptionConstant,
	}

	generateCommand := &cobra.Command{
		Use:   generateCommandUseConstant,
		Short: generateCommandShortDescriptionConstant,
		RunE:  builder.runGenerate,
	}

	generateCommand.Flags().String(packageDirectoryFlagNameConstant, "", packageDirectoryFlagDescription)
	generateCommand.Flags().String(previousReportFlagNameConstant, "", previousReportFlagDescriptionConstant)
	generateCommand.Flags().String(currentReportFlagNameConstant, "", currentReportFlagDescriptionConstant)
	generateCommand.Flags().String(releaseVersionFlagNameConstant, "", releaseVersionFlagDescriptionConstant)
	generateCommand.Flags().String(releaseDateFlagNameConstant, "", releaseDateFlagDescriptionConstant)
	generateCommand.Flags().Bool(dryRunFlagNameConstant, false, dryRunFlagDescriptionConstant)

	changelogCommand.AddCommand(generateCommand)

	return changelogCommand, nil
}

func (builder *CommandBuilder) runGenerate(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errors.New(unexpectedArgumentsErrorMessageConstant)
	}

	generateOptions, optionsError := resolveGenerateOptions(command)
	if optionsError != nil {
		return optionsError
	}

	changelogService, serviceError := NewService(builder.resolveLogger())
	if serviceError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, serviceError)
	}

	generationResult, generationError := changelogService.Generate(generateOptions)
	if generationError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, generationError)
	}

	if generationResult.Skipped {
		fmt.Fprintln(command.OutOrStdout(), skippedNoticeConstant)
		return nil
	}
	if generateOptions.DryRun {
		fmt.Fprint(command.OutOrStdout(), generationResult.Section)
	}
	return nil
}

func resolveGenerateOptions(command *cobra.Command) (GenerateOptions, error) {
	requiredFlagNames := []string{
		packageDirectoryFlagNameConstant,
		previousReportFlagNameConstant,
		currentReportFlagNameConstant,
		releaseVersionFlagNameConstant,
	}
	flagValues := make(map[string]string, len(requiredFlagNames))
	for _, flagName := range requiredFlagNames {
		flagValue, flagError := command.Flags().GetString(flagName)
		if flagError != nil {
			return GenerateOptions{}, flagError
		}
		if len(strings.TrimSpace(flagValue)) == 0 {
			return GenerateOptions{}, fmt.Errorf(missingFlagErrorTemplateConstant, flagName)
		}
		flagValues[flagName] = strings.TrimSpace(flagValue)
	}

	releaseDateValue, releaseDateError := command.Flags().GetString(releaseDateFlagNameConstant)
	if releaseDateError != nil {
		return GenerateOptions{}, releaseDateError
	}
	if len(strings.TrimSpace(releaseDateValue)) == 0 {
		releaseDateValue = time.Now().Format(releaseDateLayoutConstant)
	}

	dryRunValue, dryRunError := command.Flags().GetBool(dryRunFlagNameConstant)
	if dryRunError != nil {
		return GenerateOptions{}, dryRunError
	}

	return GenerateOptions{
		PackageDirectory:   flagValues[packageDirectoryFlagNameConstant],
		PreviousReportPath: flagValues[previousReportFlagNameConstant],
		CurrentReportPath:  flagValues[currentReportFlagNameConstant],
		Version:            flagValues[releaseVersionFlagNameConstant],
		ReleaseDate:        strings.TrimSpace(releaseDateValue),
		DryRun:             dryRunValue,
	}, nil
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
