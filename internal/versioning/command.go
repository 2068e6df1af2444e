package versioning

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/sdkrel/internal/pepver"
)

const (
	versionCommandUseConstant               = "version"
	versionCommandShortDescriptionConstant  = "Manage package release versions"
	versionCommandLongDescriptionConstant   = "version computes and applies release version changes for a client package."
	bumpCommandUseConstant                  = "bump"
	bumpCommandShortDescriptionConstant     = "Bump the package version for a release"
	devCommandUseConstant                   = "dev"
	devCommandShortDescriptionConstant      = "Stamp a development build version"
	unexpectedArgumentsErrorMessageConstant = "version subcommands do not accept positional arguments"
	commandExecutionErrorTemplateConstant   = "version command failed: %w"
	packageDirectoryFlagNameConstant        = "package-dir"
	packageDirectoryFlagDescription         = "Package directory to update"
	changeLevelFlagNameConstant             = "level"
	changeLevelFlagDescriptionConstant      = "Change level: breaking, feature, or bugfix"
	previewFlagNameConstant                 = "preview"
	previewFlagDescriptionConstant          = "Target a preview (bN) release"
	explicitVersionFlagNameConstant         = "set"
	explicitVersionFlagDescription          = "Exact version to apply instead of computing one"
	releaseDateFlagNameConstant             = "date"
	releaseDateFlagDescriptionConstant      = "Release date stamped onto the changelog heading"
	dryRunFlagNameConstant                  = "dry-run"
	dryRunFlagDescriptionConstant           = "Print the planned version change without writing"
	buildIdentifierFlagNameConstant         = "build-id"
	buildIdentifierFlagDescription          = "Numeric build identifier for the development stamp"
	missingPackageDirectoryErrorConstant    = "version commands require --package-dir"
	bumpPlanTemplateConstant                = "%s -> %s\n"
	releaseDateLayoutConstant               = "2006-01-02"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the version command hierarchy.
type CommandBuilder struct {
	LoggerProvider LoggerProvider
}

// Build constructs the version command with bump and dev subcommands.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	versionCommand := &cobra.Command{
		Use:   versionCommandUseConstant,
		Short: versionCommandShortDescriptionConstant,
		Long:  versionCommandLongDescriptionConstant,
	}

	bumpCommand := &cobra.Command{
		Use:   bumpCommandUseConstant,
		Short: bumpCommandShortDescriptionConstant,
		RunE:  builder.runBump,
	}
	bumpCommand.Flags().String(packageDirectoryFlagNameConstant, "", packageDirectoryFlagDescription)
	bumpCommand.Flags().String(changeLevelFlagNameConstant, string(pepver.ChangeLevelBugfix), changeLevelFlagDescriptionConstant)
	bumpCommand.Flags().Bool(previewFlagNameConstant, false, previewFlagDescriptionConstant)
	bumpCommand.Flags().String(explicitVersionFlagNameConstant, "", explicitVersionFlagDescription)
	bumpCommand.Flags().String(releaseDateFlagNameConstant, "", releaseDateFlagDescriptionConstant)
	bumpCommand.Flags().Bool(dryRunFlagNameConstant, false, dryRunFlagDescriptionConstant)

	devCommand := &cobra.Command{
		Use:   devCommandUseConstant,
		Short: devCommandShortDescriptionConstant,
		RunE:  builder.runDev,
	}
	devCommand.Flags().String(packageDirectoryFlagNameConstant, "", packageDirectoryFlagDescription)
	devCommand.Flags().Int(buildIdentifierFlagNameConstant, 0, buildIdentifierFlagDescription)
	devCommand.Flags().Bool(dryRunFlagNameConstant, false, dryRunFlagDescriptionConstant)

	versionCommand.AddCommand(bumpCommand)
	versionCommand.AddCommand(devCommand)

	return versionCommand, nil
}

func (builder *CommandBuilder) runBump(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errors.New(unexpectedArgumentsErrorMessageConstant)
	}

	packageDirectory, packageDirectoryError := requiredPackageDirectory(command)
	if packageDirectoryError != nil {
		return packageDirectoryError
	}

	changeLevelText, changeLevelError := command.Flags().GetString(changeLevelFlagNameConstant)
	if changeLevelError != nil {
		return changeLevelError
	}
	changeLevel, levelParseError := pepver.ParseChangeLevel(changeLevelText)
	if levelParseError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, levelParseError)
	}

	previewValue, previewError := command.Flags().GetBool(previewFlagNameConstant)
	if previewError != nil {
		return previewError
	}
	explicitVersionValue, explicitVersionError := command.Flags().GetString(explicitVersionFlagNameConstant)
	if explicitVersionError != nil {
		return explicitVersionError
	}
	releaseDateValue, releaseDateError := command.Flags().GetString(releaseDateFlagNameConstant)
	if releaseDateError != nil {
		return releaseDateError
	}
	if len(strings.TrimSpace(releaseDateValue)) == 0 {
		releaseDateValue = time.Now().Format(releaseDateLayoutConstant)
	}
	dryRunValue, dryRunError := command.Flags().GetBool(dryRunFlagNameConstant)
	if dryRunError != nil {
		return dryRunError
	}

	versioningService, serviceError := NewService(builder.resolveLogger())
	if serviceError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, serviceError)
	}

	bumpResult, bumpError := versioningService.Bump(BumpOptions{
		PackageDirectory: packageDirectory,
		ChangeLevel:      changeLevel,
		Preview:          previewValue,
		ExplicitVersion:  strings.TrimSpace(explicitVersionValue),
		ReleaseDate:      strings.TrimSpace(releaseDateValue),
		DryRun:           dryRunValue,
	})
	if bumpError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, bumpError)
	}

	fmt.Fprintf(command.OutOrStdout(), bumpPlanTemplateConstant, bumpResult.PreviousVersion.String(), bumpResult.NextVersion.String())
	return nil
}

func (builder *CommandBuilder) runDev(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errors.New(unexpectedArgumentsErrorMessageConstant)
	}

	packageDirectory, packageDirectoryError := requiredPackageDirectory(command)
	if packageDirectoryError != nil {
		return packageDirectoryError
	}

	buildIdentifierValue, buildIdentifierError := command.Flags().GetInt(buildIdentifierFlagNameConstant)
	if buildIdentifierError != nil {
		return buildIdentifierError
	}
	dryRunValue, dryRunError := command.Flags().GetBool(dryRunFlagNameConstant)
	if dryRunError != nil {
		return dryRunError
	}

	versioningService, serviceError := NewService(builder.resolveLogger())
	if serviceError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, serviceError)
	}

	bumpResult, stampError := versioningService.StampDevelopmentBuild(packageDirectory, buildIdentifierValue, dryRunValue)
	if stampError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, stampError)
	}

	fmt.Fprintf(command.OutOrStdout(), bumpPlanTemplateConstant, bumpResult.PreviousVersion.String(), bumpResult.NextVersion.String())
	return nil
}

func requiredPackageDirectory(command *cobra.Command) (string, error) {
	packageDirectoryValue, flagError := command.Flags().GetString(packageDirectoryFlagNameConstant)
	if flagError != nil {
		return "", flagError
	}
	trimmedPackageDirectory := strings.TrimSpace(packageDirectoryValue)
	if len(trimmedPackageDirectory) == 0 {
		return "", errors.New(missingPackageDirectoryErrorConstant)
	}
	return trimmedPackageDirectory, nil
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
