package discovery

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	pathutils "github.com/temirov/sdkrel/internal/utils/path"
)

const (
	packagesCommandUseConstant              = "packages"
	packagesCommandShortDescriptionConstant = "Inspect SDK packages in the monorepo"
	packagesCommandLongDescriptionConstant  = "packages provides discovery and audit reports over the monorepo's client libraries."
	listCommandUseConstant                  = "list"
	listCommandShortDescriptionConstant     = "List discovered SDK packages"
	listCommandLongDescriptionConstant      = "list walks the configured monorepo roots and reports every discovered client package."
	unexpectedArgumentsErrorMessageConstant = "packages list does not accept positional arguments"
	commandExecutionErrorTemplateConstant   = "packages list failed: %w"
	rootFlagNameConstant                    = "root"
	rootFlagDescriptionConstant             = "Monorepo checkout root (repeatable)"
	formatFlagNameConstant                  = "format"
	formatFlagDescriptionConstant           = "Output format: table or json"
	includeInactiveFlagNameConstant         = "include-inactive"
	includeInactiveFlagDescriptionConstant  = "Include packages carrying the inactive classifier"
	nameFilterFlagNameConstant              = "name"
	nameFilterFlagDescriptionConstant       = "Glob filter applied to package names"
	planeFlagNameConstant                   = "plane"
	planeFlagDescriptionConstant            = "Keep only packages of this plane: mgmt or data"
	pythonVersionFlagNameConstant           = "python-version"
	pythonVersionFlagDescriptionConstant    = "Keep only packages whose requires-python admits this interpreter version"
	missingRootsErrorMessageConstant        = "packages list requires at least one monorepo root"
	unsupportedFormatTemplateConstant       = "unsupported output format: %s"
	unsupportedPlaneTemplateConstant        = "unsupported plane filter: %s"
	planeFilterManagementConstant           = "mgmt"
	planeFilterDataConstant                 = "data"
	outputFormatTableConstant               = "table"
	outputFormatJSONConstant                = "json"
	tableColumnPackageConstant              = "Package"
	tableColumnVersionConstant              = "Version"
	tableColumnServiceConstant              = "Service"
	tableColumnPlaneConstant                = "Plane"
	tableColumnModeConstant                 = "Mode"
	tableColumnStatusConstant               = "Status"
	statusInactiveLabelConstant             = "inactive"
	statusActiveLabelConstant               = "active"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// Configuration aggregates settings for the packages command family.
type Configuration struct {
	Roots           []string `mapstructure:"roots"`
	Format          string   `mapstructure:"format"`
	IncludeInactive bool     `mapstructure:"include_inactive"`
	ExcludedPaths   []string `mapstructure:"excluded_paths"`
	Plane           string   `mapstructure:"plane"`
	PythonVersion   string   `mapstructure:"python_version"`
}

// ConfigurationProvider returns the current packages configuration.
type ConfigurationProvider func() Configuration

// DefaultConfiguration supplies baseline values for packages configuration.
func DefaultConfiguration() Configuration {
	return Configuration{Format: outputFormatTableConstant}
}

// DefaultConfigurationValues exposes viper defaults for the packages section.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	return map[string]any{
		configurationKeyPrefix + ".format": outputFormatTableConstant,
	}
}

// CommandBuilder assembles the packages command hierarchy.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Output                io.Writer
}

// Build constructs the packages command with the list subcommand.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	packagesCommand := &cobra.Command{
		Use:   packagesCommandUseConstant,
		Short: packagesCommandShortDescriptionConstant,
		Long:  packagesCommandLongDescriptionConstant,
	}

	listCommand := &cobra.Command{
		Use:   listCommandUseConstant,
		Short: listCommandShortDescriptionConstant,
		Long:  listCommandLongDescriptionConstant,
		RunE:  builder.runList,
	}

	listCommand.Flags().StringSlice(rootFlagNameConstant, nil, rootFlagDescriptionConstant)
	listCommand.Flags().String(formatFlagNameConstant, "", formatFlagDescriptionConstant)
	listCommand.Flags().Bool(includeInactiveFlagNameConstant, false, includeInactiveFlagDescriptionConstant)
	listCommand.Flags().String(nameFilterFlagNameConstant, "", nameFilterFlagDescriptionConstant)
	listCommand.Flags().String(planeFlagNameConstant, "", planeFlagDescriptionConstant)
	listCommand.Flags().String(pythonVersionFlagNameConstant, "", pythonVersionFlagDescriptionConstant)

	packagesCommand.AddCommand(listCommand)

	return packagesCommand, nil
}

func (builder *CommandBuilder) runList(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errors.New(unexpectedArgumentsErrorMessageConstant)
	}

	configuration := builder.resolveConfiguration()

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

	formatFlagValue, formatFlagError := command.Flags().GetString(formatFlagNameConstant)
	if formatFlagError != nil {
		return formatFlagError
	}
	outputFormat := selectStringValue(formatFlagValue, configuration.Format)

	includeInactiveValue := configuration.IncludeInactive
	if command.Flags().Changed(includeInactiveFlagNameConstant) {
		flagIncludeInactive, includeInactiveError := command.Flags().GetBool(includeInactiveFlagNameConstant)
		if includeInactiveError != nil {
			return includeInactiveError
		}
		includeInactiveValue = flagIncludeInactive
	}

	nameFilterValue, nameFilterError := command.Flags().GetString(nameFilterFlagNameConstant)
	if nameFilterError != nil {
		return nameFilterError
	}
	planeFlagValue, planeFlagError := command.Flags().GetString(planeFlagNameConstant)
	if planeFlagError != nil {
		return planeFlagError
	}
	includeManagement, includeDataPlane, planeSelectionError := resolvePlaneSelection(selectStringValue(planeFlagValue, configuration.Plane))
	if planeSelectionError != nil {
		return planeSelectionError
	}
	pythonVersionValue, pythonVersionError := command.Flags().GetString(pythonVersionFlagNameConstant)
	if pythonVersionError != nil {
		return pythonVersionError
	}

	discoveryService, serviceError := NewService(builder.resolveLogger(), NewFilesystemPackageDiscoverer(configuration.ExcludedPaths))
	if serviceError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, serviceError)
	}

	descriptors, discoveryError := discoveryService.DiscoverDescriptors(sanitizedRoots, FilterOptions{
		IncludeManagement: includeManagement,
		IncludeDataPlane:  includeDataPlane,
		IncludeInactive:   includeInactiveValue,
		NameFilter:        strings.TrimSpace(nameFilterValue),
		PythonVersion:     selectStringValue(pythonVersionValue, configuration.PythonVersion),
	})
	if discoveryError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, discoveryError)
	}

	outputWriter := builder.resolveOutput(command)
	renderError := RenderDescriptors(outputWriter, descriptors, outputFormat)
	if renderError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, renderError)
	}

	return nil
}

// RenderDescriptors writes package descriptors in the requested format.
func RenderDescriptors(outputWriter io.Writer, descriptors []PackageDescriptor, outputFormat string) error {
	switch strings.ToLower(strings.TrimSpace(outputFormat)) {
	case outputFormatJSONConstant:
		jsonEncoder := json.NewEncoder(outputWriter)
		jsonEncoder.SetIndent("", "  ")
		return jsonEncoder.Encode(descriptors)
	case outputFormatTableConstant, "":
		descriptorTable := table.NewWriter()
		descriptorTable.SetOutputMirror(outputWriter)
		descriptorTable.AppendHeader(table.Row{
			tableColumnPackageConstant,
			tableColumnVersionConstant,
			tableColumnServiceConstant,
			tableColumnPlaneConstant,
			tableColumnModeConstant,
			tableColumnStatusConstant,
		})
		for _, descriptor := range descriptors {
			statusLabel := statusActiveLabelConstant
			if descriptor.Inactive {
				statusLabel = statusInactiveLabelConstant
			}
			descriptorTable.AppendRow(table.Row{
				descriptor.Name,
				descriptor.Version,
				descriptor.ServiceDirectory,
				string(descriptor.Plane),
				string(descriptor.Mode),
				statusLabel,
			})
		}
		descriptorTable.Render()
		return nil
	default:
		return fmt.Errorf(unsupportedFormatTemplateConstant, outputFormat)
	}
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
		return DefaultConfiguration()
	}
	return builder.ConfigurationProvider()
}

func (builder *CommandBuilder) resolveOutput(command *cobra.Command) io.Writer {
	if builder.Output != nil {
		return builder.Output
	}
	return command.OutOrStdout()
}

func resolvePlaneSelection(planeFilter string) (bool, bool, error) {
	switch strings.ToLower(planeFilter) {
	case "":
		return true, true, nil
	case planeFilterManagementConstant:
		return true, false, nil
	case planeFilterDataConstant:
		return false, true, nil
	default:
		return false, false, fmt.Errorf(unsupportedPlaneTemplateConstant, planeFilter)
	}
}

func selectStringValue(flagValue string, configurationValue string) string {
	trimmedFlagValue := strings.TrimSpace(flagValue)
	if len(trimmedFlagValue) > 0 {
		return trimmedFlagValue
	}
	return strings.TrimSpace(configurationValue)
}
