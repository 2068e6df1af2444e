package plan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"go.uber.org/zap"

	"github.com/temirov/sdkrel/internal/changelog"
	"github.com/temirov/sdkrel/internal/execshell"
	"github.com/temirov/sdkrel/internal/generate"
	"github.com/temirov/sdkrel/internal/pepver"
	pathutils "github.com/temirov/sdkrel/internal/utils/path"
	"github.com/temirov/sdkrel/internal/verify"
	"github.com/temirov/sdkrel/internal/versioning"
)

const (
	executorLoggerRequiredErrorConstant  = "plan executor requires a logger"
	executorToolRequiredErrorConstant    = "plan executor requires a tool executor"
	stepFailedErrorTemplateConstant      = "plan step %d (%s) failed: %w"
	stepStartedMessageConstant           = "executing plan step"
	generateStepRootsRequiredConstant    = "generate step requires at least one root"
	generateStepFailuresTemplateConstant = "%d generation targets failed"
	stepPackageDirectoryRequiredConstant = "step requires package_dir"
	logFieldStepIndexConstant            = "step_index"
	logFieldStepOperationConstant        = "step_operation"
	releaseDateLayoutConstant            = "2006-01-02"
)

// ToolExecutor bundles the external tool invocations plan steps rely on.
type ToolExecutor interface {
	ExecuteAutorest(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteTypeSpecClient(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteNpx(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteTox(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecutePip(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Executor runs release plan steps in order, stopping on the first failure.
type Executor struct {
	logger       *zap.Logger
	toolExecutor ToolExecutor
}

// NewExecutor constructs a plan executor.
func NewExecutor(logger *zap.Logger, toolExecutor ToolExecutor) (*Executor, error) {
	if logger == nil {
		return nil, errors.New(executorLoggerRequiredErrorConstant)
	}
	if toolExecutor == nil {
		return nil, errors.New(executorToolRequiredErrorConstant)
	}
	return &Executor{logger: logger, toolExecutor: toolExecutor}, nil
}

type generateStepOptions struct {
	Roots          []string `mapstructure:"roots"`
	PackageFilter  string   `mapstructure:"package"`
	Tag            string   `mapstructure:"tag"`
	Parallelism    int      `mapstructure:"parallel"`
	TimeoutMinutes int      `mapstructure:"timeout_minutes"`
	ExcludedPaths  []string `mapstructure:"excluded_paths"`
	UseNpx         bool     `mapstructure:"use_npx"`
}

type changelogStepOptions struct {
	PackageDirectory   string `mapstructure:"package_dir"`
	PreviousReportPath string `mapstructure:"previous_report"`
	CurrentReportPath  string `mapstructure:"current_report"`
	ReleaseVersion     string `mapstructure:"release_version"`
	ReleaseDate        string `mapstructure:"date"`
	DryRun             bool   `mapstructure:"dry_run"`
}

type versionStepOptions struct {
	PackageDirectory string `mapstructure:"package_dir"`
	ChangeLevel      string `mapstructure:"level"`
	Preview          bool   `mapstructure:"preview"`
	ExplicitVersion  string `mapstructure:"set"`
	ReleaseDate      string `mapstructure:"date"`
	DryRun           bool   `mapstructure:"dry_run"`
}

type verifyStepOptions struct {
	PackageDirectory string `mapstructure:"package_dir"`
	Kind             string `mapstructure:"kind"`
	ToxEnvironment   string `mapstructure:"tox_env"`
	TimeoutMinutes   int    `mapstructure:"timeout_minutes"`
}

// Execute runs every plan step in order. The first failing step aborts the
// remainder of the plan.
func (executor *Executor) Execute(executionContext context.Context, configuration Configuration) error {
	for stepIndex, step := range configuration.Steps {
		operation, stepOptions, resolveError := configuration.ResolveStep(step)
		if resolveError != nil {
			return fmt.Errorf(stepFailedErrorTemplateConstant, stepIndex+1, string(step.Operation), resolveError)
		}

		executor.logger.Info(
			stepStartedMessageConstant,
			zap.Int(logFieldStepIndexConstant, stepIndex+1),
			zap.String(logFieldStepOperationConstant, string(operation)),
		)

		stepError := executor.executeStep(executionContext, operation, stepOptions)
		if stepError != nil {
			return fmt.Errorf(stepFailedErrorTemplateConstant, stepIndex+1, string(operation), stepError)
		}
	}
	return nil
}

func (executor *Executor) executeStep(executionContext context.Context, operation OperationType, stepOptions map[string]any) error {
	switch operation {
	case OperationTypeGenerate:
		return executor.executeGenerateStep(executionContext, stepOptions)
	case OperationTypeChangelog:
		return executor.executeChangelogStep(stepOptions)
	case OperationTypeVersion:
		return executor.executeVersionStep(stepOptions)
	case OperationTypeVerify:
		return executor.executeVerifyStep(executionContext, stepOptions)
	default:
		return fmt.Errorf(configurationUnknownOperationTemplateConstant, string(operation))
	}
}

func (executor *Executor) executeGenerateStep(executionContext context.Context, stepOptions map[string]any) error {
	var decodedOptions generateStepOptions
	if decodeError := mapstructure.Decode(stepOptions, &decodedOptions); decodeError != nil {
		return decodeError
	}

	sanitizedRoots := pathutils.NewMonorepoRootSanitizer().Sanitize(decodedOptions.Roots)
	if len(sanitizedRoots) == 0 {
		return errors.New(generateStepRootsRequiredConstant)
	}

	targets, targetsError := generate.ResolveTargets(executor.logger, generate.TargetSelection{
		Roots:         sanitizedRoots,
		ExcludedPaths: decodedOptions.ExcludedPaths,
		PackageFilter: decodedOptions.PackageFilter,
		TagOverride:   decodedOptions.Tag,
	})
	if targetsError != nil {
		return targetsError
	}

	generationService, serviceError := generate.NewService(executor.logger, executor.toolExecutor, time.Duration(decodedOptions.TimeoutMinutes)*time.Minute)
	if serviceError != nil {
		return serviceError
	}
	if decodedOptions.UseNpx {
		generationService.RouteTypeSpecThroughNpx()
	}

	batchResults := generationService.GenerateBatch(executionContext, targets, decodedOptions.Parallelism)
	failedCount := 0
	for _, targetResult := range batchResults {
		if !targetResult.Succeeded() {
			failedCount++
		}
	}
	if failedCount > 0 {
		return fmt.Errorf(generateStepFailuresTemplateConstant, failedCount)
	}
	return nil
}

func (executor *Executor) executeChangelogStep(stepOptions map[string]any) error {
	var decodedOptions changelogStepOptions
	if decodeError := mapstructure.Decode(stepOptions, &decodedOptions); decodeError != nil {
		return decodeError
	}
	if len(decodedOptions.PackageDirectory) == 0 {
		return errors.New(stepPackageDirectoryRequiredConstant)
	}

	changelogService, serviceError := changelog.NewService(executor.logger)
	if serviceError != nil {
		return serviceError
	}

	releaseDate := decodedOptions.ReleaseDate
	if len(releaseDate) == 0 {
		releaseDate = time.Now().Format(releaseDateLayoutConstant)
	}

	_, generationError := changelogService.Generate(changelog.GenerateOptions{
		PackageDirectory:   decodedOptions.PackageDirectory,
		PreviousReportPath: decodedOptions.PreviousReportPath,
		CurrentReportPath:  decodedOptions.CurrentReportPath,
		Version:            decodedOptions.ReleaseVersion,
		ReleaseDate:        releaseDate,
		DryRun:             decodedOptions.DryRun,
	})
	return generationError
}

func (executor *Executor) executeVersionStep(stepOptions map[string]any) error {
	var decodedOptions versionStepOptions
	if decodeError := mapstructure.Decode(stepOptions, &decodedOptions); decodeError != nil {
		return decodeError
	}
	if len(decodedOptions.PackageDirectory) == 0 {
		return errors.New(stepPackageDirectoryRequiredConstant)
	}

	changeLevel := pepver.ChangeLevelBugfix
	if len(decodedOptions.ChangeLevel) > 0 {
		parsedLevel, levelError := pepver.ParseChangeLevel(decodedOptions.ChangeLevel)
		if levelError != nil {
			return levelError
		}
		changeLevel = parsedLevel
	}

	versioningService, serviceError := versioning.NewService(executor.logger)
	if serviceError != nil {
		return serviceError
	}

	releaseDate := decodedOptions.ReleaseDate
	if len(releaseDate) == 0 {
		releaseDate = time.Now().Format(releaseDateLayoutConstant)
	}

	_, bumpError := versioningService.Bump(versioning.BumpOptions{
		PackageDirectory: decodedOptions.PackageDirectory,
		ChangeLevel:      changeLevel,
		Preview:          decodedOptions.Preview,
		ExplicitVersion:  decodedOptions.ExplicitVersion,
		ReleaseDate:      releaseDate,
		DryRun:           decodedOptions.DryRun,
	})
	return bumpError
}

func (executor *Executor) executeVerifyStep(executionContext context.Context, stepOptions map[string]any) error {
	var decodedOptions verifyStepOptions
	if decodeError := mapstructure.Decode(stepOptions, &decodedOptions); decodeError != nil {
		return decodeError
	}
	if len(decodedOptions.PackageDirectory) == 0 {
		return errors.New(stepPackageDirectoryRequiredConstant)
	}

	verificationService, serviceError := verify.NewService(executor.logger, executor.toolExecutor, time.Duration(decodedOptions.TimeoutMinutes)*time.Minute)
	if serviceError != nil {
		return serviceError
	}

	_, verificationError := verificationService.Verify(executionContext, verify.Options{
		PackageDirectory: decodedOptions.PackageDirectory,
		Kind:             verify.Kind(decodedOptions.Kind),
		ToxEnvironment:   decodedOptions.ToxEnvironment,
	})
	return verificationError
}
