package generate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/sdkrel/internal/execshell"
	"github.com/temirov/sdkrel/internal/specsource"
)

const (
	serviceLoggerRequiredErrorConstant     = "generation service requires a logger"
	serviceExecutorRequiredErrorConstant   = "generation service requires a command executor"
	unknownGenerationModeTemplateConstant  = "package %s has no recognizable generation inputs"
	targetTimedOutTemplateConstant         = "generation of %s timed out after %s"
	generationStartedMessageConstant       = "starting client code generation"
	generationFinishedMessageConstant      = "finished client code generation"
	generationFailedMessageConstant        = "client code generation failed"
	logFieldPackageNameConstant            = "package_name"
	logFieldGenerationModeConstant         = "generation_mode"
	logFieldChangedFileCountConstant       = "changed_file_count"
	autorestPythonFlagConstant             = "--python"
	autorestSdkFolderFlagTemplateConstant  = "--python-sdks-folder=%s"
	autorestTagFlagTemplateConstant        = "--tag=%s"
	typeSpecClientUpdateSubcommandConstant = "update"
	npxYesFlagConstant                     = "--yes"
	typeSpecClientNpxPackageConstant       = "@azure-tools/typespec-client-generator-cli"
	defaultTargetTimeoutConstant           = 20 * time.Minute
)

// Target identifies one package scheduled for regeneration.
type Target struct {
	PackageName      string
	PackageDirectory string
	Mode             specsource.GenerationMode
	ReadmePath       string
	Tag              string
	SdkFolder        string
}

// TargetResult reports the outcome of regenerating one target.
type TargetResult struct {
	Target       Target
	Changes      FileChanges
	Duration     time.Duration
	FailureError error
	TimedOut     bool
}

// Succeeded reports whether the target regenerated without error.
func (result TargetResult) Succeeded() bool {
	return result.FailureError == nil
}

// CommandExecutor abstracts the external generator tool invocations.
type CommandExecutor interface {
	ExecuteAutorest(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteTypeSpecClient(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteNpx(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Service regenerates client packages with the appropriate generator tool.
type Service struct {
	logger         *zap.Logger
	executor       CommandExecutor
	targetTimeout  time.Duration
	typeSpecViaNpx bool
}

// NewService constructs a generation service. A non-positive timeout falls
// back to the default per-target timeout.
func NewService(logger *zap.Logger, executor CommandExecutor, targetTimeout time.Duration) (*Service, error) {
	if logger == nil {
		return nil, errors.New(serviceLoggerRequiredErrorConstant)
	}
	if executor == nil {
		return nil, errors.New(serviceExecutorRequiredErrorConstant)
	}
	if targetTimeout <= 0 {
		targetTimeout = defaultTargetTimeoutConstant
	}
	return &Service{logger: logger, executor: executor, targetTimeout: targetTimeout}, nil
}

// RouteTypeSpecThroughNpx invokes tsp-client via npx instead of a globally
// installed binary.
func (service *Service) RouteTypeSpecThroughNpx() {
	service.typeSpecViaNpx = true
}

// GenerateTarget regenerates one package and reports the files the run
// touched. Tool failures and timeouts land in the result instead of aborting
// the caller.
func (service *Service) GenerateTarget(executionContext context.Context, target Target) TargetResult {
	service.logger.Info(
		generationStartedMessageConstant,
		zap.String(logFieldPackageNameConstant, target.PackageName),
		zap.String(logFieldGenerationModeConstant, string(target.Mode)),
	)

	startTime := time.Now()
	beforeSnapshot, beforeSnapshotError := CaptureTreeSnapshot(target.PackageDirectory)
	if beforeSnapshotError != nil {
		return service.failedResult(target, time.Since(startTime), beforeSnapshotError, false)
	}

	targetContext, cancelTarget := context.WithTimeout(executionContext, service.targetTimeout)
	defer cancelTarget()

	invocationError := service.invokeGenerator(targetContext, target)
	if invocationError != nil {
		timedOut := errors.Is(targetContext.Err(), context.DeadlineExceeded)
		if timedOut {
			invocationError = fmt.Errorf(targetTimedOutTemplateConstant, target.PackageName, service.targetTimeout)
		}
		return service.failedResult(target, time.Since(startTime), invocationError, timedOut)
	}

	afterSnapshot, afterSnapshotError := CaptureTreeSnapshot(target.PackageDirectory)
	if afterSnapshotError != nil {
		return service.failedResult(target, time.Since(startTime), afterSnapshotError, false)
	}

	fileChanges := DiffTreeSnapshots(beforeSnapshot, afterSnapshot)
	service.logger.Info(
		generationFinishedMessageConstant,
		zap.String(logFieldPackageNameConstant, target.PackageName),
		zap.Int(logFieldChangedFileCountConstant, fileChanges.Total()),
	)

	return TargetResult{Target: target, Changes: fileChanges, Duration: time.Since(startTime)}
}

func (service *Service) invokeGenerator(executionContext context.Context, target Target) error {
	switch target.Mode {
	case specsource.ModeSwagger:
		autorestArguments := []string{target.ReadmePath, autorestPythonFlagConstant}
		if len(target.SdkFolder) > 0 {
			autorestArguments = append(autorestArguments, fmt.Sprintf(autorestSdkFolderFlagTemplateConstant, target.SdkFolder))
		}
		if len(target.Tag) > 0 {
			autorestArguments = append(autorestArguments, fmt.Sprintf(autorestTagFlagTemplateConstant, target.Tag))
		}
		_, executionError := service.executor.ExecuteAutorest(executionContext, execshell.CommandDetails{
			Arguments:        autorestArguments,
			WorkingDirectory: target.PackageDirectory,
		})
		return executionError
	case specsource.ModeTypeSpec:
		if service.typeSpecViaNpx {
			_, executionError := service.executor.ExecuteNpx(executionContext, execshell.CommandDetails{
				Arguments:        []string{npxYesFlagConstant, typeSpecClientNpxPackageConstant, typeSpecClientUpdateSubcommandConstant},
				WorkingDirectory: target.PackageDirectory,
			})
			return executionError
		}
		_, executionError := service.executor.ExecuteTypeSpecClient(executionContext, execshell.CommandDetails{
			Arguments:        []string{typeSpecClientUpdateSubcommandConstant},
			WorkingDirectory: target.PackageDirectory,
		})
		return executionError
	default:
		return fmt.Errorf(unknownGenerationModeTemplateConstant, target.PackageName)
	}
}

func (service *Service) failedResult(target Target, elapsedDuration time.Duration, failureError error, timedOut bool) TargetResult {
	service.logger.Error(
		generationFailedMessageConstant,
		zap.String(logFieldPackageNameConstant, target.PackageName),
		zap.Error(failureError),
	)
	return TargetResult{Target: target, Duration: elapsedDuration, FailureError: failureError, TimedOut: timedOut}
}
