package verify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/sdkrel/internal/execshell"
)

const (
	serviceLoggerRequiredErrorConstant   = "verification service requires a logger"
	serviceExecutorRequiredErrorConstant = "verification service requires a command executor"
	verificationSkippedMessageConstant   = "verification timed out and was skipped"
	verificationPassedMessageConstant    = "verification passed"
	logFieldPackageDirectoryConstant     = "package_directory"
	logFieldVerificationKindConstant     = "verification_kind"
	toxEnvironmentFlagConstant           = "-e"
	pipCheckSubcommandConstant           = "check"
	defaultToxEnvironmentConstant        = "whl"
	defaultVerifyTimeoutConstant         = 15 * time.Minute
	unsupportedKindTemplateConstant      = "unsupported verification kind: %s"
)

// Kind selects the verification strategy.
type Kind string

// Supported verification kinds.
const (
	KindTox      Kind = "tox"
	KindPipCheck Kind = "pip-check"
)

// CommandExecutor abstracts the external verification tool invocations.
type CommandExecutor interface {
	ExecuteTox(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecutePip(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Options describes one verification request.
type Options struct {
	PackageDirectory string
	Kind             Kind
	ToxEnvironment   string
}

// Result reports the outcome of a verification run.
type Result struct {
	Skipped bool
}

// Service runs post-generation package verification.
type Service struct {
	logger        *zap.Logger
	executor      CommandExecutor
	verifyTimeout time.Duration
}

// NewService constructs a verification service. A non-positive timeout falls
// back to the default.
func NewService(logger *zap.Logger, executor CommandExecutor, verifyTimeout time.Duration) (*Service, error) {
	if logger == nil {
		return nil, errors.New(serviceLoggerRequiredErrorConstant)
	}
	if executor == nil {
		return nil, errors.New(serviceExecutorRequiredErrorConstant)
	}
	if verifyTimeout <= 0 {
		verifyTimeout = defaultVerifyTimeoutConstant
	}
	return &Service{logger: logger, executor: executor, verifyTimeout: verifyTimeout}, nil
}

// Verify runs the selected check inside the package directory. A non-zero
// tool exit surfaces as an error; a timeout is reported as skipped with a
// warning so surrounding pipelines continue.
func (service *Service) Verify(executionContext context.Context, options Options) (Result, error) {
	verifyContext, cancelVerify := context.WithTimeout(executionContext, service.verifyTimeout)
	defer cancelVerify()

	executionError := service.invokeVerifier(verifyContext, options)
	if executionError != nil {
		if errors.Is(verifyContext.Err(), context.DeadlineExceeded) {
			service.logger.Warn(
				verificationSkippedMessageConstant,
				zap.String(logFieldPackageDirectoryConstant, options.PackageDirectory),
				zap.String(logFieldVerificationKindConstant, string(options.Kind)),
			)
			return Result{Skipped: true}, nil
		}
		return Result{}, executionError
	}

	service.logger.Info(
		verificationPassedMessageConstant,
		zap.String(logFieldPackageDirectoryConstant, options.PackageDirectory),
		zap.String(logFieldVerificationKindConstant, string(options.Kind)),
	)
	return Result{}, nil
}

func (service *Service) invokeVerifier(executionContext context.Context, options Options) error {
	switch options.Kind {
	case KindTox, "":
		toxEnvironment := options.ToxEnvironment
		if len(toxEnvironment) == 0 {
			toxEnvironment = defaultToxEnvironmentConstant
		}
		_, executionError := service.executor.ExecuteTox(executionContext, execshell.CommandDetails{
			Arguments:        []string{toxEnvironmentFlagConstant, toxEnvironment},
			WorkingDirectory: options.PackageDirectory,
		})
		return executionError
	case KindPipCheck:
		_, executionError := service.executor.ExecutePip(executionContext, execshell.CommandDetails{
			Arguments:        []string{pipCheckSubcommandConstant},
			WorkingDirectory: options.PackageDirectory,
		})
		return executionError
	default:
		return fmt.Errorf(unsupportedKindTemplateConstant, options.Kind)
	}
}
