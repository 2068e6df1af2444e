package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
)

const (
	autorestStartTemplateConstant            = "Generating client code with autorest in %s"
	autorestSuccessTemplateConstant          = "autorest finished generating client code in %s"
	autorestFailureTemplateConstant          = "autorest generation in %s failed with exit code %d%s"
	autorestExecutionFailureTemplateConstant = "Unable to run autorest in %s: %s"

	typeSpecStartTemplateConstant            = "Generating client code with tsp-client in %s"
	typeSpecSuccessTemplateConstant          = "tsp-client finished generating client code in %s"
	typeSpecFailureTemplateConstant          = "tsp-client generation in %s failed with exit code %d%s"
	typeSpecExecutionFailureTemplateConstant = "Unable to run tsp-client in %s: %s"

	toxStartTemplateConstant            = "Verifying package with tox in %s"
	toxSuccessTemplateConstant          = "tox verification succeeded in %s"
	toxFailureTemplateConstant          = "tox verification in %s failed with exit code %d%s"
	toxExecutionFailureTemplateConstant = "Unable to run tox in %s: %s"

	pipStartTemplateConstant            = "Checking dependencies with pip in %s"
	pipSuccessTemplateConstant          = "pip check succeeded in %s"
	pipFailureTemplateConstant          = "pip check in %s failed with exit code %d%s"
	pipExecutionFailureTemplateConstant = "Unable to run pip in %s: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectoryLabel := formatter.workingDirectoryLabel(command)

	switch command.Name {
	case CommandAutorest:
		return formatter.buildToolMessage(command, result, failure, stage, toolMessageTemplates{
			start:            autorestStartTemplateConstant,
			success:          autorestSuccessTemplateConstant,
			failure:          autorestFailureTemplateConstant,
			executionFailure: autorestExecutionFailureTemplateConstant,
		}, workingDirectoryLabel)
	case CommandTypeSpecClient:
		return formatter.buildToolMessage(command, result, failure, stage, toolMessageTemplates{
			start:            typeSpecStartTemplateConstant,
			success:          typeSpecSuccessTemplateConstant,
			failure:          typeSpecFailureTemplateConstant,
			executionFailure: typeSpecExecutionFailureTemplateConstant,
		}, workingDirectoryLabel)
	case CommandTox:
		return formatter.buildToolMessage(command, result, failure, stage, toolMessageTemplates{
			start:            toxStartTemplateConstant,
			success:          toxSuccessTemplateConstant,
			failure:          toxFailureTemplateConstant,
			executionFailure: toxExecutionFailureTemplateConstant,
		}, workingDirectoryLabel)
	case CommandPip:
		return formatter.buildToolMessage(command, result, failure, stage, toolMessageTemplates{
			start:            pipStartTemplateConstant,
			success:          pipSuccessTemplateConstant,
			failure:          pipFailureTemplateConstant,
			executionFailure: pipExecutionFailureTemplateConstant,
		}, workingDirectoryLabel)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

type toolMessageTemplates struct {
	start            string
	success          string
	failure          string
	executionFailure string
}

func (formatter CommandMessageFormatter) buildToolMessage(_ ShellCommand, result ExecutionResult, failure error, stage messageStage, templates toolMessageTemplates, workingDirectoryLabel string) string {
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(templates.start, workingDirectoryLabel)
	case messageStageSuccess:
		return fmt.Sprintf(templates.success, workingDirectoryLabel)
	case messageStageFailure:
		return fmt.Sprintf(templates.failure, workingDirectoryLabel, result.ExitCode, formatter.standardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(templates.executionFailure, workingDirectoryLabel, formatter.failureMessage(failure))
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.commandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.standardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.failureMessage(failure))
	}
}

func (formatter CommandMessageFormatter) commandLabel(command ShellCommand) string {
	commandParts := []string{string(command.Name)}
	if len(command.Details.Arguments) > 0 {
		commandParts = append(commandParts, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	commandLabel := strings.Join(commandParts, commandArgumentsJoinSeparatorConstant)
	workingDirectorySuffix := emptyStringConstant
	if trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory); len(trimmedWorkingDirectory) > 0 {
		workingDirectorySuffix = fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
	}
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, workingDirectorySuffix)
}

func (formatter CommandMessageFormatter) workingDirectoryLabel(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) standardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) failureMessage(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}
