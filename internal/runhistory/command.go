package runhistory

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

const (
	historyCommandUseConstant               = "history"
	historyCommandShortDescriptionConstant  = "Show recent generation runs"
	historyCommandLongDescriptionConstant   = "history lists the generation runs recorded in the local run database."
	unexpectedArgumentsErrorMessageConstant = "history does not accept positional arguments"
	commandExecutionErrorTemplateConstant   = "history failed: %w"
	databaseFlagNameConstant                = "database"
	databaseFlagDescriptionConstant         = "Path to the run history database"
	limitFlagNameConstant                   = "limit"
	limitFlagDescriptionConstant            = "Maximum number of runs to show"
	missingDatabaseErrorMessageConstant     = "history requires --database"
	tableColumnStartedConstant              = "Started"
	tableColumnPackageConstant              = "Package"
	tableColumnModeConstant                 = "Mode"
	tableColumnDurationConstant             = "Duration"
	tableColumnFilesConstant                = "Files"
	tableColumnCommitConstant               = "Commit"
	tableColumnOutcomeConstant              = "Outcome"
	outcomeSucceededLabelConstant           = "ok"
	outcomeFailedTemplateConstant           = "failed: %s"
	startedAtDisplayLayoutConstant          = "2006-01-02 15:04:05"
	shortCommitLengthConstant               = 12
)

// CommandBuilder assembles the history command.
type CommandBuilder struct {
	Output io.Writer
}

// Build constructs the history command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	historyCommand := &cobra.Command{
		Use:   historyCommandUseConstant,
		Short: historyCommandShortDescriptionConstant,
		Long:  historyCommandLongDescriptionConstant,
		RunE:  builder.runHistory,
	}

	historyCommand.Flags().String(databaseFlagNameConstant, "", databaseFlagDescriptionConstant)
	historyCommand.Flags().Int(limitFlagNameConstant, defaultListLimitConstant, limitFlagDescriptionConstant)

	return historyCommand, nil
}

func (builder *CommandBuilder) runHistory(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errors.New(unexpectedArgumentsErrorMessageConstant)
	}

	databasePath, databaseFlagError := command.Flags().GetString(databaseFlagNameConstant)
	if databaseFlagError != nil {
		return databaseFlagError
	}
	if len(databasePath) == 0 {
		return errors.New(missingDatabaseErrorMessageConstant)
	}
	limitValue, limitFlagError := command.Flags().GetInt(limitFlagNameConstant)
	if limitFlagError != nil {
		return limitFlagError
	}

	store, openError := OpenStore(databasePath)
	if openError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, openError)
	}
	defer func() { _ = store.Close() }()

	records, listError := store.ListRuns(limitValue)
	if listError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, listError)
	}

	RenderRunRecords(builder.resolveOutput(command), records)
	return nil
}

// RenderRunRecords writes run records as a table.
func RenderRunRecords(outputWriter io.Writer, records []RunRecord) {
	recordTable := table.NewWriter()
	recordTable.SetOutputMirror(outputWriter)
	recordTable.AppendHeader(table.Row{
		tableColumnStartedConstant,
		tableColumnPackageConstant,
		tableColumnModeConstant,
		tableColumnDurationConstant,
		tableColumnFilesConstant,
		tableColumnCommitConstant,
		tableColumnOutcomeConstant,
	})
	for _, record := range records {
		outcomeLabel := outcomeSucceededLabelConstant
		if !record.Succeeded {
			outcomeLabel = fmt.Sprintf(outcomeFailedTemplateConstant, record.FailureMessage)
		}
		recordTable.AppendRow(table.Row{
			record.StartedAt.Format(startedAtDisplayLayoutConstant),
			record.PackageName,
			record.GenerationMode,
			record.Duration.Round(time.Millisecond).String(),
			record.ChangedFileCount,
			shortCommit(record.RepositoryCommit),
			outcomeLabel,
		})
	}
	recordTable.Render()
}

func shortCommit(commitIdentifier string) string {
	if len(commitIdentifier) > shortCommitLengthConstant {
		return commitIdentifier[:shortCommitLengthConstant]
	}
	return commitIdentifier
}

func (builder *CommandBuilder) resolveOutput(command *cobra.Command) io.Writer {
	if builder.Output != nil {
		return builder.Output
	}
	return command.OutOrStdout()
}
