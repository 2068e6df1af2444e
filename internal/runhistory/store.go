package runhistory

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	sqliteDriverNameConstant          = "sqlite"
	storePathRequiredErrorConstant    = "run history store requires a database path"
	storeOpenErrorTemplateConstant    = "unable to open run history database %s: %w"
	storeMigrateErrorTemplateConstant = "unable to prepare run history schema: %w"
	recordInsertErrorTemplateConstant = "unable to record run: %w"
	recordQueryErrorTemplateConstant  = "unable to list runs: %w"
	defaultListLimitConstant          = 50
	createRunsTableStatementConstant  = `CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	package_name TEXT NOT NULL,
	generation_mode TEXT NOT NULL,
	started_at_unix_nanos INTEGER NOT NULL,
	duration_milliseconds INTEGER NOT NULL,
	changed_file_count INTEGER NOT NULL,
	succeeded INTEGER NOT NULL,
	failure_message TEXT NOT NULL DEFAULT '',
	repository_commit TEXT NOT NULL DEFAULT ''
)`
	insertRunStatementConstant = `INSERT INTO runs
	(id, package_name, generation_mode, started_at_unix_nanos, duration_milliseconds, changed_file_count, succeeded, failure_message, repository_commit)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	listRunsStatementConstant = `SELECT id, package_name, generation_mode, started_at_unix_nanos, duration_milliseconds, changed_file_count, succeeded, failure_message, repository_commit
	FROM runs ORDER BY started_at_unix_nanos DESC LIMIT ?`
)

// RunRecord is one persisted generation run outcome.
type RunRecord struct {
	Identifier       string
	PackageName      string
	GenerationMode   string
	StartedAt        time.Time
	Duration         time.Duration
	ChangedFileCount int
	Succeeded        bool
	FailureMessage   string
	RepositoryCommit string
}

// Store persists run records in a SQLite database file.
type Store struct {
	database *sql.DB
}

// OpenStore opens the database at the given path, creating the schema when
// missing.
func OpenStore(databasePath string) (*Store, error) {
	if len(databasePath) == 0 {
		return nil, errors.New(storePathRequiredErrorConstant)
	}

	database, openError := sql.Open(sqliteDriverNameConstant, databasePath)
	if openError != nil {
		return nil, fmt.Errorf(storeOpenErrorTemplateConstant, databasePath, openError)
	}
	if _, migrateError := database.Exec(createRunsTableStatementConstant); migrateError != nil {
		closeIgnoringError(database)
		return nil, fmt.Errorf(storeMigrateErrorTemplateConstant, migrateError)
	}

	return &Store{database: database}, nil
}

// Close releases the underlying database handle.
func (store *Store) Close() error {
	return store.database.Close()
}

// RecordRun persists one run outcome, assigning an identifier when absent.
func (store *Store) RecordRun(record RunRecord) (RunRecord, error) {
	if len(record.Identifier) == 0 {
		record.Identifier = uuid.NewString()
	}
	if record.StartedAt.IsZero() {
		record.StartedAt = time.Now().UTC()
	}

	_, insertError := store.database.Exec(
		insertRunStatementConstant,
		record.Identifier,
		record.PackageName,
		record.GenerationMode,
		record.StartedAt.UTC().UnixNano(),
		record.Duration.Milliseconds(),
		record.ChangedFileCount,
		boolToInteger(record.Succeeded),
		record.FailureMessage,
		record.RepositoryCommit,
	)
	if insertError != nil {
		return RunRecord{}, fmt.Errorf(recordInsertErrorTemplateConstant, insertError)
	}
	return record, nil
}

// ListRuns returns the most recent runs, newest first.
func (store *Store) ListRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = defaultListLimitConstant
	}

	recordRows, queryError := store.database.Query(listRunsStatementConstant, limit)
	if queryError != nil {
		return nil, fmt.Errorf(recordQueryErrorTemplateConstant, queryError)
	}
	defer recordRows.Close()

	records := make([]RunRecord, 0, limit)
	for recordRows.Next() {
		var record RunRecord
		var startedAtUnixNanos int64
		var durationMilliseconds int64
		var succeededInteger int
		scanError := recordRows.Scan(
			&record.Identifier,
			&record.PackageName,
			&record.GenerationMode,
			&startedAtUnixNanos,
			&durationMilliseconds,
			&record.ChangedFileCount,
			&succeededInteger,
			&record.FailureMessage,
			&record.RepositoryCommit,
		)
		if scanError != nil {
			return nil, fmt.Errorf(recordQueryErrorTemplateConstant, scanError)
		}
		record.StartedAt = time.Unix(0, startedAtUnixNanos).UTC()
		record.Duration = time.Duration(durationMilliseconds) * time.Millisecond
		record.Succeeded = succeededInteger != 0
		records = append(records, record)
	}
	if rowsError := recordRows.Err(); rowsError != nil {
		return nil, fmt.Errorf(recordQueryErrorTemplateConstant, rowsError)
	}

	return records, nil
}

func boolToInteger(value bool) int {
	if value {
		return 1
	}
	return 0
}

func closeIgnoringError(database *sql.DB) {
	_ = database.Close()
}
