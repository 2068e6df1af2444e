package runhistory_test

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/sdkrel/internal/runhistory"
)

func openTestStore(testInstance *testing.T) *runhistory.Store {
	testInstance.Helper()
	store, openError := runhistory.OpenStore(filepath.Join(testInstance.TempDir(), "runs.db"))
	require.NoError(testInstance, openError)
	testInstance.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreRecordAndListRuns(testInstance *testing.T) {
	store := openTestStore(testInstance)

	firstRecord, firstRecordError := store.RecordRun(runhistory.RunRecord{
		PackageName:      "azure-mgmt-compute",
		GenerationMode:   "swagger",
		StartedAt:        time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC),
		Duration:         90 * time.Second,
		ChangedFileCount: 42,
		Succeeded:        true,
		RepositoryCommit: "0fcd34f1a9b07c25f14d6c0f2f1b5c3adf90be11",
	})
	require.NoError(testInstance, firstRecordError)
	require.NotEmpty(testInstance, firstRecord.Identifier)

	secondRecord, secondRecordError := store.RecordRun(runhistory.RunRecord{
		PackageName:    "azure-storage-blob",
		GenerationMode: "typespec",
		StartedAt:      time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC),
		Duration:       30 * time.Second,
		FailureMessage: "tsp-client exited with code 1",
	})
	require.NoError(testInstance, secondRecordError)

	records, listError := store.ListRuns(10)
	require.NoError(testInstance, listError)
	require.Len(testInstance, records, 2)

	require.Equal(testInstance, secondRecord.Identifier, records[0].Identifier)
	require.Equal(testInstance, "azure-storage-blob", records[0].PackageName)
	require.False(testInstance, records[0].Succeeded)
	require.Equal(testInstance, "tsp-client exited with code 1", records[0].FailureMessage)

	require.Equal(testInstance, firstRecord.Identifier, records[1].Identifier)
	require.True(testInstance, records[1].Succeeded)
	require.Equal(testInstance, 42, records[1].ChangedFileCount)
	require.Equal(testInstance, 90*time.Second, records[1].Duration)
	require.Equal(testInstance, "0fcd34f1a9b07c25f14d6c0f2f1b5c3adf90be11", records[1].RepositoryCommit)
}

func TestStoreListRunsHonorsLimit(testInstance *testing.T) {
	store := openTestStore(testInstance)

	for recordIndex := 0; recordIndex < 5; recordIndex++ {
		_, recordError := store.RecordRun(runhistory.RunRecord{
			PackageName:    "azure-mgmt-network",
			GenerationMode: "swagger",
			StartedAt:      time.Date(2026, 8, 25+recordIndex, 10, 0, 0, 0, time.UTC),
			Succeeded:      true,
		})
		require.NoError(testInstance, recordError)
	}

	records, listError := store.ListRuns(3)
	require.NoError(testInstance, listError)
	require.Len(testInstance, records, 3)
	require.Equal(testInstance, time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC), records[0].StartedAt)
}

func TestStoreListRunsOrdersWithinTheSameSecond(testInstance *testing.T) {
	store := openTestStore(testInstance)

	exactSecondStart := time.Date(2026, 8, 31, 10, 0, 5, 0, time.UTC)
	fractionalStart := time.Date(2026, 8, 31, 10, 0, 5, 500_000_000, time.UTC)

	_, earlierError := store.RecordRun(runhistory.RunRecord{
		PackageName:    "azure-mgmt-compute",
		GenerationMode: "swagger",
		StartedAt:      exactSecondStart,
		Succeeded:      true,
	})
	require.NoError(testInstance, earlierError)

	_, laterError := store.RecordRun(runhistory.RunRecord{
		PackageName:    "azure-storage-blob",
		GenerationMode: "typespec",
		StartedAt:      fractionalStart,
		Succeeded:      true,
	})
	require.NoError(testInstance, laterError)

	records, listError := store.ListRuns(10)
	require.NoError(testInstance, listError)
	require.Len(testInstance, records, 2)
	require.Equal(testInstance, fractionalStart, records[0].StartedAt)
	require.Equal(testInstance, exactSecondStart, records[1].StartedAt)
}

func TestOpenStoreRequiresPath(testInstance *testing.T) {
	store, openError := runhistory.OpenStore("")
	require.Error(testInstance, openError)
	require.Nil(testInstance, store)
}

func TestRenderRunRecords(testInstance *testing.T) {
	outputBuffer := &bytes.Buffer{}
	runhistory.RenderRunRecords(outputBuffer, []runhistory.RunRecord{
		{
			PackageName:      "azure-mgmt-compute",
			GenerationMode:   "swagger",
			StartedAt:        time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC),
			Duration:         90 * time.Second,
			ChangedFileCount: 42,
			Succeeded:        true,
			RepositoryCommit: "0fcd34f1a9b07c25f14d6c0f2f1b5c3adf90be11",
		},
	})

	renderedOutput := outputBuffer.String()
	require.Contains(testInstance, renderedOutput, "azure-mgmt-compute")
	require.Contains(testInstance, renderedOutput, "0fcd34f1a9b0")
	require.Contains(testInstance, renderedOutput, "ok")
}
