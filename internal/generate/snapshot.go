package generate

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const hiddenEntryPrefixConstant = "."

// FileState captures a file's size and modification time at snapshot time.
type FileState struct {
	Size         int64
	ModifiedTime time.Time
}

// TreeSnapshot maps repository relative file paths to their observed state.
type TreeSnapshot map[string]FileState

// FileChanges lists the file level differences between two snapshots.
type FileChanges struct {
	Added   []string
	Removed []string
	Changed []string
}

// Total returns the number of files the change set touches.
func (changes FileChanges) Total() int {
	return len(changes.Added) + len(changes.Removed) + len(changes.Changed)
}

// CaptureTreeSnapshot records every regular file beneath the directory,
// skipping hidden entries. A missing directory yields an empty snapshot.
func CaptureTreeSnapshot(rootDirectory string) (TreeSnapshot, error) {
	snapshot := TreeSnapshot{}

	walkError := filepath.WalkDir(rootDirectory, func(entryPath string, directoryEntry fs.DirEntry, entryError error) error {
		if entryError != nil {
			if entryPath == rootDirectory && os.IsNotExist(entryError) {
				return fs.SkipAll
			}
			return entryError
		}
		entryName := directoryEntry.Name()
		if directoryEntry.IsDir() {
			if entryPath != rootDirectory && strings.HasPrefix(entryName, hiddenEntryPrefixConstant) {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(entryName, hiddenEntryPrefixConstant) {
			return nil
		}

		entryInformation, informationError := directoryEntry.Info()
		if informationError != nil {
			return informationError
		}
		relativePath, relativeError := filepath.Rel(rootDirectory, entryPath)
		if relativeError != nil {
			return relativeError
		}
		snapshot[filepath.ToSlash(relativePath)] = FileState{
			Size:         entryInformation.Size(),
			ModifiedTime: entryInformation.ModTime(),
		}
		return nil
	})
	if walkError != nil {
		return nil, walkError
	}

	return snapshot, nil
}

// DiffTreeSnapshots compares two snapshots and reports added, removed, and
// changed files in sorted order.
func DiffTreeSnapshots(beforeSnapshot TreeSnapshot, afterSnapshot TreeSnapshot) FileChanges {
	fileChanges := FileChanges{}

	for filePath, afterState := range afterSnapshot {
		beforeState, fileExisted := beforeSnapshot[filePath]
		if !fileExisted {
			fileChanges.Added = append(fileChanges.Added, filePath)
			continue
		}
		if beforeState.Size != afterState.Size || !beforeState.ModifiedTime.Equal(afterState.ModifiedTime) {
			fileChanges.Changed = append(fileChanges.Changed, filePath)
		}
	}
	for filePath := range beforeSnapshot {
		if _, fileRemains := afterSnapshot[filePath]; !fileRemains {
			fileChanges.Removed = append(fileChanges.Removed, filePath)
		}
	}

	sort.Strings(fileChanges.Added)
	sort.Strings(fileChanges.Removed)
	sort.Strings(fileChanges.Changed)

	return fileChanges
}
