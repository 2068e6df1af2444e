package versioning_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/temirov/sdkrel/internal/pepver"
	"github.com/temirov/sdkrel/internal/versioning"
)

const (
	versionFileRelativePathConstant = "azure/mgmt/compute/_version.py"
	versionFileContentTemplate      = "VERSION = \"%s\"\n"
	pyprojectContentTemplateConst   = "[project]\nname = \"azure-mgmt-compute\"\nversion = \"%s\"\n"
	unreleasedChangelogTemplate     = "# Release History\n\n## %s (Unreleased)\n\n### Features Added\n\n- Added operation group DisksOperations\n"
)

func writeReleaseFixture(testInstance *testing.T, currentVersion string, unreleasedVersion string) string {
	testInstance.Helper()
	packageDirectory := testInstance.TempDir()

	versionFilePath := filepath.Join(packageDirectory, filepath.FromSlash(versionFileRelativePathConstant))
	require.NoError(testInstance, os.MkdirAll(filepath.Dir(versionFilePath), 0o755))
	require.NoError(testInstance, os.WriteFile(versionFilePath, []byte(fmt.Sprintf(versionFileContentTemplate, currentVersion)), 0o644))

	pyprojectPath := filepath.Join(packageDirectory, "pyproject.toml")
	require.NoError(testInstance, os.WriteFile(pyprojectPath, []byte(fmt.Sprintf(pyprojectContentTemplateConst, currentVersion)), 0o644))

	if len(unreleasedVersion) > 0 {
		changelogPath := filepath.Join(packageDirectory, "CHANGELOG.md")
		require.NoError(testInstance, os.WriteFile(changelogPath, []byte(fmt.Sprintf(unreleasedChangelogTemplate, unreleasedVersion)), 0o644))
	}

	return packageDirectory
}

func readFixtureFile(testInstance *testing.T, packageDirectory string, relativePath string) string {
	testInstance.Helper()
	fileContent, readError := os.ReadFile(filepath.Join(packageDirectory, filepath.FromSlash(relativePath)))
	require.NoError(testInstance, readError)
	return string(fileContent)
}

func TestServiceBump(testInstance *testing.T) {
	testCases := []struct {
		name            string
		currentVersion  string
		bumpOptions     versioning.BumpOptions
		expectedVersion string
	}{
		{
			name:            "bugfix_bump_on_stable_release",
			currentVersion:  "30.4.0",
			bumpOptions:     versioning.BumpOptions{ChangeLevel: pepver.ChangeLevelBugfix},
			expectedVersion: "30.4.1",
		},
		{
			name:            "feature_bump_on_stable_release",
			currentVersion:  "30.4.0",
			bumpOptions:     versioning.BumpOptions{ChangeLevel: pepver.ChangeLevelFeature},
			expectedVersion: "30.5.0",
		},
		{
			name:            "breaking_bump_on_stable_release",
			currentVersion:  "30.4.0",
			bumpOptions:     versioning.BumpOptions{ChangeLevel: pepver.ChangeLevelBreaking},
			expectedVersion: "31.0.0",
		},
		{
			name:            "preview_bump_continues_beta_series",
			currentVersion:  "1.1.0b2",
			bumpOptions:     versioning.BumpOptions{ChangeLevel: pepver.ChangeLevelFeature, Preview: true},
			expectedVersion: "1.1.0b3",
		},
		{
			name:            "stable_release_drops_preview_suffix",
			currentVersion:  "1.1.0b2",
			bumpOptions:     versioning.BumpOptions{ChangeLevel: pepver.ChangeLevelFeature},
			expectedVersion: "1.1.0",
		},
		{
			name:            "explicit_version_overrides_computation",
			currentVersion:  "30.4.0",
			bumpOptions:     versioning.BumpOptions{ChangeLevel: pepver.ChangeLevelBugfix, ExplicitVersion: "42.0.0"},
			expectedVersion: "42.0.0",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			packageDirectory := writeReleaseFixture(testInstance, testCase.currentVersion, "")

			versioningService, serviceError := versioning.NewService(zaptest.NewLogger(testInstance))
			require.NoError(testInstance, serviceError)

			bumpOptions := testCase.bumpOptions
			bumpOptions.PackageDirectory = packageDirectory
			bumpOptions.ReleaseDate = "2026-08-31"

			bumpResult, bumpError := versioningService.Bump(bumpOptions)
			require.NoError(testInstance, bumpError)
			require.Equal(testInstance, testCase.currentVersion, bumpResult.PreviousVersion.String())
			require.Equal(testInstance, testCase.expectedVersion, bumpResult.NextVersion.String())

			versionFileContent := readFixtureFile(testInstance, packageDirectory, versionFileRelativePathConstant)
			require.Contains(testInstance, versionFileContent, fmt.Sprintf("VERSION = \"%s\"", testCase.expectedVersion))

			pyprojectContent := readFixtureFile(testInstance, packageDirectory, "pyproject.toml")
			require.Contains(testInstance, pyprojectContent, fmt.Sprintf("version = \"%s\"", testCase.expectedVersion))
		})
	}
}

func TestServiceBumpStampsChangelogHeading(testInstance *testing.T) {
	packageDirectory := writeReleaseFixture(testInstance, "30.4.0", "30.5.0")

	versioningService, serviceError := versioning.NewService(zaptest.NewLogger(testInstance))
	require.NoError(testInstance, serviceError)

	bumpResult, bumpError := versioningService.Bump(versioning.BumpOptions{
		PackageDirectory: packageDirectory,
		ChangeLevel:      pepver.ChangeLevelFeature,
		ReleaseDate:      "2026-08-31",
	})
	require.NoError(testInstance, bumpError)
	require.Equal(testInstance, "30.5.0", bumpResult.NextVersion.String())

	changelogContent := readFixtureFile(testInstance, packageDirectory, "CHANGELOG.md")
	require.Contains(testInstance, changelogContent, "## 30.5.0 (2026-08-31)")
	require.NotContains(testInstance, changelogContent, "Unreleased")
}

func TestServiceBumpDryRunLeavesFilesUntouched(testInstance *testing.T) {
	packageDirectory := writeReleaseFixture(testInstance, "30.4.0", "")

	versioningService, serviceError := versioning.NewService(zaptest.NewLogger(testInstance))
	require.NoError(testInstance, serviceError)

	bumpResult, bumpError := versioningService.Bump(versioning.BumpOptions{
		PackageDirectory: packageDirectory,
		ChangeLevel:      pepver.ChangeLevelBreaking,
		DryRun:           true,
	})
	require.NoError(testInstance, bumpError)
	require.Equal(testInstance, "31.0.0", bumpResult.NextVersion.String())
	require.True(testInstance, bumpResult.DryRun)

	versionFileContent := readFixtureFile(testInstance, packageDirectory, versionFileRelativePathConstant)
	require.Contains(testInstance, versionFileContent, "VERSION = \"30.4.0\"")
}

func TestServiceStampDevelopmentBuild(testInstance *testing.T) {
	testCases := []struct {
		name            string
		currentVersion  string
		buildIdentifier int
		expectedVersion string
		expectedFailure bool
	}{
		{
			name:            "stable_version_gets_alpha_stamp",
			currentVersion:  "30.4.0",
			buildIdentifier: 20260831,
			expectedVersion: "30.4.0a20260831",
		},
		{
			name:            "preview_version_gets_dev_suffix",
			currentVersion:  "1.1.0b2",
			buildIdentifier: 20260831,
			expectedVersion: "1.1.0b2.dev20260831",
		},
		{
			name:            "non_positive_build_identifier_fails",
			currentVersion:  "30.4.0",
			buildIdentifier: 0,
			expectedFailure: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			packageDirectory := writeReleaseFixture(testInstance, testCase.currentVersion, "")

			versioningService, serviceError := versioning.NewService(zaptest.NewLogger(testInstance))
			require.NoError(testInstance, serviceError)

			bumpResult, stampError := versioningService.StampDevelopmentBuild(packageDirectory, testCase.buildIdentifier, false)
			if testCase.expectedFailure {
				require.Error(testInstance, stampError)
				return
			}
			require.NoError(testInstance, stampError)
			require.Equal(testInstance, testCase.expectedVersion, bumpResult.NextVersion.String())

			versionFileContent := readFixtureFile(testInstance, packageDirectory, versionFileRelativePathConstant)
			require.Contains(testInstance, versionFileContent, fmt.Sprintf("VERSION = \"%s\"", testCase.expectedVersion))
		})
	}
}

func TestStampChangelogDate(testInstance *testing.T) {
	testInstance.Run("missing_changelog_is_not_an_error", func(testInstance *testing.T) {
		changelogPath := filepath.Join(testInstance.TempDir(), "CHANGELOG.md")
		require.NoError(testInstance, versioning.StampChangelogDate(changelogPath, "1.0.0", "2026-08-31"))
	})

	testInstance.Run("heading_for_other_version_is_left_alone", func(testInstance *testing.T) {
		changelogPath := filepath.Join(testInstance.TempDir(), "CHANGELOG.md")
		originalContent := fmt.Sprintf(unreleasedChangelogTemplate, "2.0.0")
		require.NoError(testInstance, os.WriteFile(changelogPath, []byte(originalContent), 0o644))

		require.NoError(testInstance, versioning.StampChangelogDate(changelogPath, "1.0.0", "2026-08-31"))

		stampedContent, readError := os.ReadFile(changelogPath)
		require.NoError(testInstance, readError)
		require.Equal(testInstance, originalContent, string(stampedContent))
	})
}
