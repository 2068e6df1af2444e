package specsource_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/sdkrel/internal/specsource"
)

const testReadmeContentConstant = "# Compute\n\n" +
	"Configuration for generating the Compute SDK.\n\n" +
	"``` yaml\n" +
	"tag: package-2024-03\n" +
	"package-name: azure-mgmt-compute\n" +
	"input-file:\n" +
	"  - Microsoft.Compute/stable/2024-03-01/compute.json\n" +
	"```\n\n" +
	"### Tag: package-2024-03\n\n" +
	"``` yaml $(tag) == 'package-2024-03'\n" +
	"input-file:\n" +
	"  - Microsoft.Compute/stable/2024-03-01/compute.json\n" +
	"  - Microsoft.Compute/stable/2024-03-01/disk.json\n" +
	"```\n\n" +
	"### Tag: package-2023-09\n\n" +
	"``` yaml $(tag) == 'package-2023-09'\n" +
	"input-file:\n" +
	"  - Microsoft.Compute/stable/2023-09-01/compute.json\n" +
	"```\n\n" +
	"``` yaml $(python)\n" +
	"azure-arm: true\n" +
	"```\n"

func TestParseAutorestConfigurationMergesBlocks(testInstance *testing.T) {
	parsedConfiguration, parseError := specsource.ParseAutorestConfiguration(testReadmeContentConstant, "readme.md")
	require.NoError(testInstance, parseError)

	require.Equal(testInstance, "package-2024-03", parsedConfiguration.DefaultTag())
	require.Equal(testInstance, "azure-mgmt-compute", parsedConfiguration.PackageName())
	require.ElementsMatch(testInstance, []string{"package-2024-03", "package-2023-09"}, parsedConfiguration.Tags)

	defaultTagInputs := parsedConfiguration.InputFiles("package-2024-03")
	require.Len(testInstance, defaultTagInputs, 2)
	require.Contains(testInstance, defaultTagInputs, "Microsoft.Compute/stable/2024-03-01/disk.json")

	fallbackInputs := parsedConfiguration.InputFiles("")
	require.Equal(testInstance, []string{"Microsoft.Compute/stable/2024-03-01/compute.json"}, fallbackInputs)

	// Conditional non-tag blocks must not leak into merged settings.
	_, azureArmPresent := parsedConfiguration.Settings["azure-arm"]
	require.False(testInstance, azureArmPresent)
}

func TestParseAutorestConfigurationRejectsReadmesWithoutBlocks(testInstance *testing.T) {
	_, parseError := specsource.ParseAutorestConfiguration("# Empty readme\n", "readme.md")
	require.Error(testInstance, parseError)
}

func TestLoadAutorestConfigurationReadsFromDisk(testInstance *testing.T) {
	readmeDirectory := testInstance.TempDir()
	readmePath := filepath.Join(readmeDirectory, "README.md")
	require.NoError(testInstance, os.WriteFile(readmePath, []byte(testReadmeContentConstant), 0o644))

	loadedConfiguration, loadError := specsource.LoadAutorestConfiguration(readmePath)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, "package-2024-03", loadedConfiguration.DefaultTag())
}

func TestLoadAutorestConfigurationReportsMissingFiles(testInstance *testing.T) {
	_, loadError := specsource.LoadAutorestConfiguration(filepath.Join(testInstance.TempDir(), "README.md"))
	require.Error(testInstance, loadError)
}
