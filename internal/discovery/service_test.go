package discovery_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/temirov/sdkrel/internal/discovery"
	"github.com/temirov/sdkrel/internal/specsource"
)

const (
	blobPyprojectContentConstant = "[project]\nname = \"azure-storage-blob\"\nversion = \"12.19.0\"\nrequires-python = \">=3.9\"\n"
	computeSetupContentConstant  = "from setuptools import setup\nsetup(name=\"azure-mgmt-compute\", version=\"30.4.0\", python_requires=\">=3.6\")\n"
	inactivePyprojectConstant    = "[project]\nname = \"azure-loganalytics\"\nversion = \"0.1.1\"\nclassifiers = [\"Development Status :: 7 - Inactive\"]\n"
	namespacePyprojectConstant   = "[project]\nname = \"azure-storage-nspkg\"\nversion = \"3.1.0\"\n"
	typespecLocationConstant     = "directory: specification/storage/Storage\ncommit: abcdef0123456789\nrepo: Azure/azure-rest-api-specs\n"
)

func buildFixtureMonorepo(testInstance *testing.T) string {
	testInstance.Helper()
	monorepoRoot := testInstance.TempDir()

	blobDirectory := writePackageFixture(testInstance, monorepoRoot, "storage", "azure-storage-blob", pyprojectFileNameConstant, blobPyprojectContentConstant)
	require.NoError(testInstance, os.WriteFile(filepath.Join(blobDirectory, "tsp-location.yaml"), []byte(typespecLocationConstant), 0o644))

	computeDirectory := writePackageFixture(testInstance, monorepoRoot, "compute", "azure-mgmt-compute", setupFileNameConstant, computeSetupContentConstant)
	swaggerDirectory := filepath.Join(computeDirectory, "swagger")
	require.NoError(testInstance, os.MkdirAll(swaggerDirectory, 0o755))
	require.NoError(testInstance, os.WriteFile(filepath.Join(swaggerDirectory, "README.md"), []byte("# compute"), 0o644))

	writePackageFixture(testInstance, monorepoRoot, "loganalytics", "azure-loganalytics", pyprojectFileNameConstant, inactivePyprojectConstant)
	writePackageFixture(testInstance, monorepoRoot, "storage", "azure-storage-nspkg", pyprojectFileNameConstant, namespacePyprojectConstant)

	return monorepoRoot
}

func TestServiceDiscoverDescriptors(testInstance *testing.T) {
	testCases := []struct {
		name                 string
		filterOptions        discovery.FilterOptions
		expectedPackageNames []string
	}{
		{
			name: "default_filter_excludes_inactive_and_namespace_packages",
			filterOptions: discovery.FilterOptions{
				IncludeManagement: true,
				IncludeDataPlane:  true,
			},
			expectedPackageNames: []string{"azure-mgmt-compute", "azure-storage-blob"},
		},
		{
			name: "include_inactive_retains_retired_packages",
			filterOptions: discovery.FilterOptions{
				IncludeManagement: true,
				IncludeDataPlane:  true,
				IncludeInactive:   true,
			},
			expectedPackageNames: []string{"azure-loganalytics", "azure-mgmt-compute", "azure-storage-blob"},
		},
		{
			name: "management_only_filter",
			filterOptions: discovery.FilterOptions{
				IncludeManagement: true,
			},
			expectedPackageNames: []string{"azure-mgmt-compute"},
		},
		{
			name: "data_plane_only_filter",
			filterOptions: discovery.FilterOptions{
				IncludeDataPlane: true,
			},
			expectedPackageNames: []string{"azure-storage-blob"},
		},
		{
			name: "python_version_filter_excludes_incompatible_packages",
			filterOptions: discovery.FilterOptions{
				IncludeManagement: true,
				IncludeDataPlane:  true,
				PythonVersion:     "3.8",
			},
			expectedPackageNames: []string{"azure-mgmt-compute"},
		},
		{
			name: "python_version_filter_retains_compatible_packages",
			filterOptions: discovery.FilterOptions{
				IncludeManagement: true,
				IncludeDataPlane:  true,
				PythonVersion:     "3.11",
			},
			expectedPackageNames: []string{"azure-mgmt-compute", "azure-storage-blob"},
		},
		{
			name: "name_filter_applies_glob_matching",
			filterOptions: discovery.FilterOptions{
				IncludeManagement: true,
				IncludeDataPlane:  true,
				NameFilter:        "azure-storage-*",
			},
			expectedPackageNames: []string{"azure-storage-blob"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			monorepoRoot := buildFixtureMonorepo(testInstance)

			discoveryService, serviceError := discovery.NewService(zaptest.NewLogger(testInstance), discovery.NewFilesystemPackageDiscoverer(nil))
			require.NoError(testInstance, serviceError)

			descriptors, discoveryError := discoveryService.DiscoverDescriptors([]string{monorepoRoot}, testCase.filterOptions)
			require.NoError(testInstance, discoveryError)

			discoveredNames := make([]string, 0, len(descriptors))
			for _, descriptor := range descriptors {
				discoveredNames = append(discoveredNames, descriptor.Name)
			}
			require.ElementsMatch(testInstance, testCase.expectedPackageNames, discoveredNames)
		})
	}
}

func TestServiceDiscoverDescriptorsClassification(testInstance *testing.T) {
	monorepoRoot := buildFixtureMonorepo(testInstance)

	discoveryService, serviceError := discovery.NewService(zaptest.NewLogger(testInstance), discovery.NewFilesystemPackageDiscoverer(nil))
	require.NoError(testInstance, serviceError)

	descriptors, discoveryError := discoveryService.DiscoverDescriptors([]string{monorepoRoot}, discovery.FilterOptions{
		IncludeManagement: true,
		IncludeDataPlane:  true,
	})
	require.NoError(testInstance, discoveryError)

	descriptorsByName := make(map[string]discovery.PackageDescriptor, len(descriptors))
	for _, descriptor := range descriptors {
		descriptorsByName[descriptor.Name] = descriptor
	}

	blobDescriptor := descriptorsByName["azure-storage-blob"]
	require.Equal(testInstance, specsource.PlaneData, blobDescriptor.Plane)
	require.Equal(testInstance, specsource.ModeTypeSpec, blobDescriptor.Mode)
	require.Equal(testInstance, "storage", blobDescriptor.ServiceDirectory)
	require.Equal(testInstance, "12.19.0", blobDescriptor.Version)
	require.Equal(testInstance, ">=3.9", blobDescriptor.RequiresPython)

	computeDescriptor := descriptorsByName["azure-mgmt-compute"]
	require.Equal(testInstance, specsource.PlaneManagement, computeDescriptor.Plane)
	require.Equal(testInstance, specsource.ModeSwagger, computeDescriptor.Mode)
}

func TestNewServiceRequiresDiscoverer(testInstance *testing.T) {
	discoveryService, serviceError := discovery.NewService(nil, nil)
	require.Error(testInstance, serviceError)
	require.Nil(testInstance, discoveryService)
}

func TestRenderDescriptors(testInstance *testing.T) {
	descriptors := []discovery.PackageDescriptor{
		{
			Name:             "azure-storage-blob",
			Version:          "12.19.0",
			ServiceDirectory: "storage",
			Plane:            specsource.PlaneData,
			Mode:             specsource.ModeTypeSpec,
		},
	}

	testInstance.Run("json_output_round_trips", func(testInstance *testing.T) {
		outputBuffer := &bytes.Buffer{}
		require.NoError(testInstance, discovery.RenderDescriptors(outputBuffer, descriptors, "json"))

		var decodedDescriptors []discovery.PackageDescriptor
		require.NoError(testInstance, json.Unmarshal(outputBuffer.Bytes(), &decodedDescriptors))
		require.Equal(testInstance, descriptors, decodedDescriptors)
	})

	testInstance.Run("table_output_contains_package_name", func(testInstance *testing.T) {
		outputBuffer := &bytes.Buffer{}
		require.NoError(testInstance, discovery.RenderDescriptors(outputBuffer, descriptors, "table"))
		require.Contains(testInstance, outputBuffer.String(), "azure-storage-blob")
		require.Contains(testInstance, outputBuffer.String(), "12.19.0")
	})

	testInstance.Run("unsupported_format_returns_error", func(testInstance *testing.T) {
		outputBuffer := &bytes.Buffer{}
		require.Error(testInstance, discovery.RenderDescriptors(outputBuffer, descriptors, "xml"))
	})
}
