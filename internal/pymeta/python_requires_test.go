package pymeta_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/sdkrel/internal/pymeta"
)

func TestSupportsInterpreter(testInstance *testing.T) {
	testCases := []struct {
		name               string
		requiresSpecifier  string
		interpreterVersion string
		expectedSupported  bool
		expectError        bool
	}{
		{name: "empty_specifier_admits_everything", requiresSpecifier: "", interpreterVersion: "3.9", expectedSupported: true},
		{name: "minimum_bound_admits_newer", requiresSpecifier: ">=3.8", interpreterVersion: "3.9", expectedSupported: true},
		{name: "minimum_bound_rejects_older", requiresSpecifier: ">=3.9", interpreterVersion: "3.8", expectedSupported: false},
		{name: "minimum_bound_admits_exact", requiresSpecifier: ">=3.9", interpreterVersion: "3.9", expectedSupported: true},
		{name: "range_admits_inside", requiresSpecifier: ">=3.8, <4.0", interpreterVersion: "3.11", expectedSupported: true},
		{name: "range_rejects_upper_bound", requiresSpecifier: ">=3.8, <4.0", interpreterVersion: "4.0", expectedSupported: false},
		{name: "exclusion_rejects_wildcard_match", requiresSpecifier: ">=3.6, !=3.7.*", interpreterVersion: "3.7.4", expectedSupported: false},
		{name: "exclusion_admits_other_series", requiresSpecifier: ">=3.6, !=3.7.*", interpreterVersion: "3.8", expectedSupported: true},
		{name: "wildcard_equality_admits_series", requiresSpecifier: "==3.9.*", interpreterVersion: "3.9.18", expectedSupported: true},
		{name: "wildcard_equality_rejects_other_series", requiresSpecifier: "==3.9.*", interpreterVersion: "3.10", expectedSupported: false},
		{name: "compatible_release_admits_patch", requiresSpecifier: "~=3.8", interpreterVersion: "3.11", expectedSupported: true},
		{name: "compatible_release_rejects_next_major", requiresSpecifier: "~=3.8", interpreterVersion: "4.0", expectedSupported: false},
		{name: "strict_inequality_rejects_exact", requiresSpecifier: ">3.9", interpreterVersion: "3.9", expectedSupported: false},
		{name: "malformed_clause_errors", requiresSpecifier: "around 3.9", interpreterVersion: "3.9", expectError: true},
		{name: "malformed_interpreter_errors", requiresSpecifier: ">=3.8", interpreterVersion: "three.nine", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			supported, supportError := pymeta.SupportsInterpreter(testCase.requiresSpecifier, testCase.interpreterVersion)
			if testCase.expectError {
				require.Error(testInstance, supportError)
				return
			}
			require.NoError(testInstance, supportError)
			require.Equal(testInstance, testCase.expectedSupported, supported)
		})
	}
}
