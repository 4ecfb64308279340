package pathutils_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/temirov/repostats/internal/utils/path"
)

const testHomeDirectoryConstant = "/home/analyst"

func TestExpandResolvesTildePrefixes(testInstance *testing.T) {
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return testHomeDirectoryConstant, nil
	})

	testCases := []struct {
		name          string
		candidatePath string
		expectedPath  string
	}{
		{
			name:          "bare_tilde",
			candidatePath: "~",
			expectedPath:  testHomeDirectoryConstant,
		},
		{
			name:          "tilde_with_relative_path",
			candidatePath: "~/repositories/root",
			expectedPath:  filepath.Join(testHomeDirectoryConstant, "repositories", "root"),
		},
		{
			name:          "absolute_path_untouched",
			candidatePath: "/var/repositories",
			expectedPath:  "/var/repositories",
		},
		{
			name:          "tilde_user_form_untouched",
			candidatePath: "~analyst/repositories",
			expectedPath:  "~analyst/repositories",
		},
		{
			name:          "empty_path_untouched",
			candidatePath: "",
			expectedPath:  "",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedPath, expander.Expand(testCase.candidatePath))
		})
	}
}

func TestExpandKeepsPathsWhenHomeLookupFails(testInstance *testing.T) {
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return "", errors.New("home directory unavailable")
	})

	require.Equal(testInstance, "~/repositories", expander.Expand("~/repositories"))
}
