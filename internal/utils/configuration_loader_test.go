package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/repostats/internal/utils"
)

const (
	testConfigurationNameConstant   = "config"
	testConfigurationTypeConstant   = "yaml"
	testEnvironmentPrefixConstant   = "REPOSTATS"
	testConfigurationFileConstant   = "config.yaml"
	testFilePermissionsConstant     = 0o644
	testEmbeddedConfigurationString = "tools:\n  scan:\n    jobs: 5\n    tool: \"\"\n"
	testOverrideConfigurationString = "tools:\n  scan:\n    jobs: 9\n"
)

type loaderTestConfiguration struct {
	Tools struct {
		Scan struct {
			Jobs int    `mapstructure:"jobs"`
			Tool string `mapstructure:"tool"`
		} `mapstructure:"scan"`
	} `mapstructure:"tools"`
}

func TestLoadConfigurationAppliesDefaultsWithoutConfigurationFile(testInstance *testing.T) {
	loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, nil)

	var loadedConfiguration loaderTestConfiguration
	_, loadError := loader.LoadConfiguration("", map[string]any{"tools.scan.jobs": 5}, &loadedConfiguration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, 5, loadedConfiguration.Tools.Scan.Jobs)
}

func TestLoadConfigurationMergesEmbeddedConfiguration(testInstance *testing.T) {
	loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, nil)
	loader.SetEmbeddedConfiguration([]byte(testEmbeddedConfigurationString), testConfigurationTypeConstant)

	var loadedConfiguration loaderTestConfiguration
	_, loadError := loader.LoadConfiguration("", nil, &loadedConfiguration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, 5, loadedConfiguration.Tools.Scan.Jobs)
}

func TestLoadConfigurationFileOverridesEmbeddedConfiguration(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	configurationFilePath := filepath.Join(temporaryDirectory, testConfigurationFileConstant)
	require.NoError(testInstance, os.WriteFile(configurationFilePath, []byte(testOverrideConfigurationString), testFilePermissionsConstant))

	loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, nil)
	loader.SetEmbeddedConfiguration([]byte(testEmbeddedConfigurationString), testConfigurationTypeConstant)

	var loadedConfiguration loaderTestConfiguration
	loadedMetadata, loadError := loader.LoadConfiguration(configurationFilePath, nil, &loadedConfiguration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, 9, loadedConfiguration.Tools.Scan.Jobs)
	require.Equal(testInstance, configurationFilePath, loadedMetadata.ConfigFileUsed)
}

func TestLoadConfigurationHonorsEnvironmentOverrides(testInstance *testing.T) {
	testInstance.Setenv("REPOSTATS_TOOLS_SCAN_JOBS", "11")

	loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, nil)
	loader.SetEmbeddedConfiguration([]byte(testEmbeddedConfigurationString), testConfigurationTypeConstant)

	var loadedConfiguration loaderTestConfiguration
	_, loadError := loader.LoadConfiguration("", nil, &loadedConfiguration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, 11, loadedConfiguration.Tools.Scan.Jobs)
}
