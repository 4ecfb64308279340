package scan

import "strings"

const (
	defaultJobCountConstant    = 5
	jobsConfigurationKeySuffix = ".jobs"
	toolConfigurationKeySuffix = ".tool"
)

// CommandConfiguration captures persistent settings for the scan command.
type CommandConfiguration struct {
	Jobs int    `mapstructure:"jobs"`
	Tool string `mapstructure:"tool"`
}

// DefaultCommandConfiguration returns baseline configuration values for the scan command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Jobs: defaultJobCountConstant,
		Tool: "",
	}
}

// DefaultConfigurationValues exposes scan defaults keyed for the configuration loader.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		configurationKeyPrefix + jobsConfigurationKeySuffix: defaults.Jobs,
		configurationKeyPrefix + toolConfigurationKeySuffix: defaults.Tool,
	}
}

// Sanitize trims whitespace and applies defaults to unset configuration values.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Tool = strings.TrimSpace(configuration.Tool)
	if sanitized.Jobs == 0 {
		sanitized.Jobs = defaultJobCountConstant
	}
	return sanitized
}
