package logstats

const jobsConfigurationKeySuffixConstant = ".jobs"

// CommandConfiguration captures persistent settings for the log-stats command.
type CommandConfiguration struct {
	Jobs int `mapstructure:"jobs"`
}

// DefaultCommandConfiguration returns baseline configuration values for the log-stats command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Jobs: defaultCommitWorkerCountConstant,
	}
}

// DefaultConfigurationValues exposes log-stats defaults keyed for the configuration loader.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		configurationKeyPrefix + jobsConfigurationKeySuffixConstant: defaults.Jobs,
	}
}

// Sanitize applies defaults to unset configuration values.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	if sanitized.Jobs < 1 {
		sanitized.Jobs = defaultCommitWorkerCountConstant
	}
	return sanitized
}
