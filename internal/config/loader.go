package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// For mocking in tests
var osUserHomeDir = os.UserHomeDir
var osGetwd = os.Getwd

const (
	userConfigDir    = ".config/ofprobe"
	projectConfigDir = ".ofprobe"
	configFileName   = "config.yaml"
)

// Load builds the effective configuration by layering default, user, and
// project settings. Flags are applied on top by the CLI.
func Load() (Config, error) {
	config := Default()

	userConfigPath, err := getUserConfigPath()
	if err != nil {
		// User config is optional; warn and continue.
		fmt.Fprintf(os.Stderr, "Warning: Could not determine user config path: %v\n", err)
	} else {
		if _, err := os.Stat(userConfigPath); !os.IsNotExist(err) {
			userConfig, err := loadConfigFromFile(userConfigPath)
			if err != nil {
				return Config{}, fmt.Errorf("error loading user config from %s: %w", userConfigPath, err)
			}
			config = mergeConfigs(config, userConfig)
		}
	}

	projectConfigPath, err := getProjectConfigPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not determine project config path: %v\n", err)
	} else {
		if _, err := os.Stat(projectConfigPath); !os.IsNotExist(err) {
			projectConfig, err := loadConfigFromFile(projectConfigPath)
			if err != nil {
				return Config{}, fmt.Errorf("error loading project config from %s: %w", projectConfigPath, err)
			}
			config = mergeConfigs(config, projectConfig)
		}
	}

	return config, nil
}

var getUserConfigPath = func() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir, configFileName), nil
}

var getProjectConfigPath = func() (string, error) {
	wd, err := osGetwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, projectConfigDir, configFileName), nil
}

// loadConfigFromFile loads a Config from a YAML file.
func loadConfigFromFile(filePath string) (Config, error) {
	var config Config
	data, err := os.ReadFile(filePath)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, err
	}
	return config, nil
}

// mergeConfigs merges 'overlay' config into 'base' config. Zero values in
// the overlay leave the base value in place; booleans are OR-ed because a
// file cannot un-set a default of false.
func mergeConfigs(base, overlay Config) Config {
	merged := base

	if overlay.TestDir != "" {
		merged.TestDir = overlay.TestDir
	}
	if overlay.TestSpec != "" {
		merged.TestSpec = overlay.TestSpec
	}
	if overlay.Priority != 0 {
		merged.Priority = overlay.Priority
	}
	if overlay.Profile != "" {
		merged.Profile = overlay.Profile
	}
	if overlay.Platform != "" {
		merged.Platform = overlay.Platform
	}
	if overlay.SwitchAddr != "" {
		merged.SwitchAddr = overlay.SwitchAddr
	}
	if overlay.DefaultTimeout != 0 {
		merged.DefaultTimeout = overlay.DefaultTimeout
	}
	if overlay.LogLevel != "" {
		merged.LogLevel = overlay.LogLevel
	}
	if overlay.ReportPath != "" {
		merged.ReportPath = overlay.ReportPath
	}
	merged.FailSkipped = merged.FailSkipped || overlay.FailSkipped
	merged.AllowUnprivileged = merged.AllowUnprivileged || overlay.AllowUnprivileged

	return merged
}
