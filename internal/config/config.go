// Copyright (c) 2026 Keymaster Team
// Activation Console - license activation lifecycle client
// This source code is licensed under the MIT license found in the LICENSE file.

// Package config loads the console configuration with Viper (file, env and
// flags), validates it and writes default configuration files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	appDirName     = "activation-console"
	configBaseName = "appsettings"
	envPrefix      = "activation"
)

// Config is the console configuration. Keys follow the appsettings layout of
// the licensing client so an existing appsettings.json can be reused as-is.
type Config struct {
	Licensing      Licensing `mapstructure:"licensing" yaml:"Licensing"`
	UseCoreLibrary bool      `mapstructure:"usecorelibrary" yaml:"UseCoreLibrary"`
	CoreLibPath    string    `mapstructure:"corelibpath" yaml:"CoreLibPath" validate:"required_if=UseCoreLibrary true"`
	Storage        Storage   `mapstructure:"storage" yaml:"Storage"`
	Language       string    `mapstructure:"language" yaml:"Language"`
	Clipboard      bool      `mapstructure:"clipboard" yaml:"Clipboard"`
	Terminal       Terminal  `mapstructure:"terminal" yaml:"Terminal"`
	Sandbox        Sandbox   `mapstructure:"sandbox" yaml:"Sandbox"`
}

// Licensing holds the licensing API coordinates.
type Licensing struct {
	ApiUrl              string `mapstructure:"apiurl" yaml:"ApiUrl" validate:"required,url"`
	TenantId            string `mapstructure:"tenantid" yaml:"TenantId" validate:"required"`
	ProductId           string `mapstructure:"productid" yaml:"ProductId" validate:"required"`
	TenantRsaKeyModulus string `mapstructure:"tenantrsakeymodulus" yaml:"TenantRsaKeyModulus" validate:"required"`
}

// Storage selects the backend used for persisted activation data.
type Storage struct {
	Type string `mapstructure:"type" yaml:"Type" validate:"oneof=sqlite postgres mysql"`
	Dsn  string `mapstructure:"dsn" yaml:"Dsn" validate:"required"`
}

// Terminal controls how offline tokens are captured.
type Terminal struct {
	// RawTokenInput is one of auto, always or never.
	RawTokenInput string `mapstructure:"rawtokeninput" yaml:"RawTokenInput" validate:"oneof=auto always never"`
}

// Sandbox configures the in-process engine.
type Sandbox struct {
	// Catalog is an optional YAML file with activation codes and entitlements.
	Catalog string `mapstructure:"catalog" yaml:"Catalog,omitempty"`
}

// Defaults returns the viper defaults used by LoadConfig.
func Defaults() map[string]any {
	return map[string]any{
		"usecorelibrary":         false,
		"storage.type":           "sqlite",
		"storage.dsn":            DefaultStorageDSN(),
		"language":               "en",
		"clipboard":              true,
		"terminal.rawtokeninput": "auto",
	}
}

// DefaultStorageDSN places the sqlite file next to the user configuration.
func DefaultStorageDSN() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "./license.db"
	}
	return filepath.Join(dir, appDirName, "license.db")
}

// GetConfigPath returns the full path for the configuration file.
func GetConfigPath(system bool) (string, error) {
	var configDir string
	var err error

	if system {
		// System-wide configuration paths
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "ActivationConsole")
		default: // Linux, macOS, etc.
			configDir = "/etc/" + appDirName
		}
	} else {
		// User-specific configuration paths
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, appDirName)
	}

	return filepath.Join(configDir, configBaseName+".yaml"), nil
}

// LoadConfig reads defaults, the first appsettings file found (json or yaml),
// ACTIVATION_* environment variables and the command's flags, in increasing
// order of precedence.
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, explicitPath *string) (T, string, error) {
	var c T
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	// No SetConfigType: viper probes every supported extension, so both
	// appsettings.json and appsettings.yaml are found.
	v.SetConfigName(configBaseName)
	if explicitPath != nil {
		v.SetConfigFile(*explicitPath)
	}

	v.AddConfigPath(".")
	if userConfigPath, err := GetConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(userConfigPath))
	}
	if systemConfigPath, err := GetConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(systemConfigPath))
	}

	readErr := v.ReadInConfig()
	if readErr != nil {
		// It's okay if the file is not found, but other errors are fatal.
		if _, ok := readErr.(viper.ConfigFileNotFoundError); !ok {
			return c, "", readErr
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cmd != nil {
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return c, "", err
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, "", err
	}

	// Surface not-found last so callers still get a usable config from defaults.
	return c, v.ConfigFileUsed(), readErr
}

// WriteConfigFile writes c as YAML to the user (or system) configuration path
// and returns the path written.
func WriteConfigFile[T any](c *T, system bool) (string, error) {
	path, err := GetConfigPath(system)
	if err != nil {
		return "", err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}

	// 0600: the file carries tenant identifiers.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", err
	}

	return path, nil
}
