package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	appconfig "github.com/mapcrowd/bundlework/internal/config"
	"github.com/mapcrowd/bundlework/types"
)

const (
	configName = appconfig.DefaultConfigName
	envPrefix  = appconfig.EnvPrefix
)

// GlobalAppConfig holds the global application configuration instance.
var GlobalAppConfig types.AppConfig

// validate is a single validator instance, it caches struct info
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// validateAppConfig performs validation on the AppConfig struct.
func validateAppConfig(config *types.AppConfig) error {
	if errs := validate.Struct(config); errs != nil {
		return errs
	}
	return nil
}

// InitConfig reads in config file and ENV variables if set.
func InitConfig() {
	// Load .env file first if present. It's okay if it doesn't exist.
	_ = godotenv.Load()

	// Environment variable handling must be set up BEFORE reading the
	// config file so env vars can influence config loading.
	viper.SetEnvPrefix(envPrefix) // e.g., BUNDLEWORK_VERBOSE
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfgFileFlag := viper.GetString("config") // Value from --config flag

	// The project state directory also hosts the project-local config
	// file, so resolve it before the full unmarshal.
	potentialProjectConfigDir := viper.GetString("project.rootDir")
	if potentialProjectConfigDir == "" {
		potentialProjectConfigDir = appconfig.DefaultRootDir
	}

	if cfgFileFlag != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFileFlag)
	} else {
		if _, err := os.Stat(potentialProjectConfigDir); !os.IsNotExist(err) {
			// Project-specific config directory exists. Prioritize it.
			viper.AddConfigPath(potentialProjectConfigDir)
			viper.SetConfigName(configName)
		} else {
			// Fall back to home and current directory.
			home, err := os.UserHomeDir()
			cobra.CheckErr(err)
			viper.AddConfigPath(home)
			viper.AddConfigPath(".")
			viper.SetConfigName(configName)
		}
	}

	// Attempt to read the configuration file.
	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	} else {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if cfgFileFlag != "" {
				fmt.Fprintln(os.Stderr, "Error: Specified config file not found:", cfgFileFlag)
			} else if viper.GetBool("verbose") {
				fmt.Fprintln(os.Stderr, "No config file found. Using defaults and environment variables.")
			}
		} else {
			fmt.Fprintln(os.Stderr, "Error reading config file:", viper.ConfigFileUsed(), "-", err)
		}
	}

	// Set default values
	viper.SetDefault("project.rootDir", appconfig.DefaultRootDir)
	viper.SetDefault("project.exportsDir", appconfig.DefaultExportsDir)
	viper.SetDefault("data.file", appconfig.DefaultDataFile)
	viper.SetDefault("actor.id", 0)

	// After all sources are configured, unmarshal into GlobalAppConfig
	if err := viper.Unmarshal(&GlobalAppConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Error unmarshaling config: %s\n", err)
		os.Exit(1)
	}

	// Ensure critical project paths are set, falling back to Viper's
	// defaults if empty after unmarshal. Handles config files that are
	// present but missing these nested keys.
	if GlobalAppConfig.Project.RootDir == "" {
		GlobalAppConfig.Project.RootDir = viper.GetString("project.rootDir")
	}
	if GlobalAppConfig.Project.ExportsDir == "" {
		GlobalAppConfig.Project.ExportsDir = viper.GetString("project.exportsDir")
	}
	if GlobalAppConfig.Data.File == "" {
		GlobalAppConfig.Data.File = viper.GetString("data.file")
	}
}

// GetConfig returns a pointer to the global types.AppConfig instance.
func GetConfig() *types.AppConfig {
	return &GlobalAppConfig
}

// GetDataFilePath returns the full path to the sqlite database. All
// resolution (absolute overrides, project dir, XDG, global fallback)
// lives in internal/config.
func GetDataFilePath() string {
	return appconfig.GetDataFilePath()
}

// GetExportsDir returns the directory bundle reports are written to.
func GetExportsDir() string {
	return appconfig.GetExportsDir()
}

// requireActor validates the acting user id before a mutating command
// runs. Mutations are attributed to this id in actions and the score
// ledger, so it cannot default.
func requireActor() (int64, error) {
	config := GetConfig()
	if err := validateAppConfig(config); err != nil {
		return 0, fmt.Errorf("configuration invalid (set actor.id or --actor): %w", err)
	}
	return config.Actor.ID, nil
}
