package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

var cfg = viper.New()

// initConfig loads the config file and environment. Keys:
//
//	install_dir   gem install directory (env GEM_INSTALL_INSTALL_DIR)
//	verbose       enable debug logging  (env GEM_INSTALL_VERBOSE)
func initConfig() {
	cfg.SetDefault("install_dir", defaultInstallDir())
	cfg.SetDefault("verbose", false)

	if cfgFile != "" {
		cfg.SetConfigFile(cfgFile)
	} else {
		configDir := os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			if home, err := os.UserHomeDir(); err == nil {
				configDir = filepath.Join(home, ".config")
			}
		}
		if configDir != "" {
			cfg.AddConfigPath(filepath.Join(configDir, "gem-install"))
		}
		cfg.SetConfigName("config")
		cfg.SetConfigType("toml")
	}

	cfg.SetEnvPrefix("GEM_INSTALL")
	cfg.AutomaticEnv()

	if err := cfg.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+err.Error())
		}
	}

	if !verbose {
		verbose = cfg.GetBool("verbose")
	}
}

// resolveInstallDir applies flag > config > default precedence.
func resolveInstallDir() string {
	if installDirFlag != "" {
		return installDirFlag
	}
	return cfg.GetString("install_dir")
}

func defaultInstallDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".gem-install")
	}
	return ".gem-install"
}
