// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the webmodel CLI, a one-shot
// provisioning tool that downloads a pretrained saved-model archive and
// converts it to a TensorFlow.js web model.
package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/webmodel/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the webmodel CLI.
var rootCmd = &cobra.Command{
	Use:   "webmodel",
	Short: "Provision a pretrained model for the web runtime",
	Long: `webmodel downloads a pretrained TensorFlow saved-model archive, extracts
it into a staging directory, and runs tensorflowjs_converter to produce a
TensorFlow.js web model.

Installation is idempotent by output-directory existence: if the output
directory already exists, install exits immediately without touching the
network. Run with no flags to reproduce the original provisioning defaults.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if _, ok := s[secrets.ArchiveAuthToken]; ok {
			fmt.Fprintln(os.Stderr, "Loaded archive auth token from .secrets/")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./webmodel.yaml or ~/.config/webmodel/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("webmodel")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "webmodel"))
		}
	}

	viper.SetEnvPrefix("WEBMODEL")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		// A converter process failure propagates the converter's own
		// exit code; everything else exits 1.
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
			os.Exit(exitErr.ExitCode())
		}
		os.Exit(1)
	}
}
