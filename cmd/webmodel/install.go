// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/webmodel/internal/history"
	"github.com/pdiddy/webmodel/internal/installer"
	"github.com/pdiddy/webmodel/internal/secrets"
	"github.com/pdiddy/webmodel/pkg/types"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Download the model archive and convert it for the web runtime",
	Long: `Install runs the provisioning pipeline: skip if the output directory
already exists, verify the converter tool is on PATH, download and extract
the saved-model archive into the staging directory, and run the converter.

With no flags the original provisioning defaults apply. Flags override
config-file values, which override the defaults.`,
	RunE: runInstall,
}

func init() {
	d := types.Defaults()

	installCmd.Flags().String("url", d.ArchiveURL, "saved-model archive URL")
	installCmd.Flags().String("staging-dir", d.StagingDir, "scratch directory for the download and extraction")
	installCmd.Flags().String("output-dir", d.OutputDir, "destination directory for the converted web model")
	installCmd.Flags().String("converter-bin", d.ConverterBin, "converter binary resolved on PATH")
	installCmd.Flags().String("export-glob", d.ExportGlob, "glob locating the saved-model directory inside the archive")
	installCmd.Flags().String("output-nodes", d.OutputNodeNames, "comma-separated graph output node names")
	installCmd.Flags().Duration("timeout", d.Timeout, "HTTP request timeout")

	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	cfg := installConfig(cmd)
	start := time.Now()

	inst := installer.NewDefault(cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
	result, err := inst.Run(cmd.Context())

	recordRun(cfg, start, result, err)
	return err
}

// installConfig assembles the install configuration: flag values when set
// explicitly, then config-file values, then the built-in defaults (which
// are also the flags' default values).
func installConfig(cmd *cobra.Command) types.InstallConfig {
	cfg := types.Defaults()

	cfg.ArchiveURL = flagOrConfig(cmd, "url", "archive_url")
	cfg.StagingDir = flagOrConfig(cmd, "staging-dir", "staging_dir")
	cfg.OutputDir = flagOrConfig(cmd, "output-dir", "output_dir")
	cfg.ConverterBin = flagOrConfig(cmd, "converter-bin", "converter_bin")
	cfg.ExportGlob = flagOrConfig(cmd, "export-glob", "export_glob")
	cfg.OutputNodeNames = flagOrConfig(cmd, "output-nodes", "output_node_names")

	if v := viper.GetString("input_format"); v != "" {
		cfg.InputFormat = v
	}
	if v := viper.GetString("saved_model_tags"); v != "" {
		cfg.SavedModelTags = v
	}

	if timeout, _ := cmd.Flags().GetDuration("timeout"); timeout > 0 {
		cfg.Timeout = timeout
	}
	cfg.AuthToken = loadedSecrets[secrets.ArchiveAuthToken]

	return cfg
}

// flagOrConfig resolves a string setting: an explicitly set flag wins,
// then a non-empty config-file key, then the flag's default.
func flagOrConfig(cmd *cobra.Command, flag, key string) string {
	if cmd.Flags().Changed(flag) {
		v, _ := cmd.Flags().GetString(flag)
		return v
	}
	if v := viper.GetString(key); v != "" {
		return v
	}
	v, _ := cmd.Flags().GetString(flag)
	return v
}

// recordRun appends the run to the history store. Skipped runs and
// missing-tool failures are not recorded: both happen before the pipeline
// touches the staging directory, and recording them would create it.
// History is best-effort; store errors only warn.
func recordRun(cfg types.InstallConfig, start time.Time, result *types.InstallResult, runErr error) {
	if result == nil || result.Outcome == types.OutcomeSkipped || result.FailedStep == types.StepTool {
		return
	}

	store, err := history.Open(filepath.Join(cfg.StagingDir, history.DBFile))
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not open history store: %v\n", err)
		return
	}
	defer store.Close()

	rec := types.InstallRecord{
		StartedAt:  start,
		FinishedAt: time.Now(),
		ArchiveURL: cfg.ArchiveURL,
		Outcome:    result.Outcome,
		FailedStep: result.FailedStep,
	}
	if runErr != nil {
		rec.Detail = runErr.Error()
	}
	if err := store.Append(rec); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not record install run: %v\n", err)
	}
}
