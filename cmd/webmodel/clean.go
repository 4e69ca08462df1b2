// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/webmodel/pkg/types"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the staging and/or output directories",
	Long: `Clean removes the directories the installer writes. Install itself never
cleans up, so this is the explicit way to force a fresh run: removing the
output directory makes the next install redo the whole pipeline, and
removing the staging directory discards the downloaded archive.`,
	RunE: runClean,
}

func init() {
	d := types.Defaults()
	cleanCmd.Flags().String("staging-dir", d.StagingDir, "scratch directory to remove")
	cleanCmd.Flags().String("output-dir", d.OutputDir, "web model directory to remove")
	cleanCmd.Flags().Bool("staging", false, "remove the staging directory")
	cleanCmd.Flags().Bool("output", false, "remove the output directory")
	cleanCmd.Flags().Bool("all", false, "remove both directories")

	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	all, _ := cmd.Flags().GetBool("all")
	staging, _ := cmd.Flags().GetBool("staging")
	output, _ := cmd.Flags().GetBool("output")

	if !all && !staging && !output {
		return fmt.Errorf("nothing to clean: pass --staging, --output, or --all")
	}

	if all || staging {
		dir := flagOrConfig(cmd, "staging-dir", "staging_dir")
		if err := removeTree(cmd, dir); err != nil {
			return err
		}
	}
	if all || output {
		dir := flagOrConfig(cmd, "output-dir", "output_dir")
		if err := removeTree(cmd, dir); err != nil {
			return err
		}
	}
	return nil
}

func removeTree(cmd *cobra.Command, dir string) error {
	if _, err := os.Stat(dir); err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "not present: %s\n", dir)
		return nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("removing %s: %w", dir, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "removed: %s\n", dir)
	return nil
}
