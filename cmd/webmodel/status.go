// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/webmodel/internal/history"
	"github.com/pdiddy/webmodel/internal/receipt"
	"github.com/pdiddy/webmodel/pkg/types"
)

const historyLimit = 5

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report installation state and recent install runs",
	Long: `Status reports whether the web model is installed (by the same
output-directory existence check install uses), summarizes the install
receipt when one is present, and lists recent install runs. It has no
side effects.`,
	RunE: runStatus,
}

func init() {
	d := types.Defaults()
	statusCmd.Flags().String("staging-dir", d.StagingDir, "scratch directory holding the install history")
	statusCmd.Flags().String("output-dir", d.OutputDir, "web model destination directory")

	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	stagingDir := flagOrConfig(cmd, "staging-dir", "staging_dir")
	outputDir := flagOrConfig(cmd, "output-dir", "output_dir")
	out := cmd.OutOrStdout()

	if _, err := os.Stat(outputDir); err != nil {
		fmt.Fprintf(out, "not installed: %s does not exist\n", outputDir)
	} else {
		fmt.Fprintf(out, "installed: %s\n", outputDir)
		printReceipt(cmd, filepath.Join(outputDir, receipt.FileName))
	}

	printHistory(cmd, filepath.Join(stagingDir, history.DBFile))
	return nil
}

func printReceipt(cmd *cobra.Command, path string) {
	out := cmd.OutOrStdout()

	r, err := receipt.Read(path)
	if os.IsNotExist(err) {
		// Existence of the directory is all install ever checks, so an
		// installation without a receipt still counts as installed.
		fmt.Fprintln(out, "  no receipt found (directory existence is the only install marker)")
		return
	}
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: could not read receipt: %v\n", err)
		return
	}

	fmt.Fprintf(out, "  archive:   %s\n", r.ArchiveURL)
	fmt.Fprintf(out, "  fetched:   %s\n", r.FetchedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(out, "  converter: %s\n", r.ConverterBin)
	fmt.Fprintf(out, "  export:    %s\n", r.SavedModelDir)
}

func printHistory(cmd *cobra.Command, dbPath string) {
	out := cmd.OutOrStdout()

	if _, err := os.Stat(dbPath); err != nil {
		fmt.Fprintln(out, "no install history")
		return
	}

	store, err := history.Open(dbPath)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: could not open history store: %v\n", err)
		return
	}
	defer store.Close()

	recs, err := store.Recent(historyLimit)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: could not read history: %v\n", err)
		return
	}
	if len(recs) == 0 {
		fmt.Fprintln(out, "no install history")
		return
	}

	fmt.Fprintf(out, "recent runs (newest first):\n")
	for _, rec := range recs {
		line := fmt.Sprintf("  %s  %s", rec.StartedAt.Format("2006-01-02 15:04:05"), rec.Outcome)
		if rec.Outcome == types.OutcomeFailed {
			line += fmt.Sprintf(" at %s: %s", rec.FailedStep, rec.Detail)
		}
		fmt.Fprintln(out, line)
	}
}
