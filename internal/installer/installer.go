// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package installer orchestrates the model provisioning pipeline: an
// idempotence guard, a converter-tool guard, archive acquisition, and
// conversion to the web model format.
//
// The pipeline is deliberately faithful to the provisioning script it
// replaces: installation is considered complete when the output directory
// exists (its contents are never validated), nothing is cleaned up on
// failure, and a rerun after a failure refetches into the same staging
// directory.
package installer

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/webmodel/internal/archive"
	"github.com/pdiddy/webmodel/internal/convert"
	"github.com/pdiddy/webmodel/internal/fetch"
	"github.com/pdiddy/webmodel/internal/receipt"
	"github.com/pdiddy/webmodel/pkg/types"
)

// Fetcher downloads the archive URL to a local path.
type Fetcher interface {
	Fetch(ctx context.Context, url, destPath string) error
}

// Extractor unpacks a downloaded archive into a directory.
type Extractor interface {
	Extract(archivePath, destDir string) error
}

// Converter checks for and runs the external conversion tool.
type Converter interface {
	// Bin returns the converter binary name, for messages and the receipt.
	Bin() string

	// CheckTool reports whether the converter is resolvable. It must not
	// touch the network or filesystem, so the installer can fail fast.
	CheckTool() error

	// Args returns the argument list Convert will run, for the receipt.
	Args(savedModelDir, outputDir string) []string

	// Convert produces the web model in outputDir from savedModelDir.
	Convert(savedModelDir, outputDir string, stdout, stderr io.Writer) error
}

// Installer runs the provisioning pipeline.
type Installer struct {
	cfg       types.InstallConfig
	fetcher   Fetcher
	extractor Extractor
	converter Converter
	out       io.Writer
	errw      io.Writer
}

// New builds an Installer with explicit collaborators. Progress lines go
// to out; warnings and converter stderr go to errw.
func New(cfg types.InstallConfig, f Fetcher, e Extractor, c Converter, out, errw io.Writer) *Installer {
	return &Installer{
		cfg:       cfg,
		fetcher:   f,
		extractor: e,
		converter: c,
		out:       out,
		errw:      errw,
	}
}

// NewDefault builds an Installer with the production collaborators: the
// HTTP fetcher, the tar.gz extractor, and the external converter tool.
func NewDefault(cfg types.InstallConfig, out, errw io.Writer) *Installer {
	return New(cfg, fetch.New(cfg.HTTPConfig), archive.TarGz{}, convert.NewToolConverter(cfg), out, errw)
}

// Run executes the pipeline. The returned result is always non-nil; on
// error its FailedStep names the step that stopped the run.
//
// Guard order matters: the output-directory check runs first and skips
// everything, and the tool check runs before any network or staging-dir
// activity.
func (i *Installer) Run(ctx context.Context) (*types.InstallResult, error) {
	start := time.Now()

	fail := func(step types.Step, err error) (*types.InstallResult, error) {
		return &types.InstallResult{
			Outcome:    types.OutcomeFailed,
			FailedStep: step,
			Duration:   time.Since(start),
		}, err
	}

	if _, err := os.Stat(i.cfg.OutputDir); err == nil {
		fmt.Fprintf(i.out, "already installed: %s exists\n", i.cfg.OutputDir)
		return &types.InstallResult{
			Outcome:  types.OutcomeSkipped,
			Duration: time.Since(start),
		}, nil
	}

	if err := i.converter.CheckTool(); err != nil {
		return fail(types.StepTool, err)
	}

	if err := os.MkdirAll(i.cfg.StagingDir, 0o755); err != nil {
		return fail(types.StepFetch, fmt.Errorf("creating staging directory: %w", err))
	}

	archivePath := filepath.Join(i.cfg.StagingDir, archiveFileName(i.cfg.ArchiveURL))
	fmt.Fprintf(i.out, "downloading: %s\n", i.cfg.ArchiveURL)
	if err := i.fetcher.Fetch(ctx, i.cfg.ArchiveURL, archivePath); err != nil {
		return fail(types.StepFetch, fmt.Errorf("fetching archive: %w", err))
	}

	fmt.Fprintf(i.out, "extracting: %s\n", archivePath)
	if err := i.extractor.Extract(archivePath, i.cfg.StagingDir); err != nil {
		return fail(types.StepExtract, fmt.Errorf("extracting archive: %w", err))
	}

	savedModelDir, matches, err := archive.ResolveExportDir(i.cfg.StagingDir, i.cfg.ExportGlob)
	if err != nil {
		return fail(types.StepExtract, err)
	}
	if len(matches) > 1 {
		fmt.Fprintf(i.out, "multiple exports found, using newest: %s\n", savedModelDir)
	}

	fmt.Fprintf(i.out, "converting: %s -> %s\n", savedModelDir, i.cfg.OutputDir)
	if err := i.converter.Convert(savedModelDir, i.cfg.OutputDir, i.out, i.errw); err != nil {
		return fail(types.StepConvert, err)
	}

	r := types.Receipt{
		ArchiveURL:    i.cfg.ArchiveURL,
		FetchedAt:     start.UTC(),
		ConverterBin:  i.converter.Bin(),
		ConverterArgs: i.converter.Args(savedModelDir, i.cfg.OutputDir),
		SavedModelDir: savedModelDir,
	}
	if err := receipt.Write(filepath.Join(i.cfg.OutputDir, receipt.FileName), r); err != nil {
		// The install itself succeeded; the receipt is advisory.
		fmt.Fprintf(i.errw, "warning: could not write receipt: %v\n", err)
	}

	fmt.Fprintf(i.out, "installed: %s\n", i.cfg.OutputDir)
	return &types.InstallResult{
		Outcome:       types.OutcomeInstalled,
		SavedModelDir: savedModelDir,
		Duration:      time.Since(start),
	}, nil
}

// archiveFileName derives the local file name for the downloaded archive
// from the URL path.
func archiveFileName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err == nil && !strings.HasSuffix(u.Path, "/") {
		if base := path.Base(u.Path); base != "." && base != "/" {
			return base
		}
	}
	return "archive.tar.gz"
}
