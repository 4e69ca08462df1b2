// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert runs the external model converter tool.
package convert

import (
	"fmt"
	"io"
	"os/exec"

	"github.com/pdiddy/webmodel/pkg/types"
)

// ToolNotFoundError reports that the converter binary could not be
// resolved on PATH. The CLI maps it to the dedicated exit code.
type ToolNotFoundError struct {
	Bin string
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("converter tool %q not found on PATH", e.Bin)
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunStreamed(name string, args []string, stdout, stderr io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunStreamed(name string, args []string, stdout, stderr io.Writer) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

var defaultExec = &osExecutor{}

// ToolConverter invokes the converter binary with the fixed flag set the
// original provisioning script used. The binary name and flag values come
// from the install configuration.
type ToolConverter struct {
	bin             string
	inputFormat     string
	savedModelTags  string
	outputNodeNames string
	exec            executor
}

// NewToolConverter builds a converter from the install configuration.
func NewToolConverter(cfg types.InstallConfig) *ToolConverter {
	return newToolConverter(cfg, defaultExec)
}

func newToolConverter(cfg types.InstallConfig, exec executor) *ToolConverter {
	return &ToolConverter{
		bin:             cfg.ConverterBin,
		inputFormat:     cfg.InputFormat,
		savedModelTags:  cfg.SavedModelTags,
		outputNodeNames: cfg.OutputNodeNames,
		exec:            exec,
	}
}

// Bin returns the converter binary name.
func (c *ToolConverter) Bin() string { return c.bin }

// CheckTool verifies the converter binary resolves on PATH. It performs no
// other work, so the installer can fail fast before any network activity.
func (c *ToolConverter) CheckTool() error {
	if _, err := c.exec.LookPath(c.bin); err != nil {
		return &ToolNotFoundError{Bin: c.bin}
	}
	return nil
}

// Args returns the full argument list for converting savedModelDir into
// outputDir. Exposed so the receipt can record the exact invocation.
func (c *ToolConverter) Args(savedModelDir, outputDir string) []string {
	return []string{
		"--input_format=" + c.inputFormat,
		"--saved_model_tags=" + c.savedModelTags,
		"--output_node_names=" + c.outputNodeNames,
		savedModelDir,
		outputDir,
	}
}

// Convert runs the converter, streaming its output to the given writers.
// The returned error wraps the process error, so a converter exit status
// stays inspectable via errors.As with *exec.ExitError.
func (c *ToolConverter) Convert(savedModelDir, outputDir string, stdout, stderr io.Writer) error {
	args := c.Args(savedModelDir, outputDir)
	if err := c.exec.RunStreamed(c.bin, args, stdout, stderr); err != nil {
		return fmt.Errorf("running %s: %w", c.bin, err)
	}
	return nil
}
