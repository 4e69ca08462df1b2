// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/pdiddy/webmodel/pkg/types"
)

// mockExecutor records calls and returns configured responses.
type mockExecutor struct {
	availableBins map[string]bool
	runErr        error
	gotName       string
	gotArgs       []string
	stdoutText    string
	stderrText    string
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.availableBins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) RunStreamed(name string, args []string, stdout, stderr io.Writer) error {
	m.gotName = name
	m.gotArgs = args
	if m.stdoutText != "" {
		fmt.Fprint(stdout, m.stdoutText)
	}
	if m.stderrText != "" {
		fmt.Fprint(stderr, m.stderrText)
	}
	return m.runErr
}

func testCfg() types.InstallConfig {
	cfg := types.Defaults()
	cfg.ConverterBin = "tensorflowjs_converter"
	return cfg
}

func TestCheckTool(t *testing.T) {
	tests := []struct {
		name    string
		bins    map[string]bool
		wantErr bool
	}{
		{"tool on path", map[string]bool{"tensorflowjs_converter": true}, false},
		{"tool missing", map[string]bool{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newToolConverter(testCfg(), &mockExecutor{availableBins: tt.bins})
			err := c.CheckTool()
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var notFound *ToolNotFoundError
			if !errors.As(err, &notFound) {
				t.Fatalf("error = %v, want ToolNotFoundError", err)
			}
			if notFound.Bin != "tensorflowjs_converter" {
				t.Errorf("error names %q, want the converter binary", notFound.Bin)
			}
		})
	}
}

func TestArgs(t *testing.T) {
	c := newToolConverter(testCfg(), &mockExecutor{})
	got := c.Args("model/export/1700000000", "webmodel")

	want := []string{
		"--input_format=tf_saved_model",
		"--saved_model_tags=serve",
		"--output_node_names=classes,scores",
		"model/export/1700000000",
		"webmodel",
	}
	if len(got) != len(want) {
		t.Fatalf("args = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("args[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestConvert_RunsToolWithArgs(t *testing.T) {
	exec := &mockExecutor{
		availableBins: map[string]bool{"tensorflowjs_converter": true},
		stdoutText:    "Writing weight file webmodel/group1-shard1of1\n",
	}
	c := newToolConverter(testCfg(), exec)

	var stdout, stderr strings.Builder
	if err := c.Convert("model/export/1700000000", "webmodel", &stdout, &stderr); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if exec.gotName != "tensorflowjs_converter" {
		t.Errorf("ran %q, want the converter binary", exec.gotName)
	}
	if len(exec.gotArgs) != 5 || exec.gotArgs[3] != "model/export/1700000000" || exec.gotArgs[4] != "webmodel" {
		t.Errorf("args = %v", exec.gotArgs)
	}
	if !strings.Contains(stdout.String(), "Writing weight file") {
		t.Errorf("tool stdout not streamed through: %q", stdout.String())
	}
}

func TestConvert_WrapsProcessError(t *testing.T) {
	sentinel := errors.New("exit status 2")
	exec := &mockExecutor{
		availableBins: map[string]bool{"tensorflowjs_converter": true},
		runErr:        sentinel,
	}
	c := newToolConverter(testCfg(), exec)

	err := c.Convert("src", "dst", io.Discard, io.Discard)
	if !errors.Is(err, sentinel) {
		t.Fatalf("error = %v, should wrap the process error", err)
	}
	if !strings.Contains(err.Error(), "tensorflowjs_converter") {
		t.Errorf("error %q should name the tool", err)
	}
}
