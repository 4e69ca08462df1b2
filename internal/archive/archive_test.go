// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// tarEntry describes one entry for buildTarGz.
type tarEntry struct {
	name     string
	body     string
	typeflag byte
}

// buildTarGz writes a tar.gz archive with the given entries into dir and
// returns its path.
func buildTarGz(t *testing.T, dir string, entries []tarEntry) string {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	for _, e := range entries {
		hdr := &tar.Header{
			Name:     e.name,
			Mode:     0o644,
			Size:     int64(len(e.body)),
			Typeflag: e.typeflag,
		}
		if e.typeflag == 0 {
			hdr.Typeflag = tar.TypeReg
		}
		if hdr.Typeflag == tar.TypeDir {
			hdr.Mode = 0o755
			hdr.Size = 0
		}
		if hdr.Typeflag == tar.TypeSymlink {
			hdr.Linkname = e.body
			hdr.Size = 0
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if hdr.Typeflag == tar.TypeReg {
			if _, err := tw.Write([]byte(e.body)); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(dir, "archive.tar.gz")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtract(t *testing.T) {
	dir := t.TempDir()
	archivePath := buildTarGz(t, dir, []tarEntry{
		{name: "export/", typeflag: tar.TypeDir},
		{name: "export/1700000000/", typeflag: tar.TypeDir},
		{name: "export/1700000000/saved_model.pb", body: "graph bytes"},
		{name: "export/1700000000/variables/variables.index", body: "index"},
		{name: "link", body: "saved_model.pb", typeflag: tar.TypeSymlink},
	})

	dest := filepath.Join(dir, "staging")
	if err := os.MkdirAll(dest, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := (TarGz{}).Extract(archivePath, dest); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	pb, err := os.ReadFile(filepath.Join(dest, "export", "1700000000", "saved_model.pb"))
	if err != nil || string(pb) != "graph bytes" {
		t.Errorf("saved_model.pb = %q, %v", pb, err)
	}
	if _, err := os.Stat(filepath.Join(dest, "export", "1700000000", "variables", "variables.index")); err != nil {
		t.Errorf("nested file missing: %v", err)
	}
	// Symlinks are skipped, not materialized.
	if _, err := os.Lstat(filepath.Join(dest, "link")); !os.IsNotExist(err) {
		t.Errorf("symlink entry should be skipped")
	}
}

func TestExtract_OverwritesExisting(t *testing.T) {
	dir := t.TempDir()
	archivePath := buildTarGz(t, dir, []tarEntry{
		{name: "export/model.pb", body: "new contents"},
	})

	dest := filepath.Join(dir, "staging")
	stale := filepath.Join(dest, "export", "model.pb")
	if err := os.MkdirAll(filepath.Dir(stale), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(stale, []byte("stale contents from a failed run"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := (TarGz{}).Extract(archivePath, dest); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	data, err := os.ReadFile(stale)
	if err != nil || string(data) != "new contents" {
		t.Errorf("file = %q, %v; want overwritten contents", data, err)
	}
}

func TestExtract_RejectsPathTraversal(t *testing.T) {
	dir := t.TempDir()
	archivePath := buildTarGz(t, dir, []tarEntry{
		{name: "../escape.txt", body: "outside"},
	})

	dest := filepath.Join(dir, "staging")
	if err := os.MkdirAll(dest, 0o755); err != nil {
		t.Fatal(err)
	}
	err := (TarGz{}).Extract(archivePath, dest)
	if err == nil || !strings.Contains(err.Error(), "escapes destination") {
		t.Fatalf("error = %v, want traversal rejection", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "escape.txt")); !os.IsNotExist(statErr) {
		t.Errorf("traversal entry must not be written")
	}
}

func TestExtract_NotGzip(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "bad.tar.gz")
	if err := os.WriteFile(archivePath, []byte("<html>not a tarball</html>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := (TarGz{}).Extract(archivePath, dir); err == nil {
		t.Fatal("expected error for non-gzip input")
	}
}

func TestResolveExportDir(t *testing.T) {
	tests := []struct {
		name        string
		dirs        []string
		files       []string
		pattern     string
		want        string
		wantMatches int
		wantErr     string
	}{
		{
			name:        "single export",
			dirs:        []string{"export/1700000000"},
			pattern:     "export/*",
			want:        "export/1700000000",
			wantMatches: 1,
		},
		{
			name:        "multiple exports pick lexically greatest",
			dirs:        []string{"export/1600000000", "export/1700000000", "export/1650000000"},
			pattern:     "export/*",
			want:        "export/1700000000",
			wantMatches: 3,
		},
		{
			name:    "no match",
			dirs:    []string{"something-else"},
			pattern: "export/*",
			wantErr: "no export directory",
		},
		{
			name:        "files are ignored",
			dirs:        []string{"export/1700000000"},
			files:       []string{"export/README"},
			pattern:     "export/*",
			want:        "export/1700000000",
			wantMatches: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			staging := t.TempDir()
			for _, d := range tt.dirs {
				if err := os.MkdirAll(filepath.Join(staging, d), 0o755); err != nil {
					t.Fatal(err)
				}
			}
			for _, f := range tt.files {
				if err := os.WriteFile(filepath.Join(staging, f), []byte("x"), 0o644); err != nil {
					t.Fatal(err)
				}
			}

			chosen, matches, err := ResolveExportDir(staging, tt.pattern)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if want := filepath.Join(staging, tt.want); chosen != want {
				t.Errorf("chosen = %q, want %q", chosen, want)
			}
			if len(matches) != tt.wantMatches {
				t.Errorf("matches = %d, want %d", len(matches), tt.wantMatches)
			}
		})
	}
}
