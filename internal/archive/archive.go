// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive extracts model export tarballs and locates the
// saved-model directory inside the extracted tree.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// TarGz extracts gzip-compressed tar archives.
type TarGz struct{}

// Extract unpacks the tar.gz archive at archivePath into destDir.
// Regular files and directories are extracted; other entry types
// (symlinks, devices) are skipped. Existing files are overwritten.
// Entries that would escape destDir are rejected.
func (TarGz) Extract(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("reading gzip header: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading tar entry: %w", err)
		}

		target, err := safeJoin(destDir, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("creating directory %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := writeEntry(target, tr, hdr.FileInfo().Mode()); err != nil {
				return err
			}
		default:
			// Skip symlinks and special files.
		}
	}
}

// safeJoin joins name under destDir, rejecting entries that escape it.
func safeJoin(destDir, name string) (string, error) {
	target := filepath.Join(destDir, filepath.FromSlash(name))
	rel, err := filepath.Rel(destDir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("archive entry %q escapes destination", name)
	}
	return target, nil
}

// writeEntry writes one regular-file entry, creating parent directories
// as needed and overwriting any existing file.
func writeEntry(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("creating parent of %s: %w", target, err)
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm())
	if err != nil {
		return fmt.Errorf("creating %s: %w", target, err)
	}
	_, copyErr := io.Copy(out, r)
	closeErr := out.Close()
	if copyErr != nil {
		return fmt.Errorf("writing %s: %w", target, copyErr)
	}
	if closeErr != nil {
		return fmt.Errorf("closing %s: %w", target, closeErr)
	}
	return nil
}

// ResolveExportDir locates the saved-model directory under stagingDir by
// glob pattern. It returns the chosen directory and every directory the
// pattern matched. With multiple matches the lexically greatest directory
// wins; exports are timestamp-named, so that is the newest one. Zero
// matches means the archive did not have the expected layout.
func ResolveExportDir(stagingDir, pattern string) (chosen string, matches []string, err error) {
	paths, err := filepath.Glob(filepath.Join(stagingDir, pattern))
	if err != nil {
		return "", nil, fmt.Errorf("bad export glob %q: %w", pattern, err)
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			continue
		}
		matches = append(matches, p)
	}
	if len(matches) == 0 {
		return "", nil, fmt.Errorf("no export directory matching %q under %s", pattern, stagingDir)
	}

	sort.Strings(matches)
	return matches[len(matches)-1], matches, nil
}
