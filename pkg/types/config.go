// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the webmodel installer.
package types

import "time"

// HTTPConfig holds shared HTTP settings for the archive fetch.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "webmodel/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// AuthToken, when non-empty, is sent as a bearer token with the
	// archive request. Loaded from .secrets/archive-auth-token; never
	// serialized.
	AuthToken string `json:"-" yaml:"-"`
}

// InstallConfig holds every knob of the install pipeline. The original
// provisioning script hard-coded all of these; Defaults returns that
// original constant set, and the CLI exposes each field as a flag.
type InstallConfig struct {
	HTTPConfig `yaml:",inline"`

	// ArchiveURL is the location of the saved-model export tarball.
	ArchiveURL string `json:"archive_url" yaml:"archive_url"`

	// StagingDir is the scratch directory the archive is downloaded to and
	// extracted in. Created on demand; never cleaned up.
	StagingDir string `json:"staging_dir" yaml:"staging_dir"`

	// OutputDir is the destination for the converted web model. Its mere
	// existence marks the installation complete.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// ConverterBin is the name of the external converter binary resolved
	// on PATH.
	ConverterBin string `json:"converter_bin" yaml:"converter_bin"`

	// InputFormat is the converter's --input_format value.
	InputFormat string `json:"input_format" yaml:"input_format"`

	// SavedModelTags is the converter's --saved_model_tags value.
	SavedModelTags string `json:"saved_model_tags" yaml:"saved_model_tags"`

	// OutputNodeNames is the converter's --output_node_names value, a
	// comma-separated list of graph nodes to export.
	OutputNodeNames string `json:"output_node_names" yaml:"output_node_names"`

	// ExportGlob locates the saved-model directory inside the extracted
	// archive, relative to StagingDir. Exports are timestamp-named, so
	// multiple matches resolve to the lexically greatest one.
	ExportGlob string `json:"export_glob" yaml:"export_glob"`
}

// Defaults returns the install configuration matching the original
// provisioning script's fixed constants.
func Defaults() InstallConfig {
	return InstallConfig{
		HTTPConfig: HTTPConfig{
			Timeout:   5 * time.Minute,
			UserAgent: "webmodel/0.1",
		},
		ArchiveURL:      "https://storage.googleapis.com/kanji-recognizer/exports/saved_model.tar.gz",
		StagingDir:      "model",
		OutputDir:       "webmodel",
		ConverterBin:    "tensorflowjs_converter",
		InputFormat:     "tf_saved_model",
		SavedModelTags:  "serve",
		OutputNodeNames: "classes,scores",
		ExportGlob:      "export/*",
	}
}
