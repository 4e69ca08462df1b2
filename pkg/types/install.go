// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Step identifies a stage of the install pipeline, used to report where a
// failed run stopped.
type Step string

const (
	StepGuard   Step = "guard"
	StepTool    Step = "tool"
	StepFetch   Step = "fetch"
	StepExtract Step = "extract"
	StepConvert Step = "convert"
)

// Outcome classifies a finished install run.
type Outcome string

const (
	// OutcomeInstalled means the full pipeline ran and the converter
	// produced the output directory.
	OutcomeInstalled Outcome = "installed"

	// OutcomeSkipped means the output directory already existed and the
	// run was an idempotent no-op.
	OutcomeSkipped Outcome = "skipped"

	// OutcomeFailed means some step returned an error.
	OutcomeFailed Outcome = "failed"
)

// InstallResult summarizes a single install run.
type InstallResult struct {
	Outcome Outcome `json:"outcome" yaml:"outcome"`

	// FailedStep is set only when Outcome is OutcomeFailed.
	FailedStep Step `json:"failed_step,omitempty" yaml:"failed_step,omitempty"`

	// SavedModelDir is the resolved export directory handed to the
	// converter. Empty for skipped runs and for failures before extraction.
	SavedModelDir string `json:"saved_model_dir,omitempty" yaml:"saved_model_dir,omitempty"`

	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Receipt records what a successful install fetched and ran. It is written
// into the output directory as receipt.yaml and is purely advisory: the
// idempotence guard checks directory existence only and never reads it.
type Receipt struct {
	ArchiveURL    string    `yaml:"archive_url"`
	FetchedAt     time.Time `yaml:"fetched_at"`
	ConverterBin  string    `yaml:"converter_bin"`
	ConverterArgs []string  `yaml:"converter_args"`
	SavedModelDir string    `yaml:"saved_model_dir"`
}

// InstallRecord is one row of the install history kept in the SQLite store.
type InstallRecord struct {
	ID         int64     `json:"id" yaml:"id"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
	ArchiveURL string    `json:"archive_url" yaml:"archive_url"`
	Outcome    Outcome   `json:"outcome" yaml:"outcome"`
	FailedStep Step      `json:"failed_step,omitempty" yaml:"failed_step,omitempty"`

	// Detail carries the error text for failed runs.
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}
