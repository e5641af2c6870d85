// Package model holds the shared run-level types.
package model

import "time"

// RunStatus is the terminal state of one extraction run.
type RunStatus string

const (
	RunSuccess RunStatus = "success"
	RunPartial RunStatus = "partial" // some units failed, others parsed
	RunFailed  RunStatus = "failed"
)

// DownloadedFile records one file fetched from the portal.
type DownloadedFile struct {
	Filename     string    `json:"filename"`
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	Unit         string    `json:"unit,omitempty"`
	DownloadedAt time.Time `json:"downloaded_at"`
}

// UnitFailure records a per-unit fatal error. Failures never abort
// the batch; they are surfaced here and in the manifest.
type UnitFailure struct {
	Unit  string `json:"unit"`
	File  string `json:"file,omitempty"`
	Error string `json:"error"`
}

// RunReport summarizes one run for the manifest and the run log.
type RunReport struct {
	RunID       string           `json:"run_id"`
	Dataset     string           `json:"dataset"`
	PeriodYM    string           `json:"period_ym"`
	Status      RunStatus        `json:"status"`
	StartedAt   time.Time        `json:"started_at"`
	CompletedAt time.Time        `json:"completed_at"`
	Downloads   []DownloadedFile `json:"downloads,omitempty"`
	Failures    []UnitFailure    `json:"failures,omitempty"`
	Rows        int              `json:"rows"`
	Warnings    []string         `json:"warnings,omitempty"`
	OutputCSV   string           `json:"output_csv,omitempty"`
}
