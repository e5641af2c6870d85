// Package dataset defines the report types the agent knows how to
// fetch and parse, and the runner that orchestrates a full run.
package dataset

import (
	"github.com/apkt-tools/apkt-agent/internal/config"
)

// Document identifies one downloadable workbook within a run: a unit,
// optionally a fault group, and the filename it lands under.
type Document struct {
	UnitCode  string
	UnitLabel string
	Kelompok  string // "" for datasets without a group dimension
	Filename  string
}

// ParseOutput is the flattened result of parsing one workbook.
type ParseOutput struct {
	Rows     [][]string // in Columns() order, canonicalized
	Warnings []string
}

// Dataset is one report type on the APKT portal.
type Dataset interface {
	// Name is the unique identifier, e.g. "se004_kumulatif".
	Name() string

	// Description is a one-line human summary for CLI listings.
	Description() string

	// Columns is the output CSV header, in order.
	Columns() []string

	// ReportURL is the portal page carrying this report's filters.
	ReportURL(cfg config.APKTConfig) string

	// Documents enumerates the workbooks to download for the given
	// units and period, in deterministic order.
	Documents(unitCodes []string, periodYM string) ([]Document, error)

	// Parse reads one downloaded workbook into output rows.
	Parse(path string) (*ParseOutput, error)
}
