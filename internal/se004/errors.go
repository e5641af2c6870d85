package se004

import "fmt"

// HeaderNotFoundError marks a document whose metadata block is missing
// a required label. The document is rejected whole: every output row
// depends on the header, so no partial header is ever accepted.
type HeaderNotFoundError struct {
	Label string
	File  string
}

func (e *HeaderNotFoundError) Error() string {
	return fmt.Sprintf("se004: header label %q not found in %s", e.Label, e.File)
}

// FormatError marks a numeric token that does not parse as an
// Indonesian-formatted number. Fatal for header totals, a warning for
// per-row detail fields.
type FormatError struct {
	Value string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("se004: malformed numeric token %q", e.Value)
}

// Warning codes, surfaced in the run manifest.
const (
	WarnOutOfRange  = "out_of_range"
	WarnNegative    = "negative_value"
	WarnUnknownKode = "unknown_kode"
	WarnPartialRow  = "partial_row"
	WarnBadNumber   = "bad_number"
	WarnMissing     = "missing_field"
)

// Warning is a structured, non-fatal finding attached to a parse
// result. Records are annotated, never dropped or mutated.
type Warning struct {
	Code       string `json:"code"`
	Field      string `json:"field,omitempty"`
	Value      string `json:"value,omitempty"`
	Expected   string `json:"expected,omitempty"`
	Row        int    `json:"row,omitempty"`
	SourceFile string `json:"source_file,omitempty"`
}

func (w Warning) String() string {
	s := w.Code
	if w.Field != "" {
		s += " field=" + w.Field
	}
	if w.Value != "" {
		s += " value=" + w.Value
	}
	if w.Expected != "" {
		s += " expected=" + w.Expected
	}
	if w.SourceFile != "" {
		s += " file=" + w.SourceFile
	}
	return s
}
