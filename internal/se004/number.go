package se004

import (
	"strconv"
	"strings"
)

// NormalizeNumber rewrites an Indonesian-formatted numeric token into
// international form: "." thousands separators are stripped and the
// decimal "," becomes ".". "2.828.036,0" -> "2828036.0",
// "5,7905" -> "5.7905". The empty string maps to the empty string
// (absent, not zero). A token with more than one comma is malformed.
func NormalizeNumber(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return "", nil
	}
	if strings.Count(s, ",") > 1 {
		return "", &FormatError{Value: s}
	}
	out := strings.ReplaceAll(s, ".", "")
	out = strings.ReplaceAll(out, ",", ".")
	if _, err := strconv.ParseFloat(out, 64); err != nil {
		return "", &FormatError{Value: s}
	}
	return out, nil
}

// ParseNumber converts an Indonesian-formatted token to a float64.
// Absent input (empty, whitespace, "-") returns (nil, nil) so callers
// can distinguish "not provided" from "zero".
func ParseNumber(s string) (*float64, error) {
	norm, err := NormalizeNumber(s)
	if err != nil {
		return nil, err
	}
	if norm == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(norm, 64)
	if err != nil {
		return nil, &FormatError{Value: s}
	}
	return &v, nil
}

// FormatNumber emits a float in canonical form: dot decimal separator,
// no thousands separators, shortest exact representation.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatOptional renders an optional numeric field for output; absent
// values stay empty.
func FormatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return FormatNumber(*v)
}
