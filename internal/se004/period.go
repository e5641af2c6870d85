package se004

import (
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

// months maps lowercase Indonesian month names to their two-digit
// numbers. Label changes in the portal are a one-line table edit.
var months = map[string]string{
	"januari":   "01",
	"februari":  "02",
	"maret":     "03",
	"april":     "04",
	"mei":       "05",
	"juni":      "06",
	"juli":      "07",
	"agustus":   "08",
	"september": "09",
	"oktober":   "10",
	"november":  "11",
	"desember":  "12",
}

var monthNames = map[string]string{
	"01": "Januari", "02": "Februari", "03": "Maret",
	"04": "April", "05": "Mei", "06": "Juni",
	"07": "Juli", "08": "Agustus", "09": "September",
	"10": "Oktober", "11": "November", "12": "Desember",
}

var (
	periodYMRe = regexp.MustCompile(`^\d{6}$`)
	yearRe     = regexp.MustCompile(`\d{4}`)
	periodRe   = regexp.MustCompile(`(?i)(Januari|Februari|Maret|April|Mei|Juni|Juli|Agustus|September|Oktober|November|Desember)\s+\d{4}`)
	ddmmyyyyRe = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`)
	isoDateRe  = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	longDateRe = regexp.MustCompile(`(?i)(\d{1,2})\s+(Januari|Februari|Maret|April|Mei|Juni|Juli|Agustus|September|Oktober|November|Desember)\s+(\d{4})`)
)

// ValidPeriodYM reports whether s is a six-digit YYYYMM token.
func ValidPeriodYM(s string) bool {
	return periodYMRe.MatchString(s)
}

// PeriodLabelToYM converts a human period label like "November 2025"
// to its YYYYMM token ("202511").
func PeriodLabelToYM(label string) (string, error) {
	l := strings.ToLower(strings.TrimSpace(label))
	if l == "" {
		return "", eris.New("se004: empty period label")
	}
	for name, num := range months {
		if strings.Contains(l, name) {
			year := yearRe.FindString(l)
			if year == "" {
				return "", eris.Errorf("se004: no year in period label %q", label)
			}
			return year + num, nil
		}
	}
	return "", eris.Errorf("se004: unrecognized period label %q", label)
}

// PeriodYMToLabel converts "202511" back to ("November", "2025").
func PeriodYMToLabel(periodYM string) (month, year string, err error) {
	if !ValidPeriodYM(periodYM) {
		return "", "", eris.Errorf("se004: invalid period %q, expected YYYYMM", periodYM)
	}
	name, ok := monthNames[periodYM[4:6]]
	if !ok {
		return "", "", eris.Errorf("se004: invalid month in period %q", periodYM)
	}
	return name, periodYM[:4], nil
}

// findPeriodLabel extracts the "Month YYYY" fragment from a header
// cell, which may carry surrounding text.
func findPeriodLabel(cell string) string {
	return periodRe.FindString(cell)
}

// NormalizeTanggal canonicalizes a print-date cell to dd/mm/yyyy.
// Accepts dd/mm/yyyy (possibly padded with whitespace), ISO
// yyyy-mm-dd, and Indonesian long dates with an optional leading day
// name ("Selasa, 08 Januari 2026"). Unrecognized input is returned
// trimmed, unchanged.
func NormalizeTanggal(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if ddmmyyyyRe.MatchString(s) {
		return s
	}
	if m := isoDateRe.FindStringSubmatch(s); m != nil {
		return m[3] + "/" + m[2] + "/" + m[1]
	}
	if m := longDateRe.FindStringSubmatch(s); m != nil {
		day := m[1]
		if len(day) == 1 {
			day = "0" + day
		}
		return day + "/" + months[strings.ToLower(m[2])] + "/" + m[3]
	}
	return s
}
