package se004

import (
	"regexp"
	"strconv"
	"strings"
)

// Table scanning bounds: three consecutive blank rows or a footer
// marker ("SAIDI:"/"SAIFI:" totals repeated below the table) end the
// body; maxBodyRows is a safety net against runaway sheets.
const (
	maxBlankRows = 3
	maxBodyRows  = 500
)

// groupMarkers are the two category subtotal labels. A row whose
// label contains one of these (case-insensitive) is a group row
// regardless of its kode.
var groupMarkers = []string{
	"KELOMPOK GANGGUAN DISTRIBUSI",
	"KELOMPOK GANGGUAN TRANSMISI",
}

// columnPatterns binds each semantic field to its table header cell.
// The export renames columns between portal releases; first pattern
// that matches wins, in column order.
var columnPatterns = map[string][]*regexp.Regexp{
	"kode": {
		regexp.MustCompile(`(?i)NO\.?\s*KODE`),
		regexp.MustCompile(`(?i)^KODE`),
	},
	"penyebab_gangguan": {
		regexp.MustCompile(`(?i)PENYEBAB\s*GANGGUAN`),
		regexp.MustCompile(`(?i)PENYEBAB`),
	},
	"jml_plg_padam": {
		regexp.MustCompile(`(?i)JML\.?\s*PLG\.?\s*PADAM`),
		regexp.MustCompile(`(?i)PELANGGAN\s*PADAM`),
	},
	"jam_x_jml_plg_padam": {
		regexp.MustCompile(`(?i)JAM\s*X\s*JML`),
	},
	"saidi_jam": {
		regexp.MustCompile(`(?i)SAIDI`),
	},
	"saifi_kali": {
		regexp.MustCompile(`(?i)SAIFI`),
	},
	"jumlah_gangguan_kali": {
		regexp.MustCompile(`(?i)JML\.?\s*GANGGUAN`),
		regexp.MustCompile(`(?i)GANGGUAN.*KALI`),
	},
	"lama_padam_jam": {
		regexp.MustCompile(`(?i)LAMA\s*PADAM`),
	},
	"kwh_tak_tersalurkan": {
		regexp.MustCompile(`(?i)KWH`),
	},
}

// numericFields in output column order.
var numericFields = []string{
	"jml_plg_padam",
	"jam_x_jml_plg_padam",
	"saidi_jam",
	"saifi_kali",
	"jumlah_gangguan_kali",
	"lama_padam_jam",
	"kwh_tak_tersalurkan",
}

// bodyRow is one classified table row before header fields are merged
// in. Numeric values keyed by field name; nil means absent.
type bodyRow struct {
	rowIdx   int
	kode     string
	penyebab string
	values   map[string]*float64
	rowType  RowType
}

// findTableHeader locates the row carrying the table column headers.
// Returns the row index and the field -> column binding.
func findTableHeader(rows [][]string) (int, map[string]int, bool) {
	for r := 0; r < len(rows); r++ {
		joined := strings.ToUpper(strings.Join(rows[r], " "))
		if !strings.Contains(joined, "KODE") || !strings.Contains(joined, "PENYEBAB") {
			continue
		}
		mapping := make(map[string]int)
		for c, cell := range rows[r] {
			v := strings.TrimSpace(cell)
			if v == "" {
				continue
			}
			for field, patterns := range columnPatterns {
				if _, bound := mapping[field]; bound {
					continue
				}
				for _, re := range patterns {
					if re.MatchString(v) {
						mapping[field] = c
						break
					}
				}
			}
		}
		if _, ok := mapping["kode"]; ok {
			return r, mapping, true
		}
	}
	return 0, nil, false
}

// isGroupLabel reports whether the fault-cause label is one of the
// known category subtotal markers.
func isGroupLabel(label string) bool {
	u := strings.ToUpper(label)
	for _, marker := range groupMarkers {
		if strings.Contains(u, marker) {
			return true
		}
	}
	return false
}

// knownKode reports whether kode is inside the documented fault-code
// taxonomy. Codes outside it are still emitted, only flagged.
func knownKode(kode string) bool {
	n, err := strconv.Atoi(strings.TrimSpace(kode))
	if err != nil {
		return false
	}
	return n >= minKode && n <= maxKode
}

// extractRows walks the table body below the header row, classifying
// each non-blank row and extracting its fields. Rows are never
// silently dropped: malformed numerics and short rows degrade to
// warnings on an otherwise emitted row.
func extractRows(rows [][]string, headerRow int, mapping map[string]int, sourceFile string) ([]bodyRow, []Warning) {
	var (
		out      []bodyRow
		warnings []Warning
		blanks   int
	)

	maxCol := 0
	for _, c := range mapping {
		if c > maxCol {
			maxCol = c
		}
	}

	end := len(rows)
	if end > headerRow+1+maxBodyRows {
		end = headerRow + 1 + maxBodyRows
	}

	for r := headerRow + 1; r < end; r++ {
		first := strings.ToUpper(cellAt(rows, r, 0))
		if strings.HasPrefix(first, "SAIDI:") || strings.HasPrefix(first, "SAIFI:") {
			break
		}

		kode := cellAt(rows, r, mapping["kode"])
		penyebab := cellAt(rows, r, mapping["penyebab_gangguan"])
		if kode == "" && penyebab == "" {
			blanks++
			if blanks >= maxBlankRows {
				break
			}
			continue
		}
		blanks = 0

		row := bodyRow{
			rowIdx:   r,
			kode:     kode,
			penyebab: penyebab,
			values:   make(map[string]*float64, len(numericFields)),
		}

		if len(rows[r]) <= maxCol {
			warnings = append(warnings, Warning{
				Code:       WarnPartialRow,
				Value:      strconv.Itoa(len(rows[r])),
				Expected:   strconv.Itoa(maxCol + 1),
				Row:        r + 1,
				SourceFile: sourceFile,
			})
		}

		allAbsent := true
		for _, field := range numericFields {
			col, bound := mapping[field]
			if !bound {
				continue
			}
			raw := cellAt(rows, r, col)
			v, err := ParseNumber(raw)
			if err != nil {
				// Recoverable for detail fields: flag and leave absent.
				warnings = append(warnings, Warning{
					Code:       WarnBadNumber,
					Field:      field,
					Value:      raw,
					Row:        r + 1,
					SourceFile: sourceFile,
				})
				continue
			}
			if v != nil {
				allAbsent = false
			}
			row.values[field] = v
		}

		switch {
		case isGroupLabel(penyebab), kode == "", allAbsent:
			row.rowType = RowGroup
		default:
			row.rowType = RowDetail
			if !knownKode(kode) {
				warnings = append(warnings, Warning{
					Code:       WarnUnknownKode,
					Field:      "kode",
					Value:      kode,
					Expected:   "1..69",
					Row:        r + 1,
					SourceFile: sourceFile,
				})
			}
		}

		out = append(out, row)
	}

	return out, warnings
}
