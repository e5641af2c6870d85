package se004

import (
	"strings"

	"github.com/rotisserie/eris"
)

// headerWindow is how many leading rows are scanned for the metadata
// block. The portal renders it in the first ten rows; two extra rows
// of slack absorb layout drift.
const headerWindow = 12

// Header labels as printed by the portal. Matching is by substring,
// case-insensitive, so cosmetic changes (extra spaces, casing) don't
// break extraction; a renamed label is a one-line edit here.
const (
	labelUnitInduk    = "UNIT INDUK"
	labelJumlahPlg    = "JUMLAH PELANGGAN"
	labelSaidi        = "SAIDI :"
	labelSaidiAlt     = "SAIDI:"
	labelSaifi        = "SAIFI :"
	labelSaifiAlt     = "SAIFI:"
	labelTanggalTarik = "TANGGAL PENARIKAN"
	labelTanggalCetak = "TANGGAL CETAK"
)

// cellRef locates a matched label cell.
type cellRef struct {
	row, col int
	value    string
}

// findCell scans the header window for the first cell containing the
// label (case-insensitive).
func findCell(rows [][]string, label string) *cellRef {
	limit := len(rows)
	if limit > headerWindow {
		limit = headerWindow
	}
	needle := strings.ToUpper(label)
	for r := 0; r < limit; r++ {
		for c, cell := range rows[r] {
			v := strings.TrimSpace(cell)
			if v == "" {
				continue
			}
			if strings.Contains(strings.ToUpper(v), needle) {
				return &cellRef{row: r, col: c, value: v}
			}
		}
	}
	return nil
}

// cellAt returns the trimmed cell at (row, col), or "" when out of
// range. Exports pad rows unevenly, so bounds are never assumed.
func cellAt(rows [][]string, row, col int) string {
	if row < 0 || row >= len(rows) {
		return ""
	}
	r := rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[col])
}

// afterColon extracts the value part of "UNIT INDUK : WILAYAH ACEH".
func afterColon(s string) string {
	if i := strings.Index(s, ":"); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return strings.TrimSpace(s)
}

// UnitFromFilename derives the full unit name from the unit code
// embedded in a downloaded filename, e.g.
// "se004_kumulatif_202511_DIST_LAMPUNG.xlsx" -> "DISTRIBUSI LAMPUNG".
func UnitFromFilename(filename string) string {
	name := strings.TrimSuffix(strings.TrimSuffix(filename, ".xlsx"), ".xls")
	for code, full := range unitNames {
		if strings.Contains(name, code) {
			return full
		}
	}
	return ""
}

// ExtractHeader reads the metadata block from the leading rows of a
// report. Any missing required label rejects the whole document: no
// partial header is accepted, since every output row copies these
// fields. Malformed numerics in the header are equally fatal.
func ExtractHeader(rows [][]string, filename string) (HeaderBlock, error) {
	var h HeaderBlock

	// Unit name: cell value after the colon, falling back to the
	// filename unit code when the merged cell exports empty.
	unitCell := findCell(rows, labelUnitInduk)
	if unitCell != nil {
		h.UnitInduk = afterColon(unitCell.value)
	}
	if h.UnitInduk == "" {
		h.UnitInduk = UnitFromFilename(filename)
	}
	if h.UnitInduk == "" {
		return h, &HeaderNotFoundError{Label: labelUnitInduk, File: filename}
	}

	// Period: any header cell carrying "Month YYYY".
	for r := 0; r < len(rows) && r < headerWindow && h.PeriodLabel == ""; r++ {
		for _, cell := range rows[r] {
			if label := findPeriodLabel(cell); label != "" {
				h.PeriodLabel = label
				break
			}
		}
	}
	if h.PeriodLabel == "" {
		return h, &HeaderNotFoundError{Label: "PERIODE", File: filename}
	}
	ym, err := PeriodLabelToYM(h.PeriodLabel)
	if err != nil {
		return h, eris.Wrapf(err, "se004: header of %s", filename)
	}
	h.PeriodYM = ym

	// Customer count: value sits in the next column, or after the
	// colon when the export collapses the pair into one cell.
	if plgCell := findCell(rows, labelJumlahPlg); plgCell != nil {
		raw := cellAt(rows, plgCell.row, plgCell.col+1)
		if raw == "" {
			raw = afterColon(plgCell.value)
		}
		h.JumlahPelanggan, err = ParseNumber(raw)
		if err != nil {
			return h, eris.Wrapf(err, "se004: header jumlah_pelanggan in %s", filename)
		}
	}

	// SAIDI: Jam/Plg in the next column, Menit/Plg three columns over.
	saidiCell := findCell(rows, labelSaidi)
	if saidiCell == nil {
		saidiCell = findCell(rows, labelSaidiAlt)
	}
	if saidiCell == nil {
		return h, &HeaderNotFoundError{Label: "SAIDI", File: filename}
	}
	h.SaidiTotal, err = ParseNumber(cellAt(rows, saidiCell.row, saidiCell.col+1))
	if err != nil {
		return h, eris.Wrapf(err, "se004: header saidi_total in %s", filename)
	}
	h.SaidiTotalMenit, err = ParseNumber(cellAt(rows, saidiCell.row, saidiCell.col+3))
	if err != nil {
		return h, eris.Wrapf(err, "se004: header saidi_total_menit in %s", filename)
	}

	saifiCell := findCell(rows, labelSaifi)
	if saifiCell == nil {
		saifiCell = findCell(rows, labelSaifiAlt)
	}
	if saifiCell == nil {
		return h, &HeaderNotFoundError{Label: "SAIFI", File: filename}
	}
	h.SaifiTotal, err = ParseNumber(cellAt(rows, saifiCell.row, saifiCell.col+1))
	if err != nil {
		return h, eris.Wrapf(err, "se004: header saifi_total in %s", filename)
	}

	tglCell := findCell(rows, labelTanggalTarik)
	if tglCell == nil {
		tglCell = findCell(rows, labelTanggalCetak)
	}
	if tglCell == nil {
		return h, &HeaderNotFoundError{Label: labelTanggalCetak, File: filename}
	}
	h.TanggalCetak = NormalizeTanggal(afterColon(tglCell.value))

	return h, nil
}
