// Package se004 parses SAIDI/SAIFI SE004 reports exported from the
// APKT portal into a flat, locale-normalized record set.
package se004

import "sort"

// Columns is the fixed output column order for the kumulatif report.
// The delimiter downstream is ";" so stray decimal commas can never
// split a field.
var Columns = []string{
	"unit_induk",
	"period_ym",
	"period_label",
	"jumlah_pelanggan",
	"saidi_total",
	"saidi_total_menit",
	"saifi_total",
	"tanggal_cetak",
	"kode",
	"penyebab_gangguan",
	"jml_plg_padam",
	"jam_x_jml_plg_padam",
	"saidi_jam",
	"saifi_kali",
	"jumlah_gangguan_kali",
	"lama_padam_jam",
	"kwh_tak_tersalurkan",
	"row_type",
	"source_file",
}

// RowType discriminates output rows. Group rows are subtotal markers
// for a fault category; detail rows carry per-cause figures.
type RowType string

const (
	RowGroup  RowType = "group"
	RowDetail RowType = "detail"
)

// Fault codes outside this range are still emitted, flagged with a
// warning, since the portal introduces new codes between releases.
const (
	minKode = 1
	maxKode = 69
)

// HeaderBlock is the metadata block read once from the top of each
// report. Every output row carries a copy of these fields.
type HeaderBlock struct {
	UnitInduk       string
	PeriodYM        string // YYYYMM
	PeriodLabel     string // e.g. "November 2025"
	JumlahPelanggan *float64
	SaidiTotal      *float64 // Jam/Plg
	SaidiTotalMenit *float64 // Menit/Plg
	SaifiTotal      *float64 // Kali/Plg
	TanggalCetak    string   // dd/mm/yyyy
}

// Record is one flat output row: header fields merged with one
// classified body row. Numeric pointers are nil when the source cell
// was empty — absent is never conflated with zero.
type Record struct {
	Header HeaderBlock

	Kode             string
	PenyebabGangguan string

	JmlPlgPadam        *float64
	JamXJmlPlgPadam    *float64
	SaidiJam           *float64
	SaifiKali          *float64
	JumlahGangguanKali *float64
	LamaPadamJam       *float64
	KwhTakTersalurkan  *float64

	RowType    RowType
	SourceFile string
}

// Result is the outcome of parsing one source document. Warnings are
// returned alongside records so parsing stays a pure function of its
// input; nothing is accumulated in process-global state.
type Result struct {
	File     string
	Header   HeaderBlock
	Records  []Record
	Warnings []Warning
}

// unitNames maps the unit code embedded in downloaded filenames to the
// full unit name. Used as a fallback when the UNIT INDUK header cell
// is blank (merged-cell exports).
var unitNames = map[string]string{
	"WIL_ACEH":       "WILAYAH ACEH",
	"WIL_SUMUT":      "WILAYAH SUMATERA UTARA",
	"WIL_SUMBAR":     "WILAYAH SUMATERA BARAT",
	"WIL_S2JB":       "WILAYAH SUMATERA SELATAN, JAMBI & BENGKULU (S2JB)",
	"WIL_BABEL":      "WILAYAH BANGKA BELITUNG",
	"DIST_LAMPUNG":   "DISTRIBUSI LAMPUNG",
	"WIL_RIAUKEPRI":  "WILAYAH RIAU DAN KEPULAUAN RIAU",
	"WIL_KALBAR":     "WILAYAH KALIMANTAN BARAT",
	"WIL_KALSELTENG": "WILAYAH KALIMANTAN SELATAN DAN TENGAH",
	"WIL_KALTIM":     "WILAYAH KALIMANTAN TIMUR",
	"REG_SUMKAL":     "REGIONAL SUMKAL",
}

// UnitName resolves a unit code to its full portal name.
func UnitName(code string) (string, bool) {
	name, ok := unitNames[code]
	return name, ok
}

// UnitCodes returns every known unit code, sorted.
func UnitCodes() []string {
	codes := make([]string, 0, len(unitNames))
	for code := range unitNames {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
