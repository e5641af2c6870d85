package se004

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
)

// The detail gangguan export carries 15 metadata rows plus a two-row
// merged column header; data starts right below.
const detailSkipRows = 17

// DetailColumns is the flattened column order of the per-event fault
// report, followed by the provenance columns appended per file.
var DetailColumns = []string{
	"no",
	"no_laporan",
	"ulp",
	"penyulang",
	"lokasi_titik_gangguan",
	"waktu_padam_tanggal",
	"waktu_padam_jam",
	"waktu_nyala_sementara_tanggal",
	"waktu_nyala_sementara_jam",
	"waktu_nyala_tanggal",
	"waktu_nyala_jam",
	"kelompok_gangguan_fasilitas",
	"kelompok_gangguan_sub_fasilitas",
	"kelompok_gangguan_equipment",
	"event_damage",
	"cause",
	"group_cause",
	"weather",
	"jumlah_pelanggan_padam",
	"lama_padam_jam",
	"jam_x_pelanggan_padam",
	"penyebab_padam",
	"ens",
	"ampere",
	"keterangan",
	"lokasi_gangguan",
	"section_gangguan",
	"pembatas_section",
	"no_tiang_gangguan",
	"rele_proteksi",
	"besar_arus_ampere",
	"period_ym",
	"unit_code",
	"kelompok",
	"source_file",
}

// detailNumericCols indexes the columns normalized from Indonesian to
// canonical numeric form.
var detailNumericCols = map[int]string{
	0:  "no",
	18: "jumlah_pelanggan_padam",
	19: "lama_padam_jam",
	20: "jam_x_pelanggan_padam",
	22: "ens",
	23: "ampere",
	30: "besar_arus_ampere",
}

// detailFileRe extracts provenance from the downloaded filename:
// se004_detail_{period}_{unit_code}_{kelompok}.xlsx
var detailFileRe = regexp.MustCompile(`(?i)^se004_detail_(\d{6})_(.+)_(distribusi|transmisi|pembangkit)\.xlsx?$`)

// DetailRecord is one per-event outage row. Values holds the 31 body
// columns in DetailColumns order, numerics already canonicalized.
type DetailRecord struct {
	Values     []string
	PeriodYM   string
	UnitCode   string
	Kelompok   string
	SourceFile string
}

// Fields renders the record in DetailColumns order.
func (r DetailRecord) Fields() []string {
	out := make([]string, 0, len(DetailColumns))
	out = append(out, r.Values...)
	return append(out, r.PeriodYM, r.UnitCode, r.Kelompok, r.SourceFile)
}

// DetailResult is the outcome of parsing one detail gangguan export.
type DetailResult struct {
	File     string
	Records  []DetailRecord
	Warnings []Warning
}

// ParseDetailFile parses one detail gangguan export.
func ParseDetailFile(path string) (*DetailResult, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "se004: open %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("se004: %s has no sheets", path)
	}

	rows := make([][]string, 0, len(f.Sheets[0].Rows))
	for _, row := range f.Sheets[0].Rows {
		cells := make([]string, len(row.Cells))
		for i, cell := range row.Cells {
			cells[i] = cell.String()
		}
		rows = append(rows, cells)
	}

	return ParseDetailRows(rows, filepath.Base(path))
}

// ParseDetailRows parses an already-read detail gangguan cell grid.
// Rows whose first column is not numeric (footers, stray totals) are
// skipped. Provenance comes from the filename; a filename that does
// not match the download pattern yields empty provenance plus a
// warning, never a rejection.
func ParseDetailRows(rows [][]string, sourceFile string) (*DetailResult, error) {
	res := &DetailResult{File: sourceFile}

	var periodYM, unitCode, kelompok string
	if m := detailFileRe.FindStringSubmatch(sourceFile); m != nil {
		periodYM, unitCode, kelompok = m[1], m[2], strings.ToLower(m[3])
	} else {
		res.Warnings = append(res.Warnings, Warning{
			Code:       WarnMissing,
			Field:      "filename_metadata",
			Value:      sourceFile,
			Expected:   "se004_detail_YYYYMM_UNIT_kelompok.xlsx",
			SourceFile: sourceFile,
		})
	}

	if len(rows) <= detailSkipRows {
		return res, nil
	}

	bodyWidth := len(DetailColumns) - 4

	for r := detailSkipRows; r < len(rows); r++ {
		no := cellAt(rows, r, 0)
		if no == "" {
			continue
		}
		if _, err := strconv.ParseFloat(strings.ReplaceAll(no, ",", "."), 64); err != nil {
			continue
		}

		values := make([]string, bodyWidth)
		for c := 0; c < bodyWidth; c++ {
			values[c] = cellAt(rows, r, c)
		}

		for idx, field := range detailNumericCols {
			norm, err := NormalizeNumber(values[idx])
			if err != nil {
				res.Warnings = append(res.Warnings, Warning{
					Code:       WarnBadNumber,
					Field:      field,
					Value:      values[idx],
					Row:        r + 1,
					SourceFile: sourceFile,
				})
				values[idx] = ""
				continue
			}
			values[idx] = norm
		}

		res.Records = append(res.Records, DetailRecord{
			Values:     values,
			PeriodYM:   periodYM,
			UnitCode:   unitCode,
			Kelompok:   kelompok,
			SourceFile: sourceFile,
		})
	}

	zap.L().Info("parsed detail report",
		zap.String("file", sourceFile),
		zap.Int("records", len(res.Records)),
		zap.Int("warnings", len(res.Warnings)),
	)

	return res, nil
}
