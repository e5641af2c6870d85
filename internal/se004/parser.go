package se004

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
)

// ParseFile parses one downloaded kumulatif report. Reads the first
// sheet, extracts the header block, classifies the table body, and
// assembles flat records. Any returned error is fatal for this
// document only; callers continue with the next file.
func ParseFile(path string) (*Result, error) {
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

	return ParseRows(rows, filepath.Base(path))
}

// ParseRows runs the full pipeline over an already-read cell grid.
// Split out from ParseFile so the pipeline is a pure function of the
// sheet contents.
func ParseRows(rows [][]string, sourceFile string) (*Result, error) {
	log := zap.L().With(zap.String("file", sourceFile))

	header, err := ExtractHeader(rows, sourceFile)
	if err != nil {
		return nil, err
	}

	headerRow, mapping, ok := findTableHeader(rows)
	if !ok {
		return nil, &HeaderNotFoundError{Label: "NO. KODE", File: sourceFile}
	}

	body, warnings := extractRows(rows, headerRow, mapping, sourceFile)

	res := &Result{
		File:     sourceFile,
		Header:   header,
		Records:  make([]Record, 0, len(body)),
		Warnings: warnings,
	}

	for _, row := range body {
		rec := assemble(header, row, sourceFile)
		res.Warnings = append(res.Warnings, Validate(rec)...)
		res.Records = append(res.Records, rec)
	}

	log.Info("parsed report",
		zap.String("unit", header.UnitInduk),
		zap.String("period", header.PeriodYM),
		zap.Int("records", len(res.Records)),
		zap.Int("warnings", len(res.Warnings)),
	)

	return res, nil
}

// assemble merges the header block into one classified body row.
// Group rows are subtotal markers only: their detail-only numeric
// fields are forced absent.
func assemble(header HeaderBlock, row bodyRow, sourceFile string) Record {
	rec := Record{
		Header:           header,
		Kode:             strings.TrimSpace(row.kode),
		PenyebabGangguan: row.penyebab,
		RowType:          row.rowType,
		SourceFile:       sourceFile,
	}
	if row.rowType == RowGroup {
		return rec
	}
	rec.JmlPlgPadam = row.values["jml_plg_padam"]
	rec.JamXJmlPlgPadam = row.values["jam_x_jml_plg_padam"]
	rec.SaidiJam = row.values["saidi_jam"]
	rec.SaifiKali = row.values["saifi_kali"]
	rec.JumlahGangguanKali = row.values["jumlah_gangguan_kali"]
	rec.LamaPadamJam = row.values["lama_padam_jam"]
	rec.KwhTakTersalurkan = row.values["kwh_tak_tersalurkan"]
	return rec
}

// Fields renders one record in the fixed 19-column output order.
func (r Record) Fields() []string {
	return []string{
		r.Header.UnitInduk,
		r.Header.PeriodYM,
		r.Header.PeriodLabel,
		FormatOptional(r.Header.JumlahPelanggan),
		FormatOptional(r.Header.SaidiTotal),
		FormatOptional(r.Header.SaidiTotalMenit),
		FormatOptional(r.Header.SaifiTotal),
		r.Header.TanggalCetak,
		r.Kode,
		r.PenyebabGangguan,
		FormatOptional(r.JmlPlgPadam),
		FormatOptional(r.JamXJmlPlgPadam),
		FormatOptional(r.SaidiJam),
		FormatOptional(r.SaifiKali),
		FormatOptional(r.JumlahGangguanKali),
		FormatOptional(r.LamaPadamJam),
		FormatOptional(r.KwhTakTersalurkan),
		string(r.RowType),
		r.SourceFile,
	}
}
