package dataset

import (
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/apkt-tools/apkt-agent/internal/config"
	"github.com/apkt-tools/apkt-agent/internal/se004"
)

// Kumulatif is the monthly cumulative SAIDI/SAIFI report: one workbook
// per unit, group subtotals interleaved with per-fault-code detail.
type Kumulatif struct{}

// Name implements Dataset.
func (d *Kumulatif) Name() string { return "se004_kumulatif" }

// Description implements Dataset.
func (d *Kumulatif) Description() string {
	return "Cumulative SAIDI/SAIFI per fault code, one workbook per unit"
}

// Columns implements Dataset.
func (d *Kumulatif) Columns() []string { return se004.Columns }

// ReportURL implements Dataset.
func (d *Kumulatif) ReportURL(cfg config.APKTConfig) string {
	return cfg.APKTSSURL + "laporan/se004"
}

// Documents implements Dataset.
func (d *Kumulatif) Documents(unitCodes []string, periodYM string) ([]Document, error) {
	if !se004.ValidPeriodYM(periodYM) {
		return nil, eris.Errorf("dataset: invalid period %q, want YYYYMM", periodYM)
	}
	docs := make([]Document, 0, len(unitCodes))
	for _, code := range unitCodes {
		label, ok := se004.UnitName(code)
		if !ok {
			return nil, eris.Errorf("dataset: unknown unit code %q", code)
		}
		docs = append(docs, Document{
			UnitCode:  code,
			UnitLabel: label,
			Filename:  fmt.Sprintf("se004_kumulatif_%s_%s.xlsx", periodYM, code),
		})
	}
	return docs, nil
}

// Parse implements Dataset.
func (d *Kumulatif) Parse(path string) (*ParseOutput, error) {
	res, err := se004.ParseFile(path)
	if err != nil {
		return nil, err
	}

	out := &ParseOutput{
		Rows: make([][]string, 0, len(res.Records)),
	}
	for _, rec := range res.Records {
		out.Rows = append(out.Rows, rec.Fields())
	}
	for _, w := range res.Warnings {
		out.Warnings = append(out.Warnings, w.String())
	}
	return out, nil
}
