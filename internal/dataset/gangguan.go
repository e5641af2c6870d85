package dataset

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/apkt-tools/apkt-agent/internal/config"
	"github.com/apkt-tools/apkt-agent/internal/se004"
)

// kelompokGroups are the fault-group tabs the detail report is split
// across on the portal.
var kelompokGroups = []string{"distribusi", "transmisi", "pembangkit"}

// DetailGangguan is the per-event outage detail report: one workbook
// per unit per fault group, fixed 31-column body.
type DetailGangguan struct{}

// Name implements Dataset.
func (d *DetailGangguan) Name() string { return "se004_gangguan" }

// Description implements Dataset.
func (d *DetailGangguan) Description() string {
	return "Per-event outage detail, one workbook per unit per fault group"
}

// Columns implements Dataset.
func (d *DetailGangguan) Columns() []string { return se004.DetailColumns }

// ReportURL implements Dataset.
func (d *DetailGangguan) ReportURL(cfg config.APKTConfig) string {
	return cfg.APKTSSURL + "laporan/se004-detail"
}

// Documents implements Dataset.
func (d *DetailGangguan) Documents(unitCodes []string, periodYM string) ([]Document, error) {
	if !se004.ValidPeriodYM(periodYM) {
		return nil, eris.Errorf("dataset: invalid period %q, want YYYYMM", periodYM)
	}
	docs := make([]Document, 0, len(unitCodes)*len(kelompokGroups))
	for _, code := range unitCodes {
		label, ok := se004.UnitName(code)
		if !ok {
			return nil, eris.Errorf("dataset: unknown unit code %q", code)
		}
		for _, kelompok := range kelompokGroups {
			docs = append(docs, Document{
				UnitCode:  code,
				UnitLabel: label,
				Kelompok:  kelompok,
				Filename:  fmt.Sprintf("se004_detail_%s_%s_%s.xlsx", periodYM, strings.ToLower(code), kelompok),
			})
		}
	}
	return docs, nil
}

// Parse implements Dataset.
func (d *DetailGangguan) Parse(path string) (*ParseOutput, error) {
	res, err := se004.ParseDetailFile(path)
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
