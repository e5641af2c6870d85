package se004

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func detailSheet() [][]string {
	rows := make([][]string, detailSkipRows)
	for i := range rows {
		rows[i] = []string{"metadata"}
	}
	body := []string{
		"1", "LAP-001", "ULP TANJUNG", "PENYULANG A", "Tiang 12",
		"01/11/2025", "08:15", "01/11/2025", "08:45", "01/11/2025", "09:30",
		"JTM", "SUTM", "Isolator", "Pecah", "Pohon", "Eksternal", "Hujan",
		"1.234", "1,25", "1.542,5", "Pohon tumbang", "350,75", "120,5",
		"aman", "Seksi 2", "LBS-4", "Recloser", "T-12", "OCR", "240",
	}
	rows = append(rows, body)
	rows = append(rows, []string{"TOTAL", "", ""}) // footer, first col not numeric
	return rows
}

func TestParseDetailRows(t *testing.T) {
	res, err := ParseDetailRows(detailSheet(), "se004_detail_202511_dist_lampung_distribusi.xlsx")
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	require.Len(t, res.Records, 1)

	rec := res.Records[0]
	assert.Equal(t, "202511", rec.PeriodYM)
	assert.Equal(t, "dist_lampung", rec.UnitCode)
	assert.Equal(t, "distribusi", rec.Kelompok)

	// Numeric columns are canonicalized in place.
	assert.Equal(t, "1", rec.Values[0])
	assert.Equal(t, "1234", rec.Values[18])
	assert.Equal(t, "1.25", rec.Values[19])
	assert.Equal(t, "1542.5", rec.Values[20])
	assert.Equal(t, "350.75", rec.Values[22])
	assert.Equal(t, "120.5", rec.Values[23])
	assert.Equal(t, "240", rec.Values[30])
	// Text columns pass through untouched.
	assert.Equal(t, "ULP TANJUNG", rec.Values[2])
	assert.Equal(t, "Pohon tumbang", rec.Values[21])

	fields := rec.Fields()
	require.Len(t, fields, len(DetailColumns))
	assert.Equal(t, "se004_detail_202511_dist_lampung_distribusi.xlsx", fields[len(fields)-1])
}

func TestParseDetailRows_UnmatchedFilenameWarns(t *testing.T) {
	res, err := ParseDetailRows(detailSheet(), "export.xlsx")
	require.NoError(t, err)
	require.Len(t, res.Records, 1)

	assert.Equal(t, "", res.Records[0].PeriodYM)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, WarnMissing, res.Warnings[0].Code)
	assert.Equal(t, "filename_metadata", res.Warnings[0].Field)
}

func TestParseDetailRows_SkipsNonNumericRows(t *testing.T) {
	rows := detailSheet()
	rows = append(rows, []string{"Dicetak oleh sistem"})

	res, err := ParseDetailRows(rows, "se004_detail_202511_dist_lampung_transmisi.xlsx")
	require.NoError(t, err)
	assert.Len(t, res.Records, 1)
}

func TestParseDetailRows_BadNumericDegrades(t *testing.T) {
	rows := detailSheet()
	rows[detailSkipRows][18] = "1,2,3"

	res, err := ParseDetailRows(rows, "se004_detail_202511_dist_lampung_distribusi.xlsx")
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "", res.Records[0].Values[18])

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, WarnBadNumber, res.Warnings[0].Code)
	assert.Equal(t, "jumlah_pelanggan_padam", res.Warnings[0].Field)
}

func TestParseDetailRows_ShortSheet(t *testing.T) {
	res, err := ParseDetailRows([][]string{{"just"}, {"metadata"}}, "se004_detail_202511_dist_lampung_distribusi.xlsx")
	require.NoError(t, err)
	assert.Empty(t, res.Records)
}
