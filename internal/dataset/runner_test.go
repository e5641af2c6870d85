package dataset

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/apkt-tools/apkt-agent/internal/config"
	"github.com/apkt-tools/apkt-agent/internal/model"
	"github.com/apkt-tools/apkt-agent/internal/output"
	"github.com/apkt-tools/apkt-agent/internal/se004"
)

func writeWorkbook(t *testing.T, dir, name string, rows [][]string) {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Sheet1")
	require.NoError(t, err)
	for _, rowData := range rows {
		row := sheet.AddRow()
		for _, cellData := range rowData {
			row.AddCell().SetString(cellData)
		}
	}
	require.NoError(t, f.Save(filepath.Join(dir, name)))
}

func kumulatifSheet(unit string) [][]string {
	return [][]string{
		{"LAPORAN SAIDI SAIFI KUMULATIF"},
		{"UNIT INDUK : " + unit},
		{"PERIODE : November 2025"},
		{"JUMLAH PELANGGAN", "2.828.036"},
		{"SAIDI :", "5,7905", "Jam/Plg", "347,43", "Menit/Plg"},
		{"SAIFI :", "3,3", "Kali/Plg"},
		{"TANGGAL PENARIKAN : 08/12/2025"},
		{},
		{"NO. KODE", "PENYEBAB GANGGUAN", "JML. PLG PADAM", "JAM X JML PLG PADAM", "SAIDI (JAM)", "SAIFI (KALI)", "JML GANGGUAN (KALI)", "LAMA PADAM (JAM)", "KWH TAK TERSALURKAN"},
		{"", "KELOMPOK GANGGUAN DISTRIBUSI", "", "", "", "", "", "", ""},
		{"1", "Gangguan JTM", "12.345", "1.234,5", "0,5", "0,01", "17", "2,5", "1.000,25"},
	}
}

func TestRunner_ParseDir(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, dir, "se004_kumulatif_202511_DIST_LAMPUNG.xlsx", kumulatifSheet("DISTRIBUSI LAMPUNG"))
	writeWorkbook(t, dir, "se004_kumulatif_202511_WIL_ACEH.xlsx", kumulatifSheet("WILAYAH ACEH"))

	runner := NewRunner(&config.Config{}, NewRegistry(), nil)
	out := filepath.Join(dir, "combined.csv")

	report, err := runner.ParseDir(context.Background(), "se004_kumulatif", dir, out)
	require.NoError(t, err)
	assert.Equal(t, model.RunSuccess, report.Status)
	assert.Equal(t, 4, report.Rows) // two files, group + detail row each
	assert.Empty(t, report.Failures)

	header, rows, err := output.ReadCSVFile(out)
	require.NoError(t, err)
	assert.Equal(t, se004.Columns, header)
	require.Len(t, rows, 4)
	// Files are combined in filename order.
	assert.Equal(t, "DISTRIBUSI LAMPUNG", rows[0][0])
	assert.Equal(t, "WILAYAH ACEH", rows[2][0])
}

func TestRunner_ParseDir_BadFileDegrades(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, dir, "se004_kumulatif_202511_DIST_LAMPUNG.xlsx", kumulatifSheet("DISTRIBUSI LAMPUNG"))
	writeWorkbook(t, dir, "se004_kumulatif_202511_WIL_ACEH.xlsx", [][]string{{"empty export"}})

	runner := NewRunner(&config.Config{}, NewRegistry(), nil)
	out := filepath.Join(dir, "combined.csv")

	report, err := runner.ParseDir(context.Background(), "se004_kumulatif", dir, out)
	require.NoError(t, err)
	assert.Equal(t, model.RunPartial, report.Status)
	assert.Equal(t, 2, report.Rows)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "se004_kumulatif_202511_WIL_ACEH.xlsx", report.Failures[0].File)
	assert.Equal(t, "WILAYAH ACEH", report.Failures[0].Unit)
}

func TestRunner_ParseDir_EmptyDir(t *testing.T) {
	runner := NewRunner(&config.Config{}, NewRegistry(), nil)
	_, err := runner.ParseDir(context.Background(), "se004_kumulatif", t.TempDir(), "out.csv")
	assert.Error(t, err)
}

func TestRunner_ParseDir_UnknownDataset(t *testing.T) {
	runner := NewRunner(&config.Config{}, NewRegistry(), nil)
	_, err := runner.ParseDir(context.Background(), "se999", t.TempDir(), "out.csv")
	assert.Error(t, err)
}
