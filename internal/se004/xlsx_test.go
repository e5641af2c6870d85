package se004

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func createTestXLSX(t *testing.T, dir, name string, rows [][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Sheet1")
	require.NoError(t, err)
	for _, rowData := range rows {
		row := sheet.AddRow()
		for _, cellData := range rowData {
			cell := row.AddCell()
			cell.SetString(cellData)
		}
	}
	path := filepath.Join(dir, name)
	require.NoError(t, f.Save(path))
	return path
}

func TestParseFile(t *testing.T) {
	path := createTestXLSX(t, t.TempDir(), "se004_kumulatif_202511_DIST_LAMPUNG.xlsx", fullSheet())

	res, err := ParseFile(path)
	require.NoError(t, err)

	assert.Equal(t, "se004_kumulatif_202511_DIST_LAMPUNG.xlsx", res.File)
	assert.Equal(t, "DISTRIBUSI LAMPUNG", res.Header.UnitInduk)
	require.Len(t, res.Records, 3)
	assert.Equal(t, "se004_kumulatif_202511_DIST_LAMPUNG.xlsx", res.Records[0].SourceFile)
}

func TestParseFile_NotASpreadsheet(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.Error(t, err)
}

func TestParseDetailFile(t *testing.T) {
	path := createTestXLSX(t, t.TempDir(), "se004_detail_202511_dist_lampung_distribusi.xlsx", detailSheet())

	res, err := ParseDetailFile(path)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "dist_lampung", res.Records[0].UnitCode)
}
