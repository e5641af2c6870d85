package se004

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullSheet() [][]string {
	return [][]string{
		{"LAPORAN SAIDI SAIFI KUMULATIF"},
		{"UNIT INDUK : DISTRIBUSI LAMPUNG"},
		{"PERIODE : November 2025"},
		{"JUMLAH PELANGGAN", "2.828.036"},
		{"SAIDI :", "5,7905", "Jam/Plg", "347,43", "Menit/Plg"},
		{"SAIFI :", "3,3", "Kali/Plg"},
		{"TANGGAL PENARIKAN : 08/12/2025"},
		{},
		{"NO. KODE", "PENYEBAB GANGGUAN", "JML. PLG PADAM", "JAM X JML PLG PADAM", "SAIDI (JAM)", "SAIFI (KALI)", "JML GANGGUAN (KALI)", "LAMA PADAM (JAM)", "KWH TAK TERSALURKAN"},
		{"", "KELOMPOK GANGGUAN DISTRIBUSI", "", "", "", "", "", "", ""},
		{"1", "Gangguan JTM", "12.345", "1.234,5", "0,5", "0,01", "17", "2,5", "1.000,25"},
		{"2", "Gangguan Trafo", "500", "250", "0,1", "0,005", "3", "1", "120"},
	}
}

func TestParseRows(t *testing.T) {
	res, err := ParseRows(fullSheet(), "se004_kumulatif_202511_DIST_LAMPUNG.xlsx")
	require.NoError(t, err)

	assert.Equal(t, "DISTRIBUSI LAMPUNG", res.Header.UnitInduk)
	assert.Equal(t, "202511", res.Header.PeriodYM)
	require.Len(t, res.Records, 3)
	assert.Empty(t, res.Warnings)

	group := res.Records[0]
	assert.Equal(t, RowGroup, group.RowType)
	assert.Equal(t, "", group.Kode)
	// Group rows are subtotal markers only; detail numerics stay absent.
	assert.Nil(t, group.JmlPlgPadam)
	assert.Nil(t, group.SaidiJam)

	detail := res.Records[1]
	assert.Equal(t, RowDetail, detail.RowType)
	assert.Equal(t, "1", detail.Kode)
	require.NotNil(t, detail.JmlPlgPadam)
	assert.Equal(t, 12345.0, *detail.JmlPlgPadam)
	require.NotNil(t, detail.KwhTakTersalurkan)
	assert.Equal(t, 1000.25, *detail.KwhTakTersalurkan)
}

func TestParseRows_FieldsOrder(t *testing.T) {
	res, err := ParseRows(fullSheet(), "se004_kumulatif_202511_DIST_LAMPUNG.xlsx")
	require.NoError(t, err)

	fields := res.Records[1].Fields()
	require.Len(t, fields, len(Columns))

	assert.Equal(t, []string{
		"DISTRIBUSI LAMPUNG",
		"202511",
		"November 2025",
		"2828036",
		"5.7905",
		"347.43",
		"3.3",
		"08/12/2025",
		"1",
		"Gangguan JTM",
		"12345",
		"1234.5",
		"0.5",
		"0.01",
		"17",
		"2.5",
		"1000.25",
		"detail",
		"se004_kumulatif_202511_DIST_LAMPUNG.xlsx",
	}, fields)
}

func TestParseRows_GroupRowFields(t *testing.T) {
	res, err := ParseRows(fullSheet(), "se004_kumulatif_202511_DIST_LAMPUNG.xlsx")
	require.NoError(t, err)

	fields := res.Records[0].Fields()
	require.Len(t, fields, len(Columns))
	// Header block carries over; detail numerics are empty.
	assert.Equal(t, "DISTRIBUSI LAMPUNG", fields[0])
	assert.Equal(t, "", fields[8])  // kode
	assert.Equal(t, "", fields[10]) // jml_plg_padam
	assert.Equal(t, "group", fields[17])
}

func TestParseRows_NoTableHeader(t *testing.T) {
	rows := fullSheet()[:8]
	_, err := ParseRows(rows, "se004_kumulatif_202511_DIST_LAMPUNG.xlsx")
	require.Error(t, err)
	var notFound *HeaderNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "NO. KODE", notFound.Label)
}

func TestParseRows_WarningsAggregate(t *testing.T) {
	rows := fullSheet()
	rows[10][2] = "1,2,3" // bad numeric on a detail row
	rows[11][0] = "70"    // unknown fault code

	res, err := ParseRows(rows, "se004_kumulatif_202511_DIST_LAMPUNG.xlsx")
	require.NoError(t, err)
	require.Len(t, res.Records, 3)

	codes := make([]string, 0, len(res.Warnings))
	for _, w := range res.Warnings {
		codes = append(codes, w.Code)
	}
	assert.Contains(t, codes, WarnBadNumber)
	assert.Contains(t, codes, WarnUnknownKode)
}
