package se004

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDetailRecord() Record {
	f := func(v float64) *float64 { return &v }
	return Record{
		Header: HeaderBlock{
			UnitInduk:       "DISTRIBUSI LAMPUNG",
			PeriodYM:        "202511",
			PeriodLabel:     "November 2025",
			JumlahPelanggan: f(2828036),
			SaidiTotal:      f(5.7905),
			SaifiTotal:      f(3.3),
		},
		Kode:        "1",
		JmlPlgPadam: f(12345),
		RowType:     RowDetail,
		SourceFile:  "f.xlsx",
	}
}

func TestValidate_CleanRecord(t *testing.T) {
	assert.Empty(t, Validate(validDetailRecord()))
}

func TestValidate_MissingIdentity(t *testing.T) {
	rec := validDetailRecord()
	rec.Header.UnitInduk = ""
	rec.Header.PeriodYM = "nov-25"
	rec.Kode = ""

	ws := Validate(rec)
	require.Len(t, ws, 3)
	for _, w := range ws {
		assert.Equal(t, WarnMissing, w.Code)
	}
}

func TestValidate_GroupRowNeedsNoKode(t *testing.T) {
	rec := validDetailRecord()
	rec.RowType = RowGroup
	rec.Kode = ""
	rec.JmlPlgPadam = nil

	assert.Empty(t, Validate(rec))
}

func TestValidate_OutOfRange(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	rec := validDetailRecord()
	rec.Header.SaidiTotal = f(250) // hours per customer, implausible
	rec.Header.SaifiTotal = f(80)
	rec.JmlPlgPadam = f(20_000_000)

	ws := Validate(rec)
	require.Len(t, ws, 3)
	fields := map[string]bool{}
	for _, w := range ws {
		assert.Equal(t, WarnOutOfRange, w.Code)
		fields[w.Field] = true
	}
	assert.True(t, fields["saidi_total"])
	assert.True(t, fields["saifi_total"])
	assert.True(t, fields["jml_plg_padam"])
}

func TestValidate_Negative(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	rec := validDetailRecord()
	rec.LamaPadamJam = f(-1.5)
	rec.KwhTakTersalurkan = f(-10)

	ws := Validate(rec)
	require.Len(t, ws, 2)
	for _, w := range ws {
		assert.Equal(t, WarnNegative, w.Code)
	}
}

func TestValidate_NegativePerEventFields(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	rec := validDetailRecord()
	rec.SaidiJam = f(-0.5)
	rec.SaifiKali = f(-2)

	ws := Validate(rec)
	require.Len(t, ws, 2)
	fields := map[string]bool{}
	for _, w := range ws {
		assert.Equal(t, WarnNegative, w.Code)
		fields[w.Field] = true
	}
	assert.True(t, fields["saidi_jam"])
	assert.True(t, fields["saifi_kali"])
}

func TestValidate_AbsentIsNotZero(t *testing.T) {
	rec := validDetailRecord()
	rec.Header.JumlahPelanggan = nil
	rec.JmlPlgPadam = nil

	// Absent values are skipped, not treated as out-of-range zeros.
	assert.Empty(t, Validate(rec))
}
