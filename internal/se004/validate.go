package se004

// Plausible ranges for aggregate fields. Out-of-range values are
// flagged, never dropped: the portal has shipped implausible figures
// before, and operators want to see them, not lose them.
const (
	maxSaidiHours    = 100
	maxSaifiCount    = 50
	maxCustomerCount = 10_000_000
)

// Validate inspects one assembled record and returns structured
// warnings for missing identity fields, implausible aggregates, and
// negative counts or durations. It never mutates the record.
func Validate(rec Record) []Warning {
	var ws []Warning

	warn := func(code, field, value, expected string) {
		ws = append(ws, Warning{
			Code:       code,
			Field:      field,
			Value:      value,
			Expected:   expected,
			SourceFile: rec.SourceFile,
		})
	}

	if rec.Header.UnitInduk == "" {
		warn(WarnMissing, "unit_induk", "", "non-empty")
	}
	if !ValidPeriodYM(rec.Header.PeriodYM) {
		warn(WarnMissing, "period_ym", rec.Header.PeriodYM, "YYYYMM")
	}
	if rec.RowType == RowDetail && rec.Kode == "" {
		warn(WarnMissing, "kode", "", "non-empty")
	}

	checkRange := func(field string, v *float64, lo, hi float64) {
		if v == nil {
			return
		}
		if *v < lo || *v > hi {
			warn(WarnOutOfRange, field, FormatNumber(*v), rangeLabel(lo, hi))
		}
	}
	checkRange("saidi_total", rec.Header.SaidiTotal, 0, maxSaidiHours)
	checkRange("saifi_total", rec.Header.SaifiTotal, 0, maxSaifiCount)
	checkRange("jumlah_pelanggan", rec.Header.JumlahPelanggan, 0, maxCustomerCount)
	checkRange("jml_plg_padam", rec.JmlPlgPadam, 0, maxCustomerCount)

	// Counts and durations can never be negative, whatever the range.
	negatives := []struct {
		field string
		v     *float64
	}{
		{"jam_x_jml_plg_padam", rec.JamXJmlPlgPadam},
		{"saidi_jam", rec.SaidiJam},
		{"saifi_kali", rec.SaifiKali},
		{"jumlah_gangguan_kali", rec.JumlahGangguanKali},
		{"lama_padam_jam", rec.LamaPadamJam},
		{"kwh_tak_tersalurkan", rec.KwhTakTersalurkan},
	}
	for _, n := range negatives {
		if n.v != nil && *n.v < 0 {
			warn(WarnNegative, n.field, FormatNumber(*n.v), ">= 0")
		}
	}

	return ws
}

func rangeLabel(lo, hi float64) string {
	return "[" + FormatNumber(lo) + ", " + FormatNumber(hi) + "]"
}
