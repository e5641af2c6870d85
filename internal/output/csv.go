// Package output writes and reads the agent's flat files. The field
// delimiter is ";" throughout so a decimal comma leaking from the
// source locale can never split a record.
package output

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// utf8BOM is prepended to every CSV so Excel detects the encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes header plus rows to path, creating parent
// directories as needed. Numeric canonicalization is the caller's
// concern; this layer only serializes.
func WriteCSV(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "output: create dir for %s", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "output: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	if _, err := f.Write(utf8BOM); err != nil {
		return eris.Wrapf(err, "output: write BOM to %s", path)
	}

	w := csv.NewWriter(f)
	w.Comma = ';'

	if err := w.Write(header); err != nil {
		return eris.Wrapf(err, "output: write header to %s", path)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return eris.Wrapf(err, "output: write row to %s", path)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrapf(err, "output: flush %s", path)
	}
	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "output: close %s", path)
	}

	zap.L().Info("wrote csv", zap.String("path", path), zap.Int("rows", len(rows)))
	return nil
}

// ReadCSV parses a semicolon-delimited stream, tolerating an optional
// UTF-8 BOM. Returns the header row and the data rows. Ragged rows
// are accepted; the emitter's round-trip tests rely on exact field
// preservation, not on uniform width.
func ReadCSV(r io.Reader) (header []string, rows [][]string, err error) {
	dec := unicode.UTF8BOM.NewDecoder()
	cr := csv.NewReader(transform.NewReader(r, dec))
	cr.Comma = ';'
	cr.FieldsPerRecord = -1

	all, err := cr.ReadAll()
	if err != nil {
		return nil, nil, eris.Wrap(err, "output: read csv")
	}
	if len(all) == 0 {
		return nil, nil, nil
	}
	return all[0], all[1:], nil
}

// ReadCSVFile reads a semicolon-delimited file from disk.
func ReadCSVFile(path string) (header []string, rows [][]string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "output: open %s", path)
	}
	defer f.Close() //nolint:errcheck
	return ReadCSV(f)
}
