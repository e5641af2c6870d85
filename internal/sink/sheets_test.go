package sink

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/apkt-tools/apkt-agent/internal/output"
)

// fakeAPI records calls in memory; values holds the last grid written
// per A1 range.
type fakeAPI struct {
	titles  []string
	rows    int
	cleared []string
	added   []string
	writes  map[string][][]any
}

func newFakeAPI(titles []string, rows int) *fakeAPI {
	return &fakeAPI{titles: titles, rows: rows, writes: map[string][][]any{}}
}

func (f *fakeAPI) SheetTitles(context.Context) ([]string, error) { return f.titles, nil }

func (f *fakeAPI) AddSheet(_ context.Context, title string, _, _ int64) error {
	f.added = append(f.added, title)
	f.titles = append(f.titles, title)
	return nil
}

func (f *fakeAPI) Clear(_ context.Context, title string) error {
	f.cleared = append(f.cleared, title)
	return nil
}

func (f *fakeAPI) Update(_ context.Context, rangeA1 string, values [][]any) error {
	f.writes[rangeA1] = values
	return nil
}

func (f *fakeAPI) RowCount(context.Context, string) (int, error) { return f.rows, nil }

func testUploader(a api) *Uploader {
	u := newUploader(a)
	u.limiter = rate.NewLimiter(rate.Inf, 1) // no throttling in tests
	return u
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("replace")
	require.NoError(t, err)
	assert.Equal(t, ModeReplace, m)

	m, err = ParseMode("append")
	require.NoError(t, err)
	assert.Equal(t, ModeAppend, m)

	_, err = ParseMode("upsert")
	assert.Error(t, err)
}

func TestUpload_ReplaceClearsFirst(t *testing.T) {
	f := newFakeAPI([]string{"se004_kumulatif"}, 10)
	u := testUploader(f)

	res, err := u.Upload(context.Background(), []string{"a", "b"}, [][]string{{"1", "2"}}, "se004_kumulatif", ModeReplace)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Rows)
	assert.Equal(t, 2, res.Cols)

	assert.Equal(t, []string{"se004_kumulatif"}, f.cleared)
	grid := f.writes["se004_kumulatif!A1"]
	require.Len(t, grid, 2) // header + one row
	assert.Equal(t, []any{"a", "b"}, grid[0])
	assert.Equal(t, []any{"1", "2"}, grid[1])
}

func TestUpload_AppendSkipsHeader(t *testing.T) {
	f := newFakeAPI([]string{"ws"}, 5)
	u := testUploader(f)

	_, err := u.Upload(context.Background(), []string{"a"}, [][]string{{"x"}, {"y"}}, "ws", ModeAppend)
	require.NoError(t, err)

	assert.Empty(t, f.cleared)
	grid := f.writes["ws!A6"] // below the 5 existing rows
	require.Len(t, grid, 2)
	assert.Equal(t, []any{"x"}, grid[0])
}

func TestUpload_AppendToEmptyWritesHeader(t *testing.T) {
	f := newFakeAPI([]string{"ws"}, 0)
	u := testUploader(f)

	_, err := u.Upload(context.Background(), []string{"a"}, [][]string{{"x"}}, "ws", ModeAppend)
	require.NoError(t, err)

	grid := f.writes["ws!A1"]
	require.Len(t, grid, 2)
	assert.Equal(t, []any{"a"}, grid[0])
}

func TestUpload_CreatesMissingWorksheet(t *testing.T) {
	f := newFakeAPI([]string{"other"}, 0)
	u := testUploader(f)

	_, err := u.Upload(context.Background(), []string{"a"}, [][]string{{"x"}}, "fresh", ModeReplace)
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, f.added)
}

func TestUploadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, output.WriteCSV(path, []string{"a", "b"}, [][]string{{"1", "2"}}))

	f := newFakeAPI([]string{"ws"}, 0)
	u := testUploader(f)

	res, err := u.UploadCSV(context.Background(), path, "ws", ModeReplace)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Rows)

	grid := f.writes["ws!A1"]
	require.Len(t, grid, 2)
	assert.Equal(t, []any{"a", "b"}, grid[0])
}
