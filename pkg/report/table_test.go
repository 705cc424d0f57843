package report

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/shouni/go-article-metrics/pkg/types"
)

func TestReadCSV(t *testing.T) {
	input := "\ufeffurl_id,Url,Source\n" +
		"37, https://example.com/a ,blog\n" +
		",,\n" +
		"38,https://example.com/b\n"

	table, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"url_id", "Url", "Source"}, table.Header)
	require.Len(t, table.Rows, 2, "空行は読み飛ばす")
	assert.Equal(t, types.Row{ID: "37", URL: "https://example.com/a", Record: []string{"37", " https://example.com/a ", "blog"}}, table.Rows[0])
	assert.Equal(t, "38", table.Rows[1].ID)
	assert.Equal(t, []string{"38", "https://example.com/b", ""}, table.Rows[1].Record, "短い行は列数を揃える")
}

func TestReadCSV_MissingColumn(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"no url", "URL_ID,Title\n1,x\n"},
		{"no id", "URL\nhttps://a\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input))
			assert.True(t, errors.Is(err, ErrMissingColumn), "err = %v", err)
		})
	}
}

func TestRead_UnsupportedFormat(t *testing.T) {
	_, err := Read("input.json")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.ErrorIs(t, WriteTable("out.txt", NewTable(nil)), ErrUnsupportedFormat)
}

func sampleResults() []types.Result {
	ok := types.Result{
		Row:     types.Row{ID: "1", URL: "https://a", Record: []string{"1", "https://a"}},
		Title:   "A",
		Metrics: &types.MetricSet{PositiveScore: 2, NegativeScore: 1, PolarityScore: 0.5, WordCount: 4, AvgSentenceLength: 4, FogIndex: 1.6, AvgWordLength: 4},
	}
	failed := types.Result{
		Row: types.Row{ID: "2", URL: "https://b", Record: []string{"2", "https://b"}},
		Err: errors.New("404"),
	}
	return []types.Result{ok, failed}
}

func TestWriteReport_CSV(t *testing.T) {
	header := []string{ColumnURLID, ColumnURL}
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, WriteReport(path, header, sampleResults()))
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "URL_ID,URL,"+strings.Join(types.MetricColumns, ","), lines[0])
	assert.Equal(t, "1,https://a,2,1,0.5,0,4,0,1.6,4,0,4,0,0,4", lines[1])
	assert.Equal(t, "2,https://b"+strings.Repeat(",", len(types.MetricColumns)), lines[2], "失敗行のメトリクスは空")
}

func TestWriteReport_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Output.xlsx")
	header := []string{ColumnURLID, ColumnURL}
	require.NoError(t, WriteReport(path, header, sampleResults()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetList()[0])
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, append([]string{ColumnURLID, ColumnURL}, types.MetricColumns...), rows[0])
	assert.Equal(t, "2", rows[1][2])
	assert.Equal(t, "1.6", rows[1][8])
	require.GreaterOrEqual(t, len(rows[2]), 2)
	assert.Equal(t, []string{"2", "https://b"}, rows[2][:2])
	for _, v := range rows[2][2:] {
		assert.Empty(t, v, "失敗行のメトリクスは空")
	}

	// 出力を入力として読み戻せる
	table, err := Read(path)
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "https://b", table.Rows[1].URL)
}

func TestWriteTable_RoundTrip(t *testing.T) {
	rows := []types.Row{
		{ID: "f1", URL: "https://x/1", Record: []string{"f1", "https://x/1"}},
		{ID: "f2", URL: "https://x/2", Record: []string{"f2", "https://x/2"}},
	}
	for _, name := range []string{"feed.csv", "feed.xlsx"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, WriteTable(path, NewTable(rows)))

			table, err := Read(path)
			require.NoError(t, err)
			assert.Equal(t, []string{ColumnURLID, ColumnURL}, table.Header)
			assert.Equal(t, rows, table.Rows)
		})
	}
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", formatValue(nil))
	assert.Equal(t, "abc", formatValue("abc"))
	assert.Equal(t, "12", formatValue(12))
	assert.Equal(t, "0.333333", formatValue(0.333333))
	assert.Equal(t, "100", formatValue(100.0))
}

func TestReadCSV_BlankIDRejectedBeforeProcessing(t *testing.T) {
	input := "URL_ID,URL\n" +
		"1,https://example.com/a\n" +
		" ,https://example.com/b\n" +
		"3,https://example.com/c\n"

	table, err := ReadCSV(strings.NewReader(input))
	assert.Nil(t, table)
	require.ErrorIs(t, err, ErrMissingID)
	assert.Contains(t, err.Error(), "行: 3")
	assert.Contains(t, err.Error(), "https://example.com/b")
}

func TestRead_BlankIDInXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Input.xlsx")
	rows := []types.Row{
		{ID: "1", URL: "https://x/1", Record: []string{"1", "https://x/1"}},
		{ID: "", URL: "https://x/2", Record: []string{"", "https://x/2"}},
	}
	require.NoError(t, WriteTable(path, NewTable(rows)))

	_, err := Read(path)
	assert.ErrorIs(t, err, ErrMissingID)
}

func TestDuplicateIDs(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("URL_ID,URL\na,u1\nb,u2\na,u3\na,u4\nb,u5\nc,u6\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, table.DuplicateIDs())

	table, err = ReadCSV(strings.NewReader("URL_ID,URL\na,u1\nb,u2\n"))
	require.NoError(t, err)
	assert.Empty(t, table.DuplicateIDs())
}
