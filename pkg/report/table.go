package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/shouni/go-article-metrics/pkg/types"
)

const (
	ColumnURLID = "URL_ID"
	ColumnURL   = "URL"

	extXLSX = ".xlsx"
	extCSV  = ".csv"

	// defaultSheet は excelize.NewFile が作成するシート名です。
	defaultSheet = "Sheet1"
)

var (
	// ErrUnsupportedFormat は拡張子から表形式を判定できない場合のエラーです。
	ErrUnsupportedFormat = errors.New("未対応のファイル形式です (.xlsx または .csv を指定してください)")
	// ErrMissingColumn は入力テーブルに必須列がない場合のエラーです。
	ErrMissingColumn = errors.New("入力テーブルに必須の列がありません")
	// ErrMissingID は URL_ID が空の行がある場合のエラーです。記事の取得を始める前に返されます。
	ErrMissingID = errors.New("URL_ID が空の行があります")
)

// Table は入力テーブルです。Header は元の列名、Rows は入力順の行です。
type Table struct {
	Header []string
	Rows   []types.Row
}

// NewTable は URL_ID と URL の2列だけを持つテーブルを作成します。
func NewTable(rows []types.Row) *Table {
	return &Table{Header: []string{ColumnURLID, ColumnURL}, Rows: rows}
}

// Read は拡張子に応じて .xlsx (先頭シート) または .csv の入力テーブルを読み込みます。
func Read(path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case extXLSX:
		return readXLSX(path)
	case extCSV:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("入力ファイルを開けません (パス: %s): %w", path, err)
		}
		defer f.Close()
		return ReadCSV(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

func readXLSX(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("入力ファイルを開けません (パス: %s): %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("ワークシートがありません (パス: %s)", path)
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("ワークシートの読み込みに失敗しました (シート: %s): %w", sheets[0], err)
	}
	return fromRecords(records)
}

// ReadCSV は CSV 形式の入力テーブルを読み込みます。
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("CSVの読み込みに失敗しました: %w", err)
	}
	return fromRecords(records)
}

// fromRecords は先頭行をヘッダーとしてテーブルを組み立てます。空行は読み飛ばします。
func fromRecords(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: ヘッダー行がありません", ErrMissingColumn)
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	idCol, urlCol := -1, -1
	for i, h := range header {
		switch {
		case strings.EqualFold(h, ColumnURLID) && idCol < 0:
			idCol = i
		case strings.EqualFold(h, ColumnURL) && urlCol < 0:
			urlCol = i
		}
	}
	if idCol < 0 || urlCol < 0 {
		return nil, fmt.Errorf("%w: %s と %s が必要です (ヘッダー: %v)", ErrMissingColumn, ColumnURLID, ColumnURL, header)
	}

	t := &Table{Header: header, Rows: make([]types.Row, 0, len(records)-1)}
	for i, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		rec = pad(rec, len(header))
		id := strings.TrimSpace(rec[idCol])
		if id == "" {
			// ヘッダーを1行目とした行番号
			return nil, fmt.Errorf("%w (行: %d, URL: %s)", ErrMissingID, i+2, strings.TrimSpace(rec[urlCol]))
		}
		t.Rows = append(t.Rows, types.Row{
			ID:     id,
			URL:    strings.TrimSpace(rec[urlCol]),
			Record: rec,
		})
	}
	return t, nil
}

// WriteTable はメトリクス列を付けずにテーブルを書き出します。
func WriteTable(path string, t *Table) error {
	rows := make([][]any, 0, len(t.Rows))
	for _, r := range t.Rows {
		rows = append(rows, toAny(pad(r.Record, len(t.Header))))
	}
	return write(path, t.Header, rows)
}

// WriteReport は入力テーブルの列に13個のメトリクス列を追加した出力テーブルを書き出します。
// メトリクスを持たない行は追加列が空になります。
func WriteReport(path string, header []string, results []types.Result) error {
	outHeader := make([]string, 0, len(header)+len(types.MetricColumns))
	outHeader = append(outHeader, header...)
	outHeader = append(outHeader, types.MetricColumns...)

	rows := make([][]any, 0, len(results))
	for _, res := range results {
		row := toAny(pad(res.Row.Record, len(header)))
		if res.OK() {
			row = append(row, res.Metrics.Values()...)
		} else {
			for range types.MetricColumns {
				row = append(row, "")
			}
		}
		rows = append(rows, row)
	}
	return write(path, outHeader, rows)
}

func write(path string, header []string, rows [][]any) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case extXLSX:
		return writeXLSX(path, header, rows)
	case extCSV:
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("出力ファイルを作成できません (パス: %s): %w", path, err)
		}
		if err := writeCSV(f, header, rows); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

func writeXLSX(path string, header []string, rows [][]any) error {
	f := excelize.NewFile()
	defer f.Close()

	all := append([][]any{toAny(header)}, rows...)
	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("セル座標の計算に失敗しました: %w", err)
		}
		if err := f.SetSheetRow(defaultSheet, cell, &row); err != nil {
			return fmt.Errorf("行の書き込みに失敗しました (行: %d): %w", i+1, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("出力ファイルの保存に失敗しました (パス: %s): %w", path, err)
	}
	return nil
}

func writeCSV(w io.Writer, header []string, rows [][]any) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("CSVヘッダーの書き込みに失敗しました: %w", err)
	}
	for _, row := range rows {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = formatValue(v)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("CSV行の書き込みに失敗しました: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// DuplicateIDs は2回以上現れる URL_ID を最初の出現順に返します。
// 同じ URL_ID の行は成果物ファイルを上書きし合います。
func (t *Table) DuplicateIDs() []string {
	seen := make(map[string]int, len(t.Rows))
	var dups []string
	for _, r := range t.Rows {
		seen[r.ID]++
		if seen[r.ID] == 2 {
			dups = append(dups, r.ID)
		}
	}
	return dups
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// pad は rec を n 列に揃えます。GetRows は末尾の空セルを省略し、ヘッダーより長い行は切り詰めます。
func pad(rec []string, n int) []string {
	if len(rec) >= n {
		return rec[:n]
	}
	out := make([]string, n)
	copy(out, rec)
	return out
}

func toAny(rec []string) []any {
	out := make([]any, len(rec))
	for i, v := range rec {
		out[i] = v
	}
	return out
}
