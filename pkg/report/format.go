package report

import (
	"fmt"
	"strconv"
)

// formatValue は CSV 出力用にセル値を文字列へ変換します。
// 浮動小数点数は丸めずに最短表現で出力します。
func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}
