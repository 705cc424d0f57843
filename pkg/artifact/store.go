package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	DefaultDir = "article_texts"

	fileExt  = ".txt"
	filePerm = 0o644
	dirPerm  = 0o755
)

// Store は行ごとのテキスト成果物を <Dir>/<URL_ID>.txt として保存します。
// ディレクトリは最初の書き込み時に作成されます。同じIDへの書き込みは上書きです。
type Store struct {
	Dir string
}

// NewStore は dir を保存先とする Store を返します。空文字の場合は DefaultDir を使います。
func NewStore(dir string) *Store {
	if dir == "" {
		dir = DefaultDir
	}
	return &Store{Dir: dir}
}

// SaveText は記事のタイトルと本文を空行で区切って保存します。
func (s *Store) SaveText(id, title, body string) error {
	return s.write(id, title+"\n\n"+body)
}

// SaveError は取得・分析に失敗した行のエラーメッセージを保存します。
func (s *Store) SaveError(id, message string) error {
	return s.write(id, message)
}

// Path は id に対応する成果物ファイルのパスを返します。
func (s *Store) Path(id string) string {
	return filepath.Join(s.Dir, sanitizeID(id)+fileExt)
}

func (s *Store) write(id, content string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("成果物の保存に失敗しました: URL_ID が空です")
	}
	if err := os.MkdirAll(s.Dir, dirPerm); err != nil {
		return fmt.Errorf("出力ディレクトリの作成に失敗しました (パス: %s): %w", s.Dir, err)
	}
	path := s.Path(id)
	if err := os.WriteFile(path, []byte(content), filePerm); err != nil {
		return fmt.Errorf("成果物の書き込みに失敗しました (パス: %s): %w", path, err)
	}
	return nil
}

// ErrorMessage は取得に失敗した行の成果物に書き込むメッセージを組み立てます。
// 1行目は URL、2行目は失敗理由です。reason が nil の場合は1行目のみです。
func ErrorMessage(url string, reason error) string {
	msg := "Failed to open URL: " + url
	if reason != nil {
		msg += "\nError: " + reason.Error()
	}
	return msg
}

// AnalysisErrorMessage は本文を取得できたものの指標を計算できなかった行のメッセージを組み立てます。
func AnalysisErrorMessage(url string, reason error) string {
	msg := "Failed to analyze URL: " + url
	if reason != nil {
		msg += "\nError: " + reason.Error()
	}
	return msg
}

// sanitizeID は URL_ID をファイル名として安全な形に変換します。
// パス区切り文字はアンダースコアに置き換えます。
func sanitizeID(id string) string {
	id = strings.TrimSpace(id)
	return strings.NewReplacer("/", "_", "\\", "_").Replace(id)
}
