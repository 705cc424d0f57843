package lexicon

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrNotFound は単語リストのファイルが存在しない場合のエラーです。os.ErrNotExist としても判定できます。
var ErrNotFound = fmt.Errorf("単語リストが見つかりません: %w", os.ErrNotExist)

// Lexicon は小文字化された単語の不変集合です。生成後に変更されることはありません。
type Lexicon struct {
	words map[string]struct{}
}

// New は与えられた単語から Lexicon を生成します。単語は前後の空白を除去して小文字化されます。
func New(words ...string) *Lexicon {
	l := &Lexicon{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		l.add(w)
	}
	return l
}

func (l *Lexicon) add(word string) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return
	}
	l.words[word] = struct{}{}
}

// Contains は単語が集合に含まれるかを返します。word は小文字化済みである前提です。
func (l *Lexicon) Contains(word string) bool {
	if l == nil {
		return false
	}
	_, ok := l.words[word]
	return ok
}

// Len は集合の要素数を返します。
func (l *Lexicon) Len() int {
	if l == nil {
		return 0
	}
	return len(l.words)
}

// Read は1行1語の単語リストを読み込みます。空行は無視されます。
func Read(r io.Reader) (*Lexicon, error) {
	l := New()
	if err := l.readFrom(r); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Lexicon) readFrom(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		l.add(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("単語リストの読み込みエラー: %w", err)
	}
	return nil
}

// Load は指定されたパスの単語リストを読み込みます。
// ファイルが存在しない場合は ErrNotFound をラップしたエラーを返します。
func Load(path string) (*Lexicon, error) {
	return LoadAll(path)
}

// LoadAll は複数の単語リストを読み込み、その和集合を返します。
func LoadAll(paths ...string) (*Lexicon, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("単語リストのパスが指定されていません")
	}

	l := New()
	for _, path := range paths {
		if err := l.loadFile(path); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (l *Lexicon) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w (パス: %s)", ErrNotFound, path)
		}
		return fmt.Errorf("単語リストを開けません (パス: %s): %w", path, err)
	}
	defer f.Close()

	if err := l.readFrom(f); err != nil {
		return fmt.Errorf("%w (パス: %s)", err, path)
	}
	return nil
}
