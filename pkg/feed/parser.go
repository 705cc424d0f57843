package feed

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/mmcdole/gofeed"

	"github.com/shouni/go-article-metrics/pkg/types"
)

var (
	// ErrFetch はフィード本体を取得できなかった場合のエラーです。
	ErrFetch = errors.New("フィードを取得できません")
	// ErrParse は取得した内容を RSS/Atom として解釈できなかった場合のエラーです。
	ErrParse = errors.New("RSS/Atom として解釈できません")
	// ErrNoLinks はフィードに記事のリンクが1件もない場合のエラーです。
	ErrNoLinks = errors.New("フィードに記事のリンクがありません")
)

// Fetcher はフィード本体を取得します。*httpclient.Client がこれを満たします。
type Fetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// Parser は RSS/Atom フィードから analyze 用の入力テーブルの行を作ります。
type Parser struct {
	client Fetcher
}

func NewParser(client Fetcher) *Parser {
	return &Parser{client: client}
}

// FetchAndParse は feedURL のフィードを取得して解釈します。
func (p *Parser) FetchAndParse(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	body, err := p.client.FetchBytes(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("%w (URL: %s): %w", ErrFetch, feedURL, err)
	}

	f, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w (URL: %s): %w", ErrParse, feedURL, err)
	}
	return f, nil
}

// Rows はフィードの記事リンクを入力テーブルの行に変換して返します。
// リンクが1件もない場合は ErrNoLinks を返します。
func (p *Parser) Rows(ctx context.Context, feedURL, idPrefix string) (*gofeed.Feed, []types.Row, error) {
	f, err := p.FetchAndParse(ctx, feedURL)
	if err != nil {
		return nil, nil, err
	}
	rows := ToTable(f, idPrefix)
	if len(rows) == 0 {
		return f, nil, fmt.Errorf("%w (URL: %s)", ErrNoLinks, feedURL)
	}
	return f, rows, nil
}
