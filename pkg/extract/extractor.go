package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	textUtils "github.com/shouni/go-utils/text"
)

// ----------------------------------------------------------------------
// 定数定義 (解析関連のみ)
// ----------------------------------------------------------------------
const (
	DefaultTitleSelector     = "h1"
	DefaultParagraphSelector = "p"

	// paragraphSeparator は段落同士を結合する区切り文字です。
	paragraphSeparator = "\n"
)

// ErrTitleNotFound はタイトル要素が見つからない場合のエラーです。記事の取得失敗として扱われます。
var ErrTitleNotFound = errors.New("記事タイトルの要素が見つかりません")

// Extractor は、Fetcher を使って記事のタイトルと本文を取得します。
type Extractor struct {
	fetcher           Fetcher
	titleSelector     string
	paragraphSelector string
}

// Option は Extractor の設定を行うための関数型です。
type Option func(*Extractor)

// WithTitleSelector はタイトルとして扱う要素のセレクターを設定します。空文字の場合は既定値のままです。
func WithTitleSelector(selector string) Option {
	return func(e *Extractor) {
		if selector != "" {
			e.titleSelector = selector
		}
	}
}

// WithParagraphSelector は本文の段落として扱う要素のセレクターを設定します。空文字の場合は既定値のままです。
func WithParagraphSelector(selector string) Option {
	return func(e *Extractor) {
		if selector != "" {
			e.paragraphSelector = selector
		}
	}
}

// NewExtractor は、新しいExtractorのインスタンスを生成します。
func NewExtractor(fetcher Fetcher, options ...Option) (*Extractor, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("extract.NewExtractor: Fetcher cannot be nil")
	}
	e := &Extractor{
		fetcher:           fetcher,
		titleSelector:     DefaultTitleSelector,
		paragraphSelector: DefaultParagraphSelector,
	}
	for _, opt := range options {
		opt(e)
	}
	return e, nil
}

// ----------------------------------------------------------------------
// メイン関数 (メソッド化)
// ----------------------------------------------------------------------

// FetchArticle は指定されたURLからHTMLを取得し、記事タイトルと本文を返します。
// 通信エラー、HTML解析エラー、タイトル要素の欠落はいずれもエラーとして返されます。
func (e *Extractor) FetchArticle(ctx context.Context, url string) (title string, body string, err error) {
	// 1. Fetcherから生のバイト配列を取得 (通信の責務)
	htmlBytes, err := e.fetcher.FetchBytes(ctx, url)
	if err != nil {
		return "", "", err
	}

	// 2. goquery.Documentに変換 (解析の責務)
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlBytes))
	if err != nil {
		return "", "", fmt.Errorf("HTML解析に失敗しました: %w", err)
	}

	return e.ExtractArticle(doc)
}

// ExtractArticle は goquery.Document からタイトルと本文を抽出します。
// 本文は段落要素のテキストを前後の空白を除いて改行で結合したものです。空の段落も空行として残ります。
func (e *Extractor) ExtractArticle(doc *goquery.Document) (title string, body string, err error) {
	titleSel := doc.Find(e.titleSelector).First()
	if titleSel.Length() == 0 {
		return "", "", fmt.Errorf("%w (セレクター: %s)", ErrTitleNotFound, e.titleSelector)
	}
	title = textUtils.NormalizeText(titleSel.Text())

	var paragraphs []string
	doc.Find(e.paragraphSelector).Each(func(i int, s *goquery.Selection) {
		paragraphs = append(paragraphs, strings.TrimSpace(s.Text()))
	})

	return title, strings.Join(paragraphs, paragraphSeparator), nil
}
