package extract_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shouni/go-article-metrics/pkg/extract"
)

// ======================================================================
// モック (Mock) の定義
// ======================================================================

// MockFetcher はテスト用の extract.Fetcher インターフェースの実装です。
type MockFetcher struct {
	htmlContent string
	fetchError  error
	calledURL   string
}

// FetchBytes はモックされたHTMLをバイト配列として返すか、エラーを返します。
func (m *MockFetcher) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	m.calledURL = url
	if m.fetchError != nil {
		return nil, m.fetchError
	}
	return []byte(m.htmlContent), nil
}

// ======================================================================
// テスト関数
// ======================================================================

func TestNewExtractor(t *testing.T) {
	t.Run("success_with_valid_fetcher", func(t *testing.T) {
		extractor, err := extract.NewExtractor(&MockFetcher{})
		assert.NoError(t, err)
		assert.NotNil(t, extractor)
	})

	t.Run("error_with_nil_fetcher", func(t *testing.T) {
		extractor, err := extract.NewExtractor(nil)
		assert.Error(t, err)
		assert.Nil(t, extractor)
		assert.Contains(t, err.Error(), "Fetcher cannot be nil")
	})
}

func TestFetchArticle(t *testing.T) {
	networkErr := errors.New("network timeout")

	testCases := []struct {
		name          string
		html          string
		fetchErr      error
		options       []extract.Option
		expectedTitle string
		expectedBody  string
		expectedErr   error
	}{
		{
			name:        "fetch_error",
			fetchErr:    networkErr,
			expectedErr: networkErr,
		},
		{
			name: "title_and_paragraphs",
			html: `<html><head><title>Page</title></head><body>
				<h1>  Rising   Markets </h1>
				<p> First paragraph. </p>
				<div><p>Second <b>paragraph</b>.</p></div>
			</body></html>`,
			expectedTitle: "Rising Markets",
			expectedBody:  "First paragraph.\nSecond paragraph.",
		},
		{
			name:          "first_h1_only",
			html:          `<html><body><h1>One</h1><h1>Two</h1><p>Text.</p></body></html>`,
			expectedTitle: "One",
			expectedBody:  "Text.",
		},
		{
			name:          "empty_paragraphs_are_kept_as_blank_lines",
			html:          `<html><body><h1>T</h1><p>A.</p><p>   </p><p>B.</p></body></html>`,
			expectedTitle: "T",
			expectedBody:  "A.\n\nB.",
		},
		{
			name:          "no_paragraphs",
			html:          `<html><body><h1>Only a title</h1></body></html>`,
			expectedTitle: "Only a title",
			expectedBody:  "",
		},
		{
			name:        "missing_title_is_failure",
			html:        `<html><head><title>No heading</title></head><body><p>Text.</p></body></html>`,
			expectedErr: extract.ErrTitleNotFound,
		},
		{
			name: "custom_selectors",
			html: `<html><body><h1>Site</h1><article><h2 class="headline">Story</h2>
				<p>Ignored.</p><div class="txt">Kept.</div></article></body></html>`,
			options: []extract.Option{
				extract.WithTitleSelector("h2.headline"),
				extract.WithParagraphSelector("div.txt"),
			},
			expectedTitle: "Story",
			expectedBody:  "Kept.",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := &MockFetcher{htmlContent: tc.html, fetchError: tc.fetchErr}
			extractor, err := extract.NewExtractor(fetcher, tc.options...)
			assert.NoError(t, err)

			url := "https://example.com/" + tc.name
			title, body, err := extractor.FetchArticle(context.Background(), url)
			assert.Equal(t, url, fetcher.calledURL)

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				assert.Empty(t, title)
				assert.Empty(t, body)
				return
			}
			assert.NoError(t, err, "予期せぬエラーが発生しました")
			assert.Equal(t, tc.expectedTitle, title)
			assert.Equal(t, tc.expectedBody, body)
		})
	}
}
