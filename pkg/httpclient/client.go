package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html/charset"

	"github.com/shouni/go-article-metrics/pkg/retry"
)

const (
	// HTTPクライアント関連の定数
	DefaultHTTPTimeout = 30 * time.Second
	MaxBodySize        = int64(10 * 1024 * 1024) // 10MB: レスポンスボディの最大読み込みサイズ

	// エラーメッセージに含めるボディの最大長
	maxErrorBodyLength = 1024

	// サイトからのブロックを避けるためのUser-Agent
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.0.0 Safari/537.36"
)

// ErrBodyTooLarge はレスポンスボディが MaxBodySize を超えた場合のエラーです。
var ErrBodyTooLarge = fmt.Errorf("レスポンスボディが最大サイズ (%dバイト) を超えました", MaxBodySize)

// Doer は、標準の *http.Client.Do() と互換性のあるHTTPクライアントのインターフェースを定義します。
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// NonRetryableHTTPError はHTTP 4xx系のステータスコードエラーを示すカスタムエラー型です。
type NonRetryableHTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *NonRetryableHTTPError) Error() string {
	body := strings.TrimSpace(string(e.Body))
	if body == "" {
		return fmt.Sprintf("HTTPクライアントエラー (非リトライ対象): ステータスコード %d, ボディなし", e.StatusCode)
	}
	if len(body) > maxErrorBodyLength {
		body = body[:maxErrorBodyLength] + "..."
	}
	return fmt.Sprintf("HTTPクライアントエラー (非リトライ対象): ステータスコード %d, ボディ: %s", e.StatusCode, body)
}

// Client はHTTPリクエストと指数バックオフを用いたリトライロジックを管理します。
type Client struct {
	httpClient  Doer
	retryConfig retry.Config
}

// Option はClientの設定を行うための関数型です。
type Option func(*Client)

// WithHTTPClient はカスタムのDoerを設定します。
func WithHTTPClient(doer Doer) Option {
	return func(c *Client) {
		c.httpClient = doer
	}
}

// WithMaxRetries は最大リトライ回数を設定します。0 の場合は1回だけ試行します。
func WithMaxRetries(max uint64) Option {
	return func(c *Client) {
		c.retryConfig.MaxRetries = max
	}
}

// New は、新しいClientを生成します。timeout が0以下の場合は DefaultHTTPTimeout を使います。
func New(timeout time.Duration, options ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}

	c := &Client{
		httpClient:  &http.Client{Timeout: timeout},
		retryConfig: retry.DefaultConfig(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// FetchBytes はURLからコンテンツを取得し、UTF-8に変換したバイト配列を返します。
func (c *Client) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	var body []byte

	op := func() error {
		var fetchErr error
		body, fetchErr = c.doFetch(ctx, url)
		return fetchErr
	}

	err := retry.Do(
		ctx,
		c.retryConfig,
		fmt.Sprintf("URL(%s)のフェッチ", url),
		op,
		isHTTPRetryableError,
	)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// doFetch は1回分のHTTP GETリクエストを実行します。
func (c *Client) doFetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &permanentError{fmt.Errorf("GETリクエスト作成に失敗しました: %w", err)}
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストに失敗しました (ネットワーク/接続エラー): %w", err)
	}
	defer resp.Body.Close()

	if err := checkResponseForRetry(resp); err != nil {
		return nil, err
	}

	raw, err := readLimited(resp.Body)
	if err != nil {
		return nil, err
	}

	return decodeToUTF8(raw, resp.Header.Get("Content-Type")), nil
}

// readLimited はボディを MaxBodySize まで読み込みます。超過した場合は ErrBodyTooLarge を返します。
func readLimited(r io.Reader) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(r, MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("レスポンスボディの読み込みに失敗しました: %w", err)
	}
	if int64(len(raw)) > MaxBodySize {
		return nil, ErrBodyTooLarge
	}
	return raw, nil
}

// decodeToUTF8 は Content-Type と meta タグから文字コードを判定し、UTF-8 に変換します。
// 既に UTF-8 として妥当な場合や、判定・変換に失敗した場合は元のバイト列を返します。
func decodeToUTF8(raw []byte, contentType string) []byte {
	if utf8.Valid(raw) {
		return raw
	}
	r, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		return raw
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return raw
	}
	return decoded
}

// checkResponseForRetry はHTTPレスポンスのステータスコードを評価し、リトライすべきエラーか、非リトライ対象のエラーかを返します。
// 呼び出し元が resp.Body.Close() を実行する必要があります。
func checkResponseForRetry(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return nil
	}

	bodyBytes, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLength+1))

	// 5xx 系: リトライ対象のサーバーエラー
	if resp.StatusCode >= 500 && resp.StatusCode <= 599 {
		if readErr != nil {
			return fmt.Errorf("HTTPステータスコードエラー (5xx リトライ対象, ボディ読み込み失敗): %d, 原因: %w", resp.StatusCode, readErr)
		}
		return fmt.Errorf("HTTPステータスコードエラー (5xx リトライ対象): %d, 詳細: %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}

	// それ以外: 非リトライ対象
	if readErr != nil {
		return &NonRetryableHTTPError{StatusCode: resp.StatusCode}
	}
	return &NonRetryableHTTPError{StatusCode: resp.StatusCode, Body: bodyBytes}
}

// permanentError はリクエストの組み立てなど、再試行しても結果が変わらないエラーです。
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// IsNonRetryableError は与えられたエラーが非リトライ対象のHTTPエラーであるかを判断します。
func IsNonRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var nonRetryable *NonRetryableHTTPError
	return errors.As(err, &nonRetryable)
}

// isHTTPRetryableError はエラーがHTTPリトライ対象かどうかを判定します。
// この関数は retry.ShouldRetryFunc 型のシグネチャを満たします。
func isHTTPRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// Contextエラー（タイムアウト/キャンセル）はリトライ対象。打ち切りはバックオフ側が判断する
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var perm *permanentError
	if IsNonRetryableError(err) || errors.Is(err, ErrBodyTooLarge) || errors.As(err, &perm) {
		return false
	}

	// 5xxエラーやネットワークエラーはすべてリトライ対象
	return true
}
