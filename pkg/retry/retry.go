package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	// DefaultMaxRetries は既定の再試行回数です。記事取得は1回のみ試行し、失敗した行はそのまま記録します。
	DefaultMaxRetries = 0

	// バックオフのカスタム設定
	InitialBackoffInterval = 500 * time.Millisecond
	MaxBackoffInterval     = 5 * time.Second
)

// Operation はリトライ可能な処理を表す関数です。成功時は nil を返します。
type Operation func() error

// ShouldRetryFunc はエラーを受け取り、そのエラーがリトライ可能かどうかを判定する関数です。
type ShouldRetryFunc func(error) bool

// Config はリトライ動作を設定するための構造体です。
type Config struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultConfig は推奨されるデフォルト設定を返します。
func DefaultConfig() Config {
	return Config{
		MaxRetries:      DefaultMaxRetries,
		InitialInterval: InitialBackoffInterval,
		MaxInterval:     MaxBackoffInterval,
	}
}

// newBackOffPolicy は Config から指数バックオフのポリシーを組み立てます。
func newBackOffPolicy(ctx context.Context, cfg Config) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	if cfg.InitialInterval > 0 {
		b.InitialInterval = cfg.InitialInterval
	}
	if cfg.MaxInterval > 0 {
		b.MaxInterval = cfg.MaxInterval
	}
	// 試行回数で打ち切るため、経過時間による打ち切りは無効にする
	b.MaxElapsedTime = 0

	return backoff.WithContext(backoff.WithMaxRetries(b, cfg.MaxRetries), ctx)
}

// Do は指数バックオフとカスタムエラー判定を使用して操作をリトライします。
// 最初の1回に加えて最大 cfg.MaxRetries 回まで再試行します。
func Do(ctx context.Context, cfg Config, operationName string, op Operation, shouldRetryFn ShouldRetryFunc) error {
	var (
		lastErr  error
		attempts int
	)

	retryableOp := func() error {
		attempts++
		err := op()
		if err == nil {
			return nil
		}
		lastErr = err
		if !shouldRetryFn(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	if err := backoff.Retry(retryableOp, newBackOffPolicy(ctx, cfg)); err == nil {
		return nil
	}

	if lastErr != nil && !shouldRetryFn(lastErr) {
		return fmt.Errorf("%sに失敗しました: リトライ対象外のエラー: %w", operationName, lastErr)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%sに失敗しました: コンテキストタイムアウト/キャンセル: %w", operationName, ctxErr)
	}
	return fmt.Errorf("%sに失敗しました: %d回試行しました。最終エラー: %w", operationName, attempts, lastErr)
}
