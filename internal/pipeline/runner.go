package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/time/rate"

	"github.com/shouni/go-article-metrics/pkg/analyzer"
	"github.com/shouni/go-article-metrics/pkg/artifact"
	"github.com/shouni/go-article-metrics/pkg/types"
)

// ----------------------------------------------------------------------
// 依存性の定義
// ----------------------------------------------------------------------

// Fetcher は URL から記事のタイトルと本文を取得します。*extract.Extractor がこれを満たします。
type Fetcher interface {
	FetchArticle(ctx context.Context, url string) (title string, body string, err error)
}

// Analyzer は本文テキストから指標を算出します。*analyzer.Analyzer がこれを満たします。
type Analyzer interface {
	Analyze(text string) (types.MetricSet, error)
}

// ArtifactStore は行ごとのテキスト成果物を保存します。*artifact.Store がこれを満たします。
type ArtifactStore interface {
	SaveText(id, title, body string) error
	SaveError(id, message string) error
}

// Recorder は行ごとの処理結果を受け取ります。*resultdb.DB がこれを満たします。
type Recorder interface {
	Record(ctx context.Context, res types.Result) error
}

// Runner は入力行を1行ずつ順番に処理します。
// 取得失敗と指標の計算不能は行単位のエラー成果物として記録して次の行へ進み、
// それ以外のエラーは処理全体を中断します。
type Runner struct {
	fetcher  Fetcher
	analyzer Analyzer
	store    ArtifactStore

	recorder     Recorder
	limiter      *rate.Limiter
	fetchTimeout time.Duration
	onProgress   func(types.Result)
	verbose      bool
}

// Option は Runner の設定を行うための関数型です。
type Option func(*Runner)

// WithRecorder は処理結果の保存先を設定します。
func WithRecorder(rec Recorder) Option {
	return func(r *Runner) {
		r.recorder = rec
	}
}

// WithRateLimit は1秒あたりの取得回数の上限を設定します。0以下の場合は無制限です。
func WithRateLimit(perSecond float64) Option {
	return func(r *Runner) {
		if perSecond > 0 {
			r.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithFetchTimeout は1行あたりの取得処理のタイムアウトを設定します。0以下の場合は設定しません。
func WithFetchTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.fetchTimeout = d
	}
}

// WithProgress は各行の処理完了時に呼ばれるコールバックを設定します。
func WithProgress(fn func(types.Result)) Option {
	return func(r *Runner) {
		r.onProgress = fn
	}
}

// WithVerbose は詳細ログの出力を切り替えます。
func WithVerbose(verbose bool) Option {
	return func(r *Runner) {
		r.verbose = verbose
	}
}

// New は Runner を生成します。
func New(fetcher Fetcher, analyzer Analyzer, store ArtifactStore, options ...Option) (*Runner, error) {
	if fetcher == nil || analyzer == nil || store == nil {
		return nil, fmt.Errorf("pipeline.New: Fetcher, Analyzer, ArtifactStore はすべて必須です")
	}
	r := &Runner{
		fetcher:  fetcher,
		analyzer: analyzer,
		store:    store,
		limiter:  rate.NewLimiter(rate.Inf, 1),
	}
	for _, opt := range options {
		opt(r)
	}
	return r, nil
}

// Run は rows を入力順に処理し、行ごとの結果を同じ順序で返します。
// 中断した場合は、それまでに処理した行の結果とエラーを返します。
func (r *Runner) Run(ctx context.Context, rows []types.Row) ([]types.Result, error) {
	results := make([]types.Result, 0, len(rows))

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return results, fmt.Errorf("処理が中断されました (%d/%d 行完了): %w", i, len(rows), err)
		}

		res, err := r.processRow(ctx, row)
		if err != nil {
			return results, fmt.Errorf("行の処理に失敗しました (URL_ID: %s): %w", row.ID, err)
		}

		if r.recorder != nil {
			if err := r.recorder.Record(ctx, res); err != nil {
				return results, err
			}
		}

		results = append(results, res)
		if r.onProgress != nil {
			r.onProgress(res)
		}
	}
	return results, nil
}

// processRow は1行を処理します。返されるエラーは処理全体を中断すべきものだけです。
func (r *Runner) processRow(ctx context.Context, row types.Row) (types.Result, error) {
	res := types.Result{Row: row}

	if err := r.limiter.Wait(ctx); err != nil {
		return res, fmt.Errorf("レートリミッターの待機中に中断されました: %w", err)
	}

	title, body, err := r.fetch(ctx, row.URL)
	if err != nil {
		// 呼び出し元のコンテキストが終了している場合は行単位の失敗ではなく中断として扱う
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, ctxErr
		}
		res.Err = err
		if saveErr := r.store.SaveError(row.ID, artifact.ErrorMessage(row.URL, err)); saveErr != nil {
			return res, saveErr
		}
		if r.verbose {
			log.Printf("記事 %s を開けませんでした。エラーメッセージを保存しました。", row.ID)
			log.Printf("  URL: %s, エラー: %v", row.URL, err)
		}
		return res, nil
	}

	metrics, err := r.analyzer.Analyze(body)
	if err != nil {
		if !errors.Is(err, analyzer.ErrNotComputable) {
			return res, fmt.Errorf("本文の分析に失敗しました: %w", err)
		}
		res.Title = title
		res.Err = err
		if saveErr := r.store.SaveError(row.ID, artifact.AnalysisErrorMessage(row.URL, err)); saveErr != nil {
			return res, saveErr
		}
		if r.verbose {
			log.Printf("記事 %s の指標を計算できませんでした。エラーメッセージを保存しました。", row.ID)
		}
		return res, nil
	}

	if err := r.store.SaveText(row.ID, title, body); err != nil {
		return res, err
	}
	res.Title = title
	res.Metrics = &metrics

	if r.verbose {
		log.Printf("記事 %s を取得・分析しました。", row.ID)
		log.Printf("  タイトル: %s, 語数: %d, Fog Index: %.2f", title, metrics.WordCount, metrics.FogIndex)
	}
	return res, nil
}

func (r *Runner) fetch(ctx context.Context, url string) (string, string, error) {
	if r.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.fetchTimeout)
		defer cancel()
	}
	return r.fetcher.FetchArticle(ctx, url)
}

// Summary は処理結果の件数です。
type Summary struct {
	Total  int
	OK     int
	Failed int
}

// Summarize は結果を成功と失敗に集計します。
func Summarize(results []types.Result) Summary {
	s := Summary{Total: len(results)}
	for _, res := range results {
		if res.OK() {
			s.OK++
		} else {
			s.Failed++
		}
	}
	return s
}
