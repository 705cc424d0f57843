package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	clibase "github.com/shouni/go-cli-base"
	"github.com/spf13/cobra"

	"github.com/shouni/go-article-metrics/internal/pipeline"
	"github.com/shouni/go-article-metrics/pkg/analyzer"
	"github.com/shouni/go-article-metrics/pkg/artifact"
	"github.com/shouni/go-article-metrics/pkg/config"
	"github.com/shouni/go-article-metrics/pkg/extract"
	"github.com/shouni/go-article-metrics/pkg/lexicon"
	"github.com/shouni/go-article-metrics/pkg/report"
	"github.com/shouni/go-article-metrics/pkg/resultdb"
	"github.com/shouni/go-article-metrics/pkg/types"
)

// コマンドラインフラグ変数を定義
var (
	inputPath    string
	outputPath   string
	artifactsDir string
	dbPath       string
	rateLimit    float64
)

// loadAnalyzer は設定された3つの単語リストを読み込み、Analyzer を生成します。
// 単語リストが見つからない場合は、行を処理する前に実行全体を失敗させます。
func loadAnalyzer(cfg *config.Config) (*analyzer.Analyzer, error) {
	stop, err := lexicon.LoadAll(cfg.Lexicons.StopWords...)
	if err != nil {
		return nil, fmt.Errorf("ストップワードの読み込みエラー: %w", err)
	}
	positive, err := lexicon.Load(cfg.Lexicons.Positive)
	if err != nil {
		return nil, fmt.Errorf("ポジティブ辞書の読み込みエラー: %w", err)
	}
	negative, err := lexicon.Load(cfg.Lexicons.Negative)
	if err != nil {
		return nil, fmt.Errorf("ネガティブ辞書の読み込みエラー: %w", err)
	}

	if clibase.Flags.Verbose {
		log.Printf("単語リストを読み込みました (ストップワード: %d, ポジティブ: %d, ネガティブ: %d)", stop.Len(), positive.Len(), negative.Len())
	}

	return analyzer.New(analyzer.Config{StopWords: stop, Positive: positive, Negative: negative})
}

// newExtractor は共有フェッチャーと設定済みのセレクターで Extractor を生成します。
func newExtractor(cfg *config.Config) (*extract.Extractor, error) {
	fetcher := GetGlobalFetcher()
	if fetcher == nil {
		return nil, fmt.Errorf("HTTPクライアントの取得に失敗しました")
	}
	return extract.NewExtractor(fetcher,
		extract.WithTitleSelector(cfg.Extract.TitleSelector),
		extract.WithParagraphSelector(cfg.Extract.ParagraphSelector),
	)
}

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("articles"),
		progressbar.OptionShowCount(),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// runAnalyzePipeline は、入力テーブルの全行を処理し、出力テーブルを書き出すメインロジックです。
func runAnalyzePipeline(ctx context.Context, cfg *config.Config) (pipeline.Summary, error) {
	// 1. 単語リスト (欠落は致命的)
	az, err := loadAnalyzer(cfg)
	if err != nil {
		return pipeline.Summary{}, err
	}

	// 2. 入力テーブル
	table, err := report.Read(cfg.IO.Input)
	if err != nil {
		return pipeline.Summary{}, fmt.Errorf("入力テーブルの読み込みエラー: %w", err)
	}
	log.Printf("入力テーブルを読み込みました (パス: %s, 行数: %d)", cfg.IO.Input, len(table.Rows))
	if dups := table.DuplicateIDs(); len(dups) > 0 {
		color.Yellow("警告: URL_ID が重複しています。後の行の成果物で上書きされます: %v\n", dups)
	}

	// 3. 依存性の初期化
	extractor, err := newExtractor(cfg)
	if err != nil {
		return pipeline.Summary{}, fmt.Errorf("Extractorの初期化エラー: %w", err)
	}

	bar := getProgressBar(len(table.Rows), "記事を処理中")
	options := []pipeline.Option{
		pipeline.WithFetchTimeout(overallTimeout()),
		pipeline.WithRateLimit(cfg.HTTP.RateLimit),
		pipeline.WithVerbose(clibase.Flags.Verbose),
		pipeline.WithProgress(func(res types.Result) {
			bar.Describe(color.BlueString("記事 %s", res.Row.ID))
			bar.Add(1)
		}),
	}

	if cfg.DB.Path != "" {
		db, err := resultdb.Open(cfg.DB.Path)
		if err != nil {
			return pipeline.Summary{}, err
		}
		defer db.Close()
		options = append(options, pipeline.WithRecorder(db))
		log.Printf("処理結果をデータベースに保存します (パス: %s)", cfg.DB.Path)
	}

	runner, err := pipeline.New(extractor, az, artifact.NewStore(cfg.IO.Artifacts), options...)
	if err != nil {
		return pipeline.Summary{}, err
	}

	// 4. メインロジックの実行
	results, err := runner.Run(ctx, table.Rows)
	bar.Finish()
	if err != nil {
		return pipeline.Summarize(results), fmt.Errorf("パイプラインの実行エラー: %w", err)
	}

	// 5. 出力テーブル (全行の処理後に1回だけ書き出す)
	if err := report.WriteReport(cfg.IO.Output, table.Header, results); err != nil {
		return pipeline.Summarize(results), fmt.Errorf("出力テーブルの書き込みエラー: %w", err)
	}

	return pipeline.Summarize(results), nil
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "入力テーブルのURLを順に取得し、記事ごとの指標を出力テーブルに書き出します",
	Long: `入力テーブル (.xlsx または .csv、URL_ID と URL の列が必要) の各行について記事を取得し、
可読性と感情の13指標を計算して出力テーブルに追加します。
記事のテキストは <URL_ID>.txt として保存され、取得できなかった行にはエラーメッセージが保存されます。`,
	Args: cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cfg == nil {
			return fmt.Errorf("設定が初期化されていません")
		}

		// フラグが明示的に指定された場合のみ設定ファイルの値を上書き
		if cmd.Flags().Changed("input") {
			cfg.IO.Input = inputPath
		}
		if cmd.Flags().Changed("output") {
			cfg.IO.Output = outputPath
		}
		if cmd.Flags().Changed("artifacts") {
			cfg.IO.Artifacts = artifactsDir
		}
		if cmd.Flags().Changed("db") {
			cfg.DB.Path = dbPath
		}
		if cmd.Flags().Changed("rate-limit") {
			cfg.HTTP.RateLimit = rateLimit
		}
		if verrs := cfg.Validate(); len(verrs) > 0 {
			return fmt.Errorf("設定が不正です: %v", verrs[0])
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		color.Blue("\n%s の記事を分析します\n", cfg.IO.Input)

		summary, err := runAnalyzePipeline(ctx, cfg)
		if err != nil {
			return err
		}

		color.Green("\n✓ 完了: 成功 %d 件, 失敗 %d 件 (合計 %d 件)\n", summary.OK, summary.Failed, summary.Total)
		if summary.Failed > 0 {
			color.Yellow("  失敗した行のエラーメッセージは %s に保存されています\n", cfg.IO.Artifacts)
		}
		color.Green("  出力: %s\n", cfg.IO.Output)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVarP(&inputPath, "input", "i", "", "入力テーブルのパス (.xlsx または .csv)")
	analyzeCmd.Flags().StringVarP(&outputPath, "output", "o", "", "出力テーブルのパス (.xlsx または .csv)")
	analyzeCmd.Flags().StringVar(&artifactsDir, "artifacts", "", "記事テキストの保存先ディレクトリ")
	analyzeCmd.Flags().StringVar(&dbPath, "db", "", "処理結果を保存する SQLite データベースのパス")
	analyzeCmd.Flags().Float64Var(&rateLimit, "rate-limit", 0, "1秒あたりの取得回数の上限 (0 は無制限)")
}
