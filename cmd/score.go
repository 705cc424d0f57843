package cmd

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/shouni/go-article-metrics/pkg/analyzer"
	"github.com/shouni/go-article-metrics/pkg/extract"
	"github.com/shouni/go-article-metrics/pkg/types"
)

var (
	rawUrl   string
	textFile string
)

// scoreOutput は score コマンドの出力形式です。
type scoreOutput struct {
	Source  string          `yaml:"source"`
	Title   string          `yaml:"title,omitempty"`
	Metrics types.MetricSet `yaml:"metrics"`
}

// runScorePipeline は1件の記事を取得して指標を計算します。
func runScorePipeline(rawURL string, extractor *extract.Extractor, az *analyzer.Analyzer) (*scoreOutput, error) {
	ctx, cancel := context.WithTimeout(context.Background(), overallTimeout())
	defer cancel()

	title, body, err := extractor.FetchArticle(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("記事の取得エラー (URL: %s): %w", rawURL, err)
	}

	metrics, err := az.Analyze(body)
	if err != nil {
		return nil, fmt.Errorf("本文の分析エラー (URL: %s): %w", rawURL, err)
	}
	return &scoreOutput{Source: rawURL, Title: title, Metrics: metrics}, nil
}

// readURLFromStdin は標準入力から処理対象のURLを1行読み込みます。
func readURLFromStdin() (string, error) {
	log.Println("URLが指定されていないため、標準入力からURLを読み込みます...")
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("処理するURLを入力してください: ")

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("標準入力の読み取りエラー: %w", err)
		}
		return "", fmt.Errorf("URLが入力されていません")
	}
	return strings.TrimSpace(scanner.Text()), nil
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "1件の記事URLまたはテキストファイルの指標を計算し、YAMLで表示します",
	Long:  `指定されたURLの記事 (またはローカルのテキストファイル) について13指標を計算し、YAML形式で標準出力に表示します。`,
	Args:  cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cfg == nil {
			return fmt.Errorf("設定が初期化されていません")
		}

		az, err := loadAnalyzer(cfg)
		if err != nil {
			return err
		}

		var out *scoreOutput
		if textFile != "" {
			// ローカルのテキストファイルは取得を行わずにそのまま分析
			data, err := os.ReadFile(textFile)
			if err != nil {
				return fmt.Errorf("テキストファイルの読み込みエラー: %w", err)
			}
			metrics, err := az.Analyze(string(data))
			if err != nil {
				return fmt.Errorf("本文の分析エラー (パス: %s): %w", textFile, err)
			}
			out = &scoreOutput{Source: textFile, Metrics: metrics}
		} else {
			urlToProcess := rawUrl
			if urlToProcess == "" {
				if urlToProcess, err = readURLFromStdin(); err != nil {
					return err
				}
			}

			processedURL, err := ensureScheme(urlToProcess)
			if err != nil {
				return fmt.Errorf("URLスキームの処理エラー: %w", err)
			}
			log.Printf("処理対象URL: %s (全体タイムアウト: %s)\n", processedURL, overallTimeout())

			extractor, err := newExtractor(cfg)
			if err != nil {
				return fmt.Errorf("Extractorの初期化エラー: %w", err)
			}
			if out, err = runScorePipeline(processedURL, extractor, az); err != nil {
				return err
			}
		}

		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(out)
	},
}

func init() {
	scoreCmd.Flags().StringVarP(&rawUrl, "url", "u", "", "分析対象の記事URL")
	scoreCmd.Flags().StringVarP(&textFile, "file", "f", "", "分析対象のテキストファイル (指定時はURLを取得しません)")
}
