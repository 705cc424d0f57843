package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/mmcdole/gofeed"
	"github.com/spf13/cobra"

	"github.com/shouni/go-article-metrics/pkg/feed"
	"github.com/shouni/go-article-metrics/pkg/report"
	"github.com/shouni/go-article-metrics/pkg/types"
)

// フィードURLを保持するフラグ変数
var (
	feedURL      string
	feedOutput   string
	feedIDPrefix string
)

// runFeedPipeline は、フィードを取得して入力テーブルの行を作るメインロジックです。
func runFeedPipeline(url string, parser *feed.Parser) (*gofeed.Feed, []types.Row, error) {
	ctx, cancel := context.WithTimeout(context.Background(), overallTimeout())
	defer cancel()

	return parser.Rows(ctx, url, feedIDPrefix)
}

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "RSS/Atomフィードの記事URLから analyze 用の入力テーブルを作成します",
	Long:  `指定されたURLからRSSまたはAtomフィードを取得し、各記事のリンクを URL_ID と URL の2列からなる入力テーブルとして書き出します。`,
	Args:  cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		processedURL, err := ensureScheme(feedURL)
		if err != nil {
			return fmt.Errorf("URLスキームの処理エラー: %w", err)
		}
		log.Printf("処理対象フィードURL: %s (全体タイムアウト: %s)", processedURL, overallTimeout())

		fetcher := GetGlobalFetcher()
		if fetcher == nil {
			return fmt.Errorf("HTTPクライアントの取得に失敗しました")
		}
		parser := feed.NewParser(fetcher)

		parsedFeed, rows, err := runFeedPipeline(processedURL, parser)
		if err != nil {
			return fmt.Errorf("入力テーブルを作成できません: %w", err)
		}
		if err := report.WriteTable(feedOutput, report.NewTable(rows)); err != nil {
			return fmt.Errorf("入力テーブルの書き込みエラー: %w", err)
		}

		fmt.Printf("--- フィード解析結果 ---\n")
		fmt.Printf("フィードタイトル: %s\n", parsedFeed.Title)
		fmt.Printf("合計記事数: %d\n", len(rows))
		fmt.Println("-----------------------")
		for _, row := range rows {
			fmt.Printf("[%s] %s\n", row.ID, row.URL)
		}
		fmt.Printf("\n入力テーブルを書き出しました: %s\n", feedOutput)

		return nil
	},
}

func init() {
	feedCmd.Flags().StringVarP(&feedURL, "url", "u", "", "解析対象のフィード (RSS/Atom) URL")
	feedCmd.Flags().StringVarP(&feedOutput, "output", "o", "Input.xlsx", "書き出す入力テーブルのパス (.xlsx または .csv)")
	feedCmd.Flags().StringVar(&feedIDPrefix, "id-prefix", "", "URL_ID の接頭辞")

	feedCmd.MarkFlagRequired("url")
}
