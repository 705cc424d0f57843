package cmd

import (
	"errors"
	"fmt"
	"log"
	"time"

	clibase "github.com/shouni/go-cli-base"
	"github.com/spf13/cobra"

	"github.com/shouni/go-article-metrics/pkg/config"
	"github.com/shouni/go-article-metrics/pkg/httpclient"
)

// --- グローバル定数 ---

const (
	appName           = "article-metrics"
	defaultTimeoutSec = config.DefaultTimeoutSec // 秒
	defaultMaxRetries = 0                        // 既定では再試行しない

	// 1行あたりの全体タイムアウトはクライアントタイムアウトの何倍か
	overallTimeoutFactor = 2
	// クライアントタイムアウトが0の場合の全体タイムアウト
	DefaultOverallTimeout = 20 * time.Second
)

// --- グローバル変数とフラグ構造体 ---

// AppFlags はこのアプリケーション固有の永続フラグを保持
type AppFlags struct {
	TimeoutSec int    // --timeout タイムアウト
	MaxRetries int    // --max-retries リトライ回数
	ConfigFile string // --config-file 設定ファイルのパス
}

var Flags AppFlags
var appConfig *config.Config
var globalFetcher *httpclient.Client

// --- 初期化とロジック (clibaseへのコールバックとして利用) ---

// addAppPersistentFlags は、アプリケーション固有の永続フラグをルートコマンドに追加します。
func addAppPersistentFlags(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().IntVar(
		&Flags.TimeoutSec,
		"timeout",
		defaultTimeoutSec,
		"HTTPリクエストのタイムアウト時間（秒）",
	)
	rootCmd.PersistentFlags().IntVar(
		&Flags.MaxRetries,
		"max-retries",
		defaultMaxRetries,
		"HTTPリクエストのリトライ最大回数 (0 は1回のみ試行)",
	)
	rootCmd.PersistentFlags().StringVar(
		&Flags.ConfigFile,
		"config-file",
		"",
		fmt.Sprintf("設定ファイルのパス (未指定時は %s を探します)", config.DefaultFileName),
	)
}

// initAppPreRunE は、clibase共通処理の後に実行される、アプリケーション固有のPersistentPreRunEです。
// 設定ファイルを読み込み、明示的に指定されたフラグで上書きした後、共有フェッチャーを初期化します。
func initAppPreRunE(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(Flags.ConfigFile)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("timeout") {
		cfg.HTTP.TimeoutSec = Flags.TimeoutSec
	}
	if cmd.Flags().Changed("max-retries") {
		cfg.HTTP.MaxRetries = Flags.MaxRetries
	}

	if verrs := cfg.Validate(); len(verrs) > 0 {
		errs := make([]error, 0, len(verrs))
		for _, v := range verrs {
			errs = append(errs, v)
		}
		return fmt.Errorf("設定が不正です: %w", errors.Join(errs...))
	}
	appConfig = cfg

	timeout := time.Duration(cfg.HTTP.TimeoutSec) * time.Second

	if clibase.Flags.Verbose {
		log.Printf("HTTPクライアントのタイムアウトを設定しました (Timeout: %s)。", timeout)
		log.Printf("HTTPクライアントのリトライ回数を設定しました (MaxRetries: %d)。", cfg.HTTP.MaxRetries)
	}

	globalFetcher = httpclient.New(
		timeout,
		httpclient.WithMaxRetries(uint64(cfg.HTTP.MaxRetries)),
	)

	return nil
}

// GetGlobalFetcher は、初期化されたフェッチャーを返す関数 (DIの代わり)
func GetGlobalFetcher() *httpclient.Client {
	return globalFetcher
}

// GetConfig は、PreRun で読み込んだ設定を返します。
func GetConfig() *config.Config {
	return appConfig
}

// overallTimeout は1件の取得処理全体 (リトライ含む) のタイムアウトを返します。
func overallTimeout() time.Duration {
	cfg := GetConfig()
	if cfg == nil || cfg.HTTP.TimeoutSec <= 0 {
		return DefaultOverallTimeout
	}
	return time.Duration(cfg.HTTP.TimeoutSec*overallTimeoutFactor) * time.Second
}

// --- エントリポイント ---

// Execute は、clibase を使ってルートコマンドを組み立てて実行します。
func Execute() {
	clibase.Execute(
		appName,
		addAppPersistentFlags,
		initAppPreRunE,
		analyzeCmd,
		scoreCmd,
		feedCmd,
	)
	// clibase.Execute() の中で os.Exit(1) が処理されるため、ここでは不要
}
