package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultFileName はカレントディレクトリで探す設定ファイル名です。
	DefaultFileName = "article-metrics.yaml"
	// EnvDBPath は db.path を上書きする環境変数です。
	EnvDBPath = "ARTICLE_METRICS_DB"

	DefaultTimeoutSec = 10
)

// Config はアプリケーション全体の設定です。
type Config struct {
	Lexicons struct {
		StopWords []string `yaml:"stop_words"`
		Positive  string   `yaml:"positive"`
		Negative  string   `yaml:"negative"`
	} `yaml:"lexicons"`

	IO struct {
		Input     string `yaml:"input"`
		Output    string `yaml:"output"`
		Artifacts string `yaml:"artifacts"`
	} `yaml:"io"`

	HTTP struct {
		TimeoutSec int     `yaml:"timeout_sec"`
		MaxRetries int     `yaml:"max_retries"`
		RateLimit  float64 `yaml:"rate_limit"` // 1秒あたりのリクエスト数。0 は無制限
	} `yaml:"http"`

	Extract struct {
		TitleSelector     string `yaml:"title_selector"`
		ParagraphSelector string `yaml:"paragraph_selector"`
	} `yaml:"extract"`

	DB struct {
		Path string `yaml:"path"` // 空の場合は保存しない
	} `yaml:"db"`
}

// LoadConfig は設定を読み込みます。
// path が空の場合はカレントディレクトリの DefaultFileName を探し、なければ既定値を使います。
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		if _, err := os.Stat(DefaultFileName); err == nil {
			path = DefaultFileName
		}
	}

	if path == "" {
		return getDefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("設定ファイルの読み込みに失敗しました (パス: %s): %w", path, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("設定ファイルのパースに失敗しました (パス: %s): %w", path, err)
	}

	mergeWithEnv(&config)
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() *Config {
	config := &Config{}
	applyDefaults(config)
	mergeWithEnv(config)
	return config
}

func applyDefaults(config *Config) {
	if len(config.Lexicons.StopWords) == 0 {
		config.Lexicons.StopWords = []string{"StopWords/Stopwords.txt"}
	}
	if config.Lexicons.Positive == "" {
		config.Lexicons.Positive = "MasterDict/positive-words.txt"
	}
	if config.Lexicons.Negative == "" {
		config.Lexicons.Negative = "MasterDict/negative-words.txt"
	}

	if config.IO.Input == "" {
		config.IO.Input = "Input.xlsx"
	}
	if config.IO.Output == "" {
		config.IO.Output = "Output.xlsx"
	}
	if config.IO.Artifacts == "" {
		config.IO.Artifacts = "article_texts"
	}

	if config.HTTP.TimeoutSec == 0 {
		config.HTTP.TimeoutSec = DefaultTimeoutSec
	}

	if config.Extract.TitleSelector == "" {
		config.Extract.TitleSelector = "h1"
	}
	if config.Extract.ParagraphSelector == "" {
		config.Extract.ParagraphSelector = "p"
	}
}

func mergeWithEnv(config *Config) {
	if dbPath := os.Getenv(EnvDBPath); dbPath != "" {
		config.DB.Path = dbPath
	}
}
