package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv(EnvDBPath, "")

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	configData := `
lexicons:
  stop_words:
    - "StopWords/StopWords_Generic.txt"
    - "StopWords/StopWords_Names.txt"
  positive: "dict/pos.txt"
  negative: "dict/neg.txt"

io:
  input: "urls.csv"
  output: "report.csv"
  artifacts: "texts"

http:
  timeout_sec: 20
  max_retries: 2
  rate_limit: 1.5

extract:
  title_selector: "h1.entry-title"

db:
  path: "metrics.db"
`
	require.NoError(t, os.WriteFile(configPath, []byte(configData), 0644))

	config, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, []string{"StopWords/StopWords_Generic.txt", "StopWords/StopWords_Names.txt"}, config.Lexicons.StopWords)
	assert.Equal(t, "dict/pos.txt", config.Lexicons.Positive)
	assert.Equal(t, "dict/neg.txt", config.Lexicons.Negative)
	assert.Equal(t, "urls.csv", config.IO.Input)
	assert.Equal(t, "report.csv", config.IO.Output)
	assert.Equal(t, "texts", config.IO.Artifacts)
	assert.Equal(t, 20, config.HTTP.TimeoutSec)
	assert.Equal(t, 2, config.HTTP.MaxRetries)
	assert.Equal(t, 1.5, config.HTTP.RateLimit)
	assert.Equal(t, "h1.entry-title", config.Extract.TitleSelector)
	assert.Equal(t, "p", config.Extract.ParagraphSelector, "未指定の項目は既定値")
	assert.Equal(t, "metrics.db", config.DB.Path)
	assert.Empty(t, config.Validate())
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv(EnvDBPath, "")
	// カレントディレクトリに設定ファイルがない状態にする
	t.Chdir(t.TempDir())

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, []string{"StopWords/Stopwords.txt"}, config.Lexicons.StopWords)
	assert.Equal(t, "MasterDict/positive-words.txt", config.Lexicons.Positive)
	assert.Equal(t, "MasterDict/negative-words.txt", config.Lexicons.Negative)
	assert.Equal(t, "Input.xlsx", config.IO.Input)
	assert.Equal(t, "Output.xlsx", config.IO.Output)
	assert.Equal(t, "article_texts", config.IO.Artifacts)
	assert.Equal(t, DefaultTimeoutSec, config.HTTP.TimeoutSec)
	assert.Zero(t, config.HTTP.MaxRetries)
	assert.Zero(t, config.HTTP.RateLimit)
	assert.Equal(t, "h1", config.Extract.TitleSelector)
	assert.Empty(t, config.DB.Path)
	assert.Empty(t, config.Validate())
}

func TestLoadConfig_DefaultFileInWorkingDir(t *testing.T) {
	t.Setenv(EnvDBPath, "")
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFileName), []byte("io:\n  output: out.csv\n"), 0644))

	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "out.csv", config.IO.Output)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv(EnvDBPath, "/tmp/env.db")

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("db:\n  path: file.db\n"), 0644))

	config, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/env.db", config.DB.Path)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("http: [unclosed"), 0644))
	_, err = LoadConfig(bad)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	config := getDefaultConfig()
	config.Lexicons.StopWords = []string{"ok.txt", " "}
	config.IO.Input = "input.json"
	config.HTTP.MaxRetries = 11
	config.HTTP.RateLimit = -1
	config.HTTP.TimeoutSec = -5

	errs := config.Validate()
	fields := make([]string, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{
		"lexicons.stop_words[1]",
		"io.input",
		"http.max_retries",
		"http.rate_limit",
		"http.timeout_sec",
	}, fields)
	assert.Equal(t, "io.input: .xlsx または .csv ファイルを指定してください", errs[1].Error())
}
