package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// maxRetriesLimit は max_retries に許可する上限です。
const maxRetriesLimit = 10

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// 単語リスト
	for i, p := range c.Lexicons.StopWords {
		if strings.TrimSpace(p) == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("lexicons.stop_words[%d]", i),
				Message: "空のパスは指定できません",
			})
		}
	}
	if c.Lexicons.Positive == "" {
		errors = append(errors, ValidationError{Field: "lexicons.positive", Message: "必須です"})
	}
	if c.Lexicons.Negative == "" {
		errors = append(errors, ValidationError{Field: "lexicons.negative", Message: "必須です"})
	}

	// 入出力
	if !isTableFile(c.IO.Input) {
		errors = append(errors, ValidationError{
			Field:   "io.input",
			Message: ".xlsx または .csv ファイルを指定してください",
		})
	}
	if !isTableFile(c.IO.Output) {
		errors = append(errors, ValidationError{
			Field:   "io.output",
			Message: ".xlsx または .csv ファイルを指定してください",
		})
	}
	if c.IO.Artifacts == "" {
		errors = append(errors, ValidationError{Field: "io.artifacts", Message: "必須です"})
	}

	// HTTP
	if c.HTTP.TimeoutSec < 0 {
		errors = append(errors, ValidationError{
			Field:   "http.timeout_sec",
			Message: "0以上を指定してください",
		})
	}
	if c.HTTP.MaxRetries < 0 || c.HTTP.MaxRetries > maxRetriesLimit {
		errors = append(errors, ValidationError{
			Field:   "http.max_retries",
			Message: fmt.Sprintf("0から%dの範囲で指定してください", maxRetriesLimit),
		})
	}
	if c.HTTP.RateLimit < 0 {
		errors = append(errors, ValidationError{
			Field:   "http.rate_limit",
			Message: "0以上を指定してください (0 は無制限)",
		})
	}

	return errors
}

func isTableFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".csv":
		return true
	}
	return false
}
