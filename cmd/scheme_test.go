package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnsureScheme(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"https kept", "https://example.com/a", "https://example.com/a", false},
		{"http kept", "http://example.com", "http://example.com", false},
		{"scheme added", "example.com/news", "https://example.com/news", false},
		{"trimmed", "  example.com ", "https://example.com", false},
		{"ftp rejected", "ftp://example.com", "", true},
		{"empty", "   ", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ensureScheme(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
