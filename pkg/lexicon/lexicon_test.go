package lexicon

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeList(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeList(t, dir, "positive-words.txt", "Good\n  happy  \n\n\nEXCELLENT\r\ngood\n")

	l, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, l.Len())
	assert.True(t, l.Contains("good"))
	assert.True(t, l.Contains("happy"))
	assert.True(t, l.Contains("excellent"))
	assert.False(t, l.Contains("Good"), "Contains は小文字化済みの単語を前提とする")
	assert.False(t, l.Contains(""))
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.txt"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Contains(t, err.Error(), "missing.txt")
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	a := writeList(t, dir, "StopWords_Generic.txt", "the\nand\n")
	b := writeList(t, dir, "StopWords_Names.txt", "JOHN | Surnames\nmary\n")

	l, err := LoadAll(a, b)
	require.NoError(t, err)
	assert.Equal(t, 4, l.Len())
	assert.True(t, l.Contains("the"))
	assert.True(t, l.Contains("mary"))
	assert.True(t, l.Contains("john | surnames"), "行全体が1語として扱われる")

	_, err = LoadAll()
	assert.Error(t, err)

	_, err = LoadAll(a, filepath.Join(dir, "nope.txt"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRead(t *testing.T) {
	l, err := Read(strings.NewReader("Alpha\nbeta\n"))
	require.NoError(t, err)
	assert.True(t, l.Contains("alpha"))
	assert.True(t, l.Contains("beta"))
}

func TestNilLexicon(t *testing.T) {
	var l *Lexicon
	assert.False(t, l.Contains("anything"))
	assert.Equal(t, 0, l.Len())
}
