package analyzer

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"

	"github.com/shouni/go-article-metrics/pkg/lexicon"
	"github.com/shouni/go-article-metrics/pkg/types"
)

// epsilon はスコアのゼロ除算を避けるための加算値です。
const epsilon = 0.000001

var (
	// ErrNotComputable は語数または文数がゼロで、指標を計算できない場合のエラーです。
	ErrNotComputable = errors.New("指標を計算できません")
	// ErrNoWords はストップワード除去後の単語が1つも残らない場合のエラーです。
	ErrNoWords = fmt.Errorf("%w: 有効な単語がありません", ErrNotComputable)
	// ErrNoSentences は文が1つも検出されない場合のエラーです。
	ErrNoSentences = fmt.Errorf("%w: 文がありません", ErrNotComputable)
)

// vowelGroup は1〜2文字の連続した母音にマッチします。音節数の推定に使います。
var vowelGroup = regexp.MustCompile(`[aeiouy]{1,2}`)

// personalPronouns は人称代名詞の集合です。
var personalPronouns = map[string]struct{}{
	"i": {}, "you": {}, "he": {}, "she": {}, "it": {}, "we": {},
	"they": {}, "me": {}, "us": {}, "him": {}, "her": {}, "them": {},
}

// Config は Analyzer が使う3つの単語集合です。
type Config struct {
	StopWords *lexicon.Lexicon
	Positive  *lexicon.Lexicon
	Negative  *lexicon.Lexicon
}

// sentenceTokenizer は文分割の抽象です。
type sentenceTokenizer interface {
	Tokenize(text string) []*sentences.Sentence
}

// Analyzer は記事本文から MetricSet を算出します。状態を持たないため、同じ入力には常に同じ結果を返します。
type Analyzer struct {
	cfg       Config
	tokenizer sentenceTokenizer
}

// New は Analyzer を生成します。文分割には英語の Punkt モデルを使います。
func New(cfg Config) (*Analyzer, error) {
	if cfg.StopWords == nil || cfg.Positive == nil || cfg.Negative == nil {
		return nil, fmt.Errorf("analyzer.New: 単語集合が設定されていません")
	}

	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("文分割器の初期化エラー: %w", err)
	}

	return &Analyzer{
		cfg:       cfg,
		tokenizer: tokenizer,
	}, nil
}

// Analyze は本文テキストの13指標を計算します。
// 語数または文数がゼロの場合は NaN や Inf を返さず、ErrNotComputable をラップしたエラーを返します。
func (a *Analyzer) Analyze(text string) (types.MetricSet, error) {
	words := a.CleanWords(text)
	if len(words) == 0 {
		return types.MetricSet{}, ErrNoWords
	}

	totalSentences := a.CountSentences(text)
	if totalSentences == 0 {
		return types.MetricSet{}, ErrNoSentences
	}

	var m types.MetricSet
	var totalSyllables, totalLength int

	for _, w := range words {
		// 両方の辞書に含まれる語は両方のスコアに数える
		if a.cfg.Positive.Contains(w) {
			m.PositiveScore++
		}
		if a.cfg.Negative.Contains(w) {
			m.NegativeScore++
		}

		syllables := SyllableCount(w)
		totalSyllables += syllables
		if syllables > 2 {
			m.ComplexWordCount++
		}

		if IsPersonalPronoun(w) {
			m.PersonalPronouns++
		}
		totalLength += utf8.RuneCountInString(w)
	}

	totalWords := float64(len(words))
	pos := float64(m.PositiveScore)
	neg := float64(m.NegativeScore)

	m.PolarityScore = (pos - neg) / (pos + neg + epsilon)
	m.SubjectivityScore = (pos + neg) / (totalWords + epsilon)

	m.AvgSentenceLength = totalWords / float64(totalSentences)
	m.PercentageComplexWords = float64(m.ComplexWordCount) / totalWords * 100
	m.FogIndex = 0.4 * (m.AvgSentenceLength + m.PercentageComplexWords)

	m.WordCount = len(words)
	m.SyllablesPerWord = float64(totalSyllables) / totalWords
	m.AvgWordLength = float64(totalLength) / totalWords

	return m, nil
}

// CleanWords は本文をアルファベットのみの語に分割し、小文字化してストップワードを除去します。
func (a *Analyzer) CleanWords(text string) []string {
	var cleaned []string
	for _, token := range Tokenize(text) {
		w := strings.ToLower(token)
		if a.cfg.StopWords.Contains(w) {
			continue
		}
		cleaned = append(cleaned, w)
	}
	return cleaned
}

// CountSentences は空白のみの区間を除いた文の数を返します。
func (a *Analyzer) CountSentences(text string) int {
	n := 0
	for _, s := range a.tokenizer.Tokenize(text) {
		if strings.TrimSpace(s.Text) != "" {
			n++
		}
	}
	return n
}

// Tokenize は文字の最長連続部分を語として切り出します。数字や記号は捨てられます。
func Tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}

// SyllableCount は語の音節数を推定します。3文字以下は1、それ以外は連続母音(1〜2文字)の出現数です。
func SyllableCount(word string) int {
	word = strings.ToLower(word)
	if utf8.RuneCountInString(word) <= 3 {
		return 1
	}
	return len(vowelGroup.FindAllStringIndex(word, -1))
}

// IsPersonalPronoun は語が人称代名詞かどうかを返します。
func IsPersonalPronoun(word string) bool {
	_, ok := personalPronouns[strings.ToLower(word)]
	return ok
}
