package types

// FetchStatus は記事取得の結果状態を表します。
type FetchStatus string

const (
	StatusOK     FetchStatus = "ok"
	StatusFailed FetchStatus = "failed"
)

// Row は入力テーブルの1行です。ID と URL 以外の列は Record にそのまま保持し、出力時に元の列を復元します。
type Row struct {
	ID     string   // URL_ID 列の値
	URL    string   // URL 列の値
	Record []string // 入力テーブルの生の行
}

// Article は1行分の取得結果です。メトリクスと保存済みテキストを作った後は保持しません。
type Article struct {
	ID     string
	URL    string
	Title  string
	Body   string
	Status FetchStatus
}

// MetricSet は1記事から算出する13個の指標です。
// AVG NUMBER OF WORDS PER SENTENCE は AvgSentenceLength と同一の値なので、フィールドではなくメソッドで公開します。
type MetricSet struct {
	PositiveScore          int     `yaml:"positive_score" json:"positive_score"`
	NegativeScore          int     `yaml:"negative_score" json:"negative_score"`
	PolarityScore          float64 `yaml:"polarity_score" json:"polarity_score"`
	SubjectivityScore      float64 `yaml:"subjectivity_score" json:"subjectivity_score"`
	AvgSentenceLength      float64 `yaml:"avg_sentence_length" json:"avg_sentence_length"`
	PercentageComplexWords float64 `yaml:"percentage_complex_words" json:"percentage_complex_words"`
	FogIndex               float64 `yaml:"fog_index" json:"fog_index"`
	ComplexWordCount       int     `yaml:"complex_word_count" json:"complex_word_count"`
	WordCount              int     `yaml:"word_count" json:"word_count"`
	SyllablesPerWord       float64 `yaml:"syllables_per_word" json:"syllables_per_word"`
	PersonalPronouns       int     `yaml:"personal_pronouns" json:"personal_pronouns"`
	AvgWordLength          float64 `yaml:"avg_word_length" json:"avg_word_length"`
}

// AvgWordsPerSentence は AvgSentenceLength の別名です。
func (m MetricSet) AvgWordsPerSentence() float64 {
	return m.AvgSentenceLength
}

// MetricColumns は出力テーブルに追加する列名です。順序は Values と一致します。
var MetricColumns = []string{
	"POSITIVE SCORE",
	"NEGATIVE SCORE",
	"POLARITY SCORE",
	"SUBJECTIVITY SCORE",
	"AVG SENTENCE LENGTH",
	"PERCENTAGE OF COMPLEX WORDS",
	"FOG INDEX",
	"AVG NUMBER OF WORDS PER SENTENCE",
	"COMPLEX WORD COUNT",
	"WORD COUNT",
	"SYLLABLE PER WORD",
	"PERSONAL PRONOUNS",
	"AVG WORD LENGTH",
}

// Values は MetricColumns の順で各指標を返します。要素は int または float64 です。
func (m MetricSet) Values() []any {
	return []any{
		m.PositiveScore,
		m.NegativeScore,
		m.PolarityScore,
		m.SubjectivityScore,
		m.AvgSentenceLength,
		m.PercentageComplexWords,
		m.FogIndex,
		m.AvgWordsPerSentence(),
		m.ComplexWordCount,
		m.WordCount,
		m.SyllablesPerWord,
		m.PersonalPronouns,
		m.AvgWordLength,
	}
}

// Result は1行の処理結果です。Metrics と Err はどちらか一方のみが設定されます。
type Result struct {
	Row     Row
	Title   string
	Metrics *MetricSet // 取得または分析に失敗した場合は nil
	Err     error      // 成功した場合は nil
}

// OK は行がメトリクスを持つかどうかを返します。
func (r Result) OK() bool {
	return r.Err == nil && r.Metrics != nil
}
