package resultdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/shouni/go-article-metrics/pkg/types"
)

// ErrNotFound は指定された URL_ID の記録が存在しない場合のエラーです。
var ErrNotFound = errors.New("記録が見つかりません")

const schema = `
CREATE TABLE IF NOT EXISTS article_metrics (
	url_id TEXT PRIMARY KEY,
	url TEXT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	error TEXT NOT NULL DEFAULT '',
	positive_score INTEGER,
	negative_score INTEGER,
	polarity_score REAL,
	subjectivity_score REAL,
	avg_sentence_length REAL,
	percentage_complex_words REAL,
	fog_index REAL,
	complex_word_count INTEGER,
	word_count INTEGER,
	syllables_per_word REAL,
	personal_pronouns INTEGER,
	avg_word_length REAL,
	recorded_at INTEGER NOT NULL
);`

// Entry は1行分の記録です。Metrics は取得または分析に失敗した行では nil です。
type Entry struct {
	ID         string
	URL        string
	Title      string
	Status     types.FetchStatus
	Error      string
	Metrics    *types.MetricSet
	RecordedAt time.Time
}

// DB は処理結果を SQLite に保存します。同じ URL_ID は上書きされます。
type DB struct {
	db  *sql.DB
	now func() time.Time
}

// Open は path の SQLite データベースを開き、テーブルを作成します。
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("データベースを開けません (パス: %s): %w", path, err)
	}
	// SQLite は単一ライターのため接続を1本に制限する
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("スキーマの作成に失敗しました: %w", err)
	}
	return &DB{db: db, now: time.Now}, nil
}

// Close はデータベースを閉じます。
func (d *DB) Close() error {
	return d.db.Close()
}

// Record は1行分の処理結果を保存します。
func (d *DB) Record(ctx context.Context, res types.Result) error {
	status := types.StatusOK
	errText := ""
	if !res.OK() {
		status = types.StatusFailed
		if res.Err != nil {
			errText = res.Err.Error()
		}
	}

	args := []any{res.Row.ID, res.Row.URL, res.Title, string(status), errText}
	if m := res.Metrics; res.OK() {
		args = append(args,
			m.PositiveScore, m.NegativeScore, m.PolarityScore, m.SubjectivityScore,
			m.AvgSentenceLength, m.PercentageComplexWords, m.FogIndex,
			m.ComplexWordCount, m.WordCount, m.SyllablesPerWord,
			m.PersonalPronouns, m.AvgWordLength,
		)
	} else {
		for i := 0; i < 12; i++ {
			args = append(args, nil)
		}
	}
	args = append(args, d.now().Unix())

	_, err := d.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO article_metrics (
			url_id, url, title, status, error,
			positive_score, negative_score, polarity_score, subjectivity_score,
			avg_sentence_length, percentage_complex_words, fog_index,
			complex_word_count, word_count, syllables_per_word,
			personal_pronouns, avg_word_length, recorded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("結果の保存に失敗しました (URL_ID: %s): %w", res.Row.ID, err)
	}
	return nil
}

// Get は URL_ID の記録を返します。存在しない場合は ErrNotFound を返します。
func (d *DB) Get(ctx context.Context, id string) (*Entry, error) {
	var e Entry
	var status string
	var recordedAt int64
	var pos, neg, complexCount, words, pronouns sql.NullInt64
	var polarity, subjectivity, avgSentence, pctComplex, fog, syllables, avgWordLength sql.NullFloat64

	err := d.db.QueryRowContext(ctx, `
		SELECT url_id, url, title, status, error,
			positive_score, negative_score, polarity_score, subjectivity_score,
			avg_sentence_length, percentage_complex_words, fog_index,
			complex_word_count, word_count, syllables_per_word,
			personal_pronouns, avg_word_length, recorded_at
		FROM article_metrics WHERE url_id = ?`, id,
	).Scan(
		&e.ID, &e.URL, &e.Title, &status, &e.Error,
		&pos, &neg, &polarity, &subjectivity,
		&avgSentence, &pctComplex, &fog,
		&complexCount, &words, &syllables,
		&pronouns, &avgWordLength, &recordedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w (URL_ID: %s)", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("結果の読み込みに失敗しました (URL_ID: %s): %w", id, err)
	}

	e.Status = types.FetchStatus(status)
	e.RecordedAt = time.Unix(recordedAt, 0)
	if words.Valid {
		e.Metrics = &types.MetricSet{
			PositiveScore:          int(pos.Int64),
			NegativeScore:          int(neg.Int64),
			PolarityScore:          polarity.Float64,
			SubjectivityScore:      subjectivity.Float64,
			AvgSentenceLength:      avgSentence.Float64,
			PercentageComplexWords: pctComplex.Float64,
			FogIndex:               fog.Float64,
			ComplexWordCount:       int(complexCount.Int64),
			WordCount:              int(words.Int64),
			SyllablesPerWord:       syllables.Float64,
			PersonalPronouns:       int(pronouns.Int64),
			AvgWordLength:          avgWordLength.Float64,
		}
	}
	return &e, nil
}

// Count は保存されている記録の件数を status ごとに返します。
func (d *DB) Count(ctx context.Context) (map[types.FetchStatus]int, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM article_metrics GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("件数の集計に失敗しました: %w", err)
	}
	defer rows.Close()

	counts := make(map[types.FetchStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("件数の読み込みに失敗しました: %w", err)
		}
		counts[types.FetchStatus(status)] = n
	}
	return counts, rows.Err()
}
