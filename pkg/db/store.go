package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/japaniel/kanjinote/pkg/kanji"
	"github.com/japaniel/kanjinote/pkg/similar"
)

// Keys of the persisted user tables.
const (
	OverridesKey        = "overrides"
	SimilarOverridesKey = "similar_overrides"
)

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// isUniqueConstraintErr returns true when the error indicates a unique/constraint violation
func isUniqueConstraintErr(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "unique") || strings.Contains(s, "constraint failed")
}

// GetValue returns the stored value for key and whether it exists.
func GetValue(db DBExecutor, key string) (string, bool, error) {
	var v string
	err := db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return v, true, nil
}

// SetValue replaces the value stored under key.
func SetValue(db DBExecutor, key, value string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("key must be non-empty")
	}
	_, err := db.Exec(`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now())
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func loadJSON(db DBExecutor, key string, v any) (bool, error) {
	raw, ok, err := GetValue(db, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func saveJSON(db DBExecutor, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return SetValue(db, key, string(b))
}

// LoadOverrides returns the persisted marked-badge overrides, or an empty
// table when nothing was saved yet.
func LoadOverrides(db DBExecutor) (kanji.Overrides, error) {
	ov := kanji.Overrides{}
	if _, err := loadJSON(db, OverridesKey, &ov); err != nil {
		return nil, err
	}
	if ov == nil {
		ov = kanji.Overrides{}
	}
	return ov, nil
}

// SaveOverrides rewrites the whole override table.
func SaveOverrides(db DBExecutor, ov kanji.Overrides) error {
	if ov == nil {
		ov = kanji.Overrides{}
	}
	return saveJSON(db, OverridesKey, ov)
}

// LoadSimilarOverrides returns the persisted similar-kanji override table.
func LoadSimilarOverrides(db DBExecutor) (similar.Table, error) {
	t := similar.Table{}
	if _, err := loadJSON(db, SimilarOverridesKey, &t); err != nil {
		return nil, err
	}
	if t == nil {
		t = similar.Table{}
	}
	return t, nil
}

// SaveSimilarOverrides rewrites the whole similar-kanji override table.
func SaveSimilarOverrides(db DBExecutor, t similar.Table) error {
	if t == nil {
		t = similar.Table{}
	}
	return saveJSON(db, SimilarOverridesKey, t)
}

// CreateOrGetSource returns existing source id or inserts a new source and returns its id.
func CreateOrGetSource(db DBExecutor, sourceType, title, url string) (int64, error) {
	trimmedSourceType := strings.TrimSpace(sourceType)
	if trimmedSourceType == "" {
		return 0, fmt.Errorf("sourceType must be non-empty")
	}

	const maxRetries = 3

	var id int64
	for attempt := 0; attempt < maxRetries; attempt++ {
		err := db.QueryRow(
			`SELECT id FROM sources WHERE source_type = ? AND title = ? AND url = ?`,
			trimmedSourceType, title, url,
		).Scan(&id)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return 0, err
		}

		res, err := db.Exec(
			`INSERT INTO sources (source_type, title, url) VALUES (?, ?, ?)`,
			trimmedSourceType, title, url,
		)
		if err != nil {
			// Another writer inserted the same source; retry the SELECT.
			if isUniqueConstraintErr(err) {
				continue
			}
			return 0, err
		}
		return res.LastInsertId()
	}

	return 0, fmt.Errorf("could not create or get source after %d retries", maxRetries)
}

// LinkKanjiToSource records that kanji appeared count times in a source.
// Repeated links add to the occurrence count.
func LinkKanjiToSource(db DBExecutor, kanjiChar string, sourceID int64, count int) error {
	k := kanji.Normalize(kanjiChar)
	if k == "" {
		return fmt.Errorf("kanji must be non-empty")
	}
	if sourceID <= 0 {
		return fmt.Errorf("sourceID must be positive")
	}
	if count < 1 {
		return fmt.Errorf("count must be positive, got %d", count)
	}
	_, err := db.Exec(`INSERT INTO kanji_sources (kanji, source_id, occurrence_count, first_seen_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(kanji, source_id) DO UPDATE SET
	  occurrence_count = kanji_sources.occurrence_count + excluded.occurrence_count`,
		k, sourceID, count, time.Now())
	if err != nil {
		return fmt.Errorf("link %s to source %d: %w", k, sourceID, err)
	}
	return nil
}

// Sighting is a kanji seen in a source.
type Sighting struct {
	Kanji           string
	OccurrenceCount int
	FirstSeenAt     time.Time
}

// GetKanjiBySource returns the kanji of a source in first-seen order.
func GetKanjiBySource(db DBExecutor, sourceID int64) ([]Sighting, error) {
	rows, err := db.Query(`SELECT kanji, occurrence_count, first_seen_at FROM kanji_sources WHERE source_id = ? ORDER BY id`, sourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Sighting
	for rows.Next() {
		var s Sighting
		if err := rows.Scan(&s.Kanji, &s.OccurrenceCount, &s.FirstSeenAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// OccurrencesOf returns how often kanji was seen across all sources.
func OccurrencesOf(db DBExecutor, kanjiChar string) (int, error) {
	var n int
	err := db.QueryRow(`SELECT COALESCE(SUM(occurrence_count), 0) FROM kanji_sources WHERE kanji = ?`, kanji.Normalize(kanjiChar)).Scan(&n)
	if err != nil {
		return 0, err
	}
	return n, nil
}
