package db

import (
	"database/sql"
	"testing"

	"github.com/japaniel/kanjinote/pkg/kanji"
	"github.com/japaniel/kanjinote/pkg/similar"
	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInitDBCreatesSchema(t *testing.T) {
	db := setupTestDB(t)
	for _, table := range []string{"kv", "sources", "kanji_sources"} {
		var name string
		if err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name); err != nil {
			t.Fatalf("%s table missing: %v", table, err)
		}
	}
	// Running migrations twice is harmless.
	if err := InitDB(db); err != nil {
		t.Fatalf("second InitDB: %v", err)
	}
}

func TestGetSetValue(t *testing.T) {
	db := setupTestDB(t)
	if _, ok, err := GetValue(db, "k"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}
	if err := SetValue(db, "k", "one"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := SetValue(db, "k", "two"); err != nil {
		t.Fatalf("set again: %v", err)
	}
	v, ok, err := GetValue(db, "k")
	if err != nil || !ok || v != "two" {
		t.Fatalf("expected two, got %q ok=%v err=%v", v, ok, err)
	}
	if err := SetValue(db, " ", "x"); err == nil {
		t.Fatalf("expected error for empty key")
	}
}

func TestOverridesRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ov, err := LoadOverrides(db)
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if len(ov) != 0 {
		t.Fatalf("expected empty overrides, got %v", ov)
	}

	ov.Toggle("校")
	ov.Toggle("郊")
	ov.Toggle("郊")
	if err := SaveOverrides(db, ov); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := LoadOverrides(db)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !got.Marked("校") || got.Marked("郊") {
		t.Fatalf("unexpected overrides %v", got)
	}

	// Saves are full rewrites.
	if err := SaveOverrides(db, kanji.Overrides{}); err != nil {
		t.Fatalf("save empty: %v", err)
	}
	got, err = LoadOverrides(db)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty overrides after rewrite, got %v", got)
	}
}

func TestSimilarOverridesRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	want := similar.Table{"木": {{Character: "林", Score: 1}, {Character: "本", Score: -1}}}
	if err := SaveSimilarOverrides(db, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := LoadSimilarOverrides(db)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got["木"]) != 2 || got["木"][0] != want["木"][0] || got["木"][1] != want["木"][1] {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestLoadOverridesRejectsCorruptValue(t *testing.T) {
	db := setupTestDB(t)
	if err := SetValue(db, OverridesKey, "{not json"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := LoadOverrides(db); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestCreateOrGetSource(t *testing.T) {
	db := setupTestDB(t)
	id1, err := CreateOrGetSource(db, "html", "記事", "https://example.com/a")
	if err != nil {
		t.Fatalf("create source: %v", err)
	}
	id2, err := CreateOrGetSource(db, "html", "記事", "https://example.com/a")
	if err != nil {
		t.Fatalf("get source: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("expected same source id, got %d and %d", id1, id2)
	}
	if _, err := CreateOrGetSource(db, " ", "", ""); err == nil {
		t.Fatalf("expected error for empty source type")
	}
}

func TestLinkAndQuery(t *testing.T) {
	db := setupTestDB(t)
	sID, err := CreateOrGetSource(db, "text", "", "notes.txt")
	if err != nil {
		t.Fatalf("create source: %v", err)
	}
	if err := LinkKanjiToSource(db, "猫", sID, 2); err != nil {
		t.Fatalf("link: %v", err)
	}
	if err := LinkKanjiToSource(db, "犬", sID, 1); err != nil {
		t.Fatalf("link: %v", err)
	}
	// Link again to test occurrence_count increment via upsert
	if err := LinkKanjiToSource(db, "猫", sID, 1); err != nil {
		t.Fatalf("link 2: %v", err)
	}

	got, err := GetKanjiBySource(db, sID)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 kanji, got %d", len(got))
	}
	if got[0].Kanji != "猫" || got[0].OccurrenceCount != 3 {
		t.Fatalf("expected 猫 x3, got %s x%d", got[0].Kanji, got[0].OccurrenceCount)
	}
	if got[0].FirstSeenAt.IsZero() {
		t.Fatalf("expected first_seen_at to be set")
	}

	other, err := CreateOrGetSource(db, "text", "", "other.txt")
	if err != nil {
		t.Fatalf("create source: %v", err)
	}
	if err := LinkKanjiToSource(db, "猫", other, 4); err != nil {
		t.Fatalf("link: %v", err)
	}
	n, err := OccurrencesOf(db, "猫")
	if err != nil {
		t.Fatalf("occurrences: %v", err)
	}
	if n != 7 {
		t.Fatalf("expected 7 occurrences, got %d", n)
	}
	if n, _ := OccurrencesOf(db, "鳥"); n != 0 {
		t.Fatalf("expected 0 occurrences, got %d", n)
	}
}

func TestLinkKanjiToSourceValidates(t *testing.T) {
	db := setupTestDB(t)
	if err := LinkKanjiToSource(db, "", 1, 1); err == nil {
		t.Fatalf("expected error for empty kanji")
	}
	if err := LinkKanjiToSource(db, "猫", 0, 1); err == nil {
		t.Fatalf("expected error for invalid source")
	}
	if err := LinkKanjiToSource(db, "猫", 1, 0); err == nil {
		t.Fatalf("expected error for zero count")
	}
}

func TestCreateOrGetSourceConcurrency(t *testing.T) {
	db := setupTestDB(t)
	const n = 8
	ids := make(chan int64, n)
	for i := 0; i < n; i++ {
		go func() {
			id, err := CreateOrGetSource(db, "html", "Title", "https://example.com/c")
			if err != nil {
				t.Errorf("create or get source: %v", err)
				ids <- 0
				return
			}
			ids <- id
		}()
	}
	var first int64
	for i := 0; i < n; i++ {
		id := <-ids
		if id == 0 {
			t.Fatalf("error in goroutine")
		}
		if i == 0 {
			first = id
		}
		if id != first {
			t.Fatalf("expected same id, got %d and %d", first, id)
		}
	}
	var cnt int
	if err := db.QueryRow(`SELECT COUNT(*) FROM sources WHERE url = ?`, "https://example.com/c").Scan(&cnt); err != nil {
		t.Fatalf("count: %v", err)
	}
	if cnt != 1 {
		t.Fatalf("expected 1 source row, got %d", cnt)
	}
}
