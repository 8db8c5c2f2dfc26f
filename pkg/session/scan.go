package session

import (
	"fmt"

	"github.com/japaniel/kanjinote/pkg/db"
	"github.com/japaniel/kanjinote/pkg/kanji"
	"github.com/japaniel/kanjinote/pkg/readerer"
)

// Source describes where scanned text came from.
type Source struct {
	Type  string
	Title string
	URL   string
}

// ScanEntry is one kanji found by Scan.
type ScanEntry struct {
	Kanji    string          `json:"kanji"`
	Count    int             `json:"count"`
	Seen     int             `json:"seen"`
	Bucket   kanji.Bucket    `json:"bucket"`
	Phonetic string          `json:"phonetic,omitempty"`
	Level    int             `json:"level,omitempty"`
	Locked   bool            `json:"locked"`
	Words    []readerer.Word `json:"words,omitempty"`
}

func (s *Session) analyzerFor() (*readerer.Analyzer, error) {
	s.analyzerOnce.Do(func() {
		s.analyzer, s.analyzerErr = readerer.NewAnalyzer()
	})
	return s.analyzer, s.analyzerErr
}

// Scan tokenizes text, records every kanji it contains under src and
// classifies each one. Entries keep the order of first appearance.
func (s *Session) Scan(text string, src Source) ([]ScanEntry, error) {
	analyzer, err := s.analyzerFor()
	if err != nil {
		return nil, fmt.Errorf("create analyzer: %w", err)
	}
	occ, err := analyzer.Occurrences(text)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}

	if err := s.record(occ, src); err != nil {
		return nil, err
	}

	entries := make([]ScanEntry, 0, len(occ))
	for _, o := range occ {
		exp := s.kb.Explain(kanji.Subject{Character: o.Kanji, Level: s.level}, s.overrides)
		e := ScanEntry{
			Kanji:    o.Kanji,
			Count:    o.Count,
			Bucket:   exp.Bucket,
			Phonetic: exp.Phonetic,
			Words:    o.Words,
		}
		if info, err := s.lookup.Info(o.Kanji); err == nil {
			e.Level = info.Level
			e.Locked = info.Level > s.level
		}
		if e.Seen, err = db.OccurrencesOf(s.store, o.Kanji); err != nil {
			return nil, fmt.Errorf("history of %s: %w", o.Kanji, err)
		}
		entries = append(entries, e)
	}
	s.logger.Info("text scanned", "source", src.Type, "title", src.Title, "kanji", len(entries))
	return entries, nil
}

// ScanHTML extracts the article of a local HTML page and scans it.
func (s *Session) ScanHTML(html []byte, pageURL string) ([]ScanEntry, error) {
	article, err := readerer.ExtractArticle(html, pageURL)
	if err != nil {
		return nil, err
	}
	return s.Scan(article.Text, Source{Type: "html", Title: article.Title, URL: pageURL})
}

func (s *Session) record(occ []readerer.Occurrence, src Source) error {
	if len(occ) == 0 {
		return nil
	}
	tx, err := s.store.Begin()
	if err != nil {
		return fmt.Errorf("begin scan: %w", err)
	}
	defer tx.Rollback()

	sourceID, err := db.CreateOrGetSource(tx, src.Type, src.Title, src.URL)
	if err != nil {
		return fmt.Errorf("record source: %w", err)
	}
	for _, o := range occ {
		if err := db.LinkKanjiToSource(tx, o.Kanji, sourceID, o.Count); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit scan: %w", err)
	}
	return nil
}
