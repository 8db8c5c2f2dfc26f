// Package session wires the tables, the knowledge base, the similarity
// engine and the override store for a single learner.
package session

import (
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	"github.com/japaniel/kanjinote/pkg/config"
	"github.com/japaniel/kanjinote/pkg/db"
	"github.com/japaniel/kanjinote/pkg/kanji"
	"github.com/japaniel/kanjinote/pkg/present"
	"github.com/japaniel/kanjinote/pkg/readerer"
	"github.com/japaniel/kanjinote/pkg/similar"
	"github.com/japaniel/kanjinote/pkg/tables"
	"github.com/japaniel/kanjinote/pkg/wk"
)

// Session is not safe for concurrent mutation.
type Session struct {
	kb        *kanji.KnowledgeBase
	engine    *similar.Engine
	adapter   *present.Adapter
	lookup    wk.Lookup
	sources   []similar.Source
	overrides kanji.Overrides
	store     *sql.DB
	level     int
	logger    *slog.Logger

	analyzerOnce sync.Once
	analyzer     *readerer.Analyzer
	analyzerErr  error
}

// Open loads the data directory and the store named by cfg.
func Open(cfg *config.Config, logger *slog.Logger) (*Session, error) {
	set, err := tables.LoadDir(cfg.Data.Dir)
	if err != nil {
		return nil, fmt.Errorf("load tables: %w", err)
	}
	store, err := db.Open(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	s, err := New(set, store, cfg.Learner.Level, logger)
	if err != nil {
		store.Close()
		return nil, err
	}
	return s, nil
}

// New builds a session over loaded tables and an open store. The session
// owns store and closes it in Close.
func New(set *tables.Set, store *sql.DB, level int, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	overrides, err := db.LoadOverrides(store)
	if err != nil {
		return nil, fmt.Errorf("load overrides: %w", err)
	}
	similarOverrides, err := db.LoadSimilarOverrides(store)
	if err != nil {
		return nil, fmt.Errorf("load similar overrides: %w", err)
	}

	kb := kanji.New(set.Kanji, set.Phonetics,
		kanji.WithRadicals(set.Radicals),
		kanji.WithLogger(logger.With("component", "kanji")))
	engine := similar.New(set.Similar, similarOverrides, set.Lookup,
		similar.WithLogger(logger.With("component", "similar")))

	s := &Session{
		kb:        kb,
		engine:    engine,
		adapter:   present.New(kb, set.Lookup, set.Radicals),
		lookup:    set.Lookup,
		sources:   set.Sources,
		overrides: overrides,
		store:     store,
		level:     level,
		logger:    logger,
	}
	kanjiCount, phonCount := kb.Len()
	logger.Info("session ready",
		"kanji", kanjiCount,
		"phonetics", phonCount,
		"similar_tables", len(set.Similar),
		"level", level)
	return s, nil
}

// Close closes the store.
func (s *Session) Close() error { return s.store.Close() }

// KnowledgeBase returns the loaded knowledge base.
func (s *Session) KnowledgeBase() *kanji.KnowledgeBase { return s.kb }

// Explain renders the explanation of a kanji or, with isRadical, of a
// radical name.
func (s *Session) Explain(c string, isRadical bool) present.Page {
	exp := s.kb.Explain(kanji.Subject{Character: c, IsRadical: isRadical, Level: s.level}, s.overrides)
	if exp.Err != nil && exp.Bucket.IsError() {
		s.logger.Debug("explanation reports data problem", "subject", c, "bucket", exp.Bucket.String(), "error", exp.Err)
	}
	return s.adapter.Render(exp)
}

// Similar ranks the similar kanji of c for the learner's level.
func (s *Session) Similar(c string) ([]present.Row, error) {
	ranked, err := s.engine.Ranked(c, s.level, s.sources)
	if err != nil {
		return nil, fmt.Errorf("similar %s: %w", c, err)
	}
	return s.adapter.SimilarRows(ranked), nil
}

// ToggleMark flips the user's marked override of c and persists it.
// It returns the new override value.
func (s *Session) ToggleMark(c string) (bool, error) {
	c = kanji.Normalize(c)
	marked := s.overrides.Toggle(c)
	if err := db.SaveOverrides(s.store, s.overrides); err != nil {
		s.overrides.Toggle(c)
		return !marked, fmt.Errorf("save overrides: %w", err)
	}
	s.logger.Info("mark toggled", "kanji", c, "marked", marked)
	return marked, nil
}

// Promote adds candidate to the similar kanji of c.
func (s *Session) Promote(c, candidate string) error {
	return s.mutateSimilar(func() { s.engine.Promote(c, candidate) }, "promoted", c, candidate)
}

// Suppress hides candidate from the similar kanji of c.
func (s *Session) Suppress(c, candidate string) error {
	return s.mutateSimilar(func() { s.engine.Suppress(c, candidate) }, "suppressed", c, candidate)
}

// Reset drops the user's decision about candidate for c.
func (s *Session) Reset(c, candidate string) error {
	return s.mutateSimilar(func() { s.engine.Reset(c, candidate) }, "reset", c, candidate)
}

func (s *Session) mutateSimilar(apply func(), action, c, candidate string) error {
	if !s.engine.InDB(candidate) {
		return fmt.Errorf("%s %s: %w", action, candidate, &kanji.NotFoundError{Table: kanji.TableLookup, Character: candidate})
	}
	apply()
	if err := db.SaveSimilarOverrides(s.store, s.engine.Overrides()); err != nil {
		return fmt.Errorf("save similar overrides: %w", err)
	}
	s.logger.Info("similar override "+action, "kanji", c, "candidate", candidate)
	return nil
}

// Validate lists dangling references in the loaded tables.
func (s *Session) Validate() []error { return s.kb.Validate() }
