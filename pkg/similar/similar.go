// Package similar ranks look-alike kanji merged from several scored source
// tables and a user override table.
package similar

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sort"

	"github.com/japaniel/kanjinote/pkg/kanji"
	"github.com/japaniel/kanjinote/pkg/wk"
	"gopkg.in/yaml.v3"
)

// Relevance threshold: scores above it add a candidate, negative scores
// remove it, anything in between is ignored.
const threshold = 0.3

// OverrideSourceID is the table ID of the user override table.
const OverrideSourceID = "override"

// Candidate is one similar kanji listed by a source table. It decodes from
// either a bare string or {"kan": "...", "score": n}.
type Candidate struct {
	Character string  `json:"kan" yaml:"kan"`
	Score     float64 `json:"score,omitempty" yaml:"score,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Candidate) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*c = Candidate{Character: s}
		return nil
	}
	var obj struct {
		Kan   string  `json:"kan"`
		Score float64 `json:"score"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("candidate: %w", err)
	}
	*c = Candidate{Character: obj.Kan, Score: obj.Score}
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler with the same two shapes.
func (c *Candidate) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*c = Candidate{Character: node.Value}
		return nil
	}
	var obj struct {
		Kan   string  `yaml:"kan"`
		Score float64 `yaml:"score"`
	}
	if err := node.Decode(&obj); err != nil {
		return fmt.Errorf("candidate: %w", err)
	}
	*c = Candidate{Character: obj.Kan, Score: obj.Score}
	return nil
}

// MarshalJSON writes unscored candidates as bare strings.
func (c Candidate) MarshalJSON() ([]byte, error) {
	if c.Score == 0 {
		return json.Marshal(c.Character)
	}
	return json.Marshal(struct {
		Kan   string  `json:"kan"`
		Score float64 `json:"score"`
	}{c.Character, c.Score})
}

// Table maps a kanji to its candidates in list order.
type Table map[string][]Candidate

// Source selects a table and the base score added to its candidates.
type Source struct {
	ID        string  `json:"id" yaml:"id"`
	BaseScore float64 `json:"base_score" yaml:"base_score"`
}

// DefaultSources lists the heuristic tables first, then manual curation,
// then the user override table so later sources can suppress earlier ones.
func DefaultSources() []Source {
	return []Source{
		{ID: "from_keisei", BaseScore: 0.4},
		{ID: "old_script", BaseScore: 0.4},
		{ID: "yl_radical", BaseScore: 0.0},
		{ID: "stroke_dist", BaseScore: 0.0},
		{ID: "manual", BaseScore: 0.6},
		{ID: OverrideSourceID, BaseScore: 0.0},
	}
}

// Ranked is a merged candidate.
type Ranked struct {
	Character string  `json:"character"`
	Score     float64 `json:"score"`
	Locked    bool    `json:"locked"`
}

// Engine merges source tables. Source tables and the lookup are read-only;
// only the override table changes, through Promote, Suppress and Reset.
type Engine struct {
	tables    map[string]Table
	overrides Table
	lookup    wk.Lookup
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New builds an engine. The override table is registered as
// OverrideSourceID and replaces any source table of that name.
func New(tables map[string]Table, overrides Table, lookup wk.Lookup, opts ...Option) *Engine {
	e := &Engine{
		tables:    make(map[string]Table, len(tables)+1),
		overrides: normalizeTable(overrides),
		lookup:    lookup,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	for id, t := range tables {
		if id == OverrideSourceID {
			continue
		}
		e.tables[id] = normalizeTable(t)
	}
	return e
}

func normalizeTable(t Table) Table {
	out := make(Table, len(t))
	for k, cands := range t {
		norm := make([]Candidate, len(cands))
		for i, c := range cands {
			norm[i] = Candidate{Character: kanji.Normalize(c.Character), Score: c.Score}
		}
		out[kanji.Normalize(k)] = norm
	}
	return out
}

func cloneTable(t Table) Table {
	out := make(Table, len(t))
	for k, v := range t {
		out[k] = slices.Clone(v)
	}
	return out
}

func (e *Engine) table(id string) Table {
	if id == OverrideSourceID {
		return e.overrides
	}
	return e.tables[id]
}

// InDB reports whether c is in the curriculum lookup.
func (e *Engine) InDB(c string) bool { return e.lookup.Has(c) }

// InCurriculum reports whether c is taught by the host site.
func (e *Engine) InCurriculum(c string) (bool, error) {
	info, err := e.lookup.Info(c)
	if err != nil {
		return false, err
	}
	return info.InCurriculum(), nil
}

// IsLocked reports whether c unlocks above the learner's level.
func (e *Engine) IsLocked(c string, level int) (bool, error) {
	info, err := e.lookup.Info(c)
	if err != nil {
		return false, err
	}
	return info.Level > level, nil
}

// Info returns the lookup row of c.
func (e *Engine) Info(c string) (wk.Info, error) {
	return e.lookup.Info(c)
}

// Ranked merges the sources in order. A score above the threshold inserts
// or overwrites the candidate, a negative score deletes it. The result puts
// unlocked candidates first, each group by descending score.
func (e *Engine) Ranked(kanjiChar string, level int, sources []Source) ([]Ranked, error) {
	k := kanji.Normalize(kanjiChar)
	acc := newAccumulator()

	for _, src := range sources {
		cands, ok := e.table(src.ID)[k]
		if !ok {
			continue
		}
		for _, c := range cands {
			score := src.BaseScore + c.Score
			switch {
			case score > threshold:
				locked, err := e.IsLocked(c.Character, level)
				if err != nil {
					return nil, fmt.Errorf("source %s: candidate for %s: %w", src.ID, k, err)
				}
				acc.put(Ranked{Character: c.Character, Score: score, Locked: locked})
			case score < 0:
				acc.remove(c.Character)
			}
		}
	}

	out := acc.values()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Locked != out[j].Locked {
			return !out[i].Locked
		}
		return out[i].Score > out[j].Score
	})
	e.logger.Debug("similar kanji ranked", "kanji", k, "count", len(out))
	return out, nil
}

// Similar is Ranked without scores and lock flags.
func (e *Engine) Similar(kanjiChar string, level int, sources []Source) ([]string, error) {
	ranked, err := e.Ranked(kanjiChar, level, sources)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.Character
	}
	return out, nil
}

// Promote makes candidate similar to kanjiChar for this user.
func (e *Engine) Promote(kanjiChar, candidate string) { e.setOverride(kanjiChar, candidate, 1) }

// Suppress hides candidate from the results for kanjiChar.
func (e *Engine) Suppress(kanjiChar, candidate string) { e.setOverride(kanjiChar, candidate, -1) }

// Reset removes any user override of candidate for kanjiChar.
func (e *Engine) Reset(kanjiChar, candidate string) {
	k, c := kanji.Normalize(kanjiChar), kanji.Normalize(candidate)
	cands := slices.DeleteFunc(e.overrides[k], func(x Candidate) bool { return x.Character == c })
	if len(cands) == 0 {
		delete(e.overrides, k)
		return
	}
	e.overrides[k] = cands
}

func (e *Engine) setOverride(kanjiChar, candidate string, score float64) {
	k, c := kanji.Normalize(kanjiChar), kanji.Normalize(candidate)
	for i, x := range e.overrides[k] {
		if x.Character == c {
			e.overrides[k][i].Score = score
			return
		}
	}
	e.overrides[k] = append(e.overrides[k], Candidate{Character: c, Score: score})
}

// Overrides returns a copy of the user override table for persistence.
func (e *Engine) Overrides() Table { return cloneTable(e.overrides) }

// accumulator keeps candidates in first-insertion order. Overwriting keeps
// the position, a removed candidate that comes back goes to the end.
type accumulator struct {
	index   map[string]int
	entries []*Ranked
}

func newAccumulator() *accumulator {
	return &accumulator{index: map[string]int{}}
}

func (a *accumulator) put(r Ranked) {
	if i, ok := a.index[r.Character]; ok {
		*a.entries[i] = r
		return
	}
	a.index[r.Character] = len(a.entries)
	a.entries = append(a.entries, &r)
}

func (a *accumulator) remove(c string) {
	i, ok := a.index[c]
	if !ok {
		return
	}
	a.entries[i] = nil
	delete(a.index, c)
}

func (a *accumulator) values() []Ranked {
	out := make([]Ranked, 0, len(a.index))
	for _, r := range a.entries {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}
