// Package kanji holds the phonetic knowledge base: kanji records, phonetic
// component records and the derivations that explain why a kanji is read
// the way it is.
package kanji

import (
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// KanjiEntry is one character known to the knowledge base.
type KanjiEntry struct {
	Character string   `json:"character,omitempty" yaml:"character,omitempty"`
	Readings  []string `json:"readings" yaml:"readings"`
	Kind      Kind     `json:"type" yaml:"type"`
	// Phonetic is the phonetic component the reading derives from, if any.
	Phonetic string `json:"phonetic,omitempty" yaml:"phonetic,omitempty"`
	Comment  string `json:"comment,omitempty" yaml:"comment,omitempty"`
	// Obscure marks a phonetic link that is non-obvious or disputed.
	Obscure bool `json:"obscure,omitempty" yaml:"obscure,omitempty"`
}

// PhoneticEntry is a character acting as the phonetic component of at least
// one kanji.
type PhoneticEntry struct {
	Character    string   `json:"character,omitempty" yaml:"character,omitempty"`
	Readings     []string `json:"readings" yaml:"readings"`
	Compounds    []string `json:"compounds" yaml:"compounds"`
	NonCompounds []string `json:"non_compounds" yaml:"non_compounds"`
	XRefs        []string `json:"xrefs" yaml:"xrefs"`
	Comment      string   `json:"comment,omitempty" yaml:"comment,omitempty"`
	Obscure      bool     `json:"obscure,omitempty" yaml:"obscure,omitempty"`
}

// RadicalMapper connects host-site radicals with phonetic characters.
type RadicalMapper interface {
	// PhoneticOfRadical returns the phonetic character a radical stands for.
	PhoneticOfRadical(name string) (string, bool)
	// RadicalOfPhonetic returns the radical name drawn as the given character.
	RadicalOfPhonetic(phon string) (string, bool)
}

// KnowledgeBase answers lookups against the kanji and phonetic tables. It is
// immutable after New and safe for concurrent readers.
type KnowledgeBase struct {
	kanji     map[string]KanjiEntry
	phonetics map[string]PhoneticEntry
	radicals  RadicalMapper
	logger    *slog.Logger
}

// Option configures a KnowledgeBase.
type Option func(*KnowledgeBase)

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(kb *KnowledgeBase) {
		if l != nil {
			kb.logger = l
		}
	}
}

// WithRadicals sets the radical mapping used for radical subjects and the
// radical row of a grid.
func WithRadicals(r RadicalMapper) Option {
	return func(kb *KnowledgeBase) { kb.radicals = r }
}

// New builds a knowledge base from the two tables. Keys are normalized and
// empty keys are dropped; the inputs are not retained.
func New(kanjiTable map[string]KanjiEntry, phoneticTable map[string]PhoneticEntry, opts ...Option) *KnowledgeBase {
	kb := &KnowledgeBase{
		kanji:     make(map[string]KanjiEntry, len(kanjiTable)),
		phonetics: make(map[string]PhoneticEntry, len(phoneticTable)),
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(kb)
	}

	for key, e := range kanjiTable {
		c := Normalize(key)
		if c == "" {
			continue
		}
		e.Character = c
		e.Readings = slices.Clone(e.Readings)
		e.Phonetic = Normalize(e.Phonetic)
		kb.kanji[c] = e
	}
	for key, p := range phoneticTable {
		c := Normalize(key)
		if c == "" {
			continue
		}
		p.Character = c
		p.Readings = slices.Clone(p.Readings)
		p.Compounds = normalizeAll(p.Compounds)
		p.NonCompounds = normalizeAll(p.NonCompounds)
		p.XRefs = normalizeAll(p.XRefs)
		kb.phonetics[c] = p
	}
	return kb
}

// Normalize trims a character and converts it to NFC, which folds CJK
// compatibility ideographs into their unified code points.
func Normalize(c string) string {
	return norm.NFC.String(strings.TrimSpace(c))
}

func normalizeAll(in []string) []string {
	out := make([]string, len(in))
	for i, c := range in {
		out[i] = Normalize(c)
	}
	return out
}

// Len returns the number of kanji and phonetic entries.
func (kb *KnowledgeBase) Len() (kanji, phonetics int) {
	return len(kb.kanji), len(kb.phonetics)
}

// HasKanji reports whether c is in the kanji table.
func (kb *KnowledgeBase) HasKanji(c string) bool {
	_, ok := kb.kanji[Normalize(c)]
	return ok
}

// HasPhonetic reports whether c is in the phonetic table.
func (kb *KnowledgeBase) HasPhonetic(c string) bool {
	_, ok := kb.phonetics[Normalize(c)]
	return ok
}

// Kanji returns the kanji entry for c.
func (kb *KnowledgeBase) Kanji(c string) (KanjiEntry, bool) {
	e, ok := kb.kanji[Normalize(c)]
	return e, ok
}

// Phonetic returns the phonetic entry for c.
func (kb *KnowledgeBase) Phonetic(c string) (PhoneticEntry, bool) {
	p, ok := kb.phonetics[Normalize(c)]
	return p, ok
}

// KindOf returns the kind of a kanji, or a *NotFoundError.
func (kb *KnowledgeBase) KindOf(c string) (Kind, error) {
	e, ok := kb.kanji[Normalize(c)]
	if !ok {
		return KindUnprocessed, &NotFoundError{Table: TableKanji, Character: c}
	}
	return e.Kind, nil
}

// ReadingsOf returns the kanji readings of c, falling back to its readings
// as a phonetic component when c is not catalogued as a kanji.
func (kb *KnowledgeBase) ReadingsOf(c string) []string {
	c = Normalize(c)
	if e, ok := kb.kanji[c]; ok {
		return slices.Clone(e.Readings)
	}
	if p, ok := kb.phonetics[c]; ok {
		return slices.Clone(p.Readings)
	}
	return nil
}

// PhoneticReadingsOf returns the readings of c used as a phonetic component.
func (kb *KnowledgeBase) PhoneticReadingsOf(c string) []string {
	if p, ok := kb.phonetics[Normalize(c)]; ok {
		return slices.Clone(p.Readings)
	}
	return nil
}

// PhoneticOf returns the phonetic component recorded for kanji c.
func (kb *KnowledgeBase) PhoneticOf(c string) (string, bool) {
	e, ok := kb.kanji[Normalize(c)]
	if !ok || e.Phonetic == "" {
		return "", false
	}
	return e.Phonetic, true
}

// CompoundsOf returns the phonetic compounds of phon in stored order. An
// unknown phon is logged and yields nil.
func (kb *KnowledgeBase) CompoundsOf(phon string) []string {
	p, ok := kb.phonetics[Normalize(phon)]
	if !ok {
		kb.logger.Warn("phonetic not in database", "phonetic", phon)
		return nil
	}
	return slices.Clone(p.Compounds)
}

// NonCompoundsOf returns the kanji that contain phon without deriving their
// reading from it.
func (kb *KnowledgeBase) NonCompoundsOf(phon string) []string {
	if p, ok := kb.phonetics[Normalize(phon)]; ok {
		return slices.Clone(p.NonCompounds)
	}
	return nil
}

// XRefsOf returns the phonetic components that are compounds of phon and
// roots of their own.
func (kb *KnowledgeBase) XRefsOf(phon string) []string {
	if p, ok := kb.phonetics[Normalize(phon)]; ok {
		return slices.Clone(p.XRefs)
	}
	return nil
}

// IsObscure reports the database default for the marked badge of c.
func (kb *KnowledgeBase) IsObscure(c string) bool {
	c = Normalize(c)
	if e, ok := kb.kanji[c]; ok {
		return e.Obscure
	}
	if p, ok := kb.phonetics[c]; ok {
		return p.Obscure
	}
	return false
}

// Validate audits cross references and returns one *IntegrityWarning per
// dangling reference, sorted by table and character.
func (kb *KnowledgeBase) Validate() []error {
	var warns []*IntegrityWarning

	for _, c := range sortedKeys(kb.kanji) {
		e := kb.kanji[c]
		switch {
		case e.Phonetic != "" && !kb.hasEither(e.Phonetic):
			warns = append(warns, &IntegrityWarning{Table: TableKanji, Character: c, Field: "phonetic", Ref: e.Phonetic})
		case e.Kind == KindCompPhonetic && e.Phonetic == "" && !kb.HasPhonetic(c):
			warns = append(warns, &IntegrityWarning{Table: TableKanji, Character: c, Field: "phonetic"})
		case e.Kind == KindCompPhonetic && e.Phonetic != "" && !kb.HasPhonetic(e.Phonetic):
			warns = append(warns, &IntegrityWarning{Table: TableKanji, Character: c, Field: "phonetic", Ref: e.Phonetic})
		}
	}

	for _, c := range sortedKeys(kb.phonetics) {
		p := kb.phonetics[c]
		for _, ref := range p.Compounds {
			if ref != "" && !kb.hasEither(ref) {
				warns = append(warns, &IntegrityWarning{Table: TablePhonetic, Character: c, Field: "compounds", Ref: ref})
			}
		}
		for _, ref := range p.NonCompounds {
			if ref != "" && !kb.hasEither(ref) {
				warns = append(warns, &IntegrityWarning{Table: TablePhonetic, Character: c, Field: "non_compounds", Ref: ref})
			}
		}
		for _, ref := range p.XRefs {
			if ref != "" && !kb.HasPhonetic(ref) {
				warns = append(warns, &IntegrityWarning{Table: TablePhonetic, Character: c, Field: "xrefs", Ref: ref})
			}
		}
	}

	errs := make([]error, len(warns))
	for i, w := range warns {
		errs[i] = w
	}
	return errs
}

func (kb *KnowledgeBase) hasEither(c string) bool {
	return kb.HasKanji(c) || kb.HasPhonetic(c)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
