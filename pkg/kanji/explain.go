package kanji

import "fmt"

// Bucket is the outcome of explaining a subject. Every bucket maps to one
// explanation template in the presentation layer.
type Bucket int

const (
	BucketMissing           Bucket = iota // subject not in any table
	BucketIncomplete                      // known kanji, phonetic annotation absent
	BucketPhoneticMark                    // subject is a phonetic component itself
	BucketUnprocessed                     // not yet analyzed
	BucketUnknown                         // no identifiable phonetic component
	BucketNonPhonetic                     // pictograph, ideograph and similar
	BucketPhonetic                        // phonetic compound
	BucketPhoneticMissing                 // phonetic link does not resolve
	BucketUnclassified                    // kind without an explanation
	BucketRadical                         // radical standing for a phonetic
	BucketRadicalNoPhonetic               // radical without phonetic role
)

var bucketNames = [...]string{
	BucketMissing:           "missing",
	BucketIncomplete:        "incomplete",
	BucketPhoneticMark:      "phonetic_mark",
	BucketUnprocessed:       "unprocessed",
	BucketUnknown:           "unknown",
	BucketNonPhonetic:       "non_phonetic",
	BucketPhonetic:          "phonetic",
	BucketPhoneticMissing:   "phonetic_missing",
	BucketUnclassified:      "unclassified",
	BucketRadical:           "radical",
	BucketRadicalNoPhonetic: "radical_no_phonetic",
}

func (b Bucket) String() string {
	if b < 0 || int(b) >= len(bucketNames) {
		return fmt.Sprintf("Bucket(%d)", int(b))
	}
	return bucketNames[b]
}

// MarshalText implements encoding.TextMarshaler.
func (b Bucket) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

// IsError reports whether the bucket describes missing or broken data
// rather than an explanation.
func (b Bucket) IsError() bool {
	switch b {
	case BucketMissing, BucketIncomplete, BucketPhoneticMissing, BucketUnclassified:
		return true
	}
	return false
}

// Subject is the character currently shown by the host page.
type Subject struct {
	Character string `json:"character"`
	IsRadical bool   `json:"is_radical"`
	Level     int    `json:"level"`
}

// PanelKind identifies a secondary "more info" panel.
type PanelKind int

const (
	PanelXRef         PanelKind = iota // a compound that is a phonetic of its own
	PanelBasePhonetic                  // the deeper root of a phonetic hierarchy
	PanelNonCompounds                  // look-alikes that are not compounds
)

// Panel is one secondary panel of an explanation.
type Panel struct {
	Kind         PanelKind
	Phonetic     string
	Readings     []string
	Grid         []GridItem
	NonCompounds []string
}

// Explanation is the result of Explain.
type Explanation struct {
	Bucket       Bucket
	Subject      Subject
	Kind         Kind
	Phonetic     string
	BasePhonetic string
	// Readings are the phonetic readings of Phonetic.
	Readings []string
	// Quality is the tier of the subject inside its own grid.
	Quality Tier
	Grid    []GridItem
	Panels  []Panel
	// Err carries the diagnostic for error buckets.
	Err error
}

// MoreInfo reports whether secondary panels are offered.
func (e Explanation) MoreInfo() bool { return len(e.Panels) > 0 }

// Explain classifies a subject. The checks run in a fixed order: missing,
// incomplete, phonetic mark, then the kind of the kanji where unprocessed
// wins over everything else. The result depends only on the tables and ov.
func (kb *KnowledgeBase) Explain(subj Subject, ov Overrides) Explanation {
	exp := Explanation{Subject: subj}
	c := Normalize(subj.Character)

	if subj.IsRadical {
		return kb.explainRadical(exp, c, ov)
	}

	if c == "" || !kb.hasEither(c) {
		exp.Bucket = BucketMissing
		exp.Err = &NotFoundError{Table: TableKanji, Character: subj.Character}
		return exp
	}

	entry, isKanji := kb.kanji[c]
	phon := c
	if p, ok := kb.PhoneticOf(c); ok {
		phon = p
	}
	exp.Kind = entry.Kind

	if isKanji && entry.Kind == KindCompPhonetic && entry.Phonetic == "" && !kb.HasPhonetic(c) {
		exp.Bucket = BucketIncomplete
		exp.Err = &IncompleteDataError{Character: c, Reason: "phonetic compound without a phonetic component"}
		return exp
	}

	if kb.HasPhonetic(c) {
		exp.Bucket = BucketPhoneticMark
		if phon != c {
			kb.logger.Debug("phonetic hierarchy, using subject as phonetic", "subject", c, "base", phon)
			exp.BasePhonetic = phon
			phon = c
		}
		exp.Phonetic = phon
		exp.Readings = kb.PhoneticReadingsOf(phon)
		exp.Grid, exp.Quality = kb.RankCompounds(phon, c, ov)
		exp.Panels = kb.panels(c, phon, exp.BasePhonetic, ov)
		return exp
	}

	exp.Phonetic = phon
	switch {
	case entry.Kind == KindUnprocessed:
		exp.Bucket = BucketUnprocessed
		exp.Err = &IncompleteDataError{Character: c, Reason: "not yet analyzed"}
		return exp
	case entry.Kind == KindUnknown:
		exp.Bucket = BucketUnknown
	case entry.Kind.isNonPhonetic():
		exp.Bucket = BucketNonPhonetic
	case entry.Kind == KindCompPhonetic:
		if !kb.HasPhonetic(phon) {
			w := &IntegrityWarning{Table: TableKanji, Character: c, Field: "phonetic", Ref: phon}
			kb.logger.Warn("dangling phonetic reference", "error", w)
			exp.Bucket = BucketPhoneticMissing
			exp.Err = w
			return exp
		}
		exp.Bucket = BucketPhonetic
		exp.Readings = kb.PhoneticReadingsOf(phon)
		exp.Grid, exp.Quality = kb.RankCompounds(phon, c, ov)
	default:
		exp.Bucket = BucketUnclassified
		exp.Err = fmt.Errorf("kanji %q: no explanation for kind %s", c, entry.Kind)
		return exp
	}

	exp.Panels = kb.panels(c, phon, "", ov)
	return exp
}

func (kb *KnowledgeBase) explainRadical(exp Explanation, name string, ov Overrides) Explanation {
	var phon string
	if kb.radicals != nil {
		phon, _ = kb.radicals.PhoneticOfRadical(name)
	}
	phon = Normalize(phon)
	if phon == "" || !kb.HasPhonetic(phon) {
		exp.Bucket = BucketRadicalNoPhonetic
		return exp
	}

	exp.Bucket = BucketRadical
	exp.Phonetic = phon
	exp.Readings = kb.PhoneticReadingsOf(phon)
	exp.Grid, _ = kb.RankCompounds(phon, "", ov)
	exp.Panels = kb.panels("", phon, "", ov)
	return exp
}

func (kb *KnowledgeBase) panels(subject, phon, base string, ov Overrides) []Panel {
	var panels []Panel
	for _, x := range kb.XRefsOf(phon) {
		if x == "" {
			continue
		}
		kind := PanelXRef
		if x == base {
			kind = PanelBasePhonetic
		}
		grid, _ := kb.RankCompounds(x, subject, ov)
		panels = append(panels, Panel{
			Kind:     kind,
			Phonetic: x,
			Readings: kb.PhoneticReadingsOf(x),
			Grid:     grid,
		})
	}
	if nc := kb.NonCompoundsOf(phon); len(nc) > 0 {
		panels = append(panels, Panel{
			Kind:         PanelNonCompounds,
			Phonetic:     phon,
			Readings:     kb.ReadingsOf(phon),
			NonCompounds: nc,
		})
	}
	return panels
}
