package kanji

import "slices"

// Tier is the reading-match quality of a compound against its phonetic.
type Tier int

const (
	TierNone    Tier = iota
	TierPerfect      // every reading of the compound is a phonetic reading
	TierHigh         // partial overlap including the compound's main reading
	TierMiddle       // partial overlap without the main reading
	TierLow          // no common reading
)

var tierNames = [...]string{"", "perfect", "high", "middle", "low"}

func (t Tier) String() string {
	if t < 0 || int(t) >= len(tierNames) {
		return ""
	}
	return tierNames[t]
}

// Role says why a character appears in a grid.
type Role int

const (
	RoleCompound Role = iota
	RolePhonetic      // the phonetic component itself
	RoleRadical       // the component as a host-site radical
	RoleKanji         // the component as a standalone kanji
)

// GridItem is one cell of a compound grid.
type GridItem struct {
	Character string
	Role      Role
	Readings  []string
	Radical   string // radical name, RoleRadical only
	Tier      Tier   // RoleCompound only
	Marked    bool
	Subject   bool
}

// ClassifyCompound returns the tier of kanji k used as a compound of phon.
// Readings are compared as sets.
func (kb *KnowledgeBase) ClassifyCompound(k, phon string) Tier {
	kr := kb.ReadingsOf(k)
	pr := kb.PhoneticReadingsOf(phon)

	phonSet := make(map[string]struct{}, len(pr))
	for _, r := range pr {
		phonSet[r] = struct{}{}
	}
	seen := make(map[string]struct{}, len(kr))
	common := 0
	for _, r := range kr {
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		if _, ok := phonSet[r]; ok {
			common++
		}
	}

	switch {
	case len(seen) > 0 && common == len(seen):
		return TierPerfect
	case common == 0:
		return TierLow
	case slices.Contains(pr, kr[0]):
		return TierHigh
	default:
		return TierMiddle
	}
}

// RankCompounds builds the ordered grid for phon: the component's own rows
// first, then perfect and high matches, then middle and low matches. Perfect
// and middle matches are pushed to the front of their bucket, high and low
// matches to the back. The tier of subject is returned when it is one of
// the compounds. An unknown phon is logged and yields an empty grid.
func (kb *KnowledgeBase) RankCompounds(phon, subject string, ov Overrides) ([]GridItem, Tier) {
	phon, subject = Normalize(phon), Normalize(subject)
	if !kb.HasPhonetic(phon) {
		kb.logger.Warn("phonetic not in database, grid skipped", "phonetic", phon)
		return nil, TierNone
	}

	var hi, lo []GridItem
	subjectTier := TierNone
	for _, k := range kb.CompoundsOf(phon) {
		if k == "" {
			continue
		}
		tier := kb.ClassifyCompound(k, phon)
		item := GridItem{
			Character: k,
			Role:      RoleCompound,
			Readings:  kb.ReadingsOf(k),
			Tier:      tier,
			Marked:    ov.Marked(k) != kb.IsObscure(k),
			Subject:   k == subject,
		}
		if item.Subject {
			subjectTier = tier
		}

		switch tier {
		case TierPerfect:
			hi = append([]GridItem{item}, hi...)
		case TierHigh:
			hi = append(hi, item)
		case TierMiddle:
			lo = append([]GridItem{item}, lo...)
		default:
			lo = append(lo, item)
		}
	}

	grid := kb.headRows(phon)
	grid = append(grid, hi...)
	grid = append(grid, lo...)
	return grid, subjectTier
}

func (kb *KnowledgeBase) headRows(phon string) []GridItem {
	readings := kb.ReadingsOf(phon)
	rows := []GridItem{{Character: phon, Role: RolePhonetic, Readings: readings}}
	if kb.radicals != nil {
		if name, ok := kb.radicals.RadicalOfPhonetic(phon); ok {
			rows = append(rows, GridItem{Character: phon, Role: RoleRadical, Readings: readings, Radical: name})
		}
	}
	if kb.HasKanji(phon) {
		rows = append(rows, GridItem{Character: phon, Role: RoleKanji, Readings: readings})
	}
	return rows
}
