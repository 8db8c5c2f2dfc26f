// Package present turns explanations and similar-kanji rankings into rows
// and pages a host can display.
package present

import (
	"fmt"
	"net/url"

	"github.com/japaniel/kanjinote/pkg/kanji"
	"github.com/japaniel/kanjinote/pkg/similar"
	"github.com/japaniel/kanjinote/pkg/wk"
)

// Badge is a visual marker on a row.
type Badge string

const (
	BadgePerfect Badge = "perfect"
	BadgeHigh    Badge = "high"
	BadgeMiddle  Badge = "middle"
	BadgeLow     Badge = "low"
	BadgeMarked  Badge = "marked"
	BadgeLocked  Badge = "locked"
)

// Meaning hints of the component rows.
const (
	HintPhonetic    = "Phonetic"
	HintNonPhonetic = "Non-Phonetic"
)

// Row is one displayable cell.
type Row struct {
	ID          string   `json:"id"`
	Character   string   `json:"character"`
	Readings    []string `json:"readings"`
	MeaningHint string   `json:"meaning"`
	Badges      []Badge  `json:"badges,omitempty"`
	Link        string   `json:"link,omitempty"`
	External    bool     `json:"external,omitempty"`
	Subject     bool     `json:"subject,omitempty"`
}

// Adapter resolves readings, meanings and links.
type Adapter struct {
	kb       *kanji.KnowledgeBase
	lookup   wk.Lookup
	radicals wk.Radicals
}

// New returns an adapter. The curriculum tables may be nil.
func New(kb *kanji.KnowledgeBase, lookup wk.Lookup, radicals wk.Radicals) *Adapter {
	return &Adapter{kb: kb, lookup: lookup, radicals: radicals}
}

// Rows converts a compound grid.
func (a *Adapter) Rows(grid []kanji.GridItem) []Row {
	rows := make([]Row, 0, len(grid))
	compound := 0
	for _, it := range grid {
		row := Row{Character: it.Character, Readings: it.Readings, Subject: it.Subject}
		switch it.Role {
		case kanji.RolePhonetic:
			row.ID = "phonetic-1"
			row.MeaningHint = HintPhonetic
		case kanji.RoleRadical:
			row.ID = "radical-1"
			row.MeaningHint = a.radicals.Meaning(it.Radical)
			row.Link = "/radicals/" + url.PathEscape(it.Radical)
		case kanji.RoleKanji:
			row.ID = "kanji-1"
			a.fillKanji(&row)
		default:
			compound++
			row.ID = fmt.Sprintf("kanji-%d", compound+1)
			a.fillKanji(&row)
			if b, ok := tierBadge(it.Tier); ok {
				row.Badges = append(row.Badges, b)
			}
			if it.Marked {
				row.Badges = append(row.Badges, BadgeMarked)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// NonCompoundRows lists the panel's phonetic followed by the kanji that
// contain it without taking its sound.
func (a *Adapter) NonCompoundRows(p kanji.Panel) []Row {
	rows := []Row{{ID: "nonphonetic-1", Character: p.Phonetic, Readings: p.Readings, MeaningHint: HintNonPhonetic}}
	for i, c := range p.NonCompounds {
		row := Row{ID: fmt.Sprintf("kanji-%d", i+101), Character: c, Readings: a.kb.ReadingsOf(c)}
		a.fillKanji(&row)
		rows = append(rows, row)
	}
	return rows
}

// SimilarRows converts a similar-kanji ranking.
func (a *Adapter) SimilarRows(ranked []similar.Ranked) []Row {
	rows := make([]Row, 0, len(ranked))
	for i, r := range ranked {
		row := Row{ID: fmt.Sprintf("similar-%d", i+1), Character: r.Character}
		if info, err := a.lookup.Info(r.Character); err == nil {
			row.Readings = info.Readings
		}
		a.fillKanji(&row)
		if r.Locked {
			row.Badges = append(row.Badges, BadgeLocked)
		}
		rows = append(rows, row)
	}
	return rows
}

func (a *Adapter) fillKanji(row *Row) {
	info, err := a.lookup.Info(row.Character)
	if err == nil {
		row.MeaningHint = info.Meaning()
	}
	row.Link, row.External = KanjiLink(row.Character, err == nil && info.InCurriculum())
}

// KanjiLink returns the host page of a curriculum kanji, or a dictionary
// search for anything else.
func KanjiLink(c string, inCurriculum bool) (string, bool) {
	if inCurriculum {
		return "/kanji/" + c, false
	}
	return fmt.Sprintf("https://jisho.org/search/%s%%20%%23kanji", c), true
}

func tierBadge(t kanji.Tier) (Badge, bool) {
	switch t {
	case kanji.TierPerfect:
		return BadgePerfect, true
	case kanji.TierHigh:
		return BadgeHigh, true
	case kanji.TierMiddle:
		return BadgeMiddle, true
	case kanji.TierLow:
		return BadgeLow, true
	}
	return "", false
}
