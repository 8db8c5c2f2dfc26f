// Package wk holds the host site's curriculum tables: per-kanji level,
// meanings and readings, and the radicals drawn as phonetic components.
package wk

import "github.com/japaniel/kanjinote/pkg/kanji"

// NotInCurriculum is the level recorded for characters outside the
// curriculum.
const NotInCurriculum = 99

// Info is one row of the curriculum lookup table.
type Info struct {
	Character        string   `json:"character,omitempty" yaml:"character,omitempty"`
	Level            int      `json:"level" yaml:"level"`
	Meanings         []string `json:"meanings" yaml:"meanings"`
	Onyomi           []string `json:"onyomi,omitempty" yaml:"onyomi,omitempty"`
	Kunyomi          []string `json:"kunyomi,omitempty" yaml:"kunyomi,omitempty"`
	ImportantReading string   `json:"important_reading,omitempty" yaml:"important_reading,omitempty"`
	// Readings is filled from ImportantReading by Lookup.Info.
	Readings []string `json:"readings,omitempty" yaml:"-"`
}

// InCurriculum reports whether the character is taught by the host site.
func (i Info) InCurriculum() bool { return i.Level != NotInCurriculum }

// Meaning returns the primary meaning, or "".
func (i Info) Meaning() string {
	if len(i.Meanings) == 0 {
		return ""
	}
	return i.Meanings[0]
}

// Lookup is the curriculum table keyed by character.
type Lookup map[string]Info

// Info returns the row for c with Readings resolved from the important
// reading ("onyomi" or "kunyomi"), or a *kanji.NotFoundError.
func (l Lookup) Info(c string) (Info, error) {
	info, ok := l[kanji.Normalize(c)]
	if !ok {
		return Info{}, &kanji.NotFoundError{Table: kanji.TableLookup, Character: c}
	}
	switch info.ImportantReading {
	case "kunyomi":
		info.Readings = info.Kunyomi
	default:
		info.Readings = info.Onyomi
	}
	return info, nil
}

// Has reports whether c is in the table.
func (l Lookup) Has(c string) bool {
	_, ok := l[kanji.Normalize(c)]
	return ok
}

// Radical is a host-site radical.
type Radical struct {
	Name     string `json:"name" yaml:"name"`
	Meaning  string `json:"meaning" yaml:"meaning"`
	Phonetic string `json:"phonetic,omitempty" yaml:"phonetic,omitempty"`
}

// Radicals is keyed by radical name and implements kanji.RadicalMapper.
type Radicals map[string]Radical

// PhoneticOfRadical returns the phonetic character the radical stands for.
func (r Radicals) PhoneticOfRadical(name string) (string, bool) {
	rad, ok := r[name]
	if !ok || rad.Phonetic == "" {
		return "", false
	}
	return rad.Phonetic, true
}

// RadicalOfPhonetic returns the name of the radical drawn as phon. When
// several radicals share a phonetic the alphabetically first name wins.
func (r Radicals) RadicalOfPhonetic(phon string) (string, bool) {
	phon = kanji.Normalize(phon)
	best := ""
	for name, rad := range r {
		if kanji.Normalize(rad.Phonetic) != phon || phon == "" {
			continue
		}
		if best == "" || name < best {
			best = name
		}
	}
	return best, best != ""
}

// Meaning returns the display meaning of a radical name.
func (r Radicals) Meaning(name string) string {
	rad, ok := r[name]
	if !ok || rad.Meaning == "" {
		return name
	}
	return rad.Meaning
}
