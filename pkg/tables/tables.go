// Package tables loads the static knowledge tables from JSON or YAML files.
package tables

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/japaniel/kanjinote/pkg/kanji"
	"github.com/japaniel/kanjinote/pkg/similar"
	"github.com/japaniel/kanjinote/pkg/wk"
	"gopkg.in/yaml.v3"
)

// Table file base names inside a data directory.
const (
	KanjiFile    = "kanji"
	PhoneticFile = "phonetic"
	LookupFile   = "lookup"
	RadicalsFile = "radicals"
	SourcesFile  = "sources"
	SimilarDir   = "similar"
)

var extensions = []string{".json", ".yaml", ".yml"}

// Set is every table found in a data directory.
type Set struct {
	Kanji     map[string]kanji.KanjiEntry
	Phonetics map[string]kanji.PhoneticEntry
	Lookup    wk.Lookup
	Radicals  wk.Radicals
	Sources   []similar.Source
	Similar   map[string]similar.Table
}

// LoadDir reads a data directory. The kanji and phonetic tables are
// required; the rest fall back to empty tables and similar.DefaultSources.
func LoadDir(dir string) (*Set, error) {
	set := &Set{}
	var err error

	path, err := find(dir, KanjiFile)
	if err != nil {
		return nil, err
	}
	if set.Kanji, err = LoadKanji(path); err != nil {
		return nil, err
	}

	if path, err = find(dir, PhoneticFile); err != nil {
		return nil, err
	}
	if set.Phonetics, err = LoadPhonetics(path); err != nil {
		return nil, err
	}

	set.Lookup = wk.Lookup{}
	if path, err = find(dir, LookupFile); err == nil {
		if set.Lookup, err = LoadLookup(path); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	set.Radicals = wk.Radicals{}
	if path, err = find(dir, RadicalsFile); err == nil {
		if set.Radicals, err = LoadRadicals(path); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	set.Sources = similar.DefaultSources()
	if path, err = find(dir, SourcesFile); err == nil {
		if set.Sources, err = LoadSources(path); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	if set.Similar, err = loadSimilarDir(filepath.Join(dir, SimilarDir)); err != nil {
		return nil, err
	}
	return set, nil
}

// find returns the first existing <dir>/<name><ext>.
func find(dir, name string) (string, error) {
	for _, ext := range extensions {
		p := filepath.Join(dir, name+ext)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
	}
	return "", fmt.Errorf("table %s in %s: %w", name, dir, fs.ErrNotExist)
}

func loadSimilarDir(dir string) (map[string]similar.Table, error) {
	out := map[string]similar.Table{}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read similar tables: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && isTableFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		id := strings.TrimSuffix(name, filepath.Ext(name))
		if _, dup := out[id]; dup {
			return nil, fmt.Errorf("similar table %s defined twice", id)
		}
		t, err := LoadSimilarTable(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		out[id] = t
	}
	return out, nil
}

func isTableFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// LoadKanji reads the kanji table.
func LoadKanji(path string) (map[string]kanji.KanjiEntry, error) {
	return loadKeyed(path,
		func(e kanji.KanjiEntry) string { return e.Character },
		func(e *kanji.KanjiEntry, k string) { e.Character = k })
}

// LoadPhonetics reads the phonetic component table.
func LoadPhonetics(path string) (map[string]kanji.PhoneticEntry, error) {
	return loadKeyed(path,
		func(e kanji.PhoneticEntry) string { return e.Character },
		func(e *kanji.PhoneticEntry, k string) { e.Character = k })
}

// LoadLookup reads the curriculum lookup table.
func LoadLookup(path string) (wk.Lookup, error) {
	m, err := loadKeyed(path,
		func(e wk.Info) string { return e.Character },
		func(e *wk.Info, k string) { e.Character = k })
	return wk.Lookup(m), err
}

// LoadRadicals reads the radical table, keyed by radical name.
func LoadRadicals(path string) (wk.Radicals, error) {
	m, err := loadKeyed(path,
		func(r wk.Radical) string { return r.Name },
		func(r *wk.Radical, k string) { r.Name = k })
	return wk.Radicals(m), err
}

// LoadSources reads the ordered source list.
func LoadSources(path string) ([]similar.Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sources []similar.Source
	if err := decode(path, data, &sources); err != nil {
		return nil, fmt.Errorf("parse sources %s: %w", path, err)
	}
	for i, s := range sources {
		if strings.TrimSpace(s.ID) == "" {
			return nil, fmt.Errorf("parse sources %s: entry %d has no id", path, i)
		}
	}
	return sources, nil
}

// LoadSimilarTable reads one similar-kanji source table.
func LoadSimilarTable(path string) (similar.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var t similar.Table
	if err := decode(path, data, &t); err != nil {
		return nil, fmt.Errorf("parse similar table %s: %w", path, err)
	}
	return t, nil
}

// loadKeyed reads a table stored either as an object keyed by character or
// as an array of entries that carry their own key.
func loadKeyed[T any](path string, key func(T) string, setKey func(*T, string)) (map[string]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var keyed map[string]T
	objErr := decode(path, data, &keyed)
	if objErr == nil {
		out := make(map[string]T, len(keyed))
		for k, v := range keyed {
			k = kanji.Normalize(k)
			if k == "" {
				continue
			}
			setKey(&v, k)
			out[k] = v
		}
		return out, nil
	}

	var list []T
	if err := decode(path, data, &list); err != nil {
		return nil, fmt.Errorf("parse %s as object or array: %w", path, errors.Join(objErr, err))
	}
	out := make(map[string]T, len(list))
	for i, v := range list {
		k := kanji.Normalize(key(v))
		if k == "" {
			return nil, fmt.Errorf("parse %s: entry %d has no key", path, i)
		}
		setKey(&v, k)
		out[k] = v
	}
	return out, nil
}

func decode(path string, data []byte, v any) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, v)
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		return dec.Decode(v)
	}
}
