package wk

import (
	"errors"
	"testing"

	"github.com/japaniel/kanjinote/pkg/kanji"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupInfoResolvesImportantReading(t *testing.T) {
	l := Lookup{
		"木": {Level: 1, Meanings: []string{"Tree", "Wood"}, Onyomi: []string{"もく"}, Kunyomi: []string{"き"}},
		"父": {Level: 5, Meanings: []string{"Father"}, Onyomi: []string{"ふ"}, Kunyomi: []string{"ちち"}, ImportantReading: "kunyomi"},
	}

	info, err := l.Info("木")
	require.NoError(t, err)
	assert.Equal(t, []string{"もく"}, info.Readings)
	assert.Equal(t, "Tree", info.Meaning())
	assert.True(t, info.InCurriculum())

	info, err = l.Info("父")
	require.NoError(t, err)
	assert.Equal(t, []string{"ちち"}, info.Readings)
}

func TestLookupInfoMissing(t *testing.T) {
	_, err := Lookup{}.Info("杏")
	require.Error(t, err)
	assert.True(t, errors.Is(err, kanji.ErrNotFound))
	var nf *kanji.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, kanji.TableLookup, nf.Table)
	assert.False(t, Lookup{}.Has("杏"))
}

func TestNotInCurriculum(t *testing.T) {
	info := Info{Level: NotInCurriculum}
	assert.False(t, info.InCurriculum())
	assert.Empty(t, info.Meaning())
}

func TestRadicals(t *testing.T) {
	r := Radicals{
		"mix":    {Meaning: "Mix", Phonetic: "交"},
		"father": {Meaning: "Father", Phonetic: "交"},
		"stick":  {Meaning: "Stick"},
	}

	p, ok := r.PhoneticOfRadical("mix")
	assert.True(t, ok)
	assert.Equal(t, "交", p)
	_, ok = r.PhoneticOfRadical("stick")
	assert.False(t, ok)
	_, ok = r.PhoneticOfRadical("ghost")
	assert.False(t, ok)

	name, ok := r.RadicalOfPhonetic("交")
	assert.True(t, ok)
	assert.Equal(t, "father", name)
	_, ok = r.RadicalOfPhonetic("")
	assert.False(t, ok)

	assert.Equal(t, "Stick", r.Meaning("stick"))
	assert.Equal(t, "ghost", r.Meaning("ghost"))

	var _ kanji.RadicalMapper = r
}
