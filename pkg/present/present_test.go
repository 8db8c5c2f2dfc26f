package present

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/japaniel/kanjinote/pkg/kanji"
	"github.com/japaniel/kanjinote/pkg/similar"
	"github.com/japaniel/kanjinote/pkg/wk"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture(t *testing.T) (*kanji.KnowledgeBase, *Adapter) {
	t.Helper()
	radicals := wk.Radicals{"mix": {Name: "mix", Meaning: "Mix", Phonetic: "交"}}
	kb := kanji.New(
		map[string]kanji.KanjiEntry{
			"交": {Readings: []string{"こう"}, Kind: kanji.KindHieroglyph, Phonetic: "交"},
			"校": {Readings: []string{"こう", "きょう"}, Kind: kanji.KindCompPhonetic, Phonetic: "交"},
			"郊": {Readings: []string{"こう"}, Kind: kanji.KindCompPhonetic, Phonetic: "交", Obscure: true},
			"効": {Readings: []string{"き"}, Kind: kanji.KindCompPhonetic, Phonetic: "交"},
			"較": {Readings: []string{"かく", "こう"}, Kind: kanji.KindCompPhonetic, Phonetic: "交"},
			"父": {Readings: []string{"ふ"}, Kind: kanji.KindHieroglyph},
		},
		map[string]kanji.PhoneticEntry{
			"交": {Readings: []string{"こう"}, Compounds: []string{"交", "郊", "校", "効", "較"}, NonCompounds: []string{"父"}},
		},
		kanji.WithRadicals(radicals),
	)
	lookup := wk.Lookup{
		"交": {Level: 8, Meanings: []string{"Mix"}, Onyomi: []string{"こう"}},
		"校": {Level: 3, Meanings: []string{"School"}, Onyomi: []string{"こう"}},
		"効": {Level: 10, Meanings: []string{"Effect"}, Onyomi: []string{"こう"}},
		"較": {Level: wk.NotInCurriculum, Meanings: []string{"Compare"}, Onyomi: []string{"かく"}},
		"父": {Level: 5, Meanings: []string{"Father"}, Kunyomi: []string{"ちち"}, ImportantReading: "kunyomi"},
	}
	return kb, New(kb, lookup, radicals)
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func renderText(t *testing.T, page Page) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, page))
	return buf.Bytes()
}

func TestRenderPhoneticGolden(t *testing.T) {
	kb, a := fixture(t)
	page := a.Render(kb.Explain(kanji.Subject{Character: "校"}, nil))
	newGoldie(t).Assert(t, "explain_phonetic", renderText(t, page))
}

func TestRenderMissingGolden(t *testing.T) {
	kb, a := fixture(t)
	page := a.Render(kb.Explain(kanji.Subject{Character: "無"}, nil))
	assert.Equal(t, kanji.BucketMissing, page.Bucket)
	newGoldie(t).Assert(t, "explain_missing", renderText(t, page))
}

func TestRowsBadgesAndLinks(t *testing.T) {
	kb, a := fixture(t)
	grid, _ := kb.RankCompounds("交", "校", kanji.Overrides{"郊": {Marked: true}})
	rows := a.Rows(grid)
	require.Len(t, rows, 8)

	assert.Equal(t, Row{ID: "phonetic-1", Character: "交", Readings: []string{"こう"}, MeaningHint: HintPhonetic}, rows[0])
	assert.Equal(t, "radical-1", rows[1].ID)
	assert.Equal(t, "/radicals/mix", rows[1].Link)
	assert.Equal(t, "kanji-1", rows[2].ID)

	byChar := map[string]Row{}
	for _, r := range rows[3:] {
		byChar[r.Character] = r
	}
	// Marked in the database and toggled by the user cancels out.
	assert.Equal(t, []Badge{BadgePerfect}, byChar["郊"].Badges)
	assert.True(t, byChar["郊"].External)
	assert.Equal(t, []Badge{BadgeHigh}, byChar["校"].Badges)
	assert.True(t, byChar["校"].Subject)
	assert.Equal(t, "/kanji/校", byChar["校"].Link)
	assert.Equal(t, "https://jisho.org/search/較%20%23kanji", byChar["較"].Link)
	assert.Equal(t, []Badge{BadgeLow}, byChar["効"].Badges)
	assert.Equal(t, "kanji-3", rows[4].ID)
}

func TestRenderBucketsAreDistinct(t *testing.T) {
	kb, a := fixture(t)
	seen := map[string]kanji.Bucket{}
	for _, subj := range []kanji.Subject{
		{Character: "無"},
		{Character: "交"},
		{Character: "校"},
		{Character: "父"},
		{Character: "mix", IsRadical: true},
		{Character: "stick", IsRadical: true},
	} {
		page := a.Render(kb.Explain(subj, nil))
		require.NotEmpty(t, page.Headline, "subject %s", subj.Character)
		if other, dup := seen[page.Headline]; dup {
			t.Fatalf("bucket %s and %s share headline %q", page.Bucket, other, page.Headline)
		}
		seen[page.Headline] = page.Bucket
	}
}

func TestEveryBucketHasHeadline(t *testing.T) {
	for b := kanji.BucketMissing; b <= kanji.BucketRadicalNoPhonetic; b++ {
		assert.NotNil(t, headlineTmpl[b], "bucket %s", b)
	}
}

func TestRenderPhoneticMarkMentionsBase(t *testing.T) {
	kb := kanji.New(
		map[string]kanji.KanjiEntry{
			"古": {Readings: []string{"こ"}, Kind: kanji.KindHieroglyph, Phonetic: "古"},
			"固": {Readings: []string{"こ"}, Kind: kanji.KindCompPhonetic, Phonetic: "古"},
		},
		map[string]kanji.PhoneticEntry{
			"古": {Readings: []string{"こ"}, Compounds: []string{"古", "固"}},
			"固": {Readings: []string{"こ"}, XRefs: []string{"古"}},
		},
	)
	a := New(kb, nil, nil)
	page := a.Render(kb.Explain(kanji.Subject{Character: "固"}, nil))
	assert.Equal(t, "固 is a phonetic mark. Kanji containing it are often read こ. It belongs to the family of 古 as well.", page.Headline)
	require.Len(t, page.Panels, 1)
	assert.Equal(t, "固 is also a compound of 古, read こ.", page.Panels[0].Headline)
}

func TestSimilarRows(t *testing.T) {
	_, a := fixture(t)
	rows := a.SimilarRows([]similar.Ranked{
		{Character: "校", Score: 1},
		{Character: "父", Score: 0.7, Locked: true},
	})
	require.Len(t, rows, 2)
	assert.Equal(t, Row{ID: "similar-1", Character: "校", Readings: []string{"こう"}, MeaningHint: "School", Link: "/kanji/校"}, rows[0])
	assert.Equal(t, []string{"ちち"}, rows[1].Readings)
	assert.Equal(t, []Badge{BadgeLocked}, rows[1].Badges)
}

func TestPageJSON(t *testing.T) {
	kb, a := fixture(t)
	page := a.Render(kb.Explain(kanji.Subject{Character: "父"}, nil))
	b, err := json.Marshal(page)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "non_phonetic", m["bucket"])
}
