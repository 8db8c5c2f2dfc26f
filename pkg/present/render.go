package present

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/japaniel/kanjinote/pkg/kanji"
)

var headlines = map[kanji.Bucket]string{
	kanji.BucketMissing:           `{{.Subject}} is not in the phonetic database.`,
	kanji.BucketIncomplete:        `{{.Subject}} is a phonetic compound, but its phonetic component has not been recorded yet.`,
	kanji.BucketPhoneticMark:      `{{.Subject}} is a phonetic mark. Kanji containing it are often read {{.Readings}}.{{if .Base}} It belongs to the family of {{.Base}} as well.{{end}}`,
	kanji.BucketUnprocessed:       `{{.Subject}} has not been analyzed yet.`,
	kanji.BucketUnknown:           `The phonetic component of {{.Subject}} is unknown.`,
	kanji.BucketNonPhonetic:       `{{.Subject}} is not a phonetic-semantic compound. It is classified as {{.Kind}}.`,
	kanji.BucketPhonetic:          `{{.Subject}} is a phonetic-semantic compound. Its phonetic mark {{.Phonetic}} is read {{.Readings}}.`,
	kanji.BucketPhoneticMissing:   `{{.Subject}} uses the phonetic mark {{.Phonetic}}, which is missing from the database.`,
	kanji.BucketUnclassified:      `{{.Subject}} is classified as {{.Kind}}, which has no explanation yet.`,
	kanji.BucketRadical:           `The radical {{.Subject}} stands for the phonetic mark {{.Phonetic}}, read {{.Readings}}.`,
	kanji.BucketRadicalNoPhonetic: `The radical {{.Subject}} is not used as a phonetic mark.`,
}

var qualities = map[kanji.Tier]string{
	kanji.TierPerfect: `Every reading of {{.Subject}} matches the phonetic mark.`,
	kanji.TierHigh:    `The main reading of {{.Subject}} matches the phonetic mark.`,
	kanji.TierMiddle:  `Some readings of {{.Subject}} match the phonetic mark, but not the main one.`,
	kanji.TierLow:     `No reading of {{.Subject}} matches the phonetic mark.`,
}

var panelHeadlines = map[kanji.PanelKind]string{
	kanji.PanelXRef:         `{{.Phonetic}} is a phonetic mark of its own, read {{.Readings}}.`,
	kanji.PanelBasePhonetic: `{{.Subject}} is also a compound of {{.Phonetic}}, read {{.Readings}}.`,
	kanji.PanelNonCompounds: `These kanji contain {{.Phonetic}} but do not take its sound.`,
}

var (
	headlineTmpl = parseAll("headline", headlines)
	qualityTmpl  = parseAll("quality", qualities)
	panelTmpl    = parseAll("panel", panelHeadlines)
)

func parseAll[K comparable](prefix string, texts map[K]string) map[K]*template.Template {
	out := make(map[K]*template.Template, len(texts))
	for k, text := range texts {
		out[k] = template.Must(template.New(fmt.Sprintf("%s-%v", prefix, k)).Parse(text))
	}
	return out
}

type textData struct {
	Subject  string
	Phonetic string
	Base     string
	Kind     string
	Readings string
}

func execute(t *template.Template, d textData) string {
	if t == nil {
		return ""
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, d); err != nil {
		return ""
	}
	return buf.String()
}

func joinReadings(r []string) string {
	if len(r) == 0 {
		return "(no readings)"
	}
	return strings.Join(r, "、")
}

// Page is a rendered explanation.
type Page struct {
	Bucket   kanji.Bucket `json:"bucket"`
	Headline string       `json:"headline"`
	Quality  string       `json:"quality,omitempty"`
	Rows     []Row        `json:"rows,omitempty"`
	Panels   []PanelView  `json:"panels,omitempty"`
	Error    string       `json:"error,omitempty"`
}

// PanelView is a rendered secondary panel.
type PanelView struct {
	Headline string `json:"headline"`
	Rows     []Row  `json:"rows"`
}

// Render builds the page for an explanation.
func (a *Adapter) Render(exp kanji.Explanation) Page {
	d := textData{
		Subject:  exp.Subject.Character,
		Phonetic: exp.Phonetic,
		Base:     exp.BasePhonetic,
		Kind:     exp.Kind.String(),
		Readings: joinReadings(exp.Readings),
	}
	page := Page{
		Bucket:   exp.Bucket,
		Headline: execute(headlineTmpl[exp.Bucket], d),
		Quality:  execute(qualityTmpl[exp.Quality], d),
		Rows:     a.Rows(exp.Grid),
	}
	if exp.Err != nil {
		page.Error = exp.Err.Error()
	}
	for _, p := range exp.Panels {
		pd := d
		pd.Phonetic = p.Phonetic
		pd.Readings = joinReadings(p.Readings)
		view := PanelView{Headline: execute(panelTmpl[p.Kind], pd)}
		if p.Kind == kanji.PanelNonCompounds {
			view.Rows = a.NonCompoundRows(p)
		} else {
			view.Rows = a.Rows(p.Grid)
		}
		page.Panels = append(page.Panels, view)
	}
	return page
}

// WriteText prints a page for a terminal.
func WriteText(w io.Writer, page Page) error {
	var b strings.Builder
	b.WriteString(page.Headline)
	b.WriteByte('\n')
	if page.Quality != "" {
		b.WriteString(page.Quality)
		b.WriteByte('\n')
	}
	writeRows(&b, page.Rows)
	for _, p := range page.Panels {
		b.WriteString("\n")
		b.WriteString(p.Headline)
		b.WriteByte('\n')
		writeRows(&b, p.Rows)
	}
	if page.Error != "" {
		fmt.Fprintf(&b, "error: %s\n", page.Error)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteRows prints rows for a terminal.
func WriteRows(w io.Writer, rows []Row) error {
	var b strings.Builder
	writeRows(&b, rows)
	_, err := io.WriteString(w, b.String())
	return err
}

func writeRows(b *strings.Builder, rows []Row) {
	for _, r := range rows {
		marker := " "
		if r.Subject {
			marker = ">"
		}
		fmt.Fprintf(b, "%s %s  %s  %s", marker, r.Character, joinReadings(r.Readings), r.MeaningHint)
		if len(r.Badges) > 0 {
			parts := make([]string, len(r.Badges))
			for i, badge := range r.Badges {
				parts[i] = string(badge)
			}
			fmt.Fprintf(b, "  [%s]", strings.Join(parts, " "))
		}
		if r.Link != "" {
			fmt.Fprintf(b, "  %s", r.Link)
		}
		b.WriteByte('\n')
	}
}
