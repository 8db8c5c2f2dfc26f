package kanji

// OverrideEntry is the user's choice for the marked badge of one kanji.
type OverrideEntry struct {
	Marked bool `json:"marked"`
}

// Overrides is the user-editable override table keyed by character. A nil
// table behaves as empty for reads.
type Overrides map[string]OverrideEntry

// Marked reports the user flag for c.
func (o Overrides) Marked(c string) bool {
	return o[Normalize(c)].Marked
}

// Toggle flips the user flag for c and returns the new value.
func (o Overrides) Toggle(c string) bool {
	c = Normalize(c)
	e := o[c]
	e.Marked = !e.Marked
	o[c] = e
	return e.Marked
}

