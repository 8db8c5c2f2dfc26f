package kanji

import "fmt"

// Kind is the composition category of a kanji. The zero value is
// KindUnprocessed, so entries without a tag count as not yet analyzed.
type Kind int

const (
	KindUnprocessed    Kind = iota // not yet analyzed
	KindUnknown                    // analyzed, no identifiable phonetic component
	KindHieroglyph                 // 象形
	KindIndicative                 // 指事
	KindCompIndicative             // 会意
	KindCompPhonetic               // 形声
	KindDerivative                 // 転注
	KindRebus                      // 仮借
	KindKokuji                     // made in Japan
	KindBorrowing
)

var kindNames = [...]string{
	KindUnknown:        "unknown",
	KindHieroglyph:     "hieroglyph",
	KindIndicative:     "indicative",
	KindCompIndicative: "comp_indicative",
	KindCompPhonetic:   "comp_phonetic",
	KindDerivative:     "derivative",
	KindRebus:          "rebus",
	KindKokuji:         "kokuji",
	KindBorrowing:      "borrowing",
	KindUnprocessed:    "unprocessed",
}

// ParseKind maps a table tag such as "comp_phonetic" to its Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}
	return KindUnprocessed, fmt.Errorf("unknown kanji kind %q", s)
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if k < 0 || int(k) >= len(kindNames) {
		return nil, fmt.Errorf("invalid kanji kind %d", int(k))
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An empty tag decodes as
// unprocessed.
func (k *Kind) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*k = KindUnprocessed
		return nil
	}
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// isNonPhonetic reports whether the kind explains a kanji without any sound
// component.
func (k Kind) isNonPhonetic() bool {
	switch k {
	case KindHieroglyph, KindIndicative, KindCompIndicative, KindDerivative, KindRebus, KindKokuji:
		return true
	}
	return false
}
