// Package fill defines the fill intent applied to a region: either a solid
// color or a reference to a registered pattern.
//
// [Intent] is a closed two-variant union. Construct values with [Color] and
// [Pattern]; the zero value is invalid and is rejected by every consumer.
// Switches over [Kind] are exhaustive and panic on anything else, so adding a
// variant is a compile-and-test-time event rather than a silent fallthrough.
package fill

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/matzehuels/cloverquilt/pkg/errors"
)

// Kind discriminates the variants of Intent.
type Kind uint8

const (
	kindInvalid Kind = iota
	// KindColor is a solid fill with a hex color value.
	KindColor
	// KindPattern is a tiled fill referencing a pattern id.
	KindPattern
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindColor:
		return "color"
	case KindPattern:
		return "pattern"
	default:
		return "invalid"
	}
}

// Intent is what the user asked to put into a region.
type Intent struct {
	kind  Kind
	value string
}

// Color returns a solid color intent. The value is stored as given;
// the engine normalizes it when the intent is applied.
func Color(hex string) Intent {
	return Intent{kind: KindColor, value: hex}
}

// Pattern returns a pattern intent for the given pattern id.
func Pattern(id string) Intent {
	return Intent{kind: KindPattern, value: id}
}

// Kind returns the variant of the intent.
func (i Intent) Kind() Kind { return i.kind }

// Value returns the color or the pattern id.
func (i Intent) Value() string { return i.value }

// IsZero reports whether i is the invalid zero intent.
func (i Intent) IsZero() bool { return i.kind == kindInvalid }

// Validate checks the intent's shape. It does not resolve pattern ids.
func (i Intent) Validate() error {
	switch i.kind {
	case KindColor:
		return errors.ValidateHexColor(i.value)
	case KindPattern:
		return errors.ValidatePatternID(i.value)
	case kindInvalid:
		return errors.New(errors.ErrCodeInvalidInput, "empty fill intent")
	default:
		panic(fmt.Sprintf("fill: unknown kind %d", i.kind))
	}
}

// String renders the intent in the form accepted by Parse.
func (i Intent) String() string {
	return i.kind.String() + ":" + i.value
}

// Parse reads an intent from text. Accepted forms are "color:#RRGGBB",
// "pattern:<id>" and a bare hex color.
func Parse(s string) (Intent, error) {
	s = strings.TrimSpace(s)
	kind, value, ok := strings.Cut(s, ":")
	if !ok {
		in := Color(s)
		if err := in.Validate(); err != nil {
			return Intent{}, err
		}
		return in, nil
	}

	var in Intent
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "color":
		in = Color(strings.TrimSpace(value))
	case "pattern":
		in = Pattern(strings.TrimSpace(value))
	default:
		return Intent{}, errors.New(errors.ErrCodeInvalidInput, "unknown fill type %q (want color or pattern)", kind)
	}
	if err := in.Validate(); err != nil {
		return Intent{}, err
	}
	return in, nil
}

type wireIntent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// MarshalJSON encodes the intent as {"type": ..., "value": ...}.
func (i Intent) MarshalJSON() ([]byte, error) {
	if i.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(wireIntent{Type: i.kind.String(), Value: i.value})
}

// UnmarshalJSON decodes {"type": ..., "value": ...}. Null leaves the zero intent.
func (i *Intent) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*i = Intent{}
		return nil
	}
	var w wireIntent
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch w.Type {
	case "color":
		*i = Color(w.Value)
	case "pattern":
		*i = Pattern(w.Value)
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown fill type %q", w.Type)
	}
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML plans.
func (i Intent) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML plans.
func (i *Intent) UnmarshalText(text []byte) error {
	in, err := Parse(string(text))
	if err != nil {
		return err
	}
	*i = in
	return nil
}
