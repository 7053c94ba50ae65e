package render

import (
	"encoding/json"
	"errors"
	"strings"
)

// TrackingsVariable is always rendered as a bullet list, whatever the shape
// of its bound value.
const TrackingsVariable = "trackings"

const bullet = "• "

type Kind int

const (
	ScalarKind Kind = iota
	ListKind
)

func (k Kind) String() string {
	switch k {
	case ScalarKind:
		return "scalar"
	case ListKind:
		return "list"
	default:
		return "unknown"
	}
}

// Value is the value bound to a placeholder: either a single string or an
// ordered list of strings.
type Value struct {
	kind   Kind
	scalar string
	items  []string
}

// Bindings maps placeholder names to their values for one rendering.
type Bindings map[string]Value

func Scalar(s string) Value {
	return Value{kind: ScalarKind, scalar: s}
}

func List(items ...string) Value {
	copied := make([]string, len(items))
	copy(copied, items)
	return Value{kind: ListKind, items: copied}
}

func (v Value) Kind() Kind {
	return v.kind
}

// IsEmpty reports whether the value should be skipped during substitution.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case ListKind:
		return len(v.items) == 0
	default:
		return v.scalar == ""
	}
}

// String returns the scalar text, or the list items joined by newlines.
func (v Value) String() string {
	switch v.kind {
	case ListKind:
		return strings.Join(v.items, "\n")
	default:
		return v.scalar
	}
}

// Items returns a copy of the list items. A scalar yields a single item.
func (v Value) Items() []string {
	switch v.kind {
	case ListKind:
		out := make([]string, len(v.items))
		copy(out, v.items)
		return out
	default:
		return []string{v.scalar}
	}
}

// Format renders a bound value into the text substituted for its placeholder.
func Format(name string, v Value) string {
	switch v.kind {
	case ListKind:
		return bulletList(v.items)
	default:
		if strings.Contains(v.scalar, "\n") {
			parts := strings.Split(v.scalar, "\n")
			for i, p := range parts {
				parts[i] = strings.TrimSpace(p)
			}
			return bulletList(parts)
		}
		if name == TrackingsVariable {
			return bulletList([]string{strings.TrimSpace(v.scalar)})
		}
		return v.scalar
	}
}

func bulletList(items []string) string {
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(bullet)
		b.WriteString(item)
	}
	return b.String()
}

var errInvalidValue = errors.New("value must be a string or an array of strings")

func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == ListKind {
		items := v.items
		if items == nil {
			items = []string{}
		}
		return json.Marshal(items)
	}
	return json.Marshal(v.scalar)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	switch {
	case trimmed == "null":
		*v = Scalar("")
		return nil
	case strings.HasPrefix(trimmed, "["):
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return errInvalidValue
		}
		*v = List(items...)
		return nil
	case strings.HasPrefix(trimmed, `"`):
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return errInvalidValue
		}
		*v = Scalar(s)
		return nil
	default:
		return errInvalidValue
	}
}
