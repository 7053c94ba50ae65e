// Package render implements the {name} placeholder engine used by every
// message flow: extraction of the variables a template uses, formatting of
// bound values and substitution.
package render

import "strings"

// Token returns the literal placeholder text for name.
func Token(name string) string {
	return "{" + name + "}"
}

// scan walks body once, left to right. A '{' followed by one or more
// characters other than '}' up to the next '}' is a placeholder; anything
// else, including "{}" and an unterminated '{', is plain text.
func scan(body string, text func(string), placeholder func(token, name string)) {
	cursor := 0
	for cursor < len(body) {
		open := strings.IndexByte(body[cursor:], '{')
		if open == -1 {
			text(body[cursor:])
			return
		}
		open += cursor

		end := strings.IndexByte(body[open+1:], '}')
		if end == -1 {
			text(body[cursor:])
			return
		}
		end += open + 1

		if end == open+1 {
			text(body[cursor : open+1])
			cursor = open + 1
			continue
		}

		if open > cursor {
			text(body[cursor:open])
		}
		placeholder(body[open:end+1], body[open+1:end])
		cursor = end + 1
	}
}

// Extract returns the distinct placeholder names in body, in order of first
// appearance. Names are returned verbatim and compared case-sensitively.
func Extract(body string) []string {
	names := []string{}
	seen := make(map[string]struct{})
	scan(body, func(string) {}, func(_, name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	})
	return names
}

// Render substitutes every placeholder that has a non-empty binding with its
// formatted value. Unbound placeholders and placeholders bound to an empty
// value are kept as literal text. Substituted text is never scanned again.
func Render(body string, bindings Bindings) string {
	if len(bindings) == 0 {
		return body
	}

	var b strings.Builder
	b.Grow(len(body))
	scan(body, func(s string) {
		b.WriteString(s)
	}, func(token, name string) {
		v, ok := bindings[name]
		if !ok || v.IsEmpty() {
			b.WriteString(token)
			return
		}
		b.WriteString(Format(name, v))
	})
	return b.String()
}

// Unresolved lists the placeholders of body that Render would leave in place
// for the given bindings.
func Unresolved(body string, bindings Bindings) []string {
	missing := []string{}
	for _, name := range Extract(body) {
		if v, ok := bindings[name]; !ok || v.IsEmpty() {
			missing = append(missing, name)
		}
	}
	return missing
}
