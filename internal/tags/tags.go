// Package tags parses the free-text tag field of the post form.
package tags

import "strings"

// Parse splits a tag string into tag names. Both ";" and "," separate
// tags. Surrounding whitespace and a single trailing delimiter are
// ignored, every name is trimmed, and empty segments are skipped.
//
//	Parse("new tag; 한글 태그, js") // ["new tag", "한글 태그", "js"]
func Parse(s string) []string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", ";")
	s = strings.TrimSuffix(s, ";")
	if s == "" {
		return nil
	}

	var names []string
	for _, part := range strings.Split(s, ";") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	return names
}

// Join renders names back into the form field representation.
func Join(names []string) string {
	return strings.Join(names, "; ")
}
