package router

import "regexp"

var tagRe = regexp.MustCompile(`^\s*\[([^\]]+)\]\s*(.*)$`)

// ParseTag extracts a leading "[tag] body" prefix.
// ok is false when text carries no such prefix, in which case body is the
// whole of text unchanged.
func ParseTag(text string) (tag, body string, ok bool) {
	m := tagRe.FindStringSubmatch(text)
	if m == nil {
		return "", text, false
	}
	return m[1], m[2], true
}
