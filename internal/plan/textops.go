package plan

import "strings"

// parameterList locates the parenthesized list that starts at or after
// from, typically the byte just past a function name. Returns the byte
// offsets of the opening and closing parens, or ok=false when no balanced
// list is found within the remaining source. Quotes, template literals and
// nested brackets are honored so a default like `fn(", "))` cannot derail
// the match.
func parameterList(src []byte, from int) (open, close int, ok bool) {
	i := from
	for i < len(src) {
		c := src[i]
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' {
			i++
			continue
		}
		break
	}
	if i >= len(src) || src[i] != '(' {
		return 0, 0, false
	}
	open = i

	depth := 0
	var quote byte
	for j := open; j < len(src); j++ {
		c := src[j]
		if quote != 0 {
			if c == '\\' {
				j++
				continue
			}
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			quote = c
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return open, j, true
			}
		}
	}
	return 0, 0, false
}

// splitTopLevel splits the text between a parameter list's parens on commas
// that are not nested inside brackets, braces, parens or strings. Segments
// keep their original spacing so offsets stay recoverable.
func splitTopLevel(inner string) []string {
	if strings.TrimSpace(inner) == "" {
		return nil
	}
	var (
		segs  []string
		start int
		depth int
		quote byte
	)
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		if quote != 0 {
			if c == '\\' {
				i++
				continue
			}
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				segs = append(segs, inner[start:i])
				start = i + 1
			}
		}
	}
	segs = append(segs, inner[start:])
	return segs
}

// insertionOffset maps a parameter position onto a byte offset inside the
// list and reports whether the new entry needs a leading or trailing comma.
// position -1 (or past the end) appends, 0 prepends, anything else lands
// before the segment at that index.
func insertionOffset(src []byte, open, close, position int) (offset int, before, after bool) {
	inner := string(src[open+1 : close])
	segs := splitTopLevel(inner)

	if len(segs) == 0 {
		return open + 1, false, false
	}
	if position < 0 || position >= len(segs) {
		return close, true, false
	}
	off := open + 1
	for _, seg := range segs[:position] {
		off += len(seg) + 1
	}
	// Skip the segment's leading whitespace so `f(a, b)` gains `f(a, x, b)`
	// instead of `f(a,x,  b)`.
	for off < close && (src[off] == ' ' || src[off] == '\t') {
		off++
	}
	return off, false, true
}

// lineBounds returns the [start, end) byte range of the line containing
// offset, with end past the trailing newline when one exists.
func lineBounds(src []byte, offset int) (start, end int) {
	start = offset
	for start > 0 && src[start-1] != '\n' {
		start--
	}
	end = offset
	for end < len(src) && src[end] != '\n' {
		end++
	}
	if end < len(src) {
		end++
	}
	return start, end
}
