package wiki

import "strings"

// StripReferences removes every <ref>...</ref> and <ref .../> span. Nested
// reference tags are balanced with a counter; an unterminated span is
// removed up to the end of the text.
func StripReferences(text string) string {
	for {
		start := strings.Index(text, "<ref")
		if start < 0 {
			return text
		}
		end := referenceEnd(text, start)
		text = text[:start] + text[end:]
	}
}

// referenceEnd returns the offset just past the reference opened at start.
func referenceEnd(text string, start int) int {
	depth := 1
	i := start + len("<ref")
	for i < len(text) {
		switch text[i] {
		case '>':
			if text[i-1] == '/' {
				depth--
			}
			i++
		case '<':
			rest := text[i+1:]
			switch {
			case strings.HasPrefix(rest, "ref name="):
				depth++
				i += len("<ref name=")
			case strings.HasPrefix(rest, "ref>"):
				depth++
				i += len("<ref>")
			case strings.HasPrefix(rest, "/ref>"):
				depth--
				i += len("</ref>")
			default:
				i++
			}
		default:
			i++
		}
		if depth == 0 {
			return i
		}
	}
	return len(text)
}

// templateEnd returns the offset of the closing brace of the template
// opened at start, or len(text) when the braces never balance.
func templateEnd(text string, start int) int {
	depth := 2
	for i := start + 2; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
		}
		if depth == 0 {
			return i
		}
	}
	return len(text)
}

// StripTemplates removes every top-level {{...}} invocation. Templates are
// deleted, never expanded. An unbalanced invocation is removed up to the
// end of the text.
func StripTemplates(text string) string {
	from := 0
	for {
		i := strings.Index(text[from:], "{{")
		if i < 0 {
			return text
		}
		start := from + i
		end := templateEnd(text, start)
		if end >= len(text)-1 {
			return text[:start]
		}
		text = text[:start] + text[end+1:]
		// a brace left before the removed span may open a new template
		from = max(0, start-1)
	}
}
