package wiki

import "strings"

// Span is an inclusive [Start, End] range of offsets into a text.
type Span struct {
	Start int
	End   int
}

// Contains reports whether offset falls within the span.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start && offset <= s.End
}

// FindInfobox locates the first top-level template whose name is one of
// the known infobox templates. The returned span runs from the opening
// braces to one past the closing ones, in byte offsets of text.
func FindInfobox(text string, templates TitleSet) (Span, bool) {
	if len(templates) == 0 {
		return Span{}, false
	}
	from := 0
	for {
		i := strings.Index(text[from:], "{{")
		if i < 0 {
			return Span{}, false
		}
		start := from + i
		end := templateEnd(text, start)
		if end >= len(text) {
			return Span{}, false
		}
		from = end + 1
		template := text[start : end+1]
		bar := strings.IndexByte(template, '|')
		if bar < 0 {
			continue
		}
		name := NormalizeTemplateName(template[2:bar])
		if templates.Contains(name) {
			return Span{Start: start, End: end + 1}, true
		}
	}
}

// FindIntroduction returns the text before the first section heading. A
// page without headings, or starting with one, has no introduction.
func FindIntroduction(text string) (Span, bool) {
	end := strings.Index(text, "==")
	if end <= 0 {
		return Span{}, false
	}
	return Span{Start: 0, End: end}, true
}
