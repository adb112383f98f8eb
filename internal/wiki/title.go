package wiki

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"
)

// NormalizeTitle upper-cases the first character of a title.
func NormalizeTitle(title string) string {
	r, size := utf8.DecodeRuneInString(title)
	if r == utf8.RuneError {
		return title
	}
	upper := unicode.ToUpper(r)
	if upper == r {
		return title
	}
	return string(upper) + title[size:]
}

// NormalizeTemplateName maps a template name to the form it takes in
// template lists: underscores as spaces, first character upper case.
func NormalizeTemplateName(name string) string {
	return NormalizeTitle(strings.ReplaceAll(strings.TrimSpace(name), "_", " "))
}

// TitleSet is a read-only set of page titles.
type TitleSet map[string]struct{}

// NewTitleSet builds a set from titles.
func NewTitleSet(titles ...string) TitleSet {
	s := make(TitleSet, len(titles))
	for _, t := range titles {
		s[t] = struct{}{}
	}
	return s
}

// Contains reports whether title is in the set. A nil set is empty.
func (s TitleSet) Contains(title string) bool {
	_, ok := s[title]
	return ok
}

// LoadTitleSet reads one title per line, skipping blank lines. When
// normalize is not nil each line is passed through it first.
func LoadTitleSet(path string, normalize func(string) string) (TitleSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening title list: %w", err)
	}
	defer f.Close()

	set := make(TitleSet)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		if normalize != nil {
			line = normalize(line)
		}
		set[line] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return set, nil
}
