package dump

import (
	"fmt"
	"io"
)

// Langlink is one row of a langlinks dump: page From of the dumped
// edition is the same topic as Title in edition Lang.
type Langlink struct {
	From  string
	Lang  string
	Title string
}

// ReadLanglinks calls fn for every row of a langlinks dump.
func ReadLanglinks(r io.Reader, fn func(Langlink) error) error {
	return Rows(r, "langlinks", func(row []Value) error {
		if len(row) < 3 {
			return fmt.Errorf("%w: langlinks row has %d fields", ErrMalformed, len(row))
		}
		return fn(Langlink{From: row[0].Text, Lang: row[1].Text, Title: row[2].Text})
	})
}
