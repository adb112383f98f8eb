package dump

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Value is one field of a row in a MySQL dump.
type Value struct {
	Text string
	Null bool
}

// Rows scans the INSERT statements for one table of a MySQL dump and
// calls fn once per row.
func Rows(r io.Reader, table string, fn func(row []Value) error) error {
	prefix := "INSERT INTO `" + table + "` VALUES "
	br := bufio.NewReaderSize(r, 1<<20)
	for lineNo := 1; ; lineNo++ {
		line, err := br.ReadString('\n')
		if strings.HasPrefix(line, prefix) {
			if perr := parseTuples(line[len(prefix):], fn); perr != nil {
				return fmt.Errorf("%s dump line %d: %w", table, lineNo, perr)
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading %s dump: %w", table, err)
		}
	}
}

// parseTuples walks "(a,'b',NULL),(c,'d',e);" emitting each tuple.
func parseTuples(s string, fn func(row []Value) error) error {
	i := 0
	var row []Value
	for i < len(s) {
		switch s[i] {
		case '(':
			row = row[:0]
			i++
			for {
				v, next, err := parseValue(s, i)
				if err != nil {
					return err
				}
				row = append(row, v)
				i = next
				if i >= len(s) {
					return fmt.Errorf("%w: unterminated tuple", ErrMalformed)
				}
				if s[i] == ',' {
					i++
					continue
				}
				if s[i] == ')' {
					i++
					break
				}
				return fmt.Errorf("%w: unexpected %q at %d", ErrMalformed, s[i], i)
			}
			if err := fn(row); err != nil {
				return err
			}
		case ',', ';', '\n', '\r', ' ':
			i++
		default:
			return fmt.Errorf("%w: unexpected %q at %d", ErrMalformed, s[i], i)
		}
	}
	return nil
}

func parseValue(s string, i int) (Value, int, error) {
	if i >= len(s) {
		return Value{}, i, fmt.Errorf("%w: truncated value", ErrMalformed)
	}
	if s[i] != '\'' {
		end := i
		for end < len(s) && s[end] != ',' && s[end] != ')' {
			end++
		}
		text := s[i:end]
		if text == "NULL" {
			return Value{Null: true}, end, nil
		}
		return Value{Text: text}, end, nil
	}

	var b strings.Builder
	for j := i + 1; j < len(s); j++ {
		c := s[j]
		switch c {
		case '\\':
			j++
			if j >= len(s) {
				return Value{}, j, fmt.Errorf("%w: dangling escape", ErrMalformed)
			}
			b.WriteByte(unescape(s[j]))
		case '\'':
			if j+1 < len(s) && s[j+1] == '\'' {
				b.WriteByte('\'')
				j++
				continue
			}
			return Value{Text: b.String()}, j + 1, nil
		default:
			b.WriteByte(c)
		}
	}
	return Value{}, len(s), fmt.Errorf("%w: unterminated string", ErrMalformed)
}

func unescape(c byte) byte {
	switch c {
	case '0':
		return 0
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	case 'Z':
		return 0x1a
	default:
		return c
	}
}
