package intermediate

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dsnet/compress/bzip2"

	"graphipedia/dataimport/internal/wiki"
)

// ErrCorrupt is returned when the stream does not follow the layout
// written by Writer.
var ErrCorrupt = errors.New("corrupt intermediate stream")

// Reader reads back the records of an intermediate stream in order.
type Reader struct {
	file *os.File
	bz   *bzip2.Reader
	dec  *xml.Decoder
}

// Open opens an intermediate file for reading.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening intermediate file: %w", err)
	}
	r, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.file = f
	return r, nil
}

// NewReader reads a compressed stream from r.
func NewReader(r io.Reader) (*Reader, error) {
	bz, err := bzip2.NewReader(r, &bzip2.ReaderConfig{})
	if err != nil {
		return nil, fmt.Errorf("opening bzip2 stream: %w", err)
	}
	return &Reader{bz: bz, dec: xml.NewDecoder(bz)}, nil
}

// Next returns the next record, or io.EOF after the last one.
func (r *Reader) Next() (*wiki.PageRecord, error) {
	var (
		rec  *wiki.PageRecord
		link *wiki.LinkRecord
		text strings.Builder
	)
	for {
		tok, err := r.dec.Token()
		if err == io.EOF {
			if rec != nil {
				return nil, fmt.Errorf("%w: truncated page %q", ErrCorrupt, rec.Title)
			}
			return nil, io.EOF
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			text.Reset()
			switch el.Name.Local {
			case tagDocument:
			case tagPage:
				rec = &wiki.PageRecord{}
			case tagLink:
				if rec == nil {
					return nil, fmt.Errorf("%w: link outside page", ErrCorrupt)
				}
				link = &wiki.LinkRecord{}
			}
		case xml.CharData:
			text.Write(el)
		case xml.EndElement:
			name := el.Name.Local
			if name == tagDocument {
				continue
			}
			if rec == nil {
				return nil, fmt.Errorf("%w: <%s> outside page", ErrCorrupt, name)
			}
			if link != nil && name != tagLink {
				if err := setLinkField(link, name, text.String()); err != nil {
					return nil, err
				}
				continue
			}
			switch name {
			case tagPage:
				return rec, nil
			case tagLink:
				rec.Links = append(rec.Links, *link)
				link = nil
			default:
				if err := setPageField(rec, name, text.String()); err != nil {
					return nil, err
				}
			}
		}
	}
}

func setPageField(rec *wiki.PageRecord, name, value string) error {
	switch name {
	case tagTitle:
		rec.Title = value
	case tagID:
		rec.WikiID = value
	case tagNamespace:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: namespace %q", ErrCorrupt, value)
		}
		rec.Namespace = n
	case tagRedirect:
		rec.IsRedirect = true
	case tagDisambig:
		rec.IsDisambiguation = true
	default:
		return fmt.Errorf("%w: unknown page element <%s>", ErrCorrupt, name)
	}
	return nil
}

func setLinkField(l *wiki.LinkRecord, name, value string) error {
	var dst *int
	switch name {
	case tagTarget:
		l.Target = value
	case tagAnchor:
		l.Anchors = append(l.Anchors, value)
	case tagRank:
		dst = &l.Rank
	case tagOffset:
		dst = &l.Offset
	case tagOccurrence:
		dst = &l.Occurrences
	case tagInfobox:
		l.InInfobox = true
	case tagIntro:
		l.InIntro = true
	case tagDisambLink:
		l.IsDisambiguation = true
	default:
		return fmt.Errorf("%w: unknown link element <%s>", ErrCorrupt, name)
	}
	if dst != nil {
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: <%s> value %q", ErrCorrupt, name, value)
		}
		*dst = n
	}
	return nil
}

// Close releases the stream and the file opened by Open.
func (r *Reader) Close() error {
	err := r.bz.Close()
	if r.file != nil {
		if ferr := r.file.Close(); err == nil {
			err = ferr
		}
	}
	return err
}
