package intermediate

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/dsnet/compress/bzip2"

	"graphipedia/dataimport/internal/wiki"
)

// Writer appends page records to an intermediate stream.
type Writer struct {
	file  *os.File
	bz    *bzip2.Writer
	enc   *xml.Encoder
	pages int
	links int
}

// Create truncates path and returns a writer on it.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating intermediate file: %w", err)
	}
	w, err := NewWriter(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	w.file = f
	return w, nil
}

// NewWriter writes a compressed stream to w. Close does not close w.
func NewWriter(w io.Writer) (*Writer, error) {
	bz, err := bzip2.NewWriter(w, &bzip2.WriterConfig{Level: bzip2.BestSpeed})
	if err != nil {
		return nil, fmt.Errorf("creating bzip2 writer: %w", err)
	}
	enc := xml.NewEncoder(bz)
	if err := enc.EncodeToken(xml.StartElement{Name: xml.Name{Local: tagDocument}}); err != nil {
		return nil, fmt.Errorf("writing intermediate header: %w", err)
	}
	return &Writer{bz: bz, enc: enc}, nil
}

// Write appends one page record.
func (w *Writer) Write(rec wiki.PageRecord) error {
	if err := w.write(rec); err != nil {
		return fmt.Errorf("writing page %q: %w", rec.Title, err)
	}
	w.pages++
	w.links += len(rec.Links)
	return nil
}

func (w *Writer) write(rec wiki.PageRecord) error {
	if err := w.open(tagPage); err != nil {
		return err
	}
	if err := w.text(tagTitle, rec.Title); err != nil {
		return err
	}
	if err := w.text(tagID, rec.WikiID); err != nil {
		return err
	}
	if err := w.text(tagNamespace, strconv.Itoa(rec.Namespace)); err != nil {
		return err
	}
	if err := w.flag(tagRedirect, rec.IsRedirect); err != nil {
		return err
	}
	if err := w.flag(tagDisambig, rec.IsDisambiguation); err != nil {
		return err
	}
	for _, l := range rec.Links {
		if err := w.link(l); err != nil {
			return err
		}
	}
	return w.close(tagPage)
}

func (w *Writer) link(l wiki.LinkRecord) error {
	if err := w.open(tagLink); err != nil {
		return err
	}
	if err := w.text(tagTarget, l.Target); err != nil {
		return err
	}
	for _, a := range l.Anchors {
		if err := w.text(tagAnchor, a); err != nil {
			return err
		}
	}
	if err := w.text(tagRank, strconv.Itoa(l.Rank)); err != nil {
		return err
	}
	if err := w.text(tagOffset, strconv.Itoa(l.Offset)); err != nil {
		return err
	}
	if err := w.text(tagOccurrence, strconv.Itoa(l.Occurrences)); err != nil {
		return err
	}
	if err := w.flag(tagInfobox, l.InInfobox); err != nil {
		return err
	}
	if err := w.flag(tagIntro, l.InIntro); err != nil {
		return err
	}
	if err := w.flag(tagDisambLink, l.IsDisambiguation); err != nil {
		return err
	}
	return w.close(tagLink)
}

func (w *Writer) open(name string) error {
	return w.enc.EncodeToken(xml.StartElement{Name: xml.Name{Local: name}})
}

func (w *Writer) close(name string) error {
	return w.enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: name}})
}

func (w *Writer) text(name, value string) error {
	if err := w.open(name); err != nil {
		return err
	}
	if err := w.enc.EncodeToken(xml.CharData(value)); err != nil {
		return err
	}
	return w.close(name)
}

func (w *Writer) flag(name string, set bool) error {
	if !set {
		return nil
	}
	if err := w.open(name); err != nil {
		return err
	}
	return w.close(name)
}

// Pages returns the number of records written.
func (w *Writer) Pages() int { return w.pages }

// Links returns the number of link records written.
func (w *Writer) Links() int { return w.links }

// Close terminates the stream and closes the file opened by Create.
func (w *Writer) Close() error {
	if err := w.close(tagDocument); err != nil {
		return fmt.Errorf("writing intermediate trailer: %w", err)
	}
	if err := w.enc.Flush(); err != nil {
		return fmt.Errorf("flushing intermediate stream: %w", err)
	}
	if err := w.bz.Close(); err != nil {
		return fmt.Errorf("closing bzip2 stream: %w", err)
	}
	if w.file != nil {
		return w.file.Close()
	}
	return nil
}
