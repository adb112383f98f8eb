package intermediate

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"reflect"
	"testing"

	"graphipedia/dataimport/internal/wiki"
)

func sampleRecords() []wiki.PageRecord {
	return []wiki.PageRecord{
		{
			Title:     "Paris",
			WikiID:    "681",
			Namespace: wiki.Main,
			Links: []wiki.LinkRecord{
				{Target: "France", Anchors: []string{"French Republic", " <spaced> & \"quoted\" "}, Offset: 12, Rank: 1, Occurrences: 3, InIntro: true},
				{Target: "Category:Capitals", Offset: 400, Rank: 9, Occurrences: 1, InInfobox: true},
			},
		},
		{Title: "Empty page", WikiID: "2", Namespace: wiki.Main},
		{Title: "Paris, France", WikiID: "700", Namespace: wiki.Main, IsRedirect: true,
			Links: []wiki.LinkRecord{{Target: "Paris", Rank: 1, Occurrences: 1}}},
		{Title: "Mercury", WikiID: "9", Namespace: wiki.Main, IsDisambiguation: true,
			Links: []wiki.LinkRecord{{Target: "Mercury (planet)", Offset: 2, Rank: 1, Occurrences: 1, IsDisambiguation: true}}},
		{Title: "Category:Capitals", WikiID: "800", Namespace: wiki.Category},
		{Title: "Line\nbreaks\r\nand\ttabs", WikiID: "10", Namespace: wiki.Main},
	}
}

func readAll(t *testing.T, r *Reader) []wiki.PageRecord {
	t.Helper()
	var out []wiki.PageRecord
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		out = append(out, *rec)
	}
}

func TestRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	records := sampleRecords()
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if w.Pages() != len(records) || w.Links() != 4 {
		t.Errorf("pages=%d links=%d", w.Pages(), w.Links())
	}

	r, err := NewReader(&buf)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer r.Close()

	got := readAll(t, r)
	if !reflect.DeepEqual(got, records) {
		t.Errorf("round trip mismatch\n got %+v\nwant %+v", got, records)
	}
}

func TestRoundTrip_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "intermediate.xml.bz2")
	w, err := Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()
	if got := readAll(t, r); len(got) != 0 {
		t.Errorf("expected empty stream, got %d records", len(got))
	}
}

func TestReader_Truncated(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := w.Write(sampleRecords()[0]); err != nil {
		t.Fatalf("Write: %v", err)
	}
	// flush without the closing document tag
	if err := w.enc.Flush(); err != nil {
		t.Fatal(err)
	}
	if err := w.bz.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := NewReader(&buf)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if _, err := r.Next(); err != nil {
		t.Fatalf("first record should decode: %v", err)
	}
	if _, err := r.Next(); !errors.Is(err, ErrCorrupt) {
		t.Errorf("expected ErrCorrupt at truncated end, got %v", err)
	}
}
