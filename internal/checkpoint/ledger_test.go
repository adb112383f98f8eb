package checkpoint

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestLedger_MarkAndReplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gp-checkpoint")
	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if l.Done(LinksExtracted, "en") {
		t.Fatal("fresh ledger reports work done")
	}
	if err := l.Mark(LinksExtracted, "en"); err != nil {
		t.Fatal(err)
	}
	if err := l.Mark(LinksExtracted, "en"); err != nil {
		t.Fatal(err)
	}
	if err := l.Mark(FileDownload, "enwiki-latest-pages-articles.xml.bz2"); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if lines := strings.Count(string(data), "\n"); lines != 2 {
		t.Errorf("expected 2 ledger lines, got %d:\n%s", lines, data)
	}

	replayed, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if !replayed.Done(LinksExtracted, "en") || !replayed.Done(FileDownload, "enwiki-latest-pages-articles.xml.bz2") {
		t.Error("replayed ledger lost entries")
	}
	if replayed.Done(LinksExtracted, "fr") || replayed.Done(CrosslinksExtracted, "en") {
		t.Error("replayed ledger invented entries")
	}
}

func TestLedger_UnknownStage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gp-checkpoint")
	if err := os.WriteFile(path, []byte("linksExtracted\ten\nbogus\tfr\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); !errors.Is(err, ErrUnknownStage) {
		t.Fatalf("expected ErrUnknownStage, got %v", err)
	}

	l, err := Open(filepath.Join(t.TempDir(), "gp-checkpoint"))
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Mark(Stage("bogus"), "x"); !errors.Is(err, ErrUnknownStage) {
		t.Errorf("Mark accepted an unknown stage: %v", err)
	}
}

func TestLedger_ConcurrentMarks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gp-checkpoint")
	l, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := l.Mark(DisambigExtracted, fmt.Sprintf("lang%d", i%10)); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()

	replayed, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		if !replayed.Done(DisambigExtracted, fmt.Sprintf("lang%d", i)) {
			t.Errorf("lang%d missing", i)
		}
	}
	data, _ := os.ReadFile(path)
	if lines := strings.Count(string(data), "\n"); lines != 10 {
		t.Errorf("expected 10 lines, got %d", lines)
	}
}

func TestLedger_Remove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gp-checkpoint")
	l, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Mark(InfoboxExtracted, "it"); err != nil {
		t.Fatal(err)
	}
	if err := l.Remove(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("ledger file still exists: %v", err)
	}
	if l.Done(InfoboxExtracted, "it") {
		t.Error("removed ledger still reports work done")
	}
	if err := l.Remove(); err != nil {
		t.Errorf("removing twice: %v", err)
	}
}
