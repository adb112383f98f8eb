// Package checkpoint records which stages of an import are finished so an
// interrupted run can resume where it stopped.
package checkpoint

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
)

// Stage names a unit of work that is done once per key.
type Stage string

const (
	FileDownload        Stage = "fileDownload"
	EditionDownload     Stage = "editionDownload"
	DisambigExtracted   Stage = "disambigExtracted"
	InfoboxExtracted    Stage = "infoboxExtracted"
	LinksExtracted      Stage = "linksExtracted"
	CrosslinksExtracted Stage = "crosslinksExtracted"
)

var stages = map[Stage]bool{
	FileDownload:        true,
	EditionDownload:     true,
	DisambigExtracted:   true,
	InfoboxExtracted:    true,
	LinksExtracted:      true,
	CrosslinksExtracted: true,
}

// ErrUnknownStage is returned for ledger lines naming no known stage.
var ErrUnknownStage = errors.New("unknown checkpoint stage")

// Ledger is an append-only log of finished (stage, key) pairs, replayed
// into memory when opened. It is safe for concurrent use.
type Ledger struct {
	mu   sync.Mutex
	path string
	done map[Stage]map[string]bool
}

// Open replays the ledger at path. A missing file is an empty ledger.
func Open(path string) (*Ledger, error) {
	l := &Ledger{path: path, done: make(map[Stage]map[string]bool)}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return l, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening checkpoint: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		stage, key, _ := strings.Cut(line, "\t")
		if !stages[Stage(stage)] {
			return nil, fmt.Errorf("%s:%d: %w %q", path, lineNo, ErrUnknownStage, stage)
		}
		l.set(Stage(stage), key)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading checkpoint: %w", err)
	}
	return l, nil
}

func (l *Ledger) set(stage Stage, key string) {
	keys, ok := l.done[stage]
	if !ok {
		keys = make(map[string]bool)
		l.done[stage] = keys
	}
	keys[key] = true
}

// Done reports whether stage has been completed for key.
func (l *Ledger) Done(stage Stage, key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.done[stage][key]
}

// Mark records stage as completed for key and appends it to the file.
// Marking a pair twice writes it once.
func (l *Ledger) Mark(stage Stage, key string) error {
	if !stages[stage] {
		return fmt.Errorf("%w %q", ErrUnknownStage, stage)
	}
	if strings.ContainsAny(key, "\t\n") {
		return fmt.Errorf("checkpoint key %q contains a tab or newline", key)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.done[stage][key] {
		return nil
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening checkpoint: %w", err)
	}
	if _, err := fmt.Fprintf(f, "%s\t%s\n", stage, key); err != nil {
		f.Close()
		return fmt.Errorf("writing checkpoint: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing checkpoint: %w", err)
	}
	l.set(stage, key)
	return nil
}

// Remove deletes the ledger file after a complete run.
func (l *Ledger) Remove() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing checkpoint: %w", err)
	}
	l.done = make(map[Stage]map[string]bool)
	return nil
}
