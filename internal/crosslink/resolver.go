// Package crosslink connects the imported language editions: it resolves
// the rows of each edition's langlinks dump to pairs of stored pages and
// imports them as crosslink edges.
package crosslink

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring"
	"go.uber.org/zap"

	"graphipedia/dataimport/internal/db"
	"graphipedia/dataimport/internal/dump"
	"graphipedia/dataimport/internal/wiki"
)

// Finder is the read side of the graph store.
type Finder interface {
	FindNodesByProperty(label, key string, value any) ([]db.Node, error)
}

// Linker finds pages by wiki id and links them.
type Linker interface {
	NodeByWikiID(lang, wikiID string) (int64, bool, error)
	CreateRelationship(sourceID, targetID int64, relType string, props db.Properties) error
}

// Stats counts the outcome of every langlinks row.
type Stats struct {
	Rows          int
	OtherLanguage int
	OtherNS       int
	MissingSource int
	MissingTarget int
	Resolved      int
}

// Resolver resolves the langlinks of one language edition.
type Resolver struct {
	store  Finder
	lang   string
	tables map[string]*wiki.Namespaces
	known  *roaring.Bitmap
	logger *zap.Logger
}

// NewResolver returns a resolver for the langlinks dump of lang. tables
// holds the namespace table of every imported language; rows pointing to
// other languages are skipped.
func NewResolver(store Finder, lang string, tables map[string]*wiki.Namespaces, logger *zap.Logger) *Resolver {
	return &Resolver{store: store, lang: lang, tables: tables, logger: logger}
}

// WithKnownPages restricts source lookups to the wiki ids in known, the
// pages imported for the resolver's language.
func (r *Resolver) WithKnownPages(known *roaring.Bitmap) *Resolver {
	r.known = known
	return r
}

// Resolve reads langlinks rows from in and writes one line per resolved row
// to out: the source wiki id, the target language and the target wiki id,
// e.g. "681,fr,5". Wiki ids stay valid when the graph is rebuilt.
func (r *Resolver) Resolve(in io.Reader, out io.Writer) (Stats, error) {
	var stats Stats
	w := bufio.NewWriter(out)
	err := dump.ReadLanglinks(in, func(l dump.Langlink) error {
		stats.Rows++
		ns, ok := r.tables[l.Lang]
		if !ok {
			stats.OtherLanguage++
			return nil
		}
		title := wiki.NormalizeTitle(l.Title)
		label, ok := labelOf(ns.Of(title))
		if !ok {
			stats.OtherNS++
			return nil
		}

		found, err := r.hasSource(l.From)
		if err != nil {
			return err
		}
		if !found {
			stats.MissingSource++
			return nil
		}
		target, err := r.findInLanguage(label, "title", title, l.Lang)
		if err != nil {
			return err
		}
		if target == nil {
			stats.MissingTarget++
			return nil
		}

		stats.Resolved++
		_, err = fmt.Fprintf(w, "%s,%s,%s\n", l.From, l.Lang, target.String("wikiid"))
		return err
	})
	if err != nil {
		return stats, fmt.Errorf("resolving %s langlinks: %w", r.lang, err)
	}
	if err := w.Flush(); err != nil {
		return stats, fmt.Errorf("writing %s cross-links: %w", r.lang, err)
	}
	return stats, nil
}

func labelOf(namespace int) (string, bool) {
	switch namespace {
	case wiki.Main:
		return db.LabelArticle, true
	case wiki.Category:
		return db.LabelCategory, true
	}
	return "", false
}

// hasSource reports whether the article, or failing that the category,
// with wiki id exists in the resolver's language.
func (r *Resolver) hasSource(wikiID string) (bool, error) {
	if r.known != nil {
		id, err := strconv.ParseUint(wikiID, 10, 32)
		if err != nil || !r.known.Contains(uint32(id)) {
			return false, nil
		}
	}
	for _, label := range []string{db.LabelArticle, db.LabelCategory} {
		n, err := r.findInLanguage(label, "wikiid", wikiID, r.lang)
		if err != nil || n != nil {
			return n != nil, err
		}
	}
	return false, nil
}

func (r *Resolver) findInLanguage(label, key, value, lang string) (*db.Node, error) {
	nodes, err := r.store.FindNodesByProperty(label, key, value)
	if err != nil {
		return nil, fmt.Errorf("looking up %s %s=%q: %w", label, key, value, err)
	}
	for i := range nodes {
		if strings.EqualFold(nodes[i].String("lang"), lang) {
			return &nodes[i], nil
		}
	}
	return nil, nil
}

// ImportStats counts the lines of a cross-links file.
type ImportStats struct {
	Lines   int
	Created int
	// endpoints no longer in the graph
	Missing int
}

// Import creates a crosslink edge for every line written by Resolve for
// lang.
func Import(store Linker, lang string, in io.Reader) (ImportStats, error) {
	var stats ImportStats
	scanner := bufio.NewScanner(in)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := scanner.Text()
		if line == "" {
			continue
		}
		stats.Lines++
		fields := strings.Split(line, ",")
		if len(fields) != 3 {
			return stats, fmt.Errorf("cross-links line %d: expected 3 fields, got %d", lineNo, len(fields))
		}
		source, ok, err := store.NodeByWikiID(lang, fields[0])
		if err != nil {
			return stats, err
		}
		if !ok {
			stats.Missing++
			continue
		}
		target, ok, err := store.NodeByWikiID(fields[1], fields[2])
		if err != nil {
			return stats, err
		}
		if !ok {
			stats.Missing++
			continue
		}
		if err := store.CreateRelationship(source, target, db.RelCrosslink, nil); err != nil {
			return stats, err
		}
		stats.Created++
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("reading cross-links: %w", err)
	}
	return stats, nil
}
