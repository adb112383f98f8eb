// Package importer builds the graph of one language edition from its
// intermediate file: nodes first, then edges, then node counters.
package importer

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"graphipedia/dataimport/internal/db"
	"graphipedia/dataimport/internal/intermediate"
	"graphipedia/dataimport/internal/progress"
	"graphipedia/dataimport/internal/wiki"
)

// Inserter is the write side of the graph store.
type Inserter interface {
	CreateNode(labels []string, props db.Properties) (int64, error)
	SetNodeProperties(id int64, props db.Properties) error
	CreateRelationship(sourceID, targetID int64, relType string, props db.Properties) error
}

// RecordSource yields page records until io.EOF.
type RecordSource interface {
	Next() (*wiki.PageRecord, error)
}

// Stats counts what an import produced and what it dropped.
type Stats struct {
	Records    int // pages read from the intermediate file
	Links      int // link records read, resolved or not
	Nodes      int
	Articles   int
	Categories int
	Redirects  int
	Duplicates int
	Geotagged  int
	Edges      map[string]int
	Unresolved int
	Dropped    int
}

// TotalEdges sums the edges of every type.
func (s Stats) TotalEdges() int {
	total := 0
	for _, n := range s.Edges {
		total += n
	}
	return total
}

// Builder imports one language. Its title index lives until the builder is
// discarded; edge creation is single threaded so counters need no locking.
type Builder struct {
	store   Inserter
	lang    string
	geotags map[string]wiki.Geotags
	logger  *zap.Logger
	index   map[string]*Page
	stats   Stats
}

// NewBuilder returns a builder writing pages of lang to store. geotags is
// keyed by wiki id and may be nil.
func NewBuilder(store Inserter, lang string, geotags map[string]wiki.Geotags, logger *zap.Logger) *Builder {
	return &Builder{
		store:   store,
		lang:    lang,
		geotags: geotags,
		logger:  logger,
		index:   make(map[string]*Page),
		stats:   Stats{Edges: make(map[string]int)},
	}
}

// Lookup returns the indexed page with title.
func (b *Builder) Lookup(title string) (*Page, bool) {
	p, ok := b.index[title]
	return p, ok
}

// Stats returns the counts so far.
func (b *Builder) Stats() Stats {
	return b.stats
}

// CreateNodes creates one node per article or category record and indexes
// it by title. A repeated title replaces the index entry; the earlier node
// stays in the store unreachable.
func (b *Builder) CreateNodes(src RecordSource) error {
	counter := progress.NewCounter(b.lang+".nodes", "pages", progress.DefaultEvery, b.logger)
	defer counter.Done()
	for {
		rec, err := src.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading records: %w", err)
		}
		counter.Add(1)
		b.stats.Records++
		if !wiki.IsGraphed(rec.Namespace) {
			continue
		}

		page := &Page{
			Kind:             KindArticle,
			Title:            rec.Title,
			Lang:             b.lang,
			WikiID:           rec.WikiID,
			IsRedirect:       rec.IsRedirect,
			IsDisambiguation: rec.IsDisambiguation,
		}
		if rec.Namespace == wiki.Category {
			page.Kind = KindCategory
		}
		if page.Kind == KindArticle {
			if g, ok := b.geotags[rec.WikiID]; ok {
				page.Geotags = &g
				b.stats.Geotagged++
			}
		}

		id, err := b.store.CreateNode(page.Labels(), page.identity())
		if err != nil {
			return fmt.Errorf("creating node %q: %w", rec.Title, err)
		}
		page.StorageID = id

		if _, dup := b.index[page.Title]; dup {
			b.stats.Duplicates++
			b.logger.Debug("duplicate title", zap.String("title", page.Title))
		}
		b.index[page.Title] = page

		b.stats.Nodes++
		if page.Kind == KindCategory {
			b.stats.Categories++
		} else {
			b.stats.Articles++
		}
		if page.IsRedirect {
			b.stats.Redirects++
		}
	}
}

// CreateEdges links indexed pages. Targets missing from the index and
// category-to-article links are skipped.
func (b *Builder) CreateEdges(src RecordSource) error {
	counter := progress.NewCounter(b.lang+".edges", "pages", progress.DefaultEvery, b.logger)
	defer counter.Done()
	for {
		rec, err := src.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading records: %w", err)
		}
		counter.Add(1)
		b.stats.Links += len(rec.Links)
		source, ok := b.index[rec.Title]
		if !ok {
			continue
		}
		for i := range rec.Links {
			if err := b.createEdge(source, &rec.Links[i]); err != nil {
				return err
			}
		}
	}
}

func (b *Builder) createEdge(source *Page, link *wiki.LinkRecord) error {
	target, ok := b.index[link.Target]
	if !ok {
		b.stats.Unresolved++
		return nil
	}

	var relType string
	switch {
	case source.IsRedirect:
		relType = db.RelRedirectTo
	case source.Kind == KindArticle && target.Kind == KindCategory:
		relType = db.RelBelongTo
		source.Parents++
		target.Size++
	case source.Kind == KindCategory && target.Kind == KindCategory:
		relType = db.RelChildOf
		source.Parents++
		target.Children++
	case source.Kind == KindArticle && target.Kind == KindArticle:
		relType = db.RelLink
		source.Outdegree++
		target.Indegree++
	default:
		b.stats.Dropped++
		return nil
	}

	if err := b.store.CreateRelationship(source.StorageID, target.StorageID, relType, linkProperties(link)); err != nil {
		return fmt.Errorf("linking %q to %q: %w", source.Title, target.Title, err)
	}
	b.stats.Edges[relType]++
	return nil
}

func linkProperties(link *wiki.LinkRecord) db.Properties {
	props := db.Properties{
		"offset":      link.Offset,
		"rank":        link.Rank,
		"occurrences": link.Occurrences,
	}
	if len(link.Anchors) > 0 {
		props["anchors"] = link.Anchors
	}
	if link.InInfobox {
		props["infobox"] = true
	}
	if link.InIntro {
		props["intro"] = true
	}
	if link.IsDisambiguation {
		props["disambig"] = true
	}
	return props
}

// FlushAttributes writes the accumulated counters and geotags of every
// indexed page.
func (b *Builder) FlushAttributes() error {
	counter := progress.NewCounter(b.lang+".attributes", "nodes", progress.DefaultEvery, b.logger)
	defer counter.Done()
	for _, page := range b.index {
		if err := b.store.SetNodeProperties(page.StorageID, page.Properties()); err != nil {
			return fmt.Errorf("updating %q: %w", page.Title, err)
		}
		counter.Add(1)
	}
	return nil
}

// Import runs all three passes over the intermediate file at path.
func (b *Builder) Import(path string) (Stats, error) {
	if err := b.pass(path, b.CreateNodes); err != nil {
		return b.stats, fmt.Errorf("creating nodes: %w", err)
	}
	b.logger.Info("nodes created",
		zap.Int("articles", b.stats.Articles),
		zap.Int("categories", b.stats.Categories),
		zap.Int("duplicates", b.stats.Duplicates))

	if err := b.pass(path, b.CreateEdges); err != nil {
		return b.stats, fmt.Errorf("creating edges: %w", err)
	}
	b.logger.Info("edges created",
		zap.Int("edges", b.stats.TotalEdges()),
		zap.Int("unresolved", b.stats.Unresolved),
		zap.Int("dropped", b.stats.Dropped))

	if err := b.FlushAttributes(); err != nil {
		return b.stats, fmt.Errorf("writing attributes: %w", err)
	}
	return b.stats, nil
}

func (b *Builder) pass(path string, run func(RecordSource) error) error {
	r, err := intermediate.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()
	return run(r)
}
