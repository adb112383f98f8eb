// Package pipeline runs a complete import: per-language extraction, graph
// building and cross-link resolution, resumable through the checkpoint
// ledger.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"graphipedia/dataimport/internal/checkpoint"
	"graphipedia/dataimport/internal/config"
	"graphipedia/dataimport/internal/db"
	"graphipedia/dataimport/internal/importer"
	"graphipedia/dataimport/internal/logging"
	"graphipedia/dataimport/internal/wiki"
)

// LanguageResult is the outcome of importing one edition.
type LanguageResult struct {
	Lang       string
	Pages      int
	Links      int
	Reused     bool // intermediate file left by an earlier run
	Import     importer.Stats
	Crosslinks int
	Duration   time.Duration
}

// Summary is the outcome of a run.
type Summary struct {
	RunID     string
	Languages []LanguageResult
	Nodes     int64
	Edges     int64
	Duration  time.Duration
}

// Pipeline imports a list of editions into one graph store.
type Pipeline struct {
	settings config.Settings
	langs    []string
	logger   *zap.Logger
	ledger   *checkpoint.Ledger
	store    *db.DB
	runID    string

	// namespace tables by language, filled during extraction
	tables map[string]*wiki.Namespaces
	// root categories, named in warnings when a precomputed list is missing
	disambigRoots map[string]string
	infoboxRoots  map[string]string
	// lower-case codes of every known edition, for interlanguage links
	editions wiki.TitleSet
}

// New validates the settings and languages. Nothing is opened until Run.
func New(settings config.Settings, langs []string, logger *zap.Logger) (*Pipeline, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if len(langs) == 0 {
		return nil, errors.New("no languages to import")
	}
	if err := config.ValidateLanguages(langs); err != nil {
		return nil, err
	}
	disambig, infobox, err := config.RootCategories()
	if err != nil {
		return nil, err
	}
	codes, err := config.EditionCodes()
	if err != nil {
		return nil, err
	}
	editions := make(wiki.TitleSet, len(codes)+len(langs))
	for _, code := range append(codes, langs...) {
		editions[strings.ToLower(code)] = struct{}{}
	}
	return &Pipeline{
		settings:      settings,
		langs:         langs,
		logger:        logger,
		runID:         uuid.NewString(),
		tables:        make(map[string]*wiki.Namespaces, len(langs)),
		disambigRoots: disambig,
		infoboxRoots:  infobox,
		editions:      editions,
	}, nil
}

// RunID identifies this run in the imports table.
func (p *Pipeline) RunID() string { return p.runID }

// Run imports every language. The graph store is recreated; work recorded
// in the ledger by an earlier interrupted run is not repeated.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	ledger, err := checkpoint.Open(p.settings.CheckpointPath())
	if err != nil {
		return nil, err
	}
	p.ledger = ledger

	for _, lang := range p.langs {
		if err := p.verifyEdition(lang); err != nil {
			return nil, err
		}
	}

	if err := p.openStore(); err != nil {
		return nil, err
	}
	defer p.store.Close()

	p.logger.Info("import started",
		zap.String("run", p.runID),
		zap.Strings("languages", p.langs),
		zap.String("database", p.settings.DatabasePath()))

	results, err := p.importAll(ctx)
	if err != nil {
		return nil, err
	}

	if err := p.store.CreateIndexes(); err != nil {
		return nil, fmt.Errorf("creating indexes: %w", err)
	}

	if err := p.crosslinkAll(ctx, results); err != nil {
		return nil, err
	}

	if !p.settings.KeepFiles {
		if err := p.cleanup(); err != nil {
			return nil, err
		}
	}

	summary := &Summary{RunID: p.runID, Duration: time.Since(start)}
	for _, r := range results {
		summary.Languages = append(summary.Languages, *r)
	}
	if summary.Nodes, err = p.store.CountNodes(""); err != nil {
		return nil, err
	}
	if summary.Edges, err = p.store.CountEdges(""); err != nil {
		return nil, err
	}
	p.logger.Info("import finished",
		zap.Int64("nodes", summary.Nodes),
		zap.Int64("edges", summary.Edges),
		zap.Duration("elapsed", summary.Duration.Round(time.Second)))
	return summary, nil
}

// openStore starts every run from an empty graph.
func (p *Pipeline) openStore() error {
	store, err := db.Create(p.settings.DatabasePath())
	if err != nil {
		return err
	}
	p.store = store
	return nil
}

// importAll extracts each language in turn while the previous one is being
// imported. Imports never overlap: they share one inserter.
func (p *Pipeline) importAll(ctx context.Context) ([]*LanguageResult, error) {
	inserter := p.store.NewInserter(p.settings.BatchSize)
	results := make([]*LanguageResult, 0, len(p.langs))

	var done chan error
	wait := func() error {
		if done == nil {
			return nil
		}
		err := <-done
		done = nil
		return err
	}

	for _, lang := range p.langs {
		res := &LanguageResult{Lang: lang}
		results = append(results, res)

		lookups, geotags, err := p.prepare(ctx, lang)
		if err != nil {
			wait()
			inserter.Close()
			return nil, err
		}
		if err := p.extractLinks(lang, lookups, res); err != nil {
			wait()
			inserter.Close()
			return nil, err
		}

		if err := wait(); err != nil {
			inserter.Close()
			return nil, err
		}
		done = make(chan error, 1)
		go func() {
			done <- p.importLanguage(inserter, res, geotags)
		}()
	}

	if err := wait(); err != nil {
		inserter.Close()
		return nil, err
	}
	if err := inserter.Close(); err != nil {
		return nil, fmt.Errorf("closing inserter: %w", err)
	}
	return results, nil
}

// prepare loads the lookups of one language concurrently.
func (p *Pipeline) prepare(ctx context.Context, lang string) (wiki.Lookups, map[string]wiki.Geotags, error) {
	var (
		lookups wiki.Lookups
		geotags map[string]wiki.Geotags
	)
	logger := logging.Language(p.logger, "extract", lang)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		ns, err := p.namespaces(lang)
		lookups.Namespaces = ns
		return err
	})
	g.Go(func() error {
		set, err := p.titleList(lang, config.DisambigFile, checkpoint.DisambigExtracted, wiki.NormalizeTitle, p.disambigRoots)
		lookups.DisambiguationPages = set
		return err
	})
	g.Go(func() error {
		set, err := p.titleList(lang, config.InfoboxFile, checkpoint.InfoboxExtracted, wiki.NormalizeTemplateName, p.infoboxRoots)
		lookups.InfoboxTemplates = set
		return err
	})
	g.Go(func() error {
		tags, err := p.geotags(lang)
		geotags = tags
		return err
	})
	if err := g.Wait(); err != nil {
		return lookups, nil, err
	}
	lookups.Editions = p.editions
	p.tables[lang] = lookups.Namespaces
	logger.Info("lookups ready",
		zap.Int("namespaces", lookups.Namespaces.Len()),
		zap.Int("disambiguation_pages", len(lookups.DisambiguationPages)),
		zap.Int("infobox_templates", len(lookups.InfoboxTemplates)),
		zap.Int("geotags", len(geotags)))
	return lookups, geotags, nil
}

// importLanguage runs the three builder passes for one language and records
// the run in the store.
func (p *Pipeline) importLanguage(inserter *db.Inserter, res *LanguageResult, geotags map[string]wiki.Geotags) error {
	start := time.Now()
	logger := logging.Language(p.logger, "import", res.Lang)
	nodesBefore, edgesBefore := inserter.Counts()

	b := importer.NewBuilder(inserter, res.Lang, geotags, logger)
	stats, err := b.Import(p.settings.EditionFile(res.Lang, config.IntermediateFile))
	if err != nil {
		return fmt.Errorf("importing %s: %w", res.Lang, err)
	}
	if err := inserter.Flush(); err != nil {
		return fmt.Errorf("importing %s: %w", res.Lang, err)
	}
	res.Import = stats
	res.Duration = time.Since(start)
	if res.Reused {
		res.Pages, res.Links = stats.Records, stats.Links
	}

	nodes, edges := inserter.Counts()
	return p.store.RecordImport(db.ImportRun{
		RunID:      p.runID,
		Lang:       res.Lang,
		Nodes:      nodes - nodesBefore,
		Edges:      edges - edgesBefore,
		StartedAt:  start.UnixMilli(),
		DurationMs: res.Duration.Milliseconds(),
	})
}

// cleanup removes the working files of a finished run.
func (p *Pipeline) cleanup() error {
	for _, lang := range p.langs {
		for _, name := range []string{config.IntermediateFile, config.CrosslinksFile} {
			err := os.Remove(p.settings.EditionFile(lang, name))
			if err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("removing working file: %w", err)
			}
		}
	}
	return p.ledger.Remove()
}
