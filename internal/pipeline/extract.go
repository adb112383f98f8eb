package pipeline

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"graphipedia/dataimport/internal/checkpoint"
	"graphipedia/dataimport/internal/config"
	"graphipedia/dataimport/internal/dump"
	"graphipedia/dataimport/internal/intermediate"
	"graphipedia/dataimport/internal/logging"
	"graphipedia/dataimport/internal/progress"
	"graphipedia/dataimport/internal/wiki"
)

var dumpSuffixes = []string{config.PagesSuffix, config.LanglinksSuffix, config.GeotagsSuffix}

// verifyEdition checks that every dump of lang is present and readable.
// Verified files are recorded so a resumed run skips the check.
func (p *Pipeline) verifyEdition(lang string) error {
	if p.ledger.Done(checkpoint.EditionDownload, lang) {
		return nil
	}
	for _, suffix := range dumpSuffixes {
		path, err := p.settings.FindDump(lang, suffix)
		if err != nil {
			return err
		}
		name := filepath.Base(path)
		if p.ledger.Done(checkpoint.FileDownload, name) {
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("checking dump: %w", err)
		}
		if info.Size() == 0 {
			return fmt.Errorf("dump %s is empty", path)
		}
		if err := p.ledger.Mark(checkpoint.FileDownload, name); err != nil {
			return err
		}
	}
	return p.ledger.Mark(checkpoint.EditionDownload, lang)
}

// namespaces loads the namespace table saved by an earlier run, or reads it
// from the siteinfo header of the pages dump and saves it.
func (p *Pipeline) namespaces(lang string) (*wiki.Namespaces, error) {
	path := p.settings.EditionFile(lang, config.NamespacesFile)
	ns, err := wiki.LoadNamespaces(path)
	if err == nil {
		return ns, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	dumpPath, err := p.settings.FindDump(lang, config.PagesSuffix)
	if err != nil {
		return nil, err
	}
	in, err := dump.OpenCompressed(dumpPath)
	if err != nil {
		return nil, err
	}
	defer in.Close()
	if ns, err = dump.ReadSiteNamespaces(in); err != nil {
		return nil, fmt.Errorf("reading %s namespaces: %w", lang, err)
	}
	if err := ns.Save(path); err != nil {
		return nil, err
	}
	return ns, nil
}

// titleList loads a precomputed title list of lang. A missing list is not an
// error: the feature it drives is simply off for the language.
func (p *Pipeline) titleList(lang, name string, stage checkpoint.Stage, normalize func(string) string, roots map[string]string) (wiki.TitleSet, error) {
	logger := logging.Language(p.logger, "extract", lang)
	path := p.settings.EditionFile(lang, name)
	set, err := wiki.LoadTitleSet(path, normalize)
	if errors.Is(err, os.ErrNotExist) {
		if root, ok := roots[lang]; ok {
			logger.Warn("title list missing, list the members of the root category to enable it",
				zap.String("file", path), zap.String("category", root))
		} else {
			logger.Warn("title list missing and no root category known", zap.String("file", path))
		}
		return wiki.TitleSet{}, nil
	}
	if err != nil {
		return nil, err
	}
	if !p.ledger.Done(stage, lang) {
		if err := p.ledger.Mark(stage, lang); err != nil {
			return nil, err
		}
	}
	return set, nil
}

func (p *Pipeline) geotags(lang string) (map[string]wiki.Geotags, error) {
	path, err := p.settings.FindDump(lang, config.GeotagsSuffix)
	if err != nil {
		return nil, err
	}
	in, err := dump.OpenCompressed(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()
	tags, err := dump.ReadGeotags(in)
	if err != nil {
		return nil, fmt.Errorf("reading %s geotags: %w", lang, err)
	}
	return tags, nil
}

// extractLinks analyses every graphed page of the pages dump and writes the
// intermediate file. A file left by an earlier run is reused.
func (p *Pipeline) extractLinks(lang string, lookups wiki.Lookups, res *LanguageResult) error {
	logger := logging.Language(p.logger, "extract", lang)
	path := p.settings.EditionFile(lang, config.IntermediateFile)
	if p.ledger.Done(checkpoint.LinksExtracted, lang) {
		if _, err := os.Stat(path); err == nil {
			logger.Info("links already extracted", zap.String("file", path))
			res.Reused = true
			return nil
		}
		logger.Warn("intermediate file missing, extracting again", zap.String("file", path))
	}

	dumpPath, err := p.settings.FindDump(lang, config.PagesSuffix)
	if err != nil {
		return err
	}
	in, err := dump.OpenCompressed(dumpPath)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp := path + ".tmp"
	w, err := intermediate.Create(tmp)
	if err != nil {
		return err
	}
	if err := p.writeRecords(lang, in, lookups, w, logger); err != nil {
		w.Close()
		os.Remove(tmp)
		return err
	}
	if err := w.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("saving intermediate file: %w", err)
	}
	res.Pages, res.Links = w.Pages(), w.Links()
	return p.ledger.Mark(checkpoint.LinksExtracted, lang)
}

func (p *Pipeline) writeRecords(lang string, in io.Reader, lookups wiki.Lookups, w *intermediate.Writer, logger *zap.Logger) error {
	parser := dump.NewPageParser(in, lookups.Namespaces)
	analyzer := wiki.NewAnalyzer(lookups)
	counter := progress.NewCounter(lang+".links", "pages", progress.DefaultEvery, logger)
	defer counter.Done()
	for {
		page, err := parser.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("parsing %s pages: %w", lang, err)
		}
		if err := w.Write(analyzer.Record(page)); err != nil {
			return fmt.Errorf("writing %s intermediate file: %w", lang, err)
		}
		counter.Add(1)
	}
	logger.Debug("pages read",
		zap.Int("pages", parser.Pages()),
		zap.Int("skipped", parser.Skipped()))
	return nil
}
