package pipeline

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"graphipedia/dataimport/internal/checkpoint"
	"graphipedia/dataimport/internal/config"
	"graphipedia/dataimport/internal/crosslink"
	"graphipedia/dataimport/internal/dump"
	"graphipedia/dataimport/internal/logging"
)

// crosslinkAll resolves the langlinks of every language into cross-links.csv
// files, a group at a time, then imports them as crosslink edges.
func (p *Pipeline) crosslinkAll(ctx context.Context, results []*LanguageResult) error {
	err := crosslink.InGroups(ctx, p.langs, p.settings.CrosslinkGroupSize, func(ctx context.Context, lang string) error {
		return p.resolveLanguage(lang)
	})
	if err != nil {
		return err
	}

	inserter := p.store.NewInserter(p.settings.BatchSize)
	for _, res := range results {
		n, err := p.importCrosslinks(inserter, res.Lang)
		if err != nil {
			inserter.Close()
			return err
		}
		res.Crosslinks = n
	}
	if err := inserter.Close(); err != nil {
		return fmt.Errorf("closing inserter: %w", err)
	}
	return nil
}

func (p *Pipeline) resolveLanguage(lang string) error {
	logger := logging.Language(p.logger, "crosslinks", lang)
	outPath := p.settings.EditionFile(lang, config.CrosslinksFile)
	if p.ledger.Done(checkpoint.CrosslinksExtracted, lang) {
		if _, err := os.Stat(outPath); err == nil {
			logger.Info("cross-links already resolved", zap.String("file", outPath))
			return nil
		}
	}

	known, err := p.store.WikiIDs(lang)
	if err != nil {
		return fmt.Errorf("loading %s page ids: %w", lang, err)
	}
	dumpPath, err := p.settings.FindDump(lang, config.LanglinksSuffix)
	if err != nil {
		return err
	}
	in, err := dump.OpenCompressed(dumpPath)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp := outPath + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating cross-links file: %w", err)
	}
	stats, err := crosslink.NewResolver(p.store, lang, p.tables, logger).
		WithKnownPages(known).
		Resolve(in, out)
	if cerr := out.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("closing cross-links file: %w", cerr)
	}
	if err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, outPath); err != nil {
		return fmt.Errorf("saving cross-links file: %w", err)
	}
	logger.Info("cross-links resolved",
		zap.Int("rows", stats.Rows),
		zap.Int("resolved", stats.Resolved),
		zap.Int("other_language", stats.OtherLanguage),
		zap.Int("other_namespace", stats.OtherNS),
		zap.Int("missing_source", stats.MissingSource),
		zap.Int("missing_target", stats.MissingTarget))
	return p.ledger.Mark(checkpoint.CrosslinksExtracted, lang)
}

func (p *Pipeline) importCrosslinks(inserter crosslink.Linker, lang string) (int, error) {
	f, err := os.Open(p.settings.EditionFile(lang, config.CrosslinksFile))
	if err != nil {
		return 0, fmt.Errorf("opening cross-links file: %w", err)
	}
	defer f.Close()
	stats, err := crosslink.Import(inserter, lang, f)
	if err != nil {
		return stats.Created, fmt.Errorf("importing %s cross-links: %w", lang, err)
	}
	logging.Language(p.logger, "crosslinks", lang).Info("cross-links imported",
		zap.Int("edges", stats.Created),
		zap.Int("missing", stats.Missing))
	return stats.Created, nil
}
