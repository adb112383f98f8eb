package crosslink

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultGroupSize is how many languages are resolved at the same time.
const DefaultGroupSize = 5

// InGroups runs fn for every language, size languages at a time. A group
// is finished before the next one starts; the first error stops the run
// after the current group.
func InGroups(ctx context.Context, langs []string, size int, fn func(ctx context.Context, lang string) error) error {
	if size <= 0 {
		size = DefaultGroupSize
	}
	for start := 0; start < len(langs); start += size {
		end := min(start+size, len(langs))
		g, gctx := errgroup.WithContext(ctx)
		for _, lang := range langs[start:end] {
			g.Go(func() error { return fn(gctx, lang) })
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
	return nil
}
