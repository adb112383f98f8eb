package dump

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dsnet/compress/bzip2"
)

type compressedFile struct {
	io.Reader
	closers []io.Closer
}

func (c *compressedFile) Close() error {
	var first error
	for _, cl := range c.closers {
		if err := cl.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// OpenCompressed opens a dump file, decompressing .bz2 and .gz on the fly.
func OpenCompressed(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dump: %w", err)
	}
	switch {
	case strings.HasSuffix(path, ".bz2"):
		r, err := bzip2.NewReader(f, &bzip2.ReaderConfig{})
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("opening bzip2 stream %s: %w", path, err)
		}
		return &compressedFile{Reader: r, closers: []io.Closer{r, f}}, nil
	case strings.HasSuffix(path, ".gz"):
		r, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("opening gzip stream %s: %w", path, err)
		}
		return &compressedFile{Reader: r, closers: []io.Closer{r, f}}, nil
	default:
		return f, nil
	}
}
