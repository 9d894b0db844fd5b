// apps/go-server/internal/words/corpus.go
//
// Corpus sources for building an Index.
//
// Sources:
//   - FileCorpus:     one word per line from a path on disk.
//   - EmbeddedCorpus: the small default list shipped in the assets package.
//
// FromEnv picks a source:
//   1. WORDS_FILE set  → FileCorpus{Path: WORDS_FILE}
//   2. otherwise       → EmbeddedCorpus
//
// Loading may block on I/O; building the Index does not.

package words

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordchain/apps/go-server/assets"
)

// Corpus supplies the raw word list an Index is built from.
type Corpus interface {
	LoadWordCorpus(ctx context.Context) ([]string, error)
}

// FileCorpus reads a newline-separated word file.
type FileCorpus struct {
	Path string
}

// LoadWordCorpus reads every non-empty, non-comment line of the file.
func (f FileCorpus) LoadWordCorpus(ctx context.Context) ([]string, error) {
	fh, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("words: open %s: %w", f.Path, err)
	}
	defer fh.Close()

	var out []string
	sc := bufio.NewScanner(fh)
	for sc.Scan() {
		if len(out)%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if w := strings.TrimSpace(sc.Text()); w != "" && !strings.HasPrefix(w, "#") {
			out = append(out, w)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("words: scan %s: %w", f.Path, err)
	}
	return out, nil
}

// EmbeddedCorpus serves the default list compiled into the binary.
type EmbeddedCorpus struct{}

// LoadWordCorpus returns the embedded default words.
func (EmbeddedCorpus) LoadWordCorpus(ctx context.Context) ([]string, error) {
	return assets.DefaultWords()
}

// FromEnv returns the corpus selected by WORDS_FILE.
func FromEnv() Corpus {
	if p := os.Getenv("WORDS_FILE"); p != "" {
		return FileCorpus{Path: p}
	}
	return EmbeddedCorpus{}
}

// Load reads c and builds an Index from it.
func Load(ctx context.Context, c Corpus) (*Index, error) {
	raw, err := c.LoadWordCorpus(ctx)
	if err != nil {
		return nil, err
	}
	idx := Build(raw)
	n, buckets := idx.Stats()
	log.Info().
		Int("raw", len(raw)).
		Int("words", n).
		Int("buckets", buckets).
		Msg("dictionary loaded")
	return idx, nil
}
