// Package snapshot reads corpus snapshot files written by the host (a
// browser extension export, a test fixture). JSON and YAML are accepted;
// the format is chosen by file extension.
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/corey/seek/internal/domain/index"
	"github.com/corey/seek/internal/ports"
)

// ErrUnsupportedFormat is returned for extensions other than .json, .yaml and .yml.
var ErrUnsupportedFormat = errors.New("unsupported snapshot format")

// Load reads and decodes the snapshot at path.
func Load(path string) (*ports.Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	corpus, err := Decode(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", path, err)
	}
	return corpus, nil
}

// Decode parses data in the format named by ext (".json", ".yaml", ".yml").
// Download states are normalized on the way in.
func Decode(data []byte, ext string) (*ports.Corpus, error) {
	var corpus ports.Corpus
	switch strings.ToLower(ext) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&corpus); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&corpus); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	for i := range corpus.Downloads {
		corpus.Downloads[i].State = index.NormalizeDownloadState(corpus.Downloads[i].State)
	}
	return &corpus, nil
}

// Static serves an in-memory corpus as a ports.CorpusProvider.
type Static struct {
	Corpus *ports.Corpus
}

// Tabs returns the corpus tabs.
func (s Static) Tabs(context.Context) ([]ports.TabRecord, error) {
	if s.Corpus == nil {
		return nil, nil
	}
	return s.Corpus.Tabs, nil
}

// Bookmarks returns the corpus bookmarks.
func (s Static) Bookmarks(context.Context) ([]ports.BookmarkRecord, error) {
	if s.Corpus == nil {
		return nil, nil
	}
	return s.Corpus.Bookmarks, nil
}

// History returns at most limit history entries.
func (s Static) History(_ context.Context, limit int) ([]ports.HistoryRecord, error) {
	if s.Corpus == nil {
		return nil, nil
	}
	h := s.Corpus.History
	if limit > 0 && len(h) > limit {
		h = h[:limit]
	}
	return h, nil
}

// Downloads returns the corpus downloads.
func (s Static) Downloads(context.Context) ([]ports.DownloadRecord, error) {
	if s.Corpus == nil {
		return nil, nil
	}
	return s.Corpus.Downloads, nil
}

// TopSites returns the corpus top sites.
func (s Static) TopSites(context.Context) ([]ports.TopSiteRecord, error) {
	if s.Corpus == nil {
		return nil, nil
	}
	return s.Corpus.TopSites, nil
}

var _ ports.CorpusProvider = Static{}
