// Package ports defines the interfaces (contracts) that adapters must implement
// and the shared types that flow across them. Domain logic depends only on
// these definitions, never on concrete adapters.
package ports

import (
	"context"
	"errors"
	"fmt"
)

// Kind identifies what an item or a result represents.
type Kind string

// Item kinds. These are the only kinds stored in an index epoch.
const (
	KindTab      Kind = "tab"
	KindBookmark Kind = "bookmark"
	KindHistory  Kind = "history"
	KindDownload Kind = "download"
	KindTopSite  Kind = "topsite"
)

// Result-only kinds. Synthesized per query, never indexed.
const (
	KindCommand    Kind = "command"
	KindNavigation Kind = "navigation"
	KindWebSearch  Kind = "websearch"
)

// ItemKinds lists the indexed kinds in build order.
var ItemKinds = []Kind{KindTab, KindBookmark, KindDownload, KindHistory, KindTopSite}

// ErrUnknownKind is returned when a kind string does not name an item kind.
var ErrUnknownKind = errors.New("unknown item kind")

// ParseKind validates an item kind string.
func ParseKind(s string) (Kind, error) {
	for _, k := range ItemKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// TabRecord is one open tab as reported by the host.
type TabRecord struct {
	TabID        int64  `json:"tab_id" yaml:"tab_id"`
	WindowID     int64  `json:"window_id" yaml:"window_id"`
	Title        string `json:"title" yaml:"title"`
	URL          string `json:"url" yaml:"url"`
	FaviconURL   string `json:"favicon_url,omitempty" yaml:"favicon_url,omitempty"`
	Active       bool   `json:"active,omitempty" yaml:"active,omitempty"`
	Audible      bool   `json:"audible,omitempty" yaml:"audible,omitempty"`
	LastAccessed int64  `json:"last_accessed,omitempty" yaml:"last_accessed,omitempty"` // unix ms
}

// BookmarkRecord is one bookmark with its folder ancestry (root first).
type BookmarkRecord struct {
	Title      string   `json:"title" yaml:"title"`
	URL        string   `json:"url" yaml:"url"`
	FolderPath []string `json:"folder_path,omitempty" yaml:"folder_path,omitempty"`
	DateAdded  int64    `json:"date_added,omitempty" yaml:"date_added,omitempty"` // unix ms
}

// HistoryRecord is one history entry.
type HistoryRecord struct {
	Title         string `json:"title" yaml:"title"`
	URL           string `json:"url" yaml:"url"`
	LastVisitTime int64  `json:"last_visit_time,omitempty" yaml:"last_visit_time,omitempty"` // unix ms
	VisitCount    int    `json:"visit_count,omitempty" yaml:"visit_count,omitempty"`
}

// DownloadRecord is one download entry.
type DownloadRecord struct {
	URL           string `json:"url" yaml:"url"`
	Filename      string `json:"filename" yaml:"filename"`
	State         string `json:"state" yaml:"state"`
	BytesReceived int64  `json:"bytes_received,omitempty" yaml:"bytes_received,omitempty"`
	TotalBytes    int64  `json:"total_bytes,omitempty" yaml:"total_bytes,omitempty"`
	StartTime     int64  `json:"start_time,omitempty" yaml:"start_time,omitempty"` // unix ms
	EndTime       int64  `json:"end_time,omitempty" yaml:"end_time,omitempty"`     // unix ms
}

// TopSiteRecord is one "most visited" entry.
type TopSiteRecord struct {
	Title      string `json:"title" yaml:"title"`
	URL        string `json:"url" yaml:"url"`
	VisitCount int    `json:"visit_count,omitempty" yaml:"visit_count,omitempty"`
}

// Corpus is one materialized snapshot of the host's browsing artifacts.
// Collection order is meaningful: ids are assigned in this order.
type Corpus struct {
	Tabs      []TabRecord      `json:"tabs" yaml:"tabs"`
	Bookmarks []BookmarkRecord `json:"bookmarks" yaml:"bookmarks"`
	History   []HistoryRecord  `json:"history" yaml:"history"`
	Downloads []DownloadRecord `json:"downloads" yaml:"downloads"`
	TopSites  []TopSiteRecord  `json:"top_sites,omitempty" yaml:"top_sites,omitempty"`
}

// CorpusProvider enumerates the browsing artifacts the index is built from.
// Each call may be served concurrently with the others.
type CorpusProvider interface {
	Tabs(ctx context.Context) ([]TabRecord, error)
	Bookmarks(ctx context.Context) ([]BookmarkRecord, error)
	// History returns at most limit entries, most recent first.
	History(ctx context.Context, limit int) ([]HistoryRecord, error)
	Downloads(ctx context.Context) ([]DownloadRecord, error)
	TopSites(ctx context.Context) ([]TopSiteRecord, error)
}

// CorpusWriter replaces the stored corpus wholesale.
type CorpusWriter interface {
	SaveCorpus(corpus *Corpus) error
}

// CorpusError reports a failure enumerating one collection of the corpus.
type CorpusError struct {
	Kind Kind
	Err  error
}

func (e *CorpusError) Error() string {
	return fmt.Sprintf("corpus %s: %v", e.Kind, e.Err)
}

func (e *CorpusError) Unwrap() error { return e.Err }

// Watcher monitors a snapshot file and reports changes.
type Watcher interface {
	// Watch starts monitoring path. onChange is called (debounced) with the
	// path after each write, create or rename. The callback may be invoked from
	// any goroutine.
	Watch(path string, onChange func(path string)) error

	// Stop ends monitoring. Safe to call multiple times.
	Stop() error
}
