package index

import (
	"strings"
	"time"

	"github.com/corey/seek/internal/ports"
)

// Field weights. A term's weight for an item is the sum over every field it
// appears in, so hostname terms (indexed on their own and inside the URL)
// outweigh path terms.
const (
	WeightTitle    = 3.0
	WeightHostname = 2.0
	WeightURL      = 2.0
	WeightFilename = 3.0
)

// DefaultHistoryLimit caps how many history entries one epoch indexes.
const DefaultHistoryLimit = 500

// CatchAllBucket holds every indexed term.
const CatchAllBucket = "*"

// RootFolderKey is the folder key of bookmarks without a parent folder.
const RootFolderKey = "__root__"

// Epoch is one immutable generation of the item store and its index.
// Nothing mutates an Epoch after Build returns; concurrent readers need no locks.
type Epoch struct {
	Generation uint64
	BuiltAt    time.Time

	// Items is the item store. Items[i].ID == i.
	Items []ports.Item

	// Postings maps term -> item id -> accumulated field weight.
	Postings map[string]map[uint32]float64

	// TermBuckets maps a term's first byte to the terms starting with it,
	// in first-indexed order. CatchAllBucket holds every term.
	TermBuckets map[string][]string

	Metadata Metadata
}

// Metadata summarizes an epoch.
type Metadata struct {
	Counts map[ports.Kind]int `json:"counts"`
	Terms  int                `json:"terms"`
}

// BuildOptions tunes Build. The zero value uses the defaults.
type BuildOptions struct {
	HistoryLimit int
	Generation   uint64
	Now          time.Time
}

// Item returns the item with the given id, or nil when out of range.
func (e *Epoch) Item(id uint32) *ports.Item {
	if e == nil || int(id) >= len(e.Items) {
		return nil
	}
	return &e.Items[id]
}

// Count returns how many items of kind the epoch holds.
func (e *Epoch) Count(kind ports.Kind) int {
	if e == nil {
		return 0
	}
	return e.Metadata.Counts[kind]
}

// Bucket returns the fuzzy-candidate terms for token: the terms sharing its
// first byte, else the "" bucket, else every term.
func (e *Epoch) Bucket(token string) []string {
	if token != "" {
		if terms := e.TermBuckets[token[:1]]; len(terms) > 0 {
			return terms
		}
	}
	if terms := e.TermBuckets[""]; len(terms) > 0 {
		return terms
	}
	return e.TermBuckets[CatchAllBucket]
}

// Build scans a materialized corpus into a fresh epoch. Ids are assigned in
// the order tabs, bookmarks, downloads, history, top sites. Deterministic for
// a given corpus.
func Build(corpus *ports.Corpus, opts BuildOptions) *Epoch {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	b := &builder{
		epoch: &Epoch{
			Generation:  opts.Generation,
			BuiltAt:     opts.Now,
			Postings:    make(map[string]map[uint32]float64),
			TermBuckets: make(map[string][]string),
			Metadata:    Metadata{Counts: make(map[ports.Kind]int, len(ports.ItemKinds))},
		},
	}
	if corpus == nil {
		return b.epoch
	}

	for _, t := range corpus.Tabs {
		b.addTab(t)
	}
	for _, bm := range corpus.Bookmarks {
		b.addBookmark(bm)
	}
	for _, d := range corpus.Downloads {
		b.addDownload(d)
	}
	history := corpus.History
	if len(history) > opts.HistoryLimit {
		history = history[:opts.HistoryLimit]
	}
	for _, h := range history {
		b.addHistory(h)
	}
	for _, ts := range corpus.TopSites {
		b.addTopSite(ts)
	}

	b.epoch.Metadata.Terms = len(b.epoch.Postings)
	return b.epoch
}

// builder accumulates one epoch. Not safe for concurrent use.
type builder struct {
	epoch *Epoch
}

// newItem appends a base item and returns a pointer to it for payload filling.
func (b *builder) newItem(kind ports.Kind, title, rawURL, favicon string) *ports.Item {
	parts := ParseURL(rawURL)
	id := uint32(len(b.epoch.Items))
	b.epoch.Items = append(b.epoch.Items, ports.Item{
		ID:         id,
		Kind:       kind,
		Title:      title,
		URL:        rawURL,
		Origin:     parts.Origin,
		Hostname:   parts.Hostname,
		Path:       parts.Path,
		FaviconURL: favicon,
	})
	b.epoch.Metadata.Counts[kind]++
	return &b.epoch.Items[id]
}

// indexCommon indexes the title, hostname and URL of an item.
func (b *builder) indexCommon(it *ports.Item) {
	b.indexText(it.Title, it.ID, WeightTitle)
	b.indexText(it.Hostname, it.ID, WeightHostname)
	b.indexText(stripScheme(it.URL), it.ID, WeightURL)
}

func (b *builder) indexText(text string, id uint32, weight float64) {
	for _, term := range Tokenize(text) {
		b.addToIndex(term, id, weight)
	}
}

// addToIndex adds weight to term's posting for id and registers a new term
// in its first-byte bucket and the catch-all bucket.
func (b *builder) addToIndex(term string, id uint32, weight float64) {
	posting, ok := b.epoch.Postings[term]
	if !ok {
		posting = make(map[uint32]float64)
		b.epoch.Postings[term] = posting
		key := ""
		if term != "" {
			key = term[:1]
		}
		b.epoch.TermBuckets[key] = append(b.epoch.TermBuckets[key], term)
		b.epoch.TermBuckets[CatchAllBucket] = append(b.epoch.TermBuckets[CatchAllBucket], term)
	}
	posting[id] += weight
}

func (b *builder) addTab(t ports.TabRecord) {
	it := b.newItem(ports.KindTab, t.Title, t.URL, t.FaviconURL)
	it.Tab = &ports.TabFields{
		TabID:        t.TabID,
		WindowID:     t.WindowID,
		Active:       t.Active,
		Audible:      t.Audible,
		LastAccessed: t.LastAccessed,
	}
	b.indexCommon(it)
}

func (b *builder) addBookmark(bm ports.BookmarkRecord) {
	it := b.newItem(ports.KindBookmark, bm.Title, bm.URL, "")
	it.Bookmark = &ports.BookmarkFields{
		FolderPath: append([]string(nil), bm.FolderPath...),
		FolderKey:  FolderKey(bm.FolderPath),
		DateAdded:  bm.DateAdded,
	}
	b.indexCommon(it)
}

func (b *builder) addHistory(h ports.HistoryRecord) {
	it := b.newItem(ports.KindHistory, h.Title, h.URL, "")
	it.History = &ports.HistoryFields{
		LastVisitTime: h.LastVisitTime,
		VisitCount:    h.VisitCount,
	}
	b.indexCommon(it)
}

func (b *builder) addDownload(d ports.DownloadRecord) {
	base, ext := splitFilename(d.Filename)
	title := base
	if title == "" {
		title = d.URL
	}
	it := b.newItem(ports.KindDownload, title, d.URL, "")
	it.Download = &ports.DownloadFields{
		State:         NormalizeDownloadState(d.State),
		BytesReceived: d.BytesReceived,
		TotalBytes:    d.TotalBytes,
		StartTime:     d.StartTime,
		EndTime:       d.EndTime,
		Filename:      base,
		Extension:     ext,
	}
	b.indexText(it.Hostname, it.ID, WeightHostname)
	b.indexText(stripScheme(it.URL), it.ID, WeightURL)
	b.indexText(base, it.ID, WeightFilename)
	b.indexText(ext, it.ID, WeightFilename)
}

func (b *builder) addTopSite(ts ports.TopSiteRecord) {
	it := b.newItem(ports.KindTopSite, ts.Title, ts.URL, "")
	it.TopSite = &ports.TopSiteFields{VisitCount: ts.VisitCount}
	b.indexCommon(it)
}

// FolderKey returns the stable key of a bookmark folder path.
func FolderKey(folderPath []string) string {
	parts := make([]string, 0, len(folderPath))
	for _, p := range folderPath {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return RootFolderKey
	}
	return strings.Join(parts, "/")
}

// Download states, in facet/priority order.
const (
	StateComplete    = "complete"
	StateInProgress  = "in_progress"
	StateInterrupted = "interrupted"
	StatePaused      = "paused"
	StateCancelled   = "cancelled"
)

// NormalizeDownloadState folds host spellings onto the canonical state names.
// Unknown states pass through lowercased with separators as underscores.
func NormalizeDownloadState(state string) string {
	s := strings.ToLower(strings.TrimSpace(state))
	s = strings.NewReplacer("-", "_", " ", "_").Replace(s)
	switch s {
	case "complete", "completed", "done", "finished":
		return StateComplete
	case "in_progress", "inprogress", "downloading", "active":
		return StateInProgress
	case "interrupted", "failed", "error":
		return StateInterrupted
	case "paused":
		return StatePaused
	case "cancelled", "canceled":
		return StateCancelled
	case "":
		return "unknown"
	}
	return s
}
