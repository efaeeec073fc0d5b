package search

import (
	"sort"
	"strings"
	"time"

	"github.com/corey/seek/internal/domain/index"
	"github.com/corey/seek/internal/ports"
)

// maxFacets caps tab-domain and bookmark-folder facets.
const maxFacets = 12

// History facet ids.
const (
	HistoryToday     = "today"
	HistoryYesterday = "yesterday"
	HistoryLast7     = "last7"
	HistoryLast30    = "last30"
	HistoryOlder     = "older"
)

// knownSecondLevel lists labels that are registries, not brands ("co" in bbc.co.uk).
var knownSecondLevel = map[string]bool{
	"co": true, "com": true, "net": true, "org": true, "gov": true,
	"edu": true, "ac": true, "go": true, "ne": true, "or": true,
}

// preferredStates is the fixed facet order of download states.
var preferredStates = []string{
	index.StateComplete,
	index.StateInProgress,
	index.StateInterrupted,
	index.StatePaused,
	index.StateCancelled,
}

var stateLabels = map[string]string{
	index.StateComplete:    "Complete",
	index.StateInProgress:  "In progress",
	index.StateInterrupted: "Interrupted",
	index.StatePaused:      "Paused",
	index.StateCancelled:   "Cancelled",
}

// facetFilter admits the items of the active facet.
type facetFilter func(*ports.Item) bool

// buildSubfilters derives the facet set for scope from the scope's items and
// resolves the requested facet. Returns nil for scopes without facets.
// The returned filter is nil when everything is admitted.
func buildSubfilters(scope ports.Scope, items []*ports.Item, requested string, now time.Time) (*ports.Subfilters, facetFilter) {
	var (
		options []ports.SubfilterOption
		member  func(id string) facetFilter
	)

	switch scope {
	case ports.ScopeHistory:
		options, member = historyFacets(items, now)
	case ports.ScopeTab:
		options, member = tabFacets(items)
	case ports.ScopeBookmark:
		options, member = bookmarkFacets(items)
	case ports.ScopeDownload:
		options, member = downloadFacets(items)
	default:
		return nil, nil
	}

	all := ports.SubfilterOption{ID: ports.SubfilterAll, Label: "All", Count: len(items)}
	options = append([]ports.SubfilterOption{all}, options...)

	active := SanitizeSubfilter(requested, options)
	sf := &ports.Subfilters{Type: scope, Options: options, ActiveID: active}
	if active == ports.SubfilterAll {
		return sf, nil
	}
	return sf, member(active)
}

// SanitizeSubfilter returns requested when it names one of options, else "all".
func SanitizeSubfilter(requested string, options []ports.SubfilterOption) string {
	if requested == "" {
		return ports.SubfilterAll
	}
	for _, o := range options {
		if o.ID == requested {
			return requested
		}
	}
	return ports.SubfilterAll
}

// historyWindows computes facet membership against lastVisitTime. "today" and
// "yesterday" follow local day boundaries; last7/last30 are rolling windows.
func historyWindows(now time.Time) map[string]func(ts int64) bool {
	startToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).UnixMilli()
	startYesterday := time.Date(now.Year(), now.Month(), now.Day()-1, 0, 0, 0, 0, now.Location()).UnixMilli()
	day := int64(24 * time.Hour / time.Millisecond)
	nowMs := now.UnixMilli()

	return map[string]func(ts int64) bool{
		HistoryToday:     func(ts int64) bool { return ts >= startToday },
		HistoryYesterday: func(ts int64) bool { return ts >= startYesterday && ts < startToday },
		HistoryLast7:     func(ts int64) bool { return ts >= nowMs-7*day },
		HistoryLast30:    func(ts int64) bool { return ts >= nowMs-30*day },
		HistoryOlder:     func(ts int64) bool { return ts < nowMs-30*day },
	}
}

func historyFacets(items []*ports.Item, now time.Time) ([]ports.SubfilterOption, func(string) facetFilter) {
	windows := historyWindows(now)
	options := []ports.SubfilterOption{
		{ID: HistoryToday, Label: "Today"},
		{ID: HistoryYesterday, Label: "Yesterday"},
		{ID: HistoryLast7, Label: "Last 7 days"},
		{ID: HistoryLast30, Label: "Last 30 days"},
		{ID: HistoryOlder, Label: "Older"},
	}
	for i := range options {
		in := windows[options[i].ID]
		for _, it := range items {
			if it.History != nil && in(it.History.LastVisitTime) {
				options[i].Count++
			}
		}
	}
	return options, func(id string) facetFilter {
		in := windows[id]
		return func(it *ports.Item) bool {
			return it.History != nil && in(it.History.LastVisitTime)
		}
	}
}

// keyCount is one facet key with its item count.
type keyCount struct {
	key   string
	count int
}

// topKeys counts keys and returns at most limit of them, count descending
// then key ascending.
func topKeys(keys []string, limit int) []keyCount {
	counts := make(map[string]int)
	for _, k := range keys {
		if k != "" {
			counts[k]++
		}
	}
	out := make([]keyCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, keyCount{k, n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].key < out[j].key
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func tabFacets(items []*ports.Item) ([]ports.SubfilterOption, func(string) facetFilter) {
	hosts := make([]string, 0, len(items))
	for _, it := range items {
		hosts = append(hosts, it.Hostname)
	}
	var options []ports.SubfilterOption
	for _, kc := range topKeys(hosts, maxFacets) {
		options = append(options, ports.SubfilterOption{
			ID:    kc.key,
			Label: DomainLabel(kc.key),
			Hint:  kc.key,
			Count: kc.count,
		})
	}
	return options, func(id string) facetFilter {
		return func(it *ports.Item) bool { return it.Hostname == id }
	}
}

// DomainLabel picks a short brand label for a hostname: "www.bbc.co.uk" -> "Bbc",
// "docs.github.com" -> "Github".
func DomainLabel(hostname string) string {
	host := strings.TrimPrefix(strings.ToLower(hostname), "www.")
	labels := strings.Split(host, ".")
	if len(labels) < 2 || isNumeric(labels[len(labels)-1]) {
		return host
	}
	n := len(labels)
	brand := labels[n-2]
	if (len(brand) <= 3 || knownSecondLevel[brand]) && n >= 3 {
		brand = labels[n-3]
	}
	if brand == "" {
		return host
	}
	return strings.ToUpper(brand[:1]) + brand[1:]
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func bookmarkFacets(items []*ports.Item) ([]ports.SubfilterOption, func(string) facetFilter) {
	keys := make([]string, 0, len(items))
	paths := make(map[string][]string)
	for _, it := range items {
		if it.Bookmark == nil {
			continue
		}
		keys = append(keys, it.Bookmark.FolderKey)
		if _, ok := paths[it.Bookmark.FolderKey]; !ok {
			paths[it.Bookmark.FolderKey] = it.Bookmark.FolderPath
		}
	}
	var options []ports.SubfilterOption
	for _, kc := range topKeys(keys, maxFacets) {
		label := "Unsorted"
		hint := ""
		if p := paths[kc.key]; kc.key != index.RootFolderKey && len(p) > 0 {
			label = p[len(p)-1]
			hint = strings.Join(p, " / ")
		}
		options = append(options, ports.SubfilterOption{
			ID:    kc.key,
			Label: label,
			Hint:  hint,
			Count: kc.count,
		})
	}
	return options, func(id string) facetFilter {
		return func(it *ports.Item) bool {
			return it.Bookmark != nil && it.Bookmark.FolderKey == id
		}
	}
}

func downloadFacets(items []*ports.Item) ([]ports.SubfilterOption, func(string) facetFilter) {
	counts := make(map[string]int)
	for _, it := range items {
		if it.Download != nil {
			counts[it.Download.State]++
		}
	}

	var options []ports.SubfilterOption
	seen := make(map[string]bool)
	for _, st := range preferredStates {
		seen[st] = true
		if counts[st] > 0 {
			options = append(options, ports.SubfilterOption{ID: st, Label: stateLabels[st], Count: counts[st]})
		}
	}
	var others []string
	for st := range counts {
		if !seen[st] {
			others = append(others, st)
		}
	}
	sort.Strings(others)
	for _, st := range others {
		label := strings.ReplaceAll(st, "_", " ")
		label = strings.ToUpper(label[:1]) + label[1:]
		options = append(options, ports.SubfilterOption{ID: st, Label: label, Count: counts[st]})
	}

	return options, func(id string) facetFilter {
		return func(it *ports.Item) bool {
			return it.Download != nil && it.Download.State == id
		}
	}
}
