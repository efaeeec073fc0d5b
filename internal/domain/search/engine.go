package search

import (
	"time"

	"github.com/corey/seek/internal/domain/command"
	"github.com/corey/seek/internal/domain/index"
	"github.com/corey/seek/internal/ports"
)

// Options carries the per-query inputs besides the query text.
type Options struct {
	// Subfilter is honored only when its Type equals the query's scope or
	// is empty.
	Subfilter *ports.SubfilterSelection
	// Navigation is the back/forward stack of the current tab.
	Navigation *ports.NavState
	// FocusedTabID is the tab the user focused, 0 for none.
	FocusedTabID int64
	// Now defaults to time.Now().
	Now time.Time
	// Limit caps non-history result lists. Zero means DefaultLimit.
	Limit int
	// WebSearch appends a web search result to unscoped queries.
	WebSearch bool
	// RequestID is echoed back so callers can drop stale responses.
	RequestID string
}

// RunSearch answers raw against ep. It never fails: a nil epoch, an unknown
// prefix or an untokenizable query all produce a valid, possibly empty,
// response.
func RunSearch(raw string, ep *index.Epoch, opts Options) *ports.Response {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	scope, _, _ := ExtractFilterPrefix(raw)
	requested := ""
	if opts.Subfilter != nil && (opts.Subfilter.Type == "" || opts.Subfilter.Type == scope) {
		requested = opts.Subfilter.ID
	}
	q := ParseQuery(raw, requested)

	resp := &ports.Response{RequestID: opts.RequestID, Filter: q.Scope}
	if ep != nil {
		resp.Generation = ep.Generation
	}
	s := newSorter()

	var results []ports.Result
	switch kind, isItem := q.Scope.ItemKind(); {
	case q.Scope == ports.ScopeBack || q.Scope == ports.ScopeForward:
		results = buildNavigation(opts.Navigation, q.Scope, q.Tokens, s)

	case q.Scope == ports.ScopeCommand:
		ctx := CommandContext(ep, opts.FocusedTabID)
		if q.Remainder == "" {
			results = command.ListAll(ctx)
		} else {
			results = command.Suggest(q.Remainder, ctx, true)
		}

	case isItem:
		items := itemsOfKind(ep, kind)
		sf, facet := buildSubfilters(q.Scope, items, q.RequestedSubfilter, now)
		resp.Subfilters = sf
		switch {
		case q.Remainder == "":
			results = s.defaultListing(filterItems(items, facet), kind, now)
		case len(q.Tokens) > 0:
			admit := func(it *ports.Item) bool {
				return it.Kind == kind && (facet == nil || facet(it))
			}
			results = rankScored(ep, scoreCandidates(ep, q.Tokens, admit), q, now)
			s.sortScored(results)
		}

	default:
		if q.Remainder != "" {
			results = command.Suggest(q.Remainder, CommandContext(ep, opts.FocusedTabID), false)
		}
		if len(q.Tokens) > 0 {
			results = append(results, rankScored(ep, scoreCandidates(ep, q.Tokens, nil), q, now)...)
		}
		s.sortScored(results)
	}

	if q.Scope != ports.ScopeHistory && len(results) > limit {
		results = results[:limit]
	}
	if opts.WebSearch && !q.HasScope && q.Remainder != "" {
		results = append(results, webSearchResult(q.Remainder, len(results)))
	}
	if results == nil {
		results = []ports.Result{}
	}

	resp.Results = results
	resp.Ghost = buildGhost(results, q.Remainder)
	if len(results) > 0 && results[0].Command != nil {
		resp.Answer = results[0].Command.Answer
	}
	return resp
}

// CommandContext snapshots the tabs of ep for command suggestions.
func CommandContext(ep *index.Epoch, focusedTabID int64) command.Context {
	var ctx command.Context
	if ep == nil {
		return ctx
	}
	ctx.BookmarkCount = ep.Count(ports.KindBookmark)
	for i := range ep.Items {
		it := &ep.Items[i]
		if it.Tab == nil {
			continue
		}
		ctx.Tabs = append(ctx.Tabs, command.TabRef{
			TabID:        it.Tab.TabID,
			WindowID:     it.Tab.WindowID,
			Title:        it.Title,
			URL:          it.URL,
			Hostname:     it.Hostname,
			Active:       it.Tab.Active,
			Audible:      it.Tab.Audible,
			LastAccessed: it.Tab.LastAccessed,
		})
		if it.Tab.Audible {
			ctx.AudibleTabCount++
		}
	}
	ctx.TabCount = len(ctx.Tabs)
	for i := range ctx.Tabs {
		t := &ctx.Tabs[i]
		if t.Active && ctx.ActiveTab == nil {
			ctx.ActiveTab = t
		}
		if focusedTabID != 0 && t.TabID == focusedTabID {
			ctx.FocusedTab = t
		}
	}
	return ctx
}

func itemsOfKind(ep *index.Epoch, kind ports.Kind) []*ports.Item {
	if ep == nil {
		return nil
	}
	out := make([]*ports.Item, 0, ep.Count(kind))
	for i := range ep.Items {
		if ep.Items[i].Kind == kind {
			out = append(out, &ep.Items[i])
		}
	}
	return out
}

func filterItems(items []*ports.Item, facet facetFilter) []*ports.Item {
	if facet == nil {
		return items
	}
	out := make([]*ports.Item, 0, len(items))
	for _, it := range items {
		if facet(it) {
			out = append(out, it)
		}
	}
	return out
}

func webSearchResult(query string, pos int) ports.Result {
	return ports.Result{
		ID:          uint32(pos),
		Kind:        ports.KindWebSearch,
		Title:       "Search the web for \"" + query + "\"",
		Description: "Web search",
		WebSearch:   &ports.WebSearchPayload{Query: query},
	}
}
