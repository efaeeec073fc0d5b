package ports

import (
	"encoding/json"
	"math"
)

// CommandScore is the sentinel score of command suggestions. It ranks above
// every finite score.
var CommandScore = math.Inf(1)

// Scope is the type filter selected by a query prefix.
type Scope string

const (
	ScopeTab      Scope = "tab"
	ScopeBookmark Scope = "bookmark"
	ScopeHistory  Scope = "history"
	ScopeDownload Scope = "download"
	ScopeTopSite  Scope = "topsite"
	ScopeBack     Scope = "back"
	ScopeForward  Scope = "forward"
	ScopeCommand  Scope = "command"
)

// ItemKind returns the item kind a scope narrows to, if any.
func (s Scope) ItemKind() (Kind, bool) {
	switch s {
	case ScopeTab:
		return KindTab, true
	case ScopeBookmark:
		return KindBookmark, true
	case ScopeHistory:
		return KindHistory, true
	case ScopeDownload:
		return KindDownload, true
	case ScopeTopSite:
		return KindTopSite, true
	}
	return "", false
}

// Result is one entry of a search response. Kind tags which payload is set;
// exactly one payload pointer is non-nil.
type Result struct {
	ID                uint32  `json:"id"`
	Kind              Kind    `json:"kind"`
	Title             string  `json:"title"`
	URL               string  `json:"url,omitempty"`
	Description       string  `json:"description,omitempty"`
	Score             float64 `json:"score"`
	MatchedTokenCount int     `json:"matched_token_count,omitempty"`
	FaviconURL        string  `json:"favicon_url,omitempty"`

	Tab        *TabFields         `json:"tab,omitempty"`
	Bookmark   *BookmarkFields    `json:"bookmark,omitempty"`
	History    *HistoryFields     `json:"history,omitempty"`
	Download   *DownloadFields    `json:"download,omitempty"`
	TopSite    *TopSiteFields     `json:"top_site,omitempty"`
	Command    *CommandPayload    `json:"command,omitempty"`
	Navigation *NavigationPayload `json:"navigation,omitempty"`
	WebSearch  *WebSearchPayload  `json:"web_search,omitempty"`

	hostname string // ghost-text candidate, not serialized
	path     string
}

// CommandPayload names the side effect a command result requests. The engine
// never performs it.
type CommandPayload struct {
	CommandID   string            `json:"command_id"`
	Args        map[string]string `json:"args,omitempty"`
	CommandRank int               `json:"command_rank"`
	Answer      string            `json:"answer,omitempty"`
}

// NavigationPayload tells an external navigator how far to move in a tab's history.
type NavigationPayload struct {
	TabID           int64 `json:"tab_id"`
	NavigationDelta int   `json:"navigation_delta"`
	TimeStamp       int64 `json:"time_stamp,omitempty"`
}

// WebSearchPayload carries the query to hand to a web search provider.
type WebSearchPayload struct {
	Query string `json:"query"`
}

// IsCommand reports whether r is a command suggestion.
func (r *Result) IsCommand() bool { return r.Kind == KindCommand }

// ResultScore returns the ranking score.
func (r *Result) ResultScore() float64 { return r.Score }

// ResultTitle returns the display title.
func (r *Result) ResultTitle() string { return r.Title }

// CommandRank returns the insertion rank of a command result, or -1.
func (r *Result) CommandRank() int {
	if r.Command == nil {
		return -1
	}
	return r.Command.CommandRank
}

// Hostname returns the hostname recorded for ghost-text candidates.
func (r *Result) Hostname() string { return r.hostname }

// HostPath returns the URL path recorded for ghost-text candidates.
func (r *Result) HostPath() string { return r.path }

// SetLocation records hostname and path for ghost-text candidates.
func (r *Result) SetLocation(hostname, path string) {
	r.hostname = hostname
	r.path = path
}

// MarshalJSON encodes the command sentinel score as null; JSON has no infinity.
func (r Result) MarshalJSON() ([]byte, error) {
	type alias Result
	out := struct {
		alias
		Score *float64 `json:"score"`
	}{alias: alias(r)}
	if !math.IsInf(r.Score, 0) && !math.IsNaN(r.Score) {
		score := r.Score
		out.Score = &score
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores the command sentinel score from a null score.
func (r *Result) UnmarshalJSON(data []byte) error {
	type alias Result
	aux := struct {
		*alias
		Score *float64 `json:"score"`
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	switch {
	case aux.Score != nil:
		r.Score = *aux.Score
	case r.Kind == KindCommand:
		r.Score = CommandScore
	default:
		r.Score = 0
	}
	return nil
}

// SubfilterOption is one selectable facet within a scope.
type SubfilterOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Hint  string `json:"hint,omitempty"`
	Count int    `json:"count,omitempty"`
}

// SubfilterAll is the id of the facet that selects everything.
const SubfilterAll = "all"

// SubfilterSelection is a caller's requested facet.
type SubfilterSelection struct {
	Type Scope  `json:"type"`
	ID   string `json:"id"`
}

// Subfilters is the facet set computed for one response.
type Subfilters struct {
	Type     Scope             `json:"type"`
	Options  []SubfilterOption `json:"options"`
	ActiveID string            `json:"active_id"`
}

// Ghost is the inline completion offered ahead of the caret.
type Ghost struct {
	Text string `json:"text"`
}

// Response is the full answer to one query.
type Response struct {
	RequestID  string      `json:"request_id,omitempty"`
	Generation uint64      `json:"generation"`
	Results    []Result    `json:"results"`
	Ghost      *Ghost      `json:"ghost,omitempty"`
	Answer     string      `json:"answer,omitempty"`
	Filter     Scope       `json:"filter,omitempty"`
	Subfilters *Subfilters `json:"subfilters,omitempty"`
}

// NavEntry is one entry of a tab's back or forward stack.
type NavEntry struct {
	URL        string `json:"url"`
	Title      string `json:"title"`
	FaviconURL string `json:"favicon_url,omitempty"`
	Delta      int    `json:"delta"`
	TimeStamp  int64  `json:"time_stamp,omitempty"`
}

// NavState is the navigation stack of the current tab.
type NavState struct {
	TabID   int64      `json:"tab_id"`
	Back    []NavEntry `json:"back,omitempty"`
	Forward []NavEntry `json:"forward,omitempty"`
}
