// Package socket implements a JSON-over-Unix-socket protocol for the seek daemon.
// The protocol uses newline-delimited JSON: each message is one JSON object + \n.
package socket

import (
	"crypto/sha256"
	"fmt"
	"path/filepath"

	"github.com/corey/seek/internal/ports"
)

// SocketPath returns the Unix socket path for a given data directory.
// Format: /tmp/seek-{first12hex}.sock
func SocketPath(dataDir string) string {
	abs, err := filepath.Abs(dataDir)
	if err != nil {
		abs = dataDir
	}
	h := sha256.Sum256([]byte(abs))
	return fmt.Sprintf("/tmp/seek-%x.sock", h[:6])
}

// Method names for the protocol.
const (
	MethodSearch   = "search"
	MethodHealth   = "health"
	MethodReindex  = "reindex"
	MethodImport   = "import"
	MethodShutdown = "shutdown"
)

// Request is the wire format for client-to-server messages.
type Request struct {
	ID     string      `json:"id"`
	Method string      `json:"method"`
	Params interface{} `json:"params,omitempty"`
}

// Response is the wire format for server-to-client messages.
type Response struct {
	ID     string      `json:"id"`
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// SearchParams is the params for a search request.
type SearchParams struct {
	Query        string                    `json:"query"`
	Subfilter    *ports.SubfilterSelection `json:"subfilter,omitempty"`
	Navigation   *ports.NavState           `json:"navigation,omitempty"`
	FocusedTabID int64                     `json:"focused_tab_id,omitempty"`
	Limit        int                       `json:"limit,omitempty"`
	WebSearch    bool                      `json:"web_search,omitempty"`
}

// ImportParams is the params for an import request. Path is read by the
// daemon, so it must be absolute or relative to the daemon's working directory.
type ImportParams struct {
	Path string `json:"path"`
}

// SearchResult is the result of a search request.
type SearchResult struct {
	ports.Response
	Elapsed string `json:"elapsed"`
}

// HealthResult is the result of a health request.
type HealthResult struct {
	Status      string             `json:"status"`
	Generation  uint64             `json:"generation"`
	Counts      map[ports.Kind]int `json:"counts,omitempty"`
	TermCount   int                `json:"term_count"`
	BuiltAt     string             `json:"built_at,omitempty"`
	LastError   string             `json:"last_error,omitempty"`
	LastErrorAt string             `json:"last_error_at,omitempty"`
	Uptime      string             `json:"uptime"`

	RecentSearches int    `json:"recent_searches,omitempty"` // searches in the last minute
	SearchP50      string `json:"search_p50,omitempty"`      // median latency, empty below 5 searches
}

// ReindexResult is the result of a reindex request.
type ReindexResult struct {
	Generation uint64             `json:"generation"`
	Counts     map[ports.Kind]int `json:"counts"`
	TermCount  int                `json:"term_count"`
	ElapsedMs  int64              `json:"elapsed_ms"`
}
