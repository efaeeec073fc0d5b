package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corey/seek/internal/adapters/socket"
	"github.com/corey/seek/internal/app"
	"github.com/corey/seek/internal/ports"
)

var (
	searchSubfilter string
	searchFocus     int64
	searchLimit     int
	searchWeb       bool
	searchJSON      bool
	searchOffline   bool
	searchNavFile   string
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search tabs, bookmarks, history, downloads and top sites",
	Long: `Search the indexed corpus. Prefix the query to scope it:
  tab: bookmark: history: download: topsites: back: forward: command:
Without a running daemon the index is built from the store for this one query.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	f := searchCmd.Flags()
	f.StringVarP(&searchSubfilter, "subfilter", "s", "", "facet id for the scoped query (e.g. today, interrupted)")
	f.Int64Var(&searchFocus, "focus", 0, "focused tab id")
	f.IntVarP(&searchLimit, "limit", "n", 0, "result cap (default from config)")
	f.BoolVar(&searchWeb, "web", false, "append a web search result")
	f.BoolVar(&searchJSON, "json", false, "print the raw response as JSON")
	f.BoolVar(&searchOffline, "offline", false, "skip the daemon and build from the store")
	f.StringVar(&searchNavFile, "nav", "", "JSON file with the tab's back/forward stack")
}

func runSearch(cmd *cobra.Command, args []string) error {
	paths, cfg, err := loadConfig()
	if err != nil {
		return err
	}

	params := socket.SearchParams{
		Query:        strings.Join(args, " "),
		FocusedTabID: searchFocus,
		Limit:        searchLimit,
		WebSearch:    searchWeb,
	}
	if searchSubfilter != "" {
		params.Subfilter = &ports.SubfilterSelection{ID: searchSubfilter}
	}
	if searchNavFile != "" {
		nav, err := readNavState(searchNavFile)
		if err != nil {
			return err
		}
		params.Navigation = nav
	}

	sockPath := socketPath(paths, cfg)
	client := socket.NewClient(sockPath)

	var result *socket.SearchResult
	if !searchOffline && client.Ping() {
		if result, err = client.Search(params); err != nil {
			return err
		}
	} else {
		resp, err := app.SearchOffline(context.Background(), baseDir(), cfg, params)
		if err != nil {
			return explainStoreError(err, sockPath)
		}
		result = &socket.SearchResult{Response: *resp, Elapsed: "offline"}
	}

	if searchJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	render(formatSearchResult(result))
	return nil
}

func readNavState(path string) (*ports.NavState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read navigation: %w", err)
	}
	var nav ports.NavState
	if err := json.Unmarshal(data, &nav); err != nil {
		return nil, fmt.Errorf("parse navigation %s: %w", path, err)
	}
	return &nav, nil
}
