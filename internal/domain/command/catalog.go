// Package command synthesizes command suggestions (close, sort, focus, ...)
// from a query and a snapshot of the open tabs. It only names commands; an
// external executor performs them.
package command

import (
	"fmt"
	"strconv"
	"strings"
)

// Command ids understood by the executor.
const (
	IDTabClose       = "tab-close"
	IDTabCloseDomain = "tab-close-domain"
	IDTabCloseAll    = "tab-close-all"
	IDTabCloseAudio  = "tab-close-audio"
	IDTabSort        = "tab-sort"
	IDTabShuffle     = "tab-shuffle"
	IDTabFocus       = "tab-focus"
	IDTabFocusJump   = "tab-focus-jump"
	IDTabUnfocus     = "tab-unfocus"
	IDTabCount       = "tab-count"
	IDBookmarkCount  = "bookmark-count"
)

// TabRef is the slice of a tab the generators look at.
type TabRef struct {
	TabID        int64
	WindowID     int64
	Title        string
	URL          string
	Hostname     string
	Active       bool
	Audible      bool
	LastAccessed int64
}

// Context is everything availability and description functions may read.
type Context struct {
	TabCount        int
	AudibleTabCount int
	BookmarkCount   int
	Tabs            []TabRef
	ActiveTab       *TabRef
	FocusedTab      *TabRef
}

// windowTabCount counts tabs sharing the active tab's window, or all tabs
// when no tab is active.
func (c Context) windowTabCount() int {
	if c.ActiveTab == nil {
		return c.TabCount
	}
	n := 0
	for _, t := range c.Tabs {
		if t.WindowID == c.ActiveTab.WindowID {
			n++
		}
	}
	return n
}

// Spec is one static catalog entry.
type Spec struct {
	ID        string
	Title     string
	Aliases   []string
	Available func(Context) bool
	Describe  func(Context) (answer, description string)
}

// Catalog is the static command table, in suggestion order.
var Catalog = []Spec{
	{
		ID:        IDTabSort,
		Title:     "Sort tabs by domain",
		Aliases:   []string{"sort tabs", "organize tabs", "group tabs by domain", "tidy tabs"},
		Available: func(c Context) bool { return c.TabCount > 1 },
		Describe: func(c Context) (string, string) {
			return fmt.Sprintf("Sort %s by domain", plural(c.TabCount, "tab")), "Groups tabs from the same site together"
		},
	},
	{
		ID:        IDTabShuffle,
		Title:     "Shuffle tabs",
		Aliases:   []string{"shuffle tabs", "randomize tabs", "mix tabs"},
		Available: func(c Context) bool { return c.TabCount > 1 },
		Describe: func(c Context) (string, string) {
			return fmt.Sprintf("Shuffle %s", plural(c.TabCount, "tab")), "Randomizes tab order"
		},
	},
	{
		ID:        IDTabCloseAll,
		Title:     "Close all tabs in window",
		Aliases:   []string{"close all tabs", "close window", "close everything"},
		Available: func(c Context) bool { return c.TabCount > 0 },
		Describe: func(c Context) (string, string) {
			return fmt.Sprintf("Close %s in this window", plural(c.windowTabCount(), "tab")), "Closes every tab in the current window"
		},
	},
	{
		ID:        IDTabCloseAudio,
		Title:     "Close tabs playing audio",
		Aliases:   []string{"close audio tabs", "close sound tabs", "stop music", "silence tabs"},
		Available: func(c Context) bool { return c.AudibleTabCount > 0 },
		Describe: func(c Context) (string, string) {
			return fmt.Sprintf("Close %s playing audio", plural(c.AudibleTabCount, "tab")), "Closes every audible tab"
		},
	},
	{
		ID:        IDTabCount,
		Title:     "Count open tabs",
		Aliases:   []string{"how many tabs", "tab count", "count tabs", "number of tabs"},
		Available: func(Context) bool { return true },
		Describe: func(c Context) (string, string) {
			return fmt.Sprintf("You have %s open", plural(c.TabCount, "tab")), ""
		},
	},
	{
		ID:        IDBookmarkCount,
		Title:     "Count bookmarks",
		Aliases:   []string{"how many bookmarks", "bookmark count", "count bookmarks"},
		Available: func(Context) bool { return true },
		Describe: func(c Context) (string, string) {
			return fmt.Sprintf("You have %s", plural(c.BookmarkCount, "bookmark")), ""
		},
	},
	{
		ID:        IDTabFocusJump,
		Title:     "Jump to focused tab",
		Aliases:   []string{"jump to focused tab", "go to focused tab", "focused tab"},
		Available: func(c Context) bool { return c.FocusedTab != nil },
		Describe: func(c Context) (string, string) {
			return "", c.FocusedTab.Title
		},
	},
	{
		ID:        IDTabUnfocus,
		Title:     "Unfocus tab",
		Aliases:   []string{"unfocus", "clear focus", "stop focus"},
		Available: func(c Context) bool { return c.FocusedTab != nil },
		Describe: func(c Context) (string, string) {
			return "", c.FocusedTab.Title
		},
	},
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}

// compact keeps only [a-z0-9] of the lowercased text.
func compact(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Matches reports whether the compacted title or any alias starts with the
// compacted query.
func (s *Spec) Matches(query string) bool {
	q := compact(query)
	if q == "" {
		return false
	}
	if strings.HasPrefix(compact(s.Title), q) {
		return true
	}
	for _, a := range s.Aliases {
		if strings.HasPrefix(compact(a), q) {
			return true
		}
	}
	return false
}
