package cmd

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/corey/seek/internal/adapters/socket"
	"github.com/corey/seek/internal/ports"
)

// ANSI color codes for terminal output.
const (
	colorReset   = "\033[0m"
	colorBold    = "\033[1m"
	colorCyan    = "\033[36m"
	colorMagenta = "\033[35m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorGray    = "\033[90m"
)

// formatSearchResult formats a SearchResult for terminal display.
//
//	⚡ 3 results │ tab: │ gen 4 │ 85µs
//	  ghost: GitHub
//	  facets: [all 3] github.com 2  google.com 1
//	  tab        GitHub                         github.com     8.40
//	  command    Close tabs from google.com     ∞
func formatSearchResult(result *socket.SearchResult) string {
	var sb strings.Builder

	header := fmt.Sprintf("%s⚡ %d results%s", colorBold, len(result.Results), colorReset)
	if result.Filter != "" {
		header += fmt.Sprintf(" │ %s:", result.Filter)
	}
	header += fmt.Sprintf(" │ gen %d │ %s", result.Generation, result.Elapsed)
	sb.WriteString(header + "\n")

	if result.Answer != "" {
		sb.WriteString(fmt.Sprintf("  %s%s%s\n", colorGreen, result.Answer, colorReset))
	}
	if result.Ghost != nil {
		sb.WriteString(fmt.Sprintf("  %sghost:%s %s\n", colorGray, colorReset, result.Ghost.Text))
	}
	if sf := result.Subfilters; sf != nil && len(sf.Options) > 0 {
		sb.WriteString(fmt.Sprintf("  %sfacets:%s", colorGray, colorReset))
		for _, opt := range sf.Options {
			label := opt.Label
			if opt.Count > 0 {
				label = fmt.Sprintf("%s %d", opt.Label, opt.Count)
			}
			if opt.ID == sf.ActiveID {
				sb.WriteString(fmt.Sprintf(" %s[%s]%s", colorBold, label, colorReset))
			} else {
				sb.WriteString(" " + label)
			}
		}
		sb.WriteString("\n")
	}

	for _, r := range result.Results {
		sb.WriteString(fmt.Sprintf("  %s%-10s%s %-40s", kindColor(r.Kind), r.Kind, colorReset, truncate(r.Title, 40)))
		if detail := resultDetail(r); detail != "" {
			sb.WriteString(fmt.Sprintf(" %s%s%s", colorCyan, truncate(detail, 40), colorReset))
		}
		if s := formatScore(r.Score); s != "" {
			sb.WriteString(fmt.Sprintf("  %s%s%s", colorGray, s, colorReset))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// resultDetail picks the secondary column for one result.
func resultDetail(r ports.Result) string {
	switch {
	case r.Command != nil:
		return r.Description
	case r.Navigation != nil:
		return fmt.Sprintf("%+d", r.Navigation.NavigationDelta)
	case r.WebSearch != nil:
		return ""
	case r.Download != nil:
		return r.Download.State
	}
	return r.URL
}

func formatScore(score float64) string {
	switch {
	case math.IsInf(score, 1):
		return "∞"
	case score == 0:
		return ""
	}
	return fmt.Sprintf("%.2f", score)
}

func kindColor(k ports.Kind) string {
	switch k {
	case ports.KindCommand:
		return colorMagenta
	case ports.KindTab:
		return colorGreen
	case ports.KindWebSearch, ports.KindNavigation:
		return colorYellow
	}
	return ""
}

// formatHealth formats a HealthResult for terminal display.
func formatHealth(h *socket.HealthResult) string {
	var sb strings.Builder
	status := fmt.Sprintf("%s%s%s", colorGreen, h.Status, colorReset)
	if h.Status != "ok" {
		status = fmt.Sprintf("%s%s%s", colorYellow, h.Status, colorReset)
	}
	sb.WriteString(fmt.Sprintf("%s⚡ seek daemon%s │ %s │ gen %d │ up %s\n", colorBold, colorReset, status, h.Generation, h.Uptime))
	if len(h.Counts) > 0 {
		sb.WriteString("  " + formatCounts(h.Counts) + fmt.Sprintf(" │ %d terms\n", h.TermCount))
	}
	if h.BuiltAt != "" {
		sb.WriteString(fmt.Sprintf("  built:  %s\n", h.BuiltAt))
	}
	if h.RecentSearches > 0 {
		line := fmt.Sprintf("  load:   %d searches/min", h.RecentSearches)
		if h.SearchP50 != "" {
			line += " │ p50 " + h.SearchP50
		}
		sb.WriteString(line + "\n")
	}
	if h.LastError != "" {
		sb.WriteString(fmt.Sprintf("  %slast rebuild failed at %s: %s%s\n", colorYellow, h.LastErrorAt, h.LastError, colorReset))
	}
	return sb.String()
}

// formatReindex formats a ReindexResult for terminal display.
func formatReindex(r *socket.ReindexResult) string {
	return fmt.Sprintf("%s⚡ reindexed%s │ gen %d │ %s │ %d terms │ %dms\n",
		colorBold, colorReset, r.Generation, formatCounts(r.Counts), r.TermCount, r.ElapsedMs)
}

// formatCounts renders per-kind counts in item-kind order, then any others sorted.
func formatCounts(counts map[ports.Kind]int) string {
	parts := make([]string, 0, len(counts))
	seen := make(map[ports.Kind]bool, len(counts))
	for _, k := range ports.ItemKinds {
		seen[k] = true
		parts = append(parts, fmt.Sprintf("%d %s", counts[k], k))
	}
	var rest []string
	for k, n := range counts {
		if !seen[k] {
			rest = append(rest, fmt.Sprintf("%d %s", n, k))
		}
	}
	sort.Strings(rest)
	return strings.Join(append(parts, rest...), ", ")
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
