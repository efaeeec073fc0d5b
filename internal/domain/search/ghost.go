package search

import (
	"strings"
	"unicode"

	"github.com/corey/seek/internal/ports"
)

// compactForGhost lowercases s and drops all whitespace.
func compactForGhost(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if !unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ghostCandidates lists the completion strings tried for one result, in order:
// title, URL, hostname, hostname+path.
func ghostCandidates(r *ports.Result) []string {
	if r.IsCommand() {
		return []string{r.Title}
	}
	out := []string{r.Title, r.URL}
	if host := r.Hostname(); host != "" {
		out = append(out, host)
		if p := r.HostPath(); p != "" && p != "/" {
			out = append(out, host+p)
		}
	}
	return out
}

// qualifies reports whether g continues the compacted query without
// merely repeating it.
func qualifies(g, compactQuery string) bool {
	if strings.TrimSpace(g) == "" {
		return false
	}
	cg := compactForGhost(g)
	return strings.HasPrefix(cg, compactQuery) && cg != compactQuery
}

// buildGhost proposes inline completion text for query. The top result is
// tried first (its title only when it is a command); then the remaining
// non-command results in order.
func buildGhost(results []ports.Result, query string) *ports.Ghost {
	cq := compactForGhost(query)
	if cq == "" || len(results) == 0 {
		return nil
	}

	if top := &results[0]; top.Kind != ports.KindWebSearch {
		for _, g := range ghostCandidates(top) {
			if qualifies(g, cq) {
				return &ports.Ghost{Text: g}
			}
		}
	}

	for i := 1; i < len(results); i++ {
		r := &results[i]
		if r.IsCommand() || r.Kind == ports.KindWebSearch {
			continue
		}
		for _, g := range ghostCandidates(r) {
			if qualifies(g, cq) {
				return &ports.Ghost{Text: g}
			}
		}
	}
	return nil
}
