package search

import (
	"sort"
	"strings"

	"github.com/corey/seek/internal/domain/index"
	"github.com/corey/seek/internal/ports"
)

// Navigation scoring.
const (
	navBaseScore        = 120.0
	navDistanceStep     = 6.0
	navMaxDistance      = 20
	navTokenBonus       = 14.0
	navMissingTokenRate = 0.35
)

// navDistanceScore ranks entries closer to the current position higher.
func navDistanceScore(delta int) float64 {
	if delta < 0 {
		delta = -delta
	}
	if delta > navMaxDistance {
		delta = navMaxDistance
	}
	score := navBaseScore - navDistanceStep*float64(delta)
	if score < 0 {
		return 0
	}
	return score
}

// buildNavigation scores the back or forward stack of nav against tokens.
// With tokens, entries matching none of them are dropped.
func buildNavigation(nav *ports.NavState, scope ports.Scope, tokens []string, s *sorter) []ports.Result {
	if nav == nil {
		return nil
	}
	entries := nav.Back
	if scope == ports.ScopeForward {
		entries = nav.Forward
	}

	out := make([]ports.Result, 0, len(entries))
	for i, e := range entries {
		score := navDistanceScore(e.Delta)
		matched := 0
		if len(tokens) > 0 {
			hay := index.Normalize(e.Title + " " + e.URL)
			for _, tok := range tokens {
				if strings.Contains(hay, tok) {
					matched++
				}
			}
			if matched == 0 {
				continue
			}
			missing := len(tokens) - matched
			score += navTokenBonus*float64(matched) - navTokenBonus*navMissingTokenRate*float64(missing)
		}

		title := e.Title
		if title == "" {
			title = e.URL
		}
		parts := index.ParseURL(e.URL)
		r := ports.Result{
			ID:                uint32(i),
			Kind:              ports.KindNavigation,
			Title:             title,
			URL:               e.URL,
			Description:       parts.Hostname,
			Score:             score,
			MatchedTokenCount: matched,
			FaviconURL:        e.FaviconURL,
			Navigation: &ports.NavigationPayload{
				TabID:           nav.TabID,
				NavigationDelta: e.Delta,
				TimeStamp:       e.TimeStamp,
			},
		}
		r.SetLocation(parts.Hostname, parts.Path)
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := &out[i], &out[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Navigation.TimeStamp != b.Navigation.TimeStamp {
			return a.Navigation.TimeStamp > b.Navigation.TimeStamp
		}
		return s.compareTitles(a.Title, b.Title) < 0
	})
	return out
}
