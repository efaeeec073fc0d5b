package search

import (
	"strings"

	"github.com/corey/seek/internal/domain/index"
	"github.com/corey/seek/internal/ports"
)

// Match boosts applied to a posting weight.
const (
	ExactBoost  = 1.0
	PrefixBoost = 0.7
	FuzzyBoost  = 0.45
)

// candidate is the lexical evidence gathered for one item.
type candidate struct {
	id      uint32
	lexical float64
	matched int // distinct query tokens that contributed
}

// scoreCandidates accumulates exact, prefix and fuzzy posting weights for
// every item admitted by admit. Candidates come back in first-touched order.
func scoreCandidates(ep *index.Epoch, tokens []string, admit func(*ports.Item) bool) []*candidate {
	if ep == nil || len(tokens) == 0 {
		return nil
	}

	byID := make(map[uint32]*candidate)
	var order []*candidate
	touched := make(map[uint32]bool)

	add := func(posting map[uint32]float64, boost float64) {
		for id, weight := range posting {
			c, ok := byID[id]
			if !ok {
				it := ep.Item(id)
				if it == nil || (admit != nil && !admit(it)) {
					continue
				}
				c = &candidate{id: id}
				byID[id] = c
				order = append(order, c)
			}
			c.lexical += weight * boost
			touched[id] = true
		}
	}

	for _, tok := range tokens {
		clear(touched)

		if posting, ok := ep.Postings[tok]; ok {
			add(posting, ExactBoost)
		}

		for _, term := range ep.Bucket(tok) {
			if term == tok {
				continue
			}
			switch {
			case strings.HasPrefix(term, tok):
				add(ep.Postings[term], PrefixBoost)
			case index.IsFuzzyMatch(term, tok):
				add(ep.Postings[term], FuzzyBoost)
			}
		}

		for id := range touched {
			if c := byID[id]; c != nil {
				c.matched++
			}
		}
	}

	total := len(tokens)
	for _, c := range order {
		if c.matched > total {
			c.matched = total
		}
	}
	return order
}
