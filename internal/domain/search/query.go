// Package search turns a query string plus one index epoch into a ranked
// response: scoped or unscoped lexical results, command suggestions,
// navigation entries, ghost text and subfilter facets.
//
// Every function here is pure over its inputs. The epoch is read-only and
// nothing is retained between queries.
package search

import (
	"strings"

	"github.com/corey/seek/internal/domain/index"
	"github.com/corey/seek/internal/ports"
)

// prefixAlias maps one case-insensitive query prefix onto a scope.
type prefixAlias struct {
	alias string
	scope ports.Scope
}

// prefixTable lists every recognized scope prefix. Matching picks the longest alias.
var prefixTable = []prefixAlias{
	{"tab:", ports.ScopeTab},
	{"tabs:", ports.ScopeTab},
	{"t:", ports.ScopeTab},
	{"bookmark:", ports.ScopeBookmark},
	{"bookmarks:", ports.ScopeBookmark},
	{"bm:", ports.ScopeBookmark},
	{"b:", ports.ScopeBookmark},
	{"history:", ports.ScopeHistory},
	{"hist:", ports.ScopeHistory},
	{"h:", ports.ScopeHistory},
	{"download:", ports.ScopeDownload},
	{"downloads:", ports.ScopeDownload},
	{"dl:", ports.ScopeDownload},
	{"d:", ports.ScopeDownload},
	{"back:", ports.ScopeBack},
	{"forward:", ports.ScopeForward},
	{"command:", ports.ScopeCommand},
	{"commands:", ports.ScopeCommand},
	{"cmd:", ports.ScopeCommand},
	{"topsites:", ports.ScopeTopSite},
	{"topsite:", ports.ScopeTopSite},
	{"ts:", ports.ScopeTopSite},
}

// Query is a parsed query string.
type Query struct {
	Raw       string
	Scope     ports.Scope // empty when HasScope is false
	HasScope  bool
	Remainder string   // text after the prefix, trimmed
	Tokens    []string // distinct tokens of Remainder, first-occurrence order

	RequestedSubfilter string
}

// ExtractFilterPrefix strips a leading scope prefix from raw. Without a
// recognized prefix the scope is unset and the remainder is raw itself.
func ExtractFilterPrefix(raw string) (ports.Scope, bool, string) {
	trimmed := strings.TrimLeft(raw, " \t")
	lower := strings.ToLower(trimmed)

	best := -1
	for i, p := range prefixTable {
		if !strings.HasPrefix(lower, p.alias) {
			continue
		}
		if best < 0 || len(p.alias) > len(prefixTable[best].alias) {
			best = i
		}
	}
	if best < 0 {
		return "", false, raw
	}
	p := prefixTable[best]
	return p.scope, true, trimmed[len(p.alias):]
}

// ParseQuery extracts the scope prefix and tokenizes the remainder.
func ParseQuery(raw, requestedSubfilter string) Query {
	scope, ok, remainder := ExtractFilterPrefix(raw)
	remainder = strings.TrimSpace(remainder)
	return Query{
		Raw:                raw,
		Scope:              scope,
		HasScope:           ok,
		Remainder:          remainder,
		Tokens:             index.UniqueTokens(index.Tokenize(remainder)),
		RequestedSubfilter: requestedSubfilter,
	}
}

// compactLen is the remainder length with all whitespace removed.
func (q Query) compactLen() int {
	n := 0
	for _, r := range q.Remainder {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			n++
		}
	}
	return n
}
