package command

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/corey/seek/internal/ports"
)

const (
	// MinStaticQuery is the shortest compacted query matched against the
	// static catalog outside the command scope.
	MinStaticQuery = 2

	maxDomainSuggestions = 5
	maxTabSuggestions    = 6
)

var (
	closeVerbs  = map[string]bool{"close": true, "remove": true, "delete": true, "shut": true, "kill": true}
	audioWords  = map[string]bool{"audio": true, "sound": true, "sounds": true, "music": true, "playing": true, "noisy": true}
	allWords    = map[string]bool{"window": true, "everything": true}
	fillerWords = map[string]bool{"all": true, "tabs": true, "tab": true, "from": true, "on": true, "of": true, "the": true}
)

// collector accumulates suggestions in order, dropping repeats of the same
// command and arguments. Rank is the insertion index.
type collector struct {
	out  []ports.Result
	seen map[string]bool
}

func newCollector() *collector {
	return &collector{seen: make(map[string]bool)}
}

func argsKey(id string, args map[string]string) string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(id)
	for _, k := range keys {
		b.WriteByte('|')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(args[k])
	}
	return b.String()
}

func (c *collector) add(id, title, answer, description string, args map[string]string, url string) {
	key := argsKey(id, args)
	if c.seen[key] {
		return
	}
	c.seen[key] = true
	if args == nil {
		args = map[string]string{}
	}
	if description == "" {
		description = answer
	}
	rank := len(c.out)
	c.out = append(c.out, ports.Result{
		ID:          uint32(rank),
		Kind:        ports.KindCommand,
		Title:       title,
		URL:         url,
		Description: description,
		Score:       ports.CommandScore,
		Command: &ports.CommandPayload{
			CommandID:   id,
			Args:        args,
			CommandRank: rank,
			Answer:      answer,
		},
	})
}

func (c *collector) addSpec(s *Spec, ctx Context) {
	answer, desc := s.Describe(ctx)
	c.add(s.ID, s.Title, answer, desc, nil, "")
}

// Suggest returns the commands matching query, dynamic generators first and
// then the static catalog. scoped relaxes the minimum query length for
// static matches, as when the command scope was chosen explicitly.
func Suggest(query string, ctx Context, scoped bool) []ports.Result {
	c := newCollector()
	words := strings.Fields(strings.ToLower(query))
	if len(words) > 0 {
		switch {
		case closeVerbs[words[0]]:
			suggestClose(c, words[1:], ctx)
		case words[0] == "focus", words[0] == "unfocus", words[0] == "jump":
			suggestFocus(c, words[0], words[1:], ctx)
		}
	}

	if scoped || len(compact(query)) >= MinStaticQuery {
		for i := range Catalog {
			s := &Catalog[i]
			if s.Available(ctx) && s.Matches(query) {
				c.addSpec(s, ctx)
			}
		}
	}
	return c.out
}

// ListAll lists every available static command plus the commands bound to
// the active or focused tab.
func ListAll(ctx Context) []ports.Result {
	c := newCollector()
	if ctx.ActiveTab != nil {
		t := ctx.ActiveTab
		if ctx.FocusedTab == nil || ctx.FocusedTab.TabID != t.TabID {
			addFocusTab(c, t)
		}
		addCloseTab(c, t)
	}
	for i := range Catalog {
		s := &Catalog[i]
		if s.Available(ctx) {
			c.addSpec(s, ctx)
		}
	}
	return c.out
}

// suggestClose handles "close ..." queries. The first applicable branch wins:
// audio, whole window, matching domains, matching tabs.
func suggestClose(c *collector, rest []string, ctx Context) {
	for len(rest) > 0 && fillerWords[rest[0]] {
		rest = rest[1:]
	}

	for _, w := range rest {
		if audioWords[w] {
			if ctx.AudibleTabCount > 0 {
				addCatalog(c, IDTabCloseAudio, ctx)
			}
			return
		}
	}
	if len(rest) == 0 || (len(rest) == 1 && allWords[rest[0]]) {
		if ctx.TabCount > 0 {
			addCatalog(c, IDTabCloseAll, ctx)
		}
		return
	}

	needle := strings.Join(rest, " ")
	if domains := matchDomains(ctx.Tabs, needle); len(domains) > 0 {
		for _, d := range domains {
			c.add(IDTabCloseDomain,
				"Close tabs from "+d.key,
				fmt.Sprintf("Close %s from %s", plural(d.count, "tab"), d.key),
				"", map[string]string{"domain": d.key}, "")
		}
		return
	}
	for _, t := range matchTabs(ctx.Tabs, needle) {
		addCloseTab(c, t)
	}
}

// suggestFocus handles "focus ...", "unfocus" and "jump ..." queries.
func suggestFocus(c *collector, verb string, rest []string, ctx Context) {
	switch verb {
	case "unfocus":
		addCatalog(c, IDTabUnfocus, ctx)
		return
	case "jump":
		addCatalog(c, IDTabFocusJump, ctx)
		return
	}

	for len(rest) > 0 && fillerWords[rest[0]] {
		rest = rest[1:]
	}
	if len(rest) == 0 {
		if ctx.FocusedTab != nil {
			addCatalog(c, IDTabFocusJump, ctx)
			addCatalog(c, IDTabUnfocus, ctx)
			return
		}
		if ctx.ActiveTab != nil {
			addFocusTab(c, ctx.ActiveTab)
		}
		return
	}
	for _, t := range matchTabs(ctx.Tabs, strings.Join(rest, " ")) {
		addFocusTab(c, t)
	}
}

func addCatalog(c *collector, id string, ctx Context) {
	for i := range Catalog {
		if s := &Catalog[i]; s.ID == id && s.Available(ctx) {
			c.addSpec(s, ctx)
			return
		}
	}
}

func addCloseTab(c *collector, t *TabRef) {
	c.add(IDTabClose, "Close tab: "+tabLabel(t), "", t.Hostname,
		map[string]string{"tabId": strconv.FormatInt(t.TabID, 10)}, t.URL)
}

func addFocusTab(c *collector, t *TabRef) {
	c.add(IDTabFocus, "Focus tab: "+tabLabel(t), "", t.Hostname,
		map[string]string{"tabId": strconv.FormatInt(t.TabID, 10)}, t.URL)
}

func tabLabel(t *TabRef) string {
	if t.Title != "" {
		return t.Title
	}
	return t.URL
}

type domainCount struct {
	key   string
	count int
}

// matchDomains returns tab hostnames containing needle, most tabs first,
// then by name.
func matchDomains(tabs []TabRef, needle string) []domainCount {
	q := compact(needle)
	if q == "" {
		return nil
	}
	counts := make(map[string]int)
	for _, t := range tabs {
		if t.Hostname != "" && strings.Contains(compact(t.Hostname), q) {
			counts[t.Hostname]++
		}
	}
	out := make([]domainCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, domainCount{k, n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].key < out[j].key
	})
	if len(out) > maxDomainSuggestions {
		out = out[:maxDomainSuggestions]
	}
	return out
}

// tabMatchScore rates how well a tab matches needle. Zero means no match.
func tabMatchScore(t *TabRef, needle string) float64 {
	score := 0.0
	title := strings.ToLower(t.Title)
	host := strings.ToLower(t.Hostname)
	if strings.Contains(title, needle) {
		score += 3
		if strings.HasPrefix(title, needle) {
			score += 2
		}
	}
	if strings.Contains(host, needle) {
		score += 2
		if strings.HasPrefix(host, needle) || strings.HasPrefix(host, "www."+needle) {
			score++
		}
	}
	if strings.Contains(strings.ToLower(t.URL), needle) {
		score++
	}
	if score > 0 && t.Active {
		score += 0.5
	}
	return score
}

// matchTabs returns the best matching tabs, most recent first on ties.
func matchTabs(tabs []TabRef, needle string) []*TabRef {
	needle = strings.ToLower(strings.TrimSpace(needle))
	if needle == "" {
		return nil
	}
	type scored struct {
		tab   *TabRef
		score float64
	}
	var hits []scored
	for i := range tabs {
		if s := tabMatchScore(&tabs[i], needle); s > 0 {
			hits = append(hits, scored{&tabs[i], s})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		if hits[i].tab.LastAccessed != hits[j].tab.LastAccessed {
			return hits[i].tab.LastAccessed > hits[j].tab.LastAccessed
		}
		return hits[i].tab.TabID < hits[j].tab.TabID
	})
	if len(hits) > maxTabSuggestions {
		hits = hits[:maxTabSuggestions]
	}
	out := make([]*TabRef, len(hits))
	for i, h := range hits {
		out[i] = h.tab
	}
	return out
}
