package search

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/corey/seek/internal/domain/index"
	"github.com/corey/seek/internal/ports"
)

// Ranking constants. Values are tuned for parity and must not drift.
const (
	MatchedTokenBonus   = 4.5
	FullTokenMatchBonus = 5.5
	MissingTokenPenalty = 6.0

	ShortQueryTabBoost = 2.5
	shortQueryMaxLen   = 3

	downloadCompleteBoost     = 0.6
	downloadInProgressPenalty = -0.4
	downloadFailedPenalty     = -0.7
)

// DefaultLimit caps every result list except history-scoped ones.
const DefaultLimit = 12

// baseTypeScore is the per-kind prior added to every item score.
var baseTypeScore = map[ports.Kind]float64{
	ports.KindTab:      6,
	ports.KindTopSite:  5,
	ports.KindBookmark: 4,
	ports.KindDownload: 3,
	ports.KindHistory:  2,
}

// downloadStatePriority orders downloads by state; unknown states sort last.
var downloadStatePriority = map[string]int{
	index.StateComplete:    0,
	index.StateInProgress:  1,
	index.StateInterrupted: 2,
	index.StatePaused:      3,
	index.StateCancelled:   4,
}

func statePriority(state string) int {
	if p, ok := downloadStatePriority[state]; ok {
		return p
	}
	return len(downloadStatePriority)
}

// recencyBoost rewards items touched recently. Zero without a timestamp.
func recencyBoost(it *ports.Item, now time.Time) float64 {
	ts := it.Timestamp()
	if ts <= 0 {
		return 0
	}
	hours := float64(now.UnixMilli()-ts) / float64(time.Hour/time.Millisecond)
	switch {
	case hours < 1:
		return 2.0
	case hours < 24:
		return 1.2
	case hours < 168:
		return 0.4
	default:
		return 0.1
	}
}

// coverageAdjustment rewards items matching every query token and penalizes
// each token an item missed.
func coverageAdjustment(matched, total int) float64 {
	switch {
	case total == 0:
		return 0
	case matched >= total:
		return FullTokenMatchBonus + float64(total)*MatchedTokenBonus
	case matched > 0:
		return float64(matched)*MatchedTokenBonus - float64(total-matched)*MissingTokenPenalty
	default:
		return -float64(total) * MissingTokenPenalty
	}
}

func downloadStateAdjustment(it *ports.Item) float64 {
	if it.Download == nil {
		return 0
	}
	switch it.Download.State {
	case index.StateComplete:
		return downloadCompleteBoost
	case index.StateInProgress:
		return downloadInProgressPenalty
	case index.StateInterrupted, index.StateCancelled:
		return downloadFailedPenalty
	}
	return 0
}

// blendedScore is the query-independent part of an item's score.
func blendedScore(it *ports.Item, now time.Time) float64 {
	return baseTypeScore[it.Kind] + recencyBoost(it, now)
}

// finalScore blends the lexical evidence with the item priors.
func finalScore(it *ports.Item, c *candidate, totalTokens, queryLen int, now time.Time) float64 {
	score := c.lexical + blendedScore(it, now) + coverageAdjustment(c.matched, totalTokens)
	if queryLen <= shortQueryMaxLen && it.Kind == ports.KindTab {
		score += ShortQueryTabBoost
	}
	return score + downloadStateAdjustment(it)
}

// rankScored converts candidates into scored results.
func rankScored(ep *index.Epoch, cands []*candidate, q Query, now time.Time) []ports.Result {
	out := make([]ports.Result, 0, len(cands))
	total := len(q.Tokens)
	qlen := q.compactLen()
	for _, c := range cands {
		it := ep.Item(c.id)
		r := toResult(it)
		r.Score = finalScore(it, c, total, qlen, now)
		r.MatchedTokenCount = c.matched
		out = append(out, r)
	}
	return out
}

// sorter orders results. Holds a collator, which is not safe for concurrent
// use, so each query builds its own.
type sorter struct {
	col *collate.Collator
}

func newSorter() *sorter {
	return &sorter{col: collate.New(language.English)}
}

func (s *sorter) compareTitles(a, b string) int {
	return s.col.CompareString(a, b)
}

// less is the scored tie-break chain:
//  1. commands before everything else
//  2. the command sentinel before finite scores
//  3. among commands, insertion rank
//  4. higher score
//  5. two downloads: state priority, then newer
//  6. two history entries: newer visit
//  7. higher kind prior
//  8. title, locale order
func (s *sorter) less(a, b *ports.Result) bool {
	if ac, bc := a.IsCommand(), b.IsCommand(); ac != bc {
		return ac
	}
	if ai, bi := math.IsInf(a.Score, 1), math.IsInf(b.Score, 1); ai != bi {
		return ai
	}
	if a.IsCommand() && b.IsCommand() && a.CommandRank() != b.CommandRank() {
		return a.CommandRank() < b.CommandRank()
	}
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.Download != nil && b.Download != nil {
		if pa, pb := statePriority(a.Download.State), statePriority(b.Download.State); pa != pb {
			return pa < pb
		}
		if ta, tb := downloadTime(a.Download), downloadTime(b.Download); ta != tb {
			return ta > tb
		}
	}
	if a.History != nil && b.History != nil && a.History.LastVisitTime != b.History.LastVisitTime {
		return a.History.LastVisitTime > b.History.LastVisitTime
	}
	if ka, kb := baseTypeScore[a.Kind], baseTypeScore[b.Kind]; ka != kb {
		return ka > kb
	}
	if c := s.compareTitles(a.Title, b.Title); c != 0 {
		return c < 0
	}
	return a.ID < b.ID
}

func (s *sorter) sortScored(results []ports.Result) {
	sort.SliceStable(results, func(i, j int) bool {
		return s.less(&results[i], &results[j])
	})
}

func downloadTime(d *ports.DownloadFields) int64 {
	if d.EndTime > 0 {
		return d.EndTime
	}
	return d.StartTime
}

// defaultListing orders the items of one kind without lexical scoring.
// Results carry no score.
func (s *sorter) defaultListing(items []*ports.Item, kind ports.Kind, now time.Time) []ports.Result {
	sorted := make([]*ports.Item, len(items))
	copy(sorted, items)

	var less func(a, b *ports.Item) bool
	switch kind {
	case ports.KindTab:
		less = func(a, b *ports.Item) bool {
			if a.Tab.Active != b.Tab.Active {
				return a.Tab.Active
			}
			return a.Tab.LastAccessed > b.Tab.LastAccessed
		}
	case ports.KindHistory:
		less = func(a, b *ports.Item) bool {
			if a.History.LastVisitTime != b.History.LastVisitTime {
				return a.History.LastVisitTime > b.History.LastVisitTime
			}
			if ba, bb := blendedScore(a, now), blendedScore(b, now); ba != bb {
				return ba > bb
			}
			return s.compareTitles(a.Title, b.Title) < 0
		}
	case ports.KindDownload:
		less = func(a, b *ports.Item) bool {
			if pa, pb := statePriority(a.Download.State), statePriority(b.Download.State); pa != pb {
				return pa < pb
			}
			return a.DownloadTime() > b.DownloadTime()
		}
	case ports.KindTopSite:
		less = func(a, b *ports.Item) bool {
			return a.TopSite.VisitCount > b.TopSite.VisitCount
		}
	default:
		less = func(a, b *ports.Item) bool {
			if ba, bb := blendedScore(a, now), blendedScore(b, now); ba != bb {
				return ba > bb
			}
			return s.compareTitles(a.Title, b.Title) < 0
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })

	out := make([]ports.Result, 0, len(sorted))
	for _, it := range sorted {
		out = append(out, toResult(it))
	}
	return out
}

// toResult copies an item into a caller-owned result. Payloads are copied so
// a response never aliases epoch memory.
func toResult(it *ports.Item) ports.Result {
	r := ports.Result{
		ID:         it.ID,
		Kind:       it.Kind,
		Title:      it.Title,
		URL:        it.URL,
		FaviconURL: it.FaviconURL,
	}
	if r.Title == "" {
		r.Title = it.URL
	}
	r.SetLocation(it.Hostname, it.Path)

	switch {
	case it.Tab != nil:
		tab := *it.Tab
		r.Tab = &tab
		r.Description = it.Hostname
	case it.Bookmark != nil:
		bm := *it.Bookmark
		bm.FolderPath = append([]string(nil), it.Bookmark.FolderPath...)
		r.Bookmark = &bm
		r.Description = strings.Join(bm.FolderPath, " / ")
	case it.History != nil:
		h := *it.History
		r.History = &h
		r.Description = it.Hostname
	case it.Download != nil:
		d := *it.Download
		r.Download = &d
		r.Description = describeDownload(&d)
	case it.TopSite != nil:
		ts := *it.TopSite
		r.TopSite = &ts
		r.Description = it.Hostname
	}
	return r
}

func describeDownload(d *ports.DownloadFields) string {
	state := strings.ReplaceAll(d.State, "_", " ")
	switch {
	case d.TotalBytes > 0 && d.State != index.StateComplete:
		return fmt.Sprintf("%s · %s of %s", state, formatBytes(d.BytesReceived), formatBytes(d.TotalBytes))
	case d.TotalBytes > 0:
		return fmt.Sprintf("%s · %s", state, formatBytes(d.TotalBytes))
	}
	return state
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
