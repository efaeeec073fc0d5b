package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/seek/internal/ports"
)

// =============================================================================
// Snapshot files: JSON + YAML decoding, state normalization, static provider
// =============================================================================

const jsonSnapshot = `{
  "tabs": [{"tab_id": 1, "window_id": 1, "title": "GitHub", "url": "https://github.com", "active": true}],
  "bookmarks": [{"title": "Go", "url": "https://go.dev", "folder_path": ["Bar", "Dev"]}],
  "history": [{"title": "Issues", "url": "https://github.com/issues", "last_visit_time": 1700000000000}],
  "downloads": [{"url": "https://x.io/a.zip", "filename": "a.zip", "state": "Completed"}]
}`

const yamlSnapshot = `
tabs:
  - tab_id: 7
    window_id: 2
    title: Docs
    url: https://docs.example.com
    audible: true
top_sites:
  - title: News
    url: https://news.example.com
    visit_count: 12
downloads:
  - url: https://x.io/b.iso
    filename: b.iso
    state: in-progress
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadJSON(t *testing.T) {
	corpus, err := Load(writeFile(t, "snap.json", jsonSnapshot))
	require.NoError(t, err)

	require.Len(t, corpus.Tabs, 1)
	assert.True(t, corpus.Tabs[0].Active)
	assert.Equal(t, []string{"Bar", "Dev"}, corpus.Bookmarks[0].FolderPath)
	assert.Equal(t, int64(1700000000000), corpus.History[0].LastVisitTime)
	assert.Equal(t, "complete", corpus.Downloads[0].State)
}

func TestLoadYAML(t *testing.T) {
	corpus, err := Load(writeFile(t, "snap.yaml", yamlSnapshot))
	require.NoError(t, err)

	require.Len(t, corpus.Tabs, 1)
	assert.Equal(t, int64(7), corpus.Tabs[0].TabID)
	assert.True(t, corpus.Tabs[0].Audible)
	require.Len(t, corpus.TopSites, 1)
	assert.Equal(t, 12, corpus.TopSites[0].VisitCount)
	assert.Equal(t, "in_progress", corpus.Downloads[0].State)
}

func TestLoadEmptyYAML(t *testing.T) {
	corpus, err := Load(writeFile(t, "empty.yml", ""))
	require.NoError(t, err)
	assert.Empty(t, corpus.Tabs)
}

func TestUnknownFieldRejected(t *testing.T) {
	_, err := Decode([]byte(`{"tabz": []}`), ".json")
	assert.Error(t, err)

	_, err = Decode([]byte("tabz: []\n"), ".yaml")
	assert.Error(t, err)
}

func TestUnsupportedFormat(t *testing.T) {
	_, err := Decode([]byte("x"), ".toml")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestStaticProvider(t *testing.T) {
	corpus := &ports.Corpus{
		History: []ports.HistoryRecord{{Title: "a"}, {Title: "b"}, {Title: "c"}},
	}
	p := Static{Corpus: corpus}

	h, err := p.History(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, h, 2)

	tabs, err := Static{}.Tabs(context.Background())
	require.NoError(t, err)
	assert.Nil(t, tabs)
}
