package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// Normalize / Tokenize
// =============================================================================

func TestTokenize_Punctuation(t *testing.T) {
	assert.Equal(t, []string{"hello", "world"}, Tokenize("Hello, World!"))
}

func TestTokenize_Empty(t *testing.T) {
	assert.Nil(t, Tokenize(""))
	assert.Nil(t, Tokenize("   "))
	assert.Nil(t, Tokenize("!!! --- ???"))
}

func TestTokenize_Diacritics(t *testing.T) {
	assert.Equal(t, []string{"cafe", "creme"}, Tokenize("Café Crème"))
	assert.Equal(t, []string{"resume"}, Tokenize("résumé"))
}

func TestTokenize_NoCamelSplit(t *testing.T) {
	// Case folds before splitting, so camel humps stay together.
	assert.Equal(t, []string{"getusertoken"}, Tokenize("getUserToken"))
}

func TestTokenize_URL(t *testing.T) {
	assert.Equal(t,
		[]string{"github", "com", "golang", "go", "issues", "123"},
		Tokenize("github.com/golang/go/issues/123"))
}

func TestTokenize_Digits(t *testing.T) {
	assert.Equal(t, []string{"ipv6", "2024", "q3"}, Tokenize("IPv6 · 2024/Q3"))
}

func TestTokenize_SingleChars(t *testing.T) {
	// No minimum length: single characters are tokens.
	assert.Equal(t, []string{"a", "b"}, Tokenize("a b"))
}

func TestTokenize_NonLatinDropped(t *testing.T) {
	assert.Equal(t, []string{"tokyo"}, Tokenize("東京 Tokyo"))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"  Mixed   CASE  ", "mixed case"},
		{"a__b--c", "a b c"},
		{"Ünïcödé", "unicode"},
		{"...leading", "leading"},
		{"trailing!!!", "trailing"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), tt.in)
	}
}

func TestUniqueTokens(t *testing.T) {
	assert.Equal(t, []string{"go", "docs"}, UniqueTokens([]string{"go", "docs", "go", "docs"}))
	assert.Nil(t, UniqueTokens(nil))
}

// =============================================================================
// IsFuzzyMatch
// =============================================================================

func TestIsFuzzyMatch(t *testing.T) {
	tests := []struct {
		candidate, token string
		want             bool
	}{
		{"github", "github", true},   // identical
		{"github", "gihub", true},    // deletion
		{"github", "gitthub", true},  // insertion
		{"github", "gothub", true},   // substitution
		{"github", "githu", true},    // trailing tail
		{"github", "githubx", true},  // trailing tail on token
		{"github", "gotgub", false},  // two substitutions
		{"github", "gith", false},    // length diff 2
		{"github", "xgithubx", false},
		{"ab", "ba", false},
		{"a", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsFuzzyMatch(tt.candidate, tt.token), "%q vs %q", tt.candidate, tt.token)
	}
}

// =============================================================================
// URL helpers
// =============================================================================

func TestParseURL(t *testing.T) {
	p := ParseURL("https://Docs.Example.com:8443/a/b?q=1")
	assert.Equal(t, "https://docs.example.com:8443", p.Origin)
	assert.Equal(t, "docs.example.com", p.Hostname)
	assert.Equal(t, "/a/b", p.Path)

	p = ParseURL("https://example.com")
	assert.Equal(t, "/", p.Path)
}

func TestParseURL_Malformed(t *testing.T) {
	assert.Equal(t, URLParts{}, ParseURL(""))
	assert.Equal(t, URLParts{}, ParseURL("not a url"))
	assert.Equal(t, URLParts{}, ParseURL("http://[::1"))
	assert.Equal(t, URLParts{}, ParseURL("about:blank"))
}

func TestStripScheme(t *testing.T) {
	assert.Equal(t, "github.com/x", stripScheme("https://github.com/x"))
	assert.Equal(t, "plain", stripScheme("plain"))
}

func TestSplitFilename(t *testing.T) {
	tests := []struct {
		in, base, ext string
	}{
		{"report.PDF", "report.PDF", "pdf"},
		{"/home/u/Downloads/archive.tar.gz", "archive.tar.gz", "gz"},
		{`C:\Users\u\setup.exe`, "setup.exe", "exe"},
		{"README", "README", ""},
		{".bashrc", ".bashrc", ""},
		{"", "", ""},
	}
	for _, tt := range tests {
		base, ext := splitFilename(tt.in)
		assert.Equal(t, tt.base, base, tt.in)
		assert.Equal(t, tt.ext, ext, tt.in)
	}
}
