package index

import (
	"net/url"
	"path"
	"strings"
)

// URLParts holds the pieces of a URL the engine indexes and displays.
// Every field is empty when the URL does not parse.
type URLParts struct {
	Origin   string
	Hostname string
	Path     string
}

// ParseURL splits raw into origin, hostname and path. Malformed or
// host-less URLs yield empty parts rather than an error.
func ParseURL(raw string) URLParts {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return URLParts{}
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return URLParts{}
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return URLParts{}
	}
	origin := strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host)
	p := u.EscapedPath()
	if p == "" {
		p = "/"
	}
	return URLParts{Origin: origin, Hostname: host, Path: p}
}

// stripScheme drops a leading "scheme://" so URL tokens do not all share "https".
func stripScheme(raw string) string {
	if i := strings.Index(raw, "://"); i >= 0 && i < 16 {
		return raw[i+3:]
	}
	return raw
}

// splitFilename returns the base name and lowercase extension (without the dot).
func splitFilename(filename string) (string, string) {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" {
		return "", ""
	}
	ext := path.Ext(base)
	if ext == "" || ext == base {
		return base, ""
	}
	return base, strings.ToLower(strings.TrimPrefix(ext, "."))
}
