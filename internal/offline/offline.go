// Package offline keeps a small set of pages and static assets available
// when the origin handler cannot answer.
//
// It is the server-side counterpart of the app's service worker: a named,
// durable response cache populated once at startup from a fixed asset list,
// plus a request-routing layer with two policies. Navigations are
// network-first with a cache fallback; everything else is cache-first with a
// network fallback and no write-on-miss. The cache is read-only after the
// install step.
package offline

import (
	"net/http"
	"strings"
	"time"
)

// Default configuration matching the shipped service worker.
const DefaultCacheName = "tiles-stock-v1"

// DefaultAssets is the install-time asset list. The stylesheet entry may be
// absent in stripped deployments; install treats that as a failed batch and
// the app still starts (see Manager.Install).
var DefaultAssets = []string{
	"/",
	"/static/css/styles.css",
	"/static/js/app.js",
}

// Entry is one stored response: status, headers, and body captured from the
// origin, plus the time it was stored.
type Entry struct {
	Status   int         `json:"status"`
	Header   http.Header `json:"header"`
	Body     []byte      `json:"body"`
	StoredAt time.Time   `json:"stored_at"`
}

// Config carries the immutable values a Manager is built with.
// Both are fixed for the process lifetime once the Manager exists.
type Config struct {
	// CacheName scopes the store. Changing it creates a distinct, unrelated
	// store; entries under the old name become unreachable, not migrated.
	CacheName string

	// Assets is the ordered list of URL paths fetched during install.
	Assets []string

	// Dir is the filesystem root under which named stores live.
	Dir string
}

func (c *Config) applyDefaults() {
	if c.CacheName == "" {
		c.CacheName = DefaultCacheName
	}
	if c.Assets == nil {
		c.Assets = DefaultAssets
	}
}

// isNavigation classifies a request as a page navigation. Browsers label
// navigations with Sec-Fetch-Mode; for clients that don't send it, a GET
// accepting text/html is treated the same way.
func isNavigation(r *http.Request) bool {
	if mode := r.Header.Get("Sec-Fetch-Mode"); mode != "" {
		return mode == "navigate"
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

// degraded reports whether an origin status means the origin could not
// handle the request at all. These are the statuses treated as a failed
// fetch for the navigation fallback; ordinary 4xx/5xx application errors
// are responses, not failures.
func degraded(status int) bool {
	switch status {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}
