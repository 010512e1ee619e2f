// internal/offline/manager.go
package offline

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Manager owns one named cache store and applies the serving policies.
// Construct it once at startup; it holds no per-request state.
type Manager struct {
	cfg     Config
	store   *Store
	fetcher Fetcher
	log     *zap.Logger
}

// NewManager opens the named store and returns a manager bound to the given
// fetcher (the "network"). Zero-value Config fields get the shipped defaults.
func NewManager(cfg Config, fetcher Fetcher, logger *zap.Logger) (*Manager, error) {
	cfg.applyDefaults()
	store, err := OpenStore(cfg.Dir, cfg.CacheName)
	if err != nil {
		return nil, err
	}
	return &Manager{cfg: cfg, store: store, fetcher: fetcher, log: logger}, nil
}

// Store exposes the underlying store, mainly for tests and tooling.
func (m *Manager) Store() *Store { return m.store }

// Install populates the store from the asset list as one all-or-nothing
// batch: every asset must fetch with a 2xx status or nothing is stored.
// A failed batch is recovered here with a single warn log and never blocks
// startup; serving simply proceeds with whatever the store already holds.
// Missing optional assets are an accepted steady state, not a fault.
func (m *Manager) Install(ctx context.Context) {
	if err := m.installAssets(ctx); err != nil {
		m.log.Warn("offline cache install failed; continuing without pre-cache",
			zap.String("cache", m.cfg.CacheName),
			zap.Error(err))
		return
	}
	m.log.Info("offline cache installed",
		zap.String("cache", m.cfg.CacheName),
		zap.Int("assets", len(m.cfg.Assets)))
}

func (m *Manager) installAssets(ctx context.Context) error {
	type staged struct {
		url   string
		entry *Entry
	}
	batch := make([]staged, 0, len(m.cfg.Assets))

	for _, asset := range m.cfg.Assets {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, asset, nil)
		if err != nil {
			return fmt.Errorf("bad asset url %q: %w", asset, err)
		}
		entry, err := m.fetcher.Fetch(ctx, req)
		if err != nil {
			return fmt.Errorf("fetch %q: %w", asset, err)
		}
		if entry.Status < 200 || entry.Status > 299 {
			return fmt.Errorf("fetch %q: status %d", asset, entry.Status)
		}
		entry.StoredAt = time.Now().UTC()
		batch = append(batch, staged{url: asset, entry: entry})
	}

	for _, st := range batch {
		if err := m.store.put(http.MethodGet, st.url, st.entry); err != nil {
			return err
		}
	}
	return nil
}

// Handler wraps next with the two routing policies. Only GET requests ever
// touch the cache; everything else goes straight to next.
func (m *Manager) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}
		if isNavigation(r) {
			m.serveNavigation(w, r)
			return
		}
		m.serveAsset(w, r, next)
	})
}

// serveNavigation is network-first: freshest content when the origin is up,
// the cached copy only when it isn't. A miss on both sides propagates the
// origin's failure unchanged; no synthetic offline page exists.
func (m *Manager) serveNavigation(w http.ResponseWriter, r *http.Request) {
	entry, err := m.fetcher.Fetch(r.Context(), r)
	if err == nil && !degraded(entry.Status) {
		writeEntry(w, entry)
		return
	}

	cached, ok, merr := m.store.Match(r.Method, r.URL.RequestURI())
	if merr != nil {
		m.log.Error("offline cache lookup failed", zap.String("url", r.URL.RequestURI()), zap.Error(merr))
	}
	if ok {
		m.log.Info("serving navigation from offline cache",
			zap.String("url", r.URL.RequestURI()))
		writeEntry(w, cached)
		return
	}

	if err != nil {
		m.log.Error("navigation fetch failed with no cached fallback",
			zap.String("url", r.URL.RequestURI()), zap.Error(err))
		http.Error(w, "service unavailable", http.StatusBadGateway)
		return
	}
	// Degraded origin response and nothing cached: pass it through as-is.
	writeEntry(w, entry)
}

// serveAsset is cache-first. A hit never touches the network and a miss is
// never written back; assets discovered after install stay network-only.
func (m *Manager) serveAsset(w http.ResponseWriter, r *http.Request, next http.Handler) {
	cached, ok, merr := m.store.Match(r.Method, r.URL.RequestURI())
	if merr != nil {
		m.log.Error("offline cache lookup failed", zap.String("url", r.URL.RequestURI()), zap.Error(merr))
	}
	if ok {
		writeEntry(w, cached)
		return
	}
	next.ServeHTTP(w, r)
}

func writeEntry(w http.ResponseWriter, e *Entry) {
	h := w.Header()
	for k, vals := range e.Header {
		for _, v := range vals {
			h.Add(k, v)
		}
	}
	w.WriteHeader(e.Status)
	_, _ = w.Write(e.Body)
}
