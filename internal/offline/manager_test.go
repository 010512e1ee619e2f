package offline_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/tilestock/internal/offline"
	"go.uber.org/zap"
)

// fakeFetcher serves canned entries by URL and counts calls, so tests can
// assert whether the network was consulted at all.
type fakeFetcher struct {
	entries map[string]*offline.Entry
	errs    map[string]error
	calls   int
}

func (f *fakeFetcher) Fetch(ctx context.Context, r *http.Request) (*offline.Entry, error) {
	f.calls++
	url := r.URL.RequestURI()
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	if e, ok := f.entries[url]; ok {
		cp := *e
		return &cp, nil
	}
	return &offline.Entry{Status: http.StatusNotFound, Header: http.Header{}, Body: []byte("not found")}, nil
}

func okEntry(body string) *offline.Entry {
	return &offline.Entry{
		Status: http.StatusOK,
		Header: http.Header{"Content-Type": []string{"text/html; charset=utf-8"}},
		Body:   []byte(body),
	}
}

func newManager(t *testing.T, f offline.Fetcher, assets []string) *offline.Manager {
	t.Helper()
	mgr, err := offline.NewManager(offline.Config{
		CacheName: "tiles-stock-v1",
		Assets:    assets,
		Dir:       t.TempDir(),
	}, f, zap.NewNop())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return mgr
}

func navRequest(target string) *http.Request {
	req := httptest.NewRequest("GET", target, nil)
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	return req
}

func assetRequest(target string) *http.Request {
	req := httptest.NewRequest("GET", target, nil)
	req.Header.Set("Sec-Fetch-Mode", "no-cors")
	return req
}

func TestInstall_CachesEveryReachableAsset(t *testing.T) {
	f := &fakeFetcher{entries: map[string]*offline.Entry{
		"/":                      okEntry("login page"),
		"/static/css/styles.css": okEntry("body{}"),
	}}
	mgr := newManager(t, f, []string{"/", "/static/css/styles.css"})

	mgr.Install(context.Background())

	for _, url := range []string{"/", "/static/css/styles.css"} {
		entry, ok, err := mgr.Store().Match("GET", url)
		if err != nil {
			t.Fatalf("Match(%q) failed: %v", url, err)
		}
		if !ok {
			t.Fatalf("expected %q to be cached after install", url)
		}
		if entry.StoredAt.IsZero() {
			t.Errorf("expected StoredAt to be set for %q", url)
		}
	}
}

func TestInstall_UnreachableAssetFailsBatchQuietly(t *testing.T) {
	f := &fakeFetcher{
		entries: map[string]*offline.Entry{"/": okEntry("login page")},
		errs:    map[string]error{"/static/css/styles.css": errors.New("connection refused")},
	}
	mgr := newManager(t, f, []string{"/", "/static/css/styles.css"})

	// Must not panic and must not abort startup.
	mgr.Install(context.Background())

	// All-or-nothing: the unreachable asset is absent, and because the batch
	// failed, so is the reachable one.
	if _, ok, _ := mgr.Store().Match("GET", "/static/css/styles.css"); ok {
		t.Error("unreachable asset should not be cached")
	}
	if _, ok, _ := mgr.Store().Match("GET", "/"); ok {
		t.Error("batch should be all-or-nothing; nothing stored on failure")
	}
}

func TestInstall_Non200AssetFailsBatch(t *testing.T) {
	f := &fakeFetcher{entries: map[string]*offline.Entry{
		"/": okEntry("login page"),
		// default for anything else is 404
	}}
	mgr := newManager(t, f, []string{"/", "/missing.css"})

	mgr.Install(context.Background())

	if _, ok, _ := mgr.Store().Match("GET", "/missing.css"); ok {
		t.Error("404 asset should not be cached")
	}
}

func TestNavigation_NetworkFirst(t *testing.T) {
	f := &fakeFetcher{entries: map[string]*offline.Entry{"/": okEntry("stale cached copy")}}
	mgr := newManager(t, f, []string{"/"})
	mgr.Install(context.Background())

	// Change what the network returns after install.
	f.entries["/"] = okEntry("fresh network copy")

	rec := httptest.NewRecorder()
	mgr.Handler(http.NotFoundHandler()).ServeHTTP(rec, navRequest("/"))

	if got := rec.Body.String(); got != "fresh network copy" {
		t.Errorf("body: got %q, want the network response", got)
	}
}

func TestNavigation_NetworkFailureFallsBackToCache(t *testing.T) {
	f := &fakeFetcher{entries: map[string]*offline.Entry{"/": okEntry("cached login page")}}
	mgr := newManager(t, f, []string{"/"})
	mgr.Install(context.Background())

	f.errs = map[string]error{"/": errors.New("origin panic: database down")}

	rec := httptest.NewRecorder()
	mgr.Handler(http.NotFoundHandler()).ServeHTTP(rec, navRequest("/"))

	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Body.String(); got != "cached login page" {
		t.Errorf("body: got %q, want the cached response", got)
	}
}

func TestNavigation_DegradedOriginFallsBackToCache(t *testing.T) {
	f := &fakeFetcher{entries: map[string]*offline.Entry{"/": okEntry("cached login page")}}
	mgr := newManager(t, f, []string{"/"})
	mgr.Install(context.Background())

	f.entries["/"] = &offline.Entry{Status: http.StatusServiceUnavailable, Header: http.Header{}, Body: []byte("down")}

	rec := httptest.NewRecorder()
	mgr.Handler(http.NotFoundHandler()).ServeHTTP(rec, navRequest("/"))

	if got := rec.Body.String(); got != "cached login page" {
		t.Errorf("body: got %q, want the cached response", got)
	}
}

func TestNavigation_NetworkFailureWithoutCacheFails(t *testing.T) {
	f := &fakeFetcher{errs: map[string]error{"/never-cached": errors.New("connection refused")}}
	mgr := newManager(t, f, nil)
	// No install: cache is empty.

	rec := httptest.NewRecorder()
	mgr.Handler(http.NotFoundHandler()).ServeHTTP(rec, navRequest("/never-cached"))

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status: got %d, want %d (no silent fabricated response)", rec.Code, http.StatusBadGateway)
	}
}

func TestAsset_CacheHitSkipsNetwork(t *testing.T) {
	f := &fakeFetcher{entries: map[string]*offline.Entry{
		"/static/css/styles.css": okEntry("body{}"),
	}}
	mgr := newManager(t, f, []string{"/static/css/styles.css"})
	mgr.Install(context.Background())

	installCalls := f.calls
	nextCalls := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalls++
	})

	rec := httptest.NewRecorder()
	mgr.Handler(next).ServeHTTP(rec, assetRequest("/static/css/styles.css"))

	if got := rec.Body.String(); got != "body{}" {
		t.Errorf("body: got %q, want the cached response", got)
	}
	if f.calls != installCalls {
		t.Errorf("fetcher calls: got %d extra, want 0 (cache-first must skip the network)", f.calls-installCalls)
	}
	if nextCalls != 0 {
		t.Errorf("origin calls: got %d, want 0", nextCalls)
	}
}

func TestAsset_CacheMissFallsThroughWithoutWriteBack(t *testing.T) {
	f := &fakeFetcher{}
	mgr := newManager(t, f, nil)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png bytes"))
	})

	rec := httptest.NewRecorder()
	mgr.Handler(next).ServeHTTP(rec, assetRequest("/static/img/logo.png"))

	if got := rec.Body.String(); got != "png bytes" {
		t.Errorf("body: got %q, want the network response", got)
	}
	// No write-on-miss: the entry must still be absent.
	if _, ok, _ := mgr.Store().Match("GET", "/static/img/logo.png"); ok {
		t.Error("cache miss must not populate the store")
	}
}

func TestHandler_NonGETBypassesCache(t *testing.T) {
	f := &fakeFetcher{}
	mgr := newManager(t, f, nil)

	served := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		served = true
		w.WriteHeader(http.StatusSeeOther)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/billing", strings.NewReader("qty=1"))
	mgr.Handler(next).ServeHTTP(rec, req)

	if !served {
		t.Error("POST should go straight to the origin")
	}
	if f.calls != 0 {
		t.Errorf("fetcher calls: got %d, want 0", f.calls)
	}
}

func TestCacheName_ScopesStores(t *testing.T) {
	dir := t.TempDir()
	f := &fakeFetcher{entries: map[string]*offline.Entry{"/": okEntry("v1 copy")}}

	v1, err := offline.NewManager(offline.Config{CacheName: "tiles-stock-v1", Assets: []string{"/"}, Dir: dir}, f, zap.NewNop())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	v1.Install(context.Background())

	// A different version string is a distinct, unrelated store.
	v2, err := offline.NewManager(offline.Config{CacheName: "tiles-stock-v2", Assets: []string{"/"}, Dir: dir}, f, zap.NewNop())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	if _, ok, _ := v2.Store().Match("GET", "/"); ok {
		t.Error("entries under the old cache name must be unreachable from the new one")
	}
}

func TestStore_EntrySurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	f := &fakeFetcher{entries: map[string]*offline.Entry{"/": okEntry("durable copy")}}

	mgr, err := offline.NewManager(offline.Config{Assets: []string{"/"}, Dir: dir}, f, zap.NewNop())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	mgr.Install(context.Background())

	reopened, err := offline.OpenStore(dir, offline.DefaultCacheName)
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	entry, ok, err := reopened.Match("GET", "/")
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if !ok {
		t.Fatal("expected entry to survive a reopen")
	}
	if string(entry.Body) != "durable copy" {
		t.Errorf("body: got %q, want %q", entry.Body, "durable copy")
	}
	if time.Since(entry.StoredAt) > time.Minute {
		t.Error("StoredAt looks wrong after reopen")
	}
}
