package authgoogle_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/tilestock/internal/app/features/authgoogle"
	"github.com/dalemusser/tilestock/internal/app/store/oauthstate"
	userstore "github.com/dalemusser/tilestock/internal/app/store/users"
	"github.com/dalemusser/tilestock/internal/app/system/auth"
	"github.com/dalemusser/tilestock/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T, clientID, clientSecret string) *authgoogle.Handler {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	sessionMgr, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}

	return authgoogle.NewHandler(userstore.New(db), sessionMgr, oauthstate.New(db), clientID, clientSecret, "http://localhost:8080", logger)
}

func TestServeLogin_NotConfigured(t *testing.T) {
	handler := newTestHandler(t, "", "")

	req := httptest.NewRequest("GET", "/auth/google", nil)
	rec := httptest.NewRecorder()
	handler.ServeLogin(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if location := rec.Header().Get("Location"); location != "/?error=google_not_configured" {
		t.Errorf("Location: got %q", location)
	}
}

func TestServeLogin_RedirectsToGoogle(t *testing.T) {
	handler := newTestHandler(t, "client-id", "client-secret")

	req := httptest.NewRequest("GET", "/auth/google", nil)
	rec := httptest.NewRecorder()
	handler.ServeLogin(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("expected status %d, got %d", http.StatusTemporaryRedirect, rec.Code)
	}

	location := rec.Header().Get("Location")
	if !strings.HasPrefix(location, "https://accounts.google.com/") {
		t.Errorf("expected redirect to Google, got %q", location)
	}
	if !strings.Contains(location, "state=") {
		t.Error("expected a state parameter in the consent URL")
	}
}

func TestServeCallback_MissingState(t *testing.T) {
	handler := newTestHandler(t, "client-id", "client-secret")

	req := httptest.NewRequest("GET", "/auth/google/callback?code=abc", nil)
	rec := httptest.NewRecorder()
	handler.ServeCallback(rec, req)

	if location := rec.Header().Get("Location"); location != "/?error=invalid_state" {
		t.Errorf("Location: got %q", location)
	}
}

func TestServeCallback_UnknownState(t *testing.T) {
	handler := newTestHandler(t, "client-id", "client-secret")

	req := httptest.NewRequest("GET", "/auth/google/callback?state=bogus&code=abc", nil)
	rec := httptest.NewRecorder()
	handler.ServeCallback(rec, req)

	if location := rec.Header().Get("Location"); location != "/?error=invalid_state" {
		t.Errorf("Location: got %q", location)
	}
}

func TestServeCallback_ProviderError(t *testing.T) {
	handler := newTestHandler(t, "client-id", "client-secret")

	req := httptest.NewRequest("GET", "/auth/google/callback?error=access_denied", nil)
	rec := httptest.NewRecorder()
	handler.ServeCallback(rec, req)

	if location := rec.Header().Get("Location"); location != "/?error=google_denied" {
		t.Errorf("Location: got %q", location)
	}
}
