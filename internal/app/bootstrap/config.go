// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for Tilestock.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: TILESTOCK_MONGO_URI, TILESTOCK_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "tilestock", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "tilestock-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	// Base URL for OAuth callbacks
	{Name: "base_url", Default: "http://localhost:3000", Desc: "Base URL for OAuth callbacks and absolute links"},

	// Google OAuth configuration
	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth2 client secret"},

	// Default admin bootstrap (seeded only when the users collection is empty)
	{Name: "default_admin_username", Default: "admin", Desc: "Username of the seeded admin account"},
	{Name: "default_admin_password", Default: "admin123", Desc: "Password of the seeded admin account (change after first login)"},

	// Offline cache configuration
	{Name: "offline_cache_name", Default: "tiles-stock-v1", Desc: "Offline cache store name/version"},
	{Name: "offline_cache_dir", Default: "data/offline-cache", Desc: "Directory holding the offline cache stores"},
	{Name: "offline_assets", Default: "", Desc: "Comma-separated asset paths cached at startup (blank means built-in defaults)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "TILESTOCK", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),

		BaseURL: appValues.String("base_url"),

		GoogleClientID:     appValues.String("google_client_id"),
		GoogleClientSecret: appValues.String("google_client_secret"),

		DefaultAdminUsername: appValues.String("default_admin_username"),
		DefaultAdminPassword: appValues.String("default_admin_password"),

		OfflineCacheName: appValues.String("offline_cache_name"),
		OfflineCacheDir:  appValues.String("offline_cache_dir"),
		OfflineAssets:    splitAssets(appValues.String("offline_assets")),
	}

	return coreCfg, appCfg, nil
}

// splitAssets parses the comma-separated offline_assets value. A blank value
// yields nil so the offline layer falls back to its built-in list.
func splitAssets(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var assets []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			assets = append(assets, p)
		}
	}
	return assets
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// Tilestock validates the MongoDB URI format to catch configuration errors
// early, before attempting to connect, and rejects a half-configured Google
// sign-in to avoid silently shipping a broken login button.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if (appCfg.GoogleClientID == "") != (appCfg.GoogleClientSecret == "") {
		return fmt.Errorf("google_client_id and google_client_secret must be set together")
	}

	if appCfg.OfflineCacheName == "" {
		return fmt.Errorf("offline_cache_name must not be blank")
	}

	return nil
}
