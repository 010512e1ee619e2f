// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration; the core handles ports,
// TLS, log levels and the like.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: tilestock-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Base URL for OAuth callbacks and absolute links
	BaseURL string // e.g., "https://tiles.example.com" or "http://localhost:3000"

	// Google OAuth configuration (sign-in disabled when either is blank)
	GoogleClientID     string
	GoogleClientSecret string

	// Default admin seeded when the users collection is empty
	DefaultAdminUsername string
	DefaultAdminPassword string

	// Offline cache configuration
	OfflineCacheName string   // store version name; changing it starts a fresh store
	OfflineCacheDir  string   // filesystem root for the named stores
	OfflineAssets    []string // install-time asset paths (empty means built-in defaults)
}
