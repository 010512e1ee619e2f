// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"

	authgooglefeature "github.com/dalemusser/tilestock/internal/app/features/authgoogle"
	billingfeature "github.com/dalemusser/tilestock/internal/app/features/billing"
	dashboardfeature "github.com/dalemusser/tilestock/internal/app/features/dashboard"
	errorsfeature "github.com/dalemusser/tilestock/internal/app/features/errors"
	healthfeature "github.com/dalemusser/tilestock/internal/app/features/health"
	invoicesfeature "github.com/dalemusser/tilestock/internal/app/features/invoices"
	loginfeature "github.com/dalemusser/tilestock/internal/app/features/login"
	logoutfeature "github.com/dalemusser/tilestock/internal/app/features/logout"
	pwafeature "github.com/dalemusser/tilestock/internal/app/features/pwa"
	reportsfeature "github.com/dalemusser/tilestock/internal/app/features/reports"
	tilesfeature "github.com/dalemusser/tilestock/internal/app/features/tiles"
	usersfeature "github.com/dalemusser/tilestock/internal/app/features/users"
	billstore "github.com/dalemusser/tilestock/internal/app/store/bills"
	"github.com/dalemusser/tilestock/internal/app/store/oauthstate"
	tilestore "github.com/dalemusser/tilestock/internal/app/store/tiles"
	userstore "github.com/dalemusser/tilestock/internal/app/store/users"
	"github.com/dalemusser/tilestock/internal/app/system/auth"
	"github.com/dalemusser/tilestock/internal/offline"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed.
//
// Tilestock initializes the template engine, applies session middleware,
// mounts feature routers for every application area, and finally wraps the
// whole router in the offline cache layer: the cache is installed from the
// configured asset list before the server accepts traffic, then navigations
// fall back to it when the origin fails and pre-cached assets are served
// without touching the origin at all.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Create the session manager using app config.
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	// Create error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)

	// Stores shared across features.
	users := userstore.New(deps.MongoDatabase)
	tiles := tilestore.New(deps.MongoDatabase)
	bills := billstore.New(deps.MongoDatabase)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	// This makes the current user available to all handlers via auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)

	// Error pages. NotFound is set before any Mount so chi propagates it
	// into the mounted subrouters.
	errorsHandler := errorsfeature.NewHandler()
	r.NotFound(errorsHandler.NotFound)
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Service worker and web app manifest live at root paths.
	pwafeature.Mount(r, pwafeature.NewHandler())

	// Google sign-in (optional; handlers redirect home when not configured)
	googleHandler := authgooglefeature.NewHandler(users, sessionMgr,
		oauthstate.New(deps.MongoDatabase),
		appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, logger)
	r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

	// Login page doubles as the landing page.
	loginHandler := loginfeature.NewHandler(users, sessionMgr, errLog, googleHandler.IsConfigured(), logger)
	r.Mount("/", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	dashboardHandler := dashboardfeature.NewHandler(tiles, sessionMgr, errLog, logger)
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler))

	tilesHandler := tilesfeature.NewHandler(tiles, sessionMgr, errLog, logger)
	r.Mount("/tiles", tilesfeature.Routes(tilesHandler))

	usersHandler := usersfeature.NewHandler(users, sessionMgr, errLog, logger)
	r.Mount("/admin/users", usersfeature.Routes(usersHandler))

	billingHandler := billingfeature.NewHandler(tiles, bills, sessionMgr, errLog, logger)
	r.Mount("/billing", billingfeature.Routes(billingHandler))

	invoicesHandler := invoicesfeature.NewHandler(bills, sessionMgr, errLog, logger)
	r.Mount("/invoice", invoicesfeature.InvoiceRoutes(invoicesHandler))
	r.Mount("/history", invoicesfeature.HistoryRoutes(invoicesHandler))

	reportsHandler := reportsfeature.NewHandler(tiles, bills, errLog, logger)
	r.Mount("/sales_report", reportsfeature.SalesReportRoutes(reportsHandler))
	r.Mount("/stock_availability_pdf", reportsfeature.StockPDFRoutes(reportsHandler))

	// Offline cache layer wrapping the whole router. Install runs against the
	// router itself, so the cached entries are exactly what the app would have
	// served; a failed install is logged and the app starts anyway.
	manager, err := offline.NewManager(offline.Config{
		CacheName: appCfg.OfflineCacheName,
		Assets:    appCfg.OfflineAssets,
		Dir:       appCfg.OfflineCacheDir,
	}, offline.OriginFetcher{Handler: r}, logger)
	if err != nil {
		logger.Error("offline cache init failed", zap.Error(err))
		return nil, err
	}
	manager.Install(context.Background())

	return manager.Handler(r), nil
}
