// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	userstore "github.com/dalemusser/tilestock/internal/app/store/users"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. Tilestock
// uses it to seed the initial admin account so a fresh install is usable
// without manual database surgery.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	created, err := userstore.New(deps.MongoDatabase).EnsureDefaultAdmin(ctx, appCfg.DefaultAdminUsername, appCfg.DefaultAdminPassword)
	if err != nil {
		return err
	}
	if created {
		logger.Info("seeded default admin account",
			zap.String("username", appCfg.DefaultAdminUsername))
	}
	return nil
}
