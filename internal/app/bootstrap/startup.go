// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"time"

	"github.com/dalemusser/arenahub/internal/app/resources"
	"github.com/dalemusser/arenahub/internal/app/store/oauthstate"
	"github.com/dalemusser/arenahub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// stateCleanup runs for the life of the process; Shutdown stops it.
var stateCleanup *workers.StateCleanup

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It is the
// place to load shared resources (like templates), warm caches, or start
// background workers that depend on config and backends.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()

	stateCleanup = workers.NewStateCleanup(oauthstate.New(deps.ArenaHubMongoDatabase), logger, time.Hour)
	stateCleanup.Start()

	return nil
}
