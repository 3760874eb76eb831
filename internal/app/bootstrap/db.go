// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	auditstore "github.com/dalemusser/arenahub/internal/app/store/audit"
	"github.com/dalemusser/arenahub/internal/app/store/oauthstate"
	"github.com/dalemusser/arenahub/internal/app/system/indexes"
	"github.com/dalemusser/arenahub/internal/app/system/timeouts"
	"github.com/dalemusser/arenahub/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB establishes the MongoDB connection used by the whole app.
//
// The client is pooled and shared; handlers receive the *mongo.Database
// through DBDeps. A ping with a short timeout verifies the deployment is
// reachable before startup continues, so a bad URI fails fast instead of
// surfacing as request errors later.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		logger.Error("MongoDB connect failed", zap.Error(err))
		return DBDeps{}, fmt.Errorf("connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		logger.Error("MongoDB ping failed", zap.Error(err))
		return DBDeps{}, fmt.Errorf("ping MongoDB: %w", err)
	}

	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool_size", appCfg.MongoMaxPoolSize))

	return DBDeps{
		ArenaHubMongoClient:   client,
		ArenaHubMongoDatabase: client.Database(appCfg.MongoDatabase),
	}, nil
}

// EnsureSchema creates the collections, JSON-Schema validators, and
// indexes the queries and uniqueness rules rely on. All of it is
// idempotent, so this runs on every startup.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.ArenaHubMongoDatabase
	if err := validators.EnsureAll(ctx, db); err != nil {
		logger.Error("collection validator setup failed", zap.Error(err))
		return fmt.Errorf("ensure validators: %w", err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		logger.Error("index creation failed", zap.Error(err))
		return fmt.Errorf("ensure indexes: %w", err)
	}
	if err := auditstore.New(db).EnsureIndexes(ctx); err != nil {
		logger.Error("audit index creation failed", zap.Error(err))
		return fmt.Errorf("ensure audit indexes: %w", err)
	}
	if err := oauthstate.New(db).EnsureIndexes(ctx); err != nil {
		logger.Error("oauth state index creation failed", zap.Error(err))
		return fmt.Errorf("ensure oauth state indexes: %w", err)
	}
	logger.Info("MongoDB schema ensured")
	return nil
}
