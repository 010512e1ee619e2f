// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/tilestock/internal/app/store/oauthstate"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// EnsureSchema creates the indexes the stores rely on. Index creation is
// idempotent; Mongo ignores an existing index with the same spec.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	_, err := db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("idx_users_username"),
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("bills").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "date", Value: -1}},
		Options: options.Index().SetName("idx_bills_date"),
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("tiles").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "brand", Value: 1}, {Key: "size", Value: 1}},
		Options: options.Index().SetName("idx_tiles_brand_size"),
	})
	if err != nil {
		return err
	}

	if err := oauthstate.New(db).EnsureIndexes(ctx); err != nil {
		return err
	}

	logger.Info("database schema ensured")
	return nil
}
