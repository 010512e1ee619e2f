package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/dalemusser/tilestock/internal/domain/models"
)

type importConfig struct {
	SQLitePath      string
	MongoURI        string
	MongoDatabase   string
	DefaultPassword string
	BatchID         string
}

type importSummary struct {
	Users   int
	Tiles   int
	Bills   int
	Skipped int
}

// runImport moves every legacy table into Mongo. Documents are upserted by
// legacy row id so repeated runs converge instead of duplicating.
func runImport(ctx context.Context, cfg importConfig, logger *zap.Logger) (importSummary, error) {
	var summary importSummary

	legacy, err := openLegacy(cfg.SQLitePath)
	if err != nil {
		return summary, err
	}
	defer legacy.Close()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return summary, fmt.Errorf("mongo connect: %w", err)
	}
	defer client.Disconnect(ctx)
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return summary, fmt.Errorf("mongo ping: %w", err)
	}
	db := client.Database(cfg.MongoDatabase)

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(cfg.DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return summary, fmt.Errorf("hash default password: %w", err)
	}

	if err := importUsers(ctx, legacy, db, string(passwordHash), cfg.BatchID, logger, &summary); err != nil {
		return summary, err
	}
	if err := importTiles(ctx, legacy, db, cfg.BatchID, logger, &summary); err != nil {
		return summary, err
	}
	if err := importBills(ctx, legacy, db, cfg.BatchID, logger, &summary); err != nil {
		return summary, err
	}
	return summary, nil
}

func importUsers(ctx context.Context, legacy *legacyDB, db *mongo.Database, passwordHash, batchID string, logger *zap.Logger, summary *importSummary) error {
	users, err := legacy.users()
	if err != nil {
		return fmt.Errorf("read legacy users: %w", err)
	}

	coll := db.Collection("users")
	for _, u := range users {
		role := u.Role
		if !models.ValidRole(role) {
			logger.Warn("unknown legacy role, importing as staff",
				zap.String("username", u.Username), zap.String("role", role))
			role = models.RoleStaff
		}

		now := time.Now().UTC()
		doc := bson.M{
			"username":            strings.TrimSpace(u.Username),
			"email":               strings.ToLower(strings.TrimSpace(u.Email.String)),
			"password_hash":       passwordHash,
			"role":                role,
			"is_active":           u.IsActive,
			"must_reset_password": true,
			"created_at":          parseLegacyTime(u.CreatedAt),
			"updated_at":          now,
			"legacy_id":           u.ID,
			"import_batch":        batchID,
		}

		if err := upsertByLegacyID(ctx, coll, u.ID, doc); err != nil {
			logger.Warn("could not import user",
				zap.String("username", u.Username), zap.Error(err))
			summary.Skipped++
			continue
		}
		summary.Users++
	}
	return nil
}

func importTiles(ctx context.Context, legacy *legacyDB, db *mongo.Database, batchID string, logger *zap.Logger, summary *importSummary) error {
	tiles, err := legacy.tiles()
	if err != nil {
		return fmt.Errorf("read legacy tiles: %w", err)
	}

	coll := db.Collection("tiles")
	for _, t := range tiles {
		now := time.Now().UTC()
		doc := bson.M{
			"brand":        strings.TrimSpace(t.Brand),
			"size":         strings.TrimSpace(t.Size),
			"price":        t.Price,
			"quantity":     t.Quantity,
			"created_at":   now,
			"updated_at":   now,
			"legacy_id":    t.ID,
			"import_batch": batchID,
		}
		if t.BuyPrice.Valid {
			doc["buy_price"] = t.BuyPrice.Float64
		}

		if err := upsertByLegacyID(ctx, coll, t.ID, doc); err != nil {
			logger.Warn("could not import tile",
				zap.String("brand", t.Brand), zap.Error(err))
			summary.Skipped++
			continue
		}
		summary.Tiles++
	}
	return nil
}

func importBills(ctx context.Context, legacy *legacyDB, db *mongo.Database, batchID string, logger *zap.Logger, summary *importSummary) error {
	bills, err := legacy.bills()
	if err != nil {
		return fmt.Errorf("read legacy bills: %w", err)
	}
	itemsByBill, err := legacy.billItems()
	if err != nil {
		return fmt.Errorf("read legacy bill items: %w", err)
	}

	coll := db.Collection("bills")
	for _, b := range bills {
		items := make([]bson.M, 0, len(itemsByBill[b.ID]))
		for _, it := range itemsByBill[b.ID] {
			items = append(items, bson.M{
				"tile_name": it.TileName,
				"size":      it.Size,
				"price":     it.Price,
				"quantity":  it.Quantity,
				"total":     it.Total,
			})
		}

		doc := bson.M{
			"customer_name":   strings.TrimSpace(b.CustomerName.String),
			"customer_mobile": strings.TrimSpace(b.CustomerMobile.String),
			"items":           items,
			"gst":             b.GST,
			"discount":        b.Discount,
			"total":           b.Total,
			"date":            parseLegacyTime(b.Date),
			"legacy_id":       b.ID,
			"import_batch":    batchID,
		}

		if err := upsertByLegacyID(ctx, coll, b.ID, doc); err != nil {
			logger.Warn("could not import bill",
				zap.Int64("bill_id", b.ID), zap.Error(err))
			summary.Skipped++
			continue
		}
		summary.Bills++
	}
	return nil
}

func upsertByLegacyID(ctx context.Context, coll *mongo.Collection, legacyID int64, doc bson.M) error {
	_, err := coll.UpdateOne(ctx,
		bson.M{"legacy_id": legacyID},
		bson.M{"$set": doc},
		options.Update().SetUpsert(true))
	return err
}
