package tilestore

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/dalemusser/tilestock/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrInsufficientStock is returned when a decrement would take quantity below zero.
	ErrInsufficientStock = errors.New("not enough stock for the requested quantity")
	errBlankBrand        = errors.New("brand is required")
	errBlankSize         = errors.New("size is required")
	errNegativePrice     = errors.New("price cannot be negative")
	errNegativeQuantity  = errors.New("quantity cannot be negative")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("tiles")}
}

// GetByID loads a tile by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Tile, error) {
	var t models.Tile
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns tiles sorted by brand then size. When search is non-empty the
// result is filtered to tiles whose brand or size contains the term,
// case-insensitively.
func (s *Store) List(ctx context.Context, search string) ([]models.Tile, error) {
	filter := bson.M{}
	if term := strings.TrimSpace(search); term != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
		filter = bson.M{"$or": bson.A{
			bson.M{"brand": re},
			bson.M{"size": re},
		}}
	}

	opts := options.Find().SetSort(bson.D{{Key: "brand", Value: 1}, {Key: "size", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var tiles []models.Tile
	if err := cur.All(ctx, &tiles); err != nil {
		return nil, err
	}
	return tiles, nil
}

// Create validates and inserts a new tile.
func (s *Store) Create(ctx context.Context, t models.Tile) (models.Tile, error) {
	if err := validate(&t); err != nil {
		return models.Tile{}, err
	}

	t.ID = primitive.NewObjectID()
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.Tile{}, err
	}
	return t, nil
}

// Update replaces the editable fields of a tile.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, t models.Tile) error {
	if err := validate(&t); err != nil {
		return err
	}

	set := bson.M{
		"brand":      t.Brand,
		"size":       t.Size,
		"buy_price":  t.BuyPrice,
		"price":      t.Price,
		"quantity":   t.Quantity,
		"updated_at": time.Now(),
	}
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	return err
}

// Delete removes a tile by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DecrementQuantity atomically reduces a tile's stock by qty. The filter
// requires quantity >= qty so concurrent sales cannot drive stock negative;
// a non-matching filter reports ErrInsufficientStock.
func (s *Store) DecrementQuantity(ctx context.Context, id primitive.ObjectID, qty int) error {
	if qty <= 0 {
		return errNegativeQuantity
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "quantity": bson.M{"$gte": qty}},
		bson.M{
			"$inc": bson.M{"quantity": -qty},
			"$set": bson.M{"updated_at": time.Now()},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// RestoreQuantity puts qty units back, undoing a decrement when a sale
// cannot be completed.
func (s *Store) RestoreQuantity(ctx context.Context, id primitive.ObjectID, qty int) error {
	if qty <= 0 {
		return errNegativeQuantity
	}
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{"quantity": qty},
			"$set": bson.M{"updated_at": time.Now()},
		})
	return err
}

func validate(t *models.Tile) error {
	t.Brand = strings.TrimSpace(t.Brand)
	t.Size = strings.TrimSpace(t.Size)
	switch {
	case t.Brand == "":
		return errBlankBrand
	case t.Size == "":
		return errBlankSize
	case t.Price < 0:
		return errNegativePrice
	case t.BuyPrice != nil && *t.BuyPrice < 0:
		return errNegativePrice
	case t.Quantity < 0:
		return errNegativeQuantity
	}
	return nil
}
