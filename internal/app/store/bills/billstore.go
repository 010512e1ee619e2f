package billstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/tilestock/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var errNoItems = errors.New("a bill must contain at least one item")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("bills")}
}

// GetByID loads a bill by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Bill, error) {
	var b models.Bill
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&b); err != nil {
		return nil, err
	}
	return &b, nil
}

// Create recomputes the bill total from its items and inserts it. The
// stored total is always derived server side, never trusted from the form.
func (s *Store) Create(ctx context.Context, b models.Bill) (models.Bill, error) {
	if len(b.Items) == 0 {
		return models.Bill{}, errNoItems
	}

	b.ID = primitive.NewObjectID()
	if b.Date.IsZero() {
		b.Date = time.Now()
	}
	for i := range b.Items {
		b.Items[i].Total = b.Items[i].Price * float64(b.Items[i].Quantity)
	}
	b.Total = b.ComputeTotal()

	if _, err := s.c.InsertOne(ctx, b); err != nil {
		return models.Bill{}, err
	}
	return b, nil
}

// ListAll returns every bill, newest first.
func (s *Store) ListAll(ctx context.Context) ([]models.Bill, error) {
	return s.find(ctx, bson.M{})
}

// ListByDay returns the bills dated within the calendar day containing t,
// newest first, in t's location.
func (s *Store) ListByDay(ctx context.Context, t time.Time) ([]models.Bill, error) {
	start, end := dayBounds(t)
	return s.find(ctx, bson.M{"date": bson.M{"$gte": start, "$lt": end}})
}

// TotalForDay sums the grand totals of the bills dated within the calendar
// day containing t.
func (s *Store) TotalForDay(ctx context.Context, t time.Time) (float64, error) {
	start, end := dayBounds(t)
	cur, err := s.c.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"date": bson.M{"$gte": start, "$lt": end}}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$total"}}}},
	})
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		Total float64 `bson:"total"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

// Update replaces a bill's customer fields, items and adjustments, and
// recomputes line and grand totals.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, b models.Bill) error {
	if len(b.Items) == 0 {
		return errNoItems
	}
	for i := range b.Items {
		b.Items[i].Total = b.Items[i].Price * float64(b.Items[i].Quantity)
	}
	set := bson.M{
		"customer_name":   b.CustomerName,
		"customer_mobile": b.CustomerMobile,
		"items":           b.Items,
		"gst":             b.GST,
		"discount":        b.Discount,
		"total":           b.ComputeTotal(),
	}
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	return err
}

// Delete removes a bill by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Bill, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var bills []models.Bill
	if err := cur.All(ctx, &bills); err != nil {
		return nil, err
	}
	return bills, nil
}

func dayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
