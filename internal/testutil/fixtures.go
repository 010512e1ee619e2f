package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/tilestock/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a user with the given username, role and password.
// Returns the created user with its generated ID.
func (f *Fixtures) CreateUser(ctx context.Context, username, role, password string) models.User {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("hash fixture password: %v", err)
	}

	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		Username:     username,
		Email:        username + "@test.com",
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("insert fixture user: %v", err)
	}
	return u
}

// CreateTile inserts a tile with the given brand, size, price and quantity.
// Returns the created tile with its generated ID.
func (f *Fixtures) CreateTile(ctx context.Context, brand, size string, price float64, quantity int) models.Tile {
	f.t.Helper()

	now := time.Now().UTC()
	tile := models.Tile{
		ID:        primitive.NewObjectID(),
		Brand:     brand,
		Size:      size,
		Price:     price,
		Quantity:  quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("tiles").InsertOne(ctx, tile); err != nil {
		f.t.Fatalf("insert fixture tile: %v", err)
	}
	return tile
}

// CreateBill inserts a bill dated at the given time with a single line item.
// Returns the created bill with its generated ID.
func (f *Fixtures) CreateBill(ctx context.Context, customer string, date time.Time, total float64) models.Bill {
	f.t.Helper()

	bill := models.Bill{
		ID:           primitive.NewObjectID(),
		CustomerName: customer,
		Items: []models.BillItem{{
			TileName: "Fixture Tile",
			Size:     "600x600",
			Price:    total,
			Quantity: 1,
			Total:    total,
		}},
		Total: total,
		Date:  date,
	}
	if _, err := f.db.Collection("bills").InsertOne(ctx, bill); err != nil {
		f.t.Fatalf("insert fixture bill: %v", err)
	}
	return bill
}
