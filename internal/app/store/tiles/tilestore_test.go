package tilestore_test

import (
	"errors"
	"testing"

	tilestore "github.com/dalemusser/tilestock/internal/app/store/tiles"
	"github.com/dalemusser/tilestock/internal/domain/models"
	"github.com/dalemusser/tilestock/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := tilestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	buy := 38.0
	tile := models.Tile{
		Brand:    "Kajaria",
		Size:     "600x600",
		BuyPrice: &buy,
		Price:    45.50,
		Quantity: 120,
	}

	created, err := store.Create(ctx, tile)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestStore_Create_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := tilestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cases := []struct {
		name string
		tile models.Tile
	}{
		{"blank brand", models.Tile{Size: "600x600", Price: 10}},
		{"blank size", models.Tile{Brand: "Kajaria", Price: 10}},
		{"negative price", models.Tile{Brand: "Kajaria", Size: "600x600", Price: -1}},
		{"negative quantity", models.Tile{Brand: "Kajaria", Size: "600x600", Price: 10, Quantity: -5}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := store.Create(ctx, tc.tile); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestStore_List_Search(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := tilestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateTile(ctx, "Kajaria", "600x600", 45, 100)
	fixtures.CreateTile(ctx, "Somany", "300x300", 22, 80)
	fixtures.CreateTile(ctx, "Johnson", "600x1200", 75, 40)

	all, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 tiles, got %d", len(all))
	}

	// Brand match is case-insensitive.
	byBrand, err := store.List(ctx, "kajaria")
	if err != nil {
		t.Fatalf("List with search failed: %v", err)
	}
	if len(byBrand) != 1 || byBrand[0].Brand != "Kajaria" {
		t.Errorf("brand search returned %+v", byBrand)
	}

	// A size fragment matches too.
	bySize, err := store.List(ctx, "1200")
	if err != nil {
		t.Fatalf("List with size search failed: %v", err)
	}
	if len(bySize) != 1 || bySize[0].Brand != "Johnson" {
		t.Errorf("size search returned %+v", bySize)
	}
}

func TestStore_DecrementQuantity(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := tilestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tile := fixtures.CreateTile(ctx, "Kajaria", "600x600", 45, 10)

	if err := store.DecrementQuantity(ctx, tile.ID, 4); err != nil {
		t.Fatalf("DecrementQuantity failed: %v", err)
	}
	got, err := store.GetByID(ctx, tile.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Quantity != 6 {
		t.Errorf("expected quantity 6, got %d", got.Quantity)
	}

	// Asking for more than remains must fail and leave the count alone.
	err = store.DecrementQuantity(ctx, tile.ID, 7)
	if !errors.Is(err, tilestore.ErrInsufficientStock) {
		t.Errorf("expected ErrInsufficientStock, got %v", err)
	}
	got, _ = store.GetByID(ctx, tile.ID)
	if got.Quantity != 6 {
		t.Errorf("failed decrement must not change quantity, got %d", got.Quantity)
	}

	// Exact depletion to zero is allowed.
	if err := store.DecrementQuantity(ctx, tile.ID, 6); err != nil {
		t.Fatalf("exact decrement failed: %v", err)
	}
	got, _ = store.GetByID(ctx, tile.ID)
	if got.Quantity != 0 {
		t.Errorf("expected quantity 0, got %d", got.Quantity)
	}
}

func TestStore_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := tilestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tile := fixtures.CreateTile(ctx, "Kajaria", "600x600", 45, 10)

	tile.Price = 48
	tile.Quantity = 25
	if err := store.Update(ctx, tile.ID, tile); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := store.GetByID(ctx, tile.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Price != 48 || got.Quantity != 25 {
		t.Errorf("update not applied: %+v", got)
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := tilestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tile := fixtures.CreateTile(ctx, "Kajaria", "600x600", 45, 10)

	n, err := store.Delete(ctx, tile.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 deleted, got %d", n)
	}

	n, err = store.Delete(ctx, primitive.NewObjectID())
	if err != nil {
		t.Fatalf("Delete of missing tile failed: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 deleted for missing tile, got %d", n)
	}
}
