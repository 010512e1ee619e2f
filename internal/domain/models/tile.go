// internal/domain/models/tile.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tile represents one stock line: a brand + size combination with pricing
// and the quantity currently on hand.
//
// BuyPrice is the cost price and is only shown to admins; it is optional
// because older stock was entered before cost tracking existed.
type Tile struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Brand    string             `bson:"brand" json:"brand"`
	Size     string             `bson:"size" json:"size"`
	BuyPrice *float64           `bson:"buy_price,omitempty" json:"buy_price,omitempty"`
	Price    float64            `bson:"price" json:"price"`
	Quantity int                `bson:"quantity" json:"quantity"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// InStock reports whether at least qty units are available.
func (t *Tile) InStock(qty int) bool {
	return qty > 0 && t.Quantity >= qty
}

// BuyPriceValue returns the cost price, or 0 when none was recorded.
// Templates cannot dereference pointers, so they go through this.
func (t Tile) BuyPriceValue() float64 {
	if t.BuyPrice == nil {
		return 0
	}
	return *t.BuyPrice
}
