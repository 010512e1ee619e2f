// internal/domain/models/bill.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Bill is one customer sale. Line items are embedded: they are only ever
// read together with the bill, and edits rewrite the whole document.
type Bill struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomerName   string             `bson:"customer_name,omitempty" json:"customer_name,omitempty"`
	CustomerMobile string             `bson:"customer_mobile,omitempty" json:"customer_mobile,omitempty"`
	Items          []BillItem         `bson:"items" json:"items"`
	GST            float64            `bson:"gst" json:"gst"`           // percent
	Discount       float64            `bson:"discount" json:"discount"` // flat amount
	Total          float64            `bson:"total" json:"total"`
	Date           time.Time          `bson:"date" json:"date"`
}

// BillItem is one line of a bill. TileName/Size/Price are denormalized from
// the tile at sale time so later tile edits don't rewrite history.
type BillItem struct {
	TileName string  `bson:"tile_name" json:"tile_name"`
	Size     string  `bson:"size" json:"size"`
	Price    float64 `bson:"price" json:"price"`
	Quantity int     `bson:"quantity" json:"quantity"`
	Total    float64 `bson:"total" json:"total"`
}

// Subtotal sums the line totals before GST and discount.
func (b *Bill) Subtotal() float64 {
	var sum float64
	for _, it := range b.Items {
		sum += it.Total
	}
	return sum
}

// GSTAmount returns the GST charge computed from the subtotal.
func (b *Bill) GSTAmount() float64 {
	return b.Subtotal() * b.GST / 100
}

// ComputeTotal returns subtotal + GST − discount.
func (b *Bill) ComputeTotal() float64 {
	sub := b.Subtotal()
	return sub + sub*b.GST/100 - b.Discount
}
