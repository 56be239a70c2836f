package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem is a snapshot of a product at the moment it was added to a
// cart. CartQuantity is the number of units the buyer wants; Quantity
// is the stock level captured from the listing.
type CartItem struct {
	ProductID    primitive.ObjectID `bson:"productId" json:"productId"`
	CropName     string             `bson:"cropName" json:"cropName"`
	Price        float64            `bson:"price" json:"price"`
	Quantity     int64              `bson:"quantity" json:"quantity"`
	CartQuantity int64              `bson:"cartQuantity" json:"cartQuantity"`
	Location     string             `bson:"location,omitempty" json:"location,omitempty"`
	ImageURL     string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
}

// Cart is keyed by the buyer's phone number, one document per phone.
type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Phone     string             `bson:"phone" json:"phone"`
	Items     []CartItem         `bson:"items" json:"items"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
