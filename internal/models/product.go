package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is a crop listing published by a farmer.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID     primitive.ObjectID `bson:"ownerId" json:"ownerId"`
	CropName    string             `bson:"cropName" json:"cropName"`
	Price       float64            `bson:"price" json:"price"`
	Quantity    int64              `bson:"quantity" json:"quantity"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Phone       string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Location    string             `bson:"location,omitempty" json:"location,omitempty"`
	ImageURL    string             `bson:"imageUrl" json:"imageUrl"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ProductView is a Product enriched with the owning farmer's contact
// details for catalog responses.
type ProductView struct {
	Product     `bson:",inline"`
	FarmerName  string `bson:"farmerName" json:"farmerName"`
	FarmerEmail string `bson:"farmerEmail" json:"farmerEmail"`
	FarmerPhone string `bson:"farmerPhone" json:"farmerPhone"`
}
