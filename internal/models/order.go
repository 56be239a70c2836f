package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order kinds.
const (
	OrderTypeDirect      = "direct"
	OrderTypeNegotiation = "negotiation"
)

// Order statuses.
const (
	OrderStatusPending  = "pending"
	OrderStatusAccepted = "accepted"
	OrderStatusRejected = "rejected"
)

// Order records a purchase request against a single listing. Negotiation
// orders carry the buyer's proposed price and message; direct orders buy
// at the listing price.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID       primitive.ObjectID `bson:"productId" json:"productId"`
	FarmerID        primitive.ObjectID `bson:"farmerId" json:"farmerId"`
	CustomerID      primitive.ObjectID `bson:"customerId" json:"customerId"`
	Type            string             `bson:"type" json:"type"`
	Status          string             `bson:"status" json:"status"`
	NegotiatedPrice float64            `bson:"negotiatedPrice,omitempty" json:"negotiatedPrice,omitempty"`
	Message         string             `bson:"message,omitempty" json:"message,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// OrderView is an Order enriched with listing and counterparty details
// for dashboard responses.
type OrderView struct {
	Order         `bson:",inline"`
	CropName      string  `bson:"cropName" json:"cropName"`
	Price         float64 `bson:"price" json:"price"`
	ImageURL      string  `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	CustomerName  string  `bson:"customerName" json:"customerName"`
	CustomerPhone string  `bson:"customerPhone" json:"customerPhone"`
	FarmerName    string  `bson:"farmerName" json:"farmerName"`
	FarmerPhone   string  `bson:"farmerPhone" json:"farmerPhone"`
}
