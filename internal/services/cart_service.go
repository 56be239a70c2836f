package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/teja-0311/Kisanmarket/internal/models"
)

const cartsCollection = "carts"

// CartItemInput is one entry of a cart replacement request. ProductID
// arrives as a hex string; the remaining fields are optional snapshots
// that get defaulted when absent.
type CartItemInput struct {
	ProductID    string  `json:"productId"`
	CropName     string  `json:"cropName"`
	Price        float64 `json:"price"`
	Quantity     int64   `json:"quantity"`
	CartQuantity int64   `json:"cartQuantity"`
	Location     string  `json:"location"`
	ImageURL     string  `json:"imageUrl"`
}

// ICartService defines the interface for cart operations. Carts are
// keyed by phone number and replaced whole on every update.
type ICartService interface {
	Fetch(ctx context.Context, phone string) (*models.Cart, error)
	Replace(ctx context.Context, phone string, items []CartItemInput) (*models.Cart, error)
	Clear(ctx context.Context, phone string) error
}

// cartService implements ICartService.
type cartService struct {
	db *mongo.Database
}

// NewCartService creates a new CartService.
func NewCartService(db *mongo.Database) ICartService {
	return &cartService{db: db}
}

// Fetch returns the cart for the phone. A phone that never saved a cart
// gets an empty one back; nothing is persisted for it.
func (s *cartService) Fetch(ctx context.Context, phone string) (*models.Cart, error) {
	var cart models.Cart
	collection := s.db.Collection(cartsCollection)

	err := collection.FindOne(ctx, bson.M{"phone": phone}).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &models.Cart{Phone: phone, Items: []models.CartItem{}}, nil
		}
		return nil, fmt.Errorf("error fetching cart for %s: %w", phone, err)
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return &cart, nil
}

// Replace overwrites the cart with exactly the supplied items. Missing
// snapshot fields are defaulted, and duplicate product IDs collapse to
// the last occurrence. An unparseable product ID rejects the whole
// request with ErrInvalidReference.
func (s *cartService) Replace(ctx context.Context, phone string, items []CartItemInput) (*models.Cart, error) {
	byProduct := map[primitive.ObjectID]int{}
	parsed := []models.CartItem{}

	for _, in := range items {
		productID, err := primitive.ObjectIDFromHex(in.ProductID)
		if err != nil {
			return nil, fmt.Errorf("cart item product ID %q: %w", in.ProductID, ErrInvalidReference)
		}

		item := models.CartItem{
			ProductID:    productID,
			CropName:     in.CropName,
			Price:        in.Price,
			Quantity:     in.Quantity,
			CartQuantity: in.CartQuantity,
			Location:     in.Location,
			ImageURL:     in.ImageURL,
		}
		if item.CropName == "" {
			item.CropName = "Unknown"
		}
		if item.Quantity <= 0 {
			item.Quantity = 1
		}
		if item.CartQuantity <= 0 {
			item.CartQuantity = 1
		}

		if idx, seen := byProduct[productID]; seen {
			parsed[idx] = item
			continue
		}
		byProduct[productID] = len(parsed)
		parsed = append(parsed, item)
	}

	collection := s.db.Collection(cartsCollection)
	filter := bson.M{"phone": phone}
	update := bson.M{
		"$set":         bson.M{"items": parsed, "updatedAt": time.Now().UTC()},
		"$setOnInsert": bson.M{"phone": phone},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var cart models.Cart
	if err := collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&cart); err != nil {
		return nil, fmt.Errorf("error replacing cart for %s: %w", phone, err)
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return &cart, nil
}

// Clear removes the cart document. Clearing an absent cart is a no-op.
func (s *cartService) Clear(ctx context.Context, phone string) error {
	collection := s.db.Collection(cartsCollection)
	if _, err := collection.DeleteOne(ctx, bson.M{"phone": phone}); err != nil {
		return fmt.Errorf("error clearing cart for %s: %w", phone, err)
	}
	return nil
}
