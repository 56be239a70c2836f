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

	"github.com/teja-0311/Kisanmarket/internal/db"
	"github.com/teja-0311/Kisanmarket/internal/models"
)

const productsCollection = "products"

// CreateProductInput carries the listing fields supplied by the farmer.
// ImageURL is set by the handler after upload.
type CreateProductInput struct {
	CropName    string
	Price       float64
	Quantity    int64
	Description string
	Phone       string
	Location    string
	ImageURL    string
}

// IProductService defines the interface for listing operations.
type IProductService interface {
	CreateProduct(ctx context.Context, ownerID primitive.ObjectID, input CreateProductInput) (*models.Product, error)
	ListProducts(ctx context.Context) ([]models.ProductView, error)
	ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Product, error)
	FindByID(ctx context.Context, productID primitive.ObjectID) (*models.Product, error)
}

// productService implements IProductService.
type productService struct {
	db              *mongo.Database
	createdHandlers []IListingCreatedHandler
}

// NewProductService creates a new ProductService. The created handlers
// run synchronously before each listing is persisted.
func NewProductService(db *mongo.Database, createdHandlers ...IListingCreatedHandler) IProductService {
	return &productService{db: db, createdHandlers: createdHandlers}
}

// CreateProduct publishes a new listing. Side effects registered for
// listing creation (currently the farmer role upgrade) run first; if any
// of them fails the listing is not persisted.
func (s *productService) CreateProduct(ctx context.Context, ownerID primitive.ObjectID, input CreateProductInput) (*models.Product, error) {
	event := ListingCreated{OwnerID: ownerID, CropName: input.CropName}
	for _, h := range s.createdHandlers {
		if err := h.HandleListingCreated(ctx, event); err != nil {
			return nil, fmt.Errorf("listing creation rejected for user %s: %w", ownerID.Hex(), err)
		}
	}

	now := time.Now().UTC()
	product := &models.Product{
		OwnerID:     ownerID,
		CropName:    input.CropName,
		Price:       input.Price,
		Quantity:    input.Quantity,
		Description: input.Description,
		Phone:       input.Phone,
		Location:    input.Location,
		ImageURL:    input.ImageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	collection := s.db.Collection(productsCollection)
	err := db.Try(func() error {
		product.ID = primitive.NewObjectID()
		_, insertErr := collection.InsertOne(ctx, product)
		return insertErr
	})
	if err != nil {
		return nil, fmt.Errorf("error inserting listing for user %s: %w", ownerID.Hex(), err)
	}

	return product, nil
}

// ListProducts returns the full catalog newest-first, each listing
// joined with its farmer's contact details.
func (s *productService) ListProducts(ctx context.Context) ([]models.ProductView, error) {
	collection := s.db.Collection(productsCollection)

	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: usersCollection},
			{Key: "localField", Value: "ownerId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "owner"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$owner"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "farmerName", Value: "$owner.name"},
			{Key: "farmerEmail", Value: "$owner.email"},
			{Key: "farmerPhone", Value: "$owner.phone"},
		}}},
		{{Key: "$project", Value: bson.D{{Key: "owner", Value: 0}}}},
	}

	cursor, err := collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	defer cursor.Close(ctx)

	views := []models.ProductView{}
	if err = cursor.All(ctx, &views); err != nil {
		return nil, fmt.Errorf("failed to decode listings: %w", err)
	}
	return views, nil
}

// ListByOwner returns the farmer's own listings newest-first.
func (s *productService) ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Product, error) {
	collection := s.db.Collection(productsCollection)
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := collection.Find(ctx, bson.M{"ownerId": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings for user %s: %w", ownerID.Hex(), err)
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err = cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode listings for user %s: %w", ownerID.Hex(), err)
	}
	return products, nil
}

// FindByID finds a listing by its ID.
func (s *productService) FindByID(ctx context.Context, productID primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	collection := s.db.Collection(productsCollection)

	err := collection.FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding listing %s: %w", productID.Hex(), err)
	}
	return &product, nil
}
