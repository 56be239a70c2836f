package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/teja-0311/Kisanmarket/internal/db"
	"github.com/teja-0311/Kisanmarket/internal/models"
)

const ordersCollection = "orders"

// PlaceOrderInput carries the fields of an order placement request.
// IDs arrive as hex strings from the transport layer. NegotiatedPrice
// and Message are only meaningful for negotiation orders.
type PlaceOrderInput struct {
	ProductID       string
	FarmerID        string
	Type            string
	NegotiatedPrice float64
	Message         string
}

// ISMSEnqueuer hands rejected-order texts off to the background worker.
// Delivery is best-effort; enqueue failures never fail the transition.
type ISMSEnqueuer interface {
	EnqueueOrderRejectedSMS(ctx context.Context, userID primitive.ObjectID, message string) error
}

// IOrderService defines the interface for order operations.
type IOrderService interface {
	Place(ctx context.Context, customerID primitive.ObjectID, input PlaceOrderInput) (*models.Order, error)
	TransitionStatus(ctx context.Context, farmerID, orderID primitive.ObjectID, newStatus string) (*models.Order, error)
	ListForFarmer(ctx context.Context, farmerID primitive.ObjectID) ([]models.OrderView, error)
	ListForCustomer(ctx context.Context, customerID primitive.ObjectID) ([]models.OrderView, error)
}

// orderService implements IOrderService.
type orderService struct {
	db              *mongo.Database
	notificationSvc INotificationService
	smsEnqueuer     ISMSEnqueuer // may be nil
}

// NewOrderService creates a new OrderService. smsEnqueuer may be nil
// when no background worker is wired in.
func NewOrderService(db *mongo.Database, notificationSvc INotificationService, smsEnqueuer ISMSEnqueuer) IOrderService {
	return &orderService{db: db, notificationSvc: notificationSvc, smsEnqueuer: smsEnqueuer}
}

// Place records a new pending order against a listing. The listing must
// exist and the supplied farmer must be its owner. A counter-offer price
// is only valid on negotiation orders; direct orders buy at the listing
// price and carry none.
func (s *orderService) Place(ctx context.Context, customerID primitive.ObjectID, input PlaceOrderInput) (*models.Order, error) {
	if input.Type != models.OrderTypeDirect && input.Type != models.OrderTypeNegotiation {
		return nil, fmt.Errorf("order type %q: %w", input.Type, ErrInvalidReference)
	}
	if input.Type == models.OrderTypeDirect && input.NegotiatedPrice != 0 {
		return nil, fmt.Errorf("direct order with negotiated price: %w", ErrInvalidReference)
	}

	productID, err := primitive.ObjectIDFromHex(input.ProductID)
	if err != nil {
		return nil, fmt.Errorf("order product ID %q: %w", input.ProductID, ErrInvalidReference)
	}
	farmerID, err := primitive.ObjectIDFromHex(input.FarmerID)
	if err != nil {
		return nil, fmt.Errorf("order farmer ID %q: %w", input.FarmerID, ErrInvalidReference)
	}

	var product models.Product
	err = s.db.Collection(productsCollection).FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("listing %s: %w", productID.Hex(), ErrInvalidReference)
		}
		return nil, fmt.Errorf("error finding listing %s: %w", productID.Hex(), err)
	}
	if product.OwnerID != farmerID {
		return nil, fmt.Errorf("farmer %s does not own listing %s: %w", farmerID.Hex(), productID.Hex(), ErrInvalidReference)
	}

	now := time.Now().UTC()
	order := &models.Order{
		ProductID:  productID,
		FarmerID:   farmerID,
		CustomerID: customerID,
		Type:       input.Type,
		Status:     models.OrderStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if input.Type == models.OrderTypeNegotiation {
		order.NegotiatedPrice = input.NegotiatedPrice
		order.Message = input.Message
	}

	collection := s.db.Collection(ordersCollection)
	err = db.Try(func() error {
		order.ID = primitive.NewObjectID()
		_, insertErr := collection.InsertOne(ctx, order)
		return insertErr
	})
	if err != nil {
		return nil, fmt.Errorf("error inserting order for customer %s: %w", customerID.Hex(), err)
	}

	return order, nil
}

// TransitionStatus moves a pending order to accepted or rejected. Only
// the order's farmer may transition it, and each order transitions
// exactly once; a second attempt fails with ErrInvalidStatus and leaves
// the order untouched. Rejections additionally notify the buyer, but a
// notification failure never rolls back the status change.
func (s *orderService) TransitionStatus(ctx context.Context, farmerID, orderID primitive.ObjectID, newStatus string) (*models.Order, error) {
	if newStatus != models.OrderStatusAccepted && newStatus != models.OrderStatusRejected {
		return nil, fmt.Errorf("status %q: %w", newStatus, ErrInvalidStatus)
	}

	collection := s.db.Collection(ordersCollection)

	var order models.Order
	err := collection.FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding order %s: %w", orderID.Hex(), err)
	}
	if order.FarmerID != farmerID {
		return nil, fmt.Errorf("order %s belongs to another farmer: %w", orderID.Hex(), ErrUnauthorized)
	}

	// The pending filter makes the transition first-wins under
	// concurrent requests.
	now := time.Now().UTC()
	filter := bson.M{"_id": orderID, "status": models.OrderStatusPending}
	update := bson.M{"$set": bson.M{"status": newStatus, "updatedAt": now}}

	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, fmt.Errorf("error updating order %s status: %w", orderID.Hex(), err)
	}
	if result.MatchedCount == 0 {
		return nil, fmt.Errorf("order %s is not pending: %w", orderID.Hex(), ErrInvalidStatus)
	}

	order.Status = newStatus
	order.UpdatedAt = now

	if newStatus == models.OrderStatusRejected {
		s.notifyRejection(ctx, &order)
	}

	return &order, nil
}

// notifyRejection records the in-app notification and hands the SMS to
// the background worker. The status write already happened; failures
// here are logged and swallowed.
func (s *orderService) notifyRejection(ctx context.Context, order *models.Order) {
	cropName := "Unknown"
	var product models.Product
	err := s.db.Collection(productsCollection).FindOne(ctx, bson.M{"_id": order.ProductID}).Decode(&product)
	if err != nil {
		log.Printf("Failed to resolve listing %s for rejection notice: %v", order.ProductID.Hex(), err)
	} else {
		cropName = product.CropName
	}

	message := fmt.Sprintf("Your negotiated order for %s was cancelled by the farmer.", cropName)
	if _, err := s.notificationSvc.Create(ctx, order.CustomerID, order.ID, message); err != nil {
		log.Printf("Failed to store rejection notification for order %s: %v", order.ID.Hex(), err)
	}

	if s.smsEnqueuer != nil {
		if err := s.smsEnqueuer.EnqueueOrderRejectedSMS(ctx, order.CustomerID, message); err != nil {
			log.Printf("Failed to enqueue rejection SMS for order %s: %v", order.ID.Hex(), err)
		}
	}
}

// ListForFarmer returns the farmer's incoming orders newest-first, each
// joined with the listing and the buyer's contact details.
func (s *orderService) ListForFarmer(ctx context.Context, farmerID primitive.ObjectID) ([]models.OrderView, error) {
	return s.listViews(ctx, bson.M{"farmerId": farmerID})
}

// ListForCustomer returns the buyer's orders newest-first.
func (s *orderService) ListForCustomer(ctx context.Context, customerID primitive.ObjectID) ([]models.OrderView, error) {
	return s.listViews(ctx, bson.M{"customerId": customerID})
}

func (s *orderService) listViews(ctx context.Context, match bson.M) ([]models.OrderView, error) {
	collection := s.db.Collection(ordersCollection)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: productsCollection},
			{Key: "localField", Value: "productId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "product"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$product"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: usersCollection},
			{Key: "localField", Value: "customerId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "customer"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$customer"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: usersCollection},
			{Key: "localField", Value: "farmerId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "farmer"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$farmer"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "cropName", Value: "$product.cropName"},
			{Key: "price", Value: "$product.price"},
			{Key: "imageUrl", Value: "$product.imageUrl"},
			{Key: "customerName", Value: "$customer.name"},
			{Key: "customerPhone", Value: "$customer.phone"},
			{Key: "farmerName", Value: "$farmer.name"},
			{Key: "farmerPhone", Value: "$farmer.phone"},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "product", Value: 0},
			{Key: "customer", Value: 0},
			{Key: "farmer", Value: 0},
		}}},
	}

	cursor, err := collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer cursor.Close(ctx)

	views := []models.OrderView{}
	if err = cursor.All(ctx, &views); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return views, nil
}
