package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/teja-0311/Kisanmarket/internal/models"
)

const notificationsCollection = "notifications"

// INotificationService defines the interface for in-app notifications.
type INotificationService interface {
	Create(ctx context.Context, userID, orderID primitive.ObjectID, message string) (*models.Notification, error)
	ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error)
}

// notificationService implements INotificationService.
type notificationService struct {
	db *mongo.Database
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(db *mongo.Database) INotificationService {
	return &notificationService{db: db}
}

// Create appends a notification for the user.
func (s *notificationService) Create(ctx context.Context, userID, orderID primitive.ObjectID, message string) (*models.Notification, error) {
	notification := &models.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		OrderID:   orderID,
		Message:   message,
		Read:      false,
		CreatedAt: time.Now().UTC(),
	}

	collection := s.db.Collection(notificationsCollection)
	if _, err := collection.InsertOne(ctx, notification); err != nil {
		return nil, fmt.Errorf("error inserting notification for user %s: %w", userID.Hex(), err)
	}
	return notification, nil
}

// ListForUser returns the user's notifications newest-first.
func (s *notificationService) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	collection := s.db.Collection(notificationsCollection)
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications for user %s: %w", userID.Hex(), err)
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notifications for user %s: %w", userID.Hex(), err)
	}
	return notifications, nil
}
