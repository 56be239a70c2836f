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

	"github.com/teja-0311/Kisanmarket/internal/auth"
	"github.com/teja-0311/Kisanmarket/internal/db"
	"github.com/teja-0311/Kisanmarket/internal/models"
	"github.com/teja-0311/Kisanmarket/internal/sms"
)

// IUserService defines the interface for account operations.
// This allows for easier mocking in tests.
type IUserService interface {
	Signup(ctx context.Context, name, email, phone, password, role string) (*models.User, error)
	VerifyOTP(ctx context.Context, phone, code string) (*models.User, error)
	Login(ctx context.Context, phone, password string) (*models.User, error)
	ForgotPassword(ctx context.Context, phone string) error
	ResetPassword(ctx context.Context, phone, code, newPassword string) error
	FindByID(ctx context.Context, userID primitive.ObjectID) (*models.User, error)
	FindByPhone(ctx context.Context, phone string) (*models.User, error)
	EnsureFarmerRole(ctx context.Context, userID primitive.ObjectID) error
	DeleteUnverifiedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

const usersCollection = "users"

// userService implements IUserService.
type userService struct {
	db       *mongo.Database
	verifier sms.Verifier
}

// NewUserService creates a new UserService.
func NewUserService(db *mongo.Database, verifier sms.Verifier) IUserService {
	return &userService{db: db, verifier: verifier}
}

// Signup registers a new unverified account and starts phone
// verification. An empty role defaults to customer; farmers can
// register as farmer directly. An existing unverified account for the
// same phone is replaced so the user can retry signup after an
// abandoned attempt.
func (s *userService) Signup(ctx context.Context, name, email, phone, password, role string) (*models.User, error) {
	switch role {
	case "":
		role = models.RoleCustomer
	case models.RoleCustomer, models.RoleFarmer:
	default:
		return nil, fmt.Errorf("unknown role %q: %w", role, ErrInvalidReference)
	}

	collection := s.db.Collection(usersCollection)

	existing, err := s.FindByPhone(ctx, phone)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}
	if existing != nil {
		if existing.IsVerified {
			return nil, ErrUserExists
		}
		// Abandoned signup: discard the stale record and start over.
		if _, err := collection.DeleteOne(ctx, bson.M{"_id": existing.ID, "isVerified": false}); err != nil {
			return nil, fmt.Errorf("error replacing unverified account for %s: %w", phone, err)
		}
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password for %s: %w", phone, err)
	}

	now := time.Now().UTC()
	newUser := &models.User{
		ID:         primitive.NewObjectID(),
		Name:       name,
		Email:      email,
		Phone:      phone,
		Password:   hashedPassword,
		Role:       role,
		IsVerified: false,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = db.Try(func() error {
		newUser.ID = primitive.NewObjectID()
		_, insertErr := collection.InsertOne(ctx, newUser)
		return insertErr
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("error inserting new user for %s: %w", phone, err)
	}

	if err := s.verifier.SendCode(ctx, phone); err != nil {
		// The account exists but the code never went out. Roll back so
		// signup can be retried cleanly.
		if _, delErr := collection.DeleteOne(ctx, bson.M{"_id": newUser.ID}); delErr != nil {
			log.Printf("Failed to roll back unverified user %s after OTP send failure: %v", newUser.ID.Hex(), delErr)
		}
		return nil, fmt.Errorf("failed to send verification code to %s: %w", phone, err)
	}

	return newUser, nil
}

// VerifyOTP checks the submitted code and marks the account verified.
func (s *userService) VerifyOTP(ctx context.Context, phone, code string) (*models.User, error) {
	ok, err := s.verifier.CheckCode(ctx, phone, code)
	if err != nil {
		return nil, fmt.Errorf("error checking verification code for %s: %w", phone, err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	collection := s.db.Collection(usersCollection)
	update := bson.M{"$set": bson.M{"isVerified": true, "updatedAt": time.Now().UTC()}}
	result, err := collection.UpdateOne(ctx, bson.M{"phone": phone}, update)
	if err != nil {
		return nil, fmt.Errorf("error marking user %s verified: %w", phone, err)
	}
	if result.MatchedCount == 0 {
		return nil, mongo.ErrNoDocuments
	}

	return s.FindByPhone(ctx, phone)
}

// Login authenticates by phone and password. Unverified accounts cannot
// log in.
func (s *userService) Login(ctx context.Context, phone, password string) (*models.User, error) {
	user, err := s.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPasswordHash(password, user.Password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsVerified {
		return nil, ErrNotVerified
	}
	return user, nil
}

// ForgotPassword starts phone verification for a password reset.
func (s *userService) ForgotPassword(ctx context.Context, phone string) error {
	if _, err := s.FindByPhone(ctx, phone); err != nil {
		return err
	}
	if err := s.verifier.SendCode(ctx, phone); err != nil {
		return fmt.Errorf("failed to send reset code to %s: %w", phone, err)
	}
	return nil
}

// ResetPassword checks the reset code and replaces the password hash.
func (s *userService) ResetPassword(ctx context.Context, phone, code, newPassword string) error {
	ok, err := s.verifier.CheckCode(ctx, phone, code)
	if err != nil {
		return fmt.Errorf("error checking reset code for %s: %w", phone, err)
	}
	if !ok {
		return ErrInvalidCredentials
	}

	hashedPassword, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash new password for %s: %w", phone, err)
	}

	collection := s.db.Collection(usersCollection)
	update := bson.M{"$set": bson.M{"password": hashedPassword, "updatedAt": time.Now().UTC()}}
	result, err := collection.UpdateOne(ctx, bson.M{"phone": phone}, update)
	if err != nil {
		return fmt.Errorf("error resetting password for %s: %w", phone, err)
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// FindByID finds a user by their ID.
func (s *userService) FindByID(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	var user models.User
	collection := s.db.Collection(usersCollection)

	err := collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding user by ID %s: %w", userID.Hex(), err)
	}
	return &user, nil
}

// FindByPhone finds a user by their phone number.
// Returns nil and mongo.ErrNoDocuments if not found.
func (s *userService) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	var user models.User
	collection := s.db.Collection(usersCollection)

	err := collection.FindOne(ctx, bson.M{"phone": phone}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding user by phone %s: %w", phone, err)
	}
	return &user, nil
}

// EnsureFarmerRole promotes the user to farmer if they are not one
// already. The promotion is monotone: a farmer stays a farmer.
// Returns ErrOwnerNotFound if the account does not exist.
func (s *userService) EnsureFarmerRole(ctx context.Context, userID primitive.ObjectID) error {
	collection := s.db.Collection(usersCollection)
	filter := bson.M{"_id": userID, "role": bson.M{"$ne": models.RoleFarmer}}
	update := bson.M{"$set": bson.M{"role": models.RoleFarmer, "updatedAt": time.Now().UTC()}}

	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("error promoting user %s to farmer: %w", userID.Hex(), err)
	}
	if result.MatchedCount == 0 {
		// Either the user is already a farmer or does not exist.
		count, err := collection.CountDocuments(ctx, bson.M{"_id": userID})
		if err != nil {
			return fmt.Errorf("error checking user %s existence: %w", userID.Hex(), err)
		}
		if count == 0 {
			return ErrOwnerNotFound
		}
		return nil
	}

	log.Printf("User %s promoted to farmer", userID.Hex())
	return nil
}

// DeleteUnverifiedBefore removes accounts that never completed phone
// verification and were created before the cutoff.
func (s *userService) DeleteUnverifiedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	collection := s.db.Collection(usersCollection)
	filter := bson.M{"isVerified": false, "createdAt": bson.M{"$lt": cutoff}}

	result, err := collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("error deleting unverified accounts: %w", err)
	}
	return result.DeletedCount, nil
}
