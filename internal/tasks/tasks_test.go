package tasks_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/teja-0311/Kisanmarket/internal/config"
	"github.com/teja-0311/Kisanmarket/internal/models"
	"github.com/teja-0311/Kisanmarket/internal/tasks"
)

// --- Mocks ---

// MockTexter
type MockTexter struct {
	mock.Mock
}

func (m *MockTexter) SendText(ctx context.Context, phone string, body string) error {
	args := m.Called(ctx, phone, body)
	return args.Error(0)
}

// MockUserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Signup(ctx context.Context, name, email, phone, password, role string) (*models.User, error) {
	args := m.Called(ctx, name, email, phone, password, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) VerifyOTP(ctx context.Context, phone, code string) (*models.User, error) {
	args := m.Called(ctx, phone, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Login(ctx context.Context, phone, password string) (*models.User, error) {
	args := m.Called(ctx, phone, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) ForgotPassword(ctx context.Context, phone string) error {
	args := m.Called(ctx, phone)
	return args.Error(0)
}

func (m *MockUserService) ResetPassword(ctx context.Context, phone, code, newPassword string) error {
	args := m.Called(ctx, phone, code, newPassword)
	return args.Error(0)
}

func (m *MockUserService) FindByID(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) EnsureFarmerRole(ctx context.Context, userID primitive.ObjectID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserService) DeleteUnverifiedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// --- Tests ---

func TestHandleNotificationDeliverTask_Success(t *testing.T) {
	mockTexter := new(MockTexter)
	mockUserService := new(MockUserService)
	cfg := &config.Config{}

	p := tasks.NewTaskProcessor(cfg, mockTexter, mockUserService)

	userID := primitive.NewObjectID()
	message := "Your negotiated order for Wheat was cancelled by the farmer."
	payloadBytes, _ := json.Marshal(tasks.NotificationPayload{
		UserID:  userID.Hex(),
		Message: message,
	})
	task := asynq.NewTask(tasks.TypeNotificationDeliver, payloadBytes)

	mockUserService.On("FindByID", mock.Anything, userID).Return(&models.User{
		ID:    userID,
		Phone: "9000000002",
	}, nil)
	mockTexter.On("SendText", mock.Anything, "9000000002", message).Return(nil)

	err := p.HandleNotificationDeliverTask(context.Background(), task)

	assert.NoError(t, err)
	mockUserService.AssertExpectations(t)
	mockTexter.AssertExpectations(t)
}

func TestHandleNotificationDeliverTask_BadPayload(t *testing.T) {
	mockTexter := new(MockTexter)
	mockUserService := new(MockUserService)
	p := tasks.NewTaskProcessor(&config.Config{}, mockTexter, mockUserService)

	task := asynq.NewTask(tasks.TypeNotificationDeliver, []byte("{not json"))

	err := p.HandleNotificationDeliverTask(context.Background(), task)

	assert.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry), "Malformed payloads should not be retried")
	mockTexter.AssertNotCalled(t, "SendText", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleNotificationDeliverTask_UserGone(t *testing.T) {
	mockTexter := new(MockTexter)
	mockUserService := new(MockUserService)
	p := tasks.NewTaskProcessor(&config.Config{}, mockTexter, mockUserService)

	userID := primitive.NewObjectID()
	payloadBytes, _ := json.Marshal(tasks.NotificationPayload{
		UserID:  userID.Hex(),
		Message: "hello",
	})
	task := asynq.NewTask(tasks.TypeNotificationDeliver, payloadBytes)

	mockUserService.On("FindByID", mock.Anything, userID).Return(nil, mongo.ErrNoDocuments)

	err := p.HandleNotificationDeliverTask(context.Background(), task)

	assert.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry), "Deleted users should not be retried")
	mockTexter.AssertNotCalled(t, "SendText", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleNotificationDeliverTask_SMSFailureRetries(t *testing.T) {
	mockTexter := new(MockTexter)
	mockUserService := new(MockUserService)
	p := tasks.NewTaskProcessor(&config.Config{}, mockTexter, mockUserService)

	userID := primitive.NewObjectID()
	payloadBytes, _ := json.Marshal(tasks.NotificationPayload{
		UserID:  userID.Hex(),
		Message: "hello",
	})
	task := asynq.NewTask(tasks.TypeNotificationDeliver, payloadBytes)

	mockUserService.On("FindByID", mock.Anything, userID).Return(&models.User{
		ID:    userID,
		Phone: "9000000002",
	}, nil)
	mockTexter.On("SendText", mock.Anything, "9000000002", "hello").Return(assert.AnError)

	err := p.HandleNotificationDeliverTask(context.Background(), task)

	assert.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry), "Transient SMS failures should be retried")
}

func TestHandleUnverifiedCleanupTask(t *testing.T) {
	mockTexter := new(MockTexter)
	mockUserService := new(MockUserService)
	cfg := &config.Config{UnverifiedMaxAge: 48 * time.Hour}
	p := tasks.NewTaskProcessor(cfg, mockTexter, mockUserService)

	task := asynq.NewTask(tasks.TypeUnverifiedCleanup, nil)

	mockUserService.On("DeleteUnverifiedBefore", mock.Anything, mock.MatchedBy(func(cutoff time.Time) bool {
		// The cutoff should sit roughly UnverifiedMaxAge in the past.
		expected := time.Now().UTC().Add(-cfg.UnverifiedMaxAge)
		diff := cutoff.Sub(expected)
		return diff > -time.Minute && diff < time.Minute
	})).Return(int64(3), nil)

	err := p.HandleUnverifiedCleanupTask(context.Background(), task)

	assert.NoError(t, err)
	mockUserService.AssertExpectations(t)
}

func TestHandleUnverifiedCleanupTask_Error(t *testing.T) {
	mockTexter := new(MockTexter)
	mockUserService := new(MockUserService)
	p := tasks.NewTaskProcessor(&config.Config{}, mockTexter, mockUserService)

	task := asynq.NewTask(tasks.TypeUnverifiedCleanup, nil)

	mockUserService.On("DeleteUnverifiedBefore", mock.Anything, mock.Anything).Return(int64(0), assert.AnError)

	err := p.HandleUnverifiedCleanupTask(context.Background(), task)

	assert.Error(t, err)
}
