package handlers_test

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/teja-0311/Kisanmarket/internal/models"
	"github.com/teja-0311/Kisanmarket/internal/services"
)

// --- MockUserService ---

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

// --- MockProductService ---

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) CreateProduct(ctx context.Context, ownerID primitive.ObjectID, input services.CreateProductInput) (*models.Product, error) {
	args := m.Called(ctx, ownerID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductService) ListProducts(ctx context.Context) ([]models.ProductView, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ProductView), args.Error(1)
}

func (m *MockProductService) ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Product, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductService) FindByID(ctx context.Context, productID primitive.ObjectID) (*models.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

// --- MockCartService ---

type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) Fetch(ctx context.Context, phone string) (*models.Cart, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cart), args.Error(1)
}

func (m *MockCartService) Replace(ctx context.Context, phone string, items []services.CartItemInput) (*models.Cart, error) {
	args := m.Called(ctx, phone, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cart), args.Error(1)
}

func (m *MockCartService) Clear(ctx context.Context, phone string) error {
	args := m.Called(ctx, phone)
	return args.Error(0)
}

// --- MockOrderService ---

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Place(ctx context.Context, customerID primitive.ObjectID, input services.PlaceOrderInput) (*models.Order, error) {
	args := m.Called(ctx, customerID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderService) TransitionStatus(ctx context.Context, farmerID, orderID primitive.ObjectID, newStatus string) (*models.Order, error) {
	args := m.Called(ctx, farmerID, orderID, newStatus)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderService) ListForFarmer(ctx context.Context, farmerID primitive.ObjectID) ([]models.OrderView, error) {
	args := m.Called(ctx, farmerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.OrderView), args.Error(1)
}

func (m *MockOrderService) ListForCustomer(ctx context.Context, customerID primitive.ObjectID) ([]models.OrderView, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.OrderView), args.Error(1)
}

// --- MockNotificationService ---

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) Create(ctx context.Context, userID, orderID primitive.ObjectID, message string) (*models.Notification, error) {
	args := m.Called(ctx, userID, orderID, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notification), args.Error(1)
}

func (m *MockNotificationService) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Notification), args.Error(1)
}

// --- MockImageStorage ---

type MockImageStorage struct {
	mock.Mock
}

func (m *MockImageStorage) UploadImage(ctx context.Context, r io.Reader, filename string) (string, error) {
	args := m.Called(ctx, r, filename)
	return args.String(0), args.Error(1)
}

// --- MockAssistant ---

type MockAssistant struct {
	mock.Mock
}

func (m *MockAssistant) Ask(ctx context.Context, query, language string) (string, error) {
	args := m.Called(ctx, query, language)
	return args.String(0), args.Error(1)
}
