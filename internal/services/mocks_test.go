package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"chapamarket/backend/internal/auth"
	"chapamarket/backend/internal/models"
)

// --- Mocks ---

// MockProfileService
type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) Register(ctx context.Context, firstName, lastName, email, phone, location, password string, role models.Role) (*models.Profile, error) {
	args := m.Called(ctx, firstName, lastName, email, phone, location, password, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}
func (m *MockProfileService) Authenticate(ctx context.Context, email, password string) (*models.Profile, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}
func (m *MockProfileService) FindByID(ctx context.Context, userID string) (*models.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}
func (m *MockProfileService) FindByEmail(ctx context.Context, email string) (*models.Profile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}
func (m *MockProfileService) FindRecent(ctx context.Context, limit int) ([]models.Profile, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Profile), args.Error(1)
}
func (m *MockProfileService) Search(ctx context.Context, query string, limit int) ([]models.Profile, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Profile), args.Error(1)
}
func (m *MockProfileService) CountAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockProfileService) Suspend(ctx context.Context, actor auth.Session, userID string) error {
	args := m.Called(ctx, actor, userID)
	return args.Error(0)
}
func (m *MockProfileService) Activate(ctx context.Context, actor auth.Session, userID string) error {
	args := m.Called(ctx, actor, userID)
	return args.Error(0)
}
func (m *MockProfileService) GrantPremium(ctx context.Context, actor auth.Session, userID string) error {
	args := m.Called(ctx, actor, userID)
	return args.Error(0)
}
func (m *MockProfileService) RevokePremium(ctx context.Context, actor auth.Session, userID string) error {
	args := m.Called(ctx, actor, userID)
	return args.Error(0)
}
func (m *MockProfileService) SetRole(ctx context.Context, actor auth.Session, userID string, role models.Role) error {
	args := m.Called(ctx, actor, userID, role)
	return args.Error(0)
}
func (m *MockProfileService) Delete(ctx context.Context, actor auth.Session, userID string) error {
	args := m.Called(ctx, actor, userID)
	return args.Error(0)
}
func (m *MockProfileService) ExpireLapsedPremiums(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockListingService
type MockListingService struct {
	mock.Mock
}

func (m *MockListingService) Create(ctx context.Context, sellerID string, in models.NewListingInput) (*models.Listing, error) {
	args := m.Called(ctx, sellerID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}
func (m *MockListingService) FindByID(ctx context.Context, listingID string) (*models.Listing, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}
func (m *MockListingService) FindRecent(ctx context.Context, limit int) ([]models.Listing, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Listing), args.Error(1)
}
func (m *MockListingService) FindPending(ctx context.Context, limit int) ([]models.Listing, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Listing), args.Error(1)
}
func (m *MockListingService) FindBySeller(ctx context.Context, sellerID string) ([]models.Listing, error) {
	args := m.Called(ctx, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Listing), args.Error(1)
}
func (m *MockListingService) Search(ctx context.Context, query, category string, verifiedOnly bool, limit int) ([]models.Listing, error) {
	args := m.Called(ctx, query, category, verifiedOnly, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Listing), args.Error(1)
}
func (m *MockListingService) CountAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockListingService) CountPending(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockListingService) AttachImage(ctx context.Context, listingID, imageKey string) error {
	args := m.Called(ctx, listingID, imageKey)
	return args.Error(0)
}
func (m *MockListingService) Approve(ctx context.Context, actor auth.Session, listingID string) error {
	args := m.Called(ctx, actor, listingID)
	return args.Error(0)
}
func (m *MockListingService) Reject(ctx context.Context, actor auth.Session, listingID string) error {
	args := m.Called(ctx, actor, listingID)
	return args.Error(0)
}
func (m *MockListingService) ToggleFeatured(ctx context.Context, actor auth.Session, listingID string) error {
	args := m.Called(ctx, actor, listingID)
	return args.Error(0)
}
func (m *MockListingService) Delete(ctx context.Context, actor auth.Session, listingID string) error {
	args := m.Called(ctx, actor, listingID)
	return args.Error(0)
}

// MockOrderService
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Create(ctx context.Context, buyerID, sellerID, listingID, totalAmount, paymentMethod string) (*models.Order, error) {
	args := m.Called(ctx, buyerID, sellerID, listingID, totalAmount, paymentMethod)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}
func (m *MockOrderService) FindRecent(ctx context.Context, limit int) ([]models.Order, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}
func (m *MockOrderService) FindByBuyer(ctx context.Context, buyerID string) ([]models.Order, error) {
	args := m.Called(ctx, buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}
func (m *MockOrderService) CountAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockOrderService) SumRevenue(ctx context.Context) (float64, error) {
	args := m.Called(ctx)
	return args.Get(0).(float64), args.Error(1)
}

// MockMessageService
type MockMessageService struct {
	mock.Mock
}

func (m *MockMessageService) Send(ctx context.Context, senderID, receiverID, listingID, content string) (*models.Message, error) {
	args := m.Called(ctx, senderID, receiverID, listingID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}
func (m *MockMessageService) FindRecent(ctx context.Context, limit int) ([]models.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}
func (m *MockMessageService) CountAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockMessageService) ConversationThread(ctx context.Context, userID, peerID, listingID string) ([]models.Message, error) {
	args := m.Called(ctx, userID, peerID, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}
func (m *MockMessageService) ConversationsForUser(ctx context.Context, userID string) ([]models.Conversation, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Conversation), args.Error(1)
}
