package handlers_test

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/mock"

	"chapamarket/backend/internal/auth"
	"chapamarket/backend/internal/models"
	"chapamarket/backend/internal/notify"
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

// MockStoryService
type MockStoryService struct {
	mock.Mock
}

func (m *MockStoryService) Create(ctx context.Context, actor auth.Session, title, content, authorName, authorImage string) (*models.Story, error) {
	args := m.Called(ctx, actor, title, content, authorName, authorImage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Story), args.Error(1)
}
func (m *MockStoryService) Update(ctx context.Context, actor auth.Session, storyID string, updates map[string]interface{}) (*models.Story, error) {
	args := m.Called(ctx, actor, storyID, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Story), args.Error(1)
}
func (m *MockStoryService) FindByID(ctx context.Context, storyID string) (*models.Story, error) {
	args := m.Called(ctx, storyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Story), args.Error(1)
}
func (m *MockStoryService) FindPublished(ctx context.Context, limit int) ([]models.Story, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Story), args.Error(1)
}
func (m *MockStoryService) FindRecent(ctx context.Context, limit int) ([]models.Story, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Story), args.Error(1)
}
func (m *MockStoryService) Publish(ctx context.Context, actor auth.Session, storyID string) error {
	args := m.Called(ctx, actor, storyID)
	return args.Error(0)
}
func (m *MockStoryService) ToggleFeatured(ctx context.Context, actor auth.Session, storyID string) error {
	args := m.Called(ctx, actor, storyID)
	return args.Error(0)
}
func (m *MockStoryService) Delete(ctx context.Context, actor auth.Session, storyID string) error {
	args := m.Called(ctx, actor, storyID)
	return args.Error(0)
}

// MockBannerService
type MockBannerService struct {
	mock.Mock
}

func (m *MockBannerService) Create(ctx context.Context, actor auth.Session, title, description, imageKey string) (*models.Banner, error) {
	args := m.Called(ctx, actor, title, description, imageKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Banner), args.Error(1)
}
func (m *MockBannerService) Update(ctx context.Context, actor auth.Session, bannerID string, updates map[string]interface{}) (*models.Banner, error) {
	args := m.Called(ctx, actor, bannerID, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Banner), args.Error(1)
}
func (m *MockBannerService) FindAll(ctx context.Context) ([]models.Banner, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Banner), args.Error(1)
}
func (m *MockBannerService) FindActive(ctx context.Context) (*models.Banner, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Banner), args.Error(1)
}
func (m *MockBannerService) Activate(ctx context.Context, actor auth.Session, bannerID string) error {
	args := m.Called(ctx, actor, bannerID)
	return args.Error(0)
}
func (m *MockBannerService) Deactivate(ctx context.Context, actor auth.Session, bannerID string) error {
	args := m.Called(ctx, actor, bannerID)
	return args.Error(0)
}
func (m *MockBannerService) Delete(ctx context.Context, actor auth.Session, bannerID string) error {
	args := m.Called(ctx, actor, bannerID)
	return args.Error(0)
}

// MockSettingsService
type MockSettingsService struct {
	mock.Mock
}

func (m *MockSettingsService) Load(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockSettingsService) Get(ctx context.Context, key string) (interface{}, error) {
	args := m.Called(ctx, key)
	return args.Get(0), args.Error(1)
}
func (m *MockSettingsService) GetString(ctx context.Context, key string, defaultValue string) string {
	args := m.Called(ctx, key, defaultValue)
	return args.String(0)
}
func (m *MockSettingsService) GetBool(ctx context.Context, key string, defaultValue bool) bool {
	args := m.Called(ctx, key, defaultValue)
	return args.Bool(0)
}
func (m *MockSettingsService) GetFloat64(ctx context.Context, key string, defaultValue float64) float64 {
	args := m.Called(ctx, key, defaultValue)
	return args.Get(0).(float64)
}
func (m *MockSettingsService) GetAll(ctx context.Context) ([]models.Setting, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Setting), args.Error(1)
}
func (m *MockSettingsService) Set(ctx context.Context, actor auth.Session, key string, value interface{}) error {
	args := m.Called(ctx, actor, key, value)
	return args.Error(0)
}
func (m *MockSettingsService) GetPaymentConfig(ctx context.Context) (*models.PaymentConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentConfig), args.Error(1)
}
func (m *MockSettingsService) SubscribeToChanges(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockStatsService
type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) ComputeStats(ctx context.Context) *models.DashboardStats {
	args := m.Called(ctx)
	return args.Get(0).(*models.DashboardStats)
}
func (m *MockStatsService) CachedStats(ctx context.Context) *models.DashboardStats {
	args := m.Called(ctx)
	return args.Get(0).(*models.DashboardStats)
}
func (m *MockStatsService) RefreshSnapshot(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockNotifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, n notify.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

// MockS3Storage
type MockS3Storage struct {
	mock.Mock
}

func (m *MockS3Storage) GeneratePresignedPutURL(ctx context.Context, userID, listingID, filename, contentType string) (string, string, error) {
	args := m.Called(ctx, userID, listingID, filename, contentType)
	return args.String(0), args.String(1), args.Error(2)
}
func (m *MockS3Storage) GetObject(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
func (m *MockS3Storage) PutObject(ctx context.Context, key, contentType string, body []byte) error {
	args := m.Called(ctx, key, contentType, body)
	return args.Error(0)
}
func (m *MockS3Storage) DeleteObject(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
func (m *MockS3Storage) PublicURL(key string) string {
	args := m.Called(key)
	return args.String(0)
}

// MockAsynqClient
type MockAsynqClient struct {
	mock.Mock
}

func (m *MockAsynqClient) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(task, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*asynq.TaskInfo), args.Error(1)
}
