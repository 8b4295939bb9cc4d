package handlers

import (
	"context"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/welldanyogia/sjajred-backend/internal/catalog"
	"github.com/welldanyogia/sjajred-backend/internal/models"
)

// MockInquiryService is a mock implementation of InquiryService
type MockInquiryService struct {
	mock.Mock
}

func (m *MockInquiryService) OpenInquiry(ctx context.Context, sender *models.User, cleaner models.CleanerRef, message string) (*models.Inquiry, error) {
	args := m.Called(ctx, sender, cleaner, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Inquiry), args.Error(1)
}

func (m *MockInquiryService) MarkRead(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockInquiryService) Reply(ctx context.Context, id string, author *models.User, text string) (*models.MessageReply, error) {
	args := m.Called(ctx, id, author, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MessageReply), args.Error(1)
}

func (m *MockInquiryService) DeleteInquiry(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockInquiryService) GetInquiry(id string) (*models.Inquiry, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Inquiry), args.Error(1)
}

func (m *MockInquiryService) ListReceived(user *models.User) []models.Inquiry {
	args := m.Called(user)
	return args.Get(0).([]models.Inquiry)
}

func (m *MockInquiryService) ListSent(user *models.User) []models.Inquiry {
	args := m.Called(user)
	return args.Get(0).([]models.Inquiry)
}

func (m *MockInquiryService) UnreadCount(user *models.User) int {
	args := m.Called(user)
	return args.Int(0)
}

// MockCatalogService is a mock implementation of CatalogService
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) List(f catalog.Filter) []models.CleanerProfile {
	args := m.Called(f)
	return args.Get(0).([]models.CleanerProfile)
}

func (m *MockCatalogService) Get(id string) (*models.CleanerProfile, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CleanerProfile), args.Error(1)
}

func (m *MockCatalogService) Create(ctx context.Context, in models.NewProfileInput) (*models.CleanerProfile, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CleanerProfile), args.Error(1)
}

func (m *MockCatalogService) AddReview(ctx context.Context, cleanerID string, author *models.User, rating int, comment string) (*models.CleanerProfile, error) {
	args := m.Called(ctx, cleanerID, author, rating, comment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CleanerProfile), args.Error(1)
}

// MockSessionService is a mock implementation of SessionService
type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) Login(ctx context.Context, email string, role models.Role) (*models.Session, error) {
	args := m.Called(ctx, email, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionService) Register(ctx context.Context, fullName, email string, role models.Role) (*models.Session, error) {
	args := m.Called(ctx, fullName, email, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionService) Logout(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// MockAssistant is a mock implementation of Assistant
type MockAssistant struct {
	mock.Mock
}

func (m *MockAssistant) OptimizeBio(ctx context.Context, rawBio string, services []models.ServiceType) string {
	args := m.Called(ctx, rawBio, services)
	return args.String(0)
}

func (m *MockAssistant) SuggestServices(ctx context.Context, experience string) []models.ServiceType {
	args := m.Called(ctx, experience)
	return args.Get(0).([]models.ServiceType)
}

// newTestContext builds a JSON request context on e
func newTestContext(e *echo.Echo, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

var (
	testClient  = &models.User{ID: "u-client", FullName: "Petra Novak", Email: "petra@example.com", Role: models.RoleClient}
	testCleaner = &models.User{ID: "u-cleaner", FullName: "Ana Horvat", Email: "ana.horvat@example.com", Role: models.RoleCleaner}
	testOther   = &models.User{ID: "u-other", FullName: "Marko Marić", Email: "marko@example.com", Role: models.RoleClient}
)

func testInquiry(id string, isRead bool) *models.Inquiry {
	return &models.Inquiry{
		ID:           id,
		SenderID:     testClient.ID,
		SenderName:   testClient.FullName,
		SenderEmail:  testClient.Email,
		CleanerID:    "c-1",
		CleanerName:  testCleaner.FullName,
		CleanerEmail: "Ana.Horvat@example.com",
		Message:      "Trebam dubinsko čišćenje stana od 60 m2.",
		Date:         "12. 3. 2025. 10:15:00",
		IsRead:       isRead,
		Replies:      []models.MessageReply{},
	}
}
