package handlers

import (
	"bytes"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/welldanyogia/sjajred-backend/internal/api/middleware"
	apperrors "github.com/welldanyogia/sjajred-backend/internal/errors"
	"github.com/welldanyogia/sjajred-backend/internal/logger"
	"github.com/welldanyogia/sjajred-backend/internal/models"
)

// InquiryHandlerTestSuite is the test suite for InquiryHandler
type InquiryHandlerTestSuite struct {
	suite.Suite
	echo          *echo.Echo
	handler       *InquiryHandler
	mockInquiries *MockInquiryService
	mockCatalog   *MockCatalogService
	auditLog      *bytes.Buffer
}

// SetupTest runs before each test
func (s *InquiryHandlerTestSuite) SetupTest() {
	s.echo = echo.New()
	s.mockInquiries = new(MockInquiryService)
	s.mockCatalog = new(MockCatalogService)
	s.auditLog = new(bytes.Buffer)
	secLogger := logger.NewSecurityLoggerWithHandler(slog.NewJSONHandler(s.auditLog, nil))
	s.handler = NewInquiryHandler(s.mockInquiries, s.mockCatalog, secLogger)
}

// TearDownTest runs after each test
func (s *InquiryHandlerTestSuite) TearDownTest() {
	s.mockInquiries.AssertExpectations(s.T())
	s.mockCatalog.AssertExpectations(s.T())
}

// TestInquiryHandlerTestSuite runs the test suite
func TestInquiryHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(InquiryHandlerTestSuite))
}

func (s *InquiryHandlerTestSuite) contextFor(method, path, body, id string, user *models.User) (echo.Context, *bytes.Buffer, func() int) {
	c, rec := newTestContext(s.echo, method, path, body)
	c.SetParamNames("id")
	c.SetParamValues(id)
	if user != nil {
		middleware.SetCurrentUser(c, user)
	}
	return c, rec.Body, func() int { return rec.Code }
}

// ==================== Open Tests ====================

func (s *InquiryHandlerTestSuite) TestOpenForCleaner_UsesProfileRef() {
	// Arrange
	c, body, code := s.contextFor(http.MethodPost, "/api/cleaners/c-1/inquiries", `{"message":"Trebam dubinsko čišćenje stana od 60 m2."}`, "c-1", testClient)
	profile := testProfile("c-1", "Ana Horvat", "Zagreb")
	s.mockCatalog.On("Get", "c-1").Return(&profile, nil)
	s.mockInquiries.On("OpenInquiry", mock.Anything, testClient, profile.Ref(), "Trebam dubinsko čišćenje stana od 60 m2.").
		Return(testInquiry("i-1", false), nil)

	// Act
	err := s.handler.OpenForCleaner(c)

	// Assert
	s.NoError(err)
	s.Equal(http.StatusCreated, code())
	s.Contains(body.String(), `"id":"i-1"`)
	s.Contains(body.String(), `"is_read":false`)
}

func (s *InquiryHandlerTestSuite) TestOpenForCleaner_UnknownCleaner() {
	// Arrange
	c, _, code := s.contextFor(http.MethodPost, "/api/cleaners/nope/inquiries", `{"message":"Pozdrav"}`, "nope", testClient)
	s.mockCatalog.On("Get", "nope").Return(nil, apperrors.ErrCleanerNotFound)

	// Act
	err := s.handler.OpenForCleaner(c)

	// Assert
	s.NoError(err)
	s.Equal(http.StatusNotFound, code())
}

func (s *InquiryHandlerTestSuite) TestOpen_ExplicitRecipient() {
	// Arrange
	payload := `{"cleaner_id":"c-1","cleaner_name":"Ana Horvat","cleaner_email":"ana.horvat@example.com","message":"Pozdrav"}`
	c, _, code := s.contextFor(http.MethodPost, "/api/inquiries", payload, "", testClient)
	ref := models.CleanerRef{ID: "c-1", Name: "Ana Horvat", Email: "ana.horvat@example.com"}
	s.mockInquiries.On("OpenInquiry", mock.Anything, testClient, ref, "Pozdrav").Return(testInquiry("i-1", false), nil)

	// Act
	err := s.handler.Open(c)

	// Assert
	s.NoError(err)
	s.Equal(http.StatusCreated, code())
}

func (s *InquiryHandlerTestSuite) TestOpen_BlankMessageRejected() {
	// Arrange
	payload := `{"cleaner_id":"c-1","cleaner_name":"Ana Horvat","cleaner_email":"ana.horvat@example.com","message":"   "}`
	c, body, code := s.contextFor(http.MethodPost, "/api/inquiries", payload, "", testClient)
	s.mockInquiries.On("OpenInquiry", mock.Anything, testClient, mock.Anything, "   ").
		Return(nil, apperrors.NewValidationError("message", "must not be empty"))

	// Act
	err := s.handler.Open(c)

	// Assert
	s.NoError(err)
	s.Equal(http.StatusBadRequest, code())
	s.Contains(body.String(), `"field":"message"`)
}

func (s *InquiryHandlerTestSuite) TestOpen_OverlongMessageRejected() {
	// Arrange
	payload := `{"cleaner_id":"c-1","cleaner_name":"Ana","cleaner_email":"a@example.com","message":"` + strings.Repeat("a", 5001) + `"}`
	c, _, code := s.contextFor(http.MethodPost, "/api/inquiries", payload, "", testClient)

	// Act
	err := s.handler.Open(c)

	// Assert
	s.NoError(err)
	s.Equal(http.StatusBadRequest, code())
	s.mockInquiries.AssertNotCalled(s.T(), "OpenInquiry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// ==================== Get Tests ====================

func (s *InquiryHandlerTestSuite) TestGet_Found() {
	// Arrange
	c, body, code := s.contextFor(http.MethodGet, "/api/inquiries/i-1", "", "i-1", nil)
	s.mockInquiries.On("GetInquiry", "i-1").Return(testInquiry("i-1", true), nil)

	// Act
	err := s.handler.Get(c)

	// Assert
	s.NoError(err)
	s.Equal(http.StatusOK, code())
	s.Contains(body.String(), `"replies":[]`)
}

func (s *InquiryHandlerTestSuite) TestGet_NotFound() {
	// Arrange
	c, _, code := s.contextFor(http.MethodGet, "/api/inquiries/missing", "", "missing", nil)
	s.mockInquiries.On("GetInquiry", "missing").Return(nil, apperrors.ErrInquiryNotFound)

	// Act
	err := s.handler.Get(c)

	// Assert
	s.NoError(err)
	s.Equal(http.StatusNotFound, code())
}

// ==================== MarkRead Tests ====================

func (s *InquiryHandlerTestSuite) TestMarkRead_ByRecipient() {
	// Arrange
	c, _, code := s.contextFor(http.MethodPatch, "/api/inquiries/i-1/read", "", "i-1", testCleaner)
	s.mockInquiries.On("GetInquiry", "i-1").Return(testInquiry("i-1", false), nil)
	s.mockInquiries.On("MarkRead", mock.Anything, "i-1").Return(nil)

	// Act
	err := s.handler.MarkRead(c)

	// Assert
	s.NoError(err)
	s.Equal(http.StatusOK, code())
	s.Empty(s.auditLog.String())
}

func (s *InquiryHandlerTestSuite) TestMarkRead_NonParticipantIsAuditedButAllowed() {
	// Arrange
	c, _, code := s.contextFor(http.MethodPatch, "/api/inquiries/i-1/read", "", "i-1", testOther)
	s.mockInquiries.On("GetInquiry", "i-1").Return(testInquiry("i-1", false), nil)
	s.mockInquiries.On("MarkRead", mock.Anything, "i-1").Return(nil)

	// Act
	err := s.handler.MarkRead(c)

	// Assert
	s.NoError(err)
	s.Equal(http.StatusOK, code())
	s.Contains(s.auditLog.String(), "non_participant_mutation")
	s.Contains(s.auditLog.String(), "u-other")
}

func (s *InquiryHandlerTestSuite) TestMarkRead_MissingIsNoop() {
	// Arrange
	c, _, code := s.contextFor(http.MethodPatch, "/api/inquiries/gone/read", "", "gone", testCleaner)
	s.mockInquiries.On("GetInquiry", "gone").Return(nil, apperrors.ErrInquiryNotFound)
	s.mockInquiries.On("MarkRead", mock.Anything, "gone").Return(nil)

	// Act
	err := s.handler.MarkRead(c)

	// Assert
	s.NoError(err)
	s.Equal(http.StatusOK, code())
}

func (s *InquiryHandlerTestSuite) TestMarkRead_StoreClosed() {
	// Arrange
	c, _, code := s.contextFor(http.MethodPatch, "/api/inquiries/i-1/read", "", "i-1", testCleaner)
	s.mockInquiries.On("GetInquiry", "i-1").Return(testInquiry("i-1", false), nil)
	s.mockInquiries.On("MarkRead", mock.Anything, "i-1").Return(apperrors.ErrStoreClosed)

	// Act
	err := s.handler.MarkRead(c)

	// Assert
	s.NoError(err)
	s.Equal(http.StatusServiceUnavailable, code())
}

// ==================== Reply Tests ====================

func (s *InquiryHandlerTestSuite) TestReply_Success() {
	// Arrange
	c, body, code := s.contextFor(http.MethodPost, "/api/inquiries/i-1/replies", `{"text":"Može u petak."}`, "i-1", testCleaner)
	reply := &models.MessageReply{ID: "r-1", SenderID: testCleaner.ID, SenderName: testCleaner.FullName, Text: "Može u petak."}
	s.mockInquiries.On("GetInquiry", "i-1").Return(testInquiry("i-1", true), nil)
	s.mockInquiries.On("Reply", mock.Anything, "i-1", testCleaner, "Može u petak.").Return(reply, nil)

	// Act
	err := s.handler.Reply(c)

	// Assert
	s.NoError(err)
	s.Equal(http.StatusCreated, code())
	s.Contains(body.String(), `"id":"r-1"`)
}

func (s *InquiryHandlerTestSuite) TestReply_MissingInquiry() {
	// Arrange
	c, body, code := s.contextFor(http.MethodPost, "/api/inquiries/gone/replies", `{"text":"Hvala"}`, "gone", testClient)
	s.mockInquiries.On("GetInquiry", "gone").Return(nil, apperrors.ErrInquiryNotFound)
	s.mockInquiries.On("Reply", mock.Anything, "gone", testClient, "Hvala").Return(nil, nil)

	// Act
	err := s.handler.Reply(c)

	// Assert
	s.NoError(err)
	s.Equal(http.StatusOK, code())
	s.Contains(body.String(), "no longer exists")
}

func (s *InquiryHandlerTestSuite) TestReply_BlankText() {
	// Arrange
	c, _, code := s.contextFor(http.MethodPost, "/api/inquiries/i-1/replies", `{"text":""}`, "i-1", testClient)
	s.mockInquiries.On("GetInquiry", "i-1").Return(testInquiry("i-1", true), nil)
	s.mockInquiries.On("Reply", mock.Anything, "i-1", testClient, "").
		Return(nil, apperrors.NewValidationError("text", "must not be empty"))

	// Act
	err := s.handler.Reply(c)

	// Assert
	s.NoError(err)
	s.Equal(http.StatusBadRequest, code())
}

// ==================== Delete Tests ====================

func (s *InquiryHandlerTestSuite) TestDelete_Success() {
	// Arrange
	c, _, code := s.contextFor(http.MethodDelete, "/api/inquiries/i-1", "", "i-1", testClient)
	s.mockInquiries.On("GetInquiry", "i-1").Return(testInquiry("i-1", true), nil)
	s.mockInquiries.On("DeleteInquiry", mock.Anything, "i-1").Return(nil)

	// Act
	err := s.handler.Delete(c)

	// Assert
	s.NoError(err)
	s.Equal(http.StatusNoContent, code())
	s.Empty(s.auditLog.String())
}

func (s *InquiryHandlerTestSuite) TestDelete_AnonymousIsAudited() {
	// Arrange
	c, _, code := s.contextFor(http.MethodDelete, "/api/inquiries/i-1", "", "i-1", nil)
	s.mockInquiries.On("GetInquiry", "i-1").Return(testInquiry("i-1", true), nil)
	s.mockInquiries.On("DeleteInquiry", mock.Anything, "i-1").Return(nil)

	// Act
	err := s.handler.Delete(c)

	// Assert
	s.NoError(err)
	s.Equal(http.StatusNoContent, code())
	s.Contains(s.auditLog.String(), "anonymous")
}

func (s *InquiryHandlerTestSuite) TestDelete_PersistenceFailure() {
	// Arrange
	c, _, code := s.contextFor(http.MethodDelete, "/api/inquiries/i-1", "", "i-1", testClient)
	s.mockInquiries.On("GetInquiry", "i-1").Return(testInquiry("i-1", true), nil)
	s.mockInquiries.On("DeleteInquiry", mock.Anything, "i-1").Return(apperrors.ErrPersistence)

	// Act
	err := s.handler.Delete(c)

	// Assert
	s.NoError(err)
	s.Equal(http.StatusInternalServerError, code())
}
