package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pharma-plus/internal/model"
	"pharma-plus/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// MockAuthService is a mock implementation of AuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, req *model.SignupRequest) (*model.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthResponse), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthResponse), args.Error(1)
}

func testAuthResponse() *model.AuthResponse {
	return &model.AuthResponse{
		User: model.PublicUser{
			ID:        uuid.New(),
			Name:      "Asha",
			Email:     "asha@example.com",
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		Token: "signed-token",
	}
}

func TestAuthHandler_Signup(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		mockReturn     *model.AuthResponse
		mockError      error
		expectService  bool
		expectedStatus int
	}{
		{
			name:           "Success",
			body:           `{"name":"Asha","email":"asha@example.com","password":"pw"}`,
			mockReturn:     testAuthResponse(),
			expectService:  true,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Malformed JSON",
			body:           `name=asha`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Missing fields",
			body:           `{"email":"asha@example.com"}`,
			mockError:      model.NewValidationError(model.ErrCodeMissingField, "Missing fields"),
			expectService:  true,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Email taken",
			body:           `{"name":"Asha","email":"asha@example.com","password":"pw"}`,
			mockError:      model.ErrEmailTaken,
			expectService:  true,
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockAuthService)
			handler := NewAuthHandler(mockService, zerolog.Nop())

			if tt.expectService {
				if tt.mockReturn != nil {
					mockService.On("Register", mock.Anything, mock.AnythingOfType("*model.SignupRequest")).Return(tt.mockReturn, nil)
				} else {
					mockService.On("Register", mock.Anything, mock.AnythingOfType("*model.SignupRequest")).Return(nil, tt.mockError)
				}
			}

			req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.Signup(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedStatus == http.StatusCreated {
				var body struct {
					User  map[string]any `json:"user"`
					Token string         `json:"token"`
				}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, "signed-token", body.Token)
				assert.Equal(t, "asha@example.com", body.User["email"])
				assert.NotContains(t, body.User, "password")
				assert.NotContains(t, body.User, "passwordHash")
			}

			if tt.expectService {
				mockService.AssertExpectations(t)
			} else {
				mockService.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		mockReturn     *model.AuthResponse
		mockError      error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Success",
			body:           `{"email":"asha@example.com","password":"pw"}`,
			mockReturn:     testAuthResponse(),
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Invalid credentials",
			body:           `{"email":"asha@example.com","password":"wrong"}`,
			mockError:      model.ErrInvalidCredentials,
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"error":"Invalid credentials"}`,
		},
		{
			name:           "Missing fields",
			body:           `{}`,
			mockError:      model.NewValidationError(model.ErrCodeMissingField, "Missing fields"),
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Missing fields"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockAuthService)
			handler := NewAuthHandler(mockService, zerolog.Nop())

			if tt.mockReturn != nil {
				mockService.On("Login", mock.Anything, mock.AnythingOfType("*model.LoginRequest")).Return(tt.mockReturn, nil)
			} else {
				mockService.On("Login", mock.Anything, mock.AnythingOfType("*model.LoginRequest")).Return(nil, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.Login(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, w.Body.String())
			}
			mockService.AssertExpectations(t)
		})
	}
}

// emptyUserRepository has no accounts and accepts every insert.
type emptyUserRepository struct{}

func (emptyUserRepository) Create(_ context.Context, u *model.User) error {
	u.ID = uuid.New()
	return nil
}

func (emptyUserRepository) GetByEmail(context.Context, string) (*model.User, error) {
	return nil, nil
}

func (emptyUserRepository) GetByUsername(context.Context, string) (*model.User, error) {
	return nil, nil
}

type fixedIssuer struct{}

func (fixedIssuer) Issue(*model.User) (string, error) { return "signed-token", nil }

func TestAuthHandler_PasswordLength(t *testing.T) {
	authService := service.NewAuthService(emptyUserRepository{}, fixedIssuer{}, zerolog.Nop(),
		service.WithHashCost(bcrypt.MinCost))
	handler := NewAuthHandler(authService, zerolog.Nop())

	tests := []struct {
		name           string
		path           string
		password       string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Signup at the bcrypt limit",
			path:           "/api/auth/signup",
			password:       strings.Repeat("p", 72),
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Signup over the bcrypt limit",
			path:           "/api/auth/signup",
			password:       strings.Repeat("p", 73),
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"password must be at most 72 bytes"}`,
		},
		{
			name:           "Login over the bcrypt limit",
			path:           "/api/auth/login",
			password:       strings.Repeat("p", 73),
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"error":"Invalid credentials"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := json.Marshal(map[string]string{
				"name":     "Asha",
				"email":    "asha@example.com",
				"password": tt.password,
			})
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(string(body)))
			w := httptest.NewRecorder()

			if tt.path == "/api/auth/login" {
				handler.Login(w, req)
			} else {
				handler.Signup(w, req)
			}

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, w.Body.String())
			}
		})
	}
}
