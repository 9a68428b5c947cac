package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"pharma-plus/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *model.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockTokenIssuer is a mock implementation of TokenIssuer.
type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) Issue(u *model.User) (string, error) {
	args := m.Called(u)
	return args.String(0), args.Error(1)
}

// recorder captures auth outcomes.
type recorder struct {
	outcomes []string
}

func (r *recorder) RecordAuth(action, outcome string) {
	r.outcomes = append(r.outcomes, action+":"+outcome)
}

func newAuthService(repo *MockUserRepository, tokens *MockTokenIssuer, rec *recorder) AuthService {
	return NewAuthService(repo, tokens, zerolog.Nop(), WithRecorder(rec), WithHashCost(bcrypt.MinCost))
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("Success normalises handles and hashes password", func(t *testing.T) {
		repo := new(MockUserRepository)
		tokens := new(MockTokenIssuer)
		rec := &recorder{}
		svc := newAuthService(repo, tokens, rec)

		repo.On("GetByEmail", ctx, "asha@example.com").Return(nil, nil)
		repo.On("GetByUsername", ctx, "asha").Return(nil, nil)
		repo.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
			return u.Email == "asha@example.com" &&
				u.Username != nil && *u.Username == "asha" &&
				u.PasswordHash != "pw123456" &&
				bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("pw123456")) == nil
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*model.User).ID = uuid.New()
		}).Return(nil)
		tokens.On("Issue", mock.Anything).Return("signed-token", nil)

		resp, err := svc.Register(ctx, &model.SignupRequest{
			Name:     " Asha ",
			Email:    " Asha@Example.com ",
			Username: "ASHA",
			Password: "pw123456",
		})
		require.NoError(t, err)
		assert.Equal(t, "signed-token", resp.Token)
		assert.Equal(t, "Asha", resp.User.Name)
		assert.Equal(t, "asha@example.com", resp.User.Email)
		assert.Equal(t, []string{"register:success"}, rec.outcomes)

		repo.AssertExpectations(t)
		tokens.AssertExpectations(t)
	})

	t.Run("Missing fields", func(t *testing.T) {
		tests := []model.SignupRequest{
			{Email: "a@x.com", Password: "p"},
			{Name: "A", Password: "p"},
			{Name: "A", Email: "a@x.com"},
			{Name: "  ", Email: "a@x.com", Password: "p"},
		}
		for _, req := range tests {
			repo := new(MockUserRepository)
			svc := newAuthService(repo, new(MockTokenIssuer), &recorder{})

			_, err := svc.Register(ctx, &req)
			assert.Equal(t, model.KindValidation, model.KindOf(err))
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		}
	})

	t.Run("Password longer than bcrypt accepts", func(t *testing.T) {
		repo := new(MockUserRepository)
		rec := &recorder{}
		svc := newAuthService(repo, new(MockTokenIssuer), rec)

		_, err := svc.Register(ctx, &model.SignupRequest{
			Name:     "A",
			Email:    "a@x.com",
			Password: strings.Repeat("p", 73),
		})

		require.Error(t, err)
		assert.Equal(t, model.KindValidation, model.KindOf(err))
		assert.Contains(t, err.Error(), "at most 72 bytes")
		assert.Equal(t, []string{"register:rejected"}, rec.outcomes)
		repo.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
	})

	t.Run("Password at bcrypt limit", func(t *testing.T) {
		repo := new(MockUserRepository)
		tokens := new(MockTokenIssuer)
		svc := newAuthService(repo, tokens, &recorder{})
		password := strings.Repeat("p", 72)

		repo.On("GetByEmail", ctx, "a@x.com").Return(nil, nil)
		repo.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
			return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
		})).Return(nil)
		tokens.On("Issue", mock.Anything).Return("signed-token", nil)

		resp, err := svc.Register(ctx, &model.SignupRequest{Name: "A", Email: "a@x.com", Password: password})

		require.NoError(t, err)
		assert.Equal(t, "signed-token", resp.Token)
		repo.AssertExpectations(t)
	})

	t.Run("Email already registered", func(t *testing.T) {
		repo := new(MockUserRepository)
		rec := &recorder{}
		svc := newAuthService(repo, new(MockTokenIssuer), rec)
		repo.On("GetByEmail", ctx, "a@x.com").Return(&model.User{ID: uuid.New()}, nil)

		_, err := svc.Register(ctx, &model.SignupRequest{Name: "A", Email: "A@x.com", Password: "p"})
		assert.ErrorIs(t, err, model.ErrEmailTaken)
		assert.Equal(t, []string{"register:conflict"}, rec.outcomes)
	})

	t.Run("Username taken", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newAuthService(repo, new(MockTokenIssuer), &recorder{})
		repo.On("GetByEmail", ctx, "a@x.com").Return(nil, nil)
		repo.On("GetByUsername", ctx, "al").Return(&model.User{ID: uuid.New()}, nil)

		_, err := svc.Register(ctx, &model.SignupRequest{Name: "A", Email: "a@x.com", Username: "al", Password: "p"})
		assert.ErrorIs(t, err, model.ErrUsernameTaken)
	})

	t.Run("Unique index race surfaces as conflict", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newAuthService(repo, new(MockTokenIssuer), &recorder{})
		repo.On("GetByEmail", ctx, "a@x.com").Return(nil, nil)
		repo.On("Create", ctx, mock.Anything).Return(model.ErrEmailTaken)

		_, err := svc.Register(ctx, &model.SignupRequest{Name: "A", Email: "a@x.com", Password: "p"})
		assert.ErrorIs(t, err, model.ErrEmailTaken)
	})

	t.Run("Store failure is internal", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newAuthService(repo, new(MockTokenIssuer), &recorder{})
		repo.On("GetByEmail", ctx, "a@x.com").Return(nil, errors.New("database error"))

		_, err := svc.Register(ctx, &model.SignupRequest{Name: "A", Email: "a@x.com", Password: "p"})
		require.Error(t, err)
		assert.Equal(t, model.KindInternal, model.KindOf(err))
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &model.User{ID: uuid.New(), Name: "A", Email: "a@x.com", PasswordHash: string(hash)}

	tests := []struct {
		name        string
		req         model.LoginRequest
		setup       func(repo *MockUserRepository, tokens *MockTokenIssuer)
		expectError error
		expectKind  model.ErrorKind
		outcome     string
	}{
		{
			name: "Success by email",
			req:  model.LoginRequest{Email: " A@X.com", Password: "correct"},
			setup: func(repo *MockUserRepository, tokens *MockTokenIssuer) {
				repo.On("GetByEmail", ctx, "a@x.com").Return(user, nil)
				tokens.On("Issue", user).Return("signed-token", nil)
			},
			outcome: "login:success",
		},
		{
			name: "Success by username",
			req:  model.LoginRequest{Username: "Al", Password: "correct"},
			setup: func(repo *MockUserRepository, tokens *MockTokenIssuer) {
				repo.On("GetByUsername", ctx, "al").Return(user, nil)
				tokens.On("Issue", user).Return("signed-token", nil)
			},
			outcome: "login:success",
		},
		{
			name: "Wrong password",
			req:  model.LoginRequest{Email: "a@x.com", Password: "wrong"},
			setup: func(repo *MockUserRepository, tokens *MockTokenIssuer) {
				repo.On("GetByEmail", ctx, "a@x.com").Return(user, nil)
			},
			expectError: model.ErrInvalidCredentials,
			expectKind:  model.KindUnauthorized,
			outcome:     "login:rejected",
		},
		{
			name: "Unknown account",
			req:  model.LoginRequest{Email: "nobody@x.com", Password: "correct"},
			setup: func(repo *MockUserRepository, tokens *MockTokenIssuer) {
				repo.On("GetByEmail", ctx, "nobody@x.com").Return(nil, nil)
			},
			expectError: model.ErrInvalidCredentials,
			expectKind:  model.KindUnauthorized,
			outcome:     "login:rejected",
		},
		{
			name:        "Password longer than bcrypt accepts",
			req:         model.LoginRequest{Email: "a@x.com", Password: strings.Repeat("p", 73)},
			setup:       func(*MockUserRepository, *MockTokenIssuer) {},
			expectError: model.ErrInvalidCredentials,
			expectKind:  model.KindUnauthorized,
			outcome:     "login:rejected",
		},
		{
			name:       "Missing password",
			req:        model.LoginRequest{Email: "a@x.com"},
			setup:      func(*MockUserRepository, *MockTokenIssuer) {},
			expectKind: model.KindValidation,
			outcome:    "login:rejected",
		},
		{
			name:       "Missing handle",
			req:        model.LoginRequest{Password: "correct"},
			setup:      func(*MockUserRepository, *MockTokenIssuer) {},
			expectKind: model.KindValidation,
			outcome:    "login:rejected",
		},
		{
			name: "Token signing failure",
			req:  model.LoginRequest{Email: "a@x.com", Password: "correct"},
			setup: func(repo *MockUserRepository, tokens *MockTokenIssuer) {
				repo.On("GetByEmail", ctx, "a@x.com").Return(user, nil)
				tokens.On("Issue", user).Return("", errors.New("sign failed"))
			},
			expectKind: model.KindInternal,
			outcome:    "login:error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			tokens := new(MockTokenIssuer)
			rec := &recorder{}
			tt.setup(repo, tokens)
			svc := newAuthService(repo, tokens, rec)

			resp, err := svc.Login(ctx, &tt.req)

			if tt.expectKind != "" {
				require.Error(t, err)
				assert.Equal(t, tt.expectKind, model.KindOf(err))
				if tt.expectError != nil {
					assert.ErrorIs(t, err, tt.expectError)
				}
				assert.Nil(t, resp)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "signed-token", resp.Token)
				assert.Equal(t, user.ID, resp.User.ID)
			}
			assert.Equal(t, []string{tt.outcome}, rec.outcomes)

			repo.AssertExpectations(t)
			tokens.AssertExpectations(t)
		})
	}
}
