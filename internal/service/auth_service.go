package service

import (
	"context"
	"fmt"
	"strings"

	"pharma-plus/internal/model"
	"pharma-plus/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// Auth actions and outcomes reported to the recorder.
const (
	ActionRegister = "register"
	ActionLogin    = "login"

	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
)

// maxPasswordBytes is the longest password bcrypt accepts.
const maxPasswordBytes = 72

// authService implements AuthService.
type authService struct {
	userRepo repository.UserRepository
	tokens   TokenIssuer
	recorder AuthRecorder
	cost     int
	logger   zerolog.Logger
}

// AuthOption customises an AuthService.
type AuthOption func(*authService)

// WithRecorder reports auth outcomes to r.
func WithRecorder(r AuthRecorder) AuthOption {
	return func(s *authService) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithHashCost overrides the bcrypt cost.
func WithHashCost(cost int) AuthOption {
	return func(s *authService) {
		s.cost = cost
	}
}

// NewAuthService creates a new credential service.
func NewAuthService(userRepo repository.UserRepository, tokens TokenIssuer, logger zerolog.Logger, opts ...AuthOption) AuthService {
	s := &authService{
		userRepo: userRepo,
		tokens:   tokens,
		recorder: nopRecorder{},
		cost:     bcrypt.DefaultCost,
		logger:   logger.With().Str("service", "auth").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an account.
func (s *authService) Register(ctx context.Context, req *model.SignupRequest) (*model.AuthResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := model.NormaliseHandle(req.Email)
	username := model.NormaliseHandle(req.Username)

	if name == "" || email == "" || req.Password == "" {
		s.recorder.RecordAuth(ActionRegister, OutcomeRejected)
		return nil, model.NewValidationError(model.ErrCodeMissingField, "Missing fields")
	}
	if len(req.Password) > maxPasswordBytes {
		s.recorder.RecordAuth(ActionRegister, OutcomeRejected)
		return nil, model.NewValidationError(model.ErrCodeInvalidField, "password must be at most 72 bytes")
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		s.recorder.RecordAuth(ActionRegister, OutcomeError)
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}
	if existing != nil {
		s.recorder.RecordAuth(ActionRegister, OutcomeConflict)
		return nil, model.ErrEmailTaken
	}

	if username != "" {
		existing, err := s.userRepo.GetByUsername(ctx, username)
		if err != nil {
			s.recorder.RecordAuth(ActionRegister, OutcomeError)
			return nil, fmt.Errorf("failed to look up username: %w", err)
		}
		if existing != nil {
			s.recorder.RecordAuth(ActionRegister, OutcomeConflict)
			return nil, model.ErrUsernameTaken
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		s.recorder.RecordAuth(ActionRegister, OutcomeError)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	}
	if username != "" {
		user.Username = &username
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// A concurrent signup can win the unique index after the lookups above.
		if model.KindOf(err) == model.KindConflict {
			s.recorder.RecordAuth(ActionRegister, OutcomeConflict)
			return nil, err
		}
		s.recorder.RecordAuth(ActionRegister, OutcomeError)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	resp, err := s.respond(user)
	if err != nil {
		s.recorder.RecordAuth(ActionRegister, OutcomeError)
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("account registered")
	s.recorder.RecordAuth(ActionRegister, OutcomeSuccess)
	return resp, nil
}

// Login verifies credentials. Unknown accounts and wrong passwords are
// indistinguishable to the caller.
func (s *authService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	email := model.NormaliseHandle(req.Email)
	username := model.NormaliseHandle(req.Username)

	if (email == "" && username == "") || req.Password == "" {
		s.recorder.RecordAuth(ActionLogin, OutcomeRejected)
		return nil, model.NewValidationError(model.ErrCodeMissingField, "Missing fields")
	}
	// No stored account can have a longer password.
	if len(req.Password) > maxPasswordBytes {
		s.recorder.RecordAuth(ActionLogin, OutcomeRejected)
		return nil, model.ErrInvalidCredentials
	}

	var (
		user *model.User
		err  error
	)
	if email != "" {
		user, err = s.userRepo.GetByEmail(ctx, email)
	} else {
		user, err = s.userRepo.GetByUsername(ctx, username)
	}
	if err != nil {
		s.recorder.RecordAuth(ActionLogin, OutcomeError)
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if user == nil {
		s.logger.Debug().Msg("login for unknown account")
		s.recorder.RecordAuth(ActionLogin, OutcomeRejected)
		return nil, model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Debug().Str("user_id", user.ID.String()).Msg("login with wrong password")
		s.recorder.RecordAuth(ActionLogin, OutcomeRejected)
		return nil, model.ErrInvalidCredentials
	}

	resp, err := s.respond(user)
	if err != nil {
		s.recorder.RecordAuth(ActionLogin, OutcomeError)
		return nil, err
	}

	s.recorder.RecordAuth(ActionLogin, OutcomeSuccess)
	return resp, nil
}

func (s *authService) respond(user *model.User) (*model.AuthResponse, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID.String()).Msg("failed to issue token")
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &model.AuthResponse{
		User:  user.Public(),
		Token: token,
	}, nil
}
