package user

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/divvyapp/divvy/internal/auth"
)

// Common errors
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already registered")
)

// Service handles user business logic
type Service struct {
	repo       *Repository
	jwtManager *auth.JWTManager
}

// NewService creates a new user service
func NewService(repo *Repository, jwtManager *auth.JWTManager) *Service {
	return &Service{
		repo:       repo,
		jwtManager: jwtManager,
	}
}

// Register creates an account with a hashed password and returns the user
// with a session token.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*User, string, error) {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, "", err
	}

	existing, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", ErrEmailExists
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}

	u, err := s.repo.Create(ctx, &User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, "", err
	}

	token, err := s.jwtManager.Generate(u.ID, u.Email)
	if err != nil {
		return nil, "", err
	}

	return u, token, nil
}

// Login verifies credentials and returns the user with a session token
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*User, string, error) {
	u, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", err
	}
	if u == nil {
		return nil, "", auth.ErrInvalidCredentials
	}

	if err := auth.CheckPassword(u.PasswordHash, req.Password); err != nil {
		return nil, "", err
	}

	token, err := s.jwtManager.Generate(u.ID, u.Email)
	if err != nil {
		return nil, "", err
	}

	return u, token, nil
}

// GetByID retrieves a user
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// Search finds users by username or email prefix
func (s *Service) Search(ctx context.Context, query string, limit int) ([]*User, error) {
	if limit < 1 || limit > 50 {
		limit = 10
	}
	return s.repo.Search(ctx, query, limit)
}
