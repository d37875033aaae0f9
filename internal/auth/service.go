package auth

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/MikeMC777/ecommerce-api/internal/apperr"
	"github.com/MikeMC777/ecommerce-api/internal/user"
)

var (
	ErrBadCredentials  = apperr.Unauthorized("Incorrect email or password")
	ErrUnauthenticated = apperr.Unauthorized("Please authenticate")
)

type RegisterRequest struct {
	Name     string `json:"name"     binding:"required"                  example:"Ana Pérez"`
	Email    string `json:"email"    binding:"required,email"            example:"ana@mail.com"`
	Password string `json:"password" binding:"required"                  example:"password1"`
	Role     string `json:"role"     binding:"required,oneof=user admin" example:"user"`
}

type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LogoutRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type Service struct {
	users  user.Repository
	tokens TokenStore
	issuer *Issuer
}

func NewService(users user.Repository, tokens TokenStore, issuer *Issuer) *Service {
	return &Service{users: users, tokens: tokens, issuer: issuer}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*user.User, Tokens, error) {
	if err := user.ValidatePassword(req.Password); err != nil {
		return nil, Tokens{}, err
	}
	hash, err := user.HashPassword(req.Password)
	if err != nil {
		return nil, Tokens{}, apperr.Internal(err)
	}
	u := &user.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        strings.ToLower(req.Email),
		PasswordHash: hash,
		Role:         req.Role,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, Tokens{}, err
	}
	toks, err := s.issue(ctx, u.ID)
	if err != nil {
		return nil, Tokens{}, err
	}
	log.Printf("[auth] registered user=%s role=%s", u.ID, u.Role)
	return u, toks, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*user.User, Tokens, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(req.Email))
	if errors.Is(err, user.ErrNotFound) {
		return nil, Tokens{}, ErrBadCredentials
	}
	if err != nil {
		return nil, Tokens{}, err
	}
	if !user.CheckPassword(u.PasswordHash, req.Password) {
		return nil, Tokens{}, ErrBadCredentials
	}
	toks, err := s.issue(ctx, u.ID)
	if err != nil {
		return nil, Tokens{}, err
	}
	return u, toks, nil
}

// Logout blacklists every stored token of the user owning email.
func (s *Service) Logout(ctx context.Context, req LogoutRequest) (*user.User, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(req.Email))
	if err != nil {
		return nil, err
	}
	if err := s.tokens.BlacklistByUser(ctx, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

// Refresh rotates a refresh token: the presented one is deleted and a new
// pair is issued.
func (s *Service) Refresh(ctx context.Context, req RefreshRequest) (Tokens, error) {
	claims, err := s.issuer.Verify(req.RefreshToken, TypeRefresh)
	if err != nil {
		return Tokens{}, apperr.Unauthorized("Invalid token")
	}
	stored, err := s.tokens.FindValid(ctx, req.RefreshToken, claims.Subject, TypeRefresh)
	if err != nil {
		return Tokens{}, err
	}
	if stored == nil {
		return Tokens{}, apperr.Unauthorized("Token not found")
	}
	u, err := s.users.GetByID(ctx, claims.Subject)
	if errors.Is(err, user.ErrNotFound) {
		return Tokens{}, apperr.Unauthorized("User not found")
	}
	if err != nil {
		return Tokens{}, err
	}
	if err := s.tokens.Delete(ctx, stored.ID); err != nil {
		return Tokens{}, err
	}
	return s.issue(ctx, u.ID)
}

// Authenticate resolves a bearer access token to its user.
func (s *Service) Authenticate(ctx context.Context, token string) (*user.User, error) {
	claims, err := s.issuer.Verify(token, TypeAccess)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	u, err := s.users.GetByID(ctx, claims.Subject)
	if errors.Is(err, user.ErrNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) issue(ctx context.Context, userID string) (Tokens, error) {
	toks, err := s.issuer.Pair(userID)
	if err != nil {
		return Tokens{}, apperr.Internal(err)
	}
	err = s.tokens.Create(ctx, &Token{
		ID:      uuid.NewString(),
		Token:   toks.Refresh.Token,
		UserID:  userID,
		Type:    TypeRefresh,
		Expires: toks.Refresh.Expires,
	})
	if err != nil {
		return Tokens{}, err
	}
	return toks, nil
}
