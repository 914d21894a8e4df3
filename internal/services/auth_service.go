package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SAP-F-2025/yds-assistant-service/internal/models"
	"github.com/SAP-F-2025/yds-assistant-service/internal/repositories"
	"github.com/SAP-F-2025/yds-assistant-service/internal/validator"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

const tokenIssuer = "yds-assistant-service"

type LoginRequest struct {
	Username string `json:"username" validate:"required,username"`
}

type LoginResponse struct {
	Token      string       `json:"token"`
	ExpiresAt  time.Time    `json:"expires_at"`
	User       *models.User `json:"user"`
	FirstLogin bool         `json:"first_login"`
}

// Claims identifies the user behind a bearer token.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error)
	ValidateToken(tokenString string) (*Claims, error)
	GetUser(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error)
}

type authService struct {
	repo      repositories.Repository
	logger    *ServiceLogger
	validator *validator.Validator
	secret    []byte
	ttl       time.Duration
	now       func() time.Time
}

func NewAuthService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, secret string, ttl time.Duration) AuthService {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &authService{
		repo:      repo,
		logger:    NewServiceLogger(logger, LogConfig{Service: "auth"}),
		validator: validator,
		secret:    []byte(secret),
		ttl:       ttl,
		now:       time.Now,
	}
}

// NormalizeUsername is the storage key for a login name; lookups are
// case-insensitive.
func NormalizeUsername(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (resp *LoginResponse, err error) {
	op := s.logger.WithOperation(ctx, "login", NormalizeUsername(req.Username))
	defer func() { op.LogResult("", "user", err) }()

	if err = s.validator.Validate(req); err != nil {
		return nil, err
	}

	now := s.now()
	user := &models.User{
		Username:    NormalizeUsername(req.Username),
		DisplayName: strings.TrimSpace(req.Username),
	}
	var firstLogin bool
	err = s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		existing, err := s.repo.User().GetByUsername(ctx, tx, user.Username)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			firstLogin = true
		case err != nil:
			return err
		default:
			// the name as first typed stays the display name
			user.DisplayName = existing.DisplayName
			user.CreatedAt = existing.CreatedAt
		}
		return s.repo.User().Touch(ctx, tx, user, now)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}

	expiresAt := now.Add(s.ttl)
	token, err := s.issueToken(user.Username, now, expiresAt)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{Token: token, ExpiresAt: expiresAt, User: user, FirstLogin: firstLogin}, nil
}

func (s *authService) issueToken(username string, issuedAt, expiresAt time.Time) (string, error) {
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Username == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *authService) GetUser(ctx context.Context, username string) (*models.User, error) {
	user, err := s.repo.User().GetByUsername(ctx, nil, NormalizeUsername(username))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *authService) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	users, err := s.repo.User().List(ctx, nil, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
