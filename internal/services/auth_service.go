package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 8

type AuthService struct {
	db     *gorm.DB
	clock  clockwork.Clock
	secret []byte
	expiry time.Duration
}

func NewAuthService(db *gorm.DB, clock clockwork.Clock, secret string, expiry time.Duration) *AuthService {
	return &AuthService{
		db:     db,
		clock:  clock,
		secret: []byte(secret),
		expiry: expiry,
	}
}

// BootstrapModerator makes sure the configured staff account exists. An
// existing account keeps its password; rotate it through the database.
func (s *AuthService) BootstrapModerator(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}
	if len(password) < minPasswordLength {
		return fmt.Errorf("admin password must be at least %d characters", minPasswordLength)
	}

	var existing models.Moderator
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	mod := models.Moderator{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         "admin",
	}
	if err := s.db.WithContext(ctx).Create(&mod).Error; err != nil {
		return fmt.Errorf("failed to create moderator: %w", err)
	}

	slog.Info("moderator account created", "component", "auth", "entity_id", mod.ID.String())
	return nil
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	if len(s.secret) == 0 {
		return nil, errors.New("moderator login is not configured")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var mod models.Moderator
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&mod).Error; err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(mod.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.generateAccessToken(&mod)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt.Unix(),
		Email:       mod.Email,
		Role:        mod.Role,
	}, nil
}

func (s *AuthService) generateAccessToken(mod *models.Moderator) (string, time.Time, error) {
	now := s.clock.Now()
	expiresAt := now.Add(s.expiry)
	claims := jwt.MapClaims{
		"sub":   mod.ID.String(),
		"email": mod.Email,
		"role":  mod.Role,
		"iat":   now.Unix(),
		"exp":   expiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}
