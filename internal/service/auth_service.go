package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/GTDGit/balloon_quote/internal/models"
	"github.com/GTDGit/balloon_quote/internal/utils"
)

// OperatorStore is the operator persistence used by AuthService.
type OperatorStore interface {
	GetByEmail(ctx context.Context, email string) (*models.Operator, error)
	Create(ctx context.Context, op *models.Operator) error
	TouchLastLogin(ctx context.Context, id int) error
}

// AuthService authenticates operators and issues access tokens.
type AuthService struct {
	operators OperatorStore
}

// NewAuthService constructs a new AuthService.
func NewAuthService(operators OperatorStore) *AuthService {
	return &AuthService{operators: operators}
}

// Login verifies the operator's password and returns a signed JWT.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.Operator, error) {
	email = normalizeEmail(email)
	log.Debug().Str("email", email).Msg("Login attempt")

	op, err := s.operators.GetByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		log.Warn().Str("email", email).Msg("Unknown operator")
		return "", nil, utils.ErrInvalidCredentials
	}
	if err != nil {
		log.Error().Err(err).Str("email", email).Msg("Failed to get operator by email")
		return "", nil, err
	}

	if !op.IsActive {
		log.Warn().Str("email", email).Msg("Account is inactive")
		return "", nil, utils.ErrInactiveOperator
	}

	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(password)); err != nil {
		log.Warn().Str("email", email).Msg("Password verification failed")
		return "", nil, utils.ErrInvalidCredentials
	}

	token, err := utils.GenerateJWT(op.ID, op.Email)
	if err != nil {
		return "", nil, err
	}

	if err := s.operators.TouchLastLogin(ctx, op.ID); err != nil {
		log.Warn().Err(err).Int("operator_id", op.ID).Msg("Failed to record last login")
	}

	log.Info().Str("email", email).Msg("Login successful")
	return token, op, nil
}

// CreateOperator stores a new active operator with a bcrypt password hash.
func (s *AuthService) CreateOperator(ctx context.Context, email, password, name string) (*models.Operator, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, errors.New("email and password are required")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	op := &models.Operator{
		Email:        email,
		PasswordHash: string(hashedPassword),
		Name:         name,
		IsActive:     true,
	}
	if err := s.operators.Create(ctx, op); err != nil {
		return nil, err
	}
	return op, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
