// Package service provides business logic services for Sales Tracker.
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prn-tf/salestracker/internal/domain"
	"github.com/prn-tf/salestracker/internal/repository"
)

// Token type claim values. Validation only accepts tokens of the
// matching type, so a refresh token can never authorize an API call.
const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// TokenClaims is the JWT claim set for both access and refresh tokens.
// Tokens are self-contained: validation needs no store lookup beyond
// signature and expiry checks.
type TokenClaims struct {
	// TokenType distinguishes access from refresh tokens.
	TokenType string `json:"token_type"`

	jwt.RegisteredClaims
}

// TokenPair is the credential pair returned at login and registration.
type TokenPair struct {
	// Access is the short-lived token that authorizes API requests.
	Access string `json:"access"`

	// Refresh is the longer-lived token used to re-issue access tokens.
	Refresh string `json:"refresh"`
}

// TokenServiceConfig contains the settings for token issuance.
type TokenServiceConfig struct {
	// Secret is the HMAC-SHA256 signing key.
	Secret string

	// Issuer is the iss claim stamped on and required from every token.
	Issuer string

	// AccessTTL is the access token lifetime.
	AccessTTL time.Duration

	// RefreshTTL is the refresh token lifetime.
	RefreshTTL time.Duration
}

// TokenService issues and validates the JWT token pairs that gate the API.
// Access tokens are self-contained and cannot be revoked before expiry,
// but every refresh re-checks the account, so deactivating a user cuts
// off new tokens within the access TTL.
type TokenService struct {
	userRepo   repository.UserRepository
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	logger     zerolog.Logger
}

// NewTokenService creates a new TokenService.
func NewTokenService(cfg TokenServiceConfig, userRepo repository.UserRepository, logger zerolog.Logger) *TokenService {
	return &TokenService{
		userRepo:   userRepo,
		secret:     []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		logger:     logger.With().Str("service", "token").Logger(),
	}
}

// IssuePair issues a fresh access + refresh token pair bound to the user.
func (s *TokenService) IssuePair(user *domain.User) (*TokenPair, error) {
	access, err := s.sign(user.ID, tokenTypeAccess, s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refresh, err := s.sign(user.ID, tokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	s.logger.Debug().Int64("user_id", user.ID).Msg("token pair issued")

	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// Validate verifies an access token and returns the bound user ID.
// Returns ErrTokenExpired for expired tokens and ErrTokenInvalid for
// any other failure (bad signature, wrong issuer, wrong token type).
func (s *TokenService) Validate(tokenString string) (int64, error) {
	return s.parse(tokenString, tokenTypeAccess)
}

// Refresh validates a refresh token and issues a new token pair for the
// same user. The account must still exist and be active: a refresh token
// held by a deactivated or deleted user is treated as invalid. The old
// refresh token remains valid until it expires.
func (s *TokenService) Refresh(ctx context.Context, refreshString string) (*TokenPair, error) {
	userID, err := s.parse(refreshString, tokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTokenInvalid
		}
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to load user for refresh")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if !user.CanAuthenticate() {
		s.logger.Debug().Int64("user_id", userID).Msg("refresh rejected for inactive user")
		return nil, ErrTokenInvalid
	}

	return s.IssuePair(user)
}

// sign builds and signs a single token of the given type.
func (s *TokenService) sign(userID int64, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &TokenClaims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// parse verifies signature, issuer, expiry, and token type, and extracts
// the user ID from the subject claim.
func (s *TokenService) parse(tokenString, wantType string) (int64, error) {
	claims := &TokenClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithValidMethods([]string{"HS256"}))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, ErrTokenInvalid
	}

	if claims.TokenType != wantType {
		return 0, ErrTokenInvalid
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, ErrTokenInvalid
	}

	return userID, nil
}
