package auth

import (
	"errors"
	"time"

	"github.com/fathiyyah28/proyek-sub000/internal/domain/shared"
	"github.com/fathiyyah28/proyek-sub000/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType represents the type of JWT token
type TokenType string

const (
	TokenTypeAccess TokenType = "access"
)

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidTokenType = errors.New("invalid token type")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrMissingUserID    = errors.New("missing user_id in claims")
	ErrInvalidRole      = errors.New("invalid role in claims")
	ErrMissingBranchID  = errors.New("employee token requires branch_id")
)

// Claims are the ledger's access token claims.
// BranchID is only set for employees (and optionally owners acting for a branch).
type Claims struct {
	jwt.RegisteredClaims
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	BranchID  string    `json:"branch_id,omitempty"`
	TokenType TokenType `json:"token_type"`
}

// IssuedToken is a signed access token and its expiry
type IssuedToken struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	TokenType   string    `json:"token_type"` // Bearer
}

// JWTService handles JWT token operations
type JWTService struct {
	secret     []byte
	expiration time.Duration
	issuer     string
	now        func() time.Time
}

// NewJWTService creates a new JWT service
func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secret:     []byte(cfg.Secret),
		expiration: cfg.AccessTokenExpiration,
		issuer:     cfg.Issuer,
		now:        time.Now,
	}
}

// GenerateAccessToken signs an access token for the actor.
// ttl overrides the configured expiration when positive.
func (s *JWTService) GenerateAccessToken(actor shared.Actor, ttl time.Duration) (*IssuedToken, error) {
	if actor.ID == uuid.Nil {
		return nil, ErrMissingUserID
	}
	if !actor.Role.IsValid() {
		return nil, ErrInvalidRole
	}
	if actor.Role == shared.RoleEmployee && actor.BranchID == nil {
		return nil, ErrMissingBranchID
	}
	if ttl <= 0 {
		ttl = s.expiration
	}

	now := s.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   actor.ID.String(),
			Audience:  jwt.ClaimStrings{s.issuer},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID:    actor.ID.String(),
		Role:      string(actor.Role),
		TokenType: TokenTypeAccess,
	}
	if actor.BranchID != nil {
		claims.BranchID = actor.BranchID.String()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, err
	}

	return &IssuedToken{
		AccessToken: signed,
		ExpiresAt:   now.Add(ttl),
		TokenType:   "Bearer",
	}, nil
}

// ValidateAccessToken validates an access token and returns its claims
func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.TokenType != TokenTypeAccess {
		return nil, ErrInvalidTokenType
	}
	if claims.UserID == "" {
		return nil, ErrMissingUserID
	}

	return claims, nil
}

// Actor converts validated claims into the caller identity used by services
func (c *Claims) Actor() (shared.Actor, error) {
	userID, err := uuid.Parse(c.UserID)
	if err != nil {
		return shared.Actor{}, ErrInvalidClaims
	}
	role := shared.Role(c.Role)
	if !role.IsValid() {
		return shared.Actor{}, ErrInvalidRole
	}

	var branchID *uuid.UUID
	if c.BranchID != "" {
		id, err := uuid.Parse(c.BranchID)
		if err != nil {
			return shared.Actor{}, ErrInvalidClaims
		}
		branchID = &id
	}
	if role == shared.RoleEmployee && branchID == nil {
		return shared.Actor{}, ErrMissingBranchID
	}

	return shared.NewActor(userID, role, branchID), nil
}

// GetRemainingTTL returns the remaining time until the token expires
func (c *Claims) GetRemainingTTL() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	remaining := time.Until(c.ExpiresAt.Time)
	if remaining < 0 {
		return 0
	}
	return remaining
}
