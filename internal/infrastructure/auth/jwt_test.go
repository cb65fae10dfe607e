package auth

import (
	"testing"
	"time"

	"github.com/fathiyyah28/proyek-sub000/internal/domain/shared"
	"github.com/fathiyyah28/proyek-sub000/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		Issuer:                "test-issuer",
		AccessTokenExpiration: 15 * time.Minute,
	})
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	svc := newTestJWTService()
	branchID := uuid.New()

	tests := []struct {
		name  string
		actor shared.Actor
	}{
		{"owner", shared.NewActor(uuid.New(), shared.RoleOwner, nil)},
		{"employee", shared.NewActor(uuid.New(), shared.RoleEmployee, &branchID)},
		{"customer", shared.NewActor(uuid.New(), shared.RoleCustomer, nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issued, err := svc.GenerateAccessToken(tt.actor, 0)
			require.NoError(t, err)
			assert.Equal(t, "Bearer", issued.TokenType)
			assert.NotEmpty(t, issued.AccessToken)

			claims, err := svc.ValidateAccessToken(issued.AccessToken)
			require.NoError(t, err)
			assert.Equal(t, TokenTypeAccess, claims.TokenType)

			actor, err := claims.Actor()
			require.NoError(t, err)
			assert.Equal(t, tt.actor, actor)
		})
	}
}

func TestGenerateAccessToken_Rejects(t *testing.T) {
	svc := newTestJWTService()

	_, err := svc.GenerateAccessToken(shared.NewActor(uuid.Nil, shared.RoleOwner, nil), 0)
	assert.ErrorIs(t, err, ErrMissingUserID)

	_, err = svc.GenerateAccessToken(shared.NewActor(uuid.New(), shared.Role("ADMIN"), nil), 0)
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = svc.GenerateAccessToken(shared.NewActor(uuid.New(), shared.RoleEmployee, nil), 0)
	assert.ErrorIs(t, err, ErrMissingBranchID)
}

func TestGenerateAccessToken_CustomTTL(t *testing.T) {
	svc := newTestJWTService()
	fixed := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	issued, err := svc.GenerateAccessToken(shared.NewActor(uuid.New(), shared.RoleOwner, nil), time.Hour)
	require.NoError(t, err)
	assert.Equal(t, fixed.Add(time.Hour), issued.ExpiresAt)
}

func TestValidateAccessToken_Expired(t *testing.T) {
	svc := newTestJWTService()
	issuedAt := time.Now().Add(-time.Hour)
	svc.now = func() time.Time { return issuedAt }

	issued, err := svc.GenerateAccessToken(shared.NewActor(uuid.New(), shared.RoleOwner, nil), time.Minute)
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateAccessToken(issued.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	issuer := newTestJWTService()
	issued, err := issuer.GenerateAccessToken(shared.NewActor(uuid.New(), shared.RoleOwner, nil), 0)
	require.NoError(t, err)

	other := NewJWTService(config.JWTConfig{
		Secret:                "another-secret-key-at-least-32-ch",
		Issuer:                "test-issuer",
		AccessTokenExpiration: 15 * time.Minute,
	})
	_, err = other.ValidateAccessToken(issued.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAccessToken_WrongIssuer(t *testing.T) {
	issued, err := newTestJWTService().GenerateAccessToken(shared.NewActor(uuid.New(), shared.RoleOwner, nil), 0)
	require.NoError(t, err)

	other := NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		Issuer:                "someone-else",
		AccessTokenExpiration: 15 * time.Minute,
	})
	_, err = other.ValidateAccessToken(issued.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAccessToken_Garbage(t *testing.T) {
	_, err := newTestJWTService().ValidateAccessToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAccessToken_RejectsNoneAlgorithm(t *testing.T) {
	svc := newTestJWTService()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "test-issuer",
			Audience:  jwt.ClaimStrings{"test-issuer"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID:    uuid.New().String(),
		Role:      string(shared.RoleOwner),
		TokenType: TokenTypeAccess,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAccessToken_WrongTokenType(t *testing.T) {
	svc := newTestJWTService()
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "test-issuer",
			Audience:  jwt.ClaimStrings{"test-issuer"},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID:    uuid.New().String(),
		Role:      string(shared.RoleOwner),
		TokenType: TokenType("refresh"),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(svc.secret)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(signed)
	assert.ErrorIs(t, err, ErrInvalidTokenType)
}

func TestClaimsActor(t *testing.T) {
	userID := uuid.New()
	branchID := uuid.New()

	tests := []struct {
		name    string
		claims  Claims
		wantErr error
	}{
		{"bad user id", Claims{UserID: "x", Role: "OWNER"}, ErrInvalidClaims},
		{"unknown role", Claims{UserID: userID.String(), Role: "ADMIN"}, ErrInvalidRole},
		{"bad branch id", Claims{UserID: userID.String(), Role: "EMPLOYEE", BranchID: "nope"}, ErrInvalidClaims},
		{"employee without branch", Claims{UserID: userID.String(), Role: "EMPLOYEE"}, ErrMissingBranchID},
		{"employee", Claims{UserID: userID.String(), Role: "EMPLOYEE", BranchID: branchID.String()}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actor, err := tt.claims.Actor()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, userID, actor.ID)
			require.NotNil(t, actor.BranchID)
			assert.Equal(t, branchID, *actor.BranchID)
		})
	}
}

func TestClaimsRemainingTTL(t *testing.T) {
	assert.Zero(t, (&Claims{}).GetRemainingTTL())

	expired := &Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))}}
	assert.Zero(t, expired.GetRemainingTTL())

	live := &Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}}
	assert.Greater(t, live.GetRemainingTTL(), 59*time.Minute)
}
