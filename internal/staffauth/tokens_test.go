package staffauth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partnerdesk/internal/platform/config"
	id "partnerdesk/pkg/domain"
	dErrors "partnerdesk/pkg/domain-errors"
)

var authConfig = config.AuthConfig{
	JWTSigningKey: "test-signing-key",
	Issuer:        "admin-app",
	Audience:      "partnerdesk",
}

func TestIssueAndValidate(t *testing.T) {
	tokens := New(authConfig)
	userID := id.NewUserID()

	raw, err := tokens.Issue(userID, "Anna Nowak", time.Hour)
	require.NoError(t, err)

	claims, err := tokens.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, "Anna Nowak", claims.Name)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)

	mw, err := tokens.ValidateToken(raw)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), mw.UserID)
	assert.Equal(t, claims.ID, mw.JTI)
}

func TestRejectedTokens(t *testing.T) {
	tokens := New(authConfig)
	userID := id.NewUserID()

	expired, err := tokens.Issue(userID, "", -time.Hour)
	require.NoError(t, err)
	otherAudience, err := New(config.AuthConfig{JWTSigningKey: "test-signing-key", Issuer: "admin-app", Audience: "billing"}).
		Issue(userID, "", time.Hour)
	require.NoError(t, err)
	otherKey, err := New(config.AuthConfig{JWTSigningKey: "another-key", Issuer: "admin-app", Audience: "partnerdesk"}).
		Issue(userID, "", time.Hour)
	require.NoError(t, err)
	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject: userID.String(), Issuer: "admin-app", Audience: jwt.ClaimStrings{"partnerdesk"},
	}}).SignedString([]byte("test-signing-key"))
	require.NoError(t, err)
	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject: "anna", Issuer: "admin-app", Audience: jwt.ClaimStrings{"partnerdesk"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}).SignedString([]byte("test-signing-key"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		raw     string
		message string
	}{
		{"garbage", "not-a-token", "invalid token"},
		{"expired", expired, "token has expired"},
		{"wrong audience", otherAudience, "invalid token"},
		{"wrong key", otherKey, "invalid token"},
		{"no expiry", noExpiry, "invalid token"},
		{"subject is not a user id", badSubject, "invalid token subject"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := tokens.ValidateToken(tt.raw)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
			assert.Equal(t, tt.message, dErrors.MessageOf(err))
		})
	}
}

func TestLeewayAcceptsSmallSkew(t *testing.T) {
	userID := id.NewUserID()
	raw, err := New(authConfig).Issue(userID, "", -5*time.Second)
	require.NoError(t, err)

	_, err = New(authConfig).ValidateToken(raw)
	assert.NoError(t, err, "within the default leeway")

	_, err = New(authConfig, WithLeeway(0)).ValidateToken(raw)
	assert.Error(t, err)
}
