// Package staffauth validates the bearer tokens staff members present to the
// partner API. Tokens are HS256 JWTs minted by the admin application; the
// subject is the staff user's ID.
package staffauth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"partnerdesk/internal/platform/config"
	id "partnerdesk/pkg/domain"
	dErrors "partnerdesk/pkg/domain-errors"
	authmw "partnerdesk/pkg/platform/middleware/auth"
)

const DefaultLeeway = 30 * time.Second

type Claims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

type Tokens struct {
	signingKey []byte
	issuer     string
	audience   string
	leeway     time.Duration
}

type Option func(*Tokens)

// WithLeeway tolerates clock skew between the admin application and this
// service.
func WithLeeway(d time.Duration) Option {
	return func(t *Tokens) { t.leeway = d }
}

func New(cfg config.AuthConfig, opts ...Option) *Tokens {
	t := &Tokens{
		signingKey: []byte(cfg.JWTSigningKey),
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
		leeway:     DefaultLeeway,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Issue mints a token for userID. The server never calls it; operators and
// tests do.
func (t *Tokens) Issue(userID id.UserID, name string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    t.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	if t.audience != "" {
		claims.Audience = jwt.ClaimStrings{t.audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.signingKey)
}

// Parse verifies the signature, expiry, issuer and audience of raw.
func (t *Tokens) Parse(raw string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(t.leeway),
		jwt.WithExpirationRequired(),
	}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}
	if t.audience != "" {
		opts = append(opts, jwt.WithAudience(t.audience))
	}

	var claims Claims
	if _, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return t.signingKey, nil
	}, opts...); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if _, err := id.ParseUserID(claims.Subject); err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token subject")
	}
	return &claims, nil
}

// ValidateToken satisfies authmw.JWTValidator.
func (t *Tokens) ValidateToken(raw string) (*authmw.JWTClaims, error) {
	claims, err := t.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &authmw.JWTClaims{UserID: claims.Subject, JTI: claims.ID}, nil
}
