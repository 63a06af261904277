package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/charlesng35/fitcentre/internal/models"
)

// DefaultAccessTokenTTL is the validity period of issued session tokens.
const DefaultAccessTokenTTL = 24 * time.Hour

// ErrInvalidToken wraps every validation failure so callers can map it to 401
// without caring whether the signature, expiry or claims were at fault.
var ErrInvalidToken = errors.New("jwt: invalid token")

// JWTConfig bundles the configuration required to build a JWTService.
type JWTConfig struct {
	Secret         string
	Issuer         string
	AccessTokenTTL time.Duration
	Clock          func() time.Time
}

// Claims represents the custom claims embedded in issued JWTs.
type Claims struct {
	AccountID string          `json:"uid"`
	Email     string          `json:"email"`
	Platform  models.Platform `json:"platform"`
	jwt.RegisteredClaims
}

// AccessTokenInput holds the parameters used when generating a new access token.
type AccessTokenInput struct {
	AccountID string
	Email     string
	Platform  models.Platform
}

// JWTService issues and validates HS256 session tokens. It holds no state
// beyond its configuration.
type JWTService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTService constructs a JWTService instance when provided with the required configuration.
func NewJWTService(cfg JWTConfig) (*JWTService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt: secret must be provided")
	}

	ttl := cfg.AccessTokenTTL
	if ttl <= 0 {
		ttl = DefaultAccessTokenTTL
	}

	now := time.Now
	if cfg.Clock != nil {
		now = cfg.Clock
	}

	return &JWTService{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    ttl,
		now:    now,
	}, nil
}

// TTL reports how long issued tokens remain valid.
func (s *JWTService) TTL() time.Duration {
	return s.ttl
}

// GenerateAccessToken issues a signed JWT for the account.
func (s *JWTService) GenerateAccessToken(input AccessTokenInput) (string, error) {
	if strings.TrimSpace(input.AccountID) == "" {
		return "", errors.New("jwt: account id is required")
	}
	if !input.Platform.Valid() {
		return "", fmt.Errorf("jwt: invalid platform %d", int(input.Platform))
	}

	now := s.now()
	claims := &Claims{
		AccountID: input.AccountID,
		Email:     input.Email,
		Platform:  input.Platform,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   input.AccountID,
			Issuer:    s.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}

	return signed, nil
}

// ValidateAccessToken parses and validates a signed JWT, returning the application claims.
// All failures wrap ErrInvalidToken.
func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, fmt.Errorf("%w: token string is empty", ErrInvalidToken)
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)

	var claims Claims
	_, err := parser.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if s.issuer != "" && claims.Issuer != s.issuer {
		return nil, fmt.Errorf("%w: invalid issuer", ErrInvalidToken)
	}
	if claims.AccountID == "" {
		return nil, fmt.Errorf("%w: missing account id claim", ErrInvalidToken)
	}
	if !claims.Platform.Valid() {
		return nil, fmt.Errorf("%w: invalid platform claim", ErrInvalidToken)
	}

	return &claims, nil
}
