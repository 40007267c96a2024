package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"todosync/internal/core/domain"
	"todosync/internal/core/port"
)

type Config struct {
	Secret   string
	Issuer   string
	Audience string
	Leeway   time.Duration
}

// JWTVerifier validates HS256 bearer tokens minted by the identity provider.
type JWTVerifier struct {
	secret []byte
	config Config
	parser *jwt.Parser
}

func NewJWTVerifier(config Config) *JWTVerifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(config.Leeway),
	}

	if config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(config.Issuer))
	}

	if config.Audience != "" {
		opts = append(opts, jwt.WithAudience(config.Audience))
	}

	return &JWTVerifier{
		secret: []byte(config.Secret),
		config: config,
		parser: jwt.NewParser(opts...),
	}
}

var _ port.IdentityVerifier = (*JWTVerifier)(nil)

func (v *JWTVerifier) Verify(ctx context.Context, credential string) (string, error) {
	if credential == "" {
		return "", domain.NewAuthError(domain.AuthMissingCredential, nil)
	}

	claims := jwt.MapClaims{}

	_, err := v.parser.ParseWithClaims(credential, claims, func(token *jwt.Token) (any, error) {
		return v.secret, nil
	})

	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", domain.NewAuthError(domain.AuthExpiredCredential, err)
	default:
		return "", domain.NewAuthError(domain.AuthInvalidCredential, err)
	}

	userID := subjectOf(claims)
	if userID == "" {
		return "", domain.NewAuthError(domain.AuthInvalidCredential, errors.New("token has no subject"))
	}

	return userID, nil
}

func subjectOf(claims jwt.MapClaims) string {
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		return sub
	}

	for _, key := range []string{"user_id", "uid"} {
		switch v := claims[key].(type) {
		case string:
			return v
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}

	return ""
}

// Issue mints a token for userID. Used by local tooling and tests; production tokens come
// from the identity provider.
func (v *JWTVerifier) Issue(userID string, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		Issuer:    v.config.Issuer,
	}

	if v.config.Audience != "" {
		claims.Audience = jwt.ClaimStrings{v.config.Audience}
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
