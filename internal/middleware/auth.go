package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"github.com/treysonbrown/planner-api/internal/constants"
	apierrors "github.com/treysonbrown/planner-api/internal/errors"
)

// Identity is the verified caller identity carried by a bearer token from
// the external identity provider. ExternalID is the token subject; the rest
// are profile claims consumed by the profile upsert.
type Identity struct {
	ExternalID string
	Name       string
	Nickname   string
	Email      string
	AvatarURL  string
}

// Verifier validates a raw bearer token and returns the caller identity.
type Verifier interface {
	Verify(token string) (*Identity, error)
}

// JWKSVerifier verifies RS256 tokens against the identity provider's JWKS.
type JWKSVerifier struct {
	jwks     *keyfunc.JWKS
	issuer   string
	audience string
}

func NewJWKSVerifier(jwksURL, issuer, audience string) (*JWKSVerifier, error) {
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		RefreshInterval:   time.Hour,
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, err
	}
	return &JWKSVerifier{jwks: jwks, issuer: issuer, audience: audience}, nil
}

func (v *JWKSVerifier) Verify(tokenStr string) (*Identity, error) {
	if strings.Count(tokenStr, ".") != 2 {
		return nil, errors.New("malformed token")
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{"RS256"}), jwt.WithoutClaimsValidation())
	token, err := parser.Parse(tokenStr, v.jwks.Keyfunc)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}

	// One minute of clock leeway on the time-based claims.
	now := time.Now().Add(time.Minute).Unix()
	if !claims.VerifyExpiresAt(now, true) {
		return nil, errors.New("token expired")
	}
	if !claims.VerifyNotBefore(now, false) {
		return nil, errors.New("token not valid yet")
	}
	if v.audience != "" && !claims.VerifyAudience(v.audience, false) {
		return nil, errors.New("invalid audience")
	}
	if v.issuer != "" && !claims.VerifyIssuer(v.issuer, false) {
		return nil, errors.New("invalid issuer")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, errors.New("missing sub")
	}

	return &Identity{
		ExternalID: sub,
		Name:       stringClaim(claims, "name"),
		Nickname:   stringClaim(claims, "nickname"),
		Email:      stringClaim(claims, "email"),
		AvatarURL:  stringClaim(claims, "picture"),
	}, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}

// RequireAuth rejects requests without a verifiable bearer token and stores
// the caller identity in the request context.
func RequireAuth(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := identityFromRequest(c, v)
		if err != nil {
			apierrors.Unauthenticated(c, "")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyIdentity, identity)
		c.Next()
	}
}

// OptionalAuth resolves the caller identity when a valid token is present
// and lets anonymous requests through untouched. Read-only queries degrade
// gracefully for anonymous callers instead of failing.
func OptionalAuth(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if identity, err := identityFromRequest(c, v); err == nil {
			c.Set(constants.ContextKeyIdentity, identity)
		}
		c.Next()
	}
}

func identityFromRequest(c *gin.Context, v Verifier) (*Identity, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		// SSE clients can't set headers; they pass the token as a query param.
		if token := c.Query("token"); token != "" {
			header = "Bearer " + token
		}
	}
	if header == "" {
		return nil, errors.New("missing authorization header")
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, errors.New("bad authorization header")
	}

	return v.Verify(parts[1])
}

// GetIdentity retrieves the verified caller identity from the context.
func GetIdentity(c *gin.Context) (*Identity, bool) {
	value, exists := c.Get(constants.ContextKeyIdentity)
	if !exists {
		return nil, false
	}
	identity, ok := value.(*Identity)
	return identity, ok
}
