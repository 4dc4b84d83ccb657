package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Identity is the authenticated actor extracted from a bearer token. It
// carries no permissions; role resolution happens against project
// participancy inside the services.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

const identityKey = "boardhub.identity"

// Options configures token verification.
type Options struct {
	Secret   string
	Issuer   string
	Audience string
}

// ParseToken verifies an HMAC-signed bearer token and extracts the identity.
func ParseToken(tokenStr string, opts Options) (Identity, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}))
	token, err := parser.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(opts.Secret), nil
	})
	if err != nil {
		return Identity{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, errors.New("invalid claims")
	}
	if opts.Audience != "" && !claims.VerifyAudience(opts.Audience, false) {
		return Identity{}, errors.New("invalid audience")
	}
	if opts.Issuer != "" && !claims.VerifyIssuer(opts.Issuer, false) {
		return Identity{}, errors.New("invalid issuer")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return Identity{}, errors.New("missing sub")
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return Identity{}, errors.New("sub is not a user id")
	}

	email, _ := claims["email"].(string)
	return Identity{UserID: userID, Email: email}, nil
}

// Middleware returns a gin handler that requires a valid bearer token and
// stores the identity on the request context.
func Middleware(opts Options, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "bad authorization header"})
			return
		}

		identity, err := ParseToken(parts[1], opts)
		if err != nil {
			logger.WithError(err).Debug("token rejected")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// IdentityFrom returns the identity stored by Middleware.
func IdentityFrom(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

// SetIdentity stores an identity directly, used by tests.
func SetIdentity(c *gin.Context, id Identity) {
	c.Set(identityKey, id)
}
