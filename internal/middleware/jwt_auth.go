package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/anonto42/recipehub/backend/internal/models"
	"github.com/anonto42/recipehub/backend/internal/repositories"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const userContextKey = "user"

var errInvalidToken = errors.New("invalid token")

// JWTManager issues and verifies HS256 session tokens
type JWTManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTManager creates a JWTManager signing with secret. Tokens expire after ttl.
func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	return &JWTManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Generate signs a token for user and returns it with its expiry
func (m *JWTManager) Generate(user *models.User) (string, time.Time, error) {
	now := m.now()
	expires := now.Add(m.ttl)
	claims := &models.JwtCustomClaims{
		UserID: user.ID.Hex(),
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// Parse verifies tokenString and returns the user id it was issued for
func (m *JWTManager) Parse(tokenString string) (primitive.ObjectID, error) {
	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return primitive.NilObjectID, errInvalidToken
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, errInvalidToken
	}
	return id, nil
}

// Authenticator resolves the bearer token of a request to a stored user
type Authenticator struct {
	tokens   *JWTManager
	users    repositories.UserRepository
	firebase FirebaseVerifier
}

// NewAuthenticator creates a new Authenticator. firebase may be nil.
func NewAuthenticator(tokens *JWTManager, users repositories.UserRepository, firebase FirebaseVerifier) *Authenticator {
	return &Authenticator{tokens: tokens, users: users, firebase: firebase}
}

// Protect rejects requests without a valid token and loads the current user into the context
func (a *Authenticator) Protect() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, err := bearerToken(c)
			if err != nil {
				return err
			}
			user, err := a.resolve(c.Request().Context(), tokenString)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, token failed")
			}
			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// OptionalAuth loads the current user when a valid token is present and never rejects
func (a *Authenticator) OptionalAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if tokenString, err := bearerToken(c); err == nil {
				if user, err := a.resolve(c.Request().Context(), tokenString); err == nil {
					c.Set(userContextKey, user)
				}
			}
			return next(c)
		}
	}
}

// AdminOnly must run after Protect
func AdminOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !CurrentUser(c).IsAdmin() {
				return echo.NewHTTPError(http.StatusForbidden, "Access denied. Admin privileges required.")
			}
			return next(c)
		}
	}
}

// CurrentUser returns the authenticated user, or nil on public requests
func CurrentUser(c echo.Context) *models.User {
	user, _ := c.Get(userContextKey).(*models.User)
	return user
}

func (a *Authenticator) resolve(ctx context.Context, tokenString string) (*models.User, error) {
	id, err := a.tokens.Parse(tokenString)
	if err == nil {
		return a.users.GetUserByID(ctx, id)
	}
	if a.firebase != nil {
		return a.resolveFirebase(ctx, tokenString)
	}
	return nil, err
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, no token")
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
	}
	return parts[1], nil
}
