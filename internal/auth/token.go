package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/cruxmailweb/access-management-tool/internal/config"
	"github.com/cruxmailweb/access-management-tool/internal/models"
)

// SessionCookieName is the name of the cookie that stores the session token
const SessionCookieName = "session_token"

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// SessionClaims represents the claims in the session token
type SessionClaims struct {
	UserID   uint        `json:"user_id"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Role     models.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies signed session tokens. Constructed once at
// startup and injected wherever sessions are handled.
type TokenManager struct {
	secret   []byte
	duration time.Duration
}

// NewTokenManager creates a token manager from configuration.
func NewTokenManager(cfg *config.Config) *TokenManager {
	return &TokenManager{
		secret:   []byte(cfg.JWTSecret),
		duration: cfg.SessionDuration,
	}
}

// CreateToken signs a new session token for the user.
func (m *TokenManager) CreateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   user.Username,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signedToken, nil
}

// ValidateToken verifies a session token and returns its claims.
func (m *TokenManager) ValidateToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// SetSessionCookie stores the token in an HttpOnly cookie.
func (m *TokenManager) SetSessionCookie(c *gin.Context, token string) {
	secure := gin.Mode() != gin.DebugMode
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		SessionCookieName,
		token,
		int(m.duration.Seconds()),
		"/",
		"",
		secure,
		true, // HttpOnly
	)
}

// ClearSessionCookie removes the session cookie.
func (m *TokenManager) ClearSessionCookie(c *gin.Context) {
	c.SetCookie(SessionCookieName, "", -1, "/", "", false, true)
}
