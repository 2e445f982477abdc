package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"compliancehub/internal/compliance"
)

// Session is the explicit authenticated-user state passed to everything that
// needs it. It is created at login and dies with its token; there is no
// process-wide current user.
type Session struct {
	UserID    string          `json:"user_id"`
	Email     string          `json:"email"`
	Role      compliance.Role `json:"role"`
	IssuedAt  time.Time       `json:"issued_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// Manager issues and verifies session tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager creates a session manager signing with secret.
func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl}
}

// Issue creates a session for the profile and returns its signed token.
func (m *Manager) Issue(profile compliance.Profile) (string, Session, error) {
	now := time.Now()
	session := Session{
		UserID:    profile.ID,
		Email:     profile.Email,
		Role:      profile.Role,
		IssuedAt:  now,
		ExpiresAt: now.Add(m.ttl),
	}

	claims := jwt.MapClaims{
		"sub":   session.UserID,
		"email": session.Email,
		"role":  string(session.Role),
		"iat":   session.IssuedAt.Unix(),
		"exp":   session.ExpiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", Session{}, fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, session, nil
}

// Verify parses and validates a token and reconstructs its session.
func (m *Manager) Verify(tokenString string) (*Session, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid session token claims")
	}

	session := &Session{}
	if sub, ok := claims["sub"].(string); ok {
		session.UserID = sub
	}
	if email, ok := claims["email"].(string); ok {
		session.Email = email
	}
	if role, ok := claims["role"].(string); ok {
		session.Role = compliance.Role(role)
	}
	if iat, ok := claims["iat"].(float64); ok {
		session.IssuedAt = time.Unix(int64(iat), 0)
	}
	if exp, ok := claims["exp"].(float64); ok {
		session.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return session, nil
}

// HashPassword creates a bcrypt hash of the password.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

// CheckPassword compares a password with its hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// RoleHome returns the dashboard path a role lands on.
func RoleHome(role compliance.Role) string {
	if role == compliance.RoleAdmin {
		return "/admin"
	}
	return "/employee"
}
