package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"compliancehub/internal/audit"
	"compliancehub/internal/auth"
	"compliancehub/internal/compliance"
)

// RegisterRequest is the payload for account creation.
type RegisterRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required,oneof=admin employee"`
}

// LoginRequest is the payload for login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the session token and its owner.
type LoginResponse struct {
	Token   string             `json:"token"`
	Session auth.Session       `json:"session"`
	Profile compliance.Profile `json:"profile"`
	Home    string             `json:"home"`
}

// Register creates a new profile.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	exists, err := h.profiles.EmailExists(c.Request.Context(), req.Email)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if exists {
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
		return
	}

	profile := compliance.Profile{
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         compliance.Role(req.Role),
	}
	if err := h.profiles.Create(c.Request.Context(), &profile); err != nil {
		h.respondError(c, err)
		return
	}

	h.audit.LogEvent(c.Request.Context(), audit.EventRegistration, profile.ID,
		profile.ID, "profile", "register", c.ClientIP(), nil)

	profile.PasswordHash = ""
	c.JSON(http.StatusCreated, profile)
}

// Login authenticates a profile and issues a session.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.profiles.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if !auth.CheckPassword(req.Password, profile.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, session, err := h.sessions.Issue(*profile)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue session"})
		return
	}

	c.SetCookie(auth.SessionCookie, token, int(session.ExpiresAt.Sub(session.IssuedAt).Seconds()),
		"/", "", false, true)

	h.audit.LogEvent(c.Request.Context(), audit.EventLogin, profile.ID,
		profile.ID, "profile", "login", c.ClientIP(), nil)

	profile.PasswordHash = ""
	c.JSON(http.StatusOK, LoginResponse{
		Token:   token,
		Session: session,
		Profile: *profile,
		Home:    auth.RoleHome(profile.Role),
	})
}

// Logout clears the session cookie. Tokens are stateless; expiry does the
// rest.
func (h *Handler) Logout(c *gin.Context) {
	c.SetCookie(auth.SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
