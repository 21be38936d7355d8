package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/owenshen0907/NihonGO/internal/http/middleware"
	"github.com/owenshen0907/NihonGO/internal/http/response"
	"github.com/owenshen0907/NihonGO/internal/platform/logger"
	"github.com/owenshen0907/NihonGO/internal/services"
)

type AuthHandler struct {
	log         *logger.Logger
	authService services.AuthService
	sessionTTL  int // seconds, for the cookie Max-Age
}

func NewAuthHandler(log *logger.Logger, authService services.AuthService, sessionTTLSeconds int) *AuthHandler {
	return &AuthHandler{
		log:         log.With("handler", "AuthHandler"),
		authService: authService,
		sessionTTL:  sessionTTLSeconds,
	}
}

// Callback finishes the Casdoor OAuth flow and redirects to the app root
// with the session cookie set.
func (h *AuthHandler) Callback(c *gin.Context) {
	code := c.Query("code")
	token, user, err := h.authService.HandleCallback(c.Request.Context(), code)
	if err != nil {
		h.log.Warn("OAuth callback failed", "error", err.Error())
		c.Redirect(http.StatusFound, "/login")
		return
	}

	c.SetCookie("sessionToken", token, h.sessionTTL, "/", "", true, true)
	c.SetCookie("userId", user.UserID, h.sessionTTL, "/", "", true, true)

	host := c.GetHeader("X-Forwarded-Host")
	if host == "" {
		host = c.Request.Host
	}
	proto := c.GetHeader("X-Forwarded-Proto")
	if proto == "" {
		proto = "http"
	}
	c.Redirect(http.StatusFound, proto+"://"+host+"/")
}

// GetMe returns the stored account of the authenticated user.
func (h *AuthHandler) GetMe(c *gin.Context) {
	user, err := h.authService.GetUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user": user})
}
