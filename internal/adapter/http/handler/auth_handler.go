package handler

import (
	"strings"
	"time"

	"coins-wallet/internal/adapter/http/dto"
	"coins-wallet/internal/adapter/http/middleware"
	"coins-wallet/internal/core/ports"
	"coins-wallet/pkg/response"

	"github.com/gin-gonic/gin"
)

const tokenTypeBearer = "Bearer"

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authSvc ports.AuthService
	now     func() time.Time
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authSvc ports.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, now: time.Now}
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	dto.SanitizeStruct(&req)

	result, err := h.authSvc.Register(c.Request.Context(), ports.RegisterRequest{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Set(middleware.CtxUserID, result.UserID)

	response.Created(c, "User registered", dto.RegisterResponse{
		UserID:   result.UserID.String(),
		Username: result.Username,
		WalletID: result.WalletID.String(),
	})
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	dto.SanitizeStruct(&req)

	result, err := h.authSvc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Set(middleware.CtxUserID, result.UserID)

	expiresIn := int64(result.ExpiresAt.Sub(h.now()) / time.Second)
	if expiresIn < 0 {
		expiresIn = 0
	}

	response.OK(c, "Login successful", dto.LoginResponse{
		AccessToken: result.Token,
		TokenType:   tokenTypeBearer,
		ExpiresIn:   expiresIn,
		Scope:       strings.Join(result.Scopes, " "),
	})
}
