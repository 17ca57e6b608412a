package auth

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eventboard/backend/internal/models"
	"github.com/eventboard/backend/pkg/response"
	"github.com/eventboard/backend/pkg/utils"
)

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest is the body for POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RegisterRequest is the body for POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	OrgID    string `json:"orgId" binding:"required"`
}

// TokenResponse is the auth response carrying the token pair and identity.
type TokenResponse struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	Email        string   `json:"email"`
	OrgID        string   `json:"orgId"`
	Roles        []string `json:"roles"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	store  Store
	jwt    *JWTService
	logger *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(store Store, jwt *JWTService, logger *zap.Logger) *Handler {
	return &Handler{store: store, jwt: jwt, logger: logger}
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.store.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.Unauthorized(c, "invalid credentials")
		return
	}
	if !utils.CheckPassword(req.Password, user.PasswordHash) {
		response.Unauthorized(c, "invalid credentials")
		return
	}

	resp, err := h.issueTokens(c, user)
	if err != nil {
		h.logger.Error("issue tokens", zap.Error(err))
		response.Internal(c, "failed to issue tokens")
		return
	}
	response.OK(c, resp)
}

// Refresh handles POST /auth/refresh. It mints a new access token but returns
// the same refresh token string: tokens are not rotated, matching the wire
// contract existing clients rely on.
func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	token, err := h.store.GetRefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil || !token.IsActive(time.Now().UTC()) {
		response.Unauthorized(c, "invalid or expired refresh token")
		return
	}

	user, err := h.store.GetUserByID(c.Request.Context(), token.UserID)
	if err != nil {
		response.Unauthorized(c, "invalid or expired refresh token")
		return
	}

	access, err := h.jwt.NewAccessToken(user)
	if err != nil {
		h.logger.Error("mint access token", zap.Error(err))
		response.Internal(c, "failed to issue tokens")
		return
	}
	response.OK(c, TokenResponse{
		AccessToken:  access,
		RefreshToken: req.RefreshToken,
		Email:        user.Email,
		OrgID:        user.OrgID,
		Roles:        user.RoleStrings(),
	})
}

// Register handles POST /auth/register. New accounts get the User role in the
// requested organization and a token pair straight away.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}

	user, err := h.store.CreateUser(c.Request.Context(), req.Email, hash, req.OrgID, models.RoleUser)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			response.Conflict(c, "email already registered")
			return
		}
		h.logger.Error("create user", zap.Error(err))
		response.Internal(c, "failed to create user")
		return
	}

	resp, err := h.issueTokens(c, user)
	if err != nil {
		h.logger.Error("issue tokens", zap.Error(err))
		response.Internal(c, "failed to issue tokens")
		return
	}
	response.Created(c, resp)
}

// issueTokens mints an access token, generates a refresh token and persists it.
func (h *Handler) issueTokens(c *gin.Context, user *models.User) (TokenResponse, error) {
	access, err := h.jwt.NewAccessToken(user)
	if err != nil {
		return TokenResponse{}, err
	}
	refresh, expiresAt := h.jwt.NewRefreshToken()
	if err := h.store.SaveRefreshToken(c.Request.Context(), user.ID, refresh, expiresAt); err != nil {
		return TokenResponse{}, err
	}
	return TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		Email:        user.Email,
		OrgID:        user.OrgID,
		Roles:        user.RoleStrings(),
	}, nil
}
