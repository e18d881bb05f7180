package user

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gymplan/internal/api"
	"gymplan/internal/auth"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Register godoc
// @Summary      Register new account
// @Description  Creates an unverified basic account and sends a verification code.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      RegisterRequest  true  "Registration data"
// @Success      201      {object}  api.MessageResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Failure      500      {object}  api.ErrorResponse
// @Router       /auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if !api.BindJSON(c, &req) {
		return
	}

	if _, err := h.service.Register(c.Request.Context(), req); err != nil {
		if errors.Is(err, ErrEmailExists) {
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Email already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create account"})
		return
	}

	c.JSON(http.StatusCreated, api.MessageResponse{Message: "Account created, verification code sent"})
}

// VerifyEmail godoc
// @Summary      Verify email address
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      VerifyEmailRequest  true  "Email and code"
// @Success      200      {object}  api.MessageResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Router       /auth/verify [post]
func (h *Handler) VerifyEmail(c *gin.Context) {
	var req VerifyEmailRequest
	if !api.BindJSON(c, &req) {
		return
	}

	err := h.service.VerifyEmail(c.Request.Context(), req.Email, req.Code)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, api.MessageResponse{Message: "Email verified"})
	case errors.Is(err, ErrUserNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "No such account"})
	case errors.Is(err, ErrAlreadyVerified):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Email already verified"})
	case errors.Is(err, ErrInvalidCode):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid verification code"})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Verification failed"})
	}
}

// Login godoc
// @Summary      Login
// @Description  Authenticates by email and password. Unverified accounts are rejected.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      LoginRequest  true  "Credentials"
// @Success      200      {object}  LoginResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      401      {object}  api.ErrorResponse
// @Router       /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !api.BindJSON(c, &req) {
		return
	}

	u, accessToken, refreshToken, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotVerified):
			c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Email not verified"})
		case errors.Is(err, ErrAccountDisabled):
			c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Account disabled"})
		default:
			c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Invalid email or password"})
		}
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         *u,
	})
}

// RefreshToken godoc
// @Summary      Refresh access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      map[string]string  true  "Refresh token payload"
// @Success      200      {object}  map[string]interface{}
// @Failure      400      {object}  api.ErrorResponse
// @Failure      401      {object}  api.ErrorResponse
// @Router       /auth/refresh [post]
func (h *Handler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "refresh_token is required"})
		return
	}

	newAccessToken, u, err := h.service.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "invalid or expired refresh token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": newAccessToken,
		"user":         u,
	})
}

// ForgotPassword godoc
// @Summary      Request password reset code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      ForgotPasswordRequest  true  "Account email"
// @Success      200      {object}  api.MessageResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Router       /auth/forgot-password [post]
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if !api.BindJSON(c, &req) {
		return
	}

	if err := h.service.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "No such account"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to issue reset code"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Reset code sent"})
}

// ResetPassword godoc
// @Summary      Reset password with code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      ResetPasswordRequest  true  "Email, code and new password"
// @Success      200      {object}  api.MessageResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Router       /auth/reset-password [post]
func (h *Handler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if !api.BindJSON(c, &req) {
		return
	}

	err := h.service.ResetPassword(c.Request.Context(), req.Email, req.Code, req.NewPassword)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, api.MessageResponse{Message: "Password updated"})
	case errors.Is(err, ErrUserNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "No such account"})
	case errors.Is(err, ErrInvalidCode):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid or expired code"})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to reset password"})
	}
}

// GetMe godoc
// @Summary      Get current account
// @Tags         user
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  User
// @Failure      401  {object}  api.ErrorResponse
// @Router       /me [get]
func (h *Handler) GetMe(c *gin.Context) {
	u, ok := ActorFromContext(c)
	if !ok {
		// Fall back to the token claim when the actor middleware is not
		// mounted on this route.
		email, exists := auth.GetUserEmail(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Not authenticated"})
			return
		}
		var err error
		u, err = h.service.GetByEmail(c.Request.Context(), email)
		if err != nil {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Account not found"})
			return
		}
	}

	c.JSON(http.StatusOK, u)
}

// ChangeRole is the explicit admin role grant.
func (h *Handler) ChangeRole(c *gin.Context) {
	var req ChangeRoleRequest
	if !api.BindJSON(c, &req) {
		return
	}

	email := c.Param("email")
	err := h.service.ChangeRole(c.Request.Context(), email, req.Role)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, api.MessageResponse{Message: "Role updated"})
	case errors.Is(err, ErrUserNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "No such account"})
	case errors.Is(err, ErrInvalidRole):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid role"})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to update role"})
	}
}

// Deactivate soft-disables an account. Accounts are never hard-deleted.
func (h *Handler) Deactivate(c *gin.Context) {
	email := c.Param("email")
	if err := h.service.Deactivate(c.Request.Context(), email); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "No such account"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to deactivate account"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Account deactivated"})
}
