package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/marketcore/auth-service/internal/middleware"
	"github.com/marketcore/auth-service/internal/model"
	"github.com/marketcore/auth-service/internal/service"
)

// dbTimeout bounds the work a single auth request may do against the
// store and broker.
const dbTimeout = 5 * time.Second

// AuthHandler wires the auth orchestrator to HTTP.  It owns request
// parsing (body fields, client IP, user agent) and the mapping of the
// service's typed failures onto transport statuses; no business rules
// live here.
type AuthHandler struct {
	Svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{Svc: svc}
}

// ----- DTOs -----

type registerReq struct {
	Email           string `json:"email"`
	Name            string `json:"name"`
	PhoneNumber     string `json:"phone_number"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Code            string `json:"code"`
}

type sendOTPReq struct {
	Email string `json:"email"`
	Type  string `json:"type"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TOTPCode string `json:"totp_code"`
	Code     string `json:"code"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type forgotPasswordReq struct {
	Email           string `json:"email"`
	Code            string `json:"code"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

type disable2FAReq struct {
	TOTPCode string `json:"totp_code"`
	Code     string `json:"code"`
}

type userResp struct {
	ID          uint64 `json:"id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Status      string `json:"status"`
}

type tokenPairResp struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Register creates an account from a verified REGISTER code.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" || req.Code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email, password and code required"})
	}
	if req.Password != req.ConfirmPassword {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "confirm_password does not match password"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	user, err := h.Svc.Register(ctx, service.RegisterInput{
		Email:       req.Email,
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
		Code:        req.Code,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, userResp{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		PhoneNumber: user.PhoneNumber,
		Status:      user.Status,
	})
}

// SendOTP issues and mails a verification code for the given purpose.
func (h *AuthHandler) SendOTP(c echo.Context) error {
	var req sendOTPReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !model.ValidCodePurpose(req.Type) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and valid type required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Svc.SendOTP(ctx, req.Email, req.Type); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "verification code sent"})
}

// Login authenticates email/password (+ second factor when enrolled)
// and opens a device session.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	pair, err := h.Svc.Login(ctx, service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		TOTPCode: req.TOTPCode,
		Code:     req.Code,
	}, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, tokenPairResp{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

// Refresh rotates a refresh token and returns the new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	pair, err := h.Svc.Refresh(ctx, strings.TrimSpace(req.RefreshToken), c.RealIP(), c.Request().UserAgent())
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, tokenPairResp{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

// Logout spends the refresh token and deactivates its device.  A
// repeat call with the same token gets 401, which clients should read
// as "already logged out".
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Svc.Logout(ctx, strings.TrimSpace(req.RefreshToken)); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ForgotPassword resets a password using a FORGOT_PASSWORD code.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Code == "" || req.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email, code and new_password required"})
	}
	if req.NewPassword != req.ConfirmPassword {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "confirm_password does not match new_password"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Svc.ForgotPassword(ctx, req.Email, req.Code, req.NewPassword); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

// TwoFactorSetup enrolls (or rotates) the caller's TOTP secret.
func (h *AuthHandler) TwoFactorSetup(c echo.Context) error {
	claims := middleware.CurrentClaims(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	secret, uri, err := h.Svc.TwoFactorSetup(ctx, claims.UserID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"secret": secret, "uri": uri})
}

// TwoFactorDisable clears the caller's TOTP secret after second-factor
// proof.
func (h *AuthHandler) TwoFactorDisable(c echo.Context) error {
	claims := middleware.CurrentClaims(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req disable2FAReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Svc.TwoFactorDisable(ctx, claims.UserID, req.TOTPCode, req.Code); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "two-factor authentication disabled"})
}

// Me echoes the identity carried by the access token.
func (h *AuthHandler) Me(c echo.Context) error {
	claims := middleware.CurrentClaims(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user_id":   claims.UserID,
		"role_id":   claims.RoleID,
		"role":      claims.RoleName,
		"device_id": claims.DeviceID,
	})
}

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// writeServiceError translates the service failure taxonomy into HTTP
// statuses.  Every message is already safe to show an end user.
func writeServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrEmailAlreadyExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrEmailNotFound), errors.Is(err, service.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCode), errors.Is(err, service.ErrCodeExpired):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidPassword), errors.Is(err, service.ErrInvalidOTP),
		errors.Is(err, service.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrOTPDispatchFailed):
		return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
