package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/clean-auth/internal/application"
	"github.com/oksasatya/clean-auth/internal/domain/entity"
	"github.com/oksasatya/clean-auth/internal/interface/middleware"
	"github.com/oksasatya/clean-auth/pkg/response"
	"github.com/oksasatya/clean-auth/pkg/validation"
)

type AccountHandler struct {
	Svc    *application.AccountService
	Logger *logrus.Logger
}

func NewAccountHandler(svc *application.AccountService, logger *logrus.Logger) *AccountHandler {
	return &AccountHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	Email       string `json:"email" binding:"required,email,max=254"`
	Username    string `json:"username" binding:"required,username"`
	Password    string `json:"password" binding:"required,pwd"`
	DateOfBirth string `json:"dateOfBirth" binding:"required,adult"`
	Gender      string `json:"gender" binding:"required,gender"`
}

type loginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail" binding:"required,max=254"`
	Password        string `json:"password" binding:"required,max=72"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type logoutRequest struct {
	Token string `json:"token"`
}

type confirmEmailRequest struct {
	Code string `json:"code" binding:"required,confirmcode"`
}

type requestCodeRequest struct {
	Email string `json:"email" binding:"required,email,max=254"`
}

type registerResponse struct {
	Email string         `json:"email"`
	User  entity.Profile `json:"user"`
}

// statusFor maps a failure kind to the HTTP status used by most account routes.
func statusFor(kind application.Kind) int {
	switch kind {
	case application.KindUnauthorized:
		return http.StatusUnauthorized
	case application.KindStale:
		return http.StatusConflict
	case application.KindDependency:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func bindFailed(c *gin.Context, err error) {
	response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
}

// Register POST /api/account/register
func (h *AccountHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	dob, err := time.Parse(validation.DateLayout, req.DateOfBirth)
	if err != nil {
		bindFailed(c, err)
		return
	}

	res := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Email:       req.Email,
		Username:    req.Username,
		Password:    req.Password,
		DateOfBirth: dob,
		Gender:      entity.Gender(req.Gender),
	})
	if res.IsFailure() {
		response.Fail(c, statusFor(res.Kind), res.Error, nil)
		return
	}
	response.OK(c, http.StatusOK, registerResponse{Email: res.Value.Email, User: res.Value.User}, res.Message)
}

// Login POST /api/account/login
func (h *AccountHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	res := h.Svc.Login(c.Request.Context(), req.UsernameOrEmail, req.Password)
	if res.IsFailure() {
		status := http.StatusUnauthorized
		if res.Kind == application.KindDependency || res.Kind == application.KindStale {
			status = statusFor(res.Kind)
		}
		response.Fail(c, status, res.Error, nil)
		return
	}
	response.OK(c, http.StatusOK, res.Value, "login successful")
}

// RefreshToken POST /api/account/refresh-token
func (h *AccountHandler) RefreshToken(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	res := h.Svc.RefreshToken(c.Request.Context(), req.RefreshToken)
	if res.IsFailure() {
		response.Fail(c, statusFor(res.Kind), res.Error, nil)
		return
	}
	response.OK(c, http.StatusOK, res.Value, "token refreshed")
}

// Logout POST /api/account/logout (bearer)
// Revokes the body token when given, else the bearer token of the request.
func (h *AccountHandler) Logout(c *gin.Context) {
	var req logoutRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		bindFailed(c, err)
		return
	}
	token := req.Token
	if token == "" {
		token = c.GetString(middleware.CtxAccessTokenKey)
	}

	res := h.Svc.Logout(c.Request.Context(), token, c.GetString(middleware.CtxUsernameKey))
	if res.IsFailure() {
		response.Fail(c, statusFor(res.Kind), res.Error, nil)
		return
	}
	response.OK[any](c, http.StatusOK, nil, res.Message)
}

// ConfirmEmail POST /api/account/confirm-email-code
func (h *AccountHandler) ConfirmEmail(c *gin.Context) {
	var req confirmEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	res := h.Svc.ConfirmEmail(c.Request.Context(), req.Code)
	if res.IsFailure() {
		response.Fail(c, statusFor(res.Kind), res.Error, nil)
		return
	}
	response.OK[any](c, http.StatusOK, nil, res.Message)
}

// RequestConfirmationCode POST /api/account/request-confirmation-code
func (h *AccountHandler) RequestConfirmationCode(c *gin.Context) {
	var req requestCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	res := h.Svc.RequestConfirmationCode(c.Request.Context(), req.Email)
	if res.IsFailure() {
		response.Fail(c, statusFor(res.Kind), res.Error, nil)
		return
	}
	response.OK[any](c, http.StatusOK, nil, res.Message)
}

// Me GET /api/account/me (bearer)
func (h *AccountHandler) Me(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	if uid == "" {
		response.Fail(c, http.StatusUnauthorized, "Invalid user token", nil)
		return
	}

	res := h.Svc.GetUserByID(c.Request.Context(), uid)
	if res.IsFailure() {
		status := http.StatusNotFound
		if res.Kind == application.KindDependency {
			status = http.StatusInternalServerError
		}
		response.Fail(c, status, res.Error, nil)
		return
	}
	response.OK(c, http.StatusOK, res.Value, "")
}
