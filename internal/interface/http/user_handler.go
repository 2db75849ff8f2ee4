package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/oksasatya/go-ddd-user-accounts/internal/application"
	"github.com/oksasatya/go-ddd-user-accounts/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-user-accounts/pkg/response"
	"github.com/oksasatya/go-ddd-user-accounts/pkg/validation"
)

const (
	msgValidation       = "Validation fails"
	msgUserExists       = "User already exists"
	msgEmailInUse       = "E-mail already in use"
	msgPasswordMismatch = "Password does not match"
	msgUserNotFound     = "User not found"
	msgInternal         = "Internal server error"
)

type UserHandler struct {
	Svc    *userapp.Service
	Logger *logrus.Logger
}

func NewUserHandler(svc *userapp.Service, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

// Create POST /api/users {name, email, password}
func (h *UserHandler) Create(c *gin.Context) {
	var req validation.CreateUserPayload
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, errors.Join(userapp.ErrValidation, err))
		return
	}
	out, err := h.Svc.CreateUser(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

// Update PUT /api/users {name?, email?, oldPassword?, password?, confirmPassword?} (auth required)
func (h *UserHandler) Update(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	if uid == "" {
		response.Error(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req validation.UpdateUserPayload
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, errors.Join(userapp.ErrValidation, err))
		return
	}
	out, err := h.Svc.UpdateUser(c.Request.Context(), uid, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

// bindJSON decodes the body; an empty body decodes as {}.
func bindJSON(c *gin.Context, dst any) error {
	if c.Request.Body == nil {
		return nil
	}
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (h *UserHandler) respondError(c *gin.Context, err error) {
	status, msg := http.StatusBadRequest, ""
	switch {
	case errors.Is(err, userapp.ErrValidation):
		msg = msgValidation
		h.log(c).WithField("details", validation.ToDetails(err)).Debug("validation failed")
	case errors.Is(err, userapp.ErrUserExists):
		msg = msgUserExists
	case errors.Is(err, userapp.ErrEmailInUse):
		msg = msgEmailInUse
	case errors.Is(err, userapp.ErrPasswordMismatch):
		msg = msgPasswordMismatch
	case errors.Is(err, userapp.ErrUserNotFound):
		status, msg = http.StatusNotFound, msgUserNotFound
	default:
		status, msg = http.StatusInternalServerError, msgInternal
		h.log(c).WithError(err).Error("user pipeline failed")
	}
	response.Error(c, status, msg)
}

func (h *UserHandler) log(c *gin.Context) *logrus.Entry {
	return h.Logger.WithFields(logrus.Fields{
		"request_id": c.GetString("request_id"),
		"path":       c.Request.URL.Path,
	})
}
