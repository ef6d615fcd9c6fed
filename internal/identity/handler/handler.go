package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-backoffice-service/internal/apperror"
	"github.com/fekuna/omnipos-backoffice-service/internal/auth"
	"github.com/fekuna/omnipos-backoffice-service/internal/identity"
	"github.com/fekuna/omnipos-backoffice-service/internal/identity/dto"
	"github.com/fekuna/omnipos-backoffice-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

type IdentityHandler struct {
	uc     identity.UseCase
	logger logger.ZapLogger
}

func NewIdentityHandler(uc identity.UseCase, log logger.ZapLogger) *IdentityHandler {
	return &IdentityHandler{uc: uc, logger: log}
}

func (h *IdentityHandler) SignUp(c *gin.Context) {
	var input dto.SignUpInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperror.BadRequest(c, err)
		return
	}

	profile, err := h.uc.SignUp(c.Request.Context(), &input)
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, profile)
}

func (h *IdentityHandler) Login(c *gin.Context) {
	var input dto.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperror.BadRequest(c, err)
		return
	}

	res, err := h.uc.Login(c.Request.Context(), &input)
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *IdentityHandler) Me(c *gin.Context) {
	session, err := h.uc.GetSession(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *IdentityHandler) UpdateProfile(c *gin.Context) {
	var input dto.UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperror.BadRequest(c, err)
		return
	}
	input.UserID = auth.GetUserID(c)

	profile, err := h.uc.UpdateProfile(c.Request.Context(), &input)
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *IdentityHandler) ChangePassword(c *gin.Context) {
	var input dto.ChangePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperror.BadRequest(c, err)
		return
	}
	input.UserID = auth.GetUserID(c)

	if err := h.uc.ChangePassword(c.Request.Context(), &input); err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
