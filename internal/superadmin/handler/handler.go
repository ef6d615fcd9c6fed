package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-backoffice-service/internal/apperror"
	"github.com/fekuna/omnipos-backoffice-service/internal/superadmin"
	"github.com/fekuna/omnipos-backoffice-service/internal/superadmin/dto"
	"github.com/fekuna/omnipos-backoffice-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

type SuperadminHandler struct {
	uc     superadmin.UseCase
	logger logger.ZapLogger
}

func NewSuperadminHandler(uc superadmin.UseCase, log logger.ZapLogger) *SuperadminHandler {
	return &SuperadminHandler{uc: uc, logger: log}
}

func (h *SuperadminHandler) Stats(c *gin.Context) {
	stats, err := h.uc.Stats(c.Request.Context())
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *SuperadminHandler) ListBusinesses(c *gin.Context) {
	list, err := h.uc.ListBusinesses(c.Request.Context())
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"businesses": list})
}

func (h *SuperadminHandler) GetBusiness(c *gin.Context) {
	detail, err := h.uc.GetBusiness(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *SuperadminHandler) UpdateBusiness(c *gin.Context) {
	var input dto.UpdateBusinessInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperror.BadRequest(c, err)
		return
	}
	input.ID = c.Param("id")

	b, err := h.uc.UpdateBusiness(c.Request.Context(), &input)
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *SuperadminHandler) ListUsers(c *gin.Context) {
	users, err := h.uc.ListUsers(c.Request.Context())
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// UpdateUserProfile serves POST /functions/admin-update-profile.
func (h *SuperadminHandler) UpdateUserProfile(c *gin.Context) {
	var input dto.UpdateUserProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "target_user_id required"})
		return
	}

	if err := h.uc.UpdateUserProfile(c.Request.Context(), &input); err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
