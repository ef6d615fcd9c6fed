package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-backoffice-service/internal/apperror"
	"github.com/fekuna/omnipos-backoffice-service/internal/auth"
	"github.com/fekuna/omnipos-backoffice-service/internal/business"
	"github.com/fekuna/omnipos-backoffice-service/internal/business/dto"
	"github.com/fekuna/omnipos-backoffice-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

type BusinessHandler struct {
	uc     business.UseCase
	logger logger.ZapLogger
}

func NewBusinessHandler(uc business.UseCase, log logger.ZapLogger) *BusinessHandler {
	return &BusinessHandler{uc: uc, logger: log}
}

func (h *BusinessHandler) Currencies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"currencies": h.uc.Currencies()})
}

func (h *BusinessHandler) Onboard(c *gin.Context) {
	var input dto.OnboardInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperror.BadRequest(c, err)
		return
	}
	input.UserID = auth.GetUserID(c)

	b, err := h.uc.Onboard(c.Request.Context(), &input)
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *BusinessHandler) Get(c *gin.Context) {
	b, err := h.uc.GetBusiness(c.Request.Context(), auth.GetBusinessID(c))
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BusinessHandler) UpdateSettings(c *gin.Context) {
	var input dto.UpdateSettingsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperror.BadRequest(c, err)
		return
	}
	input.BusinessID = auth.GetBusinessID(c)

	b, err := h.uc.UpdateSettings(c.Request.Context(), &input)
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BusinessHandler) GetBudget(c *gin.Context) {
	b, err := h.uc.GetBudget(c.Request.Context(), auth.GetBusinessID(c))
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BusinessHandler) UpdateBudget(c *gin.Context) {
	var input dto.UpdateBudgetInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperror.BadRequest(c, err)
		return
	}
	input.BusinessID = auth.GetBusinessID(c)

	b, err := h.uc.UpdateBudget(c.Request.Context(), &input)
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
