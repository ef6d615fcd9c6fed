package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-backoffice-service/internal/apperror"
	"github.com/fekuna/omnipos-backoffice-service/internal/auth"
	"github.com/fekuna/omnipos-backoffice-service/internal/dashboard"
	"github.com/fekuna/omnipos-backoffice-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	uc     dashboard.UseCase
	logger logger.ZapLogger
}

func NewDashboardHandler(uc dashboard.UseCase, log logger.ZapLogger) *DashboardHandler {
	return &DashboardHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *DashboardHandler) Summary(c *gin.Context) {
	s, err := h.uc.GetSummary(c.Request.Context(), auth.GetBusinessID(c))
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *DashboardHandler) Checklist(c *gin.Context) {
	isOwner := false
	if u := auth.GetUser(c); u != nil {
		isOwner = u.IsOwner()
	}
	cl, err := h.uc.GetChecklist(c.Request.Context(), auth.GetBusinessID(c), isOwner)
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, cl)
}
