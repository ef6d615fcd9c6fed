package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-backoffice-service/internal/apperror"
	"github.com/fekuna/omnipos-backoffice-service/internal/delivery"
	"github.com/fekuna/omnipos-backoffice-service/internal/delivery/dto"
	"github.com/fekuna/omnipos-backoffice-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

// DeliveryHandler serves the unauthenticated driver confirmation page.
type DeliveryHandler struct {
	uc     delivery.UseCase
	logger logger.ZapLogger
}

func NewDeliveryHandler(uc delivery.UseCase, log logger.ZapLogger) *DeliveryHandler {
	return &DeliveryHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *DeliveryHandler) Get(c *gin.Context) {
	d, err := h.uc.GetDelivery(c.Request.Context(), c.Param("token"))
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *DeliveryHandler) Confirm(c *gin.Context) {
	fh, err := c.FormFile("photo")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "A delivery photo is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		apperror.Respond(c, h.logger, apperror.Internal("Failed to read upload", err))
		return
	}
	defer f.Close()

	d, err := h.uc.ConfirmDelivery(c.Request.Context(), &dto.ConfirmInput{
		Token:       c.Param("token"),
		Notes:       c.PostForm("notes"),
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, d)
}
