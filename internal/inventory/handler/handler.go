package handler

import (
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-backoffice-service/internal/apperror"
	"github.com/fekuna/omnipos-backoffice-service/internal/auth"
	"github.com/fekuna/omnipos-backoffice-service/internal/inventory"
	"github.com/fekuna/omnipos-backoffice-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-backoffice-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	uc     inventory.UseCase
	logger logger.ZapLogger
}

func NewInventoryHandler(uc inventory.UseCase, log logger.ZapLogger) *InventoryHandler {
	return &InventoryHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *InventoryHandler) List(c *gin.Context) {
	filters := &dto.InventoryFilters{
		BusinessID:  auth.GetBusinessID(c),
		Search:      c.Query("search"),
		Category:    c.Query("category"),
		StockStatus: c.Query("stock_status"),
		SortBy:      c.Query("sort_by"),
		SortOrder:   c.Query("sort_order"),
		Page:        queryInt(c, "page", 1),
		PageSize:    queryInt(c, "page_size", 0),
	}
	switch filters.StockStatus {
	case "", dto.StockIn, dto.StockLow, dto.StockOut:
	default:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "stock_status must be in, low or out"})
		return
	}

	res, err := h.uc.ListItems(c.Request.Context(), filters)
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *InventoryHandler) Create(c *gin.Context) {
	var input dto.ItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperror.BadRequest(c, err)
		return
	}
	input.BusinessID = auth.GetBusinessID(c)

	item, err := h.uc.CreateItem(c.Request.Context(), &input)
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *InventoryHandler) Get(c *gin.Context) {
	item, err := h.uc.GetItem(c.Request.Context(), auth.GetBusinessID(c), c.Param("id"))
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *InventoryHandler) Update(c *gin.Context) {
	var input dto.UpdateItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperror.BadRequest(c, err)
		return
	}
	input.BusinessID = auth.GetBusinessID(c)
	input.ID = c.Param("id")
	input.UserID = auth.GetUserID(c)

	item, err := h.uc.UpdateItem(c.Request.Context(), &input)
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *InventoryHandler) Delete(c *gin.Context) {
	if err := h.uc.DeleteItem(c.Request.Context(), auth.GetBusinessID(c), c.Param("id")); err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *InventoryHandler) Adjust(c *gin.Context) {
	var input dto.AdjustInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperror.BadRequest(c, err)
		return
	}
	input.BusinessID = auth.GetBusinessID(c)
	input.ItemID = c.Param("id")
	input.UserID = auth.GetUserID(c)

	item, err := h.uc.AdjustStock(c.Request.Context(), &input)
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *InventoryHandler) UploadImage(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "An image file is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		apperror.Respond(c, h.logger, apperror.Internal("Failed to read upload", err))
		return
	}
	defer f.Close()

	item, err := h.uc.UploadImage(c.Request.Context(), &dto.ImageInput{
		BusinessID:  auth.GetBusinessID(c),
		ItemID:      c.Param("id"),
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *InventoryHandler) LowStock(c *gin.Context) {
	items, err := h.uc.ListLowStock(c.Request.Context(), auth.GetBusinessID(c))
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *InventoryHandler) Movements(c *gin.Context) {
	res, err := h.uc.ListMovements(c.Request.Context(), &dto.MovementFilters{
		BusinessID:   auth.GetBusinessID(c),
		ItemID:       c.Query("item_id"),
		MovementType: c.Query("movement_type"),
		Page:         queryInt(c, "page", 1),
		PageSize:     queryInt(c, "page_size", 0),
	})
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func queryInt(c *gin.Context, key string, def int) int {
	if v, err := strconv.Atoi(c.Query(key)); err == nil {
		return v
	}
	return def
}
