package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fekuna/omnipos-backoffice-service/internal/apperror"
	"github.com/fekuna/omnipos-backoffice-service/internal/auth"
	"github.com/fekuna/omnipos-backoffice-service/internal/model"
	"github.com/fekuna/omnipos-backoffice-service/internal/order"
	"github.com/fekuna/omnipos-backoffice-service/internal/order/dto"
	"github.com/fekuna/omnipos-backoffice-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	uc     order.UseCase
	logger logger.ZapLogger
}

func NewOrderHandler(uc order.UseCase, log logger.ZapLogger) *OrderHandler {
	return &OrderHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *OrderHandler) Create(c *gin.Context) {
	var input dto.CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperror.BadRequest(c, err)
		return
	}
	input.BusinessID = auth.GetBusinessID(c)
	input.UserID = auth.GetUserID(c)

	o, err := h.uc.CreateOrder(c.Request.Context(), &input)
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

// List accepts status both repeated (?status=a&status=b) and comma separated.
func (h *OrderHandler) List(c *gin.Context) {
	filters := &dto.OrderFilters{
		BusinessID: auth.GetBusinessID(c),
		Search:     c.Query("search"),
	}
	filters.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filters.PageSize, _ = strconv.Atoi(c.Query("page_size"))

	for _, v := range c.QueryArray("status") {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				filters.Statuses = append(filters.Statuses, model.OrderStatus(s))
			}
		}
	}

	var err error
	if filters.DateFrom, err = parseDate(c.Query("date_from")); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "date_from must be YYYY-MM-DD"})
		return
	}
	if filters.DateTo, err = parseDate(c.Query("date_to")); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "date_to must be YYYY-MM-DD"})
		return
	}

	res, err := h.uc.ListOrders(c.Request.Context(), filters)
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *OrderHandler) Kanban(c *gin.Context) {
	k, err := h.uc.Kanban(c.Request.Context(), auth.GetBusinessID(c))
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, k)
}

func (h *OrderHandler) Get(c *gin.Context) {
	o, err := h.uc.GetOrder(c.Request.Context(), auth.GetBusinessID(c), c.Param("id"))
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) Update(c *gin.Context) {
	var input dto.UpdateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperror.BadRequest(c, err)
		return
	}
	input.BusinessID = auth.GetBusinessID(c)
	input.UserID = auth.GetUserID(c)
	input.ID = c.Param("id")

	o, err := h.uc.UpdateOrder(c.Request.Context(), &input)
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) ChangeStatus(c *gin.Context) {
	var input dto.StatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperror.BadRequest(c, err)
		return
	}
	input.BusinessID = auth.GetBusinessID(c)
	input.UserID = auth.GetUserID(c)
	input.ID = c.Param("id")

	o, err := h.uc.ChangeStatus(c.Request.Context(), &input)
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) AssignDriver(c *gin.Context) {
	var input dto.AssignDriverInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperror.BadRequest(c, err)
		return
	}
	input.BusinessID = auth.GetBusinessID(c)
	input.ID = c.Param("id")

	o, err := h.uc.AssignDriver(c.Request.Context(), &input)
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// DriverOrders lists the caller's own deliveries.
func (h *OrderHandler) DriverOrders(c *gin.Context) {
	res, err := h.uc.DriverDashboard(c.Request.Context(), auth.GetBusinessID(c), auth.GetUserID(c))
	if err != nil {
		apperror.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func parseDate(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
