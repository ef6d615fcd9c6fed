package usecase

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fekuna/omnipos-backoffice-service/internal/apperror"
	"github.com/fekuna/omnipos-backoffice-service/internal/dashboard"
	"github.com/fekuna/omnipos-backoffice-service/internal/event"
	"github.com/fekuna/omnipos-backoffice-service/internal/ledger"
	"github.com/fekuna/omnipos-backoffice-service/internal/model"
	"github.com/fekuna/omnipos-backoffice-service/internal/order"
	"github.com/fekuna/omnipos-backoffice-service/internal/order/dto"
	"github.com/fekuna/omnipos-backoffice-service/internal/product"
	"github.com/fekuna/omnipos-backoffice-service/pkg/cache"
	"github.com/fekuna/omnipos-backoffice-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxClientName    = 100
	maxClientContact = 255
	maxDeliveryInfo  = 1000
	maxPaymentMethod = 100
	maxQuantity      = 10000
	defaultPageSize  = 50
	lockTTL          = 5 * time.Second
)

type orderUseCase struct {
	repo          order.Repository
	publisher     event.Publisher
	cache         *cache.RedisClient
	publicBaseURL string
	logger        logger.ZapLogger
}

func NewOrderUseCase(repo order.Repository, publisher event.Publisher, cache *cache.RedisClient, publicBaseURL string, log logger.ZapLogger) order.UseCase {
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	return &orderUseCase{
		repo:          repo,
		publisher:     publisher,
		cache:         cache,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:        log,
	}
}

// DeliveryLink is the public URL a driver opens to confirm a delivery.
func DeliveryLink(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + "/delivery/" + token
}

func (uc *orderUseCase) CreateOrder(ctx context.Context, input *dto.CreateOrderInput) (*dto.OrderDetail, error) {
	name, err := validateDetails(input.ClientName, input.ClientContact, input.DeliveryInfo, input.PaymentMethod, input.Quantity)
	if err != nil {
		return nil, err
	}
	if input.ProductID == "" {
		return nil, apperror.Validation("Product is required")
	}

	now := time.Now()
	productID := input.ProductID
	o := &model.Order{
		BaseModel:     model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		BusinessID:    input.BusinessID,
		ClientName:    name,
		ClientContact: trimmed(input.ClientContact),
		ProductID:     &productID,
		Quantity:      input.Quantity,
		Status:        model.StatusNewInquiry,
		DeliveryInfo:  trimmed(input.DeliveryInfo),
		PaymentMethod: trimmed(input.PaymentMethod),
	}

	err = uc.withProductLock(ctx, input.BusinessID, productID, func() error {
		return uc.repo.Create(ctx, o, actorOf(input.UserID))
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("Order created",
		zap.String("business_id", o.BusinessID),
		zap.String("order_id", o.ID),
		zap.String("product_id", productID),
		zap.Int("quantity", o.Quantity),
	)
	uc.afterWrite(ctx, event.NewOrderEvent(event.TypeOrderCreated, o, "", ""))
	return &dto.OrderDetail{Order: *o}, nil
}

func (uc *orderUseCase) GetOrder(ctx context.Context, businessID, id string) (*dto.OrderDetail, error) {
	o, err := uc.repo.FindByID(ctx, businessID, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperror.NotFound("Order not found")
	}
	return uc.detail(ctx, o, nil)
}

func (uc *orderUseCase) ListOrders(ctx context.Context, filters *dto.OrderFilters) (*dto.OrderList, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = defaultPageSize
	}
	filters.Search = strings.TrimSpace(filters.Search)
	for _, s := range filters.Statuses {
		if !s.Valid() {
			return nil, apperror.Validationf("Unknown status %q", s)
		}
	}
	if filters.DateFrom != nil && filters.DateTo != nil && filters.DateTo.Before(*filters.DateFrom) {
		return nil, apperror.Validation("date_to must not be before date_from")
	}

	orders, filtered, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, err
	}
	total, err := uc.repo.Count(ctx, filters.BusinessID)
	if err != nil {
		return nil, err
	}
	return &dto.OrderList{
		Orders:   orders,
		Total:    total,
		Filtered: filtered,
		Page:     filters.Page,
		PageSize: filters.PageSize,
	}, nil
}

func (uc *orderUseCase) Kanban(ctx context.Context, businessID string) (*dto.Kanban, error) {
	orders, _, err := uc.repo.FindAll(ctx, &dto.OrderFilters{BusinessID: businessID})
	if err != nil {
		return nil, err
	}
	return BuildKanban(orders), nil
}

// BuildKanban groups orders into one column per status, in workflow order.
func BuildKanban(orders []model.Order) *dto.Kanban {
	idx := make(map[model.OrderStatus]int, len(model.OrderStatuses))
	k := &dto.Kanban{Columns: make([]dto.KanbanColumn, len(model.OrderStatuses))}
	for i, s := range model.OrderStatuses {
		idx[s] = i
		k.Columns[i] = dto.KanbanColumn{Status: s, Orders: []model.Order{}}
	}
	for _, o := range orders {
		i, ok := idx[o.Status]
		if !ok {
			continue
		}
		k.Columns[i].Orders = append(k.Columns[i].Orders, o)
		k.Columns[i].Count++
	}
	return k
}

func (uc *orderUseCase) UpdateOrder(ctx context.Context, input *dto.UpdateOrderInput) (*dto.OrderDetail, error) {
	name, err := validateDetails(input.ClientName, input.ClientContact, input.DeliveryInfo, input.PaymentMethod, input.Quantity)
	if err != nil {
		return nil, err
	}
	input.ClientName = name
	input.ClientContact = trimmed(input.ClientContact)
	input.DeliveryInfo = trimmed(input.DeliveryInfo)
	input.PaymentMethod = trimmed(input.PaymentMethod)

	current, err := uc.repo.FindByID(ctx, input.BusinessID, input.ID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, apperror.NotFound("Order not found")
	}

	var o *model.Order
	err = uc.withProductLock(ctx, input.BusinessID, deref(current.ProductID), func() error {
		var err error
		o, err = uc.repo.Edit(ctx, input)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("Order updated", zap.String("business_id", o.BusinessID), zap.String("order_id", o.ID))
	uc.afterWrite(ctx, event.NewOrderEvent(event.TypeOrderUpdated, o, "", ""))
	return uc.detail(ctx, o, nil)
}

func (uc *orderUseCase) ChangeStatus(ctx context.Context, input *dto.StatusInput) (*dto.OrderDetail, error) {
	if !input.Status.Valid() {
		return nil, apperror.Validationf("Unknown status %q", input.Status)
	}

	current, err := uc.repo.FindByID(ctx, input.BusinessID, input.ID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, apperror.NotFound("Order not found")
	}

	var (
		o        *model.Order
		previous model.OrderStatus
		dc       *model.DeliveryConfirmation
	)
	err = uc.withProductLock(ctx, input.BusinessID, deref(current.ProductID), func() error {
		var err error
		o, previous, dc, err = uc.repo.ChangeStatus(ctx, input)
		return err
	})
	if err != nil {
		return nil, err
	}

	if previous != o.Status {
		uc.logger.Info("Order status changed",
			zap.String("business_id", o.BusinessID),
			zap.String("order_id", o.ID),
			zap.String("from", string(previous)),
			zap.String("to", string(o.Status)),
		)
		token := ""
		if dc != nil {
			token = dc.DriverToken
		}
		uc.afterWrite(ctx, event.NewOrderEvent(event.TypeOrderStatusChanged, o, previous, token))
	}
	return uc.detail(ctx, o, dc)
}

func (uc *orderUseCase) AssignDriver(ctx context.Context, input *dto.AssignDriverInput) (*dto.OrderDetail, error) {
	var driverID *string
	if input.DriverID != nil && strings.TrimSpace(*input.DriverID) != "" {
		id := strings.TrimSpace(*input.DriverID)
		ok, err := uc.repo.IsDriver(ctx, input.BusinessID, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperror.Validation("Selected user is not a driver in this business")
		}
		driverID = &id
	}

	o, err := uc.repo.AssignDriver(ctx, input.BusinessID, input.ID, driverID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperror.NotFound("Order not found")
	}

	uc.logger.Info("Order driver assigned",
		zap.String("order_id", o.ID),
		zap.Stringp("driver_id", o.AssignedDriverID),
	)

	d, err := uc.detail(ctx, o, nil)
	if err != nil {
		return nil, err
	}
	token := ""
	if d.Delivery != nil {
		token = d.Delivery.DriverToken
	}
	uc.afterWrite(ctx, event.NewOrderEvent(event.TypeDriverAssigned, o, "", token))
	return d, nil
}

func (uc *orderUseCase) DriverDashboard(ctx context.Context, businessID, driverID string) (*dto.DriverDashboard, error) {
	orders, err := uc.repo.DriverOrders(ctx, businessID, driverID)
	if err != nil {
		return nil, err
	}

	res := &dto.DriverDashboard{Pending: []dto.DriverOrder{}, Completed: []dto.DriverOrder{}}
	today := time.Now().UTC().Format(time.DateOnly)
	for _, o := range orders {
		if o.DriverToken != nil {
			o.Link = DeliveryLink(uc.publicBaseURL, *o.DriverToken)
		}
		switch o.Status {
		case model.StatusReadyForDelivery:
			res.Pending = append(res.Pending, o)
		case model.StatusCompleted:
			res.Completed = append(res.Completed, o)
			if o.ConfirmedAt != nil && o.ConfirmedAt.UTC().Format(time.DateOnly) == today {
				res.CompletedToday++
			}
		}
	}
	res.PendingCount = len(res.Pending)
	res.CompletedCount = len(res.Completed)
	return res, nil
}

// detail attaches the delivery confirmation; dc is loaded when nil.
func (uc *orderUseCase) detail(ctx context.Context, o *model.Order, dc *model.DeliveryConfirmation) (*dto.OrderDetail, error) {
	if dc == nil {
		var err error
		if dc, err = uc.repo.FindConfirmation(ctx, o.ID); err != nil {
			return nil, err
		}
	}
	d := &dto.OrderDetail{Order: *o}
	if dc != nil {
		d.Delivery = &dto.DeliveryView{
			DriverToken: dc.DriverToken,
			Link:        DeliveryLink(uc.publicBaseURL, dc.DriverToken),
			ConfirmedAt: dc.ConfirmedAt,
			PhotoURL:    dc.DeliveryPhotoURL,
			Notes:       dc.DriverNotes,
		}
	}
	return d, nil
}

// withProductLock serializes stock changes of one product across instances.
func (uc *orderUseCase) withProductLock(ctx context.Context, businessID, productID string, fn func() error) error {
	if uc.cache == nil || productID == "" {
		return fn()
	}
	err := uc.cache.WithLock(ctx, ledger.ProductLockKey(businessID, productID), uuid.New().String(), lockTTL, fn)
	if errors.Is(err, cache.ErrLockNotAcquired) {
		return apperror.Conflict("This product is being updated, please try again")
	}
	return err
}

func (uc *orderUseCase) afterWrite(ctx context.Context, evt event.Event) {
	if err := product.InvalidateLists(ctx, uc.cache, evt.BusinessID); err != nil {
		uc.logger.Warn("failed to invalidate product cache", zap.String("business_id", evt.BusinessID), zap.Error(err))
	}
	dashboard.InvalidateAsync(uc.cache, uc.logger, evt.BusinessID)
	event.PublishAsync(uc.publisher, uc.logger, evt)
}

func validateDetails(clientName string, contact, deliveryInfo, paymentMethod *string, quantity int) (string, error) {
	name := strings.TrimSpace(clientName)
	if name == "" {
		return "", apperror.Validation("Client name is required")
	}
	if utf8.RuneCountInString(name) > maxClientName {
		return "", apperror.Validationf("Client name must be less than %d characters", maxClientName)
	}
	if contact != nil && utf8.RuneCountInString(strings.TrimSpace(*contact)) > maxClientContact {
		return "", apperror.Validationf("Client contact must be less than %d characters", maxClientContact)
	}
	if deliveryInfo != nil && utf8.RuneCountInString(strings.TrimSpace(*deliveryInfo)) > maxDeliveryInfo {
		return "", apperror.Validationf("Delivery info must be less than %d characters", maxDeliveryInfo)
	}
	if paymentMethod != nil && utf8.RuneCountInString(strings.TrimSpace(*paymentMethod)) > maxPaymentMethod {
		return "", apperror.Validationf("Payment method must be less than %d characters", maxPaymentMethod)
	}
	if quantity < 1 || quantity > maxQuantity {
		return "", apperror.Validationf("Quantity must be between 1 and %d", maxQuantity)
	}
	return name, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func actorOf(userID string) *string {
	if userID == "" {
		return nil
	}
	return &userID
}
