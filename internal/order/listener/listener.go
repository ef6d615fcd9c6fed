package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-backoffice-service/internal/dashboard"
	"github.com/fekuna/omnipos-backoffice-service/internal/event"
	"github.com/fekuna/omnipos-backoffice-service/internal/model"
	"github.com/fekuna/omnipos-backoffice-service/internal/notify"
	"github.com/fekuna/omnipos-backoffice-service/internal/order/usecase"
	"github.com/fekuna/omnipos-backoffice-service/internal/product"
	"github.com/fekuna/omnipos-backoffice-service/pkg/cache"
	"github.com/fekuna/omnipos-backoffice-service/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// Lookup resolves what a driver notification needs.
type Lookup interface {
	FindByID(ctx context.Context, businessID, id string) (*model.Order, error)
	DriverChatID(ctx context.Context, userID string) (*int64, error)
}

type OrderListener struct {
	consumer      MessageReader
	lookup        Lookup
	notifier      notify.Notifier
	cache         *cache.RedisClient
	publicBaseURL string
	logger        logger.ZapLogger
}

func NewOrderListener(consumer MessageReader, lookup Lookup, notifier notify.Notifier, cache *cache.RedisClient, publicBaseURL string, logger logger.ZapLogger) *OrderListener {
	if notifier == nil {
		notifier = notify.NopNotifier{}
	}
	return &OrderListener{
		consumer:      consumer,
		lookup:        lookup,
		notifier:      notifier,
		cache:         cache,
		publicBaseURL: publicBaseURL,
		logger:        logger,
	}
}

func (l *OrderListener) Start(ctx context.Context) {
	l.logger.Info("Starting Order Kafka Listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping Order Kafka Listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

func (l *OrderListener) processMessage(ctx context.Context, value []byte) {
	var evt event.Event
	if err := json.Unmarshal(value, &evt); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}
	if evt.BusinessID == "" {
		return
	}

	if err := dashboard.Invalidate(ctx, l.cache, evt.BusinessID); err != nil {
		l.logger.Warn("Failed to invalidate dashboard", zap.String("business_id", evt.BusinessID), zap.Error(err))
	}
	if err := product.InvalidateLists(ctx, l.cache, evt.BusinessID); err != nil {
		l.logger.Warn("Failed to invalidate product lists", zap.String("business_id", evt.BusinessID), zap.Error(err))
	}

	if !wantsDriverNotice(evt) {
		return
	}
	if err := l.notifyDriver(ctx, evt); err != nil {
		l.logger.Error("Failed to notify driver",
			zap.String("order_id", evt.Payload.OrderID),
			zap.Error(err))
	}
}

// wantsDriverNotice is true when an order with an assigned driver has just
// become deliverable, or a driver was put on an order that already is.
func wantsDriverNotice(evt event.Event) bool {
	p := evt.Payload
	if p.Status != model.StatusReadyForDelivery || p.AssignedDriverID == nil || p.DeliveryToken == "" {
		return false
	}
	switch evt.EventType {
	case event.TypeOrderStatusChanged:
		return p.PreviousStatus != model.StatusReadyForDelivery
	case event.TypeDriverAssigned:
		return true
	}
	return false
}

func (l *OrderListener) notifyDriver(ctx context.Context, evt event.Event) error {
	chatID, err := l.lookup.DriverChatID(ctx, *evt.Payload.AssignedDriverID)
	if err != nil {
		return err
	}
	if chatID == nil {
		l.logger.Debug("Driver has no telegram chat", zap.String("driver_id", *evt.Payload.AssignedDriverID))
		return nil
	}

	o, err := l.lookup.FindByID(ctx, evt.BusinessID, evt.Payload.OrderID)
	if err != nil {
		return err
	}
	if o == nil {
		return nil
	}

	link := usecase.DeliveryLink(l.publicBaseURL, evt.Payload.DeliveryToken)
	text := notify.DeliveryMessage(o.ClientName, o.ProductName, o.Quantity, link)
	if err := l.notifier.Send(ctx, *chatID, text); err != nil {
		return err
	}
	l.logger.Info("Driver notified",
		zap.String("order_id", o.ID),
		zap.String("driver_id", *evt.Payload.AssignedDriverID))
	return nil
}
