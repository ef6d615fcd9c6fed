package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-backoffice-service/internal/model"
	"github.com/fekuna/omnipos-backoffice-service/pkg/broker"
	"github.com/fekuna/omnipos-backoffice-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	TypeOrderCreated       = "OrderCreated"
	TypeOrderUpdated       = "OrderUpdated"
	TypeOrderStatusChanged = "OrderStatusChanged"
	TypeDriverAssigned     = "OrderDriverAssigned"
	TypeDeliveryConfirmed  = "DeliveryConfirmed"
)

type Event struct {
	EventID    string       `json:"event_id"`
	EventType  string       `json:"event_type"`
	BusinessID string       `json:"business_id"`
	Payload    OrderPayload `json:"payload"`
	Timestamp  time.Time    `json:"timestamp"`
}

type OrderPayload struct {
	OrderID          string            `json:"order_id"`
	Status           model.OrderStatus `json:"status"`
	PreviousStatus   model.OrderStatus `json:"previous_status,omitempty"`
	AssignedDriverID *string           `json:"assigned_driver_id,omitempty"`
	DeliveryToken    string            `json:"delivery_token,omitempty"`
}

func NewOrderEvent(eventType string, o *model.Order, previous model.OrderStatus, deliveryToken string) Event {
	return Event{
		EventID:    uuid.New().String(),
		EventType:  eventType,
		BusinessID: o.BusinessID,
		Payload: OrderPayload{
			OrderID:          o.ID,
			Status:           o.Status,
			PreviousStatus:   previous,
			AssignedDriverID: o.AssignedDriverID,
			DeliveryToken:    deliveryToken,
		},
		Timestamp: time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

type KafkaPublisher struct {
	producer *broker.KafkaProducer
	logger   logger.ZapLogger
}

func NewKafkaPublisher(producer *broker.KafkaProducer, log logger.ZapLogger) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, logger: log}
}

func (p *KafkaPublisher) Publish(ctx context.Context, evt Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	if err := p.producer.Publish(ctx, evt.Payload.OrderID, data); err != nil {
		return err
	}
	p.logger.Debug("Published event", zap.String("event_type", evt.EventType), zap.String("order_id", evt.Payload.OrderID))
	return nil
}

// NopPublisher drops events when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// PublishAsync sends evt in the background; failures are logged, never returned.
func PublishAsync(pub Publisher, log logger.ZapLogger, evt Event) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := pub.Publish(ctx, evt); err != nil {
			log.Error("failed to publish event",
				zap.String("event_type", evt.EventType),
				zap.String("order_id", evt.Payload.OrderID),
				zap.Error(err))
		}
	}()
}
