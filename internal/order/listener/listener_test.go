package listener

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fekuna/omnipos-backoffice-service/internal/dashboard"
	"github.com/fekuna/omnipos-backoffice-service/internal/event"
	"github.com/fekuna/omnipos-backoffice-service/internal/model"
	"github.com/fekuna/omnipos-backoffice-service/internal/product"
	"github.com/fekuna/omnipos-backoffice-service/pkg/cache"
	"github.com/fekuna/omnipos-backoffice-service/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
)

type fakeLookup struct {
	orders map[string]*model.Order
	chats  map[string]int64
}

func (f *fakeLookup) FindByID(_ context.Context, businessID, id string) (*model.Order, error) {
	if o, ok := f.orders[id]; ok && o.BusinessID == businessID {
		return o, nil
	}
	return nil, nil
}

func (f *fakeLookup) DriverChatID(_ context.Context, userID string) (*int64, error) {
	if id, ok := f.chats[userID]; ok {
		return &id, nil
	}
	return nil, nil
}

type sentMessage struct {
	chatID int64
	text   string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (n *recordingNotifier) Send(_ context.Context, chatID int64, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMessage{chatID, text})
	return nil
}

// queueReader hands out queued messages and then blocks until the context ends.
type queueReader struct {
	msgs chan kafka.Message
}

func (q *queueReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-q.msgs:
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func strPtr(s string) *string { return &s }

func fixture() *fakeLookup {
	o := &model.Order{
		BusinessID:       "b1",
		ClientName:       "Ana",
		ProductName:      "Sourdough",
		Quantity:         3,
		Status:           model.StatusReadyForDelivery,
		AssignedDriverID: strPtr("d1"),
	}
	o.ID = "o1"
	return &fakeLookup{
		orders: map[string]*model.Order{"o1": o},
		chats:  map[string]int64{"d1": 4242},
	}
}

func encode(t *testing.T, evt event.Event) []byte {
	t.Helper()
	b, err := json.Marshal(evt)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestProcessMessageNotifiesDriver(t *testing.T) {
	tests := []struct {
		name     string
		evt      event.Event
		wantSent bool
	}{
		{
			name: "moved to ready",
			evt: event.Event{EventType: event.TypeOrderStatusChanged, BusinessID: "b1", Payload: event.OrderPayload{
				OrderID: "o1", Status: model.StatusReadyForDelivery, PreviousStatus: model.StatusInProgress,
				AssignedDriverID: strPtr("d1"), DeliveryToken: "tok",
			}},
			wantSent: true,
		},
		{
			name: "driver assigned while ready",
			evt: event.Event{EventType: event.TypeDriverAssigned, BusinessID: "b1", Payload: event.OrderPayload{
				OrderID: "o1", Status: model.StatusReadyForDelivery,
				AssignedDriverID: strPtr("d1"), DeliveryToken: "tok",
			}},
			wantSent: true,
		},
		{
			name: "driver assigned before ready",
			evt: event.Event{EventType: event.TypeDriverAssigned, BusinessID: "b1", Payload: event.OrderPayload{
				OrderID: "o1", Status: model.StatusInProgress, AssignedDriverID: strPtr("d1"),
			}},
		},
		{
			name: "ready without driver",
			evt: event.Event{EventType: event.TypeOrderStatusChanged, BusinessID: "b1", Payload: event.OrderPayload{
				OrderID: "o1", Status: model.StatusReadyForDelivery, PreviousStatus: model.StatusInProgress, DeliveryToken: "tok",
			}},
		},
		{
			name: "driver without telegram",
			evt: event.Event{EventType: event.TypeOrderStatusChanged, BusinessID: "b1", Payload: event.OrderPayload{
				OrderID: "o1", Status: model.StatusReadyForDelivery, PreviousStatus: model.StatusInProgress,
				AssignedDriverID: strPtr("d2"), DeliveryToken: "tok",
			}},
		},
		{
			name: "other event",
			evt: event.Event{EventType: event.TypeOrderUpdated, BusinessID: "b1", Payload: event.OrderPayload{
				OrderID: "o1", Status: model.StatusReadyForDelivery, AssignedDriverID: strPtr("d1"), DeliveryToken: "tok",
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &recordingNotifier{}
			l := NewOrderListener(nil, fixture(), n, nil, "https://ops.example.com/", logger.NewNop())

			l.processMessage(context.Background(), encode(t, tt.evt))

			if !tt.wantSent {
				if len(n.sent) != 0 {
					t.Fatalf("unexpected message: %+v", n.sent)
				}
				return
			}
			if len(n.sent) != 1 {
				t.Fatalf("sent %d messages, want 1", len(n.sent))
			}
			msg := n.sent[0]
			if msg.chatID != 4242 {
				t.Errorf("chat = %d", msg.chatID)
			}
			for _, want := range []string{"Sourdough", "Ana", "https://ops.example.com/delivery/tok"} {
				if !strings.Contains(msg.text, want) {
					t.Errorf("message %q missing %q", msg.text, want)
				}
			}
		})
	}
}

func TestProcessMessageInvalidatesCaches(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := &cache.RedisClient{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	mr.Set(dashboard.CacheKey("b1"), "{}")
	mr.Set(dashboard.CacheKey("b2"), "{}")
	mr.Set(product.ListCachePrefix("b1")+"abc", "{}")

	l := NewOrderListener(nil, fixture(), nil, rc, "", logger.NewNop())
	l.processMessage(context.Background(), encode(t, event.Event{
		EventType: event.TypeOrderCreated, BusinessID: "b1", Payload: event.OrderPayload{OrderID: "o1"},
	}))

	if mr.Exists(dashboard.CacheKey("b1")) {
		t.Fatal("dashboard cache of b1 should be dropped")
	}
	if !mr.Exists(dashboard.CacheKey("b2")) {
		t.Fatal("other businesses must keep their cache")
	}
	if mr.Exists(product.ListCachePrefix("b1") + "abc") {
		t.Fatal("product lists of b1 should be dropped")
	}

	// malformed payloads are skipped
	l.processMessage(context.Background(), []byte("{"))
}

func TestStartStopsOnCancel(t *testing.T) {
	q := &queueReader{msgs: make(chan kafka.Message, 1)}
	n := &recordingNotifier{}
	l := NewOrderListener(q, fixture(), n, nil, "https://ops.example.com", logger.NewNop())

	q.msgs <- kafka.Message{Value: encode(t, event.Event{
		EventType: event.TypeOrderStatusChanged, BusinessID: "b1", Payload: event.OrderPayload{
			OrderID: "o1", Status: model.StatusReadyForDelivery, PreviousStatus: model.StatusDepositReceived,
			AssignedDriverID: strPtr("d1"), DeliveryToken: "tok",
		},
	})}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.Start(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		n.mu.Lock()
		got := len(n.sent)
		n.mu.Unlock()
		if got == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("listener did not process the queued message")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not stop")
	}
}
