package kafka

import (
	"strconv"
	"time"

	"github.com/vladislavdragonenkov/fleetfeast/internal/domain"
)

// EventType определяет тип события
type EventType string

const (
	// EventTypeCustomerNotified — клиенту отправлено сообщение о заказе.
	EventTypeCustomerNotified EventType = "customer.notified"
)

// TopicCustomerNotifications — топик по умолчанию для сообщений клиентам.
const TopicCustomerNotifications = "fleetfeast.customer.notifications"

// Kafka headers
const (
	HeaderEventType = "x-event-type"
	HeaderChannel   = "x-channel"
)

// NotificationEvent — сообщение клиенту в том виде, в каком его читает шлюз SMS/WhatsApp.
type NotificationEvent struct {
	EventID   string         `json:"event_id"`
	EventType EventType      `json:"event_type"`
	OrderID   int64          `json:"order_id"`
	Channel   domain.Channel `json:"channel"`
	Phone     string         `json:"phone"`
	Body      string         `json:"body"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewNotificationEvent строит событие из уведомления.
func NewNotificationEvent(n domain.Notification) NotificationEvent {
	ts := n.CreatedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	return NotificationEvent{
		EventID:   n.ID,
		EventType: EventTypeCustomerNotified,
		OrderID:   n.OrderID,
		Channel:   n.Channel,
		Phone:     n.Phone,
		Body:      n.Body,
		Timestamp: ts.UTC(),
	}
}

// Key — ключ партиционирования: все сообщения одного заказа идут в одну партицию.
func (e NotificationEvent) Key() string {
	return strconv.FormatInt(e.OrderID, 10)
}
