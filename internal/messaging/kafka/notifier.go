package kafka

import (
	"context"

	"github.com/vladislavdragonenkov/fleetfeast/internal/domain"
)

// Notifier публикует уведомления клиентам в Kafka; доставку до телефона выполняет шлюз.
type Notifier struct {
	producer *Producer
	topic    string
}

// NewNotifier создаёт notifier; пустой topic заменяется на TopicCustomerNotifications.
func NewNotifier(producer *Producer, topic string) *Notifier {
	if topic == "" {
		topic = TopicCustomerNotifications
	}
	return &Notifier{producer: producer, topic: topic}
}

// Topic возвращает топик публикации.
func (n *Notifier) Topic() string {
	return n.topic
}

// Notify реализует domain.Notifier.
func (n *Notifier) Notify(ctx context.Context, notification domain.Notification) error {
	event := NewNotificationEvent(notification)
	return n.producer.Publish(ctx, n.topic, event.Key(), event,
		Header{Key: HeaderEventType, Value: string(event.EventType)},
		Header{Key: HeaderChannel, Value: string(event.Channel)},
	)
}

// Close закрывает producer.
func (n *Notifier) Close() error {
	return n.producer.Close()
}

var _ domain.Notifier = (*Notifier)(nil)
