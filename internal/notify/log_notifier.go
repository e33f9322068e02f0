package notify

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/fleetfeast/internal/domain"
)

// LogNotifier пишет уведомление в лог; используется, когда Kafka не настроена.
type LogNotifier struct {
	logger *log.Entry
}

// NewLogNotifier создаёт notifier поверх logger; при nil используется logger по умолчанию.
func NewLogNotifier(logger *log.Entry) *LogNotifier {
	if logger == nil {
		logger = log.WithField("component", "notify-log")
	}
	return &LogNotifier{logger: logger}
}

// Notify реализует domain.Notifier.
func (n *LogNotifier) Notify(ctx context.Context, notification domain.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.logger.WithFields(log.Fields{
		"notification_id": notification.ID,
		"order_id":        notification.OrderID,
		"channel":         notification.Channel,
		"phone":           notification.Phone,
	}).Info(notification.Body)
	return nil
}

var _ domain.Notifier = (*LogNotifier)(nil)
