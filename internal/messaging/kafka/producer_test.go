package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"

	"github.com/vladislavdragonenkov/fleetfeast/internal/domain"
)

func testNotification() domain.Notification {
	return domain.Notification{
		ID:        "5b0e2f8e-3c1d-4a8e-9f51-0d6a2f7c9e10",
		OrderID:   42,
		Channel:   domain.ChannelWhatsApp,
		Phone:     "+34 612345678",
		Body:      "Pedido de Ana",
		CreatedAt: time.Date(2026, 10, 20, 18, 0, 0, 0, time.UTC),
	}
}

func TestProducer_Publish(t *testing.T) {
	// Создаем mock producer
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := NewProducerWith(mockProducer)

	mockProducer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var event NotificationEvent
		if err := json.Unmarshal(val, &event); err != nil {
			return err
		}
		if event.OrderID != 42 || event.EventType != EventTypeCustomerNotified {
			t.Errorf("unexpected event %+v", event)
		}
		return nil
	})

	event := NewNotificationEvent(testNotification())
	if err := producer.Publish(context.Background(), TopicCustomerNotifications, event.Key(), event); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Проверяем, что все ожидания выполнены
	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_Publish_Error(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := NewProducerWith(mockProducer)

	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	err := producer.Publish(context.Background(), TopicCustomerNotifications, "42", NewNotificationEvent(testNotification()))
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_Publish_CanceledContext(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := NewProducerWith(mockProducer)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := producer.Publish(ctx, TopicCustomerNotifications, "42", struct{}{}); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestNotifier_Notify(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	notifier := NewNotifier(NewProducerWith(mockProducer), "")

	if notifier.Topic() != TopicCustomerNotifications {
		t.Errorf("expected default topic, got %s", notifier.Topic())
	}

	mockProducer.ExpectSendMessageAndSucceed()
	if err := notifier.Notify(context.Background(), testNotification()); err != nil {
		t.Fatalf("notify: %v", err)
	}

	if err := notifier.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestNewNotificationEvent(t *testing.T) {
	n := testNotification()
	event := NewNotificationEvent(n)

	if event.EventID != n.ID {
		t.Errorf("expected event id %s, got %s", n.ID, event.EventID)
	}
	if event.Key() != "42" {
		t.Errorf("expected key 42, got %s", event.Key())
	}
	if !event.Timestamp.Equal(n.CreatedAt) {
		t.Errorf("expected timestamp %v, got %v", n.CreatedAt, event.Timestamp)
	}

	n.CreatedAt = time.Time{}
	if NewNotificationEvent(n).Timestamp.IsZero() {
		t.Error("timestamp should not be zero")
	}
}
