package domain

import (
	"context"
	"time"
)

// Channel — канал доставки сообщения клиенту.
type Channel string

const (
	ChannelSMS      Channel = "SMS"
	ChannelWhatsApp Channel = "WhatsApp"
)

// Valid сообщает, поддерживается ли канал.
func (c Channel) Valid() bool {
	return c == ChannelSMS || c == ChannelWhatsApp
}

// Notification — сообщение клиенту о его заказе.
type Notification struct {
	ID        string    `json:"id"`
	OrderID   int64     `json:"order_id"`
	Channel   Channel   `json:"channel"`
	Phone     string    `json:"phone"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier доставляет сообщения клиентам; реализация должна быть идемпотентной по ID.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
