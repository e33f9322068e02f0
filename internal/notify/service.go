// Package notify отправляет клиенту сводку заказа по SMS или WhatsApp.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/unicode/norm"

	"github.com/vladislavdragonenkov/fleetfeast/internal/domain"
	"github.com/vladislavdragonenkov/fleetfeast/internal/metrics"
)

// PhonePrefix — код страны, добавляемый к девятизначному номеру.
const PhonePrefix = "+34 "

const (
	defaultMaxAttempts    = 3
	defaultRetryBaseDelay = 200 * time.Millisecond
)

// OrderReader читает заказ.
type OrderReader interface {
	Get(ctx context.Context, id int64) (domain.Order, error)
}

// DetailReader читает позиции заказа.
type DetailReader interface {
	ListByOrder(ctx context.Context, orderID int64) ([]domain.OrderDetail, error)
}

// PlateReader читает блюдо каталога.
type PlateReader interface {
	Get(ctx context.Context, id int64) (domain.Plate, error)
}

// Options задаёт параметры сервиса уведомлений.
type Options struct {
	Logger         *log.Entry
	Metrics        *metrics.StoreMetrics
	MaxAttempts    int
	RetryBaseDelay time.Duration
	Language       language.Tag
	Now            func() time.Time
}

// Option настраивает сервис уведомлений.
type Option func(*Options)

// WithLogger задаёт logger.
func WithLogger(logger *log.Entry) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// WithMetrics задаёт метрики доставки.
func WithMetrics(m *metrics.StoreMetrics) Option {
	return func(opts *Options) {
		opts.Metrics = m
	}
}

// WithMaxAttempts задаёт число попыток доставки.
func WithMaxAttempts(maxAttempts int) Option {
	return func(opts *Options) {
		opts.MaxAttempts = maxAttempts
	}
}

// WithRetryBaseDelay задаёт базовый delay для exponential backoff.
func WithRetryBaseDelay(delay time.Duration) Option {
	return func(opts *Options) {
		opts.RetryBaseDelay = delay
	}
}

// WithLanguage задаёт язык форматирования сумм.
func WithLanguage(tag language.Tag) Option {
	return func(opts *Options) {
		opts.Language = tag
	}
}

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(opts *Options) {
		opts.Now = now
	}
}

// Service собирает сводку заказа и передаёт её notifier с повторами.
type Service struct {
	orders   OrderReader
	details  DetailReader
	plates   PlateReader
	notifier domain.Notifier

	logger         *log.Entry
	metrics        *metrics.StoreMetrics
	printer        *message.Printer
	maxAttempts    int
	retryBaseDelay time.Duration
	now            func() time.Time
}

// NewService создаёт сервис уведомлений.
func NewService(orders OrderReader, details DetailReader, plates PlateReader, notifier domain.Notifier, options ...Option) *Service {
	opts := Options{
		MaxAttempts:    defaultMaxAttempts,
		RetryBaseDelay: defaultRetryBaseDelay,
		Language:       language.Spanish,
		Now:            time.Now,
	}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "notify")
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}

	return &Service{
		orders:         orders,
		details:        details,
		plates:         plates,
		notifier:       notifier,
		logger:         logger,
		metrics:        opts.Metrics,
		printer:        message.NewPrinter(opts.Language),
		maxAttempts:    opts.MaxAttempts,
		retryBaseDelay: opts.RetryBaseDelay,
		now:            opts.Now,
	}
}

// Compose собирает уведомление, не отправляя его.
func (s *Service) Compose(ctx context.Context, orderID int64, channel domain.Channel) (domain.Notification, error) {
	if !channel.Valid() {
		return domain.Notification{}, fmt.Errorf("%w: %q", domain.ErrChannelInvalid, channel)
	}

	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return domain.Notification{}, err
	}
	details, err := s.details.ListByOrder(ctx, orderID)
	if err != nil {
		return domain.Notification{}, fmt.Errorf("list order details: %w", err)
	}

	lines := make([]Line, 0, len(details))
	for _, d := range details {
		lines = append(lines, Line{Detail: d, PlateName: s.plateName(ctx, d.PlateID)})
	}

	return domain.Notification{
		ID:        uuid.NewString(),
		OrderID:   order.ID,
		Channel:   channel,
		Phone:     PhonePrefix + order.PhoneString(),
		Body:      Summary(s.printer, order, lines),
		CreatedAt: s.now().UTC(),
	}, nil
}

// Send собирает уведомление и доставляет его, повторяя с экспоненциальной паузой.
func (s *Service) Send(ctx context.Context, orderID int64, channel domain.Channel) (domain.Notification, error) {
	n, err := s.Compose(ctx, orderID, channel)
	if err != nil {
		return domain.Notification{}, err
	}

	if err := s.deliverWithRetry(ctx, n); err != nil {
		s.metrics.RecordNotification(string(channel), "failed")
		s.logger.WithError(err).WithFields(log.Fields{
			"order_id": orderID,
			"channel":  channel,
		}).Error("customer notification failed")
		return n, err
	}

	s.metrics.RecordNotification(string(channel), "sent")
	s.logger.WithFields(log.Fields{
		"order_id":        orderID,
		"channel":         channel,
		"notification_id": n.ID,
	}).Info("customer notified")
	return n, nil
}

func (s *Service) plateName(ctx context.Context, plateID int64) string {
	plate, err := s.plates.Get(ctx, plateID)
	if err != nil {
		if !errors.Is(err, domain.ErrPlateNotFound) {
			s.logger.WithError(err).WithField("plate_id", plateID).Warn("failed to read plate for summary")
		}
		return fmt.Sprintf("#%d", plateID)
	}
	return plate.Name
}

func (s *Service) deliverWithRetry(ctx context.Context, n domain.Notification) error {
	var lastErr error

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		err := s.notifier.Notify(ctx, n)
		if err == nil {
			return nil
		}
		lastErr = err
		s.metrics.RecordNotification(string(n.Channel), "retry_error")

		if attempt >= s.maxAttempts {
			break
		}

		delay := retryBackoff(s.retryBaseDelay, attempt)
		if delay <= 0 {
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", domain.ErrNotifyFailed, s.maxAttempts, lastErr)
}

func retryBackoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	if attempt <= 1 {
		return base
	}

	const maxDuration = time.Duration(1<<63 - 1)
	delay := base
	for i := 1; i < attempt; i++ {
		if delay > maxDuration/2 {
			return maxDuration
		}
		delay *= 2
	}
	return delay
}

// Line — позиция заказа с названием блюда для сводки.
type Line struct {
	Detail    domain.OrderDetail
	PlateName string
}

// Summary формирует текст сообщения: заголовок заказа, позиции и итог.
// Суммы форматируются по правилам языка printer.
func Summary(p *message.Printer, order domain.Order, lines []Line) string {
	var b strings.Builder
	b.WriteString(p.Sprintf("Pedido de %s con teléfono %s y fecha %s en estado %s",
		norm.NFC.String(order.CustomerName), order.PhoneString(), order.PickupDateTime, order.State))

	details := make([]domain.OrderDetail, 0, len(lines))
	for _, line := range lines {
		details = append(details, line.Detail)
		b.WriteString("\n")
		b.WriteString(p.Sprintf("%d x %s %.2f", line.Detail.Quantity, line.PlateName, line.Detail.LineTotal()))
	}

	b.WriteString("\n")
	b.WriteString(p.Sprintf("Total: %.2f €", domain.OrderTotal(details)))
	return b.String()
}
