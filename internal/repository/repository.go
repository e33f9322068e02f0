// Package repository содержит единую точку записи и чтения блюд, заказов и позиций.
// Запись: валидация → нормализация денег → очередь писателя → движок.
// Чтение: напрямую из движка, разово или живой выборкой.
package repository

import (
	"context"
	"time"

	"github.com/vladislavdragonenkov/fleetfeast/internal/domain"
	"github.com/vladislavdragonenkov/fleetfeast/internal/live"
	"github.com/vladislavdragonenkov/fleetfeast/internal/metrics"
	"github.com/vladislavdragonenkov/fleetfeast/internal/writer"
)

// Имена сущностей в метриках и логах писателя.
const (
	entityPlate  = "plate"
	entityOrder  = "order"
	entityDetail = "order_detail"
)

// Значения отказа валидации.
const (
	rejectedInsert int64 = -1
	rejectedUpdate int64 = 0
)

// Options задаёт параметры репозиториев.
type Options struct {
	BridgeTimeout time.Duration
	Metrics       *metrics.StoreMetrics
}

// Option настраивает репозитории.
type Option func(*Options)

// WithBridgeTimeout задаёт время ожидания синхронных операций *AndWait.
func WithBridgeTimeout(timeout time.Duration) Option {
	return func(opts *Options) {
		opts.BridgeTimeout = timeout
	}
}

// WithMetrics задаёт метрики отказов валидации и результатов ожидания.
func WithMetrics(m *metrics.StoreMetrics) Option {
	return func(opts *Options) {
		opts.Metrics = m
	}
}

// Repositories — три репозитория над одним хранилищем, одной очередью и одним Hub.
type Repositories struct {
	Plates  *PlateRepository
	Orders  *OrderRepository
	Details *OrderDetailRepository
	Bridge  *Bridge
}

// New собирает репозитории. Хранилище, очередь и Hub создаёт композиционный корень.
func New(store domain.Storage, queue *writer.Queue, hub *live.Hub, options ...Option) *Repositories {
	opts := Options{BridgeTimeout: DefaultBridgeTimeout}
	for _, option := range options {
		option(&opts)
	}

	b := &base{
		store:   store,
		queue:   queue,
		hub:     hub,
		bridge:  NewBridge(opts.BridgeTimeout, opts.Metrics),
		metrics: opts.Metrics,
	}
	return &Repositories{
		Plates:  &PlateRepository{base: b},
		Orders:  &OrderRepository{base: b},
		Details: &OrderDetailRepository{base: b},
		Bridge:  b.bridge,
	}
}

type base struct {
	store   domain.Storage
	queue   *writer.Queue
	hub     *live.Hub
	bridge  *Bridge
	metrics *metrics.StoreMetrics
}

// reject не касается очереди: отказ валидации возвращается уже готовым future.
func (b *base) reject(entity string, value int64, violations []error) *writer.Future {
	b.metrics.RecordValidationRejection(entity)
	return writer.Resolved(writer.Rejected(value, domain.NewValidationError(entity, violations)))
}

func (b *base) submit(ctx context.Context, entity, name string, task writer.Task, tables ...string) *writer.Future {
	return b.queue.Submit(ctx, writer.Op{Entity: entity, Name: name, Tables: tables}, task)
}
