// Package live реализует живые выборки: подписчик получает снимок результата запроса
// и новый снимок после каждой записи в таблицы, от которых запрос зависит.
package live

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/fleetfeast/internal/metrics"
)

// Options задаёт параметры Hub.
type Options struct {
	Logger  *log.Entry
	Metrics *metrics.StoreMetrics
}

// Option настраивает Hub.
type Option func(*Options)

// WithLogger задаёт logger.
func WithLogger(logger *log.Entry) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// WithMetrics задаёт метрики подписок.
func WithMetrics(m *metrics.StoreMetrics) Option {
	return func(opts *Options) {
		opts.Metrics = m
	}
}

type subscription struct {
	tables map[string]struct{}
	// signal с буфером 1: серия уведомлений схлопывается в одно.
	signal chan struct{}
}

// Hub рассылает сигналы об изменении таблиц подписчикам.
type Hub struct {
	mu     sync.Mutex
	subs   map[uint64]*subscription
	nextID uint64

	logger  *log.Entry
	metrics *metrics.StoreMetrics
}

// NewHub создаёт пустой Hub.
func NewHub(options ...Option) *Hub {
	var opts Options
	for _, option := range options {
		option(&opts)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "live")
	}
	return &Hub{
		subs:    make(map[uint64]*subscription),
		logger:  logger,
		metrics: opts.Metrics,
	}
}

// Notify помечает таблицы изменёнными. Никогда не блокируется.
func (h *Hub) Notify(tables []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, sub := range h.subs {
		if !sub.watches(tables) {
			continue
		}
		select {
		case sub.signal <- struct{}{}:
		default:
		}
	}
}

// Subscribers возвращает число активных подписок.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) subscribe(tables []string) (<-chan struct{}, func()) {
	sub := &subscription{
		tables: make(map[string]struct{}, len(tables)),
		signal: make(chan struct{}, 1),
	}
	for _, table := range tables {
		sub.tables[table] = struct{}{}
	}

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.subs[id] = sub
	h.mu.Unlock()
	h.metrics.LiveSubscriptionOpened()

	var once sync.Once
	return sub.signal, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			h.metrics.LiveSubscriptionClosed()
		})
	}
}

func (s *subscription) watches(tables []string) bool {
	for _, table := range tables {
		if _, ok := s.tables[table]; ok {
			return true
		}
	}
	return false
}

// Fetch выполняет запрос живой выборки.
type Fetch[T any] func(ctx context.Context) ([]T, error)

// Watch возвращает канал снимков: первый приходит сразу, следующие после изменений tables.
// Медленный читатель видит только последний снимок. Канал закрывается при отмене ctx.
func Watch[T any](ctx context.Context, hub *Hub, fetch Fetch[T], tables ...string) <-chan []T {
	out := make(chan []T, 1)
	signal, unsubscribe := hub.subscribe(tables)

	go func() {
		defer close(out)
		defer unsubscribe()

		refresh := func() {
			snapshot, err := fetch(ctx)
			if err != nil {
				if ctx.Err() == nil {
					hub.logger.WithError(err).WithField("tables", tables).Warn("live query failed")
				}
				return
			}
			publishLatest(out, snapshot)
		}

		refresh()
		for {
			select {
			case <-ctx.Done():
				return
			case <-signal:
				refresh()
			}
		}
	}()

	return out
}

// publishLatest кладёт снимок в канал с буфером 1, вытесняя непрочитанный.
func publishLatest[T any](out chan []T, snapshot []T) {
	for {
		select {
		case out <- snapshot:
			return
		default:
		}
		select {
		case <-out:
		default:
		}
	}
}
