package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StoreMetrics содержит метрики слоя хранения заказов.
// Все методы безопасны для nil-получателя: компоненты без метрик просто ничего не пишут.
type StoreMetrics struct {
	// Записи через single-writer очередь
	writes        *prometheus.CounterVec
	writeDuration *prometheus.HistogramVec
	queueDepth    prometheus.Gauge

	// Синхронный мост и валидация
	bridgeOutcomes       *prometheus.CounterVec
	validationRejections *prometheus.CounterVec

	// Живые выборки
	liveSubscriptions prometheus.Gauge

	// Уведомления клиентам
	notifications *prometheus.CounterVec
}

// NewStoreMetrics создаёт метрики в DefaultRegisterer.
func NewStoreMetrics() *StoreMetrics {
	return NewStoreMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewStoreMetricsWithRegisterer создаёт метрики в указанном реестре.
// Повторная регистрация возвращает уже существующие коллекторы.
func NewStoreMetricsWithRegisterer(registerer prometheus.Registerer) *StoreMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &StoreMetrics{
		writes: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "fleetfeast_writes_total",
			Help: "Total number of storage writes executed by the writer queue",
		}, []string{"entity", "op", "status"}),
		writeDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "fleetfeast_write_duration_seconds",
			Help:    "Duration of storage writes in seconds",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}, []string{"entity", "op"}),
		queueDepth: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "fleetfeast_writer_queue_depth",
			Help: "Number of writes waiting in the writer queue",
		}),
		bridgeOutcomes: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "fleetfeast_bridge_outcomes_total",
			Help: "Outcomes observed by synchronous callers of the writer queue",
		}, []string{"status"}),
		validationRejections: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "fleetfeast_validation_rejections_total",
			Help: "Writes rejected by entity validators before reaching storage",
		}, []string{"entity"}),
		liveSubscriptions: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "fleetfeast_live_subscriptions",
			Help: "Number of active live query subscriptions",
		}),
		notifications: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "fleetfeast_notifications_total",
			Help: "Customer notifications by channel and result",
		}, []string{"channel", "result"}),
	}
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordWrite учитывает выполненную запись и её длительность.
func (m *StoreMetrics) RecordWrite(entity, op, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.writes.WithLabelValues(entity, op, status).Inc()
	m.writeDuration.WithLabelValues(entity, op).Observe(duration.Seconds())
}

// SetQueueDepth выставляет текущую глубину очереди писателя.
func (m *StoreMetrics) SetQueueDepth(depth int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(depth))
}

// RecordBridgeOutcome учитывает результат синхронного ожидания.
func (m *StoreMetrics) RecordBridgeOutcome(status string) {
	if m == nil {
		return
	}
	m.bridgeOutcomes.WithLabelValues(status).Inc()
}

// RecordValidationRejection учитывает запись, отклонённую валидатором.
func (m *StoreMetrics) RecordValidationRejection(entity string) {
	if m == nil {
		return
	}
	m.validationRejections.WithLabelValues(entity).Inc()
}

// LiveSubscriptionOpened увеличивает число активных подписок.
func (m *StoreMetrics) LiveSubscriptionOpened() {
	if m == nil {
		return
	}
	m.liveSubscriptions.Inc()
}

// LiveSubscriptionClosed уменьшает число активных подписок.
func (m *StoreMetrics) LiveSubscriptionClosed() {
	if m == nil {
		return
	}
	m.liveSubscriptions.Dec()
}

// RecordNotification учитывает попытку доставки уведомления.
func (m *StoreMetrics) RecordNotification(channel, result string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(channel, result).Inc()
}
