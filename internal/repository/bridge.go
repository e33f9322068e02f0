package repository

import (
	"context"
	"time"

	"github.com/vladislavdragonenkov/fleetfeast/internal/metrics"
	"github.com/vladislavdragonenkov/fleetfeast/internal/writer"
)

// DefaultBridgeTimeout — сколько синхронный вызов ждёт результат записи.
const DefaultBridgeTimeout = 10 * time.Second

// Bridge превращает асинхронную запись в синхронный вызов с ограниченным ожиданием.
// Таймаут отличим от результата по Outcome.Status; сама запись при таймауте не отменяется.
type Bridge struct {
	timeout time.Duration
	metrics *metrics.StoreMetrics
}

// NewBridge создаёт мост; timeout<=0 заменяется на DefaultBridgeTimeout.
func NewBridge(timeout time.Duration, m *metrics.StoreMetrics) *Bridge {
	if timeout <= 0 {
		timeout = DefaultBridgeTimeout
	}
	return &Bridge{timeout: timeout, metrics: m}
}

// Timeout возвращает время ожидания.
func (b *Bridge) Timeout() time.Duration {
	return b.timeout
}

// Await ждёт результат future.
func (b *Bridge) Await(ctx context.Context, f *writer.Future) writer.Outcome {
	outcome := f.Wait(ctx, b.timeout)
	b.metrics.RecordBridgeOutcome(outcome.Status.String())
	return outcome
}
