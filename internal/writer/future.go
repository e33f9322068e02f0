package writer

import (
	"context"
	"sync"
	"time"
)

// Future — одноразовый слот результата записи.
type Future struct {
	done    chan struct{}
	once    sync.Once
	outcome Outcome
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Resolved возвращает уже завершённый future; используется для отказов валидации,
// которые не попадают в очередь.
func Resolved(outcome Outcome) *Future {
	f := newFuture()
	f.resolve(outcome)
	return f
}

func (f *Future) resolve(outcome Outcome) {
	f.once.Do(func() {
		f.outcome = outcome
		close(f.done)
	})
}

// Done закрывается, когда результат готов.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Outcome возвращает результат без ожидания; второй результат false, если запись ещё не завершена.
func (f *Future) Outcome() (Outcome, bool) {
	select {
	case <-f.done:
		return f.outcome, true
	default:
		return Outcome{}, false
	}
}

// Wait ждёт результат не дольше timeout (при timeout<=0 без ограничения).
// Из задачи писателя ждать нельзя: ответом будет ErrWaitOnWriter, а не взаимоблокировка.
func (f *Future) Wait(ctx context.Context, timeout time.Duration) Outcome {
	if outcome, ok := f.Outcome(); ok {
		return outcome
	}
	if InTask(ctx) {
		return Failed(ErrWaitOnWriter)
	}

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case <-f.done:
		return f.outcome
	case <-ctx.Done():
		return Outcome{Status: StatusCanceled, Err: ctx.Err()}
	case <-expired:
		return Outcome{Status: StatusTimedOut, Err: ErrWaitTimeout}
	}
}
