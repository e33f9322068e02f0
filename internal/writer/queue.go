// Package writer задаёт единственный контекст выполнения записей в хранилище.
// Все записи всех репозиториев проходят через одну FIFO-очередь и выполняются
// одной горутиной, поэтому порядок завершения совпадает с порядком постановки.
package writer

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/fleetfeast/internal/domain"
	"github.com/vladislavdragonenkov/fleetfeast/internal/metrics"
)

const (
	defaultQueueSize   = 1024
	defaultTaskTimeout = 30 * time.Second
)

// Op описывает запись для логов, метрик и инвалидации живых выборок.
type Op struct {
	Entity string
	Name   string
	// Tables — таблицы, которые затрагивает запись.
	Tables []string
}

// Task выполняет запись и возвращает id или число изменённых строк.
// Ошибка валидации (domain.ErrValidation) и ошибка, обёрнутая Reject, превращаются в StatusRejected.
type Task func(ctx context.Context) (int64, error)

// CommitHook вызывается после каждой успешной записи со списком затронутых таблиц.
type CommitHook func(tables []string)

// Options задаёт параметры очереди.
type Options struct {
	Logger      *log.Entry
	Metrics     *metrics.StoreMetrics
	OnCommit    CommitHook
	QueueSize   int
	TaskTimeout time.Duration
}

// Option настраивает Queue.
type Option func(*Options)

// WithLogger задаёт logger очереди.
func WithLogger(logger *log.Entry) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// WithMetrics задаёт метрики записей.
func WithMetrics(m *metrics.StoreMetrics) Option {
	return func(opts *Options) {
		opts.Metrics = m
	}
}

// WithCommitHook задаёт обработчик успешных записей (обычно live.Hub.Notify).
func WithCommitHook(hook CommitHook) Option {
	return func(opts *Options) {
		opts.OnCommit = hook
	}
}

// WithQueueSize задаёт ёмкость очереди.
func WithQueueSize(size int) Option {
	return func(opts *Options) {
		opts.QueueSize = size
	}
}

// WithTaskTimeout ограничивает время одной записи (0 снимает ограничение).
func WithTaskTimeout(timeout time.Duration) Option {
	return func(opts *Options) {
		opts.TaskTimeout = timeout
	}
}

type job struct {
	id       string
	op       Op
	task     Task
	ctx      context.Context
	future   *Future
	enqueued time.Time
}

// Queue — FIFO-очередь записей с одной горутиной-исполнителем.
type Queue struct {
	jobs        chan job
	logger      *log.Entry
	metrics     *metrics.StoreMetrics
	onCommit    CommitHook
	taskTimeout time.Duration

	// mu защищает jobs от закрытия во время отправки; closing будит ждущих места до того,
	// как Close возьмёт mu на запись.
	mu        sync.RWMutex
	closed    bool
	closing   chan struct{}
	closeOnce sync.Once
	depth     atomic.Int64
	done      chan struct{}
}

// New создаёт очередь и запускает исполнителя.
func New(options ...Option) *Queue {
	opts := Options{
		QueueSize:   defaultQueueSize,
		TaskTimeout: defaultTaskTimeout,
	}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "writer")
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.TaskTimeout < 0 {
		opts.TaskTimeout = 0
	}

	q := &Queue{
		jobs:        make(chan job, opts.QueueSize),
		logger:      logger,
		metrics:     opts.Metrics,
		onCommit:    opts.OnCommit,
		taskTimeout: opts.TaskTimeout,
		closing:     make(chan struct{}),
		done:        make(chan struct{}),
	}
	go q.loop()
	return q
}

// Submit ставит запись в очередь. Если очередь заполнена, ждёт места до отмены ctx или Close.
// Отмена ctx после постановки не отменяет саму запись.
func (q *Queue) Submit(ctx context.Context, op Op, task Task) *Future {
	f := newFuture()

	j := job{
		id:       uuid.NewString(),
		op:       op,
		task:     task,
		ctx:      context.WithoutCancel(ctx),
		future:   f,
		enqueued: time.Now(),
	}

	// Исполнитель занят текущей задачей: изнутри неё нельзя ни ждать места, ни ждать mu,
	// иначе Close, ожидающий mu, и исполнитель заблокируют друг друга.
	if InTask(ctx) {
		if !q.mu.TryRLock() {
			f.resolve(Failed(ErrQueueClosed))
			return f
		}
		defer q.mu.RUnlock()
		if q.closed || q.isClosing() {
			f.resolve(Failed(ErrQueueClosed))
			return f
		}
		select {
		case q.jobs <- j:
			q.markEnqueued()
		default:
			f.resolve(Failed(ErrQueueFull))
		}
		return f
	}

	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed || q.isClosing() {
		f.resolve(Failed(ErrQueueClosed))
		return f
	}

	select {
	case q.jobs <- j:
		q.markEnqueued()
	case <-q.closing:
		f.resolve(Failed(ErrQueueClosed))
	case <-ctx.Done():
		f.resolve(Outcome{Status: StatusCanceled, Err: ctx.Err()})
	}
	return f
}

// Pending возвращает число записей, ожидающих исполнения.
func (q *Queue) Pending() int {
	return int(q.depth.Load())
}

// Close прекращает приём задач, выполняет уже поставленные и возвращается.
// Submit, ждущие места в очереди, получают ErrQueueClosed.
func (q *Queue) Close() error {
	q.closeOnce.Do(func() { close(q.closing) })

	q.mu.Lock()
	first := !q.closed
	if first {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()

	<-q.done
	if first {
		q.logger.Debug("writer queue drained")
	}
	return nil
}

func (q *Queue) markEnqueued() {
	q.metrics.SetQueueDepth(int(q.depth.Add(1)))
}

func (q *Queue) loop() {
	defer close(q.done)
	for j := range q.jobs {
		q.metrics.SetQueueDepth(int(q.depth.Add(-1)))
		q.execute(j)
	}
}

func (q *Queue) execute(j job) {
	ctx := withTask(j.ctx, j.id)
	if q.taskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.taskTimeout)
		defer cancel()
	}

	started := time.Now()
	value, err := run(ctx, j.task)
	elapsed := time.Since(started)

	var outcome Outcome
	switch {
	case err == nil:
		outcome = Completed(value)
	case domain.IsValidation(err) || isRejection(err):
		outcome = Rejected(value, err)
	default:
		outcome = Failed(err)
		q.logger.WithError(err).WithFields(log.Fields{
			"entity":  j.op.Entity,
			"op":      j.op.Name,
			"task_id": j.id,
			"waited":  started.Sub(j.enqueued).String(),
		}).Error("write failed")
	}

	q.metrics.RecordWrite(j.op.Entity, j.op.Name, outcome.Status.String(), elapsed)

	if outcome.Status == StatusCompleted && q.onCommit != nil && len(j.op.Tables) > 0 {
		q.onCommit(j.op.Tables)
	}
	j.future.resolve(outcome)
}

// run изолирует панику задачи, чтобы исполнитель продолжил работу.
func run(ctx context.Context, task Task) (value int64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("write task panicked: %v", r)
		}
	}()
	return task(ctx)
}

type taskKey struct{}

func withTask(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, taskKey{}, id)
}

// InTask сообщает, выполняется ли код внутри задачи писателя.
func InTask(ctx context.Context) bool {
	return TaskID(ctx) != ""
}

// TaskID возвращает id текущей задачи писателя или пустую строку.
func TaskID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(taskKey{}).(string)
	return id
}

func (q *Queue) isClosing() bool {
	select {
	case <-q.closing:
		return true
	default:
		return false
	}
}
