package app

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/fleetfeast/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/fleetfeast/internal/health"
	"github.com/vladislavdragonenkov/fleetfeast/internal/live"
	"github.com/vladislavdragonenkov/fleetfeast/internal/metrics"
	"github.com/vladislavdragonenkov/fleetfeast/internal/notify"
	"github.com/vladislavdragonenkov/fleetfeast/internal/repository"
	grpcsvc "github.com/vladislavdragonenkov/fleetfeast/internal/service/grpc"
	"github.com/vladislavdragonenkov/fleetfeast/internal/writer"
)

// Runtime содержит собранные зависимости процесса.
type Runtime struct {
	Store         domain.Storage
	Queue         *writer.Queue
	Hub           *live.Hub
	Repos         *repository.Repositories
	Metrics       *metrics.StoreMetrics
	Notifications *notify.Service
	Service       *grpcsvc.StoreService

	logger        *log.Entry
	closeNotifier func() error
}

// NewRuntime открывает хранилище и связывает очередь писателя, Hub, репозитории,
// уведомления и gRPC-сервис.
func NewRuntime(ctx context.Context, cfg Config, logger *log.Entry) (*Runtime, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := OpenStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	m := metrics.NewStoreMetrics()
	hub := live.NewHub(live.WithLogger(logger.WithField("layer", "live")), live.WithMetrics(m))
	queue := writer.New(
		writer.WithLogger(logger.WithField("layer", "writer")),
		writer.WithMetrics(m),
		writer.WithCommitHook(hub.Notify),
		writer.WithQueueSize(cfg.WriterQueueSize),
		writer.WithTaskTimeout(cfg.WriterTaskTimeout),
	)
	repos := repository.New(store, queue, hub,
		repository.WithBridgeTimeout(cfg.BridgeTimeout),
		repository.WithMetrics(m),
	)

	notifier, closeNotifier := initNotifier(cfg, logger)
	notifications := notify.NewService(repos.Orders, repos.Details, repos.Plates, notifier,
		notify.WithLogger(logger.WithField("layer", "notify")),
		notify.WithMetrics(m),
		notify.WithMaxAttempts(cfg.NotifyMaxAttempts),
	)

	service := grpcsvc.NewStoreService(repos,
		grpcsvc.WithLogger(logger.WithField("layer", "grpc")),
		grpcsvc.WithNotifications(notifications),
		grpcsvc.WithPickupWindow(cfg.EnforcePickupWindow),
		grpcsvc.WithLocation(loadLocation(cfg.PickupTimezone, logger)),
	)

	return &Runtime{
		Store:         store,
		Queue:         queue,
		Hub:           hub,
		Repos:         repos,
		Metrics:       m,
		Notifications: notifications,
		Service:       service,
		logger:        logger,
		closeNotifier: closeNotifier,
	}, nil
}

// RegisterCheckers добавляет проверки хранилища и очереди писателя.
func (r *Runtime) RegisterCheckers(h *healthcheck.Handler, degradedAt int) {
	h.RegisterChecker("storage", healthcheck.StorageChecker("storage", r.Store))
	h.RegisterChecker("writer", healthcheck.NewBacklogChecker("writer", r.Queue.Pending, degradedAt))
}

// Close дожидается очереди писателя, затем закрывает notifier и хранилище.
func (r *Runtime) Close() error {
	var errs []error
	if err := r.Queue.Close(); err != nil {
		errs = append(errs, err)
	}
	if r.closeNotifier != nil {
		if err := r.closeNotifier(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := r.Store.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		r.logger.Info("runtime closed")
	}
	return errors.Join(errs...)
}

func loadLocation(name string, logger *log.Entry) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		logger.WithError(err).WithField("timezone", name).Warn("unknown pickup timezone, using local time")
		return time.Local
	}
	return loc
}
