// Package grpcsvc реализует gRPC-фасад fleetfeast.v1.Store поверх репозиториев.
package grpcsvc

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/vladislavdragonenkov/fleetfeast/internal/domain"
	"github.com/vladislavdragonenkov/fleetfeast/internal/notify"
	"github.com/vladislavdragonenkov/fleetfeast/internal/repository"
	"github.com/vladislavdragonenkov/fleetfeast/internal/writer"
)

// Options задаёт параметры сервиса.
type Options struct {
	Logger              *log.Entry
	Notifications       *notify.Service
	EnforcePickupWindow bool
	Location            *time.Location
	Now                 func() time.Time
}

// Option настраивает сервис.
type Option func(*Options)

// WithLogger задаёт logger.
func WithLogger(logger *log.Entry) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// WithNotifications включает NotifyCustomer.
func WithNotifications(svc *notify.Service) Option {
	return func(opts *Options) {
		opts.Notifications = svc
	}
}

// WithPickupWindow включает проверку часов выдачи при сохранении заказа.
func WithPickupWindow(enforce bool) Option {
	return func(opts *Options) {
		opts.EnforcePickupWindow = enforce
	}
}

// WithLocation задаёт часовой пояс точки выдачи.
func WithLocation(loc *time.Location) Option {
	return func(opts *Options) {
		opts.Location = loc
	}
}

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(opts *Options) {
		opts.Now = now
	}
}

// StoreService реализует StoreServer.
type StoreService struct {
	repos         *repository.Repositories
	notifications *notify.Service
	logger        *log.Entry

	enforcePickup bool
	location      *time.Location
	now           func() time.Time
}

var _ StoreServer = (*StoreService)(nil)

// NewStoreService конструирует сервис с зависимостями.
func NewStoreService(repos *repository.Repositories, options ...Option) *StoreService {
	opts := Options{Location: time.Local, Now: time.Now}
	for _, option := range options {
		option(&opts)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "store-service")
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}

	return &StoreService{
		repos:         repos,
		notifications: opts.Notifications,
		logger:        logger,
		enforcePickup: opts.EnforcePickupWindow,
		location:      opts.Location,
		now:           opts.Now,
	}
}

type idRequest struct {
	ID int64 `json:"id"`
}

type listPlatesRequest struct {
	Sort       string `json:"sort"`
	NotInOrder int64  `json:"notInOrder"`
}

// ListPlates возвращает каталог или блюда, которых ещё нет в заказе notInOrder.
func (s *StoreService) ListPlates(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req listPlatesRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}

	var (
		plates []domain.Plate
		err    error
	)
	if req.NotInOrder > 0 {
		plates, err = s.repos.Plates.ListNotInOrder(ctx, req.NotInOrder)
	} else {
		order, parseErr := domain.ParsePlateOrder(req.Sort)
		if parseErr != nil {
			return nil, status.Error(codes.InvalidArgument, parseErr.Error())
		}
		plates, err = s.repos.Plates.List(ctx, order)
	}
	if err != nil {
		return nil, s.readError(err, "list plates")
	}
	return encode(map[string]any{"plates": nonNil(plates)})
}

// GetPlate возвращает блюдо по id.
func (s *StoreService) GetPlate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req idRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if err := requireID("id", req.ID); err != nil {
		return nil, err
	}

	plate, err := s.repos.Plates.Get(ctx, req.ID)
	if err != nil {
		return nil, s.readError(err, "get plate")
	}
	return encode(map[string]any{"plate": plate})
}

type savePlateRequest struct {
	Plate *domain.Plate `json:"plate"`
}

// SavePlate вставляет блюдо без id или заменяет существующее.
func (s *StoreService) SavePlate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req savePlateRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if req.Plate == nil {
		return nil, status.Error(codes.InvalidArgument, "plate is required")
	}

	if req.Plate.ID == 0 {
		return s.respondInsert(s.repos.Plates.InsertAndWait(ctx, *req.Plate), "insert plate")
	}
	return s.respondAffected(s.repos.Plates.UpdateAndWait(ctx, *req.Plate), "update plate")
}

// DeletePlate удаляет блюдо. Позиции заказов с ним остаются.
func (s *StoreService) DeletePlate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req idRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if err := requireID("id", req.ID); err != nil {
		return nil, err
	}
	return s.respondAffected(s.repos.Plates.DeleteAndWait(ctx, req.ID), "delete plate")
}

type listOrdersRequest struct {
	Sort   string `json:"sort"`
	States string `json:"states"`
}

// ListOrders возвращает заказы с сортировкой и фильтром по состояниям.
func (s *StoreService) ListOrders(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req listOrdersRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	by, err := domain.ParseOrderSort(req.Sort)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	filter, err := domain.ParseStateFilter(req.States)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	orders, err := s.repos.Orders.ListFiltered(ctx, by, filter)
	if err != nil {
		return nil, s.readError(err, "list orders")
	}
	return encode(map[string]any{"orders": nonNil(orders)})
}

type saveOrderRequest struct {
	Order *domain.Order `json:"order"`
}

// SaveOrder вставляет заказ без id или заменяет существующий.
func (s *StoreService) SaveOrder(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req saveOrderRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if req.Order == nil {
		return nil, status.Error(codes.InvalidArgument, "order is required")
	}
	if req.Order.State == "" {
		req.Order.State = domain.OrderStateRequested
	}
	if err := s.checkPickup(*req.Order); err != nil {
		return nil, err
	}

	if req.Order.ID == 0 {
		return s.respondInsert(s.repos.Orders.InsertAndWait(ctx, *req.Order), "insert order")
	}
	return s.respondAffected(s.repos.Orders.UpdateAndWait(ctx, *req.Order), "update order")
}

// DeleteOrder удаляет заказ без каскада на позиции.
func (s *StoreService) DeleteOrder(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req idRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if err := requireID("id", req.ID); err != nil {
		return nil, err
	}
	return s.respondAffected(s.repos.Orders.DeleteAndWait(ctx, req.ID), "delete order")
}

type orderRequest struct {
	OrderID int64 `json:"orderId"`
}

// ListOrderDetails возвращает позиции заказа и его сумму.
func (s *StoreService) ListOrderDetails(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req orderRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if err := requireID("orderId", req.OrderID); err != nil {
		return nil, err
	}

	details, err := s.repos.Details.ListByOrder(ctx, req.OrderID)
	if err != nil {
		return nil, s.readError(err, "list order details")
	}
	return encode(map[string]any{
		"details": nonNil(details),
		"total":   domain.OrderTotal(details),
	})
}

type addPlateRequest struct {
	OrderID int64 `json:"orderId"`
	PlateID int64 `json:"plateId"`
}

// AddPlateToOrder добавляет блюдо в заказ по текущей цене каталога.
func (s *StoreService) AddPlateToOrder(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req addPlateRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if err := requireID("orderId", req.OrderID); err != nil {
		return nil, err
	}
	if err := requireID("plateId", req.PlateID); err != nil {
		return nil, err
	}

	if _, err := s.repos.Orders.Get(ctx, req.OrderID); err != nil {
		return nil, s.readError(err, "get order")
	}
	plate, err := s.repos.Plates.Get(ctx, req.PlateID)
	if err != nil {
		return nil, s.readError(err, "get plate")
	}

	outcome := s.repos.Bridge.Await(ctx, s.repos.Details.AddPlate(ctx, req.OrderID, plate))
	return s.respondAffected(outcome, "add plate to order")
}

type changeQuantityRequest struct {
	OrderID  int64 `json:"orderId"`
	PlateID  int64 `json:"plateId"`
	Delta    *int  `json:"delta"`
	Quantity *int  `json:"quantity"`
}

// ChangeQuantity меняет количество позиции: шагом delta (+1/-1) или явным quantity.
// Нулевое количество удаляет позицию.
func (s *StoreService) ChangeQuantity(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req changeQuantityRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if err := requireID("orderId", req.OrderID); err != nil {
		return nil, err
	}
	if err := requireID("plateId", req.PlateID); err != nil {
		return nil, err
	}
	key := domain.DetailKey{OrderID: req.OrderID, PlateID: req.PlateID}

	switch {
	case req.Delta != nil && req.Quantity != nil:
		return nil, status.Error(codes.InvalidArgument, "delta and quantity are mutually exclusive")
	case req.Delta != nil:
		var f *writer.Future
		switch *req.Delta {
		case 1:
			f = s.repos.Details.Increment(ctx, key)
		case -1:
			f = s.repos.Details.Decrement(ctx, key)
		default:
			return nil, status.Error(codes.InvalidArgument, "delta must be 1 or -1")
		}
		return s.respondAffected(s.repos.Bridge.Await(ctx, f), "change quantity")
	case req.Quantity != nil:
		f := s.repos.Details.SetQuantity(ctx, key, *req.Quantity)
		return s.respondAffected(s.repos.Bridge.Await(ctx, f), "change quantity")
	default:
		return nil, status.Error(codes.InvalidArgument, "delta or quantity is required")
	}
}

type notifyRequest struct {
	OrderID int64          `json:"orderId"`
	Channel domain.Channel `json:"channel"`
}

// NotifyCustomer отправляет клиенту сводку заказа.
func (s *StoreService) NotifyCustomer(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req notifyRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if err := requireID("orderId", req.OrderID); err != nil {
		return nil, err
	}
	if s.notifications == nil {
		return nil, status.Error(codes.Unavailable, "notifications are not configured")
	}

	n, err := s.notifications.Send(ctx, req.OrderID, req.Channel)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrChannelInvalid):
		return nil, status.Error(codes.InvalidArgument, err.Error())
	case domain.IsNotFound(err):
		return nil, status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrNotifyFailed):
		return nil, status.Error(codes.Unavailable, err.Error())
	default:
		return nil, status.FromContextError(err).Err()
	}

	return encode(map[string]any{
		"notificationId": n.ID,
		"phone":          n.Phone,
		"body":           n.Body,
	})
}

func (s *StoreService) checkPickup(order domain.Order) error {
	if !s.enforcePickup {
		return nil
	}
	pickup, err := domain.ParsePickup(order.PickupDateTime, s.location)
	if err != nil {
		// формат отклонит валидация в репозитории
		return nil
	}
	if err := domain.CheckPickupWindow(pickup, s.now().In(s.location)); err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return nil
}

func (s *StoreService) respondInsert(outcome writer.Outcome, operation string) (*structpb.Struct, error) {
	if err := s.outcomeError(outcome, operation); err != nil {
		return nil, err
	}
	return encode(map[string]any{"id": outcome.Value})
}

func (s *StoreService) respondAffected(outcome writer.Outcome, operation string) (*structpb.Struct, error) {
	if err := s.outcomeError(outcome, operation); err != nil {
		return nil, err
	}
	return encode(map[string]any{"affected": outcome.Value})
}

func (s *StoreService) outcomeError(outcome writer.Outcome, operation string) error {
	switch outcome.Status {
	case writer.StatusCompleted:
		return nil
	case writer.StatusRejected:
		if errors.Is(outcome.Err, domain.ErrDetailExists) {
			return status.Error(codes.AlreadyExists, outcome.Err.Error())
		}
		if domain.IsNotFound(outcome.Err) {
			return status.Error(codes.NotFound, outcome.Err.Error())
		}
		return status.Error(codes.InvalidArgument, outcome.Err.Error())
	case writer.StatusTimedOut:
		s.logger.WithField("operation", operation).Warn("write is still pending after bridge timeout")
		return status.Error(codes.DeadlineExceeded, "write did not complete in time")
	case writer.StatusCanceled:
		return status.FromContextError(outcome.Err).Err()
	default:
		s.logger.WithError(outcome.Err).WithField("operation", operation).Error("write failed")
		return status.Error(codes.Internal, "failed to "+operation)
	}
}

func (s *StoreService) readError(err error, operation string) error {
	if domain.IsNotFound(err) {
		return status.Error(codes.NotFound, err.Error())
	}
	s.logger.WithError(err).WithField("operation", operation).Warn("read failed")
	return status.Error(codes.Internal, "failed to "+operation)
}

// nonNil гарантирует JSON-массив вместо null в ответе.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
