// Package memory содержит in-memory реализацию domain.Storage для тестов и локальной разработки.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/fleetfeast/internal/domain"
)

// ErrClosed возвращается Ping после Close.
var ErrClosed = errors.New("memory store is closed")

// Store хранит блюда, заказы и позиции в картах под одним RWMutex.
// Идентификаторы выдаются монотонно, как AUTOINCREMENT в SQL-движках.
type Store struct {
	mu sync.RWMutex

	plates  map[int64]domain.Plate
	orders  map[int64]domain.Order
	details map[domain.DetailKey]domain.OrderDetail

	nextPlateID int64
	nextOrderID int64
	closed      bool
}

// NewStore возвращает пустое in-memory хранилище.
func NewStore() *Store {
	return &Store{
		plates:  make(map[int64]domain.Plate),
		orders:  make(map[int64]domain.Order),
		details: make(map[domain.DetailKey]domain.OrderDetail),
	}
}

// Ping всегда успешен, пока хранилище не закрыто.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Close помечает хранилище закрытым; данные остаются доступны для чтения.
func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// InsertPlate сохраняет копию блюда под новым id.
func (s *Store) InsertPlate(_ context.Context, plate domain.Plate) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextPlateID++
	plate.ID = s.nextPlateID
	s.plates[plate.ID] = plate
	return plate.ID, nil
}

// UpdatePlate заменяет существующее блюдо.
func (s *Store) UpdatePlate(_ context.Context, plate domain.Plate) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.plates[plate.ID]; !ok {
		return 0, nil
	}
	s.plates[plate.ID] = plate
	return 1, nil
}

// DeletePlate удаляет блюдо; позиции заказов остаются.
func (s *Store) DeletePlate(_ context.Context, id int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.plates[id]; !ok {
		return 0, nil
	}
	delete(s.plates, id)
	return 1, nil
}

// DeleteAllPlates очищает каталог; счётчик id не сбрасывается.
func (s *Store) DeleteAllPlates(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plates = make(map[int64]domain.Plate)
	return nil
}

// GetPlate возвращает блюдо или ErrPlateNotFound.
func (s *Store) GetPlate(_ context.Context, id int64) (domain.Plate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	plate, ok := s.plates[id]
	if !ok {
		return domain.Plate{}, domain.ErrPlateNotFound
	}
	return plate, nil
}

// ListPlates возвращает снимок каталога, отсортированный как в SQL-движках.
func (s *Store) ListPlates(_ context.Context, order domain.PlateOrder) ([]domain.Plate, error) {
	s.mu.RLock()
	result := make([]domain.Plate, 0, len(s.plates))
	for _, plate := range s.plates {
		result = append(result, plate)
	}
	s.mu.RUnlock()

	domain.SortPlates(result, order)
	return result, nil
}

// ListPlatesNotInOrder возвращает блюда без позиции в заказе.
func (s *Store) ListPlatesNotInOrder(_ context.Context, orderID int64) ([]domain.Plate, error) {
	s.mu.RLock()
	result := make([]domain.Plate, 0, len(s.plates))
	for id, plate := range s.plates {
		if _, taken := s.details[domain.DetailKey{OrderID: orderID, PlateID: id}]; taken {
			continue
		}
		result = append(result, plate)
	}
	s.mu.RUnlock()

	domain.SortPlates(result, domain.PlateOrderNone)
	return result, nil
}

// InsertOrder сохраняет копию заказа под новым id.
func (s *Store) InsertOrder(_ context.Context, order domain.Order) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextOrderID++
	order.ID = s.nextOrderID
	s.orders[order.ID] = order
	return order.ID, nil
}

// UpdateOrder заменяет существующий заказ.
func (s *Store) UpdateOrder(_ context.Context, order domain.Order) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[order.ID]; !ok {
		return 0, nil
	}
	s.orders[order.ID] = order
	return 1, nil
}

// DeleteOrder удаляет заказ; позиции остаются.
func (s *Store) DeleteOrder(_ context.Context, id int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[id]; !ok {
		return 0, nil
	}
	delete(s.orders, id)
	return 1, nil
}

// DeleteAllOrders очищает заказы.
func (s *Store) DeleteAllOrders(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = make(map[int64]domain.Order)
	return nil
}

// GetOrder возвращает заказ или ErrOrderNotFound.
func (s *Store) GetOrder(_ context.Context, id int64) (domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return order, nil
}

// ListOrders возвращает снимок заказов в заданном порядке.
func (s *Store) ListOrders(_ context.Context, by domain.OrderSort) ([]domain.Order, error) {
	s.mu.RLock()
	result := make([]domain.Order, 0, len(s.orders))
	for _, order := range s.orders {
		result = append(result, order)
	}
	s.mu.RUnlock()

	domain.SortOrders(result, by)
	return result, nil
}

// InsertOrderDetail вставляет позицию; существующий ключ не перезаписывается.
func (s *Store) InsertOrderDetail(_ context.Context, detail domain.OrderDetail) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.details[detail.Key()]; exists {
		return 0, nil
	}
	s.details[detail.Key()] = detail
	return 1, nil
}

// UpdateOrderDetail заменяет существующую позицию.
func (s *Store) UpdateOrderDetail(_ context.Context, detail domain.OrderDetail) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.details[detail.Key()]; !ok {
		return 0, nil
	}
	s.details[detail.Key()] = detail
	return 1, nil
}

// DeleteOrderDetail удаляет позицию по ключу.
func (s *Store) DeleteOrderDetail(_ context.Context, key domain.DetailKey) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.details[key]; !ok {
		return 0, nil
	}
	delete(s.details, key)
	return 1, nil
}

// DeleteAllOrderDetails очищает позиции.
func (s *Store) DeleteAllOrderDetails(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.details = make(map[domain.DetailKey]domain.OrderDetail)
	return nil
}

// GetOrderDetail возвращает позицию или ErrDetailNotFound.
func (s *Store) GetOrderDetail(_ context.Context, key domain.DetailKey) (domain.OrderDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	detail, ok := s.details[key]
	if !ok {
		return domain.OrderDetail{}, domain.ErrDetailNotFound
	}
	return detail, nil
}

// ListOrderDetails возвращает все позиции по возрастанию ключа.
func (s *Store) ListOrderDetails(context.Context) ([]domain.OrderDetail, error) {
	return s.collectDetails(func(domain.OrderDetail) bool { return true }), nil
}

// ListOrderDetailsByOrder возвращает позиции одного заказа.
func (s *Store) ListOrderDetailsByOrder(_ context.Context, orderID int64) ([]domain.OrderDetail, error) {
	return s.collectDetails(func(d domain.OrderDetail) bool { return d.OrderID == orderID }), nil
}

func (s *Store) collectDetails(keep func(domain.OrderDetail) bool) []domain.OrderDetail {
	s.mu.RLock()
	result := make([]domain.OrderDetail, 0, len(s.details))
	for _, detail := range s.details {
		if keep(detail) {
			result = append(result, detail)
		}
	}
	s.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].OrderID != result[j].OrderID {
			return result[i].OrderID < result[j].OrderID
		}
		return result[i].PlateID < result[j].PlateID
	})
	return result
}

var _ domain.Storage = (*Store)(nil)
