package repository

import (
	"context"

	"github.com/vladislavdragonenkov/fleetfeast/internal/domain"
	"github.com/vladislavdragonenkov/fleetfeast/internal/live"
	"github.com/vladislavdragonenkov/fleetfeast/internal/writer"
)

// OrderRepository выполняет операции над заказами.
type OrderRepository struct {
	*base
}

// Insert ставит вставку заказа; невалидный заказ сразу даёт Rejected со значением -1.
func (r *OrderRepository) Insert(ctx context.Context, order domain.Order) *writer.Future {
	if violations := order.Validate(); len(violations) > 0 {
		return r.reject(entityOrder, rejectedInsert, violations)
	}
	order.ID = 0
	return r.submit(ctx, entityOrder, "insert", func(ctx context.Context) (int64, error) {
		return r.store.InsertOrder(ctx, order)
	}, domain.TableOrders)
}

// InsertAndWait вставляет заказ и ждёт id; нужен, когда следом создаются позиции.
func (r *OrderRepository) InsertAndWait(ctx context.Context, order domain.Order) writer.Outcome {
	return r.bridge.Await(ctx, r.Insert(ctx, order))
}

// Update ставит полную замену заказа.
func (r *OrderRepository) Update(ctx context.Context, order domain.Order) *writer.Future {
	if violations := order.Validate(); len(violations) > 0 {
		return r.reject(entityOrder, rejectedUpdate, violations)
	}
	return r.submit(ctx, entityOrder, "update", func(ctx context.Context) (int64, error) {
		return r.store.UpdateOrder(ctx, order)
	}, domain.TableOrders)
}

// UpdateAndWait заменяет заказ и ждёт число изменённых строк.
func (r *OrderRepository) UpdateAndWait(ctx context.Context, order domain.Order) writer.Outcome {
	return r.bridge.Await(ctx, r.Update(ctx, order))
}

// Delete ставит удаление заказа. Позиции не удаляются каскадно.
func (r *OrderRepository) Delete(ctx context.Context, id int64) *writer.Future {
	return r.submit(ctx, entityOrder, "delete", func(ctx context.Context) (int64, error) {
		return r.store.DeleteOrder(ctx, id)
	}, domain.TableOrders)
}

// DeleteAndWait удаляет заказ и ждёт число удалённых строк.
func (r *OrderRepository) DeleteAndWait(ctx context.Context, id int64) writer.Outcome {
	return r.bridge.Await(ctx, r.Delete(ctx, id))
}

// DeleteAll ставит очистку заказов.
func (r *OrderRepository) DeleteAll(ctx context.Context) *writer.Future {
	return r.submit(ctx, entityOrder, "delete_all", func(ctx context.Context) (int64, error) {
		return 0, r.store.DeleteAllOrders(ctx)
	}, domain.TableOrders)
}

// Get возвращает заказ по id или domain.ErrOrderNotFound.
func (r *OrderRepository) Get(ctx context.Context, id int64) (domain.Order, error) {
	return r.store.GetOrder(ctx, id)
}

// List возвращает заказы в заданном порядке.
func (r *OrderRepository) List(ctx context.Context, by domain.OrderSort) ([]domain.Order, error) {
	return r.store.ListOrders(ctx, by)
}

// ListFiltered возвращает заказы в заданном порядке, оставляя только состояния из filter.
func (r *OrderRepository) ListFiltered(ctx context.Context, by domain.OrderSort, filter domain.StateFilter) ([]domain.Order, error) {
	orders, err := r.store.ListOrders(ctx, by)
	if err != nil {
		return nil, err
	}
	return domain.FilterOrders(orders, filter), nil
}

// WatchAll открывает живую выборку всех заказов.
func (r *OrderRepository) WatchAll(ctx context.Context, by domain.OrderSort) <-chan []domain.Order {
	return r.WatchFiltered(ctx, by, domain.AllStates())
}

// WatchFiltered открывает живую выборку с сортировкой движка и фильтром по состоянию на клиенте.
func (r *OrderRepository) WatchFiltered(ctx context.Context, by domain.OrderSort, filter domain.StateFilter) <-chan []domain.Order {
	return live.Watch(ctx, r.hub, func(ctx context.Context) ([]domain.Order, error) {
		return r.ListFiltered(ctx, by, filter)
	}, domain.TableOrders)
}
