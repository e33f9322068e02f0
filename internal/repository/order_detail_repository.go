package repository

import (
	"context"
	"errors"

	"github.com/vladislavdragonenkov/fleetfeast/internal/domain"
	"github.com/vladislavdragonenkov/fleetfeast/internal/live"
	"github.com/vladislavdragonenkov/fleetfeast/internal/writer"
)

// OrderDetailRepository выполняет операции над позициями заказов.
type OrderDetailRepository struct {
	*base
}

// Insert ставит вставку позиции. Позиция с нулевым количеством отклоняется без записи.
// Повторная вставка того же (заказ, блюдо)
// даёт Rejected со значением -1 и domain.ErrDetailExists; при успехе Value = 1.
func (r *OrderDetailRepository) Insert(ctx context.Context, detail domain.OrderDetail) *writer.Future {
	if violations := detail.ValidateNew(); len(violations) > 0 {
		return r.reject(entityDetail, rejectedInsert, violations)
	}
	detail = detail.Normalized()
	return r.submit(ctx, entityDetail, "insert", func(ctx context.Context) (int64, error) {
		n, err := r.store.InsertOrderDetail(ctx, detail)
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return rejectedInsert, writer.Reject(domain.ErrDetailExists)
		}
		return n, nil
	}, domain.TableOrderDetails)
}

// InsertAndWait вставляет позицию и ждёт результат.
func (r *OrderDetailRepository) InsertAndWait(ctx context.Context, detail domain.OrderDetail) writer.Outcome {
	return r.bridge.Await(ctx, r.Insert(ctx, detail))
}

// AddPlate добавляет блюдо в заказ в количестве 1, фиксируя текущую цену блюда.
func (r *OrderDetailRepository) AddPlate(ctx context.Context, orderID int64, plate domain.Plate) *writer.Future {
	return r.Insert(ctx, domain.OrderDetail{
		OrderID:     orderID,
		PlateID:     plate.ID,
		Quantity:    1,
		LockedPrice: plate.Price,
	})
}

// Update ставит замену количества и цены. Позиция с количеством 0 удаляется.
func (r *OrderDetailRepository) Update(ctx context.Context, detail domain.OrderDetail) *writer.Future {
	if violations := detail.Validate(); len(violations) > 0 {
		return r.reject(entityDetail, rejectedUpdate, violations)
	}
	detail = detail.Normalized()
	if detail.Quantity == 0 {
		return r.submit(ctx, entityDetail, "delete", func(ctx context.Context) (int64, error) {
			return r.store.DeleteOrderDetail(ctx, detail.Key())
		}, domain.TableOrderDetails)
	}
	return r.submit(ctx, entityDetail, "update", func(ctx context.Context) (int64, error) {
		return r.store.UpdateOrderDetail(ctx, detail)
	}, domain.TableOrderDetails)
}

// UpdateAndWait заменяет позицию и ждёт число изменённых строк.
func (r *OrderDetailRepository) UpdateAndWait(ctx context.Context, detail domain.OrderDetail) writer.Outcome {
	return r.bridge.Await(ctx, r.Update(ctx, detail))
}

// Increment увеличивает количество на 1. Чтение и запись выполняются внутри писателя,
// поэтому параллельные изменения одной позиции не теряются.
func (r *OrderDetailRepository) Increment(ctx context.Context, key domain.DetailKey) *writer.Future {
	return r.adjust(ctx, key, 1, "increment")
}

// Decrement уменьшает количество на 1; позиция, дошедшая до нуля, удаляется.
func (r *OrderDetailRepository) Decrement(ctx context.Context, key domain.DetailKey) *writer.Future {
	return r.adjust(ctx, key, -1, "decrement")
}

// SetQuantity задаёт количество позиции, сохраняя зафиксированную цену.
// Чтение и запись идут одной задачей писателя; количество 0 удаляет позицию,
// отсутствующая позиция даёт Rejected с domain.ErrDetailNotFound.
func (r *OrderDetailRepository) SetQuantity(ctx context.Context, key domain.DetailKey, quantity int) *writer.Future {
	if quantity < 0 {
		return r.reject(entityDetail, rejectedUpdate, []error{domain.ErrDetailQuantityNegative})
	}
	return r.submit(ctx, entityDetail, "set_quantity", func(ctx context.Context) (int64, error) {
		detail, err := r.store.GetOrderDetail(ctx, key)
		if err != nil {
			if errors.Is(err, domain.ErrDetailNotFound) {
				return rejectedUpdate, writer.Reject(err)
			}
			return 0, err
		}

		if quantity == 0 {
			return r.store.DeleteOrderDetail(ctx, key)
		}
		detail.Quantity = quantity
		return r.store.UpdateOrderDetail(ctx, detail)
	}, domain.TableOrderDetails)
}

func (r *OrderDetailRepository) adjust(ctx context.Context, key domain.DetailKey, delta int, name string) *writer.Future {
	return r.submit(ctx, entityDetail, name, func(ctx context.Context) (int64, error) {
		detail, err := r.store.GetOrderDetail(ctx, key)
		if err != nil {
			if errors.Is(err, domain.ErrDetailNotFound) {
				return 0, nil
			}
			return 0, err
		}

		detail.Quantity += delta
		if detail.Quantity <= 0 {
			return r.store.DeleteOrderDetail(ctx, key)
		}
		return r.store.UpdateOrderDetail(ctx, detail)
	}, domain.TableOrderDetails)
}

// Delete ставит удаление позиции.
func (r *OrderDetailRepository) Delete(ctx context.Context, key domain.DetailKey) *writer.Future {
	return r.submit(ctx, entityDetail, "delete", func(ctx context.Context) (int64, error) {
		return r.store.DeleteOrderDetail(ctx, key)
	}, domain.TableOrderDetails)
}

// DeleteAndWait удаляет позицию и ждёт число удалённых строк.
func (r *OrderDetailRepository) DeleteAndWait(ctx context.Context, key domain.DetailKey) writer.Outcome {
	return r.bridge.Await(ctx, r.Delete(ctx, key))
}

// DeleteAll ставит очистку позиций.
func (r *OrderDetailRepository) DeleteAll(ctx context.Context) *writer.Future {
	return r.submit(ctx, entityDetail, "delete_all", func(ctx context.Context) (int64, error) {
		return 0, r.store.DeleteAllOrderDetails(ctx)
	}, domain.TableOrderDetails)
}

// Get возвращает позицию по ключу или domain.ErrDetailNotFound.
func (r *OrderDetailRepository) Get(ctx context.Context, key domain.DetailKey) (domain.OrderDetail, error) {
	return r.store.GetOrderDetail(ctx, key)
}

// List возвращает все позиции.
func (r *OrderDetailRepository) List(ctx context.Context) ([]domain.OrderDetail, error) {
	return r.store.ListOrderDetails(ctx)
}

// WatchAll открывает живую выборку всех позиций.
func (r *OrderDetailRepository) WatchAll(ctx context.Context) <-chan []domain.OrderDetail {
	return live.Watch(ctx, r.hub, r.store.ListOrderDetails, domain.TableOrderDetails)
}

// ListByOrder возвращает позиции заказа.
func (r *OrderDetailRepository) ListByOrder(ctx context.Context, orderID int64) ([]domain.OrderDetail, error) {
	return r.store.ListOrderDetailsByOrder(ctx, orderID)
}

// WatchByOrder открывает живую выборку позиций заказа.
func (r *OrderDetailRepository) WatchByOrder(ctx context.Context, orderID int64) <-chan []domain.OrderDetail {
	return live.Watch(ctx, r.hub, func(ctx context.Context) ([]domain.OrderDetail, error) {
		return r.store.ListOrderDetailsByOrder(ctx, orderID)
	}, domain.TableOrderDetails)
}

// Total возвращает сумму заказа по зафиксированным ценам.
func (r *OrderDetailRepository) Total(ctx context.Context, orderID int64) (float64, error) {
	details, err := r.store.ListOrderDetailsByOrder(ctx, orderID)
	if err != nil {
		return 0, err
	}
	return domain.OrderTotal(details), nil
}
