package repository

import (
	"context"

	"github.com/vladislavdragonenkov/fleetfeast/internal/domain"
	"github.com/vladislavdragonenkov/fleetfeast/internal/live"
	"github.com/vladislavdragonenkov/fleetfeast/internal/writer"
)

// PlateRepository выполняет операции над каталогом блюд.
type PlateRepository struct {
	*base
}

// Insert ставит вставку блюда в очередь. Переданный ID игнорируется;
// невалидное блюдо сразу даёт Rejected со значением -1.
func (r *PlateRepository) Insert(ctx context.Context, plate domain.Plate) *writer.Future {
	if violations := plate.Validate(); len(violations) > 0 {
		return r.reject(entityPlate, rejectedInsert, violations)
	}
	plate = plate.Normalized()
	plate.ID = 0
	return r.submit(ctx, entityPlate, "insert", func(ctx context.Context) (int64, error) {
		return r.store.InsertPlate(ctx, plate)
	}, domain.TablePlate)
}

// InsertAndWait вставляет блюдо и ждёт назначенный id.
func (r *PlateRepository) InsertAndWait(ctx context.Context, plate domain.Plate) writer.Outcome {
	return r.bridge.Await(ctx, r.Insert(ctx, plate))
}

// Update ставит полную замену блюда по ID; Value равен числу изменённых строк.
func (r *PlateRepository) Update(ctx context.Context, plate domain.Plate) *writer.Future {
	if violations := plate.Validate(); len(violations) > 0 {
		return r.reject(entityPlate, rejectedUpdate, violations)
	}
	plate = plate.Normalized()
	return r.submit(ctx, entityPlate, "update", func(ctx context.Context) (int64, error) {
		return r.store.UpdatePlate(ctx, plate)
	}, domain.TablePlate)
}

// UpdateAndWait заменяет блюдо и ждёт число изменённых строк.
func (r *PlateRepository) UpdateAndWait(ctx context.Context, plate domain.Plate) writer.Outcome {
	return r.bridge.Await(ctx, r.Update(ctx, plate))
}

// Delete ставит удаление блюда. Позиции заказов с этим блюдом остаются.
func (r *PlateRepository) Delete(ctx context.Context, id int64) *writer.Future {
	return r.submit(ctx, entityPlate, "delete", func(ctx context.Context) (int64, error) {
		return r.store.DeletePlate(ctx, id)
	}, domain.TablePlate)
}

// DeleteAndWait удаляет блюдо и ждёт число удалённых строк.
func (r *PlateRepository) DeleteAndWait(ctx context.Context, id int64) writer.Outcome {
	return r.bridge.Await(ctx, r.Delete(ctx, id))
}

// DeleteAll ставит очистку каталога.
func (r *PlateRepository) DeleteAll(ctx context.Context) *writer.Future {
	return r.submit(ctx, entityPlate, "delete_all", func(ctx context.Context) (int64, error) {
		return 0, r.store.DeleteAllPlates(ctx)
	}, domain.TablePlate)
}

// Get возвращает блюдо по id или domain.ErrPlateNotFound.
func (r *PlateRepository) Get(ctx context.Context, id int64) (domain.Plate, error) {
	return r.store.GetPlate(ctx, id)
}

// List возвращает каталог в заданном порядке.
func (r *PlateRepository) List(ctx context.Context, order domain.PlateOrder) ([]domain.Plate, error) {
	return r.store.ListPlates(ctx, order)
}

// WatchAll открывает живую выборку каталога.
func (r *PlateRepository) WatchAll(ctx context.Context, order domain.PlateOrder) <-chan []domain.Plate {
	return live.Watch(ctx, r.hub, func(ctx context.Context) ([]domain.Plate, error) {
		return r.store.ListPlates(ctx, order)
	}, domain.TablePlate)
}

// ListNotInOrder возвращает блюда, которых ещё нет в заказе.
func (r *PlateRepository) ListNotInOrder(ctx context.Context, orderID int64) ([]domain.Plate, error) {
	return r.store.ListPlatesNotInOrder(ctx, orderID)
}

// WatchNotInOrder открывает живую выборку блюд, доступных для добавления в заказ.
func (r *PlateRepository) WatchNotInOrder(ctx context.Context, orderID int64) <-chan []domain.Plate {
	return live.Watch(ctx, r.hub, func(ctx context.Context) ([]domain.Plate, error) {
		return r.store.ListPlatesNotInOrder(ctx, orderID)
	}, domain.TablePlate, domain.TableOrderDetails)
}
