package domain

import "context"

// Таблицы хранилища; используются для адресной инвалидации живых выборок.
const (
	TablePlate        = "plate"
	TableOrders       = "orders"
	TableOrderDetails = "orderDetails"
)

// PlateStore описывает примитивы хранилища для блюд.
// Методы записи вызываются только из писателя (writer.Queue); чтение безопасно из любой горутины.
type PlateStore interface {
	// InsertPlate сохраняет блюдо и возвращает назначенный хранилищем идентификатор.
	// Переданный ID игнорируется.
	InsertPlate(ctx context.Context, plate Plate) (int64, error)
	// UpdatePlate полностью заменяет блюдо по ID и возвращает число изменённых строк (0 или 1).
	UpdatePlate(ctx context.Context, plate Plate) (int64, error)
	// DeletePlate удаляет блюдо; для отсутствующей записи это 0 строк, а не ошибка.
	DeletePlate(ctx context.Context, id int64) (int64, error)
	// DeleteAllPlates очищает таблицу блюд.
	DeleteAllPlates(ctx context.Context) error
	// GetPlate возвращает блюдо или ErrPlateNotFound.
	GetPlate(ctx context.Context, id int64) (Plate, error)
	// ListPlates возвращает все блюда в заданном порядке.
	ListPlates(ctx context.Context, order PlateOrder) ([]Plate, error)
	// ListPlatesNotInOrder возвращает блюда, которых ещё нет в позициях заказа (anti-join).
	ListPlatesNotInOrder(ctx context.Context, orderID int64) ([]Plate, error)
}

// OrderStore описывает примитивы хранилища для заказов.
type OrderStore interface {
	InsertOrder(ctx context.Context, order Order) (int64, error)
	UpdateOrder(ctx context.Context, order Order) (int64, error)
	DeleteOrder(ctx context.Context, id int64) (int64, error)
	DeleteAllOrders(ctx context.Context) error
	// GetOrder возвращает заказ или ErrOrderNotFound.
	GetOrder(ctx context.Context, id int64) (Order, error)
	ListOrders(ctx context.Context, by OrderSort) ([]Order, error)
}

// OrderDetailStore описывает примитивы хранилища для позиций заказа.
type OrderDetailStore interface {
	// InsertOrderDetail возвращает 1 при вставке и 0, если пара (заказ, блюдо) уже есть.
	InsertOrderDetail(ctx context.Context, detail OrderDetail) (int64, error)
	UpdateOrderDetail(ctx context.Context, detail OrderDetail) (int64, error)
	DeleteOrderDetail(ctx context.Context, key DetailKey) (int64, error)
	DeleteAllOrderDetails(ctx context.Context) error
	// GetOrderDetail возвращает позицию или ErrDetailNotFound.
	GetOrderDetail(ctx context.Context, key DetailKey) (OrderDetail, error)
	ListOrderDetails(ctx context.Context) ([]OrderDetail, error)
	ListOrderDetailsByOrder(ctx context.Context, orderID int64) ([]OrderDetail, error)
}

// Storage — единый дескриптор хранилища, который композиционный корень
// создаёт один раз и передаёт всем репозиториям.
type Storage interface {
	PlateStore
	OrderStore
	OrderDetailStore
	// Ping проверяет доступность движка.
	Ping(ctx context.Context) error
	// Close освобождает ресурсы движка.
	Close() error
}
