// Package sqlstore реализует domain.Storage поверх database/sql.
// Запросы общие для SQLite и PostgreSQL; различия вынесены в Dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/fleetfeast/internal/domain"
)

// Store — SQL-хранилище блюд, заказов и позиций.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// New оборачивает открытое подключение. Схема должна быть уже применена.
func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// DB возвращает raw SQL DB для миграций и тестов.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect возвращает диалект хранилища.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Ping проверяет доступность движка.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("sql store is not initialized")
	}
	return s.db.PingContext(ctx)
}

// Close закрывает подключение.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) insertReturningID(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	if err := s.db.QueryRowContext(ctx, s.dialect.Rebind(query+" RETURNING id"), args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// InsertPlate сохраняет блюдо и возвращает новый id.
func (s *Store) InsertPlate(ctx context.Context, plate domain.Plate) (int64, error) {
	id, err := s.insertReturningID(ctx,
		`INSERT INTO plate (name, description, category, price) VALUES (?, ?, ?, ?)`,
		plate.Name, plate.Description, string(plate.Category), plate.Price,
	)
	if err != nil {
		return 0, fmt.Errorf("insert plate: %w", err)
	}
	return id, nil
}

// UpdatePlate заменяет блюдо по id.
func (s *Store) UpdatePlate(ctx context.Context, plate domain.Plate) (int64, error) {
	n, err := s.exec(ctx,
		`UPDATE plate SET name = ?, description = ?, category = ?, price = ? WHERE id = ?`,
		plate.Name, plate.Description, string(plate.Category), plate.Price, plate.ID,
	)
	if err != nil {
		return 0, fmt.Errorf("update plate %d: %w", plate.ID, err)
	}
	return n, nil
}

// DeletePlate удаляет блюдо; позиции заказов не трогает.
func (s *Store) DeletePlate(ctx context.Context, id int64) (int64, error) {
	n, err := s.exec(ctx, `DELETE FROM plate WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("delete plate %d: %w", id, err)
	}
	return n, nil
}

// DeleteAllPlates очищает каталог.
func (s *Store) DeleteAllPlates(ctx context.Context) error {
	if _, err := s.exec(ctx, `DELETE FROM plate`); err != nil {
		return fmt.Errorf("delete all plates: %w", err)
	}
	return nil
}

// GetPlate возвращает блюдо по id.
func (s *Store) GetPlate(ctx context.Context, id int64) (domain.Plate, error) {
	row := s.db.QueryRowContext(ctx, s.dialect.Rebind(`SELECT `+plateColumns+` FROM plate WHERE id = ?`), id)
	plate, err := scanPlate(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Plate{}, domain.ErrPlateNotFound
		}
		return domain.Plate{}, fmt.Errorf("select plate %d: %w", id, err)
	}
	return plate, nil
}

// ListPlates возвращает каталог в заданном порядке.
func (s *Store) ListPlates(ctx context.Context, order domain.PlateOrder) ([]domain.Plate, error) {
	return s.queryPlates(ctx, `SELECT `+plateColumns+` FROM plate`+s.dialect.plateOrderBy(order))
}

// ListPlatesNotInOrder возвращает блюда, которых ещё нет в заказе.
func (s *Store) ListPlatesNotInOrder(ctx context.Context, orderID int64) ([]domain.Plate, error) {
	return s.queryPlates(ctx,
		`SELECT `+plateColumns+` FROM plate WHERE id NOT IN (SELECT plateId FROM orderDetails WHERE orderId = ?) ORDER BY id`,
		orderID,
	)
}

func (s *Store) queryPlates(ctx context.Context, query string, args ...any) ([]domain.Plate, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query plates: %w", err)
	}
	defer rows.Close()

	plates := make([]domain.Plate, 0)
	for rows.Next() {
		plate, err := scanPlate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plate: %w", err)
		}
		plates = append(plates, plate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plates: %w", err)
	}
	return plates, nil
}

// InsertOrder сохраняет заказ и возвращает новый id.
func (s *Store) InsertOrder(ctx context.Context, order domain.Order) (int64, error) {
	id, err := s.insertReturningID(ctx,
		`INSERT INTO orders (name, phone, date, state) VALUES (?, ?, ?, ?)`,
		order.CustomerName, order.Phone, order.PickupDateTime, string(order.State),
	)
	if err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}
	return id, nil
}

// UpdateOrder заменяет заказ по id.
func (s *Store) UpdateOrder(ctx context.Context, order domain.Order) (int64, error) {
	n, err := s.exec(ctx,
		`UPDATE orders SET name = ?, phone = ?, date = ?, state = ? WHERE id = ?`,
		order.CustomerName, order.Phone, order.PickupDateTime, string(order.State), order.ID,
	)
	if err != nil {
		return 0, fmt.Errorf("update order %d: %w", order.ID, err)
	}
	return n, nil
}

// DeleteOrder удаляет заказ; позиции остаются.
func (s *Store) DeleteOrder(ctx context.Context, id int64) (int64, error) {
	n, err := s.exec(ctx, `DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("delete order %d: %w", id, err)
	}
	return n, nil
}

// DeleteAllOrders очищает таблицу заказов.
func (s *Store) DeleteAllOrders(ctx context.Context) error {
	if _, err := s.exec(ctx, `DELETE FROM orders`); err != nil {
		return fmt.Errorf("delete all orders: %w", err)
	}
	return nil
}

// GetOrder возвращает заказ по id.
func (s *Store) GetOrder(ctx context.Context, id int64) (domain.Order, error) {
	row := s.db.QueryRowContext(ctx, s.dialect.Rebind(`SELECT `+orderColumns+` FROM orders WHERE id = ?`), id)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order %d: %w", id, err)
	}
	return order, nil
}

// ListOrders возвращает заказы в заданном порядке.
func (s *Store) ListOrders(ctx context.Context, by domain.OrderSort) ([]domain.Order, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders`+s.dialect.orderOrderBy(by))
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return orders, nil
}

// InsertOrderDetail вставляет позицию; при конфликте ключа строка игнорируется и возвращается 0.
func (s *Store) InsertOrderDetail(ctx context.Context, detail domain.OrderDetail) (int64, error) {
	n, err := s.exec(ctx,
		`INSERT INTO orderDetails (`+detailColumns+`) VALUES (?, ?, ?, ?) ON CONFLICT (orderId, plateId) DO NOTHING`,
		detail.OrderID, detail.PlateID, detail.Quantity, detail.LockedPrice,
	)
	if err != nil {
		return 0, fmt.Errorf("insert order detail %d/%d: %w", detail.OrderID, detail.PlateID, err)
	}
	return n, nil
}

// UpdateOrderDetail заменяет количество и цену позиции.
func (s *Store) UpdateOrderDetail(ctx context.Context, detail domain.OrderDetail) (int64, error) {
	n, err := s.exec(ctx,
		`UPDATE orderDetails SET quantity = ?, price = ? WHERE orderId = ? AND plateId = ?`,
		detail.Quantity, detail.LockedPrice, detail.OrderID, detail.PlateID,
	)
	if err != nil {
		return 0, fmt.Errorf("update order detail %d/%d: %w", detail.OrderID, detail.PlateID, err)
	}
	return n, nil
}

// DeleteOrderDetail удаляет позицию по составному ключу.
func (s *Store) DeleteOrderDetail(ctx context.Context, key domain.DetailKey) (int64, error) {
	n, err := s.exec(ctx, `DELETE FROM orderDetails WHERE orderId = ? AND plateId = ?`, key.OrderID, key.PlateID)
	if err != nil {
		return 0, fmt.Errorf("delete order detail %d/%d: %w", key.OrderID, key.PlateID, err)
	}
	return n, nil
}

// DeleteAllOrderDetails очищает таблицу позиций.
func (s *Store) DeleteAllOrderDetails(ctx context.Context) error {
	if _, err := s.exec(ctx, `DELETE FROM orderDetails`); err != nil {
		return fmt.Errorf("delete all order details: %w", err)
	}
	return nil
}

// GetOrderDetail возвращает позицию по составному ключу.
func (s *Store) GetOrderDetail(ctx context.Context, key domain.DetailKey) (domain.OrderDetail, error) {
	row := s.db.QueryRowContext(ctx,
		s.dialect.Rebind(`SELECT `+detailColumns+` FROM orderDetails WHERE orderId = ? AND plateId = ?`),
		key.OrderID, key.PlateID,
	)
	var detail domain.OrderDetail
	if err := row.Scan(&detail.OrderID, &detail.PlateID, &detail.Quantity, &detail.LockedPrice); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.OrderDetail{}, domain.ErrDetailNotFound
		}
		return domain.OrderDetail{}, fmt.Errorf("select order detail %d/%d: %w", key.OrderID, key.PlateID, err)
	}
	return detail, nil
}

// ListOrderDetails возвращает все позиции, упорядоченные по ключу.
func (s *Store) ListOrderDetails(ctx context.Context) ([]domain.OrderDetail, error) {
	return s.queryDetails(ctx, `SELECT `+detailColumns+` FROM orderDetails ORDER BY orderId, plateId`)
}

// ListOrderDetailsByOrder возвращает позиции одного заказа.
func (s *Store) ListOrderDetailsByOrder(ctx context.Context, orderID int64) ([]domain.OrderDetail, error) {
	return s.queryDetails(ctx, `SELECT `+detailColumns+` FROM orderDetails WHERE orderId = ? ORDER BY plateId`, orderID)
}

func (s *Store) queryDetails(ctx context.Context, query string, args ...any) ([]domain.OrderDetail, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query order details: %w", err)
	}
	defer rows.Close()

	details := make([]domain.OrderDetail, 0)
	for rows.Next() {
		var detail domain.OrderDetail
		if err := rows.Scan(&detail.OrderID, &detail.PlateID, &detail.Quantity, &detail.LockedPrice); err != nil {
			return nil, fmt.Errorf("scan order detail: %w", err)
		}
		details = append(details, detail)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order details: %w", err)
	}
	return details, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlate(row rowScanner) (domain.Plate, error) {
	var (
		plate       domain.Plate
		description sql.NullString
		category    string
	)
	if err := row.Scan(&plate.ID, &plate.Name, &description, &category, &plate.Price); err != nil {
		return domain.Plate{}, err
	}
	plate.Description = description.String
	plate.Category = domain.Category(category)
	return plate, nil
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var (
		order domain.Order
		state string
	)
	if err := row.Scan(&order.ID, &order.CustomerName, &order.Phone, &order.PickupDateTime, &state); err != nil {
		return domain.Order{}, err
	}
	order.State = domain.OrderState(state)
	return order, nil
}

var _ domain.Storage = (*Store)(nil)
