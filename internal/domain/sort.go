package domain

import (
	"fmt"
	"sort"
	"strings"
)

// PlateOrder задаёт порядок выдачи списка блюд.
type PlateOrder int

const (
	// PlateOrderNone — порядок хранилища (по идентификатору).
	PlateOrderNone PlateOrder = iota
	// PlateOrderName — по названию.
	PlateOrderName
	// PlateOrderCategory — по категории в фиксированном порядке.
	PlateOrderCategory
	// PlateOrderCategoryName — по категории, затем по названию.
	PlateOrderCategoryName
)

// String возвращает имя порядка, принимаемое ParsePlateOrder.
func (o PlateOrder) String() string {
	switch o {
	case PlateOrderName:
		return "name"
	case PlateOrderCategory:
		return "category"
	case PlateOrderCategoryName:
		return "category-name"
	default:
		return "none"
	}
}

// ParsePlateOrder разбирает имя порядка блюд.
func ParsePlateOrder(value string) (PlateOrder, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "none":
		return PlateOrderNone, nil
	case "name":
		return PlateOrderName, nil
	case "category":
		return PlateOrderCategory, nil
	case "category-name", "category_name":
		return PlateOrderCategoryName, nil
	default:
		return PlateOrderNone, fmt.Errorf("unknown plate order %q", value)
	}
}

// OrderSort задаёт порядок выдачи списка заказов.
type OrderSort int

const (
	// OrderSortNone — порядок хранилища (по идентификатору).
	OrderSortNone OrderSort = iota
	// OrderSortName — по имени клиента.
	OrderSortName
	// OrderSortPhone — по телефону.
	OrderSortPhone
	// OrderSortDate — по времени выдачи; строка фиксированной ширины сортируется лексикографически.
	OrderSortDate
)

// String возвращает имя порядка, принимаемое ParseOrderSort.
func (o OrderSort) String() string {
	switch o {
	case OrderSortName:
		return "name"
	case OrderSortPhone:
		return "phone"
	case OrderSortDate:
		return "date"
	default:
		return "none"
	}
}

// ParseOrderSort разбирает имя порядка заказов.
func ParseOrderSort(value string) (OrderSort, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "none":
		return OrderSortNone, nil
	case "name":
		return OrderSortName, nil
	case "phone":
		return OrderSortPhone, nil
	case "date":
		return OrderSortDate, nil
	default:
		return OrderSortNone, fmt.Errorf("unknown order sort %q", value)
	}
}

// LessPlates — клиентский компаратор, согласованный с ORDER BY хранилищ.
// При равенстве ключей порядок определяется идентификатором.
func LessPlates(order PlateOrder, a, b Plate) bool {
	switch order {
	case PlateOrderName:
		if a.Name != b.Name {
			return a.Name < b.Name
		}
	case PlateOrderCategory:
		if a.Category.Rank() != b.Category.Rank() {
			return a.Category.Rank() < b.Category.Rank()
		}
	case PlateOrderCategoryName:
		if a.Category.Rank() != b.Category.Rank() {
			return a.Category.Rank() < b.Category.Rank()
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
	}
	return a.ID < b.ID
}

// SortPlates сортирует срез блюд на месте.
func SortPlates(plates []Plate, order PlateOrder) {
	sort.SliceStable(plates, func(i, j int) bool {
		return LessPlates(order, plates[i], plates[j])
	})
}

// LessOrders — клиентский компаратор заказов, согласованный с ORDER BY хранилищ.
func LessOrders(by OrderSort, a, b Order) bool {
	switch by {
	case OrderSortName:
		if a.CustomerName != b.CustomerName {
			return a.CustomerName < b.CustomerName
		}
	case OrderSortPhone:
		if a.Phone != b.Phone {
			return a.Phone < b.Phone
		}
	case OrderSortDate:
		if a.PickupDateTime != b.PickupDateTime {
			return a.PickupDateTime < b.PickupDateTime
		}
	}
	return a.ID < b.ID
}

// SortOrders сортирует срез заказов на месте.
func SortOrders(orders []Order, by OrderSort) {
	sort.SliceStable(orders, func(i, j int) bool {
		return LessOrders(by, orders[i], orders[j])
	})
}

// StateFilter — множество состояний, которые нужно показать.
type StateFilter map[OrderState]bool

// AllStates возвращает фильтр, пропускающий все состояния.
func AllStates() StateFilter {
	f := make(StateFilter, len(OrderStates))
	for _, s := range OrderStates {
		f[s] = true
	}
	return f
}

// ParseStateFilter разбирает список состояний через запятую; пустая строка означает все состояния.
func ParseStateFilter(value string) (StateFilter, error) {
	if strings.TrimSpace(value) == "" {
		return AllStates(), nil
	}
	f := make(StateFilter)
	for _, part := range strings.Split(value, ",") {
		state := OrderState(strings.ToUpper(strings.TrimSpace(part)))
		if !state.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrOrderStateInvalid, part)
		}
		f[state] = true
	}
	return f, nil
}

// Allows сообщает, проходит ли состояние фильтр.
func (f StateFilter) Allows(state OrderState) bool {
	return f[state]
}

// FilterOrders возвращает новый срез с заказами, прошедшими фильтр; исходный порядок сохраняется.
func FilterOrders(orders []Order, filter StateFilter) []Order {
	result := make([]Order, 0, len(orders))
	for _, o := range orders {
		if filter.Allows(o.State) {
			result = append(result, o)
		}
	}
	return result
}
