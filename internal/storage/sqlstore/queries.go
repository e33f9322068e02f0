package sqlstore

import "github.com/vladislavdragonenkov/fleetfeast/internal/domain"

const categoryRank = `CASE category WHEN 'FIRST' THEN 1 WHEN 'SECOND' THEN 2 WHEN 'DESSERT' THEN 3 ELSE 4 END`

const (
	plateColumns  = `id, name, description, category, price`
	orderColumns  = `id, name, phone, date, state`
	detailColumns = `orderId, plateId, quantity, price`
)

// plateOrderBy совпадает с domain.LessPlates: при равных ключах решает id.
func (d Dialect) plateOrderBy(order domain.PlateOrder) string {
	switch order {
	case domain.PlateOrderName:
		return " ORDER BY " + d.text("name") + ", id"
	case domain.PlateOrderCategory:
		return " ORDER BY " + categoryRank + ", id"
	case domain.PlateOrderCategoryName:
		return " ORDER BY " + categoryRank + ", " + d.text("name") + ", id"
	default:
		return " ORDER BY id"
	}
}

// orderOrderBy совпадает с domain.LessOrders.
func (d Dialect) orderOrderBy(by domain.OrderSort) string {
	switch by {
	case domain.OrderSortName:
		return " ORDER BY " + d.text("name") + ", id"
	case domain.OrderSortPhone:
		return " ORDER BY phone, id"
	case domain.OrderSortDate:
		return " ORDER BY " + d.text("date") + ", id"
	default:
		return " ORDER BY id"
	}
}
