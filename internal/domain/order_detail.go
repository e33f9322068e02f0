package domain

import "github.com/shopspring/decimal"

// OrderDetail — позиция заказа: связь заказа и блюда с количеством и зафиксированной ценой.
// Пара (OrderID, PlateID) уникальна.
type OrderDetail struct {
	OrderID  int64 `json:"orderId" validate:"gt=0"`
	PlateID  int64 `json:"plateId" validate:"gt=0"`
	Quantity int   `json:"quantity" validate:"gte=0"`
	// LockedPrice фиксируется при добавлении блюда и не следует за ценой в каталоге.
	LockedPrice float64 `json:"price" validate:"money"`
}

// DetailKey — составной ключ позиции заказа.
type DetailKey struct {
	OrderID int64
	PlateID int64
}

// Key возвращает составной ключ позиции.
func (d OrderDetail) Key() DetailKey {
	return DetailKey{OrderID: d.OrderID, PlateID: d.PlateID}
}

// Validate проверяет инварианты позиции.
func (d *OrderDetail) Validate() []error {
	if d == nil {
		return []error{ErrEntityRequired}
	}
	return validateStruct(d, detailFieldErrors)
}

// ValidateNew проверяет позицию перед вставкой: кроме общих инвариантов
// новая позиция должна содержать хотя бы одно блюдо.
func (d *OrderDetail) ValidateNew() []error {
	violations := d.Validate()
	if d != nil && d.Quantity == 0 {
		violations = append(violations, ErrDetailQuantityRequired)
	}
	return violations
}

// IsValid — предикат валидности позиции.
func (d *OrderDetail) IsValid() bool {
	return len(d.Validate()) == 0
}

// Normalized возвращает копию позиции с нормализованной ценой.
func (d OrderDetail) Normalized() OrderDetail {
	d.LockedPrice = NormalizeMoney(d.LockedPrice)
	return d
}

// LineTotal возвращает стоимость позиции, округлённую до копеек.
func (d OrderDetail) LineTotal() float64 {
	return lineAmount(d).Round(2).InexactFloat64()
}

// OrderTotal суммирует позиции заказа и округляет итог до копеек.
func OrderTotal(details []OrderDetail) float64 {
	sum := decimal.Zero
	for _, d := range details {
		sum = sum.Add(lineAmount(d))
	}
	return sum.Round(2).InexactFloat64()
}

func lineAmount(d OrderDetail) decimal.Decimal {
	return moneyDecimal(d.LockedPrice).Mul(decimal.NewFromInt(int64(d.Quantity)))
}

var detailFieldErrors = map[string]error{
	"OrderID":     ErrDetailOrderRequired,
	"PlateID":     ErrDetailPlateRequired,
	"Quantity":    ErrDetailQuantityNegative,
	"LockedPrice": ErrDetailPriceNegative,
}
