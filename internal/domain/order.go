package domain

import (
	"regexp"
	"strconv"
	"time"
)

// OrderState описывает жизненный цикл заказа на точке выдачи.
type OrderState string

const (
	// OrderStateRequested — заказ принят, но ещё не готов.
	OrderStateRequested OrderState = "REQUESTED"
	// OrderStateReady — заказ приготовлен и ждёт клиента.
	OrderStateReady OrderState = "READY"
	// OrderStatePickedUp — клиент забрал заказ.
	OrderStatePickedUp OrderState = "PICKED_UP"
)

// OrderStates перечисляет состояния в порядке жизненного цикла.
var OrderStates = []OrderState{OrderStateRequested, OrderStateReady, OrderStatePickedUp}

// Valid сообщает, входит ли значение в закрытый набор состояний.
func (s OrderState) Valid() bool {
	switch s {
	case OrderStateRequested, OrderStateReady, OrderStatePickedUp:
		return true
	default:
		return false
	}
}

// PickupLayout — формат времени выдачи: дата, два пробела, время.
const PickupLayout = "2006/01/02  15:04"

var pickupPattern = regexp.MustCompile(`^\d{4}/\d{2}/\d{2}  \d{2}:\d{2}$`)

// Order — заказ клиента на самовывоз.
type Order struct {
	ID           int64  `json:"id"`
	CustomerName string `json:"name" validate:"required"`
	// Phone хранится числом; валиден только девятизначный номер.
	Phone          int64      `json:"phone" validate:"phone9"`
	PickupDateTime string     `json:"date" validate:"pickupdatetime"`
	State          OrderState `json:"state" validate:"orderstate"`
}

// Validate проверяет инварианты заказа и возвращает список нарушений.
func (o *Order) Validate() []error {
	if o == nil {
		return []error{ErrEntityRequired}
	}
	return validateStruct(o, orderFieldErrors)
}

// IsValid — предикат валидности, вызываемый перед каждой записью.
func (o *Order) IsValid() bool {
	return len(o.Validate()) == 0
}

// PhoneString возвращает телефон в десятичной записи без префиксов.
func (o Order) PhoneString() string {
	return strconv.FormatInt(o.Phone, 10)
}

var orderFieldErrors = map[string]error{
	"CustomerName":   ErrOrderNameRequired,
	"Phone":          ErrOrderPhoneInvalid,
	"PickupDateTime": ErrOrderPickupInvalid,
	"State":          ErrOrderStateInvalid,
}

// ValidPhone сообщает, состоит ли номер ровно из девяти цифр.
func ValidPhone(phone int64) bool {
	return phone > 0 && len(strconv.FormatInt(phone, 10)) == 9
}

// ValidPickup сообщает, соответствует ли строка формату PickupLayout.
func ValidPickup(value string) bool {
	return pickupPattern.MatchString(value)
}

// FormatPickup формирует строку времени выдачи в формате хранилища.
func FormatPickup(t time.Time) string {
	return t.Format(PickupLayout)
}

// ParsePickup разбирает строку времени выдачи в указанной локации.
func ParsePickup(value string, loc *time.Location) (time.Time, error) {
	if !ValidPickup(value) {
		return time.Time{}, ErrOrderPickupInvalid
	}
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(PickupLayout, value, loc)
	if err != nil {
		return time.Time{}, ErrOrderPickupInvalid
	}
	return t, nil
}

// Окно выдачи: со вторника по воскресенье, с 19:30 до 23:00 включительно.
const (
	pickupOpensAt  = 19*60 + 30
	pickupClosesAt = 23 * 60
)

// CheckPickupWindow проверяет, что время выдачи не в прошлом и попадает в часы работы.
func CheckPickupWindow(pickup, now time.Time) error {
	if pickup.Before(now) {
		return ErrPickupInPast
	}
	if pickup.Weekday() == time.Monday {
		return ErrPickupOutsideHours
	}
	minutes := pickup.Hour()*60 + pickup.Minute()
	if minutes < pickupOpensAt || minutes > pickupClosesAt {
		return ErrPickupOutsideHours
	}
	return nil
}
