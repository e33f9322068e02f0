package domain

import "errors"

var (
	// Общая ошибка валидации; конкретные нарушения ниже оборачиваются в ValidationError.
	ErrValidation = errors.New("validation failed")
	// Ошибка nil-сущности.
	ErrEntityRequired = errors.New("entity is required")

	// Ошибка пустого названия блюда.
	ErrPlateNameRequired = errors.New("plate name is required")
	// Ошибка категории вне набора FIRST/SECOND/DESSERT.
	ErrPlateCategoryInvalid = errors.New("plate category is invalid")
	// Ошибка отрицательной (или нечисловой) цены блюда.
	ErrPlatePriceNegative = errors.New("plate price must be a non-negative number")

	// Ошибка пустого имени клиента.
	ErrOrderNameRequired = errors.New("customer name is required")
	// Ошибка телефона не из девяти цифр.
	ErrOrderPhoneInvalid = errors.New("phone must have exactly 9 digits")
	// Ошибка формата времени выдачи.
	ErrOrderPickupInvalid = errors.New("pickup must match yyyy/mm/dd  hh:mm")
	// Ошибка состояния вне набора REQUESTED/READY/PICKED_UP.
	ErrOrderStateInvalid = errors.New("order state is invalid")

	// Ошибка отсутствующего идентификатора заказа в позиции.
	ErrDetailOrderRequired = errors.New("order detail order id is required")
	// Ошибка отсутствующего идентификатора блюда в позиции.
	ErrDetailPlateRequired = errors.New("order detail plate id is required")
	// Ошибка отрицательного количества.
	ErrDetailQuantityNegative = errors.New("order detail quantity must be non-negative")
	// Ошибка новой позиции без единого блюда.
	ErrDetailQuantityRequired = errors.New("new order detail quantity must be at least 1")
	// Ошибка отрицательной зафиксированной цены.
	ErrDetailPriceNegative = errors.New("order detail price must be a non-negative number")
	// ErrDetailExists — блюдо уже есть в заказе; вторая позиция с тем же ключом не создаётся.
	ErrDetailExists = errors.New("order already contains this plate")

	// ErrPickupInPast — время выдачи раньше текущего.
	ErrPickupInPast = errors.New("pickup time is in the past")
	// ErrPickupOutsideHours — выдача только со вторника по воскресенье с 19:30 до 23:00.
	ErrPickupOutsideHours = errors.New("pickup time is outside opening hours")

	// ErrPlateNotFound возвращается, если блюдо не найдено в хранилище.
	ErrPlateNotFound = errors.New("plate not found")
	// ErrOrderNotFound возвращается, если заказ не найден в хранилище.
	ErrOrderNotFound = errors.New("order not found")
	// ErrDetailNotFound возвращается, если позиции заказа нет в хранилище.
	ErrDetailNotFound = errors.New("order detail not found")

	// ErrNotifyFailed — уведомление клиенту не доставлено после всех попыток.
	ErrNotifyFailed = errors.New("customer notification failed")
	// ErrChannelInvalid — канал доставки не SMS и не WhatsApp.
	ErrChannelInvalid = errors.New("notification channel is invalid")
)

// IsValidation проверяет, является ли ошибка отказом валидации.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFound проверяет, сообщает ли ошибка об отсутствии записи.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPlateNotFound) ||
		errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrDetailNotFound)
}
