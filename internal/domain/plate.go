package domain

// Category — категория блюда в меню точки выдачи.
type Category string

const (
	// CategoryFirst — первое блюдо.
	CategoryFirst Category = "FIRST"
	// CategorySecond — второе блюдо.
	CategorySecond Category = "SECOND"
	// CategoryDessert — десерт.
	CategoryDessert Category = "DESSERT"
)

// Categories перечисляет допустимые категории в порядке отображения.
var Categories = []Category{CategoryFirst, CategorySecond, CategoryDessert}

// Valid сообщает, входит ли значение в закрытый набор категорий.
func (c Category) Valid() bool {
	switch c {
	case CategoryFirst, CategorySecond, CategoryDessert:
		return true
	default:
		return false
	}
}

// Rank задаёт фиксированный порядок FIRST < SECOND < DESSERT < всё остальное.
// Тот же порядок закодирован в CASE-выражении SQL-хранилищ.
func (c Category) Rank() int {
	switch c {
	case CategoryFirst:
		return 1
	case CategorySecond:
		return 2
	case CategoryDessert:
		return 3
	default:
		return 4
	}
}

// Plate — блюдо каталога.
type Plate struct {
	// ID назначается хранилищем при вставке и больше не меняется.
	ID          int64    `json:"id"`
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description,omitempty"`
	Category    Category `json:"category" validate:"category"`
	// Price хранится округлённой до копеек, см. NormalizeMoney.
	Price float64 `json:"price" validate:"money"`
}

// Validate проверяет структурные инварианты блюда и возвращает список нарушений.
func (p *Plate) Validate() []error {
	if p == nil {
		return []error{ErrEntityRequired}
	}
	return validateStruct(p, plateFieldErrors)
}

// IsValid — предикат валидности, вызываемый перед каждой записью.
func (p *Plate) IsValid() bool {
	return len(p.Validate()) == 0
}

// Normalized возвращает копию блюда с нормализованной ценой.
func (p Plate) Normalized() Plate {
	p.Price = NormalizeMoney(p.Price)
	return p
}

var plateFieldErrors = map[string]error{
	"Name":     ErrPlateNameRequired,
	"Category": ErrPlateCategoryInvalid,
	"Price":    ErrPlatePriceNegative,
}
