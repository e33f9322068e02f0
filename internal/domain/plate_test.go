package domain_test

import (
	"errors"
	"math"
	"testing"

	"github.com/vladislavdragonenkov/fleetfeast/internal/domain"
)

func makePlate() domain.Plate {
	return domain.Plate{
		Name:        "Gazpacho",
		Description: "cold tomato soup",
		Category:    domain.CategoryFirst,
		Price:       5.3,
	}
}

func TestPlateValidate(t *testing.T) {
	cases := []struct {
		name string
		mut  func(p *domain.Plate)
		want error
	}{
		{name: "valid", mut: func(*domain.Plate) {}},
		{name: "free plate", mut: func(p *domain.Plate) { p.Price = 0 }},
		{name: "no description", mut: func(p *domain.Plate) { p.Description = "" }},
		{name: "empty name", mut: func(p *domain.Plate) { p.Name = "" }, want: domain.ErrPlateNameRequired},
		{name: "spanish category", mut: func(p *domain.Plate) { p.Category = "PRIMERO" }, want: domain.ErrPlateCategoryInvalid},
		{name: "empty category", mut: func(p *domain.Plate) { p.Category = "" }, want: domain.ErrPlateCategoryInvalid},
		{name: "negative price", mut: func(p *domain.Plate) { p.Price = -0.01 }, want: domain.ErrPlatePriceNegative},
		{name: "nan price", mut: func(p *domain.Plate) { p.Price = math.NaN() }, want: domain.ErrPlatePriceNegative},
		{name: "infinite price", mut: func(p *domain.Plate) { p.Price = math.Inf(1) }, want: domain.ErrPlatePriceNegative},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			plate := makePlate()
			tc.mut(&plate)
			errs := plate.Validate()
			if tc.want == nil {
				if len(errs) != 0 {
					t.Fatalf("expected valid plate, got %v", errs)
				}
				return
			}
			if len(errs) != 1 || !errors.Is(errs[0], tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, errs)
			}
		})
	}
}

func TestCategoryRank(t *testing.T) {
	if !(domain.CategoryFirst.Rank() < domain.CategorySecond.Rank() &&
		domain.CategorySecond.Rank() < domain.CategoryDessert.Rank() &&
		domain.CategoryDessert.Rank() < domain.Category("DRINK").Rank()) {
		t.Fatal("category ranks must follow FIRST < SECOND < DESSERT < other")
	}
}

func TestPlateNormalized(t *testing.T) {
	plate := makePlate()
	plate.Price = 11.567
	if got := plate.Normalized().Price; got != 11.57 {
		t.Fatalf("expected 11.57, got %v", got)
	}
	if plate.Price != 11.567 {
		t.Fatal("Normalized must not mutate the receiver")
	}
}

func TestOrderDetailValidate(t *testing.T) {
	detail := domain.OrderDetail{OrderID: 1, PlateID: 2, Quantity: 0, LockedPrice: 3}
	if !detail.IsValid() {
		t.Fatalf("zero quantity is a valid transient state, got %v", detail.Validate())
	}

	detail.Quantity = -1
	errs := detail.Validate()
	if len(errs) != 1 || !errors.Is(errs[0], domain.ErrDetailQuantityNegative) {
		t.Fatalf("expected ErrDetailQuantityNegative, got %v", errs)
	}

	missing := domain.OrderDetail{Quantity: 1}
	if len(missing.Validate()) != 2 {
		t.Fatalf("expected both ids to be reported, got %v", missing.Validate())
	}
}

func TestOrderDetailValidateNew(t *testing.T) {
	detail := domain.OrderDetail{OrderID: 1, PlateID: 2, Quantity: 0, LockedPrice: 3}
	errs := detail.ValidateNew()
	if len(errs) != 1 || !errors.Is(errs[0], domain.ErrDetailQuantityRequired) {
		t.Fatalf("expected ErrDetailQuantityRequired, got %v", errs)
	}

	detail.Quantity = -2
	errs = detail.ValidateNew()
	if len(errs) != 1 || !errors.Is(errs[0], domain.ErrDetailQuantityNegative) {
		t.Fatalf("expected only ErrDetailQuantityNegative, got %v", errs)
	}

	detail.Quantity = 1
	if errs := detail.ValidateNew(); len(errs) != 0 {
		t.Fatalf("expected valid new detail, got %v", errs)
	}
}

func TestValidationErrorUnwrap(t *testing.T) {
	plate := domain.Plate{Category: domain.CategoryDessert, Price: -1}
	err := domain.NewValidationError("plate", plate.Validate())
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !domain.IsValidation(err) {
		t.Fatal("expected IsValidation to match")
	}
	if !errors.Is(err, domain.ErrPlateNameRequired) || !errors.Is(err, domain.ErrPlatePriceNegative) {
		t.Fatalf("expected both violations to be reachable, got %v", err)
	}
	if domain.NewValidationError("plate", nil) != nil {
		t.Fatal("expected nil error when there are no violations")
	}
}
