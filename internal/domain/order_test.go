package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/fleetfeast/internal/domain"
)

// helper для создания валидного заказа.
func makeOrder() domain.Order {
	return domain.Order{
		CustomerName:   "Jacinto",
		Phone:          987654321,
		PickupDateTime: "2024/01/12  21:00",
		State:          domain.OrderStateRequested,
	}
}

func TestOrderValidate_Ok(t *testing.T) {
	order := makeOrder()
	if errs := order.Validate(); len(errs) != 0 {
		t.Fatalf("expected no validation errors, got %v", errs)
	}
	if !order.IsValid() {
		t.Fatal("expected order to be valid")
	}
}

func TestOrderValidate_Errors(t *testing.T) {
	cases := []struct {
		name string
		mut  func(o *domain.Order)
		want error
	}{
		{
			name: "empty name",
			mut:  func(o *domain.Order) { o.CustomerName = "" },
			want: domain.ErrOrderNameRequired,
		},
		{
			name: "ten digit phone",
			mut:  func(o *domain.Order) { o.Phone = 9876543210 },
			want: domain.ErrOrderPhoneInvalid,
		},
		{
			name: "eight digit phone",
			mut:  func(o *domain.Order) { o.Phone = 98765432 },
			want: domain.ErrOrderPhoneInvalid,
		},
		{
			name: "negative phone",
			mut:  func(o *domain.Order) { o.Phone = -98765432 },
			want: domain.ErrOrderPhoneInvalid,
		},
		{
			name: "single space before time",
			mut:  func(o *domain.Order) { o.PickupDateTime = "2024/01/12 21:00" },
			want: domain.ErrOrderPickupInvalid,
		},
		{
			name: "three spaces before time",
			mut:  func(o *domain.Order) { o.PickupDateTime = "2024/01/12   21:00" },
			want: domain.ErrOrderPickupInvalid,
		},
		{
			name: "dashes instead of slashes",
			mut:  func(o *domain.Order) { o.PickupDateTime = "2024-01-12  21:00" },
			want: domain.ErrOrderPickupInvalid,
		},
		{
			name: "unknown state",
			mut:  func(o *domain.Order) { o.State = "SOLICITADO" },
			want: domain.ErrOrderStateInvalid,
		},
		{
			name: "lowercase state",
			mut:  func(o *domain.Order) { o.State = "ready" },
			want: domain.ErrOrderStateInvalid,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			order := makeOrder()
			tc.mut(&order)
			errs := order.Validate()
			if len(errs) != 1 {
				t.Fatalf("expected exactly one violation, got %v", errs)
			}
			if !errors.Is(errs[0], tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, errs[0])
			}
			if order.IsValid() {
				t.Fatal("expected order to be invalid")
			}
		})
	}
}

func TestOrderValidate_CollectsAllViolations(t *testing.T) {
	order := domain.Order{}
	errs := order.Validate()
	if len(errs) != 4 {
		t.Fatalf("expected 4 violations, got %d: %v", len(errs), errs)
	}
}

func TestValidPhone(t *testing.T) {
	cases := []struct {
		phone int64
		want  bool
	}{
		{phone: 612345678, want: true},
		{phone: 100000000, want: true},
		{phone: 999999999, want: true},
		{phone: 12345678, want: false},
		{phone: 1000000000, want: false},
		{phone: 0, want: false},
		// девять символов вместе со знаком минус, но не девять цифр
		{phone: -12345678, want: false},
		{phone: -123456789, want: false},
	}
	for _, tc := range cases {
		if got := domain.ValidPhone(tc.phone); got != tc.want {
			t.Errorf("ValidPhone(%d) = %v, want %v", tc.phone, got, tc.want)
		}
	}
}

func TestOrderValidate_Nil(t *testing.T) {
	var order *domain.Order
	errs := order.Validate()
	if len(errs) != 1 || !errors.Is(errs[0], domain.ErrEntityRequired) {
		t.Fatalf("unexpected errors for nil order: %v", errs)
	}
}

func TestFormatAndParsePickup(t *testing.T) {
	at := time.Date(2024, time.March, 5, 9, 7, 0, 0, time.UTC)
	formatted := domain.FormatPickup(at)
	if formatted != "2024/03/05  09:07" {
		t.Fatalf("unexpected pickup format: %q", formatted)
	}
	if !domain.ValidPickup(formatted) {
		t.Fatal("formatted pickup must pass validation")
	}

	parsed, err := domain.ParsePickup(formatted, time.UTC)
	if err != nil {
		t.Fatalf("parse pickup: %v", err)
	}
	if !parsed.Equal(at) {
		t.Fatalf("expected %s, got %s", at, parsed)
	}

	if _, err := domain.ParsePickup("2024/13/45  99:99", time.UTC); !errors.Is(err, domain.ErrOrderPickupInvalid) {
		t.Fatalf("expected ErrOrderPickupInvalid for impossible date, got %v", err)
	}
}

func TestCheckPickupWindow(t *testing.T) {
	// 2024-01-09 — вторник, 2024-01-08 — понедельник.
	now := time.Date(2024, time.January, 9, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name   string
		pickup time.Time
		want   error
	}{
		{"opening minute", time.Date(2024, time.January, 9, 19, 30, 0, 0, time.UTC), nil},
		{"closing minute", time.Date(2024, time.January, 9, 23, 0, 0, 0, time.UTC), nil},
		{"sunday evening", time.Date(2024, time.January, 14, 21, 0, 0, 0, time.UTC), nil},
		{"too early", time.Date(2024, time.January, 9, 19, 29, 0, 0, time.UTC), domain.ErrPickupOutsideHours},
		{"too late", time.Date(2024, time.January, 9, 23, 1, 0, 0, time.UTC), domain.ErrPickupOutsideHours},
		{"monday", time.Date(2024, time.January, 15, 20, 0, 0, 0, time.UTC), domain.ErrPickupOutsideHours},
		{"past", time.Date(2024, time.January, 8, 20, 0, 0, 0, time.UTC), domain.ErrPickupInPast},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := domain.CheckPickupWindow(tc.pickup, now)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}
