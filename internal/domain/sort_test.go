package domain_test

import (
	"testing"

	"github.com/vladislavdragonenkov/fleetfeast/internal/domain"
)

func TestSortPlates_CategoryThenName(t *testing.T) {
	plates := []domain.Plate{
		{ID: 1, Name: "z", Category: domain.CategoryDessert},
		{ID: 2, Name: "a", Category: domain.CategoryFirst},
		{ID: 3, Name: "m", Category: domain.CategoryFirst},
	}
	domain.SortPlates(plates, domain.PlateOrderCategoryName)

	want := []string{"a", "m", "z"}
	for i, name := range want {
		if plates[i].Name != name {
			t.Fatalf("position %d: expected %s, got %s", i, name, plates[i].Name)
		}
	}
}

func TestSortPlates_CategoryKeepsIDOrderWithinCategory(t *testing.T) {
	plates := []domain.Plate{
		{ID: 4, Name: "b", Category: "DRINK"},
		{ID: 3, Name: "c", Category: domain.CategorySecond},
		{ID: 1, Name: "d", Category: domain.CategorySecond},
		{ID: 2, Name: "a", Category: domain.CategoryDessert},
	}
	domain.SortPlates(plates, domain.PlateOrderCategory)

	wantIDs := []int64{1, 3, 2, 4}
	for i, id := range wantIDs {
		if plates[i].ID != id {
			t.Fatalf("position %d: expected id %d, got %d", i, id, plates[i].ID)
		}
	}
}

func TestSortOrders(t *testing.T) {
	orders := []domain.Order{
		{ID: 1, CustomerName: "Marta", Phone: 600000003, PickupDateTime: "2024/01/12  21:00"},
		{ID: 2, CustomerName: "Ana", Phone: 600000002, PickupDateTime: "2024/01/10  20:00"},
		{ID: 3, CustomerName: "Luis", Phone: 600000001, PickupDateTime: "2023/12/31  22:30"},
	}

	cases := []struct {
		by   domain.OrderSort
		want []int64
	}{
		{domain.OrderSortName, []int64{2, 3, 1}},
		{domain.OrderSortPhone, []int64{3, 2, 1}},
		{domain.OrderSortDate, []int64{3, 2, 1}},
		{domain.OrderSortNone, []int64{1, 2, 3}},
	}

	for _, tc := range cases {
		t.Run(tc.by.String(), func(t *testing.T) {
			sorted := append([]domain.Order(nil), orders...)
			domain.SortOrders(sorted, tc.by)
			for i, id := range tc.want {
				if sorted[i].ID != id {
					t.Fatalf("position %d: expected id %d, got %d", i, id, sorted[i].ID)
				}
			}
		})
	}
}

func TestFilterOrders(t *testing.T) {
	orders := []domain.Order{
		{ID: 1, State: domain.OrderStateRequested},
		{ID: 2, State: domain.OrderStateReady},
		{ID: 3, State: domain.OrderStatePickedUp},
		{ID: 4, State: domain.OrderStateReady},
	}

	filter, err := domain.ParseStateFilter("ready, picked_up")
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	got := domain.FilterOrders(orders, filter)
	if len(got) != 3 || got[0].ID != 2 || got[1].ID != 3 || got[2].ID != 4 {
		t.Fatalf("unexpected filter result: %+v", got)
	}

	all := domain.FilterOrders(orders, domain.AllStates())
	if len(all) != len(orders) {
		t.Fatalf("expected all orders, got %d", len(all))
	}

	none := domain.FilterOrders(orders, domain.StateFilter{})
	if len(none) != 0 {
		t.Fatalf("expected empty result, got %d", len(none))
	}

	if _, err := domain.ParseStateFilter("READY,LOST"); err == nil {
		t.Fatal("expected error for unknown state")
	}
}

func TestParseSortNames(t *testing.T) {
	for _, order := range []domain.PlateOrder{domain.PlateOrderNone, domain.PlateOrderName, domain.PlateOrderCategory, domain.PlateOrderCategoryName} {
		parsed, err := domain.ParsePlateOrder(order.String())
		if err != nil || parsed != order {
			t.Fatalf("round trip failed for %s: %v %v", order, parsed, err)
		}
	}
	for _, by := range []domain.OrderSort{domain.OrderSortNone, domain.OrderSortName, domain.OrderSortPhone, domain.OrderSortDate} {
		parsed, err := domain.ParseOrderSort(by.String())
		if err != nil || parsed != by {
			t.Fatalf("round trip failed for %s: %v %v", by, parsed, err)
		}
	}
	if _, err := domain.ParsePlateOrder("price"); err == nil {
		t.Fatal("expected error for unknown plate order")
	}
}
