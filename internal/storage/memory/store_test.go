package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/fleetfeast/internal/domain"
	"github.com/vladislavdragonenkov/fleetfeast/internal/storage/memory"
)

func newOrder(name string) domain.Order {
	return domain.Order{
		CustomerName:   name,
		Phone:          600111222,
		PickupDateTime: "2024/01/12  21:00",
		State:          domain.OrderStateRequested,
	}
}

func TestStore_InsertAssignsIncreasingIDs(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	first, err := store.InsertPlate(ctx, domain.Plate{ID: 77, Name: "a", Category: domain.CategoryFirst})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	second, err := store.InsertPlate(ctx, domain.Plate{Name: "b", Category: domain.CategoryFirst})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if first != 1 || second != 2 {
		t.Fatalf("expected ids 1 and 2, got %d and %d", first, second)
	}

	if err := store.DeleteAllPlates(ctx); err != nil {
		t.Fatalf("delete all failed: %v", err)
	}
	third, _ := store.InsertPlate(ctx, domain.Plate{Name: "c", Category: domain.CategoryFirst})
	if third != 3 {
		t.Fatalf("ids must not be reused after wipe, got %d", third)
	}
}

func TestStore_UpdateAndDeleteMissingRows(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	if n, err := store.UpdateOrder(ctx, domain.Order{ID: 9}); err != nil || n != 0 {
		t.Fatalf("update missing order: n=%d err=%v", n, err)
	}
	if n, err := store.DeletePlate(ctx, 9); err != nil || n != 0 {
		t.Fatalf("delete missing plate: n=%d err=%v", n, err)
	}

	id, _ := store.InsertOrder(ctx, newOrder("Ana"))
	updated := newOrder("Ana María")
	updated.ID = id
	if n, err := store.UpdateOrder(ctx, updated); err != nil || n != 1 {
		t.Fatalf("update order: n=%d err=%v", n, err)
	}
	got, err := store.GetOrder(ctx, id)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if got.CustomerName != "Ana María" {
		t.Fatalf("expected updated name, got %q", got.CustomerName)
	}

	if n, _ := store.DeleteOrder(ctx, id); n != 1 {
		t.Fatalf("expected 1 deleted row, got %d", n)
	}
	if _, err := store.GetOrder(ctx, id); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestStore_ListOrdersSorted(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	for _, name := range []string{"Marta", "Ana", "Luis"} {
		if _, err := store.InsertOrder(ctx, newOrder(name)); err != nil {
			t.Fatalf("insert order: %v", err)
		}
	}

	orders, err := store.ListOrders(ctx, domain.OrderSortName)
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if orders[0].CustomerName != "Ana" || orders[1].CustomerName != "Luis" || orders[2].CustomerName != "Marta" {
		t.Fatalf("unexpected order: %+v", orders)
	}

	byID, _ := store.ListOrders(ctx, domain.OrderSortNone)
	if byID[0].ID != 1 || byID[2].ID != 3 {
		t.Fatalf("expected id order, got %+v", byID)
	}
}

func TestStore_OrderDetails(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	plateA, _ := store.InsertPlate(ctx, domain.Plate{Name: "a", Category: domain.CategoryFirst})
	plateB, _ := store.InsertPlate(ctx, domain.Plate{Name: "b", Category: domain.CategorySecond})

	detail := domain.OrderDetail{OrderID: 1, PlateID: plateB, Quantity: 2, LockedPrice: 4}
	if n, _ := store.InsertOrderDetail(ctx, detail); n != 1 {
		t.Fatalf("expected insert, got %d", n)
	}
	detail.Quantity = 5
	if n, _ := store.InsertOrderDetail(ctx, detail); n != 0 {
		t.Fatalf("duplicate insert must be ignored, got %d", n)
	}
	stored, _ := store.GetOrderDetail(ctx, detail.Key())
	if stored.Quantity != 2 {
		t.Fatalf("duplicate insert must not overwrite, got quantity %d", stored.Quantity)
	}

	notInOrder, _ := store.ListPlatesNotInOrder(ctx, 1)
	if len(notInOrder) != 1 || notInOrder[0].ID != plateA {
		t.Fatalf("expected only plate %d, got %+v", plateA, notInOrder)
	}

	if _, err := store.InsertOrderDetail(ctx, domain.OrderDetail{OrderID: 2, PlateID: plateA, Quantity: 1}); err != nil {
		t.Fatalf("insert detail: %v", err)
	}
	all, _ := store.ListOrderDetails(ctx)
	if len(all) != 2 || all[0].OrderID != 1 || all[1].OrderID != 2 {
		t.Fatalf("unexpected details: %+v", all)
	}
	byOrder, _ := store.ListOrderDetailsByOrder(ctx, 2)
	if len(byOrder) != 1 || byOrder[0].PlateID != plateA {
		t.Fatalf("unexpected details for order 2: %+v", byOrder)
	}

	if _, err := store.GetOrderDetail(ctx, domain.DetailKey{OrderID: 3, PlateID: 3}); !errors.Is(err, domain.ErrDetailNotFound) {
		t.Fatalf("expected ErrDetailNotFound, got %v", err)
	}
}

func TestStore_PingAfterClose(t *testing.T) {
	store := memory.NewStore()
	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	_ = store.Close()
	if err := store.Ping(context.Background()); !errors.Is(err, memory.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}
