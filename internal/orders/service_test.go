package orders

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"order-manager/internal/catalog"
	"order-manager/internal/domain"
	"order-manager/internal/queue"
	"order-manager/internal/repo"
)

type fakeStore struct {
	nextID   int64
	orders   map[int64]repo.Order
	websites map[int64]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nextID:   1,
		orders:   map[int64]repo.Order{},
		websites: map[int64]string{1: "Laare Shop"},
	}
}

func (f *fakeStore) InsertOrder(_ context.Context, order repo.Order) (*repo.Order, error) {
	order.ID = f.nextID
	f.nextID++
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	f.orders[order.ID] = order
	return &order, nil
}

func (f *fakeStore) GetOrder(_ context.Context, id int64) (*repo.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &order, nil
}

func (f *fakeStore) UpdateOrder(_ context.Context, id int64, upd repo.OrderUpdate) (*repo.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if upd.Status != nil {
		order.Status = *upd.Status
	}
	if upd.RescheduledDate != nil {
		order.RescheduledDate = upd.RescheduledDate
	}
	if upd.Notes != nil {
		order.Notes = upd.Notes
	}
	if upd.AmountKES != nil {
		order.AmountKES = upd.AmountKES
	}
	if upd.Courier != nil {
		order.Courier = upd.Courier
	}
	order.ProductID = upd.ProductID
	if upd.ProductName != nil {
		order.ProductName = upd.ProductName
	}
	order.UpdatedAt = time.Now()
	f.orders[id] = order
	return &order, nil
}

func (f *fakeStore) ReplaceOrder(_ context.Context, order repo.Order) (*repo.Order, error) {
	if _, ok := f.orders[order.ID]; !ok {
		return nil, domain.ErrNotFound
	}
	f.orders[order.ID] = order
	return &order, nil
}

func (f *fakeStore) GetWebsiteName(_ context.Context, id int64) (*string, error) {
	name, ok := f.websites[id]
	if !ok {
		return nil, nil
	}
	return &name, nil
}

type fakeLookup struct {
	products map[int64][2]string // id -> {name, sku}
}

func (f *fakeLookup) ProductIDBySKU(_ context.Context, sku string) (*int64, error) {
	for id, p := range f.products {
		if strings.EqualFold(p[1], sku) {
			id := id
			return &id, nil
		}
	}
	return nil, nil
}

func (f *fakeLookup) ProductIDByName(_ context.Context, name string) (*int64, error) {
	for id, p := range f.products {
		if strings.EqualFold(p[0], name) {
			id := id
			return &id, nil
		}
	}
	return nil, nil
}

func (f *fakeLookup) ProductName(_ context.Context, id int64) (*string, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, nil
	}
	name := p[0]
	return &name, nil
}

func newTestService() (*Service, *fakeStore, *queue.MemoryBroker) {
	store := newFakeStore()
	lookup := &fakeLookup{products: map[int64][2]string{
		10: {"Blue Widget", "ABC123"},
	}}
	broker := queue.NewMemory()
	logger := slog.New(slog.DiscardHandler)
	svc := NewService(store, catalog.NewResolver(lookup), broker, logger)
	return svc, store, broker
}

func TestCreateResolvesSKUAndEnqueues(t *testing.T) {
	svc, _, broker := newTestService()

	order, err := svc.Create(context.Background(), CreateInput{
		WebsiteID:    1,
		SKU:          "ABC123",
		ProductName:  "whatever the form said",
		CustomerName: "Jane Mwangi",
		Phone:        "0712 345 678",
	})
	if err != nil {
		t.Fatal(err)
	}
	if order.ProductID == nil || *order.ProductID != 10 {
		t.Fatalf("expected product link 10, got %v", order.ProductID)
	}
	if order.ProductName == nil || *order.ProductName != "Blue Widget" {
		t.Fatalf("expected canonical name Blue Widget, got %v", order.ProductName)
	}
	if order.Status != string(StatusPending) {
		t.Fatalf("expected pending, got %s", order.Status)
	}
	if order.Courier == nil || *order.Courier != DefaultCourier {
		t.Fatalf("expected default courier, got %v", order.Courier)
	}
	if order.Pieces != 1 {
		t.Fatalf("expected pieces default 1, got %d", order.Pieces)
	}

	if broker.Len() != 1 {
		t.Fatalf("expected exactly one enqueued job, got %d", broker.Len())
	}
	job, err := broker.Consume(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if job.Kind != queue.KindNewOrder {
		t.Fatalf("expected new-order job, got %s", job.Kind)
	}
	var payload queue.NewOrderPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Website != "Laare Shop" {
		t.Fatalf("unexpected website name %q", payload.Website)
	}
	if payload.Order.ID != order.ID {
		t.Fatalf("job references order %d, want %d", payload.Order.ID, order.ID)
	}
}

func TestCreateValidatesRequiredFields(t *testing.T) {
	svc, _, broker := newTestService()

	_, err := svc.Create(context.Background(), CreateInput{WebsiteID: 1, Phone: "0712"})
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if broker.Len() != 0 {
		t.Fatal("no job may be enqueued for a rejected create")
	}
}

func TestUpdateCompletedRequiresProductLink(t *testing.T) {
	svc, store, broker := newTestService()

	order, err := svc.Create(context.Background(), CreateInput{
		WebsiteID:    1,
		ProductName:  "Unknown Gadget",
		CustomerName: "Jane Mwangi",
		Phone:        "0712345678",
	})
	if err != nil {
		t.Fatal(err)
	}
	if order.ProductID != nil {
		t.Fatal("precondition: order must have no product link")
	}
	for broker.Len() > 0 {
		_, _ = broker.Consume(context.Background())
	}

	completed := "completed"
	amount := 2500.0
	_, err = svc.Update(context.Background(), order.ID, UpdateInput{Status: &completed, AmountKES: &amount})
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}

	stored, _ := store.GetOrder(context.Background(), order.ID)
	if stored.Status != string(StatusPending) {
		t.Fatalf("order mutated on rejected update: %s", stored.Status)
	}
	if stored.AmountKES != nil {
		t.Fatal("amount stored despite rejected update")
	}
}

func TestUpdateCompletesWithResolvableSKU(t *testing.T) {
	svc, store, _ := newTestService()

	order, err := svc.Create(context.Background(), CreateInput{
		WebsiteID:    1,
		ProductName:  "Unknown Gadget",
		CustomerName: "Jane Mwangi",
		Phone:        "0712345678",
	})
	if err != nil {
		t.Fatal(err)
	}

	completed := "completed"
	amount := 2500.0
	updated, err := svc.Update(context.Background(), order.ID, UpdateInput{
		Status:    &completed,
		AmountKES: &amount,
		SKU:       "ABC123",
	})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != string(StatusCompleted) {
		t.Fatalf("expected completed, got %s", updated.Status)
	}
	if updated.ProductID == nil || *updated.ProductID != 10 {
		t.Fatalf("expected resolved product link, got %v", updated.ProductID)
	}
	if updated.ProductName == nil || *updated.ProductName != "Blue Widget" {
		t.Fatalf("expected canonical product name, got %v", updated.ProductName)
	}

	stored, _ := store.GetOrder(context.Background(), order.ID)
	if stored.AmountKES == nil || *stored.AmountKES != amount {
		t.Fatalf("expected stored amount %v, got %v", amount, stored.AmountKES)
	}
}

func TestUpdateNotesOnlyLeavesStatusAlone(t *testing.T) {
	svc, store, _ := newTestService()

	order, err := svc.Create(context.Background(), CreateInput{
		WebsiteID:    1,
		SKU:          "ABC123",
		CustomerName: "Jane Mwangi",
		Phone:        "0712345678",
	})
	if err != nil {
		t.Fatal(err)
	}

	notes := "call before delivery"
	updated, err := svc.Update(context.Background(), order.ID, UpdateInput{Notes: &notes})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Notes == nil || *updated.Notes != notes {
		t.Fatalf("notes not written: %v", updated.Notes)
	}
	if updated.Status != string(StatusPending) {
		t.Fatalf("status must be untouched, got %s", updated.Status)
	}
	stored, _ := store.GetOrder(context.Background(), order.ID)
	if stored.ProductID == nil || *stored.ProductID != 10 {
		t.Fatal("stored product link must survive a notes-only update")
	}
}

func TestUpdateTerminalOrderRejected(t *testing.T) {
	svc, _, _ := newTestService()

	order, err := svc.Create(context.Background(), CreateInput{
		WebsiteID:    1,
		SKU:          "ABC123",
		CustomerName: "Jane Mwangi",
		Phone:        "0712345678",
		Status:       "completed",
	})
	if err != nil {
		t.Fatal(err)
	}

	pending := "pending"
	_, err = svc.Update(context.Background(), order.ID, UpdateInput{Status: &pending})
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict reopening a completed order, got %v", err)
	}
}

func TestReplaceEnforcesGuard(t *testing.T) {
	svc, _, _ := newTestService()

	order, err := svc.Create(context.Background(), CreateInput{
		WebsiteID:    1,
		SKU:          "ABC123",
		CustomerName: "Jane Mwangi",
		Phone:        "0712345678",
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.Replace(context.Background(), order.ID, ReplaceInput{
		WebsiteID:    1,
		ProductName:  "Unknown Gadget",
		CustomerName: "Jane Mwangi",
		Phone:        "0712345678",
		Pieces:       1,
		Status:       "returned",
	})
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict on full replace without product link, got %v", err)
	}
}
