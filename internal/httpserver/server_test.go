package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"order-manager/internal/auth"
	"order-manager/internal/catalog"
	"order-manager/internal/domain"
	"order-manager/internal/nairobi"
	"order-manager/internal/orders"
	"order-manager/internal/queue"
	"order-manager/internal/repo"
)

// fakeStore implements the handful of methods the tests exercise; the
// embedded interface panics on anything unexpected.
type fakeStore struct {
	repo.Store

	websites map[string]repo.Website

	nextOrderID int64
	orders      map[int64]repo.Order

	nextNairobiID int64
	nairobiOrders map[int64]repo.NairobiOrder

	stockPurchases []repo.StockPurchase
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		websites: map[string]repo.Website{
			"wh_abc": {ID: 1, Name: "Laare Shop", WebhookKey: "wh_abc", IsActive: true},
			"wh_off": {ID: 2, Name: "Paused Shop", WebhookKey: "wh_off", IsActive: false},
		},
		nextOrderID:   1,
		orders:        map[int64]repo.Order{},
		nextNairobiID: 1,
		nairobiOrders: map[int64]repo.NairobiOrder{},
	}
}

func (f *fakeStore) GetActiveWebsiteByKey(_ context.Context, key string) (*repo.Website, error) {
	site, ok := f.websites[key]
	if !ok || !site.IsActive {
		return nil, domain.ErrNotFound
	}
	return &site, nil
}

func (f *fakeStore) GetWebsiteName(_ context.Context, id int64) (*string, error) {
	for _, site := range f.websites {
		if site.ID == id {
			name := site.Name
			return &name, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ProductIDBySKU(_ context.Context, sku string) (*int64, error) {
	if strings.EqualFold(sku, "ABC123") {
		id := int64(10)
		return &id, nil
	}
	return nil, nil
}

func (f *fakeStore) ProductIDByName(_ context.Context, name string) (*int64, error) {
	if strings.EqualFold(name, "Blue Widget") {
		id := int64(10)
		return &id, nil
	}
	return nil, nil
}

func (f *fakeStore) ProductName(_ context.Context, id int64) (*string, error) {
	if id == 10 {
		name := "Blue Widget"
		return &name, nil
	}
	return nil, nil
}

func (f *fakeStore) InsertOrder(_ context.Context, order repo.Order) (*repo.Order, error) {
	order.ID = f.nextOrderID
	f.nextOrderID++
	order.CreatedAt = time.Now()
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
	if upd.Notes != nil {
		order.Notes = upd.Notes
	}
	order.ProductID = upd.ProductID
	if upd.ProductName != nil {
		order.ProductName = upd.ProductName
	}
	f.orders[id] = order
	return &order, nil
}

func (f *fakeStore) ListOrders(_ context.Context, _ repo.OrderFilter) (*repo.OrderPage, error) {
	page := &repo.OrderPage{Orders: []repo.Order{}, Page: 1, TotalPages: 1}
	for _, o := range f.orders {
		page.Orders = append(page.Orders, o)
	}
	page.Total = len(page.Orders)
	page.PageSize = len(page.Orders)
	return page, nil
}

func (f *fakeStore) InsertNairobiOrder(_ context.Context, order repo.NairobiOrder) (*repo.NairobiOrder, error) {
	order.ID = f.nextNairobiID
	f.nextNairobiID++
	order.Status = "unassigned"
	f.nairobiOrders[order.ID] = order
	return &order, nil
}

func (f *fakeStore) GetNairobiOrder(_ context.Context, id int64) (*repo.NairobiOrder, error) {
	order, ok := f.nairobiOrders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &order, nil
}

func (f *fakeStore) ListNairobiOrders(_ context.Context, status string) ([]repo.NairobiOrder, error) {
	out := []repo.NairobiOrder{}
	for _, o := range f.nairobiOrders {
		if status == "" || o.Status == status {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeStore) ClaimNairobiOrder(_ context.Context, id int64, riderName, riderPhone string) (*repo.NairobiOrder, error) {
	order, ok := f.nairobiOrders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if order.Status != "unassigned" {
		return nil, domain.Conflict("This order has already been assigned to another rider.")
	}
	order.Status = "assigned"
	if riderName != "" {
		order.AssignedTo = &riderName
	}
	order.AssignedPhone = &riderPhone
	f.nairobiOrders[id] = order
	return &order, nil
}

func (f *fakeStore) InsertStockPurchase(_ context.Context, purchase repo.StockPurchase) (*repo.StockPurchase, error) {
	purchase.ID = int64(len(f.stockPurchases) + 1)
	f.stockPurchases = append(f.stockPurchases, purchase)
	return &purchase, nil
}

type testEnv struct {
	handler http.Handler
	store   *fakeStore
	broker  *queue.MemoryBroker
	tokens  *auth.TokenStrategy
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := newFakeStore()
	broker := queue.NewMemory()
	logger := slog.New(slog.DiscardHandler)

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	users, err := auth.ParseDirectory([]string{"ops@example.com:admin:" + string(hash)})
	if err != nil {
		t.Fatal(err)
	}
	tokens := auth.NewTokenStrategy("test-secret", time.Hour)

	resolver := catalog.NewResolver(store)
	srv := New(":0", logger, nil, Dependencies{
		Store:    store,
		Orders:   orders.NewService(store, resolver, broker, logger),
		Nairobi:  nairobi.NewService(store, broker, logger),
		Resolver: resolver,
		Users:    users,
		Tokens:   tokens,
	}, "")

	return &testEnv{handler: srv.routes(), store: store, broker: broker, tokens: tokens}
}

func (e *testEnv) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	token, err := e.tokens.IssueToken(auth.Identity{Email: "ops@example.com", Role: auth.RoleAdmin})
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestWebhookAcceptsOrderAndEnqueues(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/webhook/wh_abc",
		`{"sku":"ABC123","product":"whatever","name":"Jane Mwangi","phone":"0712345678","county":"Meru","pieces":2}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success bool  `json:"success"`
		OrderID int64 `json:"order_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success || resp.OrderID == 0 {
		t.Fatalf("unexpected response: %s", rec.Body.String())
	}

	stored := env.store.orders[resp.OrderID]
	if stored.ProductID == nil || *stored.ProductID != 10 {
		t.Fatalf("sku not resolved: %v", stored.ProductID)
	}
	if stored.ProductName == nil || *stored.ProductName != "Blue Widget" {
		t.Fatalf("name not denormalized: %v", stored.ProductName)
	}
	if env.broker.Len() != 1 {
		t.Fatalf("expected one queued notification, got %d", env.broker.Len())
	}
}

func TestWebhookRejectsUnknownKey(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/webhook/wh_nope", `{"name":"x","phone":"1"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", rec.Code)
	}
	if env.broker.Len() != 0 {
		t.Fatal("rejected webhook must not enqueue")
	}
}

func TestWebhookRejectsInactiveWebsite(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/webhook/wh_off",
		`{"sku":"ABC123","name":"Jane Mwangi","phone":"0712345678"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(env.store.orders) != 0 {
		t.Fatal("inactive webhook must not create an order")
	}
	if env.broker.Len() != 0 {
		t.Fatal("inactive webhook must not enqueue")
	}
}

func TestLoginIssuesWorkingToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/login", `{"email":"ops@example.com","password":"hunter2"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}

	if rec := env.do(t, http.MethodGet, "/api/orders", "", resp.Token); rec.Code != http.StatusOK {
		t.Fatalf("issued token rejected: %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/api/orders", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token must be 401, got %d", rec.Code)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/auth/login", `{"email":"ops@example.com","password":"wrong"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", rec.Code)
	}
}

func TestUpdateOrderGuardMapsToConflict(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	rec := env.do(t, http.MethodPost, "/api/orders",
		`{"website_id":1,"product_name":"Unknown Gadget","customer_name":"Jane","phone":"0712"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: want 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created repo.Order
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}

	rec = env.do(t, http.MethodPatch, "/api/orders/1", `{"status":"completed"}`, token)
	if rec.Code != http.StatusConflict {
		t.Fatalf("want 409, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestNairobiAnonymousReadHidesContactDetails(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	rec := env.do(t, http.MethodPost, "/api/nairobi-orders",
		`{"customer_first_name":"Jane","customer_full_name":"Jane Mwangi","phone":"0712345678","address":"Westlands","product":"Blue Widget"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: want 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/api/nairobi-orders/1", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("anonymous read: want 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "0712345678") || strings.Contains(rec.Body.String(), "Mwangi") {
		t.Fatalf("anonymous read leaked contact details: %s", rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/api/nairobi-orders/1", "", token)
	if !strings.Contains(rec.Body.String(), "0712345678") {
		t.Fatalf("staff read must include contact details: %s", rec.Body.String())
	}
}

func TestNairobiClaimIsPublicAndFirstWins(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	env.do(t, http.MethodPost, "/api/nairobi-orders",
		`{"customer_first_name":"Jane","address":"Westlands","product":"Blue Widget"}`, token)
	for env.broker.Len() > 0 {
		_, _ = env.broker.Consume(context.Background())
	}

	rec := env.do(t, http.MethodPost, "/api/nairobi-orders/1/assign",
		`{"rider_name":"Brian","rider_phone":"0722000111"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("claim: want 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodPost, "/api/nairobi-orders/1/assign",
		`{"rider_name":"Kevin","rider_phone":"0733000222"}`, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("second claim: want 409, got %d", rec.Code)
	}
}

func TestStockPurchaseResolvesSKU(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	rec := env.do(t, http.MethodPost, "/api/stock-purchases",
		`{"sku":"ABC123","quantity":4,"cost_per_item_kes":250}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("want 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created repo.StockPurchase
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.ProductID != 10 {
		t.Fatalf("sku not resolved: product_id = %d", created.ProductID)
	}
	if created.TotalCostKES != 1000 {
		t.Fatalf("total cost = %v, want 1000", created.TotalCostKES)
	}
}

func TestStockPurchaseRequiresProductLink(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	rec := env.do(t, http.MethodPost, "/api/stock-purchases",
		`{"sku":"NOPE-404","quantity":1,"cost_per_item_kes":100}`, token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "SKU/product link is required") {
		t.Fatalf("missing the product-link message: %s", rec.Body.String())
	}
	if len(env.store.stockPurchases) != 0 {
		t.Fatal("unresolved purchase must not be stored")
	}
}

func TestAdminOnlyRoutesRejectUserRole(t *testing.T) {
	env := newTestEnv(t)
	userToken, err := env.tokens.IssueToken(auth.Identity{Email: "staff@example.com", Role: auth.RoleUser})
	if err != nil {
		t.Fatal(err)
	}

	rec := env.do(t, http.MethodPost, "/api/nairobi-orders",
		`{"customer_first_name":"Jane","address":"Westlands","product":"Blue Widget"}`, userToken)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("want 403, got %d", rec.Code)
	}
}
