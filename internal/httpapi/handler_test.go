package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GenevieveOppong-Gyabaa/emporie-cart/internal/catalog"
	"github.com/GenevieveOppong-Gyabaa/emporie-cart/internal/domain"
	"github.com/GenevieveOppong-Gyabaa/emporie-cart/internal/outbox"
	"github.com/GenevieveOppong-Gyabaa/emporie-cart/internal/remote"
	"github.com/GenevieveOppong-Gyabaa/emporie-cart/internal/service"
	"github.com/GenevieveOppong-Gyabaa/emporie-cart/internal/store"
)

type stubStore struct {
	m    sync.RWMutex
	data map[string][]byte
}

func (s *stubStore) Get(_ context.Context, key string) ([]byte, error) {
	s.m.RLock()
	defer s.m.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return v, nil
}

func (s *stubStore) Set(_ context.Context, key string, value []byte) error {
	s.m.Lock()
	defer s.m.Unlock()
	s.data[key] = value
	return nil
}

func (s *stubStore) Delete(_ context.Context, key string) error {
	s.m.Lock()
	defer s.m.Unlock()
	delete(s.data, key)
	return nil
}

type stubBackend struct{}

func (stubBackend) Fetch(context.Context, string) (*domain.Cart, error) {
	return nil, remote.ErrNotFound
}

func (stubBackend) Push(context.Context, string, *domain.Cart) error {
	return nil
}

type stubFinder struct {
	products map[string]domain.Product
}

func (f stubFinder) DealByID(_ context.Context, id string) (domain.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return domain.Product{}, catalog.ErrProductNotFound
	}
	return p, nil
}

type stubSync struct {
	status  outbox.Status
	pending int
}

func (s stubSync) Status() outbox.Status { return s.status }
func (s stubSync) PendingCount() int     { return s.pending }

func setupRouter(t *testing.T) (http.Handler, *service.CartService) {
	t.Helper()
	svc := service.NewCartService(&stubStore{data: map[string][]byte{}}, stubBackend{}, nil)
	finder := stubFinder{products: map[string]domain.Product{
		"1": {ID: "1", Title: "Premium Fashion Collection", SalePrice: "$99.99"},
		"2": {ID: "2", Title: "Designer Handbag", SalePrice: "$5.50"},
	}}
	handler := NewCartHandler(svc, finder, stubSync{status: outbox.StatusSynced}, 5*time.Second)
	return NewRouter(handler, 5*time.Second), svc
}

func doJSON(t *testing.T, router http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAddItem_CreatesAndMerges(t *testing.T) {
	router, _ := setupRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/cart/items", AddItemRequestDTO{
		ProductID: "1", Quantity: 2, Color: "#000000", Size: "M",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var item domain.LineItem
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&item))
	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, "Premium Fashion Collection", item.Snapshot.Title)

	// Same variant again merges instead of adding a row.
	rec = doJSON(t, router, http.MethodPost, "/cart/items", AddItemRequestDTO{
		ProductID: "1", Quantity: 1, Color: "#000000", Size: "M",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var cart CartResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&cart))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, 3, cart.ItemCount)
	assert.Equal(t, "$299.97", cart.Total)
}

func TestAddItem_Validation(t *testing.T) {
	router, _ := setupRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/cart/items", AddItemRequestDTO{ProductID: "1", Quantity: 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/cart/items", AddItemRequestDTO{Quantity: 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/cart/items", AddItemRequestDTO{ProductID: "99", Quantity: 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/cart/items", bytes.NewBufferString("{not json"))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateQuantity_AndRemoveViaZero(t *testing.T) {
	router, svc := setupRouter(t)

	item, err := svc.AddItem(domain.Product{ID: "1", Title: "x", SalePrice: "$10.00"}, 2, "", "")
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodPut, "/cart/items/"+item.ID, UpdateQuantityRequestDTO{Quantity: 5})
	require.Equal(t, http.StatusOK, rec.Code)

	var cart CartResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&cart))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)

	rec = doJSON(t, router, http.MethodPut, "/cart/items/"+item.ID, UpdateQuantityRequestDTO{Quantity: 0})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&cart))
	assert.Empty(t, cart.Items)
}

func TestRemoveItem_MissingIDIsOK(t *testing.T) {
	router, _ := setupRouter(t)
	rec := doJSON(t, router, http.MethodDelete, "/cart/items/no-such-item", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestClearCart(t *testing.T) {
	router, svc := setupRouter(t)
	_, err := svc.AddItem(domain.Product{ID: "1", Title: "x", SalePrice: "$10.00"}, 2, "", "")
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodDelete, "/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var cart CartResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&cart))
	assert.Empty(t, cart.Items)
	assert.Equal(t, "$0.00", cart.Total)
}

func TestSummary(t *testing.T) {
	svc := service.NewCartService(&stubStore{data: map[string][]byte{}}, stubBackend{}, nil)
	handler := NewCartHandler(svc, stubFinder{}, stubSync{status: outbox.StatusPending, pending: 2}, 5*time.Second)
	router := NewRouter(handler, 5*time.Second)

	_, err := svc.AddItem(domain.Product{ID: "1", Title: "x", SalePrice: "$10.00"}, 2, "", "")
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodGet, "/cart/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var summary SummaryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&summary))
	assert.Equal(t, 2, summary.ItemCount)
	assert.Equal(t, "$20.00", summary.Total)
	assert.Equal(t, "pending", summary.SyncStatus)
	assert.Equal(t, 2, summary.PendingSyncs)
}

func TestCheckout(t *testing.T) {
	router, svc := setupRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/checkout", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	_, err := svc.AddItem(domain.Product{ID: "1", Title: "x", SalePrice: "$10.00"}, 1, "", "")
	require.NoError(t, err)

	rec = doJSON(t, router, http.MethodPost, "/checkout", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 0, svc.ItemCount())
}

func TestLoadSession(t *testing.T) {
	router, _ := setupRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/session", SessionRequestDTO{UserID: "u1"})
	require.Equal(t, http.StatusOK, rec.Code)

	var cart CartResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&cart))
	assert.Equal(t, "u1", cart.UserID)
	assert.Empty(t, cart.Items)

	rec = doJSON(t, router, http.MethodPost, "/session", SessionRequestDTO{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	router, _ := setupRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
