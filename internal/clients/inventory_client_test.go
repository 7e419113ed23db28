package clients_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ordersvc/internal/clients"
)

// fakeInventory is an in-memory stand-in for the Inventory service exposing
// the list and update endpoints the client uses.
type fakeInventory struct {
	mu    sync.Mutex
	items []clients.InventoryItem

	listCalls   int
	updateCalls int
	lastAuth    string
}

func (f *fakeInventory) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.lastAuth = r.Header.Get("Authorization")

		if r.Method == http.MethodGet {
			f.listCalls++
			json.NewEncoder(w).Encode(f.items)
			return
		}

		if r.Method == http.MethodPut {
			f.updateCalls++
			id, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/"))
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			var body struct {
				Qty int `json:"qty"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			for i := range f.items {
				if f.items[i].ID == id {
					f.items[i].Qty = body.Qty
					w.WriteHeader(http.StatusOK)
					return
				}
			}
			w.WriteHeader(http.StatusNotFound)
			return
		}

		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func (f *fakeInventory) qty(sku string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range f.items {
		if it.SKU == sku {
			return it.Qty
		}
	}
	return -1
}

func newInventoryFixture(items ...clients.InventoryItem) (*fakeInventory, *httptest.Server) {
	fake := &fakeInventory{items: items}
	return fake, httptest.NewServer(fake.handler())
}

func TestInventoryClient_GetBySKU(t *testing.T) {
	fake, server := newInventoryFixture(
		clients.InventoryItem{ID: 1, SKU: "X", Qty: 5},
		clients.InventoryItem{ID: 2, SKU: "Y", Qty: 0},
	)
	defer server.Close()

	client := clients.NewInventoryClient(server.URL, 0)

	item, err := client.GetBySKU(context.Background(), "X", "tok")
	assert.NoError(t, err)
	assert.Equal(t, 1, item.ID)
	assert.Equal(t, 5, item.Qty)
	assert.Equal(t, "Bearer tok", fake.lastAuth)

	_, err = client.GetBySKU(context.Background(), "missing", "tok")
	assert.ErrorIs(t, err, clients.ErrSKUNotFound)
	assert.NotErrorIs(t, err, clients.ErrUnavailable)
}

func TestInventoryClient_GetBySKU_ServerErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := clients.NewInventoryClient(server.URL, 0)
	_, err := client.GetBySKU(context.Background(), "X", "tok")

	// A failing service is never reported as a missing SKU.
	assert.ErrorIs(t, err, clients.ErrUnavailable)
	assert.NotErrorIs(t, err, clients.ErrSKUNotFound)
}

func TestInventoryClient_GetBySKU_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := clients.NewInventoryClient(server.URL, 0)
	_, err := client.GetBySKU(context.Background(), "X", "tok")
	assert.ErrorIs(t, err, clients.ErrUnavailable)
}

func TestInventoryClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := clients.NewInventoryClient(server.URL, 50*time.Millisecond)
	_, err := client.GetBySKU(context.Background(), "X", "tok")
	assert.ErrorIs(t, err, clients.ErrUnavailable)
}

func TestInventoryClient_CheckStock(t *testing.T) {
	_, server := newInventoryFixture(clients.InventoryItem{ID: 1, SKU: "X", Qty: 5})
	defer server.Close()

	client := clients.NewInventoryClient(server.URL, 0)

	available, qty, err := client.CheckStock(context.Background(), "X", 5, "tok")
	assert.NoError(t, err)
	assert.True(t, available)
	assert.Equal(t, 5, qty)

	available, qty, err = client.CheckStock(context.Background(), "X", 6, "tok")
	assert.NoError(t, err)
	assert.False(t, available)
	assert.Equal(t, 5, qty)
}

func TestInventoryClient_Reserve(t *testing.T) {
	fake, server := newInventoryFixture(clients.InventoryItem{ID: 1, SKU: "X", Qty: 5})
	defer server.Close()

	client := clients.NewInventoryClient(server.URL, 0)

	err := client.Reserve(context.Background(), "X", 5, "tok")
	assert.NoError(t, err)
	assert.Equal(t, 0, fake.qty("X"))
}

func TestInventoryClient_Reserve_InsufficientStockRejectedLocally(t *testing.T) {
	fake, server := newInventoryFixture(clients.InventoryItem{ID: 1, SKU: "X", Qty: 3})
	defer server.Close()

	client := clients.NewInventoryClient(server.URL, 0)

	err := client.Reserve(context.Background(), "X", 5, "tok")
	assert.ErrorIs(t, err, clients.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "available 3, requested 5")
	// The rejection happens before any write is issued.
	assert.Equal(t, 0, fake.updateCalls)
	assert.Equal(t, 3, fake.qty("X"))
}

func TestInventoryClient_Release(t *testing.T) {
	fake, server := newInventoryFixture(clients.InventoryItem{ID: 1, SKU: "X", Qty: 2})
	defer server.Close()

	client := clients.NewInventoryClient(server.URL, 0)

	err := client.Release(context.Background(), "X", 3, "tok")
	assert.NoError(t, err)
	assert.Equal(t, 5, fake.qty("X"))

	// Release is unbounded: repeated releases keep adding stock.
	err = client.Release(context.Background(), "X", 100, "tok")
	assert.NoError(t, err)
	assert.Equal(t, 105, fake.qty("X"))
}

func TestInventoryClient_Reserve_FailedWriteIsUnavailable(t *testing.T) {
	items := []clients.InventoryItem{{ID: 1, SKU: "X", Qty: 5}}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			json.NewEncoder(w).Encode(items)
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := clients.NewInventoryClient(server.URL, 0)
	err := client.Reserve(context.Background(), "X", 2, "tok")
	assert.ErrorIs(t, err, clients.ErrUnavailable)
}
