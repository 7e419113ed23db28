package clients_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"ordersvc/internal/clients"
)

func TestUsersClient_Exists(t *testing.T) {
	var gotPath, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path == "/U1" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := clients.NewUsersClient(server.URL, 0)

	exists, err := client.Exists(context.Background(), "U1", "tok")
	assert.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "/U1", gotPath)
	assert.Equal(t, "Bearer tok", gotAuth)

	exists, err = client.Exists(context.Background(), "U2", "tok")
	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestUsersClient_Exists_ServerErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := clients.NewUsersClient(server.URL, 0)
	_, err := client.Exists(context.Background(), "U1", "tok")

	// A failing service is never reported as "user absent".
	assert.ErrorIs(t, err, clients.ErrUnavailable)
}

func TestUsersClient_Exists_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := clients.NewUsersClient(server.URL, 0)
	_, err := client.Exists(context.Background(), "U1", "tok")
	assert.ErrorIs(t, err, clients.ErrUnavailable)
}
