package customer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/c-found", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"displayName": "Meier", "email": "meier@test.de"}`))
	})
	mux.HandleFunc("/c-missing", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/c-broken", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/c-garbage", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	})
	mux.HandleFunc("/c-slow", func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{}`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return server
}

func TestLookup_Found(t *testing.T) {
	server := newTestServer(t)
	client := NewClient(server.URL, time.Second)

	result := client.Lookup(context.Background(), "c-found")

	require.Equal(t, OutcomeFound, result.Outcome)
	assert.Equal(t, "Meier", result.Profile.DisplayName)
	assert.Equal(t, "meier@test.de", result.Profile.Email)
}

func TestLookup_NotFoundIsDistinguished(t *testing.T) {
	server := newTestServer(t)
	client := NewClient(server.URL, time.Second)

	result := client.Lookup(context.Background(), "c-missing")

	assert.Equal(t, OutcomeNotFound, result.Outcome)
	assert.NoError(t, result.Err)
}

func TestLookup_UnexpectedStatusIsFailure(t *testing.T) {
	server := newTestServer(t)
	client := NewClient(server.URL, time.Second)

	result := client.Lookup(context.Background(), "c-broken")

	assert.Equal(t, OutcomeFailure, result.Outcome)
	assert.Error(t, result.Err)
}

func TestLookup_MalformedBodyIsFailure(t *testing.T) {
	server := newTestServer(t)
	client := NewClient(server.URL, time.Second)

	result := client.Lookup(context.Background(), "c-garbage")

	assert.Equal(t, OutcomeFailure, result.Outcome)
	assert.Error(t, result.Err)
}

func TestLookup_TimeoutIsFailure(t *testing.T) {
	server := newTestServer(t)
	client := NewClient(server.URL, 50*time.Millisecond)

	result := client.Lookup(context.Background(), "c-slow")

	assert.Equal(t, OutcomeFailure, result.Outcome)
	assert.Error(t, result.Err)
}

func TestLookup_CancelledContextIsFailure(t *testing.T) {
	server := newTestServer(t)
	client := NewClient(server.URL, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := client.Lookup(ctx, "c-found")

	assert.Equal(t, OutcomeFailure, result.Outcome)
}

func TestLookup_ConnectionRefusedIsFailure(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 200*time.Millisecond)

	result := client.Lookup(context.Background(), "c-found")

	assert.Equal(t, OutcomeFailure, result.Outcome)
	assert.Error(t, result.Err)
}
