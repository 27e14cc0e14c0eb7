package newsletter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSubscribeSendsAuthorizedRequest(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody subscribeRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := New(srv.URL, "key-123")
	if err := c.Subscribe(context.Background(), "sam@example.com", "Sam"); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if gotPath != "/subscribers" {
		t.Errorf("path = %s", gotPath)
	}
	if gotAuth != "Bearer key-123" {
		t.Errorf("auth = %s", gotAuth)
	}
	if gotBody.Email != "sam@example.com" || gotBody.Name != "Sam" {
		t.Errorf("body = %+v", gotBody)
	}
}

func TestSubscribeSurfacesProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(srv.URL, "key-123")
	if err := c.Subscribe(context.Background(), "sam@example.com", ""); err == nil {
		t.Error("expected error on 429 response")
	}
}

func TestDisabledClientIsNoop(t *testing.T) {
	c := New("", "")
	if c.Enabled() {
		t.Error("client with no base URL should be disabled")
	}
	if err := c.Subscribe(context.Background(), "sam@example.com", ""); err != nil {
		t.Errorf("disabled subscribe should be a no-op, got %v", err)
	}
}
