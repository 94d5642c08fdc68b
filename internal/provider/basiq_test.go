package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dolfin/internal/testutil"
)

func newTestClient(t *testing.T, handler http.Handler) (*BasiqClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewBasiqClientWithTokenSource(BasiqConfig{
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
	}, StaticTokenSource("test-token"))
	return client, server
}

func TestBasiqTokenSource(t *testing.T) {
	t.Run("caches_until_expiry", func(t *testing.T) {
		var calls int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			if r.URL.Path != "/token" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Basic api-key-1" {
				t.Errorf("unexpected auth header %q", got)
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"access_token": "tok-1",
				"expires_in":   3600,
			})
		}))
		defer server.Close()

		source := NewBasiqTokenSource(BasiqConfig{BaseURL: server.URL, APIKey: "api-key-1", Timeout: 5 * time.Second})
		for i := 0; i < 3; i++ {
			token, err := source.Token(context.Background())
			testutil.AssertNoError(t, err)
			if token != "tok-1" {
				t.Errorf("expected token tok-1, got %q", token)
			}
		}
		if calls != 1 {
			t.Errorf("expected a single token exchange, got %d", calls)
		}
	})

	t.Run("non_2xx_is_remote_unavailable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		source := NewBasiqTokenSource(BasiqConfig{BaseURL: server.URL, APIKey: "bad", Timeout: 5 * time.Second})
		_, err := source.Token(context.Background())
		testutil.AssertAppError(t, err, "REMOTE_UNAVAILABLE")
	})
}

func TestCreateAccount(t *testing.T) {
	t.Run("returns_provider_id", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/users" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
				t.Errorf("unexpected auth header %q", got)
			}
			var profile Profile
			if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
				t.Fatalf("failed to decode profile: %v", err)
			}
			if profile.Email != "a@x.com" || profile.FirstName != "A" {
				t.Errorf("unexpected profile %+v", profile)
			}
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]string{"id": "basiq-123"})
		}))

		id, err := client.CreateAccount(context.Background(), Profile{
			Email: "a@x.com", Mobile: "000", FirstName: "A", LastName: "B",
		})
		testutil.AssertNoError(t, err)
		if id != "basiq-123" {
			t.Errorf("expected id basiq-123, got %q", id)
		}
	})

	t.Run("missing_id_is_remote_unavailable", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{})
		}))

		_, err := client.CreateAccount(context.Background(), Profile{})
		testutil.AssertAppError(t, err, "REMOTE_UNAVAILABLE")
	})
}

func TestCreateAuthLink(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/basiq-123/auth_link" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"links": map[string]string{"public": "https://connect.example/link/xyz"},
		})
	}))

	url, err := client.CreateAuthLink(context.Background(), "basiq-123")
	testutil.AssertNoError(t, err)
	if url != "https://connect.example/link/xyz" {
		t.Errorf("unexpected link URL %q", url)
	}
}

func TestListTransactions(t *testing.T) {
	t.Run("parses_records", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/users/basiq-123/transactions" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if got := r.URL.Query().Get("limit"); got != "500" {
				t.Errorf("expected limit 500, got %q", got)
			}
			if got := r.URL.Query().Get("filter"); got != "account.id.eq('acc-1')" {
				t.Errorf("expected filter passthrough, got %q", got)
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"data": []map[string]interface{}{
					{
						"id":          "tx-1",
						"type":        "transaction",
						"status":      "posted",
						"description": "COLES 1234",
						"amount":      "-42.50",
						"account":     "acc-1",
						"balance":     "100.00",
						"direction":   "debit",
						"class":       "payment",
						"institution": "AU00000",
						"postDate":    "2024-03-05T10:30:00Z",
						"subClass":    map[string]string{"title": "Groceries", "code": "G1"},
					},
					{
						"id":        "tx-2",
						"type":      "transaction",
						"status":    "pending",
						"amount":    "-3.00",
						"balance":   "97.00",
						"direction": "debit",
						"postDate":  "2024-03-06T08:00:00Z",
					},
				},
			})
		}))

		records, err := client.ListTransactions(context.Background(), "basiq-123", 500, "account.id.eq('acc-1')")
		testutil.AssertNoError(t, err)
		if len(records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(records))
		}
		if records[0].SubClass == nil || records[0].SubClass.Title != "Groceries" {
			t.Errorf("expected subClass on first record, got %+v", records[0].SubClass)
		}
		if records[1].SubClass != nil {
			t.Errorf("expected no subClass on second record, got %+v", records[1].SubClass)
		}
		if !records[0].PostDate.Equal(time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)) {
			t.Errorf("unexpected postDate %s", records[0].PostDate)
		}
	})

	t.Run("non_2xx_is_remote_unavailable", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))

		_, err := client.ListTransactions(context.Background(), "basiq-123", 500, "")
		testutil.AssertAppError(t, err, "REMOTE_UNAVAILABLE")
	})

	t.Run("unparseable_body_is_remote_unavailable", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}))

		_, err := client.ListTransactions(context.Background(), "basiq-123", 500, "")
		testutil.AssertAppError(t, err, "REMOTE_UNAVAILABLE")
	})
}
