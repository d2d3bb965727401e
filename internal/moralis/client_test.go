package moralis

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_WalletSwaps(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-API-Key"); got != "test-key" {
			t.Errorf("expected X-API-Key test-key, got %q", got)
		}
		if got := r.URL.Query().Get("order"); got != "DESC" {
			t.Errorf("expected order=DESC, got %q", got)
		}
		if got := r.URL.Query().Get("limit"); got != "100" {
			t.Errorf("expected limit=100, got %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"result": [
				{
					"transactionType": "buy",
					"subCategory": "newPosition",
					"walletAddress": "wallet1",
					"pairAddress": "pair1",
					"signature": "sig1",
					"blockTimestamp": 1700000000000,
					"price": "0.5",
					"bought": {"symbol": "BONK", "amount": "12.5"},
					"sold": {"symbol": "SOL", "amount": "1.0"}
				}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))
	ctx := context.Background()

	records, err := client.WalletSwaps(ctx, "wallet1")
	if err != nil {
		t.Fatalf("WalletSwaps: %v", err)
	}

	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	rec := records[0]
	if rec.Signature != "sig1" {
		t.Errorf("expected signature sig1, got %q", rec.Signature)
	}
	if rec.SubCategory != SubCategoryNewPosition {
		t.Errorf("expected subCategory newPosition, got %q", rec.SubCategory)
	}
	if rec.Bought.Symbol != "BONK" {
		t.Errorf("expected bought symbol BONK, got %q", rec.Bought.Symbol)
	}
}

func TestClient_WalletSwaps_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))

	_, err := client.WalletSwaps(context.Background(), "wallet1")
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
}

func TestClient_WalletSwaps_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))

	_, err := client.WalletSwaps(context.Background(), "wallet1")
	if err == nil {
		t.Fatal("expected error for status 500, got nil")
	}
	if errors.Is(err, ErrRateLimited) {
		t.Error("500 must not be classified as rate limited")
	}
}

func TestClient_WalletSwaps_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[1, 2, 3]`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))

	_, err := client.WalletSwaps(context.Background(), "wallet1")
	if err == nil {
		t.Fatal("expected error for non-object body, got nil")
	}
}

func TestClient_WalletSwaps_MissingResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"cursor": null}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))

	records, err := client.WalletSwaps(context.Background(), "wallet1")
	if err != nil {
		t.Fatalf("WalletSwaps: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected empty result, got %d records", len(records))
	}
}
