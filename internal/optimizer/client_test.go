package optimizer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testRequest() Request {
	return Request{
		DepotAddress:  "Kitchen Lane 1, Berlin",
		DepartureTime: "09:30",
		Stops: []Stop{
			{ID: "order-1", Address: "Main St 1, Berlin", IsPaid: true, ItemsCount: 3, CustomerName: "Alice Weber", CustomerPhone: "+49 30 111111"},
			{ID: "order-2", Address: "Oak Ave 7, Berlin", ItemsCount: 5, CustomerName: "Bob Fischer", CustomerPhone: "+49 30 222222"},
		},
		Logistics: Logistics{
			LoadingSecondsPerItem:  20,
			StopTimeMinutes:        5,
			UnloadingPaidSeconds:   60,
			UnloadingUnpaidSeconds: 180,
		},
	}
}

func TestOptimize_DecodesSteps(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/routes/optimize" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "test-key" {
			t.Errorf("expected api key header, got %q", got)
		}

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Stops) != 2 || req.DepotAddress == "" || req.Logistics.StopTimeMinutes != 5 {
			t.Errorf("unexpected payload: %+v", req)
		}

		w.Header().Set("Content-Type", "application/json")
		// The service reports per-stop errors as string|null and may add
		// fields this client does not know about.
		w.Write([]byte(`[
			{"orderId":"order-2","type":"delivery","address":"Oak Ave 7, Berlin","arrivalTime":"09:52","departureTime":"10:01","distanceKm":4.2,"error":null,"vehicleHint":"van"},
			{"orderId":"order-1","type":"delivery","address":"Main St 1, Berlin","arrivalTime":"10:14","departureTime":"10:20","distanceKm":2.1,"error":"house number not found"}
		]`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "test-key", 2*time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	steps, err := client.Optimize(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(steps))
	}
	if steps[0].OrderID != "order-2" || steps[1].OrderID != "order-1" {
		t.Errorf("expected service ordering preserved, got %+v", steps)
	}
	if steps[0].Error != nil {
		t.Errorf("expected nil error on first step, got %v", *steps[0].Error)
	}
	if steps[1].Error == nil || *steps[1].Error != "house number not found" {
		t.Errorf("expected per-step error, got %v", steps[1].Error)
	}
	if steps[0].DistanceKm != 4.2 {
		t.Errorf("expected distance 4.2, got %f", steps[0].DistanceKm)
	}
}

func TestOptimize_RetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, "upstream busy", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"orderId":"order-1","type":"delivery","address":"Main St 1","arrivalTime":"10:00","departureTime":"10:05","distanceKm":1.0,"error":null}]`))
	}))
	defer server.Close()

	client, _ := NewClient(server.URL, "test-key", 2*time.Second)

	steps, err := client.Optimize(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("expected 2 attempts, got %d", calls)
	}
	if len(steps) != 1 {
		t.Errorf("expected 1 step, got %d", len(steps))
	}
}

func TestOptimize_DoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "bad payload", http.StatusBadRequest)
	}))
	defer server.Close()

	client, _ := NewClient(server.URL, "test-key", 2*time.Second)

	_, err := client.Optimize(context.Background(), testRequest())
	if err == nil {
		t.Fatal("expected error")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("400 must not be retried, got %d attempts", calls)
	}
}

func TestOptimize_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"an array"}`))
	}))
	defer server.Close()

	client, _ := NewClient(server.URL, "test-key", 2*time.Second)

	if _, err := client.Optimize(context.Background(), testRequest()); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestOptimize_ContextCancellation(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	client, _ := NewClient(server.URL, "test-key", 10*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := client.Optimize(ctx, testRequest()); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	if _, err := NewClient("", "key", time.Second); err == nil {
		t.Fatal("expected error for empty base URL")
	}
}
