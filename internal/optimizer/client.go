// Package optimizer adapts the external route-optimization service. The
// service is trusted for geometry and timing only; order metadata in its
// responses is discarded during reconciliation.
package optimizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// Stop describes one delivery stop sent to the optimizer.
type Stop struct {
	ID            string `json:"id"`
	Address       string `json:"address"`
	IsPaid        bool   `json:"isPaid"`
	ItemsCount    int    `json:"itemsCount"`
	CustomerName  string `json:"customerName"`
	CustomerPhone string `json:"customerPhone"`
	Note          string `json:"note"`
}

// Logistics carries the timing parameters the optimizer uses to model
// per-stop service time.
type Logistics struct {
	LoadingSecondsPerItem  int `json:"loadingSecondsPerItem"`
	StopTimeMinutes        int `json:"stopTimeMinutes"`
	UnloadingPaidSeconds   int `json:"unloadingPaidSeconds"`
	UnloadingUnpaidSeconds int `json:"unloadingUnpaidSeconds"`
}

// Request is the optimization request payload.
type Request struct {
	DepotAddress  string    `json:"depotAddress"`
	Stops         []Stop    `json:"stops"`
	DepartureTime string    `json:"departureTime"` // HH:MM
	Logistics     Logistics `json:"logistics"`
}

// RouteStep is one visit in the optimized sequence as returned by the
// service. Error is set instead of times/distance when a stop could not be
// resolved (e.g. the address failed to geocode).
type RouteStep struct {
	OrderID       string  `json:"orderId"`
	Type          string  `json:"type"`
	Address       string  `json:"address"`
	ArrivalTime   string  `json:"arrivalTime"`
	DepartureTime string  `json:"departureTime"`
	DistanceKm    float64 `json:"distanceKm"`
	Error         *string `json:"error"`
}

// Client calls the external route-optimization service over HTTP.
type Client struct {
	session *http.Client
	baseURL string
	apiKey  string
}

// NewClient creates a new optimization client.
func NewClient(baseURL, apiKey string, timeout time.Duration) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("optimizer base URL is empty")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		session: &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}, nil
}

// Optimize sends the request and returns the ordered visit sequence. Any
// transport or decode failure fails the whole call; partial results (fewer
// steps than stops) are returned as-is for the caller to reconcile.
func (c *Client) Optimize(ctx context.Context, req Request) ([]RouteStep, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal optimize request: %w", err)
	}

	endpoint := c.baseURL + "/v1/routes/optimize"

	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		return c.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return nil, fmt.Errorf("optimize request failed: %w", err)
	}
	defer resp.Body.Close()

	var steps []RouteStep
	if err := json.NewDecoder(resp.Body).Decode(&steps); err != nil {
		return nil, fmt.Errorf("decode optimize response: %w", err)
	}

	return steps, nil
}

func (c *Client) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &httpStatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}

// doWithRetry retries transient failures (network errors, 429/5xx) with
// exponential backoff while respecting context cancellation.
func (c *Client) doWithRetry(ctx context.Context, makeReq func() (*http.Request, error)) (*http.Response, error) {
	const maxAttempts = 3
	backoff := 200 * time.Millisecond

	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := makeReq()
		if err != nil {
			return nil, fmt.Errorf("make request: %w", err)
		}

		resp, err := c.do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		retry := false
		var he *httpStatusError
		if errors.As(err, &he) {
			switch he.Code {
			case http.StatusTooManyRequests,
				http.StatusInternalServerError,
				http.StatusBadGateway,
				http.StatusServiceUnavailable,
				http.StatusGatewayTimeout:
				retry = true
			}
		}

		var netErr net.Error
		if !retry && errors.As(err, &netErr) {
			retry = true
		}

		if !retry || attempt == maxAttempts {
			return nil, lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
	}

	return nil, lastErr
}

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("optimizer returned %d: %s", e.Code, e.Body)
}
