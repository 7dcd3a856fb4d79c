package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/GenevieveOppong-Gyabaa/emporie-cart/internal/domain"
)

var (
	ErrNotFound = errors.New("remote cart not found")
	// ErrUnavailable covers both transport failures and an open breaker;
	// callers degrade to local state when they see it.
	ErrUnavailable = errors.New("remote cart unavailable")
)

// Backend is the remote cart endpoint. Both calls exchange the full cart
// snapshot scoped by userId.
type Backend interface {
	Fetch(ctx context.Context, userID string) (*domain.Cart, error)
	Push(ctx context.Context, userID string, cart *domain.Cart) error
}

// Client talks HTTP to the storefront backend. A circuit breaker stops a
// dead backend from dragging out every sync attempt.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*domain.Cart]
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	breaker := gobreaker.NewCircuitBreaker[*domain.Cart](gobreaker.Settings{
		Name:    "remote-cart",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		// A missing remote cart is an answer, not a backend failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
	})
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		breaker: breaker,
	}
}

func (c *Client) Fetch(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := c.breaker.Execute(func() (*domain.Cart, error) {
		return c.fetch(ctx, userID)
	})
	if err != nil {
		return nil, mapBreakerErr(err)
	}
	return cart, nil
}

func (c *Client) Push(ctx context.Context, userID string, cart *domain.Cart) error {
	_, err := c.breaker.Execute(func() (*domain.Cart, error) {
		return nil, c.push(ctx, userID, cart)
	})
	return mapBreakerErr(err)
}

func (c *Client) fetch(ctx context.Context, userID string) (*domain.Cart, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cartURL(userID), nil)
	if err != nil {
		return nil, fmt.Errorf("build cart request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetch cart: unexpected status %d", resp.StatusCode)
	}

	var cart domain.Cart
	if err := json.NewDecoder(resp.Body).Decode(&cart); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return &cart, nil
}

func (c *Client) push(ctx context.Context, userID string, cart *domain.Cart) error {
	body, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cartURL(userID), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build cart request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("push cart: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) cartURL(userID string) string {
	return fmt.Sprintf("%s/cart?userId=%s", c.baseURL, url.QueryEscape(userID))
}

func mapBreakerErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}
