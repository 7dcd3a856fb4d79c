package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/GenevieveOppong-Gyabaa/emporie-cart/internal/domain"
)

var ErrProductNotFound = errors.New("product not found")

// Deal is the storefront's catalog entry. Prices arrive as formatted
// display strings.
type Deal struct {
	ID            int      `json:"id"`
	Image         string   `json:"image"`
	Discount      string   `json:"discount"`
	Title         string   `json:"title"`
	OriginalPrice string   `json:"originalPrice"`
	SalePrice     string   `json:"salePrice"`
	Description   string   `json:"description"`
	Rating        float64  `json:"rating"`
	Reviews       int      `json:"reviews"`
	Category      string   `json:"category,omitempty"`
	Brand         string   `json:"brand,omitempty"`
	InStock       bool     `json:"inStock,omitempty"`
	Colors        []string `json:"colors,omitempty"`
	Sizes         []string `json:"sizes,omitempty"`
}

// Product narrows a deal to the fields the cart snapshots from.
func (d Deal) Product() domain.Product {
	return domain.Product{
		ID:        strconv.Itoa(d.ID),
		Title:     d.Title,
		SalePrice: d.SalePrice,
		Image:     d.Image,
	}
}

// Client fetches catalog data from the backend, falling back to the
// bundled static deals when the backend is unreachable.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Deals(ctx context.Context) ([]Deal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/deals", nil)
	if err != nil {
		return nil, fmt.Errorf("build deals request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("deals fetch failed, using bundled deals: %v", err)
		return bundledDeals, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("deals fetch returned status %d, using bundled deals", resp.StatusCode)
		return bundledDeals, nil
	}

	var deals []Deal
	if err := json.NewDecoder(resp.Body).Decode(&deals); err != nil {
		log.Printf("deals decode failed, using bundled deals: %v", err)
		return bundledDeals, nil
	}
	return deals, nil
}

// DealByID resolves the catalog product a line item snapshots from.
func (c *Client) DealByID(ctx context.Context, id string) (domain.Product, error) {
	deals, err := c.Deals(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	for _, d := range deals {
		if strconv.Itoa(d.ID) == id {
			return d.Product(), nil
		}
	}
	return domain.Product{}, ErrProductNotFound
}
