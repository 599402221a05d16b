// Package tga integrates with the TGA ERP, the system of record for the
// store's catalog. The ERP exposes a paginated read-only API; this package
// pulls it and projects its records into domain types.
package tga

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/vuquimar/api-rei-do-pano/internal/domain"
	"github.com/vuquimar/api-rei-do-pano/pkg/httpclient"
)

const defaultPageLimit = 100

// Doer abstracts the HTTP client so the breaker-wrapped client and the plain
// retrying client are interchangeable.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Config holds the ERP endpoint settings.
type Config struct {
	BaseURL string
	APIKey  string
	// PageLimit is the page size requested from the ERP. Defaults to 100,
	// the largest page the upstream serves.
	PageLimit int
}

// Client fetches products and product groups from the ERP.
type Client struct {
	http    Doer
	baseURL string
	apiKey  string
	limit   int
}

// NewClient creates an ERP client.
func NewClient(doer Doer, cfg Config) *Client {
	limit := cfg.PageLimit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	return &Client{
		http:    doer,
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		limit:   limit,
	}
}

// PageLimit reports the page size the client requests; a response shorter
// than this is the upstream's last page.
func (c *Client) PageLimit() int { return c.limit }

// The ERP speaks its own column names; these payloads exist only to decode
// them at the boundary. Prices and stock come back null for never-priced
// items, which the store treats as zero.
type productPayload struct {
	Code      string   `json:"CODPRD"`
	Name      string   `json:"NOMEFANTASIA"`
	Price     *float64 `json:"PRECO2"`
	PriceCash *float64 `json:"PRECO1"`
	Stock     *float64 `json:"SALDOGERALFISICO"`
	GroupCode string   `json:"CODGRUPO"`
	Barcode   string   `json:"CODBARRAS"`
}

type groupPayload struct {
	Code        string `json:"CODGRUPO"`
	Description string `json:"DESCRICAO"`
}

type dataEnvelope[T any] struct {
	Data []T `json:"data"`
}

// Products fetches one page of products. A zero updatedAfter fetches the
// whole catalog; otherwise the ERP filters to records changed since then.
func (c *Client) Products(ctx context.Context, page int, updatedAfter time.Time) ([]domain.Product, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(c.limit))
	if !updatedAfter.IsZero() {
		query.Set("updated_after", updatedAfter.UTC().Format(time.RFC3339))
	}

	var envelope dataEnvelope[productPayload]
	if err := c.get(ctx, "/v1/produtos", query, &envelope); err != nil {
		return nil, fmt.Errorf("fetch products page %d: %w", page, err)
	}

	products := make([]domain.Product, 0, len(envelope.Data))
	for _, p := range envelope.Data {
		products = append(products, domain.Product{
			Code:      p.Code,
			Name:      p.Name,
			Price:     deref(p.Price),
			PriceCash: deref(p.PriceCash),
			Stock:     deref(p.Stock),
			GroupCode: p.GroupCode,
			Barcode:   p.Barcode,
		})
	}
	return products, nil
}

// Groups fetches one page of product groups.
func (c *Client) Groups(ctx context.Context, page int) ([]domain.ProductGroup, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(c.limit))

	var envelope dataEnvelope[groupPayload]
	if err := c.get(ctx, "/v1/grupos", query, &envelope); err != nil {
		return nil, fmt.Errorf("fetch groups page %d: %w", page, err)
	}

	groups := make([]domain.ProductGroup, 0, len(envelope.Data))
	for _, g := range envelope.Data {
		groups = append(groups, domain.ProductGroup{
			Code:        g.Code,
			Description: g.Description,
		})
	}
	return groups, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), http.NoBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return httpclient.ParseResponseError(resp, "tga")
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
