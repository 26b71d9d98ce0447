package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// InventoryProduct mirrors one product record of the warehouse inventory
// response.
type InventoryProduct struct {
	Name    string  `json:"name"`
	Units   string  `json:"units"`
	Qty     int     `json:"qty"`
	Price   float64 `json:"price"`
	InStock bool    `json:"in_stock"`
}

type Inventory struct {
	Products      map[string]InventoryProduct `json:"products"`
	TotalProducts int                         `json:"total_products"`
}

// OrderResult mirrors the warehouse order receipt.
type OrderResult struct {
	Product      string  `json:"product"`
	ProductName  string  `json:"product_name"`
	OrderedQty   int     `json:"ordered_qty"`
	Units        string  `json:"units"`
	RemainingQty int     `json:"remaining_qty"`
	TotalPrice   float64 `json:"total_price"`
	Message      string  `json:"message"`
}

// ErrWarehouseUnavailable covers connection failures and timeouts; it is
// distinct from APIError, which means the warehouse answered with an error.
var ErrWarehouseUnavailable = errors.New("warehouse unavailable")

// APIError is a non-2xx warehouse response with its decoded detail payload,
// kept as-is so pages can render exactly what the API reported.
type APIError struct {
	Status int
	Detail any
}

func (e *APIError) Error() string {
	return fmt.Sprintf("warehouse error: status=%d detail=%v", e.Status, e.Detail)
}

// DetailMessage extracts the human-readable part of the detail payload: the
// string itself for plain details, the "message" field for structured ones.
func (e *APIError) DetailMessage() string {
	switch d := e.Detail.(type) {
	case string:
		return d
	case map[string]any:
		if msg, ok := d["message"].(string); ok {
			return msg
		}
	}
	return fmt.Sprintf("order failed with status %d", e.Status)
}

type Client struct {
	BaseURL string
	Client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 3 * time.Second},
	}
}

// Inventory fetches the full product listing.
func (c *Client) Inventory(ctx context.Context) (Inventory, error) {
	var inv Inventory
	if err := c.getJSON(ctx, c.BaseURL+"/warehouse/inventory", &inv); err != nil {
		return Inventory{}, err
	}
	return inv, nil
}

// PlaceOrder orders qty of the product. A non-2xx answer decodes into
// *APIError; transport failures map to ErrWarehouseUnavailable.
func (c *Client) PlaceOrder(ctx context.Context, product string, qty int) (OrderResult, error) {
	u := fmt.Sprintf("%s/warehouse/%s?order_qty=%s",
		c.BaseURL, url.PathEscape(product), url.QueryEscape(strconv.Itoa(qty)))

	var res OrderResult
	if err := c.getJSON(ctx, u, &res); err != nil {
		return OrderResult{}, err
	}
	return res, nil
}

// Health probes the warehouse health endpoint.
func (c *Client) Health(ctx context.Context) error {
	var status struct {
		Status string `json:"status"`
	}
	return c.getJSON(ctx, c.BaseURL+"/health", &status)
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.Client.Do(req)
	if err != nil {
		// Connection refused, DNS failure, timeout: the warehouse never
		// answered, which pages report differently from an API error.
		return fmt.Errorf("%w: %v", ErrWarehouseUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	var envelope struct {
		Detail any `json:"detail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil {
		apiErr.Detail = envelope.Detail
	} else {
		_, _ = io.Copy(io.Discard, resp.Body)
	}

	return apiErr
}
