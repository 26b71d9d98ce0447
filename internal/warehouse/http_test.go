package warehouse_test

import (
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"FoodStore/internal/warehouse"
)

func newWarehouseTS(t *testing.T) *httptest.Server {
	t.Helper()

	s := &warehouse.Server{
		Catalog: warehouse.NewCatalog(zap.NewNop()),
		Log:     zap.NewNop(),
	}

	h := warehouse.NewHandler(s, warehouse.HTTPDeps{
		Log:     zap.NewNop(),
		Service: "warehouse",
	})

	return httptest.NewServer(h)
}

func do(t *testing.T, method, url string, headers map[string]string) (*http.Response, []byte) {
	t.Helper()

	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, raw
}

// decodeDetail unwraps the {"detail": ...} error envelope into dst.
func decodeDetail(t *testing.T, raw []byte, dst any) {
	t.Helper()

	var env struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("decode envelope: %v body=%s", err, string(raw))
	}
	if env.Detail == nil {
		t.Fatalf("no detail field: %s", string(raw))
	}
	if err := json.Unmarshal(env.Detail, dst); err != nil {
		t.Fatalf("decode detail: %v body=%s", err, string(raw))
	}
}

func TestWarehouse_Root(t *testing.T) {
	ts := newWarehouseTS(t)
	t.Cleanup(ts.Close)

	resp, raw := do(t, http.MethodGet, ts.URL+"/", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}

	var meta struct {
		Message   string            `json:"message"`
		Version   string            `json:"version"`
		Docs      string            `json:"docs"`
		Endpoints map[string]string `json:"endpoints"`
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		t.Fatalf("decode: %v body=%s", err, string(raw))
	}

	if meta.Message != "Food & Beverage Catalog API" {
		t.Fatalf("message=%q", meta.Message)
	}
	if meta.Version != "2.0.0" {
		t.Fatalf("version=%q", meta.Version)
	}
	if meta.Endpoints["inventory"] != "/warehouse/inventory" {
		t.Fatalf("endpoints=%v", meta.Endpoints)
	}
}

func TestWarehouse_Health(t *testing.T) {
	ts := newWarehouseTS(t)
	t.Cleanup(ts.Close)

	resp, raw := do(t, http.MethodGet, ts.URL+"/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}

	var h struct {
		Status            string `json:"status"`
		ProductsAvailable int    `json:"products_available"`
	}
	if err := json.Unmarshal(raw, &h); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if h.Status != "healthy" || h.ProductsAvailable != 5 {
		t.Fatalf("health=%+v", h)
	}
}

func TestWarehouse_Inventory(t *testing.T) {
	ts := newWarehouseTS(t)
	t.Cleanup(ts.Close)

	resp, raw := do(t, http.MethodGet, ts.URL+"/warehouse/inventory", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d body=%s", resp.StatusCode, string(raw))
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content-type=%q", ct)
	}

	var inv struct {
		Products map[string]struct {
			Name    string  `json:"name"`
			Units   string  `json:"units"`
			Qty     int     `json:"qty"`
			Price   float64 `json:"price"`
			InStock bool    `json:"in_stock"`
		} `json:"products"`
		TotalProducts int `json:"total_products"`
	}
	if err := json.Unmarshal(raw, &inv); err != nil {
		t.Fatalf("decode: %v body=%s", err, string(raw))
	}

	if inv.TotalProducts != 5 || len(inv.Products) != 5 {
		t.Fatalf("total=%d products=%d", inv.TotalProducts, len(inv.Products))
	}

	pizza := inv.Products["pizza"]
	if pizza.Name != "Deluxe Pizza" || pizza.Qty != 1000 || pizza.Price != 12.99 || !pizza.InStock {
		t.Fatalf("pizza=%+v", pizza)
	}
}

func TestWarehouse_Order(t *testing.T) {
	ts := newWarehouseTS(t)
	t.Cleanup(ts.Close)

	resp, raw := do(t, http.MethodGet, ts.URL+"/warehouse/pizza?order_qty=3", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d body=%s", resp.StatusCode, string(raw))
	}

	var order struct {
		Product      string  `json:"product"`
		ProductName  string  `json:"product_name"`
		OrderedQty   int     `json:"ordered_qty"`
		Units        string  `json:"units"`
		RemainingQty int     `json:"remaining_qty"`
		TotalPrice   float64 `json:"total_price"`
		Message      string  `json:"message"`
	}
	if err := json.Unmarshal(raw, &order); err != nil {
		t.Fatalf("decode: %v body=%s", err, string(raw))
	}

	if order.Product != "pizza" || order.OrderedQty != 3 || order.RemainingQty != 997 {
		t.Fatalf("order=%+v", order)
	}
	if order.TotalPrice != 38.97 {
		t.Fatalf("total=%v", order.TotalPrice)
	}
	if order.Message != "Successfully ordered 3 boxes of Deluxe Pizza" {
		t.Fatalf("message=%q", order.Message)
	}

	// A second look at the inventory reflects the decrement.
	_, raw = do(t, http.MethodGet, ts.URL+"/warehouse/inventory", nil)
	var inv struct {
		Products map[string]struct {
			Qty int `json:"qty"`
		} `json:"products"`
	}
	if err := json.Unmarshal(raw, &inv); err != nil {
		t.Fatalf("decode inventory: %v", err)
	}
	if got := inv.Products["pizza"].Qty; got != 997 {
		t.Fatalf("inventory qty=%d", got)
	}
}

func TestWarehouse_Order_ProductIDWithSpaces(t *testing.T) {
	ts := newWarehouseTS(t)
	t.Cleanup(ts.Close)

	resp, raw := do(t, http.MethodGet, ts.URL+"/warehouse/White%20Russians?order_qty=2", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d body=%s", resp.StatusCode, string(raw))
	}

	var order struct {
		ProductName  string `json:"product_name"`
		RemainingQty int    `json:"remaining_qty"`
	}
	if err := json.Unmarshal(raw, &order); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if order.ProductName != "White Russians Cocktail" || order.RemainingQty != 1748 {
		t.Fatalf("order=%+v", order)
	}
}

func TestWarehouse_Order_InsufficientStock(t *testing.T) {
	ts := newWarehouseTS(t)
	t.Cleanup(ts.Close)

	resp, raw := do(t, http.MethodGet, ts.URL+"/warehouse/pizza?order_qty=2000", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", resp.StatusCode, string(raw))
	}

	var detail struct {
		Error     string `json:"error"`
		Requested int    `json:"requested"`
		Available int    `json:"available"`
		Product   string `json:"product"`
		Message   string `json:"message"`
	}
	decodeDetail(t, raw, &detail)

	if detail.Error != "Insufficient stock" {
		t.Fatalf("error=%q", detail.Error)
	}
	if detail.Requested != 2000 || detail.Available != 1000 {
		t.Fatalf("detail=%+v", detail)
	}
	if detail.Product != "Deluxe Pizza" {
		t.Fatalf("product=%q", detail.Product)
	}
	if detail.Message != "Sorry, only 1000 boxes available" {
		t.Fatalf("message=%q", detail.Message)
	}

	// The failed order must not touch stock.
	_, raw = do(t, http.MethodGet, ts.URL+"/warehouse/pizza?order_qty=1", nil)
	var order struct {
		RemainingQty int `json:"remaining_qty"`
	}
	if err := json.Unmarshal(raw, &order); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if order.RemainingQty != 999 {
		t.Fatalf("remaining=%d", order.RemainingQty)
	}
}

func TestWarehouse_Order_OutOfStock(t *testing.T) {
	ts := newWarehouseTS(t)
	t.Cleanup(ts.Close)

	if resp, raw := do(t, http.MethodGet, ts.URL+"/warehouse/beer?order_qty=500", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("drain status=%d body=%s", resp.StatusCode, string(raw))
	}

	resp, raw := do(t, http.MethodGet, ts.URL+"/warehouse/beer?order_qty=1", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", resp.StatusCode, string(raw))
	}

	var detail map[string]any
	decodeDetail(t, raw, &detail)

	if detail["error"] != "Out of stock" {
		t.Fatalf("error=%v", detail["error"])
	}
	if detail["message"] != "Sorry, Craft Beer is currently out of stock" {
		t.Fatalf("message=%v", detail["message"])
	}
	if _, ok := detail["requested"]; ok {
		t.Fatalf("out-of-stock detail carries requested: %v", detail)
	}
	if _, ok := detail["available"]; ok {
		t.Fatalf("out-of-stock detail carries available: %v", detail)
	}
}

func TestWarehouse_Order_UnknownProduct(t *testing.T) {
	ts := newWarehouseTS(t)
	t.Cleanup(ts.Close)

	resp, raw := do(t, http.MethodGet, ts.URL+"/warehouse/soda?order_qty=1", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status=%d body=%s", resp.StatusCode, string(raw))
	}

	var detail string
	decodeDetail(t, raw, &detail)

	want := "Product 'soda' not found. Available products: pizza, beer, burger, White Russians, fries"
	if detail != want {
		t.Fatalf("detail=%q", detail)
	}
}

func TestWarehouse_Order_InvalidQuantity(t *testing.T) {
	ts := newWarehouseTS(t)
	t.Cleanup(ts.Close)

	for _, q := range []string{"?order_qty=0", "?order_qty=-5", "?order_qty=abc", ""} {
		resp, raw := do(t, http.MethodGet, ts.URL+"/warehouse/pizza"+q, nil)
		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Fatalf("query=%q status=%d body=%s", q, resp.StatusCode, string(raw))
		}

		var detail string
		decodeDetail(t, raw, &detail)
		if detail != "order_qty must be a positive integer" {
			t.Fatalf("detail=%q", detail)
		}
	}
}

func TestWarehouse_Restock(t *testing.T) {
	ts := newWarehouseTS(t)
	t.Cleanup(ts.Close)

	resp, raw := do(t, http.MethodPost, ts.URL+"/warehouse/beer/restock?restock_qty=50", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d body=%s", resp.StatusCode, string(raw))
	}

	var restock struct {
		Product      string `json:"product"`
		ProductName  string `json:"product_name"`
		PreviousQty  int    `json:"previous_qty"`
		RestockedQty int    `json:"restocked_qty"`
		NewQty       int    `json:"new_qty"`
		Message      string `json:"message"`
	}
	if err := json.Unmarshal(raw, &restock); err != nil {
		t.Fatalf("decode: %v body=%s", err, string(raw))
	}

	if restock.PreviousQty != 500 || restock.RestockedQty != 50 || restock.NewQty != 550 {
		t.Fatalf("restock=%+v", restock)
	}
	if restock.Message != "Successfully restocked 50 bottles" {
		t.Fatalf("message=%q", restock.Message)
	}
}

func TestWarehouse_Restock_UnknownProduct(t *testing.T) {
	ts := newWarehouseTS(t)
	t.Cleanup(ts.Close)

	resp, raw := do(t, http.MethodPost, ts.URL+"/warehouse/soda/restock?restock_qty=10", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status=%d body=%s", resp.StatusCode, string(raw))
	}

	var detail string
	decodeDetail(t, raw, &detail)

	// Unlike orders, the restock error does not list the catalog.
	if detail != "Product 'soda' not found" {
		t.Fatalf("detail=%q", detail)
	}
}

func TestWarehouse_Restock_InvalidQuantity(t *testing.T) {
	ts := newWarehouseTS(t)
	t.Cleanup(ts.Close)

	resp, raw := do(t, http.MethodPost, ts.URL+"/warehouse/beer/restock?restock_qty=0", nil)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d body=%s", resp.StatusCode, string(raw))
	}

	var detail string
	decodeDetail(t, raw, &detail)
	if detail != "restock_qty must be a positive integer" {
		t.Fatalf("detail=%q", detail)
	}
}

func TestWarehouse_Restock_QuantityTooLarge(t *testing.T) {
	ts := newWarehouseTS(t)
	t.Cleanup(ts.Close)

	url := ts.URL + "/warehouse/beer/restock?restock_qty=" + strconv.Itoa(math.MaxInt)
	resp, raw := do(t, http.MethodPost, url, nil)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d body=%s", resp.StatusCode, string(raw))
	}

	var detail string
	decodeDetail(t, raw, &detail)
	if detail != "restock_qty is too large" {
		t.Fatalf("detail=%q", detail)
	}

	// The rejected restock must not touch the stock count.
	_, raw = do(t, http.MethodGet, ts.URL+"/warehouse/inventory", nil)
	var inv struct {
		Products map[string]struct {
			Qty int `json:"qty"`
		} `json:"products"`
	}
	if err := json.Unmarshal(raw, &inv); err != nil {
		t.Fatalf("decode inventory: %v", err)
	}
	if got := inv.Products["beer"].Qty; got != 500 {
		t.Fatalf("qty=%d", got)
	}
}

func TestWarehouse_CORS(t *testing.T) {
	ts := newWarehouseTS(t)
	t.Cleanup(ts.Close)

	const origin = "http://shop.example.com"

	resp, _ := do(t, http.MethodGet, ts.URL+"/warehouse/inventory", map[string]string{
		"Origin": origin,
	})
	acao := resp.Header.Get("Access-Control-Allow-Origin")
	if acao != "*" && acao != origin {
		t.Fatalf("allow-origin=%q", acao)
	}

	resp, _ = do(t, http.MethodOptions, ts.URL+"/warehouse/pizza", map[string]string{
		"Origin":                        origin,
		"Access-Control-Request-Method": http.MethodGet,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("preflight status=%d", resp.StatusCode)
	}
	acao = resp.Header.Get("Access-Control-Allow-Origin")
	if acao != "*" && acao != origin {
		t.Fatalf("preflight allow-origin=%q", acao)
	}
}

func TestWarehouse_Docs(t *testing.T) {
	ts := newWarehouseTS(t)
	t.Cleanup(ts.Close)

	resp, raw := do(t, http.MethodGet, ts.URL+"/api/docs", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("docs status=%d", resp.StatusCode)
	}
	if !strings.Contains(string(raw), "swagger-ui") {
		t.Fatalf("docs body=%s", string(raw))
	}

	resp, raw = do(t, http.MethodGet, ts.URL+"/api/openapi.yaml", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("openapi status=%d", resp.StatusCode)
	}
	if !strings.Contains(string(raw), "openapi:") {
		t.Fatalf("openapi body=%s", string(raw))
	}
}

func TestWarehouse_MetricsAuth(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := &warehouse.Server{
		Catalog: warehouse.NewCatalog(zap.NewNop()),
		Log:     zap.NewNop(),
		Metrics: warehouse.NewStockMetrics(reg),
	}

	h := warehouse.NewHandler(s, warehouse.HTTPDeps{
		Log:            zap.NewNop(),
		Service:        "warehouse",
		Registry:       reg,
		MetricsEnabled: true,
		MetricsToken:   "observer-token",
	})

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	resp, _ := do(t, http.MethodGet, ts.URL+"/metrics", nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("no token status=%d", resp.StatusCode)
	}

	resp, _ = do(t, http.MethodGet, ts.URL+"/metrics", map[string]string{
		"Authorization": "Bearer wrong",
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("wrong token status=%d", resp.StatusCode)
	}

	resp, raw := do(t, http.MethodGet, ts.URL+"/metrics", map[string]string{
		"Authorization": "Bearer observer-token",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	if !strings.Contains(string(raw), "warehouse_stock_level") {
		t.Fatalf("metrics body missing stock levels")
	}
}

func TestWarehouse_OrderRateLimit(t *testing.T) {
	s := &warehouse.Server{
		Catalog: warehouse.NewCatalog(zap.NewNop()),
		Log:     zap.NewNop(),
	}

	h := warehouse.NewHandler(s, warehouse.HTTPDeps{
		Log:           zap.NewNop(),
		Service:       "warehouse",
		MutationLimit: 2,
	})

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	for i := 0; i < 2; i++ {
		resp, raw := do(t, http.MethodGet, ts.URL+"/warehouse/pizza?order_qty=1", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("order %d status=%d body=%s", i+1, resp.StatusCode, string(raw))
		}
	}

	resp, raw := do(t, http.MethodGet, ts.URL+"/warehouse/pizza?order_qty=1", nil)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status=%d body=%s", resp.StatusCode, string(raw))
	}

	var detail string
	decodeDetail(t, raw, &detail)
	if detail != "too many requests" {
		t.Fatalf("detail=%q", detail)
	}

	// Read routes stay outside the limiter.
	resp, _ = do(t, http.MethodGet, ts.URL+"/warehouse/inventory", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("inventory status=%d", resp.StatusCode)
	}
}
