package warehouse

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"FoodStore/pkg/kit"
)

const apiVersion = "2.0.0"

type Server struct {
	Catalog *Catalog
	Log     *zap.Logger
	Metrics *StockMetrics
}

type productJSON struct {
	Name    string  `json:"name"`
	Units   string  `json:"units"`
	Qty     int     `json:"qty"`
	Price   float64 `json:"price"`
	InStock bool    `json:"in_stock"`
}

type inventoryResponse struct {
	Products      map[string]productJSON `json:"products"`
	TotalProducts int                    `json:"total_products"`
}

type orderResponse struct {
	Product      string  `json:"product"`
	ProductName  string  `json:"product_name"`
	OrderedQty   int     `json:"ordered_qty"`
	Units        string  `json:"units"`
	RemainingQty int     `json:"remaining_qty"`
	TotalPrice   float64 `json:"total_price"`
	Message      string  `json:"message"`
}

type restockResponse struct {
	Product      string `json:"product"`
	ProductName  string `json:"product_name"`
	PreviousQty  int    `json:"previous_qty"`
	RestockedQty int    `json:"restocked_qty"`
	NewQty       int    `json:"new_qty"`
	Message      string `json:"message"`
}

func (s *Server) root(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Food & Beverage Catalog API",
		"version": apiVersion,
		"docs":    "/api/docs",
		"endpoints": map[string]string{
			"inventory": "/warehouse/inventory",
			"order":     "/warehouse/{product}",
			"health":    "/health",
		},
	})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, map[string]any{
		"status":             "healthy",
		"products_available": s.Catalog.Len(),
	})
}

func (s *Server) inventory(w http.ResponseWriter, _ *http.Request) {
	snap := s.Catalog.Inventory()

	products := make(map[string]productJSON, len(snap.Products))
	for id, p := range snap.Products {
		products[id] = productJSON{
			Name:    p.Name,
			Units:   p.Units,
			Qty:     p.Qty,
			Price:   p.Price.InexactFloat64(),
			InStock: p.InStock,
		}
	}

	kit.WriteJSON(w, http.StatusOK, inventoryResponse{
		Products:      products,
		TotalProducts: snap.Total,
	})
}

func (s *Server) order(w http.ResponseWriter, r *http.Request) {
	product := chi.URLParam(r, "product")

	qty, ok := positiveQueryInt(r, "order_qty")
	if !ok {
		kit.WriteError(w, http.StatusUnprocessableEntity, "order_qty must be a positive integer")
		return
	}

	receipt, err := s.Catalog.PlaceOrder(product, qty)
	if err != nil {
		s.writeOrderError(w, err)
		return
	}

	if s.Metrics != nil {
		s.Metrics.OrderOK(product, receipt.RemainingQty)
	}

	kit.WriteJSON(w, http.StatusOK, orderResponse{
		Product:      receipt.Product,
		ProductName:  receipt.ProductName,
		OrderedQty:   receipt.OrderedQty,
		Units:        receipt.Units,
		RemainingQty: receipt.RemainingQty,
		TotalPrice:   receipt.TotalPrice.InexactFloat64(),
		Message:      receipt.Message,
	})
}

func (s *Server) restock(w http.ResponseWriter, r *http.Request) {
	product := chi.URLParam(r, "product")

	qty, ok := positiveQueryInt(r, "restock_qty")
	if !ok {
		kit.WriteError(w, http.StatusUnprocessableEntity, "restock_qty must be a positive integer")
		return
	}

	receipt, err := s.Catalog.Restock(product, qty)
	if err != nil {
		s.writeRestockError(w, err)
		return
	}

	if s.Metrics != nil {
		s.Metrics.RestockOK(product, receipt.NewQty)
	}

	kit.WriteJSON(w, http.StatusOK, restockResponse{
		Product:      receipt.Product,
		ProductName:  receipt.ProductName,
		PreviousQty:  receipt.PreviousQty,
		RestockedQty: receipt.RestockedQty,
		NewQty:       receipt.NewQty,
		Message:      receipt.Message,
	})
}

// insufficientDetail and outOfStockDetail are the two documented 400 payload
// shapes. The out-of-stock variant carries no requested/available fields.
type insufficientDetail struct {
	Error     string `json:"error"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
	Product   string `json:"product"`
	Message   string `json:"message"`
}

type outOfStockDetail struct {
	Error   string `json:"error"`
	Product string `json:"product"`
	Message string `json:"message"`
}

func (s *Server) writeOrderError(w http.ResponseWriter, err error) {
	var nf *NotFoundError
	var se *StockError

	switch {
	case errors.As(err, &nf):
		if s.Metrics != nil {
			s.Metrics.OrderNotFound()
		}
		kit.WriteError(w, http.StatusNotFound, nf.Error())
	case errors.As(err, &se):
		if s.Metrics != nil {
			s.Metrics.OrderRejected(se.Product, se.Reason)
		}
		kit.WriteError(w, http.StatusBadRequest, stockDetail(se))
	case errors.Is(err, ErrInvalidQuantity):
		kit.WriteError(w, http.StatusUnprocessableEntity, "order_qty must be a positive integer")
	default:
		if s.Log != nil {
			s.Log.Error("order failed", zap.Error(err))
		}
		kit.WriteError(w, http.StatusInternalServerError, "server error")
	}
}

func (s *Server) writeRestockError(w http.ResponseWriter, err error) {
	var nf *NotFoundError

	switch {
	case errors.As(err, &nf):
		kit.WriteError(w, http.StatusNotFound, nf.Error())
	case errors.Is(err, ErrInvalidQuantity):
		kit.WriteError(w, http.StatusUnprocessableEntity, "restock_qty must be a positive integer")
	case errors.Is(err, ErrQuantityTooLarge):
		kit.WriteError(w, http.StatusUnprocessableEntity, "restock_qty is too large")
	default:
		if s.Log != nil {
			s.Log.Error("restock failed", zap.Error(err))
		}
		kit.WriteError(w, http.StatusInternalServerError, "server error")
	}
}

func stockDetail(se *StockError) any {
	if se.Reason == ReasonOutOfStock {
		return outOfStockDetail{
			Error:   string(se.Reason),
			Product: se.Product,
			Message: se.Message(),
		}
	}
	return insufficientDetail{
		Error:     string(se.Reason),
		Requested: se.Requested,
		Available: se.Available,
		Product:   se.Product,
		Message:   se.Message(),
	}
}

func positiveQueryInt(r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
