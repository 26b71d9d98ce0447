package storefront

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"sort"
	"strconv"

	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type Server struct {
	Warehouse *Client
	Log       *zap.Logger
}

// productOption is one dropdown entry on the order form.
type productOption struct {
	ID      string
	Name    string
	Qty     int
	Units   string
	InStock bool
}

type formData struct {
	Products []productOption
}

type resultData struct {
	Order *OrderResult
	Err   string
}

func (s *Server) form(w http.ResponseWriter, r *http.Request) {
	inv, err := s.Warehouse.Inventory(r.Context())
	if err != nil {
		s.renderUnavailable(w, err)
		return
	}

	options := make([]productOption, 0, len(inv.Products))
	for id, p := range inv.Products {
		options = append(options, productOption{
			ID:      id,
			Name:    p.Name,
			Qty:     p.Qty,
			Units:   p.Units,
			InStock: p.InStock,
		})
	}
	sort.Slice(options, func(i, j int) bool { return options[i].ID < options[j].ID })

	s.render(w, http.StatusOK, "index.html", formData{Products: options})
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, http.StatusBadRequest, "result.html", resultData{Err: "bad form submission"})
		return
	}

	product := r.FormValue("product")
	qty, err := strconv.Atoi(r.FormValue("order_qty"))
	if product == "" || err != nil || qty < 1 {
		s.render(w, http.StatusBadRequest, "result.html", resultData{
			Err: "pick a product and a positive quantity",
		})
		return
	}

	order, err := s.Warehouse.PlaceOrder(r.Context(), product, qty)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			// The warehouse answered; show its verdict as the result.
			s.render(w, http.StatusOK, "result.html", resultData{Err: apiErr.DetailMessage()})
			return
		}
		s.renderUnavailable(w, err)
		return
	}

	s.render(w, http.StatusOK, "result.html", resultData{Order: &order})
}

func (s *Server) renderUnavailable(w http.ResponseWriter, err error) {
	if s.Log != nil {
		s.Log.Error("warehouse call failed", zap.Error(err))
	}
	s.render(w, http.StatusBadGateway, "result.html", resultData{
		Err: "the store is temporarily unavailable, please try again",
	})
}

func (s *Server) render(w http.ResponseWriter, status int, page string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pages.ExecuteTemplate(w, page, data); err != nil && s.Log != nil {
		s.Log.Error("render failed", zap.String("page", page), zap.Error(err))
	}
}
