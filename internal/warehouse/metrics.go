package warehouse

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	labelProduct = "product"
	labelOutcome = "outcome"

	// Not-found orders carry arbitrary user input as the product id; they
	// are counted under this label to keep cardinality bounded.
	unknownProduct = "unknown"
)

// StockMetrics tracks catalog activity: order attempts by outcome, restocks,
// and the current stock level per product.
type StockMetrics struct {
	Orders   *prometheus.CounterVec
	Restocks *prometheus.CounterVec
	Level    *prometheus.GaugeVec
}

func NewStockMetrics(reg *prometheus.Registry) *StockMetrics {
	m := &StockMetrics{
		Orders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "warehouse_orders_total",
				Help: "Order attempts by product and outcome",
			},
			[]string{labelProduct, labelOutcome},
		),
		Restocks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "warehouse_restocks_total",
				Help: "Completed restocks by product",
			},
			[]string{labelProduct},
		),
		Level: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "warehouse_stock_level",
				Help: "Current stock quantity by product",
			},
			[]string{labelProduct},
		),
	}

	reg.MustRegister(m.Orders, m.Restocks, m.Level)
	return m
}

func (m *StockMetrics) OrderOK(product string, remaining int) {
	m.Orders.WithLabelValues(product, "ok").Inc()
	m.Level.WithLabelValues(product).Set(float64(remaining))
}

func (m *StockMetrics) OrderRejected(product string, reason StockReason) {
	outcome := "insufficient_stock"
	if reason == ReasonOutOfStock {
		outcome = "out_of_stock"
	}
	m.Orders.WithLabelValues(product, outcome).Inc()
}

func (m *StockMetrics) OrderNotFound() {
	m.Orders.WithLabelValues(unknownProduct, "not_found").Inc()
}

func (m *StockMetrics) RestockOK(product string, newQty int) {
	m.Restocks.WithLabelValues(product).Inc()
	m.Level.WithLabelValues(product).Set(float64(newQty))
}

// SeedLevels initializes the stock gauge from the catalog so levels are
// visible before the first mutation.
func (m *StockMetrics) SeedLevels(c *Catalog) {
	for id, info := range c.Inventory().Products {
		m.Level.WithLabelValues(id).Set(float64(info.Qty))
	}
}
