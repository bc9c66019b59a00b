package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics counts cart operations and degraded restores.
type CartMetrics struct {
	operations *prometheus.CounterVec
	restores   *prometheus.CounterVec
}

// NewCartMetrics registers the cart metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_cart_operations_total",
		Help: "Cart operations by name and result (changed, noop, error).",
	}, []string{"op", "result"})
	restores := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_cart_restore_warnings_total",
		Help: "Cart slots restored in degraded form, by slot and kind.",
	}, []string{"slot", "kind"})
	reg.MustRegister(operations, restores)
	return &CartMetrics{operations: operations, restores: restores}
}

// ObserveOperation records one cart operation outcome.
func (c *CartMetrics) ObserveOperation(op, result string) {
	if c == nil || c.operations == nil {
		return
	}
	c.operations.WithLabelValues(normalizeLabel(op), normalizeLabel(result)).Inc()
}

// ObserveRestoreWarning records one degraded slot.
func (c *CartMetrics) ObserveRestoreWarning(slot, kind string) {
	if c == nil || c.restores == nil {
		return
	}
	c.restores.WithLabelValues(normalizeLabel(slot), normalizeLabel(kind)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
