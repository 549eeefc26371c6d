package http

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics conta as operações do mercado por resultado ("ok" ou código de erro)
type Metrics struct {
	ops *prometheus.CounterVec
}

// NewMetrics registra os contadores no registerer informado
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "market_operations_total",
			Help: "operações de mercado por resultado",
		}, []string{"op", "result"}),
	}
	reg.MustRegister(m.ops)
	return m
}

func (m *Metrics) observe(op, code string) {
	if m == nil {
		return
	}
	if code == "" {
		code = "internal"
	}
	m.ops.WithLabelValues(op, code).Inc()
}

func (m *Metrics) ok(op string) { m.observe(op, "ok") }
