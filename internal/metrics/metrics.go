// Package metrics exposes Prometheus collectors for the order fulfillment core.
// Every method is safe on a nil *Metrics so services can run without a registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	ventas      *prometheus.CounterVec
	movimientos *prometheus.CounterVec
	descuentos  *prometheus.CounterVec
	secundarios *prometheus.CounterVec
	desvios     prometheus.Gauge
}

// New registers the collectors on reg. A nil reg yields a no-op Metrics.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	m := &Metrics{
		ventas: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ventas_registradas_total",
			Help: "Ventas recorded, by origin (pedido or pos).",
		}, []string{"origen"}),
		movimientos: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "movimientos_stock_total",
			Help: "Stock movement registrations by tipo and result.",
		}, []string{"tipo", "resultado"}),
		descuentos: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "descuentos_operaciones_total",
			Help: "Discount code operations by operation and result.",
		}, []string{"operacion", "resultado"}),
		secundarios: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pedido_fallos_secundarios_total",
			Help: "Best-effort steps that failed during an order transition.",
		}, []string{"paso"}),
		desvios: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stock_desvios_productos",
			Help: "Products whose cached stock differs from their movement log in the last reconciliation.",
		}),
	}
	reg.MustRegister(m.ventas, m.movimientos, m.descuentos, m.secundarios, m.desvios)
	return m
}

func (m *Metrics) VentaRegistrada(origen string) {
	if m == nil || m.ventas == nil {
		return
	}
	m.ventas.WithLabelValues(label(origen)).Inc()
}

func (m *Metrics) Movimiento(tipo string, err error) {
	if m == nil || m.movimientos == nil {
		return
	}
	m.movimientos.WithLabelValues(label(tipo), resultado(err)).Inc()
}

func (m *Metrics) Descuento(operacion string, err error) {
	if m == nil || m.descuentos == nil {
		return
	}
	m.descuentos.WithLabelValues(label(operacion), resultado(err)).Inc()
}

func (m *Metrics) FalloSecundario(paso string) {
	if m == nil || m.secundarios == nil {
		return
	}
	m.secundarios.WithLabelValues(label(paso)).Inc()
}

func (m *Metrics) Desvios(n int) {
	if m == nil || m.desvios == nil {
		return
	}
	m.desvios.Set(float64(n))
}

func resultado(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func label(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
