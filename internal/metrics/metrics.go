// Package metrics exposes the Prometheus instruments served at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// VentasFinalizadas counts finalized sale workflows by tagged outcome
	// (completa | parcial | fallida).
	VentasFinalizadas = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "modapos_ventas_finalizadas_total",
		Help: "Ventas finalizadas por resultado del workflow.",
	}, []string{"resultado"})

	// LineasFallidas counts individual cart lines rejected during a sale
	// (insufficient stock, missing variant, …).
	LineasFallidas = promauto.NewCounter(prometheus.CounterOpts{
		Name: "modapos_venta_lineas_fallidas_total",
		Help: "Lineas de venta rechazadas.",
	})

	// FinalizarDuracion observes the wall time of the whole finalize
	// workflow (header + lines + detail fetch).
	FinalizarDuracion = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "modapos_finalizar_venta_duracion_segundos",
		Help:    "Duracion del workflow de finalizacion de venta.",
		Buckets: prometheus.DefBuckets,
	})

	// ComprobantesGenerados counts voucher jobs by terminal state.
	ComprobantesGenerados = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "modapos_comprobantes_total",
		Help: "Comprobantes procesados por estado final.",
	}, []string{"estado"})
)
