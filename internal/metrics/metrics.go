package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	animaisCriadosTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rebanho_animais_criados_total",
		Help: "Total de animais registrados",
	})

	animaisExcluidosTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rebanho_animais_excluidos_total",
		Help: "Total de animais excluídos",
	})

	eventosRegistradosTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rebanho_eventos_registrados_total",
		Help: "Total de eventos anexados aos históricos, por log",
	}, []string{"log"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rebanho_http_request_duration_seconds",
		Help:    "Duração das requisições HTTP",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "status"})
)

func IncAnimalCriado() {
	animaisCriadosTotal.Inc()
}

func IncAnimalExcluido() {
	animaisExcluidosTotal.Inc()
}

func IncEventoRegistrado(log string) {
	eventosRegistradosTotal.WithLabelValues(log).Inc()
}

func ObserveHTTPRequest(method, status string, seconds float64) {
	httpRequestDuration.WithLabelValues(method, status).Observe(seconds)
}
