package service

import "github.com/prometheus/client_golang/prometheus"

var authEvents = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "auth_events_total", Help: "Count of authentication events"},
	[]string{"event", "result"},
)

func init() { prometheus.MustRegister(authEvents) }

func observe(event string, ok bool) {
	result := "ok"
	if !ok {
		result = "fail"
	}
	authEvents.WithLabelValues(event, result).Inc()
}
