package attendance

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	checkinTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "classtrack_checkin_total",
		Help: "Check-in attempts by outcome.",
	}, []string{"outcome"})

	checkinUnpaid = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classtrack_checkin_unpaid_total",
		Help: "Successful check-ins whose lesson was not covered by a payment.",
	})
)
