package reward

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	grantsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rewardgate_grants_total",
		Help: "Rewards granted, by effective type and approval state.",
	}, []string{"type", "state"})

	rejectionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rewardgate_rejections_total",
		Help: "Soft rejections, by reason.",
	}, []string{"reason"})
)

func init() {
	prometheus.MustRegister(grantsTotal, rejectionsTotal)
}
