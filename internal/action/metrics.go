package action

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

var actionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "pdns_operator_actions_total",
		Help: "Number of dispatched actions by action name and outcome.",
	},
	[]string{"action", "outcome"},
)

func init() {
	metrics.Registry.MustRegister(actionsTotal)
}
