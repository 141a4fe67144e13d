// Package metrics exposes Prometheus counters for wallet operations and the
// HTTP API.
package metrics

import (
	"github.com/AlexZinkM/shardwallet/internal/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	Namespace = "shardwallet"

	LabelOperation = "operation"
	LabelResult    = "result"
	LabelRoute     = "route"
	LabelCode      = "status_code"

	ResultOK = "ok"

	OpCreate  = "create"
	OpVerify  = "verify"
	OpInfo    = "info"
	OpBalance = "balance"
	OpUpgrade = "upgrade"
)

var (
	// OperationsTotal counts wallet operations by outcome. The result label
	// is "ok" or the error code of the failure.
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "operations_total",
			Help:      "Total number of wallet operations by result",
		},
		[]string{LabelOperation, LabelResult},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP API requests",
		},
		[]string{LabelRoute, LabelCode},
	)
)

// RecordOperation counts one operation outcome.
func RecordOperation(op string, err error) {
	result := ResultOK
	if err != nil {
		result = model.ErrorCode(err)
	}
	OperationsTotal.WithLabelValues(op, result).Inc()
}
