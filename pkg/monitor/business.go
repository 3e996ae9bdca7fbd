package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
)

// TariMetrics 交易构建相关的业务指标
type TariMetrics struct {
	TransactionsBuilt       *prometheus.CounterVec
	TransactionInstructions prometheus.Histogram
	TransactionResults      *prometheus.CounterVec
	BuildErrors             *prometheus.CounterVec
}

// Tari 全局实例，未调用 Init 时也可安全使用 (只是不会被导出)
var Tari = newTariMetrics()

func newTariMetrics() *TariMetrics {
	return &TariMetrics{
		TransactionsBuilt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tari_transactions_built_total",
			Help: "The total number of transactions built",
		}, []string{"network"}),
		TransactionInstructions: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tari_transaction_instructions",
			Help:    "Number of main instructions per built transaction",
			Buckets: prometheus.LinearBuckets(1, 2, 10),
		}),
		TransactionResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tari_transaction_results_total",
			Help: "Final transaction results recorded, by status",
		}, []string{"status"}),
		BuildErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tari_build_errors_total",
			Help: "Failed transaction builds, by reason",
		}, []string{"reason"}),
	}
}

func (m *TariMetrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.TransactionsBuilt,
		m.TransactionInstructions,
		m.TransactionResults,
		m.BuildErrors,
	}
}
