package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/fadhlanhapp/settleup-engine/models"
)

var (
	groupFetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "settleup",
		Name:      "group_fetch_total",
		Help:      "Group snapshot fetches by outcome.",
	}, []string{"outcome"})

	groupFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "settleup",
		Name:      "group_fetch_duration_seconds",
		Help:      "Latency of group snapshot fetches during dashboard loads.",
		Buckets:   prometheus.DefBuckets,
	})

	settlementTransfersTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "settleup",
		Name:      "settlement_transfers_total",
		Help:      "Suggested settlement transfers generated.",
	})

	reconciliationMatchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "settleup",
		Name:      "reconciliation_matches_total",
		Help:      "Payments attributed to expense shares by match kind.",
	}, []string{"kind"})
)

// RecordReconciliation counts the matches in a reconciled expense state
func RecordReconciliation(state *models.ExpensePaymentState) {
	for _, status := range state.ShareStatuses {
		if status.MatchKind != "" {
			reconciliationMatchesTotal.WithLabelValues(string(status.MatchKind)).Inc()
		}
	}
}

// RecordSettlement counts the transfers of a computed settlement
func RecordSettlement(transfers []models.SettlementTransfer) {
	settlementTransfersTotal.Add(float64(len(transfers)))
}
