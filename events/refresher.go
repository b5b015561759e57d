package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/fadhlanhapp/settleup-engine/models"
)

var refreshEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "settleup_refresh_events_total",
	Help: "Group changed events received, by reason.",
}, []string{"reason"})

// Settler recomputes a group's settlement from its current snapshot
type Settler interface {
	SettleGroup(ctx context.Context, groupID int64) (*models.GroupSettlement, error)
}

// Refresher re-runs the engine for groups announced as changed
type Refresher struct {
	settler   Settler
	timeout   time.Duration
	debouncer *Debouncer
}

func NewRefresher(settler Settler, debounce, timeout time.Duration) *Refresher {
	r := &Refresher{settler: settler, timeout: timeout}
	r.debouncer = NewDebouncer(debounce, r.Refresh)
	return r
}

// HandleMessage schedules a debounced refresh; it never rejects a message
func (r *Refresher) HandleMessage(ctx context.Context, msg *GroupChangedMessage) error {
	refreshEventsTotal.WithLabelValues(msg.Reason).Inc()
	r.debouncer.Trigger(msg.GroupID)
	return nil
}

// Refresh recomputes balances and settlements for a group and logs them
func (r *Refresher) Refresh(groupID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	settlement, err := r.settler.SettleGroup(ctx, groupID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to refresh group settlement", "group_id", groupID, "error", err)
		return
	}

	slog.InfoContext(ctx, "Refreshed group settlement",
		"group_id", groupID,
		"balance_source", settlement.Source,
		"members", len(settlement.Balances),
		"transfers", len(settlement.Transfers))
}

// Stop cancels pending refreshes
func (r *Refresher) Stop() {
	r.debouncer.Stop()
}
