package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"golang.org/x/sync/errgroup"

	"github.com/fadhlanhapp/settleup-engine/models"
	"github.com/fadhlanhapp/settleup-engine/utils"
)

// DashboardService builds a member's cross-group dashboard from persisted groups
type DashboardService struct {
	memberships  MembershipProvider
	groups       GroupProvider
	concurrency  int
	fetchTimeout time.Duration
}

// NewDashboardService creates a new dashboard service. concurrency bounds
// parallel group fetches and fetchTimeout bounds each one.
func NewDashboardService(memberships MembershipProvider, groups GroupProvider, concurrency int, fetchTimeout time.Duration) *DashboardService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &DashboardService{
		memberships:  memberships,
		groups:       groups,
		concurrency:  concurrency,
		fetchTimeout: fetchTimeout,
	}
}

// LoadDashboard fetches every group of viewerID concurrently and aggregates
// whatever succeeded. A failing group is logged and left out.
func (s *DashboardService) LoadDashboard(ctx context.Context, viewerID int64) (*models.Dashboard, error) {
	refs, err := s.memberships.ListGroupsForMember(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("list groups for member %d: %w", viewerID, err)
	}

	dashboard := BuildDashboard(s.FetchGroups(ctx, refs), viewerID)
	return &dashboard, nil
}

// FetchGroups fetches snapshots for refs, keeping results in input order.
// Every fetch runs to completion; none short-circuits the others.
func (s *DashboardService) FetchGroups(ctx context.Context, refs []models.GroupRef) []models.GroupResult {
	results := make([]models.GroupResult, len(refs))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	txn := newrelic.FromContext(ctx)
	for i, ref := range refs {
		i, ref := i, ref
		fetchCtx := ctx
		if txn != nil {
			fetchCtx = newrelic.NewContext(ctx, txn.NewGoroutine())
		}
		g.Go(func() error {
			results[i] = s.fetchGroup(fetchCtx, ref)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (s *DashboardService) fetchGroup(ctx context.Context, ref models.GroupRef) models.GroupResult {
	if txn := newrelic.FromContext(ctx); txn != nil {
		segment := txn.StartSegment("dashboard.fetchGroup")
		segment.AddAttribute("group_id", ref.ID)
		defer segment.End()
	}

	if s.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()
	}

	start := time.Now()
	group, err := s.groups.GetGroupSnapshot(ctx, ref.ID)
	groupFetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		groupFetchTotal.WithLabelValues("failed").Inc()
		slog.WarnContext(ctx, "Group fetch failed, excluding from dashboard",
			"group_id", ref.ID,
			"error", err)
		return models.GroupResult{Ref: ref, Err: err}
	}

	groupFetchTotal.WithLabelValues("ok").Inc()
	return models.GroupResult{Ref: ref, Group: group}
}

// BuildDashboard aggregates already-fetched group results for viewerID.
// Failed results are reported in FailedGroupIDs and otherwise ignored.
func BuildDashboard(results []models.GroupResult, viewerID int64) models.Dashboard {
	dashboard := models.Dashboard{
		ViewerID:       viewerID,
		Distribution:   []models.DistributionEntry{},
		Activity:       []models.ActivityEntry{},
		Groups:         []models.GroupSummary{},
		FailedGroupIDs: []int64{},
	}

	var youOwe, owedToYou []float64
	var volumes []models.DistributionEntry
	var activity []models.ActivityEntry

	for _, result := range results {
		if result.Err != nil || result.Group == nil {
			dashboard.FailedGroupIDs = append(dashboard.FailedGroupIDs, result.Ref.ID)
			continue
		}

		group := result.Group
		groupID := group.ID
		if groupID == 0 {
			groupID = result.Ref.ID
		}
		groupName := utils.FirstNonEmpty(group.Name, result.Ref.Name)

		balances, source := AggregateGroupBalancesWithSource(group)
		transfers := ComputeSettlements(balances)

		var groupOwe, groupOwed []float64
		for _, transfer := range transfers {
			if transfer.From == viewerID {
				groupOwe = append(groupOwe, transfer.Amount)
			}
			if transfer.To == viewerID {
				groupOwed = append(groupOwed, transfer.Amount)
			}
		}
		youOwe = append(youOwe, groupOwe...)
		owedToYou = append(owedToYou, groupOwed...)

		total := GroupTotal(group)
		volumes = append(volumes, models.DistributionEntry{GroupID: groupID, GroupName: groupName, Amount: total})

		dashboard.Groups = append(dashboard.Groups, models.GroupSummary{
			GroupID:     groupID,
			GroupName:   groupName,
			TotalAmount: total,
			YouOwe:      utils.SumMoney(groupOwe...),
			OwedToYou:   utils.SumMoney(groupOwed...),
			Source:      source,
			Transfers:   transfers,
		})

		activity = append(activity, groupActivity(group, groupID, groupName, viewerID)...)
	}

	dashboard.Summary.YouOwe = utils.SumMoney(youOwe...)
	dashboard.Summary.OwedToYou = utils.SumMoney(owedToYou...)
	dashboard.Summary.Net = utils.RoundMoney(dashboard.Summary.OwedToYou - dashboard.Summary.YouOwe)
	dashboard.Distribution = CondenseDistribution(volumes)
	dashboard.Activity = RecentActivity(activity, utils.ActivityLimit)

	return dashboard
}

// GroupTotal is the group's expense volume: the explicit total, else the sum
// of aggregated totals, else the sum of expense amounts.
func GroupTotal(group *models.Group) float64 {
	if group.TotalAmount != nil {
		return utils.RoundMoney(*group.TotalAmount)
	}

	var aggregated []float64
	for _, share := range group.AggregatedShares {
		if share.TotalAmount != nil {
			aggregated = append(aggregated, *share.TotalAmount)
		}
	}
	if len(aggregated) > 0 {
		return utils.SumMoney(aggregated...)
	}

	amounts := make([]float64, 0, len(group.Expenses))
	for _, expense := range group.Expenses {
		amounts = append(amounts, expense.Amount)
	}
	return utils.SumMoney(amounts...)
}

// CondenseDistribution sorts volumes descending, drops negligible ones and,
// past DistributionMaxEntries, folds the tail into one "Other" entry (id 0).
// Percentages are of the displayed total.
func CondenseDistribution(volumes []models.DistributionEntry) []models.DistributionEntry {
	entries := []models.DistributionEntry{}
	for _, entry := range volumes {
		if entry.Amount > utils.NegligibleThreshold {
			entries = append(entries, entry)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Amount > entries[j].Amount
	})

	amounts := make([]float64, len(entries))
	for i, entry := range entries {
		amounts[i] = entry.Amount
	}
	total := utils.SumMoney(amounts...)
	if total <= 0 {
		return entries
	}

	percentage := func(amount float64) float64 {
		return utils.RoundMoney(amount / total * 100)
	}

	if len(entries) > utils.DistributionMaxEntries {
		rest := utils.SumMoney(amounts[utils.DistributionKeepTop:]...)
		entries = append(entries[:utils.DistributionKeepTop:utils.DistributionKeepTop], models.DistributionEntry{
			GroupID:   0,
			GroupName: "Other",
			Amount:    rest,
		})
	}

	for i := range entries {
		entries[i].Percentage = percentage(entries[i].Amount)
	}
	return entries
}

// RecentActivity sorts entries newest first, undated last, and keeps limit
func RecentActivity(entries []models.ActivityEntry, limit int) []models.ActivityEntry {
	sorted := make([]models.ActivityEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return activityTime(sorted[i]) > activityTime(sorted[j])
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

func activityTime(entry models.ActivityEntry) int64 {
	if entry.CreatedAt == nil {
		return 0
	}
	return entry.CreatedAt.UnixMilli()
}

func groupActivity(group *models.Group, groupID int64, groupName string, viewerID int64) []models.ActivityEntry {
	entries := make([]models.ActivityEntry, 0, len(group.Expenses))
	for _, expense := range group.Expenses {
		entry := models.ActivityEntry{
			ID:          strconv.FormatInt(groupID, 10) + "-" + strconv.FormatInt(expense.ID, 10),
			GroupID:     groupID,
			GroupName:   groupName,
			ExpenseID:   expense.ID,
			Description: expense.Description,
			Amount:      utils.RoundMoney(expense.Amount),
			PayerID:     expense.PayerID,
			PayerName:   utils.FirstNonEmpty(expense.PayerName, group.MemberName(expense.PayerID)),
			Status:      models.ActivityNeutral,
		}
		if !expense.CreatedAt.IsZero() {
			createdAt := expense.CreatedAt
			entry.CreatedAt = &createdAt
		}

		share, hasShare := expense.ShareFor(viewerID)
		if hasShare {
			entry.ViewerShare = utils.RoundMoney(share.Amount)
		}
		switch {
		case expense.PayerID != 0 && expense.PayerID == viewerID:
			entry.Status = models.ActivityOwedToYou
		case hasShare && share.Amount > utils.NegligibleThreshold:
			entry.Status = models.ActivityYouOwe
		}

		entries = append(entries, entry)
	}
	return entries
}
