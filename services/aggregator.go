// services/aggregator.go
//
// Pure aggregation over already-fetched, already-scoped record sets.
// No I/O happens here; running any function twice on the same input yields
// identical output.
package services

import (
	"sort"

	"github.com/salescrm/crm_backend/models"
	"github.com/salescrm/crm_backend/utils"
)

const (
	topAgents        = 10
	topCreators      = 3
	trailingDays     = 30
	unknownBucket    = "Unknown"
	unknownAgentName = "Unknown Agent"
)

// dealAmount is the single defensive coercion point for deal amounts.
func dealAmount(d *models.Deal) float64 {
	return utils.ParseAmount(d.AmountPaid)
}

// BuildOverview computes the scalar KPIs. Division-by-zero cases yield 0.
func BuildOverview(deals []models.Deal, callbacks []models.Callback) models.Overview {
	overview := models.Overview{
		TotalDeals:     len(deals),
		TotalCallbacks: len(callbacks),
	}

	for i := range deals {
		overview.TotalRevenue += dealAmount(&deals[i])
	}
	if overview.TotalDeals > 0 {
		overview.AverageDealSize = overview.TotalRevenue / float64(overview.TotalDeals)
	}

	for i := range callbacks {
		switch callbacks[i].Status {
		case models.CallbackStatusPending:
			overview.PendingCallbacks++
		case models.CallbackStatusCompleted:
			overview.CompletedCallbacks++
		}
	}
	if overview.TotalCallbacks > 0 {
		overview.ConversionRate = float64(overview.CompletedCallbacks) / float64(overview.TotalCallbacks) * 100
	}

	return overview
}

// RollupDealsByAgent groups deals by sales agent and keeps the top 10 by
// revenue. Ties keep input order.
func RollupDealsByAgent(deals []models.Deal) []models.RollupEntry {
	entries := rollupDeals(deals, func(d *models.Deal) string {
		if d.SalesAgentName != "" {
			return d.SalesAgentName
		}
		if d.SalesAgentID != "" {
			return d.SalesAgentID
		}
		return unknownAgentName
	})
	if len(entries) > topAgents {
		entries = entries[:topAgents]
	}
	return entries
}

// RollupDealsByService groups deals by service tier, sorted by revenue.
func RollupDealsByService(deals []models.Deal) []models.RollupEntry {
	return rollupDeals(deals, func(d *models.Deal) string {
		if d.ServiceTier != "" {
			return d.ServiceTier
		}
		return unknownBucket
	})
}

// RollupDealsByTeam groups deals by sales team, sorted by revenue.
func RollupDealsByTeam(deals []models.Deal) []models.RollupEntry {
	return rollupDeals(deals, func(d *models.Deal) string {
		if d.SalesTeam != "" {
			return d.SalesTeam
		}
		return unknownBucket
	})
}

// rollupDeals accumulates count and revenue per key in first-seen order,
// then sorts descending by revenue with a stable sort.
func rollupDeals(deals []models.Deal, keyOf func(*models.Deal) string) []models.RollupEntry {
	index := map[string]int{}
	entries := []models.RollupEntry{}

	for i := range deals {
		key := keyOf(&deals[i])
		pos, ok := index[key]
		if !ok {
			pos = len(entries)
			index[key] = pos
			entries = append(entries, models.RollupEntry{Key: key})
		}
		entries[pos].Count++
		entries[pos].Revenue += dealAmount(&deals[i])
	}

	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].Revenue > entries[b].Revenue
	})
	return entries
}

// DailyTrend buckets deals by calendar day and returns the trailing 30
// buckets in ascending date order. Deals without a usable timestamp land in
// an "Unknown" bucket pinned ahead of the dated window, so they never
// displace a real day from the trailing truncation.
func DailyTrend(deals []models.Deal) []models.DailyPoint {
	index := map[string]int{}
	points := []models.DailyPoint{}
	unknown := models.DailyPoint{Date: unknownBucket}

	for i := range deals {
		if deals[i].CreatedAt.IsZero() {
			unknown.Count++
			unknown.Revenue += dealAmount(&deals[i])
			continue
		}
		day := deals[i].CreatedAt.Format("2006-01-02")
		pos, ok := index[day]
		if !ok {
			pos = len(points)
			index[day] = pos
			points = append(points, models.DailyPoint{Date: day})
		}
		points[pos].Count++
		points[pos].Revenue += dealAmount(&deals[i])
	}

	sort.SliceStable(points, func(a, b int) bool {
		return points[a].Date < points[b].Date
	})
	if len(points) > trailingDays {
		points = points[len(points)-trailingDays:]
	}
	if unknown.Count > 0 {
		points = append([]models.DailyPoint{unknown}, points...)
	}
	return points
}

// TopCallbackCreators ranks callback creators by total callbacks created
// and returns the top 3 with a 1-based rank. Creators are identified by id
// when present, otherwise by name.
func TopCallbackCreators(callbacks []models.Callback) []models.LeaderboardEntry {
	index := map[string]int{}
	entries := []models.LeaderboardEntry{}

	for i := range callbacks {
		cb := &callbacks[i]
		key := cb.CreatedByID
		if key == "" {
			key = cb.CreatedBy
		}
		if key == "" {
			key = unknownBucket
		}

		pos, ok := index[key]
		if !ok {
			pos = len(entries)
			index[key] = pos
			entries = append(entries, models.LeaderboardEntry{
				CreatorID:   cb.CreatedByID,
				CreatorName: creatorName(cb),
			})
		}
		entries[pos].Total++
		switch cb.Status {
		case models.CallbackStatusCompleted:
			entries[pos].Completed++
		case models.CallbackStatusPending:
			entries[pos].Pending++
		}
	}

	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].Total > entries[b].Total
	})
	if len(entries) > topCreators {
		entries = entries[:topCreators]
	}
	for i := range entries {
		entries[i].Rank = i + 1
		if entries[i].Total > 0 {
			entries[i].SuccessRate = float64(entries[i].Completed) / float64(entries[i].Total) * 100
		}
	}
	return entries
}

func creatorName(cb *models.Callback) string {
	if cb.CreatedBy != "" {
		return cb.CreatedBy
	}
	if cb.SalesAgentName != "" {
		return cb.SalesAgentName
	}
	return unknownAgentName
}

// BuildTargetSummary computes per-target progress. Percentage is 0 for a
// zero target; achieved means current has reached the target.
func BuildTargetSummary(targets []models.Target) models.TargetSummary {
	summary := models.TargetSummary{
		TotalTargets: len(targets),
		Progress:     make([]models.TargetProgress, 0, len(targets)),
	}

	for i := range targets {
		t := &targets[i]
		progress := models.TargetProgress{
			AgentID:       t.AgentID,
			AgentName:     t.AgentName,
			Month:         t.Month,
			Year:          t.Year,
			TargetAmount:  t.TargetAmount,
			CurrentAmount: t.CurrentAmount,
			TargetDeals:   t.TargetDeals,
			CurrentDeals:  t.CurrentDeals,
		}
		if t.TargetAmount > 0 {
			progress.Percentage = t.CurrentAmount / t.TargetAmount * 100
		}
		progress.Achieved = t.TargetAmount > 0 && t.CurrentAmount >= t.TargetAmount
		if progress.Achieved {
			summary.Achieved++
		}
		summary.Progress = append(summary.Progress, progress)
	}

	return summary
}

// Aggregate computes the full analytics payload (minus the raw-record
// tables, which the assembler attaches) from one request's record sets.
func Aggregate(sets *RecordSets) *models.DashboardAnalytics {
	return &models.DashboardAnalytics{
		Overview: BuildOverview(sets.Deals, sets.Callbacks),
		Charts: models.Charts{
			DealsByAgent:   RollupDealsByAgent(sets.Deals),
			DealsByService: RollupDealsByService(sets.Deals),
			DealsByTeam:    RollupDealsByTeam(sets.Deals),
			DailyTrend:     DailyTrend(sets.Deals),
			TopCreators:    TopCallbackCreators(sets.Callbacks),
		},
		Targets: BuildTargetSummary(sets.Targets),
	}
}
