// services/assembler.go
package services

import (
	"log"
	"sort"

	"github.com/salescrm/crm_backend/models"
)

// recentLimit bounds the raw-record samples in the tables section.
const recentLimit = 10

// AssembleDashboard produces the complete analytics payload for one request.
// If aggregation panics on unexpected data it falls back to a fully-shaped
// zero payload built from the raw record counts, so the response shape is
// always stable for the client.
func AssembleDashboard(sets *RecordSets) (analytics *models.DashboardAnalytics) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Aggregation failed, substituting empty analytics: %v", r)
			analytics = EmptyAnalytics(sets)
		}
	}()

	analytics = Aggregate(sets)
	analytics.Tables = models.Tables{
		RecentDeals:     RecentDeals(sets.Deals, recentLimit),
		RecentCallbacks: RecentCallbacks(sets.Callbacks, recentLimit),
	}
	return analytics
}

// EmptyAnalytics returns a zero-valued but fully-populated payload. The raw
// record counts survive even when the metric computation did not.
func EmptyAnalytics(sets *RecordSets) *models.DashboardAnalytics {
	overview := models.Overview{}
	if sets != nil {
		overview.TotalDeals = len(sets.Deals)
		overview.TotalCallbacks = len(sets.Callbacks)
	}
	return &models.DashboardAnalytics{
		Overview: overview,
		Charts: models.Charts{
			DealsByAgent:   []models.RollupEntry{},
			DealsByService: []models.RollupEntry{},
			DealsByTeam:    []models.RollupEntry{},
			DailyTrend:     []models.DailyPoint{},
			TopCreators:    []models.LeaderboardEntry{},
		},
		Tables: models.Tables{
			RecentDeals:     []models.Deal{},
			RecentCallbacks: []models.Callback{},
		},
		Targets: models.TargetSummary{
			Progress: []models.TargetProgress{},
		},
	}
}

// RecentDeals returns up to n deals sorted by creation time descending.
// The input slice is not modified.
func RecentDeals(deals []models.Deal, n int) []models.Deal {
	recent := make([]models.Deal, len(deals))
	copy(recent, deals)
	sort.SliceStable(recent, func(a, b int) bool {
		return recent[a].CreatedAt.After(recent[b].CreatedAt)
	})
	if len(recent) > n {
		recent = recent[:n]
	}
	return recent
}

// RecentCallbacks returns up to n callbacks sorted by creation time descending.
func RecentCallbacks(callbacks []models.Callback, n int) []models.Callback {
	recent := make([]models.Callback, len(callbacks))
	copy(recent, callbacks)
	sort.SliceStable(recent, func(a, b int) bool {
		return recent[a].CreatedAt.After(recent[b].CreatedAt)
	})
	if len(recent) > n {
		recent = recent[:n]
	}
	return recent
}
