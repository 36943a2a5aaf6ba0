package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salescrm/crm_backend/models"
)

func deal(agent, team, tier string, amount interface{}, created time.Time) models.Deal {
	return models.Deal{
		SalesAgentName: agent,
		SalesTeam:      team,
		ServiceTier:    tier,
		AmountPaid:     amount,
		CreatedAt:      created,
	}
}

func callback(creator, status string) models.Callback {
	return models.Callback{
		CreatedByID: creator,
		CreatedBy:   creator,
		Status:      status,
	}
}

func TestBuildOverviewEmpty(t *testing.T) {
	overview := BuildOverview(nil, nil)

	assert.Equal(t, 0, overview.TotalDeals)
	assert.Equal(t, 0.0, overview.TotalRevenue)
	assert.Equal(t, 0.0, overview.AverageDealSize)
	assert.Equal(t, 0.0, overview.ConversionRate)
}

func TestBuildOverviewMixedAmounts(t *testing.T) {
	now := time.Now()
	deals := []models.Deal{
		deal("a", "", "", "100", now),
		deal("b", "", "", 50.0, now),
		deal("c", "", "", "not-a-number", now),
	}

	overview := BuildOverview(deals, nil)

	assert.Equal(t, 3, overview.TotalDeals)
	assert.Equal(t, 150.0, overview.TotalRevenue)
	assert.Equal(t, 50.0, overview.AverageDealSize)
}

func TestBuildOverviewConversionRate(t *testing.T) {
	callbacks := []models.Callback{
		callback("u1", models.CallbackStatusCompleted),
		callback("u1", models.CallbackStatusCompleted),
		callback("u2", models.CallbackStatusPending),
		callback("u3", models.CallbackStatusCancelled),
	}

	overview := BuildOverview(nil, callbacks)

	assert.Equal(t, 4, overview.TotalCallbacks)
	assert.Equal(t, 1, overview.PendingCallbacks)
	assert.Equal(t, 2, overview.CompletedCallbacks)
	assert.Equal(t, 50.0, overview.ConversionRate)
	assert.GreaterOrEqual(t, overview.ConversionRate, 0.0)
	assert.LessOrEqual(t, overview.ConversionRate, 100.0)
}

func TestRollupDealsByAgentSortsByRevenue(t *testing.T) {
	now := time.Now()
	deals := []models.Deal{
		deal("alice", "", "", 100.0, now),
		deal("bob", "", "", 300.0, now),
		deal("alice", "", "", 50.0, now),
	}

	entries := RollupDealsByAgent(deals)

	require.Len(t, entries, 2)
	assert.Equal(t, "bob", entries[0].Key)
	assert.Equal(t, 300.0, entries[0].Revenue)
	assert.Equal(t, "alice", entries[1].Key)
	assert.Equal(t, 150.0, entries[1].Revenue)
	assert.Equal(t, 2, entries[1].Count)
}

func TestRollupDealsByAgentCapsAtTen(t *testing.T) {
	now := time.Now()
	deals := make([]models.Deal, 0, 15)
	for i := 0; i < 15; i++ {
		deals = append(deals, deal(string(rune('a'+i)), "", "", float64(i+1), now))
	}

	entries := RollupDealsByAgent(deals)

	assert.Len(t, entries, 10)
	for i := 1; i < len(entries); i++ {
		assert.GreaterOrEqual(t, entries[i-1].Revenue, entries[i].Revenue)
	}
}

func TestRollupDealsByAgentMissingAgent(t *testing.T) {
	now := time.Now()
	deals := []models.Deal{
		{AmountPaid: 10.0, CreatedAt: now},
		{SalesAgentID: "id-7", AmountPaid: 20.0, CreatedAt: now},
	}

	entries := RollupDealsByAgent(deals)

	require.Len(t, entries, 2)
	assert.Equal(t, "id-7", entries[0].Key)
	assert.Equal(t, "Unknown Agent", entries[1].Key)
}

func TestRollupDealsTieKeepsInputOrder(t *testing.T) {
	now := time.Now()
	deals := []models.Deal{
		deal("first", "", "", 100.0, now),
		deal("second", "", "", 100.0, now),
	}

	entries := RollupDealsByAgent(deals)

	require.Len(t, entries, 2)
	assert.Equal(t, "first", entries[0].Key)
	assert.Equal(t, "second", entries[1].Key)
}

func TestRollupDealsByServiceUnknownBucket(t *testing.T) {
	now := time.Now()
	deals := []models.Deal{
		deal("a", "", "premium", 10.0, now),
		deal("b", "", "", 5.0, now),
	}

	entries := RollupDealsByService(deals)

	require.Len(t, entries, 2)
	assert.Equal(t, "premium", entries[0].Key)
	assert.Equal(t, "Unknown", entries[1].Key)
}

func TestDailyTrendAscendingAndTrailing(t *testing.T) {
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	deals := make([]models.Deal, 0, 40)
	for i := 0; i < 40; i++ {
		deals = append(deals, deal("a", "", "", 10.0, base.AddDate(0, 0, i)))
	}

	points := DailyTrend(deals)

	require.Len(t, points, 30)
	for i := 1; i < len(points); i++ {
		assert.Less(t, points[i-1].Date, points[i].Date)
	}
	// earliest 10 days fell off
	assert.Equal(t, "2025-01-11", points[0].Date)
}

func TestDailyTrendZeroTimestamp(t *testing.T) {
	deals := []models.Deal{
		{AmountPaid: 5.0},
	}

	points := DailyTrend(deals)

	require.Len(t, points, 1)
	assert.Equal(t, "Unknown", points[0].Date)
}

func TestDailyTrendUnknownNeverDisplacesDatedDays(t *testing.T) {
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	deals := []models.Deal{
		{AmountPaid: 5.0}, // no timestamp
	}
	for i := 0; i < 35; i++ {
		deals = append(deals, deal("a", "", "", 10.0, base.AddDate(0, 0, i)))
	}

	points := DailyTrend(deals)

	// pinned unknown bucket plus the full trailing window
	require.Len(t, points, 31)
	assert.Equal(t, "Unknown", points[0].Date)
	assert.Equal(t, 1, points[0].Count)
	// the dated window still holds the newest 30 days
	assert.Equal(t, "2025-01-06", points[1].Date)
	assert.Equal(t, "2025-02-04", points[30].Date)
}

func TestTopCallbackCreatorsTopThree(t *testing.T) {
	callbacks := []models.Callback{}
	counts := map[string]int{"u1": 10, "u2": 8, "u3": 8, "u4": 3, "u5": 1}
	for _, creator := range []string{"u1", "u2", "u3", "u4", "u5"} {
		for i := 0; i < counts[creator]; i++ {
			callbacks = append(callbacks, callback(creator, models.CallbackStatusPending))
		}
	}

	entries := TopCallbackCreators(callbacks)

	require.Len(t, entries, 3)
	assert.Equal(t, []int{10, 8, 8}, []int{entries[0].Total, entries[1].Total, entries[2].Total})
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, 2, entries[1].Rank)
	assert.Equal(t, 3, entries[2].Rank)
	// tie between u2 and u3 keeps input order
	assert.Equal(t, "u2", entries[1].CreatorID)
	assert.Equal(t, "u3", entries[2].CreatorID)
}

func TestTopCallbackCreatorsSuccessRate(t *testing.T) {
	callbacks := []models.Callback{
		callback("u1", models.CallbackStatusCompleted),
		callback("u1", models.CallbackStatusCompleted),
		callback("u1", models.CallbackStatusPending),
		callback("u1", models.CallbackStatusCancelled),
	}

	entries := TopCallbackCreators(callbacks)

	require.Len(t, entries, 1)
	assert.Equal(t, 4, entries[0].Total)
	assert.Equal(t, 2, entries[0].Completed)
	assert.Equal(t, 1, entries[0].Pending)
	assert.Equal(t, 50.0, entries[0].SuccessRate)
}

func TestBuildTargetSummary(t *testing.T) {
	targets := []models.Target{
		{AgentID: "u1", TargetAmount: 100, CurrentAmount: 50},
		{AgentID: "u2", TargetAmount: 100, CurrentAmount: 100},
		{AgentID: "u3", TargetAmount: 0, CurrentAmount: 40},
	}

	summary := BuildTargetSummary(targets)

	require.Len(t, summary.Progress, 3)
	assert.Equal(t, 3, summary.TotalTargets)
	assert.Equal(t, 1, summary.Achieved)

	assert.Equal(t, 50.0, summary.Progress[0].Percentage)
	assert.False(t, summary.Progress[0].Achieved)

	assert.Equal(t, 100.0, summary.Progress[1].Percentage)
	assert.True(t, summary.Progress[1].Achieved)

	// zero target never divides and never counts as achieved
	assert.Equal(t, 0.0, summary.Progress[2].Percentage)
	assert.False(t, summary.Progress[2].Achieved)
}

func TestAggregateIsIdempotent(t *testing.T) {
	now := time.Now()
	sets := &RecordSets{
		Deals: []models.Deal{
			deal("alice", "alpha", "premium", "250", now),
			deal("bob", "beta", "basic", 100.0, now.AddDate(0, 0, -1)),
		},
		Callbacks: []models.Callback{
			callback("u1", models.CallbackStatusCompleted),
			callback("u2", models.CallbackStatusPending),
		},
		Targets: []models.Target{
			{AgentID: "u1", TargetAmount: 500, CurrentAmount: 250},
		},
	}

	first := Aggregate(sets)
	second := Aggregate(sets)

	assert.Equal(t, first, second)
}
