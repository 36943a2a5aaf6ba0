package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salescrm/crm_backend/models"
)

func TestAssembleDashboardEmptySets(t *testing.T) {
	sets := &RecordSets{
		Deals:     []models.Deal{},
		Callbacks: []models.Callback{},
		Targets:   []models.Target{},
		Users:     []models.User{},
	}

	analytics := AssembleDashboard(sets)

	require.NotNil(t, analytics)
	assert.NotNil(t, analytics.Charts.DealsByAgent)
	assert.NotNil(t, analytics.Charts.DailyTrend)
	assert.NotNil(t, analytics.Charts.TopCreators)
	assert.NotNil(t, analytics.Tables.RecentDeals)
	assert.NotNil(t, analytics.Targets.Progress)
}

func TestAssembleDashboardAttachesTables(t *testing.T) {
	now := time.Now()
	sets := &RecordSets{
		Deals: []models.Deal{
			deal("alice", "alpha", "premium", 100.0, now),
		},
		Callbacks: []models.Callback{
			callback("u1", models.CallbackStatusPending),
		},
		Targets: []models.Target{},
	}

	analytics := AssembleDashboard(sets)

	require.NotNil(t, analytics)
	assert.Len(t, analytics.Tables.RecentDeals, 1)
	assert.Len(t, analytics.Tables.RecentCallbacks, 1)
	assert.Equal(t, 1, analytics.Overview.TotalDeals)
}

func TestEmptyAnalyticsKeepsRawCounts(t *testing.T) {
	sets := &RecordSets{
		Deals:     make([]models.Deal, 5),
		Callbacks: make([]models.Callback, 3),
	}

	analytics := EmptyAnalytics(sets)

	assert.Equal(t, 5, analytics.Overview.TotalDeals)
	assert.Equal(t, 3, analytics.Overview.TotalCallbacks)
	assert.Equal(t, 0.0, analytics.Overview.TotalRevenue)
	assert.Empty(t, analytics.Charts.DealsByAgent)
}

func TestRecentDealsNewestFirstCapped(t *testing.T) {
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	deals := make([]models.Deal, 0, 15)
	for i := 0; i < 15; i++ {
		deals = append(deals, models.Deal{
			CustomerName: string(rune('a' + i)),
			CreatedAt:    base.AddDate(0, 0, i),
		})
	}

	recent := RecentDeals(deals, 10)

	require.Len(t, recent, 10)
	for i := 1; i < len(recent); i++ {
		assert.True(t, !recent[i-1].CreatedAt.Before(recent[i].CreatedAt))
	}
	// newest deal is day 14
	assert.Equal(t, base.AddDate(0, 0, 14), recent[0].CreatedAt)
	// input untouched
	assert.Equal(t, base, deals[0].CreatedAt)
}

func TestRecentCallbacksShorterThanLimit(t *testing.T) {
	callbacks := []models.Callback{
		{CustomerName: "x", CreatedAt: time.Now()},
	}

	recent := RecentCallbacks(callbacks, 10)
	assert.Len(t, recent, 1)
}
