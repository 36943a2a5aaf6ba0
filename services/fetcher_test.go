package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/salescrm/crm_backend/models"
)

func TestDateRangeWindow(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		dateRange string
		days      int
	}{
		{RangeToday, 1},
		{RangeWeek, 7},
		{RangeMonth, 30},
		{RangeQuarter, 90},
		{RangeYear, 365},
	}

	for _, tc := range cases {
		start, bounded := DateRangeWindow(tc.dateRange, now)
		assert.True(t, bounded, tc.dateRange)
		assert.Equal(t, now.AddDate(0, 0, -tc.days), start, tc.dateRange)
	}
}

func TestDateRangeWindowUnbounded(t *testing.T) {
	now := time.Now()

	for _, dateRange := range []string{RangeAll, "", "lifetime"} {
		_, bounded := DateRangeWindow(dateRange, now)
		assert.False(t, bounded, dateRange)
	}
}

func TestBuildFilterNoWindow(t *testing.T) {
	predicate := bson.M{"salesAgentId": "u1"}

	filter := buildFilter(predicate, RangeAll, time.Now())

	assert.Equal(t, bson.M{"salesAgentId": "u1"}, filter)
	// input predicate not mutated
	assert.Len(t, predicate, 1)
}

func TestBuildFilterAddsWindowOnBothFieldNames(t *testing.T) {
	now := time.Now()
	filter := buildFilter(bson.M{"salesAgentId": "u1"}, RangeWeek, now)

	window, ok := filter["$or"].([]bson.M)
	require.True(t, ok)
	require.Len(t, window, 2)
	assert.Contains(t, window[0], "createdAt")
	assert.Contains(t, window[1], "created_at")
	assert.Equal(t, "u1", filter["salesAgentId"])
}

func TestBuildFilterCombinesExistingOrWithAnd(t *testing.T) {
	predicate := bson.M{"$or": []bson.M{
		{"salesAgentId": "u1"},
		{"closingAgentId": "u1"},
	}}

	filter := buildFilter(predicate, RangeMonth, time.Now())

	_, hasOr := filter["$or"]
	assert.False(t, hasOr)

	and, ok := filter["$and"].([]bson.M)
	require.True(t, ok)
	require.Len(t, and, 2)
	assert.Contains(t, and[0], "$or")
	assert.Contains(t, and[1], "$or")
}

func TestBuildFilterNilPredicate(t *testing.T) {
	filter := buildFilter(nil, RangeAll, time.Now())
	assert.Equal(t, bson.M{}, filter)
}

func TestFetchAllDegradesToEmptyWhenDatabaseUnreachable(t *testing.T) {
	// A client pointed at a dead address makes every fetch fail; the caller
	// must still receive fully-shaped, empty record sets rather than an error.
	client, err := mongo.Connect(context.Background(), options.Client().
		ApplyURI("mongodb://127.0.0.1:1").
		SetServerSelectionTimeout(50*time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(func() { client.Disconnect(context.Background()) })

	scope, err := ResolveScope(models.RoleManager, "", "")
	require.NoError(t, err)

	fetcher := NewFetcher(client.Database("salescrm"))
	sets := fetcher.FetchAll(context.Background(), scope, RangeAll)

	require.NotNil(t, sets)
	assert.Empty(t, sets.Deals)
	assert.Empty(t, sets.Callbacks)
	assert.Empty(t, sets.Targets)
	assert.Empty(t, sets.Users)
	assert.NotNil(t, sets.Callbacks)

	overview := BuildOverview(sets.Deals, sets.Callbacks)
	assert.Equal(t, 0, overview.TotalCallbacks)
	assert.Equal(t, 0, overview.TotalDeals)
	assert.Equal(t, 0.0, overview.TotalRevenue)
}
