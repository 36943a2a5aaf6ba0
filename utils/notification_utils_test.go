package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/salescrm/crm_backend/models"
)

func TestOverdueCallbackFilter(t *testing.T) {
	now := time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)

	filter := OverdueCallbackFilter(now)

	assert.Equal(t, models.CallbackStatusPending, filter["status"])

	scheduled, ok := filter["scheduledDate"].(bson.M)
	require.True(t, ok)
	// strictly before today; a callback scheduled for today is not overdue yet
	assert.Equal(t, "2025-06-15", scheduled["$lt"])
	// records without a scheduled date can never go overdue
	assert.Equal(t, "", scheduled["$ne"])

	// already-notified callbacks stay out of the sweep
	assert.Equal(t, bson.M{"$ne": true}, filter["overdueNotified"])
}
