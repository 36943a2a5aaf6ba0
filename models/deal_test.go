package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDealNormalizeMergesAliases(t *testing.T) {
	created := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	d := Deal{
		AltAmountPaid:   "250",
		AltCustomerName: "Acme",
		AltSalesAgentID: "u1",
		AltSalesTeam:    "alpha",
		AltServiceTier:  "premium",
		AltCreatedAt:    created,
	}

	d.Normalize()

	assert.Equal(t, "250", d.AmountPaid)
	assert.Equal(t, "Acme", d.CustomerName)
	assert.Equal(t, "u1", d.SalesAgentID)
	assert.Equal(t, "alpha", d.SalesTeam)
	assert.Equal(t, "premium", d.ServiceTier)
	assert.Equal(t, created, d.CreatedAt)

	// aliases cleared so they never round-trip
	assert.Nil(t, d.AltAmountPaid)
	assert.Empty(t, d.AltCustomerName)
	assert.True(t, d.AltCreatedAt.IsZero())
}

func TestDealNormalizeCanonicalWins(t *testing.T) {
	d := Deal{
		CustomerName:    "Canonical",
		AltCustomerName: "Legacy",
		AmountPaid:      100.0,
		AltAmountPaid:   "999",
	}

	d.Normalize()

	assert.Equal(t, "Canonical", d.CustomerName)
	assert.Equal(t, 100.0, d.AmountPaid)
}

func TestCallbackNormalize(t *testing.T) {
	cb := Callback{
		AltCustomerName: "Acme",
		AltCreatedByID:  "u2",
		AltCreatedBy:    "Jamie",
	}

	cb.Normalize()

	assert.Equal(t, "Acme", cb.CustomerName)
	assert.Equal(t, "u2", cb.CreatedByID)
	assert.Equal(t, "Jamie", cb.CreatedBy)
}

func TestTargetNormalizeKeepsAmountAliases(t *testing.T) {
	tg := Target{
		AltAgentID:      "u1",
		AltTargetAmount: "5000",
	}

	tg.Normalize()

	assert.Equal(t, "u1", tg.AgentID)
	// amount aliases are interface{} values coerced later in the pipeline
	assert.Equal(t, "5000", tg.AltTargetAmount)
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleManager))
	assert.True(t, ValidRole(RoleSalesman))
	assert.True(t, ValidRole(RoleTeamLeader))
	assert.False(t, ValidRole("admin"))
	assert.False(t, ValidRole(""))
}

func TestNotificationIsReadBy(t *testing.T) {
	n := Notification{ReadBy: map[string]bool{"u1": true}}

	assert.True(t, n.IsReadBy("u1"))
	assert.False(t, n.IsReadBy("u2"))

	empty := Notification{}
	assert.False(t, empty.IsReadBy("u1"))
}
