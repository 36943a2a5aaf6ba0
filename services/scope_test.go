package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/salescrm/crm_backend/models"
)

func TestResolveScopeRejectsUnknownRole(t *testing.T) {
	_, err := ResolveScope("director", "u1", "")

	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "userRole", verr.Field)
}

func TestResolveScopeRequiresRole(t *testing.T) {
	_, err := ResolveScope("", "u1", "")
	require.Error(t, err)
}

func TestResolveScopeRequiresUserIDForNonManager(t *testing.T) {
	_, err := ResolveScope(models.RoleSalesman, "", "")
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "userId", verr.Field)
}

func TestResolveScopeManagerSeesEverything(t *testing.T) {
	scope, err := ResolveScope(models.RoleManager, "", "")

	require.NoError(t, err)
	assert.Nil(t, scope.Deals)
	assert.Nil(t, scope.Callbacks)
	assert.Nil(t, scope.Targets)
	assert.True(t, scope.AllowUsers)
}

func TestResolveScopeSalesman(t *testing.T) {
	scope, err := ResolveScope(models.RoleSalesman, "u1", "")

	require.NoError(t, err)
	assert.False(t, scope.AllowUsers)
	assert.Equal(t, bson.M{"$or": []bson.M{
		{"salesAgentId": "u1"},
		{"closingAgentId": "u1"},
	}}, scope.Deals)
	assert.Equal(t, bson.M{"salesAgentId": "u1"}, scope.Callbacks)
	assert.Equal(t, bson.M{"agentId": "u1"}, scope.Targets)
}

func TestResolveScopeTeamLeaderWithTeam(t *testing.T) {
	scope, err := ResolveScope(models.RoleTeamLeader, "u1", "alpha")

	require.NoError(t, err)
	assert.Equal(t, bson.M{"$or": []bson.M{
		{"salesAgentId": "u1"},
		{"salesTeam": "alpha"},
	}}, scope.Deals)
}

func TestResolveScopeTeamLeaderWithoutTeamFallsBackToSelf(t *testing.T) {
	scope, err := ResolveScope(models.RoleTeamLeader, "u1", "")

	require.NoError(t, err)
	assert.Equal(t, bson.M{"salesAgentId": "u1"}, scope.Callbacks)
	assert.Equal(t, bson.M{"agentId": "u1"}, scope.Targets)
}

func TestMatchesDeal(t *testing.T) {
	deals := []models.Deal{
		{SalesAgentID: "u1"},
		{ClosingAgentID: "u1"},
		{SalesAgentID: "u2", SalesTeam: "alpha"},
		{SalesAgentID: "u3", SalesTeam: "beta"},
	}

	salesman, err := ResolveScope(models.RoleSalesman, "u1", "")
	require.NoError(t, err)
	visible := salesman.FilterDeals(deals)
	assert.Len(t, visible, 2)

	leader, err := ResolveScope(models.RoleTeamLeader, "u1", "alpha")
	require.NoError(t, err)
	visible = leader.FilterDeals(deals)
	assert.Len(t, visible, 3)

	manager, err := ResolveScope(models.RoleManager, "", "")
	require.NoError(t, err)
	assert.Len(t, manager.FilterDeals(deals), 4)
}
