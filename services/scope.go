// services/scope.go
package services

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/salescrm/crm_backend/models"
)

// Scope holds the per-collection visibility predicates for one request.
// A nil predicate means no restriction.
type Scope struct {
	Role        string
	UserID      string
	ManagedTeam string
	Deals       bson.M
	Callbacks   bson.M
	Targets     bson.M
	AllowUsers  bool
}

// ValidationError marks a bad request parameter; handlers answer it with 400.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ResolveScope computes the record visibility for a role.
//   - manager sees everything, including the users collection
//   - salesman sees deals they sold or closed, their own callbacks and targets
//   - team_leader sees their own records plus their managed team's; without a
//     managed team they fall back to salesman-style self-only visibility
func ResolveScope(role, userID, managedTeam string) (*Scope, error) {
	if role == "" {
		return nil, &ValidationError{Field: "userRole", Reason: "role is required"}
	}
	if !models.ValidRole(role) {
		return nil, &ValidationError{Field: "userRole", Reason: "unknown role " + role}
	}
	if role != models.RoleManager && userID == "" {
		return nil, &ValidationError{Field: "userId", Reason: "userId is required for role " + role}
	}

	scope := &Scope{Role: role, UserID: userID, ManagedTeam: managedTeam}

	switch role {
	case models.RoleManager:
		scope.AllowUsers = true

	case models.RoleSalesman:
		scope.Deals = bson.M{"$or": []bson.M{
			{"salesAgentId": userID},
			{"closingAgentId": userID},
		}}
		scope.Callbacks = bson.M{"salesAgentId": userID}
		scope.Targets = bson.M{"agentId": userID}

	case models.RoleTeamLeader:
		if managedTeam != "" {
			scope.Deals = bson.M{"$or": []bson.M{
				{"salesAgentId": userID},
				{"salesTeam": managedTeam},
			}}
			scope.Callbacks = bson.M{"$or": []bson.M{
				{"salesAgentId": userID},
				{"salesTeam": managedTeam},
			}}
			scope.Targets = bson.M{"$or": []bson.M{
				{"agentId": userID},
				{"managerId": userID},
			}}
		} else {
			scope.Deals = bson.M{"$or": []bson.M{
				{"salesAgentId": userID},
				{"closingAgentId": userID},
			}}
			scope.Callbacks = bson.M{"salesAgentId": userID}
			scope.Targets = bson.M{"agentId": userID}
		}
	}

	return scope, nil
}

// MatchesDeal applies the deal predicate to an in-memory record. Used by the
// aggregation tests and by callers that filter already-fetched slices.
func (s *Scope) MatchesDeal(d *models.Deal) bool {
	switch s.Role {
	case models.RoleManager:
		return true
	case models.RoleSalesman:
		return d.SalesAgentID == s.UserID || d.ClosingAgentID == s.UserID
	case models.RoleTeamLeader:
		if s.ManagedTeam != "" {
			return d.SalesAgentID == s.UserID || d.SalesTeam == s.ManagedTeam
		}
		return d.SalesAgentID == s.UserID || d.ClosingAgentID == s.UserID
	}
	return false
}

// FilterDeals returns the subset of deals visible under the scope.
func (s *Scope) FilterDeals(deals []models.Deal) []models.Deal {
	if s.Role == models.RoleManager {
		return deals
	}
	out := make([]models.Deal, 0, len(deals))
	for i := range deals {
		if s.MatchesDeal(&deals[i]) {
			out = append(out, deals[i])
		}
	}
	return out
}
