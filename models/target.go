// models/target.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Target is a period-scoped revenue and deal-count goal for one agent.
// Amounts written by the legacy importer may arrive as strings; the fetcher
// coerces the Alt values into the float fields right after decode.
type Target struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AgentID       string             `json:"agentId" bson:"agentId"`
	AgentName     string             `json:"agentName,omitempty" bson:"agentName,omitempty"`
	ManagerID     string             `json:"managerId,omitempty" bson:"managerId,omitempty"`
	Month         int                `json:"month" bson:"month"`
	Year          int                `json:"year" bson:"year"`
	TargetAmount  float64            `json:"targetAmount" bson:"targetAmount"`
	TargetDeals   int                `json:"targetDeals" bson:"targetDeals"`
	CurrentAmount float64            `json:"currentAmount" bson:"currentAmount"`
	CurrentDeals  int                `json:"currentDeals" bson:"currentDeals"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`

	// legacy aliases
	AltAgentID       string      `json:"-" bson:"agent_id,omitempty"`
	AltAgentName     string      `json:"-" bson:"agent_name,omitempty"`
	AltTargetAmount  interface{} `json:"-" bson:"target_amount,omitempty"`
	AltCurrentAmount interface{} `json:"-" bson:"current_amount,omitempty"`
	AltCreatedAt     time.Time   `json:"-" bson:"created_at,omitempty"`
}

// Normalize merges the legacy string aliases into the canonical fields.
// The amount aliases are interface{} values and are coerced by the fetcher.
func (t *Target) Normalize() {
	if t.AgentID == "" {
		t.AgentID = t.AltAgentID
	}
	if t.AgentName == "" {
		t.AgentName = t.AltAgentName
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = t.AltCreatedAt
	}
	t.AltAgentID = ""
	t.AltAgentName = ""
	t.AltCreatedAt = time.Time{}
}

// CreateTargetRequest is the request body for creating a target
type CreateTargetRequest struct {
	AgentID      string  `json:"agentId" validate:"required"`
	AgentName    string  `json:"agentName,omitempty"`
	Month        int     `json:"month" validate:"required,min=1,max=12"`
	Year         int     `json:"year" validate:"required"`
	TargetAmount float64 `json:"targetAmount" validate:"required,gte=0"`
	TargetDeals  int     `json:"targetDeals" validate:"gte=0"`
}
