// models/deal.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Deal model. Upstream importers write a mix of camelCase and snake_case
// field names, so every aliased field is decoded twice and merged by
// Normalize before any aggregation runs.
type Deal struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	CustomerName   string             `json:"customerName" bson:"customerName"`
	PhoneNumber    string             `json:"phoneNumber,omitempty" bson:"phoneNumber,omitempty"`
	Email          string             `json:"email,omitempty" bson:"email,omitempty"`
	AmountPaid     interface{}        `json:"amountPaid" bson:"amountPaid"`
	SalesAgentID   string             `json:"salesAgentId" bson:"salesAgentId"`
	SalesAgentName string             `json:"salesAgentName,omitempty" bson:"salesAgentName,omitempty"`
	ClosingAgentID string             `json:"closingAgentId,omitempty" bson:"closingAgentId,omitempty"`
	ClosingAgent   string             `json:"closingAgentName,omitempty" bson:"closingAgentName,omitempty"`
	SalesTeam      string             `json:"salesTeam,omitempty" bson:"salesTeam,omitempty"`
	ServiceTier    string             `json:"serviceTier,omitempty" bson:"serviceTier,omitempty"`
	ProgramType    string             `json:"programType,omitempty" bson:"programType,omitempty"`
	DurationMonths int                `json:"durationMonths,omitempty" bson:"durationMonths,omitempty"`
	SignupDate     string             `json:"signupDate,omitempty" bson:"signupDate,omitempty"`
	Status         string             `json:"status,omitempty" bson:"status,omitempty"`
	Stage          string             `json:"stage,omitempty" bson:"stage,omitempty"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`

	// snake_case aliases written by the legacy importer, never written by
	// this service, merged away by Normalize
	AltAmountPaid     interface{} `json:"-" bson:"amount_paid,omitempty"`
	AltCustomerName   string      `json:"-" bson:"customer_name,omitempty"`
	AltSalesAgentID   string      `json:"-" bson:"sales_agent_id,omitempty"`
	AltSalesAgentName string      `json:"-" bson:"sales_agent,omitempty"`
	AltClosingAgentID string      `json:"-" bson:"closing_agent_id,omitempty"`
	AltClosingAgent   string      `json:"-" bson:"closing_agent,omitempty"`
	AltSalesTeam      string      `json:"-" bson:"sales_team,omitempty"`
	AltServiceTier    string      `json:"-" bson:"service_tier,omitempty"`
	AltProgramType    string      `json:"-" bson:"program_type,omitempty"`
	AltSignupDate     string      `json:"-" bson:"signup_date,omitempty"`
	AltCreatedAt      time.Time   `json:"-" bson:"created_at,omitempty"`
}

// Normalize merges the snake_case aliases into the canonical fields.
// Canonical values win when both are present.
func (d *Deal) Normalize() {
	if d.AmountPaid == nil {
		d.AmountPaid = d.AltAmountPaid
	}
	if d.CustomerName == "" {
		d.CustomerName = d.AltCustomerName
	}
	if d.SalesAgentID == "" {
		d.SalesAgentID = d.AltSalesAgentID
	}
	if d.SalesAgentName == "" {
		d.SalesAgentName = d.AltSalesAgentName
	}
	if d.ClosingAgentID == "" {
		d.ClosingAgentID = d.AltClosingAgentID
	}
	if d.ClosingAgent == "" {
		d.ClosingAgent = d.AltClosingAgent
	}
	if d.SalesTeam == "" {
		d.SalesTeam = d.AltSalesTeam
	}
	if d.ServiceTier == "" {
		d.ServiceTier = d.AltServiceTier
	}
	if d.ProgramType == "" {
		d.ProgramType = d.AltProgramType
	}
	if d.SignupDate == "" {
		d.SignupDate = d.AltSignupDate
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = d.AltCreatedAt
	}
	d.AltAmountPaid = nil
	d.AltCustomerName = ""
	d.AltSalesAgentID = ""
	d.AltSalesAgentName = ""
	d.AltClosingAgentID = ""
	d.AltClosingAgent = ""
	d.AltSalesTeam = ""
	d.AltServiceTier = ""
	d.AltProgramType = ""
	d.AltSignupDate = ""
	d.AltCreatedAt = time.Time{}
}

// CreateDealRequest is the request body for creating a deal
type CreateDealRequest struct {
	CustomerName   string      `json:"customerName" validate:"required"`
	PhoneNumber    string      `json:"phoneNumber,omitempty"`
	Email          string      `json:"email,omitempty"`
	AmountPaid     interface{} `json:"amountPaid" validate:"required"`
	SalesAgentID   string      `json:"salesAgentId" validate:"required"`
	SalesAgentName string      `json:"salesAgentName,omitempty"`
	ClosingAgentID string      `json:"closingAgentId,omitempty"`
	ClosingAgent   string      `json:"closingAgentName,omitempty"`
	SalesTeam      string      `json:"salesTeam,omitempty"`
	ServiceTier    string      `json:"serviceTier,omitempty"`
	ProgramType    string      `json:"programType,omitempty"`
	DurationMonths int         `json:"durationMonths,omitempty"`
	SignupDate     string      `json:"signupDate,omitempty"`
}

// UpdateDealStageRequest is the request body for status/stage updates
type UpdateDealStageRequest struct {
	Status string `json:"status,omitempty"`
	Stage  string `json:"stage,omitempty"`
}
