// models/callback.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Callback statuses
const (
	CallbackStatusPending   = "pending"
	CallbackStatusContacted = "contacted"
	CallbackStatusCompleted = "completed"
	CallbackStatusCancelled = "cancelled"
)

// Callback model
type Callback struct {
	ID              primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	CustomerName    string              `json:"customerName" bson:"customerName"`
	PhoneNumber     string              `json:"phoneNumber,omitempty" bson:"phoneNumber,omitempty"`
	Email           string              `json:"email,omitempty" bson:"email,omitempty"`
	SalesAgentID    string              `json:"salesAgentId" bson:"salesAgentId"`
	SalesAgentName  string              `json:"salesAgentName,omitempty" bson:"salesAgentName,omitempty"`
	SalesTeam       string              `json:"salesTeam,omitempty" bson:"salesTeam,omitempty"`
	ScheduledDate   string              `json:"scheduledDate,omitempty" bson:"scheduledDate,omitempty"`
	ScheduledTime   string              `json:"scheduledTime,omitempty" bson:"scheduledTime,omitempty"`
	CallbackReason  string              `json:"callbackReason,omitempty" bson:"callbackReason,omitempty"`
	CallbackNotes   string              `json:"callbackNotes,omitempty" bson:"callbackNotes,omitempty"`
	Status          string              `json:"status" bson:"status"`
	Converted       bool                `json:"converted" bson:"converted"`
	ConvertedDealID *primitive.ObjectID `json:"convertedDealId,omitempty" bson:"convertedDealId,omitempty"`
	CreatedByID     string              `json:"createdById,omitempty" bson:"createdById,omitempty"`
	CreatedBy       string              `json:"createdBy,omitempty" bson:"createdBy,omitempty"`
	OverdueNotified bool                `json:"-" bson:"overdueNotified,omitempty"`
	CreatedAt       time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`

	// snake_case aliases, merged by Normalize
	AltCustomerName   string    `json:"-" bson:"customer_name,omitempty"`
	AltSalesAgentID   string    `json:"-" bson:"sales_agent_id,omitempty"`
	AltSalesAgentName string    `json:"-" bson:"sales_agent,omitempty"`
	AltSalesTeam      string    `json:"-" bson:"sales_team,omitempty"`
	AltScheduledDate  string    `json:"-" bson:"scheduled_date,omitempty"`
	AltCreatedByID    string    `json:"-" bson:"created_by_id,omitempty"`
	AltCreatedBy      string    `json:"-" bson:"created_by,omitempty"`
	AltCreatedAt      time.Time `json:"-" bson:"created_at,omitempty"`
}

// Normalize merges the snake_case aliases into the canonical fields.
func (cb *Callback) Normalize() {
	if cb.CustomerName == "" {
		cb.CustomerName = cb.AltCustomerName
	}
	if cb.SalesAgentID == "" {
		cb.SalesAgentID = cb.AltSalesAgentID
	}
	if cb.SalesAgentName == "" {
		cb.SalesAgentName = cb.AltSalesAgentName
	}
	if cb.SalesTeam == "" {
		cb.SalesTeam = cb.AltSalesTeam
	}
	if cb.ScheduledDate == "" {
		cb.ScheduledDate = cb.AltScheduledDate
	}
	if cb.CreatedByID == "" {
		cb.CreatedByID = cb.AltCreatedByID
	}
	if cb.CreatedBy == "" {
		cb.CreatedBy = cb.AltCreatedBy
	}
	if cb.CreatedAt.IsZero() {
		cb.CreatedAt = cb.AltCreatedAt
	}
	cb.AltCustomerName = ""
	cb.AltSalesAgentID = ""
	cb.AltSalesAgentName = ""
	cb.AltSalesTeam = ""
	cb.AltScheduledDate = ""
	cb.AltCreatedByID = ""
	cb.AltCreatedBy = ""
	cb.AltCreatedAt = time.Time{}
}

// CreateCallbackRequest is the request body for creating a callback
type CreateCallbackRequest struct {
	CustomerName   string `json:"customerName" validate:"required"`
	PhoneNumber    string `json:"phoneNumber,omitempty"`
	Email          string `json:"email,omitempty"`
	SalesAgentID   string `json:"salesAgentId" validate:"required"`
	SalesAgentName string `json:"salesAgentName,omitempty"`
	SalesTeam      string `json:"salesTeam,omitempty"`
	ScheduledDate  string `json:"scheduledDate,omitempty"`
	ScheduledTime  string `json:"scheduledTime,omitempty"`
	CallbackReason string `json:"callbackReason,omitempty"`
	CallbackNotes  string `json:"callbackNotes,omitempty"`
}

// UpdateCallbackStatusRequest is the request body for status updates
type UpdateCallbackStatusRequest struct {
	Status        string `json:"status" validate:"required"`
	CallbackNotes string `json:"callbackNotes,omitempty"`
}
