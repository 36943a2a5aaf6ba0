// models/notification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification model. Recipients is the list of user ids the notification
// targets; RecipientRole broadcasts to everyone holding that role instead.
type Notification struct {
	ID            primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	Title         string              `json:"title" bson:"title"`
	Message       string              `json:"message" bson:"message"`
	Type          string              `json:"type" bson:"type"`
	Priority      string              `json:"priority,omitempty" bson:"priority,omitempty"`
	SenderID      string              `json:"senderId,omitempty" bson:"senderId,omitempty"`
	SenderName    string              `json:"senderName,omitempty" bson:"senderName,omitempty"`
	Recipients    []string            `json:"recipients,omitempty" bson:"recipients,omitempty"`
	RecipientRole string              `json:"recipientRole,omitempty" bson:"recipientRole,omitempty"`
	ReadBy        map[string]bool     `json:"readBy,omitempty" bson:"readBy,omitempty"`
	DealID        *primitive.ObjectID `json:"dealId,omitempty" bson:"dealId,omitempty"`
	CallbackID    *primitive.ObjectID `json:"callbackId,omitempty" bson:"callbackId,omitempty"`
	CreatedAt     time.Time           `json:"createdAt" bson:"createdAt"`
}

// IsReadBy reports whether the given user has read the notification.
func (n *Notification) IsReadBy(userID string) bool {
	if n.ReadBy == nil {
		return false
	}
	return n.ReadBy[userID]
}

// CreateNotificationRequest is the request body for creating a notification
type CreateNotificationRequest struct {
	Title         string   `json:"title" validate:"required"`
	Message       string   `json:"message" validate:"required"`
	Type          string   `json:"type,omitempty"`
	Priority      string   `json:"priority,omitempty"`
	Recipients    []string `json:"recipients,omitempty"`
	RecipientRole string   `json:"recipientRole,omitempty"`
	DealID        string   `json:"dealId,omitempty"`
	CallbackID    string   `json:"callbackId,omitempty"`
}
