// controllers/notification_controller.go
package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/salescrm/crm_backend/config"
	"github.com/salescrm/crm_backend/middleware"
	"github.com/salescrm/crm_backend/models"
	"github.com/salescrm/crm_backend/services"
	"github.com/salescrm/crm_backend/utils"
	ws "github.com/salescrm/crm_backend/websocket"
)

type NotificationController struct {
	db      *mongo.Client
	fetcher *services.Fetcher
	hub     *ws.Hub
}

func NewNotificationController(db *mongo.Client, hub *ws.Hub) *NotificationController {
	return &NotificationController{
		db:      db,
		fetcher: services.NewFetcher(db.Database(config.GetDatabaseName())),
		hub:     hub,
	}
}

// CreateNotification handles POST /api/notifications. Manager only. The
// notification is saved to Mongo, mirrored to Firestore, pushed over FCM and
// over any live WebSocket connections.
func (nc *NotificationController) CreateNotification(c echo.Context) error {
	claims := middleware.GetUserFromToken(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Please provide valid credentials",
		})
	}

	var req models.CreateNotificationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}
	if len(req.Recipients) == 0 && req.RecipientRole == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Recipients or recipientRole is required",
		})
	}
	if req.RecipientRole != "" && !models.ValidRole(req.RecipientRole) {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Unknown recipient role: " + req.RecipientRole,
		})
	}

	notification := &models.Notification{
		Title:         req.Title,
		Message:       req.Message,
		Type:          req.Type,
		Priority:      req.Priority,
		SenderID:      claims.UserID,
		Recipients:    req.Recipients,
		RecipientRole: req.RecipientRole,
		CreatedAt:     time.Now(),
	}
	if notification.Type == "" {
		notification.Type = "general"
	}
	if notification.Priority == "" {
		notification.Priority = "normal"
	}
	if dealID, err := primitive.ObjectIDFromHex(req.DealID); err == nil && req.DealID != "" {
		notification.DealID = &dealID
	}
	if callbackID, err := primitive.ObjectIDFromHex(req.CallbackID); err == nil && req.CallbackID != "" {
		notification.CallbackID = &callbackID
	}

	if err := utils.SaveNotification(nc.db, notification); err != nil {
		log.Printf("Error saving notification: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create notification",
		})
	}

	go nc.deliver(notification)

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Notification created successfully",
		Data:    notification,
	})
}

// deliver resolves the recipient list and pushes the notification over FCM
// and WebSocket. Per-recipient failures are logged and skipped.
func (nc *NotificationController) deliver(notification *models.Notification) {
	recipients := notification.Recipients

	if notification.RecipientRole != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		cursor, err := config.GetCollection(nc.db, "users").Find(ctx, bson.M{"role": notification.RecipientRole})
		if err != nil {
			log.Printf("Error resolving role recipients: %v", err)
		} else {
			var users []models.User
			if err := cursor.All(ctx, &users); err != nil {
				log.Printf("Error decoding role recipients: %v", err)
			}
			for _, u := range users {
				recipients = append(recipients, u.ID.Hex())
			}
		}
	}

	data := map[string]string{"notificationId": notification.ID.Hex(), "type": notification.Type}
	for _, recipient := range recipients {
		userID, err := primitive.ObjectIDFromHex(recipient)
		if err != nil {
			continue
		}
		if err := utils.SendPushToUser(nc.db, userID, notification.Title, notification.Message, data); err != nil {
			log.Printf("Push to %s failed: %v", recipient, err)
		}
		// disconnected users just miss the live event; they still have the record
		nc.hub.NotifyUser(userID, notification)
	}
}

// GetNotifications handles GET /api/notifications for the logged-in user
func (nc *NotificationController) GetNotifications(c echo.Context) error {
	claims := middleware.GetUserFromToken(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Please provide valid credentials",
		})
	}

	_, limit, offset := listParams(c)
	notifications, err := nc.fetcher.FetchNotifications(c.Request().Context(), claims.UserID, claims.Role, limit, offset)
	if err != nil {
		log.Printf("Error fetching notifications: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch notifications",
		})
	}

	unread := 0
	for i := range notifications {
		if !notifications[i].IsReadBy(claims.UserID) {
			unread++
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Notifications retrieved successfully",
		Data: map[string]interface{}{
			"notifications": notifications,
			"unreadCount":   unread,
		},
	})
}

// MarkNotificationRead handles PATCH /api/notifications/:id/read
func (nc *NotificationController) MarkNotificationRead(c echo.Context) error {
	claims := middleware.GetUserFromToken(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Please provide valid credentials",
		})
	}

	notificationID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid notification ID",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"readBy." + claims.UserID: true}}
	result, err := config.GetCollection(nc.db, "notifications").UpdateOne(ctx, bson.M{"_id": notificationID}, update)
	if err != nil {
		log.Printf("Error marking notification %s read: %v", notificationID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to mark notification as read",
		})
	}
	if result.MatchedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Notification not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Notification marked as read",
	})
}

// MarkAllNotificationsRead handles POST /api/notifications/read-all
func (nc *NotificationController) MarkAllNotificationsRead(c echo.Context) error {
	claims := middleware.GetUserFromToken(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Please provide valid credentials",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{"$or": []bson.M{
		{"recipients": claims.UserID},
		{"recipientRole": claims.Role},
	}}
	update := bson.M{"$set": bson.M{"readBy." + claims.UserID: true}}

	result, err := config.GetCollection(nc.db, "notifications").UpdateMany(ctx, filter, update)
	if err != nil {
		log.Printf("Error marking all notifications read for %s: %v", claims.UserID, err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to mark notifications as read",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "All notifications marked as read",
		Data:    map[string]interface{}{"updated": result.ModifiedCount},
	})
}
