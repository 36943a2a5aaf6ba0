package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/salescrm/crm_backend/controllers"
	"github.com/salescrm/crm_backend/middleware"
	ws "github.com/salescrm/crm_backend/websocket"
)

// RegisterNotificationRoutes wires the in-app notification endpoints.
func RegisterNotificationRoutes(e *echo.Echo, db *mongo.Client, hub *ws.Hub) {
	notificationController := controllers.NewNotificationController(db, hub)

	notifications := e.Group("/api/notifications")
	notifications.Use(middleware.JWTMiddleware())

	notifications.GET("", notificationController.GetNotifications)
	notifications.PATCH("/:id/read", notificationController.MarkNotificationRead)
	notifications.POST("/read-all", notificationController.MarkAllNotificationsRead)
	notifications.POST("", notificationController.CreateNotification, middleware.RequireManager())
}
