package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	ws "github.com/salescrm/crm_backend/websocket"
)

// SetupRoutes configures all API routes by calling individual route
// registration functions.
func SetupRoutes(e *echo.Echo, db *mongo.Client, hub *ws.Hub) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// WebSocket endpoint; unauthenticated clients can upgrade in-band
	e.GET("/api/ws", func(c echo.Context) error {
		return ws.HandleWebSocket(c, hub, ws.UserIDFromToken(c.QueryParam("token")))
	})

	RegisterAuthRoutes(e, db)
	RegisterAnalyticsRoutes(e, db)
	RegisterCRMRoutes(e, db, hub)
	RegisterUserRoutes(e, db)
	RegisterNotificationRoutes(e, db, hub)

	// Serve uploaded avatars
	e.Static("/uploads", "uploads")
}
