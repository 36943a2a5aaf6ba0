package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/salescrm/crm_backend/controllers"
)

// RegisterAnalyticsRoutes wires the dashboard aggregation endpoints. These
// take their role parameters from the query string so the dashboard can be
// embedded without a session, matching the legacy contract.
func RegisterAnalyticsRoutes(e *echo.Echo, db *mongo.Client) {
	analyticsController := controllers.NewAnalyticsController(db)
	unifiedController := controllers.NewUnifiedDataController(db)

	e.GET("/api/analytics", analyticsController.GetAnalytics)
	e.GET("/api/unified-data", unifiedController.GetUnifiedData)
}
