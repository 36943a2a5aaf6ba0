// controllers/analytics_controller.go
package controllers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/salescrm/crm_backend/config"
	"github.com/salescrm/crm_backend/models"
	"github.com/salescrm/crm_backend/services"
)

// AnalyticsController serves the role-scoped dashboard analytics
type AnalyticsController struct {
	db      *mongo.Client
	fetcher *services.Fetcher
}

func NewAnalyticsController(db *mongo.Client) *AnalyticsController {
	return &AnalyticsController{
		db:      db,
		fetcher: services.NewFetcher(db.Database(config.GetDatabaseName())),
	}
}

// GetAnalytics handles GET /api/analytics. The pipeline is: resolve the
// role scope, fetch the four record sets in parallel, aggregate, assemble.
// Fetch failures degrade to empty sections; only bad parameters are a 400.
func (ac *AnalyticsController) GetAnalytics(c echo.Context) error {
	userRole := c.QueryParam("userRole")
	userID := c.QueryParam("userId")
	userName := c.QueryParam("userName")
	managedTeam := c.QueryParam("managedTeam")
	dateRange := c.QueryParam("dateRange")
	if dateRange == "" {
		dateRange = services.RangeAll
	}

	// Freshness matters more than latency for the dashboard
	c.Response().Header().Set("Cache-Control", "no-store")

	scope, err := services.ResolveScope(userRole, userID, managedTeam)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.AnalyticsResponse{
			Success:   false,
			Error:     "validation_error",
			Message:   err.Error(),
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}

	sets := ac.fetcher.FetchAll(c.Request().Context(), scope, dateRange)
	analytics := services.AssembleDashboard(sets)

	return c.JSON(http.StatusOK, models.AnalyticsResponse{
		Success: true,
		Data: &models.AnalyticsData{
			Deals:     sets.Deals,
			Callbacks: sets.Callbacks,
			Targets:   sets.Targets,
			Analytics: analytics,
			Filters: models.AnalyticsFilters{
				UserRole:    userRole,
				UserID:      userID,
				UserName:    userName,
				ManagedTeam: managedTeam,
				DateRange:   dateRange,
			},
		},
		Timestamp: time.Now().Format(time.RFC3339),
		Fresh:     true,
	})
}
