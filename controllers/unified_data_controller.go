// controllers/unified_data_controller.go
package controllers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/salescrm/crm_backend/config"
	"github.com/salescrm/crm_backend/models"
	"github.com/salescrm/crm_backend/services"
)

const (
	defaultUnifiedLimit = 100
	maxUnifiedLimit     = 500
)

// UnifiedDataController serves the combined multi-collection endpoint used
// by dashboard views that hydrate several panels in one round trip.
type UnifiedDataController struct {
	db      *mongo.Client
	fetcher *services.Fetcher
}

func NewUnifiedDataController(db *mongo.Client) *UnifiedDataController {
	return &UnifiedDataController{
		db:      db,
		fetcher: services.NewFetcher(db.Database(config.GetDatabaseName())),
	}
}

// GetUnifiedData handles GET /api/unified-data. The dataTypes parameter is a
// comma list of collections to include; each requested type is fetched
// independently so one failure does not empty the others.
func (uc *UnifiedDataController) GetUnifiedData(c echo.Context) error {
	userRole := c.QueryParam("userRole")
	userID := c.QueryParam("userId")
	managedTeam := c.QueryParam("managedTeam")
	dateRange := c.QueryParam("dateRange")
	if dateRange == "" {
		dateRange = services.RangeAll
	}

	dataTypes := c.QueryParam("dataTypes")
	if dataTypes == "" {
		dataTypes = "deals,callbacks,targets"
	}

	limit := int64(defaultUnifiedLimit)
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			return c.JSON(http.StatusBadRequest, models.UnifiedDataResponse{
				Success: false,
				Error:   "validation_error",
				Message: "limit must be a non-negative integer",
			})
		}
		limit = parsed
	}
	if limit == 0 || limit > maxUnifiedLimit {
		limit = maxUnifiedLimit
	}

	offset := int64(0)
	if raw := c.QueryParam("offset"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			return c.JSON(http.StatusBadRequest, models.UnifiedDataResponse{
				Success: false,
				Error:   "validation_error",
				Message: "offset must be a non-negative integer",
			})
		}
		offset = parsed
	}

	c.Response().Header().Set("Cache-Control", "no-store")

	scope, err := services.ResolveScope(userRole, userID, managedTeam)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.UnifiedDataResponse{
			Success: false,
			Error:   "validation_error",
			Message: err.Error(),
		})
	}

	// Fail fast when the database is unreachable so the client gets a clear
	// 500 with context instead of a payload full of silently empty sections.
	pingCtx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := uc.db.Ping(pingCtx, nil); err != nil {
		return c.JSON(http.StatusInternalServerError, models.UnifiedDataResponse{
			Success: false,
			Error:   "database_unavailable",
			Message: "database connectivity check failed",
			Debug: map[string]interface{}{
				"ping":      err.Error(),
				"dataTypes": dataTypes,
				"userRole":  userRole,
			},
		})
	}

	requested := map[string]bool{}
	typeList := []string{}
	for _, t := range strings.Split(dataTypes, ",") {
		if t = strings.TrimSpace(t); t != "" && !requested[t] {
			requested[t] = true
			typeList = append(typeList, t)
		}
	}

	ctx := c.Request().Context()
	data := map[string]interface{}{}
	counts := map[string]int{}
	var mu sync.Mutex
	var wg sync.WaitGroup

	store := func(key string, value interface{}, n int) {
		mu.Lock()
		data[key] = value
		counts[key] = n
		mu.Unlock()
	}

	if requested["deals"] {
		wg.Add(1)
		go func() {
			defer wg.Done()
			deals, err := uc.fetcher.FetchDeals(ctx, scope, dateRange, limit, offset)
			if err != nil {
				store("deals", []models.Deal{}, 0)
				return
			}
			store("deals", deals, len(deals))
		}()
	}

	if requested["callbacks"] {
		wg.Add(1)
		go func() {
			defer wg.Done()
			callbacks, err := uc.fetcher.FetchCallbacks(ctx, scope, dateRange, limit, offset)
			if err != nil {
				store("callbacks", []models.Callback{}, 0)
				return
			}
			store("callbacks", callbacks, len(callbacks))
		}()
	}

	if requested["targets"] {
		wg.Add(1)
		go func() {
			defer wg.Done()
			targets, err := uc.fetcher.FetchTargets(ctx, scope, limit, offset)
			if err != nil {
				store("targets", []models.Target{}, 0)
				return
			}
			store("targets", targets, len(targets))
		}()
	}

	// Users are manager-only; other roles asking for them get an empty list
	// rather than an error, matching the degrade-to-empty contract.
	if requested["users"] {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !scope.AllowUsers {
				store("users", []models.User{}, 0)
				return
			}
			users, err := uc.fetcher.FetchUsers(ctx, limit, offset)
			if err != nil {
				store("users", []models.User{}, 0)
				return
			}
			store("users", users, len(users))
		}()
	}

	if requested["notifications"] {
		wg.Add(1)
		go func() {
			defer wg.Done()
			notifications, err := uc.fetcher.FetchNotifications(ctx, userID, userRole, limit, offset)
			if err != nil {
				store("notifications", []models.Notification{}, 0)
				return
			}
			store("notifications", notifications, len(notifications))
		}()
	}

	wg.Wait()

	// The analytics section is assembled from its own unpaginated fetch so
	// the KPIs reflect the whole scoped dataset, not the current page.
	if requested["analytics"] {
		sets := uc.fetcher.FetchAll(ctx, scope, dateRange)
		data["analytics"] = services.AssembleDashboard(sets)
	}

	return c.JSON(http.StatusOK, models.UnifiedDataResponse{
		Success: true,
		Data:    data,
		Metadata: &models.UnifiedDataMetadata{
			RequestedTypes: typeList,
			Counts:         counts,
			Limit:          int(limit),
			Offset:         int(offset),
			DateRange:      dateRange,
			Timestamp:      time.Now().Format(time.RFC3339),
		},
	})
}
