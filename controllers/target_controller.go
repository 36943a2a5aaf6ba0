// controllers/target_controller.go
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
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/salescrm/crm_backend/config"
	"github.com/salescrm/crm_backend/middleware"
	"github.com/salescrm/crm_backend/models"
	"github.com/salescrm/crm_backend/services"
)

type TargetController struct {
	db      *mongo.Client
	fetcher *services.Fetcher
}

func NewTargetController(db *mongo.Client) *TargetController {
	return &TargetController{
		db:      db,
		fetcher: services.NewFetcher(db.Database(config.GetDatabaseName())),
	}
}

// CreateTarget handles POST /api/targets. Manager only; one target per agent
// per month, enforced with an upsert keyed on agent and period.
func (tc *TargetController) CreateTarget(c echo.Context) error {
	claims := middleware.GetUserFromToken(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Please provide valid credentials",
		})
	}

	var req models.CreateTargetRequest
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

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	now := time.Now()
	filter := bson.M{
		"agentId": req.AgentID,
		"month":   req.Month,
		"year":    req.Year,
	}
	update := bson.M{
		"$set": bson.M{
			"agentName":    req.AgentName,
			"managerId":    claims.UserID,
			"targetAmount": req.TargetAmount,
			"targetDeals":  req.TargetDeals,
			"updatedAt":    now,
		},
		"$setOnInsert": bson.M{
			"agentId":       req.AgentID,
			"month":         req.Month,
			"year":          req.Year,
			"currentAmount": 0.0,
			"currentDeals":  0,
			"createdAt":     now,
		},
	}

	collection := config.GetCollection(tc.db, "targets")
	result, err := collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		log.Printf("Error upserting target for agent %s: %v", req.AgentID, err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to save target",
		})
	}

	status := http.StatusOK
	message := "Target updated successfully"
	if result.UpsertedCount > 0 {
		status = http.StatusCreated
		message = "Target created successfully"
	}

	var target models.Target
	if err := collection.FindOne(ctx, filter).Decode(&target); err != nil {
		log.Printf("Error reading back target for agent %s: %v", req.AgentID, err)
	}

	return c.JSON(status, models.Response{
		Status:  status,
		Message: message,
		Data:    target,
	})
}

// GetTargets handles GET /api/targets, scoped to the caller's role
func (tc *TargetController) GetTargets(c echo.Context) error {
	scope, err := requestScope(c)
	if err != nil {
		return err
	}

	_, limit, offset := listParams(c)
	targets, err := tc.fetcher.FetchTargets(c.Request().Context(), scope, limit, offset)
	if err != nil {
		log.Printf("Error fetching targets: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch targets",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Targets retrieved successfully",
		Data:    targets,
	})
}

// GetTargetProgress handles GET /api/targets/progress. Returns the computed
// progress view over the caller's visible targets.
func (tc *TargetController) GetTargetProgress(c echo.Context) error {
	scope, err := requestScope(c)
	if err != nil {
		return err
	}

	targets, err := tc.fetcher.FetchTargets(c.Request().Context(), scope, 0, 0)
	if err != nil {
		log.Printf("Error fetching targets for progress: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch targets",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Target progress retrieved successfully",
		Data:    services.BuildTargetSummary(targets),
	})
}

// DeleteTarget handles DELETE /api/targets/:id. Manager only.
func (tc *TargetController) DeleteTarget(c echo.Context) error {
	targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid target ID",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	result, err := config.GetCollection(tc.db, "targets").DeleteOne(ctx, bson.M{"_id": targetID})
	if err != nil {
		log.Printf("Error deleting target %s: %v", targetID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to delete target",
		})
	}
	if result.DeletedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Target not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Target deleted successfully",
	})
}
