// controllers/deal_controller.go
package controllers

import (
	"context"
	"log"
	"net/http"
	"strconv"
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

type DealController struct {
	db      *mongo.Client
	fetcher *services.Fetcher
	hub     *ws.Hub
}

func NewDealController(db *mongo.Client, hub *ws.Hub) *DealController {
	return &DealController{
		db:      db,
		fetcher: services.NewFetcher(db.Database(config.GetDatabaseName())),
		hub:     hub,
	}
}

// requestScope builds the visibility scope from the caller's JWT claims.
func requestScope(c echo.Context) (*services.Scope, error) {
	claims := middleware.GetUserFromToken(c)
	if claims == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Please provide valid credentials")
	}
	scope, err := services.ResolveScope(claims.Role, claims.UserID, claims.ManagedTeam)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return scope, nil
}

func listParams(c echo.Context) (dateRange string, limit, offset int64) {
	dateRange = c.QueryParam("dateRange")
	if dateRange == "" {
		dateRange = services.RangeAll
	}
	limit = defaultUnifiedLimit
	if raw := c.QueryParam("limit"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > maxUnifiedLimit {
		limit = maxUnifiedLimit
	}
	if raw := c.QueryParam("offset"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 {
			offset = parsed
		}
	}
	return dateRange, limit, offset
}

// CreateDeal handles POST /api/deals
func (dc *DealController) CreateDeal(c echo.Context) error {
	claims := middleware.GetUserFromToken(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Please provide valid credentials",
		})
	}

	var req models.CreateDealRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if req.SalesAgentID == "" {
		req.SalesAgentID = claims.UserID
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	now := time.Now()
	deal := models.Deal{
		ID:             primitive.NewObjectID(),
		CustomerName:   req.CustomerName,
		PhoneNumber:    req.PhoneNumber,
		Email:          req.Email,
		AmountPaid:     req.AmountPaid,
		SalesAgentID:   req.SalesAgentID,
		SalesAgentName: req.SalesAgentName,
		ClosingAgentID: req.ClosingAgentID,
		ClosingAgent:   req.ClosingAgent,
		SalesTeam:      req.SalesTeam,
		ServiceTier:    req.ServiceTier,
		ProgramType:    req.ProgramType,
		DurationMonths: req.DurationMonths,
		SignupDate:     req.SignupDate,
		Status:         "active",
		Stage:          "closed",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if deal.SalesTeam == "" {
		deal.SalesTeam = claims.Team
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	collection := config.GetCollection(dc.db, "deals")
	if _, err := collection.InsertOne(ctx, deal); err != nil {
		log.Printf("Error creating deal: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create deal",
		})
	}

	// Roll the deal into the agent's target for the current period and fan
	// out notifications without holding up the response.
	go dc.applyDealToTarget(&deal)
	go func() {
		if err := utils.NotifyManagerOfDeal(dc.db, &deal); err != nil {
			log.Printf("Error notifying manager of deal %s: %v", deal.ID.Hex(), err)
		}
	}()
	dc.hub.NotifyDealCreated(deal)

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Deal created successfully",
		Data:    deal,
	})
}

// applyDealToTarget increments the agent's target counters for the deal's
// period. Missing targets are not created here; the progress endpoint simply
// shows no target for the period.
func (dc *DealController) applyDealToTarget(deal *models.Deal) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	period := deal.CreatedAt
	amount := utils.ParseAmount(deal.AmountPaid)

	collection := config.GetCollection(dc.db, "targets")
	filter := bson.M{
		"agentId": deal.SalesAgentID,
		"month":   int(period.Month()),
		"year":    period.Year(),
	}
	update := bson.M{
		"$inc": bson.M{
			"currentAmount": amount,
			"currentDeals":  1,
		},
		"$set": bson.M{"updatedAt": time.Now()},
	}

	if _, err := collection.UpdateOne(ctx, filter, update); err != nil {
		log.Printf("Error updating target progress for agent %s: %v", deal.SalesAgentID, err)
	}
}

// GetDeals handles GET /api/deals, scoped to the caller's role
func (dc *DealController) GetDeals(c echo.Context) error {
	scope, err := requestScope(c)
	if err != nil {
		return err
	}

	dateRange, limit, offset := listParams(c)
	deals, err := dc.fetcher.FetchDeals(c.Request().Context(), scope, dateRange, limit, offset)
	if err != nil {
		log.Printf("Error fetching deals: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch deals",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Deals retrieved successfully",
		Data:    deals,
	})
}

// GetDeal handles GET /api/deals/:id
func (dc *DealController) GetDeal(c echo.Context) error {
	scope, err := requestScope(c)
	if err != nil {
		return err
	}

	dealID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid deal ID",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var deal models.Deal
	err = config.GetCollection(dc.db, "deals").FindOne(ctx, bson.M{"_id": dealID}).Decode(&deal)
	if err == mongo.ErrNoDocuments {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Deal not found",
		})
	}
	if err != nil {
		log.Printf("Error fetching deal %s: %v", dealID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch deal",
		})
	}

	deal.Normalize()
	if !scope.MatchesDeal(&deal) {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "You do not have access to this deal",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Deal retrieved successfully",
		Data:    deal,
	})
}

// UpdateDealStage handles PATCH /api/deals/:id/stage
func (dc *DealController) UpdateDealStage(c echo.Context) error {
	scope, err := requestScope(c)
	if err != nil {
		return err
	}

	dealID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid deal ID",
		})
	}

	var req models.UpdateDealStageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if req.Status == "" && req.Stage == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Nothing to update",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	collection := config.GetCollection(dc.db, "deals")

	var deal models.Deal
	err = collection.FindOne(ctx, bson.M{"_id": dealID}).Decode(&deal)
	if err == mongo.ErrNoDocuments {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Deal not found",
		})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch deal",
		})
	}

	deal.Normalize()
	if !scope.MatchesDeal(&deal) {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "You do not have access to this deal",
		})
	}

	set := bson.M{"updatedAt": time.Now()}
	if req.Status != "" {
		set["status"] = req.Status
		deal.Status = req.Status
	}
	if req.Stage != "" {
		set["stage"] = req.Stage
		deal.Stage = req.Stage
	}

	if _, err := collection.UpdateOne(ctx, bson.M{"_id": dealID}, bson.M{"$set": set}); err != nil {
		log.Printf("Error updating deal %s: %v", dealID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update deal",
		})
	}

	dc.hub.NotifyDealUpdated(deal)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Deal updated successfully",
		Data:    deal,
	})
}
