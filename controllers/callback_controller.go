// controllers/callback_controller.go
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
	ws "github.com/salescrm/crm_backend/websocket"
)

type CallbackController struct {
	db      *mongo.Client
	fetcher *services.Fetcher
	hub     *ws.Hub
}

func NewCallbackController(db *mongo.Client, hub *ws.Hub) *CallbackController {
	return &CallbackController{
		db:      db,
		fetcher: services.NewFetcher(db.Database(config.GetDatabaseName())),
		hub:     hub,
	}
}

// CreateCallback handles POST /api/callbacks
func (cc *CallbackController) CreateCallback(c echo.Context) error {
	claims := middleware.GetUserFromToken(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Please provide valid credentials",
		})
	}

	var req models.CreateCallbackRequest
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
	callback := models.Callback{
		ID:             primitive.NewObjectID(),
		CustomerName:   req.CustomerName,
		PhoneNumber:    req.PhoneNumber,
		Email:          req.Email,
		SalesAgentID:   req.SalesAgentID,
		SalesAgentName: req.SalesAgentName,
		SalesTeam:      req.SalesTeam,
		ScheduledDate:  req.ScheduledDate,
		ScheduledTime:  req.ScheduledTime,
		CallbackReason: req.CallbackReason,
		CallbackNotes:  req.CallbackNotes,
		Status:         models.CallbackStatusPending,
		CreatedByID:    claims.UserID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if callback.SalesTeam == "" {
		callback.SalesTeam = claims.Team
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if _, err := config.GetCollection(cc.db, "callbacks").InsertOne(ctx, callback); err != nil {
		log.Printf("Error creating callback: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create callback",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Callback created successfully",
		Data:    callback,
	})
}

// GetCallbacks handles GET /api/callbacks, scoped to the caller's role
func (cc *CallbackController) GetCallbacks(c echo.Context) error {
	scope, err := requestScope(c)
	if err != nil {
		return err
	}

	dateRange, limit, offset := listParams(c)
	callbacks, err := cc.fetcher.FetchCallbacks(c.Request().Context(), scope, dateRange, limit, offset)
	if err != nil {
		log.Printf("Error fetching callbacks: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch callbacks",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Callbacks retrieved successfully",
		Data:    callbacks,
	})
}

// UpdateCallbackStatus handles PATCH /api/callbacks/:id/status
func (cc *CallbackController) UpdateCallbackStatus(c echo.Context) error {
	callbackID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid callback ID",
		})
	}

	var req models.UpdateCallbackStatusRequest
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
	switch req.Status {
	case models.CallbackStatusPending, models.CallbackStatusContacted,
		models.CallbackStatusCompleted, models.CallbackStatusCancelled:
	default:
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Unknown callback status: " + req.Status,
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	set := bson.M{
		"status":    req.Status,
		"updatedAt": time.Now(),
	}
	if req.CallbackNotes != "" {
		set["callbackNotes"] = req.CallbackNotes
	}

	collection := config.GetCollection(cc.db, "callbacks")
	result := collection.FindOneAndUpdate(ctx,
		bson.M{"_id": callbackID},
		bson.M{"$set": set},
	)

	var callback models.Callback
	if err := result.Decode(&callback); err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Callback not found",
			})
		}
		log.Printf("Error updating callback %s: %v", callbackID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update callback",
		})
	}

	callback.Normalize()
	callback.Status = req.Status
	if req.CallbackNotes != "" {
		callback.CallbackNotes = req.CallbackNotes
	}

	cc.hub.Broadcast(ws.Event{
		Type:    ws.EventTypeCallbackUpdated,
		Message: "Callback status updated",
		Data:    callback,
	})

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Callback updated successfully",
		Data:    callback,
	})
}

// ConvertCallback handles POST /api/callbacks/:id/convert. It creates a deal
// from the callback and marks the callback completed and converted, linking
// the two records.
func (cc *CallbackController) ConvertCallback(c echo.Context) error {
	claims := middleware.GetUserFromToken(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Please provide valid credentials",
		})
	}

	callbackID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid callback ID",
		})
	}

	var req models.CreateDealRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	callbacks := config.GetCollection(cc.db, "callbacks")

	var callback models.Callback
	err = callbacks.FindOne(ctx, bson.M{"_id": callbackID}).Decode(&callback)
	if err == mongo.ErrNoDocuments {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Callback not found",
		})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch callback",
		})
	}
	callback.Normalize()

	if callback.Converted {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "Callback has already been converted",
		})
	}

	// The deal inherits the callback's customer and agent unless the request
	// overrides them.
	now := time.Now()
	deal := models.Deal{
		ID:             primitive.NewObjectID(),
		CustomerName:   callback.CustomerName,
		PhoneNumber:    callback.PhoneNumber,
		Email:          callback.Email,
		AmountPaid:     req.AmountPaid,
		SalesAgentID:   callback.SalesAgentID,
		SalesAgentName: callback.SalesAgentName,
		SalesTeam:      callback.SalesTeam,
		ServiceTier:    req.ServiceTier,
		ProgramType:    req.ProgramType,
		DurationMonths: req.DurationMonths,
		SignupDate:     req.SignupDate,
		Status:         "active",
		Stage:          "closed",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if req.CustomerName != "" {
		deal.CustomerName = req.CustomerName
	}
	if req.SalesAgentID != "" {
		deal.SalesAgentID = req.SalesAgentID
	}
	if req.ClosingAgentID != "" {
		deal.ClosingAgentID = req.ClosingAgentID
		deal.ClosingAgent = req.ClosingAgent
	} else {
		deal.ClosingAgentID = claims.UserID
	}

	if _, err := config.GetCollection(cc.db, "deals").InsertOne(ctx, deal); err != nil {
		log.Printf("Error creating deal from callback %s: %v", callbackID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create deal from callback",
		})
	}

	update := bson.M{"$set": bson.M{
		"status":          models.CallbackStatusCompleted,
		"converted":       true,
		"convertedDealId": deal.ID,
		"updatedAt":       now,
	}}
	if _, err := callbacks.UpdateOne(ctx, bson.M{"_id": callbackID}, update); err != nil {
		log.Printf("Error marking callback %s converted: %v", callbackID.Hex(), err)
	}

	dc := &DealController{db: cc.db, fetcher: cc.fetcher, hub: cc.hub}
	go dc.applyDealToTarget(&deal)
	cc.hub.NotifyDealCreated(deal)

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Callback converted to deal",
		Data: map[string]interface{}{
			"deal":       deal,
			"callbackId": callbackID.Hex(),
		},
	})
}
