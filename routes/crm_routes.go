package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/salescrm/crm_backend/controllers"
	"github.com/salescrm/crm_backend/middleware"
	ws "github.com/salescrm/crm_backend/websocket"
)

// RegisterCRMRoutes wires the deal, callback and target endpoints. All of
// them require a valid JWT; targets are additionally manager-gated for
// writes.
func RegisterCRMRoutes(e *echo.Echo, db *mongo.Client, hub *ws.Hub) {
	dealController := controllers.NewDealController(db, hub)
	callbackController := controllers.NewCallbackController(db, hub)
	targetController := controllers.NewTargetController(db)

	api := e.Group("/api")
	api.Use(middleware.JWTMiddleware())
	api.Use(middleware.ActivityTracker(db))

	deals := api.Group("/deals")
	deals.POST("", dealController.CreateDeal)
	deals.GET("", dealController.GetDeals)
	deals.GET("/:id", dealController.GetDeal)
	deals.PATCH("/:id/stage", dealController.UpdateDealStage)

	callbacks := api.Group("/callbacks")
	callbacks.POST("", callbackController.CreateCallback)
	callbacks.GET("", callbackController.GetCallbacks)
	callbacks.PATCH("/:id/status", callbackController.UpdateCallbackStatus)
	callbacks.POST("/:id/convert", callbackController.ConvertCallback)

	targets := api.Group("/targets")
	targets.GET("", targetController.GetTargets)
	targets.GET("/progress", targetController.GetTargetProgress)
	targets.POST("", targetController.CreateTarget, middleware.RequireManager())
	targets.DELETE("/:id", targetController.DeleteTarget, middleware.RequireManager())
}
