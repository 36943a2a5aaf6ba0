package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/salescrm/crm_backend/controllers"
	"github.com/salescrm/crm_backend/middleware"
)

// RegisterUserRoutes wires user management. CRUD is manager-only; avatar and
// FCM token updates apply to the logged-in user.
func RegisterUserRoutes(e *echo.Echo, db *mongo.Client) {
	userController := controllers.NewUserController(db)

	users := e.Group("/api/users")
	users.Use(middleware.JWTMiddleware())
	users.Use(middleware.ActivityTracker(db))

	users.POST("/avatar", userController.UploadAvatar)
	users.PUT("/fcm-token", userController.UpdateFCMToken)

	users.GET("", userController.GetUsers, middleware.RequireManager())
	users.POST("", userController.CreateUser, middleware.RequireManager())
	users.PUT("/:id", userController.UpdateUser, middleware.RequireManager())
	users.DELETE("/:id", userController.DeleteUser, middleware.RequireManager())
}
