package main

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/salescrm/crm_backend/config"
	"github.com/salescrm/crm_backend/middleware"
	"github.com/salescrm/crm_backend/routes"
	"github.com/salescrm/crm_backend/security"
	"github.com/salescrm/crm_backend/utils"
	"github.com/salescrm/crm_backend/websocket"
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// Initialize Firebase for FCM pushes and the Firestore mirror
	config.InitFirebase()

	// Connect to Redis (remember-me sessions; optional)
	config.ConnectRedis()
	defer config.CloseRedis()

	// Connect to database
	client := config.ConnectDB()

	// Create WebSocket hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Background maintenance
	go middleware.CleanupBlacklist()
	go func() {
		for {
			middleware.MarkInactiveUsers(client, 30*24*time.Hour)
			time.Sleep(12 * time.Hour)
		}
	}()
	go func() {
		for {
			utils.SweepOverdueCallbacks(client)
			time.Sleep(1 * time.Hour)
		}
	}()

	// Create a new Echo instance
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter()

	// Middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.GlobalCORS())
	e.Use(rateLimiter.RateLimit())
	e.Use(middleware.SecurityHeaders())
	e.Use(enforceContentType())

	e.Match([]string{"GET", "HEAD"}, "/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":  "OK",
			"message": "Sales CRM Backend is running",
			"version": "1.0",
		})
	})

	// Register all routes
	routes.SetupRoutes(e, client, wsHub)

	// Make sure the avatar upload directory exists before serving it
	if err := os.MkdirAll("uploads/avatars", 0o755); err != nil {
		log.Printf("Warning: could not create uploads directory: %v", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	e.Logger.Fatal(e.Start(":" + port))
}

// enforceContentType rejects mutating requests with unexpected content types
func enforceContentType() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			method := c.Request().Method
			if method == "POST" || method == "PUT" || method == "PATCH" {
				contentType := c.Request().Header.Get("Content-Type")
				if idx := strings.Index(contentType, ";"); idx > 0 {
					contentType = contentType[:idx]
				}
				if contentType != "" && !security.ValidateContentType(strings.TrimSpace(contentType)) {
					return c.JSON(415, map[string]string{
						"message": "Unsupported content type",
					})
				}
			}
			return next(c)
		}
	}
}
