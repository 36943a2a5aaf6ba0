// controllers/auth_controller.go
package controllers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/salescrm/crm_backend/config"
	"github.com/salescrm/crm_backend/middleware"
	"github.com/salescrm/crm_backend/models"
	"github.com/salescrm/crm_backend/repositories"
	"github.com/salescrm/crm_backend/utils"
)

// rememberMeTTL is how long a remember-me session stays valid in Redis
const rememberMeTTL = 30 * 24 * time.Hour

type AuthController struct {
	db       *mongo.Client
	userRepo *repositories.UserRepository
}

func NewAuthController(db *mongo.Client) *AuthController {
	return &AuthController{
		db:       db,
		userRepo: repositories.NewUserRepository(db),
	}
}

// Login handles POST /api/auth/login
func (ac *AuthController) Login(c echo.Context) error {
	var req models.LoginRequest
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

	user, err := ac.userRepo.FindByUsername(c.Request().Context(), strings.ToLower(strings.TrimSpace(req.Username)))
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid username or password",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid username or password",
		})
	}

	token, refreshToken, err := middleware.GenerateJWT(user.ID.Hex(), user.Email, user.Role, user.Team, user.ManagedTeam)
	if err != nil {
		log.Printf("Error generating JWT for %s: %v", user.Username, err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate session",
		})
	}

	// Remember-me sessions are tracked in Redis so the refresh token can be
	// honored past the normal expiry. Redis being down just disables this.
	if req.RememberMe {
		if redisClient := config.GetRedisClient(); redisClient != nil {
			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()
			key := "remember_me:" + user.ID.Hex()
			if err := redisClient.Set(ctx, key, refreshToken, rememberMeTTL).Err(); err != nil {
				log.Printf("Error storing remember-me session for %s: %v", user.Username, err)
			}
		}
	}

	user.Password = ""
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Login successful",
		Data: map[string]interface{}{
			"token":        token,
			"refreshToken": refreshToken,
			"user":         user,
		},
	})
}

// Logout handles POST /api/auth/logout. The presented token is blacklisted
// for the remainder of its lifetime and any remember-me session is dropped.
func (ac *AuthController) Logout(c echo.Context) error {
	authHeader := c.Request().Header.Get("Authorization")
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == "" || tokenString == authHeader {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "No token provided",
		})
	}

	claims := &middleware.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(middleware.GetJWTSecret()), nil
	})
	if err != nil || !token.Valid {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	middleware.BlacklistToken(tokenString, time.Unix(claims.ExpiresAt, 0))

	if redisClient := config.GetRedisClient(); redisClient != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()
		if err := redisClient.Del(ctx, "remember_me:"+claims.UserID).Err(); err != nil {
			log.Printf("Error clearing remember-me session for %s: %v", claims.UserID, err)
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Logged out successfully",
	})
}

// ValidateToken handles GET /api/auth/validate. Checks the blacklist, the
// signature and that the user still exists and is active, so clients can
// restore sessions safely.
func (ac *AuthController) ValidateToken(c echo.Context) error {
	authHeader := c.Request().Header.Get("Authorization")
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if middleware.IsTokenBlacklisted(tokenString) {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Token has been invalidated",
		})
	}

	result, err := utils.ValidateTokenFromHeader(authHeader, ac.db)
	if err != nil {
		log.Printf("Error validating token: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to validate token",
		})
	}
	if !result.Valid {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: result.Message,
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Token is valid",
		Data:    result,
	})
}
