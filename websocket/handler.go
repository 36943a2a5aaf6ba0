package websocket

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/salescrm/crm_backend/middleware"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWebSocket handles the WebSocket connection. Clients connecting
// without a token start unauthenticated and can upgrade by sending
// "AUTH:<jwt>" as their first message.
func HandleWebSocket(c echo.Context, hub *Hub, userID primitive.ObjectID) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &Client{
		UserID:        userID,
		Conn:          conn,
		Authenticated: userID != primitive.NilObjectID,
	}

	hub.register <- client

	if client.Authenticated {
		conn.WriteJSON(Event{
			Type:    "connected",
			Message: "WebSocket connection established",
			UserID:  userID.Hex(),
		})
	} else {
		conn.WriteJSON(Event{
			Type:         "connected",
			Message:      "WebSocket connection established. Please authenticate to receive dashboard events.",
			RequiresAuth: true,
		})
	}

	go func() {
		defer func() {
			hub.unregister <- client
		}()

		for {
			messageType, message, err := conn.ReadMessage()
			if err != nil {
				break
			}

			if messageType == websocket.TextMessage {
				messageStr := string(message)
				if strings.HasPrefix(messageStr, "AUTH:") {
					tokenString := strings.TrimPrefix(messageStr, "AUTH:")
					authedID, err := validateWSToken(tokenString)
					if err != nil {
						conn.WriteJSON(Event{
							Type:         "auth_response",
							Message:      "Authentication failed: " + err.Error(),
							RequiresAuth: true,
						})
						continue
					}

					hub.AuthenticateClient(client, authedID)
					conn.WriteJSON(Event{
						Type:    "auth_response",
						Message: "Authenticated",
						UserID:  authedID.Hex(),
					})
					continue
				}
			}
		}
	}()

	return nil
}

// UserIDFromToken resolves a JWT passed in the upgrade request. Returns the
// nil ObjectID when the token is missing or invalid; the client can still
// authenticate in-band.
func UserIDFromToken(tokenString string) primitive.ObjectID {
	if tokenString == "" {
		return primitive.NilObjectID
	}
	userID, err := validateWSToken(tokenString)
	if err != nil {
		return primitive.NilObjectID
	}
	return userID
}

// validateWSToken parses and validates a JWT sent over the socket
func validateWSToken(tokenString string) (primitive.ObjectID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &middleware.JwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(middleware.GetJWTSecret()), nil
	})
	if err != nil {
		return primitive.NilObjectID, err
	}

	claims, ok := token.Claims.(*middleware.JwtCustomClaims)
	if !ok || !token.Valid {
		return primitive.NilObjectID, jwt.ErrSignatureInvalid
	}

	return primitive.ObjectIDFromHex(claims.UserID)
}
