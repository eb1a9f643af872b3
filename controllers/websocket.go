package controllers

import (
	"alnooracademy_go/config"
	"alnooracademy_go/database"
	"alnooracademy_go/middleware"
	"alnooracademy_go/models"
	ws "alnooracademy_go/services/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"
)

type WebSocketController struct{}

// UpgradeGuard authenticates the upgrade request. Browsers cannot set
// an Authorization header on websocket dials, so the token travels in
// the ?token= query parameter.
func (wsc *WebSocketController) UpgradeGuard(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	tokenString := c.Query("token")
	if tokenString == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing token"})
	}

	token, err := jwt.ParseWithClaims(tokenString, &middleware.Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(config.AppConfig.JWTSecret), nil
	})
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	claims, ok := token.Claims.(*middleware.Claims)
	if !ok || !token.Valid {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
	}

	var user models.User
	if err := database.DB.Where("id = ? AND active = ?", claims.UserID, true).First(&user).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User not found or inactive"})
	}

	c.Locals("ws_user_id", claims.UserID)
	return c.Next()
}

// Handle runs the websocket connection for its lifetime
func (wsc *WebSocketController) Handle() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, ok := conn.Locals("ws_user_id").(uint)
		if !ok {
			_ = conn.Close()
			return
		}
		logrus.WithField("user_id", userID).Debug("WebSocket connected")
		ws.DefaultHub().ServeConn(userID, conn)
		logrus.WithField("user_id", userID).Debug("WebSocket disconnected")
	})
}
