package controllers

import (
	"alnooracademy_go/database"
	ws "alnooracademy_go/services/websocket"
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

type HealthController struct{}

// Check reports service health: database, Redis and websocket hub
func (hc *HealthController) Check(c *fiber.Ctx) error {
	status := "ok"

	dbStatus := "ok"
	if database.DB == nil {
		dbStatus = "down"
		status = "degraded"
	} else if sqlDB, err := database.DB.DB(); err != nil || sqlDB.Ping() != nil {
		dbStatus = "down"
		status = "degraded"
	}

	redisStatus := "ok"
	redisClient := database.GetRedisClient()
	if redisClient == nil {
		redisStatus = "disabled"
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			redisStatus = "down"
			status = "degraded"
		}
	}

	code := fiber.StatusOK
	if status != "ok" {
		code = fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(fiber.Map{
		"status":   status,
		"service":  "Al-Noor Academy API",
		"database": dbStatus,
		"redis":    redisStatus,
		"ws_users": ws.DefaultHub().ConnectedUsers(),
	})
}
