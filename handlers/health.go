package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"folio/logging"
	"folio/models"
)

const (
	ServiceName    = "cv-projects-api"
	ServiceVersion = "1.0.0"

	healthPingTimeout = 2 * time.Second
)

// Pinger reports backend reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheck always answers 200; the database field reports the ping.
func HealthCheck(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
		defer cancel()

		status := "connected"
		if err := db.Ping(ctx); err != nil {
			logging.Warn().Err(err).Msg("Health check: database unreachable")
			status = "disconnected"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Success:   true,
			Status:    "OK",
			Timestamp: time.Now().UTC(),
			Service:   ServiceName,
			Version:   ServiceVersion,
			Database:  status,
		})
	}
}
