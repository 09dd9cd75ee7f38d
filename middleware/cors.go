package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"folio/config"
)

// CORS allows every origin when cfg leaves origins open, otherwise only the
// listed origins, with credentials.
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", RequestIDHeader}
	corsConfig.ExposeHeaders = []string{RequestIDHeader, "Retry-After"}
	corsConfig.MaxAge = 12 * time.Hour

	if cfg.AllowsAllOrigins() {
		corsConfig.AllowAllOrigins = true
	} else {
		origins := make([]string, 0, len(cfg.AllowedOrigins))
		for _, o := range cfg.AllowedOrigins {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, strings.TrimSuffix(o, "/"))
			}
		}
		corsConfig.AllowOrigins = origins
		corsConfig.AllowCredentials = true
	}

	return cors.New(corsConfig)
}
