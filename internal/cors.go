package internal

import (
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// InitCors parses env variables for allowed cors origins and creates a cors config, then returns middleware func for gin
func (h *Handler) InitCors() gin.HandlerFunc {
	allowedOrigins := strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",")
	return cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     []string{"content-type", "x-token", "authorization"},
		MaxAge:           12 * time.Hour,
	})
}
