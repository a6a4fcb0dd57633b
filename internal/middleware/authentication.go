package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TokenResolver maps a bearer token to its user id.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (primitive.ObjectID, error)
}

// Protected gates a handler behind the X-Token header. On success the
// resolved user id is placed on the request context.
func Protected(resolver TokenResolver, next gin.HandlerFunc) gin.HandlerFunc {

	return func(c *gin.Context) {
		token := c.GetHeader("X-Token")

		userID, err := resolver.ResolveToken(c.Request.Context(), token)
		if err != nil {
			c.AbortWithError(http.StatusUnauthorized, err)
			return
		}
		// Populate request with session values
		c.Set("user_id", userID)

		next(c)
	}
}
