package middleware

import (
	"github.com/gin-gonic/gin"

	"fuelbook/internal/core/appctx"
	"fuelbook/internal/core/id"
)

const (
	HeaderActorID   = "X-Actor-ID"
	HeaderActorName = "X-Actor-Name"
)

// Actor extracts the acting user from request headers and adds it to the
// request context for audit enrichment and logging. Mutating inputs still
// carry the submitter explicitly; this is a transport convenience, not an
// authentication layer.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(HeaderActorID)
		if raw != "" {
			if actorID, err := id.Parse(raw); err == nil {
				ctx := appctx.WithActor(c.Request.Context(), &appctx.Actor{
					UserID:   actorID,
					Username: c.GetHeader(HeaderActorName),
				})
				c.Request = c.Request.WithContext(ctx)
			}
		}
		c.Next()
	}
}
