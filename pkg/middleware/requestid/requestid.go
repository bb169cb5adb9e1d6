package requestid

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Header carries the request ID in both directions.
const Header = "X-Request-ID"

const (
	ginKey = "request_id"
	maxLen = 128
)

type ctxKey struct{}

// Middleware tags each request with an ID. A caller-supplied ID is kept when
// it is short printable ASCII, otherwise a UUID is generated. The ID is
// echoed in the response and stored on both the gin and request contexts.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(Header)
		if !acceptable(id) {
			id = uuid.NewString()
		}

		c.Set(ginKey, id)
		c.Request = c.Request.WithContext(WithValue(c.Request.Context(), id))
		c.Writer.Header().Set(Header, id)
		c.Next()
	}
}

// Value returns the request ID stored in the gin context.
func Value(c *gin.Context) string {
	if id, ok := c.Get(ginKey); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}

// WithValue returns a copy of ctx carrying id.
func WithValue(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the request ID carried by ctx, if any.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func acceptable(id string) bool {
	if id == "" || len(id) > maxLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
