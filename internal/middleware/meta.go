package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const responseMetaKey = "response_meta"

// WithResponseMeta initialises response metadata storage on the request context.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(responseMetaKey, map[string]interface{}{"started_at": time.Now()})
		c.Next()
	}
}

// SetMeta records one metadata value for the current response.
func SetMeta(c *gin.Context, key string, value interface{}) {
	ensureMeta(c)[key] = value
}

// ExtractMeta returns the metadata to send with the response, including the
// elapsed processing time.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	raw, exists := c.Get(responseMetaKey)
	if !exists {
		return nil
	}
	meta, ok := raw.(map[string]interface{})
	if !ok {
		return nil
	}
	out := make(map[string]interface{}, len(meta))
	for k, v := range meta {
		if k == "started_at" {
			if started, ok := v.(time.Time); ok {
				out["processing_time_ms"] = time.Since(started).Milliseconds()
			}
			continue
		}
		out[k] = v
	}
	return out
}

func ensureMeta(c *gin.Context) map[string]interface{} {
	if meta, exists := c.Get(responseMetaKey); exists {
		if typed, ok := meta.(map[string]interface{}); ok {
			return typed
		}
	}
	meta := make(map[string]interface{})
	c.Set(responseMetaKey, meta)
	return meta
}
