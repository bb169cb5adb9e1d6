package cors

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-timetable-api/pkg/config"
)

var (
	allowMethods  = strings.Join([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}, ", ")
	allowHeaders  = "Authorization, Content-Type, X-Request-ID"
	exposeHeaders = "Content-Disposition, Retry-After, X-Request-ID"
)

// New answers browser preflights and tags responses for the configured
// origins. An empty origin list allows any origin without credentials.
func New(cfg config.CORSConfig) gin.HandlerFunc {
	origins := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, origin := range cfg.AllowedOrigins {
		origins[normalize(origin)] = struct{}{}
	}
	wildcard := len(origins) == 0
	maxAge := strconv.Itoa(int(cfg.MaxAge / time.Second))

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		h := c.Writer.Header()
		h.Add("Vary", "Origin")

		if origin == "" {
			c.Next()
			return
		}

		_, listed := origins[normalize(origin)]
		switch {
		case listed:
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
		case wildcard:
			h.Set("Access-Control-Allow-Origin", "*")
		default:
			if isPreflight(c.Request) {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
			c.Next()
			return
		}
		h.Set("Access-Control-Expose-Headers", exposeHeaders)

		if isPreflight(c.Request) {
			h.Set("Access-Control-Allow-Methods", allowMethods)
			h.Set("Access-Control-Allow-Headers", allowHeaders)
			h.Set("Access-Control-Max-Age", maxAge)
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func isPreflight(r *http.Request) bool {
	return r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
}

func normalize(origin string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(origin), "/"))
}
