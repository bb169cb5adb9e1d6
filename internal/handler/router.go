package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/course-timetable-api/internal/middleware"
	"github.com/noah-isme/course-timetable-api/internal/models"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth      *AuthHandler
	Timetable *TimetableHandler
	Course    *CourseHandler
	Reference *ReferenceHandler
	Program   *ProgramHandler
	User      *UserHandler
	Metrics   *MetricsHandler
}

// RouterConfig carries the cross-cutting collaborators of the route table.
type RouterConfig struct {
	APIPrefix    string
	Tokens       middleware.TokenValidator
	Audit        middleware.AuditRecorder
	LoginLimiter *middleware.RateLimiter
	Logger       *zap.Logger
}

// RegisterRoutes mounts probes at the root and the API under cfg.APIPrefix.
// Everything except login requires a staff token; role changes require a superuser.
func RegisterRoutes(r *gin.Engine, cfg RouterConfig, h Handlers) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	prefix := cfg.APIPrefix
	if prefix == "" {
		prefix = "/api/v1"
	}
	api := r.Group(prefix)
	api.Use(middleware.WithResponseMeta())

	login := []gin.HandlerFunc{}
	if cfg.LoginLimiter != nil {
		login = append(login, cfg.LoginLimiter.Handler())
	}
	api.POST("/auth/login", append(login, h.Auth.Login)...)

	authed := api.Group("")
	authed.Use(middleware.JWT(cfg.Tokens), middleware.Staff())
	authed.GET("/auth/me", h.Auth.Me)

	audit := func(action, resource string) gin.HandlerFunc {
		return middleware.Audit(cfg.Audit, cfg.Logger, action, resource)
	}

	timetable := authed.Group("/timetable")
	timetable.GET("", h.Timetable.Calendar)
	timetable.GET("/export.pdf", h.Timetable.ExportPDF)
	options := timetable.Group("/options")
	options.GET("/years", h.Timetable.Years)
	options.GET("/codes", h.Timetable.Codes)
	options.GET("/terms", h.Timetable.Terms)
	options.GET("/numbers", h.Timetable.Numbers)
	options.GET("/programs", h.Timetable.Programs)
	options.GET("/levels", h.Timetable.Levels)

	courses := authed.Group("/courses")
	courses.GET("", h.Course.List)
	courses.GET("/export.csv", h.Course.ExportCSV)
	courses.POST("", audit(models.AuditActionCreate, "course"), h.Course.Create)
	courses.GET("/:id", h.Course.Get)
	courses.PUT("/:id", audit(models.AuditActionUpdate, "course"), h.Course.Update)
	courses.DELETE("/:id", audit(models.AuditActionDelete, "course"), h.Course.Delete)

	refs := authed.Group("/references")
	refs.GET("", h.Reference.Kinds)
	refs.GET("/:kind", h.Reference.List)
	refs.POST("/:kind", audit(models.AuditActionCreate, "reference"), h.Reference.Create)
	refs.PUT("/:kind/:id", audit(models.AuditActionUpdate, "reference"), h.Reference.Update)
	refs.DELETE("/:kind/:id", audit(models.AuditActionDelete, "reference"), h.Reference.Delete)
	refs.GET("/:kind/:id/affected", h.Reference.Affected)

	authed.GET("/programs", h.Program.List)
	authed.POST("/programs", audit(models.AuditActionCreate, "program"), h.Program.Create)
	authed.GET("/requirements", h.Program.Requirements)
	authed.POST("/requirements/attach", audit(models.AuditActionAttach, "requirement"), h.Program.Attach)
	authed.POST("/requirements/detach", audit(models.AuditActionDetach, "requirement"), h.Program.Detach)

	authed.GET("/metrics/summary", h.Metrics.Snapshot)

	// Role changes audit themselves in UserService.
	staff := authed.Group("/staff")
	staff.Use(middleware.Superuser())
	staff.GET("", h.User.List)
	staff.PUT("/:id/role", h.User.SetRole)
}
