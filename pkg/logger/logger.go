package logger

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/noah-isme/course-timetable-api/pkg/config"
	"github.com/noah-isme/course-timetable-api/pkg/middleware/requestid"
)

// New builds the process logger. Production uses sampled JSON, everything
// else the development preset. LOG_FORMAT and LOG_LEVEL override either.
func New(cfg *config.Config) (*zap.Logger, error) {
	zapCfg := zap.NewDevelopmentConfig()
	if cfg.Env == config.EnvProduction {
		zapCfg = zap.NewProductionConfig()
	}

	zapCfg.Encoding = "json"
	if strings.EqualFold(cfg.Log.Format, "console") {
		zapCfg.Encoding = "console"
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	if lvl, err := zapcore.ParseLevel(cfg.Log.Level); err == nil && cfg.Log.Level != "" {
		zapCfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	zapCfg.EncoderConfig.TimeKey = "ts"
	zapCfg.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	zapCfg.EncoderConfig.EncodeDuration = zapcore.MillisDurationEncoder

	fields := map[string]interface{}{"env": cfg.Env}
	if cfg.Log.Service != "" {
		fields["service"] = cfg.Log.Service
	}
	zapCfg.InitialFields = fields

	return zapCfg.Build()
}

// quietPaths are probe and scrape routes logged at debug level.
var quietPaths = map[string]struct{}{
	"/health":  {},
	"/ready":   {},
	"/metrics": {},
}

// GinMiddleware writes one access log line per request. Server errors log at
// error level, client errors at warn, and probes at debug.
func GinMiddleware(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Int("bytes", c.Writer.Size()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if id := requestid.Value(c); id != "" {
			fields = append(fields, zap.String("request_id", id))
		}
		if errs := c.Errors.ByType(gin.ErrorTypeAny).String(); errs != "" {
			fields = append(fields, zap.String("errors", strings.TrimSpace(errs)))
		}

		_, quiet := quietPaths[c.Request.URL.Path]
		switch {
		case status >= 500:
			l.Error("http_request", fields...)
		case status >= 400:
			l.Warn("http_request", fields...)
		case quiet:
			l.Debug("http_request", fields...)
		default:
			l.Info("http_request", fields...)
		}
	}
}
