package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/course-timetable-api/api/swagger"
	"github.com/noah-isme/course-timetable-api/internal/handler"
	"github.com/noah-isme/course-timetable-api/internal/middleware"
	"github.com/noah-isme/course-timetable-api/internal/repository"
	"github.com/noah-isme/course-timetable-api/internal/service"
	"github.com/noah-isme/course-timetable-api/internal/timetable"
	"github.com/noah-isme/course-timetable-api/pkg/cache"
	"github.com/noah-isme/course-timetable-api/pkg/config"
	"github.com/noah-isme/course-timetable-api/pkg/database"
	"github.com/noah-isme/course-timetable-api/pkg/jobs"
	"github.com/noah-isme/course-timetable-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/course-timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/course-timetable-api/pkg/middleware/requestid"
)

// @title Course Timetable API
// @version 1.0.0
// @description Weekly course calendar with overlap layout, course catalogue and program requirements
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	engineCfg, err := cfg.Timetable.EngineConfig()
	if err != nil {
		logr.Fatal("invalid timetable configuration", zap.Error(err))
	}
	engine, err := timetable.NewEngine(engineCfg)
	if err != nil {
		logr.Fatal("invalid timetable configuration", zap.Error(err))
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	switch {
	case errors.Is(err, cache.ErrDisabled):
		logr.Info("redis disabled, option caching off")
	case err != nil:
		logr.Warn("redis unavailable, option caching off", zap.Error(err))
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	courseRepo := repository.NewCourseRepository(db)
	referenceRepo := repository.NewReferenceRepository(db)
	programRepo := repository.NewProgramRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, cache.Keyspace(cfg.Redis.KeyPrefix), logr)
	defer cacheRepo.Close() //nolint:errcheck

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Options.CacheTTL, logr, cfg.Options.CacheEnabled && redisClient != nil)
	timetableSvc := service.NewTimetableService(courseRepo, programRepo, engine, cacheSvc, cfg.Options.CacheTTL, metrics, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, referenceRepo, cacheSvc, validate, logr)
	referenceSvc := service.NewReferenceService(referenceRepo, cacheSvc, validate, logr)
	programSvc := service.NewProgramService(programRepo, referenceRepo, cacheSvc, validate, logr)
	exportSvc := service.NewExportService(courseSvc, timetableSvc, logr, nil, nil)
	auditSvc := service.NewAuditService(userRepo, logr, jobs.QueueConfig{Workers: 2, BufferSize: 256, MaxRetries: 3})
	userSvc := service.NewUserService(userRepo, auditSvc, validate, logr)
	authSvc := service.NewAuthService(userRepo, buildDirectory(cfg, logr), auditSvc, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		Issuer:             cfg.JWT.Issuer,
		BootstrapSuperuser: cfg.Directory.BootstrapAdmin,
	})

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS))
	r.Use(middleware.Metrics(metrics))

	deps := map[string]handler.Pinger{"postgres": db}
	if redisClient != nil {
		deps["redis"] = handler.PingFunc(cacheRepo.Ping)
	}

	handler.RegisterRoutes(r, handler.RouterConfig{
		APIPrefix:    cfg.APIPrefix,
		Tokens:       authSvc,
		Audit:        auditSvc,
		LoginLimiter: middleware.NewRateLimiter(cfg.Login.RatePerMinute, cfg.Login.Burst),
		Logger:       logr,
	}, handler.Handlers{
		Auth:      handler.NewAuthHandler(authSvc),
		Timetable: handler.NewTimetableHandler(timetableSvc, exportSvc, cfg.Timetable.PixelsPerMin),
		Course:    handler.NewCourseHandler(courseSvc, exportSvc),
		Reference: handler.NewReferenceHandler(referenceSvc),
		Program:   handler.NewProgramHandler(programSvc),
		User:      handler.NewUserHandler(userSvc),
		Metrics:   handler.NewMetricsHandler(metrics, deps),
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	auditSvc.Start(context.Background())

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env,
			"window", fmt.Sprintf("%s-%s", engineCfg.Window.Start, engineCfg.Window.End))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	auditSvc.Stop()
}

// buildDirectory picks the staff authenticator: bypass for local development,
// otherwise configured local users followed by LDAP.
func buildDirectory(cfg *config.Config, logr *zap.Logger) service.DirectoryAuthenticator {
	if cfg.Directory.Bypass {
		logr.Warn("directory bypass enabled, any username is accepted")
		return service.NewBypassDirectory(logr)
	}

	var chain service.ChainDirectory
	if len(cfg.Directory.LocalUsers) > 0 {
		chain = append(chain, service.NewLocalDirectory(cfg.Directory.LocalUsers))
	}
	if cfg.Directory.URL != "" {
		chain = append(chain, service.NewLDAPDirectory(service.LDAPConfig{
			URL:          cfg.Directory.URL,
			MemberDN:     cfg.Directory.MemberDN,
			BindDN:       cfg.Directory.BindDN,
			BindPassword: cfg.Directory.BindPassword,
			SearchFilter: cfg.Directory.SearchFilter,
			Timeout:      cfg.Directory.Timeout,
		}, logr))
	}
	if len(chain) == 0 {
		logr.Warn("no directory configured, every login will be rejected")
	}
	return chain
}
