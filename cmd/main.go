package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"epif/assets"
	"epif/database"
	"epif/docs"
	"epif/internal/cache"
	"epif/internal/config"
	"epif/internal/content"
	"epif/internal/controllers"
	"epif/internal/features"
	"epif/internal/logging"
	"epif/internal/middleware"
	"epif/internal/ml"
	"epif/internal/repository"
	"epif/internal/services"
	"epif/routes"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	version      = "1.0.0"
	maxBodyBytes = 1 << 20
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.New("info", "text").WithError(err).Fatal("Invalid configuration")
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	// Swagger Documentation
	docs.SwaggerInfo.Title = "EPIF API"
	docs.SwaggerInfo.Description = "Fall-risk profiling and personalised interventions for elderly fallers."
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.Schemes = []string{"http", "https"}

	assetFS := assets.FS(cfg.AssetsDir)
	schema, err := features.LoadSchema(assetFS, assets.SchemaPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to load form schema")
	}
	library, err := content.Load(assetFS)
	if err != nil {
		log.WithError(err).Fatal("Failed to load content")
	}

	mlClient, err := ml.NewFromConfig(cfg, schema.FeatureNames())
	if err != nil {
		log.WithError(err).Fatal("Failed to create classifier client")
	}
	defer mlClient.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := ml.SyncFeatureNames(ctx, mlClient); err != nil {
		log.WithError(err).Warn("Classifier feature names unavailable, using the schema order")
	}
	if err := mlClient.HealthCheck(ctx); err != nil {
		log.WithError(err).Warn("Classifier health check failed; predictions will fail until it is available")
	} else {
		log.WithField("mode", cfg.ClassifierMode).Info("Classifier connection established successfully")
	}
	cancel()

	appCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	readiness := map[string]controllers.ReadinessCheck{
		"classifier": mlClient.HealthCheck,
	}

	var (
		db             *gorm.DB
		assessmentRepo repository.AssessmentRepository
	)
	if cfg.EnableDB {
		db, err = database.ConnectDatabase(cfg.Database, log)
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to database")
		}
		if err := database.MigrateDatabase(db, log); err != nil {
			log.WithError(err).Fatal("Failed to run database migrations")
		}
		database.MonitorDBConnections(appCtx, db, log)
		assessmentRepo = repository.NewAssessmentRepository(db)
		readiness["database"] = func(ctx context.Context) error { return database.Ping(ctx, db) }
	}

	var predictionCache cache.PredictionCache
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisClient, err := cache.NewRedisClient(ctx, cfg.RedisURL, cfg.PredictionCacheTTL)
		cancel()
		if err != nil {
			log.WithError(err).Warn("Prediction cache disabled")
		} else {
			defer redisClient.Close()
			predictionCache = redisClient
			readiness["cache"] = redisClient.Ping
		}
	}

	if assessmentRepo != nil && cfg.RetentionDays > 0 {
		retention, err := services.NewRetentionJob(assessmentRepo, cfg.RetentionDays, cfg.RetentionSchedule, log)
		if err != nil {
			log.WithError(err).Fatal("Invalid retention settings")
		}
		retention.Start()
		defer retention.Stop()
	}

	validator := services.NewValidator(schema, log)
	predictor := services.NewPredictor(mlClient, mlClient, cfg.ClassifierTimeout, log)
	selector := services.NewInterventionSelector(library.Interventions)
	assessmentService := services.NewAssessmentService(schema, validator, predictor, selector, predictionCache, assessmentRepo, log)

	if cfg.AMQPURL != "" {
		publisher, err := services.DialEventPublisher(cfg.AMQPURL, cfg.AMQPQueue, cfg.EventWorkers, log)
		if err != nil {
			log.WithError(err).Warn("Assessment events disabled")
		} else {
			publisher.Start()
			defer publisher.Close()
			assessmentService.WithEvents(publisher)
		}
	}

	// Initialize controllers
	assessmentController := controllers.NewAssessmentController(assessmentService, assessmentRepo, log)
	interventionController := controllers.NewInterventionController(selector)
	contentController := controllers.NewContentController(library)
	schemaController := controllers.NewSchemaController(schema)
	healthController := controllers.NewHealthController(version, readiness, log)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.LimitBodySize(maxBodyBytes))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", "X-Request-ID")
	if len(cfg.CORSOrigins) == 1 && cfg.CORSOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORSOrigins
	}
	router.Use(cors.New(corsConfig))

	routes.RegisterHealthRoutes(router, healthController)
	routes.RegisterSwaggerRoutes(router)
	routes.RegisterSchemaRoutes(router, schemaController)
	routes.RegisterAssessmentRoutes(router, assessmentController, cfg.JWTSecret)
	routes.RegisterInterventionRoutes(router, interventionController)
	routes.RegisterContentRoutes(router, contentController)

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        router,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("EPIF API server starting")
		log.Infof("API Documentation: http://localhost:%s/swagger/index.html", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	waitForShutdown(server, log)
}

func waitForShutdown(server *http.Server, log *logrus.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
}
