package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"freshCart/app/echo-server/router"
	"freshCart/business/category"
	"freshCart/business/product"
	"freshCart/business/recommend"
	psqlRepo "freshCart/internal/repository/postgres"
	redisRepo "freshCart/internal/repository/redis"
	"freshCart/internal/rest"
	"freshCart/pkg/config"
	"freshCart/pkg/database"
	redisdb "freshCart/pkg/database/redis"
	"freshCart/pkg/logger"
	"freshCart/pkg/utils"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting FreshCart", "version", cfg.App.Version)

	utils.InitJWT(cfg.JWT.SecretKey)

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	logger.Info("Database connected successfully")

	// Redis backs the profile cache; the engine runs without it.
	var profileCache recommend.ProfileCache
	redisClient, err := redisdb.NewRedisClient(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, profile caching disabled", "error", err)
	} else {
		profileCache = redisRepo.NewProfileCache(redisClient)
	}

	// Init repo
	productsRepo := psqlRepo.NewProductRepository(db)
	categoryRepo := psqlRepo.NewCategoryRepository(db)
	eventsRepo := psqlRepo.NewEventRepository(db)
	profilesRepo := psqlRepo.NewProfileRepository(db)
	similarityRepo := psqlRepo.NewSimilarityRepository(db)
	cartRepo := psqlRepo.NewCartRepository(db)
	recoRepo := psqlRepo.NewRecommendationRepository(db)

	// Init service
	productService := product.NewProductService(productsRepo)
	categoryService := category.NewCategoryService(categoryRepo)
	profileBuilder := recommend.NewProfileBuilder(
		eventsRepo, productsRepo, profilesRepo, profileCache,
		cfg.Recommend.ProfileCacheTTL, cfg.Recommend.ProfileEventWindow,
	)
	recoService := recommend.NewService(productsRepo, eventsRepo, similarityRepo, cartRepo, profileBuilder)
	feedback := recommend.NewFeedbackRecorder(recoRepo, cfg.Recommend.RecommendationTTL)
	recorder := recommend.NewRecorder(eventsRepo, profileCache)

	// Init handler
	productHandler := rest.NewProductHandler(productService)
	categoryHandler := rest.NewCategoryHandler(categoryService)
	recoHandler := rest.NewRecommendationHandler(recoService, feedback, recorder)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Setup routes
	api := e.Group("/api/v1")
	router.SetupProductRoutes(api, productHandler)
	router.SetupCategoryRoutes(api, categoryHandler)
	router.SetupRecommendationRoutes(api, recoHandler)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	if redisClient != nil {
		if err := redisdb.CloseRedisClient(redisClient); err != nil {
			logger.Error("Redis shutdown error", "error", err)
		}
	}

	logger.Info("Server stopped")
}
