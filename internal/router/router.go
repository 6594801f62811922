package router

import (
	"context"
	"time"

	"github.com/appdotbuilder/bidan-hebat-management/internal/config"
	"github.com/appdotbuilder/bidan-hebat-management/internal/handler"
	"github.com/appdotbuilder/bidan-hebat-management/internal/infra"
	"github.com/appdotbuilder/bidan-hebat-management/internal/middleware"
	"github.com/appdotbuilder/bidan-hebat-management/internal/repository"
	"github.com/appdotbuilder/bidan-hebat-management/internal/service"
	"github.com/appdotbuilder/bidan-hebat-management/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine. rdb and
// cache may be nil when Redis is disabled; the dispatcher, cache and feed
// then degrade to no-ops. ctx bounds background goroutines owned by the
// router (rate limiter housekeeping).
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, rdb *redis.Client, cache *infra.Cache) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.NewRateLimiter(ctx, cfg.RateLimitPerMinute, time.Minute).Middleware())

	loc := cfg.Location()

	// ── Repositories ─────────────────────────────────────────────────────────
	repos := repository.NewRepositories(db)
	txManager := repository.NewTxManager(db)
	settingsRepo := repository.NewSettingsRepository(db)
	reportRepo := repository.NewReportRepository(db)

	// Worker dispatcher, injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)
	feed := worker.NewAlertFeed(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	settingsSvc := service.NewSettingsService(settingsRepo)
	stockSvc := service.NewStockService(txManager, repos, dispatcher, cache, loc)
	salesSvc := service.NewSalesService(txManager, repos, settingsSvc, dispatcher, cache, loc)
	medicineSvc := service.NewMedicineService(txManager, repos.Medicines(), cache, cfg.ExpiryWarningDays)
	patientSvc := service.NewPatientService(repos.Patients(), repos.Sales())
	dashboardSvc := service.NewDashboardService(reportRepo, repos.Sales(), cache, loc, cfg.ExpiryWarningDays)

	// ── Handlers ─────────────────────────────────────────────────────────────
	medicinesH := handler.NewMedicinesHandler(medicineSvc)
	stockH := handler.NewStockHandler(stockSvc)
	salesH := handler.NewSalesHandler(salesSvc)
	patientsH := handler.NewPatientsHandler(patientSvc)
	settingsH := handler.NewSettingsHandler(settingsSvc)
	dashboardH := handler.NewDashboardHandler(dashboardSvc)

	// ── Routes ───────────────────────────────────────────────────────────────
	r.GET("/health", handler.Health(db, rdb, cache))

	api := r.Group("/api")
	{
		meds := api.Group("/medicines")
		{
			meds.POST("", medicinesH.Create)
			meds.GET("", medicinesH.List)
			meds.GET("/low-stock", medicinesH.LowStock)
			meds.GET("/expiring", medicinesH.Expiring)
			meds.GET("/:id", medicinesH.Get)
			meds.PUT("/:id", medicinesH.Update)
			meds.DELETE("/:id", medicinesH.Deactivate)
			meds.PATCH("/:id/reactivate", medicinesH.Reactivate)
			meds.GET("/:id/movements", stockH.ListMovementsForMedicine)
		}

		stock := api.Group("/stock")
		{
			stock.POST("/movements", stockH.RecordMovement)
			stock.GET("/movements", stockH.ListMovements)
			stock.GET("/movements/range", stockH.ListMovementsInRange)
			stock.GET("/verify", stockH.VerifyLedgers)
		}

		sales := api.Group("/sales")
		{
			sales.POST("", salesH.CreateSale)
			sales.GET("", salesH.ListSales)
			sales.GET("/today", salesH.ListSalesToday)
			sales.GET("/range", salesH.ListSalesInRange)
			sales.GET("/:id", salesH.GetSale)
			sales.GET("/:id/receipt", salesH.GetReceipt)
			sales.POST("/:id/cancel", salesH.CancelSale)
		}

		patients := api.Group("/patients")
		{
			patients.POST("", patientsH.Create)
			patients.GET("", patientsH.List)
			patients.GET("/:id", patientsH.Get)
			patients.PUT("/:id", patientsH.Update)
			patients.DELETE("/:id", patientsH.Delete)
			patients.GET("/:id/sales", patientsH.ListSales)
		}

		settings := api.Group("/settings")
		{
			settings.GET("", settingsH.List)
			settings.GET("/clinic", settingsH.Clinic)
			settings.GET("/:key", settingsH.Get)
			settings.PUT("/:key", settingsH.Upsert)
			settings.DELETE("/:key", settingsH.Delete)
		}

		dash := api.Group("/dashboard")
		{
			dash.GET("/stats", dashboardH.Stats)
			dash.GET("/sales-summary", dashboardH.SalesSummary)
			dash.GET("/top-medicines", dashboardH.TopMedicines)
		}

		api.GET("/notifications", handler.Notifications(feed))
		api.GET("/notifications/dead-letters", handler.DeadLetters(rdb))
	}

	// Swagger UI, only enabled outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
