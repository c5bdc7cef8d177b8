package handler

import (
	"net/http"
	"time"

	"github.com/aki307/frext/config"
	"github.com/aki307/frext/middleware"
	"github.com/aki307/frext/service"
	"github.com/gin-gonic/gin"
)

// Deps are the services behind the mock API.
type Deps struct {
	Config    *config.Config
	Accounts  *service.Accounts
	Catalog   *service.Catalog
	Results   *service.ResultStore
	Processor *service.Processor
	Version   string
}

// NewDeps builds every service from cfg.
func NewDeps(cfg *config.Config, version string) Deps {
	catalog := service.NewCatalog()
	return Deps{
		Config:    cfg,
		Accounts:  service.NewAccounts(cfg.Users),
		Catalog:   catalog,
		Results:   service.NewResultStore(&cfg.Store),
		Processor: service.NewProcessor(cfg.ProcessingDelay(), catalog),
		Version:   version,
	}
}

// NewRouter wires middleware and every route under cfg.API.Prefix.
func NewRouter(d Deps) *gin.Engine {
	cfg := d.Config

	router := gin.New() // no default middleware
	router.MaxMultipartMemory = cfg.MaxFileSize() + 1<<20

	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS())
	router.Use(middleware.NoCache())
	router.Use(middleware.RateLimit(cfg.Server.RateLimitPerMinute, time.Minute))

	router.NoRoute(func(c *gin.Context) {
		fail(c, http.StatusNotFound, "Not found")
	})

	authHandler := NewAuthHandler(&cfg.Auth, d.Accounts)
	processHandler := NewProcessHandler(d.Processor, d.Catalog, cfg.MaxFileSize())
	templateHandler := NewTemplateHandler(d.Catalog)
	resultHandler := NewResultHandler(d.Results, d.Accounts, cfg.Store.MonthlyQuota)
	systemHandler := NewSystemHandler(d.Version)

	api := router.Group(cfg.API.Prefix)
	{
		api.GET("/health", systemHandler.Health)
		api.GET("/system/info", systemHandler.Info)

		api.POST("/ocr/process", processHandler.OCR)
		api.POST("/gpt/process", processHandler.GPT)
		api.POST("/process/complete", processHandler.Complete)

		api.GET("/templates", templateHandler.List)
		api.GET("/templates/:id", templateHandler.Get)

		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/signup", authHandler.Signup)
	}

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(&cfg.Auth, d.Accounts))
	{
		protected.POST("/auth/logout", authHandler.Logout)
		protected.GET("/auth/verify", authHandler.Verify)

		protected.GET("/history", resultHandler.History)
		protected.POST("/results/save", resultHandler.Save)
		protected.GET("/results/:id", resultHandler.Get)

		protected.GET("/user/profile", resultHandler.Profile)
		protected.GET("/user/usage-stats", resultHandler.UsageStats)
	}

	return router
}
