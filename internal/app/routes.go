package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"Ticketing/internal/cache"
	"Ticketing/internal/config"
	"Ticketing/internal/dto"
	"Ticketing/internal/handlers"
	"Ticketing/internal/metrics"
	"Ticketing/internal/middleware"
	"Ticketing/internal/ratelimit"
	"Ticketing/internal/repo"
	"Ticketing/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, log *slog.Logger, db *pgxpool.Pool, rdb *redis.Client) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	r.Use(middleware.RequestID())
	r.Use(middleware.BodyLimit(cfg.HTTP.MaxBodyBytes))
	r.Use(m.Middleware())

	r.GET("/", rootHandler(cfg))
	r.GET("/version", versionHandler(cfg))
	r.GET("/metrics", metrics.Handler(reg))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(302, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
	))

	limiter := ratelimit.New(rdb, cfg.Rate.MaxRequests, cfg.Rate.Window.Duration())
	api := r.Group("/api/v1", limiter.Middleware())

	ticketRepo := repo.NewPGTicketRepo(db)
	ticketCache := cache.NewTicketCache(rdb, cfg.Redis.DefaultTTL.Duration())
	ticketSvc := service.NewTicketService(ticketRepo, ticketCache)
	ticketHandler := handlers.NewTicketHandler(ticketSvc, log, cfg.App.Dev())
	registerTicketRoutes(api, ticketHandler)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error: "Route not found",
			Details: []string{fmt.Sprintf("The requested endpoint %s %s does not exist",
				c.Request.Method, c.Request.URL.Path)},
		})
	})
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "Ticketing API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"docs":    "/swagger/index.html",
			"spec":    "/swagger-doc.json",
			"health":  "/api/v1/health",
			"api":     "/api/v1",
		})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.Data(200, "application/json; charset=utf-8", []byte(doc))
	}
}

func registerTicketRoutes(api *gin.RouterGroup, h *handlers.TicketHandler) {
	api.POST("/tickets", h.Create)
	api.GET("/tickets", h.List)
	api.GET("/tickets/:id", h.GetByID)
	api.PUT("/tickets/:id", h.Update)
	api.DELETE("/tickets/:id", h.Delete)
	api.GET("/stats", h.Stats)
	api.GET("/health", h.Health)
}
