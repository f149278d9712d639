package routes

import (
	"io"
	"net/http"
	"time"

	"boxoffice/internal/events"
	"boxoffice/internal/holds"
	"boxoffice/internal/lease"
	"boxoffice/internal/notifier"
	"boxoffice/internal/purchase"
	"boxoffice/internal/seats"
	"boxoffice/internal/shared/config"
	"boxoffice/internal/shared/database"
	"boxoffice/pkg/clock"

	"github.com/gin-gonic/gin"
)

// Dependencies are the long-lived components main wires up once and the
// routes share.
type Dependencies struct {
	Leases   lease.Manager
	Notifier notifier.Notifier
	Hub      *notifier.Hub
	Resolver *seats.Resolver
	SeatRepo seats.Repository
	Issuer   *holds.TokenIssuer
	Clock    clock.Clock
}

// Router holds all route dependencies
type Router struct {
	config *config.Config
	db     *database.DB
	deps   *Dependencies
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, deps *Dependencies) *Router {
	return &Router{
		config: cfg,
		db:     db,
		deps:   deps,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupSeatRoutes(api)
		r.setupHoldRoutes(api)
		r.setupPurchaseRoutes(api)
		r.setupStreamRoutes(api)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "boxoffice",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "boxoffice",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}

// setupSeatRoutes configures seat map, locking and admin blocking routes
func (r *Router) setupSeatRoutes(rg *gin.RouterGroup) {
	seatService := seats.NewService(
		r.deps.Resolver,
		r.deps.SeatRepo,
		r.deps.Leases,
		r.deps.Notifier,
		r.config.Inventory,
		r.deps.Clock,
	)
	seats.SetupSeatRoutes(rg, seats.NewController(seatService))
}

// setupHoldRoutes configures the checkout hold route
func (r *Router) setupHoldRoutes(rg *gin.RouterGroup) {
	eventRepo := events.NewRepository(r.db.GetPostgreSQL())
	holdService := holds.NewService(
		r.deps.Resolver,
		eventRepo,
		r.deps.Leases,
		r.deps.Issuer,
		r.deps.Notifier,
		r.config.Inventory,
		r.deps.Clock,
	)
	holds.SetupHoldRoutes(rg, holds.NewController(holdService))
}

// setupPurchaseRoutes configures the purchase confirmation route
func (r *Router) setupPurchaseRoutes(rg *gin.RouterGroup) {
	eventRepo := events.NewRepository(r.db.GetPostgreSQL())
	purchaseRepo := purchase.NewRepository(r.db.GetPostgreSQL())
	purchaseService := purchase.NewService(
		r.deps.Issuer,
		eventRepo,
		r.deps.Leases,
		purchaseRepo,
		r.deps.Resolver,
		r.deps.Notifier,
		r.config.Inventory,
	)
	purchase.SetupPurchaseRoutes(rg, purchase.NewController(purchaseService))
}

// setupStreamRoutes exposes the in-process hub as a per-event SSE stream
// for connected viewers. Delivery is at-most-once with no replay: clients
// re-fetch the seat map on (re)connect.
func (r *Router) setupStreamRoutes(rg *gin.RouterGroup) {
	rg.GET("/events/:eventId/stream", func(c *gin.Context) {
		sub := r.deps.Hub.Subscribe(c.Param("eventId"))
		defer sub.Close()

		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")

		c.Stream(func(w io.Writer) bool {
			select {
			case env, ok := <-sub.C():
				if !ok {
					return false
				}
				c.SSEvent(env.Type, env)
				return true
			case <-c.Request.Context().Done():
				return false
			}
		})
	})
}
