package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	pubnub "github.com/pubnub/go/v7"

	"raffle-system/config"
	"raffle-system/handlers"
	"raffle-system/internal/store"
	_ "raffle-system/migrations"
	"raffle-system/monitoring"
	"raffle-system/security"
	"raffle-system/services"
	"raffle-system/utils"
)

func main() {
	app := pocketbase.New()

	cfg := config.LoadConfig()

	redisClient := utils.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	defer redisClient.Close()

	pnConfig := pubnub.NewConfigWithUserId(pubnub.UserId(cfg.PubNubUUID))
	pnConfig.PublishKey = cfg.PubNubPublishKey
	pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
	pnConfig.SecretKey = cfg.PubNubSecretKey
	pn := pubnub.NewPubNub(pnConfig)

	monitor := monitoring.NewMonitor()

	// The fallback store keeps individual collections usable from memory
	// when their remote schema is missing or broken.
	fallback := store.NewFallbackStore(store.NewPocketBaseStore(app))

	inventory := services.NewInventoryService(fallback, redisClient, pn, cfg, monitor)

	ticketHandler := handlers.NewTicketHandler(inventory)
	saleHandler := handlers.NewSaleHandler(inventory)
	reservationHandler := handlers.NewReservationHandler(inventory)
	assignmentHandler := handlers.NewAssignmentHandler(inventory)
	adminHandler := handlers.NewAdminHandler(app, inventory, fallback)

	limiter := security.NewRateLimiter(redisClient, cfg.RateLimitPerMinute)

	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: true,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleShutdown(cancel, inventory)

	// Change feed hooks must be bound before the app starts so no record
	// event is missed during startup.
	inventory.Feed.BindToApp(app)

	if cfg.EnableMetrics {
		go monitoring.ServeMetrics(cfg.MetricsPort)
	}

	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		if err := inventory.Start(ctx); err != nil {
			return err
		}

		g := e.Router.Group("/api/raffle")
		g.BindFunc(limiter.AntiBot())

		// Ticket state surface
		g.GET("/tickets", ticketHandler.ListStates)
		g.GET("/tickets/{number}", ticketHandler.GetState)
		g.POST("/validate", ticketHandler.Validate)
		g.POST("/selections", ticketHandler.Select).BindFunc(limiter.WriteRateLimit())
		g.DELETE("/selections", ticketHandler.Release)

		// Sales
		g.POST("/sales", saleHandler.Create).BindFunc(limiter.WriteRateLimit())
		g.POST("/sales/{id}/paid", saleHandler.MarkPaid)
		g.DELETE("/sales/{id}", saleHandler.Delete)

		// Reservations
		g.POST("/reservations", reservationHandler.Create).BindFunc(limiter.WriteRateLimit())
		g.POST("/reservations/{id}/confirm", reservationHandler.Confirm)
		g.POST("/reservations/{id}/cancel", reservationHandler.Cancel)
		g.POST("/reservations/{id}/extend", reservationHandler.Extend)

		// Seller assignments
		g.POST("/assignments", assignmentHandler.Create).BindFunc(limiter.WriteRateLimit())
		g.POST("/assignments/{id}/paid", assignmentHandler.MarkPaid)
		g.POST("/assignments/{id}/cancel", assignmentHandler.Cancel)
		g.PUT("/assignments/{id}/owners/{number}", assignmentHandler.UpdateOwner)

		// Admin
		g.POST("/admin/verify-consistency", adminHandler.VerifyConsistency)
		g.GET("/admin/summary", adminHandler.GetSummary)
		g.GET("/admin/duplicates", adminHandler.GetDuplicates)
		g.GET("/admin/raffle-config", adminHandler.GetRaffleConfig)
		g.PUT("/admin/raffle-config", adminHandler.UpdateRaffleConfig)

		e.Router.GET("/health", func(e *core.RequestEvent) error {
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				return e.JSON(http.StatusServiceUnavailable, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}

			resp := map[string]interface{}{"status": "healthy"}
			if last, lastErr := inventory.Reconciler.LastSync(); !last.IsZero() {
				resp["last_sync"] = last.UTC().Format(time.RFC3339)
				resp["sync_age_seconds"] = int(time.Since(last).Seconds())
				if lastErr != nil {
					resp["status"] = "degraded"
					resp["sync_error"] = lastErr.Error()
				}
			}
			if degraded := fallback.DegradedCollections(); len(degraded) > 0 {
				resp["status"] = "degraded"
				resp["degraded_collections"] = degraded
			}
			return e.JSON(http.StatusOK, resp)
		})

		log.Println("Server routes registered")

		return e.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}

// handleShutdown stops background workers before the process exits.
func handleShutdown(cancel context.CancelFunc, inventory *services.InventoryService) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
	inventory.Stop()
	cancel()
}
