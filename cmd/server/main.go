package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bookit/experience-booking/internal/config"
	"github.com/bookit/experience-booking/internal/database"
	"github.com/bookit/experience-booking/internal/events"
	"github.com/bookit/experience-booking/internal/handlers"
	"github.com/bookit/experience-booking/internal/logger"
	"github.com/bookit/experience-booking/internal/models"
	"github.com/bookit/experience-booking/internal/mq"
	"github.com/bookit/experience-booking/internal/obs"
	"github.com/bookit/experience-booking/internal/router"
	"github.com/bookit/experience-booking/internal/service"
	"github.com/bookit/experience-booking/internal/store"
	"github.com/bookit/experience-booking/internal/store/memory"
	"github.com/bookit/experience-booking/internal/websocket"
	"github.com/sirupsen/logrus"
)

const (
	serviceName    = "bookit-api"
	serviceVersion = "1.0.0"
)

func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	models.UseNumericAmounts()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracer, err := obs.InitTracer(ctx, serviceName, serviceVersion, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("Failed to init tracer: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.WithError(err).Warn("tracer shutdown failed")
		}
	}()

	// Storage
	var st store.Store
	switch cfg.Store {
	case config.StoreMemory:
		mem := memory.NewStore()
		memory.LoadSample(mem)
		st = mem
		log.Info("Using in-memory store with sample data")
	default:
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer pool.Close()
		st = database.NewRepository(pool)
		log.Info("Connected to database")
	}

	// Live availability
	hub := websocket.NewHub(log)
	go hub.Run(ctx)

	publishers := events.Fanout{hub}
	if cfg.RabbitURL != "" {
		pub, err := mq.NewPublisher(cfg.RabbitURL, cfg.BookingExchange)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer pub.Close()
		publishers = append(publishers, pub)
		log.WithField("exchange", cfg.BookingExchange).Info("Publishing booking events")
	}

	bookingService := service.NewBookingService(st, publishers, log)
	h := handlers.NewHandler(bookingService, log)
	r := router.SetupRouter(h, hub.HandleWebSocket, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("API Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}
	cancel()

	log.Info("Server stopped")
}
