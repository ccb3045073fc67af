package main

import (
	"context"
	"errors"

	"github.com/bookit/experience-booking/internal/activities"
	"github.com/bookit/experience-booking/internal/config"
	"github.com/bookit/experience-booking/internal/consumer"
	"github.com/bookit/experience-booking/internal/database"
	"github.com/bookit/experience-booking/internal/events"
	"github.com/bookit/experience-booking/internal/logger"
	"github.com/bookit/experience-booking/internal/models"
	"github.com/bookit/experience-booking/internal/mq"
	"github.com/bookit/experience-booking/internal/obs"
	"github.com/bookit/experience-booking/internal/workflows"
	"github.com/sirupsen/logrus"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
)

const (
	serviceName    = "bookit-worker"
	serviceVersion = "1.0.0"
)

func main() {
	cfg, err := config.LoadWorker()
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

	// Connect to database
	log.Info("Connecting to database...")
	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()
	log.Info("Connected to database")

	repo := database.NewRepository(pool)

	// Connect to Temporal
	log.Infof("Connecting to Temporal at %s...", cfg.TemporalHost)
	c, err := client.Dial(client.Options{
		HostPort: cfg.TemporalHost,
	})
	if err != nil {
		log.Fatalf("Failed to connect to Temporal: %v", err)
	}
	defer c.Close()
	log.Info("Connected to Temporal")

	// Create worker
	w := worker.New(c, cfg.TaskQueue, worker.Options{})

	w.RegisterWorkflow(workflows.BookingNotificationWorkflow)

	acts := activities.NewActivities(repo, activities.NewLogMailer(log))
	w.RegisterActivityWithOptions(acts.SendBookingConfirmation, activity.RegisterOptions{Name: workflows.ActivitySendConfirmation})
	w.RegisterActivityWithOptions(acts.SendCancellationNotice, activity.RegisterOptions{Name: workflows.ActivitySendCancellation})

	// Consume booking events
	sub, err := mq.NewConsumer(cfg.RabbitURL, cfg.BookingExchange, cfg.NotificationQueue, events.Kinds(), cfg.Prefetch)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer sub.Close()

	deliveries, err := sub.Deliveries(ctx)
	if err != nil {
		log.Fatalf("Failed to consume %s: %v", cfg.NotificationQueue, err)
	}

	bookingConsumer := consumer.NewBookingConsumer(c, cfg.TaskQueue, log)
	go func() {
		err := bookingConsumer.Run(ctx, deliveries)
		if errors.Is(err, consumer.ErrDeliveriesClosed) {
			log.WithError(err).Error("booking event consumer stopped")
		}
	}()
	log.WithFields(logrus.Fields{
		"exchange": cfg.BookingExchange,
		"queue":    cfg.NotificationQueue,
	}).Info("Consuming booking events")

	// Start worker
	log.Info("Starting Temporal worker...")
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("Worker failed: %v", err)
	}
}
