package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	apptrepo "agendly/internal/appointments/repository"
	"agendly/internal/notifier"
	"agendly/pkg/config"
	"agendly/pkg/kafka"
	kafka_config "agendly/pkg/kafka/config"
)

const ServiceName = "notifier"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Notifier service",
		"topic", cfg.EventsTopic,
		"group_id", cfg.NotifierGroupID,
	)

	n := notifier.New(
		apptrepo.NewMongoAppointmentRepository(cfg),
		notifier.NewLogEmailSink(cfg.Log),
		notifier.NewLogCalendarSink(cfg.Log),
		cfg,
	)

	kafkaCfg := kafka_config.Load()
	consumer, err := kafka.NewConsumer(kafkaCfg, cfg.Log, cfg.EventsTopic, cfg.NotifierGroupID, cfg.EventsDLQTopic, n.Handle)
	if err != nil {
		cfg.Log.Fatal("Failed to create event consumer", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		if err := consumer.Close(); err != nil {
			cfg.Log.Warn("Failed to close consumer", "error", err)
		}
	}()

	if err := consumer.Start(ctx); err != nil {
		cfg.Log.Error("Notifier consumer stopped", "error", err)
	}
	cfg.Log.Info("Notifier service shut down")
}
