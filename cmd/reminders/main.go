package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	apptrepo "agendly/internal/appointments/repository"
	"agendly/internal/events"
	reminderrepo "agendly/internal/reminders/repository"
	"agendly/internal/reminders/service"
	"agendly/pkg/config"
	"agendly/pkg/kafka"
	kafka_config "agendly/pkg/kafka/config"
)

const ServiceName = "reminders"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Reminders worker",
		"sweep_interval", cfg.ReminderSweepInterval,
		"bucket", cfg.ReminderBucket,
	)

	kafkaCfg := kafka_config.Load()
	producer, err := kafka.NewProducer(kafkaCfg, cfg.Log, cfg.EventsTopic, cfg.EventsDLQTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create event producer", "error", err)
	}
	defer func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Warn("Failed to close producer", "error", err)
		}
	}()

	sweeper := service.NewSweeperService(
		apptrepo.NewMongoAppointmentRepository(cfg),
		reminderrepo.NewMongoReminderLogRepository(cfg),
		events.NewKafkaPublisher(producer, ServiceName),
		cfg,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := sweeper.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Reminder worker stopped", "error", err)
	}
	cfg.Log.Info("Reminders worker shut down")
}
