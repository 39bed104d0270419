package main

import (
	"agendly/internal/appointments/handler"
	apptrepo "agendly/internal/appointments/repository"
	"agendly/internal/appointments/service"
	"agendly/internal/appointments/validator"
	"agendly/internal/events"
	salonrepo "agendly/internal/salons/repository"
	"agendly/pkg/app"
	"agendly/pkg/config"
	"agendly/pkg/kafka"
	kafka_config "agendly/pkg/kafka/config"
)

const ServiceName = "appointments"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Appointments service")

	publisher := initPublisher(cfg)
	bookingService, lifecycleService := initServices(cfg, publisher)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		handler.NewAppointmentHandler(bookingService, lifecycleService, cfg.Log),
		handler.NewHealthHandler(cfg.Client.Mongo.Client, cfg.Log),
	)
	serverApp.Run()
}

func initPublisher(cfg *config.Config) events.Publisher {
	kafkaCfg := kafka_config.Load()
	producer, err := kafka.NewProducer(kafkaCfg, cfg.Log, cfg.EventsTopic, cfg.EventsDLQTopic)
	if err != nil {
		cfg.Log.Warn("Event bus unavailable, lifecycle events disabled", "error", err)
		return events.NopPublisher{}
	}
	return events.NewKafkaPublisher(producer, ServiceName)
}

func initServices(cfg *config.Config, publisher events.Publisher) (service.BookingService, service.LifecycleService) {
	apptValidator := validator.NewAppointmentValidator(cfg.Log)
	apptRepo := apptrepo.NewMongoAppointmentRepository(cfg)
	lockRepo := apptrepo.NewSlotLockRepository(cfg)

	bookingService := service.NewBookingService(
		apptRepo,
		lockRepo,
		salonrepo.NewMongoSalonRepository(cfg),
		salonrepo.NewMongoServiceRepository(cfg),
		salonrepo.NewMongoStaffRepository(cfg),
		apptValidator,
		publisher,
		cfg,
	)
	lifecycleService := service.NewLifecycleService(
		apptRepo,
		apptValidator,
		publisher,
		cfg,
	)

	cfg.Log.Info("Appointment services initialized", "database", cfg.MongoDatabaseName)
	return bookingService, lifecycleService
}
