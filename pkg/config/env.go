package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvSlotLockTTL = "SLOT_LOCK_TTL"

	EnvReminderSweepInterval = "REMINDER_SWEEP_INTERVAL"
	EnvReminderBucket        = "REMINDER_BUCKET"
	EnvDayBeforeLead         = "REMINDER_DAY_BEFORE_LEAD"
	EnvHourBeforeLead        = "REMINDER_HOUR_BEFORE_LEAD"

	EnvEventsTopic     = "EVENTS_TOPIC"
	EnvEventsDLQTopic  = "EVENTS_DLQ_TOPIC"
	EnvNotifierGroupID = "NOTIFIER_GROUP_ID"
)
