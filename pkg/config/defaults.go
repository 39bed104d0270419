package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "agendly"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultSlotLockTTL = 10 * time.Second

	// The sweep runs hourly with 1-hour-wide reminder buckets; the
	// dedupe marker keeps overlapping sweeps idempotent either way.
	DefaultReminderSweepInterval = 1 * time.Hour
	DefaultReminderBucket        = 1 * time.Hour
	DefaultDayBeforeLead         = 24 * time.Hour
	DefaultHourBeforeLead        = 1 * time.Hour

	DefaultEventsTopic     = "appointment-events"
	DefaultEventsDLQTopic  = "appointment-events-dlq"
	DefaultNotifierGroupID = "notifier"

	DefaultPaginationLimit = 100
)
