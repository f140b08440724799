package cmd

import "time"

// Config carries every external setting the service needs, loaded from the
// environment in cmd/app.
type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	RedisURL       string
	IdempotencyTTL time.Duration

	AMQPUrl   string
	AMQPQueue string

	OutboxBatchSize  int
	CloseLockTimeout time.Duration
}
