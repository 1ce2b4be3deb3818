package config

import (
	"citamed-service/internal/pkg/utils"

	"github.com/joho/godotenv"
)

func init() {
	godotenv.Load()
}

func NewDriverConfig() *DriverConfig {
	return &DriverConfig{
		MongoDB: MongoDB{
			Port:     utils.GetEnvString("MONGODB_PORT", "27017"),
			Host:     utils.GetEnvString("MONGODB_HOST", "localhost"),
			DbName:   utils.GetEnvString("MONGODB_DB_NAME", "citamed"),
			Username: utils.GetEnvString("MONGODB_USERNAME", "defaultUsername"),
			Password: utils.GetEnvString("MONGODB_PASSWORD", "defaultPassword"),
		},
		Redis: Redis{
			Host:     utils.GetEnvString("REDIS_HOST", "localhost"),
			Port:     utils.GetEnvString("REDIS_PORT", "6379"),
			Password: utils.GetEnvString("REDIS_PASSWORD", ""),
		},
		Logger: Logger{
			Level:               utils.GetEnvString("LOGGER_LEVEL", "debug"),
			OutputFileName:      utils.GetEnvString("LOGGER_OUTPUT_FILENAME", "logger.log"),
			OutputErrorFileName: utils.GetEnvString("LOGGER_OUTPUT_ERROR_FILENAME", "logger_error.log"),
		},
		RabbitMQ: RabbitMQ{
			Port:     utils.GetEnvString("RABBITMQ_PORT", "5672"),
			Host:     utils.GetEnvString("RABBITMQ_HOST", "localhost"),
			Username: utils.GetEnvString("RABBITMQ_USERNAME", "defaultUsername"),
			Password: utils.GetEnvString("RABBITMQ_PASSWORD", "defaultPassword"),
		},
	}
}

func NewInternalConfig() *InternalConfig {
	return &InternalConfig{
		App: App{
			Env:                        utils.GetEnvString("APP_ENV", "development"),
			Port:                       utils.GetEnvString("APP_PORT", ":8080"),
			Version:                    utils.GetEnvString("APP_VERSION", "v1.0"),
			Address:                    utils.GetEnvString("APP_ADDRESS", "localhost"),
			Timezone:                   utils.GetEnvString("APP_TIMEZONE", "America/Bogota"),
			EndpointPrefix:             utils.GetEnvString("APP_ENDPOINT_PREFIX", "/v1"),
			MaxRequests:                utils.GetEnvInt("APP_MAX_REQUEST", 100),
			ShutdownTimeoutInSeconds:   utils.GetEnvInt("APP_SHUTDOWN_TIMEOUT_IN_SECONDS", 10),
			MaxTimeRequestsPerSeconds:  utils.GetEnvInt("APP_MAX_TIME_REQUESTS_PER_SECONDS", 60),
			RequestBodyLimitInMegabyte: utils.GetEnvInt("APP_REQUEST_BODY_LIMIT_IN_MEGABYTE", 2),
		},
		JWT: AppJWT{
			Secret:        utils.GetEnvString("JWT_SECRET", "anyjwt"),
			ExpTimeInHour: utils.GetEnvInt("JWT_EXP_TIME_IN_HOUR", 1),
		},
		MongoDB: AppMongoDB{
			ControlDBName:     utils.GetEnvString("MONGODB_CONTROL_DB_NAME", "citamed_control"),
			TenantsCollection: utils.GetEnvString("MONGODB_TENANTS_COLLECTION", "tenants"),
		},
		Scheduling: AppScheduling{
			SearchWorkers:               utils.GetEnvInt("SCHEDULING_SEARCH_WORKERS", 4),
			MaxQueue:                    utils.GetEnvInt("SCHEDULING_MAX_QUEUE", 10),
			WorkerPollIntervalInSeconds: utils.GetEnvInt("SCHEDULING_WORKER_POLL_INTERVAL_IN_SECONDS", 2),
			SearchTimeoutInSeconds:      utils.GetEnvInt("SCHEDULING_SEARCH_TIMEOUT_IN_SECONDS", 120),
			SlotCursorTTLInMinutes:      utils.GetEnvInt("SCHEDULING_SLOT_CURSOR_TTL_IN_MINUTES", 30),
			SnapshotCronSpec:            utils.GetEnvString("SCHEDULING_SNAPSHOT_CRON_SPEC", "@daily"),
		},
		Booking: AppBooking{
			WriteTimeoutInSeconds: utils.GetEnvInt("BOOKING_WRITE_TIMEOUT_IN_SECONDS", 60),
			DayLockTTLInSeconds:   utils.GetEnvInt("BOOKING_DAY_LOCK_TTL_IN_SECONDS", 30),
		},
		Callback: AppCallback{
			MaxRetries:                utils.GetEnvInt("CALLBACK_MAX_RETRIES", 3),
			FirstBackoffInSeconds:     utils.GetEnvInt("CALLBACK_FIRST_BACKOFF_IN_SECONDS", 30),
			SecondBackoffInSeconds:    utils.GetEnvInt("CALLBACK_SECOND_BACKOFF_IN_SECONDS", 120),
			HTTPTimeoutInSeconds:      utils.GetEnvInt("CALLBACK_HTTP_TIMEOUT_IN_SECONDS", 15),
			RatePerSecond:             utils.GetEnvInt("CALLBACK_RATE_PER_SECOND", 20),
			Burst:                     utils.GetEnvInt("CALLBACK_BURST", 40),
			DeliveredMarkerTTLInHours: utils.GetEnvInt("CALLBACK_DELIVERED_MARKER_TTL_IN_HOURS", 24),
		},
		Notification: AppNotification{
			URL:                  utils.GetEnvString("NOTIFICATION_URL", ""),
			HTTPTimeoutInSeconds: utils.GetEnvInt("NOTIFICATION_HTTP_TIMEOUT_IN_SECONDS", 10),
		},
	}
}
