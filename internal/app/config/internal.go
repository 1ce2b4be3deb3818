package config

type InternalConfig struct {
	App          App             `mapstructure:"app"`
	JWT          AppJWT          `mapstructure:"jwt"`
	MongoDB      AppMongoDB      `mapstructure:"mongodb"`
	Scheduling   AppScheduling   `mapstructure:"scheduling"`
	Booking      AppBooking      `mapstructure:"booking"`
	Callback     AppCallback     `mapstructure:"callback"`
	Notification AppNotification `mapstructure:"notification"`
}

type App struct {
	Env                        string `mapstructure:"env"`
	Port                       string `mapstructure:"port"`
	Version                    string `mapstructure:"version"`
	Address                    string `mapstructure:"address"`
	Timezone                   string `mapstructure:"timezone"`
	EndpointPrefix             string `mapstructure:"endpoint_prefix"`
	MaxRequests                int    `mapstructure:"max_requests"`
	ShutdownTimeoutInSeconds   int    `mapstructure:"shutdown_timeout_in_seconds"`
	MaxTimeRequestsPerSeconds  int    `mapstructure:"max_time_requests_per_seconds"`
	RequestBodyLimitInMegabyte int    `mapstructure:"request_body_limit_in_megabyte"`
}

type AppJWT struct {
	Secret        string `mapstructure:"secret"`
	ExpTimeInHour int    `mapstructure:"exp_time_in_hour"`
}

type AppMongoDB struct {
	// ControlDBName holds the tenant registry; tenant data lives in the
	// per-tenant databases the registry points to.
	ControlDBName     string `mapstructure:"control_db_name"`
	TenantsCollection string `mapstructure:"tenants_collection"`
}

// AppScheduling drives the slot search path and the queue workers.
type AppScheduling struct {
	// SearchWorkers sizes the slot-search consumer pool.
	SearchWorkers int `mapstructure:"search_workers"`
	// MaxQueue defines how many items a worker processes per tick
	MaxQueue int `mapstructure:"max_queue"`
	// WorkerPollIntervalInSeconds is the queue polling cadence
	WorkerPollIntervalInSeconds int `mapstructure:"worker_poll_interval_in_seconds"`
	SearchTimeoutInSeconds      int `mapstructure:"search_timeout_in_seconds"`
	// SlotCursorTTLInMinutes bounds how long a pagination cursor survives
	SlotCursorTTLInMinutes int `mapstructure:"slot_cursor_ttl_in_minutes"`
	// SnapshotCronSpec defines the cron expression for the capacity snapshot worker (e.g., "@daily")
	SnapshotCronSpec string `mapstructure:"snapshot_cron_spec"`
}

// AppBooking drives the single-writer booking queue.
type AppBooking struct {
	WriteTimeoutInSeconds int `mapstructure:"write_timeout_in_seconds"`
	// DayLockTTLInSeconds bounds the per-agenda-per-date redis lock held
	// around the check-then-insert loop.
	DayLockTTLInSeconds int `mapstructure:"day_lock_ttl_in_seconds"`
}

// AppNotification points at the messaging provider that forwards booking
// notices to the patient's channel. An empty URL disables notices.
type AppNotification struct {
	URL                  string `mapstructure:"url"`
	HTTPTimeoutInSeconds int    `mapstructure:"http_timeout_in_seconds"`
}

// AppCallback drives terminal callback delivery.
type AppCallback struct {
	// MaxRetries is the attempt ceiling for transient failures
	MaxRetries int `mapstructure:"max_retries"`
	// FirstBackoffInSeconds / SecondBackoffInSeconds space the retries
	FirstBackoffInSeconds  int `mapstructure:"first_backoff_in_seconds"`
	SecondBackoffInSeconds int `mapstructure:"second_backoff_in_seconds"`
	HTTPTimeoutInSeconds   int `mapstructure:"http_timeout_in_seconds"`
	// RatePerSecond and Burst throttle outbound callback POSTs
	RatePerSecond int `mapstructure:"rate_per_second"`
	Burst         int `mapstructure:"burst"`
	// DeliveredMarkerTTLInHours is how long the delivered marker survives,
	// guarding exactly-once delivery across worker restarts.
	DeliveredMarkerTTLInHours int `mapstructure:"delivered_marker_ttl_in_hours"`
}
