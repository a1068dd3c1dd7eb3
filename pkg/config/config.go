package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/miskatonen/duolux/internal/control"
)

// Config holds the configuration for a duolux agent
type Config struct {
	// MQTT configuration
	MQTTBroker   string
	MQTTPort     int
	MQTTUser     string
	MQTTPassword string
	MQTTClientID string

	// Redis configuration
	RedisHost     string
	RedisPort     int
	RedisPassword string
	RedisDB       int

	// Postgres configuration (cycle archive)
	PostgresHost               string
	PostgresPort               int
	PostgresUser               string
	PostgresPassword           string
	PostgresDB                 string
	PostgresSSLMode            string
	PostgresMaxConnections     int
	PostgresMaxIdleConnections int
	PostgresConnMaxLifetimeMin int
	ArchiveEnabled             bool

	// Service configuration
	ServiceName string
	HealthPort  int
	LogLevel    string

	// Collector configuration
	SensorTopics     []string
	MaxSensorHistory int

	// Ambient analysis configuration
	MaxDataAgeHours     float64
	MinReadingsRequired int

	// Lamp agent configuration
	TickIntervalSec      int
	MinCommandIntervalMs int
	ManualHoldMinutes    int
	ReadingMaxAgeSec     int

	// Daylight context configuration
	Latitude  float64
	Longitude float64

	// Control loop configuration
	Lmin              float64
	Lmax              float64
	Hysteresis        float64
	WarmTempK         int
	CoolTempK         int
	TargetYellowRatio float64
	RatioBandLow      float64
	RatioBandHigh     float64
	ScalingFactor     float64
	Gain              float64
	LuxPerLevel       float64
	MaxChannelLevel   int
	DefaultBaseLevel  int
	CutoffThreshold   int
	BalanceStrategy   string
}

// NewConfig returns a Config populated with the defaults
func NewConfig() *Config {
	cp := control.DefaultParams()

	return &Config{
		MQTTBroker:   "localhost",
		MQTTPort:     1883,
		MQTTUser:     "",
		MQTTPassword: "",
		MQTTClientID: "",

		RedisHost:     "localhost",
		RedisPort:     6379,
		RedisPassword: "",
		RedisDB:       0,

		PostgresHost:               "localhost",
		PostgresPort:               5432,
		PostgresUser:               "duolux",
		PostgresPassword:           "",
		PostgresDB:                 "duolux",
		PostgresSSLMode:            "disable",
		PostgresMaxConnections:     10,
		PostgresMaxIdleConnections: 5,
		PostgresConnMaxLifetimeMin: 5,
		ArchiveEnabled:             false,

		ServiceName: "duolux-agent",
		HealthPort:  8080,
		LogLevel:    "info",

		SensorTopics:     []string{"automation/raw/ambient/+"},
		MaxSensorHistory: 1000,

		MaxDataAgeHours:     1.0,
		MinReadingsRequired: 3,

		TickIntervalSec:      10,
		MinCommandIntervalMs: 2000,
		ManualHoldMinutes:    30,
		ReadingMaxAgeSec:     60,

		// Helsinki coordinates
		Latitude:  60.1695,
		Longitude: 24.9354,

		Lmin:              cp.Lmin,
		Lmax:              cp.Lmax,
		Hysteresis:        cp.Hysteresis,
		WarmTempK:         cp.WarmTempK,
		CoolTempK:         cp.CoolTempK,
		TargetYellowRatio: cp.TargetYellowRatio,
		RatioBandLow:      cp.RatioBandLow,
		RatioBandHigh:     cp.RatioBandHigh,
		ScalingFactor:     cp.ScalingFactor,
		Gain:              cp.Gain,
		LuxPerLevel:       cp.LuxPerLevel,
		MaxChannelLevel:   cp.MaxChannelLevel,
		DefaultBaseLevel:  cp.DefaultBaseLevel,
		CutoffThreshold:   cp.CutoffThreshold,
		BalanceStrategy:   cp.Strategy,
	}
}

// LoadFromEnv loads configuration from environment variables with DUOLUX_ prefix
func (c *Config) LoadFromEnv() {
	// MQTT configuration
	if v := os.Getenv("DUOLUX_MQTT_BROKER"); v != "" {
		c.MQTTBroker = v
	}
	if v := os.Getenv("DUOLUX_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.MQTTPort = port
		}
	}
	if v := os.Getenv("DUOLUX_MQTT_USER"); v != "" {
		c.MQTTUser = v
	}
	if v := os.Getenv("DUOLUX_MQTT_PASSWORD"); v != "" {
		c.MQTTPassword = v
	}
	if v := os.Getenv("DUOLUX_MQTT_CLIENT_ID"); v != "" {
		c.MQTTClientID = v
	}

	// Redis configuration
	if v := os.Getenv("DUOLUX_REDIS_HOST"); v != "" {
		c.RedisHost = v
	}
	if v := os.Getenv("DUOLUX_REDIS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.RedisPort = port
		}
	}
	if v := os.Getenv("DUOLUX_REDIS_PASSWORD"); v != "" {
		c.RedisPassword = v
	}
	if v := os.Getenv("DUOLUX_REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			c.RedisDB = db
		}
	}

	// Postgres configuration
	if v := os.Getenv("DUOLUX_POSTGRES_HOST"); v != "" {
		c.PostgresHost = v
	}
	if v := os.Getenv("DUOLUX_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.PostgresPort = port
		}
	}
	if v := os.Getenv("DUOLUX_POSTGRES_USER"); v != "" {
		c.PostgresUser = v
	}
	if v := os.Getenv("DUOLUX_POSTGRES_PASSWORD"); v != "" {
		c.PostgresPassword = v
	}
	if v := os.Getenv("DUOLUX_POSTGRES_DB"); v != "" {
		c.PostgresDB = v
	}
	if v := os.Getenv("DUOLUX_POSTGRES_SSL_MODE"); v != "" {
		c.PostgresSSLMode = v
	}
	if v := os.Getenv("DUOLUX_ARCHIVE_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.ArchiveEnabled = enabled
		}
	}

	// Service configuration
	if v := os.Getenv("DUOLUX_SERVICE_NAME"); v != "" {
		c.ServiceName = v
	}
	if v := os.Getenv("DUOLUX_HEALTH_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.HealthPort = port
		}
	}
	if v := os.Getenv("DUOLUX_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}

	// Collector configuration
	if v := os.Getenv("DUOLUX_MAX_SENSOR_HISTORY"); v != "" {
		if max, err := strconv.Atoi(v); err == nil {
			c.MaxSensorHistory = max
		}
	}

	// Ambient analysis configuration
	if v := os.Getenv("DUOLUX_MAX_DATA_AGE_HOURS"); v != "" {
		if hours, err := strconv.ParseFloat(v, 64); err == nil {
			c.MaxDataAgeHours = hours
		}
	}
	if v := os.Getenv("DUOLUX_MIN_READINGS_REQUIRED"); v != "" {
		if minReadings, err := strconv.Atoi(v); err == nil {
			c.MinReadingsRequired = minReadings
		}
	}

	// Lamp agent configuration
	if v := os.Getenv("DUOLUX_TICK_INTERVAL_SEC"); v != "" {
		if interval, err := strconv.Atoi(v); err == nil {
			c.TickIntervalSec = interval
		}
	}
	if v := os.Getenv("DUOLUX_MIN_COMMAND_INTERVAL_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			c.MinCommandIntervalMs = ms
		}
	}
	if v := os.Getenv("DUOLUX_MANUAL_HOLD_MINUTES"); v != "" {
		if minutes, err := strconv.Atoi(v); err == nil {
			c.ManualHoldMinutes = minutes
		}
	}
	if v := os.Getenv("DUOLUX_READING_MAX_AGE_SEC"); v != "" {
		if sec, err := strconv.Atoi(v); err == nil {
			c.ReadingMaxAgeSec = sec
		}
	}

	// Daylight context configuration
	if v := os.Getenv("DUOLUX_LATITUDE"); v != "" {
		if lat, err := strconv.ParseFloat(v, 64); err == nil {
			c.Latitude = lat
		}
	}
	if v := os.Getenv("DUOLUX_LONGITUDE"); v != "" {
		if lon, err := strconv.ParseFloat(v, 64); err == nil {
			c.Longitude = lon
		}
	}

	// Control loop configuration
	if v := os.Getenv("DUOLUX_LMIN"); v != "" {
		if lux, err := strconv.ParseFloat(v, 64); err == nil {
			c.Lmin = lux
		}
	}
	if v := os.Getenv("DUOLUX_LMAX"); v != "" {
		if lux, err := strconv.ParseFloat(v, 64); err == nil {
			c.Lmax = lux
		}
	}
	if v := os.Getenv("DUOLUX_HYSTERESIS"); v != "" {
		if lux, err := strconv.ParseFloat(v, 64); err == nil {
			c.Hysteresis = lux
		}
	}
	if v := os.Getenv("DUOLUX_WARM_TEMP_K"); v != "" {
		if temp, err := strconv.Atoi(v); err == nil {
			c.WarmTempK = temp
		}
	}
	if v := os.Getenv("DUOLUX_COOL_TEMP_K"); v != "" {
		if temp, err := strconv.Atoi(v); err == nil {
			c.CoolTempK = temp
		}
	}
	if v := os.Getenv("DUOLUX_TARGET_YELLOW_RATIO"); v != "" {
		if ratio, err := strconv.ParseFloat(v, 64); err == nil {
			c.TargetYellowRatio = ratio
		}
	}
	if v := os.Getenv("DUOLUX_RATIO_BAND_LOW"); v != "" {
		if ratio, err := strconv.ParseFloat(v, 64); err == nil {
			c.RatioBandLow = ratio
		}
	}
	if v := os.Getenv("DUOLUX_RATIO_BAND_HIGH"); v != "" {
		if ratio, err := strconv.ParseFloat(v, 64); err == nil {
			c.RatioBandHigh = ratio
		}
	}
	if v := os.Getenv("DUOLUX_SCALING_FACTOR"); v != "" {
		if factor, err := strconv.ParseFloat(v, 64); err == nil {
			c.ScalingFactor = factor
		}
	}
	if v := os.Getenv("DUOLUX_GAIN"); v != "" {
		if gain, err := strconv.ParseFloat(v, 64); err == nil {
			c.Gain = gain
		}
	}
	if v := os.Getenv("DUOLUX_LUX_PER_LEVEL"); v != "" {
		if lux, err := strconv.ParseFloat(v, 64); err == nil {
			c.LuxPerLevel = lux
		}
	}
	if v := os.Getenv("DUOLUX_MAX_CHANNEL_LEVEL"); v != "" {
		if level, err := strconv.Atoi(v); err == nil {
			c.MaxChannelLevel = level
		}
	}
	if v := os.Getenv("DUOLUX_DEFAULT_BASE_LEVEL"); v != "" {
		if level, err := strconv.Atoi(v); err == nil {
			c.DefaultBaseLevel = level
		}
	}
	if v := os.Getenv("DUOLUX_CUTOFF_THRESHOLD"); v != "" {
		if level, err := strconv.Atoi(v); err == nil {
			c.CutoffThreshold = level
		}
	}
	if v := os.Getenv("DUOLUX_BALANCE_STRATEGY"); v != "" {
		c.BalanceStrategy = v
	}
}

// LoadFromFlags overlays command-line flag values onto the config
func (c *Config) LoadFromFlags() {
	// MQTT flags
	pflag.StringVar(&c.MQTTBroker, "mqtt-broker", c.MQTTBroker, "MQTT broker hostname")
	pflag.IntVar(&c.MQTTPort, "mqtt-port", c.MQTTPort, "MQTT broker port")
	pflag.StringVar(&c.MQTTUser, "mqtt-user", c.MQTTUser, "MQTT username")
	pflag.StringVar(&c.MQTTPassword, "mqtt-password", c.MQTTPassword, "MQTT password")
	pflag.StringVar(&c.MQTTClientID, "mqtt-client-id", c.MQTTClientID, "MQTT client ID")

	// Redis flags
	pflag.StringVar(&c.RedisHost, "redis-host", c.RedisHost, "Redis hostname")
	pflag.IntVar(&c.RedisPort, "redis-port", c.RedisPort, "Redis port")
	pflag.StringVar(&c.RedisPassword, "redis-password", c.RedisPassword, "Redis password")
	pflag.IntVar(&c.RedisDB, "redis-db", c.RedisDB, "Redis database number")

	// Postgres flags
	pflag.StringVar(&c.PostgresHost, "postgres-host", c.PostgresHost, "Postgres hostname")
	pflag.IntVar(&c.PostgresPort, "postgres-port", c.PostgresPort, "Postgres port")
	pflag.StringVar(&c.PostgresUser, "postgres-user", c.PostgresUser, "Postgres username")
	pflag.StringVar(&c.PostgresPassword, "postgres-password", c.PostgresPassword, "Postgres password")
	pflag.StringVar(&c.PostgresDB, "postgres-db", c.PostgresDB, "Postgres database name")
	pflag.StringVar(&c.PostgresSSLMode, "postgres-ssl-mode", c.PostgresSSLMode, "Postgres SSL mode")
	pflag.BoolVar(&c.ArchiveEnabled, "archive-enabled", c.ArchiveEnabled, "Enable cycle archive to Postgres")

	// Service flags
	pflag.StringVar(&c.ServiceName, "service-name", c.ServiceName, "Service name")
	pflag.IntVar(&c.HealthPort, "health-port", c.HealthPort, "Health check HTTP port")
	pflag.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level (debug, info, warn, error)")

	// Collector flags
	pflag.IntVar(&c.MaxSensorHistory, "max-sensor-history", c.MaxSensorHistory, "Maximum sensor history entries")

	// Ambient analysis flags
	pflag.Float64Var(&c.MaxDataAgeHours, "max-data-age-hours", c.MaxDataAgeHours, "Maximum age of data to consider (hours)")
	pflag.IntVar(&c.MinReadingsRequired, "min-readings-required", c.MinReadingsRequired, "Minimum readings required for sufficient data")

	// Lamp agent flags
	pflag.IntVar(&c.TickIntervalSec, "tick-interval", c.TickIntervalSec, "Control cycle interval in seconds")
	pflag.IntVar(&c.MinCommandIntervalMs, "min-command-interval-ms", c.MinCommandIntervalMs, "Minimum time between published commands per location (ms)")
	pflag.IntVar(&c.ManualHoldMinutes, "manual-hold-minutes", c.ManualHoldMinutes, "Manual hold duration in minutes")
	pflag.IntVar(&c.ReadingMaxAgeSec, "reading-max-age-sec", c.ReadingMaxAgeSec, "Maximum reading age before it degrades to darkness (seconds)")

	// Daylight context flags
	pflag.Float64Var(&c.Latitude, "latitude", c.Latitude, "Geographic latitude for daylight calculation")
	pflag.Float64Var(&c.Longitude, "longitude", c.Longitude, "Geographic longitude for daylight calculation")

	// Control loop flags
	pflag.Float64Var(&c.Lmin, "lmin", c.Lmin, "Comfort illuminance lower bound (lux)")
	pflag.Float64Var(&c.Lmax, "lmax", c.Lmax, "Comfort illuminance upper bound (lux)")
	pflag.Float64Var(&c.Hysteresis, "hysteresis", c.Hysteresis, "Comfort band hysteresis margin (lux)")
	pflag.IntVar(&c.WarmTempK, "warm-temp-k", c.WarmTempK, "Warm anchor color temperature (Kelvin)")
	pflag.IntVar(&c.CoolTempK, "cool-temp-k", c.CoolTempK, "Cool anchor color temperature (Kelvin)")
	pflag.Float64Var(&c.TargetYellowRatio, "target-yellow-ratio", c.TargetYellowRatio, "Target yellow share of total output")
	pflag.Float64Var(&c.RatioBandLow, "ratio-band-low", c.RatioBandLow, "Lower edge of the acceptable yellow-share band")
	pflag.Float64Var(&c.RatioBandHigh, "ratio-band-high", c.RatioBandHigh, "Upper edge of the acceptable yellow-share band")
	pflag.Float64Var(&c.ScalingFactor, "scaling-factor", c.ScalingFactor, "Downscale factor applied per rebalance iteration")
	pflag.Float64Var(&c.Gain, "gain", c.Gain, "Comfort nudge gain")
	pflag.Float64Var(&c.LuxPerLevel, "lux-per-level", c.LuxPerLevel, "Lux contributed by one drive level step")
	pflag.IntVar(&c.MaxChannelLevel, "max-channel-level", c.MaxChannelLevel, "Maximum drive level per channel")
	pflag.IntVar(&c.DefaultBaseLevel, "default-base-level", c.DefaultBaseLevel, "Total relight level after darkness")
	pflag.IntVar(&c.CutoffThreshold, "cutoff-threshold", c.CutoffThreshold, "Level at or below which both channels shut off")
	pflag.StringVar(&c.BalanceStrategy, "balance-strategy", c.BalanceStrategy, "Balance strategy (feedback or temperature)")

	pflag.Parse()
}

// ControlParams builds the control tuning from the loaded configuration
func (c *Config) ControlParams() control.Params {
	return control.Params{
		Lmin:              c.Lmin,
		Lmax:              c.Lmax,
		Hysteresis:        c.Hysteresis,
		WarmTempK:         c.WarmTempK,
		CoolTempK:         c.CoolTempK,
		TargetYellowRatio: c.TargetYellowRatio,
		RatioBandLow:      c.RatioBandLow,
		RatioBandHigh:     c.RatioBandHigh,
		ScalingFactor:     c.ScalingFactor,
		Gain:              c.Gain,
		LuxPerLevel:       c.LuxPerLevel,
		MaxChannelLevel:   c.MaxChannelLevel,
		DefaultBaseLevel:  c.DefaultBaseLevel,
		CutoffThreshold:   c.CutoffThreshold,
		Strategy:          c.BalanceStrategy,
	}
}

// Validate rejects configurations that cannot produce a working service
func (c *Config) Validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT broker is required")
	}
	if c.MQTTPort <= 0 || c.MQTTPort > 65535 {
		return fmt.Errorf("MQTT port must be between 1 and 65535")
	}
	if c.RedisHost == "" {
		return fmt.Errorf("Redis host is required")
	}
	if c.RedisPort <= 0 || c.RedisPort > 65535 {
		return fmt.Errorf("Redis port must be between 1 and 65535")
	}
	if c.HealthPort <= 0 || c.HealthPort > 65535 {
		return fmt.Errorf("Health port must be between 1 and 65535")
	}
	if c.ServiceName == "" {
		return fmt.Errorf("Service name is required")
	}
	if c.TickIntervalSec <= 0 {
		return fmt.Errorf("Tick interval must be positive")
	}
	if c.ReadingMaxAgeSec <= 0 {
		return fmt.Errorf("Reading max age must be positive")
	}

	if c.ArchiveEnabled {
		if c.PostgresHost == "" {
			return fmt.Errorf("Postgres host is required when the archive is enabled")
		}
		if c.PostgresPort <= 0 || c.PostgresPort > 65535 {
			return fmt.Errorf("Postgres port must be between 1 and 65535")
		}
		if c.PostgresDB == "" {
			return fmt.Errorf("Postgres database name is required when the archive is enabled")
		}
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	// Control tuning is refused here so no decision loop ever starts with
	// parameters Step cannot honor
	if err := c.ControlParams().Validate(); err != nil {
		return fmt.Errorf("invalid control configuration: %w", err)
	}

	return nil
}

// MQTTAddress returns the broker endpoint as host:port
func (c *Config) MQTTAddress() string {
	return fmt.Sprintf("tcp://%s:%d", c.MQTTBroker, c.MQTTPort)
}

// RedisAddress returns the Redis endpoint as host:port
func (c *Config) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// PostgresConnectionString returns the lib/pq connection string
func (c *Config) PostgresConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode)
}
