package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Dispatch holds the tunables of the geospatial core. It is constructed
// once at startup, validated, and passed to components explicitly; there
// is no global settings cache.
type Dispatch struct {
	AverageSpeedKMH        float64
	UrgentMultiplier       float64
	HighPriorityMultiplier float64
	BufferMinutes          int
	DispatchDelayMinutes   int
	MaxStopsPerRoute       int
	DriverSearchRadiusKM   float64
}

type Config struct {
	Port        string
	DatabaseURL string
	RedisAddr   string
	AMQPURL     string
	SeedPath    string

	Dispatch    Dispatch
	ETACacheTTL time.Duration
}

// Load reads configuration from the environment and validates it.
// Invalid dispatch tunables are a startup error, never a per-request one.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        Get("PORT", "8080"),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		RedisAddr:   Get("REDIS_ADDR", "localhost:6379"),
		AMQPURL:     strings.TrimSpace(os.Getenv("AMQP_URL")),
		SeedPath:    Get("SEED_PATH", "data/seeds/deliveries.json"),
		Dispatch: Dispatch{
			AverageSpeedKMH:        getFloat("AVERAGE_SPEED_KMH", 40.0),
			UrgentMultiplier:       getFloat("URGENT_DELIVERY_MULTIPLIER", 2.0),
			HighPriorityMultiplier: getFloat("HIGH_PRIORITY_MULTIPLIER", 1.5),
			BufferMinutes:          getInt("DELIVERY_BUFFER_MINUTES", 15),
			DispatchDelayMinutes:   getInt("DISPATCH_DELAY_MINUTES", 15),
			MaxStopsPerRoute:       getInt("MAX_STOPS_PER_ROUTE", 10),
			DriverSearchRadiusKM:   getFloat("DRIVER_SEARCH_RADIUS_KM", 50.0),
		},
		ETACacheTTL: time.Duration(getInt("ETA_CACHE_TTL_SECONDS", 300)) * time.Second,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	d := c.Dispatch

	if d.AverageSpeedKMH <= 0 {
		return fmt.Errorf("config: AVERAGE_SPEED_KMH must be > 0, got %v", d.AverageSpeedKMH)
	}
	// Multipliers must keep duration monotonic in priority: URGENT >= HIGH >= NORMAL (1.0).
	if d.HighPriorityMultiplier < 1 {
		return fmt.Errorf("config: HIGH_PRIORITY_MULTIPLIER must be >= 1, got %v", d.HighPriorityMultiplier)
	}
	if d.UrgentMultiplier < d.HighPriorityMultiplier {
		return fmt.Errorf("config: URGENT_DELIVERY_MULTIPLIER (%v) must be >= HIGH_PRIORITY_MULTIPLIER (%v)",
			d.UrgentMultiplier, d.HighPriorityMultiplier)
	}
	if d.BufferMinutes < 0 {
		return fmt.Errorf("config: DELIVERY_BUFFER_MINUTES must be >= 0, got %d", d.BufferMinutes)
	}
	if d.DispatchDelayMinutes < 0 {
		return fmt.Errorf("config: DISPATCH_DELAY_MINUTES must be >= 0, got %d", d.DispatchDelayMinutes)
	}
	if d.MaxStopsPerRoute < 1 {
		return fmt.Errorf("config: MAX_STOPS_PER_ROUTE must be >= 1, got %d", d.MaxStopsPerRoute)
	}
	if d.DriverSearchRadiusKM <= 0 {
		return fmt.Errorf("config: DRIVER_SEARCH_RADIUS_KM must be > 0, got %v", d.DriverSearchRadiusKM)
	}
	if c.ETACacheTTL < 0 {
		return fmt.Errorf("config: ETA_CACHE_TTL_SECONDS must be >= 0, got %v", c.ETACacheTTL)
	}

	return nil
}

// Get returns the environment value for key, or fallback when unset.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
