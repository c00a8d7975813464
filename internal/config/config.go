package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime configuration of the server.
type Config struct {
	Port      string
	DBPath    string
	JWTSecret string

	GoogleMapsAPIKey string
	GeocodeTTL       time.Duration
	GeocodeRadiusM   float64

	StayRadiusM      float64
	StayMinDwellS    int64
	AccuracyCeilingM float64

	RateLimit       int
	RateLimitWindow time.Duration
}

// Load reads configuration from the environment, with a .env file as
// fallback for local development.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[Config] Skipping .env: %v", err)
	}

	return &Config{
		Port:      getEnv("PORT", ":8080"),
		DBPath:    getEnv("DB_PATH", "./data/trails.db"),
		JWTSecret: getEnv("JWT_SECRET", "your-secret-key-change-in-production"),

		GoogleMapsAPIKey: os.Getenv("GOOGLE_MAPS_API_KEY"),
		GeocodeTTL:       time.Duration(getEnvInt("GEOCODE_TTL_DAYS", 30)) * 24 * time.Hour,
		GeocodeRadiusM:   getEnvFloat("GEOCODE_RADIUS_M", 120),

		StayRadiusM:      getEnvFloat("STAY_RADIUS_M", 75),
		StayMinDwellS:    getEnvInt("STAY_MIN_DWELL_S", 300),
		AccuracyCeilingM: getEnvFloat("ACCURACY_CEILING_M", 100),

		RateLimit:       int(getEnvInt("RATE_LIMIT", 300)),
		RateLimitWindow: time.Minute,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Printf("[Config] Invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("[Config] Invalid %s=%q, using %v", key, v, fallback)
		return fallback
	}
	return f
}
