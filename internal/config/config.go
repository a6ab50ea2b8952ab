package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Env              string
	HTTPPort         string
	DatabaseURL      string
	JWTAccessSecret  string
	JWTRefreshSecret string
	JWTIssuer        string
	RateRPS          int
	GeofenceRadiusM  float64
	ScanCooldown     time.Duration
	AdminUsername    string
	AdminPassword    string
}

func Load() Config {
	return Config{
		Env:              get("APP_ENV", "dev"),
		HTTPPort:         get("HTTP_PORT", "8080"),
		DatabaseURL:      get("DATABASE_URL", ""),
		JWTAccessSecret:  get("JWT_ACCESS_SECRET", "changeme-access-secret"),
		JWTRefreshSecret: get("JWT_REFRESH_SECRET", "changeme-refresh-secret"),
		JWTIssuer:        get("JWT_ISSUER", "stamp-rally-backend"),
		RateRPS:          getInt("RATE_RPS", 100),
		GeofenceRadiusM:  getFloat("GEOFENCE_RADIUS_M", 100),
		ScanCooldown:     time.Duration(getInt("SCAN_COOLDOWN_HOURS", 24)) * time.Hour,
		AdminUsername:    get("ADMIN_USERNAME", "admin"),
		AdminPassword:    get("ADMIN_PASSWORD", "admin123"),
	}
}

func get(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
