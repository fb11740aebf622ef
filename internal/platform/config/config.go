package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Console captures everything the operator console needs from the
// environment so main stays lean.
type Console struct {
	APIBaseURL  string
	SessionPath string
	Debounce    time.Duration
}

// Fixture captures the fixture server's configuration. Empty DatabaseURL or
// RedisURL means the in-memory store variant is used.
type Fixture struct {
	Addr          string
	JWTSigningKey string
	AdminEmail    string
	AdminPassword string
	DatabaseURL   string
	RedisURL      string
	SeedDevices   bool
}

// ConsoleFromEnv builds the console config. A .env next to the binary is
// honored when present.
func ConsoleFromEnv() Console {
	_ = godotenv.Load()

	base := os.Getenv("TRACEGUARD_API_URL")
	if base == "" {
		base = "http://localhost:8080"
	}

	return Console{
		APIBaseURL:  base,
		SessionPath: os.Getenv("TRACEGUARD_SESSION_PATH"),
		Debounce:    350 * time.Millisecond,
	}
}

// FixtureFromEnv builds the fixture server config.
func FixtureFromEnv() Fixture {
	_ = godotenv.Load()

	addr := os.Getenv("TRACEGUARD_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	email := os.Getenv("TRACEGUARD_ADMIN_EMAIL")
	if email == "" {
		email = "admin@example.com"
	}
	password := os.Getenv("TRACEGUARD_ADMIN_PASSWORD")
	if password == "" {
		// Development default, long enough to survive a password change
		// round-trip.
		password = "change-me-please"
	}
	key := os.Getenv("TRACEGUARD_JWT_KEY")
	if key == "" {
		key = "dev-secret-key-change-in-production"
	}

	return Fixture{
		Addr:          addr,
		JWTSigningKey: key,
		AdminEmail:    email,
		AdminPassword: password,
		DatabaseURL:   os.Getenv("TRACEGUARD_DATABASE_URL"),
		RedisURL:      os.Getenv("TRACEGUARD_REDIS_URL"),
		SeedDevices:   os.Getenv("TRACEGUARD_SEED") != "false",
	}
}
