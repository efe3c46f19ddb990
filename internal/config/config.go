// internal/config/config.go
package config

import (
	"os"
	"strings"
	"time"

	"beedab-service/internal/pkg/jwt"
	"beedab-service/internal/service/billing"
)

type AppConfig struct {
	// Server
	HTTPAddr  string
	RedisAddr string
	RedisPass string

	// JWT. When DevEphemeralKeys is set the key pair is generated at
	// startup and tokens do not survive a restart.
	JWT              jwt.Config
	DevEphemeralKeys bool

	// Payment settlement details quoted in subscribe instructions
	Payment billing.PaymentConfig

	// Subscription expiry sweep schedule (cron spec)
	ExpirySchedule string
}

// Load loads environment variables into AppConfig.
func Load() AppConfig {
	return AppConfig{
		HTTPAddr:  getEnv("HTTP_ADDR", ":8000"),
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass: getEnv("REDIS_PASS", ""),

		JWT: jwt.Config{
			PrivPath: getEnv("JWT_PRIVATE_KEY_PATH", "/app/secrets/jwt_private.pem"),
			PubPath:  getEnv("JWT_PUBLIC_KEY_PATH", "/app/secrets/jwt_public.pem"),
			Issuer:   "beedab",
			Audience: "beedab-api",
			TTL:      15 * time.Minute,
			KID:      "beedab-key",
		},
		DevEphemeralKeys: strings.ToLower(getEnv("JWT_DEV_EPHEMERAL", "false")) == "true",

		Payment: billing.PaymentConfig{
			BankName:      getEnv("PAYMENT_BANK_NAME", ""),
			AccountName:   getEnv("PAYMENT_ACCOUNT_NAME", "BeeDab Ltd"),
			AccountNumber: getEnv("PAYMENT_ACCOUNT_NUMBER", ""),
			Paybill:       getEnv("PAYMENT_PAYBILL", ""),
		},

		ExpirySchedule: getEnv("EXPIRY_SWEEP_SCHEDULE", "@hourly"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
