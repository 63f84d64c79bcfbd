package config

import (
	"fmt"
	"os"
)

type Config struct {
	Port       string
	AppBaseURL string

	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     string
	PostgresSSLMode  string
	PostgresTimeZone string

	StripeSecretKey string
	// Split webhook configuration: one signing secret per endpoint so each
	// concern (general, Connect accounts, payments) can be wired separately
	// in the Stripe dashboard.
	StripeWebhookSecret         string
	StripeAccountsWebhookSecret string
	StripePaymentsWebhookSecret string

	PayPalBaseURL      string
	PayPalClientID     string
	PayPalClientSecret string
	PayPalWebhookID    string

	EmailAPIURL   string
	EmailAPIKey   string
	EmailFromName string
	EmailFromAddr string

	RedisAddr     string
	RedisPassword string

	// Billing product id of the premium tier, used for plan gating.
	PremiumProductID string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:       getEnv("PORT", "8090"),
		AppBaseURL: getEnv("APP_BASE_URL", "http://localhost:8090"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresTimeZone: getEnv("POSTGRES_TIMEZONE", "Europe/Paris"),

		StripeSecretKey:             os.Getenv("STRIPE_API_KEY"),
		StripeWebhookSecret:         os.Getenv("STRIPE_WEBHOOK_SECRET"),
		StripeAccountsWebhookSecret: os.Getenv("STRIPE_ACCOUNTS_WEBHOOK_SECRET"),
		StripePaymentsWebhookSecret: os.Getenv("STRIPE_PAYMENTS_WEBHOOK_SECRET"),

		PayPalBaseURL:      getEnv("PAYPAL_BASE_URL", "https://api-m.sandbox.paypal.com"),
		PayPalClientID:     os.Getenv("PAYPAL_CLIENT_ID"),
		PayPalClientSecret: os.Getenv("PAYPAL_CLIENT_SECRET"),
		PayPalWebhookID:    os.Getenv("PAYPAL_WEBHOOK_ID"),

		EmailAPIURL:   getEnv("EMAIL_API_URL", "https://api.brevo.com/v3/smtp/email"),
		EmailAPIKey:   os.Getenv("EMAIL_API_KEY"),
		EmailFromName: getEnv("EMAIL_FROM_NAME", "Pattyly"),
		EmailFromAddr: getEnv("EMAIL_FROM_ADDR", "no-reply@pattyly.com"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		PremiumProductID: os.Getenv("STRIPE_PREMIUM_PRODUCT_ID"),
	}

	if cfg.PostgresUser == "" || cfg.PostgresPassword == "" || cfg.PostgresDB == "" {
		return nil, fmt.Errorf("missing required postgres environment variables")
	}
	if cfg.StripeSecretKey == "" || cfg.StripeWebhookSecret == "" {
		return nil, fmt.Errorf("missing required stripe environment variables")
	}
	// Secondary endpoints fall back to the general secret when a split
	// webhook configuration is not in use.
	if cfg.StripeAccountsWebhookSecret == "" {
		cfg.StripeAccountsWebhookSecret = cfg.StripeWebhookSecret
	}
	if cfg.StripePaymentsWebhookSecret == "" {
		cfg.StripePaymentsWebhookSecret = cfg.StripeWebhookSecret
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
