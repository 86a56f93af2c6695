package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/realvia/estate-service/internal/utils"
)

const AppName = "estate-service"

type Config struct {
	AppName string
	AppPort string
	AppUrl  string

	// Database
	DBUrl string

	// Accounting collaborator
	BillingAPIURL     string
	BillingAPIKey     string
	BillingMaxRetries int

	// Offer expiry sweep schedule (cron spec)
	OfferExpiryCronSpec string

	SeedDemoData bool
}

const (
	DefaultBillingMaxRetries = 3
	BillingRetryInitial      = 1 * time.Second
)

func LoadConfig() *Config {
	// .env is optional; real deployments set env vars directly.
	_ = godotenv.Load()

	utils.Logger.Info("Loading config for app: ", AppName)

	appPort := os.Getenv("APP_PORT")
	if appPort == "" {
		utils.Logger.Fatal("APP_PORT env var is missing")
	}
	appUrl := os.Getenv("APP_URL")
	if appUrl == "" {
		utils.Logger.Fatal("APP_URL env var is missing")
	}
	dbUrl := os.Getenv("DB_URL")
	if dbUrl == "" {
		utils.Logger.Fatal("DB_URL env var is missing")
	}
	billingURL := os.Getenv("BILLING_API_URL")
	if billingURL == "" {
		utils.Logger.Fatal("BILLING_API_URL env var is missing")
	}
	billingKey := os.Getenv("BILLING_API_KEY")
	if billingKey == "" {
		utils.Logger.Fatal("BILLING_API_KEY env var is missing")
	}

	maxRetries := DefaultBillingMaxRetries
	if raw := os.Getenv("BILLING_MAX_RETRIES"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			utils.Logger.Fatalf("Invalid BILLING_MAX_RETRIES %q", raw)
		}
		maxRetries = n
	}

	cronSpec := os.Getenv("OFFER_EXPIRY_CRON")
	if cronSpec == "" {
		cronSpec = "15 0 * * *" // daily, shortly after midnight
	}

	seed := false
	if raw := os.Getenv("SEED_DEMO_DATA"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			utils.Logger.Fatalf("Invalid SEED_DEMO_DATA %q", raw)
		}
		seed = v
	}

	return &Config{
		AppName:             AppName,
		AppPort:             appPort,
		AppUrl:              appUrl,
		DBUrl:               dbUrl,
		BillingAPIURL:       billingURL,
		BillingAPIKey:       billingKey,
		BillingMaxRetries:   maxRetries,
		OfferExpiryCronSpec: cronSpec,
		SeedDemoData:        seed,
	}
}
