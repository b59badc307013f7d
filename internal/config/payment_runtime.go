package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	defaultGatewayBaseURL = "https://api.gateway.example.com"
	defaultGatewayTimeout = "10s"
	defaultCurrency       = "INR"
	defaultRefundWindow   = "720h" // 30 days
)

type PaymentRuntimeConfig struct {
	GatewayKeyID         string
	GatewayKeySecret     string
	GatewayWebhookSecret string
	GatewayBaseURL       string
	GatewayTimeout       time.Duration
	Currency             string
	RefundWindow         time.Duration
}

// LoadPaymentRuntimeConfig reads the gateway credentials once at process
// start. Missing credentials are a startup error, never a per-request branch.
func LoadPaymentRuntimeConfig() (*PaymentRuntimeConfig, error) {
	cfg := &PaymentRuntimeConfig{}

	cfg.GatewayKeyID = strings.TrimSpace(os.Getenv("GATEWAY_KEY_ID"))
	cfg.GatewayKeySecret = strings.TrimSpace(os.Getenv("GATEWAY_KEY_SECRET"))
	cfg.GatewayWebhookSecret = strings.TrimSpace(os.Getenv("GATEWAY_WEBHOOK_SECRET"))
	if cfg.GatewayKeyID == "" {
		return nil, fmt.Errorf("GATEWAY_KEY_ID is empty")
	}
	if cfg.GatewayKeySecret == "" {
		return nil, fmt.Errorf("GATEWAY_KEY_SECRET is empty")
	}
	if cfg.GatewayWebhookSecret == "" {
		return nil, fmt.Errorf("GATEWAY_WEBHOOK_SECRET is empty")
	}

	cfg.GatewayBaseURL = strings.TrimRight(getEnv("GATEWAY_BASE_URL", defaultGatewayBaseURL), "/")
	cfg.Currency = strings.ToUpper(getEnv("CURRENCY", defaultCurrency))

	var err error
	cfg.GatewayTimeout, err = parseDurationEnv("GATEWAY_TIMEOUT", defaultGatewayTimeout)
	if err != nil {
		return nil, err
	}
	cfg.RefundWindow, err = parseDurationEnv("REFUND_WINDOW", defaultRefundWindow)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func getEnv(name, def string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return def
}

func parseDurationEnv(name, def string) (time.Duration, error) {
	raw := getEnv(name, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %q", name, raw)
	}
	return d, nil
}
