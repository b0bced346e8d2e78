package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"globobook/internal/pricing"
)

const (
	defaultListenAddr       = ":8080"
	defaultCurrency         = "mxn"
	defaultCodePrefix       = "GLOBO"
	defaultAdultPrice       = "2500"
	defaultChildPrice       = "2200"
	defaultAddons           = "photos:1200:flat,champagne:600:per_passenger"
	defaultPendingTTL       = "24h"
	defaultCollabTimeout    = "10s"
	defaultWebhookTolerance = "5m"
	defaultJWTTTL           = "12h"
	defaultCacheTTL         = "30s"
	defaultJWTSecret        = "change-me-jwt-secret"
)

// Config is built once at process start and handed to constructors.
// Business logic never reads the environment directly.
type Config struct {
	AppEnv     string
	ListenAddr string

	DatabaseURL string

	// Pricing. Prices are MXN pesos; totals are computed in centavos.
	Prices     pricing.Table
	Currency   string
	CodePrefix string

	PaymentBaseURL       string
	PaymentAPIKey        string
	PaymentWebhookSecret string
	SuccessURL           string
	CancelURL            string
	EnableOXXO           bool
	WebhookTolerance     time.Duration

	EmailBaseURL         string
	EmailAPIKey          string
	EmailFrom            string
	StaffAlertEmail      string
	TemplateConfirmation string
	TemplateFailed       string
	TemplateStaffAlert   string

	CORSAllowedOrigins []string

	PendingTTL      time.Duration
	CollabTimeout   time.Duration

	JWTSecret         string
	JWTTTL            time.Duration
	StaffEmail        string
	StaffPasswordHash string

	RedisAddr string
	CacheTTL  time.Duration
}

type getenvFunc func(string) string

// Load reads the whole runtime configuration from the environment.
func Load(getenv getenvFunc) (*Config, error) {
	cfg := &Config{}

	appEnv := strings.TrimSpace(getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.ListenAddr = getOr(getenv, "LISTEN_ADDR", defaultListenAddr)
	cfg.DatabaseURL = strings.TrimSpace(getenv("DATABASE_URL"))

	adult, err := parsePriceEnv(getenv, "ADULT_PRICE_MXN", defaultAdultPrice)
	if err != nil {
		return nil, err
	}
	child, err := parsePriceEnv(getenv, "CHILD_PRICE_MXN", defaultChildPrice)
	if err != nil {
		return nil, err
	}
	addons, err := parseAddons(getOr(getenv, "ADDONS", defaultAddons))
	if err != nil {
		return nil, err
	}
	cfg.Prices = pricing.Table{AdultPrice: adult, ChildPrice: child, Addons: addons}
	cfg.Currency = strings.ToLower(getOr(getenv, "CURRENCY", defaultCurrency))
	cfg.CodePrefix = strings.ToUpper(getOr(getenv, "CODE_PREFIX", defaultCodePrefix))

	cfg.PaymentBaseURL = strings.TrimRight(strings.TrimSpace(getenv("PAYMENT_BASE_URL")), "/")
	cfg.PaymentAPIKey = strings.TrimSpace(getenv("PAYMENT_API_KEY"))
	cfg.PaymentWebhookSecret = strings.TrimSpace(getenv("PAYMENT_WEBHOOK_SECRET"))
	cfg.SuccessURL = strings.TrimSpace(getenv("PAYMENT_SUCCESS_URL"))
	cfg.CancelURL = strings.TrimSpace(getenv("PAYMENT_CANCEL_URL"))
	cfg.EnableOXXO = parseBool(getOr(getenv, "ENABLE_OXXO", "false"))

	cfg.EmailBaseURL = strings.TrimRight(strings.TrimSpace(getenv("EMAIL_BASE_URL")), "/")
	cfg.EmailAPIKey = strings.TrimSpace(getenv("EMAIL_API_KEY"))
	cfg.EmailFrom = getOr(getenv, "EMAIL_FROM", "reservas@globobook.mx")
	cfg.StaffAlertEmail = getOr(getenv, "STAFF_ALERT_EMAIL", "operaciones@globobook.mx")
	cfg.TemplateConfirmation = getOr(getenv, "EMAIL_TEMPLATE_CONFIRMATION", "booking-confirmation")
	cfg.TemplateFailed = getOr(getenv, "EMAIL_TEMPLATE_FAILED", "payment-failed")
	cfg.TemplateStaffAlert = getOr(getenv, "EMAIL_TEMPLATE_STAFF_ALERT", "staff-new-booking")

	if origins := strings.TrimSpace(getenv("CORS_ALLOWED_ORIGINS")); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
			}
		}
	}

	if cfg.PendingTTL, err = parseDurationEnv(getenv, "PENDING_TTL", defaultPendingTTL); err != nil {
		return nil, err
	}
	if cfg.CollabTimeout, err = parseDurationEnv(getenv, "COLLABORATOR_TIMEOUT", defaultCollabTimeout); err != nil {
		return nil, err
	}
	if cfg.WebhookTolerance, err = parseDurationEnv(getenv, "WEBHOOK_TOLERANCE", defaultWebhookTolerance); err != nil {
		return nil, err
	}
	if cfg.JWTTTL, err = parseDurationEnv(getenv, "JWT_TTL", defaultJWTTTL); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = parseDurationEnv(getenv, "CACHE_TTL", defaultCacheTTL); err != nil {
		return nil, err
	}

	cfg.JWTSecret = strings.TrimSpace(getOr(getenv, "JWT_SECRET", defaultJWTSecret))
	cfg.StaffEmail = strings.TrimSpace(getenv("STAFF_EMAIL"))
	cfg.StaffPasswordHash = strings.TrimSpace(getenv("STAFF_PASSWORD_HASH"))

	cfg.RedisAddr = strings.TrimSpace(getenv("REDIS_ADDR"))

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Prices.AdultPrice <= 0 || cfg.Prices.ChildPrice <= 0 {
		return fmt.Errorf("ADULT_PRICE_MXN and CHILD_PRICE_MXN must be > 0")
	}
	if cfg.CodePrefix == "" {
		return fmt.Errorf("CODE_PREFIX must not be empty")
	}
	if len(cfg.Currency) != 3 {
		return fmt.Errorf("CURRENCY must be a 3-letter ISO code, got %q", cfg.Currency)
	}
	if cfg.PendingTTL <= 0 {
		return fmt.Errorf("PENDING_TTL must be > 0")
	}
	if cfg.CollabTimeout <= 0 {
		return fmt.Errorf("COLLABORATOR_TIMEOUT must be > 0")
	}
	if isProdLike(cfg.AppEnv) {
		if cfg.JWTSecret == "" || cfg.JWTSecret == defaultJWTSecret {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if cfg.PaymentAPIKey == "" || cfg.PaymentWebhookSecret == "" {
			return fmt.Errorf("in prod/release PAYMENT_API_KEY and PAYMENT_WEBHOOK_SECRET must be set")
		}
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("in prod/release DATABASE_URL must be set")
		}
	}
	return nil
}

// parseAddons parses "name:price:mode" entries separated by commas, e.g.
// "photos:1200:flat,champagne:600:per_passenger".
func parseAddons(raw string) (map[string]pricing.AddonPrice, error) {
	out := map[string]pricing.AddonPrice{}
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid ADDONS entry %q, want name:price:mode", entry)
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil || price <= 0 {
			return nil, fmt.Errorf("invalid ADDONS price in %q", entry)
		}
		var mode pricing.Mode
		switch strings.ToLower(strings.TrimSpace(parts[2])) {
		case "flat":
			mode = pricing.ModeFlat
		case "per_passenger", "per_pax":
			mode = pricing.ModePerPassenger
		default:
			return nil, fmt.Errorf("invalid ADDONS mode in %q", entry)
		}
		out[strings.ToLower(strings.TrimSpace(parts[0]))] = pricing.AddonPrice{Price: price, Mode: mode}
	}
	return out, nil
}

func getOr(getenv getenvFunc, name, def string) string {
	if v := strings.TrimSpace(getenv(name)); v != "" {
		return v
	}
	return def
}

func parsePriceEnv(getenv getenvFunc, name, def string) (float64, error) {
	raw := getOr(getenv, name, def)
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid price %q", name, raw)
	}
	return v, nil
}

func parseDurationEnv(getenv getenvFunc, name, def string) (time.Duration, error) {
	raw := getOr(getenv, name, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", name, raw)
	}
	return d, nil
}

func parseBool(raw string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && v
}

func isProdLike(env string) bool {
	return env == "prod" || env == "production" || env == "release"
}
