package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultPort         = "8080"
	DefaultAPIBaseURL   = "http://dev-fiveheart.pantheonsite.io"
	DefaultAssetBaseURL = "http://fiveheart.ddev.site"
	DefaultRedisHost    = "localhost:6379"
	DefaultCartTTL      = 30 * 24 * time.Hour
	DefaultHTTPTimeout  = 10 * time.Second
)

var ErrMissingSessionSecret = errors.New("SESSION_SECRET is required")

type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Enabled indique si l'envoi des e-mails de confirmation est configuré
func (s SMTP) Enabled() bool {
	return s.Host != "" && s.From != ""
}

type Config struct {
	Port           string
	APIBaseURL     string
	AssetBaseURL   string
	PurchaseLogURL string
	RedisHost      string
	RedisPassword  string
	SessionSecret  string
	SessionSecure  bool
	CORSOrigins    []string
	CartTTL        time.Duration
	HTTPTimeout    time.Duration
	LogLevel       string
	SMTP           SMTP
}

func Load() {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("⚠️  Aucun fichier .env trouvé, on continue avec les variables d'environnement du système")
	} else {
		log.Println("✅ Fichier .env chargé avec succès")
	}
}

// FromEnv lit la configuration typée. Load doit avoir été appelé avant.
func FromEnv() (Config, error) {
	cfg := Config{
		Port:           getEnv("PORT", DefaultPort),
		APIBaseURL:     getEnv("API_BASE_URL", DefaultAPIBaseURL),
		AssetBaseURL:   getEnv("ASSET_BASE_URL", DefaultAssetBaseURL),
		PurchaseLogURL: os.Getenv("PURCHASE_LOG_URL"),
		RedisHost:      getEnv("REDIS_HOST", DefaultRedisHost),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		SessionSecret:  os.Getenv("SESSION_SECRET"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		CORSOrigins:    splitList(os.Getenv("CORS_ORIGINS")),
	}

	if cfg.SessionSecret == "" {
		return Config{}, ErrMissingSessionSecret
	}

	var err error
	if cfg.SessionSecure, err = getBool("SESSION_SECURE", false); err != nil {
		return Config{}, err
	}
	if cfg.CartTTL, err = getDuration("CART_TTL", DefaultCartTTL); err != nil {
		return Config{}, err
	}
	if cfg.HTTPTimeout, err = getDuration("HTTP_TIMEOUT", DefaultHTTPTimeout); err != nil {
		return Config{}, err
	}

	cfg.SMTP = SMTP{
		Host:     os.Getenv("SMTP_HOST"),
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("MAIL_FROM"),
		Port:     587,
	}
	if raw := os.Getenv("SMTP_PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port <= 0 {
			return Config{}, fmt.Errorf("invalid SMTP_PORT %q", raw)
		}
		cfg.SMTP.Port = port
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
