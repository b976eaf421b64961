package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Paystack PaystackConfig
	Firebase FirebaseConfig
	Admin    AdminConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

// PaystackConfig for wallet funding via Paystack checkout.
type PaystackConfig struct {
	BaseURL     string
	SecretKey   string
	CallbackURL string
}

type FirebaseConfig struct {
	ServiceAccountPath string
}

type AdminConfig struct {
	Email    string
	Password string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         env("PORT", "8080"),
			Env:          env("APP_ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             env("DB_DSN", "campuspay:campuspay@tcp(localhost:3306)/campuspay?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret:  env("JWT_ACCESS_SECRET", "change-me-in-production"),
			RefreshSecret: env("JWT_REFRESH_SECRET", "change-me-refresh"),
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 168 * time.Hour,
			Issuer:        "campuspay",
		},
		Paystack: PaystackConfig{
			BaseURL:     env("PAYSTACK_BASE_URL", "https://api.paystack.co"),
			SecretKey:   env("PAYSTACK_SECRET_KEY", ""),
			CallbackURL: env("PAYSTACK_CALLBACK_URL", ""),
		},
		Firebase: FirebaseConfig{
			ServiceAccountPath: env("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
		},
		Admin: AdminConfig{
			Email:    env("ADMIN_EMAIL", "admin@campuspay.local"),
			Password: env("ADMIN_PASSWORD", ""),
		},
	}
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
