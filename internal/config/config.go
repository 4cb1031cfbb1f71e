package config

import (
	"fmt"
	"os"
	"strconv"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート

	JWTSecret string // JWT署名シークレット

	GoEnv string // dev/production
	FEURL string // フロントURL（CORSで使う）

	PayPalClientID     string
	PayPalClientSecret string
	PayPalAPIBase      string // sandbox/live切り替え
	PayPalWebhookID    string // 署名検証に使う
	PayPalCurrency     string

	ResendAPIKey string
	EmailFrom    string
}

// productionかどうか（Webhook署名検証が必須になる）
func (c Config) IsProduction() bool {
	return c.GoEnv == "production" || c.GoEnv == "prod"
}

// Loadは環境変数
func Load() (Config, error) {
	pgPort, err := mustAtoi("POSTGRES_PORT")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port: os.Getenv("PORT"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresPort:     pgPort,

		JWTSecret: os.Getenv("JWT_SECRET"),

		GoEnv: os.Getenv("GO_ENV"),
		FEURL: os.Getenv("FE_URL"),

		PayPalClientID:     os.Getenv("PAYPAL_CLIENT_ID"),
		PayPalClientSecret: os.Getenv("PAYPAL_CLIENT_SECRET"),
		PayPalAPIBase:      os.Getenv("PAYPAL_API_BASE"),
		PayPalWebhookID:    os.Getenv("PAYPAL_WEBHOOK_ID"),
		PayPalCurrency:     os.Getenv("PAYPAL_CURRENCY"),

		ResendAPIKey: os.Getenv("RESEND_API_KEY"),
		EmailFrom:    os.Getenv("EMAIL_FROM"),
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.PostgresUser == "" {
		return Config{}, fmt.Errorf("POSTGRES_USER is required")
	}
	if cfg.PostgresPassword == "" {
		return Config{}, fmt.Errorf("POSTGRES_PASSWORD is required")
	}
	if cfg.PostgresDB == "" {
		return Config{}, fmt.Errorf("POSTGRES_DB is required")
	}
	if cfg.PostgresHost == "" {
		return Config{}, fmt.Errorf("POSTGRES_HOST is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.GoEnv == "" {
		return Config{}, fmt.Errorf("GO_ENV is required")
	}
	if cfg.PayPalClientID == "" {
		return Config{}, fmt.Errorf("PAYPAL_CLIENT_ID is required")
	}
	if cfg.PayPalClientSecret == "" {
		return Config{}, fmt.Errorf("PAYPAL_CLIENT_SECRET is required")
	}
	if cfg.PayPalAPIBase == "" {
		return Config{}, fmt.Errorf("PAYPAL_API_BASE is required")
	}
	if cfg.IsProduction() && cfg.PayPalWebhookID == "" {
		return Config{}, fmt.Errorf("PAYPAL_WEBHOOK_ID is required in production")
	}
	if cfg.ResendAPIKey == "" {
		return Config{}, fmt.Errorf("RESEND_API_KEY is required")
	}
	if cfg.EmailFrom == "" {
		return Config{}, fmt.Errorf("EMAIL_FROM is required")
	}

	return cfg, nil
}

func mustAtoi(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}
