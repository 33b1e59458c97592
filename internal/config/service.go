package config

import "time"

type ServiceConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment" env:"APP_ENV"`
	Version     string `yaml:"version"`
	// ClientURLs are the checkout origins allowed by CORS and the realtime socket.
	ClientURLs          []string `yaml:"client_urls" env:"CLIENT_URLS" envSeparator:","`
	StripeSecretKey     string   `yaml:"stripe_secret_key" env:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string   `yaml:"stripe_webhook_secret" env:"STRIPE_WEBHOOK_SIGNING_KEY"`
}

// ZohoConfig configures the Zoho Creator client.
type ZohoConfig struct {
	APIBaseURL   string        `yaml:"api_base_url" env:"ZOHO_API_BASE_URL"`
	AccountsURL  string        `yaml:"accounts_url" env:"ZOHO_ACCOUNTS_URL"`
	ClientID     string        `yaml:"client_id" env:"ZOHO_CLIENT_ID"`
	ClientSecret string        `yaml:"client_secret" env:"ZOHO_CLIENT_SECRET"`
	RefreshToken string        `yaml:"refresh_token" env:"ZOHO_REFRESH_TOKEN"`
	Owner        string        `yaml:"owner" env:"ZOHO_OWNER"`
	App          string        `yaml:"app" env:"ZOHO_APP"`
	Report       string        `yaml:"report" env:"ZOHO_REPORT"`
	Timeout      time.Duration `yaml:"timeout" env:"ZOHO_TIMEOUT"`
}

// RealtimeConfig configures the websocket hub and its optional Redis relay.
type RealtimeConfig struct {
	SendBuffer int         `yaml:"send_buffer"`
	Channel    string      `yaml:"channel" env:"REALTIME_CHANNEL"`
	Redis      RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled" env:"REDIS_ENABLED"`
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
}
