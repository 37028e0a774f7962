package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Log       LogConfig
	Auth      AuthConfig
	APIAccess APIAccessConfig `mapstructure:"apiAccess"`
	Stripe    StripeConfig
	AI        AIConfig
	Email     EmailConfig
	Worker    WorkerConfig
}

type AppConfig struct {
	BaseURL string `mapstructure:"baseURL"`
}

type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"readTimeout"`
	WriteTimeout   time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout    time.Duration `mapstructure:"idleTimeout"`
	ShutdownPeriod time.Duration `mapstructure:"shutdownPeriod"`
	CORSOrigins    []string      `mapstructure:"corsOrigins"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"`
	AutoMigrate     bool          `mapstructure:"autoMigrate"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type AuthConfig struct {
	JWTSecret     string        `mapstructure:"jwtSecret"`
	SessionTTL    time.Duration `mapstructure:"sessionTTL"`
	CookieName    string        `mapstructure:"cookieName"`
	CookieDomain  string        `mapstructure:"cookieDomain"`
	CookieSecure  bool          `mapstructure:"cookieSecure"`
	ResetTokenTTL time.Duration `mapstructure:"resetTokenTTL"`
}

// APIAccessConfig drives the metered API: rate limiting, key quota,
// wallet seeding and top-up bounds.
type APIAccessConfig struct {
	RateLimitWindow     time.Duration `mapstructure:"rateLimitWindow"`
	RateLimitMax        int           `mapstructure:"rateLimitMax"`
	RateLimitBackend    string        `mapstructure:"rateLimitBackend"`
	MaxActiveKeys       int           `mapstructure:"maxActiveKeys"`
	SeedFreeCents       int64         `mapstructure:"seedFreeCents"`
	SeedSubscriberCents int64         `mapstructure:"seedSubscriberCents"`
	MinTopUpCents       int64         `mapstructure:"minTopUpCents"`
	MaxTopUpCents       int64         `mapstructure:"maxTopUpCents"`
	TopUpURL            string        `mapstructure:"topUpURL"`
}

type StripeConfig struct {
	SecretKey       string `mapstructure:"secretKey"`
	WebhookSecret   string `mapstructure:"webhookSecret"`
	MonthlyPriceID  string `mapstructure:"monthlyPriceID"`
	YearlyPriceID   string `mapstructure:"yearlyPriceID"`
	SuccessURL      string `mapstructure:"successURL"`
	CancelURL       string `mapstructure:"cancelURL"`
	PortalReturnURL string `mapstructure:"portalReturnURL"`
}

type AIConfig struct {
	APIKey      string  `mapstructure:"apiKey"`
	Model       string  `mapstructure:"model"`
	Temperature float32 `mapstructure:"temperature"`
}

type EmailConfig struct {
	Host         string `mapstructure:"host"`
	Port         string `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	From         string `mapstructure:"from"`
	FromName     string `mapstructure:"fromName"`
	AdminAddress string `mapstructure:"adminAddress"`
}

type WorkerConfig struct {
	Concurrency     int    `mapstructure:"concurrency"`
	CleanupSchedule string `mapstructure:"cleanupSchedule"`
}

func LoadConfig(configPath string) (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading it, relying on environment variables and config file")
	}

	viper.SetDefault("app.baseURL", "http://localhost:3000")

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.readTimeout", 5*time.Second)
	viper.SetDefault("server.writeTimeout", 10*time.Second)
	viper.SetDefault("server.idleTimeout", 120*time.Second)
	viper.SetDefault("server.shutdownPeriod", 15*time.Second)
	viper.SetDefault("server.corsOrigins", []string{"http://localhost:3000"})

	viper.SetDefault("database.maxOpenConns", 25)
	viper.SetDefault("database.maxIdleConns", 25)
	viper.SetDefault("database.connMaxLifetime", 5*time.Minute)
	viper.SetDefault("database.autoMigrate", false)

	viper.SetDefault("redis.db", "0")

	viper.SetDefault("log.level", "info")

	viper.SetDefault("auth.sessionTTL", 7*24*time.Hour)
	viper.SetDefault("auth.cookieName", "nh_session")
	viper.SetDefault("auth.cookieSecure", true)
	viper.SetDefault("auth.resetTokenTTL", time.Hour)

	viper.SetDefault("apiAccess.rateLimitWindow", 60*time.Second)
	viper.SetDefault("apiAccess.rateLimitMax", 30)
	viper.SetDefault("apiAccess.rateLimitBackend", "memory")
	viper.SetDefault("apiAccess.maxActiveKeys", 5)
	viper.SetDefault("apiAccess.seedFreeCents", 100)
	viper.SetDefault("apiAccess.seedSubscriberCents", 500)
	viper.SetDefault("apiAccess.minTopUpCents", 500)
	viper.SetDefault("apiAccess.maxTopUpCents", 50000)
	viper.SetDefault("apiAccess.topUpURL", "https://nicheshunter.app/developer")

	viper.SetDefault("ai.model", "gemini-1.5-flash")
	viper.SetDefault("ai.temperature", 0.4)

	viper.SetDefault("email.port", "587")
	viper.SetDefault("email.fromName", "Niches Hunter")

	viper.SetDefault("worker.concurrency", 10)
	viper.SetDefault("worker.cleanupSchedule", "@every 1h")

	// Registered empty so that Unmarshal sees values coming only from the environment.
	for _, key := range []string{
		"database.url", "redis.addr", "redis.password",
		"auth.jwtSecret", "auth.cookieDomain",
		"stripe.secretKey", "stripe.webhookSecret", "stripe.monthlyPriceID", "stripe.yearlyPriceID",
		"stripe.successURL", "stripe.cancelURL", "stripe.portalReturnURL",
		"ai.apiKey",
		"email.host", "email.user", "email.password", "email.from", "email.adminAddress",
	} {
		viper.SetDefault(key, "")
	}

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AllowEmptyEnv(true)

	if configPath != "" {
		viper.SetConfigFile(configPath)
		if err := viper.ReadInConfig(); err != nil {
			log.Printf("Warning: could not read config file: %s. Error: %v\n", configPath, err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
