package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisAuthDB   int    `mapstructure:"REDIS_AUTH_DB"`
	RedisOTPDB    int    `mapstructure:"REDIS_OTP_DB"`
	RedisWorkerDB int    `mapstructure:"REDIS_WORKER_DB"`

	// One-time code policy.
	OTPTTLMinutes          int `mapstructure:"OTP_TTL_MINUTES"`
	OTPResendCooldownSecs  int `mapstructure:"OTP_RESEND_COOLDOWN_SECS"`
	OTPMaxVerifyAttempts   int `mapstructure:"OTP_MAX_VERIFY_ATTEMPTS"`
	LoginSessionTTLMinutes int `mapstructure:"LOGIN_SESSION_TTL_MINUTES"`

	// POS device policy. The terminal registry flag is a named placeholder:
	// when false, branches that do not require attendance-device registration
	// admit any device.
	PosTerminalRegistryEnforced bool `mapstructure:"POS_TERMINAL_REGISTRY_ENFORCED"`

	// SMS gateway used for one-time code delivery.
	SMSGatewayURL string `mapstructure:"SMS_GATEWAY_URL"`

	// SMTP settings for the email delivery channel.
	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUser     string `mapstructure:"SMTP_USER"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	SMTPFrom     string `mapstructure:"SMTP_FROM"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_AUTH_DB", 1)
	viper.SetDefault("REDIS_OTP_DB", 2)
	viper.SetDefault("REDIS_WORKER_DB", 3)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("OTP_TTL_MINUTES", 5)
	viper.SetDefault("OTP_RESEND_COOLDOWN_SECS", 60)
	viper.SetDefault("OTP_MAX_VERIFY_ATTEMPTS", 5)
	viper.SetDefault("LOGIN_SESSION_TTL_MINUTES", 10)
	viper.SetDefault("POS_TERMINAL_REGISTRY_ENFORCED", false)
	viper.SetDefault("SMS_GATEWAY_URL", "")
	viper.SetDefault("SMTP_HOST", "")
	viper.SetDefault("SMTP_PORT", 587)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// OTPTTL returns the configured one-time code lifetime.
func OTPTTL() time.Duration {
	return time.Duration(AppConfig.OTPTTLMinutes) * time.Minute
}

// OTPResendCooldown returns the minimum interval between issuances.
func OTPResendCooldown() time.Duration {
	return time.Duration(AppConfig.OTPResendCooldownSecs) * time.Second
}

// LoginSessionTTL returns how long an in-progress login may sit between steps.
func LoginSessionTTL() time.Duration {
	return time.Duration(AppConfig.LoginSessionTTLMinutes) * time.Minute
}
