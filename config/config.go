package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort     string `mapstructure:"APP_PORT"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	Env         string `mapstructure:"ENV"`
	JWTSecret   string `mapstructure:"JWT_SECRET"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisLockDB   int    `mapstructure:"REDIS_LOCK_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Web Push (VAPID).
	VAPIDPublicKey  string `mapstructure:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `mapstructure:"VAPID_PRIVATE_KEY"`
	VAPIDSubscriber string `mapstructure:"VAPID_SUBSCRIBER"`

	// SMTP for the email channel.
	SMTPHost string `mapstructure:"SMTP_HOST"`
	SMTPPort int    `mapstructure:"SMTP_PORT"`
	SMTPUser string `mapstructure:"SMTP_USER"`
	SMTPPass string `mapstructure:"SMTP_PASS"`
	SMTPFrom string `mapstructure:"SMTP_FROM"`

	// Scheduling.
	TickSpec            string `mapstructure:"TICK_SPEC"`
	ReconcileSpec       string `mapstructure:"RECONCILE_SPEC"`
	DispatchConcurrency int    `mapstructure:"DISPATCH_CONCURRENCY"`
	SchedulerPageSize   int    `mapstructure:"SCHEDULER_PAGE_SIZE"`

	// Media storage.
	MediaRetainLocal   bool   `mapstructure:"MEDIA_RETAIN_LOCAL"`
	LocalMediaDir      string `mapstructure:"LOCAL_MEDIA_DIR"`
	LocalMediaCapacity int64  `mapstructure:"LOCAL_MEDIA_CAPACITY"`
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
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_LOCK_DB", 1)
	viper.SetDefault("REDIS_QUEUE_DB", 2)
	viper.SetDefault("VAPID_SUBSCRIBER", "admin@yogatrack.app")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("TICK_SPEC", "@every 1m")
	viper.SetDefault("RECONCILE_SPEC", "@every 5m")
	viper.SetDefault("DISPATCH_CONCURRENCY", 10)
	viper.SetDefault("SCHEDULER_PAGE_SIZE", 200)
	viper.SetDefault("MEDIA_RETAIN_LOCAL", false)
	viper.SetDefault("LOCAL_MEDIA_DIR", "./media")
	viper.SetDefault("LOCAL_MEDIA_CAPACITY", 512*1024*1024)

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
