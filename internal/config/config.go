package config

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Server struct {
	Port            string   `mapstructure:"port"`
	AllowedOrigins  []string `mapstructure:"allowed-origins"`
	ShutdownTimeout int      `mapstructure:"shutdown-timeout-ms"`
}

type App struct {
	Name      string `mapstructure:"name"`
	URL       string `mapstructure:"url"`
	SecretKey string `mapstructure:"secret-key"`

	// AllowedDomainPattern restricts which Saleor API urls may register the app.
	AllowedDomainPattern string `mapstructure:"allowed-domain-pattern"`
}

type Database struct {
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	SSLMode  string `mapstructure:"ssl-mode"`
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// APL selects where Saleor auth data is kept: "postgres", "redis" or "memory".
type APL struct {
	Backend string `mapstructure:"backend"`
}

// Metadata selects where encrypted app configuration is kept: "saleor", "postgres" or "memory".
type Metadata struct {
	Backend string `mapstructure:"backend"`
}

type KafkaWriter struct {
	BatchSize      int `mapstructure:"batch-size"`
	BatchTimeoutMs int `mapstructure:"batch-timeout-ms"`
}

type KafkaBroker struct {
	URL string `mapstructure:"url"`
}

type KafkaTopic struct {
	TransactionReports string `mapstructure:"transaction-reports"`
}

type Kafka struct {
	Writer KafkaWriter `mapstructure:"writer"`
	Broker KafkaBroker `mapstructure:"broker"`
	Topic  KafkaTopic  `mapstructure:"topic"`
}

type Saleor struct {
	TimeoutMs int `mapstructure:"timeout-ms"`
}

type Stripe struct {
	WebhookDescription string `mapstructure:"webhook-description"`
}

type Metrics struct {
	URL          string `mapstructure:"url"`
	IntervalMs   int    `mapstructure:"interval-ms"`
	CommonLabels string `mapstructure:"common-labels"`
}

type Logs struct {
	URL   string `mapstructure:"url"`
	Level string `mapstructure:"level"`
}

type Config struct {
	Server   Server   `mapstructure:"server"`
	App      App      `mapstructure:"app"`
	Database Database `mapstructure:"database"`
	Redis    Redis    `mapstructure:"redis"`
	APL      APL      `mapstructure:"apl"`
	Metadata Metadata `mapstructure:"metadata"`
	Kafka    Kafka    `mapstructure:"kafka"`
	Saleor   Saleor   `mapstructure:"saleor"`
	Stripe   Stripe   `mapstructure:"stripe"`
	Metrics  Metrics  `mapstructure:"metrics"`
	Logs     Logs     `mapstructure:"logs"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.shutdown-timeout-ms", 10_000)
	v.SetDefault("app.name", "Stripe")
	v.SetDefault("apl.backend", "postgres")
	v.SetDefault("metadata.backend", "saleor")
	v.SetDefault("kafka.writer.batch-size", 100)
	v.SetDefault("kafka.writer.batch-timeout-ms", 100)
	v.SetDefault("kafka.topic.transaction-reports", "transaction-reports")
	v.SetDefault("saleor.timeout-ms", 10_000)
	v.SetDefault("stripe.webhook-description", "Saleor Stripe App")
	v.SetDefault("metrics.interval-ms", 10_000)
	v.SetDefault("logs.level", "info")
}

// LoadConfig reads config.yaml from path. Every key can be overridden from the
// environment with dots and dashes replaced by underscores, e.g. APP_SECRET_KEY.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func MustLoadConfig(path string) *Config {
	config, err := LoadConfig(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return config
}
