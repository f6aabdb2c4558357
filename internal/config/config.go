package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
)

const DefaultPath = "./config/config.yaml"

type Config struct {
	Env        string `yaml:"env" env-default:"local" validate:"oneof=local dev prod"`
	JWTSecret  string `yaml:"jwt_secret" env:"JWT_SECRET"`
	HTTPServer `yaml:"http_server"`
	Scraper    `yaml:"scraper"`
	Storage    `yaml:"storage"`
	RabbitMQ   `yaml:"rabbitmq"`
}

type HTTPServer struct {
	Address        string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"0.0.0.0:5000" validate:"required,hostname_port"`
	Timeout        time.Duration `yaml:"timeout" env-default:"4s" validate:"gt=0"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" env-default:"60s" validate:"gt=0"`
	AllowedOrigins []string      `yaml:"allowed_origins" env:"HTTP_ALLOWED_ORIGINS" env-default:"*"`
}

type Scraper struct {
	UserAgent    string        `yaml:"user_agent" env-default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/141.0.0.0 Safari/537.36" validate:"required"`
	Timeout      time.Duration `yaml:"timeout" env-default:"30s" validate:"gt=0"`
	SettleDelay  time.Duration `yaml:"settle_delay" env-default:"3s" validate:"gt=0"`
	FieldTimeout time.Duration `yaml:"field_timeout" env-default:"2s" validate:"gt=0"`
	ChromePath   string        `yaml:"chrome_path" env:"CHROME_PATH"`
}

type Storage struct {
	Backend   string `yaml:"backend" env:"STORAGE_BACKEND" env-default:"firestore" validate:"oneof=firestore postgres redis"`
	Firestore `yaml:"firestore"`
	Postgres  `yaml:"postgres"`
	Redis     `yaml:"redis"`
}

type Firestore struct {
	CredentialsFile string `yaml:"credentials_file" env:"GOOGLE_APPLICATION_CREDENTIALS" env-default:"serviceAccountKey.json"`
	ProjectID       string `yaml:"project_id" env:"FIRESTORE_PROJECT_ID"`
}

type Postgres struct {
	Host     string `yaml:"host" env-default:"postgres"`
	Port     int    `yaml:"port" env-default:"5432"`
	User     string `yaml:"user" env:"POSTGRES_USER"`
	Password string `yaml:"password" env:"POSTGRES_PASSWORD"`
	DBName   string `yaml:"dbname" env:"POSTGRES_DB"`
	SSLMode  string `yaml:"sslmode" env-default:"disable"`
}

type Redis struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"redis:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	Db       int    `yaml:"db" env-default:"0"`
}

// RabbitMQ is optional: with an empty URL no events are published and no
// queue trigger is consumed.
type RabbitMQ struct {
	URL          string `yaml:"url" env:"RABBITMQ_URL" validate:"omitempty,url"`
	EventsQueue  string `yaml:"events_queue" env-default:"price_updates"`
	TriggerQueue string `yaml:"trigger_queue"`
}

func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultPath
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}

	return cfg
}

func Load(configPath string) (*Config, error) {
	// проверка существования файла
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if c.Storage.Backend == "postgres" && (c.Postgres.User == "" || c.Postgres.DBName == "") {
		return fmt.Errorf("invalid config: postgres backend needs user and dbname")
	}

	return nil
}
