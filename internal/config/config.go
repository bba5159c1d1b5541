// Package config предоставялет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Поддерживаемые драйверы хранилища пользователей.
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

// Config общая структура для хранения настроек
type Config struct {
	Env             string `yaml:"env" env:"ENV" env-default:"local"`
	Storage         `yaml:"storage"`
	HTTPServer      `yaml:"http_server"`
	GRPCServer      `yaml:"grpc_server"`
	RedisConnection `yaml:"redis_connection"`
	Cache           `yaml:"cache"`
	RabbitMQ        `yaml:"rabbitmq"`
	JWTToken        `yaml:"jwttoken"`
	Auth            `yaml:"auth"`
	SMTP            `yaml:"smtp"`
}

// Storage структура для выбора и настройки хранилища пользователей
type Storage struct {
	Driver                  string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"postgres"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	MongoURI                string `yaml:"mongo_uri" env:"MONGO_URI"`
	MongoDatabase           string `yaml:"mongo_database" env:"MONGO_DATABASE" env-default:"fintrack"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// GRPCServer структура для настройки gRPC health-сервера. Пустой адрес отключает сервер.
type GRPCServer struct {
	AddressGRPC string `yaml:"addressgrpc" env:"GRPC_ADDRESS"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// Cache структура для настройки кэша пользователей
type Cache struct {
	LRUSize  int           `yaml:"lru_size" env-default:"1024"`
	CacheTTL time.Duration `yaml:"ttl" env-default:"10m"`
}

// RabbitMQ структура для настройки публикации событий. Пустой URL отключает публикацию.
type RabbitMQ struct {
	RabbitURL      string        `yaml:"url" env:"RABBITMQ_URL"`
	Exchange       string        `yaml:"exchange" env-default:"users"`
	ConnectRetries int           `yaml:"connect_retries" env-default:"5"`
	RetryDelay     time.Duration `yaml:"retry_delay" env-default:"2s"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"SECRET_KEY" env-required:"true"`
	TokenTTL     time.Duration `yaml:"token_ttl" env:"TOKEN_TTL" env-default:"1h"`
}

// Auth структура для настройки хеширования, таймаутов и ограничения попыток входа
type Auth struct {
	BcryptCost int           `yaml:"bcrypt_cost" env-default:"10"`
	OpTimeout  time.Duration `yaml:"op_timeout" env-default:"5s"`
	LoginRate  float64       `yaml:"login_rate" env-default:"1"`
	LoginBurst int           `yaml:"login_burst" env-default:"5"`
}

// SMTP структура для настройки отправки приветственных писем воркером notify
type SMTP struct {
	SMTPHost      string `yaml:"host" env:"SMTP_HOST"`
	SMTPPort      string `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	SMTPUser      string `yaml:"user" env:"SMTP_USER"`
	SMTPPass      string `yaml:"password" env:"SMTP_PASSWORD"`
	SMTPFrom      string `yaml:"from" env:"SMTP_FROM"`
	SenderWorkers int    `yaml:"workers" env-default:"4"`
}

// Load читает .env (если есть), затем yaml-файл и переменные окружения.
//
// Если path пуст, путь берётся из CONFIG_PATH.
func Load(path string) (*Config, error) {
	const op = "config.Load"

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		return nil, fmt.Errorf("%s: CONFIG_PATH is not set", op)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%s: file %s: %w", op, path, err)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Driver {
	case DriverPostgres:
		if c.StorageConnectionString == "" {
			return errors.New("storage_connection_string is required for postgres driver")
		}
	case DriverMongo:
		if c.MongoURI == "" {
			return errors.New("mongo_uri is required for mongo driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Driver)
	}
	if c.JWTSecretKey == "" {
		return errors.New("jwt secret is required (SECRET_KEY)")
	}
	if c.TokenTTL <= 0 {
		return errors.New("token_ttl must be positive")
	}
	return nil
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"Storage:\n"+
			"  Driver: %s\n"+
			"  MigrationsPath: %s\n"+
			"  MongoDatabase: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"GRPCServer:\n"+
			"  Address: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"Cache:\n"+
			"  LRUSize: %d\n"+
			"  TTL: %s\n"+
			"RabbitMQ:\n"+
			"  Enabled: %t\n"+
			"  Exchange: %s\n"+
			"JWTToken:\n"+
			"  JWTSecretKey: %s\n"+
			"  TokenTTL: %s\n"+
			"Auth:\n"+
			"  BcryptCost: %d\n"+
			"  OpTimeout: %s\n"+
			"SMTP:\n"+
			"  Host: %s\n"+
			"  User: %s\n"+
			"  Password: %s\n",
		c.Env,
		c.Driver,
		c.MigrationsPath,
		c.MongoDatabase,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.AddressGRPC,
		c.AddressRedis,
		c.DB,
		c.LRUSize,
		c.CacheTTL,
		c.RabbitURL != "",
		c.Exchange,
		mask(c.JWTSecretKey),
		c.TokenTTL,
		c.BcryptCost,
		c.OpTimeout,
		c.SMTPHost,
		c.SMTPUser,
		mask(c.SMTPPass),
	)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "******"
}
