// Package config предоставялет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Окружения, влияющие на логирование и набор маршрутов.
const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// Config общая структура для хранения настроек
type Config struct {
	Env               string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnection `yaml:"storage"`
	RedisConnection   `yaml:"redis_connection"`
	RabbitMQ          `yaml:"rabbitmq"`
	HTTPServer        `yaml:"http_server"`
	GRPCServer        `yaml:"grpc_server"`
	JWTToken          `yaml:"jwttoken"`
	RateLimit         `yaml:"rate_limit"`
}

// StorageConnection структура для подключения к PostgreSQL
type StorageConnection struct {
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING" env-required:"true"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	MaxConns                int32  `yaml:"max_conns" env-default:"10"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP     string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	TimeoutHTTP     time.Duration `yaml:"timeouthttp" env-default:"5s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"15s"`
	CookieSecure    bool          `yaml:"cookie_secure" env-default:"false"`
}

// GRPCServer структура для настройки gRPC health-сервера, пустой адрес отключает его
type GRPCServer struct {
	AddressGRPC    string        `yaml:"addressgrpc" env:"GRPC_ADDRESS"`
	HealthInterval time.Duration `yaml:"health_interval" env-default:"10s"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS" env-default:"localhost:6379"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
	CacheTTL     time.Duration `yaml:"cache_ttl" env-default:"1h"`
}

// RabbitMQ структура для публикации событий, пустой URL отключает публикацию
type RabbitMQ struct {
	URL      string        `yaml:"url" env:"RABBITMQ_URL"`
	Exchange string        `yaml:"exchange" env-default:"products"`
	Retries  int           `yaml:"retries" env-default:"5"`
	Delay    time.Duration `yaml:"delay" env-default:"2s"`
	Workers  int           `yaml:"workers" env-default:"10"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET" env-required:"true"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"168h"`
}

// RateLimit структура для ограничения частоты запросов входа
type RateLimit struct {
	RPS   float64 `yaml:"rps" env-default:"1"`
	Burst int     `yaml:"burst" env-default:"5"`
}

// MustLoad функция для загрузки конфига, путь берётся из переменной окружения CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// Load читает конфиг из файла и переменных окружения.
func Load(configPath string) (*Config, error) {
	const op = "config.Load"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: file %s does not exist", op, configPath)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// String печатает конфиг без секретов.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"Storage:\n"+
			"  MigrationsPath: %s\n"+
			"  MaxConns: %d\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"  CacheTTL: %s\n"+
			"RabbitMQ:\n"+
			"  Enabled: %t\n"+
			"  Exchange: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"GRPCServer:\n"+
			"  Address: %s\n"+
			"JWTToken:\n"+
			"  TokenTTL: %s\n",
		c.Env,
		c.MigrationsPath,
		c.MaxConns,
		c.AddressRedis,
		c.DB,
		c.CacheTTL,
		c.RabbitMQ.URL != "",
		c.Exchange,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.AddressGRPC,
		c.TokenTTL,
	)
}
