// Package config предоставляет структуры и функции для загрузки конфигурации.
//
// Конфигурация читается из YAML-файла (CONFIG_PATH), а переменные окружения
// переопределяют значения из файла. Без CONFIG_PATH используется только окружение.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек.
type Config struct {
	Env                     string          `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string          `yaml:"storage_connection_string" env:"DATABASE_URL" env-required:"true"`
	MigrationsPath          string          `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	HTTPServer              HTTPServer      `yaml:"http_server"`
	JWTToken                JWTToken        `yaml:"jwttoken"`
	CountryCache            CountryCache    `yaml:"country_cache"`
	RestCountries           RestCountries   `yaml:"rest_countries"`
	RedisConnection         RedisConnection `yaml:"redis_connection"`
	RabbitMQ                RabbitMQ        `yaml:"rabbitmq"`
	RateLimit               RateLimit       `yaml:"rate_limit"`
}

// HTTPServer структура для настройки сервера.
type HTTPServer struct {
	Address      string        `yaml:"address" env:"HTTP_ADDRESS"`
	Port         int           `yaml:"port" env:"PORT" env-default:"4000"`
	Timeout      time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"10s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	ClientOrigin string        `yaml:"client_origin" env:"CLIENT_ORIGIN" env-default:"http://localhost:5173"`
}

// Addr возвращает адрес для net/http: явный адрес, если задан, иначе ":PORT".
func (h HTTPServer) Addr() string {
	if h.Address != "" {
		return h.Address
	}
	return ":" + strconv.Itoa(h.Port)
}

// JWTToken структура для работы с jwt-токеном.
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET" env-required:"true"`
	TokenTTL     time.Duration `yaml:"token_ttl" env:"JWT_EXPIRES_IN" env-default:"1h"`
}

// CountryCache настройки кеша справочника стран.
type CountryCache struct {
	TTLSeconds     int  `yaml:"ttl_seconds" env:"CACHE_TTL_SEC" env-default:"86400"`
	WarmOnStart    bool `yaml:"warm_on_start" env:"CACHE_WARM_ON_START" env-default:"false"`
	RefreshOnStart bool `yaml:"refresh_on_start" env:"CACHE_REFRESH_ON_START" env-default:"false"` // прогрев мимо общего кеша
}

// TTL возвращает время жизни снимка справочника.
func (c CountryCache) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// RestCountries настройки внешнего источника данных о странах.
type RestCountries struct {
	BaseURL string        `yaml:"base_url" env:"REST_COUNTRIES_URL" env-default:"https://restcountries.com/v3.1"`
	Timeout time.Duration `yaml:"timeout" env:"REST_COUNTRIES_TIMEOUT" env-default:"5s"`
}

// RedisConnection структура для настройки подключения к redis.
// Пустой адрес отключает общий кеш.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDR"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user" env:"REDIS_USER"`
	DB           int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	MaxRetries   int           `yaml:"max_retries" env:"REDIS_MAX_RETRIES" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env:"REDIS_DIAL_TIMEOUT" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env:"REDIS_TIMEOUT" env-default:"3s"`
	KeyPrefix    string        `yaml:"key_prefix" env:"REDIS_KEY_PREFIX" env-default:"geobee:"`
}

// RabbitMQ настройки публикации событий избранного. Пустой URL отключает публикацию.
type RabbitMQ struct {
	URL            string        `yaml:"url" env:"RABBITMQ_URL"`
	Exchange       string        `yaml:"exchange" env:"RABBITMQ_EXCHANGE" env-default:"geobee.favorites"`
	ConnectRetries int           `yaml:"connect_retries" env:"RABBITMQ_CONNECT_RETRIES" env-default:"5"`
	RetryDelay     time.Duration `yaml:"retry_delay" env:"RABBITMQ_RETRY_DELAY" env-default:"2s"`
}

// RateLimit ограничение частоты запросов к /auth.
type RateLimit struct {
	RPS   float64 `yaml:"rps" env:"AUTH_RATE_LIMIT_RPS" env-default:"5"`
	Burst int     `yaml:"burst" env:"AUTH_RATE_LIMIT_BURST" env-default:"10"`
}

// Load читает конфиг из файла CONFIG_PATH (если задан) и окружения.
func Load() (*Config, error) {
	const op = "config.Load"
	var cfg Config

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return &cfg, nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: file %s does not exist", op, configPath)
	}
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// MustLoad загружает конфиг и завершает процесс при ошибке.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"StorageConnectionString: %s\n"+
			"MigrationsPath: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"  ClientOrigin: %s\n"+
			"JWTToken:\n"+
			"  JWTSecretKey: %s\n"+
			"  TokenTTL: %s\n"+
			"CountryCache:\n"+
			"  TTL: %s\n"+
			"  WarmOnStart: %t\n"+
			"  RefreshOnStart: %t\n"+
			"RestCountries:\n"+
			"  BaseURL: %s\n"+
			"  Timeout: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  Password: %s\n"+
			"  DB: %d\n"+
			"RabbitMQ:\n"+
			"  URL: %s\n"+
			"  Exchange: %s\n",
		c.Env,
		mask(c.StorageConnectionString),
		c.MigrationsPath,
		c.HTTPServer.Addr(),
		c.HTTPServer.Timeout,
		c.HTTPServer.IdleTimeout,
		c.HTTPServer.ClientOrigin,
		mask(c.JWTToken.JWTSecretKey),
		c.JWTToken.TokenTTL,
		c.CountryCache.TTL(),
		c.CountryCache.WarmOnStart,
		c.CountryCache.RefreshOnStart,
		c.RestCountries.BaseURL,
		c.RestCountries.Timeout,
		c.RedisConnection.AddressRedis,
		mask(c.RedisConnection.Password),
		c.RedisConnection.DB,
		mask(c.RabbitMQ.URL),
		c.RabbitMQ.Exchange,
	)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "******"
}
