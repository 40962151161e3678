package config

import (
	"errors"
	"flag"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Загрузка конфигурации: .env -> config.yaml -> переменные окружения (через cleanenv)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	CoinGecko CoinGeckoConfig `yaml:"coingecko"`
	Redis     RedisConfig     `yaml:"redis"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Logger    LoggerConfig    `yaml:"logger"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" env:"HTTP_ADDR" env-default:":8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env-default:"5s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env-default:"20s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"10s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" env-default:"15s"`
}

type SchedulerConfig struct {
	Enabled    bool          `yaml:"enabled" env:"SCHEDULER_ENABLED" env-default:"true"`
	Interval   time.Duration `yaml:"interval" env:"SCHEDULER_INTERVAL" env-default:"30s"`
	RunOnStart bool          `yaml:"run_on_start" env-default:"false"`
}

type LoggerConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"` // debug|info|warn|error
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"` // text|json
}

type PostgresConfig struct {
	Host            string        `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port            int           `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User            string        `yaml:"user" env:"DB_USER" env-default:"postgres"`
	Password        string        `yaml:"password" env:"DB_PASSWORD" env-default:"postgres"`
	DBName          string        `yaml:"dbname" env:"DB_NAME" env-default:"crypto"`
	SSLMode         string        `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
	Timeout         time.Duration `yaml:"timeout" env-default:"5s"`
	MaxConns        int32         `yaml:"max_conns" env-default:"10"`
	MinConns        int32         `yaml:"min_conns" env-default:"1"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime" env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env-default:"30m"`
}

type CoinGeckoConfig struct {
	BaseURL   string        `yaml:"base_url" env:"COINGECKO_BASE_URL" env-default:"https://api.coingecko.com/api/v3"`
	APIKey    string        `yaml:"api_key" env:"COINGECKO_API_KEY"`
	Timeout   time.Duration `yaml:"timeout" env-default:"10s"`
	UserAgent string        `yaml:"user_agent" env-default:"crypto-tracker-service/1.0"`
}

type RedisConfig struct {
	Enabled  bool          `yaml:"enabled" env:"REDIS_ENABLED" env-default:"false"`
	Addr     string        `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env-default:"0"`
	TTL      time.Duration `yaml:"ttl" env-default:"30s"`
}

type TelegramConfig struct {
	Enabled bool   `yaml:"enabled" env:"TELEGRAM_ENABLED" env-default:"false"`
	Token   string `yaml:"token" env:"TELEGRAM_BOT_TOKEN"`
}

func LoadConfig() (*Config, error) {
	return Load(fetchConfigPath())
}

// Load - читает конфиг из файла (если путь задан) и переменных окружения
func Load(configPath string) (*Config, error) {
	// .env необязателен: в контейнере переменные приходят из окружения
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	cfg := &Config{}
	if configPath != "" {
		if err := cleanenv.ReadConfig(configPath, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fetchConfigPath() string {
	var res string
	flag.StringVar(&res, "c", "", "config file path")
	flag.Parse()
	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}
	return res
}
