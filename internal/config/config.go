package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Freeeeeet/autoschool_bot/internal/grid"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	TelegramToken string `env:"TELEGRAM_TOKEN"`
	DBDSN         string `env:"DB_DSN"`
	Environment   string `env:"ENV" envDefault:"development"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	StoreDriver   string `env:"STORE_DRIVER" envDefault:"postgres"`
	SQLitePath    string `env:"SQLITE_PATH"`
	HTTPAddr      string `env:"HTTP_ADDR" envDefault:":8080"`
	ScheduleFile  string `env:"SCHEDULE_CONFIG"`

	Schedule Schedule
}

// Schedule - параметры расписания. YAML из SCHEDULE_CONFIG перекрывает переменные окружения
type Schedule struct {
	Timezone             string        `yaml:"timezone" env:"TIMEZONE" envDefault:"Europe/Moscow"`
	Grid                 grid.Config   `yaml:"grid"`
	AllowedDurations     []int         `yaml:"allowed_durations" env:"ALLOWED_DURATIONS" envSeparator:"," envDefault:"60,90,120,150,180,240"`
	AutoCompleteInterval time.Duration `yaml:"auto_complete_interval" env:"AUTO_COMPLETE_INTERVAL" envDefault:"1h"`
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	cfg, err := Parse()
	if err != nil {
		return nil, err
	}

	log.Printf("Config loaded (driver=%s, env=%s)\n", cfg.StoreDriver, cfg.Environment)
	return cfg, nil
}

// Parse читает конфигурацию из окружения без .env
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.ScheduleFile != "" {
		if err := cfg.Schedule.loadFile(cfg.ScheduleFile); err != nil {
			return nil, err
		}
	}
	if cfg.Schedule.Grid.Rows() == 0 {
		cfg.Schedule.Grid = grid.DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *Schedule) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read schedule config: %w", err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return fmt.Errorf("parse schedule config %s: %w", path, err)
	}
	return nil
}

// Validate проверяет обязательные поля
func (c *Config) Validate() error {
	var errs []error

	switch c.StoreDriver {
	case DriverPostgres:
		if c.DBDSN == "" {
			errs = append(errs, errors.New("DB_DSN is required for postgres driver"))
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for sqlite driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}

	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("invalid timezone %q: %w", c.Schedule.Timezone, err))
	}
	for _, d := range c.Schedule.AllowedDurations {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("invalid lesson duration %d", d))
		}
	}
	if c.Schedule.Grid.StartHour < 0 || c.Schedule.Grid.EndHour > 24 {
		errs = append(errs, fmt.Errorf("grid hours out of range: %d-%d", c.Schedule.Grid.StartHour, c.Schedule.Grid.EndHour))
	}
	if c.Schedule.AutoCompleteInterval < 0 {
		errs = append(errs, errors.New("AUTO_COMPLETE_INTERVAL must not be negative"))
	}

	return errors.Join(errs...)
}

// Location возвращает часовой пояс школы. Вызывать после Validate
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (c *Config) GetDBDSN() string {
	return c.DBDSN
}
