package app

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage backends.
const (
	StorageFile   = "file"
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

// Config holds runtime wiring options for building the app.
type Config struct {
	APIURL     string        `mapstructure:"api_url" validate:"required,url"`
	Home       string        `mapstructure:"home"`                           // config directory, e.g. $HOME/.primis
	Storage    string        `mapstructure:"storage" validate:"oneof=file redis memory"`
	Passphrase string        `mapstructure:"passphrase"`                     // seals the file backend when set
	Timeout    time.Duration `mapstructure:"timeout" validate:"gt=0"`
	Redis      RedisConfig   `mapstructure:"redis"`
	Log        LogConfig     `mapstructure:"log"`

	HTTP *http.Client `mapstructure:"-"` // optional; Timeout applies only when nil
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr" validate:"required_if=Enabled true"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
	Prefix   string `mapstructure:"prefix"`
	Enabled  bool   `mapstructure:"-"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// NewViper returns a viper instance carrying defaults and reading PRIMIS_*
// environment variables. Nested keys use underscores: PRIMIS_REDIS_ADDR.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetTypeByDefaultValue(true)
	v.SetDefault("api_url", "http://localhost:8000")
	v.SetDefault("home", "")
	v.SetDefault("storage", StorageFile)
	v.SetDefault("passphrase", "")
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "primis")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetEnvPrefix("PRIMIS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadDotEnv loads path into the process environment if it exists.
// Variables already set win over the file.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

// LoadConfig reads and checks the configuration held by v.
func LoadConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		APIURL:     strings.TrimSpace(v.GetString("api_url")),
		Home:       v.GetString("home"),
		Storage:    strings.ToLower(v.GetString("storage")),
		Passphrase: v.GetString("passphrase"),
		Timeout:    v.GetDuration("timeout"),
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			Prefix:   v.GetString("redis.prefix"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: strings.ToLower(v.GetString("log.format")),
		},
	}
	cfg.Redis.Enabled = cfg.Storage == StorageRedis

	if cfg.Home == "" {
		dir, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("config: home: %w", err)
		}
		cfg.Home = filepath.Join(dir, ".primis")
	}
	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
