package config

import (
	"errors"
	"os"
	"time"

	"srtbot/pkg/logger"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const configPath = "configs/config.yaml"

type Config struct {
	Telegram struct {
		Token string `yaml:"token" env:"BOT_TOKEN"`
	} `yaml:"telegram"`

	Gemini struct {
		APIKey string `yaml:"api_key" env:"GEMINI_KEY"`
		Model  string `yaml:"model" env:"GEMINI_MODEL" env-default:"gemini-1.5-flash"`
	} `yaml:"gemini"`

	Server struct {
		Addr string `yaml:"addr" env:"LISTEN_ADDR" env-default:":7860"`
	} `yaml:"server"`

	Downloader struct {
		Binary  string        `yaml:"binary" env:"YTDLP_PATH" env-default:"yt-dlp"`
		Timeout time.Duration `yaml:"timeout" env:"YTDLP_TIMEOUT" env-default:"90s"`
	} `yaml:"downloader"`

	Redis struct {
		Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:""`
		Password string `yaml:"password" env:"REDIS_PASSWORD" env-default:""`
		DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
	} `yaml:"redis"`
}

func LoadConfig() (*Config, error) {
	// Load .env file
	_ = godotenv.Load()

	var cfg Config
	if _, err := os.Stat(configPath); err == nil {
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, err
		}
		if err := cleanenv.UpdateEnv(&cfg); err != nil {
			return nil, err
		}
	} else {
		// The yaml file is optional, environment alone is enough.
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, err
		}
	}

	if cfg.Telegram.Token == "" {
		return nil, errors.New("BOT_TOKEN environment variable is required")
	}
	if cfg.Gemini.APIKey == "" {
		return nil, errors.New("GEMINI_KEY environment variable is required")
	}

	logger.Info("Config loaded successfully")
	return &cfg, nil
}
