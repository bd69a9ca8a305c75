package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Debug   bool          `yaml:"debug"`
	Limiter Limiter       `yaml:"limiter"`
	Storage Storage       `yaml:"storage"`
	Backend Client        `yaml:"backend"`
	Reviews ReviewsConfig `yaml:"reviews"`
	Movies  MoviesConfig  `yaml:"movies"`
}

type Limiter struct {
	Enabled bool    `yaml:"enabled"`
	Rps     float64 `yaml:"rps" env-default:"10"`
	Burst   int     `yaml:"burst" env-default:"5"`
}

type Client struct {
	Addr         string        `yaml:"addr" env:"BACKEND_ADDR" env-required:"true"`
	RetryTimeout time.Duration `yaml:"retry_timeout" env-default:"2s"`
	RetriesCount int           `yaml:"retries_count" env-default:"1"`
}

type Storage struct {
	Path string `yaml:"path" env:"STORAGE_PATH" env-default:"moviereview.db"`
}

type ReviewsConfig struct {
	PageSize int `yaml:"page_size" env-default:"5"`
}

type MoviesConfig struct {
	BackdropRotation time.Duration `yaml:"backdrop_rotation" env-default:"3s"`
}

func MustLoad(configPath string) *Config {
	var cfg Config
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic(fmt.Errorf("config file %s not found", configPath))
	}
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic(err)
	}

	return &cfg
}
