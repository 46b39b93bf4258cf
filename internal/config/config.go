package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode            string        `mapstructure:"mode"`
	Port            int           `mapstructure:"port"`
	BackendHost     string        `mapstructure:"backend_host"`
	BackendPassword string        `mapstructure:"backend_password"`
	DefaultVolume   int           `mapstructure:"default_volume"`
	VolumeStep      int           `mapstructure:"volume_step"`
	SeekStep        time.Duration `mapstructure:"seek_step"`
	IdleGrace       time.Duration `mapstructure:"idle_grace"`
	PageSize        int           `mapstructure:"page_size"`
	DefaultSource   string        `mapstructure:"default_source"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("backend_host", "localhost:2333")
	v.SetDefault("backend_password", "youshallnotpass")
	v.SetDefault("default_volume", 100)
	v.SetDefault("volume_step", 10)
	v.SetDefault("seek_step", "10s")
	v.SetDefault("idle_grace", "2m")
	v.SetDefault("page_size", 10)
	v.SetDefault("default_source", "ytsearch")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	fmt.Printf("🧩 Mode: %s | Port: %d | Backend: %s\n", cfg.Mode, cfg.Port, cfg.BackendHost)
	return &cfg, nil
}
