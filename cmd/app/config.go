package main

import (
	"fmt"
	"strings"
	"time"

	"gtask_miniapp/internal/repository"

	"github.com/spf13/viper"
)

const (
	configPath   = "./"
	configName   = "config"
	configFormat = "yaml"
)

type Config struct {
	Database repository.Config `yaml:"database"`
	Server   ServerConfig      `yaml:"server"`

	Telegram TelegramConfig `yaml:"telegram"`
	Ledger   LedgerConfig   `yaml:"ledger"`

	LogLevel string `yaml:"logLevel"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type TelegramConfig struct {
	BotToken   string `yaml:"botToken"`
	AdminID    int64  `yaml:"adminId"`
	MiniAppURL string `yaml:"miniAppUrl"`
}

type LedgerConfig struct {
	ReferralPercent    float64       `yaml:"referralPercent"`
	StoreTimeout       time.Duration `yaml:"storeTimeout"`
	NotifyTimeout      time.Duration `yaml:"notifyTimeout"`
	BroadcastPerSecond float64       `yaml:"broadcastPerSecond"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(configName)
	viper.AddConfigPath(configPath)
	viper.SetConfigType(configFormat)

	viper.AutomaticEnv()
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
