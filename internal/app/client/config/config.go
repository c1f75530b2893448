package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultServerURL = "http://localhost:8080"
	defaultLogLevel  = "info"
	defaultEnv       = "local"
	defaultConfigDir = ".clipsync"
)

type Config struct {
	Env           string
	ServerURL     string
	LogLevel      string
	ConfigDir     string
	MasterKeyPath string
	DBPath        string
}

// MustLoad загружает конфигурацию клиента из .env и переменных окружения.
// Все файлы клиента живут в ~/.clipsync.
func MustLoad() *Config {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Ошибка загрузки .env файла: %v\n", err)
		}
	}

	viper.AutomaticEnv()
	viper.SetDefault("APP_ENV", defaultEnv)
	viper.SetDefault("CLIPSYNC_SERVER_URL", defaultServerURL)
	viper.SetDefault("LOG_LEVEL", defaultLogLevel)
	viper.SetDefault("CLIPSYNC_CONFIG_DIR", defaultConfigDir)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	configDir := viper.GetString("CLIPSYNC_CONFIG_DIR")
	if configDir == defaultConfigDir {
		configDir = filepath.Join(homeDir, configDir)
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		fmt.Printf("Ошибка создания директории конфигурации: %v\n", err)
	}

	config := &Config{
		Env:           viper.GetString("APP_ENV"),
		ServerURL:     viper.GetString("CLIPSYNC_SERVER_URL"),
		LogLevel:      viper.GetString("LOG_LEVEL"),
		ConfigDir:     configDir,
		MasterKeyPath: filepath.Join(configDir, "master.key"),
		DBPath:        filepath.Join(configDir, "clipsync.db"),
	}

	if err := config.validate(); err != nil {
		panic(fmt.Sprintf("Ошибка конфигурации: %v", err))
	}

	return config
}

func (c *Config) validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("server_url не может быть пустым")
	}
	return nil
}
