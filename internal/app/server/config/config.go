package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// Значения по умолчанию
const (
	defaultRunAddress        = "localhost:8080"
	defaultMigrations        = "migrations"
	defaultSlotCount         = 10
	defaultMaxBlobSize       = 64 * 1024
	defaultSendBuffer        = 64
	defaultHeartbeatInterval = 30 * time.Second
	defaultReadTimeout       = 60 * time.Second
	defaultLinkCodeTTL       = 5 * time.Minute
)

type Config struct {
	Env    string
	DB     DB
	Server Server
	Relay  Relay
	Logger Logger
}

type DB struct {
	DatabaseURI string
	Migrations  string
}

type Server struct {
	RunAddress string
}

// Relay — настройки real-time части: фан-аут, heartbeat, лимиты
type Relay struct {
	SlotCount         int           // количество слотов на пользователя
	MaxBlobSize       int           // максимальный размер blob в байтах
	SendBuffer        int           // размер исходящего буфера соединения
	HeartbeatInterval time.Duration // период ping
	ReadTimeout       time.Duration // дедлайн чтения (сбрасывается pong-ом)
	LinkCodeTTL       time.Duration // время жизни кода привязки
}

type Logger struct {
	LogLevel string
}

// MustLoad загружает конфигурацию сервера из .env и переменных окружения
func MustLoad() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	viper.AutomaticEnv()

	viper.SetDefault("RUN_ADDRESS", defaultRunAddress)
	viper.SetDefault("MIGRATIONS_PATH", defaultMigrations)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("APP_ENV", EnvLocal)
	viper.SetDefault("SLOT_COUNT", defaultSlotCount)
	viper.SetDefault("MAX_BLOB_SIZE", defaultMaxBlobSize)
	viper.SetDefault("WS_SEND_BUFFER", defaultSendBuffer)
	viper.SetDefault("WS_HEARTBEAT_SECONDS", int(defaultHeartbeatInterval.Seconds()))
	viper.SetDefault("WS_READ_TIMEOUT_SECONDS", int(defaultReadTimeout.Seconds()))
	viper.SetDefault("LINK_CODE_TTL_SECONDS", int(defaultLinkCodeTTL.Seconds()))

	config := &Config{
		Env: viper.GetString("APP_ENV"),
		DB: DB{
			DatabaseURI: viper.GetString("DATABASE_URI"),
			Migrations:  viper.GetString("MIGRATIONS_PATH"),
		},
		Server: Server{RunAddress: viper.GetString("RUN_ADDRESS")},
		Relay: Relay{
			SlotCount:         viper.GetInt("SLOT_COUNT"),
			MaxBlobSize:       viper.GetInt("MAX_BLOB_SIZE"),
			SendBuffer:        viper.GetInt("WS_SEND_BUFFER"),
			HeartbeatInterval: time.Duration(viper.GetInt("WS_HEARTBEAT_SECONDS")) * time.Second,
			ReadTimeout:       time.Duration(viper.GetInt("WS_READ_TIMEOUT_SECONDS")) * time.Second,
			LinkCodeTTL:       time.Duration(viper.GetInt("LINK_CODE_TTL_SECONDS")) * time.Second,
		},
		Logger: Logger{LogLevel: viper.GetString("LOG_LEVEL")},
	}

	return config
}
