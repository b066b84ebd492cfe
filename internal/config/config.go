// internal/config/config.go
package config

import (
	"log"
	"os"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	TelegramToken string
	DatabaseURL   string
	AppEnv        string
	BotUsername   string
	APISecret     string // ключ подписи для HTTP API статистики/экспорта
	HTTPPort      string
}

// LoadConfig загружает конфигурацию из переменных окружения.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		TelegramToken: os.Getenv("TELEGRAM_APITOKEN"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		AppEnv:        os.Getenv("ENV"),
		BotUsername:   os.Getenv("BOT_USERNAME"),
		APISecret:     os.Getenv("API_SECRET"),
		HTTPPort:      os.Getenv("PORT"),
	}

	if cfg.TelegramToken == "" {
		log.Println("Критическая ошибка: TELEGRAM_APITOKEN не установлен.")
	}
	if cfg.DatabaseURL == "" {
		log.Println("Критическая ошибка: DATABASE_URL не установлен.")
	}
	if cfg.BotUsername == "" {
		log.Println("Предупреждение: BOT_USERNAME не установлен. Ссылки и QR-коды на маршруты работать не будут.")
	}
	if cfg.APISecret == "" {
		log.Println("Предупреждение: API_SECRET не установлен. HTTP API статистики будет недоступен.")
	}
	if cfg.HTTPPort == "" {
		cfg.HTTPPort = "8080"
	}

	log.Println("Конфигурация загружена.")
	return cfg, nil
}
