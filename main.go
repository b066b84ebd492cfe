package main

import (
	"log"
	"net/http"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"poputchik/internal/api"
	"poputchik/internal/config"
	"poputchik/internal/constants"
	"poputchik/internal/db"
	"poputchik/internal/handlers"
	"poputchik/internal/notify"
	"poputchik/internal/rides"
	"poputchik/internal/session"
	"poputchik/internal/telegram_api"
)

func main() {
	// --- Блок инициализации ---
	err := godotenv.Load()
	if err != nil {
		log.Println("Предупреждение: не удалось загрузить файл .env. Переменные окружения должны быть установлены иным способом.")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Критическая ошибка: не удалось загрузить конфигурацию: %v", err)
	}

	if err := db.InitDB(); err != nil {
		log.Fatalf("Критическая ошибка: не удалось инициализировать базу данных: %v", err)
	}
	defer db.CloseDB()

	err = telegram_api.InitBot(cfg.TelegramToken, cfg.AppEnv == "dev")
	if err != nil {
		log.Fatalf("Критическая ошибка: не удалось инициализировать Telegram бота: %v", err)
	}

	if telegram_api.Client == nil || telegram_api.Client.GetAPI() == nil {
		log.Fatalf("Критическая ошибка: Telegram API клиент не был корректно инициализирован.")
	}
	botAPI := telegram_api.Client.GetAPI()

	sessionManager := session.NewSessionManager()
	dispatcher := notify.NewDispatcher(telegram_api.Client, constants.NOTIFY_SEND_DELAY)
	ridesService := rides.NewService(rides.DBStore{}, dispatcher)

	handlerDeps := handlers.HandlerDependencies{
		Config:         cfg,
		BotClient:      telegram_api.Client,
		SessionManager: sessionManager,
		Rides:          ridesService,
		Dispatcher:     dispatcher,
	}

	botHandler := handlers.NewBotHandler(handlerDeps)

	// --- Настройка роутера и Middleware ---
	apiRouter := chi.NewRouter()
	apiRouter.Use(middleware.Logger)
	apiRouter.Use(middleware.Recoverer)

	apiDeps := api.ApiDependencies{
		Config: cfg,
	}
	api.SetupRoutes(apiRouter, apiDeps)

	// Запускаем HTTP-сервер в отдельной горутине
	go func() {
		log.Printf("Запуск служебного HTTP API на порту %s", cfg.HTTPPort)
		if err := http.ListenAndServe(":"+cfg.HTTPPort, apiRouter); err != nil {
			log.Fatalf("КРИТИЧЕСКАЯ ОШИБКА: не удалось запустить HTTP-сервер: %v", err)
		}
	}()

	// Запуск самого бота
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := botAPI.GetUpdatesChan(u)

	log.Println("Бот и API-сервер запущены и готовы к работе...")

	for update := range updates {
		if update.Message != nil {
			go botHandler.HandleMessage(update)
		} else if update.CallbackQuery != nil {
			go botHandler.HandleCallback(update)
		}
	}
}
