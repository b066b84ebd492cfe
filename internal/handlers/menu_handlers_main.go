package handlers

import (
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"poputchik/internal/constants"
	"poputchik/internal/db"
	"poputchik/internal/models"
)

// SendMainMenu показывает главное меню бота.
func (bh *BotHandler) SendMainMenu(chatID int64, user models.User, messageIDToEdit int) {
	name := user.DisplayName.String
	if name == "" {
		name = "попутчик"
	}
	text := "👋 Привет, " + name + "!\n\n" +
		"Я помогу найти попутчиков: водители публикуют маршруты, пассажиры откликаются.\n\n" +
		"Выберите действие:"

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚗 Создать маршрут", constants.CALLBACK_PREFIX_ROUTE_CREATE+"start"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📋 Мои маршруты", constants.CALLBACK_PREFIX_MY_ROUTES+"list"),
			tgbotapi.NewInlineKeyboardButtonData("🎒 Мои поездки", constants.CALLBACK_PREFIX_MY_TRIPS+"list"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔍 Найти маршрут", constants.CALLBACK_PREFIX_SEARCH+"start"),
			tgbotapi.NewInlineKeyboardButtonData("👤 Профиль", constants.CALLBACK_PREFIX_PROFILE+"view"),
		),
	)

	bh.sendOrEditMessageHelper(chatID, messageIDToEdit, text, &keyboard)
}

// handleStartCommand обрабатывает /start, включая deep-link на карточку
// маршрута (/start route_123) и регистрацию пользователя.
func (bh *BotHandler) handleStartCommand(chatID int64, username string, payload string) {
	if err := db.CreateUser(chatID, username); err != nil {
		log.Printf("handleStartCommand: ошибка регистрации пользователя %d: %v", chatID, err)
		bh.sendErrorMessageHelper(chatID, 0, "Произошла ошибка. Попробуйте /start еще раз.")
		return
	}

	bh.Deps.SessionManager.ClearState(chatID)
	bh.Deps.SessionManager.ClearTempRoute(chatID)
	bh.Deps.SessionManager.ClearEditSession(chatID)
	bh.Deps.SessionManager.ClearDeletedMessagesCacheForChat(chatID)

	// Deep-link на маршрут: /start route_123
	if strings.HasPrefix(payload, "route_") {
		routeID, err := strconv.ParseInt(strings.TrimPrefix(payload, "route_"), 10, 64)
		if err == nil && routeID > 0 {
			bh.showRouteCardForPassenger(chatID, 0, routeID)
			return
		}
	}

	user, _ := bh.getUserFromDB(chatID)
	bh.SendMainMenu(chatID, user, 0)
}
