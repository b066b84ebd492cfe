package handlers

import (
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"poputchik/internal/constants"
	"poputchik/internal/telegram_api"
)

// HandleCallback обрабатывает входящие callback query от Telegram,
// диспетчеризация по префиксу callback-данных.
func (bh *BotHandler) HandleCallback(update tgbotapi.Update) {
	query := update.CallbackQuery
	if query == nil {
		log.Println("[CALLBACK_HANDLER] Получен пустой CallbackQuery.")
		return
	}

	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID
	messageText := query.Message.Text
	data := query.Data

	log.Printf("[CALLBACK_HANDLER] ChatID=%d, User=%s, MsgID=%d, Data='%s'",
		chatID, query.From.UserName, messageID, data)

	telegram_api.AnswerCallback(bh.Deps.BotClient, query.ID, "")

	user, ok := bh.getUserFromDB(chatID)
	if !ok {
		bh.sendErrorMessageHelper(chatID, 0, "Произошла ошибка с данными пользователя. Попробуйте /start.")
		return
	}

	switch {
	case data == constants.CALLBACK_MAIN_MENU:
		bh.Deps.SessionManager.ClearState(chatID)
		bh.Deps.SessionManager.ClearTempRoute(chatID)
		bh.SendMainMenu(chatID, user, messageID)

	case strings.HasPrefix(data, constants.CALLBACK_PREFIX_ROUTE_CREATE):
		bh.handleRouteCreateCallback(chatID, messageID,
			strings.TrimPrefix(data, constants.CALLBACK_PREFIX_ROUTE_CREATE))

	case strings.HasPrefix(data, constants.CALLBACK_PREFIX_NEW_CALENDAR):
		bh.handleNewRouteCalendarCallback(chatID, messageID,
			strings.TrimPrefix(data, constants.CALLBACK_PREFIX_NEW_CALENDAR))

	case strings.HasPrefix(data, constants.CALLBACK_PREFIX_EDIT_CALENDAR):
		bh.handleEditCalendarCallback(chatID, messageID,
			strings.TrimPrefix(data, constants.CALLBACK_PREFIX_EDIT_CALENDAR))

	case strings.HasPrefix(data, constants.CALLBACK_PREFIX_MY_ROUTES):
		bh.handleMyRoutesCallback(chatID, messageID,
			strings.TrimPrefix(data, constants.CALLBACK_PREFIX_MY_ROUTES))

	case strings.HasPrefix(data, constants.CALLBACK_PREFIX_MY_TRIPS):
		bh.handleMyTripsCallback(chatID, messageID,
			strings.TrimPrefix(data, constants.CALLBACK_PREFIX_MY_TRIPS))

	// Префикс карточки должен проверяться раньше префикса решений:
	// "rs:card:reply:" сам начинается не с "reply:", но порядок фиксируем
	// явно, чтобы он не зависел от значений констант.
	case strings.HasPrefix(data, constants.CALLBACK_PREFIX_ROUTE_CARD):
		routeID, err := strconv.ParseInt(strings.TrimPrefix(data, constants.CALLBACK_PREFIX_ROUTE_CARD), 10, 64)
		if err == nil && routeID > 0 {
			bh.handleRouteCardReply(chatID, messageID, routeID, query.From.UserName)
		}

	case strings.HasPrefix(data, constants.CALLBACK_PREFIX_REPLY):
		bh.handleReplyDecision(chatID, messageID, messageText,
			strings.TrimPrefix(data, constants.CALLBACK_PREFIX_REPLY))

	case strings.HasPrefix(data, constants.CALLBACK_PREFIX_SEARCH):
		bh.handleSearchCallback(chatID, messageID,
			strings.TrimPrefix(data, constants.CALLBACK_PREFIX_SEARCH))

	case strings.HasPrefix(data, constants.CALLBACK_PREFIX_DRIVER_PROF):
		driverID, err := strconv.ParseInt(strings.TrimPrefix(data, constants.CALLBACK_PREFIX_DRIVER_PROF), 10, 64)
		if err == nil && driverID > 0 {
			bh.showDriverProfile(chatID, messageID, driverID)
		}

	case strings.HasPrefix(data, constants.CALLBACK_PREFIX_ROUTE_CHAT):
		bh.handleRouteChatCallback(chatID, messageID,
			strings.TrimPrefix(data, constants.CALLBACK_PREFIX_ROUTE_CHAT))

	case strings.HasPrefix(data, constants.CALLBACK_PREFIX_PROFILE):
		bh.handleProfileCallback(chatID, messageID,
			strings.TrimPrefix(data, constants.CALLBACK_PREFIX_PROFILE))

	default:
		log.Printf("[CALLBACK_HANDLER] Неизвестные callback-данные: '%s'", data)
	}
}
