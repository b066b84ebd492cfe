package handlers

import (
	"log"
	"strings"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"poputchik/internal/constants"
)

// HandleMessage обрабатывает входящие сообщения (команды и текстовый ввод
// мастеров, диспетчеризация по состоянию сессии).
func (bh *BotHandler) HandleMessage(update tgbotapi.Update) {
	message := update.Message
	if message == nil {
		return
	}

	chatID := message.Chat.ID
	userMsgID := message.MessageID
	text := message.Text

	log.Printf("[MESSAGE_HANDLER] ChatID=%d, User=%s, Text='%.50s'", chatID, message.From.UserName, text)

	if message.IsCommand() {
		switch message.Command() {
		case "start":
			bh.handleStartCommand(chatID, message.From.UserName, message.CommandArguments())
		case "help":
			bh.sendOrEditMessageHelper(chatID, 0,
				"Я помогаю найти попутчиков.\n\n"+
					"Водители публикуют маршруты, пассажиры откликаются, водитель принимает или отклоняет заявку.\n\n"+
					"Начните с /start.", backToMainMenuKeyboard())
		default:
			bh.sendOrEditMessageHelper(chatID, 0, "Неизвестная команда. Попробуйте /start.", nil)
		}
		return
	}

	state := bh.Deps.SessionManager.GetState(chatID)

	// Фото принимается только в состоянии загрузки фото профиля
	if len(message.Photo) > 0 {
		if state == constants.STATE_PROFILE_PHOTO {
			bh.handleProfilePhoto(chatID, message.Photo, userMsgID)
		} else {
			bh.deleteMessageHelper(chatID, userMsgID)
		}
		return
	}

	if text == "" {
		return
	}

	switch {
	case strings.HasPrefix(state, "route_create_"):
		bh.handleRouteCreateInput(chatID, state, text, userMsgID)

	case state == constants.STATE_ROUTE_EDIT_VALUE:
		bh.handleRouteEditInput(chatID, text, userMsgID)

	case state == constants.STATE_SEARCH_FROM || state == constants.STATE_SEARCH_TO:
		bh.handleSearchInput(chatID, state, text, userMsgID)

	case strings.HasPrefix(state, "profile_"):
		bh.handleProfileInput(chatID, state, text, userMsgID)

	default:
		// Свободный текст вне мастеров возвращает в главное меню
		user, ok := bh.getUserFromDB(chatID)
		if !ok {
			bh.sendOrEditMessageHelper(chatID, 0, "Отправьте /start, чтобы начать.", nil)
			return
		}
		bh.deleteMessageHelper(chatID, userMsgID)
		bh.SendMainMenu(chatID, user, 0)
	}
}
