package handlers

import (
	"log"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"poputchik/internal/constants"
	"poputchik/internal/telegram_api"
)

// sendOrEditMessageHelper — обертка над telegram_api.SendOrEditMessage:
// редактирует существующее сообщение либо шлет новое.
func (bh *BotHandler) sendOrEditMessageHelper(
	chatID int64,
	messageIDToEdit int,
	text string,
	keyboard *tgbotapi.InlineKeyboardMarkup,
) (tgbotapi.Message, error) {
	if messageIDToEdit != 0 && bh.Deps.SessionManager.IsMessageDeleted(chatID, messageIDToEdit) {
		// Сообщение уже удалено, редактировать нечего
		messageIDToEdit = 0
	}
	return telegram_api.SendOrEditMessage(bh.Deps.BotClient, chatID, messageIDToEdit, text, keyboard, "")
}

// sendErrorMessageHelper показывает пользователю некритичную ошибку с кнопкой
// возврата в главное меню.
func (bh *BotHandler) sendErrorMessageHelper(chatID int64, messageIDToEdit int, errorText string) (tgbotapi.Message, error) {
	return telegram_api.SendErrorMessage(bh.Deps.BotClient, chatID, messageIDToEdit, errorText)
}

// deleteMessageHelper удаляет сообщение и помечает его удаленным в кэше сессии.
func (bh *BotHandler) deleteMessageHelper(chatID int64, messageID int) bool {
	if messageID == 0 {
		return false
	}
	if bh.Deps.SessionManager.IsMessageDeleted(chatID, messageID) {
		return true
	}
	ok := telegram_api.DeleteMessage(bh.Deps.BotClient, chatID, messageID)
	if ok {
		bh.Deps.SessionManager.MarkMessageAsDeleted(chatID, messageID)
	}
	return ok
}

// sendMessage шлет простое текстовое сообщение.
func (bh *BotHandler) sendMessage(chatID int64, text string) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	sent, err := bh.Deps.BotClient.Send(msg)
	if err != nil {
		log.Printf("sendMessage: ошибка отправки сообщения chatID %d: %v", chatID, err)
	}
	return sent, err
}

// sendMessageWithKeyboard шлет сообщение с инлайн-клавиатурой.
func (bh *BotHandler) sendMessageWithKeyboard(chatID int64, text string, keyboard *tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	if keyboard != nil {
		msg.ReplyMarkup = keyboard
	}
	sent, err := bh.Deps.BotClient.Send(msg)
	if err != nil {
		log.Printf("sendMessageWithKeyboard: ошибка отправки сообщения chatID %d: %v", chatID, err)
	}
	return sent, err
}

// backToMainMenuKeyboard — одна кнопка возврата в главное меню.
func backToMainMenuKeyboard() *tgbotapi.InlineKeyboardMarkup {
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Главное меню", constants.CALLBACK_MAIN_MENU),
		),
	)
	return &kb
}
