package handlers

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"poputchik/internal/constants"
	"poputchik/internal/db"
	"poputchik/internal/formatters"
)

// handleMyTripsCallback — диспетчер раздела "Мои поездки".
func (bh *BotHandler) handleMyTripsCallback(chatID int64, messageID int, action string) {
	switch {
	case action == "list":
		bh.showMyTrips(chatID, messageID)

	case strings.HasPrefix(action, "cancel:"):
		requestID, err := strconv.ParseInt(strings.TrimPrefix(action, "cancel:"), 10, 64)
		if err != nil || requestID == 0 {
			return
		}
		bh.cancelTrip(chatID, messageID, requestID)
	}
}

// showMyTrips показывает заявки пассажира с их статусами. Отменить можно
// ожидающую или принятую заявку.
func (bh *BotHandler) showMyTrips(chatID int64, messageID int) {
	trips, err := db.GetUserTrips(chatID)
	if err != nil {
		bh.sendErrorMessageHelper(chatID, messageID, "Не удалось загрузить поездки.")
		return
	}
	if len(trips) == 0 {
		bh.sendOrEditMessageHelper(chatID, messageID,
			"У вас пока нет поездок. Найдите маршрут в разделе \"Найти маршрут\".",
			backToMainMenuKeyboard())
		return
	}

	var b strings.Builder
	b.WriteString("🎒 Ваши поездки:\n\n")
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, t := range trips {
		b.WriteString(formatters.FormatTripCard(t))
		b.WriteString("\n\n")
		if t.RouteIsActive &&
			(t.Status == constants.REQUEST_STATUS_PENDING || t.Status == constants.REQUEST_STATUS_ACCEPTED) {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(
					fmt.Sprintf("🚫 Отменить: %s → %s", t.FromLocation, t.ToLocation),
					fmt.Sprintf("%scancel:%d", constants.CALLBACK_PREFIX_MY_TRIPS, t.RequestID)),
			))
		}
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔙 Главное меню", constants.CALLBACK_MAIN_MENU)))
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	bh.sendOrEditMessageHelper(chatID, messageID, b.String(), &kb)
}

// cancelTrip — отмена заявки пассажиром. Возврат места и уведомление
// водителя выполняет движок.
func (bh *BotHandler) cancelTrip(chatID int64, messageID int, requestID int64) {
	if err := bh.Deps.Rides.CancelRequest(requestID, chatID); err != nil {
		bh.showLifecycleError(chatID, messageID, err)
		return
	}
	bh.showMyTrips(chatID, messageID)
}
