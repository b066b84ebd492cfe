package handlers

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"poputchik/internal/constants"
	"poputchik/internal/db"
	"poputchik/internal/formatters"
)

// showRouteCardForPassenger показывает пассажиру карточку маршрута с кнопкой
// отклика. Если заявка уже есть, вместо кнопки показывается ее статус.
func (bh *BotHandler) showRouteCardForPassenger(chatID int64, messageID int, routeID int64) {
	route, err := db.GetRouteByID(routeID)
	if err != nil {
		bh.sendErrorMessageHelper(chatID, messageID, "Маршрут не найден.")
		return
	}
	if !route.IsActive {
		bh.sendOrEditMessageHelper(chatID, messageID,
			formatters.FormatRouteCardWithStatus(route, "❌ Маршрут отменен водителем"),
			backToMainMenuKeyboard())
		return
	}

	text := formatters.FormatRouteCard(route)
	var rows [][]tgbotapi.InlineKeyboardButton

	if route.UserID == chatID {
		// Водитель смотрит собственную карточку
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👁️ Детали", fmt.Sprintf("%sdetails:%d", constants.CALLBACK_PREFIX_MY_ROUTES, routeID)),
		))
	} else {
		status, _ := db.GetPassengerRequestStatus(routeID, chatID)
		switch status {
		case "", constants.REQUEST_STATUS_CANCELLED:
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✋ Откликнуться", fmt.Sprintf("%s%d", constants.CALLBACK_PREFIX_ROUTE_CARD, routeID)),
			))
		default:
			text += "\n\nВаша заявка: " + formatters.StatusDisplayMap[status]
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👤 Профиль водителя", fmt.Sprintf("%s%d", constants.CALLBACK_PREFIX_DRIVER_PROF, route.UserID)),
			tgbotapi.NewInlineKeyboardButtonData("💬 Написать", fmt.Sprintf("%sopen:%d", constants.CALLBACK_PREFIX_ROUTE_CHAT, routeID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔙 Главное меню", constants.CALLBACK_MAIN_MENU)))

	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	bh.sendOrEditMessageHelper(chatID, messageID, text, &kb)
}

// handleRouteCardReply — пассажир нажал "Откликнуться": движок создает
// заявку, водитель получает уведомление с кнопками решения, пассажир —
// карточку заявки, ссылка на которую сохраняется для обновления "на месте".
func (bh *BotHandler) handleRouteCardReply(chatID int64, messageID int, routeID int64, passengerUsername string) {
	route, requestID, err := bh.Deps.Rides.Reply(routeID, chatID)
	if err != nil {
		bh.showLifecycleError(chatID, messageID, err)
		return
	}

	// Уведомление водителю с кнопками решения
	driverKb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Принять", fmt.Sprintf("%saccept:%d", constants.CALLBACK_PREFIX_REPLY, requestID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отклонить", fmt.Sprintf("%sreject:%d", constants.CALLBACK_PREFIX_REPLY, requestID)),
		),
	)
	driverText := formatters.FormatNewRequestForDriver(route, passengerUsername)
	if _, err := bh.sendMessageWithKeyboard(route.UserID, driverText, &driverKb); err != nil {
		log.Printf("handleRouteCardReply: водитель %d не уведомлен о заявке %d: %v", route.UserID, requestID, err)
	}

	// Карточка заявки пассажиру
	cardText := "✅ Заявка отправлена!\n\n" + formatters.FormatRouteCard(route) +
		"\n\nВаша заявка: " + formatters.StatusDisplayMap[constants.REQUEST_STATUS_PENDING]
	cardKb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚫 Отменить заявку", fmt.Sprintf("%scancel:%d", constants.CALLBACK_PREFIX_MY_TRIPS, requestID)),
		),
	)
	card, err := bh.sendOrEditMessageHelper(chatID, messageID, cardText, &cardKb)
	if err == nil && card.MessageID != 0 {
		if err := bh.Deps.Rides.RecordCard(requestID, chatID, card.MessageID); err != nil {
			log.Printf("handleRouteCardReply: не сохранена карточка заявки %d: %v", requestID, err)
		}
	}
}

// handleReplyDecision — решение водителя по заявке. К сообщению с заявкой
// дописывается строка решения, клавиатура снимается (best-effort).
func (bh *BotHandler) handleReplyDecision(chatID int64, messageID int, messageText, action string) {
	parts := strings.SplitN(action, ":", 2)
	if len(parts) != 2 {
		return
	}
	requestID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || requestID == 0 {
		return
	}

	switch parts[0] {
	case "accept":
		seatsLeft, err := bh.Deps.Rides.Accept(requestID, chatID)
		if err != nil {
			bh.showLifecycleError(chatID, 0, err)
			return
		}
		bh.sendOrEditMessageHelper(chatID, messageID,
			formatters.AppendAcceptedDecision(messageText, seatsLeft), nil)

	case "reject":
		if err := bh.Deps.Rides.Reject(requestID, chatID); err != nil {
			bh.showLifecycleError(chatID, 0, err)
			return
		}
		bh.sendOrEditMessageHelper(chatID, messageID,
			formatters.AppendRejectedDecision(messageText), nil)
	}
}
