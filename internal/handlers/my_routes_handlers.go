package handlers

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"poputchik/internal/constants"
	"poputchik/internal/db"
	"poputchik/internal/formatters"
	"poputchik/internal/rides"
	"poputchik/internal/utils"
)

// handleMyRoutesCallback — диспетчер раздела "Мои маршруты".
func (bh *BotHandler) handleMyRoutesCallback(chatID int64, messageID int, action string) {
	switch {
	case action == "list":
		bh.showMyRoutes(chatID, messageID)

	case strings.HasPrefix(action, "details:"):
		bh.showMyRouteDetails(chatID, messageID, parseRouteID(action))

	case strings.HasPrefix(action, "cancel:"):
		bh.askCancelRoute(chatID, messageID, parseRouteID(action))

	case strings.HasPrefix(action, "cancel_confirm:"):
		bh.confirmCancelRoute(chatID, messageID, parseRouteID(action))

	case strings.HasPrefix(action, "cancel_no:"):
		bh.showMyRouteDetails(chatID, messageID, parseRouteID(action))

	case strings.HasPrefix(action, "restore:"):
		bh.restoreRoute(chatID, messageID, parseRouteID(action))

	case strings.HasPrefix(action, "share:"):
		bh.shareRoute(chatID, messageID, parseRouteID(action))

	case strings.HasPrefix(action, "edit:"):
		bh.startRouteEdit(chatID, messageID, parseRouteID(action))

	case strings.HasPrefix(action, "edit_"):
		bh.handleRouteEditCallback(chatID, messageID, action)
	}
}

// parseRouteID извлекает ID из хвоста callback-данных вида "action:<id>".
func parseRouteID(action string) int64 {
	parts := strings.Split(action, ":")
	id, _ := strconv.ParseInt(parts[len(parts)-1], 10, 64)
	return id
}

// showMyRoutes показывает активные маршруты водителя.
func (bh *BotHandler) showMyRoutes(chatID int64, messageID int) {
	routes, err := db.GetUserRoutes(chatID)
	if err != nil {
		bh.sendErrorMessageHelper(chatID, messageID, "Не удалось загрузить маршруты.")
		return
	}
	if len(routes) == 0 {
		bh.sendOrEditMessageHelper(chatID, messageID,
			"У вас пока нет активных маршрутов.", backToMainMenuKeyboard())
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	text := "📋 Ваши маршруты:\n\n"
	for _, r := range routes {
		text += formatters.FormatRouteLine(r) + "\n"
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("👁️ %s → %s, %s", r.FromLocation, r.ToLocation, r.DateDMY),
				fmt.Sprintf("%sdetails:%d", constants.CALLBACK_PREFIX_MY_ROUTES, r.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔙 Главное меню", constants.CALLBACK_MAIN_MENU)))
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	bh.sendOrEditMessageHelper(chatID, messageID, text, &kb)
}

// showMyRouteDetails показывает карточку маршрута водителю со счетчиками
// заявок и действиями.
func (bh *BotHandler) showMyRouteDetails(chatID int64, messageID int, routeID int64) {
	route, err := db.GetRouteByID(routeID)
	if err != nil || route.UserID != chatID {
		bh.sendErrorMessageHelper(chatID, messageID, "Маршрут не найден.")
		return
	}

	text := formatters.FormatRouteCard(route)
	requests, err := db.GetRouteRequests(routeID)
	if err == nil {
		pending, accepted := 0, 0
		for _, req := range requests {
			switch req.Status {
			case constants.REQUEST_STATUS_PENDING:
				pending++
			case constants.REQUEST_STATUS_ACCEPTED:
				accepted++
			}
		}
		text += fmt.Sprintf("\n\nЗаявки: принято %d, ожидает %d", accepted, pending)
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	if route.IsActive {
		rows = append(rows,
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✏️ Изменить", fmt.Sprintf("%sedit:%d", constants.CALLBACK_PREFIX_MY_ROUTES, routeID)),
				tgbotapi.NewInlineKeyboardButtonData("❌ Отменить", fmt.Sprintf("%scancel:%d", constants.CALLBACK_PREFIX_MY_ROUTES, routeID)),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🔗 Поделиться", fmt.Sprintf("%sshare:%d", constants.CALLBACK_PREFIX_MY_ROUTES, routeID)),
			),
		)
	} else {
		text += "\n\n❌ Отменена"
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Восстановить", fmt.Sprintf("%srestore:%d", constants.CALLBACK_PREFIX_MY_ROUTES, routeID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔙 К списку", constants.CALLBACK_PREFIX_MY_ROUTES+"list")))
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	bh.sendOrEditMessageHelper(chatID, messageID, text, &kb)
}

// askCancelRoute спрашивает подтверждение отмены, показывая счетчики откликов.
func (bh *BotHandler) askCancelRoute(chatID int64, messageID int, routeID int64) {
	route, err := db.GetRouteByID(routeID)
	if err != nil || route.UserID != chatID {
		bh.sendErrorMessageHelper(chatID, messageID, "Маршрут не найден.")
		return
	}

	total, accepted, pending := 0, 0, 0
	if requests, err := db.GetRouteRequests(routeID); err == nil {
		for _, req := range requests {
			switch req.Status {
			case constants.REQUEST_STATUS_PENDING:
				total++
				pending++
			case constants.REQUEST_STATUS_ACCEPTED:
				total++
				accepted++
			}
		}
	}

	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Да, отменить", fmt.Sprintf("%scancel_confirm:%d", constants.CALLBACK_PREFIX_MY_ROUTES, routeID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Нет, оставить", fmt.Sprintf("%scancel_no:%d", constants.CALLBACK_PREFIX_MY_ROUTES, routeID)),
		),
	)
	bh.sendOrEditMessageHelper(chatID, messageID,
		formatters.FormatCancelConfirmation(route, total, accepted, pending), &kb)
}

// confirmCancelRoute отменяет маршрут через движок и показывает итог.
func (bh *BotHandler) confirmCancelRoute(chatID int64, messageID int, routeID int64) {
	sent, err := bh.Deps.Rides.CancelRoute(routeID, chatID)
	if err != nil {
		bh.showLifecycleError(chatID, messageID, err)
		return
	}

	text := "✅ Маршрут отменен"
	if sent > 0 {
		text += fmt.Sprintf("\nПассажирам отправлены уведомления (%d чел.)", sent)
	}
	bh.sendOrEditMessageHelper(chatID, messageID, text, backToMainMenuKeyboard())
}

// restoreRoute восстанавливает отмененный маршрут.
func (bh *BotHandler) restoreRoute(chatID int64, messageID int, routeID int64) {
	sent, err := bh.Deps.Rides.RestoreRoute(routeID, chatID)
	if err != nil {
		bh.showLifecycleError(chatID, messageID, err)
		return
	}

	text := "✅ Маршрут восстановлен"
	if sent > 0 {
		text += fmt.Sprintf("\nПассажирам отправлены уведомления (%d чел.)", sent)
	}
	bh.sendOrEditMessageHelper(chatID, messageID, text, backToMainMenuKeyboard())
}

// shareRoute шлет водителю ссылку на маршрут и QR-код к ней.
func (bh *BotHandler) shareRoute(chatID int64, messageID int, routeID int64) {
	route, err := db.GetRouteByID(routeID)
	if err != nil || route.UserID != chatID {
		bh.sendErrorMessageHelper(chatID, messageID, "Маршрут не найден.")
		return
	}

	link, err := utils.GenerateRouteLink(bh.Deps.Config.BotUsername, routeID)
	if err != nil {
		bh.sendErrorMessageHelper(chatID, messageID, "Ссылка недоступна: "+err.Error())
		return
	}

	qrBytes, err := utils.GenerateRouteQRCode(bh.Deps.Config.BotUsername, routeID)
	if err != nil {
		// Без QR-кода ссылка все равно полезна
		bh.sendMessage(chatID, "🔗 Ссылка на маршрут:\n"+link)
		return
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{
		Name:  fmt.Sprintf("route_%d.png", routeID),
		Bytes: qrBytes,
	})
	photo.Caption = "🔗 Ссылка на маршрут:\n" + link
	if _, err := bh.Deps.BotClient.Send(photo); err != nil {
		log.Printf("shareRoute: ошибка отправки QR-кода маршрута %d: %v", routeID, err)
	}
}

// showLifecycleError переводит ошибку движка в сообщение пользователю.
// Неизвестная ошибка хранилища показывается обобщенно.
func (bh *BotHandler) showLifecycleError(chatID int64, messageID int, err error) {
	known := []error{
		rides.ErrRouteNotFound, rides.ErrRequestNotFound, rides.ErrRouteInactive,
		rides.ErrOwnRoute, rides.ErrNoSeats, rides.ErrDuplicate,
		rides.ErrAlreadyProcessed, rides.ErrNotYourRoute, rides.ErrNotYourRequest,
		rides.ErrPastTime,
	}
	for _, k := range known {
		if errors.Is(err, k) {
			bh.sendErrorMessageHelper(chatID, messageID, "⚠️ "+k.Error())
			return
		}
	}
	log.Printf("showLifecycleError: chatID %d: %v", chatID, err)
	bh.sendErrorMessageHelper(chatID, messageID, "Произошла ошибка. Попробуйте еще раз.")
}
