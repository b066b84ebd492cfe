package handlers

import (
	"fmt"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"poputchik/internal/constants"
	"poputchik/internal/db"
	"poputchik/internal/formatters"
	"poputchik/internal/models"
	"poputchik/internal/utils"
)

// startRouteCreation запускает линейный мастер создания маршрута.
// До финальной публикации в БД ничего не пишется.
func (bh *BotHandler) startRouteCreation(chatID int64, messageIDToEdit int) {
	bh.Deps.SessionManager.ClearTempRoute(chatID)
	bh.Deps.SessionManager.SetState(chatID, constants.STATE_ROUTE_CREATE_FROM)

	sent, err := bh.sendOrEditMessageHelper(chatID, messageIDToEdit,
		"🚗 Новый маршрут\n\n📍 Откуда поедете?", nil)
	if err != nil {
		return
	}
	data := bh.Deps.SessionManager.GetTempRoute(chatID)
	data.CurrentMessageID = sent.MessageID
	bh.Deps.SessionManager.UpdateTempRoute(chatID, data)
}

// handleRouteCreateInput обрабатывает текстовый ввод мастера создания.
// Невалидный ввод не продвигает состояние: пользователю показывается
// подсказка со счетчиком попыток.
func (bh *BotHandler) handleRouteCreateInput(chatID int64, state, text string, userMsgID int) {
	bh.deleteMessageHelper(chatID, userMsgID)
	data := bh.Deps.SessionManager.GetTempRoute(chatID)

	reprompt := func(prompt, errText string) {
		data.AttemptCount++
		bh.Deps.SessionManager.UpdateTempRoute(chatID, data)
		text := fmt.Sprintf("⚠️ %s (попытка %d)\n\n%s", errText, data.AttemptCount, prompt)
		bh.sendOrEditMessageHelper(chatID, data.CurrentMessageID, text, nil)
	}
	advance := func(nextState, prompt string, keyboard *tgbotapi.InlineKeyboardMarkup) {
		data.AttemptCount = 0
		bh.Deps.SessionManager.UpdateTempRoute(chatID, data)
		bh.Deps.SessionManager.SetState(chatID, nextState)
		bh.sendOrEditMessageHelper(chatID, data.CurrentMessageID, prompt, keyboard)
	}

	switch state {
	case constants.STATE_ROUTE_CREATE_FROM:
		loc, err := utils.ValidateLocation(text)
		if err != nil {
			reprompt("📍 Откуда поедете?", err.Error())
			return
		}
		data.FromLocation = loc
		advance(constants.STATE_ROUTE_CREATE_TO, "📍 Куда поедете?", nil)

	case constants.STATE_ROUTE_CREATE_TO:
		loc, err := utils.ValidateLocation(text)
		if err != nil {
			reprompt("📍 Куда поедете?", err.Error())
			return
		}
		data.ToLocation = loc
		now := time.Now()
		data.CalendarYear, data.CalendarMonth = now.Year(), int(now.Month())
		kb := buildCalendarKeyboard(constants.CALLBACK_PREFIX_NEW_CALENDAR, now.Year(), now.Month())
		advance(constants.STATE_ROUTE_CREATE_DATE, "📅 Выберите дату поездки:", &kb)

	case constants.STATE_ROUTE_CREATE_DATE:
		// Дата выбирается в календаре, текстовый ввод не принимается
		kb := buildCalendarKeyboard(constants.CALLBACK_PREFIX_NEW_CALENDAR,
			data.CalendarYear, time.Month(data.CalendarMonth))
		bh.sendOrEditMessageHelper(chatID, data.CurrentMessageID,
			"📅 Пожалуйста, выберите дату в календаре:", &kb)

	case constants.STATE_ROUTE_CREATE_TIME:
		timeHM, err := utils.ParseTimeShorthand(text)
		if err != nil {
			reprompt("🕐 Во сколько выезжаете? (например 09:30 или 1430)", err.Error())
			return
		}
		if utils.IsPastDateTime(data.DateDMY, timeHM, time.Now()) {
			reprompt("🕐 Во сколько выезжаете?", "это время уже прошло")
			return
		}
		data.TimeHM = timeHM
		advance(constants.STATE_ROUTE_CREATE_PRICE, "💰 Цена за место, ₽:", nil)

	case constants.STATE_ROUTE_CREATE_PRICE:
		price, err := utils.ValidatePrice(text)
		if err != nil {
			reprompt("💰 Цена за место, ₽:", err.Error())
			return
		}
		data.Price = price
		advance(constants.STATE_ROUTE_CREATE_SEATS, "👥 Сколько свободных мест?", nil)

	case constants.STATE_ROUTE_CREATE_SEATS:
		seats, err := utils.ValidateSeats(text)
		if err != nil {
			reprompt("👥 Сколько свободных мест?", err.Error())
			return
		}
		data.Seats = seats
		kb := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("➡️ Пропустить", constants.CALLBACK_PREFIX_ROUTE_CREATE+"skip_comment"),
			),
		)
		advance(constants.STATE_ROUTE_CREATE_COMMENT, "💬 Комментарий к поездке (или пропустите):", &kb)

	case constants.STATE_ROUTE_CREATE_COMMENT:
		data.Comment = strings.TrimSpace(text)
		bh.Deps.SessionManager.UpdateTempRoute(chatID, data)
		bh.publishRoute(chatID)
	}
}

// handleRouteCreateCallback обрабатывает callback-действия мастера создания.
func (bh *BotHandler) handleRouteCreateCallback(chatID int64, messageID int, action string) {
	switch action {
	case "start":
		bh.startRouteCreation(chatID, messageID)
	case "skip_comment":
		if bh.Deps.SessionManager.GetState(chatID) != constants.STATE_ROUTE_CREATE_COMMENT {
			return
		}
		data := bh.Deps.SessionManager.GetTempRoute(chatID)
		data.Comment = ""
		bh.Deps.SessionManager.UpdateTempRoute(chatID, data)
		bh.publishRoute(chatID)
	}
}

// handleNewRouteCalendarCallback обрабатывает календарь мастера создания.
func (bh *BotHandler) handleNewRouteCalendarCallback(chatID int64, messageID int, action string) {
	data := bh.Deps.SessionManager.GetTempRoute(chatID)

	switch {
	case action == "ignore":
		// Пустая клетка или заблокированный день

	case strings.HasPrefix(action, "pick:"):
		if bh.Deps.SessionManager.GetState(chatID) != constants.STATE_ROUTE_CREATE_DATE {
			return
		}
		dateDMY := strings.TrimPrefix(action, "pick:")
		if _, err := utils.ParseDateDMY(dateDMY); err != nil {
			return
		}
		data.DateDMY = dateDMY
		data.AttemptCount = 0
		bh.Deps.SessionManager.UpdateTempRoute(chatID, data)
		bh.Deps.SessionManager.SetState(chatID, constants.STATE_ROUTE_CREATE_TIME)
		bh.sendOrEditMessageHelper(chatID, messageID,
			fmt.Sprintf("📅 Дата: %s\n\n🕐 Во сколько выезжаете? (например 09:30 или 1430)", dateDMY), nil)

	case strings.HasPrefix(action, "prev:"), strings.HasPrefix(action, "next:"):
		year, month, ok := parseCalendarNav(action)
		if !ok {
			return
		}
		data.CalendarYear, data.CalendarMonth = year, int(month)
		bh.Deps.SessionManager.UpdateTempRoute(chatID, data)
		kb := buildCalendarKeyboard(constants.CALLBACK_PREFIX_NEW_CALENDAR, year, month)
		bh.sendOrEditMessageHelper(chatID, messageID, "📅 Выберите дату поездки:", &kb)
	}
}

// publishRoute записывает собранный маршрут в БД и показывает карточку.
func (bh *BotHandler) publishRoute(chatID int64) {
	data := bh.Deps.SessionManager.GetTempRoute(chatID)

	routeID, err := db.CreateRoute(chatID, data.FromLocation, data.ToLocation,
		data.DateDMY, data.TimeHM, data.Price, data.Seats, data.Comment)
	if err != nil {
		log.Printf("publishRoute: ошибка создания маршрута водителя %d: %v", chatID, err)
		bh.sendErrorMessageHelper(chatID, data.CurrentMessageID, "Не удалось опубликовать маршрут. Попробуйте еще раз.")
		return
	}

	route := models.Route{
		ID: routeID, UserID: chatID,
		FromLocation: data.FromLocation, ToLocation: data.ToLocation,
		DateDMY: data.DateDMY, TimeHM: data.TimeHM,
		Price: data.Price, Seats: data.Seats, Comment: data.Comment,
		IsActive: true,
	}
	text := "✅ Маршрут опубликован!\n\n" + formatters.FormatRouteCard(route)

	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔗 Поделиться", fmt.Sprintf("%sshare:%d", constants.CALLBACK_PREFIX_MY_ROUTES, routeID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Главное меню", constants.CALLBACK_MAIN_MENU),
		),
	)
	bh.sendOrEditMessageHelper(chatID, data.CurrentMessageID, text, &kb)

	bh.Deps.SessionManager.ClearState(chatID)
	bh.Deps.SessionManager.ClearTempRoute(chatID)
}
