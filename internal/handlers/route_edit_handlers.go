package handlers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"poputchik/internal/constants"
	"poputchik/internal/db"
	"poputchik/internal/formatters"
	"poputchik/internal/models"
	"poputchik/internal/rides"
	"poputchik/internal/session"
	"poputchik/internal/utils"
)

// startRouteEdit открывает сеанс редактирования: снимок маршрута и пустой
// набор отложенных правок. До нажатия "Готово" ни БД, ни пассажиры
// изменений не видят.
func (bh *BotHandler) startRouteEdit(chatID int64, messageID int, routeID int64) {
	route, err := db.GetRouteByID(routeID)
	if err != nil || route.UserID != chatID {
		bh.sendErrorMessageHelper(chatID, messageID, "Маршрут не найден.")
		return
	}
	if !route.IsActive {
		bh.sendErrorMessageHelper(chatID, messageID, "Отмененный маршрут нельзя изменить. Сначала восстановите его.")
		return
	}

	bh.Deps.SessionManager.StartEditSession(chatID, route)
	bh.showEditMenu(chatID, messageID)
}

// effectiveRoute собирает маршрут из отложенных либо исходных значений —
// то, что водитель видит в меню редактирования.
func effectiveRoute(es *session.EditSession) models.Route {
	return models.Route{
		ID:           es.RouteID,
		UserID:       es.DriverID,
		FromLocation: es.Effective(constants.FIELD_FROM_LOCATION),
		ToLocation:   es.Effective(constants.FIELD_TO_LOCATION),
		DateDMY:      es.EffectiveDate(),
		TimeHM:       es.EffectiveTime(),
		Price:        es.EffectivePrice(),
		Seats:        es.EffectiveSeats(),
		Comment:      es.Effective(constants.FIELD_COMMENT),
		IsActive:     true,
	}
}

// showEditMenu показывает меню редактирования с учетом отложенных правок.
func (bh *BotHandler) showEditMenu(chatID int64, messageID int) {
	es, ok := bh.Deps.SessionManager.GetEditSession(chatID)
	if !ok {
		bh.sendErrorMessageHelper(chatID, messageID, "Сеанс редактирования не найден. Откройте маршрут заново.")
		return
	}

	text := "✏️ Изменение маршрута\n\n" + formatters.FormatRouteCard(effectiveRoute(es))
	if es.HasChanges() {
		text += "\n\n⏳ Изменения не сохранены. Нажмите \"Готово\", чтобы применить."
	}
	text += "\n\nЧто изменить?"

	prefix := constants.CALLBACK_PREFIX_MY_ROUTES
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📍 Откуда", prefix+"edit_field:"+constants.FIELD_FROM_LOCATION),
			tgbotapi.NewInlineKeyboardButtonData("📍 Куда", prefix+"edit_field:"+constants.FIELD_TO_LOCATION),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📅 Дата", prefix+"edit_field:"+constants.FIELD_DATE),
			tgbotapi.NewInlineKeyboardButtonData("🕐 Время", prefix+"edit_field:"+constants.FIELD_TIME),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💰 Цена", prefix+"edit_field:"+constants.FIELD_PRICE),
			tgbotapi.NewInlineKeyboardButtonData("👥 Мест", prefix+"edit_field:"+constants.FIELD_SEATS),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💬 Комментарий", prefix+"edit_comment"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Готово", prefix+"edit_done"),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отменить", prefix+"edit_cancel"),
		),
	)
	bh.sendOrEditMessageHelper(chatID, messageID, text, &kb)
}

// handleRouteEditCallback — callback-действия режима редактирования
// (хвосты "edit_*" раздела "Мои маршруты").
func (bh *BotHandler) handleRouteEditCallback(chatID int64, messageID int, action string) {
	es, ok := bh.Deps.SessionManager.GetEditSession(chatID)
	if !ok {
		bh.sendErrorMessageHelper(chatID, messageID, "Сеанс редактирования не найден. Откройте маршрут заново.")
		return
	}

	switch {
	case strings.HasPrefix(action, "edit_field:"):
		bh.promptEditField(chatID, messageID, es, strings.TrimPrefix(action, "edit_field:"))

	case action == "edit_comment":
		bh.showCommentMenu(chatID, messageID, es)

	case strings.HasPrefix(action, "edit_comment_mode:"):
		bh.handleCommentMode(chatID, messageID, es, strings.TrimPrefix(action, "edit_comment_mode:"))

	case action == "edit_back":
		bh.Deps.SessionManager.SetState(chatID, constants.STATE_IDLE)
		bh.showEditMenu(chatID, messageID)

	case action == "edit_done":
		bh.commitRouteEdit(chatID, messageID, es)

	case action == "edit_cancel":
		// Отложенные правки выбрасываются, маршрут остается прежним
		routeID := es.RouteID
		bh.Deps.SessionManager.ClearEditSession(chatID)
		bh.Deps.SessionManager.SetState(chatID, constants.STATE_IDLE)
		bh.showMyRouteDetails(chatID, messageID, routeID)
	}
}

// promptEditField запрашивает новое значение поля. Дата выбирается в
// календаре, остальные поля — текстом.
func (bh *BotHandler) promptEditField(chatID int64, messageID int, es *session.EditSession, field string) {
	if field == constants.FIELD_DATE {
		now := time.Now()
		data := bh.Deps.SessionManager.GetTempRoute(chatID)
		data.CalendarYear, data.CalendarMonth = now.Year(), int(now.Month())
		data.CurrentMessageID = messageID
		bh.Deps.SessionManager.UpdateTempRoute(chatID, data)

		kb := buildCalendarKeyboard(constants.CALLBACK_PREFIX_EDIT_CALENDAR, now.Year(), now.Month())
		bh.sendOrEditMessageHelper(chatID, messageID,
			fmt.Sprintf("📅 Сейчас: %s\n\nВыберите новую дату:", es.EffectiveDate()), &kb)
		return
	}

	prompts := map[string]string{
		constants.FIELD_FROM_LOCATION: "📍 Сейчас: %s\n\nВведите новое место отправления:",
		constants.FIELD_TO_LOCATION:   "📍 Сейчас: %s\n\nВведите новое место назначения:",
		constants.FIELD_TIME:          "🕐 Сейчас: %s\n\nВведите новое время (например 09:30 или 1430):",
		constants.FIELD_PRICE:         "💰 Сейчас: %s₽\n\nВведите новую цену:",
		constants.FIELD_SEATS:         "👥 Сейчас: %s\n\nВведите новое число мест:",
	}
	prompt, known := prompts[field]
	if !known {
		return
	}

	data := bh.Deps.SessionManager.GetTempRoute(chatID)
	data.EditingField = field
	data.CommentMode = ""
	data.AttemptCount = 0
	data.CurrentMessageID = messageID
	bh.Deps.SessionManager.UpdateTempRoute(chatID, data)
	bh.Deps.SessionManager.SetState(chatID, constants.STATE_ROUTE_EDIT_VALUE)

	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Назад", constants.CALLBACK_PREFIX_MY_ROUTES+"edit_back"),
		),
	)
	bh.sendOrEditMessageHelper(chatID, messageID, fmt.Sprintf(prompt, es.Effective(field)), &kb)
}

// showCommentMenu — выбор режима изменения комментария.
func (bh *BotHandler) showCommentMenu(chatID int64, messageID int, es *session.EditSession) {
	current := es.Effective(constants.FIELD_COMMENT)
	text := "💬 Комментарий"
	if current != "" {
		text += "\n\nСейчас: " + current
	} else {
		text += "\n\nСейчас комментария нет."
	}

	prefix := constants.CALLBACK_PREFIX_MY_ROUTES + "edit_comment_mode:"
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✍️ Заменить", prefix+constants.COMMENT_MODE_REPLACE),
		),
	}
	if current != "" {
		rows = append(rows,
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("➕ Дополнить", prefix+constants.COMMENT_MODE_APPEND),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🗑️ Удалить", prefix+"delete"),
			),
		)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔙 Назад", constants.CALLBACK_PREFIX_MY_ROUTES+"edit_back"),
	))
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	bh.sendOrEditMessageHelper(chatID, messageID, text, &kb)
}

// handleCommentMode применяет выбранный режим: удаление откладывается сразу,
// замена и дополнение запрашивают текст.
func (bh *BotHandler) handleCommentMode(chatID int64, messageID int, es *session.EditSession, mode string) {
	if mode == "delete" {
		es.Stage(constants.FIELD_COMMENT, "")
		bh.showEditMenu(chatID, messageID)
		return
	}
	if mode != constants.COMMENT_MODE_REPLACE && mode != constants.COMMENT_MODE_APPEND {
		return
	}

	data := bh.Deps.SessionManager.GetTempRoute(chatID)
	data.EditingField = constants.FIELD_COMMENT
	data.CommentMode = mode
	data.AttemptCount = 0
	data.CurrentMessageID = messageID
	bh.Deps.SessionManager.UpdateTempRoute(chatID, data)
	bh.Deps.SessionManager.SetState(chatID, constants.STATE_ROUTE_EDIT_VALUE)

	prompt := "✍️ Введите новый комментарий:"
	if mode == constants.COMMENT_MODE_APPEND {
		prompt = "➕ Введите текст, который добавить к комментарию:"
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Назад", constants.CALLBACK_PREFIX_MY_ROUTES+"edit_back"),
		),
	)
	bh.sendOrEditMessageHelper(chatID, messageID, prompt, &kb)
}

// handleRouteEditInput — текстовый ввод нового значения поля. Валидация
// выполняется на этапе откладывания; неудача увеличивает счетчик попыток
// и не продвигает состояние.
func (bh *BotHandler) handleRouteEditInput(chatID int64, text string, userMsgID int) {
	bh.deleteMessageHelper(chatID, userMsgID)

	es, ok := bh.Deps.SessionManager.GetEditSession(chatID)
	if !ok {
		bh.Deps.SessionManager.SetState(chatID, constants.STATE_IDLE)
		bh.sendErrorMessageHelper(chatID, 0, "Сеанс редактирования не найден. Откройте маршрут заново.")
		return
	}
	data := bh.Deps.SessionManager.GetTempRoute(chatID)

	reprompt := func(errText string) {
		data.AttemptCount++
		bh.Deps.SessionManager.UpdateTempRoute(chatID, data)
		kb := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🔙 Назад", constants.CALLBACK_PREFIX_MY_ROUTES+"edit_back"),
			),
		)
		bh.sendOrEditMessageHelper(chatID, data.CurrentMessageID,
			fmt.Sprintf("⚠️ %s (попытка %d)\n\nПопробуйте еще раз:", errText, data.AttemptCount), &kb)
	}

	var staged string
	switch data.EditingField {
	case constants.FIELD_FROM_LOCATION, constants.FIELD_TO_LOCATION:
		loc, err := utils.ValidateLocation(text)
		if err != nil {
			reprompt(err.Error())
			return
		}
		staged = loc

	case constants.FIELD_TIME:
		timeHM, err := utils.ParseTimeShorthand(text)
		if err != nil {
			reprompt(err.Error())
			return
		}
		staged = timeHM

	case constants.FIELD_PRICE:
		price, err := utils.ValidatePrice(text)
		if err != nil {
			reprompt(err.Error())
			return
		}
		staged = fmt.Sprintf("%d", price)

	case constants.FIELD_SEATS:
		seats, err := utils.ValidateSeats(text)
		if err != nil {
			reprompt(err.Error())
			return
		}
		staged = fmt.Sprintf("%d", seats)

	case constants.FIELD_COMMENT:
		comment := strings.TrimSpace(text)
		if data.CommentMode == constants.COMMENT_MODE_APPEND {
			if current := es.Effective(constants.FIELD_COMMENT); current != "" {
				comment = current + ", " + comment
			}
		}
		staged = comment

	default:
		bh.Deps.SessionManager.SetState(chatID, constants.STATE_IDLE)
		bh.showEditMenu(chatID, data.CurrentMessageID)
		return
	}

	es.Stage(data.EditingField, staged)
	data.EditingField = ""
	data.CommentMode = ""
	data.AttemptCount = 0
	bh.Deps.SessionManager.UpdateTempRoute(chatID, data)
	bh.Deps.SessionManager.SetState(chatID, constants.STATE_IDLE)
	bh.showEditMenu(chatID, data.CurrentMessageID)
}

// handleEditCalendarCallback — календарь режима редактирования. Выбранная
// дата откладывается в сеанс, БД не трогается.
func (bh *BotHandler) handleEditCalendarCallback(chatID int64, messageID int, action string) {
	es, ok := bh.Deps.SessionManager.GetEditSession(chatID)
	if !ok {
		bh.sendErrorMessageHelper(chatID, messageID, "Сеанс редактирования не найден. Откройте маршрут заново.")
		return
	}

	switch {
	case action == "ignore":

	case strings.HasPrefix(action, "pick:"):
		dateDMY := strings.TrimPrefix(action, "pick:")
		if _, err := utils.ParseDateDMY(dateDMY); err != nil {
			return
		}
		es.Stage(constants.FIELD_DATE, dateDMY)
		bh.showEditMenu(chatID, messageID)

	case strings.HasPrefix(action, "prev:"), strings.HasPrefix(action, "next:"):
		year, month, ok := parseCalendarNav(action)
		if !ok {
			return
		}
		kb := buildCalendarKeyboard(constants.CALLBACK_PREFIX_EDIT_CALENDAR, year, month)
		bh.sendOrEditMessageHelper(chatID, messageID,
			fmt.Sprintf("📅 Сейчас: %s\n\nВыберите новую дату:", es.EffectiveDate()), &kb)

	case action == "back":
		bh.showEditMenu(chatID, messageID)
	}
}

// commitRouteEdit фиксирует сеанс через движок. Временная проверка по
// финальной паре дата+время выполняется внутри движка; ErrPastTime
// возвращает водителя в меню без потери правок.
func (bh *BotHandler) commitRouteEdit(chatID int64, messageID int, es *session.EditSession) {
	changes, sent, err := bh.Deps.Rides.CommitEdit(es, chatID)
	if err != nil {
		if errors.Is(err, rides.ErrPastTime) {
			kb := tgbotapi.NewInlineKeyboardMarkup(
				tgbotapi.NewInlineKeyboardRow(
					tgbotapi.NewInlineKeyboardButtonData("🔙 К редактированию", constants.CALLBACK_PREFIX_MY_ROUTES+"edit_back"),
				),
			)
			bh.sendOrEditMessageHelper(chatID, messageID,
				"⚠️ Получившиеся дата и время уже прошли. Исправьте дату или время.", &kb)
			return
		}
		bh.showLifecycleError(chatID, messageID, err)
		return
	}

	routeID := es.RouteID
	bh.Deps.SessionManager.ClearEditSession(chatID)
	bh.Deps.SessionManager.SetState(chatID, constants.STATE_IDLE)

	if len(changes) == 0 {
		bh.showMyRouteDetails(chatID, messageID, routeID)
		return
	}

	text := "✅ Изменения сохранены"
	if sent > 0 {
		text += fmt.Sprintf("\nПассажирам отправлены уведомления (%d чел.)", sent)
	}
	route, err := db.GetRouteByID(routeID)
	if err == nil {
		text += "\n\n" + formatters.FormatRouteCard(route)
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👁️ Детали", fmt.Sprintf("%sdetails:%d", constants.CALLBACK_PREFIX_MY_ROUTES, routeID)),
			tgbotapi.NewInlineKeyboardButtonData("🔙 Главное меню", constants.CALLBACK_MAIN_MENU),
		),
	)
	bh.sendOrEditMessageHelper(chatID, messageID, text, &kb)
}
