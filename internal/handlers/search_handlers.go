package handlers

import (
	"fmt"
	"strings"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"poputchik/internal/constants"
	"poputchik/internal/db"
	"poputchik/internal/formatters"
	"poputchik/internal/utils"
)

// handleSearchCallback — диспетчер мастера поиска маршрутов.
func (bh *BotHandler) handleSearchCallback(chatID int64, messageID int, action string) {
	switch {
	case action == "start":
		bh.startSearch(chatID, messageID)

	case action == "skip_from":
		if bh.Deps.SessionManager.GetState(chatID) != constants.STATE_SEARCH_FROM {
			return
		}
		data := bh.Deps.SessionManager.GetTempRoute(chatID)
		data.SearchFrom = ""
		data.CurrentMessageID = messageID
		bh.Deps.SessionManager.UpdateTempRoute(chatID, data)
		bh.promptSearchTo(chatID, messageID)

	case action == "skip_to":
		if bh.Deps.SessionManager.GetState(chatID) != constants.STATE_SEARCH_TO {
			return
		}
		data := bh.Deps.SessionManager.GetTempRoute(chatID)
		data.SearchTo = ""
		bh.Deps.SessionManager.UpdateTempRoute(chatID, data)
		bh.showSearchResults(chatID, messageID)

	case strings.HasPrefix(action, "open:"):
		bh.showRouteCardForPassenger(chatID, messageID, parseRouteID(action))
	}
}

// startSearch запускает мастер поиска: оба фильтра необязательны.
func (bh *BotHandler) startSearch(chatID int64, messageID int) {
	bh.Deps.SessionManager.ClearTempRoute(chatID)
	bh.Deps.SessionManager.SetState(chatID, constants.STATE_SEARCH_FROM)

	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➡️ Любое", constants.CALLBACK_PREFIX_SEARCH+"skip_from"),
		),
	)
	sent, err := bh.sendOrEditMessageHelper(chatID, messageID,
		"🔍 Поиск маршрута\n\n📍 Откуда? (или покажу все)", &kb)
	if err != nil {
		return
	}
	data := bh.Deps.SessionManager.GetTempRoute(chatID)
	data.CurrentMessageID = sent.MessageID
	bh.Deps.SessionManager.UpdateTempRoute(chatID, data)
}

func (bh *BotHandler) promptSearchTo(chatID int64, messageID int) {
	bh.Deps.SessionManager.SetState(chatID, constants.STATE_SEARCH_TO)
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➡️ Любое", constants.CALLBACK_PREFIX_SEARCH+"skip_to"),
		),
	)
	bh.sendOrEditMessageHelper(chatID, messageID, "📍 Куда? (или покажу все)", &kb)
}

// handleSearchInput — текстовый ввод фильтров поиска.
func (bh *BotHandler) handleSearchInput(chatID int64, state, text string, userMsgID int) {
	bh.deleteMessageHelper(chatID, userMsgID)
	data := bh.Deps.SessionManager.GetTempRoute(chatID)

	loc, err := utils.ValidateLocation(text)
	if err != nil {
		data.AttemptCount++
		bh.Deps.SessionManager.UpdateTempRoute(chatID, data)
		bh.sendOrEditMessageHelper(chatID, data.CurrentMessageID,
			fmt.Sprintf("⚠️ %s (попытка %d)\n\nПопробуйте еще раз:", err.Error(), data.AttemptCount), nil)
		return
	}

	switch state {
	case constants.STATE_SEARCH_FROM:
		data.SearchFrom = loc
		data.AttemptCount = 0
		bh.Deps.SessionManager.UpdateTempRoute(chatID, data)
		bh.promptSearchTo(chatID, data.CurrentMessageID)

	case constants.STATE_SEARCH_TO:
		data.SearchTo = loc
		data.AttemptCount = 0
		bh.Deps.SessionManager.UpdateTempRoute(chatID, data)
		bh.showSearchResults(chatID, data.CurrentMessageID)
	}
}

// showSearchResults ищет активные маршруты по фильтрам-подстрокам.
func (bh *BotHandler) showSearchResults(chatID int64, messageID int) {
	data := bh.Deps.SessionManager.GetTempRoute(chatID)
	bh.Deps.SessionManager.ClearState(chatID)

	routes, err := db.SearchRoutes(data.SearchFrom, data.SearchTo)
	if err != nil {
		bh.sendErrorMessageHelper(chatID, messageID, "Поиск не удался. Попробуйте еще раз.")
		return
	}

	// Собственные маршруты в выдаче не показываем
	var visible []int
	for i, r := range routes {
		if r.UserID != chatID {
			visible = append(visible, i)
		}
	}
	if len(visible) == 0 {
		kb := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🔍 Искать снова", constants.CALLBACK_PREFIX_SEARCH+"start"),
				tgbotapi.NewInlineKeyboardButtonData("🔙 Главное меню", constants.CALLBACK_MAIN_MENU),
			),
		)
		bh.sendOrEditMessageHelper(chatID, messageID, "😔 Ничего не нашлось. Попробуйте другие направления.", &kb)
		return
	}

	var b strings.Builder
	b.WriteString("🔍 Найденные маршруты:\n\n")
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, i := range visible {
		r := routes[i]
		b.WriteString(formatters.FormatRouteLine(r))
		b.WriteString("\n")
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("👁️ %s → %s, %s", r.FromLocation, r.ToLocation, r.DateDMY),
				fmt.Sprintf("%sopen:%d", constants.CALLBACK_PREFIX_SEARCH, r.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔙 Главное меню", constants.CALLBACK_MAIN_MENU)))
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	bh.sendOrEditMessageHelper(chatID, messageID, b.String(), &kb)
}
