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
	"poputchik/internal/utils"
)

// handleProfileCallback — диспетчер раздела "Профиль".
func (bh *BotHandler) handleProfileCallback(chatID int64, messageID int, action string) {
	switch action {
	case "view":
		bh.showOwnProfile(chatID, messageID)

	case "edit_name":
		bh.promptProfileField(chatID, messageID, constants.STATE_PROFILE_NAME,
			"✍️ Введите имя, которое будут видеть попутчики:")

	case "edit_bio":
		bh.promptProfileField(chatID, messageID, constants.STATE_PROFILE_BIO,
			"✍️ Расскажите о себе (машина, привычки в дороге):")

	case "edit_photo":
		bh.promptProfileField(chatID, messageID, constants.STATE_PROFILE_PHOTO,
			"📷 Пришлите фото профиля:")

	case "delete":
		kb := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("⚠️ Да, удалить", constants.CALLBACK_PREFIX_PROFILE+"delete_confirm"),
				tgbotapi.NewInlineKeyboardButtonData("❌ Нет", constants.CALLBACK_PREFIX_PROFILE+"view"),
			),
		)
		bh.sendOrEditMessageHelper(chatID, messageID,
			"⚠️ Удалить аккаунт?\n\nВаши маршруты будут удалены вместе с заявками на них. Действие необратимо.", &kb)

	case "delete_confirm":
		if err := db.DeleteUser(chatID); err != nil {
			bh.sendErrorMessageHelper(chatID, messageID, "Не удалось удалить аккаунт. Попробуйте позже.")
			return
		}
		bh.Deps.SessionManager.ClearState(chatID)
		bh.Deps.SessionManager.ClearTempRoute(chatID)
		bh.Deps.SessionManager.ClearEditSession(chatID)
		bh.sendOrEditMessageHelper(chatID, messageID,
			"Аккаунт удален. Для возвращения отправьте /start.", nil)
	}
}

// showOwnProfile показывает собственный профиль со счетчиками.
func (bh *BotHandler) showOwnProfile(chatID int64, messageID int) {
	user, ok := bh.getUserFromDB(chatID)
	if !ok {
		bh.sendErrorMessageHelper(chatID, messageID, "Произошла ошибка. Попробуйте /start.")
		return
	}
	profile, err := db.GetUserProfile(chatID)
	if err != nil {
		bh.sendErrorMessageHelper(chatID, messageID, "Не удалось загрузить профиль.")
		return
	}

	name := user.DisplayName.String
	if name == "" {
		name = "Не указано"
	}
	bio := user.Bio.String
	if bio == "" {
		bio = "Не указано"
	}
	text := fmt.Sprintf("👤 Ваш профиль\n\nИмя: %s\nО себе: %s\n\nАктивных маршрутов: %d\nПоездок как пассажир: %d",
		name, bio, profile.RoutesCount, profile.TripsCount)

	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✍️ Имя", constants.CALLBACK_PREFIX_PROFILE+"edit_name"),
			tgbotapi.NewInlineKeyboardButtonData("📝 О себе", constants.CALLBACK_PREFIX_PROFILE+"edit_bio"),
			tgbotapi.NewInlineKeyboardButtonData("📷 Фото", constants.CALLBACK_PREFIX_PROFILE+"edit_photo"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑️ Удалить аккаунт", constants.CALLBACK_PREFIX_PROFILE+"delete"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Главное меню", constants.CALLBACK_MAIN_MENU),
		),
	)
	bh.sendOrEditMessageHelper(chatID, messageID, text, &kb)
}

func (bh *BotHandler) promptProfileField(chatID int64, messageID int, state, prompt string) {
	bh.Deps.SessionManager.SetState(chatID, state)
	data := bh.Deps.SessionManager.GetTempRoute(chatID)
	data.CurrentMessageID = messageID
	bh.Deps.SessionManager.UpdateTempRoute(chatID, data)

	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Назад", constants.CALLBACK_PREFIX_PROFILE+"view"),
		),
	)
	bh.sendOrEditMessageHelper(chatID, messageID, prompt, &kb)
}

// handleProfileInput — текстовый ввод полей профиля.
func (bh *BotHandler) handleProfileInput(chatID int64, state, text string, userMsgID int) {
	bh.deleteMessageHelper(chatID, userMsgID)
	data := bh.Deps.SessionManager.GetTempRoute(chatID)
	text = strings.TrimSpace(text)

	var err error
	switch state {
	case constants.STATE_PROFILE_NAME:
		if len([]rune(text)) < 2 {
			bh.sendOrEditMessageHelper(chatID, data.CurrentMessageID,
				"⚠️ Имя слишком короткое. Попробуйте еще раз:", nil)
			return
		}
		err = db.UpdateUserDisplayName(chatID, text)

	case constants.STATE_PROFILE_BIO:
		err = db.UpdateUserBio(chatID, text)

	case constants.STATE_PROFILE_PHOTO:
		bh.sendOrEditMessageHelper(chatID, data.CurrentMessageID,
			"📷 Пришлите именно фотографию, не текст:", nil)
		return
	}
	if err != nil {
		bh.sendErrorMessageHelper(chatID, data.CurrentMessageID, "Не удалось сохранить. Попробуйте еще раз.")
		return
	}

	bh.Deps.SessionManager.ClearState(chatID)
	bh.showOwnProfile(chatID, data.CurrentMessageID)
}

// handleProfilePhoto сохраняет file_id самого крупного варианта фото.
func (bh *BotHandler) handleProfilePhoto(chatID int64, photos []tgbotapi.PhotoSize, userMsgID int) {
	bh.deleteMessageHelper(chatID, userMsgID)
	data := bh.Deps.SessionManager.GetTempRoute(chatID)
	if len(photos) == 0 {
		return
	}

	fileID := photos[len(photos)-1].FileID
	if err := db.UpdateUserPhoto(chatID, fileID); err != nil {
		bh.sendErrorMessageHelper(chatID, data.CurrentMessageID, "Не удалось сохранить фото.")
		return
	}
	bh.Deps.SessionManager.ClearState(chatID)
	bh.showOwnProfile(chatID, data.CurrentMessageID)
}

// showDriverProfile показывает пассажиру публичный профиль водителя.
func (bh *BotHandler) showDriverProfile(chatID int64, messageID int, driverID int64) {
	driver, err := db.GetUserByID(driverID)
	if err != nil {
		bh.sendErrorMessageHelper(chatID, messageID, "Профиль водителя недоступен.")
		return
	}
	profile, err := db.GetUserProfile(driverID)
	if err != nil {
		bh.sendErrorMessageHelper(chatID, messageID, "Профиль водителя недоступен.")
		return
	}

	text := formatters.FormatDriverProfile(driver, profile)

	if driver.PhotoFileID.String != "" {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(driver.PhotoFileID.String))
		photo.Caption = text
		if _, err := bh.Deps.BotClient.Send(photo); err == nil {
			return
		}
		log.Printf("showDriverProfile: фото профиля водителя %d не отправлено", driverID)
	}
	bh.sendOrEditMessageHelper(chatID, messageID, text, backToMainMenuKeyboard())
}

// handleRouteChatCallback — кнопка "Написать водителю": прямая ссылка на
// личный чат либо инструкция, если публичного username нет.
func (bh *BotHandler) handleRouteChatCallback(chatID int64, messageID int, action string) {
	if !strings.HasPrefix(action, "open:") {
		return
	}
	routeID, err := strconv.ParseInt(strings.TrimPrefix(action, "open:"), 10, 64)
	if err != nil || routeID == 0 {
		return
	}
	route, err := db.GetRouteByID(routeID)
	if err != nil {
		bh.sendErrorMessageHelper(chatID, messageID, "Маршрут не найден.")
		return
	}
	driver, err := db.GetUserByID(route.UserID)
	if err != nil {
		bh.sendErrorMessageHelper(chatID, messageID, "Профиль водителя недоступен.")
		return
	}

	username := driver.TgUsername.String
	link, err := utils.GenerateDriverChatLink(username)
	if err != nil {
		bh.sendOrEditMessageHelper(chatID, messageID,
			"У водителя нет публичного username. Откликнитесь на маршрут — после принятия заявки водитель свяжется с вами.",
			backToMainMenuKeyboard())
		return
	}

	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("💬 Открыть чат", link),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Главное меню", constants.CALLBACK_MAIN_MENU),
		),
	)
	bh.sendOrEditMessageHelper(chatID, messageID,
		fmt.Sprintf("💬 Как написать водителю:\n\n1️⃣ Нажмите кнопку ниже\n2️⃣ Или найдите @%s в поиске Telegram", username), &kb)
}
