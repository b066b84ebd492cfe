package handlers

import (
	"log"

	"poputchik/internal/config"
	"poputchik/internal/db"
	"poputchik/internal/models"
	"poputchik/internal/notify"
	"poputchik/internal/rides"
	"poputchik/internal/session"
	"poputchik/internal/telegram_api"
)

// HandlerDependencies содержит все зависимости, необходимые обработчикам.
type HandlerDependencies struct {
	Config         *config.Config
	BotClient      *telegram_api.BotClient
	SessionManager *session.SessionManager
	Rides          *rides.Service
	Dispatcher     *notify.Dispatcher
}

// BotHandler инкапсулирует логику обработки сообщений и коллбэков.
type BotHandler struct {
	Deps HandlerDependencies
}

// NewBotHandler создает новый экземпляр BotHandler.
func NewBotHandler(deps HandlerDependencies) *BotHandler {
	if deps.Config == nil || deps.BotClient == nil || deps.SessionManager == nil ||
		deps.Rides == nil || deps.Dispatcher == nil {
		panic("Не все зависимости для BotHandler были предоставлены.")
	}
	return &BotHandler{Deps: deps}
}

// getUserFromDB — вспомогательная функция для получения пользователя из БД.
func (bh *BotHandler) getUserFromDB(chatID int64) (models.User, bool) {
	user, err := db.GetUserByID(chatID)
	if err != nil {
		log.Printf("Ошибка получения пользователя %d из БД: %v", chatID, err)
		return models.User{}, false
	}
	return user, true
}
