// Файл: internal/session/temp_route.go
package session

import (
	"poputchik/internal/models"
)

// TempRouteData — временное состояние многошагового процесса (мастер создания
// маршрута, поиск, редактирование профиля) в сессии пользователя.
// Встраивает models.Route для полей создаваемого маршрута и добавляет
// сессионные поля.
type TempRouteData struct {
	models.Route

	// ID сообщения, которое мастер редактирует "на месте"
	CurrentMessageID int

	// Счетчик неудачных попыток ввода текущего поля
	AttemptCount int

	// Поле, значение которого сейчас вводится (режим редактирования маршрута)
	EditingField string

	// Режим применения комментария: constants.COMMENT_MODE_REPLACE / _APPEND
	CommentMode string

	// Фильтры мастера поиска
	SearchFrom string
	SearchTo   string

	// Отображаемый месяц календаря
	CalendarYear  int
	CalendarMonth int
}

// NewTempRoute создает новый экземпляр TempRouteData для указанного chatID.
func NewTempRoute(chatID int64) TempRouteData {
	return TempRouteData{
		Route: models.Route{
			UserID: chatID,
		},
	}
}
