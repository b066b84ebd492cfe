package rides

import "errors"

// Ошибки движка жизненного цикла. Хендлеры сопоставляют их через errors.Is
// и показывают пользователю некритичное сообщение; состояние при этом не
// меняется. Любая другая ошибка — ошибка хранилища, она поднимается выше
// как есть.
var (
	ErrRouteNotFound   = errors.New("маршрут не найден")
	ErrRequestNotFound = errors.New("заявка не найдена")
	ErrRouteInactive   = errors.New("маршрут отменен водителем")
	ErrOwnRoute        = errors.New("нельзя откликнуться на собственный маршрут")
	ErrNoSeats         = errors.New("свободных мест не осталось")
	ErrDuplicate       = errors.New("активная заявка на этот маршрут уже есть")
	ErrAlreadyProcessed = errors.New("заявка уже обработана")
	ErrNotYourRoute    = errors.New("маршрут принадлежит другому водителю")
	ErrNotYourRequest  = errors.New("заявка принадлежит другому пассажиру")
	ErrPastTime        = errors.New("время отправления уже прошло")
)
