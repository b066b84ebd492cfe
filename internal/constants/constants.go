package constants

import "time"

// Состояния диалога пользователя (ключ — chatID в SessionManager).
const (
	STATE_IDLE = "idle"

	// Мастер создания маршрута (линейный, ничего не пишется в БД до публикации)
	STATE_ROUTE_CREATE_FROM    = "route_create_from"
	STATE_ROUTE_CREATE_TO      = "route_create_to"
	STATE_ROUTE_CREATE_DATE    = "route_create_date"
	STATE_ROUTE_CREATE_TIME    = "route_create_time"
	STATE_ROUTE_CREATE_PRICE   = "route_create_price"
	STATE_ROUTE_CREATE_SEATS   = "route_create_seats"
	STATE_ROUTE_CREATE_COMMENT = "route_create_comment"

	// Редактирование маршрута: ввод нового значения выбранного поля.
	// Само поле и staged-изменения лежат в EditSession.
	STATE_ROUTE_EDIT_VALUE = "route_edit_value"

	// Поиск маршрута
	STATE_SEARCH_FROM = "search_from"
	STATE_SEARCH_TO   = "search_to"

	// Редактирование профиля
	STATE_PROFILE_NAME  = "profile_name"
	STATE_PROFILE_BIO   = "profile_bio"
	STATE_PROFILE_PHOTO = "profile_photo"
)

// Статусы заявки пассажира.
const (
	REQUEST_STATUS_PENDING   = "pending"
	REQUEST_STATUS_ACCEPTED  = "accepted"
	REQUEST_STATUS_REJECTED  = "rejected"
	REQUEST_STATUS_CANCELLED = "cancelled"
)

// Имена редактируемых полей маршрута (ключи staged-изменений).
const (
	FIELD_FROM_LOCATION = "from_location"
	FIELD_TO_LOCATION   = "to_location"
	FIELD_DATE          = "date"
	FIELD_TIME          = "time"
	FIELD_PRICE         = "price"
	FIELD_SEATS         = "seats"
	FIELD_COMMENT       = "comment"
)

// Режимы изменения комментария.
const (
	COMMENT_MODE_REPLACE = "replace"
	COMMENT_MODE_APPEND  = "append"
)

// Префиксы callback-данных. Формат: "<префикс><id>" либо
// "<префикс><id>:<доп.части>", разбор — strings.Split по ":".
const (
	CALLBACK_MAIN_MENU = "main_menu"

	CALLBACK_PREFIX_ROUTE_CREATE  = "newroute:"
	CALLBACK_PREFIX_MY_ROUTES     = "myroutes:"
	CALLBACK_PREFIX_MY_TRIPS      = "mytrips:"
	CALLBACK_PREFIX_REPLY         = "reply:"
	CALLBACK_PREFIX_ROUTE_CARD    = "rs:card:reply:"
	CALLBACK_PREFIX_SEARCH        = "search:"
	CALLBACK_PREFIX_PROFILE       = "profile:"
	CALLBACK_PREFIX_DRIVER_PROF   = "driver:profile:"
	CALLBACK_PREFIX_ROUTE_CHAT    = "route:chat:"
	CALLBACK_PREFIX_EDIT_CALENDAR = "editcal:"
	CALLBACK_PREFIX_NEW_CALENDAR  = "newcal:"
)

// Ограничения и тайминги.
const (
	MIN_LOCATION_LEN = 2

	// Пауза между последовательными отправками при веерной рассылке,
	// чтобы не упереться в лимиты Telegram.
	NOTIFY_SEND_DELAY = 300 * time.Millisecond
)

// Русские названия месяцев для календаря.
var MonthNames = [12]string{
	"Январь", "Февраль", "Март", "Апрель", "Май", "Июнь",
	"Июль", "Август", "Сентябрь", "Октябрь", "Ноябрь", "Декабрь",
}

// Сокращенные названия дней недели, с понедельника.
var WeekdayNames = [7]string{"Пн", "Вт", "Ср", "Чт", "Пт", "Сб", "Вс"}
