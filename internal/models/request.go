package models

import (
	"database/sql"
)

// Request — заявка пассажира на маршрут.
// Статусы: pending → accepted | rejected (решение водителя, один раз),
// pending | accepted → cancelled (отмена пассажиром). rejected и cancelled —
// терминальные. На пару (route_id, passenger_id) одновременно может
// существовать не более одной неотмененной заявки.
type Request struct {
	ID            int64
	RouteID       int64
	PassengerID   int64
	Status        string
	CardChatID    sql.NullInt64 // ссылка на карточку у пассажира для обновления "на месте"
	CardMessageID sql.NullInt64
	CreatedAt     sql.NullTime
}

// RequestWithPassenger — заявка вместе с данными пассажира (для списков у водителя).
type RequestWithPassenger struct {
	Request
	TgUsername  sql.NullString
	DisplayName sql.NullString
}

// Trip — заявка пассажира вместе с данными маршрута (раздел "Мои поездки").
type Trip struct {
	RequestID     int64
	Status        string
	RouteID       int64
	DriverID      int64
	FromLocation  string
	ToLocation    string
	DateDMY       string
	TimeHM        string
	Price         int
	Seats         int
	Comment       string
	RouteIsActive bool
}
