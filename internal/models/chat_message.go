package models

import (
	"database/sql"
)

// Chat и ChatMessage — зарезервированная пара таблиц под встроенный чат
// водитель-пассажир. Таблицы создаются в db.InitDB, но движком жизненного
// цикла не заполняются: связь сейчас идет через t.me-ссылку на username.
type Chat struct {
	ID             int64
	RequestID      int64
	DriverID       int64
	PassengerID    int64
	ConversationID string // uuid
	CreatedAt      sql.NullTime
}

type ChatMessage struct {
	ID          int64
	ChatID      int64
	SenderID    int64
	MessageText string
	CreatedAt   sql.NullTime
}
