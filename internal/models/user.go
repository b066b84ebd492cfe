package models

import (
	"database/sql"
)

// User represents a user in the system.
// Пользователь создается при первом /start и "удаляется" мягко:
// is_active=0, профильные поля очищаются, его маршруты удаляются каскадно.
type User struct {
	UserID      int64
	TgUsername  sql.NullString
	DisplayName sql.NullString
	PhotoFileID sql.NullString
	Bio         sql.NullString
	IsActive    bool
	CreatedAt   sql.NullTime
}

// UserProfile — профиль пользователя со счетчиками для карточки "Профиль водителя".
type UserProfile struct {
	UserID      int64
	DisplayName string
	Bio         string
	PhotoFileID string
	RoutesCount int
	TripsCount  int
}
