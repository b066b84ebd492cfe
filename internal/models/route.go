package models

import (
	"database/sql"
)

// Route представляет маршрут, опубликованный водителем.
// Поле Seats — ОСТАВШИЕСЯ места: уменьшается на 1 при принятии заявки,
// увеличивается на 1 при отмене ранее принятой заявки. Никогда не уходит в минус.
// "Удаление" маршрута — это is_active=0 (отмена), жесткое удаление происходит
// только каскадом при удалении аккаунта водителя.
type Route struct {
	ID           int64
	UserID       int64 // chat_id водителя
	FromLocation string
	ToLocation   string
	DateDMY      string // "ДД.ММ.ГГГГ"
	TimeHM       string // "ЧЧ:ММ"
	Price        int
	Seats        int
	Comment      string
	IsActive     bool
	CreatedAt    sql.NullTime
}

// RouteUpdate — типизированное частичное обновление маршрута.
// nil-поле означает "не трогать". Заменяет динамический набор колонок
// из старых версий: опечатка в имени поля теперь ловится компилятором,
// а не ошибкой SQL.
type RouteUpdate struct {
	FromLocation *string
	ToLocation   *string
	DateDMY      *string
	TimeHM       *string
	Price        *int
	Seats        *int
	Comment      *string
	IsActive     *bool
}

// IsEmpty возвращает true, если обновление не затрагивает ни одного поля.
func (u RouteUpdate) IsEmpty() bool {
	return u.FromLocation == nil && u.ToLocation == nil && u.DateDMY == nil &&
		u.TimeHM == nil && u.Price == nil && u.Seats == nil &&
		u.Comment == nil && u.IsActive == nil
}
