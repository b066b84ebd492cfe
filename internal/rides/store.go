package rides

import (
	"poputchik/internal/db"
	"poputchik/internal/models"
)

// Store — срез шлюза персистентности, нужный движку жизненного цикла.
// Продовая реализация — DBStore поверх пакета db; тесты подставляют
// реализацию в памяти.
type Store interface {
	GetRouteByID(routeID int64) (models.Route, error)
	UpdateRoute(routeID int64, upd models.RouteUpdate) error
	CancelRoute(routeID int64) error

	GetRouteRequests(routeID int64) ([]models.RequestWithPassenger, error)
	CreateRequest(routeID, passengerID int64) (int64, error)
	GetRequestByID(requestID int64) (models.Request, error)
	UpdateRequestStatus(requestID int64, status string) error
	UpdateRequestCardInfo(requestID, cardChatID int64, cardMessageID int) error

	GetUserByID(userID int64) (models.User, error)
}

// Notifier — срез диспетчера уведомлений, нужный движку. Ошибки доставки
// диспетчер гасит сам.
type Notifier interface {
	Send(chatID int64, text string) error
	Broadcast(chatIDs []int64, text string) int
	EditCard(chatID int64, messageID int, text string)
}

// DBStore — реализация Store поверх глобального соединения пакета db.
type DBStore struct{}

func (DBStore) GetRouteByID(routeID int64) (models.Route, error) {
	return db.GetRouteByID(routeID)
}

func (DBStore) UpdateRoute(routeID int64, upd models.RouteUpdate) error {
	return db.UpdateRoute(routeID, upd)
}

func (DBStore) CancelRoute(routeID int64) error {
	return db.CancelRoute(routeID)
}

func (DBStore) GetRouteRequests(routeID int64) ([]models.RequestWithPassenger, error) {
	return db.GetRouteRequests(routeID)
}

func (DBStore) CreateRequest(routeID, passengerID int64) (int64, error) {
	return db.CreateRequest(routeID, passengerID)
}

func (DBStore) GetRequestByID(requestID int64) (models.Request, error) {
	return db.GetRequestByID(requestID)
}

func (DBStore) UpdateRequestStatus(requestID int64, status string) error {
	return db.UpdateRequestStatus(requestID, status)
}

func (DBStore) UpdateRequestCardInfo(requestID, cardChatID int64, cardMessageID int) error {
	return db.UpdateRequestCardInfo(requestID, cardChatID, cardMessageID)
}

func (DBStore) GetUserByID(userID int64) (models.User, error) {
	return db.GetUserByID(userID)
}
