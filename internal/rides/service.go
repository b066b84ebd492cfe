// Пакет rides — движок жизненного цикла маршрутов и заявок: учет мест,
// переходы статусов, фиксация отложенных правок и рассылка уведомлений
// об изменениях.
//
// Порядок побочных эффектов единый для всех операций: сначала запись в
// хранилище, затем уведомления. Ошибка доставки уведомления никогда не
// откатывает уже зафиксированное изменение.
package rides

import (
	"database/sql"
	"errors"
	"log"
	"strconv"
	"time"

	"poputchik/internal/constants"
	"poputchik/internal/formatters"
	"poputchik/internal/models"
	"poputchik/internal/session"
	"poputchik/internal/utils"
)

// Service — движок жизненного цикла. Все проверки предусловий выполняются
// по свежепрочитанному состоянию непосредственно перед записью.
type Service struct {
	store  Store
	notify Notifier

	// Подменяется в тестах
	now func() time.Time
}

// NewService создает движок поверх хранилища и диспетчера уведомлений.
func NewService(store Store, notifier Notifier) *Service {
	return &Service{
		store:  store,
		notify: notifier,
		now:    time.Now,
	}
}

// Reply создает заявку пассажира на маршрут. Возвращает маршрут (для
// уведомления водителя вызывающим кодом) и ID созданной заявки.
//
// Уведомление водителю с кнопками решения отправляет хендлер: движок не
// собирает клавиатуры.
func (s *Service) Reply(routeID, passengerID int64) (models.Route, int64, error) {
	route, err := s.store.GetRouteByID(routeID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Route{}, 0, ErrRouteNotFound
	}
	if err != nil {
		return models.Route{}, 0, err
	}
	if !route.IsActive {
		return models.Route{}, 0, ErrRouteInactive
	}
	if route.UserID == passengerID {
		return models.Route{}, 0, ErrOwnRoute
	}
	// Заявка на маршрут без мест отклоняется до создания строки
	if route.Seats <= 0 {
		return models.Route{}, 0, ErrNoSeats
	}

	requestID, err := s.store.CreateRequest(routeID, passengerID)
	if err != nil {
		return models.Route{}, 0, err
	}
	if requestID == 0 {
		return models.Route{}, 0, ErrDuplicate
	}
	log.Printf("rides.Reply: пассажир %d откликнулся на маршрут %d (заявка %d)", passengerID, routeID, requestID)
	return route, requestID, nil
}

// RecordCard сохраняет ссылку на карточку, доставленную пассажиру, для
// последующего обновления "на месте" при решении водителя.
func (s *Service) RecordCard(requestID, cardChatID int64, cardMessageID int) error {
	return s.store.UpdateRequestCardInfo(requestID, cardChatID, cardMessageID)
}

// Accept — решение водителя "принять": место списывается, пассажир получает
// уведомление с контактом водителя, его карточка обновляется. Возвращает
// число оставшихся мест.
func (s *Service) Accept(requestID, driverID int64) (int, error) {
	req, route, err := s.loadDecision(requestID, driverID)
	if err != nil {
		return 0, err
	}
	if req.Status != constants.REQUEST_STATUS_PENDING {
		return 0, ErrAlreadyProcessed
	}
	if route.Seats <= 0 {
		return 0, ErrNoSeats
	}

	seatsLeft := route.Seats - 1
	if err := s.store.UpdateRoute(route.ID, models.RouteUpdate{Seats: &seatsLeft}); err != nil {
		return 0, err
	}
	if err := s.store.UpdateRequestStatus(requestID, constants.REQUEST_STATUS_ACCEPTED); err != nil {
		return 0, err
	}
	log.Printf("rides.Accept: заявка %d принята, осталось мест: %d", requestID, seatsLeft)

	driverUsername := ""
	if driver, err := s.store.GetUserByID(driverID); err == nil {
		driverUsername = driver.TgUsername.String
	}
	s.notify.Send(req.PassengerID, formatters.FormatRequestAccepted(route, driverUsername))

	route.Seats = seatsLeft
	s.updatePassengerCard(req, route, constants.REQUEST_STATUS_ACCEPTED)
	return seatsLeft, nil
}

// Reject — решение водителя "отклонить". Место не затрагивается: ожидающая
// заявка его не занимала.
func (s *Service) Reject(requestID, driverID int64) error {
	req, route, err := s.loadDecision(requestID, driverID)
	if err != nil {
		return err
	}
	if req.Status != constants.REQUEST_STATUS_PENDING {
		return ErrAlreadyProcessed
	}

	if err := s.store.UpdateRequestStatus(requestID, constants.REQUEST_STATUS_REJECTED); err != nil {
		return err
	}
	log.Printf("rides.Reject: заявка %d отклонена", requestID)

	s.notify.Send(req.PassengerID, formatters.FormatRequestRejected(route))
	s.updatePassengerCard(req, route, constants.REQUEST_STATUS_REJECTED)
	return nil
}

// CancelRequest — отмена заявки пассажиром. Место возвращается маршруту
// только если заявка была принята: ожидающая или отклоненная заявка место
// не занимала, и эта асимметрия обязана сохраняться.
func (s *Service) CancelRequest(requestID, passengerID int64) error {
	req, err := s.store.GetRequestByID(requestID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrRequestNotFound
	}
	if err != nil {
		return err
	}
	if req.PassengerID != passengerID {
		return ErrNotYourRequest
	}
	if req.Status != constants.REQUEST_STATUS_PENDING && req.Status != constants.REQUEST_STATUS_ACCEPTED {
		return ErrAlreadyProcessed
	}

	priorStatus := req.Status
	if err := s.store.UpdateRequestStatus(requestID, constants.REQUEST_STATUS_CANCELLED); err != nil {
		return err
	}

	route, err := s.store.GetRouteByID(req.RouteID)
	if err != nil {
		// Заявка уже отменена; без маршрута не сделать ни возврат места,
		// ни уведомление водителю.
		log.Printf("rides.CancelRequest: маршрут %d не прочитан после отмены заявки %d: %v", req.RouteID, requestID, err)
		return nil
	}

	if priorStatus == constants.REQUEST_STATUS_ACCEPTED {
		restored := route.Seats + 1
		if err := s.store.UpdateRoute(route.ID, models.RouteUpdate{Seats: &restored}); err != nil {
			log.Printf("rides.CancelRequest: не возвращено место маршруту %d: %v", route.ID, err)
		} else {
			route.Seats = restored
		}
	}
	log.Printf("rides.CancelRequest: заявка %d отменена пассажиром %d (была %s)", requestID, passengerID, priorStatus)

	passengerUsername := ""
	if passenger, err := s.store.GetUserByID(passengerID); err == nil {
		passengerUsername = passenger.TgUsername.String
	}
	s.notify.Send(route.UserID, formatters.FormatPassengerCancelledForDriver(route, passengerUsername))

	// Собственная карточка пассажира теряет кнопку отмены
	s.updatePassengerCard(req, route, constants.REQUEST_STATUS_CANCELLED)
	return nil
}

// CancelRoute — отмена маршрута водителем. Счетчик мест не трогается
// (маршрут целиком становится недоступен); уведомляются и ожидающие, и
// принятые пассажиры. Возвращает число доставленных уведомлений.
func (s *Service) CancelRoute(routeID, driverID int64) (int, error) {
	route, err := s.loadOwnRoute(routeID, driverID)
	if err != nil {
		return 0, err
	}
	if !route.IsActive {
		return 0, ErrAlreadyProcessed
	}

	if err := s.store.CancelRoute(routeID); err != nil {
		return 0, err
	}
	log.Printf("rides.CancelRoute: маршрут %d отменен водителем %d", routeID, driverID)

	recipients := s.requesterIDs(routeID,
		constants.REQUEST_STATUS_PENDING, constants.REQUEST_STATUS_ACCEPTED)
	sent := s.notify.Broadcast(recipients, formatters.FormatRouteCancelledForPassenger(route))
	return sent, nil
}

// RestoreRoute — восстановление отмененного маршрута. Уведомляются только
// принятые пассажиры. Счетчик мест не пересчитывается по принятым заявкам —
// известное упрощение, сохраняемое намеренно.
func (s *Service) RestoreRoute(routeID, driverID int64) (int, error) {
	route, err := s.loadOwnRoute(routeID, driverID)
	if err != nil {
		return 0, err
	}
	if route.IsActive {
		return 0, ErrAlreadyProcessed
	}

	active := true
	if err := s.store.UpdateRoute(routeID, models.RouteUpdate{IsActive: &active}); err != nil {
		return 0, err
	}
	route.IsActive = true
	log.Printf("rides.RestoreRoute: маршрут %d восстановлен водителем %d", routeID, driverID)

	recipients := s.requesterIDs(routeID, constants.REQUEST_STATUS_ACCEPTED)
	sent := s.notify.Broadcast(recipients, formatters.FormatRouteRestoredForPassenger(route))
	return sent, nil
}

// CommitEdit фиксирует сеанс редактирования: все отложенные правки
// применяются к маршруту одним пакетом, после чего принятые пассажиры
// получают по одному сводному уведомлению со всеми изменениями.
//
// Временная проверка выполняется по финальной паре дата+время
// (отложенной либо исходной): дата и время меняются независимо, и любое
// из них может сделать другое недействительным. Если изменений по факту
// нет или принятых заявок нет — уведомления не отправляются.
//
// Возвращает примененные изменения и число доставленных уведомлений.
func (s *Service) CommitEdit(es *session.EditSession, driverID int64) ([]session.FieldChange, int, error) {
	if es == nil {
		return nil, 0, ErrRouteNotFound
	}
	route, err := s.loadOwnRoute(es.RouteID, driverID)
	if err != nil {
		return nil, 0, err
	}

	if utils.IsPastDateTime(es.EffectiveDate(), es.EffectiveTime(), s.now()) {
		return nil, 0, ErrPastTime
	}

	changes := es.NetChanges()
	if len(changes) == 0 {
		log.Printf("rides.CommitEdit: маршрут %d — изменений нет, фиксация пустая", es.RouteID)
		return nil, 0, nil
	}

	upd, err := buildRouteUpdate(changes)
	if err != nil {
		return nil, 0, err
	}
	if err := s.store.UpdateRoute(es.RouteID, upd); err != nil {
		return nil, 0, err
	}
	log.Printf("rides.CommitEdit: маршрут %d — применено изменений: %d", es.RouteID, len(changes))

	updated := applyChanges(route, upd)
	recipients := s.requesterIDs(es.RouteID, constants.REQUEST_STATUS_ACCEPTED)
	sent := s.notify.Broadcast(recipients,
		formatters.FormatRouteChangeNotification(es.Original, updated, changes))
	return changes, sent, nil
}

// --- вспомогательное ---

// loadDecision читает заявку и ее маршрут, проверяя, что решение принимает
// владелец маршрута.
func (s *Service) loadDecision(requestID, driverID int64) (models.Request, models.Route, error) {
	req, err := s.store.GetRequestByID(requestID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Request{}, models.Route{}, ErrRequestNotFound
	}
	if err != nil {
		return models.Request{}, models.Route{}, err
	}
	route, err := s.store.GetRouteByID(req.RouteID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Request{}, models.Route{}, ErrRouteNotFound
	}
	if err != nil {
		return models.Request{}, models.Route{}, err
	}
	if route.UserID != driverID {
		return models.Request{}, models.Route{}, ErrNotYourRoute
	}
	return req, route, nil
}

// loadOwnRoute читает маршрут и проверяет владение.
func (s *Service) loadOwnRoute(routeID, driverID int64) (models.Route, error) {
	route, err := s.store.GetRouteByID(routeID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Route{}, ErrRouteNotFound
	}
	if err != nil {
		return models.Route{}, err
	}
	if route.UserID != driverID {
		return models.Route{}, ErrNotYourRoute
	}
	return route, nil
}

// requesterIDs возвращает chatID пассажиров маршрута с одним из указанных
// статусов. Ошибка чтения дает пустой список: рассылка best-effort.
func (s *Service) requesterIDs(routeID int64, statuses ...string) []int64 {
	requests, err := s.store.GetRouteRequests(routeID)
	if err != nil {
		log.Printf("rides.requesterIDs: не прочитаны заявки маршрута %d: %v", routeID, err)
		return nil
	}
	var ids []int64
	for _, req := range requests {
		for _, status := range statuses {
			if req.Status == status {
				ids = append(ids, req.PassengerID)
				break
			}
		}
	}
	return ids
}

// updatePassengerCard обновляет доставленную пассажиру карточку "на месте",
// если ссылка на нее была сохранена. Неуспех гасится диспетчером.
func (s *Service) updatePassengerCard(req models.Request, route models.Route, status string) {
	if !req.CardChatID.Valid || !req.CardMessageID.Valid {
		return
	}
	text := formatters.FormatRouteCardWithStatus(route, formatters.StatusDisplayMap[status])
	s.notify.EditCard(req.CardChatID.Int64, int(req.CardMessageID.Int64), text)
}

// buildRouteUpdate переводит список строковых изменений в типизированное
// частичное обновление. Значения price/seats валидированы при вводе;
// нечисловое значение здесь — ошибка программирования.
func buildRouteUpdate(changes []session.FieldChange) (models.RouteUpdate, error) {
	var upd models.RouteUpdate
	for _, c := range changes {
		switch c.Field {
		case constants.FIELD_FROM_LOCATION:
			v := c.NewValue
			upd.FromLocation = &v
		case constants.FIELD_TO_LOCATION:
			v := c.NewValue
			upd.ToLocation = &v
		case constants.FIELD_DATE:
			v := c.NewValue
			upd.DateDMY = &v
		case constants.FIELD_TIME:
			v := c.NewValue
			upd.TimeHM = &v
		case constants.FIELD_PRICE:
			n, err := strconv.Atoi(c.NewValue)
			if err != nil {
				return models.RouteUpdate{}, err
			}
			upd.Price = &n
		case constants.FIELD_SEATS:
			n, err := strconv.Atoi(c.NewValue)
			if err != nil {
				return models.RouteUpdate{}, err
			}
			upd.Seats = &n
		case constants.FIELD_COMMENT:
			v := c.NewValue
			upd.Comment = &v
		}
	}
	return upd, nil
}

// applyChanges накладывает частичное обновление на копию маршрута —
// для текста уведомления, без повторного чтения из хранилища.
func applyChanges(route models.Route, upd models.RouteUpdate) models.Route {
	if upd.FromLocation != nil {
		route.FromLocation = *upd.FromLocation
	}
	if upd.ToLocation != nil {
		route.ToLocation = *upd.ToLocation
	}
	if upd.DateDMY != nil {
		route.DateDMY = *upd.DateDMY
	}
	if upd.TimeHM != nil {
		route.TimeHM = *upd.TimeHM
	}
	if upd.Price != nil {
		route.Price = *upd.Price
	}
	if upd.Seats != nil {
		route.Seats = *upd.Seats
	}
	if upd.Comment != nil {
		route.Comment = *upd.Comment
	}
	return route
}
