package db

import (
	"database/sql"
	"log"

	"poputchik/internal/models"
)

// CreateRequest создает заявку пассажира на маршрут.
// Возвращает (0, nil), если у пары (route_id, passenger_id) уже есть
// неотмененная заявка — это единственный дедупликационный барьер в системе.
func CreateRequest(routeID, passengerID int64) (int64, error) {
	var existingID int64
	err := DB.QueryRow(`
        SELECT id FROM requests
        WHERE route_id=$1 AND passenger_id=$2 AND status != 'cancelled'`,
		routeID, passengerID).Scan(&existingID)
	if err == nil {
		return 0, nil
	}
	if err != sql.ErrNoRows {
		log.Printf("CreateRequest: ошибка проверки дубликата (маршрут %d, пассажир %d): %v", routeID, passengerID, err)
		return 0, err
	}

	var id int64
	err = DB.QueryRow(`
        INSERT INTO requests (route_id, passenger_id, status, created_at)
        VALUES ($1, $2, 'pending', NOW())
        RETURNING id`,
		routeID, passengerID).Scan(&id)
	if err != nil {
		log.Printf("CreateRequest: ошибка вставки заявки (маршрут %d, пассажир %d): %v", routeID, passengerID, err)
		return 0, err
	}
	log.Printf("Создана заявка #%d (маршрут %d, пассажир %d)", id, routeID, passengerID)
	return id, nil
}

// GetRequestByID извлекает заявку по ID. Возвращает sql.ErrNoRows, если ее нет.
func GetRequestByID(requestID int64) (models.Request, error) {
	var req models.Request
	err := DB.QueryRow(`
        SELECT id, route_id, passenger_id, status, card_chat_id, card_message_id, created_at
        FROM requests WHERE id=$1`, requestID).Scan(
		&req.ID, &req.RouteID, &req.PassengerID, &req.Status,
		&req.CardChatID, &req.CardMessageID, &req.CreatedAt)
	if err != nil && err != sql.ErrNoRows {
		log.Printf("GetRequestByID: ошибка получения заявки %d: %v", requestID, err)
	}
	return req, err
}

// GetRouteRequests возвращает заявки маршрута вместе с данными пассажиров,
// новые сверху.
func GetRouteRequests(routeID int64) ([]models.RequestWithPassenger, error) {
	rows, err := DB.Query(`
        SELECT r.id, r.route_id, r.passenger_id, r.status,
               r.card_chat_id, r.card_message_id, r.created_at,
               u.tg_username, u.display_name
        FROM requests r
        JOIN users u ON r.passenger_id = u.user_id
        WHERE r.route_id=$1
        ORDER BY r.created_at DESC`, routeID)
	if err != nil {
		log.Printf("GetRouteRequests: ошибка запроса заявок маршрута %d: %v", routeID, err)
		return nil, err
	}
	defer rows.Close()

	var requests []models.RequestWithPassenger
	for rows.Next() {
		var req models.RequestWithPassenger
		if err := rows.Scan(&req.ID, &req.RouteID, &req.PassengerID, &req.Status,
			&req.CardChatID, &req.CardMessageID, &req.CreatedAt,
			&req.TgUsername, &req.DisplayName); err != nil {
			log.Printf("GetRouteRequests: ошибка сканирования строки: %v", err)
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// UpdateRequestStatus записывает новый статус заявки. Проверка допустимости
// перехода — забота движка жизненного цикла (пакет rides).
func UpdateRequestStatus(requestID int64, status string) error {
	_, err := DB.Exec("UPDATE requests SET status=$1 WHERE id=$2", status, requestID)
	if err != nil {
		log.Printf("UpdateRequestStatus: ошибка обновления заявки %d: %v", requestID, err)
		return err
	}
	log.Printf("Заявка %d → %s", requestID, status)
	return nil
}

// UpdateRequestCardInfo сохраняет ссылку на доставленную пассажиру карточку,
// чтобы при решении водителя обновить ее "на месте".
func UpdateRequestCardInfo(requestID, cardChatID int64, cardMessageID int) error {
	_, err := DB.Exec(`
        UPDATE requests SET card_chat_id=$1, card_message_id=$2 WHERE id=$3`,
		cardChatID, cardMessageID, requestID)
	if err != nil {
		log.Printf("UpdateRequestCardInfo: ошибка сохранения карточки заявки %d: %v", requestID, err)
	}
	return err
}

// GetPassengerRequestStatus возвращает статус последней заявки пассажира на
// маршрут или "" при отсутствии заявок.
func GetPassengerRequestStatus(routeID, passengerID int64) (string, error) {
	var status string
	err := DB.QueryRow(`
        SELECT status FROM requests
        WHERE route_id=$1 AND passenger_id=$2
        ORDER BY created_at DESC
        LIMIT 1`, routeID, passengerID).Scan(&status)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		log.Printf("GetPassengerRequestStatus: ошибка (маршрут %d, пассажир %d): %v", routeID, passengerID, err)
		return "", err
	}
	return status, nil
}

// GetUserTrips возвращает заявки пассажира вместе с данными маршрутов
// (раздел "Мои поездки"), старые сверху.
func GetUserTrips(passengerID int64) ([]models.Trip, error) {
	rows, err := DB.Query(`
        SELECT req.id, req.status,
               r.id, r.user_id, r.from_location, r.to_location,
               r.date_dmy, r.time_hm, r.price, r.seats, COALESCE(r.comment, ''), r.is_active
        FROM requests req
        JOIN routes r ON req.route_id = r.id
        WHERE req.passenger_id=$1
        ORDER BY req.created_at ASC`, passengerID)
	if err != nil {
		log.Printf("GetUserTrips: ошибка запроса поездок пассажира %d: %v", passengerID, err)
		return nil, err
	}
	defer rows.Close()

	var trips []models.Trip
	for rows.Next() {
		var t models.Trip
		var isActive int
		if err := rows.Scan(&t.RequestID, &t.Status, &t.RouteID, &t.DriverID,
			&t.FromLocation, &t.ToLocation, &t.DateDMY, &t.TimeHM,
			&t.Price, &t.Seats, &t.Comment, &isActive); err != nil {
			log.Printf("GetUserTrips: ошибка сканирования строки: %v", err)
			return nil, err
		}
		t.RouteIsActive = isActive == 1
		trips = append(trips, t)
	}
	return trips, rows.Err()
}
