package db

import (
	"database/sql"
	"fmt"
	"log"
	"strings"

	"poputchik/internal/models"
)

// CreateRoute создает опубликованный маршрут и возвращает его ID.
// Валидация полей — забота вызывающего кода (мастера создания).
func CreateRoute(userID int64, fromLoc, toLoc, dateDMY, timeHM string, price, seats int, comment string) (int64, error) {
	var id int64
	err := DB.QueryRow(`
        INSERT INTO routes (user_id, from_location, to_location, date_dmy, time_hm,
                            price, seats, comment, is_active, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1, NOW())
        RETURNING id`,
		userID, fromLoc, toLoc, dateDMY, timeHM, price, seats, comment).Scan(&id)
	if err != nil {
		log.Printf("CreateRoute: ошибка вставки маршрута водителя %d: %v", userID, err)
		return 0, err
	}
	log.Printf("Создан маршрут #%d (водитель %d)", id, userID)
	return id, nil
}

// GetRouteByID извлекает маршрут по ID. Возвращает sql.ErrNoRows, если его нет.
func GetRouteByID(routeID int64) (models.Route, error) {
	var r models.Route
	var isActive int
	err := DB.QueryRow(`
        SELECT id, user_id, from_location, to_location, date_dmy, time_hm,
               price, seats, COALESCE(comment, ''), is_active, created_at
        FROM routes WHERE id=$1`, routeID).Scan(
		&r.ID, &r.UserID, &r.FromLocation, &r.ToLocation, &r.DateDMY, &r.TimeHM,
		&r.Price, &r.Seats, &r.Comment, &isActive, &r.CreatedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Printf("GetRouteByID: ошибка получения маршрута %d: %v", routeID, err)
		}
		return r, err
	}
	r.IsActive = isActive == 1
	return r, nil
}

// GetUserRoutes возвращает активные маршруты водителя, старые сверху.
func GetUserRoutes(userID int64) ([]models.Route, error) {
	return queryRoutes(`
        SELECT id, user_id, from_location, to_location, date_dmy, time_hm,
               price, seats, COALESCE(comment, ''), is_active, created_at
        FROM routes
        WHERE user_id=$1 AND is_active=1
        ORDER BY created_at ASC`, userID)
}

// SearchRoutes ищет активные маршруты по необязательным фильтрам "откуда"/"куда".
// Совпадение — регистронезависимая подстрока; порядок — по времени создания.
func SearchRoutes(fromLoc, toLoc string) ([]models.Route, error) {
	query := `
        SELECT id, user_id, from_location, to_location, date_dmy, time_hm,
               price, seats, COALESCE(comment, ''), is_active, created_at
        FROM routes
        WHERE is_active=1`
	args := []interface{}{}
	if fromLoc != "" {
		args = append(args, "%"+strings.ToLower(fromLoc)+"%")
		query += fmt.Sprintf(" AND LOWER(from_location) LIKE $%d", len(args))
	}
	if toLoc != "" {
		args = append(args, "%"+strings.ToLower(toLoc)+"%")
		query += fmt.Sprintf(" AND LOWER(to_location) LIKE $%d", len(args))
	}
	query += " ORDER BY created_at ASC"
	return queryRoutes(query, args...)
}

func queryRoutes(query string, args ...interface{}) ([]models.Route, error) {
	rows, err := DB.Query(query, args...)
	if err != nil {
		log.Printf("queryRoutes: ошибка выполнения запроса: %v", err)
		return nil, err
	}
	defer rows.Close()

	var routes []models.Route
	for rows.Next() {
		var r models.Route
		var isActive int
		if err := rows.Scan(&r.ID, &r.UserID, &r.FromLocation, &r.ToLocation, &r.DateDMY,
			&r.TimeHM, &r.Price, &r.Seats, &r.Comment, &isActive, &r.CreatedAt); err != nil {
			log.Printf("queryRoutes: ошибка сканирования строки: %v", err)
			return nil, err
		}
		r.IsActive = isActive == 1
		routes = append(routes, r)
	}
	return routes, rows.Err()
}

// UpdateRoute применяет типизированное частичное обновление. Поля со значением
// nil не затрагиваются. Пустое обновление — no-op без похода в БД.
func UpdateRoute(routeID int64, upd models.RouteUpdate) error {
	if upd.IsEmpty() {
		return nil
	}

	var sets []string
	var args []interface{}
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.FromLocation != nil {
		add("from_location", *upd.FromLocation)
	}
	if upd.ToLocation != nil {
		add("to_location", *upd.ToLocation)
	}
	if upd.DateDMY != nil {
		add("date_dmy", *upd.DateDMY)
	}
	if upd.TimeHM != nil {
		add("time_hm", *upd.TimeHM)
	}
	if upd.Price != nil {
		add("price", *upd.Price)
	}
	if upd.Seats != nil {
		add("seats", *upd.Seats)
	}
	if upd.Comment != nil {
		add("comment", *upd.Comment)
	}
	if upd.IsActive != nil {
		active := 0
		if *upd.IsActive {
			active = 1
		}
		add("is_active", active)
	}

	args = append(args, routeID)
	query := fmt.Sprintf("UPDATE routes SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	_, err := DB.Exec(query, args...)
	if err != nil {
		log.Printf("UpdateRoute: ошибка обновления маршрута %d: %v", routeID, err)
		return err
	}
	log.Printf("Маршрут %d обновлен (%d полей)", routeID, len(sets))
	return nil
}

// CancelRoute помечает маршрут отмененным (is_active=0), строка сохраняется.
func CancelRoute(routeID int64) error {
	_, err := DB.Exec("UPDATE routes SET is_active=0 WHERE id=$1", routeID)
	if err != nil {
		log.Printf("CancelRoute: ошибка отмены маршрута %d: %v", routeID, err)
		return err
	}
	log.Printf("Маршрут %d отменен", routeID)
	return nil
}
