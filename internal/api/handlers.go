package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"poputchik/internal/config"
	"poputchik/internal/db"
	"poputchik/internal/utils"
)

// HealthHandler — проверка живости процесса и соединения с БД.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if err := db.DB.Ping(); err != nil {
		status = "db unavailable"
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}

// SearchRoutesHandler — поиск активных маршрутов, те же фильтры-подстроки,
// что и у мастера поиска в боте.
func SearchRoutesHandler(w http.ResponseWriter, r *http.Request) {
	fromLoc := r.URL.Query().Get("from")
	toLoc := r.URL.Query().Get("to")

	routes, err := db.SearchRoutes(fromLoc, toLoc)
	if err != nil {
		http.Error(w, "search failed", http.StatusInternalServerError)
		return
	}

	type routeJSON struct {
		ID           int64  `json:"id"`
		FromLocation string `json:"from_location"`
		ToLocation   string `json:"to_location"`
		Date         string `json:"date"`
		Time         string `json:"time"`
		Price        int    `json:"price"`
		Seats        int    `json:"seats"`
		Comment      string `json:"comment,omitempty"`
	}
	out := make([]routeJSON, 0, len(routes))
	for _, rt := range routes {
		out = append(out, routeJSON{
			ID: rt.ID, FromLocation: rt.FromLocation, ToLocation: rt.ToLocation,
			Date: rt.DateDMY, Time: rt.TimeHM, Price: rt.Price, Seats: rt.Seats,
			Comment: rt.Comment,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

// StatsHandler — сводные счетчики для служебной панели.
func StatsHandler(w http.ResponseWriter, r *http.Request) {
	stats := map[string]int{}
	queries := map[string]string{
		"users_active":       "SELECT COUNT(*) FROM users WHERE is_active=1",
		"routes_active":      "SELECT COUNT(*) FROM routes WHERE is_active=1",
		"routes_cancelled":   "SELECT COUNT(*) FROM routes WHERE is_active=0",
		"requests_pending":   "SELECT COUNT(*) FROM requests WHERE status='pending'",
		"requests_accepted":  "SELECT COUNT(*) FROM requests WHERE status='accepted'",
		"requests_rejected":  "SELECT COUNT(*) FROM requests WHERE status='rejected'",
		"requests_cancelled": "SELECT COUNT(*) FROM requests WHERE status='cancelled'",
	}
	for key, query := range queries {
		var n int
		if err := db.DB.QueryRow(query).Scan(&n); err != nil {
			log.Printf("StatsHandler: ошибка запроса '%s': %v", key, err)
			http.Error(w, "stats failed", http.StatusInternalServerError)
			return
		}
		stats[key] = n
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// ExportRoutesHandler выгружает маршруты с заявками в XLSX.
func ExportRoutesHandler(w http.ResponseWriter, r *http.Request) {
	rows, err := db.DB.Query(`
        SELECT r.id, r.user_id, r.from_location, r.to_location, r.date_dmy, r.time_hm,
               r.price, r.seats, r.is_active,
               COUNT(req.id) FILTER (WHERE req.status = 'accepted') AS accepted,
               COUNT(req.id) FILTER (WHERE req.status = 'pending') AS pending
        FROM routes r
        LEFT JOIN requests req ON req.route_id = r.id
        GROUP BY r.id
        ORDER BY r.created_at ASC`)
	if err != nil {
		log.Printf("ExportRoutesHandler: ошибка запроса маршрутов: %v", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	f := excelize.NewFile()
	sheetName := "Маршруты"
	index, _ := f.NewSheet(sheetName)
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headers := []string{"ID", "Водитель", "Откуда", "Куда", "Дата", "Время",
		"Цена", "Мест", "Активен", "Принято", "Ожидает"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	rowIndex := 2
	for rows.Next() {
		var (
			id, driverID                   int64
			fromLoc, toLoc, dateDMY, timeHM string
			price, seats, isActive          int
			accepted, pending               int
		)
		if err := rows.Scan(&id, &driverID, &fromLoc, &toLoc, &dateDMY, &timeHM,
			&price, &seats, &isActive, &accepted, &pending); err != nil {
			log.Printf("ExportRoutesHandler: ошибка сканирования строки: %v", err)
			http.Error(w, "export failed", http.StatusInternalServerError)
			return
		}
		values := []interface{}{id, driverID, fromLoc, toLoc, dateDMY, timeHM,
			price, seats, isActive == 1, accepted, pending}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, rowIndex)
			f.SetCellValue(sheetName, cell, v)
		}
		rowIndex++
	}

	filename := fmt.Sprintf("routes_%s.xlsx", uuid.NewString())
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	if err := f.Write(w); err != nil {
		log.Printf("ExportRoutesHandler: ошибка записи XLSX: %v", err)
	}
}

// routeQRHandler отдает PNG с QR-кодом ссылки на маршрут.
func routeQRHandler(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		routeID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || routeID == 0 {
			http.Error(w, "bad route id", http.StatusBadRequest)
			return
		}
		if _, err := db.GetRouteByID(routeID); err != nil {
			http.Error(w, "route not found", http.StatusNotFound)
			return
		}

		qrBytes, err := utils.GenerateRouteQRCode(cfg.BotUsername, routeID)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(qrBytes)
	}
}
