// Файл: internal/db/db.go
package db

import (
	"database/sql"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

var DB *sql.DB // Глобальная переменная для хранения подключения к БД

// InitDB инициализирует соединение с базой данных и выполняет миграции.
func InitDB() error {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return fmt.Errorf("DATABASE_URL не установлена")
	}

	parsedURL, err := url.Parse(dbURL)
	if err != nil {
		return fmt.Errorf("ошибка парсинга DATABASE_URL: %v", err)
	}

	DB, err = sql.Open("postgres", parsedURL.String())
	if err != nil {
		return fmt.Errorf("ошибка подключения к базе данных: %v", err)
	}

	DB.SetMaxOpenConns(50)
	DB.SetMaxIdleConns(20)
	DB.SetConnMaxLifetime(5 * time.Minute)

	if err := DB.Ping(); err != nil {
		return fmt.Errorf("ошибка проверки соединения с базой данных: %v", err)
	}

	log.Println("Успешное подключение к базе данных.")

	tx, err := DB.Begin()
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции для создания таблиц: %v", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			log.Printf("Откат транзакции из-за ошибки: %v", err)
			tx.Rollback()
		}
	}()

	createTablesSQL := `
        CREATE TABLE IF NOT EXISTS users (
            user_id BIGINT PRIMARY KEY,
            tg_username TEXT,
            display_name TEXT,
            photo_file_id TEXT,
            bio TEXT,
            is_active INTEGER DEFAULT 1,
            created_at TIMESTAMP
        );
        CREATE TABLE IF NOT EXISTS routes (
            id SERIAL PRIMARY KEY,
            user_id BIGINT REFERENCES users(user_id),
            from_location TEXT,
            to_location TEXT,
            date_dmy TEXT,
            time_hm TEXT,
            price INTEGER,
            seats INTEGER,
            comment TEXT DEFAULT '',
            is_active INTEGER DEFAULT 1,
            created_at TIMESTAMP
        );
        CREATE TABLE IF NOT EXISTS requests (
            id SERIAL PRIMARY KEY,
            route_id INTEGER REFERENCES routes(id),
            passenger_id BIGINT REFERENCES users(user_id),
            status TEXT DEFAULT 'pending',
            card_chat_id BIGINT,
            card_message_id BIGINT,
            created_at TIMESTAMP
        );
        -- Зарезервировано под встроенный чат; движок жизненного цикла эти
        -- таблицы не заполняет.
        CREATE TABLE IF NOT EXISTS chats (
            id SERIAL PRIMARY KEY,
            request_id INTEGER REFERENCES requests(id),
            driver_id BIGINT REFERENCES users(user_id),
            passenger_id BIGINT REFERENCES users(user_id),
            conversation_id TEXT,
            created_at TIMESTAMP
        );
        CREATE TABLE IF NOT EXISTS messages (
            id SERIAL PRIMARY KEY,
            chat_id INTEGER REFERENCES chats(id),
            sender_id BIGINT REFERENCES users(user_id),
            message_text TEXT,
            created_at TIMESTAMP
        );
    `
	_, err = tx.Exec(createTablesSQL)
	if err != nil {
		return fmt.Errorf("ошибка создания таблиц: %v", err)
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("ошибка фиксации транзакции создания таблиц: %v", err)
	}
	log.Println("Создание таблиц (если не существуют) завершено.")

	err = migrateDBSchema()
	if err != nil {
		return fmt.Errorf("ошибка выполнения миграции схемы: %v", err)
	}
	log.Println("Миграция схемы базы данных успешно завершена.")

	createIndexesSQL := `
        CREATE INDEX IF NOT EXISTS idx_routes_user_id ON routes(user_id);
        CREATE INDEX IF NOT EXISTS idx_routes_is_active_created ON routes(is_active, created_at);
        CREATE INDEX IF NOT EXISTS idx_requests_route_id ON requests(route_id);
        CREATE INDEX IF NOT EXISTS idx_requests_passenger_id ON requests(passenger_id);
        CREATE INDEX IF NOT EXISTS idx_requests_route_passenger ON requests(route_id, passenger_id);
        CREATE INDEX IF NOT EXISTS idx_chats_request_id ON chats(request_id);
        CREATE INDEX IF NOT EXISTS idx_messages_chat_id ON messages(chat_id);
    `
	indexStatements := strings.Split(strings.TrimSpace(createIndexesSQL), ";")
	for _, stmt := range indexStatements {
		trimmedStmt := strings.TrimSpace(stmt)
		if trimmedStmt == "" {
			continue
		}
		_, errIdx := DB.Exec(trimmedStmt)
		if errIdx != nil {
			log.Printf("Предупреждение: ошибка при создании индекса ('%s'): %v.", trimmedStmt, errIdx)
		}
	}
	log.Println("Создание индексов (если не существуют) завершено.")

	log.Println("Инициализация базы данных успешно завершена.")
	return nil
}

// migrateDBSchema выполняет необходимые миграции схемы базы данных.
// This function should be idempotent.
func migrateDBSchema() error {
	migrations := []struct {
		name string
		sql  string
	}{
		{
			// Старые установки без ссылки на карточку пассажира
			name: "requests.card_columns",
			sql: `ALTER TABLE requests
                  ADD COLUMN IF NOT EXISTS card_chat_id BIGINT,
                  ADD COLUMN IF NOT EXISTS card_message_id BIGINT;`,
		},
		{
			name: "routes.comment",
			sql: `ALTER TABLE routes
                  ADD COLUMN IF NOT EXISTS comment TEXT DEFAULT '';`,
		},
		{
			name: "chats.conversation_id",
			sql: `ALTER TABLE chats
                  ADD COLUMN IF NOT EXISTS conversation_id TEXT;`,
		},
	}

	for _, migration := range migrations {
		_, err := DB.Exec(migration.sql)
		if err != nil {
			if strings.Contains(err.Error(), "already exists") {
				log.Printf("INFO: Миграция '%s' пропущена (объект уже существует). Детали: %v", migration.name, err)
			} else {
				return fmt.Errorf("ошибка миграции схемы ('%s'): %v", migration.name, err)
			}
		} else {
			log.Printf("INFO: Миграция ('%s') успешно применена или объект уже существовал.", migration.name)
		}
	}

	log.Println("Миграция схемы базы данных успешно выполнена (или не требовалась).")
	return nil
}

// CloseDB закрывает соединение с базой данных.
func CloseDB() {
	if DB != nil {
		DB.Close()
		log.Println("Соединение с базой данных закрыто.")
	}
}
