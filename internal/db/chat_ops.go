package db

import (
	"database/sql"
	"log"

	"github.com/google/uuid"

	"poputchik/internal/models"
)

// Операции над зарезервированной парой таблиц chats/messages. Движок
// жизненного цикла их не вызывает; связь водитель-пассажир сейчас идет через
// t.me-ссылку. Оставлены под будущий встроенный чат.

// CreateChat создает чат по заявке (или возвращает ID существующего).
func CreateChat(requestID, driverID, passengerID int64) (int64, error) {
	var existingID int64
	err := DB.QueryRow("SELECT id FROM chats WHERE request_id=$1", requestID).Scan(&existingID)
	if err == nil {
		return existingID, nil
	}
	if err != sql.ErrNoRows {
		log.Printf("CreateChat: ошибка проверки чата заявки %d: %v", requestID, err)
		return 0, err
	}

	var id int64
	err = DB.QueryRow(`
        INSERT INTO chats (request_id, driver_id, passenger_id, conversation_id, created_at)
        VALUES ($1, $2, $3, $4, NOW())
        RETURNING id`,
		requestID, driverID, passengerID, uuid.NewString()).Scan(&id)
	if err != nil {
		log.Printf("CreateChat: ошибка создания чата заявки %d: %v", requestID, err)
		return 0, err
	}
	log.Printf("Создан чат #%d (заявка %d)", id, requestID)
	return id, nil
}

// GetChatByRequest возвращает чат по заявке. sql.ErrNoRows, если чата нет.
func GetChatByRequest(requestID int64) (models.Chat, error) {
	var c models.Chat
	err := DB.QueryRow(`
        SELECT id, request_id, driver_id, passenger_id, COALESCE(conversation_id, ''), created_at
        FROM chats WHERE request_id=$1`, requestID).Scan(
		&c.ID, &c.RequestID, &c.DriverID, &c.PassengerID, &c.ConversationID, &c.CreatedAt)
	if err != nil && err != sql.ErrNoRows {
		log.Printf("GetChatByRequest: ошибка получения чата заявки %d: %v", requestID, err)
	}
	return c, err
}

// SaveMessage сохраняет сообщение в чате.
func SaveMessage(chatID, senderID int64, messageText string) error {
	_, err := DB.Exec(`
        INSERT INTO messages (chat_id, sender_id, message_text, created_at)
        VALUES ($1, $2, $3, NOW())`,
		chatID, senderID, messageText)
	if err != nil {
		log.Printf("SaveMessage: ошибка сохранения сообщения в чате %d: %v", chatID, err)
	}
	return err
}

// GetChatMessages возвращает сообщения чата в хронологическом порядке.
func GetChatMessages(chatID int64) ([]models.ChatMessage, error) {
	rows, err := DB.Query(`
        SELECT id, chat_id, sender_id, message_text, created_at
        FROM messages
        WHERE chat_id=$1
        ORDER BY created_at ASC`, chatID)
	if err != nil {
		log.Printf("GetChatMessages: ошибка запроса сообщений чата %d: %v", chatID, err)
		return nil, err
	}
	defer rows.Close()

	var msgs []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.ChatID, &m.SenderID, &m.MessageText, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
