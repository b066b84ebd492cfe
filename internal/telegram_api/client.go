package telegram_api

import (
	"fmt"
	"log"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"
)

// BotClient — обертка над Telegram Bot API.
type BotClient struct {
	api   *tgbotapi.BotAPI
	Debug bool
}

// Глобальный экземпляр бота для пакета
var Client *BotClient

// InitBot инициализирует Telegram бота.
// token — API-токен бота, debug — режим отладки.
func InitBot(token string, debug bool) error {
	if token == "" {
		return fmt.Errorf("токен Telegram API не предоставлен")
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return fmt.Errorf("ошибка инициализации Telegram Bot API: %w", err)
	}

	api.Debug = debug

	log.Printf("Авторизован как аккаунт %s", api.Self.UserName)

	// Отключаем вебхук, если он активен (важно для getUpdates)
	deleteWebhookConfig := tgbotapi.DeleteWebhookConfig{
		DropPendingUpdates: true,
	}
	_, err = api.Request(deleteWebhookConfig)
	if err != nil {
		// Ошибка возможна, если вебхука и не было. Логируем, не прерываем.
		log.Printf("Предупреждение при отключении вебхука: %v.", err)
	}

	Client = &BotClient{
		api:   api,
		Debug: debug,
	}
	return nil
}

// GetAPI возвращает нижележащий экземпляр *tgbotapi.BotAPI.
func (bc *BotClient) GetAPI() *tgbotapi.BotAPI {
	if bc == nil || bc.api == nil {
		log.Fatal("BotClient или его API не инициализирован.")
	}
	return bc.api
}

// GetUpdatesChan возвращает канал обновлений от Telegram.
func (bc *BotClient) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	if bc == nil || bc.api == nil {
		log.Fatal("BotClient или его API не инициализирован перед запросом обновлений.")
	}
	return bc.api.GetUpdatesChan(config)
}

// Send отправляет сообщение через BotClient.
func (bc *BotClient) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if bc == nil || bc.api == nil {
		return tgbotapi.Message{}, fmt.Errorf("BotClient или его API не инициализирован")
	}
	if bc.Debug {
		if msg, ok := c.(tgbotapi.MessageConfig); ok {
			log.Printf("Отправка сообщения: ChatID=%d, Text='%.50s...'", msg.ChatID, msg.Text)
		} else {
			log.Printf("Отправка/запрос типа %T", c)
		}
	}
	return bc.api.Send(c)
}

// Request выполняет запрос через BotClient.
func (bc *BotClient) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	if bc == nil || bc.api == nil {
		return nil, fmt.Errorf("BotClient или его API не инициализирован")
	}
	return bc.api.Request(c)
}

// SendText отправляет простое текстовое сообщение без клавиатуры.
// Используется диспетчером уведомлений.
func (bc *BotClient) SendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := bc.Send(msg)
	return err
}

// EditText редактирует текст существующего сообщения (обновление карточки
// заявки "на месте"). Клавиатура при этом снимается.
func (bc *BotClient) EditText(chatID int64, messageID int, text string) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	_, err := bc.Request(edit)
	return err
}
