// Пакет notify — доставка уведомлений "на лучших усилиях": ошибка отправки
// одному получателю логируется и не влияет ни на остальных получателей,
// ни на уже зафиксированное изменение данных.
package notify

import (
	"log"
	"time"
)

// Sender — транспорт доставки. В проде это telegram_api.BotClient,
// в тестах — запись в память.
type Sender interface {
	SendText(chatID int64, text string) error
	EditText(chatID int64, messageID int, text string) error
}

// Dispatcher рассылает уведомления последовательно с паузой между отправками,
// чтобы не упираться в лимиты Telegram на рассылку.
type Dispatcher struct {
	sender Sender
	delay  time.Duration
}

// NewDispatcher создает диспетчер. delay — пауза между последовательными
// отправками; 0 допустим (тесты).
func NewDispatcher(sender Sender, delay time.Duration) *Dispatcher {
	return &Dispatcher{sender: sender, delay: delay}
}

// Send отправляет уведомление одному получателю. Ошибка логируется и
// возвращается, но вызывающий код вправе ее игнорировать.
func (d *Dispatcher) Send(chatID int64, text string) error {
	err := d.sender.SendText(chatID, text)
	if err != nil {
		log.Printf("Dispatcher.Send: не доставлено уведомление chatID %d: %v", chatID, err)
	}
	return err
}

// Broadcast отправляет один и тот же текст каждому получателю по очереди.
// Возвращает количество успешно доставленных уведомлений; недоставленные
// не повторяются.
func (d *Dispatcher) Broadcast(chatIDs []int64, text string) int {
	sent := 0
	for i, chatID := range chatIDs {
		if i > 0 && d.delay > 0 {
			time.Sleep(d.delay)
		}
		if err := d.sender.SendText(chatID, text); err != nil {
			log.Printf("Dispatcher.Broadcast: не доставлено уведомление chatID %d: %v", chatID, err)
			continue
		}
		sent++
	}
	if len(chatIDs) > 0 {
		log.Printf("Dispatcher.Broadcast: доставлено %d из %d уведомлений.", sent, len(chatIDs))
	}
	return sent
}

// EditCard обновляет доставленную ранее карточку "на месте". Неуспех не
// критичен: карточка могла быть удалена пользователем.
func (d *Dispatcher) EditCard(chatID int64, messageID int, text string) {
	if messageID == 0 {
		return
	}
	if err := d.sender.EditText(chatID, messageID, text); err != nil {
		log.Printf("Dispatcher.EditCard: не обновлена карточка (chatID %d, msg %d): %v", chatID, messageID, err)
	}
}
