package notify

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// recordingSender пишет отправки в память; для chatID из failFor возвращает
// ошибку.
type recordingSender struct {
	sent    []int64
	edits   []int64
	failFor map[int64]bool
}

func (rs *recordingSender) SendText(chatID int64, text string) error {
	if rs.failFor[chatID] {
		return errors.New("forbidden: bot was blocked by the user")
	}
	rs.sent = append(rs.sent, chatID)
	return nil
}

func (rs *recordingSender) EditText(chatID int64, messageID int, text string) error {
	if rs.failFor[chatID] {
		return errors.New("message to edit not found")
	}
	rs.edits = append(rs.edits, chatID)
	return nil
}

func TestBroadcastContinuesAfterFailure(t *testing.T) {
	sender := &recordingSender{failFor: map[int64]bool{200: true}}
	d := NewDispatcher(sender, 0)

	sent := d.Broadcast([]int64{100, 200, 300}, "текст")

	// Заблокировавший бота получатель пропускается, остальные получают
	assert.Equal(t, 2, sent)
	assert.Equal(t, []int64{100, 300}, sender.sent)
}

func TestBroadcastEmpty(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, 0)
	assert.Zero(t, d.Broadcast(nil, "текст"))
}

func TestSendReturnsError(t *testing.T) {
	sender := &recordingSender{failFor: map[int64]bool{200: true}}
	d := NewDispatcher(sender, 0)

	assert.Error(t, d.Send(200, "текст"))
	assert.NoError(t, d.Send(100, "текст"))
}

func TestEditCardSkipsZeroMessageID(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, 0)

	d.EditCard(100, 0, "текст")
	assert.Empty(t, sender.edits)

	d.EditCard(100, 5, "текст")
	assert.Equal(t, []int64{100}, sender.edits)
}
