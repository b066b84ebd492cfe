package formatters

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"poputchik/internal/constants"
	"poputchik/internal/models"
	"poputchik/internal/session"
)

func sampleRoute() models.Route {
	return models.Route{
		ID: 7, UserID: 100,
		FromLocation: "Москва", ToLocation: "Тверь",
		DateDMY: "15.09.2026", TimeHM: "08:00",
		Price: 700, Seats: 3, IsActive: true,
	}
}

func TestFormatRouteCard(t *testing.T) {
	r := sampleRoute()
	assert.Equal(t,
		"• 15.09.2026г. 08:00 — Москва → Тверь | цена: 700₽ | мест: 3",
		FormatRouteCard(r))

	r.Comment = "Встреча у метро"
	assert.Equal(t,
		"• 15.09.2026г. 08:00 — Москва → Тверь | цена: 700₽ | мест: 3\n💬 Встреча у метро",
		FormatRouteCard(r))
}

func TestFormatRequestAccepted(t *testing.T) {
	withContact := FormatRequestAccepted(sampleRoute(), "ivan_driver")
	assert.Contains(t, withContact, "🎉 Ваша заявка принята!")
	assert.Contains(t, withContact, "👤 Водитель: @ivan_driver")

	noContact := FormatRequestAccepted(sampleRoute(), "")
	assert.NotContains(t, noContact, "Водитель: @")
}

func changed(original models.Route, stage func(es *session.EditSession)) (models.Route, []session.FieldChange) {
	es := session.NewEditSession(original.UserID, original)
	stage(es)
	changes := es.NetChanges()
	updated := original
	for _, c := range changes {
		switch c.Field {
		case constants.FIELD_FROM_LOCATION:
			updated.FromLocation = c.NewValue
		case constants.FIELD_TO_LOCATION:
			updated.ToLocation = c.NewValue
		case constants.FIELD_DATE:
			updated.DateDMY = c.NewValue
		case constants.FIELD_TIME:
			updated.TimeHM = c.NewValue
		case constants.FIELD_COMMENT:
			updated.Comment = c.NewValue
		}
	}
	return updated, changes
}

func TestChangeNotificationSimpleFields(t *testing.T) {
	original := sampleRoute()
	updated, changes := changed(original, func(es *session.EditSession) {
		es.Stage(constants.FIELD_DATE, "20.09.2026")
		es.Stage(constants.FIELD_PRICE, "900")
	})

	text := FormatRouteChangeNotification(original, updated, changes)

	// Концы не менялись — маршрут в заголовке
	assert.Contains(t, text, "⚠️ МАРШРУТ Москва → Тверь ИЗМЕНЁН!")
	assert.Contains(t, text, "📅 Дату: с 15.09.2026 на 20.09.2026")
	assert.Contains(t, text, "💰 Цену: со 700₽ на 900₽")
	assert.NotContains(t, text, "📍 На:")
	assert.Contains(t, text, "📱 Проверьте детали в \"Мои поездки\"")
}

func TestChangeNotificationEndpoints(t *testing.T) {
	original := sampleRoute()
	updated, changes := changed(original, func(es *session.EditSession) {
		es.Stage(constants.FIELD_FROM_LOCATION, "Зеленоград")
		es.Stage(constants.FIELD_TIME, "09:30")
	})

	text := FormatRouteChangeNotification(original, updated, changes)

	// Концы менялись — заголовок без маршрута, пары старое/новое блоком
	assert.Contains(t, text, "⚠️ МАРШРУТ ИЗМЕНЁН!")
	assert.NotContains(t, text, "МАРШРУТ Москва")
	assert.Contains(t, text, "📍 Маршрут: Москва → Тверь")
	assert.Contains(t, text, "📍 На: Зеленоград → Тверь")
	assert.Contains(t, text, "🕐 Время: с 08:00 на 09:30")
}

func TestChangeNotificationComment(t *testing.T) {
	t.Run("добавлен", func(t *testing.T) {
		original := sampleRoute()
		updated, changes := changed(original, func(es *session.EditSession) {
			es.Stage(constants.FIELD_COMMENT, "Встреча у метро")
		})
		text := FormatRouteChangeNotification(original, updated, changes)
		assert.Contains(t, text, "💬 Комментарий добавлен: Встреча у метро")
	})

	t.Run("удалён", func(t *testing.T) {
		original := sampleRoute()
		original.Comment = "Встреча у метро"
		updated, changes := changed(original, func(es *session.EditSession) {
			es.Stage(constants.FIELD_COMMENT, "")
		})
		text := FormatRouteChangeNotification(original, updated, changes)
		assert.Contains(t, text, "💬 Комментарий удалён")
	})

	t.Run("заменён", func(t *testing.T) {
		original := sampleRoute()
		original.Comment = "Встреча у метро"
		updated, changes := changed(original, func(es *session.EditSession) {
			es.Stage(constants.FIELD_COMMENT, "Выезд от вокзала")
		})
		text := FormatRouteChangeNotification(original, updated, changes)
		assert.Contains(t, text, "💬 Комментарий: с Встреча у метро на Выезд от вокзала")
	})
}

func TestFormatTripCard(t *testing.T) {
	trip := models.Trip{
		RequestID: 1, Status: constants.REQUEST_STATUS_ACCEPTED,
		RouteID: 7, DriverID: 100,
		FromLocation: "Москва", ToLocation: "Тверь",
		DateDMY: "15.09.2026", TimeHM: "08:00",
		Price: 700, Seats: 3, RouteIsActive: true,
	}
	text := FormatTripCard(trip)
	assert.Contains(t, text, "Статус: ✅ Принята")
	assert.NotContains(t, text, "отменён водителем")

	trip.RouteIsActive = false
	text = FormatTripCard(trip)
	assert.Contains(t, text, "❌ Маршрут отменён водителем")
}

func TestFormatCancelConfirmation(t *testing.T) {
	text := FormatCancelConfirmation(sampleRoute(), 3, 1, 2)
	assert.Contains(t, text, "⚠️ Вы уверены?")
	assert.Contains(t, text, "Откликов: 3 человек(а)")
	assert.Contains(t, text, "Принято: 1")
	assert.Contains(t, text, "Ожидает: 2")

	// Без откликов счетчики не показываются
	text = FormatCancelConfirmation(sampleRoute(), 0, 0, 0)
	assert.NotContains(t, text, "Откликов")
}
