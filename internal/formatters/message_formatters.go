package formatters

import (
	"fmt"
	"strings"

	"poputchik/internal/constants"
	"poputchik/internal/models"
	"poputchik/internal/session"
)

// StatusDisplayMap — отображаемые названия статусов заявки.
var StatusDisplayMap = map[string]string{
	constants.REQUEST_STATUS_PENDING:   "⏳ Ожидает ответа",
	constants.REQUEST_STATUS_ACCEPTED:  "✅ Принята",
	constants.REQUEST_STATUS_REJECTED:  "❌ Отклонена",
	constants.REQUEST_STATUS_CANCELLED: "🚫 Отменена",
}

// FormatRouteLine — однострочная сводка маршрута, используется во всех
// карточках и списках.
func FormatRouteLine(r models.Route) string {
	return fmt.Sprintf("• %sг. %s — %s → %s | цена: %d₽ | мест: %d",
		r.DateDMY, r.TimeHM, r.FromLocation, r.ToLocation, r.Price, r.Seats)
}

// FormatRouteCard — карточка маршрута: сводка плюс комментарий, если есть.
func FormatRouteCard(r models.Route) string {
	card := FormatRouteLine(r)
	if r.Comment != "" {
		card += "\n💬 " + r.Comment
	}
	return card
}

// FormatRouteCardWithStatus — карточка маршрута с финальной строкой статуса
// (например, "❌ Отменена").
func FormatRouteCardWithStatus(r models.Route, statusLine string) string {
	return FormatRouteCard(r) + "\n\n" + statusLine
}

// FormatNewRequestForDriver — уведомление водителю о новой заявке.
func FormatNewRequestForDriver(r models.Route, passengerUsername string) string {
	if passengerUsername == "" {
		passengerUsername = "пассажир"
	}
	return fmt.Sprintf(
		"🔔 Новая заявка на маршрут!\n\n"+
			"📍 Маршрут: %s → %s\n"+
			"📅 Дата: %sг.\n"+
			"🕐 Время: %s\n"+
			"💰 Цена: %d₽\n\n"+
			"👤 Пассажир: @%s\n\n"+
			"Принять заявку?",
		r.FromLocation, r.ToLocation, r.DateDMY, r.TimeHM, r.Price, passengerUsername)
}

// FormatRequestAccepted — уведомление пассажиру о принятой заявке.
// Контакт водителя добавляется, если у того задан username.
func FormatRequestAccepted(r models.Route, driverUsername string) string {
	driverContact := ""
	if driverUsername != "" {
		driverContact = fmt.Sprintf("👤 Водитель: @%s\n\n", driverUsername)
	}
	return fmt.Sprintf(
		"🎉 Ваша заявка принята!\n\n"+
			"📍 Маршрут: %s → %s\n"+
			"📅 Дата: %sг.\n"+
			"🕐 Время: %s\n"+
			"💰 Цена: %d₽\n\n"+
			"%s"+
			"Водитель подтвердил вашу поездку. Свяжитесь с ним для уточнения деталей.",
		r.FromLocation, r.ToLocation, r.DateDMY, r.TimeHM, r.Price, driverContact)
}

// FormatRequestRejected — уведомление пассажиру об отклоненной заявке.
func FormatRequestRejected(r models.Route) string {
	return fmt.Sprintf(
		"😔 Ваша заявка отклонена\n\n"+
			"📍 Маршрут: %s → %s\n\n"+
			"К сожалению, водитель не смог принять вашу заявку. Попробуйте найти другой маршрут.",
		r.FromLocation, r.ToLocation)
}

// AppendAcceptedDecision дописывает строку решения к сообщению водителя
// (редактирование "на месте").
func AppendAcceptedDecision(driverMessageText string, seatsLeft int) string {
	return fmt.Sprintf("%s\n\n✅ Заявка принята!\nОсталось мест: %d", driverMessageText, seatsLeft)
}

// AppendRejectedDecision дописывает строку решения к сообщению водителя.
func AppendRejectedDecision(driverMessageText string) string {
	return driverMessageText + "\n\n❌ Заявка отклонена"
}

// FormatPassengerCancelledForDriver — уведомление водителю об отмене
// поездки пассажиром.
func FormatPassengerCancelledForDriver(r models.Route, passengerUsername string) string {
	if passengerUsername == "" {
		passengerUsername = "Пассажир"
	}
	return fmt.Sprintf(
		"🚫 Пассажир отменил поездку\n\n"+
			"📍 Маршрут: %s → %s\n"+
			"👤 Пассажир: @%s",
		r.FromLocation, r.ToLocation, passengerUsername)
}

// FormatRouteCancelledForPassenger — уведомление пассажиру об отмене маршрута.
func FormatRouteCancelledForPassenger(r models.Route) string {
	return fmt.Sprintf(
		"❌ МАРШРУТ %s → %s ОТМЕНЁН!\n\n"+
			"Дата: %s\n"+
			"Время: %s\n\n"+
			"К сожалению, водитель отменил этот маршрут.\n\n"+
			"📱 Попробуйте найти другой в разделе \"Найти маршрут\"",
		r.FromLocation, r.ToLocation, r.DateDMY, r.TimeHM)
}

// FormatRouteRestoredForPassenger — уведомление пассажиру о восстановлении
// маршрута.
func FormatRouteRestoredForPassenger(r models.Route) string {
	return fmt.Sprintf(
		"✅ МАРШРУТ %s → %s ВОССТАНОВЛЕН!\n\n"+
			"Дата: %s\n"+
			"Время: %s\n\n"+
			"Водитель восстановил этот маршрут.\n\n"+
			"📱 Проверьте детали в \"Мои поездки\"",
		r.FromLocation, r.ToLocation, r.DateDMY, r.TimeHM)
}

// FormatCancelConfirmation — вопрос водителю перед отменой маршрута,
// со счетчиками откликов.
func FormatCancelConfirmation(r models.Route, totalCount, acceptedCount, pendingCount int) string {
	var b strings.Builder
	b.WriteString("⚠️ Вы уверены?\n\n")
	b.WriteString(fmt.Sprintf("Маршрут: %s → %s\n", r.FromLocation, r.ToLocation))
	b.WriteString(fmt.Sprintf("Дата: %sг. %s\n\n", r.DateDMY, r.TimeHM))
	if totalCount > 0 {
		b.WriteString(fmt.Sprintf("Откликов: %d человек(а)\n", totalCount))
		if acceptedCount > 0 {
			b.WriteString(fmt.Sprintf("Принято: %d\n", acceptedCount))
		}
		if pendingCount > 0 {
			b.WriteString(fmt.Sprintf("Ожидает: %d\n", pendingCount))
		}
	}
	return b.String()
}

// FormatRouteChangeNotification собирает единое уведомление пассажиру по
// списку применённых изменений маршрута.
//
// Изменение концов маршрута ("Откуда"/"Куда") показывается блоком
// старая-пара/новая-пара; остальные поля — строками "с X на Y" в порядке,
// в котором водитель их менял. Если концы не менялись, маршрут выносится
// в заголовок.
func FormatRouteChangeNotification(original, updated models.Route, changes []session.FieldChange) string {
	endpointsChanged := false
	for _, c := range changes {
		if c.Field == constants.FIELD_FROM_LOCATION || c.Field == constants.FIELD_TO_LOCATION {
			endpointsChanged = true
			break
		}
	}

	var b strings.Builder
	if endpointsChanged {
		b.WriteString("⚠️ МАРШРУТ ИЗМЕНЁН!\n\n")
	} else {
		b.WriteString(fmt.Sprintf("⚠️ МАРШРУТ %s → %s ИЗМЕНЁН!\n\n", updated.FromLocation, updated.ToLocation))
	}
	b.WriteString("Водитель изменил:\n")

	if endpointsChanged {
		b.WriteString(fmt.Sprintf("📍 Маршрут: %s → %s\n", original.FromLocation, original.ToLocation))
		b.WriteString(fmt.Sprintf("📍 На: %s → %s\n", updated.FromLocation, updated.ToLocation))
	}

	for _, c := range changes {
		switch c.Field {
		case constants.FIELD_FROM_LOCATION, constants.FIELD_TO_LOCATION:
			// Концы маршрута уже показаны блоком выше
		case constants.FIELD_DATE:
			b.WriteString(fmt.Sprintf("📅 Дату: с %s на %s\n", c.OldValue, c.NewValue))
		case constants.FIELD_TIME:
			b.WriteString(fmt.Sprintf("🕐 Время: с %s на %s\n", c.OldValue, c.NewValue))
		case constants.FIELD_PRICE:
			b.WriteString(fmt.Sprintf("💰 Цену: со %s₽ на %s₽\n", c.OldValue, c.NewValue))
		case constants.FIELD_SEATS:
			b.WriteString(fmt.Sprintf("👥 Количество мест: с %s на %s\n", c.OldValue, c.NewValue))
		case constants.FIELD_COMMENT:
			switch {
			case c.NewValue != "" && c.OldValue != "":
				b.WriteString(fmt.Sprintf("💬 Комментарий: с %s на %s\n", c.OldValue, c.NewValue))
			case c.NewValue != "":
				b.WriteString(fmt.Sprintf("💬 Комментарий добавлен: %s\n", c.NewValue))
			default:
				b.WriteString("💬 Комментарий удалён\n")
			}
		}
	}

	b.WriteString("\n📱 Проверьте детали в \"Мои поездки\"")
	return b.String()
}

// FormatTripCard — карточка поездки в разделе "Мои поездки".
func FormatTripCard(t models.Trip) string {
	r := models.Route{
		ID: t.RouteID, UserID: t.DriverID,
		FromLocation: t.FromLocation, ToLocation: t.ToLocation,
		DateDMY: t.DateDMY, TimeHM: t.TimeHM,
		Price: t.Price, Seats: t.Seats, Comment: t.Comment,
	}
	card := FormatRouteCard(r)
	card += "\n\nСтатус: " + StatusDisplayMap[t.Status]
	if !t.RouteIsActive {
		card += "\n❌ Маршрут отменён водителем"
	}
	return card
}

// FormatDriverProfile — публичный профиль водителя для пассажира.
func FormatDriverProfile(u models.User, profile models.UserProfile) string {
	var b strings.Builder
	b.WriteString("👤 ПРОФИЛЬ ВОДИТЕЛЯ\n\n")
	name := u.DisplayName.String
	if name == "" {
		name = "Не указано"
	}
	b.WriteString("Имя: " + name + "\n")
	if u.TgUsername.String != "" {
		b.WriteString("Контакт: @" + u.TgUsername.String + "\n")
	}
	if u.Bio.String != "" {
		b.WriteString("\nО себе: " + u.Bio.String + "\n")
	}
	b.WriteString(fmt.Sprintf("\nАктивных маршрутов: %d\n", profile.RoutesCount))
	b.WriteString(fmt.Sprintf("Поездок как пассажир: %d", profile.TripsCount))
	return b.String()
}
