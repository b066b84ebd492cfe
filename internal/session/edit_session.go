// Файл: internal/session/edit_session.go
package session

import (
	"strconv"

	"poputchik/internal/constants"
	"poputchik/internal/models"
)

// FieldChange — одно отложенное изменение поля маршрута. Значения хранятся
// строками (как введены пользователем, уже после валидации); старое значение
// берется из снимка маршрута на момент входа в режим редактирования.
type FieldChange struct {
	Field    string
	OldValue string
	NewValue string
}

// EditSession — сеанс редактирования маршрута водителем. Все правки копятся
// здесь и НЕ видны ни в БД, ни пассажирам до явного подтверждения ("Готово").
// "Отмена" просто выбрасывает сеанс — маршрут остается прежним.
type EditSession struct {
	RouteID  int64
	DriverID int64

	// Снимок маршрута на момент входа в редактирование. Старые значения в
	// уведомлениях об изменениях считаются от него, а не от промежуточных
	// правок.
	Original models.Route

	changes []FieldChange // в порядке первого изменения каждого поля
}

// NewEditSession открывает сеанс редактирования поверх снимка маршрута.
func NewEditSession(driverID int64, route models.Route) *EditSession {
	return &EditSession{
		RouteID:  route.ID,
		DriverID: driverID,
		Original: route,
	}
}

// originalValue возвращает значение поля из снимка маршрута строкой.
func (es *EditSession) originalValue(field string) string {
	switch field {
	case constants.FIELD_FROM_LOCATION:
		return es.Original.FromLocation
	case constants.FIELD_TO_LOCATION:
		return es.Original.ToLocation
	case constants.FIELD_DATE:
		return es.Original.DateDMY
	case constants.FIELD_TIME:
		return es.Original.TimeHM
	case constants.FIELD_PRICE:
		return strconv.Itoa(es.Original.Price)
	case constants.FIELD_SEATS:
		return strconv.Itoa(es.Original.Seats)
	case constants.FIELD_COMMENT:
		return es.Original.Comment
	}
	return ""
}

// Stage откладывает изменение поля. Повторное изменение того же поля
// заменяет отложенное значение, позиция поля в списке сохраняется.
func (es *EditSession) Stage(field, newValue string) {
	for i := range es.changes {
		if es.changes[i].Field == field {
			es.changes[i].NewValue = newValue
			return
		}
	}
	es.changes = append(es.changes, FieldChange{
		Field:    field,
		OldValue: es.originalValue(field),
		NewValue: newValue,
	})
}

// Pending возвращает отложенное значение поля и признак его наличия.
func (es *EditSession) Pending(field string) (string, bool) {
	for _, c := range es.changes {
		if c.Field == field {
			return c.NewValue, true
		}
	}
	return "", false
}

// Effective возвращает отложенное значение поля, а при его отсутствии —
// значение из снимка. Меню редактирования показывает именно эти значения.
func (es *EditSession) Effective(field string) string {
	if v, ok := es.Pending(field); ok {
		return v
	}
	return es.originalValue(field)
}

// EffectiveDate — дата (ДД.ММ.ГГГГ) с учетом отложенных правок.
func (es *EditSession) EffectiveDate() string { return es.Effective(constants.FIELD_DATE) }

// EffectiveTime — время (ЧЧ:ММ) с учетом отложенных правок.
func (es *EditSession) EffectiveTime() string { return es.Effective(constants.FIELD_TIME) }

// EffectivePrice — цена с учетом отложенных правок.
func (es *EditSession) EffectivePrice() int {
	if v, ok := es.Pending(constants.FIELD_PRICE); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return es.Original.Price
}

// EffectiveSeats — число мест с учетом отложенных правок.
func (es *EditSession) EffectiveSeats() int {
	if v, ok := es.Pending(constants.FIELD_SEATS); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return es.Original.Seats
}

// HasChanges сообщает, есть ли хотя бы одно отложенное изменение
// (включая изменения "в исходное значение").
func (es *EditSession) HasChanges() bool {
	return len(es.changes) > 0
}

// Changes возвращает копию списка отложенных изменений в порядке их
// первого появления.
func (es *EditSession) Changes() []FieldChange {
	out := make([]FieldChange, len(es.changes))
	copy(out, es.changes)
	return out
}

// NetChanges возвращает изменения без "пустых" правок, где новое значение
// совпало со старым. Именно они применяются к маршруту и попадают в
// уведомление пассажирам.
func (es *EditSession) NetChanges() []FieldChange {
	var out []FieldChange
	for _, c := range es.changes {
		if c.NewValue != c.OldValue {
			out = append(out, c)
		}
	}
	return out
}
