package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poputchik/internal/constants"
	"poputchik/internal/models"
)

func sampleRoute() models.Route {
	return models.Route{
		ID: 7, UserID: 100,
		FromLocation: "Москва", ToLocation: "Тверь",
		DateDMY: "15.09.2026", TimeHM: "08:00",
		Price: 700, Seats: 3, Comment: "Встреча у метро",
		IsActive: true,
	}
}

func TestStageRecordsOldValueFromSnapshot(t *testing.T) {
	es := NewEditSession(100, sampleRoute())

	es.Stage(constants.FIELD_PRICE, "800")
	es.Stage(constants.FIELD_PRICE, "900")

	changes := es.Changes()
	require.Len(t, changes, 1)
	// Старое значение считается от снимка, а не от промежуточной правки
	assert.Equal(t, "700", changes[0].OldValue)
	assert.Equal(t, "900", changes[0].NewValue)
}

func TestStagePreservesFieldOrder(t *testing.T) {
	es := NewEditSession(100, sampleRoute())

	es.Stage(constants.FIELD_PRICE, "800")
	es.Stage(constants.FIELD_DATE, "20.09.2026")
	es.Stage(constants.FIELD_PRICE, "900")

	changes := es.Changes()
	require.Len(t, changes, 2)
	assert.Equal(t, constants.FIELD_PRICE, changes[0].Field)
	assert.Equal(t, constants.FIELD_DATE, changes[1].Field)
}

func TestEffectiveValues(t *testing.T) {
	es := NewEditSession(100, sampleRoute())

	assert.Equal(t, "15.09.2026", es.EffectiveDate())
	assert.Equal(t, "08:00", es.EffectiveTime())
	assert.Equal(t, 700, es.EffectivePrice())
	assert.Equal(t, 3, es.EffectiveSeats())

	es.Stage(constants.FIELD_DATE, "20.09.2026")
	es.Stage(constants.FIELD_SEATS, "2")

	assert.Equal(t, "20.09.2026", es.EffectiveDate())
	assert.Equal(t, "08:00", es.EffectiveTime())
	assert.Equal(t, 2, es.EffectiveSeats())
	assert.Equal(t, "Тверь", es.Effective(constants.FIELD_TO_LOCATION))
}

func TestNetChangesDropsNoOps(t *testing.T) {
	es := NewEditSession(100, sampleRoute())

	es.Stage(constants.FIELD_PRICE, "900")
	es.Stage(constants.FIELD_TIME, "09:30")
	es.Stage(constants.FIELD_PRICE, "700") // вернули исходное

	assert.True(t, es.HasChanges())

	net := es.NetChanges()
	require.Len(t, net, 1)
	assert.Equal(t, constants.FIELD_TIME, net[0].Field)
}

func TestNetChangesEmptyComment(t *testing.T) {
	es := NewEditSession(100, sampleRoute())

	// Удаление комментария — это правка в пустую строку
	es.Stage(constants.FIELD_COMMENT, "")

	net := es.NetChanges()
	require.Len(t, net, 1)
	assert.Equal(t, "Встреча у метро", net[0].OldValue)
	assert.Equal(t, "", net[0].NewValue)
}

func TestPending(t *testing.T) {
	es := NewEditSession(100, sampleRoute())

	_, ok := es.Pending(constants.FIELD_PRICE)
	assert.False(t, ok)

	es.Stage(constants.FIELD_PRICE, "900")
	v, ok := es.Pending(constants.FIELD_PRICE)
	assert.True(t, ok)
	assert.Equal(t, "900", v)
}

func TestManagerEditSessionLifecycle(t *testing.T) {
	sm := NewSessionManager()

	_, ok := sm.GetEditSession(100)
	assert.False(t, ok)

	es := sm.StartEditSession(100, sampleRoute())
	require.NotNil(t, es)
	es.Stage(constants.FIELD_PRICE, "900")

	got, ok := sm.GetEditSession(100)
	require.True(t, ok)
	assert.True(t, got.HasChanges())

	// Повторный вход в редактирование выбрасывает накопленные правки
	fresh := sm.StartEditSession(100, sampleRoute())
	assert.False(t, fresh.HasChanges())

	sm.ClearEditSession(100)
	_, ok = sm.GetEditSession(100)
	assert.False(t, ok)
}

func TestManagerStateHistory(t *testing.T) {
	sm := NewSessionManager()

	assert.Equal(t, constants.STATE_IDLE, sm.GetState(100))

	sm.SetState(100, constants.STATE_ROUTE_CREATE_FROM)
	sm.SetState(100, constants.STATE_ROUTE_CREATE_TO)
	assert.Equal(t, constants.STATE_ROUTE_CREATE_TO, sm.GetState(100))

	assert.Equal(t, constants.STATE_ROUTE_CREATE_FROM, sm.PopState(100))
	assert.Equal(t, constants.STATE_ROUTE_CREATE_FROM, sm.GetState(100))

	sm.ClearState(100)
	assert.Equal(t, constants.STATE_IDLE, sm.GetState(100))
}
