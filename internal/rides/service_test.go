package rides

import (
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poputchik/internal/constants"
	"poputchik/internal/models"
	"poputchik/internal/session"
)

// fakeStore — хранилище в памяти с семантикой пакета db: отсутствие строки —
// sql.ErrNoRows, повторная неотмененная заявка — (0, nil).
type fakeStore struct {
	routes    map[int64]models.Route
	requests  map[int64]models.Request
	users     map[int64]models.User
	nextReqID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		routes:    map[int64]models.Route{},
		requests:  map[int64]models.Request{},
		users:     map[int64]models.User{},
		nextReqID: 1,
	}
}

func (fs *fakeStore) GetRouteByID(routeID int64) (models.Route, error) {
	route, ok := fs.routes[routeID]
	if !ok {
		return models.Route{}, sql.ErrNoRows
	}
	return route, nil
}

func (fs *fakeStore) UpdateRoute(routeID int64, upd models.RouteUpdate) error {
	route, ok := fs.routes[routeID]
	if !ok {
		return sql.ErrNoRows
	}
	if upd.FromLocation != nil {
		route.FromLocation = *upd.FromLocation
	}
	if upd.ToLocation != nil {
		route.ToLocation = *upd.ToLocation
	}
	if upd.DateDMY != nil {
		route.DateDMY = *upd.DateDMY
	}
	if upd.TimeHM != nil {
		route.TimeHM = *upd.TimeHM
	}
	if upd.Price != nil {
		route.Price = *upd.Price
	}
	if upd.Seats != nil {
		route.Seats = *upd.Seats
	}
	if upd.Comment != nil {
		route.Comment = *upd.Comment
	}
	if upd.IsActive != nil {
		route.IsActive = *upd.IsActive
	}
	fs.routes[routeID] = route
	return nil
}

func (fs *fakeStore) CancelRoute(routeID int64) error {
	route, ok := fs.routes[routeID]
	if !ok {
		return sql.ErrNoRows
	}
	route.IsActive = false
	fs.routes[routeID] = route
	return nil
}

func (fs *fakeStore) GetRouteRequests(routeID int64) ([]models.RequestWithPassenger, error) {
	var out []models.RequestWithPassenger
	for id := int64(1); id < fs.nextReqID; id++ {
		req, ok := fs.requests[id]
		if ok && req.RouteID == routeID {
			out = append(out, models.RequestWithPassenger{Request: req})
		}
	}
	return out, nil
}

func (fs *fakeStore) CreateRequest(routeID, passengerID int64) (int64, error) {
	for _, req := range fs.requests {
		if req.RouteID == routeID && req.PassengerID == passengerID &&
			req.Status != constants.REQUEST_STATUS_CANCELLED {
			return 0, nil
		}
	}
	id := fs.nextReqID
	fs.nextReqID++
	fs.requests[id] = models.Request{
		ID:          id,
		RouteID:     routeID,
		PassengerID: passengerID,
		Status:      constants.REQUEST_STATUS_PENDING,
	}
	return id, nil
}

func (fs *fakeStore) GetRequestByID(requestID int64) (models.Request, error) {
	req, ok := fs.requests[requestID]
	if !ok {
		return models.Request{}, sql.ErrNoRows
	}
	return req, nil
}

func (fs *fakeStore) UpdateRequestStatus(requestID int64, status string) error {
	req, ok := fs.requests[requestID]
	if !ok {
		return sql.ErrNoRows
	}
	req.Status = status
	fs.requests[requestID] = req
	return nil
}

func (fs *fakeStore) UpdateRequestCardInfo(requestID, cardChatID int64, cardMessageID int) error {
	req, ok := fs.requests[requestID]
	if !ok {
		return sql.ErrNoRows
	}
	req.CardChatID = sql.NullInt64{Int64: cardChatID, Valid: true}
	req.CardMessageID = sql.NullInt64{Int64: int64(cardMessageID), Valid: true}
	fs.requests[requestID] = req
	return nil
}

func (fs *fakeStore) GetUserByID(userID int64) (models.User, error) {
	user, ok := fs.users[userID]
	if !ok {
		return models.User{}, sql.ErrNoRows
	}
	return user, nil
}

// sentMessage — одно записанное уведомление.
type sentMessage struct {
	ChatID int64
	Text   string
}

// fakeNotifier пишет уведомления в память, ничего не откладывая.
type fakeNotifier struct {
	sent  []sentMessage
	edits []sentMessage
}

func (fn *fakeNotifier) Send(chatID int64, text string) error {
	fn.sent = append(fn.sent, sentMessage{ChatID: chatID, Text: text})
	return nil
}

func (fn *fakeNotifier) Broadcast(chatIDs []int64, text string) int {
	for _, chatID := range chatIDs {
		fn.sent = append(fn.sent, sentMessage{ChatID: chatID, Text: text})
	}
	return len(chatIDs)
}

func (fn *fakeNotifier) EditCard(chatID int64, messageID int, text string) {
	fn.edits = append(fn.edits, sentMessage{ChatID: chatID, Text: text})
}

func (fn *fakeNotifier) recipients() []int64 {
	var ids []int64
	for _, m := range fn.sent {
		ids = append(ids, m.ChatID)
	}
	return ids
}

const (
	driverID     = int64(100)
	passengerID  = int64(200)
	passengerID2 = int64(300)
	passengerID3 = int64(400)
)

func newTestService() (*Service, *fakeStore, *fakeNotifier) {
	fs := newFakeStore()
	fn := &fakeNotifier{}
	svc := NewService(fs, fn)
	svc.now = func() time.Time {
		return time.Date(2026, 9, 1, 12, 0, 0, 0, time.Local)
	}
	fs.users[driverID] = models.User{
		UserID:     driverID,
		TgUsername: sql.NullString{String: "ivan_driver", Valid: true},
		IsActive:   true,
	}
	fs.routes[1] = models.Route{
		ID: 1, UserID: driverID,
		FromLocation: "Москва", ToLocation: "Тверь",
		DateDMY: "15.09.2026", TimeHM: "08:00",
		Price: 700, Seats: 3, IsActive: true,
	}
	return svc, fs, fn
}

func TestReplyCreatesRequest(t *testing.T) {
	svc, fs, _ := newTestService()

	route, requestID, err := svc.Reply(1, passengerID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), route.ID)
	assert.NotZero(t, requestID)
	assert.Equal(t, constants.REQUEST_STATUS_PENDING, fs.requests[requestID].Status)
	// Место списывается только при принятии, не при отклике
	assert.Equal(t, 3, fs.routes[1].Seats)
}

func TestReplyPreconditions(t *testing.T) {
	svc, fs, _ := newTestService()

	_, _, err := svc.Reply(999, passengerID)
	assert.ErrorIs(t, err, ErrRouteNotFound)

	_, _, err = svc.Reply(1, driverID)
	assert.ErrorIs(t, err, ErrOwnRoute)

	route := fs.routes[1]
	route.Seats = 0
	fs.routes[1] = route
	_, _, err = svc.Reply(1, passengerID)
	assert.ErrorIs(t, err, ErrNoSeats)

	route.Seats = 3
	route.IsActive = false
	fs.routes[1] = route
	_, _, err = svc.Reply(1, passengerID)
	assert.ErrorIs(t, err, ErrRouteInactive)
}

func TestReplyDuplicate(t *testing.T) {
	svc, _, _ := newTestService()

	_, _, err := svc.Reply(1, passengerID)
	require.NoError(t, err)

	_, _, err = svc.Reply(1, passengerID)
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestReplyAllowedAfterCancellation(t *testing.T) {
	svc, _, _ := newTestService()

	_, requestID, err := svc.Reply(1, passengerID)
	require.NoError(t, err)
	require.NoError(t, svc.CancelRequest(requestID, passengerID))

	// Отмененная заявка не блокирует новый отклик
	_, secondID, err := svc.Reply(1, passengerID)
	require.NoError(t, err)
	assert.NotEqual(t, requestID, secondID)
}

func TestAcceptDecrementsSeat(t *testing.T) {
	svc, fs, fn := newTestService()
	_, requestID, err := svc.Reply(1, passengerID)
	require.NoError(t, err)

	seatsLeft, err := svc.Accept(requestID, driverID)
	require.NoError(t, err)
	assert.Equal(t, 2, seatsLeft)
	assert.Equal(t, 2, fs.routes[1].Seats)
	assert.Equal(t, constants.REQUEST_STATUS_ACCEPTED, fs.requests[requestID].Status)

	require.Len(t, fn.sent, 1)
	assert.Equal(t, passengerID, fn.sent[0].ChatID)
	assert.Contains(t, fn.sent[0].Text, "принята")
	assert.Contains(t, fn.sent[0].Text, "@ivan_driver")
}

func TestDecisionIsFinal(t *testing.T) {
	svc, fs, _ := newTestService()
	_, requestID, err := svc.Reply(1, passengerID)
	require.NoError(t, err)

	_, err = svc.Accept(requestID, driverID)
	require.NoError(t, err)

	_, err = svc.Accept(requestID, driverID)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
	err = svc.Reject(requestID, driverID)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)

	// Повторные решения не трогают счетчик мест
	assert.Equal(t, 2, fs.routes[1].Seats)
}

func TestAcceptNoSeats(t *testing.T) {
	svc, fs, _ := newTestService()
	_, requestID, err := svc.Reply(1, passengerID)
	require.NoError(t, err)

	route := fs.routes[1]
	route.Seats = 0
	fs.routes[1] = route

	_, err = svc.Accept(requestID, driverID)
	assert.ErrorIs(t, err, ErrNoSeats)
	assert.Equal(t, constants.REQUEST_STATUS_PENDING, fs.requests[requestID].Status)
}

func TestAcceptForeignRoute(t *testing.T) {
	svc, _, _ := newTestService()
	_, requestID, err := svc.Reply(1, passengerID)
	require.NoError(t, err)

	_, err = svc.Accept(requestID, passengerID2)
	assert.ErrorIs(t, err, ErrNotYourRoute)
}

func TestRejectKeepsSeats(t *testing.T) {
	svc, fs, fn := newTestService()
	_, requestID, err := svc.Reply(1, passengerID)
	require.NoError(t, err)

	require.NoError(t, svc.Reject(requestID, driverID))
	assert.Equal(t, 3, fs.routes[1].Seats)
	assert.Equal(t, constants.REQUEST_STATUS_REJECTED, fs.requests[requestID].Status)

	require.Len(t, fn.sent, 1)
	assert.Equal(t, passengerID, fn.sent[0].ChatID)
	assert.Contains(t, fn.sent[0].Text, "отклонена")
}

func TestCancelRequestRestoresSeatOnlyIfAccepted(t *testing.T) {
	t.Run("ожидающая заявка место не возвращает", func(t *testing.T) {
		svc, fs, _ := newTestService()
		_, requestID, err := svc.Reply(1, passengerID)
		require.NoError(t, err)

		require.NoError(t, svc.CancelRequest(requestID, passengerID))
		assert.Equal(t, 3, fs.routes[1].Seats)
	})

	t.Run("принятая заявка возвращает место", func(t *testing.T) {
		svc, fs, _ := newTestService()
		_, requestID, err := svc.Reply(1, passengerID)
		require.NoError(t, err)
		_, err = svc.Accept(requestID, driverID)
		require.NoError(t, err)
		require.Equal(t, 2, fs.routes[1].Seats)

		require.NoError(t, svc.CancelRequest(requestID, passengerID))
		assert.Equal(t, 3, fs.routes[1].Seats)
	})
}

func TestCancelRequestOwnership(t *testing.T) {
	svc, _, _ := newTestService()
	_, requestID, err := svc.Reply(1, passengerID)
	require.NoError(t, err)

	err = svc.CancelRequest(requestID, passengerID2)
	assert.ErrorIs(t, err, ErrNotYourRequest)
}

func TestCancelRequestTerminalStatuses(t *testing.T) {
	svc, _, _ := newTestService()
	_, requestID, err := svc.Reply(1, passengerID)
	require.NoError(t, err)
	require.NoError(t, svc.Reject(requestID, driverID))

	err = svc.CancelRequest(requestID, passengerID)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestSeatConservationCycle(t *testing.T) {
	svc, fs, _ := newTestService()

	// Принятие/отмена по кругу не должны ни терять, ни создавать места
	for i := 0; i < 3; i++ {
		_, requestID, err := svc.Reply(1, passengerID)
		require.NoError(t, err)
		_, err = svc.Accept(requestID, driverID)
		require.NoError(t, err)
		require.NoError(t, svc.CancelRequest(requestID, passengerID))
	}
	assert.Equal(t, 3, fs.routes[1].Seats)
}

// setupRequests создает по одной заявке в каждом статусе.
func setupRequests(t *testing.T, svc *Service) {
	t.Helper()
	_, pendingID, err := svc.Reply(1, passengerID)
	require.NoError(t, err)
	_ = pendingID

	_, acceptedID, err := svc.Reply(1, passengerID2)
	require.NoError(t, err)
	_, err = svc.Accept(acceptedID, driverID)
	require.NoError(t, err)

	_, rejectedID, err := svc.Reply(1, passengerID3)
	require.NoError(t, err)
	require.NoError(t, svc.Reject(rejectedID, driverID))
}

func TestCancelRouteNotifiesPendingAndAccepted(t *testing.T) {
	svc, fs, fn := newTestService()
	setupRequests(t, svc)
	fn.sent = nil

	sent, err := svc.CancelRoute(1, driverID)
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	assert.False(t, fs.routes[1].IsActive)

	// Ожидающий и принятый уведомлены, отклоненный — нет
	assert.ElementsMatch(t, []int64{passengerID, passengerID2}, fn.recipients())
	for _, m := range fn.sent {
		assert.Contains(t, m.Text, "ОТМЕНЁН")
	}
}

func TestCancelRouteOwnershipAndState(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.CancelRoute(1, passengerID)
	assert.ErrorIs(t, err, ErrNotYourRoute)

	_, err = svc.CancelRoute(1, driverID)
	require.NoError(t, err)
	_, err = svc.CancelRoute(1, driverID)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestRestoreRouteNotifiesAcceptedOnly(t *testing.T) {
	svc, fs, fn := newTestService()
	setupRequests(t, svc)
	_, err := svc.CancelRoute(1, driverID)
	require.NoError(t, err)
	seatsBefore := fs.routes[1].Seats
	fn.sent = nil

	sent, err := svc.RestoreRoute(1, driverID)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.True(t, fs.routes[1].IsActive)
	// Счетчик мест при восстановлении не пересчитывается
	assert.Equal(t, seatsBefore, fs.routes[1].Seats)

	assert.Equal(t, []int64{passengerID2}, fn.recipients())
	assert.Contains(t, fn.sent[0].Text, "ВОССТАНОВЛЕН")
}

func TestRestoreActiveRoute(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.RestoreRoute(1, driverID)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestStagedEditsInvisibleUntilCommit(t *testing.T) {
	svc, fs, fn := newTestService()
	setupRequests(t, svc)
	fn.sent = nil

	es := session.NewEditSession(driverID, fs.routes[1])
	es.Stage(constants.FIELD_PRICE, "900")
	es.Stage(constants.FIELD_TO_LOCATION, "Клин")

	// До фиксации маршрут в хранилище не изменен, уведомлений нет;
	// "Отмена" — это просто выброшенный сеанс.
	assert.Equal(t, 700, fs.routes[1].Price)
	assert.Equal(t, "Тверь", fs.routes[1].ToLocation)
	assert.Empty(t, fn.sent)
}

func TestCommitEditAppliesBatchAndNotifies(t *testing.T) {
	svc, fs, fn := newTestService()
	setupRequests(t, svc)
	fn.sent = nil

	es := session.NewEditSession(driverID, fs.routes[1])
	es.Stage(constants.FIELD_PRICE, "900")
	es.Stage(constants.FIELD_DATE, "20.09.2026")

	changes, sent, err := svc.CommitEdit(es, driverID)
	require.NoError(t, err)
	assert.Len(t, changes, 2)
	assert.Equal(t, 1, sent)

	assert.Equal(t, 900, fs.routes[1].Price)
	assert.Equal(t, "20.09.2026", fs.routes[1].DateDMY)

	// Одно сводное уведомление, только принятому пассажиру
	require.Len(t, fn.sent, 1)
	assert.Equal(t, passengerID2, fn.sent[0].ChatID)
	assert.Contains(t, fn.sent[0].Text, "ИЗМЕНЁН")
	assert.Contains(t, fn.sent[0].Text, "со 700₽ на 900₽")
	assert.Contains(t, fn.sent[0].Text, "с 15.09.2026 на 20.09.2026")
}

func TestCommitEditEndpointsBlock(t *testing.T) {
	svc, fs, fn := newTestService()
	setupRequests(t, svc)
	fn.sent = nil

	es := session.NewEditSession(driverID, fs.routes[1])
	es.Stage(constants.FIELD_FROM_LOCATION, "Зеленоград")
	es.Stage(constants.FIELD_TO_LOCATION, "Клин")

	_, _, err := svc.CommitEdit(es, driverID)
	require.NoError(t, err)

	require.Len(t, fn.sent, 1)
	assert.Contains(t, fn.sent[0].Text, "📍 Маршрут: Москва → Зеленоград")
	assert.Contains(t, fn.sent[0].Text, "📍 На: Тверь → Клин")
}

func TestCommitEditNoNetChanges(t *testing.T) {
	svc, fs, fn := newTestService()
	setupRequests(t, svc)
	fn.sent = nil
	priceBefore := fs.routes[1].Price

	es := session.NewEditSession(driverID, fs.routes[1])
	es.Stage(constants.FIELD_PRICE, "900")
	es.Stage(constants.FIELD_PRICE, "700") // вернули исходное

	changes, sent, err := svc.CommitEdit(es, driverID)
	require.NoError(t, err)
	assert.Empty(t, changes)
	assert.Zero(t, sent)
	assert.Equal(t, priceBefore, fs.routes[1].Price)
	assert.Empty(t, fn.sent)
}

func TestCommitEditPastTimeGuard(t *testing.T) {
	svc, fs, fn := newTestService()
	setupRequests(t, svc)
	fn.sent = nil

	// Дата остается исходной, новое время делает пару прошедшей
	svc.now = func() time.Time {
		return time.Date(2026, 9, 15, 10, 0, 0, 0, time.Local)
	}
	es := session.NewEditSession(driverID, fs.routes[1])
	es.Stage(constants.FIELD_TIME, "09:00")

	_, _, err := svc.CommitEdit(es, driverID)
	assert.ErrorIs(t, err, ErrPastTime)

	// Хранилище не тронуто, уведомлений нет, сеанс можно править дальше
	assert.Equal(t, "08:00", fs.routes[1].TimeHM)
	assert.Empty(t, fn.sent)
	assert.True(t, es.HasChanges())
}

func TestCommitEditOwnership(t *testing.T) {
	svc, fs, _ := newTestService()
	es := session.NewEditSession(driverID, fs.routes[1])
	es.Stage(constants.FIELD_PRICE, "900")

	_, _, err := svc.CommitEdit(es, passengerID)
	assert.ErrorIs(t, err, ErrNotYourRoute)
}

func TestAcceptUpdatesPassengerCard(t *testing.T) {
	svc, _, fn := newTestService()
	_, requestID, err := svc.Reply(1, passengerID)
	require.NoError(t, err)
	require.NoError(t, svc.RecordCard(requestID, passengerID, 555))

	_, err = svc.Accept(requestID, driverID)
	require.NoError(t, err)

	require.Len(t, fn.edits, 1)
	assert.Equal(t, passengerID, fn.edits[0].ChatID)
	assert.True(t, strings.Contains(fn.edits[0].Text, "Принята"))
	// Карточка показывает уже списанное место
	assert.Contains(t, fn.edits[0].Text, "мест: 2")
}
