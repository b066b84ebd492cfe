package session

import (
	"log"
	"sync"

	"poputchik/internal/constants"
	"poputchik/internal/models"
)

// SessionManager управляет состояниями пользователей, временными данными
// мастеров и сеансами редактирования маршрутов.
type SessionManager struct {
	userStates     map[int64]string   // Ключ: chatID, значение: текущее состояние (например, constants.STATE_ROUTE_CREATE_FROM)
	userStateMutex sync.RWMutex       // Защищает userStates и userHistory
	userHistory    map[int64][]string // Ключ: chatID, значение: история состояний

	tempRoutes      map[int64]TempRouteData // Ключ: chatID пользователя, ведущего мастер
	tempRoutesMutex sync.RWMutex

	// Сеанс редактирования маршрута. Один на чат водителя: вход в
	// редактирование другого маршрута сбрасывает предыдущий сеанс.
	editSessions      map[int64]*EditSession
	editSessionsMutex sync.RWMutex

	// Кэш сообщений, которые были удалены или для которых была предпринята
	// попытка удаления. Избавляет от повторных запросов к API Telegram.
	deletedMessages         map[int64]map[int]bool
	deletedMessagesMutex    map[int64]*sync.RWMutex // По одному мьютексу на чат
	deletedMessagesMapMutex sync.Mutex              // Защищает саму карту мьютексов
}

// NewSessionManager создает и возвращает новый экземпляр SessionManager.
func NewSessionManager() *SessionManager {
	return &SessionManager{
		userStates:           make(map[int64]string),
		userHistory:          make(map[int64][]string),
		tempRoutes:           make(map[int64]TempRouteData),
		editSessions:         make(map[int64]*EditSession),
		deletedMessages:      make(map[int64]map[int]bool),
		deletedMessagesMutex: make(map[int64]*sync.RWMutex),
	}
}

// --- Управление состоянием пользователя ---

// GetState возвращает текущее состояние пользователя.
// Если состояние не установлено, возвращает STATE_IDLE.
func (sm *SessionManager) GetState(chatID int64) string {
	sm.userStateMutex.RLock()
	defer sm.userStateMutex.RUnlock()
	state, ok := sm.userStates[chatID]
	if !ok {
		return constants.STATE_IDLE
	}
	return state
}

// SetState устанавливает новое состояние пользователя и добавляет его в историю.
func (sm *SessionManager) SetState(chatID int64, state string) {
	sm.userStateMutex.Lock()
	defer sm.userStateMutex.Unlock()

	sm.userStates[chatID] = state
	if _, exists := sm.userHistory[chatID]; !exists {
		sm.userHistory[chatID] = []string{}
	}
	// Не дублируем последнее состояние в истории
	historyLen := len(sm.userHistory[chatID])
	if historyLen == 0 || sm.userHistory[chatID][historyLen-1] != state {
		sm.userHistory[chatID] = append(sm.userHistory[chatID], state)
	}
	log.Printf("SessionManager.SetState: Состояние для chatID %d установлено: %s", chatID, state)
}

// PopState удаляет последнее состояние из истории и делает текущим предыдущее.
// Возвращает новое текущее состояние; при пустой истории — STATE_IDLE.
func (sm *SessionManager) PopState(chatID int64) string {
	sm.userStateMutex.Lock()
	defer sm.userStateMutex.Unlock()

	history, ok := sm.userHistory[chatID]
	if ok && len(history) > 1 {
		sm.userHistory[chatID] = history[:len(history)-1]
		newState := sm.userHistory[chatID][len(sm.userHistory[chatID])-1]
		sm.userStates[chatID] = newState
		log.Printf("SessionManager.PopState: Для chatID %d новое состояние: %s", chatID, newState)
		return newState
	}

	sm.userStates[chatID] = constants.STATE_IDLE
	sm.userHistory[chatID] = []string{constants.STATE_IDLE}
	return constants.STATE_IDLE
}

// GetHistory возвращает копию истории состояний пользователя.
func (sm *SessionManager) GetHistory(chatID int64) []string {
	sm.userStateMutex.RLock()
	defer sm.userStateMutex.RUnlock()
	if history, ok := sm.userHistory[chatID]; ok {
		historyCopy := make([]string, len(history))
		copy(historyCopy, history)
		return historyCopy
	}
	return []string{}
}

// ClearState сбрасывает состояние пользователя к STATE_IDLE и очищает историю.
func (sm *SessionManager) ClearState(chatID int64) {
	sm.userStateMutex.Lock()
	defer sm.userStateMutex.Unlock()
	sm.userStates[chatID] = constants.STATE_IDLE
	sm.userHistory[chatID] = []string{constants.STATE_IDLE}
	log.Printf("SessionManager.ClearState: Состояние и история для chatID %d очищены.", chatID)
}

// --- Управление временными данными мастеров ---

// GetTempRoute возвращает временные данные мастера для пользователя.
// Если данных нет, создает новый пустой экземпляр.
func (sm *SessionManager) GetTempRoute(chatID int64) TempRouteData {
	sm.tempRoutesMutex.RLock()
	data, exists := sm.tempRoutes[chatID]
	sm.tempRoutesMutex.RUnlock()

	if !exists {
		newData := NewTempRoute(chatID)
		sm.tempRoutesMutex.Lock()
		sm.tempRoutes[chatID] = newData
		sm.tempRoutesMutex.Unlock()
		return newData
	}
	return data
}

// UpdateTempRoute обновляет временные данные мастера для пользователя.
func (sm *SessionManager) UpdateTempRoute(chatID int64, data TempRouteData) {
	sm.tempRoutesMutex.Lock()
	defer sm.tempRoutesMutex.Unlock()
	sm.tempRoutes[chatID] = data
}

// ClearTempRoute удаляет временные данные мастера для пользователя.
func (sm *SessionManager) ClearTempRoute(chatID int64) {
	sm.tempRoutesMutex.Lock()
	defer sm.tempRoutesMutex.Unlock()
	delete(sm.tempRoutes, chatID)
	log.Printf("SessionManager.ClearTempRoute: Временные данные мастера для chatID %d удалены.", chatID)
}

// --- Управление сеансами редактирования маршрута ---

// StartEditSession открывает новый сеанс редактирования маршрута для чата
// водителя, отбрасывая предыдущий, если он был.
func (sm *SessionManager) StartEditSession(chatID int64, route models.Route) *EditSession {
	es := NewEditSession(chatID, route)
	sm.editSessionsMutex.Lock()
	defer sm.editSessionsMutex.Unlock()
	if old, exists := sm.editSessions[chatID]; exists {
		log.Printf("SessionManager.StartEditSession: Для chatID %d отброшен незакрытый сеанс маршрута %d.", chatID, old.RouteID)
	}
	sm.editSessions[chatID] = es
	log.Printf("SessionManager.StartEditSession: Открыт сеанс редактирования маршрута %d (chatID %d).", route.ID, chatID)
	return es
}

// GetEditSession возвращает текущий сеанс редактирования чата, если он есть.
func (sm *SessionManager) GetEditSession(chatID int64) (*EditSession, bool) {
	sm.editSessionsMutex.RLock()
	defer sm.editSessionsMutex.RUnlock()
	es, ok := sm.editSessions[chatID]
	return es, ok
}

// ClearEditSession закрывает сеанс редактирования чата (подтверждение или
// отмена — решает вызывающий код, здесь сеанс просто выбрасывается).
func (sm *SessionManager) ClearEditSession(chatID int64) {
	sm.editSessionsMutex.Lock()
	defer sm.editSessionsMutex.Unlock()
	if es, exists := sm.editSessions[chatID]; exists {
		log.Printf("SessionManager.ClearEditSession: Сеанс редактирования маршрута %d (chatID %d) закрыт.", es.RouteID, chatID)
	}
	delete(sm.editSessions, chatID)
}

// --- Управление кэшем удаленных сообщений ---

// getDeletedMessagesMutexForChat получает или создает мьютекс для карты
// удаленных сообщений конкретного чата.
func (sm *SessionManager) getDeletedMessagesMutexForChat(chatID int64) *sync.RWMutex {
	sm.deletedMessagesMapMutex.Lock()
	defer sm.deletedMessagesMapMutex.Unlock()

	userDelMutex, exists := sm.deletedMessagesMutex[chatID]
	if !exists {
		userDelMutex = &sync.RWMutex{}
		sm.deletedMessagesMutex[chatID] = userDelMutex
		if _, mapExists := sm.deletedMessages[chatID]; !mapExists {
			sm.deletedMessages[chatID] = make(map[int]bool)
		}
	}
	return userDelMutex
}

// MarkMessageAsDeleted помечает сообщение как удаленное (или что была
// предпринята попытка удаления).
func (sm *SessionManager) MarkMessageAsDeleted(chatID int64, messageID int) {
	if messageID == 0 {
		return
	}
	userDelMutex := sm.getDeletedMessagesMutexForChat(chatID)

	userDelMutex.Lock()
	defer userDelMutex.Unlock()
	sm.deletedMessages[chatID][messageID] = true
}

// IsMessageDeleted проверяет, было ли сообщение помечено как удаленное.
func (sm *SessionManager) IsMessageDeleted(chatID int64, messageID int) bool {
	if messageID == 0 {
		return false
	}
	userDelMutex := sm.getDeletedMessagesMutexForChat(chatID)

	userDelMutex.RLock()
	defer userDelMutex.RUnlock()

	userMessages, mapExists := sm.deletedMessages[chatID]
	if !mapExists {
		return false
	}
	return userMessages[messageID]
}

// ClearDeletedMessagesCacheForChat очищает кэш удаленных сообщений чата,
// например по команде /start.
func (sm *SessionManager) ClearDeletedMessagesCacheForChat(chatID int64) {
	userDelMutex := sm.getDeletedMessagesMutexForChat(chatID)

	userDelMutex.Lock()
	defer userDelMutex.Unlock()
	sm.deletedMessages[chatID] = make(map[int]bool)
}
