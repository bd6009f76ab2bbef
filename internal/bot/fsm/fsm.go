package fsm

import "sync"

// Step представляет текущий шаг диалога записи
type Step int

const (
	StepNone Step = iota
	StepService
	StepName
	StepPhone
	StepDate
	StepTime
	StepComment
)

// State хранит накопленные данные диалога одного пользователя
type State struct {
	Step        Step
	Service     string
	ClientName  string
	Phone       string
	Date        string
	Time        string
	DurationMin int
	Comment     string
}

// Manager хранит состояния диалогов по идентификатору пользователя
type Manager struct {
	mu     sync.RWMutex
	states map[int64]*State
}

// NewManager создает новый менеджер состояний
func NewManager() *Manager {
	return &Manager{
		states: make(map[int64]*State),
	}
}

// Get возвращает состояние пользователя и признак его наличия
func (m *Manager) Get(userID int64) (*State, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.states[userID]
	return state, ok
}

// Set сохраняет состояние пользователя
func (m *Manager) Set(userID int64, state *State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[userID] = state
}

// Clear удаляет состояние пользователя
func (m *Manager) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, userID)
}

// Active сообщает, идет ли у пользователя диалог записи
func (m *Manager) Active(userID int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.states[userID]
	return ok && state.Step != StepNone
}
