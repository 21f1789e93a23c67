package player

import "sync"

// MockEngine is a test double for Engine. SetState confirms every
// requested transition by emitting the matching state-changed event,
// which the player's polling loop folds back in. All methods are safe
// for concurrent use so tests can run the real loop against it.
type MockEngine struct {
	mu          sync.Mutex
	events      chan Event
	state       EngineState
	loadCalls   []string
	seekCalls   []float64
	duration    float64
	hasDuration bool
	position    float64
	hasPosition bool
	volume      float64
	loadErr     error
	released    bool
}

// NewMockEngine creates a mock engine in the Null state.
func NewMockEngine() *MockEngine {
	return &MockEngine{
		events: make(chan Event, 16),
		volume: 1.0,
	}
}

func (m *MockEngine) Load(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return m.loadErr
	}
	m.loadCalls = append(m.loadCalls, path)
	return nil
}

func (m *MockEngine) SetState(state EngineState) error {
	m.mu.Lock()
	old := m.state
	m.state = state
	m.mu.Unlock()
	m.events <- Event{Type: EventStateChanged, Old: old, New: state}
	return nil
}

func (m *MockEngine) Duration() (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration, m.hasDuration
}

func (m *MockEngine) Position() (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position, m.hasPosition
}

func (m *MockEngine) Seek(seconds float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seekCalls = append(m.seekCalls, seconds)
	m.position = seconds
	return nil
}

func (m *MockEngine) SetVolume(v float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = v
	return nil
}

func (m *MockEngine) Volume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

func (m *MockEngine) Events() <-chan Event {
	return m.events
}

func (m *MockEngine) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.released = true
}

// Test helpers.

func (m *MockEngine) SetDuration(d float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.duration = d
	m.hasDuration = true
}

func (m *MockEngine) SetPosition(pos float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = pos
	m.hasPosition = true
}

func (m *MockEngine) SetLoadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErr = err
}

// EmitEndOfStream queues an end-of-stream event.
func (m *MockEngine) EmitEndOfStream() {
	m.events <- Event{Type: EventEndOfStream}
}

// EmitError queues an error event with the given diagnostic text.
func (m *MockEngine) EmitError(message string) {
	m.events <- Event{Type: EventError, Message: message}
}

func (m *MockEngine) LoadCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.loadCalls...)
}

func (m *MockEngine) SeekCalls() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.seekCalls...)
}

func (m *MockEngine) State() EngineState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *MockEngine) Released() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.released
}

// Verify MockEngine implements Engine at compile time.
var _ Engine = (*MockEngine)(nil)
