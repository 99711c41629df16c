package pipeline

import (
	"fmt"
	"sync"
	"time"
)

// State is the pipeline's current step.
type State string

const (
	StateIdle       State = "idle"
	StatePicking    State = "picking"
	StateScripting  State = "scripting"
	StateNarrating  State = "narrating"
	StateSegmenting State = "segmenting"
	StateSourcing   State = "sourcing"
	StateCurating   State = "curating"
	StateRendering  State = "rendering"
	StateUploading  State = "uploading"
	StateComplete   State = "complete"
	StateError      State = "error"
	StateCancelled  State = "cancelled"
)

// Busy reports whether a run is in progress in this state.
func (s State) Busy() bool {
	switch s {
	case StateIdle, StateComplete, StateError, StateCancelled:
		return false
	}
	return true
}

// LogEntry is a single log line with timestamp.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// Status is the JSON response for GET /api/status.
type Status struct {
	State     State      `json:"state"`
	RunID     string     `json:"run_id,omitempty"`
	Topic     string     `json:"topic,omitempty"`
	Title     string     `json:"title,omitempty"`
	Profile   string     `json:"profile,omitempty"`
	VideoURL  string     `json:"video_url,omitempty"`
	Segments  int        `json:"segments,omitempty"`
	StartedAt time.Time  `json:"started_at,omitempty"`
	Logs      []LogEntry `json:"logs"`
	Error     string     `json:"error,omitempty"`
}

// Manager holds the pipeline state with thread-safe access.
type Manager struct {
	mu sync.RWMutex

	state     State
	runID     string
	topic     string
	title     string
	profile   string
	videoURL  string
	segments  int
	startedAt time.Time

	logs    []LogEntry
	maxLogs int
	lastErr error
}

func NewManager() *Manager {
	return &Manager{
		state:   StateIdle,
		logs:    make([]LogEntry, 0),
		maxLogs: 50,
	}
}

// Begin resets per-run fields for a new run.
func (m *Manager) Begin(runID, profile string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StatePicking
	m.runID = runID
	m.profile = profile
	m.topic = ""
	m.title = ""
	m.videoURL = ""
	m.segments = 0
	m.lastErr = nil
	m.startedAt = time.Now()
}

// AddLog adds a log entry, keeping the last maxLogs.
func (m *Manager) AddLog(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addLog(message)
}

// must hold lock
func (m *Manager) addLog(message string) {
	m.logs = append(m.logs, LogEntry{Timestamp: time.Now(), Message: message})
	if len(m.logs) > m.maxLogs {
		m.logs = m.logs[len(m.logs)-m.maxLogs:]
	}
}

func (m *Manager) SetState(state State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// SetError moves to the error state and logs err.
func (m *Manager) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateError
	m.lastErr = err
	m.addLog(fmt.Sprintf("Error: %v", err))
}

// SetCancelled ends the run without a video.
func (m *Manager) SetCancelled(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateCancelled
	m.addLog("Cancelled: " + reason)
}

func (m *Manager) SetTopic(topic string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.topic = topic
}

func (m *Manager) SetTitle(title string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.title = title
}

func (m *Manager) SetSegments(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.segments = n
}

// Complete records the published URL and moves to the complete state.
func (m *Manager) Complete(videoURL string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateComplete
	m.videoURL = videoURL
	m.addLog("Run complete")
}

// Snapshot returns a copy of the current state.
func (m *Manager) Snapshot() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Status{
		State:     m.state,
		RunID:     m.runID,
		Topic:     m.topic,
		Title:     m.title,
		Profile:   m.profile,
		VideoURL:  m.videoURL,
		Segments:  m.segments,
		StartedAt: m.startedAt,
		Logs:      append([]LogEntry{}, m.logs...),
	}
	if m.lastErr != nil {
		s.Error = m.lastErr.Error()
	}
	return s
}
