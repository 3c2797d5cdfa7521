package service

import (
	"sync"
	"time"
)

// MockEventBus implements EventBus for testing
type MockEventBus struct {
	mu       sync.Mutex
	events   []map[string]interface{}
	sessions map[string]int
}

func (m *MockEventBus) PublishMedication(event map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockEventBus) PublishSession(sessionID string, event map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessions == nil {
		m.sessions = make(map[string]int)
	}
	m.sessions[sessionID]++
	m.events = append(m.events, event)
	return nil
}

func (m *MockEventBus) types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e["type"].(string))
	}
	return out
}

type mockJobClient struct {
	reasons []string
}

func (m *mockJobClient) EnqueueExpireSweep(reason string) error {
	m.reasons = append(m.reasons, reason)
	return nil
}

var testNow = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }
