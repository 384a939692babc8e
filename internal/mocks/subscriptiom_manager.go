package mocks

import (
	"sync"

	"github.com/VitaminP8/threadly/internal/model"
)

// MockSubscriptionManager запоминает все опубликованные события для проверок в тестах
type MockSubscriptionManager struct {
	mu            sync.Mutex
	subs          map[uint][]chan model.Event
	notifications map[uint][]model.Event
}

func NewMockSubscriptionManager() *MockSubscriptionManager {
	return &MockSubscriptionManager{
		subs:          make(map[uint][]chan model.Event),
		notifications: make(map[uint][]model.Event),
	}
}

func (m *MockSubscriptionManager) Subscribe(postID uint) (<-chan model.Event, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan model.Event, 16)
	m.subs[postID] = append(m.subs[postID], ch)

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		subscribers := m.subs[postID]
		for i, sub := range subscribers {
			if sub == ch {
				m.subs[postID] = append(subscribers[:i], subscribers[i+1:]...)
				close(ch)
				break
			}
		}
	}

	return ch, cancel
}

func (m *MockSubscriptionManager) Publish(postID uint, event model.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, sub := range m.subs[postID] {
		select {
		case sub <- event:
		default:
		}
	}

	m.notifications[postID] = append(m.notifications[postID], event)
}

// GetNotificationsForPost - вспомогательный метод для тестирования,
// возвращает все события конкретного поста
func (m *MockSubscriptionManager) GetNotificationsForPost(postID uint) []model.Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	events := make([]model.Event, len(m.notifications[postID]))
	copy(events, m.notifications[postID])
	return events
}

// CountKind считает события указанного типа по всем постам
func (m *MockSubscriptionManager) CountKind(kind model.EventKind) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, events := range m.notifications {
		for _, e := range events {
			if e.Kind == kind {
				n++
			}
		}
	}
	return n
}
