package subscription

import (
	"sync"
	"time"

	"github.com/VitaminP8/threadly/internal/model"
)

// publishTimeout - сколько ждём медленного подписчика, прежде чем пропустить событие
const publishTimeout = 500 * time.Millisecond

type SubscriptionManager struct {
	mu   sync.Mutex
	subs map[uint][]chan model.Event // postID -> список каналов подписчиков
}

func NewSubscriptionManager() *SubscriptionManager {
	return &SubscriptionManager{
		subs: make(map[uint][]chan model.Event),
	}
}

func (m *SubscriptionManager) Subscribe(postID uint) (<-chan model.Event, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan model.Event, 8) // буфер, чтобы всплеск голосов не блокировал писателя

	m.subs[postID] = append(m.subs[postID], ch)

	// функция для отписки, повторный вызов безопасен
	var once sync.Once
	cancel := func() {
		once.Do(func() {
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
			if len(m.subs[postID]) == 0 {
				delete(m.subs, postID)
			}
		})
	}

	return ch, cancel
}

func (m *SubscriptionManager) Publish(postID uint, event model.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, sub := range m.subs[postID] {
		select {
		case sub <- event:
		case <-time.After(publishTimeout):
			// подписчик не успевает читать - событие для него теряется
		}
	}
}

// Subscribers возвращает число активных подписчиков поста
func (m *SubscriptionManager) Subscribers(postID uint) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs[postID])
}
