package subscription

import (
	"sync"
	"testing"
	"time"

	"github.com/VitaminP8/threadly/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriptionManager_Subscribe(t *testing.T) {
	t.Run("Should create a subscription channel", func(t *testing.T) {
		manager := NewSubscriptionManager()
		postID := uint(123)

		ch, cancel := manager.Subscribe(postID)
		assert.NotNil(t, ch)
		assert.NotNil(t, cancel)
		assert.Equal(t, 1, manager.Subscribers(postID))

		cancel()
		assert.Equal(t, 0, manager.Subscribers(postID))

		// канал закрыт после отписки
		_, ok := <-ch
		assert.False(t, ok)
	})

	t.Run("Multiple subscriptions to the same post", func(t *testing.T) {
		manager := NewSubscriptionManager()
		postID := uint(123)

		_, cancel1 := manager.Subscribe(postID)
		_, cancel2 := manager.Subscribe(postID)
		_, cancel3 := manager.Subscribe(postID)
		assert.Equal(t, 3, manager.Subscribers(postID))

		cancel2()
		assert.Equal(t, 2, manager.Subscribers(postID))

		cancel1()
		cancel3()
		assert.Equal(t, 0, manager.Subscribers(postID))
	})

	t.Run("Cancel is idempotent", func(t *testing.T) {
		manager := NewSubscriptionManager()
		_, cancel := manager.Subscribe(1)
		cancel()
		assert.NotPanics(t, cancel)
	})
}

func TestSubscriptionManager_Publish(t *testing.T) {
	t.Run("Event is delivered only to subscribers of the post", func(t *testing.T) {
		manager := NewSubscriptionManager()

		ch1, cancel1 := manager.Subscribe(1)
		defer cancel1()
		ch2, cancel2 := manager.Subscribe(2)
		defer cancel2()

		event := model.Event{Kind: model.EventCommentAttached, PostID: 1, Comment: &model.Comment{ID: 10, PostID: 1}}
		manager.Publish(1, event)

		select {
		case got := <-ch1:
			assert.Equal(t, event, got)
		case <-time.After(time.Second):
			t.Fatal("event was not delivered")
		}

		select {
		case got := <-ch2:
			t.Fatalf("unexpected event for another post: %+v", got)
		default:
		}
	})

	t.Run("Publish without subscribers does not block", func(t *testing.T) {
		manager := NewSubscriptionManager()
		done := make(chan struct{})
		go func() {
			manager.Publish(42, model.Event{Kind: model.EventTallyChanged, PostID: 42})
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("publish blocked")
		}
	})

	t.Run("Concurrent publishers", func(t *testing.T) {
		manager := NewSubscriptionManager()
		ch, cancel := manager.Subscribe(5)
		defer cancel()

		const n = 5
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				manager.Publish(5, model.Event{Kind: model.EventTallyChanged, PostID: 5})
			}()
		}
		wg.Wait()

		received := 0
		for i := 0; i < n; i++ {
			select {
			case <-ch:
				received++
			case <-time.After(time.Second):
			}
		}
		require.Equal(t, n, received)
	})
}
