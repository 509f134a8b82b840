package session

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestHub_PublishSubscribe(t *testing.T) {
	hub := NewHub(4)
	defer hub.Close()

	ch, cancel := hub.Subscribe()
	defer cancel()

	userID := uuid.New()
	at := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	n := hub.Publish(Event{Type: EventSignedIn, UserID: userID, At: at})
	assert.Equal(t, 1, n)

	select {
	case e := <-ch:
		assert.Equal(t, Event{Type: EventSignedIn, UserID: userID, At: at}, e)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestHub_PublishFillsTimestamp(t *testing.T) {
	hub := NewHub(1)
	defer hub.Close()

	ch, cancel := hub.Subscribe()
	defer cancel()

	hub.Publish(Event{Type: EventRefreshed})
	e := <-ch
	assert.False(t, e.At.IsZero())
}

func TestHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	hub := NewHub(1)
	defer hub.Close()

	_, cancelSlow := hub.Subscribe()
	defer cancelSlow()
	fast, cancelFast := hub.Subscribe()
	defer cancelFast()

	assert.Equal(t, 2, hub.Publish(Event{Type: EventSignedIn}))
	<-fast
	// буфер медленного подписчика заполнен, событие для него отбрасывается
	assert.Equal(t, 1, hub.Publish(Event{Type: EventSignedOut}))
	e := <-fast
	assert.Equal(t, EventSignedOut, e.Type)
}

func TestHub_CancelClosesChannel(t *testing.T) {
	hub := NewHub(1)
	defer hub.Close()

	ch, cancel := hub.Subscribe()
	cancel()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, hub.Publish(Event{Type: EventSignedIn}))
}

func TestHub_CloseEndsSubscribers(t *testing.T) {
	hub := NewHub(1)
	ch, cancel := hub.Subscribe()

	var wg sync.WaitGroup
	wg.Add(1)
	received := 0
	go func() {
		defer wg.Done()
		for range ch {
			received++
		}
	}()

	hub.Publish(Event{Type: EventSignedIn})
	hub.Close()
	wg.Wait()
	cancel()

	assert.LessOrEqual(t, received, 1)

	late, lateCancel := hub.Subscribe()
	defer lateCancel()
	_, ok := <-late
	require.False(t, ok)
}
