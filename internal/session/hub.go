// Package session рассылает события смены сессии (вход, выход, обновление токенов)
// подписчикам внутри процесса.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType: вид события сессии.
type EventType string

const (
	EventSignedIn       EventType = "signed_in"
	EventSignedOut      EventType = "signed_out"
	EventRefreshed      EventType = "refreshed"
	EventPasswordReset  EventType = "password_reset"
	EventAccountDeleted EventType = "account_deleted"
)

// Event описывает смену сессии пользователя.
type Event struct {
	Type   EventType
	UserID uuid.UUID
	At     time.Time
}

const defaultBuffer = 16

// Hub: процессный брокер событий сессии. Создаётся один раз и передаётся
// сервисам явно.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[uint64]chan Event
	nextID      uint64
	buffer      int
	closed      bool
}

// NewHub создает брокер. buffer задаёт ёмкость канала подписчика (по умолчанию 16).
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Hub{
		subscribers: make(map[uint64]chan Event),
		buffer:      buffer,
	}
}

// Subscribe возвращает канал событий и функцию отписки.
// После отписки канал закрывается. Повторный вызов cancel безопасен.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, h.buffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	id := h.nextID
	h.nextID++
	h.subscribers[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if sub, ok := h.subscribers[id]; ok {
				delete(h.subscribers, id)
				close(sub)
			}
		})
	}
	return ch, cancel
}

// Publish рассылает событие без блокировки. Подписчик с заполненным каналом
// событие не получит. Возвращает число подписчиков, которым событие доставлено.
func (h *Hub) Publish(e Event) int {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, ch := range h.subscribers {
		select {
		case ch <- e:
			delivered++
		default:
		}
	}
	return delivered
}

// Close закрывает каналы всех подписчиков. Последующие Publish ничего не делают.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subscribers {
		delete(h.subscribers, id)
		close(ch)
	}
}
