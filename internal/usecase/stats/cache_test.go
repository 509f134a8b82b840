package stats

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedView struct {
	Total int    `json:"total"`
	Blob  string `json:"blob,omitempty"`
}

func TestCache_SetGet(t *testing.T) {
	c := NewCache(1)
	userID := uuid.New()

	key := c.Key(userID, "overview")
	require.True(t, c.Set(key, cachedView{Total: 3}, time.Minute))

	var v cachedView
	require.True(t, c.Get(c.Key(userID, "overview"), &v))
	assert.Equal(t, 3, v.Total)
	assert.False(t, c.Get(c.Key(uuid.New(), "overview"), &v))
}

func TestCache_OversizedEntryIsSkipped(t *testing.T) {
	c := NewCache(1)
	key := c.Key(uuid.New(), "calendar")

	assert.False(t, c.Set(key, cachedView{Blob: strings.Repeat("x", 1024)}, time.Minute))
	assert.False(t, c.Get(key, &cachedView{}))

	assert.True(t, c.Set(key, cachedView{Blob: strings.Repeat("x", 512)}, time.Minute))
}

func TestCache_KeyTakenBeforeInvalidate(t *testing.T) {
	c := NewCache(1)
	userID := uuid.New()

	stale := c.Key(userID, "dashboard")
	c.Invalidate(userID)
	require.True(t, c.Set(stale, cachedView{Total: 1}, time.Minute))

	assert.False(t, c.Get(c.Key(userID, "dashboard"), &cachedView{}))
}

func TestCache_EvictedGenerationDoesNotRevive(t *testing.T) {
	c := NewCache(1)
	userID := uuid.New()

	old := c.Key(userID, "overview")
	require.True(t, c.Set(old, cachedView{Total: 1}, time.Minute))
	c.Invalidate(userID)

	// вытеснение ключа поколения не возвращает к старым записям
	c.cache.Del(generationKey(userID))
	fresh := c.Key(userID, "overview")
	assert.NotEqual(t, string(old), string(fresh))
	assert.False(t, c.Get(fresh, &cachedView{}))
}
