package stats

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/coocood/freecache"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	megabyte = 1024 * 1024
	// entryHeaderSize: служебный заголовок записи freecache.
	entryHeaderSize = 24
)

// Cache хранит вычисленную статистику в freecache.
//
// Ключи содержат поколение пользователя. Поколение выдаётся из монотонного
// счётчика процесса, поэтому после Invalidate или вытеснения ключа поколения
// старые записи недостижимы и истекают по TTL.
type Cache struct {
	cache    *freecache.Cache
	maxEntry int
	seq      atomic.Uint64
}

// NewCache создаёт кэш размером sizeMB мегабайт (минимум 1).
// freecache принимает записи не больше 1/1024 своего размера.
func NewCache(sizeMB int) *Cache {
	if sizeMB < 1 {
		sizeMB = 1
	}
	size := sizeMB * megabyte
	c := &Cache{
		cache:    freecache.NewCache(size),
		maxEntry: size / 1024,
	}
	c.seq.Store(uint64(time.Now().UnixNano()))
	return c
}

func generationKey(userID uuid.UUID) []byte {
	return []byte("gen::" + userID.String())
}

// generation возвращает текущее поколение пользователя, заводя новое при его отсутствии.
func (c *Cache) generation(userID uuid.UUID) uint64 {
	if b, err := c.cache.Get(generationKey(userID)); err == nil {
		if gen, err := strconv.ParseUint(string(b), 10, 64); err == nil {
			return gen
		}
	}
	return c.bump(userID)
}

func (c *Cache) bump(userID uuid.UUID) uint64 {
	gen := c.seq.Add(1)
	if err := c.cache.Set(generationKey(userID), []byte(strconv.FormatUint(gen, 10)), 0); err != nil {
		log.WithError(err).WithField("user_id", userID).Error("failed to store stats cache generation")
	}
	return gen
}

// Key фиксирует ключ записи для текущего поколения пользователя.
// Ключ берётся до вычисления значения: если данные изменятся во время
// вычисления, результат ляжет под устаревшее поколение и не будет прочитан.
func (c *Cache) Key(userID uuid.UUID, view string) []byte {
	return []byte(fmt.Sprintf("%s::%d::%s", userID, c.generation(userID), view))
}

// Get читает значение по ключу в v. Возвращает false при промахе.
func (c *Cache) Get(key []byte, v any) bool {
	b, err := c.cache.Get(key)
	if err != nil {
		return false
	}
	if err := json.Unmarshal(b, v); err != nil {
		log.WithError(err).WithField("key", string(key)).Error("failed to unmarshal cached stats")
		return false
	}
	return true
}

// Set сохраняет значение с TTL. Нулевой TTL означает запись без срока.
// Слишком большие значения не кэшируются. Возвращает true, если значение записано.
func (c *Cache) Set(key []byte, v any, ttl time.Duration) bool {
	b, err := json.Marshal(v)
	if err != nil {
		log.WithError(err).WithField("key", string(key)).Error("failed to marshal stats for cache")
		return false
	}
	if size := len(key) + len(b) + entryHeaderSize; size > c.maxEntry {
		log.WithFields(log.Fields{
			"key":   string(key),
			"size":  size,
			"limit": c.maxEntry,
		}).Warn("stats view exceeds cache entry limit, not cached")
		return false
	}
	if err := c.cache.Set(key, b, int(ttl/time.Second)); err != nil {
		log.WithError(err).WithField("key", string(key)).Warn("failed to write stats cache")
		return false
	}
	return true
}

// Invalidate делает недоступными все закэшированные значения пользователя.
func (c *Cache) Invalidate(userID uuid.UUID) {
	c.bump(userID)
}

// EntryCount возвращает число записей в кэше.
func (c *Cache) EntryCount() int64 {
	return c.cache.EntryCount()
}
