package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	repo "fittrack/internal/repository/interfaces"
)

const (
	sessionKeyPrefix     = "fittrack:session:"
	userSessionKeyPrefix = "fittrack:user-sessions:"
)

// SessionStore хранит refresh-сессии в redis.
//
// Сессия лежит по ключу fittrack:session:<jti> со значением "<user_id>|<expires_unix>"
// и TTL до истечения токена. Множество fittrack:user-sessions:<user_id> хранит
// jti всех сессий пользователя для массового отзыва.
type SessionStore struct {
	redisClient *redis.Client
	// можно подменить в тестах
	Now func() time.Time
}

var _ repo.SessionStore = (*SessionStore)(nil)

// NewSessionStore создает хранилище сессий поверх клиента redis.
func NewSessionStore(redisClient *redis.Client) *SessionStore {
	return &SessionStore{
		redisClient: redisClient,
		Now:         time.Now,
	}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func userSessionsKey(userID uuid.UUID) string {
	return userSessionKeyPrefix + userID.String()
}

// Save сохраняет сессию до момента её истечения.
func (s *SessionStore) Save(ctx context.Context, session repo.RefreshSession) error {
	ttl := session.ExpiresAt.Sub(s.Now())
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", session.ID)
	}

	value := fmt.Sprintf("%s|%d", session.UserID, session.ExpiresAt.Unix())
	if err := s.redisClient.Set(ctx, sessionKey(session.ID), value, ttl).Err(); err != nil {
		return fmt.Errorf("set session: %w", err)
	}

	userKey := userSessionsKey(session.UserID)
	if err := s.redisClient.SAdd(ctx, userKey, session.ID).Err(); err != nil {
		return fmt.Errorf("add session to user set: %w", err)
	}
	// множество живёт не дольше самой поздней сессии
	if err := s.redisClient.Expire(ctx, userKey, ttl).Err(); err != nil {
		return fmt.Errorf("expire user set: %w", err)
	}
	return nil
}

// Get возвращает сессию по jti.
func (s *SessionStore) Get(ctx context.Context, id string) (*repo.RefreshSession, error) {
	val, err := s.redisClient.Get(ctx, sessionKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, repo.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	userPart, expiresPart, ok := strings.Cut(val, "|")
	if !ok {
		return nil, fmt.Errorf("malformed session value %q", val)
	}
	userID, err := uuid.Parse(userPart)
	if err != nil {
		return nil, fmt.Errorf("malformed session user id: %w", err)
	}
	expiresUnix, err := strconv.ParseInt(expiresPart, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("malformed session expiry: %w", err)
	}

	return &repo.RefreshSession{
		ID:        id,
		UserID:    userID,
		ExpiresAt: time.Unix(expiresUnix, 0).UTC(),
	}, nil
}

// Delete отзывает сессию. jti в множестве пользователя остаётся до его истечения.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	n, err := s.redisClient.Del(ctx, sessionKey(id)).Result()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n == 0 {
		return repo.ErrSessionNotFound
	}
	return nil
}

// DeleteAllForUser отзывает все сессии пользователя.
func (s *SessionStore) DeleteAllForUser(ctx context.Context, userID uuid.UUID) error {
	userKey := userSessionsKey(userID)
	ids, err := s.redisClient.SMembers(ctx, userKey).Result()
	if err != nil {
		return fmt.Errorf("list user sessions: %w", err)
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, sessionKey(id))
	}
	keys = append(keys, userKey)

	if err := s.redisClient.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete user sessions: %w", err)
	}
	return nil
}
