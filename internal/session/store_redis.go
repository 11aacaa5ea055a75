package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"idverify/pkg/platform/sentinel"
)

const (
	sessionKeyPrefix = "idverify:session:"

	// Keys outlive the session deadline so reads shortly after expiry still
	// see an expired record instead of not_found. Redis reclaims the key
	// after the grace window.
	expiredRetention = time.Hour

	// Retries for optimistic Mutate transactions that lose a WATCH race.
	mutateMaxRetries = 5
)

// RedisStore shares sessions across instances. Values are JSON documents;
// Mutate uses an optimistic WATCH transaction so concurrent read-modify-write
// cycles on the same session never interleave.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func (s *RedisStore) Create(ctx context.Context, session Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	ttl := time.Until(session.ExpiresAt) + expiredRetention
	ok, err := s.client.SetNX(ctx, sessionKey(session.ID), data, ttl).Result()
	if err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	if !ok {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *RedisStore) FindByID(ctx context.Context, id string) (Session, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("load session: %w", err)
	}
	return decodeSession(data)
}

func (s *RedisStore) Mutate(ctx context.Context, id string, fn func(*Session) error) (Session, error) {
	key := sessionKey(id)
	var out Session

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return sentinel.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("load session: %w", err)
		}

		session, err := decodeSession(data)
		if err != nil {
			return err
		}
		if err := fn(&session); err != nil {
			return err
		}

		updated, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("encode session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, redis.KeepTTL)
			return nil
		})
		if err == nil {
			out = session
		}
		return err
	}

	for i := 0; i < mutateMaxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return Session{}, err
		}
		return out, nil
	}
	return Session{}, sentinel.ErrConflict
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	removed, err := s.client.Del(ctx, sessionKey(id)).Result()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if removed == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *RedisStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	removed := 0
	err := s.scan(ctx, func(key string, session Session) error {
		if !session.ExpiredAt(now) {
			return nil
		}
		if err := s.client.Del(ctx, key).Err(); err != nil {
			return err
		}
		removed++
		return nil
	})
	return removed, err
}

func (s *RedisStore) All(ctx context.Context) ([]Session, error) {
	var out []Session
	err := s.scan(ctx, func(_ string, session Session) error {
		out = append(out, session)
		return nil
	})
	return out, err
}

func (s *RedisStore) scan(ctx context.Context, visit func(key string, session Session) error) error {
	iter := s.client.Scan(ctx, 0, sessionKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		data, err := s.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			// Reclaimed between SCAN and GET.
			continue
		}
		if err != nil {
			return fmt.Errorf("load session: %w", err)
		}
		session, err := decodeSession(data)
		if err != nil {
			return err
		}
		if err := visit(key, session); err != nil {
			return err
		}
	}
	return iter.Err()
}

func decodeSession(data []byte) (Session, error) {
	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return Session{}, fmt.Errorf("parse stored session: %w", err)
	}
	return session, nil
}
