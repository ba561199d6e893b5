// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps session slots in a Redis hash per session, so multiple
// service replicas share one view of the conversation.
//
// HSET is an atomic shallow merge at the server, which is exactly the Merge
// contract; every write also refreshes the session TTL, so an idle
// conversation expires as a unit.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore wraps an existing Redis client. Pass 0 for no expiry.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(sessionID string) string {
	return "session:" + sessionID
}

// Get implements Store. A missing key reads as an empty hash, which matches
// the implicit-existence contract.
func (s *RedisStore) Get(ctx context.Context, sessionID string) (SlotMap, error) {
	vals, err := s.client.HGetAll(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("session: redis HGETALL %s: %w", sessionID, err)
	}
	out := make(SlotMap, len(vals))
	for k, v := range vals {
		out[k] = v
	}
	return out, nil
}

// Merge implements Store.
func (s *RedisStore) Merge(ctx context.Context, sessionID string, partial SlotMap) (SlotMap, error) {
	key := sessionKey(sessionID)

	fields := make(map[string]string, len(partial))
	for k, v := range partial {
		if v == "" {
			continue
		}
		fields[k] = v
	}

	if len(fields) > 0 {
		if err := s.client.HSet(ctx, key, fields).Err(); err != nil {
			return nil, fmt.Errorf("session: redis HSET %s: %w", sessionID, err)
		}
	}
	if s.ttl > 0 {
		if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
			return nil, fmt.Errorf("session: redis EXPIRE %s: %w", sessionID, err)
		}
	}
	return s.Get(ctx, sessionID)
}
