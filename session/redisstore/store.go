package redisstore

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	auth "github.com/goliatone/go-auth-lifecycle"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces session keys
const DefaultPrefix = "auth:session:"

// Store persists session values as a Redis hash, one JSON encoded field
// per session key.
type Store struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// New returns a store whose sessions expire ttl after the last save
func New(client redis.UniversalClient, ttl time.Duration) *Store {
	return &Store{client: client, prefix: DefaultPrefix, ttl: ttl}
}

// WithPrefix replaces the key prefix
func (s *Store) WithPrefix(prefix string) *Store {
	if prefix != "" {
		s.prefix = prefix
	}
	return s
}

// NewID returns a fresh session identifier
func NewID() string {
	return uuid.NewString()
}

func (s *Store) key(id string) string {
	return s.prefix + id
}

// Load returns the session stored under id. A missing session loads empty.
func (s *Store) Load(ctx context.Context, id string) (*auth.MapSession, error) {
	fields, err := s.client.HGetAll(ctx, s.key(id)).Result()
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "load session").
			WithMetadata(map[string]any{"session": id})
	}

	values := make(map[string]any, len(fields))
	for field, raw := range fields {
		var v any
		dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
		dec.UseNumber()
		if err := dec.Decode(&v); err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "decode session value").
				WithMetadata(map[string]any{"session": id, "field": field})
		}
		values[field] = v
	}
	return auth.NewMapSession(values), nil
}

// Save replaces the stored session with the values of sess
func (s *Store) Save(ctx context.Context, id string, sess *auth.MapSession) error {
	values := sess.Values()
	fields := make(map[string]any, len(values))
	for k, v := range values {
		raw, err := json.Marshal(v)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryBadInput, "encode session value").
				WithMetadata(map[string]any{"session": id, "field": k})
		}
		fields[k] = string(raw)
	}

	key := s.key(id)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(fields) > 0 {
			pipe.HSet(ctx, key, fields)
			if s.ttl > 0 {
				pipe.Expire(ctx, key, s.ttl)
			}
		}
		return nil
	})
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "save session").
			WithMetadata(map[string]any{"session": id})
	}
	return nil
}

// Destroy removes the session
func (s *Store) Destroy(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "destroy session").
			WithMetadata(map[string]any{"session": id})
	}
	return nil
}
