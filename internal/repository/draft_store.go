package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Eursukkul/competition-portal/pkg/redis"
)

var ErrDraftNotFound = errors.New("draft not found")

// DraftStore keeps in-progress records between autosaves. Drafts expire
// after the store's TTL.
type DraftStore interface {
	Save(ctx context.Context, kind, id string, data []byte) error
	Load(ctx context.Context, kind, id string) ([]byte, error)
	Delete(ctx context.Context, kind, id string) error
}

type redisDraftStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDraftStore(client *redis.Client, ttl time.Duration) DraftStore {
	return &redisDraftStore{client: client, ttl: ttl}
}

func draftKey(kind, id string) string {
	return "portal:draft:" + kind + ":" + id
}

func (s *redisDraftStore) Save(ctx context.Context, kind, id string, data []byte) error {
	return s.client.Set(ctx, draftKey(kind, id), data, s.ttl)
}

func (s *redisDraftStore) Load(ctx context.Context, kind, id string) ([]byte, error) {
	b, err := s.client.Get(ctx, draftKey(kind, id))
	if errors.Is(err, redis.ErrNotFound) {
		return nil, ErrDraftNotFound
	}
	return b, err
}

func (s *redisDraftStore) Delete(ctx context.Context, kind, id string) error {
	return s.client.Del(ctx, draftKey(kind, id))
}
