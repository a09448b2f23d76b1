package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type memoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string]string)}
}

func (m *memoryStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	return nil
}

func (m *memoryStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return val, nil
}

func (m *memoryStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *memoryStore) AccessSessionKey(accessID string) string {
	return "terra:session:access:" + accessID
}

func newTestManager(store *memoryStore) *Manager {
	return &Manager{store: store, ttl: time.Hour}
}

func TestGenerateStoresSecretUnderAccessKey(t *testing.T) {
	store := newMemoryStore()
	manager := newTestManager(store)

	secret, err := manager.Generate(context.Background(), "jti-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if stored := store.data[store.AccessSessionKey("jti-1")]; stored != secret {
		t.Fatalf("expected stored secret %q, got %q", secret, stored)
	}
}

func TestRotateRejectsWrongSecret(t *testing.T) {
	store := newMemoryStore()
	manager := newTestManager(store)

	ctx := context.Background()
	secret, err := manager.Generate(ctx, "jti-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, _, err := manager.Rotate(ctx, "jti-1", "wrong"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected invalid refresh token error, got %v", err)
	}
	// The failed attempt must not consume the session.
	if _, _, err := manager.Rotate(ctx, "jti-1", secret); err != nil {
		t.Fatalf("rotate with correct secret: %v", err)
	}
}

func TestRotateRetiresOldSession(t *testing.T) {
	store := newMemoryStore()
	manager := newTestManager(store)

	ctx := context.Background()
	secret, err := manager.Generate(ctx, "jti-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	newAccessID, newSecret, err := manager.Rotate(ctx, "jti-1", secret)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if _, exists := store.data[store.AccessSessionKey("jti-1")]; exists {
		t.Fatalf("old session left behind after rotation")
	}
	if stored := store.data[store.AccessSessionKey(newAccessID)]; stored != newSecret {
		t.Fatalf("expected new secret stored, got %q", stored)
	}

	// The retired session must not rotate again.
	if _, _, err := manager.Rotate(ctx, "jti-1", secret); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected invalid refresh token error, got %v", err)
	}
}

func TestRevokeEndsSession(t *testing.T) {
	store := newMemoryStore()
	manager := newTestManager(store)

	ctx := context.Background()
	if _, err := manager.Generate(ctx, "jti-1"); err != nil {
		t.Fatalf("generate: %v", err)
	}

	ok, err := manager.HasSession(ctx, "jti-1")
	if err != nil || !ok {
		t.Fatalf("expected live session, got ok=%v err=%v", ok, err)
	}

	if err := manager.Revoke(ctx, "jti-1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	ok, err = manager.HasSession(ctx, "jti-1")
	if err != nil {
		t.Fatalf("has session: %v", err)
	}
	if ok {
		t.Fatalf("expected session gone after revoke")
	}
}
