package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"nexus-ai-chat/internal/domain"
	"nexus-ai-chat/internal/domain/model"
)

// fakeClient is an in-memory stand-in for the Redis client.
type fakeClient struct {
	mu    sync.Mutex
	kv    map[string]string
	lists map[string][]string
}

func newFakeClient() *fakeClient {
	return &fakeClient{kv: map[string]string{}, lists: map[string][]string{}}
}

func (f *fakeClient) Ping(ctx context.Context) error { return nil }

func (f *fakeClient) Set(ctx context.Context, key string, value interface{}, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch t := value.(type) {
	case []byte:
		f.kv[key] = string(t)
	default:
		f.kv[key] = fmt.Sprint(value)
	}
	return nil
}

func (f *fakeClient) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.kv[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (f *fakeClient) Del(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.kv, k)
		delete(f.lists, k)
	}
	return nil
}

func (f *fakeClient) LPush(ctx context.Context, key string, values ...interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range values {
		var s string
		switch t := v.(type) {
		case []byte:
			s = string(t)
		default:
			s = fmt.Sprint(v)
		}
		f.lists[key] = append([]string{s}, f.lists[key]...)
	}
	return nil
}

func (f *fakeClient) LTrim(ctx context.Context, key string, start, stop int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l := f.lists[key]
	if start < 0 {
		start = 0
	}
	if stop >= int64(len(l)) {
		stop = int64(len(l)) - 1
	}
	if start > stop {
		f.lists[key] = nil
		return nil
	}
	f.lists[key] = l[start : stop+1]
	return nil
}

func (f *fakeClient) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l := f.lists[key]
	if start < 0 {
		start = 0
	}
	if stop >= int64(len(l)) {
		stop = int64(len(l)) - 1
	}
	if start > stop {
		return nil, nil
	}
	out := make([]string, stop-start+1)
	copy(out, l[start:stop+1])
	return out, nil
}

func (f *fakeClient) Close() error { return nil }

var _ Client = (*fakeClient)(nil)

func TestHistoryStore_PushAndRecent(t *testing.T) {
	ctx := context.Background()
	s := NewHistoryStore(newFakeClient())

	for i := 0; i < 3; i++ {
		err := s.Push(ctx, "c1", &model.HistoryEntry{
			ID:     fmt.Sprintf("e%d", i),
			Prompt: fmt.Sprintf("p%d", i),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.Recent(ctx, "c1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("want 3 entries, got %d", len(got))
	}
	if got[0].ID != "e2" || got[2].ID != "e0" {
		t.Fatalf("entries not most-recent-first: %v", got)
	}
}

func TestHistoryStore_CapEvictsOldest(t *testing.T) {
	ctx := context.Background()
	s := NewHistoryStore(newFakeClient())

	for i := 0; i < model.HistoryCap+5; i++ {
		if err := s.Push(ctx, "c1", &model.HistoryEntry{ID: fmt.Sprintf("e%d", i)}); err != nil {
			t.Fatal(err)
		}
	}
	got, err := s.Recent(ctx, "c1", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != model.HistoryCap {
		t.Fatalf("cap not enforced: %d", len(got))
	}
	if got[0].ID != fmt.Sprintf("e%d", model.HistoryCap+4) {
		t.Fatalf("newest entry missing after trim: %s", got[0].ID)
	}
	// oldest must be gone
	for _, e := range got {
		if e.ID == "e0" {
			t.Fatal("oldest entry survived eviction")
		}
	}
}

func TestHistoryStore_Theme(t *testing.T) {
	ctx := context.Background()
	s := NewHistoryStore(newFakeClient())

	th, err := s.Theme(ctx, "c1")
	if err != nil || th != "light" {
		t.Fatalf("default theme should be light, got %q (%v)", th, err)
	}

	if err := s.SetTheme(ctx, "c1", "dark"); err != nil {
		t.Fatal(err)
	}
	th, err = s.Theme(ctx, "c1")
	if err != nil || th != "dark" {
		t.Fatalf("theme not persisted: %q (%v)", th, err)
	}

	if err := s.SetTheme(ctx, "c1", "solarized"); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("invalid theme must be rejected, got %v", err)
	}
}

func TestSessionCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewSessionCache(newFakeClient(), time.Minute)

	s := model.NewChatSession()
	s.ID = "sess-1"
	s.AddTurn(model.ChatTurn{Role: model.RoleUser, Content: "hello"})

	if err := c.Store(ctx, s); err != nil {
		t.Fatal(err)
	}
	got, err := c.Get(ctx, "sess-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "sess-1" || len(got.Turns) != 1 || got.Turns[0].Content != "hello" {
		t.Fatalf("cache round trip mangled session: %+v", got)
	}

	if err := c.Invalidate(ctx, "sess-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Get(ctx, "sess-1"); err == nil {
		t.Fatal("expected miss after invalidate")
	}
}
