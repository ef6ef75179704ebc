package tokens

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"Sonicbar/model"
)

type countingStore struct {
	tokens *model.TokenSet
	loads  int
	saves  int
	clears int
}

func (s *countingStore) Load(context.Context) (*model.TokenSet, error) {
	s.loads++
	if s.tokens == nil {
		return nil, ErrNoTokens
	}
	cp := *s.tokens
	return &cp, nil
}

func (s *countingStore) Save(_ context.Context, ts *model.TokenSet) error {
	s.saves++
	s.tokens = ts
	return nil
}

func (s *countingStore) Clear(context.Context) error {
	s.clears++
	s.tokens = nil
	return nil
}

func TestCachedStoreLoadsOnce(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{tokens: &model.TokenSet{AccessToken: "a"}}
	c := NewCachedStore(inner)

	for i := 0; i < 3; i++ {
		ts, err := c.Load(ctx)
		if err != nil || ts.AccessToken != "a" {
			t.Fatalf("load %d: %+v, %v", i, ts, err)
		}
		ts.AccessToken = "mutated"
	}
	if inner.loads != 1 {
		t.Errorf("inner loaded %d times", inner.loads)
	}
}

func TestCachedStoreEmpty(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{}
	c := NewCachedStore(inner)

	if _, err := c.Load(ctx); !errors.Is(err, ErrNoTokens) {
		t.Fatalf("err = %v", err)
	}
	if _, err := c.Load(ctx); !errors.Is(err, ErrNoTokens) {
		t.Fatalf("cached err = %v", err)
	}
	if inner.loads != 1 {
		t.Errorf("empty result not cached, %d loads", inner.loads)
	}
}

func TestCachedStoreSetAndWriteThrough(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{}
	c := NewCachedStore(inner)

	if err := c.Save(ctx, &model.TokenSet{AccessToken: "saved"}); err != nil {
		t.Fatal(err)
	}
	if inner.saves != 1 || inner.tokens.AccessToken != "saved" {
		t.Errorf("save not written through: %+v", inner.tokens)
	}

	c.Set(&model.TokenSet{AccessToken: "pushed"})
	ts, err := c.Load(ctx)
	if err != nil || ts.AccessToken != "pushed" {
		t.Errorf("after Set: %+v, %v", ts, err)
	}

	c.Set(nil)
	if _, err := c.Load(ctx); !errors.Is(err, ErrNoTokens) {
		t.Errorf("after Set(nil): %v", err)
	}

	c.Set(&model.TokenSet{AccessToken: "x"})
	if err := c.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if inner.clears != 1 {
		t.Error("clear not written through")
	}
	if _, err := c.Load(ctx); !errors.Is(err, ErrNoTokens) {
		t.Errorf("after Clear: %v", err)
	}
	if inner.loads != 0 {
		t.Errorf("cache went to the inner store %d times", inner.loads)
	}
}

// 另一个进程登录后，经 Watch 推送，缓存里能看到新 token
func TestCachedStoreFollowsWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	fs := NewFileStore(path)
	cached := NewCachedStore(fs)
	writer := NewFileStore(path)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := cached.Load(ctx); !errors.Is(err, ErrNoTokens) {
		t.Fatalf("initial load: %v", err)
	}
	go fs.Watch(ctx, cached.Set)

	deadline := time.Now().Add(3 * time.Second)
	for {
		if ts, err := cached.Load(ctx); err == nil && ts.AccessToken == "other-terminal" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("cache never picked up the new tokens")
		}
		writer.Save(ctx, &model.TokenSet{AccessToken: "other-terminal"})
		time.Sleep(50 * time.Millisecond)
	}

	if err := writer.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	deadline = time.Now().Add(3 * time.Second)
	for {
		if _, err := cached.Load(ctx); errors.Is(err, ErrNoTokens) {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("cache still holds tokens after logout")
		}
		time.Sleep(20 * time.Millisecond)
	}
}
