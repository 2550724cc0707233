package store

import (
	"context"
	"testing"
	"time"

	"github.com/canteenhub/predictkit/core"
)

func TestMemoryStore_SetGetDelete(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); !core.IsStoreNotFound(err) {
		t.Fatalf("missing key: got %v, want not found", err)
	}

	if err := s.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Fatalf("Get = (%q, %v), want v", got, err)
	}

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, "k"); !core.IsStoreNotFound(err) {
		t.Fatalf("deleted key: got %v, want not found", err)
	}
}

func TestMemoryStore_TTLExpiry(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	if err := s.Set(ctx, "short", []byte("v"), 1); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, "short"); err != nil {
		t.Fatalf("fresh key must be readable, got %v", err)
	}

	// 过期判断在读路径上，不依赖后台清理
	s.mu.Lock()
	expired := time.Now().Add(-time.Second)
	s.data["short"].ttl = &expired
	s.mu.Unlock()

	if _, err := s.Get(ctx, "short"); !core.IsStoreNotFound(err) {
		t.Fatalf("expired key: got %v, want not found", err)
	}
}

func TestMemoryStore_BatchOps(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	kvs := map[string][]byte{"a": []byte("1"), "b": []byte("2")}
	if err := s.BatchSet(ctx, kvs); err != nil {
		t.Fatal(err)
	}

	got, err := s.BatchGet(ctx, []string{"a", "b", "missing"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || string(got["a"]) != "1" || string(got["b"]) != "2" {
		t.Fatalf("BatchGet = %v", got)
	}
}

func TestMemoryStore_ZSetOrdering(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	s.ZAdd(ctx, "hot", 3, "rice")
	s.ZAdd(ctx, "hot", 5, "noodles")
	s.ZAdd(ctx, "hot", 3, "bun")
	s.ZAdd(ctx, "hot", 1, "tea")

	got, err := s.ZRange(ctx, "hot", 0, 2)
	if err != nil {
		t.Fatal(err)
	}
	// 分数降序；同分按成员升序
	want := []string{"noodles", "bun", "rice"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}

	score, err := s.ZScore(ctx, "hot", "noodles")
	if err != nil || score != 5 {
		t.Fatalf("ZScore = (%v, %v), want 5", score, err)
	}
	if _, err := s.ZScore(ctx, "hot", "ghost"); !core.IsStoreNotFound(err) {
		t.Fatalf("ghost member: got %v, want not found", err)
	}
}

func TestMemoryStore_HashOps(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	s.HSet(ctx, "dish:rice", "price", []byte("12"))
	s.HSet(ctx, "dish:rice", "category", []byte("staple"))

	got, err := s.HGet(ctx, "dish:rice", "price")
	if err != nil || string(got) != "12" {
		t.Fatalf("HGet = (%q, %v), want 12", got, err)
	}

	all, err := s.HGetAll(ctx, "dish:rice")
	if err != nil || len(all) != 2 {
		t.Fatalf("HGetAll = (%v, %v), want 2 fields", all, err)
	}
	if _, err := s.HGet(ctx, "dish:rice", "missing"); !core.IsStoreNotFound(err) {
		t.Fatalf("missing field: got %v, want not found", err)
	}
}
