package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/hupe1980/agentcore/core"
)

// Interface compliance (compile-time assertions)
var _ core.MemoryStore = (*InMemoryStore)(nil)

func TestInMemoryStore_GetPut(t *testing.T) {
	ctx := context.Background()
	svc := NewInMemoryStore()

	if _, ok, err := svc.Get(ctx, "a", "k"); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	if err := svc.Put(ctx, "a", "k", "v1"); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := svc.Put(ctx, "a", "k", "v2"); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	v, ok, _ := svc.Get(ctx, "a", "k")
	if !ok || v != "v2" {
		t.Fatalf("expected last write to win, got %v", v)
	}
	if _, ok, _ := svc.Get(ctx, "b", "k"); ok {
		t.Fatal("namespaces must be isolated")
	}
}

func TestInMemoryStore_KeysDelete(t *testing.T) {
	ctx := context.Background()
	svc := NewInMemoryStore()
	for _, k := range []string{"c", "a", "b"} {
		_ = svc.Put(ctx, "ns", k, k)
	}
	keys, err := svc.Keys(ctx, "ns")
	if err != nil {
		t.Fatalf("keys failed: %v", err)
	}
	if len(keys) != 3 || keys[0] != "a" || keys[2] != "c" {
		t.Fatalf("unexpected keys: %v", keys)
	}
	if err := svc.Delete(ctx, "ns", "b"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := svc.Delete(ctx, "missing", "x"); err != nil {
		t.Fatalf("delete of missing key should be a no-op: %v", err)
	}
	keys, _ = svc.Keys(ctx, "ns")
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys after delete, got %v", keys)
	}
}

func TestInMemoryStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewInMemoryStore().Put(ctx, "ns", "k", 1); err == nil {
		t.Fatal("expected context error")
	}
}

func TestInMemoryStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	svc := NewInMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = svc.Put(ctx, "ns", string(rune('a'+i)), i)
			_, _, _ = svc.Get(ctx, "ns", "a")
		}(i)
	}
	wg.Wait()
	keys, _ := svc.Keys(ctx, "ns")
	if len(keys) != 20 {
		t.Fatalf("expected 20 keys, got %d", len(keys))
	}
}
