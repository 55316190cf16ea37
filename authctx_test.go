package verdict

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestAuthContextEagerValue(t *testing.T) {
	ctx := context.Background()
	a := NewAuthContext(WithKeyValue("tenant", "t1"))

	v, err := a.Resolve(ctx, "tenant")
	if err != nil {
		t.Fatal(err)
	}
	if v != "t1" {
		t.Fatalf("expected t1, got %v", v)
	}
}

func TestAuthContextLazyResolution(t *testing.T) {
	ctx := context.Background()
	var calls int
	a := NewAuthContext(WithKeyResolver("user", func(_ context.Context) (any, error) {
		calls++
		return &testUser{ID: "u1"}, nil
	}))

	if calls != 0 {
		t.Fatal("resolver must not run before first access")
	}
	for i := 0; i < 3; i++ {
		v, err := a.Resolve(ctx, "user")
		if err != nil {
			t.Fatal(err)
		}
		if v.(*testUser).ID != "u1" {
			t.Fatalf("unexpected value: %v", v)
		}
	}
	if calls != 1 {
		t.Fatalf("resolver must run exactly once, ran %d times", calls)
	}
}

func TestAuthContextSingleFlight(t *testing.T) {
	ctx := context.Background()
	var calls atomic.Int64
	gate := make(chan struct{})
	a := NewAuthContext(WithKeyResolver("user", func(_ context.Context) (any, error) {
		calls.Add(1)
		<-gate
		return "resolved", nil
	}))

	const n = 8
	var wg sync.WaitGroup
	results := make([]any, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := a.Resolve(ctx, "user")
			if err != nil {
				t.Error(err)
				return
			}
			results[i] = v
		}(i)
	}
	close(gate)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("resolver must run once under concurrency, ran %d times", got)
	}
	for i, v := range results {
		if v != "resolved" {
			t.Fatalf("goroutine %d got %v", i, v)
		}
	}
}

func TestAuthContextUnresolvableKey(t *testing.T) {
	ctx := context.Background()
	a := NewAuthContext()

	_, err := a.Resolve(ctx, "missing")
	if !errors.Is(err, ErrUnresolvableContextKey) {
		t.Fatalf("expected ErrUnresolvableContextKey, got %v", err)
	}
}

func TestAuthContextResolverErrorNotMemoized(t *testing.T) {
	ctx := context.Background()
	var calls int
	a := NewAuthContext(WithKeyResolver("flaky", func(_ context.Context) (any, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("transient")
		}
		return "ok", nil
	}))

	if _, err := a.Resolve(ctx, "flaky"); err == nil {
		t.Fatal("expected first resolution to fail")
	}
	v, err := a.Resolve(ctx, "flaky")
	if err != nil {
		t.Fatal(err)
	}
	if v != "ok" {
		t.Fatalf("expected ok after retry, got %v", v)
	}
}

func TestAuthContextHas(t *testing.T) {
	a := NewAuthContext(
		WithKeyValue("tenant", "t1"),
		WithKeyResolver("user", func(_ context.Context) (any, error) { return nil, nil }),
	)
	if !a.Has("tenant") || !a.Has("user") {
		t.Fatal("expected both keys to be present")
	}
	if a.Has("other") {
		t.Fatal("unexpected key")
	}
}

func TestSessionOwnsAuthContext(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t)

	shared := NewAuthContext(WithKeyValue(ContextKeyUser, &testUser{ID: "u1", Role: "admin"}))
	sess := eng.NewSession(WithAuthContext(shared))

	ok, err := eng.AllowedTo(ctx, sess, "edit?", &testPost{ID: "p1"})
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected the supplied auth context to drive the check")
	}
}
