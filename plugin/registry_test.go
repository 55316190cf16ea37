package plugin

import (
	"context"
	"errors"
	"log/slog"
	"testing"
)

// testPlugin implements Plugin + BeforeAuthorize + AfterAuthorize.
type testPlugin struct {
	beforeCalled bool
	afterCalled  bool
	lastRule     string
}

func (t *testPlugin) Name() string { return "test-plugin" }

func (t *testPlugin) OnBeforeAuthorize(_ context.Context, _ any, rule string) error {
	t.beforeCalled = true
	t.lastRule = rule
	return nil
}

func (t *testPlugin) OnAfterAuthorize(_ context.Context, _ any, _ string, _ any) error {
	t.afterCalled = true
	return nil
}

// minimalPlugin only implements Plugin (no hooks).
type minimalPlugin struct{}

func (m *minimalPlugin) Name() string { return "minimal" }

// failingPlugin returns an error from every hook it implements.
type failingPlugin struct {
	shutdownCalled bool
}

func (f *failingPlugin) Name() string { return "failing" }

func (f *failingPlugin) OnShutdown(_ context.Context) error {
	f.shutdownCalled = true
	return errors.New("boom")
}

// panickingPlugin panics from its hook.
type panickingPlugin struct{}

func (p *panickingPlugin) Name() string { return "panicking" }

func (p *panickingPlugin) OnBeforeAuthorize(_ context.Context, _ any, _ string) error {
	panic("boom")
}

func TestRegistryDispatch(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(slog.Default())

	tp := &testPlugin{}
	reg.Register(tp)
	reg.Register(&minimalPlugin{})

	if len(reg.Plugins()) != 2 {
		t.Fatalf("expected 2 plugins, got %d", len(reg.Plugins()))
	}

	// Should dispatch BeforeAuthorize to testPlugin only.
	reg.EmitBeforeAuthorize(ctx, nil, "edit?")
	if !tp.beforeCalled {
		t.Fatal("OnBeforeAuthorize was not called")
	}
	if tp.lastRule != "edit?" {
		t.Fatalf("expected rule edit?, got %q", tp.lastRule)
	}

	// Should dispatch AfterAuthorize.
	reg.EmitAfterAuthorize(ctx, nil, "edit?", nil)
	if !tp.afterCalled {
		t.Fatal("OnAfterAuthorize was not called")
	}

	// Should not panic on hooks with no listeners.
	reg.EmitScopeApplied(ctx, "post", "")
	reg.EmitShutdown(ctx)
}

func TestRegistrySwallowsHookErrors(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(slog.Default())

	fp := &failingPlugin{}
	reg.Register(fp)

	// The error must be logged, never propagated or panicking.
	reg.EmitShutdown(ctx)
	if !fp.shutdownCalled {
		t.Fatal("OnShutdown was not called")
	}
}

func TestRegistryIsolatesHookPanics(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(slog.Default())

	reg.Register(&panickingPlugin{})
	tp := &testPlugin{}
	reg.Register(tp)

	// A panicking hook must be contained and must not stop dispatch to the
	// remaining plugins.
	reg.EmitBeforeAuthorize(ctx, nil, "edit?")
	if !tp.beforeCalled {
		t.Fatal("plugins after a panicking one were not notified")
	}
}
