package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/plugfy/plugfy/internal/outcome"
	"github.com/plugfy/plugfy/pkg/extension"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func copyFixture(t *testing.T, name, dir string) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

func loadLua(t *testing.T, ectx extension.Context, fixtures ...string) *Result {
	t.Helper()
	dir := t.TempDir()
	for _, f := range fixtures {
		copyFixture(t, f, dir)
	}
	l := New()
	t.Cleanup(func() { _ = l.Close() })
	return l.Load(dir, ectx)
}

func TestLuaOpener_Greeter(t *testing.T) {
	ectx := extension.Context{
		ExtensionName: "myext",
		Version:       "1.2.0",
		Settings:      map[string]any{"greeting": "hi"},
	}
	res := loadLua(t, ectx, "greeter.lua")

	require.Empty(t, res.Failures)
	require.Len(t, res.Instances, 1, "helper declares the extension contract second and must be skipped")
	assert.Equal(t, []string{"helper"}, res.Skipped)

	ext := res.Instances[0].Extension
	opts := ext.ExecutionOptions()
	require.Len(t, opts, 2)
	assert.Equal(t, extension.ExecutionOption{Name: "hello", Description: "Say hello"}, opts[0])

	var events []extension.Event
	err := ext.Execute(context.Background(), opts[0], map[string]any{"name": "world"}, func(ev extension.Event) {
		events = append(events, ev)
	})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "progress", events[0].Type)
	assert.Equal(t, "hi world", events[0].Message)
	assert.Equal(t, map[string]any{"count": int64(1)}, events[0].Data)
	assert.Equal(t, extension.Event{Type: "done", Message: "myext@1.2.0"}, events[1])

	err = ext.Execute(context.Background(), opts[1], nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "greeter failed on purpose")
}

func TestLuaOpener_Failures(t *testing.T) {
	res := loadLua(t, extension.Context{}, "badinit.lua", "broken.lua", "noexec.lua")

	require.Len(t, res.Failures, 3)

	assert.Equal(t, "badinit", res.Failures[0].Registration)
	assert.True(t, outcome.IsKind(res.Failures[0].Err, outcome.InstantiationFailed))
	assert.Contains(t, res.Failures[0].Err.Error(), "missing configuration")

	assert.Empty(t, res.Failures[1].Registration)
	assert.True(t, outcome.IsKind(res.Failures[1].Err, outcome.ModuleLoadFailed))

	assert.Equal(t, "noexec", res.Failures[2].Registration)
	assert.True(t, outcome.IsKind(res.Failures[2].Err, outcome.InstantiationFailed))

	require.Len(t, res.Instances, 1)
	assert.Equal(t, "dynamic", res.Instances[0].Name)
	assert.Equal(t, []extension.ExecutionOption{
		{Name: "a"},
		{Name: "b", Description: "second"},
	}, res.Instances[0].Extension.ExecutionOptions())
}

func TestLuaOpener_MissingTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.lua")
	require.NoError(t, os.WriteFile(path, []byte("local x = 1\n"), 0o644))

	_, err := LuaOpener{}.Open(path)
	assert.ErrorContains(t, err, `global "extensions" table`)
}

func TestLuaExtension_ClosedState(t *testing.T) {
	dir := t.TempDir()
	copyFixture(t, "greeter.lua", dir)
	l := New()
	res := l.Load(dir, extension.Context{})
	require.Len(t, res.Instances, 1)
	require.NoError(t, l.Close())

	err := res.Instances[0].Extension.Execute(context.Background(), extension.ExecutionOption{Name: "hello"}, nil, nil)
	assert.ErrorContains(t, err, "closed")
}

func TestLuaExtension_CanceledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spin.lua")
	require.NoError(t, os.WriteFile(path, []byte(`
extensions = {
  { name = "spin", options = { "spin" }, execute = function() while true do end end },
}
`), 0o644))

	mod, err := LuaOpener{}.Open(path)
	require.NoError(t, err)
	defer mod.Close()
	ext, err := mod.Registrations[0].New(extension.Context{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = ext.Execute(ctx, extension.ExecutionOption{Name: "spin"}, nil, nil)
	assert.Error(t, err)
}
