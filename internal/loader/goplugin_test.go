package loader

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/plugfy/plugfy/pkg/extension"
)

func TestRegistrationsFromSymbol(t *testing.T) {
	regs := []extension.Registration{fakeRegistration("a"), fakeRegistration("b")}
	fn := func() []extension.Registration { return regs }
	discovery := extension.Discovery(fn)
	var nilDiscovery extension.Discovery

	tests := []struct {
		name    string
		sym     any
		want    int
		wantErr bool
	}{
		{"function", fn, 2, false},
		{"discovery value", discovery, 2, false},
		{"discovery variable", &discovery, 2, false},
		{"registration variable", &regs, 2, false},
		{"nil discovery variable", &nilDiscovery, 0, true},
		{"wrong type", 42, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := registrationsFromSymbol(tt.sym)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != tt.want {
				t.Errorf("got %d registrations, want %d", len(got), tt.want)
			}
		})
	}
}

func TestPluginOpener_RejectsNonPlugin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.so")
	if err := os.WriteFile(path, []byte("not an ELF file"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := (PluginOpener{}).Open(path); err == nil {
		t.Fatal("expected error opening a corrupt plugin")
	}
}

func TestPluginOpener_BuiltPlugin(t *testing.T) {
	if testing.Short() {
		t.Skip("builds a plugin")
	}
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		t.Skipf("plugins are not supported on %s", runtime.GOOS)
	}
	goBin, err := exec.LookPath("go")
	if err != nil {
		t.Skip("go toolchain not available")
	}

	out := filepath.Join(t.TempDir(), "sample.so")
	build := exec.Command(goBin, "build", "-buildmode=plugin", "-o", out, "./testdata/goplugin")
	if msg, err := build.CombinedOutput(); err != nil {
		t.Skipf("cannot build plugin: %v\n%s", err, msg)
	}

	mod, err := PluginOpener{}.Open(out)
	if err != nil {
		// Test binaries built with -cover or -race do not share package
		// hashes with a plain plugin build, and cgo-less builds have no
		// plugin support at all.
		if strings.Contains(err.Error(), "different version of package") || strings.Contains(err.Error(), "not implemented") {
			t.Skip(err)
		}
		t.Fatalf("Open: %v", err)
	}
	if len(mod.Registrations) != 1 || !mod.Registrations[0].Qualifies() {
		t.Fatalf("registrations = %+v", mod.Registrations)
	}

	ext, err := mod.Registrations[0].New(extension.Context{Version: "9.9.9"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var got []extension.Event
	if err := ext.Execute(context.Background(), ext.ExecutionOptions()[0], nil, func(ev extension.Event) {
		got = append(got, ev)
	}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(got) != 1 || got[0].Message != "run@9.9.9" {
		t.Errorf("events = %+v", got)
	}
}
