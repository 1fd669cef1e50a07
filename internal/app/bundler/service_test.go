// SPDX-License-Identifier: MPL-2.0

package bundler

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/spf13/afero"
	lua "github.com/yuin/gopher-lua"

	"github.com/BlockOG/bundle-lua/internal/textio"
	"github.com/BlockOG/bundle-lua/pkg/bundle"
	"github.com/BlockOG/bundle-lua/pkg/luamod"
	"github.com/BlockOG/bundle-lua/pkg/types"
)

func newService(t *testing.T, files map[string]string) (*Service, afero.Fs) {
	t.Helper()
	mem := afero.NewMemMapFs()
	for name, content := range files {
		if err := afero.WriteFile(mem, name, []byte(content), 0o644); err != nil {
			t.Fatalf("seeding %s: %v", name, err)
		}
	}
	return New(textio.New(mem)), mem
}

func readFile(t *testing.T, fs afero.Fs, name string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, name)
	if err != nil {
		t.Fatalf("reading %s: %v", name, err)
	}
	return string(data)
}

func TestBundleFiles(t *testing.T) {
	t.Parallel()

	svc, mem := newService(t, map[string]string{
		"/p/main.lua":     `print(require("foo"))`,
		"/p/lib/foo.lua":  "return 1",
		"/p/lib/bar.lua":  "return 2",
		"/p/out/.gitkeep": "",
	})

	res, diags, err := svc.BundleFiles(context.Background(), FilesRequest{
		Output:   "/p/out/bundle.lua",
		Main:     "/p/main.lua",
		Packages: []types.FilesystemPath{"/p/lib/foo.lua", "/p/lib/bar.lua"},
	})
	if err != nil {
		t.Fatalf("BundleFiles() error = %v", err)
	}
	if len(diags) != 0 {
		t.Errorf("diagnostics = %v, want none", diags)
	}
	if !slices.Equal(res.Modules, []luamod.Identifier{"foo", "bar"}) {
		t.Errorf("Modules = %q", res.Modules)
	}

	want := bundle.EmitEager(`print(require("foo"))`, []bundle.Package{
		{Path: "/p/lib/foo.lua", Source: "return 1"},
		{Path: "/p/lib/bar.lua", Source: "return 2"},
	})
	got := readFile(t, mem, "/p/out/bundle.lua")
	if got != want {
		t.Errorf("written bundle =\n%s\nwant\n%s", got, want)
	}
	if res.Bytes != len(want) {
		t.Errorf("Bytes = %d, want %d", res.Bytes, len(want))
	}
}

func TestBundleFiles_NoPackagesIsNoOp(t *testing.T) {
	t.Parallel()

	svc, mem := newService(t, map[string]string{"/p/main.lua": "x"})

	res, _, err := svc.BundleFiles(context.Background(), FilesRequest{
		Output: "/p/out.lua",
		Main:   "/p/main.lua",
	})
	if err != nil {
		t.Fatalf("BundleFiles() error = %v", err)
	}
	if !res.NoOp {
		t.Error("NoOp = false, want true")
	}
	if ok, _ := afero.Exists(mem, "/p/out.lua"); ok {
		t.Error("output was written for a no-op")
	}
}

func TestBundleFiles_HardAbortLeavesOutputUntouched(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		req      FilesRequest
		wantErr  error
		wantText string
	}{
		{
			name: "missing package",
			req: FilesRequest{
				Output:   "/p/out.lua",
				Main:     "/p/main.lua",
				Packages: []types.FilesystemPath{"/p/a.lua", "/p/missing.lua"},
			},
			wantErr:  bundle.ErrNotAFile,
			wantText: "/p/missing.lua",
		},
		{
			name: "main is a directory",
			req: FilesRequest{
				Output:   "/p/out.lua",
				Main:     "/p",
				Packages: []types.FilesystemPath{"/p/a.lua"},
			},
			wantErr:  bundle.ErrNotAFile,
			wantText: "main has to be a file",
		},
		{
			name: "output is a directory",
			req: FilesRequest{
				Output:   "/p/dir",
				Main:     "/p/main.lua",
				Packages: []types.FilesystemPath{"/p/a.lua"},
			},
			wantErr:  bundle.ErrNotAFile,
			wantText: "output has to be a file",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, mem := newService(t, map[string]string{
				"/p/main.lua":  "main",
				"/p/a.lua":     "return 1",
				"/p/out.lua":   "previous",
				"/p/dir/.keep": "",
			})

			_, _, err := svc.BundleFiles(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantText) {
				t.Errorf("error %q does not contain %q", err, tt.wantText)
			}
			if got := readFile(t, mem, "/p/out.lua"); got != "previous" {
				t.Errorf("output changed to %q", got)
			}
		})
	}
}

func TestBundleDir_AutoDetect(t *testing.T) {
	t.Parallel()

	main := `local s = require("util/strings")
local m = require("math2")
local again = require("util/strings")
local skipped = require('quoted')
`
	svc, mem := newService(t, map[string]string{
		"/proj/src/main.lua":         main,
		"/proj/src/util/strings.lua": "return {}",
		"/proj/src/math2.lua":        "return { pi = 3 }",
		"/proj/src/extra.lua":        "return true",
	})

	res, diags, err := svc.BundleDir(context.Background(), DirRequest{
		Output:     "/proj/dist/game.lua",
		SourceDir:  "/proj/src",
		Main:       "main.lua",
		Packages:   []string{"extra"},
		AutoDetect: true,
	})
	if err != nil {
		t.Fatalf("BundleDir() error = %v", err)
	}
	if len(diags) != 0 {
		t.Errorf("diagnostics = %v, want none", diags)
	}
	wantIDs := []luamod.Identifier{"extra", "util/strings", "math2"}
	if !slices.Equal(res.Modules, wantIDs) {
		t.Errorf("Modules = %q, want %q", res.Modules, wantIDs)
	}

	b := bundle.New(main)
	b.Add("extra", "return true")
	b.Add("util/strings", "return {}")
	b.Add("math2", "return { pi = 3 }")
	if got := readFile(t, mem, "/proj/dist/game.lua"); got != bundle.EmitLazy(b) {
		t.Errorf("written bundle differs from expected emission:\n%s", got)
	}
}

func TestBundleDir_MissingDependencyIsSkipped(t *testing.T) {
	t.Parallel()

	svc, mem := newService(t, map[string]string{
		"/src/main.lua":    `require("present") require("absent")`,
		"/src/present.lua": "return 1",
	})

	res, diags, err := svc.BundleDir(context.Background(), DirRequest{
		Output:     "/out.lua",
		SourceDir:  "/src",
		Main:       "main.lua",
		AutoDetect: true,
	})
	if err != nil {
		t.Fatalf("BundleDir() error = %v", err)
	}
	if !slices.Equal(res.Modules, []luamod.Identifier{"present"}) {
		t.Errorf("Modules = %q", res.Modules)
	}
	if !slices.Equal(res.Skipped, []luamod.Identifier{"absent"}) {
		t.Errorf("Skipped = %q", res.Skipped)
	}
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(diags))
	}
	d := diags[0]
	if d.Severity != SeverityWarning || d.Code != CodeMissingDependency || d.Identifier != "absent" {
		t.Errorf("diagnostic = %+v", d)
	}
	if !errors.Is(d.Cause, bundle.ErrMissingDependency) {
		t.Errorf("Cause = %v, want ErrMissingDependency", d.Cause)
	}
	if out := readFile(t, mem, "/out.lua"); strings.Contains(out, `____bundle__funcs["absent"]`) {
		t.Error("skipped module was emitted")
	}
}

func TestBundleDir_NoDependenciesCopiesMain(t *testing.T) {
	t.Parallel()

	svc, mem := newService(t, map[string]string{"/src/main.lua": "print('hi')\n"})

	if _, _, err := svc.BundleDir(context.Background(), DirRequest{
		Output:    "/out.lua",
		SourceDir: "/src",
		Main:      "main.lua",
	}); err != nil {
		t.Fatalf("BundleDir() error = %v", err)
	}
	if got := readFile(t, mem, "/out.lua"); got != "print('hi')\n" {
		t.Errorf("output = %q, want main unchanged", got)
	}
}

func TestBundleDir_RebundlingIsIdempotent(t *testing.T) {
	t.Parallel()

	svc, mem := newService(t, map[string]string{
		"/src/main.lua":  `return require("dep")`,
		"/src/dep.lua":   "return 42",
		"/src/extra.lua": "return 7",
	})
	ctx := context.Background()

	if _, _, err := svc.BundleDir(ctx, DirRequest{Output: "/src/bundled.lua", SourceDir: "/src", Main: "main.lua", AutoDetect: true}); err != nil {
		t.Fatal(err)
	}
	first := readFile(t, mem, "/src/bundled.lua")

	for _, autoDetect := range []bool{false, true} {
		res, diags, err := svc.BundleDir(ctx, DirRequest{Output: "/src/again.lua", SourceDir: "/src", Main: "bundled.lua", AutoDetect: autoDetect})
		if err != nil {
			t.Fatal(err)
		}
		if second := readFile(t, mem, "/src/again.lua"); second != first {
			t.Errorf("autoDetect=%v: rebundled output differs:\n%s\n---\n%s", autoDetect, second, first)
		}
		if !slices.Equal(res.Modules, []luamod.Identifier{"dep"}) || len(diags) != 0 {
			t.Errorf("autoDetect=%v: Modules = %q, diagnostics = %v", autoDetect, res.Modules, diags)
		}
	}

	if _, _, err := svc.BundleDir(ctx, DirRequest{Output: "/src/chained.lua", SourceDir: "/src", Main: "bundled.lua", Packages: []string{"extra"}, AutoDetect: true}); err != nil {
		t.Fatal(err)
	}
	chained := readFile(t, mem, "/src/chained.lua")
	if n := strings.Count(chained, bundle.LazyShim); n != 1 {
		t.Errorf("chained output contains %d shims, want 1", n)
	}
	for _, id := range []string{"dep", "extra"} {
		if n := strings.Count(chained, `____bundle__funcs["`+id+`"]`); n != 1 {
			t.Errorf("chained output defines %s %d times, want 1", id, n)
		}
	}
}

func TestBundleDir_RebundlingPicksUpChangedModules(t *testing.T) {
	t.Parallel()

	svc, mem := newService(t, map[string]string{
		"/src/main.lua": `return require("dep")`,
		"/src/dep.lua":  "return 42",
	})
	ctx := context.Background()

	if _, _, err := svc.BundleDir(ctx, DirRequest{Output: "/src/bundled.lua", SourceDir: "/src", Main: "main.lua", AutoDetect: true}); err != nil {
		t.Fatal(err)
	}

	if err := afero.WriteFile(mem, "/src/dep.lua", []byte("return 99"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.BundleDir(ctx, DirRequest{Output: "/src/updated.lua", SourceDir: "/src", Main: "bundled.lua", AutoDetect: true}); err != nil {
		t.Fatal(err)
	}
	if got := runChunk(t, readFile(t, mem, "/src/updated.lua")); got != "99" {
		t.Errorf("updated bundle returned %s, want 99", got)
	}

	// A module whose file is gone keeps its bundled copy.
	if err := mem.Remove("/src/dep.lua"); err != nil {
		t.Fatal(err)
	}
	_, diags, err := svc.BundleDir(ctx, DirRequest{Output: "/src/kept.lua", SourceDir: "/src", Main: "updated.lua", AutoDetect: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(diags) != 0 {
		t.Errorf("diagnostics = %v, want none", diags)
	}
	if got := runChunk(t, readFile(t, mem, "/src/kept.lua")); got != "99" {
		t.Errorf("bundle without source file returned %s, want 99", got)
	}
}

// runChunk runs a bundle and returns its result as a string.
func runChunk(t *testing.T, src string) string {
	t.Helper()
	L := lua.NewState()
	defer L.Close()
	fn, err := L.LoadString(src)
	if err != nil {
		t.Fatalf("loading bundle: %v\n%s", err, src)
	}
	L.Push(fn)
	if err := L.PCall(0, 1, nil); err != nil {
		t.Fatalf("running bundle: %v", err)
	}
	return L.Get(-1).String()
}

func TestBundleDir_Validation(t *testing.T) {
	t.Parallel()

	files := map[string]string{"/src/main.lua": "x", "/file.lua": "x"}

	tests := []struct {
		name    string
		req     DirRequest
		wantErr error
	}{
		{"source is a file", DirRequest{Output: "/o.lua", SourceDir: "/file.lua", Main: "main.lua"}, bundle.ErrNotADirectory},
		{"missing source", DirRequest{Output: "/o.lua", SourceDir: "/nope", Main: "main.lua"}, bundle.ErrNotADirectory},
		{"missing main", DirRequest{Output: "/o.lua", SourceDir: "/src", Main: "other.lua"}, bundle.ErrNotAFile},
		{"output is a directory", DirRequest{Output: "/src", SourceDir: "/src", Main: "main.lua"}, bundle.ErrNotAFile},
		{"invalid identifier", DirRequest{Output: "/o.lua", SourceDir: "/src", Main: "main.lua", Packages: []string{""}}, bundle.ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, mem := newService(t, files)
			_, _, err := svc.BundleDir(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if ok, _ := afero.Exists(mem, "/o.lua"); ok {
				t.Error("output written despite validation failure")
			}
		})
	}
}

func TestBundleDir_CanceledContext(t *testing.T) {
	t.Parallel()

	svc, mem := newService(t, map[string]string{
		"/src/main.lua": `require("a")`,
		"/src/a.lua":    "return 1",
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := svc.BundleDir(ctx, DirRequest{Output: "/o.lua", SourceDir: "/src", Main: "main.lua", AutoDetect: true})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if ok, _ := afero.Exists(mem, "/o.lua"); ok {
		t.Error("output written after cancellation")
	}
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t, map[string]string{
		"/main.lua": `require("a/b") require("a/b") require('c') require("d")`,
	})

	ids, err := svc.Discover(context.Background(), DiscoverRequest{File: "/main.lua", Packages: []string{"d", "z"}})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	want := []luamod.Identifier{"d", "z", "a/b"}
	if !slices.Equal(ids, want) {
		t.Errorf("Discover() = %q, want %q", ids, want)
	}

	if _, err := svc.Discover(context.Background(), DiscoverRequest{File: "/missing.lua"}); !errors.Is(err, bundle.ErrNotAFile) {
		t.Errorf("Discover(missing) error = %v, want ErrNotAFile", err)
	}
}
