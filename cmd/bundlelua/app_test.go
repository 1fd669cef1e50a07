// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/BlockOG/bundle-lua/internal/app/bundler"
	"github.com/BlockOG/bundle-lua/internal/config"
	"github.com/BlockOG/bundle-lua/internal/manifest"
	"github.com/BlockOG/bundle-lua/internal/textio"
	"github.com/BlockOG/bundle-lua/pkg/bundle"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

type (
	staticConfigProvider struct {
		cfg *config.Config
		err error
	}

	testHarness struct {
		fs     afero.Fs
		app    *App
		stdout *bytes.Buffer
		stderr *bytes.Buffer
	}
)

func (p *staticConfigProvider) Load(context.Context, config.LoadOptions) (*config.Config, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.cfg, nil
}

func newTestHarness(t *testing.T, cfg *config.Config, files map[string]string) *testHarness {
	t.Helper()

	fs := afero.NewMemMapFs()
	for name, content := range files {
		if err := afero.WriteFile(fs, name, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile(%s): %v", name, err)
		}
	}

	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	h := &testHarness{fs: fs, stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
	app, err := NewApp(Dependencies{
		Files:   fs,
		Config:  &staticConfigProvider{cfg: cfg},
		Bundler: bundler.New(textio.New(fs)),
		Stdout:  h.stdout,
		Stderr:  h.stderr,
	})
	if err != nil {
		t.Fatalf("NewApp() error: %v", err)
	}
	h.app = app
	return h
}

func (h *testHarness) run(t *testing.T, args ...string) error {
	t.Helper()

	root := NewRootCommand(h.app)
	root.SetArgs(args)
	return root.ExecuteContext(t.Context())
}

func (h *testHarness) read(t *testing.T, name string) string {
	t.Helper()

	data, err := afero.ReadFile(h.fs, name)
	if err != nil {
		t.Fatalf("ReadFile(%s): %v", name, err)
	}
	return string(data)
}

func TestFilesCommand(t *testing.T) {
	t.Parallel()

	h := newTestHarness(t, nil, map[string]string{
		"main.lua":    `print(require("foo"))`,
		"lib/foo.lua": `return "foo"`,
	})

	if err := h.run(t, "files", "out.lua", "main.lua", "lib/foo.lua"); err != nil {
		t.Fatalf("files: %v", err)
	}
	if strings.TrimSpace(h.stdout.String()) != doneMessage {
		t.Errorf("stdout = %q, want %q", h.stdout.String(), doneMessage)
	}

	out := h.read(t, "out.lua")
	if !strings.HasPrefix(out, bundle.EagerShim) {
		t.Error("output does not start with the eager shim")
	}
	if !strings.Contains(out, `____bundle__files["foo.lua"] = ____bundle__files["foo"]`) {
		t.Errorf("output misses file name alias:\n%s", out)
	}
}

func TestFilesCommand_NoPackages(t *testing.T) {
	t.Parallel()

	h := newTestHarness(t, nil, map[string]string{"main.lua": "print(1)"})

	if err := h.run(t, "files", "out.lua", "main.lua"); err != nil {
		t.Fatalf("files: %v", err)
	}
	if strings.TrimSpace(h.stdout.String()) != noPackagesMessage {
		t.Errorf("stdout = %q, want %q", h.stdout.String(), noPackagesMessage)
	}
	if exists, _ := afero.Exists(h.fs, "out.lua"); exists {
		t.Error("out.lua was written for a no-op run")
	}
}

func TestFilesCommand_FailureExitError(t *testing.T) {
	t.Parallel()

	h := newTestHarness(t, nil, map[string]string{"main.lua": "print(1)"})

	err := h.run(t, "files", "out.lua", "main.lua", "missing.lua")

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("error = %v, want *ExitError", err)
	}
	if exitErr.Code != 1 {
		t.Errorf("exit code = %d, want 1", exitErr.Code)
	}
	if !errors.Is(err, bundle.ErrNotAFile) {
		t.Errorf("error chain lost ErrNotAFile: %v", err)
	}
	if !strings.Contains(h.stderr.String(), "package has to be a file: missing.lua") {
		t.Errorf("stderr = %q", h.stderr.String())
	}
	if exists, _ := afero.Exists(h.fs, "out.lua"); exists {
		t.Error("out.lua was written despite the failure")
	}
}

func TestDirCommand_AutoDetectFromConfig(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"src/main.lua":   `local a = require("a")` + "\n" + `local gone = require("gone")`,
		"src/a.lua":      "return 1",
		"src/extra.lua":  "return 2",
		"src/unused.lua": "return 3",
	}

	t.Run("config enables detection", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.AutoDetect = true
		h := newTestHarness(t, cfg, files)

		if err := h.run(t, "dir", "out.lua", "src", "main.lua", "extra"); err != nil {
			t.Fatalf("dir: %v", err)
		}

		out := h.read(t, "out.lua")
		extra := strings.Index(out, `____bundle__funcs["extra"]`)
		a := strings.Index(out, `____bundle__funcs["a"]`)
		if extra < 0 || a < 0 || extra > a {
			t.Errorf("want explicit extra before detected a:\n%s", out)
		}
		if strings.Contains(out, `"unused"`) {
			t.Error("unreferenced module was bundled")
		}

		stderr := h.stderr.String()
		if !strings.Contains(stderr, "module=gone") || !strings.Contains(stderr, "code=missing_dependency") {
			t.Errorf("stderr = %q, want missing dependency warning", stderr)
		}
	})

	t.Run("flag overrides config", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.AutoDetect = true
		h := newTestHarness(t, cfg, files)

		if err := h.run(t, "dir", "out.lua", "src", "main.lua", "--auto-detect=false"); err != nil {
			t.Fatalf("dir: %v", err)
		}
		if got, want := h.read(t, "out.lua"), files["src/main.lua"]; got != want {
			t.Errorf("output = %q, want main unchanged", got)
		}
	})
}

func TestDiscoverCommand(t *testing.T) {
	t.Parallel()

	h := newTestHarness(t, nil, map[string]string{
		"main.lua": `require("b")` + "\n" + `require("a")` + "\n" + `require("b")`,
	})

	if err := h.run(t, "discover", "main.lua", "a"); err != nil {
		t.Fatalf("discover: %v", err)
	}
	if got, want := h.stdout.String(), "a\nb\n"; got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
}

func TestBuildCommand(t *testing.T) {
	t.Parallel()

	h := newTestHarness(t, nil, map[string]string{
		"/proj/bundle.toml":  "[bundle]\noutput = \"dist/out.lua\"\nsource = \"src\"\nauto_detect = true\n",
		"/proj/src/main.lua": `return require("a")`,
		"/proj/src/a.lua":    "return 1",
		"/proj/dist/.keep":   "",
	})

	if err := h.run(t, "build", "/proj/src"); err != nil {
		t.Fatalf("build: %v", err)
	}
	out := h.read(t, "/proj/dist/out.lua")
	if !strings.HasPrefix(out, bundle.LazyShim) || !strings.Contains(out, `____bundle__funcs["a"]`) {
		t.Errorf("unexpected bundle:\n%s", out)
	}

	t.Run("missing manifest", func(t *testing.T) {
		t.Parallel()

		h := newTestHarness(t, nil, map[string]string{"/elsewhere/main.lua": "x"})
		err := h.run(t, "build", "/elsewhere")

		var exitErr *ExitError
		if !errors.As(err, &exitErr) || !errors.Is(err, manifest.ErrNotFound) {
			t.Fatalf("build error = %v, want ExitError wrapping ErrNotFound", err)
		}
	})
}

func TestNewSession(t *testing.T) {
	t.Parallel()

	t.Run("config verbose enables debug", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.UI.Verbose = true
		h := newTestHarness(t, cfg, nil)

		s := h.app.newSession(t.Context(), &rootFlagValues{})
		if !s.verbose {
			t.Error("verbose not taken from config")
		}
		if s.logger.GetLevel() != log.DebugLevel {
			t.Errorf("level = %v, want debug", s.logger.GetLevel())
		}
	})

	t.Run("log level from config", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.Log.Level = config.LogLevelError
		h := newTestHarness(t, cfg, nil)

		s := h.app.newSession(t.Context(), &rootFlagValues{})
		if s.logger.GetLevel() != log.ErrorLevel {
			t.Errorf("level = %v, want error", s.logger.GetLevel())
		}
	})

	t.Run("load failure falls back to defaults", func(t *testing.T) {
		t.Parallel()

		var stderr bytes.Buffer
		app, err := NewApp(Dependencies{
			Config: &staticConfigProvider{err: errors.New("broken config")},
			Stdout: &bytes.Buffer{},
			Stderr: &stderr,
		})
		if err != nil {
			t.Fatalf("NewApp() error: %v", err)
		}

		s := app.newSession(t.Context(), &rootFlagValues{})
		if s.cfg == nil || s.cfg.Log.Level != config.LogLevelInfo {
			t.Errorf("cfg = %+v, want defaults", s.cfg)
		}
		if !strings.Contains(stderr.String(), "broken config") {
			t.Errorf("stderr = %q, want the load error", stderr.String())
		}
	})
}

func TestDiagnosticRenderer(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := newLogger(&buf, config.LogLevelInfo, false)

	r := &defaultDiagnosticRenderer{}
	r.Render(t.Context(), []bundler.Diagnostic{
		{Severity: bundler.SeverityWarning, Code: bundler.CodeMissingDependency, Message: "skipped", Identifier: "x", Path: "src/x.lua"},
		{Severity: bundler.SeverityWarning, Code: bundler.CodeUnreadableDependency, Message: "unreadable", Identifier: "y"},
	}, logger)

	out := buf.String()
	for _, want := range []string{"WARN", "skipped", "module=x", "path=src/x.lua", "unreadable", "module=y", "code=unreadable_dependency"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}
