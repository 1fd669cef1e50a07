// SPDX-License-Identifier: MPL-2.0

package bundler

import (
	"context"
	"fmt"

	"github.com/BlockOG/bundle-lua/pkg/bundle"
	"github.com/BlockOG/bundle-lua/pkg/fspath"
	"github.com/BlockOG/bundle-lua/pkg/luamod"
	"github.com/BlockOG/bundle-lua/pkg/types"
)

// Argument roles used in PathKindError messages.
const (
	roleMain      = "main"
	rolePackage   = "package"
	roleOutput    = "output"
	roleSourceDir = "source directory"
	roleFile      = "file"
)

type (
	// FileSystem is the text loader and output writer the service depends on.
	// *textio.FS implements it.
	FileSystem interface {
		ReadText(path types.FilesystemPath) (string, error)
		Exists(path types.FilesystemPath) bool
		RequireFile(role string, path types.FilesystemPath) error
		RequireDir(role string, path types.FilesystemPath) error
		RequireWritableTarget(role string, path types.FilesystemPath) error
		Commit(path types.FilesystemPath, text string) error
	}

	// Service runs bundling passes against a FileSystem.
	Service struct {
		fs FileSystem
	}

	// FilesRequest is the input of an eager, explicit-file-list bundle.
	FilesRequest struct {
		Output   types.FilesystemPath
		Main     types.FilesystemPath
		Packages []types.FilesystemPath
	}

	// DirRequest is the input of a lazy, directory-rooted bundle.
	//
	// Main is resolved relative to SourceDir unless it is absolute. Packages
	// are module identifiers, not paths.
	DirRequest struct {
		Output     types.FilesystemPath
		SourceDir  types.FilesystemPath
		Main       types.FilesystemPath
		Packages   []string
		AutoDetect bool
	}

	// DiscoverRequest asks which dependencies a file would pull in.
	DiscoverRequest struct {
		File     types.FilesystemPath
		Packages []string
	}

	// Result summarizes a bundling pass.
	Result struct {
		// Output is the written bundle path. Empty when NoOp is set.
		Output types.FilesystemPath
		// Modules lists the bundled modules in emission order.
		Modules []luamod.Identifier
		// Skipped lists dependencies that were discovered but not bundled.
		Skipped []luamod.Identifier
		// NoOp is set when nothing was written.
		NoOp bool
		// Bytes is the size of the written bundle.
		Bytes int
	}
)

// New creates a Service.
func New(fs FileSystem) *Service {
	return &Service{fs: fs}
}

// BundleFiles eagerly bundles an explicit list of package files around a
// main script. Every input is validated and read before the output is
// touched; any failure aborts the pass with nothing written.
//
// An empty package list is a no-op.
func (s *Service) BundleFiles(ctx context.Context, req FilesRequest) (Result, []Diagnostic, error) {
	if len(req.Packages) == 0 {
		return Result{NoOp: true}, nil, nil
	}

	if err := s.fs.RequireFile(roleMain, req.Main); err != nil {
		return Result{}, nil, err
	}
	if err := s.fs.RequireWritableTarget(roleOutput, req.Output); err != nil {
		return Result{}, nil, err
	}
	for _, p := range req.Packages {
		if err := s.fs.RequireFile(rolePackage, p); err != nil {
			return Result{}, nil, err
		}
	}

	main, err := s.fs.ReadText(req.Main)
	if err != nil {
		return Result{}, nil, err
	}

	pkgs := make([]bundle.Package, 0, len(req.Packages))
	modules := make([]luamod.Identifier, 0, len(req.Packages))
	for _, p := range req.Packages {
		if err := ctx.Err(); err != nil {
			return Result{}, nil, err
		}
		src, err := s.fs.ReadText(p)
		if err != nil {
			return Result{}, nil, err
		}
		pkg := bundle.Package{Path: p, Source: src}
		pkgs = append(pkgs, pkg)
		modules = append(modules, luamod.Identifier(pkg.Stem()))
	}

	text := bundle.EmitEager(main, pkgs)
	if err := ctx.Err(); err != nil {
		return Result{}, nil, err
	}
	if err := s.fs.Commit(req.Output, text); err != nil {
		return Result{}, nil, err
	}
	return Result{Output: req.Output, Modules: modules, Bytes: len(text)}, nil, nil
}

// BundleDir lazily bundles the modules a main script depends on, resolved
// under a source directory. Dependencies whose files are missing or
// unreadable are skipped and reported as warnings.
//
// When main is itself a lazy bundle, the modules it already carries are
// kept and refreshed from the source directory; a module whose file is gone
// keeps its bundled copy. Re-bundling unchanged input reproduces main.
func (s *Service) BundleDir(ctx context.Context, req DirRequest) (Result, []Diagnostic, error) {
	explicit, err := luamod.Identifiers(req.Packages)
	if err != nil {
		return Result{}, nil, fmt.Errorf("%w: %w", bundle.ErrInvalidArgument, err)
	}
	if err := s.fs.RequireDir(roleSourceDir, req.SourceDir); err != nil {
		return Result{}, nil, err
	}
	mainPath := s.mainPath(req)
	if err := s.fs.RequireFile(roleMain, mainPath); err != nil {
		return Result{}, nil, err
	}
	if err := s.fs.RequireWritableTarget(roleOutput, req.Output); err != nil {
		return Result{}, nil, err
	}

	main, err := s.fs.ReadText(mainPath)
	if err != nil {
		return Result{}, nil, err
	}

	var (
		diags   []Diagnostic
		skipped []luamod.Identifier
	)
	// A previous bundle fed back in as main: its modules come first, in their
	// bundled order, and are refreshed from SourceDir. Only the script it was
	// built around is scanned.
	b := bundle.Load(main)
	ids := append(b.Identifiers(), explicit...)
	for _, id := range luamod.Discover(b.Main(), ids, req.AutoDetect) {
		if err := ctx.Err(); err != nil {
			return Result{}, nil, err
		}
		// Only a loaded bundle can carry one; it keeps its bundled copy.
		if valid, _ := id.IsValid(); !valid {
			continue
		}
		path := luamod.Resolve(id, req.SourceDir)
		if !s.fs.Exists(path) {
			if b.Has(id) {
				continue
			}
			skipped = append(skipped, id)
			diags = append(diags, Diagnostic{
				Severity:   SeverityWarning,
				Code:       CodeMissingDependency,
				Message:    fmt.Sprintf("module %q not found, skipping", id),
				Path:       path,
				Identifier: id,
				Cause:      &bundle.MissingDependencyError{Identifier: id, Path: path},
			})
			continue
		}
		src, err := s.fs.ReadText(path)
		if err != nil {
			if b.Has(id) {
				continue
			}
			skipped = append(skipped, id)
			diags = append(diags, Diagnostic{
				Severity:   SeverityWarning,
				Code:       CodeUnreadableDependency,
				Message:    fmt.Sprintf("module %q could not be read, skipping", id),
				Path:       path,
				Identifier: id,
				Cause:      &bundle.MissingDependencyError{Identifier: id, Path: path, Err: err},
			})
			continue
		}
		b.Add(id, src)
	}

	text := bundle.EmitLazy(b)
	if err := ctx.Err(); err != nil {
		return Result{}, nil, err
	}
	if err := s.fs.Commit(req.Output, text); err != nil {
		return Result{}, diags, err
	}
	return Result{
		Output:  req.Output,
		Modules: b.Identifiers(),
		Skipped: skipped,
		Bytes:   len(text),
	}, diags, nil
}

// Discover reports the identifiers a directory bundle of file would pull in
// with auto-detection enabled.
func (s *Service) Discover(ctx context.Context, req DiscoverRequest) ([]luamod.Identifier, error) {
	explicit, err := luamod.Identifiers(req.Packages)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", bundle.ErrInvalidArgument, err)
	}
	if err := s.fs.RequireFile(roleFile, req.File); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src, err := s.fs.ReadText(req.File)
	if err != nil {
		return nil, err
	}
	return luamod.Discover(src, explicit, true), nil
}

func (s *Service) mainPath(req DirRequest) types.FilesystemPath {
	if fspath.IsAbs(req.Main) {
		return req.Main
	}
	return fspath.Join(req.SourceDir, req.Main)
}
