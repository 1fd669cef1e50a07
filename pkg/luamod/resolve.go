// SPDX-License-Identifier: MPL-2.0

package luamod

import (
	"path"
	"strings"

	"github.com/BlockOG/bundle-lua/pkg/fspath"
	"github.com/BlockOG/bundle-lua/pkg/types"
)

// SourceExt is the canonical Lua source file extension.
const SourceExt = ".lua"

// Resolve maps an identifier to the file that defines it under root.
// The identifier is treated as a slash-separated relative path and its
// final element's extension is replaced with SourceExt, so "a/b",
// "a/b.lua" and "a/b.txt" all resolve to <root>/a/b.lua.
//
// Resolve does not check that the file exists.
func Resolve(id Identifier, root types.FilesystemPath) types.FilesystemPath {
	dir, file := path.Split(string(id))
	rel := dir + Stem(file) + SourceExt
	return fspath.JoinStr(root, fspath.FromSlashStr(rel))
}

// Stem returns a file name without its final extension. A name whose only
// dot is the leading one (".hidden") is returned unchanged.
func Stem(name string) string {
	if i := strings.LastIndex(name, "."); i > 0 {
		return name[:i]
	}
	return name
}
