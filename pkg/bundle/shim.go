// SPDX-License-Identifier: MPL-2.0

package bundle

import "strings"

// EagerShim is the runtime prelude for eagerly evaluated bundles.
const EagerShim = `local ____bundle__files = {}
local ____bundle__global_require = require
local require = function(path)
    return ____bundle__files[path] or ____bundle__global_require(path)
end
`

// LazyShim is the runtime prelude for lazily evaluated bundles.
//
// A module body is removed from ____bundle__funcs before it runs, so a
// circular require falls through to the host loader instead of running the
// body a second time. A nil result is memoized as true, matching
// package.loaded.
const LazyShim = `local ____bundle__funcs = {}
local ____bundle__values = {}
local ____bundle__global_require = require
local require = function(path)
    local value = ____bundle__values[path]
    if value ~= nil then
        return value
    end
    local func = ____bundle__funcs[path]
    if func ~= nil then
        ____bundle__funcs[path] = nil
        value = func()
        if value == nil then
            value = true
        end
        ____bundle__values[path] = value
        return value
    end
    return ____bundle__global_require(path)
end
`

// StripShim removes a leading LazyShim from main. Text that does not start
// with the exact shim is returned unchanged.
func StripShim(main string) string {
	return strings.TrimPrefix(main, LazyShim)
}
