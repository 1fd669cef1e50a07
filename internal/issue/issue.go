// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	NotAFileId Id = iota + 1
	NotADirectoryId
	IoErrorId
	MissingDependencyId
	InvalidModuleIdentifierId
	ConfigLoadFailedId
	ManifestNotFoundId
	ManifestInvalidId
	PermissionDeniedId
	WatchFailedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
		for _, link := range i.extLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	notAFileIssue = &Issue{
		id: NotAFileId,
		mdMsg: `
# A file was expected

The main script, every package and the output must be regular files.
The output may also be a path that does not exist yet; it is created.

## Things you can try:
- Check the path for typos
- Pass files, not directories:
~~~
$ bundle-lua files dist/game.lua src/main.lua src/util.lua src/vec.lua
~~~
- For whole directories use the ` + "`dir`" + ` command instead`,
	}

	notADirectoryIssue = &Issue{
		id: NotADirectoryId,
		mdMsg: `
# A directory was expected

` + "`dir`" + ` resolves every module relative to SOURCE_DIR, so it must be a directory.

## Things you can try:
- Point SOURCE_DIR at the folder that holds your modules:
~~~
$ bundle-lua dir dist/game.lua src main.lua -a
~~~
- Check the ` + "`source`" + ` key in bundle.toml`,
	}

	ioErrorIssue = &Issue{
		id: IoErrorId,
		mdMsg: `
# A file could not be read or written

The bundle was not written. Any previous output file is unchanged.

## Things you can try:
- Check that the disk is not full
- Check that the files are not locked by another program
- Re-run with ` + "`--verbose`" + ` to see the full error chain`,
	}

	missingDependencyIssue = &Issue{
		id: MissingDependencyId,
		mdMsg: `
# A required module could not be found

A module named in ` + "`require(\"...\")`" + ` or passed as a package resolves to
` + "`<SOURCE_DIR>/<identifier>.lua`" + `, and that file does not exist.
` + "`dir`" + ` skips such modules and the host ` + "`require`" + ` handles them at runtime.

## Things you can try:
- Check the identifier for typos; ` + "`require(\"a/b\")`" + ` maps to ` + "`a/b.lua`" + `
- Make sure SOURCE_DIR is the root your identifiers are relative to
- Ignore the warning if the module is provided by the host runtime`,
	}

	invalidModuleIdentifierIssue = &Issue{
		id: InvalidModuleIdentifierId,
		mdMsg: `
# Invalid module identifier

Module identifiers must be non-empty and may not contain double quotes or line breaks.

## Things you can try:
- Pass identifiers the way your code requires them, e.g. ` + "`util/strings`",
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file could not be loaded or does not match the schema.

## Things you can try:
- Check your config file syntax:
~~~
$ bundle-lua config path
$ bundle-lua config show
~~~
- See every supported key with its default:
~~~
$ bundle-lua config dump
~~~
- Reset to defaults by removing the config file and running:
~~~
$ bundle-lua config init
~~~`,
	}

	manifestNotFoundIssue = &Issue{
		id: ManifestNotFoundId,
		mdMsg: `
# No bundle.toml found

` + "`build`" + ` looks for bundle.toml in the given directory and its parents.

## Example bundle.toml:
~~~toml
[project]
name = "game"

[bundle]
output = "dist/game.lua"
source = "src"
main = "main.lua"
auto_detect = true
~~~`,
	}

	manifestInvalidIssue = &Issue{
		id: ManifestInvalidId,
		mdMsg: `
# bundle.toml is invalid

The manifest could not be parsed, has unknown keys, or misses ` + "`[bundle] output`" + `.

## Supported keys:
- ` + "`[project] name`" + `
- ` + "`[bundle] output`" + ` (required), ` + "`source`" + `, ` + "`main`" + `, ` + "`packages`" + `, ` + "`auto_detect`",
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

You don't have permission to read an input or write the output.

## Things you can try:
- Check file permissions:
~~~
$ ls -la <file>
~~~
- Write the bundle to a directory you own`,
	}

	watchFailedIssue = &Issue{
		id: WatchFailedId,
		mdMsg: `
# Watch mode stopped

The file watcher could not be started or hit a fatal error.

## Things you can try:
- On Linux, raise the inotify watch limit:
~~~
$ sudo sysctl fs.inotify.max_user_watches=524288
~~~
- Add large generated folders to ` + "`watch.ignore`" + ` in your config`,
		extLinks: []HttpLink{"https://github.com/fsnotify/fsnotify#faq"},
	}

	issues = map[Id]*Issue{
		notAFileIssue.Id():                notAFileIssue,
		notADirectoryIssue.Id():           notADirectoryIssue,
		ioErrorIssue.Id():                 ioErrorIssue,
		missingDependencyIssue.Id():       missingDependencyIssue,
		invalidModuleIdentifierIssue.Id(): invalidModuleIdentifierIssue,
		configLoadFailedIssue.Id():        configLoadFailedIssue,
		manifestNotFoundIssue.Id():        manifestNotFoundIssue,
		manifestInvalidIssue.Id():         manifestInvalidIssue,
		permissionDeniedIssue.Id():        permissionDeniedIssue,
		watchFailedIssue.Id():             watchFailedIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
