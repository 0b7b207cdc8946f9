// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	FileNotFoundId Id = iota + 1
	ConfigLoadFailedId
	StorageUnavailableId
	NoGameSelectedId
	NoCollectionSelectedId
	CollectionNotFoundId
	ExchangeFileInvalidId
	HashReportInvalidId
	DefinitionsParseErrorId
	PermissionDeniedId
)

type MarkdownMsg string

type HttpLink string

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

// Render renders the issue as terminal markdown using the glamour style at
// stylePath ("dark", "light", "notty" or a JSON style file).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			md.WriteString("- [" + string(link) + "](" + string(link) + ")\n")
		}
		for _, link := range i.extLinks {
			md.WriteString("- [" + string(link) + "](" + string(link) + ")\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	fileNotFoundIssue = &Issue{
		id: FileNotFoundId,
		mdMsg: `
# File not found!

The file you passed does not exist or is not readable.

## Things you can try:
- Check the path for typos
- Use an absolute path when running from another directory`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Your config file could not be parsed or does not match the schema.

## Things you can try:
- Print the effective defaults:
~~~
$ modcurator config show
~~~

- Recreate a fresh config file:
~~~
$ modcurator config init --force
~~~`,
		extLinks: []HttpLink{"https://cuelang.org/docs/"},
	}

	storageUnavailableIssue = &Issue{
		id: StorageUnavailableId,
		mdMsg: `
# Storage unavailable!

The configured storage backend could not be opened.

## Things you can try:
- For the file backend, check that ` + "`storage.path`" + ` is writable
- For the redis backend, check that the server at ` + "`storage.redis.addr`" + ` is reachable
- Fall back to the file backend:
~~~cue
storage: backend: "file"
~~~`,
	}

	noGameSelectedIssue = &Issue{
		id: NoGameSelectedId,
		mdMsg: `
# No game selected!

Collections always belong to a game, and none is selected yet.

## Things you can try:
~~~
$ modcurator game list
$ modcurator game select <type>
~~~`,
	}

	noCollectionSelectedIssue = &Issue{
		id: NoCollectionSelectedId,
		mdMsg: `
# No collection selected!

This command works on the selected collection of the selected game.

## Things you can try:
~~~
$ modcurator collection list
$ modcurator collection select <name>
~~~`,
	}

	collectionNotFoundIssue = &Issue{
		id: CollectionNotFoundId,
		mdMsg: `
# Collection not found!

The selected game has no collection with that name. Names are case sensitive.

## Things you can try:
~~~
$ modcurator collection list
~~~`,
	}

	exchangeFileInvalidIssue = &Issue{
		id: ExchangeFileInvalidId,
		mdMsg: `
# Invalid collection file!

The collection exchange file is malformed or was written by a newer version.

## Things you can try:
- Export the collection again from its source
- Check that the file is a modcurator TOML export and not a launcher playset`,
	}

	hashReportInvalidIssue = &Issue{
		id: HashReportInvalidId,
		mdMsg: `
# Invalid hash report!

The hash report is not valid JSON or contains reports without a name or with
duplicate files.

## Things you can try:
- Export a new report:
~~~
$ modcurator hash export report.json
~~~`,
	}

	definitionsParseErrorIssue = &Issue{
		id: DefinitionsParseErrorId,
		mdMsg: `
# Failed to parse definitions!

The definitions file must be CUE with a top-level ` + "`definitions`" + ` list.

## Example:
~~~cue
definitions: [
    {id: "building_a", file: "common/buildings/00_a.txt", mod: "Mod A"},
    {id: "building_a", file: "common/buildings/zz_b.txt", mod: "Mod B", dependencies: ["Mod A"]},
]
~~~`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

You don't have permission to perform this operation.

## Common causes:
- Writing a report or export into a protected directory
- The mod directory belongs to another user

## Things you can try:
- Check file/directory permissions
- Write to a directory you own`,
	}

	issues = map[Id]*Issue{
		fileNotFoundIssue.Id():          fileNotFoundIssue,
		configLoadFailedIssue.Id():      configLoadFailedIssue,
		storageUnavailableIssue.Id():    storageUnavailableIssue,
		noGameSelectedIssue.Id():        noGameSelectedIssue,
		noCollectionSelectedIssue.Id():  noCollectionSelectedIssue,
		collectionNotFoundIssue.Id():    collectionNotFoundIssue,
		exchangeFileInvalidIssue.Id():   exchangeFileInvalidIssue,
		hashReportInvalidIssue.Id():     hashReportInvalidIssue,
		definitionsParseErrorIssue.Id(): definitionsParseErrorIssue,
		permissionDeniedIssue.Id():      permissionDeniedIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
