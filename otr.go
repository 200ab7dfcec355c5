// Package otr gives old-time radio recordings canonical filenames. It
// extracts show, air date, number and episode title from a filename, can
// match them against an episode catalog, and renames with backup and undo.
//
// The functions here are the ones the otr command uses.
package otr

import "github.com/mydehq/otr/internal/api"

type (
	Option      = api.Option
	Options     = api.Options
	ConfirmFunc = api.ConfirmFunc
)

var (
	WithConfig      = api.WithConfig
	WithConfigValue = api.WithConfigValue
	WithCatalog     = api.WithCatalog
	WithEdit        = api.WithEdit
	WithNoBackup    = api.WithNoBackup
	WithNoTag       = api.WithNoTag
	WithFuzzy       = api.WithFuzzy
	WithShow        = api.WithShow
	WithForce       = api.WithForce
	WithEvents      = api.WithEvents
	WithChooser     = api.WithChooser
	WithConfirm     = api.WithConfirm
	WithCacheRoot   = api.WithCacheRoot
)

var (
	LoadConfig             = api.LoadConfig
	ExpandFiles            = api.ExpandFiles
	Rename                 = api.Rename
	Tag                    = api.Tag
	Slug                   = api.Slug
	Undo                   = api.Undo
	Clean                  = api.Clean
	CleanAll               = api.CleanAll
	Backups                = api.Backups
	CatalogPath            = api.CatalogPath
	CatalogList            = api.CatalogList
	CatalogShows           = api.CatalogShows
	CatalogInfo            = api.CatalogInfo
	CatalogImport          = api.CatalogImport
	CatalogDelete          = api.CatalogDelete
	Init                   = api.Init
	Version                = api.Version
	SetDefaultEventHandler = api.SetDefaultEventHandler
)
