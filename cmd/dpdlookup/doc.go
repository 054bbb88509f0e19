// Package main hosts the dpdlookup CLI entrypoint and command graph.
//
// The Cobra command tree loads producer mapping files, runs sync passes
// against the lookup database, and offers read-only views (show, stats,
// producers) plus configuration scaffolding. Configuration resolution and
// logger setup live in commandContext so subcommands only deal with their
// own flags and output.
//
// Keep this package thin: reconciliation rules belong in internal/reconcile
// and storage details in internal/lookupdb.
package main
