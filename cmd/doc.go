// Package cmd implements the command-line interface for bufkv. It provides
// a single command tree operating against one lib/kv.Store backed by
// either an embedded SQLite file or an in-memory driver.
//
// The package is organized into:
//
//   - kvcli: the get/set/rm/sub-get/sub-set/flush subcommands and the
//     interactive shell
//   - util: shared help-text wrapping and environment/config loading
//
// See bufkv -help for the full command list.
package cmd
