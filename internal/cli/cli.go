// Package cli implements the pagebind command-line interface.
//
// # Commands
//
//   - bind: paginate an HTML or Markdown document into PDF or paged HTML
//   - version: print build information
//
// All commands support --verbose (-v) for debug-level logging. The logger
// travels through the command context.
package cli
