// Package app wires application dependencies for the CLI.
//
// It loads Config from the home directory, builds the logger, the concrete
// stores and the high-level services, and exposes them via the Wire struct
// for commands to use.
package app
