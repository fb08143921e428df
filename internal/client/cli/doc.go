// Package cli provides the interactive recipebox command-line client.
//
// It wires configuration, the local cache, the platform database, image
// storage and the session and catalog stores behind a small REPL. Toasts
// raised by the stores are printed after each command.
//
// Commands:
//   - register / login / logout / whoami
//   - list, search, show <id>
//   - add, edit <id>, delete <id> (edit and delete are creator-only)
//   - bookmark <id>, bookmarks, mine, refresh
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
