// Package cli provides the interactive Faktur command-line client.
//
// It wires configuration, the local cache, the remote API clients and an
// interactive REPL that supports online/offline operation. Typical flow:
// load the cached records, start the realtime signal watcher in the
// background, and execute user commands against the local cache or the
// server depending on connectivity.
//
// Key features:
//   - List / add / edit / delete customers, catalog items and invoices
//   - Offline writes queued and reconciled automatically on reconnection
//   - Manual sync command and a dirty marker in the prompt
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
