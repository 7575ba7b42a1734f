// Package internal contains the implementation packages of the hyphen CLI
// and server.
//
// # Package Organization
//
// The internal packages are organized by functional domain:
//
//   - trie: weighted pattern trie built from Liang patterns
//   - corpus: patterns, exceptions and thresholds answering break queries
//   - hyphenate: word segmentation of running text and mark insertion
//   - texparser: TeX \patterns and \hyphenation file parsing
//   - dictionary: loading dictionaries from files, strings and the store,
//     and the language-keyed registry
//   - store: SQLite dictionary store
//   - htmltext: hyphenation of HTML text nodes
//   - config: configuration loading and validation
//   - errors: typed errors with codes and source locations
//   - logging: structured logging on log/slog
//   - watcher: debounced file watching for dictionary reloads
//   - server: HTTP API, WebSocket endpoint and middleware
//   - version: build information
//
// # Data Flow
//
// Dictionary sources are parsed by texparser into a corpus.Builder, which
// produces an immutable corpus.Corpus. The registry hands corpora to the CLI
// commands and the server, and swaps them atomically when the watcher
// reports a changed file. trie, corpus and hyphenate never log and never
// block; everything that touches files or the network does.
package internal
