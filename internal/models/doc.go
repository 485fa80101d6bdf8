// Package models defines the game-library entities shared by the importer, storage, and presentation layers.
//
// Persistent entities, each keyed by an opaque string id:
//   - [Identity] : a game concept (title + platform) with optional external ids
//   - [LibraryItem] : one ownership or interest record pointing at an Identity
//   - [Account] : a store or login on one platform, resolved by label
//   - [Member] : a household member, resolved by name; "everyone" always exists
//
// [Snapshot] groups all four collections and is the whole-database JSON shape
// ({identities, library, accounts, members}) used for export and import.
//
// The [Repository] interface defines the per-collection storage operations.
package models
