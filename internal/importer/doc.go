// Package importer turns loosely structured rows into library entities.
//
// An import runs in three pure stages over in-memory buffers:
//
//   - [GuessFieldMap] proposes which column feeds each logical field
//   - [Build] normalizes mapped rows into identities and item candidates,
//     deduplicating identities by normalized title and platform
//   - [Resolve] turns the raw member and account labels on each candidate
//     into ids, reusing persisted entities and minting only what is missing
//
// Nothing here touches storage. The caller reads a snapshot first and hands
// the resolved buffers to the commit step in package tasks.
package importer
