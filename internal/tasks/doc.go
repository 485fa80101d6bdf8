// Package tasks runs the library's long operations with real-time progress reporting.
//
// # Import Pipeline
//
// [ImportEngine.Run] drives one table of rows through six steps:
//
//  1. Parse : rows arrive already split by package formatter; malformed counts are reported
//  2. Map : the column mapping is guessed from headers unless the caller supplies one
//  3. Snapshot : members, accounts and identities are read once, fresh for this run
//  4. Build : rows become identities and item candidates (package importer)
//  5. Resolve : member and account labels become ids, minting what is missing
//  6. Commit : everything is written in one transaction or not at all
//
// [ImportEngine.Plan] stops before the commit so callers can preview a run,
// and [ImportEngine.Apply] commits a plan. A run that yields no items reports
// [ImportResult.Nothing] instead of an error. A failed commit returns a
// [*CommitError] that matches [shared.ErrCommitFailed] with errors.Is.
//
// # Enrichment
//
//   - [ImportEngine.EnrichPrices] : Steam store prices through a rate-limited worker pool
//   - [ImportEngine.EnrichTTB] : IGDB time to beat with bounded concurrency via errgroup
//
// Failed lookups are collected in the result and never abort the run.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
