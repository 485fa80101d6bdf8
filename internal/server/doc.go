// Package server exposes the game library over a local JSON API.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
// [Middleware] wraps handlers in reverse order (last added executes first).
// [BasicRouter] registers [http.ServeMux] method patterns, so the mux answers
// 405 for a known path requested with the wrong method.
//
// Custom handlers implement [Handler], which adds Routes to the stdlib handler
// interface so one type can register every pattern it serves.
//
// # Routes
//
//	GET  /api/library       rows, filtered by query (platform, status, member, account,
//	                        service, score, duration, value); group=member buckets by owner
//	GET  /api/suggestions   ranked suggestions; kind=PlayNext|BuyClaim, limit=N
//	GET  /api/export.json   whole-database document
//	GET  /api/export.csv    flat library rows, re-importable
//	GET  /api/export.xlsx   same rows as a workbook
//	POST /api/import/csv    body is CSV; map=field=column overrides, dry_run=true plans only
//	POST /api/import/xlsx   body is a workbook; same parameters as CSV
//	POST /api/import/json   body is a whole-database document
//
// Errors are JSON objects with an "error" message. A failed commit answers 409
// and lists the ids the batch attempted to write.
//
// [Serve] runs the server until its context ends and then shuts it down gracefully.
package server
