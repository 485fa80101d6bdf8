// Package repositories implements SQLite persistence for the four library collections.
//
// Each repository implements [models.Repository] for one entity type over a
// [Querier], so the same code runs against the database or inside a transaction.
// Writes are upserts by id: the import path never deletes.
//
// Key Implementations:
//   - [IdentityRepository] : game identities with optional external ids
//   - [LibraryRepository] : library items with criteria filtering
//   - [AccountRepository] : platform accounts, resolved by label
//   - [MemberRepository] : household members, including the everyone sentinel
//
// [Store] bundles the repositories and provides the snapshot read and the
// scoped all-or-nothing transaction used by imports.
package repositories
