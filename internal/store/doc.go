// Package store persists console client sessions and the console audit log.
//
// A client session is keyed by an opaque id carried in a long-lived cookie.
// It holds at most one backend bearer credential, the last active shell
// section, and at most one pending confirmation. Clearing the credential
// keeps the row (and with it the section preference) so the operator lands
// back where they were after signing in again.
//
// SQLiteStore is the production implementation on modernc.org/sqlite;
// MockStore is an in-memory equivalent for handler tests.
package store
