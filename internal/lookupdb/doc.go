// Package lookupdb implements lookup.Store on SQLite.
//
// The lookup table has one TEXT column per producer field and an empty string
// marks an unclaimed field. Writes are column scoped, and ClearField and Delete
// are compare-and-set statements whose WHERE clauses re-check ownership inside
// the transaction, so two producers syncing at once never overwrite each
// other's data. Connections use WAL journaling, a busy timeout, and
// BEGIN IMMEDIATE transactions; Begin retries briefly on SQLITE_BUSY.
package lookupdb
