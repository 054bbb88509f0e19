// Package lookup defines the shared Lookup record and the producer field
// model layered on top of it.
//
// A Lookup record is keyed by a normalized word-form and carries one packed
// column per producer (deconstructions, variants, spellings, grammar, help,
// abbreviations, English index, pronunciation). Each producer owns exactly
// one column: its Codec packs and unpacks that column and nothing else, and
// HasOtherData answers whether a record still carries data from anyone else.
//
// The Store and Tx interfaces describe what the reconciliation engine needs
// from persistence; internal/lookupdb implements them on SQLite.
package lookup
