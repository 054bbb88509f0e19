// Package reconcile synchronizes one producer's derived data into the shared
// lookup table.
//
// A sync pass takes a per-producer file lock, opens a single transaction,
// classifies stored versus incoming payloads into add, update, unchanged, and
// drop, and applies the result with column-scoped writes. Dropped keys are
// cleared when another producer still owns data on the record and deleted
// otherwise. Every error rolls the pass back and reports nothing.
package reconcile
