// Package config loads, normalizes, and validates dpdlookup configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the DPD_LOOKUP_DB environment
// override. Always obtain settings through this package so downstream code
// receives absolute paths and canonical log settings.
package config
