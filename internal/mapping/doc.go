// Package mapping loads producer output files into lookup.Mapping values.
//
// A mapping file is a single object keyed by lookup key, in JSON or YAML.
// YAML is converted to JSON first so both formats share one decode path.
package mapping
