// Package config models Cadenza configuration as dotted-key properties and
// resolves the effective configuration from layered sources.
//
// It supplies repository defaults, reads and writes the sectioned TOML
// configuration file, and merges default, persisted, and override layers
// key-by-key with per-key error isolation: a bad value never aborts the merge,
// it falls back to the underlying layer. Resolution also reports advisory
// diagnostics for keys that are new since the persisted file was written and
// for persisted keys no release still understands.
//
// Always obtain settings through a resolved Snapshot so downstream code sees
// validated values and never reads an ambient global.
package config
