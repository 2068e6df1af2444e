// Package pymeta reads and rewrites Python packaging metadata.
//
// It parses pyproject.toml project tables, falls back to legacy setup.py
// keywords, and locates the _version.py assignment that carries the
// authoritative package version.
package pymeta
