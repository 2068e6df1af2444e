// Package pepver parses, compares, and bumps Python package versions.
//
// It implements the subset of PEP 440 used across the SDK monorepo:
// three-part release numbers, a/b/rc pre-release suffixes, and .dev
// segments for nightly builds.
package pepver
