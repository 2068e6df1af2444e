// Package changelog renders markdown release notes from code report change
// sets and merges them into a package's CHANGELOG.md.
package changelog
