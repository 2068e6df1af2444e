// Package versioning applies release version bumps to Python client packages,
// keeping the version file, pyproject metadata, and changelog heading in sync.
package versioning
