// Package verify runs post-generation checks on a package, building the
// wheel through tox or validating the installed dependency graph with pip.
package verify
