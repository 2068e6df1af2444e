// Package discovery locates Python client packages inside a monorepo checkout.
//
// It walks sdk/<service>/<package> directories, loads packaging metadata for
// each hit, and applies the release-engineering filters (exclusion paths,
// management plane, inactive classifiers) used by downstream commands.
package discovery
