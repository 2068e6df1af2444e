// Package plan loads declarative release plans and executes their ordered
// steps against the discovered packages.
package plan
